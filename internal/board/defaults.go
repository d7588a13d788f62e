package board

// Seed content installed by migration when a field is missing or malformed.
// Text matches the dashboard the data was first collected under, so an old
// cache and a fresh install converge on the same document.

var defaultQuotes = []Quote{
	{Text: "為せば成る。為さねば成らぬ。", Author: "上杉鷹山"},
	{Text: "急がば回れ。", Author: "ことわざ"},
	{Text: "継続は力なり。", Author: "ことわざ"},
	{Text: "勝って兜の緒を締めよ。", Author: "ことわざ"},
	{Text: "Preparation meets opportunity.", Author: "Seneca"},
	{Text: "Fortune favors the bold.", Author: "Virgil"},
	{Text: "石の上にも三年。", Author: "ことわざ"},
	{Text: "小さく速く、確実に。", Author: "就活ダッシュボード"},
}

var defaultIndustries = []string{
	"総合商社",
	"コンサル",
	"金融",
	"メーカー",
	"通信・IT",
	"運輸・航空",
	"官公庁・公社",
	"メディア・エンタメ",
	"スタートアップ",
}

const (
	defaultVision  = "社会にインパクトを与えるキャリアを築く。使命感・戦略性・チーム連携を重視。"
	defaultFocus   = "① 情報収集 → ② 志望度上位に集中 → ③ 想定Q&A更新"
	defaultRoutine = "毎朝ニュース/週2ケース/週1振り返り"
)

func defaultCompanies() []Company {
	return []Company{
		{
			ID:       NewID(),
			Name:     "キーエンス",
			Industry: "メーカー",
			Tags:     []string{"高収益", "直販"},
			Status:   StatusResearching,
			Memo:     "FA×ソフト要研究",
			Links:    "https://www.keyence.co.jp/",
			Rating:   3,
		},
		{
			ID:       NewID(),
			Name:     "ソフトバンク",
			Industry: "通信・IT",
			Tags:     []string{"AI", "投資"},
			Status:   StatusResearching,
			Memo:     "生成AI連携/DX",
			Links:    "https://www.softbank.jp/",
			Rating:   4,
		},
		{
			ID:       NewID(),
			Name:     "内閣府",
			Industry: "官公庁・公社",
			Tags:     []string{"政策"},
			Status:   StatusNotStarted,
			Memo:     "官庁訪問ルート",
			Links:    "https://www.cao.go.jp/",
			Rating:   5,
		},
	}
}

// DefaultQuotes returns a copy of the built-in quote rotation.
func DefaultQuotes() []Quote {
	out := make([]Quote, len(defaultQuotes))
	copy(out, defaultQuotes)
	return out
}

// DefaultIndustries returns a copy of the built-in industry ranking.
func DefaultIndustries() []string {
	out := make([]string, len(defaultIndustries))
	copy(out, defaultIndustries)
	return out
}

package board

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchesFilters(t *testing.T) {
	c := Company{
		Name:     "ソフトバンク",
		Industry: "通信・IT",
		Tags:     []string{"AI", "投資"},
		Status:   StatusResearching,
		Memo:     "生成AI連携/DX",
		Links:    "https://www.softbank.jp/",
	}

	require.True(t, MatchesFilters(c, Filters{}))
	require.True(t, MatchesFilters(c, Filters{Status: StatusResearching}))
	require.False(t, MatchesFilters(c, Filters{Status: StatusOffer}))

	// keyword is case-insensitive and searches tags, memo, links and status too
	require.True(t, MatchesFilters(c, Filters{Keyword: "ai"}))
	require.True(t, MatchesFilters(c, Filters{Keyword: "softbank"}))
	require.True(t, MatchesFilters(c, Filters{Keyword: "調査"}))
	require.False(t, MatchesFilters(c, Filters{Keyword: "トヨタ"}))

	// both filters must pass
	require.True(t, MatchesFilters(c, Filters{Status: StatusResearching, Keyword: "AI"}))
	require.False(t, MatchesFilters(c, Filters{Status: StatusOffer, Keyword: "AI"}))
}

func TestFilteredCompaniesPreservesOrder(t *testing.T) {
	b := Migrate(nil)
	b.Filters = Filters{Status: StatusResearching}
	got := b.FilteredCompanies()
	require.Len(t, got, 2)
	require.Equal(t, "キーエンス", got[0].Name)
	require.Equal(t, "ソフトバンク", got[1].Name)
}

func TestSortCompaniesRatingDesc(t *testing.T) {
	list := []Company{
		{Name: "B社", Rating: 2},
		{Name: "A社", Rating: 5},
		{Name: "C社", Rating: 5},
	}
	got := SortCompanies(list, SortRatingDesc)
	require.Equal(t, []string{"A社", "C社", "B社"}, names(got))
	// input untouched
	require.Equal(t, "B社", list[0].Name)
}

func TestSortCompaniesUnknownModeFallsBack(t *testing.T) {
	list := []Company{{Name: "low", Rating: 1}, {Name: "high", Rating: 4}}
	got := SortCompanies(list, "bogus")
	require.Equal(t, "high", got[0].Name)
}

func TestSortCompaniesByIndustryThenName(t *testing.T) {
	list := []Company{
		{Name: "b", Industry: "メーカー"},
		{Name: "a", Industry: "メーカー"},
		{Name: "z", Industry: "コンサル"},
	}
	got := SortCompanies(list, SortIndustryAsc)
	require.Equal(t, "z", got[0].Name)
	require.Equal(t, "a", got[1].Name)
	require.Equal(t, "b", got[2].Name)
}

func TestSortCompaniesByStatusTieBreaksOnName(t *testing.T) {
	list := []Company{
		{Name: "b", Status: StatusOffer},
		{Name: "a", Status: StatusOffer},
	}
	got := SortCompanies(list, SortStatusAsc)
	require.Equal(t, "a", got[0].Name)
	require.Equal(t, "b", got[1].Name)
}

func names(list []Company) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Name
	}
	return out
}

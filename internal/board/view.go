package board

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Derived views over the companies collection. Nothing here mutates the board;
// the presentation layer calls these on every render.

// Sort modes for the cross-industry company list.
const (
	SortRatingDesc  = "rating_desc"
	SortNameAsc     = "name_asc"
	SortIndustryAsc = "industry_asc"
	SortStatusAsc   = "status_asc"
)

// newCollator returns a fresh ja collator; Collator carries internal buffers
// and is not safe for concurrent use across requests.
func newCollator() *collate.Collator {
	return collate.New(language.Japanese)
}

// MatchesFilters reports whether c passes the stored filter state: the status
// filter must match exactly when set, and the keyword must appear
// case-insensitively somewhere in the company's searchable text.
func MatchesFilters(c Company, f Filters) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		hay := strings.ToLower(strings.Join([]string{
			c.Name,
			c.Industry,
			c.Memo,
			c.Links,
			strings.Join(c.Tags, " "),
			c.Status,
		}, " "))
		if !strings.Contains(hay, kw) {
			return false
		}
	}
	return true
}

// FilteredCompanies returns the companies passing the board's active filters,
// preserving stored order.
func (b Board) FilteredCompanies() []Company {
	out := []Company{}
	for _, c := range b.Companies {
		if MatchesFilters(c, b.Filters) {
			out = append(out, c)
		}
	}
	return out
}

// SortCompanies returns a sorted copy of list. Unknown modes fall back to
// rating descending. All text comparisons are locale-aware; ties break on name.
func SortCompanies(list []Company, mode string) []Company {
	out := make([]Company, len(list))
	copy(out, list)

	col := newCollator()
	byName := func(x, y Company) int {
		return col.CompareString(x.Name, y.Name)
	}
	var less func(x, y Company) bool
	switch mode {
	case SortNameAsc:
		less = func(x, y Company) bool { return byName(x, y) < 0 }
	case SortIndustryAsc:
		less = func(x, y Company) bool {
			if c := col.CompareString(x.Industry, y.Industry); c != 0 {
				return c < 0
			}
			return byName(x, y) < 0
		}
	case SortStatusAsc:
		less = func(x, y Company) bool {
			if c := col.CompareString(x.Status, y.Status); c != 0 {
				return c < 0
			}
			return byName(x, y) < 0
		}
	default:
		less = func(x, y Company) bool {
			if x.Rating != y.Rating {
				return x.Rating > y.Rating
			}
			return byName(x, y) < 0
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

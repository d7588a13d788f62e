package board

import (
	"errors"
	"regexp"
	"strings"
)

// Mutations are pure transforms: each one returns a new Board with a fresh
// collection at the changed field, leaving the receiver untouched. Callers
// replace their whole Board with the result.

var (
	// ErrDuplicateIndustry is returned when an industry name is already ranked.
	ErrDuplicateIndustry = errors.New("industry already exists")
	// ErrFileTooLarge is returned once per batch when at least one attachment
	// exceeds MaxFileSize; files under the cap are still added.
	ErrFileTooLarge = errors.New("file exceeds size limit")
)

var tagSeparators = regexp.MustCompile(`[\s,]+`)

// NewTaskTitle is the placeholder title for a freshly added to-do.
const NewTaskTitle = "新しいToDo"

// TaskPatch carries the updatable fields of a task. Nil pointers are left alone.
type TaskPatch struct {
	Title    *string `json:"title,omitempty"`
	Priority *string `json:"priority,omitempty"`
	Done     *bool   `json:"done,omitempty"`
	Due      *string `json:"due,omitempty"`
	Note     *string `json:"note,omitempty"`
}

// CompanyPatch carries the updatable fields of a company.
type CompanyPatch struct {
	Name     *string   `json:"name,omitempty"`
	Industry *string   `json:"industry,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Status   *string   `json:"status,omitempty"`
	Memo     *string   `json:"memo,omitempty"`
	Links    *string   `json:"links,omitempty"`
	Rating   *int      `json:"rating,omitempty"`
}

// CompanyForm is the raw company-modal input for SubmitCompany. Tags is the
// unsplit tag string; Links is trimmed as-is.
type CompanyForm struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Tags     string `json:"tags"`
	Links    string `json:"links"`
}

// SetStrategyField replaces one of vision/focus/routine. Unknown fields no-op.
func (b Board) SetStrategyField(field, value string) Board {
	switch field {
	case "vision":
		b.Strategy.Vision = value
	case "focus":
		b.Strategy.Focus = value
	case "routine":
		b.Strategy.Routine = value
	}
	return b
}

// EnsureMonth lazily creates the plan list and goal entry for ym.
func (b Board) EnsureMonth(ym string) Board {
	if _, ok := b.MonthlyPlans[ym]; !ok {
		plans := copyPlans(b.MonthlyPlans)
		plans[ym] = []Task{}
		b.MonthlyPlans = plans
	}
	if _, ok := b.MonthlyGoals[ym]; !ok {
		goals := copyGoals(b.MonthlyGoals)
		goals[ym] = ""
		b.MonthlyGoals = goals
	}
	return b
}

// SetMonth switches the selected month, creating its entries when missing.
func (b Board) SetMonth(ym string) Board {
	b = b.EnsureMonth(ym)
	b.MonthKey = ym
	return b
}

// SetMonthlyGoal stores the goal text for ym.
func (b Board) SetMonthlyGoal(ym, goal string) Board {
	goals := copyGoals(b.MonthlyGoals)
	goals[ym] = goal
	b.MonthlyGoals = goals
	return b
}

// AddTask prepends a fresh default task to the selected month.
func (b Board) AddTask() Board {
	b = b.EnsureMonth(b.MonthKey)
	t := Task{ID: NewID(), Title: NewTaskTitle, Priority: PriorityMid}
	plans := copyPlans(b.MonthlyPlans)
	plans[b.MonthKey] = append([]Task{t}, plans[b.MonthKey]...)
	b.MonthlyPlans = plans
	return b
}

// UpdateTask applies patch to the task with the given id in the selected month.
func (b Board) UpdateTask(id string, patch TaskPatch) Board {
	src := b.MonthlyPlans[b.MonthKey]
	list := make([]Task, len(src))
	for i, t := range src {
		if t.ID == id {
			applyString(&t.Title, patch.Title)
			applyString(&t.Priority, patch.Priority)
			applyString(&t.Due, patch.Due)
			applyString(&t.Note, patch.Note)
			if patch.Done != nil {
				t.Done = *patch.Done
			}
		}
		list[i] = t
	}
	plans := copyPlans(b.MonthlyPlans)
	plans[b.MonthKey] = list
	b.MonthlyPlans = plans
	return b
}

// DeleteTask removes the task with the given id from the selected month.
func (b Board) DeleteTask(id string) Board {
	src := b.MonthlyPlans[b.MonthKey]
	list := make([]Task, 0, len(src))
	for _, t := range src {
		if t.ID != id {
			list = append(list, t)
		}
	}
	plans := copyPlans(b.MonthlyPlans)
	plans[b.MonthKey] = list
	b.MonthlyPlans = plans
	return b
}

// AddIndustry appends a new industry name to the ranking. A blank name is a
// silent no-op; a name already present is rejected with ErrDuplicateIndustry.
func (b Board) AddIndustry(name string) (Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return b, nil
	}
	for _, ind := range b.Industries {
		if ind == name {
			return b, ErrDuplicateIndustry
		}
	}
	b.Industries = append(copyStrings(b.Industries), name)
	return b, nil
}

// MoveIndustry swaps the entry at index with its neighbor at index+dir.
// Out-of-bounds neighbors are a silent no-op; this is the only reordering
// mechanism for industries.
func (b Board) MoveIndustry(index, dir int) Board {
	j := index + dir
	if index < 0 || index >= len(b.Industries) || j < 0 || j >= len(b.Industries) {
		return b
	}
	a := copyStrings(b.Industries)
	a[index], a[j] = a[j], a[index]
	b.Industries = a
	return b
}

// DeleteIndustry removes the industry at index from the ranking only.
// Companies referencing the name keep it as an orphaned soft reference.
func (b Board) DeleteIndustry(index int) Board {
	if index < 0 || index >= len(b.Industries) {
		return b
	}
	name := b.Industries[index]
	out := make([]string, 0, len(b.Industries)-1)
	for _, ind := range b.Industries {
		if ind != name {
			out = append(out, ind)
		}
	}
	b.Industries = out
	return b
}

// SplitTags derives the tag list from raw modal input: split on runs of
// whitespace or commas, drop empty tokens.
func SplitTags(raw string) []string {
	out := []string{}
	for _, tag := range tagSeparators.Split(raw, -1) {
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// SubmitCompany adds a company from modal input. A trimmed-empty name is a
// silent no-op. New companies are prepended with status 未着手 and rating 0
// regardless of the modal's previous state.
func (b Board) SubmitCompany(form CompanyForm) Board {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return b
	}
	c := Company{
		ID:       NewID(),
		Name:     name,
		Industry: form.Industry,
		Tags:     SplitTags(form.Tags),
		Status:   StatusNotStarted,
		Memo:     "",
		Links:    strings.TrimSpace(form.Links),
		Rating:   0,
	}
	b.Companies = append([]Company{c}, b.Companies...)
	return b
}

// UpdateCompany applies patch to the company with the given id.
func (b Board) UpdateCompany(id string, patch CompanyPatch) Board {
	list := make([]Company, len(b.Companies))
	for i, c := range b.Companies {
		if c.ID == id {
			applyString(&c.Name, patch.Name)
			applyString(&c.Industry, patch.Industry)
			applyString(&c.Status, patch.Status)
			applyString(&c.Memo, patch.Memo)
			applyString(&c.Links, patch.Links)
			if patch.Tags != nil {
				c.Tags = copyStrings(*patch.Tags)
			}
			if patch.Rating != nil {
				c.Rating = clampRating(*patch.Rating)
			}
		}
		list[i] = c
	}
	b.Companies = list
	return b
}

// SetRating sets the star rating of the company with the given id.
func (b Board) SetRating(id string, rating int) Board {
	r := clampRating(rating)
	return b.UpdateCompany(id, CompanyPatch{Rating: &r})
}

// DeleteCompany removes the company with the given id.
func (b Board) DeleteCompany(id string) Board {
	list := make([]Company, 0, len(b.Companies))
	for _, c := range b.Companies {
		if c.ID != id {
			list = append(list, c)
		}
	}
	b.Companies = list
	return b
}

// AddQuote appends a quote to the rotation.
func (b Board) AddQuote(q Quote) Board {
	b.Quotes = append(copyQuotes(b.Quotes), q)
	return b
}

// UpdateQuote replaces the quote at index. Out of bounds is a no-op.
func (b Board) UpdateQuote(index int, q Quote) Board {
	if index < 0 || index >= len(b.Quotes) {
		return b
	}
	quotes := copyQuotes(b.Quotes)
	quotes[index] = q
	b.Quotes = quotes
	return b
}

// DeleteQuote removes the quote at index. Out of bounds is a no-op.
func (b Board) DeleteQuote(index int) Board {
	if index < 0 || index >= len(b.Quotes) {
		return b
	}
	quotes := copyQuotes(b.Quotes)
	b.Quotes = append(quotes[:index], quotes[index+1:]...)
	return b
}

// SetFilter sets one of the stored company filters ("status" or "keyword").
func (b Board) SetFilter(key, value string) Board {
	switch key {
	case "status":
		b.Filters.Status = value
	case "keyword":
		b.Filters.Keyword = value
	}
	return b
}

// SetNote replaces the free-form shisaku note.
func (b Board) SetNote(note string) Board {
	b.ShisakuNote = note
	return b
}

// AddFile appends an already-read attachment. Size checking happens in the
// ingestion service before the file content is ever read.
func (b Board) AddFile(f FileAttachment) Board {
	files := make([]FileAttachment, len(b.ShisakuFiles), len(b.ShisakuFiles)+1)
	copy(files, b.ShisakuFiles)
	b.ShisakuFiles = append(files, f)
	return b
}

// DeleteFile removes the attachment with the given id.
func (b Board) DeleteFile(id string) Board {
	files := make([]FileAttachment, 0, len(b.ShisakuFiles))
	for _, f := range b.ShisakuFiles {
		if f.ID != id {
			files = append(files, f)
		}
	}
	b.ShisakuFiles = files
	return b
}

func clampRating(r int) int {
	if r < 0 {
		return 0
	}
	if r > 5 {
		return 5
	}
	return r
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func copyPlans(m map[string][]Task) map[string][]Task {
	out := make(map[string][]Task, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyGoals(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStrings(a []string) []string {
	out := make([]string, len(a))
	copy(out, a)
	return out
}

func copyQuotes(a []Quote) []Quote {
	out := make([]Quote, len(a))
	copy(out, a)
	return out
}

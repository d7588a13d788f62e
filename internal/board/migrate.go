package board

import "encoding/json"

// Migration normalizes any stored or received document to the current schema.
// There is no version number field; presence and shape of keys is the version
// signal. Migrate is total and idempotent: it never fails, every collection
// comes back non-nil, and running it twice yields the same document.

// legacyRename maps an old key to its current name. Fallback-only: the old key
// is read when the new one is absent but never written back. Future renames are
// added to this table.
type legacyRename struct {
	oldKey string
	newKey string
}

var strategyRenames = []legacyRename{
	{oldKey: "policies", newKey: "focus"},
}

// MigrateJSON parses a serialized board and migrates it. A parse failure (or
// empty input) is treated the same as an absent document.
func MigrateJSON(data []byte) Board {
	var raw map[string]any
	if len(data) == 0 || json.Unmarshal(data, &raw) != nil {
		return Migrate(nil)
	}
	return Migrate(raw)
}

// Migrate builds a complete Board from a loosely-typed document. Missing or
// wrong-shaped fields are replaced with defaults, field by field.
func Migrate(raw map[string]any) Board {
	if raw == nil {
		raw = map[string]any{}
	}

	b := Board{
		Strategy: migrateStrategy(raw["strategy"]),
		MonthKey: stringOr(raw["monthKey"], CurrentMonth()),
	}

	if !decodeField(raw["monthlyPlans"], &b.MonthlyPlans) || b.MonthlyPlans == nil {
		b.MonthlyPlans = map[string][]Task{}
	}
	if !decodeField(raw["monthlyGoals"], &b.MonthlyGoals) || b.MonthlyGoals == nil {
		b.MonthlyGoals = map[string]string{}
	}
	// the selected month always has a plan list and a goal entry
	if _, ok := b.MonthlyPlans[b.MonthKey]; !ok {
		b.MonthlyPlans[b.MonthKey] = []Task{}
	}
	if _, ok := b.MonthlyGoals[b.MonthKey]; !ok {
		b.MonthlyGoals[b.MonthKey] = ""
	}
	for ym, tasks := range b.MonthlyPlans {
		b.MonthlyPlans[ym] = normalizeTasks(tasks)
	}

	if !decodeField(raw["industries"], &b.Industries) || b.Industries == nil {
		b.Industries = DefaultIndustries()
	}

	if !decodeField(raw["companies"], &b.Companies) || b.Companies == nil {
		b.Companies = defaultCompanies()
	}
	for i := range b.Companies {
		normalizeCompany(&b.Companies[i])
	}

	if !decodeField(raw["quotes"], &b.Quotes) || len(b.Quotes) == 0 {
		b.Quotes = DefaultQuotes()
	}

	if !decodeField(raw["filters"], &b.Filters) {
		b.Filters = Filters{}
	}

	b.ShisakuNote, _ = raw["shisakuNote"].(string)
	if !decodeField(raw["shisakuFiles"], &b.ShisakuFiles) || b.ShisakuFiles == nil {
		b.ShisakuFiles = []FileAttachment{}
	}

	return b
}

func migrateStrategy(v any) Strategy {
	m, _ := v.(map[string]any)
	s := Strategy{
		Vision:  stringOr(m["vision"], defaultVision),
		Routine: stringOr(m["routine"], defaultRoutine),
	}
	s.Focus, _ = m["focus"].(string)
	if s.Focus == "" {
		for _, r := range strategyRenames {
			if r.newKey != "focus" {
				continue
			}
			if old, ok := m[r.oldKey].(string); ok && old != "" {
				s.Focus = old
			}
		}
	}
	if s.Focus == "" {
		s.Focus = defaultFocus
	}
	return s
}

func normalizeTasks(tasks []Task) []Task {
	if tasks == nil {
		return []Task{}
	}
	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = NewID()
		}
		switch tasks[i].Priority {
		case PriorityLow, PriorityMid, PriorityHigh:
		default:
			tasks[i].Priority = PriorityMid
		}
	}
	return tasks
}

func normalizeCompany(c *Company) {
	if c.ID == "" {
		c.ID = NewID()
	}
	if c.Status == "" {
		c.Status = StatusNotStarted
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Rating < 0 {
		c.Rating = 0
	}
	if c.Rating > 5 {
		c.Rating = 5
	}
}

// decodeField coerces a loosely-typed value into out via a JSON round trip.
// Returns false when the value is absent or has the wrong shape.
func decodeField(v any, out any) bool {
	if v == nil {
		return false
	}
	data, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

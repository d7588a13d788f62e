package board

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxFileSize is the per-attachment size cap enforced at insertion time.
const MaxFileSize = 500 * 1024

// Task priorities.
const (
	PriorityLow  = "Low"
	PriorityMid  = "Mid"
	PriorityHigh = "High"
)

// Company pipeline statuses. The zero status for a new company is StatusNotStarted.
const (
	StatusNotStarted  = "未着手"
	StatusResearching = "調査中"
	StatusEntered     = "エントリー"
	StatusInterviews  = "選考中"
	StatusOffer       = "内定"
	StatusDeclined    = "辞退"
)

// Statuses lists every company status in pipeline order.
var Statuses = []string{
	StatusNotStarted,
	StatusResearching,
	StatusEntered,
	StatusInterviews,
	StatusOffer,
	StatusDeclined,
}

// Board is the single root document holding all persisted application state.
// Values of Board are treated as immutable: every mutation returns a fresh Board
// with a new collection at the changed field and the rest shared.
type Board struct {
	Strategy     Strategy          `json:"strategy" bson:"strategy"`
	MonthKey     string            `json:"monthKey" bson:"monthKey"`
	MonthlyPlans map[string][]Task `json:"monthlyPlans" bson:"monthlyPlans"`
	MonthlyGoals map[string]string `json:"monthlyGoals" bson:"monthlyGoals"`
	Industries   []string          `json:"industries" bson:"industries"`
	Companies    []Company         `json:"companies" bson:"companies"`
	Quotes       []Quote           `json:"quotes" bson:"quotes"`
	Filters      Filters           `json:"filters" bson:"filters"`
	ShisakuNote  string            `json:"shisakuNote" bson:"shisakuNote"`
	ShisakuFiles []FileAttachment  `json:"shisakuFiles" bson:"shisakuFiles"`
}

// Strategy holds the free-text strategy panel. All three fields are non-empty
// after migration.
type Strategy struct {
	Vision  string `json:"vision" bson:"vision"`
	Focus   string `json:"focus" bson:"focus"`
	Routine string `json:"routine" bson:"routine"`
}

// Task is a monthly to-do entry, owned by its month's slice in MonthlyPlans.
type Task struct {
	ID       string `json:"id" bson:"id"`
	Title    string `json:"title" bson:"title"`
	Priority string `json:"priority" bson:"priority"`
	Done     bool   `json:"done" bson:"done"`
	Due      string `json:"due,omitempty" bson:"due,omitempty"`
	Note     string `json:"note,omitempty" bson:"note,omitempty"`
}

// Company is a tracked target company. Industry is a soft reference into
// Board.Industries; deleting an industry leaves its companies untouched.
type Company struct {
	ID       string   `json:"id" bson:"id"`
	Name     string   `json:"name" bson:"name"`
	Industry string   `json:"industry" bson:"industry"`
	Tags     []string `json:"tags" bson:"tags"`
	Status   string   `json:"status" bson:"status"`
	Memo     string   `json:"memo" bson:"memo"`
	Links    string   `json:"links" bson:"links"`
	Rating   int      `json:"rating" bson:"rating"`
}

// Quote has no identity field; the quotes editor addresses entries by position.
type Quote struct {
	Text   string `json:"text" bson:"text"`
	Author string `json:"author,omitempty" bson:"author,omitempty"`
}

// Filters is the stored company filter state. Empty string means no filter.
type Filters struct {
	Status  string `json:"status" bson:"status"`
	Keyword string `json:"keyword" bson:"keyword"`
}

// FileAttachment is a small file inlined into the document as a base64 data URL.
type FileAttachment struct {
	ID      string `json:"id" bson:"id"`
	Name    string `json:"name" bson:"name"`
	Size    int64  `json:"size" bson:"size"`
	Type    string `json:"type" bson:"type"`
	DataURL string `json:"dataUrl" bson:"dataUrl"`
}

// NewID returns a short opaque token for tasks, companies and files.
// Collision probability is negligible at the expected data volumes.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// MonthKey formats t as the "YYYY-MM" key used by MonthlyPlans and MonthlyGoals.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// CurrentMonth is MonthKey for the wall clock.
func CurrentMonth() string {
	return MonthKey(time.Now())
}

// FormatFileSize renders a byte count the way the attachment list displays it.
func FormatFileSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

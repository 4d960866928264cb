package models

import "time"

type TaskStatus string

const (
	StatusCompleted  TaskStatus = "Completed"
	StatusInProgress TaskStatus = "In Progress"
	StatusPending    TaskStatus = "Pending"
	StatusToDo       TaskStatus = "To Do"
)

// Statuses is the fixed order in which per-status statistics are reported.
var Statuses = []TaskStatus{StatusCompleted, StatusInProgress, StatusPending, StatusToDo}

type TaskPriority string

const (
	PriorityHigh   TaskPriority = "High"
	PriorityMedium TaskPriority = "Medium"
	PriorityLow    TaskPriority = "Low"
)

type TaskCategory string

const (
	CategoryElectrical  TaskCategory = "Electrical"
	CategoryHVAC        TaskCategory = "HVAC"
	CategoryPlumbing    TaskCategory = "Plumbing"
	CategoryPainting    TaskCategory = "Painting"
	CategoryMechanical  TaskCategory = "Mechanical"
	CategoryWoodWorking TaskCategory = "Wood-Working"
	CategoryCivil       TaskCategory = "Civil"
	CategoryOther       TaskCategory = "Other"
)

// Task is a maintenance task as read from the task store. Date is the business
// date the task belongs to, not the record creation time.
type Task struct {
	ID           string         `json:"id"`
	DepartmentID string         `json:"department"`
	Title        string         `json:"title"`
	Status       TaskStatus     `json:"status"`
	Priority     TaskPriority   `json:"priority"`
	Category     []TaskCategory `json:"category"`
	AssignedTo   []string       `json:"assignedTo"`
	Date         time.Time      `json:"date"`
}

// WithDefaults fills the values a stored task may omit.
func (t Task) WithDefaults() Task {
	if t.Status == "" {
		t.Status = StatusToDo
	}
	if t.Priority == "" {
		t.Priority = PriorityLow
	}
	if len(t.Category) == 0 {
		t.Category = []TaskCategory{CategoryOther}
	}
	return t
}

// TaskFilter selects the tasks of one department whose date falls on a day
// between From and To, both days inclusive.
type TaskFilter struct {
	DepartmentID string
	From         time.Time
	To           time.Time
}

// Until returns the exclusive upper instant of the filter (midnight after To).
func (f TaskFilter) Until() time.Time {
	return StartOfDay(f.To).AddDate(0, 0, 1)
}

// Matches reports whether the task falls inside the filter.
func (f TaskFilter) Matches(t Task) bool {
	if t.DepartmentID != f.DepartmentID {
		return false
	}
	d := t.Date.UTC()
	return !d.Before(StartOfDay(f.From)) && d.Before(f.Until())
}

// StartOfDay truncates t to midnight UTC of its calendar day.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey is the grouping key of a task date (UTC calendar day).
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// MonthKey is the grouping key of a task date (UTC calendar month).
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

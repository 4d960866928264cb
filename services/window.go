package services

import (
	"strings"
	"time"

	"facility-maintenance/microservices/statistics-service/models"
)

const (
	// WindowDays is the length of the current and the prior comparison window.
	WindowDays = 30
	// SeriesMonths is the number of calendar months in the monthly series.
	SeriesMonths = 6

	DateLayout       = "2006-01-02"
	dayLabelLayout   = "Jan 2"
	monthLabelLayout = "Jan"
)

// Window holds every date boundary the aggregations of one request use. All
// boundaries are UTC midnights and every range is inclusive on both days.
type Window struct {
	DepartmentID  string
	ReferenceDate time.Time

	CurrentStart time.Time
	CurrentEnd   time.Time
	PriorStart   time.Time
	PriorEnd     time.Time

	SixMonthStart time.Time

	DailyLabels []string
	MonthLabels []string

	dayKeys   []string
	monthKeys []string
}

// ParseReferenceDate parses a calendar-day string. A full RFC 3339 timestamp is
// accepted as well and truncated to its UTC day.
func ParseReferenceDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, value)
		if tsErr != nil {
			return time.Time{}, NewInvalidDateError(value, err)
		}
		t = ts
	}
	return models.StartOfDay(t), nil
}

// NewWindowFromString parses referenceDate and computes the window for it.
func NewWindowFromString(departmentID, referenceDate string) (Window, error) {
	ref, err := ParseReferenceDate(referenceDate)
	if err != nil {
		return Window{}, err
	}
	return NewWindow(departmentID, ref), nil
}

// NewWindow computes the window boundaries for a reference day. It performs no
// I/O and never fails.
func NewWindow(departmentID string, referenceDate time.Time) Window {
	ref := models.StartOfDay(referenceDate)
	w := Window{
		DepartmentID:  departmentID,
		ReferenceDate: ref,
		CurrentEnd:    ref,
		CurrentStart:  ref.AddDate(0, 0, -(WindowDays - 1)),
		SixMonthStart: addMonthsClamped(ref, -(SeriesMonths - 1)),
	}
	w.PriorStart = w.CurrentStart.AddDate(0, 0, -WindowDays)
	w.PriorEnd = w.CurrentStart.AddDate(0, 0, -1)

	w.DailyLabels = make([]string, 0, WindowDays)
	w.dayKeys = make([]string, 0, WindowDays)
	for i := 0; i < WindowDays; i++ {
		day := w.CurrentStart.AddDate(0, 0, i)
		w.DailyLabels = append(w.DailyLabels, day.Format(dayLabelLayout))
		w.dayKeys = append(w.dayKeys, models.DayKey(day))
	}

	firstOfMonth := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	w.MonthLabels = make([]string, 0, SeriesMonths)
	w.monthKeys = make([]string, 0, SeriesMonths)
	for i := SeriesMonths - 1; i >= 0; i-- {
		month := firstOfMonth.AddDate(0, -i, 0)
		w.MonthLabels = append(w.MonthLabels, month.Format(monthLabelLayout))
		w.monthKeys = append(w.monthKeys, models.MonthKey(month))
	}
	return w
}

func (w Window) Current() models.TaskFilter {
	return models.TaskFilter{DepartmentID: w.DepartmentID, From: w.CurrentStart, To: w.CurrentEnd}
}

func (w Window) Prior() models.TaskFilter {
	return models.TaskFilter{DepartmentID: w.DepartmentID, From: w.PriorStart, To: w.PriorEnd}
}

func (w Window) SixMonths() models.TaskFilter {
	return models.TaskFilter{DepartmentID: w.DepartmentID, From: w.SixMonthStart, To: w.ReferenceDate}
}

// DayKeys returns the grouping keys of the current window, aligned with DailyLabels.
func (w Window) DayKeys() []string {
	return w.dayKeys
}

// MonthKeys returns the grouping keys of the series months, aligned with MonthLabels.
func (w Window) MonthKeys() []string {
	return w.monthKeys
}

// Interval renders the current window as "Jan 2 - Jan 31".
func (w Window) Interval() string {
	return w.CurrentStart.Format(dayLabelLayout) + " - " + w.CurrentEnd.Format(dayLabelLayout)
}

// addMonthsClamped moves t by months calendar months, keeping the day of month
// but clamping it to the length of the target month (Jul 31 - 5 months = Feb 28).
func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

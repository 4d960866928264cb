package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewWindow_Boundaries(t *testing.T) {
	w := NewWindow("d1", day("2024-03-15"))

	assert.Equal(t, "d1", w.DepartmentID)
	assert.Equal(t, day("2024-03-15"), w.ReferenceDate)
	assert.Equal(t, day("2024-02-15"), w.CurrentStart)
	assert.Equal(t, day("2024-03-15"), w.CurrentEnd)
	assert.Equal(t, day("2024-01-16"), w.PriorStart)
	assert.Equal(t, day("2024-02-14"), w.PriorEnd)
	assert.Equal(t, day("2023-10-15"), w.SixMonthStart)

	// equal length, adjacent, non-overlapping
	assert.Equal(t, WindowDays-1, int(w.CurrentEnd.Sub(w.CurrentStart).Hours()/24))
	assert.Equal(t, WindowDays-1, int(w.PriorEnd.Sub(w.PriorStart).Hours()/24))
	assert.Equal(t, w.CurrentStart, w.PriorEnd.AddDate(0, 0, 1))
}

func TestNewWindow_Labels(t *testing.T) {
	w := NewWindow("d1", day("2024-03-15"))

	require.Len(t, w.DailyLabels, WindowDays)
	require.Len(t, w.DayKeys(), WindowDays)
	assert.Equal(t, "Feb 15", w.DailyLabels[0])
	assert.Equal(t, "Mar 15", w.DailyLabels[WindowDays-1])
	assert.Equal(t, "2024-02-29", w.DayKeys()[14])
	assert.Equal(t, "Mar 1", w.DailyLabels[15])

	assert.Equal(t, []string{"Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}, w.MonthLabels)
	assert.Equal(t, []string{"2023-10", "2023-11", "2023-12", "2024-01", "2024-02", "2024-03"}, w.MonthKeys())

	assert.Equal(t, "Feb 15 - Mar 15", w.Interval())
}

func TestNewWindow_DropsTimeOfDay(t *testing.T) {
	w := NewWindow("d1", time.Date(2024, time.March, 15, 22, 45, 0, 0, time.UTC))
	assert.Equal(t, day("2024-03-15"), w.ReferenceDate)
	assert.Equal(t, day("2024-02-15"), w.CurrentStart)
}

func TestNewWindow_ClampsSixMonthStart(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{ref: "2024-07-31", want: "2024-02-29"},
		{ref: "2023-07-31", want: "2023-02-28"},
		{ref: "2024-08-31", want: "2024-03-31"},
		{ref: "2024-03-15", want: "2023-10-15"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, day(tt.want), NewWindow("d", day(tt.ref)).SixMonthStart)
		})
	}
}

func TestParseReferenceDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "calendar day", value: "2024-03-15", want: "2024-03-15"},
		{name: "surrounding spaces", value: " 2024-03-15 ", want: "2024-03-15"},
		{name: "utc timestamp", value: "2024-03-15T23:30:00Z", want: "2024-03-15"},
		{name: "offset timestamp", value: "2024-03-15T23:30:00-05:00", want: "2024-03-16"},
		{name: "day first", value: "15/03/2024", wantErr: true},
		{name: "impossible day", value: "2024-02-30", wantErr: true},
		{name: "empty", value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReferenceDate(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsKind(err, KindInvalidDate))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, day(tt.want), got)
		})
	}
}

func TestNewWindowFromString_InvalidDate(t *testing.T) {
	_, err := NewWindowFromString("d1", "yesterday")
	require.Error(t, err)

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidDate, kind)
}

func TestWindow_Filters(t *testing.T) {
	w := NewWindow("d1", day("2024-03-15"))

	current := w.Current()
	assert.Equal(t, "d1", current.DepartmentID)
	assert.Equal(t, w.CurrentStart, current.From)
	assert.Equal(t, day("2024-03-16"), current.Until())

	prior := w.Prior()
	assert.Equal(t, w.PriorStart, prior.From)
	assert.Equal(t, w.CurrentStart, prior.Until())

	six := w.SixMonths()
	assert.Equal(t, w.SixMonthStart, six.From)
	assert.Equal(t, w.ReferenceDate, six.To)
}

package stats

import (
	"fmt"
	"time"
)

// TimeWindow is an inclusive reporting range. End points at the last
// representable instant of the range, not one past it.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// QuarterWindow returns the window covering one calendar quarter: the first
// instant of its first day through the last microsecond of its last day.
func QuarterWindow(year, quarter int, loc *time.Location) (TimeWindow, error) {
	if quarter < 1 || quarter > 4 {
		return TimeWindow{}, fmt.Errorf("quarter must be 1..4, got %d", quarter)
	}
	startMonth := time.Month(3*(quarter-1) + 1)
	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 3, 0).Add(-time.Microsecond)
	return TimeWindow{Start: start, End: end}, nil
}

// CustomWindow returns the whole-day inclusive range between two dates. The
// time-of-day of the arguments is ignored.
func CustomWindow(startDate, endDate time.Time, loc *time.Location) (TimeWindow, error) {
	start := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, loc)
	end := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 0, 0, 0, 0, loc).
		AddDate(0, 0, 1).Add(-time.Microsecond)
	if end.Before(start) {
		return TimeWindow{}, fmt.Errorf("window end %s precedes start %s", endDate.Format("2006-01-02"), startDate.Format("2006-01-02"))
	}
	return TimeWindow{Start: start, End: end}, nil
}

// RelativeWindow returns the trailing months up to now.
func RelativeWindow(months int, loc *time.Location, now time.Time) (TimeWindow, error) {
	if months < 1 {
		return TimeWindow{}, fmt.Errorf("months must be positive, got %d", months)
	}
	now = now.In(loc)
	return TimeWindow{Start: now.AddDate(0, -months, 0), End: now}, nil
}

// MonthSlice is one month of a larger window, labelled for report output.
type MonthSlice struct {
	Label  string
	Window TimeWindow
}

// SplitByMonth slices a window into calendar months. The first and last
// slice are clipped to the window's own bounds.
func SplitByMonth(w TimeWindow) []MonthSlice {
	var slices []MonthSlice
	cursor := time.Date(w.Start.Year(), w.Start.Month(), 1, 0, 0, 0, 0, w.Start.Location())

	for !cursor.After(w.End) {
		next := cursor.AddDate(0, 1, 0)
		slice := TimeWindow{Start: cursor, End: next.Add(-time.Microsecond)}
		if slice.Start.Before(w.Start) {
			slice.Start = w.Start
		}
		if slice.End.After(w.End) {
			slice.End = w.End
		}
		slices = append(slices, MonthSlice{
			Label:  cursor.Format("Jan 2006"),
			Window: slice,
		})
		cursor = next
	}
	return slices
}

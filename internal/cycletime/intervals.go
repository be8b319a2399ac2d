package cycletime

import "time"

// Status changes regularly land minutes after the hand-off that prompted
// them. A transition up to four hours past an assignment end, on the same
// calendar day, is still attributed to the outgoing assignee.
const assignmentGrace = 4 * time.Hour

// Interval is a time range with an optional end. End == nil means the range
// was still open when the history was read.
type Interval struct {
	Start time.Time
	End   *time.Time
}

// assignmentIntervals folds assignee events into the periods during which
// workerID owned the issue. Re-assigning the same worker restarts the open
// period; a change between two other people leaves the tracked state alone.
func assignmentIntervals(assignees []ChangeEvent, workerID string) []Interval {
	var intervals []Interval
	current := ""
	var openStart *time.Time

	for _, ev := range assignees {
		switch {
		case current == workerID && ev.ToID != workerID:
			if openStart != nil {
				end := ev.At
				intervals = append(intervals, Interval{Start: *openStart, End: &end})
			}
			current = ev.ToID
			openStart = nil
		case ev.ToID == workerID:
			current = workerID
			start := ev.At
			openStart = &start
		}
	}
	if current == workerID && openStart != nil {
		intervals = append(intervals, Interval{Start: *openStart})
	}
	return intervals
}

// inAssignment reports whether t falls inside any of the intervals. A nil
// slice means no worker filter and matches everything. Closed intervals
// extend by the same-day grace window.
func inAssignment(t time.Time, intervals []Interval) bool {
	if intervals == nil {
		return true
	}
	for _, iv := range intervals {
		if iv.End == nil {
			if !t.Before(iv.Start) {
				return true
			}
			continue
		}
		if !t.Before(iv.Start) && !t.After(*iv.End) {
			return true
		}
		if t.After(*iv.End) && sameDay(t, *iv.End) && t.Sub(*iv.End) <= assignmentGrace {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

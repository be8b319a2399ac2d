package cycletime

import "time"

// findCycles folds status transitions into open→close work cycles. A cycle
// opens on a transition into the in-progress set with no cycle open and
// closes on the next transition into the done set; both ends must fall
// inside the worker's assignment intervals when a filter is active. A
// trailing open cycle is returned with a nil end.
func (e *Engine) findCycles(statuses []ChangeEvent, intervals []Interval) []Interval {
	var cycles []Interval
	var openStart *time.Time

	for _, ev := range statuses {
		switch {
		case e.inProgress[ev.To] && openStart == nil:
			if inAssignment(ev.At, intervals) {
				start := ev.At
				openStart = &start
			}
		case e.done[ev.To] && openStart != nil:
			if inAssignment(ev.At, intervals) {
				end := ev.At
				cycles = append(cycles, Interval{Start: *openStart, End: &end})
				openStart = nil
			}
		}
	}
	if openStart != nil {
		cycles = append(cycles, Interval{Start: *openStart})
	}
	return cycles
}

// hasReopening reports whether the issue ever moved from a done status back
// into an in-progress one.
func (e *Engine) hasReopening(statuses []ChangeEvent) bool {
	previous := ""
	for _, ev := range statuses {
		if e.done[previous] && e.inProgress[ev.To] {
			return true
		}
		previous = ev.To
	}
	return false
}

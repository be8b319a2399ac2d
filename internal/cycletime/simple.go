package cycletime

import "time"

// calculateSimple handles issues with a clean, linear flow: the earliest
// transition into an in-progress status opens the cycle and the first later
// transition into a done status closes it. Reopened issues take the
// cycle-summing path instead. Worker identity plays no role here; the
// selector routes filtered calculations to the complex strategy.
func (e *Engine) calculateSimple(idx *EventIndex, issueKey string) Result {
	statuses := idx.Statuses()
	if e.hasReopening(statuses) {
		return e.calculateWithCycles(idx, issueKey, nil)
	}

	start := e.firstInProgress(statuses)
	if start == nil {
		return Result{IssueKey: issueKey}
	}
	end := e.firstDoneAfter(statuses, *start)
	if end == nil {
		return Result{IssueKey: issueKey, InProgressAt: start}
	}

	active, excluded, impediment := e.accounting(idx, *start, *end, issueKey)
	return Result{
		IssueKey:          issueKey,
		InProgressAt:      start,
		DoneAt:            end,
		Seconds:           &active,
		ExcludedSeconds:   &excluded,
		ImpedimentSeconds: &impediment,
	}
}

// calculateWithCycles sums active time over every completed work cycle.
// Both strategies use it for reopened issues. InProgressAt is the earliest
// cycle start, DoneAt the latest completed end; an issue whose only cycle
// is still open reports just InProgressAt.
func (e *Engine) calculateWithCycles(idx *EventIndex, issueKey string, intervals []Interval) Result {
	cycles := e.findCycles(idx.Statuses(), intervals)
	if len(cycles) == 0 {
		return Result{IssueKey: issueKey}
	}

	var totalActive, totalExcluded, totalImpediment float64
	var first, last *time.Time

	for _, c := range cycles {
		if first == nil || c.Start.Before(*first) {
			start := c.Start
			first = &start
		}
		if c.End == nil {
			continue
		}
		if last == nil || c.End.After(*last) {
			end := *c.End
			last = &end
		}
		active, excluded, impediment := e.accounting(idx, c.Start, *c.End, issueKey)
		totalActive += active
		totalExcluded += excluded
		totalImpediment += impediment
	}

	if last == nil {
		return Result{IssueKey: issueKey, InProgressAt: first}
	}
	return Result{
		IssueKey:          issueKey,
		InProgressAt:      first,
		DoneAt:            last,
		Seconds:           &totalActive,
		ExcludedSeconds:   &totalExcluded,
		ImpedimentSeconds: &totalImpediment,
	}
}

// firstInProgress returns the earliest transition into an in-progress
// status, with no veto and no filtering.
func (e *Engine) firstInProgress(statuses []ChangeEvent) *time.Time {
	for _, ev := range statuses {
		if e.inProgress[ev.To] {
			t := ev.At
			return &t
		}
	}
	return nil
}

// firstDoneAfter returns the earliest transition into a done status
// strictly after start.
func (e *Engine) firstDoneAfter(statuses []ChangeEvent, start time.Time) *time.Time {
	for _, ev := range statuses {
		if ev.At.After(start) && e.done[ev.To] {
			t := ev.At
			return &t
		}
	}
	return nil
}

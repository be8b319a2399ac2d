package cycletime

import "time"

// calculateComplex handles the messy flows: worker filtering, hand-offs,
// authorship fallbacks, reopening and the QA start patterns.
func (e *Engine) calculateComplex(idx *EventIndex, issueKey, workerID string) Result {
	if e.qa && workerID != "" {
		if result, ok := e.calculateQA(idx, issueKey, workerID); ok {
			return result
		}
	}

	var intervals []Interval
	if workerID != "" {
		intervals = assignmentIntervals(idx.Assignees(), workerID)
		if len(intervals) == 0 {
			if !e.authoredTransitions(idx.Statuses(), workerID) {
				// Never assigned, never moved the card: not their work.
				return Result{IssueKey: issueKey}
			}
			// The worker drove the card through the workflow without a
			// formal assignment; keep the calculation unfiltered.
		}
	}

	if e.hasReopening(idx.Statuses()) {
		return e.calculateWithCycles(idx, issueKey, intervals)
	}

	start := e.findWorkStart(idx, intervals)
	if start == nil {
		return Result{IssueKey: issueKey}
	}
	end := e.findCompletion(idx, *start, workerID, intervals)
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

// startCandidate is an in-progress transition considered as the beginning
// of work, with its lookahead verdict.
type startCandidate struct {
	at    time.Time
	leads bool
}

// findWorkStart picks the instant work began. The earliest in-progress
// transition that does not immediately lead into a non-work status wins;
// when it predates the worker's first assignment, a hand-off anchors the
// cycle at the assignment instant while a first assignment onto in-flight
// work keeps the original transition.
func (e *Engine) findWorkStart(idx *EventIndex, intervals []Interval) *time.Time {
	statuses := idx.Statuses()

	var all []startCandidate
	for i, ev := range statuses {
		if !e.inProgress[ev.To] || e.nonWork[ev.To] {
			continue
		}
		all = append(all, startCandidate{at: ev.At, leads: e.leadsToNonWork(statuses, i)})
	}

	valid := make([]startCandidate, 0, len(all))
	for _, c := range all {
		if !c.leads {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		// Every start was parked right away; a parked start beats none.
		valid = all
	}
	if len(valid) == 0 {
		if intervals != nil {
			return e.handoffStart(idx, intervals)
		}
		return nil
	}

	first := valid[0].at
	if intervals == nil {
		return &first
	}
	if inAssignment(first, intervals) {
		return &first
	}

	if handoff := e.handoffStart(idx, intervals); handoff != nil {
		return handoff
	}
	if e.inProgress[statusAt(statuses, intervals[0].Start)] {
		// First assignment onto an already in-flight issue: the work
		// started at the status change, not at the assignment.
		return &first
	}

	for _, c := range valid {
		if inAssignment(c.at, intervals) {
			at := c.at
			return &at
		}
	}
	return nil
}

// leadsToNonWork looks ahead from one in-progress transition. Landing in a
// non-work status before the next in-progress status marks the start as
// spurious.
func (e *Engine) leadsToNonWork(statuses []ChangeEvent, from int) bool {
	for _, ev := range statuses[from+1:] {
		if e.nonWork[ev.To] {
			return true
		}
		if e.inProgress[ev.To] {
			return false
		}
	}
	return false
}

// handoffStart checks whether the worker's first assignment landed on an
// issue already in progress under somebody else. Only a true hand-off
// anchors the cycle at the assignment instant; taking over previously
// unassigned work does not.
func (e *Engine) handoffStart(idx *EventIndex, intervals []Interval) *time.Time {
	if len(intervals) == 0 {
		return nil
	}
	assignedAt := intervals[0].Start

	status := ""
	previous := ""
	for _, ev := range idx.Events() {
		if ev.At.After(assignedAt) {
			break
		}
		switch ev.Kind {
		case KindStatus:
			status = ev.To
		case KindAssignee:
			// Strictly before, so the assignment itself is not counted
			// as its own predecessor.
			if ev.At.Before(assignedAt) {
				previous = ev.ToID
			}
		}
	}
	if e.inProgress[status] && previous != "" {
		return &assignedAt
	}
	return nil
}

// findCompletion returns the first completion strictly after start. A
// transition into a done status always wins over a resolution change, even
// when the resolution came first.
func (e *Engine) findCompletion(idx *EventIndex, start time.Time, workerID string, intervals []Interval) *time.Time {
	var resolved *time.Time
	for _, ev := range idx.Events() {
		if !ev.At.After(start) || !inAssignment(ev.At, intervals) {
			continue
		}
		switch ev.Kind {
		case KindStatus:
			if e.done[ev.To] {
				t := ev.At
				return &t
			}
		case KindResolution:
			if resolved == nil && resolutionCompletes(ev, workerID) {
				t := ev.At
				resolved = &t
			}
		}
	}
	return resolved
}

// resolutionCompletes decides whether a resolution change counts as a
// completion. "Won't Do" only counts when the target worker set it; any
// other non-empty resolution counts regardless of author.
func resolutionCompletes(ev ChangeEvent, workerID string) bool {
	switch ev.To {
	case "won't do", "wont do":
		return workerID == "" || ev.Author == workerID
	case "", "none":
		return false
	default:
		return true
	}
}

// authoredTransitions reports whether the worker personally moved the issue
// into an in-progress or done status.
func (e *Engine) authoredTransitions(statuses []ChangeEvent, workerID string) bool {
	for _, ev := range statuses {
		if ev.Author != workerID {
			continue
		}
		if e.inProgress[ev.To] || e.done[ev.To] {
			return true
		}
	}
	return false
}

// QA work rarely begins with an in-progress transition. Three patterns mark
// the real start: pulling the item out of the backlog, being assigned while
// it sits in Acceptance, or being assigned during review and then moving it
// from In Review to Acceptance. The cycle ends with the first status change
// that leaves the start status.
func (e *Engine) calculateQA(idx *EventIndex, issueKey, workerID string) (Result, bool) {
	start, startStatus, ok := e.qaStart(idx, workerID)
	if !ok {
		return Result{}, false
	}
	end := qaEnd(idx.Statuses(), start, startStatus)
	if end == nil {
		return Result{IssueKey: issueKey, InProgressAt: &start}, true
	}

	active, excluded, impediment := e.accounting(idx, start, *end, issueKey)
	return Result{
		IssueKey:          issueKey,
		InProgressAt:      &start,
		DoneAt:            end,
		Seconds:           &active,
		ExcludedSeconds:   &excluded,
		ImpedimentSeconds: &impediment,
	}, true
}

// qaStart returns the earliest match among the three QA start patterns,
// together with the status the cycle starts in.
func (e *Engine) qaStart(idx *EventIndex, workerID string) (time.Time, string, bool) {
	statuses := idx.Statuses()

	var best time.Time
	bestStatus := ""
	found := false
	consider := func(t time.Time, status string) {
		if !found || t.Before(best) {
			best, bestStatus, found = t, status, true
		}
	}

	for _, ev := range statuses {
		if ev.From == "backlog" && ev.Author == workerID {
			consider(ev.At, ev.To)
		}
	}

	var reviewAssigned *time.Time
	for _, ev := range idx.Assignees() {
		if ev.ToID != workerID {
			continue
		}
		switch statusAt(statuses, ev.At) {
		case "acceptance":
			if ev.Author == workerID {
				consider(ev.At, "acceptance")
			}
		case "in review":
			if reviewAssigned == nil {
				t := ev.At
				reviewAssigned = &t
			}
		}
	}
	if reviewAssigned != nil {
		for _, ev := range statuses {
			if ev.At.After(*reviewAssigned) && ev.Author == workerID &&
				ev.From == "in review" && ev.To == "acceptance" {
				consider(ev.At, "acceptance")
				break
			}
		}
	}

	if !found {
		return time.Time{}, "", false
	}
	return best, bestStatus, true
}

// qaEnd is the first status change after start that leaves the start
// status.
func qaEnd(statuses []ChangeEvent, start time.Time, startStatus string) *time.Time {
	for _, ev := range statuses {
		if !ev.At.After(start) {
			continue
		}
		if ev.From == startStatus && ev.To != startStatus {
			t := ev.At
			return &t
		}
	}
	return nil
}

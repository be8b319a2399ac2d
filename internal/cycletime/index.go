package cycletime

import (
	"slices"
	"strings"
	"time"

	"flowtime/internal/jira"
)

// EventIndex is a chronologically sorted view over an issue's change
// history. The sort is stable: events with equal timestamps keep the order
// of the entries, and of the items inside an entry, they came from. All
// strategy code consumes this view, never the raw history.
type EventIndex struct {
	events      []ChangeEvent
	statuses    []ChangeEvent
	assignees   []ChangeEvent
	flags       []ChangeEvent
	resolutions []ChangeEvent
}

// newEventIndex decodes and sorts a raw history. Entries whose created
// timestamp does not parse are dropped; they cannot take part in any
// ordering decision.
func newEventIndex(histories []jira.ChangeHistory, skew time.Duration) *EventIndex {
	var events []ChangeEvent
	for _, h := range histories {
		at, ok := parseTimestamp(h.Created, skew)
		if !ok {
			continue
		}
		for _, item := range h.Items {
			events = append(events, ChangeEvent{
				At:     at,
				Kind:   fieldKind(item.Field),
				Author: h.Author.AccountID,
				From:   canon(item.FromString),
				To:     canon(item.ToString),
				FromID: strings.TrimSpace(item.From),
				ToID:   strings.TrimSpace(item.To),
			})
		}
	}
	slices.SortStableFunc(events, func(a, b ChangeEvent) int {
		return a.At.Compare(b.At)
	})

	idx := &EventIndex{events: events}
	for _, ev := range events {
		switch ev.Kind {
		case KindStatus:
			idx.statuses = append(idx.statuses, ev)
		case KindAssignee:
			idx.assignees = append(idx.assignees, ev)
		case KindFlagged:
			idx.flags = append(idx.flags, ev)
		case KindResolution:
			idx.resolutions = append(idx.resolutions, ev)
		}
	}
	return idx
}

// Events returns every decoded event in chronological order.
func (x *EventIndex) Events() []ChangeEvent { return x.events }

// Statuses returns the status transitions in chronological order.
func (x *EventIndex) Statuses() []ChangeEvent { return x.statuses }

// Assignees returns the assignee changes in chronological order.
func (x *EventIndex) Assignees() []ChangeEvent { return x.assignees }

// Flags returns the Flagged field changes in chronological order.
func (x *EventIndex) Flags() []ChangeEvent { return x.flags }

// Resolutions returns the resolution changes in chronological order.
func (x *EventIndex) Resolutions() []ChangeEvent { return x.resolutions }

// statusAt replays status transitions up to and including t and returns the
// status the issue held at that instant, or "" when no transition had
// happened yet.
func statusAt(statuses []ChangeEvent, t time.Time) string {
	current := ""
	for _, ev := range statuses {
		if ev.At.After(t) {
			break
		}
		current = ev.To
	}
	return current
}

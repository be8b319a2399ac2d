package cycletime

import (
	"testing"
	"time"

	"flowtime/internal/jira"
)

func TestEventIndexSortsChronologically(t *testing.T) {
	histories := []jira.ChangeHistory{
		statusChange(raw(5, 9, 0), "alice", "In Development", "Done"),
		statusChange(raw(1, 9, 0), "alice", "Backlog", "In Development"),
		assigneeChange(raw(3, 9, 0), "bob", "", "bob"),
	}

	idx := newEventIndex(histories, time.Hour)
	events := idx.Events()
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].At.Before(events[i-1].At) {
			t.Fatalf("events out of order at %d: %v before %v", i, events[i].At, events[i-1].At)
		}
	}
	if events[0].To != "in development" {
		t.Errorf("first event To = %q, want lowercased status", events[0].To)
	}
}

func TestEventIndexStableTies(t *testing.T) {
	// Two items inside one entry share a timestamp and must keep entry order.
	histories := []jira.ChangeHistory{
		{
			Created: raw(1, 9, 0),
			Author:  jira.AuthorDTO{AccountID: "alice"},
			Items: []jira.ChangeItem{
				{Field: "status", FromString: "Backlog", ToString: "In Development"},
				{Field: "assignee", To: "alice"},
			},
		},
		statusChange(raw(1, 9, 0), "bob", "In Development", "In Review"),
	}

	idx := newEventIndex(histories, time.Hour)
	events := idx.Events()
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Kind != KindStatus || events[0].To != "in development" {
		t.Errorf("event 0 = %+v, want the first entry's status item", events[0])
	}
	if events[1].Kind != KindAssignee {
		t.Errorf("event 1 = %+v, want the first entry's assignee item", events[1])
	}
	if events[2].To != "in review" {
		t.Errorf("event 2 = %+v, want the second entry's status item", events[2])
	}
}

func TestEventIndexDropsUnparseableTimestamps(t *testing.T) {
	histories := []jira.ChangeHistory{
		statusChange("not a timestamp", "alice", "Backlog", "In Development"),
		statusChange(raw(2, 9, 0), "alice", "Backlog", "In Development"),
	}

	idx := newEventIndex(histories, time.Hour)
	if len(idx.Events()) != 1 {
		t.Fatalf("got %d events, want 1 (bad timestamp dropped)", len(idx.Events()))
	}
	if !idx.Events()[0].At.Equal(corrected(2, 9, 0)) {
		t.Errorf("surviving event at %v, want %v", idx.Events()[0].At, corrected(2, 9, 0))
	}
}

func TestEventIndexPerKindViews(t *testing.T) {
	histories := []jira.ChangeHistory{
		statusChange(raw(1, 9, 0), "alice", "Backlog", "In Development"),
		assigneeChange(raw(2, 9, 0), "alice", "", "alice"),
		flagChange(raw(3, 9, 0), "Impediment"),
		resolutionChange(raw(4, 9, 0), "alice", "Fixed"),
		{
			Created: raw(5, 9, 0),
			Items:   []jira.ChangeItem{{Field: "Sprint", ToString: "Sprint 12"}},
		},
	}

	idx := newEventIndex(histories, time.Hour)
	if got := len(idx.Statuses()); got != 1 {
		t.Errorf("Statuses = %d, want 1", got)
	}
	if got := len(idx.Assignees()); got != 1 {
		t.Errorf("Assignees = %d, want 1", got)
	}
	if got := len(idx.Flags()); got != 1 {
		t.Errorf("Flags = %d, want 1", got)
	}
	if got := len(idx.Resolutions()); got != 1 {
		t.Errorf("Resolutions = %d, want 1", got)
	}
	if got := len(idx.Events()); got != 5 {
		t.Errorf("Events = %d, want 5 (unknown fields kept as Other)", got)
	}
}

func TestStatusAt(t *testing.T) {
	statuses := []ChangeEvent{
		{At: corrected(1, 9, 0), To: "in development"},
		{At: corrected(3, 9, 0), To: "acceptance"},
	}

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"before any transition", corrected(1, 8, 0), ""},
		{"exactly at a transition", corrected(1, 9, 0), "in development"},
		{"between transitions", corrected(2, 0, 0), "in development"},
		{"after the last", corrected(4, 0, 0), "acceptance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusAt(statuses, tt.at); got != tt.want {
				t.Errorf("statusAt(%v) = %q, want %q", tt.at, got, tt.want)
			}
		})
	}
}

package cycletime

import (
	"fmt"
	"time"

	"flowtime/internal/jira"
)

// Test fixtures live in June 2025. Raw changelog timestamps are written in
// UTC and the engine's one-hour skew correction applies, so an event raised
// at raw(1, 9, 0) is observed at corrected(1, 10, 0).

func raw(day, hour, min int) string {
	return fmt.Sprintf("2025-06-%02dT%02d:%02d:00.000+0000", day, hour, min)
}

func corrected(day, hour, min int) time.Time {
	return time.Date(2025, 6, day, hour+1, min, 0, 0, time.UTC)
}

func statusChange(created, author, from, to string) jira.ChangeHistory {
	return jira.ChangeHistory{
		Created: created,
		Author:  jira.AuthorDTO{AccountID: author},
		Items:   []jira.ChangeItem{{Field: "status", FromString: from, ToString: to}},
	}
}

func assigneeChange(created, author, from, to string) jira.ChangeHistory {
	return jira.ChangeHistory{
		Created: created,
		Author:  jira.AuthorDTO{AccountID: author},
		Items:   []jira.ChangeItem{{Field: "assignee", From: from, To: to}},
	}
}

func flagChange(created, to string) jira.ChangeHistory {
	return jira.ChangeHistory{
		Created: created,
		Items:   []jira.ChangeItem{{Field: "Flagged", ToString: to}},
	}
}

func resolutionChange(created, author, to string) jira.ChangeHistory {
	return jira.ChangeHistory{
		Created: created,
		Author:  jira.AuthorDTO{AccountID: author},
		Items:   []jira.ChangeItem{{Field: "resolution", ToString: to}},
	}
}

func defaultVocabulary() Vocabulary {
	return Vocabulary{
		InProgress: []string{"In Development", "In Review"},
		Done:       []string{"Done", "Closed"},
		Excluded:   []string{"Acceptance"},
	}
}

func newTestEngine(t interface{ Fatalf(string, ...any) }, vocab Vocabulary, opts Options) *Engine {
	e, err := New(vocab, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

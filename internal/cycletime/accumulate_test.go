package cycletime

import (
	"testing"
	"time"
)

func spansEqual(t *testing.T, got, want []span) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d spans, want %d: %+v", len(got), len(want), got)
	}
	for i := range got {
		if !got[i].start.Equal(want[i].start) || !got[i].end.Equal(want[i].end) {
			t.Errorf("span %d = [%v, %v], want [%v, %v]", i, got[i].start, got[i].end, want[i].start, want[i].end)
		}
	}
}

func TestExcludedSpans(t *testing.T) {
	e := newTestEngine(t, defaultVocabulary(), Options{})

	statuses := []ChangeEvent{
		statusEvent(corrected(1, 9, 0), "backlog", "in development"),
		statusEvent(corrected(5, 9, 0), "in development", "acceptance"),
		statusEvent(corrected(7, 9, 0), "acceptance", "done"),
	}

	got := e.excludedSpans(statuses, corrected(1, 9, 0), corrected(7, 9, 0))
	spansEqual(t, got, []span{{corrected(5, 9, 0), corrected(7, 9, 0)}})
}

func TestExcludedSpansOpenTail(t *testing.T) {
	e := newTestEngine(t, defaultVocabulary(), Options{})

	statuses := []ChangeEvent{
		statusEvent(corrected(5, 9, 0), "in development", "acceptance"),
	}

	got := e.excludedSpans(statuses, corrected(4, 9, 0), corrected(9, 9, 0))
	spansEqual(t, got, []span{{corrected(5, 9, 0), corrected(9, 9, 0)}})
}

func TestExcludedSpansRestartOnExcludedToExcluded(t *testing.T) {
	vocab := defaultVocabulary()
	vocab.Excluded = []string{"Acceptance", "Feedback"}
	e := newTestEngine(t, vocab, Options{})

	statuses := []ChangeEvent{
		statusEvent(corrected(5, 9, 0), "in development", "acceptance"),
		statusEvent(corrected(6, 9, 0), "acceptance", "feedback"),
		statusEvent(corrected(8, 9, 0), "feedback", "done"),
	}

	// The acceptance→feedback transition restarts the span; the acceptance
	// segment is dropped.
	got := e.excludedSpans(statuses, corrected(4, 9, 0), corrected(8, 9, 0))
	spansEqual(t, got, []span{{corrected(6, 9, 0), corrected(8, 9, 0)}})
}

func TestExcludedSpansNoReplayBeforeWindow(t *testing.T) {
	e := newTestEngine(t, defaultVocabulary(), Options{})

	// The issue entered acceptance before the window. Without replay the
	// prefix is not charged.
	statuses := []ChangeEvent{
		statusEvent(corrected(1, 9, 0), "in development", "acceptance"),
		statusEvent(corrected(6, 9, 0), "acceptance", "done"),
	}

	got := e.excludedSpans(statuses, corrected(3, 9, 0), corrected(7, 9, 0))
	if len(got) != 0 {
		t.Errorf("got %+v, want no spans without pre-window replay", got)
	}
}

func TestImpedimentSpans(t *testing.T) {
	flagEvent := func(at time.Time, to string) ChangeEvent {
		return ChangeEvent{At: at, Kind: KindFlagged, To: to}
	}

	tests := []struct {
		name   string
		flags  []ChangeEvent
		w0, w1 time.Time
		want   []span
	}{
		{
			name: "closed span",
			flags: []ChangeEvent{
				flagEvent(corrected(2, 9, 0), "impediment"),
				flagEvent(corrected(5, 9, 0), "none"),
			},
			w0: corrected(1, 9, 0), w1: corrected(8, 9, 0),
			want: []span{{corrected(2, 9, 0), corrected(5, 9, 0)}},
		},
		{
			name: "empty toString closes too",
			flags: []ChangeEvent{
				flagEvent(corrected(2, 9, 0), "impediment"),
				flagEvent(corrected(4, 9, 0), ""),
			},
			w0: corrected(1, 9, 0), w1: corrected(8, 9, 0),
			want: []span{{corrected(2, 9, 0), corrected(4, 9, 0)}},
		},
		{
			name: "open at window end",
			flags: []ChangeEvent{
				flagEvent(corrected(2, 9, 0), "impediment"),
			},
			w0: corrected(1, 9, 0), w1: corrected(8, 9, 0),
			want: []span{{corrected(2, 9, 0), corrected(8, 9, 0)}},
		},
		{
			name: "re-flagging restarts the span",
			flags: []ChangeEvent{
				flagEvent(corrected(2, 9, 0), "impediment"),
				flagEvent(corrected(3, 9, 0), "impediment"),
				flagEvent(corrected(5, 9, 0), "none"),
			},
			w0: corrected(1, 9, 0), w1: corrected(8, 9, 0),
			want: []span{{corrected(3, 9, 0), corrected(5, 9, 0)}},
		},
		{
			name: "other flag values leave state alone",
			flags: []ChangeEvent{
				flagEvent(corrected(2, 9, 0), "impediment"),
				flagEvent(corrected(3, 9, 0), "blocked externally"),
				flagEvent(corrected(5, 9, 0), "none"),
			},
			w0: corrected(1, 9, 0), w1: corrected(8, 9, 0),
			want: []span{{corrected(2, 9, 0), corrected(5, 9, 0)}},
		},
		{
			name: "events outside the window are ignored",
			flags: []ChangeEvent{
				flagEvent(corrected(1, 9, 0), "impediment"),
				flagEvent(corrected(5, 9, 0), "none"),
			},
			w0: corrected(3, 9, 0), w1: corrected(8, 9, 0),
			want: []span{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := impedimentSpans(tt.flags, tt.w0, tt.w1)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			spansEqual(t, got, tt.want)
		})
	}
}

func TestOverlapSeconds(t *testing.T) {
	day := func(d int) time.Time { return corrected(d, 0, 0) }

	tests := []struct {
		name string
		a, b []span
		want float64
	}{
		{
			name: "partial overlap",
			a:    []span{{day(3), day(7)}},
			b:    []span{{day(2), day(5)}},
			want: 2 * 86400,
		},
		{
			name: "disjoint",
			a:    []span{{day(1), day(2)}},
			b:    []span{{day(3), day(4)}},
			want: 0,
		},
		{
			name: "containment",
			a:    []span{{day(1), day(10)}},
			b:    []span{{day(3), day(5)}},
			want: 2 * 86400,
		},
		{
			name: "multiple pairs",
			a:    []span{{day(1), day(3)}, {day(6), day(9)}},
			b:    []span{{day(2), day(7)}},
			want: (1 + 1) * 86400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := overlapSeconds(tt.a, tt.b); got != tt.want {
				t.Errorf("overlapSeconds = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccountingIdentity(t *testing.T) {
	vocab := defaultVocabulary()
	vocab.Excluded = []string{"Feedback"}
	e := newTestEngine(t, vocab, Options{})

	idx := newEventIndex(nil, time.Hour)
	idx.statuses = []ChangeEvent{
		statusEvent(corrected(1, 9, 0), "backlog", "in development"),
		statusEvent(corrected(4, 9, 0), "in development", "feedback"),
		statusEvent(corrected(8, 9, 0), "feedback", "in development"),
	}
	idx.flags = []ChangeEvent{
		{At: corrected(3, 9, 0), Kind: KindFlagged, To: "impediment"},
		{At: corrected(6, 9, 0), Kind: KindFlagged, To: "none"},
	}

	w0, w1 := corrected(1, 9, 0), corrected(9, 9, 0)
	active, excluded, impediment := e.accounting(idx, w0, w1, "FLOW-1")

	window := w1.Sub(w0).Seconds()
	overlap := excluded + impediment + active - window
	if overlap < 0 {
		t.Fatalf("identity violated: active %v + excluded %v + impediment %v < window %v", active, excluded, impediment, window)
	}
	if excluded != 4*86400 {
		t.Errorf("excluded = %v, want 4 days", excluded)
	}
	if impediment != 3*86400 {
		t.Errorf("impediment = %v, want 3 days", impediment)
	}
	// Overlap of feedback [D4,D8] and impediment [D3,D6] is two days.
	if want := 8*86400 - excluded - impediment + 2*86400; active != want {
		t.Errorf("active = %v, want %v", active, want)
	}
}

func TestAccountingClampsNegative(t *testing.T) {
	var clampedKey string
	var clampedBy time.Duration
	opts := Options{OnClamp: func(issueKey string, deficit time.Duration) {
		clampedKey = issueKey
		clampedBy = deficit
	}}
	e := newTestEngine(t, defaultVocabulary(), opts)

	// A reversed window is the only way a well-formed history produces a
	// negative total; the clamp and its diagnostic hook still have to hold.
	idx := newEventIndex(nil, time.Hour)
	active, _, _ := e.accounting(idx, corrected(5, 9, 0), corrected(4, 9, 0), "FLOW-9")

	if active != 0 {
		t.Errorf("active = %v, want clamped 0", active)
	}
	if clampedKey != "FLOW-9" {
		t.Errorf("OnClamp issue = %q, want FLOW-9", clampedKey)
	}
	if clampedBy >= 0 {
		t.Errorf("OnClamp deficit = %v, want negative", clampedBy)
	}
}

package cycletime

import (
	"strings"
	"time"
)

// FieldKind classifies the change-item fields the engine understands.
type FieldKind int

const (
	KindOther FieldKind = iota
	KindStatus
	KindAssignee
	KindFlagged
	KindResolution
)

// fieldKind decodes a raw field name. Matching is case-insensitive;
// anything unknown maps to KindOther.
func fieldKind(name string) FieldKind {
	switch strings.ToLower(name) {
	case "status":
		return KindStatus
	case "assignee":
		return KindAssignee
	case "flagged":
		return KindFlagged
	case "resolution":
		return KindResolution
	default:
		return KindOther
	}
}

// ChangeEvent is one decoded field change. From and To carry the trimmed,
// lowercased display values (status, flag and resolution names); FromID and
// ToID carry the raw actor account IDs of assignee changes. Author is the
// account ID of the history entry's actor and may be empty.
type ChangeEvent struct {
	At     time.Time
	Kind   FieldKind
	Author string
	From   string
	To     string
	FromID string
	ToID   string
}

// Jira mostly emits ISO-8601 with a ±HHMM offset, but exports and older
// servers produce the colon form, a trailing Z, or a bare local time.
// Fractional seconds parse under all three layouts.
var timeLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// parseTimestamp converts a vendor timestamp to a UTC instant shifted by
// skew. A naïve timestamp is read as UTC. The second return is false when
// the value cannot be parsed.
func parseTimestamp(value string, skew time.Duration) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Add(skew), true
		}
	}
	return time.Time{}, false
}

func canon(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

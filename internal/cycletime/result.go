package cycletime

import "time"

// Result is the outcome of one cycle time calculation. The pointer fields
// distinguish "not determined" from zero: an issue that never entered an
// in-progress status carries only its key, an issue still in flight carries
// only InProgressAt, and a completed issue carries all five.
type Result struct {
	IssueKey          string     `json:"issueKey"`
	InProgressAt      *time.Time `json:"inProgressAt,omitempty"`
	DoneAt            *time.Time `json:"doneAt,omitempty"`
	Seconds           *float64   `json:"seconds,omitempty"`
	ExcludedSeconds   *float64   `json:"excludedSeconds,omitempty"`
	ImpedimentSeconds *float64   `json:"impedimentSeconds,omitempty"`
}

// Completed reports whether both ends of the cycle were found.
func (r Result) Completed() bool {
	return r.Seconds != nil
}

package cycletime

import (
	"time"

	"github.com/rs/zerolog/log"
)

// span is a closed interval inside one accounting window. The collectors
// below emit ordered, mutually disjoint lists, which the overlap merge
// relies on.
type span struct {
	start, end time.Time
}

// excludedSpans collects the periods inside [w0, w1] spent in an excluded
// status. Only transitions inside the window are observed; the status held
// before w0 is not replayed. A transition between two excluded statuses
// restarts the span.
func (e *Engine) excludedSpans(statuses []ChangeEvent, w0, w1 time.Time) []span {
	var spans []span
	current := ""
	var start time.Time

	for _, ev := range statuses {
		if ev.At.Before(w0) || ev.At.After(w1) {
			continue
		}
		if e.excluded[current] && !e.excluded[ev.To] {
			spans = append(spans, span{start, ev.At})
		}
		current, start = ev.To, ev.At
	}
	if e.excluded[current] {
		spans = append(spans, span{start, w1})
	}
	return spans
}

// impedimentSpans collects the periods inside [w0, w1] during which the
// Flagged field read "Impediment". Clearing the flag ("None" or empty)
// closes the span, re-flagging restarts it, and a span still open at w1
// ends there.
func impedimentSpans(flags []ChangeEvent, w0, w1 time.Time) []span {
	var spans []span
	flagged := false
	var start time.Time

	for _, ev := range flags {
		if ev.At.Before(w0) || ev.At.After(w1) {
			continue
		}
		if flagged && (ev.To == "" || ev.To == "none") {
			spans = append(spans, span{start, ev.At})
			flagged = false
		}
		if ev.To == "impediment" {
			flagged = true
			start = ev.At
		}
	}
	if flagged {
		spans = append(spans, span{start, w1})
	}
	return spans
}

func sumSpans(spans []span) float64 {
	var total float64
	for _, s := range spans {
		total += s.end.Sub(s.start).Seconds()
	}
	return total
}

// overlapSeconds merges two ordered disjoint span lists and returns the
// total time covered by both.
func overlapSeconds(a, b []span) float64 {
	var total float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := a[i].start
		if b[j].start.After(start) {
			start = b[j].start
		}
		end := a[i].end
		if b[j].end.Before(end) {
			end = b[j].end
		}
		if end.After(start) {
			total += end.Sub(start).Seconds()
		}
		if a[i].end.Before(b[j].end) {
			i++
		} else {
			j++
		}
	}
	return total
}

// accounting computes the active, excluded and impediment seconds for one
// window. The overlap between excluded and impediment periods is added back
// so it is never subtracted twice. Active time cannot go negative: a
// deficit is clamped to zero and reported through Options.OnClamp.
func (e *Engine) accounting(idx *EventIndex, w0, w1 time.Time, issueKey string) (active, excluded, impediment float64) {
	exSpans := e.excludedSpans(idx.Statuses(), w0, w1)
	imSpans := impedimentSpans(idx.Flags(), w0, w1)

	excluded = sumSpans(exSpans)
	impediment = sumSpans(imSpans)
	overlap := overlapSeconds(exSpans, imSpans)

	active = w1.Sub(w0).Seconds() - excluded - impediment + overlap
	if active < 0 {
		deficit := time.Duration(active * float64(time.Second))
		log.Warn().Str("issue", issueKey).Dur("deficit", deficit).Msg("Active time went negative, clamping to zero")
		if e.opts.OnClamp != nil {
			e.opts.OnClamp(issueKey, deficit)
		}
		active = 0
	}
	return active, excluded, impediment
}

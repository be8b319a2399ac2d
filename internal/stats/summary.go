package stats

import "flowtime/internal/cycletime"

const secondsPerDay = 86400

// Summary aggregates the completed cycle times of one report window.
type Summary struct {
	Count      int     `json:"count"`
	AvgDays    float64 `json:"avgDays"`
	MedianDays float64 `json:"medianDays"`
	P75Days    float64 `json:"p75Days"`
	P90Days    float64 `json:"p90Days"`
	MaxDays    float64 `json:"maxDays"`
}

// Summarize reduces a batch of results to its summary statistics. Results
// without a completed cycle are skipped; an empty batch yields a zero
// Summary.
func Summarize(results []cycletime.Result) Summary {
	var days []float64
	for _, r := range results {
		if r.Completed() {
			days = append(days, *r.Seconds/secondsPerDay)
		}
	}
	if len(days) == 0 {
		return Summary{}
	}
	return Summary{
		Count:      len(days),
		AvgDays:    Mean(days),
		MedianDays: Median(days),
		P75Days:    Percentile(days, 75),
		P90Days:    Percentile(days, 90),
		MaxDays:    Max(days),
	}
}

// Package cycletime computes active cycle time for issues from their raw
// change histories: when work started, when it ended, and how much of that
// window was genuinely active after subtracting time in excluded statuses
// and time flagged as an impediment.
package cycletime

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"flowtime/internal/jira"
)

// Strategy names reported by StrategyInfo.
const (
	StrategySimple  = "simple"
	StrategyComplex = "complex"
)

// Vocabulary holds the status names that drive the calculation. Comparisons
// are case-insensitive and the three sets must be disjoint. QA switches the
// complex strategy to the QA start-detection patterns.
type Vocabulary struct {
	InProgress []string
	Done       []string
	Excluded   []string
	QA         bool
}

// Options collects the engine's tuning knobs. Zero fields fall back to the
// values of DefaultOptions.
type Options struct {
	// Skew is added to every parsed timestamp. The tracker's changelog
	// timestamps are known to run one hour behind.
	Skew time.Duration
	// NonWork lists statuses that veto a work-start transition.
	NonWork []string
	// Concurrency bounds the batch fan-out of CalculateMany.
	Concurrency int
	// OnClamp fires when a window's active time would go negative and is
	// clamped to zero. Intended for tests and diagnostics.
	OnClamp func(issueKey string, deficit time.Duration)
}

// DefaultOptions returns the options the CLI runs with: one hour of
// timestamp skew, the standard non-work veto list, and a batch fan-out of
// four.
func DefaultOptions() Options {
	return Options{
		Skew:        time.Hour,
		NonWork:     []string{"on hold", "waiting", "paused", "stopped", "cancelled"},
		Concurrency: 4,
	}
}

// HistoryProvider supplies complete, unordered change histories. Satisfied
// by jira.Client.
type HistoryProvider interface {
	Changelog(ctx context.Context, issueKey string) ([]jira.ChangeHistory, error)
}

// Engine calculates cycle times for a fixed vocabulary. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	inProgress map[string]bool
	done       map[string]bool
	excluded   map[string]bool
	nonWork    map[string]bool
	qa         bool
	opts       Options
}

// New validates the vocabulary and builds an engine.
func New(vocab Vocabulary, opts Options) (*Engine, error) {
	inProgress := statusSet(vocab.InProgress)
	done := statusSet(vocab.Done)
	excluded := statusSet(vocab.Excluded)

	if name := firstOverlap(inProgress, done); name != "" {
		return nil, fmt.Errorf("status vocabulary overlap: %q is both in-progress and done", name)
	}
	if name := firstOverlap(inProgress, excluded); name != "" {
		return nil, fmt.Errorf("status vocabulary overlap: %q is both in-progress and excluded", name)
	}
	if name := firstOverlap(done, excluded); name != "" {
		return nil, fmt.Errorf("status vocabulary overlap: %q is both done and excluded", name)
	}

	defaults := DefaultOptions()
	if opts.Skew == 0 {
		opts.Skew = defaults.Skew
	}
	if opts.NonWork == nil {
		opts.NonWork = defaults.NonWork
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaults.Concurrency
	}

	return &Engine{
		inProgress: inProgress,
		done:       done,
		excluded:   excluded,
		nonWork:    statusSet(opts.NonWork),
		qa:         vocab.QA,
		opts:       opts,
	}, nil
}

func statusSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		if name = canon(name); name != "" {
			set[name] = true
		}
	}
	return set
}

func firstOverlap(a, b map[string]bool) string {
	for name := range a {
		if b[name] {
			return name
		}
	}
	return ""
}

// Calculate runs the full pipeline for one issue. It is deterministic: the
// same history, vocabulary and worker produce the same Result regardless of
// the order the history arrived in.
func (e *Engine) Calculate(histories []jira.ChangeHistory, issueKey, workerID string) Result {
	idx := newEventIndex(histories, e.opts.Skew)
	info := e.strategyFor(idx, workerID)
	log.Debug().
		Str("issue", issueKey).
		Str("strategy", info.Strategy).
		Int("statusEvents", info.StatusEvents).
		Int("assigneeEvents", info.AssigneeEvents).
		Msg("Selected cycle time strategy")

	if info.Strategy == StrategyComplex {
		return e.calculateComplex(idx, issueKey, workerID)
	}
	return e.calculateSimple(idx, issueKey)
}

// StrategyInfo explains which strategy the selector picked and why.
type StrategyInfo struct {
	Strategy       string   `json:"strategy"`
	StatusEvents   int      `json:"statusEvents"`
	AssigneeEvents int      `json:"assigneeEvents"`
	WorkerFilter   bool     `json:"workerFilter"`
	Reasons        []string `json:"reasons,omitempty"`
}

// Strategy reports the selector's decision without running a calculation.
func (e *Engine) Strategy(histories []jira.ChangeHistory, workerID string) StrategyInfo {
	return e.strategyFor(newEventIndex(histories, e.opts.Skew), workerID)
}

func (e *Engine) strategyFor(idx *EventIndex, workerID string) StrategyInfo {
	info := StrategyInfo{
		Strategy:       StrategySimple,
		StatusEvents:   len(idx.Statuses()),
		AssigneeEvents: len(idx.Assignees()),
		WorkerFilter:   workerID != "",
	}
	if info.WorkerFilter {
		info.Reasons = append(info.Reasons, "worker filter requires assignment tracking")
	}
	if info.AssigneeEvents > 2 {
		info.Reasons = append(info.Reasons, fmt.Sprintf("%d assignee changes indicate hand-offs", info.AssigneeEvents))
	}
	if info.StatusEvents > 5 {
		info.Reasons = append(info.Reasons, fmt.Sprintf("%d status changes indicate a complex flow", info.StatusEvents))
	}
	if len(info.Reasons) > 0 {
		info.Strategy = StrategyComplex
	}
	return info
}

// CalculateMany fetches and calculates a batch of issues. Items run in
// parallel up to Options.Concurrency; results keep the order of issueKeys.
// A provider failure on one issue yields an empty Result for that key and
// the batch continues; only cancellation aborts the whole batch.
func (e *Engine) CalculateMany(ctx context.Context, provider HistoryProvider, issueKeys []string, workerID string) ([]Result, error) {
	results := make([]Result, len(issueKeys))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for i, issueKey := range issueKeys {
		i, issueKey := i, issueKey
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			histories, err := provider.Changelog(ctx, issueKey)
			if err != nil {
				log.Warn().Str("issue", issueKey).Err(err).Msg("Changelog fetch failed, recording empty result")
				results[i] = Result{IssueKey: issueKey}
				return nil
			}
			results[i] = e.Calculate(histories, issueKey, workerID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("calculating cycle times: %w", err)
	}
	return results, nil
}

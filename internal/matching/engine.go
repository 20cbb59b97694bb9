package matching

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/erazemk/najdeno/internal/model"
)

// Deps are the collaborators of the matching workflow.
type Deps struct {
	Items    ItemRepository
	Users    UserDirectory
	Matches  MatchStore
	Attempts AttemptRecorder
	Notifier Notifier
}

// Options tune the matching workflow.
type Options struct {
	// Threshold is the minimum score of a match. Zero means DefaultThreshold.
	Threshold         float64
	NotifyTimeout     time.Duration
	NotifyConcurrency int
	// BaseURL prefixes links in notifications.
	BaseURL string
	Logger  *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.NotifyTimeout <= 0 {
		o.NotifyTimeout = DefaultNotifyTimeout
	}
	if o.NotifyConcurrency <= 0 {
		o.NotifyConcurrency = DefaultNotifyConcurrency
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Engine runs matching for newly reported items.
type Engine struct {
	items      ItemRepository
	registry   *Registry
	dispatcher *Dispatcher
	threshold  float64
	logger     *slog.Logger
}

// NewEngine wires a Registry and a Dispatcher over deps.
func NewEngine(deps Deps, opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		items:      deps.Items,
		registry:   NewRegistry(deps.Matches).WithLogger(opts.Logger),
		dispatcher: NewDispatcher(deps, opts),
		threshold:  opts.Threshold,
		logger:     opts.Logger,
	}
}

// Threshold returns the minimum match score in use.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Report describes one matching run.
type Report struct {
	RunID      string                      `json:"run_id"`
	ItemID     int64                       `json:"item_id"`
	Candidates []Candidate                 `json:"candidates"`
	Created    []model.Match               `json:"created"`
	Attempts   []model.NotificationAttempt `json:"attempts"`
	Skipped    []*InputError               `json:"skipped,omitempty"`
	// RegisterErr joins per-pair persistence failures. The run still
	// succeeds for the pairs that were stored.
	RegisterErr error `json:"-"`
}

// OnNewItemReported matches item against the opposite-status pool, stores new
// pairs, and notifies both reporters of every new pair. Items that cannot
// take part in matching (unapproved found items, deleted or resolved items)
// yield an empty report. An item missing comparison fields yields an
// *InputError; a failing candidate fetch yields ErrRepositoryUnavailable and
// registers nothing.
func (e *Engine) OnNewItemReported(ctx context.Context, item model.Item) (*Report, error) {
	report := &Report{RunID: ulid.Make().String(), ItemID: item.ID}
	logger := e.logger.With("run", report.RunID, "item", item.ID, "status", item.Status)

	if !item.Matchable() {
		logger.Info("item not eligible for matching")
		return report, nil
	}

	candidates, skipped, err := e.candidates(ctx, item)
	if err != nil {
		logger.Error("matching run failed", "error", err)
		return nil, err
	}
	report.Candidates = candidates
	report.Skipped = skipped
	for _, s := range skipped {
		logger.Warn("skipped malformed candidate", "candidate", s.ItemID, "missing", s.Field)
	}

	report.Created, report.RegisterErr = e.registry.RegisterMatches(ctx, report.RunID, candidates)
	report.Attempts = e.dispatcher.Dispatch(ctx, report.Created)

	logger.Info("matching run complete",
		"candidates", len(candidates), "created", len(report.Created), "attempts", len(report.Attempts))
	return report, nil
}

// Preview scores item against the current pool without storing or notifying.
func (e *Engine) Preview(ctx context.Context, item model.Item) ([]Candidate, []*InputError, error) {
	if _, ok := model.OppositeStatus(item.Status); !ok {
		return nil, nil, nil
	}
	return e.candidates(ctx, item)
}

// Renotify dispatches the sides of m that are not yet sent. It is the
// operator-triggered retry path; the engine never retries on its own.
func (e *Engine) Renotify(ctx context.Context, m model.Match) []model.NotificationAttempt {
	return e.dispatcher.Dispatch(ctx, []model.Match{m})
}

func (e *Engine) candidates(ctx context.Context, item model.Item) ([]Candidate, []*InputError, error) {
	if field := item.MissingField(); field != "" {
		return nil, nil, &InputError{ItemID: item.ID, Field: field}
	}

	opposite, _ := model.OppositeStatus(item.Status)
	pool, err := e.items.GetCandidates(ctx, opposite, true, opposite == model.ItemStatusFound)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrRepositoryUnavailable, err)
	}

	candidates, skipped := FindMatches(item, pool, e.threshold)
	return candidates, skipped, nil
}

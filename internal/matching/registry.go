package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/najdeno/internal/model"
)

// Registry records matches, at most once per unordered item pair.
type Registry struct {
	store  MatchStore
	logger *slog.Logger
}

// NewRegistry creates a Registry backed by store.
func NewRegistry(store MatchStore) *Registry {
	return &Registry{store: store, logger: slog.Default()}
}

// WithLogger sets the logger used for per-pair failures.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// RegisterMatches stores every candidate whose pair has not been matched
// before and returns the records it created, in candidate order. Existing
// pairs are left untouched, whatever their stored score. A failure on one
// pair does not stop the others; the joined per-pair errors are returned
// alongside the created records.
func (r *Registry) RegisterMatches(ctx context.Context, runID string, candidates []Candidate) ([]model.Match, error) {
	var (
		created []model.Match
		errs    []error
	)
	for _, c := range candidates {
		m, err := r.register(ctx, runID, c)
		if err != nil {
			r.logger.Error("failed to register match",
				"lost_item", c.Lost.ID, "found_item", c.Found.ID, "error", err)
			errs = append(errs, err)
			continue
		}
		if m != nil {
			created = append(created, *m)
		}
	}
	return created, errors.Join(errs...)
}

// register returns nil, nil when the pair already has a match.
func (r *Registry) register(ctx context.Context, runID string, c Candidate) (*model.Match, error) {
	key := c.PairKey()

	existing, err := r.store.FindMatchByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("looking up match %s: %w", key, err)
	}
	if existing != nil {
		return nil, nil
	}

	m, err := r.store.InsertMatch(ctx, &model.Match{
		LostItemID:        c.Lost.ID,
		FoundItemID:       c.Found.ID,
		PairKey:           key,
		Score:             c.Score,
		RunID:             runID,
		LostNotification:  model.NotificationPending,
		FoundNotification: model.NotificationPending,
	})
	if errors.Is(err, model.ErrDuplicateMatch) {
		// Lost a race with a concurrent run for the same pair.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("inserting match %s: %w", key, err)
	}
	return m, nil
}

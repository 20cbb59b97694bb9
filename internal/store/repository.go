package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/najdeno/internal/model"
)

// Repository adapts the store functions to the interfaces used by the
// matching engine.
type Repository struct {
	DB *sql.DB
}

// NewRepository returns a Repository backed by db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

// GetCandidates returns items with the given status.
func (r *Repository) GetCandidates(ctx context.Context, status string, excludeDeleted, approvedOnly bool) ([]model.Item, error) {
	return ListItems(ctx, r.DB, ItemFilter{
		Status:         status,
		ApprovedOnly:   approvedOnly,
		IncludeDeleted: !excludeDeleted,
	})
}

func (r *Repository) GetItemByID(ctx context.Context, id int64) (*model.Item, error) {
	return GetItem(ctx, r.DB, id)
}

func (r *Repository) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return GetUser(ctx, r.DB, id)
}

func (r *Repository) FindMatchByKey(ctx context.Context, key string) (*model.Match, error) {
	return GetMatchByPairKey(ctx, r.DB, key)
}

func (r *Repository) InsertMatch(ctx context.Context, m *model.Match) (*model.Match, error) {
	return InsertMatch(ctx, r.DB, m)
}

func (r *Repository) UpdateNotificationStatus(ctx context.Context, id int64, side model.Side, status model.NotificationStatus) error {
	return UpdateMatchNotification(ctx, r.DB, id, side, status)
}

func (r *Repository) RecordAttempt(ctx context.Context, a *model.NotificationAttempt) error {
	return CreateAttempt(ctx, r.DB, a)
}

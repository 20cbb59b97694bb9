package matching

import (
	"context"

	"github.com/erazemk/najdeno/internal/model"
)

// ItemRepository loads items for matching.
type ItemRepository interface {
	// GetCandidates returns items with the given status. approvedOnly limits
	// the result to approved items.
	GetCandidates(ctx context.Context, status string, excludeDeleted, approvedOnly bool) ([]model.Item, error)
	// GetItemByID returns nil, nil when the item does not exist.
	GetItemByID(ctx context.Context, id int64) (*model.Item, error)
}

// MatchStore persists match records.
type MatchStore interface {
	// FindMatchByKey returns nil, nil when no match has the key.
	FindMatchByKey(ctx context.Context, pairKey string) (*model.Match, error)
	// InsertMatch returns model.ErrDuplicateMatch when the pair key is taken.
	InsertMatch(ctx context.Context, m *model.Match) (*model.Match, error)
	UpdateNotificationStatus(ctx context.Context, matchID int64, side model.Side, status model.NotificationStatus) error
}

// AttemptRecorder stores notification attempts.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, attempt *model.NotificationAttempt) error
}

// UserDirectory resolves item reporters.
type UserDirectory interface {
	// GetUser returns nil, nil when the user does not exist.
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

// Notifier delivers a payload to a target address.
type Notifier interface {
	Send(ctx context.Context, target string, payload Payload) (messageID string, err error)
}

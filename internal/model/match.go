package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrDuplicateMatch is returned by match stores when a record for the same
// unordered item pair already exists.
var ErrDuplicateMatch = errors.New("match already exists for item pair")

// NotificationStatus is the delivery state of one side of a match.
type NotificationStatus string

// Notification statuses.
const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// Side identifies one party of a match.
type Side string

// Match sides.
const (
	SideLost  Side = "lost"
	SideFound Side = "found"
)

// Sides lists both sides in dispatch order.
var Sides = []Side{SideLost, SideFound}

// Match is a stored association between a lost and a found item.
type Match struct {
	ID                int64              `json:"id"`
	LostItemID        int64              `json:"lost_item_id"`
	FoundItemID       int64              `json:"found_item_id"`
	PairKey           string             `json:"pair_key"`
	Score             float64            `json:"score"`
	RunID             string             `json:"run_id,omitempty"`
	LostNotification  NotificationStatus `json:"lost_notification"`
	FoundNotification NotificationStatus `json:"found_notification"`
	CreatedAt         time.Time          `json:"created_at"`
}

// PairKey returns the dedup key for an unordered pair of item ids.
func PairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// ItemID returns the item id on the given side.
func (m *Match) ItemID(side Side) int64 {
	if side == SideLost {
		return m.LostItemID
	}
	return m.FoundItemID
}

// CounterpartID returns the item id opposite to the given side.
func (m *Match) CounterpartID(side Side) int64 {
	if side == SideLost {
		return m.FoundItemID
	}
	return m.LostItemID
}

// Notification returns the notification status of the given side.
func (m *Match) Notification(side Side) NotificationStatus {
	if side == SideLost {
		return m.LostNotification
	}
	return m.FoundNotification
}

// SetNotification sets the notification status of the given side.
func (m *Match) SetNotification(side Side, status NotificationStatus) {
	if side == SideLost {
		m.LostNotification = status
	} else {
		m.FoundNotification = status
	}
}

// ScorePercentage is the score scaled to 0-100 for display.
func (m *Match) ScorePercentage() int {
	return int(m.Score*100 + 0.5)
}

// NotificationAttempt is the recorded outcome of one notification send.
type NotificationAttempt struct {
	ID        string    `json:"id"`
	MatchID   int64     `json:"match_id"`
	Side      Side      `json:"side"`
	UserID    int64     `json:"user_id"`
	Target    string    `json:"target,omitempty"`
	Success   bool      `json:"success"`
	MessageID string    `json:"message_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

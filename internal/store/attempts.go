package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

// AttemptFilter narrows ListAttempts.
type AttemptFilter struct {
	MatchID    int64
	FailedOnly bool
	Limit      int
}

// CreateAttempt records a notification attempt.
func CreateAttempt(ctx context.Context, db *sql.DB, a *model.NotificationAttempt) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO notification_attempts (id, match_id, side, user_id, target, success, message_id, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.MatchID, a.Side, a.UserID, nullString(a.Target), a.Success,
		nullString(a.MessageID), nullString(a.Error), a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording notification attempt: %w", err)
	}
	return nil
}

// ListAttempts returns notification attempts, newest first.
func ListAttempts(ctx context.Context, db *sql.DB, f AttemptFilter) ([]model.NotificationAttempt, error) {
	var (
		where []string
		args  []any
	)
	if f.MatchID > 0 {
		where = append(where, "match_id = ?")
		args = append(args, f.MatchID)
	}
	if f.FailedOnly {
		where = append(where, "success = 0")
	}

	query := `SELECT id, match_id, side, user_id, target, success, message_id, error, created_at
		FROM notification_attempts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notification attempts: %w", err)
	}
	defer rows.Close()

	var attempts []model.NotificationAttempt
	for rows.Next() {
		var a model.NotificationAttempt
		var target, messageID, errText sql.NullString
		if err := rows.Scan(&a.ID, &a.MatchID, &a.Side, &a.UserID, &target, &a.Success,
			&messageID, &errText, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification attempt: %w", err)
		}
		a.Target = target.String
		a.MessageID = messageID.String
		a.Error = errText.String
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

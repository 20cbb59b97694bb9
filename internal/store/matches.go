package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/najdeno/internal/model"
)

const matchColumns = `id, lost_item_id, found_item_id, pair_key, score, run_id,
	lost_notification, found_notification, created_at`

// MatchFilter narrows ListMatches.
type MatchFilter struct {
	// ItemID selects matches where the item is on either side.
	ItemID int64
	// FailedOnly selects matches with at least one failed side.
	FailedOnly bool
	// UnsentOnly selects matches with at least one side not yet sent.
	UnsentOnly bool
}

func scanMatch(row rowScanner) (*model.Match, error) {
	m := &model.Match{}
	var runID sql.NullString
	if err := row.Scan(&m.ID, &m.LostItemID, &m.FoundItemID, &m.PairKey, &m.Score, &runID,
		&m.LostNotification, &m.FoundNotification, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.RunID = runID.String
	return m, nil
}

// InsertMatch stores a new match with both sides pending. It returns
// model.ErrDuplicateMatch when the pair is already recorded.
func InsertMatch(ctx context.Context, db *sql.DB, m *model.Match) (*model.Match, error) {
	key := m.PairKey
	if key == "" {
		key = model.PairKey(m.LostItemID, m.FoundItemID)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO matches (lost_item_id, found_item_id, pair_key, score, run_id)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(pair_key) DO NOTHING`,
		m.LostItemID, m.FoundItemID, key, m.Score, nullString(m.RunID),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting match: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking inserted match: %w", err)
	}
	if n == 0 {
		return nil, model.ErrDuplicateMatch
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting match id: %w", err)
	}

	return GetMatch(ctx, db, id)
}

// GetMatch returns a match by ID.
func GetMatch(ctx context.Context, db *sql.DB, id int64) (*model.Match, error) {
	m, err := scanMatch(db.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting match: %w", err)
	}
	return m, nil
}

// GetMatchByPairKey returns the match for an unordered item pair.
func GetMatchByPairKey(ctx context.Context, db *sql.DB, key string) (*model.Match, error) {
	m, err := scanMatch(db.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE pair_key = ?`, key,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting match by pair key: %w", err)
	}
	return m, nil
}

// ListMatches returns matches matching the filter, best score first.
func ListMatches(ctx context.Context, db *sql.DB, f MatchFilter) ([]model.Match, error) {
	var (
		where []string
		args  []any
	)
	if f.ItemID > 0 {
		where = append(where, "(lost_item_id = ? OR found_item_id = ?)")
		args = append(args, f.ItemID, f.ItemID)
	}
	if f.FailedOnly {
		where = append(where, "(lost_notification = 'failed' OR found_notification = 'failed')")
	}
	if f.UnsentOnly {
		where = append(where, "(lost_notification != 'sent' OR found_notification != 'sent')")
	}

	query := `SELECT ` + matchColumns + ` FROM matches`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY score DESC, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// UpdateMatchNotification sets the notification status of one side of a match.
func UpdateMatchNotification(ctx context.Context, db *sql.DB, id int64, side model.Side, status model.NotificationStatus) error {
	var column string
	switch side {
	case model.SideLost:
		column = "lost_notification"
	case model.SideFound:
		column = "found_notification"
	default:
		return fmt.Errorf("updating match notification: unknown side %q", side)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE matches SET `+column+` = ? WHERE id = ?`, status, id,
	)
	if err != nil {
		return fmt.Errorf("updating match notification: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("updating match notification: match %d not found", id)
	}
	return nil
}

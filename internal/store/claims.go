package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/erazemk/najdeno/internal/model"
)

var (
	// ErrNotClaimable is returned when an item is not an approved, active found item.
	ErrNotClaimable = errors.New("item cannot be claimed")
	// ErrClaimResolved is returned when resolving a claim that is no longer pending.
	ErrClaimResolved = errors.New("claim already resolved")
)

// CreateClaim records a claim and moves the item from found to requested
// in a single transaction.
func CreateClaim(ctx context.Context, db *sql.DB, itemID, claimantID int64, notes string) (*model.Claim, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ? AND approved = 1 AND deleted_at IS NULL`,
		model.ItemStatusRequested, itemID, model.ItemStatusFound,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotClaimable
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO claims (item_id, claimant_id, notes) VALUES (?, ?, ?)`,
		itemID, claimantID, nullString(notes),
	)
	if err != nil {
		return nil, fmt.Errorf("recording claim: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}

	claimID, _ := result.LastInsertId()
	return GetClaim(ctx, db, claimID)
}

// ResolveClaim approves or rejects a pending claim. Approval marks the item
// returned; rejection puts it back to found.
func ResolveClaim(ctx context.Context, db *sql.DB, claimID int64, approve bool, resolvedBy int64) (*model.Claim, error) {
	claimStatus, itemStatus := model.ClaimStatusRejected, model.ItemStatusFound
	if approve {
		claimStatus, itemStatus = model.ClaimStatusApproved, model.ItemStatusReturned
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var itemID int64
	err = tx.QueryRowContext(ctx,
		`SELECT item_id FROM claims WHERE id = ? AND status = ?`,
		claimID, model.ClaimStatusPending,
	).Scan(&itemID)
	if err == sql.ErrNoRows {
		return nil, ErrClaimResolved
	}
	if err != nil {
		return nil, fmt.Errorf("checking claim: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE claims SET status = ?, resolved_at = CURRENT_TIMESTAMP, resolved_by = ? WHERE id = ?`,
		claimStatus, resolvedBy, claimID,
	); err != nil {
		return nil, fmt.Errorf("resolving claim: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		itemStatus, itemID, model.ItemStatusRequested,
	); err != nil {
		return nil, fmt.Errorf("updating item status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim resolution: %w", err)
	}

	return GetClaim(ctx, db, claimID)
}

const claimQuery = `SELECT c.id, c.item_id, c.claimant_id, c.notes, c.status, c.created_at,
	       c.resolved_at, c.resolved_by, i.title AS item_title, u.username AS claimant_name
	FROM claims c
	JOIN items i ON i.id = c.item_id
	JOIN users u ON u.id = c.claimant_id`

func scanClaim(row rowScanner) (*model.Claim, error) {
	c := &model.Claim{}
	var notes sql.NullString
	if err := row.Scan(&c.ID, &c.ItemID, &c.ClaimantID, &notes, &c.Status, &c.CreatedAt,
		&c.ResolvedAt, &c.ResolvedBy, &c.ItemTitle, &c.ClaimantName); err != nil {
		return nil, err
	}
	c.Notes = notes.String
	return c, nil
}

// GetClaim returns a claim by ID.
func GetClaim(ctx context.Context, db *sql.DB, id int64) (*model.Claim, error) {
	c, err := scanClaim(db.QueryRowContext(ctx, claimQuery+` WHERE c.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return c, nil
}

// ListClaims returns claims, optionally filtered by status and item.
func ListClaims(ctx context.Context, db *sql.DB, status string, itemID int64) ([]model.Claim, error) {
	var (
		where []string
		args  []any
	)
	if status != "" {
		where = append(where, "c.status = ?")
		args = append(args, status)
	}
	if itemID > 0 {
		where = append(where, "c.item_id = ?")
		args = append(args, itemID)
	}

	query := claimQuery
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY c.created_at DESC, c.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

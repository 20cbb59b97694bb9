package model

import "time"

// Claim is a request by a user to collect a found item.
type Claim struct {
	ID         int64      `json:"id"`
	ItemID     int64      `json:"item_id"`
	ClaimantID int64      `json:"claimant_id"`
	Notes      string     `json:"notes,omitempty"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy *int64     `json:"resolved_by,omitempty"`

	// Joined fields (not always populated).
	ItemTitle    string `json:"item_title,omitempty"`
	ClaimantName string `json:"claimant_name,omitempty"`
}

// Claim statuses.
const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

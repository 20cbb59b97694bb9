package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

func TestCreateClaim(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	finder := mustUser(t, database, "finder")
	owner := mustUser(t, database, "owner")
	item := mustItem(t, database, finder.ID, model.ItemStatusFound, true)

	claim, err := CreateClaim(ctx, database, item.ID, owner.ID, "it has my sticker")
	if err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}
	if claim.Status != model.ClaimStatusPending {
		t.Errorf("expected pending claim, got %q", claim.Status)
	}
	if claim.ClaimantName != "owner" || claim.ItemTitle != "Black phone" {
		t.Errorf("expected joined fields, got %+v", claim)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusRequested {
		t.Errorf("expected item requested, got %q", got.Status)
	}

	// A second claim on the same item is refused.
	if _, err := CreateClaim(ctx, database, item.ID, owner.ID, ""); !errors.Is(err, ErrNotClaimable) {
		t.Errorf("expected ErrNotClaimable, got %v", err)
	}
}

func TestCreateClaimRequiresApprovedFoundItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := mustUser(t, database, "ana")

	tests := []struct {
		name     string
		status   string
		approved bool
	}{
		{"lost item", model.ItemStatusLost, true},
		{"unapproved found item", model.ItemStatusFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := mustItem(t, database, user.ID, tt.status, tt.approved)
			if _, err := CreateClaim(ctx, database, item.ID, user.ID, ""); !errors.Is(err, ErrNotClaimable) {
				t.Errorf("expected ErrNotClaimable, got %v", err)
			}
		})
	}

	claims, _ := ListClaims(ctx, database, "", 0)
	if len(claims) != 0 {
		t.Errorf("expected no claims recorded, got %d", len(claims))
	}
}

func TestResolveClaim(t *testing.T) {
	tests := []struct {
		name        string
		approve     bool
		claimStatus string
		itemStatus  string
	}{
		{"approve", true, model.ClaimStatusApproved, model.ItemStatusReturned},
		{"reject", false, model.ClaimStatusRejected, model.ItemStatusFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database := db.NewTestDB(t)
			ctx := context.Background()
			staff := mustUser(t, database, "staff")
			owner := mustUser(t, database, "owner")
			item := mustItem(t, database, staff.ID, model.ItemStatusFound, true)
			claim, _ := CreateClaim(ctx, database, item.ID, owner.ID, "")

			resolved, err := ResolveClaim(ctx, database, claim.ID, tt.approve, staff.ID)
			if err != nil {
				t.Fatalf("ResolveClaim: %v", err)
			}
			if resolved.Status != tt.claimStatus {
				t.Errorf("expected claim %q, got %q", tt.claimStatus, resolved.Status)
			}
			if resolved.ResolvedBy == nil || *resolved.ResolvedBy != staff.ID {
				t.Errorf("expected resolved_by %d, got %v", staff.ID, resolved.ResolvedBy)
			}

			got, _ := GetItem(ctx, database, item.ID)
			if got.Status != tt.itemStatus {
				t.Errorf("expected item %q, got %q", tt.itemStatus, got.Status)
			}

			if _, err := ResolveClaim(ctx, database, claim.ID, tt.approve, staff.ID); !errors.Is(err, ErrClaimResolved) {
				t.Errorf("expected ErrClaimResolved on second resolve, got %v", err)
			}
		})
	}
}

func TestListClaimsByStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	staff := mustUser(t, database, "staff")
	owner := mustUser(t, database, "owner")
	item1 := mustItem(t, database, staff.ID, model.ItemStatusFound, true)
	item2 := mustItem(t, database, staff.ID, model.ItemStatusFound, true)

	c1, _ := CreateClaim(ctx, database, item1.ID, owner.ID, "")
	CreateClaim(ctx, database, item2.ID, owner.ID, "")
	ResolveClaim(ctx, database, c1.ID, true, staff.ID)

	pending, _ := ListClaims(ctx, database, model.ClaimStatusPending, 0)
	if len(pending) != 1 {
		t.Errorf("expected 1 pending claim, got %d", len(pending))
	}

	forItem, _ := ListClaims(ctx, database, "", item1.ID)
	if len(forItem) != 1 || forItem[0].ID != c1.ID {
		t.Errorf("expected claim %d for item, got %+v", c1.ID, forItem)
	}
}

package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

func TestCreateAndListAttempts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := mustUser(t, database, "ana")
	lost := mustItem(t, database, user.ID, model.ItemStatusLost, true)
	found := mustItem(t, database, user.ID, model.ItemStatusFound, true)
	m, _ := InsertMatch(ctx, database, &model.Match{LostItemID: lost.ID, FoundItemID: found.ID, Score: 0.8})

	base := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	attempts := []model.NotificationAttempt{
		{ID: "a1", MatchID: m.ID, Side: model.SideLost, UserID: user.ID, Target: "ana@example.edu", Success: true, MessageID: "msg-1", CreatedAt: base},
		{ID: "a2", MatchID: m.ID, Side: model.SideFound, UserID: user.ID, Target: "ana@example.edu", Error: "timeout", CreatedAt: base.Add(time.Second)},
	}
	for i := range attempts {
		if err := CreateAttempt(ctx, database, &attempts[i]); err != nil {
			t.Fatalf("CreateAttempt: %v", err)
		}
	}

	all, err := ListAttempts(ctx, database, AttemptFilter{MatchID: m.ID})
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(all))
	}
	if all[0].ID != "a2" {
		t.Errorf("expected newest attempt first, got %q", all[0].ID)
	}

	failed, _ := ListAttempts(ctx, database, AttemptFilter{FailedOnly: true})
	if len(failed) != 1 || failed[0].Error != "timeout" {
		t.Errorf("expected one failed attempt with error, got %+v", failed)
	}

	limited, _ := ListAttempts(ctx, database, AttemptFilter{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d", len(limited))
	}
}

func TestCreateAttemptSetsTimestamp(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := mustUser(t, database, "ana")
	lost := mustItem(t, database, user.ID, model.ItemStatusLost, true)
	found := mustItem(t, database, user.ID, model.ItemStatusFound, true)
	m, _ := InsertMatch(ctx, database, &model.Match{LostItemID: lost.ID, FoundItemID: found.ID, Score: 0.8})

	a := &model.NotificationAttempt{ID: "a1", MatchID: m.ID, Side: model.SideLost, UserID: user.ID, Success: true}
	if err := CreateAttempt(ctx, database, a); err != nil {
		t.Fatalf("CreateAttempt: %v", err)
	}
	if a.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

func mustUser(t *testing.T, database *sql.DB, username string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, username, username+"@example.edu", "hash", model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

func mustItem(t *testing.T, database *sql.DB, reporterID int64, status string, approved bool) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), database, model.Item{
		Title:       "Black phone",
		Status:      status,
		Category:    "electronics",
		Subcategory: "phone",
		Location:    "Library",
		Description: "black iphone with cracked screen",
		OccurredOn:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ReporterID:  reporterID,
		Approved:    approved,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return item
}

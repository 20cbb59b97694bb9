package model

import (
	"strings"
	"time"
)

// Item is a reported lost or found object.
type Item struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	Category    string     `json:"category"`
	Subcategory string     `json:"subcategory,omitempty"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	OccurredOn  time.Time  `json:"occurred_on"`
	ReporterID  int64      `json:"reporter_id"`
	Approved    bool       `json:"approved"`
	ImageMime   string     `json:"image_mime,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// Item statuses.
const (
	ItemStatusLost      = "lost"
	ItemStatusFound     = "found"
	ItemStatusRequested = "requested"
	ItemStatusReturned  = "returned"
)

// ValidItemStatus reports whether status is one of the known item statuses.
func ValidItemStatus(status string) bool {
	switch status {
	case ItemStatusLost, ItemStatusFound, ItemStatusRequested, ItemStatusReturned:
		return true
	}
	return false
}

// OppositeStatus returns the status an item is matched against.
// Only lost and found items take part in matching.
func OppositeStatus(status string) (string, bool) {
	switch status {
	case ItemStatusLost:
		return ItemStatusFound, true
	case ItemStatusFound:
		return ItemStatusLost, true
	}
	return "", false
}

// Deleted reports whether the item has been soft-deleted.
func (i *Item) Deleted() bool {
	return i.DeletedAt != nil
}

// Matchable reports whether the item may take part in matching:
// lost or found, not deleted, and approved if found.
func (i *Item) Matchable() bool {
	if i.Deleted() {
		return false
	}
	switch i.Status {
	case ItemStatusLost:
		return true
	case ItemStatusFound:
		return i.Approved
	}
	return false
}

// MissingField returns the name of the first comparison field that is empty,
// or "" when the item carries everything the scorer needs.
func (i *Item) MissingField() string {
	switch {
	case strings.TrimSpace(i.Category) == "":
		return "category"
	case i.OccurredOn.IsZero():
		return "occurred_on"
	case strings.TrimSpace(i.Description) == "":
		return "description"
	}
	return ""
}

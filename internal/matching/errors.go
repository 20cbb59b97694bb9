package matching

import (
	"errors"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// ErrRepositoryUnavailable wraps failures to load the candidate pool. A run
// that fails this way registers nothing.
var ErrRepositoryUnavailable = errors.New("item repository unavailable")

// InputError reports an item that lacks a field the scorer compares.
type InputError struct {
	ItemID int64  `json:"item_id"`
	Field  string `json:"field"`
}

func (e *InputError) Error() string {
	return fmt.Sprintf("item %d: missing %s", e.ItemID, e.Field)
}

// NotifierError is a failed delivery to one side of a match.
type NotifierError struct {
	MatchID int64
	Side    model.Side
	Err     error
}

func (e *NotifierError) Error() string {
	return fmt.Sprintf("notifying %s side of match %d: %v", e.Side, e.MatchID, e.Err)
}

func (e *NotifierError) Unwrap() error {
	return e.Err
}

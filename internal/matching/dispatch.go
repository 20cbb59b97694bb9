package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/najdeno/internal/model"
)

// Dispatch defaults.
const (
	DefaultNotifyTimeout     = 10 * time.Second
	DefaultNotifyConcurrency = 4
)

// Dispatcher notifies both reporters of a match and records each outcome.
type Dispatcher struct {
	items       ItemRepository
	users       UserDirectory
	matches     MatchStore
	attempts    AttemptRecorder
	notifier    Notifier
	timeout     time.Duration
	concurrency int
	baseURL     string
	logger      *slog.Logger
	now         func() time.Time
}

// NewDispatcher creates a Dispatcher. Zero timeout and concurrency in opts
// fall back to the package defaults.
func NewDispatcher(deps Deps, opts Options) *Dispatcher {
	opts = opts.withDefaults()
	return &Dispatcher{
		items:       deps.Items,
		users:       deps.Users,
		matches:     deps.Matches,
		attempts:    deps.Attempts,
		notifier:    deps.Notifier,
		timeout:     opts.NotifyTimeout,
		concurrency: opts.NotifyConcurrency,
		baseURL:     opts.BaseURL,
		logger:      opts.Logger,
		now:         time.Now,
	}
}

type sideJob struct {
	match model.Match
	side  model.Side
}

// Dispatch sends notifications for every side of matches not yet marked
// sent, concurrently, and returns one attempt per send in match order (lost
// side first). Failures are recorded, never retried here, and never affect
// other sides.
func (d *Dispatcher) Dispatch(ctx context.Context, matches []model.Match) []model.NotificationAttempt {
	var jobs []sideJob
	for _, m := range matches {
		for _, side := range model.Sides {
			if m.Notification(side) == model.NotificationSent {
				continue
			}
			jobs = append(jobs, sideJob{match: m, side: side})
		}
	}
	if len(jobs) == 0 {
		return nil
	}

	results := make([]model.NotificationAttempt, len(jobs))
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = d.dispatchSide(ctx, job.match, job.side)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (d *Dispatcher) dispatchSide(ctx context.Context, m model.Match, side model.Side) model.NotificationAttempt {
	attempt := model.NotificationAttempt{
		ID:        uuid.NewString(),
		MatchID:   m.ID,
		Side:      side,
		CreatedAt: d.now().UTC(),
	}

	messageID, err := d.send(ctx, m, side, &attempt)
	status := model.NotificationSent
	if err != nil {
		status = model.NotificationFailed
		nerr := &NotifierError{MatchID: m.ID, Side: side, Err: err}
		attempt.Error = nerr.Error()
		d.logger.Warn("match notification failed",
			"match", m.ID, "side", side, "user", attempt.UserID, "error", err)
	} else {
		attempt.Success = true
		attempt.MessageID = messageID
		d.logger.Info("match notification sent",
			"match", m.ID, "side", side, "user", attempt.UserID, "message_id", messageID)
	}

	// The outcome is stored even when the caller's context has ended.
	storeCtx := context.WithoutCancel(ctx)
	if err := d.matches.UpdateNotificationStatus(storeCtx, m.ID, side, status); err != nil {
		d.logger.Error("failed to update notification status",
			"match", m.ID, "side", side, "status", status, "error", err)
	}
	if err := d.attempts.RecordAttempt(storeCtx, &attempt); err != nil {
		d.logger.Error("failed to record notification attempt",
			"match", m.ID, "side", side, "error", err)
	}
	return attempt
}

// send resolves the recipient, fills in attempt.UserID and attempt.Target,
// and invokes the notifier under the per-attempt timeout.
func (d *Dispatcher) send(ctx context.Context, m model.Match, side model.Side, attempt *model.NotificationAttempt) (string, error) {
	own, err := d.item(ctx, m.ItemID(side))
	if err != nil {
		return "", err
	}
	counterpart, err := d.item(ctx, m.CounterpartID(side))
	if err != nil {
		return "", err
	}

	attempt.UserID = own.ReporterID
	user, err := d.users.GetUser(ctx, own.ReporterID)
	if err != nil {
		return "", fmt.Errorf("loading reporter %d: %w", own.ReporterID, err)
	}
	if user == nil || user.DeletedAt != nil {
		return "", fmt.Errorf("reporter %d not found", own.ReporterID)
	}
	if user.Email == "" {
		return "", fmt.Errorf("reporter %d has no email address", user.ID)
	}
	attempt.Target = user.Email

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	payload := newPayload(m, side, user, own, counterpart, d.baseURL)
	messageID, err := d.notifier.Send(sendCtx, user.Email, payload)
	if err != nil {
		if errors.Is(sendCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("timed out after %s: %w", d.timeout, err)
		}
		return "", err
	}
	return messageID, nil
}

func (d *Dispatcher) item(ctx context.Context, id int64) (*model.Item, error) {
	item, err := d.items.GetItemByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading item %d: %w", id, err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %d not found", id)
	}
	return item, nil
}

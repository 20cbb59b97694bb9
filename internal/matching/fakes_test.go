package matching

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

type memItems struct {
	items []model.Item
	err   error
}

func (m *memItems) GetCandidates(_ context.Context, status string, excludeDeleted, approvedOnly bool) ([]model.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Item
	for _, it := range m.items {
		if it.Status != status {
			continue
		}
		if excludeDeleted && it.Deleted() {
			continue
		}
		if approvedOnly && !it.Approved {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (m *memItems) GetItemByID(_ context.Context, id int64) (*model.Item, error) {
	for _, it := range m.items {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, nil
}

type memMatches struct {
	mu      sync.Mutex
	nextID  int64
	byKey   map[string]*model.Match
	failKey string
	// raceKey makes FindMatchByKey miss so InsertMatch hits the unique key.
	raceKey string
}

func newMemMatches() *memMatches {
	return &memMatches{byKey: make(map[string]*model.Match)}
}

func (m *memMatches) FindMatchByKey(_ context.Context, key string) (*model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key == m.raceKey {
		return nil, nil
	}
	if existing, ok := m.byKey[key]; ok {
		cp := *existing
		return &cp, nil
	}
	return nil, nil
}

func (m *memMatches) InsertMatch(_ context.Context, match *model.Match) (*model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if match.PairKey == m.failKey {
		return nil, errors.New("disk full")
	}
	if _, ok := m.byKey[match.PairKey]; ok {
		return nil, model.ErrDuplicateMatch
	}
	m.nextID++
	stored := *match
	stored.ID = m.nextID
	stored.CreatedAt = time.Now()
	m.byKey[match.PairKey] = &stored
	cp := stored
	return &cp, nil
}

func (m *memMatches) UpdateNotificationStatus(_ context.Context, id int64, side model.Side, status model.NotificationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, match := range m.byKey {
		if match.ID == id {
			match.SetNotification(side, status)
			return nil
		}
	}
	return errors.New("match not found")
}

func (m *memMatches) get(id int64) *model.Match {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, match := range m.byKey {
		if match.ID == id {
			cp := *match
			return &cp
		}
	}
	return nil
}

func (m *memMatches) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byKey)
}

type memAttempts struct {
	mu       sync.Mutex
	attempts []model.NotificationAttempt
}

func (m *memAttempts) RecordAttempt(_ context.Context, a *model.NotificationAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, *a)
	return nil
}

type memUsers map[int64]*model.User

func (m memUsers) GetUser(_ context.Context, id int64) (*model.User, error) {
	return m[id], nil
}

type sentMessage struct {
	target  string
	payload Payload
}

type fakeNotifier struct {
	mu    sync.Mutex
	fail  map[string]error
	block map[string]bool
	sent  []sentMessage
}

func (n *fakeNotifier) Send(ctx context.Context, target string, payload Payload) (string, error) {
	if n.block[target] {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err := n.fail[target]; err != nil {
		return "", err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{target: target, payload: payload})
	return "msg-" + target, nil
}

func testUsers() memUsers {
	return memUsers{
		1: {ID: 1, Username: "ana", Email: "ana@example.edu", Role: model.RoleUser},
		2: {ID: 2, Username: "bor", Email: "bor@example.edu", Role: model.RoleUser},
		3: {ID: 3, Username: "cene", Email: "cene@example.edu", Role: model.RoleUser},
	}
}

func lostPhone() model.Item {
	return model.Item{
		ID:          10,
		Title:       "iPhone",
		Status:      model.ItemStatusLost,
		Category:    "Electronics",
		Subcategory: "Phones",
		Location:    "library",
		OccurredOn:  day("2024-01-10"),
		Description: "black iphone with case",
		ReporterID:  1,
		Approved:    true,
	}
}

func foundPhone() model.Item {
	return model.Item{
		ID:          20,
		Title:       "black phone",
		Status:      model.ItemStatusFound,
		Category:    "Electronics",
		Subcategory: "Phones",
		Location:    "library",
		OccurredOn:  day("2024-01-12"),
		Description: "black iphone case",
		ReporterID:  2,
		Approved:    true,
	}
}

package notice

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a Store held in process memory. Used in tests and when
// no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	notices map[string]Notice
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notices: make(map[string]Notice),
		now:     time.Now,
	}
}

// WithClock sets the clock used for CreatedAt.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Active(_ context.Context, now time.Time) ([]Notice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notice, 0, len(s.notices))
	for _, n := range s.notices {
		if n.Visible(now) {
			out = append(out, n)
		}
	}
	Sort(out)
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Notice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notices[id]
	if !ok {
		return Notice{}, ErrNotFound
	}
	return n, nil
}

func (s *MemoryStore) Create(_ context.Context, d Draft) (Notice, error) {
	if err := d.Normalize(); err != nil {
		return Notice{}, err
	}
	n := Notice{
		ID:        uuid.NewString(),
		Title:     d.Title,
		Content:   d.Content,
		Priority:  d.Priority,
		Active:    d.IsActive(),
		CreatedAt: s.now().UTC(),
	}
	if d.ExpiresAt != nil {
		t := d.ExpiresAt.UTC()
		n.ExpiresAt = &t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices[n.ID] = n
	return n, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, p Patch) (Notice, error) {
	if err := p.Normalize(); err != nil {
		return Notice{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notices[id]
	if !ok {
		return Notice{}, ErrNotFound
	}
	n = p.Apply(n)
	s.notices[id] = n
	return n, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notices[id]; !ok {
		return ErrNotFound
	}
	delete(s.notices, id)
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notices), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// Sort orders notices by priority (high first), then newest first.
func Sort(ns []Notice) {
	sort.SliceStable(ns, func(i, j int) bool {
		ri, rj := Rank(ns[i].Priority), Rank(ns[j].Priority)
		if ri != rj {
			return ri > rj
		}
		if !ns[i].CreatedAt.Equal(ns[j].CreatedAt) {
			return ns[i].CreatedAt.After(ns[j].CreatedAt)
		}
		return ns[i].ID < ns[j].ID
	})
}

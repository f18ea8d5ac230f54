package notice

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("notice not found")
	ErrInvalid  = errors.New("invalid notice")
)

// Priorities, highest first.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Notice is a building announcement shown next to the boards.
type Notice struct {
	ID        string     `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Content   string     `json:"content" db:"content"`
	Priority  string     `json:"priority" db:"priority"`
	Active    bool       `json:"active" db:"active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
}

// Visible reports whether the notice should be shown at now.
func (n Notice) Visible(now time.Time) bool {
	return n.Active && (n.ExpiresAt == nil || n.ExpiresAt.After(now))
}

// Rank orders priorities; higher is more important.
func Rank(priority string) int {
	switch priority {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Store persists notices. Every write is a single atomic row operation.
type Store interface {
	// Active returns visible notices, highest priority first, newest first within a priority.
	Active(ctx context.Context, now time.Time) ([]Notice, error)
	Get(ctx context.Context, id string) (Notice, error)
	Create(ctx context.Context, d Draft) (Notice, error)
	Update(ctx context.Context, id string, p Patch) (Notice, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

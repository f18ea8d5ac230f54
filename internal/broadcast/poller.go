package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"transitboard/internal/board"
)

// Publisher sends one message on a subject. *NATSPublisher satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// PublishObserver counts publishes. A nil PublishObserver is allowed.
type PublishObserver interface {
	ObservePublish(board string, err error)
}

// Poller polls every board on an interval and publishes each envelope as
// JSON on "<prefix>.<board>".
type Poller struct {
	boards   []*board.Board
	pub      Publisher
	prefix   string
	interval time.Duration
	obs      PublishObserver
	logger   *slog.Logger
	now      func() time.Time
}

func NewPoller(boards []*board.Board, pub Publisher, interval time.Duration, obs PublishObserver, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Poller{
		boards:   boards,
		pub:      pub,
		prefix:   "transitboard",
		interval: interval,
		obs:      obs,
		logger:   logger,
		now:      time.Now,
	}
}

// Start polls immediately, then on every tick. Blocks until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	p.PollOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.PollOnce(ctx)
		case <-ctx.Done():
			p.logger.Info("broadcast poller stopped")
			return
		}
	}
}

// PollOnce polls all boards concurrently and publishes the results.
// Publish failures are logged; the next tick tries again.
func (p *Poller) PollOnce(ctx context.Context) {
	envs := board.PollAll(ctx, p.now(), p.boards...)
	for _, env := range envs {
		subject := p.prefix + "." + subjectToken(string(env.Board))
		data, err := json.Marshal(env)
		if err == nil {
			err = p.pub.Publish(subject, data)
		}
		if p.obs != nil {
			p.obs.ObservePublish(string(env.Board), err)
		}
		if err != nil {
			p.logger.Warn("publish board", "subject", subject, "error", err)
			continue
		}
		p.logger.Debug("board published", "subject", subject, "arrivals", len(env.Arrivals), "live", env.IsLive)
	}
}

// subjectToken makes s safe to use as a single NATS subject token.
func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}

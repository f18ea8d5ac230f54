package board

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"transitboard/internal/catalog"
	"transitboard/internal/feed"
)

// Fetcher retrieves raw feed bytes. *feed.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, src feed.Source) ([]byte, error)
}

// Observer receives per-poll results. A nil Observer is allowed.
type Observer interface {
	SetArrivals(board string, n int)
	PollFailed(board string, kind feed.FailureKind)
}

// Config describes one board.
type Config struct {
	Kind     Kind
	Source   feed.Source
	Feed     catalog.Feed
	Station  string
	Horizon  time.Duration // 120m when zero
	Format   FormatOptions
	Operator string
}

// Board runs the fetch, decode, correlate, infer and format pipeline for
// one feed. It holds no state between polls.
type Board struct {
	cfg      Config
	targets  catalog.StopSet
	inferrer *Inferrer
	fetcher  Fetcher
	obs      Observer
	logger   *slog.Logger
}

func New(cfg Config, fetcher Fetcher, obs Observer, logger *slog.Logger) *Board {
	if cfg.Horizon <= 0 {
		cfg.Horizon = 120 * time.Minute
	}
	if cfg.Operator == "" {
		cfg.Operator = "the building operator"
	}
	if cfg.Format.DefaultStatus == "" {
		cfg.Format.DefaultStatus = cfg.Feed.DefaultStatus
	}
	if cfg.Format.DefaultStatus == "" && cfg.Kind == Buses {
		cfg.Format.DefaultStatus = StatusEnRoute
	}
	return &Board{
		cfg:      cfg,
		targets:  cfg.Feed.Targets(),
		inferrer: NewInferrer(cfg.Feed),
		fetcher:  fetcher,
		obs:      obs,
		logger:   logger.With("board", string(cfg.Kind)),
	}
}

func (b *Board) Kind() Kind { return b.cfg.Kind }

// Source returns the feed endpoint this board polls.
func (b *Board) Source() feed.Source { return b.cfg.Source }

// Poll runs one fetch cycle. It never returns fabricated arrivals: any
// upstream failure yields an empty, non-live envelope.
func (b *Board) Poll(ctx context.Context, now time.Time) Envelope {
	env := Envelope{
		Board:     b.cfg.Kind,
		Arrivals:  []Arrival{},
		Station:   b.cfg.Station,
		Timestamp: now.UTC(),
	}

	body, err := b.fetcher.Fetch(ctx, b.cfg.Source)
	if err != nil {
		kind := feed.Classify(err)
		attrs := []any{"kind", string(kind), "error", err}
		var se *feed.StatusError
		if errors.As(err, &se) {
			attrs = append(attrs, "status", se.Code)
		}
		b.logger.Warn("fetch feed", attrs...)
		b.failed(kind)
		return unavailable(env, err, b.cfg.Operator)
	}

	snap, err := feed.Decode(body)
	if err != nil {
		b.logger.Error("decode feed", "bytes", len(body), "error", err)
		b.failed(feed.FailureDecode)
		return unavailable(env, err, b.cfg.Operator)
	}
	if !snap.Timestamp.IsZero() {
		ts := snap.Timestamp
		env.FeedTimestamp = &ts
	}

	cands := Correlate(snap.Trips, b.targets, now, b.cfg.Horizon)
	env.Arrivals = Format(cands, func(c Candidate) Destination {
		return b.inferrer.Infer(c.Trip, c.Index)
	}, b.cfg.Format, now)
	env.IsLive = true

	for _, a := range env.Arrivals {
		if a.DestinationEstimated {
			env.IsEstimate = true
			break
		}
	}
	if len(env.Arrivals) == 0 {
		env.Note = emptyNote(b.cfg.Kind)
	}

	if b.obs != nil {
		b.obs.SetArrivals(string(b.cfg.Kind), len(env.Arrivals))
	}
	b.logger.Debug("board polled", "trips", len(snap.Trips), "candidates", len(cands), "arrivals", len(env.Arrivals))
	return env
}

func (b *Board) failed(kind feed.FailureKind) {
	if b.obs != nil {
		b.obs.PollFailed(string(b.cfg.Kind), kind)
		b.obs.SetArrivals(string(b.cfg.Kind), 0)
	}
}

// PollAll polls boards concurrently. Results are independent and returned
// in the order given.
func PollAll(ctx context.Context, now time.Time, boards ...*Board) []Envelope {
	out := make([]Envelope, len(boards))
	var g errgroup.Group
	for i, b := range boards {
		g.Go(func() error {
			out[i] = b.Poll(ctx, now)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

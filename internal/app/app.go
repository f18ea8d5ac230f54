// Package app assembles the boards, notice store and metrics from a Config.
// Both binaries share it.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"transitboard/internal/board"
	"transitboard/internal/catalog"
	"transitboard/internal/config"
	"transitboard/internal/feed"
	"transitboard/internal/handler"
	"transitboard/internal/notice"
	"transitboard/internal/storage"
	"transitboard/internal/telemetry"
)

// App holds everything built from one Config.
type App struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	Metrics *telemetry.Metrics
	Fetcher *feed.Fetcher
	Trains  *board.Board
	Buses   *board.Board
	Notices notice.Store
	Gate    *handler.Gate

	db     *storage.DB
	logger *slog.Logger
}

// New loads the catalog and builds the boards. The notice store is opened
// separately by OpenStore so read-only commands never touch the database.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	cat, err := LoadCatalog(cfg, logger)
	if err != nil {
		return nil, err
	}

	m := telemetry.New()
	fetcher := feed.NewFetcher(cfg.FetchTimeout, m, logger)
	format := board.FormatOptions{
		Max:                  cfg.MaxArrivals,
		DelayThreshold:       cfg.DelayThreshold,
		ApproachingThreshold: cfg.ApproachingThreshold,
		DedupWindow:          cfg.DedupWindow,
	}

	a := &App{
		Config:  cfg,
		Catalog: cat,
		Metrics: m,
		Fetcher: fetcher,
		logger:  logger,
	}
	a.Trains = board.New(board.Config{
		Kind: board.Trains,
		Source: feed.Source{
			Name:         string(board.Trains),
			URL:          cfg.TrainFeedURL,
			APIKey:       cfg.TrainAPIKey,
			APIKeyHeader: cfg.APIKeyHeader,
			RequireKey:   true,
		},
		Feed:     cat.Trains,
		Station:  cat.Station.Name,
		Horizon:  cfg.Horizon,
		Format:   format,
		Operator: cfg.Operator,
	}, fetcher, m, logger)
	a.Buses = board.New(board.Config{
		Kind: board.Buses,
		Source: feed.Source{
			Name:         string(board.Buses),
			URL:          cfg.BusFeedURL,
			APIKey:       cfg.BusAPIKey,
			APIKeyHeader: cfg.APIKeyHeader,
		},
		Feed:     cat.Buses,
		Station:  cat.Station.Name,
		Horizon:  cfg.Horizon,
		Format:   format,
		Operator: cfg.Operator,
	}, fetcher, m, logger)

	gate, err := handler.NewGate(cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("admin gate: %w", err)
	}
	a.Gate = gate
	return a, nil
}

// LoadCatalog reads the configured catalog (or the embedded one) and merges
// any static GTFS stop names on top.
func LoadCatalog(cfg *config.Config, logger *slog.Logger) (*catalog.Catalog, error) {
	var (
		cat *catalog.Catalog
		err error
	)
	if cfg.Catalog == "" {
		cat, err = catalog.Default()
	} else {
		cat, err = catalog.Load(cfg.Catalog)
	}
	if err != nil {
		return nil, err
	}

	if cfg.TrainStaticZip != "" {
		if err := catalog.MergeStaticStops(&cat.Trains, cfg.TrainStaticZip, logger.With("board", "trains")); err != nil {
			logger.Warn("train static GTFS not merged", "error", err)
		}
	}
	if cfg.BusStaticZip != "" {
		if err := catalog.MergeStaticStops(&cat.Buses, cfg.BusStaticZip, logger.With("board", "buses")); err != nil {
			logger.Warn("bus static GTFS not merged", "error", err)
		}
	}
	return cat, nil
}

// OpenStore opens the notice store named by Config.DBDriver.
func (a *App) OpenStore() error {
	driver := strings.ToLower(strings.TrimSpace(a.Config.DBDriver))
	switch driver {
	case "memory", "":
		a.Notices = notice.NewMemoryStore()
		a.logger.Warn("notices are kept in memory and lost on restart")
		return nil
	case "sqlite3", "sqlite", "pgx", "postgres":
		if driver == "sqlite" {
			driver = "sqlite3"
		}
		if driver == "postgres" {
			driver = "pgx"
		}
		db, err := storage.Open(driver, a.Config.DBDSN, a.logger)
		if err != nil {
			return err
		}
		a.db = db
		a.Notices = db
		return nil
	}
	return fmt.Errorf("unknown notice store %q", a.Config.DBDriver)
}

// Boards returns the boards in display order.
func (a *App) Boards() []*board.Board {
	return []*board.Board{a.Trains, a.Buses}
}

// Board looks a board up by kind name.
func (a *App) Board(kind string) (*board.Board, error) {
	switch board.Kind(kind) {
	case board.Trains:
		return a.Trains, nil
	case board.Buses:
		return a.Buses, nil
	}
	return nil, errors.New("board must be trains or buses")
}

// Close releases the database if one was opened.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

package handler

import (
	"log/slog"
	"time"

	"transitboard/internal/board"
	"transitboard/internal/catalog"
	"transitboard/internal/notice"
)

// WriteRecorder counts notice writes by operation and result.
type WriteRecorder interface {
	NoticeWrite(op, result string)
}

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	trains  *board.Board
	buses   *board.Board
	station catalog.Station
	cat     *catalog.Catalog
	notices notice.Store
	writes  WriteRecorder
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Handler. writes may be nil.
func New(trains, buses *board.Board, cat *catalog.Catalog, notices notice.Store, writes WriteRecorder, logger *slog.Logger) *Handler {
	return &Handler{
		trains:  trains,
		buses:   buses,
		station: cat.Station,
		cat:     cat,
		notices: notices,
		writes:  writes,
		logger:  logger,
		now:     time.Now,
	}
}

func (h *Handler) recordWrite(op, result string) {
	if h.writes != nil {
		h.writes.NoticeWrite(op, result)
	}
}

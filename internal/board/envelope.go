package board

import (
	"errors"
	"fmt"
	"time"

	"transitboard/internal/feed"
)

// Envelope is the JSON body returned for one board.
type Envelope struct {
	Board         Kind       `json:"board"`
	Arrivals      []Arrival  `json:"arrivals"`
	Error         string     `json:"error,omitempty"`
	IsLive        bool       `json:"isLive"`
	Note          string     `json:"note,omitempty"`
	IsEstimate    bool       `json:"isEstimate"`
	Station       string     `json:"station,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
	FeedTimestamp *time.Time `json:"feedTimestamp,omitempty"`
}

// unavailable fills in the generic, user-facing failure text. Details
// stay in the logs.
func unavailable(env Envelope, err error, operator string) Envelope {
	env.IsLive = false
	env.Arrivals = []Arrival{}
	if errors.Is(err, feed.ErrNotConfigured) {
		env.Error = fmt.Sprintf("%s data unavailable: feed not configured. Contact %s.", env.Board.Title(), operator)
	} else {
		env.Error = fmt.Sprintf("%s data unavailable. Contact %s.", env.Board.Title(), operator)
	}
	return env
}

func emptyNote(k Kind) string {
	return fmt.Sprintf("No %s currently approaching", k)
}

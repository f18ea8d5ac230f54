package board

import (
	"time"

	"transitboard/internal/feed"
)

// Kind names a board. It is also the metrics label and the broadcast subject suffix.
type Kind string

const (
	Trains Kind = "trains"
	Buses  Kind = "buses"
)

// Title is the singular display noun used in error text.
func (k Kind) Title() string {
	switch k {
	case Trains:
		return "Train"
	case Buses:
		return "Bus"
	}
	return "Transit"
}

// Arrival statuses.
const (
	StatusApproaching = "approaching"
	StatusEnRoute     = "en-route"
	StatusAtStop      = "at-stop"
	StatusDelayed     = "delayed"
	StatusOnTime      = "on-time"
	StatusCancelled   = "cancelled"
)

// Arrival is one row on a board. Built fresh every poll.
type Arrival struct {
	RouteLabel           string     `json:"routeLabel"`
	Destination          string     `json:"destination"`
	DestinationEstimated bool       `json:"destinationEstimated"`
	ExpectedArrival      time.Time  `json:"expectedArrival"`
	ScheduledArrival     *time.Time `json:"scheduledArrival,omitempty"`
	MinutesAway          int        `json:"minutesAway"`
	VehicleOrTripID      string     `json:"vehicleOrTripId"`
	StopID               string     `json:"stopId"`
	Status               string     `json:"status"`
	DelayMinutes         int        `json:"delayMinutes"`
}

// Candidate pairs a trip with one of its stops at the target station.
type Candidate struct {
	Trip      feed.TripUpdate
	Stop      feed.StopTimeUpdate
	Index     int // position of Stop in Trip.Stops
	Predicted time.Time
	Dwelling  bool // arrived, not yet departed
}

// Destination is where a trip is headed and which line it runs on.
type Destination struct {
	Label     string
	Line      string
	Estimated bool
}

package feed

import "time"

// Snapshot is one decoded GTFS-RT FeedMessage, reduced to its trip updates.
type Snapshot struct {
	Version   string
	Timestamp time.Time // zero when the header carries none
	Trips     []TripUpdate
}

// TripUpdate is one vehicle run as known to the feed at fetch time.
type TripUpdate struct {
	TripID      string
	RouteID     string
	EntityID    string // externally displayed run number on some feeds
	VehicleID   string
	DirectionID *uint32
	Cancelled   bool
	Stops       []StopTimeUpdate // strictly increasing StopSequence
}

// StopTimeUpdate is a predicted arrival/departure at one stop of a trip.
type StopTimeUpdate struct {
	StopID       string
	StopSequence uint32
	Arrival      *int64 // epoch seconds
	Departure    *int64 // epoch seconds
	DelaySeconds int32
	Skipped      bool
}

// Predicted returns the arrival time, falling back to departure.
func (s StopTimeUpdate) Predicted() (time.Time, bool) {
	switch {
	case s.Arrival != nil && *s.Arrival > 0:
		return time.Unix(*s.Arrival, 0), true
	case s.Departure != nil && *s.Departure > 0:
		return time.Unix(*s.Departure, 0), true
	}
	return time.Time{}, false
}

// DepartureTime returns the departure time if the feed has one.
func (s StopTimeUpdate) DepartureTime() (time.Time, bool) {
	if s.Departure != nil && *s.Departure > 0 {
		return time.Unix(*s.Departure, 0), true
	}
	return time.Time{}, false
}

// RunID is the identifier shown to riders: vehicle, then entity, then trip id.
func (t TripUpdate) RunID() string {
	switch {
	case t.VehicleID != "":
		return t.VehicleID
	case t.EntityID != "":
		return t.EntityID
	}
	return t.TripID
}

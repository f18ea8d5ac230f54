package board

import (
	"transitboard/internal/catalog"
	"transitboard/internal/feed"
)

// Inferrer labels trips with a destination and a line.
type Inferrer struct {
	feed catalog.Feed
}

func NewInferrer(f catalog.Feed) *Inferrer {
	return &Inferrer{feed: f}
}

// Infer prefers the trip's own terminal stop. When the feed stops at the
// matched stop, or the terminal is not in the stop table, it falls back to
// route termini, run-number rules and the route's default terminus, and
// marks the result Estimated.
func (in *Inferrer) Infer(trip feed.TripUpdate, matchIndex int) Destination {
	line := in.routeLine(trip.RouteID)

	if n := len(trip.Stops); n > 0 && n-1 > matchIndex {
		if name, ok := in.feed.StopName(trip.Stops[n-1].StopID); ok {
			return Destination{Label: name, Line: or(line, trip.RouteID)}
		}
	}

	route := in.feed.Routes[trip.RouteID]

	if trip.DirectionID != nil {
		if dir := int(*trip.DirectionID); dir < len(route.Termini) && route.Termini[dir] != "" {
			return Destination{Label: route.Termini[dir], Line: or(line, trip.RouteID), Estimated: true}
		}
	}

	if n, ok := catalog.RunNumber(trip.EntityID, trip.TripID); ok {
		if rule, ok := in.feed.MatchRun(n); ok {
			return Destination{Label: rule.Destination, Line: or(line, rule.Line, trip.RouteID), Estimated: true}
		}
	}

	if route.DefaultTerminus != "" {
		return Destination{Label: route.DefaultTerminus, Line: or(line, trip.RouteID), Estimated: true}
	}
	return Destination{Label: "Unknown", Line: or(line, trip.RouteID), Estimated: true}
}

func (in *Inferrer) routeLine(routeID string) string {
	if r, ok := in.feed.Routes[routeID]; ok {
		return r.Label
	}
	return ""
}

// or returns the first non-empty string.
func or(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

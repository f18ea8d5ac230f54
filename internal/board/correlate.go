package board

import (
	"time"

	"transitboard/internal/catalog"
	"transitboard/internal/feed"
)

// Correlate finds every stop update at a target stop whose predicted time
// falls within [now, now+horizon]. A trip touching two target stops yields
// two candidates; a stop ID repeated within one trip yields only its first
// upcoming visit.
func Correlate(trips []feed.TripUpdate, targets catalog.StopSet, now time.Time, horizon time.Duration) []Candidate {
	limit := now.Add(horizon)
	var out []Candidate
	for _, trip := range trips {
		seen := make(map[string]bool)
		for i, stop := range trip.Stops {
			if !targets.Contains(stop.StopID) || seen[stop.StopID] {
				continue
			}

			predicted, ok := stop.Predicted()
			if !ok {
				continue
			}
			dwelling := false
			if predicted.Before(now) {
				dep, ok := stop.DepartureTime()
				if !ok || dep.Before(now) {
					continue
				}
				predicted, dwelling = dep, true
			}
			if predicted.After(limit) {
				continue
			}
			seen[stop.StopID] = true
			out = append(out, Candidate{
				Trip:      trip,
				Stop:      stop,
				Index:     i,
				Predicted: predicted,
				Dwelling:  dwelling,
			})
		}
	}
	return out
}

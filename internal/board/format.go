package board

import (
	"math"
	"sort"
	"time"
)

// FormatOptions tune the formatter. Zero values fall back to the defaults
// documented on each field.
type FormatOptions struct {
	Max                  int           // 8
	DelayThreshold       time.Duration // 2m
	ApproachingThreshold time.Duration // 2m
	DedupWindow          time.Duration // 2m
	DefaultStatus        string        // on-time
}

func (o FormatOptions) withDefaults() FormatOptions {
	if o.Max <= 0 {
		o.Max = 8
	}
	if o.DelayThreshold <= 0 {
		o.DelayThreshold = 2 * time.Minute
	}
	if o.ApproachingThreshold <= 0 {
		o.ApproachingThreshold = 2 * time.Minute
	}
	if o.DedupWindow <= 0 {
		o.DedupWindow = 2 * time.Minute
	}
	if o.DefaultStatus == "" {
		o.DefaultStatus = StatusOnTime
	}
	return o
}

// Format turns candidates into board rows: minutes away, status, sorted by
// minutes away, deduplicated per run and stop, truncated to opts.Max.
func Format(cands []Candidate, infer func(Candidate) Destination, opts FormatOptions, now time.Time) []Arrival {
	opts = opts.withDefaults()

	arrivals := make([]Arrival, 0, len(cands))
	for _, c := range cands {
		dest := infer(c)
		a := Arrival{
			RouteLabel:           dest.Line,
			Destination:          dest.Label,
			DestinationEstimated: dest.Estimated,
			ExpectedArrival:      c.Predicted.UTC(),
			MinutesAway:          minutesAway(c.Predicted, now),
			VehicleOrTripID:      c.Trip.RunID(),
			StopID:               c.Stop.StopID,
			DelayMinutes:         delayMinutes(c.Stop.DelaySeconds),
		}
		if c.Stop.DelaySeconds != 0 {
			sched := c.Predicted.Add(-time.Duration(c.Stop.DelaySeconds) * time.Second).UTC()
			a.ScheduledArrival = &sched
		}
		a.Status = status(c, a.MinutesAway, a.DelayMinutes, opts)
		arrivals = append(arrivals, a)
	}

	sort.SliceStable(arrivals, func(i, j int) bool {
		a, b := arrivals[i], arrivals[j]
		if a.MinutesAway != b.MinutesAway {
			return a.MinutesAway < b.MinutesAway
		}
		if !a.ExpectedArrival.Equal(b.ExpectedArrival) {
			return a.ExpectedArrival.Before(b.ExpectedArrival)
		}
		return a.VehicleOrTripID < b.VehicleOrTripID
	})

	arrivals = dedupe(arrivals, opts.DedupWindow)
	if len(arrivals) > opts.Max {
		arrivals = arrivals[:opts.Max]
	}
	return arrivals
}

func minutesAway(predicted, now time.Time) int {
	m := int(math.Round(predicted.Sub(now).Minutes()))
	if m < 0 {
		return 0
	}
	return m
}

func delayMinutes(delaySeconds int32) int {
	if delaySeconds <= 0 {
		return 0
	}
	return int(math.Round(float64(delaySeconds) / 60))
}

// status picks the first match: cancelled, delayed, at-stop, approaching,
// then the board default. Delay is judged on the rounded minutes shown.
func status(c Candidate, minutes, delay int, opts FormatOptions) string {
	switch {
	case c.Trip.Cancelled || c.Stop.Skipped:
		return StatusCancelled
	case delay > 0 && delay >= int(math.Round(opts.DelayThreshold.Minutes())):
		return StatusDelayed
	case minutes == 0 || c.Dwelling:
		return StatusAtStop
	case time.Duration(minutes)*time.Minute <= opts.ApproachingThreshold:
		return StatusApproaching
	}
	return opts.DefaultStatus
}

// dedupe drops rows for a run and stop already shown within window.
// Input must be sorted by expected time within each key.
func dedupe(arrivals []Arrival, window time.Duration) []Arrival {
	type key struct{ run, stop string }
	kept := make(map[key][]time.Time)
	out := arrivals[:0]
	for _, a := range arrivals {
		k := key{a.VehicleOrTripID, a.StopID}
		dup := false
		for _, t := range kept[k] {
			if d := a.ExpectedArrival.Sub(t); d <= window && d >= -window {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		kept[k] = append(kept[k], a.ExpectedArrival)
		out = append(out, a)
	}
	return out
}

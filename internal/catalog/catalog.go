package catalog

import (
	"sort"
	"strconv"
	"strings"
)

// Catalog is the static description of the station a deployment serves.
type Catalog struct {
	Station Station `toml:"station" yaml:"station"`
	Trains  Feed    `toml:"trains" yaml:"trains"`
	Buses   Feed    `toml:"buses" yaml:"buses"`
}

type Station struct {
	Name string  `toml:"name" yaml:"name" json:"name" validate:"required"`
	Lat  float64 `toml:"lat" yaml:"lat" json:"lat" validate:"latitude"`
	Lon  float64 `toml:"lon" yaml:"lon" json:"lon" validate:"longitude"`
}

// Feed holds the per-board lookup tables: which stops are "ours", what
// stops and routes are called, and the run-number fallback rules.
type Feed struct {
	TargetStops   []string          `toml:"target_stops" yaml:"target_stops" validate:"required,min=1,dive,required"`
	DefaultStatus string            `toml:"default_status" yaml:"default_status" validate:"omitempty,oneof=on-time en-route"`
	Stops         map[string]string `toml:"stops" yaml:"stops"`
	Routes        map[string]Route  `toml:"routes" yaml:"routes" validate:"dive"`
	RunRules      []RunRule         `toml:"run_rules" yaml:"run_rules" validate:"dive"`
}

// Route labels a route and, optionally, names its termini by direction_id.
type Route struct {
	Label           string   `toml:"label" yaml:"label"`
	Termini         []string `toml:"termini" yaml:"termini" validate:"max=2"`
	DefaultTerminus string   `toml:"default_terminus" yaml:"default_terminus"`
}

// RunRule maps a run number to a terminus. Zero Min or Max is unbounded.
type RunRule struct {
	Min         int    `toml:"min" yaml:"min" validate:"gte=0"`
	Max         int    `toml:"max" yaml:"max" validate:"gte=0"`
	Parity      string `toml:"parity" yaml:"parity" validate:"omitempty,oneof=even odd any"`
	Destination string `toml:"destination" yaml:"destination" validate:"required"`
	Line        string `toml:"line" yaml:"line"`
}

// Matches reports whether run number n falls in the rule's range and parity.
func (r RunRule) Matches(n int) bool {
	if r.Min != 0 && n < r.Min {
		return false
	}
	if r.Max != 0 && n > r.Max {
		return false
	}
	switch r.Parity {
	case "even":
		return n%2 == 0
	case "odd":
		return n%2 != 0
	}
	return true
}

// StopSet is the read-only set of stop IDs considered "our station".
type StopSet map[string]struct{}

func NewStopSet(ids ...string) StopSet {
	s := make(StopSet, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

func (s StopSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in sorted order.
func (s StopSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Targets returns the feed's target stops as a StopSet.
func (f Feed) Targets() StopSet {
	return NewStopSet(f.TargetStops...)
}

// StopName resolves a stop ID, reporting whether it is known.
func (f Feed) StopName(id string) (string, bool) {
	name, ok := f.Stops[id]
	return name, ok && name != ""
}

// RouteLabel returns the display label for a route, or the ID itself.
func (f Feed) RouteLabel(id string) string {
	if r, ok := f.Routes[id]; ok && r.Label != "" {
		return r.Label
	}
	return id
}

// RunNumber extracts the numeric run number used by RunRules: the entity
// ID when it is all digits, else the trailing digits of the trip ID.
func RunNumber(entityID, tripID string) (int, bool) {
	if n, err := strconv.Atoi(entityID); err == nil && n >= 0 {
		return n, true
	}
	end := len(tripID)
	start := end
	for start > 0 && tripID[start-1] >= '0' && tripID[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}
	n, err := strconv.Atoi(tripID[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// MatchRun returns the first rule matching run number n.
func (f Feed) MatchRun(n int) (RunRule, bool) {
	for _, r := range f.RunRules {
		if r.Matches(n) {
			return r, true
		}
	}
	return RunRule{}, false
}

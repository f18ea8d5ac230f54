package handler

import (
	"net/http"

	"transitboard/internal/board"
)

// Trains returns the train board envelope. Failures are reported inside
// the envelope, so the status is always 200.
func (h *Handler) Trains(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.trains.Poll(r.Context(), h.now()))
}

func (h *Handler) Buses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.buses.Poll(r.Context(), h.now()))
}

// Board polls both feeds concurrently.
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	envs := board.PollAll(r.Context(), h.now(), h.trains, h.buses)
	writeJSON(w, http.StatusOK, map[string]board.Envelope{
		"trains": envs[0],
		"buses":  envs[1],
	})
}

type stationResponse struct {
	Name        string   `json:"name"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	TrainStops  []string `json:"trainStops"`
	BusStops    []string `json:"busStops"`
	TrainsReady bool     `json:"trainsConfigured"`
	BusesReady  bool     `json:"busesConfigured"`
}

// Station describes the configured station, for the display header.
func (h *Handler) Station(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stationResponse{
		Name:        h.station.Name,
		Lat:         h.station.Lat,
		Lon:         h.station.Lon,
		TrainStops:  h.cat.Trains.Targets().IDs(),
		BusStops:    h.cat.Buses.Targets().IDs(),
		TrainsReady: h.trains.Source().Check() == nil,
		BusesReady:  h.buses.Source().Check() == nil,
	})
}

package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"transitboard/internal/board"
	"transitboard/internal/catalog"
	"transitboard/internal/feed"
	"transitboard/internal/notice"
)

var testNow = time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)

type stubFetcher struct {
	body []byte
	err  error
}

func (s stubFetcher) Fetch(context.Context, feed.Source) ([]byte, error) { return s.body, s.err }

type countingRecorder struct{ writes map[string]int }

func (c *countingRecorder) NoticeWrite(op, result string) {
	if c.writes == nil {
		c.writes = make(map[string]int)
	}
	c.writes[op+"/"+result]++
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestHandler(t *testing.T, trains, buses board.Fetcher) (*Handler, *notice.MemoryStore, *countingRecorder) {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	logger := testLogger()
	tb := board.New(board.Config{Kind: board.Trains, Feed: cat.Trains, Station: cat.Station.Name,
		Source: feed.Source{Name: "trains", URL: "http://trains.invalid", APIKey: "k", RequireKey: true}}, trains, nil, logger)
	bb := board.New(board.Config{Kind: board.Buses, Feed: cat.Buses, Station: cat.Station.Name,
		Source: feed.Source{Name: "buses"}}, buses, nil, logger)

	store := notice.NewMemoryStore()
	rec := &countingRecorder{}
	h := New(tb, bb, cat, store, rec, logger)
	h.now = func() time.Time { return testNow }
	return h, store, rec
}

func trainFeed(t *testing.T) []byte {
	t.Helper()
	arr := testNow.Add(8 * time.Minute).Unix()
	b, err := feed.Encode(feed.Snapshot{Trips: []feed.TripUpdate{{
		TripID: "2477937", EntityID: "1572", RouteID: "1",
		Stops: []feed.StopTimeUpdate{{StopID: "56", StopSequence: 5, Arrival: &arr}},
	}}})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestTrains_Live(t *testing.T) {
	h, _, _ := newTestHandler(t, stubFetcher{body: trainFeed(t)}, stubFetcher{})

	rec := httptest.NewRecorder()
	h.Trains(rec, httptest.NewRequest(http.MethodGet, "/api/trains", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var env board.Envelope
	decodeBody(t, rec, &env)
	if !env.IsLive || len(env.Arrivals) != 1 {
		t.Fatalf("envelope = %+v", env)
	}
	a := env.Arrivals[0]
	if a.Destination != "Grand Central Terminal" || !a.DestinationEstimated || a.MinutesAway != 8 {
		t.Errorf("arrival = %+v", a)
	}
	if !env.IsEstimate {
		t.Error("isEstimate should be set for a run-number destination")
	}
}

func TestBuses_NotConfigured(t *testing.T) {
	fetcher := feed.NewFetcher(time.Second, nil, testLogger())
	h, _, _ := newTestHandler(t, stubFetcher{}, fetcher)

	rec := httptest.NewRecorder()
	h.Buses(rec, httptest.NewRequest(http.MethodGet, "/api/buses", nil))

	var raw map[string]any
	decodeBody(t, rec, &raw)
	if raw["isLive"] != false {
		t.Errorf("isLive = %v", raw["isLive"])
	}
	if arr, ok := raw["arrivals"].([]any); !ok || len(arr) != 0 {
		t.Errorf("arrivals = %#v, want []", raw["arrivals"])
	}
	if msg, _ := raw["error"].(string); !strings.Contains(msg, "not configured") {
		t.Errorf("error = %q", msg)
	}
}

func TestBoard_Both(t *testing.T) {
	h, _, _ := newTestHandler(t, stubFetcher{body: trainFeed(t)}, stubFetcher{err: feed.ErrTimeout})

	rec := httptest.NewRecorder()
	h.Board(rec, httptest.NewRequest(http.MethodGet, "/api/board", nil))

	var out map[string]board.Envelope
	decodeBody(t, rec, &out)
	if !out["trains"].IsLive || out["buses"].IsLive {
		t.Errorf("trains live = %v, buses live = %v", out["trains"].IsLive, out["buses"].IsLive)
	}
	if out["buses"].Error == "" {
		t.Error("buses envelope should carry an error")
	}
}

func TestStation(t *testing.T) {
	h, _, _ := newTestHandler(t, stubFetcher{}, stubFetcher{})
	rec := httptest.NewRecorder()
	h.Station(rec, httptest.NewRequest(http.MethodGet, "/api/station", nil))

	var s stationResponse
	decodeBody(t, rec, &s)
	if s.Name != "Mount Vernon West" || len(s.TrainStops) != 1 || s.TrainStops[0] != "56" {
		t.Errorf("station = %+v", s)
	}
	if !s.TrainsReady || s.BusesReady {
		t.Errorf("configured flags = %v, %v", s.TrainsReady, s.BusesReady)
	}
}

func TestNotices_CreateUpdateDelete(t *testing.T) {
	h, store, writes := newTestHandler(t, stubFetcher{}, stubFetcher{})

	body := `{"password":"ignored here","title":"Water shutoff","content":"2-4pm today","priority":"high"}`
	rec := httptest.NewRecorder()
	h.CreateNotice(rec, httptest.NewRequest(http.MethodPost, "/api/notices", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	var created struct{ Notice notice.Notice }
	decodeBody(t, rec, &created)
	if created.Notice.ID == "" || created.Notice.Priority != "high" || !created.Notice.Active {
		t.Fatalf("created = %+v", created.Notice)
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/notices/"+created.Notice.ID, strings.NewReader(`{"active":false}`))
	req.SetPathValue("id", created.Notice.ID)
	rec = httptest.NewRecorder()
	h.UpdateNotice(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	h.Notices(rec, httptest.NewRequest(http.MethodGet, "/api/notices", nil))
	var list struct {
		Notices []notice.Notice
	}
	decodeBody(t, rec, &list)
	if len(list.Notices) != 0 {
		t.Errorf("inactive notice listed: %+v", list.Notices)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/notices/"+created.Notice.ID, nil)
	req.SetPathValue("id", created.Notice.ID)
	rec = httptest.NewRecorder()
	h.DeleteNotice(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if n, _ := store.Count(context.Background()); n != 0 {
		t.Errorf("count after delete = %d", n)
	}
	if writes.writes["create/ok"] != 1 || writes.writes["update/ok"] != 1 || writes.writes["delete/ok"] != 1 {
		t.Errorf("writes = %v", writes.writes)
	}
}

func TestNotices_WriteErrors(t *testing.T) {
	h, _, _ := newTestHandler(t, stubFetcher{}, stubFetcher{})

	tests := []struct {
		name   string
		call   func(w http.ResponseWriter, r *http.Request)
		method string
		id     string
		body   string
		want   int
	}{
		{"missing content", h.CreateNotice, http.MethodPost, "", `{"title":"x"}`, http.StatusBadRequest},
		{"bad json", h.CreateNotice, http.MethodPost, "", `{`, http.StatusBadRequest},
		{"bad priority", h.CreateNotice, http.MethodPost, "", `{"title":"x","content":"y","priority":"urgent"}`, http.StatusBadRequest},
		{"update missing", h.UpdateNotice, http.MethodPatch, "nope", `{"title":"x"}`, http.StatusNotFound},
		{"empty patch", h.UpdateNotice, http.MethodPatch, "nope", `{}`, http.StatusBadRequest},
		{"delete missing", h.DeleteNotice, http.MethodDelete, "nope", ``, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/notices/"+tt.id, strings.NewReader(tt.body))
			req.SetPathValue("id", tt.id)
			rec := httptest.NewRecorder()
			tt.call(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestKeepAlive(t *testing.T) {
	h, _, _ := newTestHandler(t, stubFetcher{}, stubFetcher{})
	rec := httptest.NewRecorder()
	h.KeepAlive(rec, httptest.NewRequest(http.MethodGet, "/api/keep-alive", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestGate(t *testing.T) {
	g, err := NewGate("lobby-admin")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		pw   string
		want bool
	}{
		{"lobby-admin", true},
		{"lobby-admin ", false},
		{"LOBBY-ADMIN", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := g.Check(tt.pw); got != tt.want {
			t.Errorf("Check(%q) = %v, want %v", tt.pw, got, tt.want)
		}
	}

	empty, err := NewGate("")
	if err != nil {
		t.Fatal(err)
	}
	if empty.Enabled() || empty.Check("") || empty.Check("anything") {
		t.Error("an unconfigured gate must reject every password")
	}
}

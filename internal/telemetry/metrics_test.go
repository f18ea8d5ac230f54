package telemetry

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"transitboard/internal/feed"
)

func TestMetrics_Observers(t *testing.T) {
	m := New()

	m.ObserveFetch("trains", 150*time.Millisecond, 2048)
	m.FetchFailed("trains", feed.FailureTimeout)
	m.FetchFailed("trains", feed.FailureTimeout)
	m.SetArrivals("buses", 4)
	m.PollFailed("trains", feed.FailureDecode)
	m.NoticeWrite("create", "unauthorized")
	m.ObservePublish("trains", nil)
	m.ObservePublish("trains", errors.New("closed"))

	if got := testutil.ToFloat64(m.FeedBytes.WithLabelValues("trains")); got != 2048 {
		t.Errorf("feed bytes = %v", got)
	}
	if got := testutil.ToFloat64(m.FetchFailures.WithLabelValues("trains", "timeout")); got != 2 {
		t.Errorf("timeouts = %v", got)
	}
	if got := testutil.ToFloat64(m.BoardArrivals.WithLabelValues("buses")); got != 4 {
		t.Errorf("arrivals = %v", got)
	}
	if got := testutil.ToFloat64(m.NoticeWrites.WithLabelValues("create", "unauthorized")); got != 1 {
		t.Errorf("notice writes = %v", got)
	}
	if got := testutil.ToFloat64(m.Published.WithLabelValues("trains")); got != 1 {
		t.Errorf("published = %v", got)
	}
	if got := testutil.ToFloat64(m.PublishErrors); got != 1 {
		t.Errorf("publish errors = %v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.SetArrivals("trains", 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `transit_board_arrivals{board="trains"} 3`) {
		t.Errorf("metrics output missing board gauge:\n%s", body)
	}
}

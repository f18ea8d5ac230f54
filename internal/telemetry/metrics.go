package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"transitboard/internal/feed"
)

// Metrics holds every series the service exports, on a private registry.
// It satisfies feed.Observer and board.Observer.
type Metrics struct {
	reg *prometheus.Registry

	FetchSeconds   *prometheus.HistogramVec
	FeedBytes      *prometheus.CounterVec
	FetchFailures  *prometheus.CounterVec
	PollFailures   *prometheus.CounterVec
	BoardArrivals  *prometheus.GaugeVec
	NoticeWrites   *prometheus.CounterVec
	Published      *prometheus.CounterVec
	PublishErrors  prometheus.Counter
	NATSConnected  prometheus.Gauge
	RequestSeconds *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		FetchSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transit_feed_fetch_seconds",
			Help:    "Time to download a GTFS-RT feed.",
			Buckets: prometheus.DefBuckets,
		}, []string{"feed"}),
		FeedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transit_feed_bytes_total",
			Help: "Bytes downloaded per feed.",
		}, []string{"feed"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transit_feed_failures_total",
			Help: "Failed feed fetches by kind.",
		}, []string{"feed", "kind"}),
		PollFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transit_board_poll_failures_total",
			Help: "Board polls that returned an error envelope, by kind.",
		}, []string{"board", "kind"}),
		BoardArrivals: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "transit_board_arrivals",
			Help: "Arrivals shown on the last poll of each board.",
		}, []string{"board"}),
		NoticeWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transit_notice_writes_total",
			Help: "Notice write requests by operation and result.",
		}, []string{"op", "result"}),
		Published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transit_broadcast_published_total",
			Help: "Board envelopes published to NATS.",
		}, []string{"board"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transit_broadcast_publish_errors_total",
			Help: "Failed NATS publishes.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_nats_connected",
			Help: "1 if the NATS connection is established, 0 otherwise.",
		}),
		RequestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transit_http_request_seconds",
			Help:    "HTTP request latency by route pattern and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "code"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.FetchSeconds,
		m.FeedBytes,
		m.FetchFailures,
		m.PollFailures,
		m.BoardArrivals,
		m.NoticeWrites,
		m.Published,
		m.PublishErrors,
		m.NATSConnected,
		m.RequestSeconds,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveFetch(name string, d time.Duration, bytes int) {
	m.FetchSeconds.WithLabelValues(name).Observe(d.Seconds())
	m.FeedBytes.WithLabelValues(name).Add(float64(bytes))
}

func (m *Metrics) FetchFailed(name string, kind feed.FailureKind) {
	m.FetchFailures.WithLabelValues(name, string(kind)).Inc()
}

func (m *Metrics) SetArrivals(board string, n int) {
	m.BoardArrivals.WithLabelValues(board).Set(float64(n))
}

func (m *Metrics) PollFailed(board string, kind feed.FailureKind) {
	m.PollFailures.WithLabelValues(board, string(kind)).Inc()
}

// NoticeWrite records a gated write. result is "ok", "unauthorized",
// "invalid", "not_found" or "error".
func (m *Metrics) NoticeWrite(op, result string) {
	m.NoticeWrites.WithLabelValues(op, result).Inc()
}

func (m *Metrics) ObservePublish(board string, err error) {
	if err != nil {
		m.PublishErrors.Inc()
		return
	}
	m.Published.WithLabelValues(board).Inc()
}

func (m *Metrics) SetNATSConnected(up bool) {
	if up {
		m.NATSConnected.Set(1)
	} else {
		m.NATSConnected.Set(0)
	}
}

func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	m.RequestSeconds.WithLabelValues(route, strconv.Itoa(code)).Observe(d.Seconds())
}

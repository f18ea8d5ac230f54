package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultTrainFeedURL is the Metro-North GTFS-RT endpoint.
const DefaultTrainFeedURL = "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/mnr%2Fgtfs-mnr"

// Config holds application configuration from environment variables.
type Config struct {
	Port     int
	LogLevel slog.Level
	Catalog  string // empty means the embedded catalog

	FetchTimeout         time.Duration
	Horizon              time.Duration
	MaxArrivals          int
	DelayThreshold       time.Duration
	ApproachingThreshold time.Duration
	DedupWindow          time.Duration

	TrainFeedURL   string
	TrainAPIKey    string
	TrainStaticZip string
	BusFeedURL     string
	BusAPIKey      string
	BusStaticZip   string
	APIKeyHeader   string

	DBDriver string // sqlite3, pgx or memory
	DBDSN    string

	AdminPassword string // empty disables notice writes
	Operator      string
	CORSOrigins   []string

	NATSURL           string
	BroadcastInterval time.Duration

	Metrics bool // expose /metrics
}

// Load reads configuration from environment variables with defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     envInt("TRANSIT_PORT", 8080),
		LogLevel: envLevel("TRANSIT_LOG_LEVEL", slog.LevelInfo),
		Catalog:  envStr("TRANSIT_CATALOG", ""),

		FetchTimeout:         envDuration("TRANSIT_FETCH_TIMEOUT", 8*time.Second),
		Horizon:              envDuration("TRANSIT_HORIZON", 120*time.Minute),
		MaxArrivals:          envInt("TRANSIT_MAX_ARRIVALS", 8),
		DelayThreshold:       envDuration("TRANSIT_DELAY_THRESHOLD", 2*time.Minute),
		ApproachingThreshold: envDuration("TRANSIT_APPROACHING_THRESHOLD", 2*time.Minute),
		DedupWindow:          envDuration("TRANSIT_DEDUP_WINDOW", 2*time.Minute),

		TrainFeedURL:   envStr("TRANSIT_TRAIN_FEED_URL", DefaultTrainFeedURL),
		TrainAPIKey:    envStr("TRANSIT_TRAIN_API_KEY", ""),
		TrainStaticZip: envStr("TRANSIT_TRAIN_STATIC_ZIP", ""),
		BusFeedURL:     envStr("TRANSIT_BUS_FEED_URL", ""),
		BusAPIKey:      envStr("TRANSIT_BUS_API_KEY", ""),
		BusStaticZip:   envStr("TRANSIT_BUS_STATIC_ZIP", ""),
		APIKeyHeader:   envStr("TRANSIT_API_KEY_HEADER", "x-api-key"),

		DBDriver: envStr("TRANSIT_DB_DRIVER", "sqlite3"),
		DBDSN:    envStr("TRANSIT_DB_DSN", "./transitboard.db"),

		AdminPassword: envStr("TRANSIT_ADMIN_PASSWORD", ""),
		Operator:      envStr("TRANSIT_OPERATOR", "the building operator"),
		CORSOrigins:   envList("TRANSIT_CORS_ORIGINS", []string{"*"}),

		NATSURL:           envStr("TRANSIT_NATS_URL", ""),
		BroadcastInterval: envDuration("TRANSIT_BROADCAST_INTERVAL", 60*time.Second),

		Metrics: envBool("TRANSIT_METRICS", true),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// envDuration accepts Go durations ("90s", "2m") or bare seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func envLevel(key string, fallback slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return l
}

package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"transitboard/internal/handler"
)

// maxAdminBody bounds the body read by requireAdmin.
const maxAdminBody = 64 << 10

type requestObserver func(route string, code int, d time.Duration)

func withMiddleware(h http.Handler, logger *slog.Logger, origins []string, observe requestObserver) http.Handler {
	return securityHeaders(requestLogger(cors(h, origins), logger, observe))
}

// requireAdmin is the single check point for notice writes. It reads the
// JSON "password" field, restores the body for the next handler, and
// answers 401 when the password doesn't match.
func requireAdmin(next http.Handler, gate *handler.Gate, op string, rec handler.WriteRecorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAdminBody))
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
				return
			}
			body = b
		}

		var creds struct {
			Password string `json:"password"`
		}
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &creds); err != nil {
				if rec != nil {
					rec.NoticeWrite(op, "invalid")
				}
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid JSON body"})
				return
			}
		}

		if !gate.Check(creds.Password) {
			if rec != nil {
				rec.NoticeWrite(op, "unauthorized")
			}
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized", "valid": false})
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
		next.ServeHTTP(w, r)
	})
}

// cors lets the separately hosted display and admin pages call the API.
func cors(next http.Handler, origins []string) http.Handler {
	wildcard := slices.Contains(origins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (wildcard || slices.Contains(origins, origin)) {
			if wildcard {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler, logger *slog.Logger, observe requestObserver) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)
		elapsed := time.Since(start)

		// Board polls and metric scrapes are frequent; keep them out of Info.
		level := slog.LevelInfo
		if r.Method == http.MethodGet && (strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/metrics") && sw.status < 400 {
			level = slog.LevelDebug
		}
		logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", elapsed.Round(time.Microsecond),
		)
		if observe != nil {
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			observe(route, sw.status, elapsed)
		}
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

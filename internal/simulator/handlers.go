package simulator

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tempsense/tempsense/internal/logging"
	"github.com/tempsense/tempsense/internal/settings"
	"github.com/tempsense/tempsense/internal/version"
)

// UpdateReply is the body /updateConfig answers with.
const UpdateReply = "Config updated"

const maxBodySize = 16 << 10

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleStatus)

	// Wrong methods get 405 from the mux before any fault is injected.
	mux.Handle("GET /getConfig", s.faults.wrap(http.HandlerFunc(s.handleGetConfig)))
	mux.Handle("POST /updateConfig", s.faults.wrap(http.HandlerFunc(s.handleUpdateConfig)))
	mux.Handle("GET /getSensorData", s.faults.wrap(http.HandlerFunc(s.handleSensorData)))

	return logRequests(mux)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	rec := s.device.Record()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "tempsense simulator %s\nid: %s\nfirmware: %s\nuptime: %s\nupdates: %d\nconfig: %s\n",
		version.Version, s.config.ID, s.config.Firmware,
		s.device.Uptime().Round(time.Second), s.device.Updates(), rec.Summary())
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, EncodeConfig(s.device.Record()))
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	p, err := settings.DecodePartial(body)
	if err != nil {
		logging.Warn("Rejected configuration update", zap.Error(err))
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	rec := s.device.Update(p)
	logging.Debug("Configuration updated",
		zap.Int("fields", len(p.Present())),
		zap.String("summary", rec.Summary()),
	)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, UpdateReply)
}

func (s *Server) handleSensorData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.device.Sample())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to encode response", zap.Error(err))
	}
}

// faultInjector delays requests and fails a fraction of them with 503.
type faultInjector struct {
	mu       sync.Mutex
	rng      *rand.Rand
	failRate float64
	latency  time.Duration
}

func newFaultInjector(failRate float64, latency time.Duration, seed int64) *faultInjector {
	return &faultInjector{rng: rand.New(rand.NewSource(seed)), failRate: failRate, latency: latency}
}

func (f *faultInjector) shouldFail() bool {
	if f.failRate <= 0 {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.Float64() < f.failRate
}

func (f *faultInjector) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.latency > 0 {
			select {
			case <-time.After(f.latency):
			case <-r.Context().Done():
				return
			}
		}
		if f.shouldFail() {
			http.Error(w, "simulated failure", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

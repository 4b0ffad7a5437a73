package simulator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tempsense/tempsense/internal/discovery"
	"github.com/tempsense/tempsense/internal/logging"
)

// Config holds the simulator configuration
type Config struct {
	Host      string
	Port      int
	ID        string        // Sensor ID, used for the mDNS instance name
	Firmware  string        // Reported on the status page and in TXT records
	FailRate  float64       // Fraction of API requests answered with 503 (0..1)
	Latency   time.Duration // Added before every API response
	Advertise bool          // Announce over mDNS
	Seed      int64         // Seed for readings and failure injection; 0 uses the clock
}

// Server is the simulated sensor's HTTP server
type Server struct {
	config   Config
	device   *Device
	faults   *faultInjector
	handler  http.Handler
	http     *http.Server
	listener net.Listener
	mu       sync.Mutex
}

// New creates a new Server instance
func New(config Config) (*Server, error) {
	if config.FailRate < 0 || config.FailRate > 1 {
		return nil, fmt.Errorf("fail rate must be between 0 and 1, got %v", config.FailRate)
	}
	if config.Latency < 0 {
		return nil, fmt.Errorf("latency must not be negative, got %v", config.Latency)
	}
	if config.ID == "" {
		config.ID = "sim001"
	}
	if config.Firmware == "" {
		config.Firmware = "sim-1.0"
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Server{
		config: config,
		device: NewDevice(seed),
		faults: newFaultInjector(config.FailRate, config.Latency, seed+1),
	}
	s.handler = s.routes()
	return s, nil
}

// Device returns the simulated device state.
func (s *Server) Device() *Device {
	return s.device
}

// Handler returns the HTTP handler, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listening address once Start has bound it.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start serves until ctx is cancelled, SIGINT/SIGTERM arrives, or the
// listener fails, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.http = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Unlock()

	logging.Info("Starting tempsense simulator",
		zap.String("addr", listener.Addr().String()),
		zap.String("id", s.config.ID),
		zap.Float64("fail_rate", s.config.FailRate),
		zap.Duration("latency", s.config.Latency),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.config.Advertise {
		port := listener.Addr().(*net.TCPAddr).Port
		go func() {
			if err := discovery.Advertise(ctx, s.config.ID, port, s.config.Firmware); err != nil {
				logging.Warn("mDNS advertisement failed", zap.Error(err))
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.http.Serve(listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping simulator...")
	case <-ctx.Done():
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	logging.Info("Shutting down simulator...")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		_ = srv.Close()
	}
	logging.Sync()
	return nil
}

package simulator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tempsense/tempsense/internal/device"
	"github.com/tempsense/tempsense/internal/settings"
)

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative fail rate", Config{FailRate: -0.1}},
		{"fail rate above one", Config{FailRate: 1.5}},
		{"negative latency", Config{Latency: -time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("New() should fail")
			}
		})
	}
}

func TestGetConfigEncodesBooleansAsDigits(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/getConfig")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw) != len(settings.Catalogue) {
		t.Errorf("got %d fields, want %d", len(raw), len(settings.Catalogue))
	}
	if raw["ledEnabled"] != float64(1) || raw["scrollingEnabled"] != float64(1) {
		t.Errorf("booleans not encoded as 1: %v / %v", raw["ledEnabled"], raw["scrollingEnabled"])
	}
	if raw["ledColorScheme"] != "Default" {
		t.Errorf("ledColorScheme = %v", raw["ledColorScheme"])
	}
}

func TestUpdateConfigMerges(t *testing.T) {
	s, ts := newTestServer(t, Config{})

	resp, err := http.Post(ts.URL+"/updateConfig", "application/json",
		strings.NewReader(`{"ledIntensity": 999, "marqueeEnabled": false}`))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK || string(body) != UpdateReply {
		t.Fatalf("reply = %d %q", resp.StatusCode, body)
	}

	rec := s.Device().Record()
	if rec.LEDIntensity != 255 {
		t.Errorf("LEDIntensity = %d, want clamped 255", rec.LEDIntensity)
	}
	if rec.MarqueeEnabled {
		t.Error("MarqueeEnabled should be false")
	}
	if rec.ScrollingText != settings.DefaultScrollingText {
		t.Errorf("untouched field changed: %q", rec.ScrollingText)
	}
	if s.Device().Updates() != 1 {
		t.Errorf("Updates() = %d", s.Device().Updates())
	}
}

func TestUpdateConfigRejectsBadRequests(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	resp, err := http.Post(ts.URL+"/updateConfig", "application/json", strings.NewReader(`not json`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/updateConfig")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestRoutesEnforceMethods(t *testing.T) {
	_, ts := newTestServer(t, Config{FailRate: 1})

	tests := []struct {
		method    string
		path      string
		wantAllow string
	}{
		{http.MethodPost, "/getConfig", "GET, HEAD"},
		{http.MethodGet, "/updateConfig", "POST"},
		{http.MethodPost, "/getSensorData", "GET, HEAD"},
		{http.MethodDelete, "/", "GET, HEAD"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			if err != nil {
				t.Fatal(err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want 405", resp.StatusCode)
			}
			if got := resp.Header.Get("Allow"); got != tt.wantAllow {
				t.Errorf("Allow = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestSensorDataDrift(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	for i := 0; i < 500; i++ {
		sample := s.Device().Sample()
		if sample.Temperature < BaseTemperature-maxTemperatureDrift-0.01 ||
			sample.Temperature > BaseTemperature+maxTemperatureDrift+0.01 {
			t.Fatalf("temperature %v drifted out of range", sample.Temperature)
		}
		if sample.Humidity < BaseHumidity-maxHumidityDrift-0.1 ||
			sample.Humidity > BaseHumidity+maxHumidityDrift+0.1 {
			t.Fatalf("humidity %v drifted out of range", sample.Humidity)
		}
	}
}

func TestStatusPage(t *testing.T) {
	_, ts := newTestServer(t, Config{ID: "abc123"})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "id: abc123") {
		t.Errorf("status page = %q", body)
	}

	resp, err = http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestFailRateOne(t *testing.T) {
	_, ts := newTestServer(t, Config{FailRate: 1})

	resp, err := http.Get(ts.URL + "/getSensorData")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}

	// the status page is never failed
	resp, err = http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status page = %d", resp.StatusCode)
	}
}

func TestLatencyTripsClientTimeout(t *testing.T) {
	_, ts := newTestServer(t, Config{Latency: 300 * time.Millisecond})

	client := device.NewClientWithURL(ts.URL)
	client.SetTimeout(50 * time.Millisecond)

	_, err := client.GetTelemetry(context.Background())
	if err == nil {
		t.Fatal("expected a timeout")
	}
	if !device.IsNetworkError(err) {
		t.Errorf("error = %v, want a network error", err)
	}
}

// The device client and the simulator agree on the wire contract.
func TestClientRoundTrip(t *testing.T) {
	s, ts := newTestServer(t, Config{})
	client := device.NewClientWithURL(ts.URL)
	ctx := context.Background()

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	want := settings.Defaults()
	want.TopPosition = settings.TopHumidity
	want.LEDEnabled = false
	want.LEDAnimSpeed = 700
	want.ScrollingText = "ROUND TRIP"

	reply, err := client.SetConfig(ctx, want)
	if err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}
	if reply != UpdateReply {
		t.Errorf("reply = %q", reply)
	}

	p, err := client.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	m := settings.NewModel()
	m.LoadFrom(p)
	if got := m.Snapshot(); got != want {
		t.Errorf("GetConfig() = %+v, want %+v", got, want)
	}
	if s.Device().Record() != want {
		t.Error("simulator state differs from what was pushed")
	}

	result := client.VerifyRecord(ctx, want, &device.VerificationOptions{})
	if !result.Success {
		t.Errorf("VerifyRecord() mismatches = %v", result.Mismatches)
	}

	sample, err := client.GetTelemetry(ctx)
	if err != nil {
		t.Fatalf("GetTelemetry() error = %v", err)
	}
	if sample.Temperature == 0 || sample.Humidity == 0 {
		t.Errorf("sample = %+v", sample)
	}
}

func TestStartAndShutdown(t *testing.T) {
	s, err := New(Config{Host: "127.0.0.1", Port: 0, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for s.Addr() == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.Addr() == "" {
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + s.Addr() + "/getSensorData")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}

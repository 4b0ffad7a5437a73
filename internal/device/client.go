package device

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tempsense/tempsense/internal/display"
	"github.com/tempsense/tempsense/internal/logging"
	"github.com/tempsense/tempsense/internal/settings"
	"github.com/tempsense/tempsense/internal/version"
)

const (
	// DefaultPort is the sensor's HTTP port.
	DefaultPort = 80

	// DefaultTimeout is the default HTTP request timeout. It is shorter than
	// the 2 s telemetry interval so a stuck poll never overlaps the next two.
	DefaultTimeout = 1500 * time.Millisecond

	// maxResponseSize bounds how much of a response body is read.
	maxResponseSize = 64 << 10
)

// Device endpoints.
const (
	PathGetConfig    = "/getConfig"
	PathUpdateConfig = "/updateConfig"
	PathSensorData   = "/getSensorData"
)

// Client talks to one sensor over HTTP. Every operation is a single
// request/response; nothing is retried here. A Client is safe for
// concurrent use.
type Client struct {
	// BaseURL is the base URL for the device (e.g., "http://192.168.4.16")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client
}

// NewClient creates a client for the device at ip:port.
func NewClient(ip string, port int) *Client {
	if port == 0 {
		port = DefaultPort
	}
	return NewClientWithURL(fmt.Sprintf("http://%s:%d", ip, port))
}

// NewClientWithURL creates a client with a full base URL
// (e.g., "http://192.168.4.16:80").
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// Ping performs a simple health check on the device.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/", nil)
	return err
}

// GetConfig fetches the stored configuration. The result may be partial;
// older firmware omits fields and encodes booleans as 1/0.
func (c *Client) GetConfig(ctx context.Context) (settings.Partial, error) {
	body, err := c.do(ctx, http.MethodGet, PathGetConfig, nil)
	if err != nil {
		return settings.Partial{}, err
	}

	obj, err := ExtractJSONObject(body)
	if err != nil {
		logging.LogRawBytes("Unparseable getConfig response", body)
		return settings.Partial{}, NewParseError(PathGetConfig, "no JSON object in response", err)
	}

	p, err := settings.DecodePartial(obj)
	if err != nil {
		logging.LogRawBytes("Unparseable getConfig response", body)
		return settings.Partial{}, NewParseError(PathGetConfig, "failed to parse configuration", err)
	}

	return p, nil
}

// SetConfig sends a full configuration record. The device's reply is opaque;
// only the status code decides success. The reply text is returned for logging.
func (c *Client) SetConfig(ctx context.Context, r settings.Record) (string, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return "", NewParseError(PathUpdateConfig, "failed to encode configuration", err)
	}

	body, err := c.do(ctx, http.MethodPost, PathUpdateConfig, payload)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// GetTelemetry fetches the current sensor reading. A missing or non-numeric
// reading decodes as 0; only a body that is not a JSON object fails.
func (c *Client) GetTelemetry(ctx context.Context) (display.Sample, error) {
	body, err := c.do(ctx, http.MethodGet, PathSensorData, nil)
	if err != nil {
		return display.Sample{}, err
	}

	obj, err := ExtractJSONObject(body)
	if err != nil {
		return display.Sample{}, NewParseError(PathSensorData, "no JSON object in response", err)
	}

	s, err := decodeSample(obj)
	if err != nil {
		return display.Sample{}, NewParseError(PathSensorData, "failed to parse sensor data", err)
	}
	return s, nil
}

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	url := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, NewNetworkError(path, "failed to create request", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", version.UserAgent("tempsense-cfg"))

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		devErr := NewNetworkError(path, fmt.Sprintf("%s request failed", method), err)
		logging.LogDeviceRequest(method, url, 0, time.Since(start), devErr)
		return nil, devErr
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		devErr := NewNetworkError(path, "failed to read response body", err)
		logging.LogDeviceRequest(method, url, resp.StatusCode, time.Since(start), devErr)
		return nil, devErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		devErr := NewHTTPError(path, resp.StatusCode,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
		logging.LogDeviceRequest(method, url, resp.StatusCode, time.Since(start), devErr)
		return nil, devErr
	}

	logging.LogDeviceRequest(method, url, resp.StatusCode, time.Since(start), nil)
	return body, nil
}

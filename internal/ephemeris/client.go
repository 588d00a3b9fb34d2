// Package ephemeris is a client for the external ephemeris service that
// computes sidereal planetary positions.
package ephemeris

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const chartsPath = "/v1/charts/vedic"

// maxResponseBytes bounds the size of a chart response.
const maxResponseBytes = 4 << 20

// ErrNotConfigured is returned when no ephemeris URL is set.
var ErrNotConfigured = errors.New("ephemeris service not configured")

// Request is a moment and place to compute a chart for.
type Request struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	Day       int     `json:"day"`
	Hour      int     `json:"hour"`
	Minute    int     `json:"minute"`
	Second    int     `json:"second"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

// Body is one celestial object in a computed chart.
// Pointer fields are nil when the service omits the attribute.
type Body struct {
	Object    string   `json:"object"`
	Rasi      *string  `json:"rasi,omitempty"`
	Degree    *float64 `json:"degree,omitempty"`
	House     *int     `json:"house,omitempty"`
	Nakshatra *string  `json:"nakshatra,omitempty"`
	Pada      *int     `json:"pada,omitempty"`
}

// Result is a computed chart.
type Result struct {
	Bodies []Body `json:"bodies"`
	// Raw is the response body as received, kept for audit.
	Raw string `json:"-"`
}

// Calculator computes charts. Implementations must be safe for concurrent use.
type Calculator interface {
	Calculate(ctx context.Context, req Request) (*Result, error)
}

// Config configures the HTTP client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client calls the ephemeris service over HTTP.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new ephemeris client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Calculate requests a chart for req.
func (c *Client) Calculate(ctx context.Context, req Request) (*Result, error) {
	if c.cfg.BaseURL == "" {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal ephemeris request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + chartsPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create ephemeris request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ephemeris request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read ephemeris response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("ephemeris returned non-200 status",
			slog.Int("status_code", resp.StatusCode),
			slog.String("body_preview", truncate(string(body), 200)),
		)
		return nil, fmt.Errorf("ephemeris error [status=%d]: %s", resp.StatusCode, truncate(string(body), 500))
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode ephemeris response: %w", err)
	}
	result.Raw = string(body)

	return &result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

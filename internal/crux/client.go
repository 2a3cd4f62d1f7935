package crux

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cruxlens/cruxlens/internal/config"
	"github.com/cruxlens/cruxlens/internal/metrics"
)

// queryMetrics is the fixed metric set requested from the API for every URL.
var queryMetrics = []string{
	"largest_contentful_paint",
	"cumulative_layout_shift",
	"first_contentful_paint",
	"interaction_to_next_paint",
	"experimental_time_to_first_byte",
}

// formFactor is the device class the report is requested for.
const formFactor = "PHONE"

// Client talks to the CrUX queryRecord endpoint. The HTTP client is built
// once and reused across fetches; the configured timeout bounds each call.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// New builds a Client from the upstream configuration. The API key is
// resolved from the environment once, at construction time.
func New(cfg config.CruxConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.Key(),
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// queryRequest is the POST body sent to the queryRecord endpoint.
type queryRequest struct {
	URL        string   `json:"url"`
	FormFactor string   `json:"formFactor"`
	Metrics    []string `json:"metrics"`
}

// Response mirrors the queryRecord response body.
type Response struct {
	Record struct {
		Key struct {
			URL string `json:"url"`
		} `json:"key"`
		Metrics map[string]Metric `json:"metrics"`
	} `json:"record"`
}

// errorBody is the shape of a non-200 response from the API.
type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ValidateURL rejects inputs that cannot be CrUX page URLs. It runs before
// any network I/O.
func ValidateURL(pageURL string) error {
	if pageURL == "" {
		return fmt.Errorf("%w: URL must be a non-empty string", ErrInvalidURL)
	}
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		return fmt.Errorf("%w: URL must start with http:// or https://", ErrInvalidURL)
	}
	return nil
}

// Fetch retrieves and normalizes the CrUX record for pageURL.
// Errors are one of ErrInvalidURL, *ConnectionError or *ResponseError; any
// other error (such as an undecodable 200 body) is unclassified and surfaces
// as a generic server failure in the API layer.
func (c *Client) Fetch(ctx context.Context, pageURL string) (*URLRecord, error) {
	if err := ValidateURL(pageURL); err != nil {
		metrics.UpstreamFetches.WithLabelValues("invalid_url").Inc()
		slog.Warn("crux: rejected URL", "url", pageURL, "err", err)
		return nil, err
	}

	body, err := json.Marshal(queryRequest{
		URL:        pageURL,
		FormFactor: formFactor,
		Metrics:    queryMetrics,
	})
	if err != nil {
		return nil, fmt.Errorf("crux: encode request: %w", err)
	}

	endpoint := c.endpoint
	if c.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("crux: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.UpstreamFetches.WithLabelValues("connection_error").Inc()
		connErr := classifyTransport(err)
		slog.Error("crux: fetch failed", "url", pageURL, "err", connErr)
		return nil, connErr
	}
	defer resp.Body.Close()
	metrics.UpstreamLatency.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamFetches.WithLabelValues("response_error").Inc()
		respErr := &ResponseError{
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(resp.Body),
		}
		slog.Error("crux: upstream error",
			"url", pageURL, "status", resp.StatusCode, "message", respErr.Message)
		return nil, respErr
	}

	var raw Response
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		metrics.UpstreamFetches.WithLabelValues("decode_error").Inc()
		slog.Error("crux: undecodable response body", "url", pageURL, "err", err)
		return nil, fmt.Errorf("crux: decode response: %w", err)
	}

	metrics.UpstreamFetches.WithLabelValues("ok").Inc()
	rec := Normalize(raw)
	return &rec, nil
}

// classifyTransport maps a transport-level failure to a ConnectionError,
// distinguishing timeouts from other connectivity problems.
func classifyTransport(err error) *ConnectionError {
	var urlErr *url.Error
	timedOut := errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &urlErr) && urlErr.Timeout())
	if timedOut {
		return &ConnectionError{Message: "request to CrUX API timed out", Err: err}
	}
	return &ConnectionError{Message: "failed to connect to CrUX API", Err: err}
}

// upstreamMessage extracts the error message from a non-200 body.
// Returns "Unknown error" when the body is missing, undecodable, or carries
// no message.
func upstreamMessage(r io.Reader) string {
	var body errorBody
	if err := json.NewDecoder(r).Decode(&body); err != nil || body.Error.Message == "" {
		return "Unknown error"
	}
	return body.Error.Message
}

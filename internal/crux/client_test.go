package crux

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cruxlens/cruxlens/internal/config"
)

// testClient returns a Client pointed at url with a generous timeout.
func testClient(url string) *Client {
	return New(config.CruxConfig{Endpoint: url, Timeout: 5 * time.Second})
}

// goodBody is a minimal well-formed queryRecord response.
const goodBody = `{
	"record": {
		"key": {"url": "https://example.com/"},
		"metrics": {
			"largest_contentful_paint": {
				"histogram": [{"start": 0, "end": 2500, "density": 0.9}],
				"percentiles": {"p75": 1200}
			},
			"cumulative_layout_shift": {
				"histogram": [],
				"percentiles": {"p75": "0.05"}
			}
		}
	}
}`

// --- ValidateURL -------------------------------------------------------------

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https URL", "https://example.com", false},
		{"http URL", "http://example.com/page", false},
		{"empty", "", true},
		{"no scheme", "example.com", true},
		{"ftp scheme", "ftp://example.com", true},
		{"scheme only prefix check", "https://", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateURL(tc.url)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidURL) {
					t.Errorf("ValidateURL(%q): got %v, want ErrInvalidURL", tc.url, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateURL(%q): got %v, want nil", tc.url, err)
			}
		})
	}
}

// --- Fetch -------------------------------------------------------------------

func TestFetch_Success(t *testing.T) {
	var gotBody queryRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Write([]byte(goodBody)) //nolint:errcheck
	}))
	defer srv.Close()

	rec, err := testClient(srv.URL).Fetch(context.Background(), "https://example.com/")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if gotBody.URL != "https://example.com/" {
		t.Errorf("request url: got %q", gotBody.URL)
	}
	if gotBody.FormFactor != "PHONE" {
		t.Errorf("request formFactor: got %q, want PHONE", gotBody.FormFactor)
	}
	if len(gotBody.Metrics) != 5 {
		t.Errorf("request metrics: got %d, want 5", len(gotBody.Metrics))
	}

	if rec.URL != "https://example.com/" {
		t.Errorf("record url: got %q", rec.URL)
	}
	lcp, ok := rec.Metrics["largest_contentful_paint"]
	if !ok {
		t.Fatal("record missing largest_contentful_paint")
	}
	if v, ok := lcp.Percentile("p75"); !ok || v != 1200 {
		t.Errorf("lcp p75: got %v (ok=%v), want 1200", v, ok)
	}
	// String-typed percentiles coerce too.
	cls := rec.Metrics["cumulative_layout_shift"]
	if v, ok := cls.Percentile("p75"); !ok || v != 0.05 {
		t.Errorf("cls p75: got %v (ok=%v), want 0.05", v, ok)
	}
}

func TestFetch_SendsAPIKey(t *testing.T) {
	t.Setenv("CRUXLENS_TEST_FETCH_KEY", "k-123")

	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		w.Write([]byte(goodBody)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(config.CruxConfig{
		Endpoint:  srv.URL,
		APIKeyEnv: "CRUXLENS_TEST_FETCH_KEY",
		Timeout:   5 * time.Second,
	})
	if _, err := c.Fetch(context.Background(), "https://example.com/"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotKey != "k-123" {
		t.Errorf("key query param: got %q, want k-123", gotKey)
	}
}

func TestFetch_InvalidURL_NoNetworkCall(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), "not-a-url")
	if !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("Fetch: got %v, want ErrInvalidURL", err)
	}
	if calls != 0 {
		t.Errorf("upstream was called %d times, want 0", calls)
	}
}

func TestFetch_ResponseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"message": "chrome-ux-report data not found"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), "https://example.com/")
	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("Fetch: got %T (%v), want *ResponseError", err, err)
	}
	if respErr.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", respErr.StatusCode)
	}
	if respErr.Message != "chrome-ux-report data not found" {
		t.Errorf("message: got %q", respErr.Message)
	}
}

func TestFetch_ResponseError_NoMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("not json")) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), "https://example.com/")
	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("Fetch: got %T (%v), want *ResponseError", err, err)
	}
	if respErr.Message != "Unknown error" {
		t.Errorf("message: got %q, want Unknown error", respErr.Message)
	}
}

func TestFetch_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := testClient(srv.URL).Fetch(context.Background(), "https://example.com/")
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("Fetch: got %T (%v), want *ConnectionError", err, err)
	}
	if connErr.Message != "failed to connect to CrUX API" {
		t.Errorf("message: got %q", connErr.Message)
	}
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(config.CruxConfig{Endpoint: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := c.Fetch(context.Background(), "https://example.com/")
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("Fetch: got %T (%v), want *ConnectionError", err, err)
	}
	if connErr.Message != "request to CrUX API timed out" {
		t.Errorf("message: got %q", connErr.Message)
	}
}

func TestFetch_UndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{broken")) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), "https://example.com/")
	if err == nil {
		t.Fatal("Fetch: want error for undecodable body")
	}
	// Unclassified: neither a connection nor a response error.
	var connErr *ConnectionError
	var respErr *ResponseError
	if errors.As(err, &connErr) || errors.As(err, &respErr) || errors.Is(err, ErrInvalidURL) {
		t.Errorf("Fetch: %v should be unclassified", err)
	}
}

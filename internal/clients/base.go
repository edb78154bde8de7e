package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/middleware"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type Client struct {
	Name    string
	BaseURL *url.URL
	HTTP    *http.Client

	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// NewHTTPClient returns the shared upstream client with an instrumented transport.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func NewClient(name string, baseURL string, httpClient *http.Client) *Client {
	u, err := url.Parse(baseURL)
	if err != nil {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid %s base url %q: %v", name, baseURL, err))
	}
	return &Client{Name: name, BaseURL: u, HTTP: httpClient}
}

// WithBreaker wraps every call in a circuit breaker that opens after
// threshold consecutive transport failures and half-opens after openTimeout.
func (c *Client) WithBreaker(threshold uint32, openTimeout time.Duration) *Client {
	if threshold == 0 {
		return c
	}
	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        c.Name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})
	return c
}

func (c *Client) Do(ctx context.Context, method, path, rawQuery string, body io.Reader, inHeaders http.Header) (*http.Response, error) {
	rel := &url.URL{Path: path, RawQuery: rawQuery}
	u := c.BaseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	copyHeaders(req.Header, inHeaders)

	// Ensure correlation id propagated downstream
	if cid := middleware.GetCorrelationID(ctx); cid != "" {
		req.Header.Set(middleware.HeaderCorrelationID, cid)
	}

	if c.breaker == nil {
		return c.HTTP.Do(req)
	}
	return c.breaker.Execute(func() (*http.Response, error) {
		return c.HTTP.Do(req)
	})
}

// DoJSON sends payload as JSON and decodes the envelope's data into out.
// Non-2xx responses and envelopes with success=false come back as *UpstreamError.
func (c *Client) DoJSON(ctx context.Context, method, path string, payload any, headers http.Header, out any) error {
	var body io.Reader
	if headers == nil {
		headers = http.Header{}
	}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", c.Name, err)
		}
		body = bytes.NewReader(b)
		headers.Set("Content-Type", "application/json")
	}
	headers.Set("Accept", "application/json")

	resp, err := c.Do(ctx, method, path, "", body, headers)
	if err != nil {
		return transportError(c.Name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return transportError(c.Name, err)
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= 300 {
				return newUpstreamError(c.Name, resp.StatusCode, "", strings.TrimSpace(string(raw)))
			}
			return fmt.Errorf("%s: decode response: %w", c.Name, err)
		}
	}

	if resp.StatusCode >= 300 || (env.Success != nil && !*env.Success) {
		return newUpstreamError(c.Name, resp.StatusCode, env.Code, env.message())
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s: decode data: %w", c.Name, err)
		}
	}
	return nil
}

// envelope is the backend's standard response wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func transportError(name string, err error) error {
	kind := KindNetwork
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		kind = KindUnavailable
	}
	return &UpstreamError{Service: name, Kind: kind, Message: err.Error(), Err: err}
}

// authHeaders forwards the caller's bearer token and, when set, the idempotency key.
func authHeaders(token, idempotencyKey string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	if idempotencyKey != "" {
		h.Set(HeaderIdempotencyKey, idempotencyKey)
	}
	return h
}

func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		if isHopByHopHeader(k) || strings.EqualFold(k, "Host") {
			continue
		}
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

// Hop-by-hop headers (RFC 7230)
func isHopByHopHeader(k string) bool {
	switch http.CanonicalHeaderKey(k) {
	case "Connection", "Proxy-Connection", "Keep-Alive",
		"Proxy-Authenticate", "Proxy-Authorization",
		"Te", "Trailer", "Transfer-Encoding", "Upgrade":
		return true
	default:
		return false
	}
}

// Package upstream wraps outbound calls to third-party APIs with a circuit
// breaker and classifies failures.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrRateLimited      = errors.New("rate limited")
	ErrUpstreamServer   = errors.New("server error")
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrCircuitOpen      = errors.New("circuit breaker open")
	ErrMalformed        = errors.New("malformed response")

	errNoHTTPClient = errors.New("http client not configured")
)

const (
	// maxErrorBody bounds how much of a failed response is read for its message.
	maxErrorBody = 4 << 10

	// tripAfter consecutive failures open the breaker.
	tripAfter = 5
)

// StatusError is returned for non-2xx responses. It unwraps to one of the
// category sentinels above.
type StatusError struct {
	Code    int
	Message string
	kind    error
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v: %d", e.kind, e.Code)
	}
	return fmt.Sprintf("%v: %d: %s", e.kind, e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

// Client executes requests for one upstream service behind its own breaker.
type Client struct {
	name    string
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
}

// New creates a Client. The breaker opens on the fifth consecutive failure and
// probes again after two minutes.
func New(name string, httpClient *http.Client) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
		IsSuccessful: countsAsSuccess,
	})

	return &Client{
		name:    name,
		http:    httpClient,
		circuit: cb,
	}
}

// Do executes the request built by buildRequest exactly once. A nil error
// guarantees a 2xx response whose body the caller must close.
func (c *Client) Do(ctx context.Context, buildRequest func() (*http.Request, error)) (*http.Response, error) {
	if c.http == nil {
		return nil, errNoHTTPClient
	}

	req, err := buildRequest()
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.http.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, statusError(resp)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s: %w: %v", c.name, ErrCircuitOpen, err)
		}
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type from circuit breaker", c.name)
	}
	return resp, nil
}

// GetJSON performs a GET against rawURL and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	resp, err := c.Do(ctx, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, rawURL, nil)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return DecodeJSON(resp.Body, v)
}

// DecodeJSON decodes r into v, classifying failures as ErrMalformed.
// Numbers are kept as json.Number where v uses it.
func DecodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// Category names the failure class of err for logging.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUpstreamServer):
		return "upstream_server"
	case errors.Is(err, ErrUnexpectedStatus):
		return "unexpected_status"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "network"
	}
}

func statusError(resp *http.Response) *StatusError {
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var kind error
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		kind = ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		kind = ErrRateLimited
	case resp.StatusCode >= 500:
		kind = ErrUpstreamServer
	default:
		kind = ErrUnexpectedStatus
	}

	return &StatusError{
		Code:    resp.StatusCode,
		Message: errorMessage(body),
		kind:    kind,
	}
}

// errorMessage extracts the human readable message most APIs put in their
// error bodies: {"message": ...} or {"error": {"message": ...}}.
func errorMessage(body []byte) string {
	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(string(body))
	}
	if payload.Message != "" {
		return payload.Message
	}

	var nested struct {
		Message string `json:"message"`
	}
	if len(payload.Error) > 0 && json.Unmarshal(payload.Error, &nested) == nil && nested.Message != "" {
		return nested.Message
	}
	return ""
}

// countsAsSuccess keeps client mistakes (unknown city, bad request) and
// cancelled requests from tripping the breaker.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 400 && se.Code < 500 &&
			se.Code != http.StatusTooManyRequests &&
			se.Code != http.StatusUnauthorized &&
			se.Code != http.StatusForbidden
	}
	return false
}

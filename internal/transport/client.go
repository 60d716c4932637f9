// Package transport issues single HTTP requests against the platform and
// normalizes failures into the toolkit error taxonomy. It never retries;
// retry-on-pending lives in the workflow engine.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/markupai/toolkit-go/pkg/apierr"
)

const defaultTimeout = 30 * time.Second

// Client sends requests to one platform instance, attaching the API key
// and Accept headers to every call. Safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a transport client. baseURL tolerates a trailing slash.
// httpClient may be nil; a client with a 30s timeout is used. logger may
// be nil to disable transport logging.
func New(baseURL, apiKey string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  httpClient,
		logger:  logger,
	}
}

// Response is the outcome of a successful call. NoContent marks a 204 or
// empty body, distinct from a body holding JSON null.
type Response struct {
	StatusCode int
	NoContent  bool
	Body       json.RawMessage
}

// Decode unmarshals the body into v, reporting ErrMalformedResponse when
// the body does not fit.
func (r *Response) Decode(v any) error {
	if r.NoContent {
		return fmt.Errorf("%w: expected a body, got none", apierr.ErrMalformedResponse)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %v", apierr.ErrMalformedResponse, err)
	}
	return nil
}

// Do issues the request described by env and returns the parsed body.
// Non-2xx responses become *apierr.HTTPError; connection-level failures
// wrap apierr.ErrNetwork; caller-initiated aborts wrap apierr.ErrCancelled.
func (c *Client) Do(ctx context.Context, env Envelope) (*Response, error) {
	u := c.baseURL + env.Path
	if len(env.Query) > 0 {
		u += "?" + env.Query.Encode()
	}

	var body io.Reader
	if env.Body != nil {
		r, err := env.Body.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apierr.ErrApplication, err)
		}
		body = r
	}

	req, err := http.NewRequestWithContext(ctx, env.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", apierr.ErrApplication, err)
	}
	c.setHeaders(req, env)

	c.logger.Debug("request", "method", env.Method, "path", env.Path)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apierr.NewHTTPError(resp.StatusCode, extractErrorMessage(data))
	}

	if resp.StatusCode == http.StatusNoContent || len(strings.TrimSpace(string(data))) == 0 {
		return &Response{StatusCode: resp.StatusCode, NoContent: true}, nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: response body is not valid JSON", apierr.ErrApplication)
	}
	return &Response{StatusCode: resp.StatusCode, Body: json.RawMessage(data)}, nil
}

func (c *Client) setHeaders(req *http.Request, env Envelope) {
	for name, values := range env.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if env.Body != nil {
		req.Header.Set("Content-Type", env.Body.ContentType())
	}
}

// classifyError maps connection-level failures to sentinel errors.
// Only a cancellation visible on the caller's context counts as
// caller-initiated; an http.Client timeout stays a network failure even
// though its error also matches context.DeadlineExceeded.
func classifyError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %v", apierr.ErrCancelled, ctxErr)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: request timed out: %v", apierr.ErrNetwork, err)
	}

	return fmt.Errorf("%w: %v", apierr.ErrNetwork, err)
}

// extractErrorMessage pulls a human-readable message out of an error
// body: detail wins over message; a missing or non-JSON body yields ""
// and NewHTTPError generates the fallback.
func extractErrorMessage(body []byte) string {
	var payload struct {
		Detail  any `json:"detail"`
		Message any `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if s, ok := payload.Detail.(string); ok && s != "" {
		return s
	}
	if s, ok := payload.Message.(string); ok && s != "" {
		return s
	}
	return ""
}

package toolkit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/markupai/toolkit-go/internal/transport"
	"github.com/markupai/toolkit-go/internal/workflow"
	"github.com/markupai/toolkit-go/pkg/apierr"
)

// Config holds all configuration for a Client.
type Config struct {
	// PlatformURL is the platform base URL. A trailing slash is
	// tolerated. Required.
	PlatformURL string

	// APIKey is sent as a bearer token on every request. Required.
	APIKey string

	// MaxAttempts bounds the number of status requests per wait.
	// Defaults to 30.
	MaxAttempts int

	// PollInterval is the fixed delay between status requests.
	// Defaults to 1s.
	PollInterval time.Duration

	// Deadline, when set, caps each wait in wall-clock time in addition
	// to the attempt bound.
	Deadline time.Duration

	// HTTPClient overrides the underlying HTTP client. Optional.
	HTTPClient *http.Client

	// Logger receives debug-level request and poll events. Nil disables
	// SDK logging.
	Logger *slog.Logger
}

func (c Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: APIKey is required", apierr.ErrValidation)
	}
	if c.PlatformURL == "" {
		return fmt.Errorf("%w: PlatformURL is required", apierr.ErrValidation)
	}
	if !strings.HasPrefix(c.PlatformURL, "http://") && !strings.HasPrefix(c.PlatformURL, "https://") {
		return fmt.Errorf("%w: PlatformURL must start with http:// or https://, got %q", apierr.ErrValidation, c.PlatformURL)
	}
	return nil
}

// Client calls the platform API. Safe for concurrent use; independent
// calls share nothing beyond the underlying HTTP client.
type Client struct {
	transport *transport.Client
	engine    *workflow.Engine
}

// New creates a Client, failing fast on invalid configuration.
func New(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	t := transport.New(cfg.PlatformURL, cfg.APIKey, cfg.HTTPClient, cfg.Logger)
	engine := workflow.NewEngine(t, workflow.Config{
		MaxAttempts:  cfg.MaxAttempts,
		PollInterval: cfg.PollInterval,
		Deadline:     cfg.Deadline,
	}, cfg.Logger)
	return &Client{transport: t, engine: engine}, nil
}

// ValidateToken reports whether the configured API key is accepted by
// the platform. Any failure, HTTP or network, yields false; this is the
// only place the toolkit downgrades an error.
func (c *Client) ValidateToken(ctx context.Context) bool {
	_, err := c.transport.Do(ctx, transport.Envelope{
		Method: http.MethodGet,
		Path:   styleGuidesPath,
	})
	return err == nil
}

// decodeTerminal unmarshals a terminal workflow body into v.
func decodeTerminal(body json.RawMessage, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", apierr.ErrMalformedResponse, err)
	}
	return nil
}

// Package workflow turns a fire-and-forget submission into a bounded
// synchronous result: submit once, then poll the workflow status route
// at a fixed interval until a terminal state, the attempt budget, or the
// caller's context ends the wait.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/markupai/toolkit-go/internal/transport"
	"github.com/markupai/toolkit-go/pkg/apierr"
	"github.com/markupai/toolkit-go/pkg/models"
)

// Polling defaults, applied when Config leaves the field zero.
const (
	DefaultMaxAttempts  = 30
	DefaultPollInterval = time.Second
)

// Config bounds a single wait. Zero values fall back to the defaults.
// Deadline, when set, caps the whole wait in wall-clock time on top of
// the attempt bound.
type Config struct {
	MaxAttempts  int
	PollInterval time.Duration
	Deadline     time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return c
}

// errStillPending marks a well-formed status response that is not yet
// terminal. It is the only condition the engine retries.
var errStillPending = errors.New("workflow still pending")

// Engine runs the submit-and-wait lifecycle shared by every resource
// family. It holds no per-workflow state; concurrent waits are
// independent.
type Engine struct {
	transport *transport.Client
	cfg       Config
	logger    *slog.Logger
}

// NewEngine creates an engine. logger may be nil.
func NewEngine(t *transport.Client, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{transport: t, cfg: cfg.withDefaults(), logger: logger}
}

// Submit issues the submission request and extracts the workflow
// acknowledgement. A response without a workflow_id fails with
// ErrMissingWorkflowID; no polling is attempted for it.
func (e *Engine) Submit(ctx context.Context, env transport.Envelope) (models.WorkflowAck, error) {
	var ack models.WorkflowAck

	resp, err := e.transport.Do(ctx, env)
	if err != nil {
		return ack, err
	}
	if !resp.NoContent {
		// Tolerate undecodable acknowledgements; the workflow_id check
		// below produces the descriptive failure.
		_ = json.Unmarshal(resp.Body, &ack)
	}
	if ack.WorkflowID == "" {
		return ack, fmt.Errorf("%w: submission was accepted but no workflow can be tracked", apierr.ErrMissingWorkflowID)
	}

	e.logger.Debug("workflow submitted", "workflow_id", ack.WorkflowID, "status", ack.Status)
	return ack, nil
}

// Wait polls statusPath until the workflow reaches a terminal state and
// returns the full terminal response body. Transport failures propagate
// unchanged and stop the wait; only "still pending" is retried, a fixed
// interval apart, up to the attempt bound.
func (e *Engine) Wait(ctx context.Context, statusPath string) (json.RawMessage, error) {
	if e.cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Deadline)
		defer cancel()
	}

	var terminal json.RawMessage
	attempts := 0

	backoff := retry.WithMaxRetries(uint64(e.cfg.MaxAttempts-1), retry.NewConstant(e.cfg.PollInterval))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++

		resp, err := e.transport.Do(ctx, transport.Envelope{Method: http.MethodGet, Path: statusPath})
		if err != nil {
			return err
		}

		var ack models.WorkflowAck
		if resp.NoContent || json.Unmarshal(resp.Body, &ack) != nil {
			// Some submission routes omit status until processing
			// begins; still counts toward the attempt budget.
			return retry.RetryableError(errStillPending)
		}

		switch models.NormalizeStatus(ack.Status) {
		case models.StatusCompleted:
			terminal = resp.Body
			e.logger.Debug("workflow completed", "path", statusPath, "attempts", attempts)
			return nil
		case models.StatusFailed:
			if ack.ErrorMessage != "" {
				return fmt.Errorf("%w: %s", apierr.ErrWorkflowFailed, ack.ErrorMessage)
			}
			return fmt.Errorf("%w with status: %s", apierr.ErrWorkflowFailed, models.StatusFailed)
		default:
			e.logger.Debug("workflow pending", "path", statusPath, "status", ack.Status, "attempt", attempts)
			return retry.RetryableError(errStillPending)
		}
	})
	if err != nil {
		switch {
		case errors.Is(err, errStillPending):
			return nil, fmt.Errorf("%w after %d attempts", apierr.ErrWorkflowTimeout, attempts)
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			// Cancellation between attempts; in-flight aborts were
			// already classified by the transport.
			return nil, fmt.Errorf("%w: %v", apierr.ErrCancelled, err)
		default:
			return nil, err
		}
	}
	return terminal, nil
}

// SubmitAndWait composes Submit and Wait into one synchronous call.
// statusPath maps the extracted workflow ID to its status route.
func (e *Engine) SubmitAndWait(ctx context.Context, env transport.Envelope, statusPath func(workflowID string) string) (json.RawMessage, error) {
	ack, err := e.Submit(ctx, env)
	if err != nil {
		return nil, err
	}
	return e.Wait(ctx, statusPath(ack.WorkflowID))
}

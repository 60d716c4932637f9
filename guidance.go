package toolkit

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/markupai/toolkit-go/internal/transport"
	"github.com/markupai/toolkit-go/pkg/apierr"
	"github.com/markupai/toolkit-go/pkg/models"
)

const constantsPath = "/v1/constants"

var knownDialects = map[string]bool{
	"american_english":   true,
	"british_english":    true,
	"canadian_english":   true,
	"australian_english": true,
}

var knownTones = map[string]bool{
	"academic":       true,
	"business":       true,
	"casual":         true,
	"conversational": true,
	"formal":         true,
	"technical":      true,
}

// Constants fetches the guidance values the platform currently accepts.
func (c *Client) Constants(ctx context.Context) (*models.Constants, error) {
	resp, err := c.transport.Do(ctx, transport.Envelope{
		Method: http.MethodGet,
		Path:   constantsPath,
	})
	if err != nil {
		return nil, err
	}
	var consts models.Constants
	if err := resp.Decode(&consts); err != nil {
		return nil, err
	}
	return &consts, nil
}

// validateAnalysisRequest fails fast, before any network call, on
// requests the platform would reject.
func validateAnalysisRequest(req models.StyleAnalysisRequest) error {
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("%w: content is required", apierr.ErrValidation)
	}
	if req.Dialect != "" && !knownDialects[req.Dialect] {
		return fmt.Errorf("%w: unknown dialect %q", apierr.ErrValidation, req.Dialect)
	}
	if req.Tone != "" && !knownTones[req.Tone] {
		return fmt.Errorf("%w: unknown tone %q", apierr.ErrValidation, req.Tone)
	}
	return nil
}

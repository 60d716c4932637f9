package toolkit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/markupai/toolkit-go/internal/transport"
	"github.com/markupai/toolkit-go/pkg/apierr"
	"github.com/markupai/toolkit-go/pkg/models"
)

const suggestionsPath = "/v1/style/suggestions"

func suggestionStatusPath(workflowID string) string {
	return suggestionsPath + "/" + url.PathEscape(workflowID)
}

// StartSuggestions submits content for suggestions and returns the
// workflow acknowledgement without waiting for a result.
func (c *Client) StartSuggestions(ctx context.Context, req models.StyleAnalysisRequest) (models.WorkflowAck, error) {
	if err := validateAnalysisRequest(req); err != nil {
		return models.WorkflowAck{}, err
	}
	return c.engine.Submit(ctx, transport.Envelope{
		Method: http.MethodPost,
		Path:   suggestionsPath,
		Body:   transport.JSONBody(req),
	})
}

// GetSuggestions fetches the current snapshot of a suggestion workflow.
func (c *Client) GetSuggestions(ctx context.Context, workflowID string) (*models.SuggestionResponse, error) {
	resp, err := c.transport.Do(ctx, transport.Envelope{
		Method: http.MethodGet,
		Path:   suggestionStatusPath(workflowID),
	})
	if err != nil {
		return nil, err
	}
	var suggestion models.SuggestionResponse
	if err := resp.Decode(&suggestion); err != nil {
		return nil, err
	}
	suggestion.Status = string(models.NormalizeStatus(suggestion.Status))
	return &suggestion, nil
}

// Suggestions submits content for suggestions and waits for the result.
func (c *Client) Suggestions(ctx context.Context, req models.StyleAnalysisRequest) (*models.SuggestionResult, error) {
	if err := validateAnalysisRequest(req); err != nil {
		return nil, err
	}
	body, err := c.engine.SubmitAndWait(ctx, transport.Envelope{
		Method: http.MethodPost,
		Path:   suggestionsPath,
		Body:   transport.JSONBody(req),
	}, suggestionStatusPath)
	if err != nil {
		return nil, err
	}
	var suggestion models.SuggestionResponse
	if err := decodeTerminal(body, &suggestion); err != nil {
		return nil, err
	}
	if suggestion.Result == nil {
		return nil, fmt.Errorf("%w: completed suggestion run has no result", apierr.ErrMalformedResponse)
	}
	return suggestion.Result, nil
}

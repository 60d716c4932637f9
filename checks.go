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

const checksPath = "/v1/style/checks"

func checkStatusPath(workflowID string) string {
	return checksPath + "/" + url.PathEscape(workflowID)
}

// StartCheck submits content for a style check and returns the workflow
// acknowledgement without waiting for a result.
func (c *Client) StartCheck(ctx context.Context, req models.StyleAnalysisRequest) (models.WorkflowAck, error) {
	if err := validateAnalysisRequest(req); err != nil {
		return models.WorkflowAck{}, err
	}
	return c.engine.Submit(ctx, transport.Envelope{
		Method: http.MethodPost,
		Path:   checksPath,
		Body:   transport.JSONBody(req),
	})
}

// GetCheck fetches the current snapshot of a check workflow.
func (c *Client) GetCheck(ctx context.Context, workflowID string) (*models.CheckResponse, error) {
	resp, err := c.transport.Do(ctx, transport.Envelope{
		Method: http.MethodGet,
		Path:   checkStatusPath(workflowID),
	})
	if err != nil {
		return nil, err
	}
	var check models.CheckResponse
	if err := resp.Decode(&check); err != nil {
		return nil, err
	}
	check.Status = string(models.NormalizeStatus(check.Status))
	return &check, nil
}

// Check submits content for a style check and waits for the result.
func (c *Client) Check(ctx context.Context, req models.StyleAnalysisRequest) (*models.CheckResult, error) {
	if err := validateAnalysisRequest(req); err != nil {
		return nil, err
	}
	body, err := c.engine.SubmitAndWait(ctx, transport.Envelope{
		Method: http.MethodPost,
		Path:   checksPath,
		Body:   transport.JSONBody(req),
	}, checkStatusPath)
	if err != nil {
		return nil, err
	}
	var check models.CheckResponse
	if err := decodeTerminal(body, &check); err != nil {
		return nil, err
	}
	if check.Result == nil {
		return nil, fmt.Errorf("%w: completed check has no result", apierr.ErrMalformedResponse)
	}
	return check.Result, nil
}

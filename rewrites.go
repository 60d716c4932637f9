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

const rewritesPath = "/v1/style/rewrites"

func rewriteStatusPath(workflowID string) string {
	return rewritesPath + "/" + url.PathEscape(workflowID)
}

// StartRewrite submits content for a rewrite and returns the workflow
// acknowledgement without waiting for a result.
func (c *Client) StartRewrite(ctx context.Context, req models.StyleAnalysisRequest) (models.WorkflowAck, error) {
	if err := validateAnalysisRequest(req); err != nil {
		return models.WorkflowAck{}, err
	}
	return c.engine.Submit(ctx, transport.Envelope{
		Method: http.MethodPost,
		Path:   rewritesPath,
		Body:   transport.JSONBody(req),
	})
}

// GetRewrite fetches the current snapshot of a rewrite workflow.
func (c *Client) GetRewrite(ctx context.Context, workflowID string) (*models.RewriteResponse, error) {
	resp, err := c.transport.Do(ctx, transport.Envelope{
		Method: http.MethodGet,
		Path:   rewriteStatusPath(workflowID),
	})
	if err != nil {
		return nil, err
	}
	var rewrite models.RewriteResponse
	if err := resp.Decode(&rewrite); err != nil {
		return nil, err
	}
	rewrite.Status = string(models.NormalizeStatus(rewrite.Status))
	return &rewrite, nil
}

// Rewrite submits content for a rewrite and waits for the result. The
// returned result always carries the merged text.
func (c *Client) Rewrite(ctx context.Context, req models.StyleAnalysisRequest) (*models.RewriteResult, error) {
	if err := validateAnalysisRequest(req); err != nil {
		return nil, err
	}
	body, err := c.engine.SubmitAndWait(ctx, transport.Envelope{
		Method: http.MethodPost,
		Path:   rewritesPath,
		Body:   transport.JSONBody(req),
	}, rewriteStatusPath)
	if err != nil {
		return nil, err
	}
	var rewrite models.RewriteResponse
	if err := decodeTerminal(body, &rewrite); err != nil {
		return nil, err
	}
	if rewrite.Result == nil || rewrite.Result.MergedText == "" {
		return nil, fmt.Errorf("%w: completed rewrite has no result.merged_text", apierr.ErrMalformedResponse)
	}
	return rewrite.Result, nil
}

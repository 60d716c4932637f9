package toolkit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/markupai/toolkit-go/internal/transport"
	"github.com/markupai/toolkit-go/pkg/apierr"
	"github.com/markupai/toolkit-go/pkg/models"
)

const styleGuidesPath = "/v1/style-guides"

func styleGuideStatusPath(workflowID string) string {
	return styleGuidesPath + "/" + url.PathEscape(workflowID)
}

// StyleGuideUpload describes a style guide to be ingested by the
// platform. File is the source document (PDF); Filename defaults to
// "style-guide.pdf".
type StyleGuideUpload struct {
	Name     string
	File     io.Reader
	Filename string
}

// ListStyleGuides fetches all style guides visible to the API key.
func (c *Client) ListStyleGuides(ctx context.Context) ([]models.StyleGuide, error) {
	resp, err := c.transport.Do(ctx, transport.Envelope{
		Method: http.MethodGet,
		Path:   styleGuidesPath,
	})
	if err != nil {
		return nil, err
	}
	var guides []models.StyleGuide
	if err := resp.Decode(&guides); err != nil {
		return nil, err
	}
	return guides, nil
}

// GetStyleGuide fetches a single style guide by ID.
func (c *Client) GetStyleGuide(ctx context.Context, id string) (*models.StyleGuide, error) {
	resp, err := c.transport.Do(ctx, transport.Envelope{
		Method: http.MethodGet,
		Path:   styleGuidesPath + "/" + url.PathEscape(id),
	})
	if err != nil {
		return nil, err
	}
	var guide models.StyleGuide
	if err := resp.Decode(&guide); err != nil {
		return nil, err
	}
	return &guide, nil
}

// CreateStyleGuide uploads a style guide document and waits for the
// platform to finish ingesting it. Ingestion runs as a workflow like the
// content routes.
func (c *Client) CreateStyleGuide(ctx context.Context, up StyleGuideUpload) (*models.StyleGuide, error) {
	if strings.TrimSpace(up.Name) == "" {
		return nil, fmt.Errorf("%w: style guide name is required", apierr.ErrValidation)
	}
	if up.File == nil {
		return nil, fmt.Errorf("%w: style guide file is required", apierr.ErrValidation)
	}
	filename := up.Filename
	if filename == "" {
		filename = "style-guide.pdf"
	}

	body, err := transport.MultipartBody(
		map[string]string{"name": up.Name},
		transport.FilePart{Field: "file", Filename: filename, Content: up.File},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierr.ErrApplication, err)
	}

	terminal, err := c.engine.SubmitAndWait(ctx, transport.Envelope{
		Method: http.MethodPost,
		Path:   styleGuidesPath,
		Body:   body,
	}, styleGuideStatusPath)
	if err != nil {
		return nil, err
	}

	var created models.StyleGuideResponse
	if err := decodeTerminal(terminal, &created); err != nil {
		return nil, err
	}
	if created.Result == nil || created.Result.ID == "" {
		return nil, fmt.Errorf("%w: completed ingestion has no style guide", apierr.ErrMalformedResponse)
	}
	return created.Result, nil
}

// UpdateStyleGuide renames a style guide.
func (c *Client) UpdateStyleGuide(ctx context.Context, id, name string) (*models.StyleGuide, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: style guide name is required", apierr.ErrValidation)
	}
	resp, err := c.transport.Do(ctx, transport.Envelope{
		Method: http.MethodPut,
		Path:   styleGuidesPath + "/" + url.PathEscape(id),
		Body:   transport.JSONBody(map[string]string{"name": name}),
	})
	if err != nil {
		return nil, err
	}
	var guide models.StyleGuide
	if err := resp.Decode(&guide); err != nil {
		return nil, err
	}
	return &guide, nil
}

// DeleteStyleGuide removes a style guide. The platform answers 204.
func (c *Client) DeleteStyleGuide(ctx context.Context, id string) error {
	_, err := c.transport.Do(ctx, transport.Envelope{
		Method: http.MethodDelete,
		Path:   styleGuidesPath + "/" + url.PathEscape(id),
	})
	return err
}

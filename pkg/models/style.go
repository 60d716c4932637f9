package models

import "time"

// StyleAnalysisRequest is the shared submission body for the style
// content routes (checks, rewrites, suggestions).
type StyleAnalysisRequest struct {
	Content      string `json:"content"`
	StyleGuideID string `json:"style_guide_id,omitempty"`
	Dialect      string `json:"dialect,omitempty"`
	Tone         string `json:"tone,omitempty"`
	DocumentName string `json:"document_name,omitempty"`
}

// ScoreSummary holds the aggregate quality scores attached to every
// terminal style result.
type ScoreSummary struct {
	Quality     float64 `json:"quality"`
	Clarity     float64 `json:"clarity"`
	Consistency float64 `json:"consistency"`
}

// Issue is a single flagged span within the analyzed content.
type Issue struct {
	Original   string `json:"original"`
	Suggestion string `json:"suggestion,omitempty"`
	Category   string `json:"category"`
	StartIndex int    `json:"start_index"`
}

// CheckResult is the result payload of a completed style check.
type CheckResult struct {
	Scores ScoreSummary `json:"scores"`
	Issues []Issue      `json:"issues"`
}

// RewriteResult is the result payload of a completed rewrite. MergedText
// is the full document with all accepted suggestions applied.
type RewriteResult struct {
	MergedText string       `json:"merged_text"`
	Scores     ScoreSummary `json:"scores"`
	Issues     []Issue      `json:"issues,omitempty"`
}

// SuggestionResult is the result payload of a completed suggestion run.
type SuggestionResult struct {
	Scores ScoreSummary `json:"scores"`
	Issues []Issue      `json:"issues"`
}

// CheckResponse is a style-check status snapshot. Result is non-nil only
// once the workflow has completed.
type CheckResponse struct {
	WorkflowAck
	Result *CheckResult `json:"result,omitempty"`
}

// RewriteResponse is a rewrite status snapshot.
type RewriteResponse struct {
	WorkflowAck
	Result *RewriteResult `json:"result,omitempty"`
}

// SuggestionResponse is a suggestion status snapshot.
type SuggestionResponse struct {
	WorkflowAck
	Result *SuggestionResult `json:"result,omitempty"`
}

// StyleGuide is a platform style guide as returned by the style-guide
// routes. Status is non-empty while the guide is still being ingested.
type StyleGuide struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// StyleGuideResponse is the terminal payload of a style-guide ingestion
// workflow.
type StyleGuideResponse struct {
	WorkflowAck
	Result *StyleGuide `json:"result,omitempty"`
}

// Constants lists the guidance values the platform currently accepts.
type Constants struct {
	Dialects []string `json:"dialects"`
	Tones    []string `json:"tones"`
}

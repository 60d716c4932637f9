package models

import "strings"

// WorkflowStatus is the canonical, lower-case form of a workflow status.
// The platform reports status as a lower-case string; NormalizeStatus is
// the single place wire values are folded into this type.
type WorkflowStatus string

const (
	StatusQueued    WorkflowStatus = "queued"
	StatusRunning   WorkflowStatus = "running"
	StatusCompleted WorkflowStatus = "completed"
	StatusFailed    WorkflowStatus = "failed"
)

// NormalizeStatus folds a raw wire status into its canonical form.
// Unknown values (the platform occasionally reports transitional states
// such as "processing") normalize to a non-terminal status and are
// treated as still pending by the poller.
func NormalizeStatus(raw string) WorkflowStatus {
	return WorkflowStatus(strings.ToLower(strings.TrimSpace(raw)))
}

// Terminal reports whether no further status transitions can occur.
func (s WorkflowStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// WorkflowAck is the header shared by submission acknowledgements and
// status responses. Submission responses carry at least workflow_id;
// status responses carry status and, on failure, error_message. Some
// submission endpoints omit status entirely until processing begins.
type WorkflowAck struct {
	WorkflowID   string `json:"workflow_id"`
	Status       string `json:"status,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

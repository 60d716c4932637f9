package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/markupai/toolkit-go/pkg/models"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want models.WorkflowStatus
	}{
		{"queued", models.StatusQueued},
		{"running", models.StatusRunning},
		{"completed", models.StatusCompleted},
		{"failed", models.StatusFailed},
		{"Completed", models.StatusCompleted},
		{"  RUNNING  ", models.StatusRunning},
		{"processing", models.WorkflowStatus("processing")},
		{"", models.WorkflowStatus("")},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, models.NormalizeStatus(tc.raw), "raw=%q", tc.raw)
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, models.StatusCompleted.Terminal())
	assert.True(t, models.StatusFailed.Terminal())
	assert.False(t, models.StatusQueued.Terminal())
	assert.False(t, models.StatusRunning.Terminal())
	assert.False(t, models.NormalizeStatus("processing").Terminal())
	assert.False(t, models.WorkflowStatus("").Terminal())
}

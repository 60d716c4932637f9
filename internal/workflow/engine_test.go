package workflow_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markupai/toolkit-go/internal/transport"
	"github.com/markupai/toolkit-go/internal/workflow"
	"github.com/markupai/toolkit-go/pkg/apierr"
)

// fastConfig polls with a negligible interval so tests exercise attempt
// counting, not wall-clock waits.
func fastConfig(maxAttempts int) workflow.Config {
	return workflow.Config{MaxAttempts: maxAttempts, PollInterval: time.Millisecond}
}

func newEngine(t *testing.T, baseURL string, cfg workflow.Config) *workflow.Engine {
	t.Helper()
	return workflow.NewEngine(transport.New(baseURL, "sk-test", nil, nil), cfg, nil)
}

// statusScript serves each scripted body once, then repeats the last one.
func statusScript(calls *atomic.Int64, bodies ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		if n >= len(bodies) {
			n = len(bodies) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(bodies[n]))
	}
}

// --- Wait ---

func TestWait_PendingThenCompleted(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(statusScript(&calls,
		`{"workflow_id":"wf-1","status":"queued"}`,
		`{"workflow_id":"wf-1","status":"running"}`,
		`{"workflow_id":"wf-1","status":"running"}`,
		`{"workflow_id":"wf-1","status":"completed","result":{"merged_text":"X"}}`,
	))
	defer ts.Close()

	e := newEngine(t, ts.URL, fastConfig(30))
	body, err := e.Wait(context.Background(), "/v1/style/rewrites/wf-1")
	require.NoError(t, err)

	// exactly N pending responses + 1 terminal
	assert.Equal(t, int64(4), calls.Load())

	var terminal struct {
		Status string `json:"status"`
		Result struct {
			MergedText string `json:"merged_text"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(body, &terminal))
	assert.Equal(t, "completed", terminal.Status)
	assert.Equal(t, "X", terminal.Result.MergedText)
}

func TestWait_TimesOutAfterExactlyMaxAttempts(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(statusScript(&calls, `{"workflow_id":"wf-1","status":"running"}`))
	defer ts.Close()

	e := newEngine(t, ts.URL, fastConfig(3))
	_, err := e.Wait(context.Background(), "/v1/style/checks/wf-1")

	require.ErrorIs(t, err, apierr.ErrWorkflowTimeout)
	assert.EqualError(t, err, "workflow timed out after 3 attempts")
	assert.Equal(t, int64(3), calls.Load())
}

func TestWait_UnknownStatusStillPending(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(statusScript(&calls, `{"workflow_id":"wf-1","status":"processing"}`))
	defer ts.Close()

	e := newEngine(t, ts.URL, fastConfig(2))
	_, err := e.Wait(context.Background(), "/v1/style/checks/wf-1")

	require.ErrorIs(t, err, apierr.ErrWorkflowTimeout)
	assert.EqualError(t, err, "workflow timed out after 2 attempts")
}

func TestWait_MissingStatusCountsTowardBudget(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(statusScript(&calls, `{"workflow_id":"wf-1"}`))
	defer ts.Close()

	e := newEngine(t, ts.URL, fastConfig(2))
	_, err := e.Wait(context.Background(), "/v1/style/checks/wf-1")

	require.ErrorIs(t, err, apierr.ErrWorkflowTimeout)
	assert.Equal(t, int64(2), calls.Load())
}

func TestWait_FailedStopsImmediately(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(statusScript(&calls, `{"workflow_id":"wf-1","status":"failed","error_message":"boom"}`))
	defer ts.Close()

	e := newEngine(t, ts.URL, fastConfig(30))
	_, err := e.Wait(context.Background(), "/v1/style/checks/wf-1")

	require.ErrorIs(t, err, apierr.ErrWorkflowFailed)
	assert.EqualError(t, err, "workflow failed: boom")
	assert.Equal(t, int64(1), calls.Load(), "a terminal failure must not be retried")
}

func TestWait_FailedWithoutDetail(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(statusScript(&calls, `{"workflow_id":"wf-1","status":"failed"}`))
	defer ts.Close()

	e := newEngine(t, ts.URL, fastConfig(30))
	_, err := e.Wait(context.Background(), "/v1/style/checks/wf-1")

	require.ErrorIs(t, err, apierr.ErrWorkflowFailed)
	assert.EqualError(t, err, "workflow failed with status: failed")
}

func TestWait_StatusCaseNormalized(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(statusScript(&calls, `{"workflow_id":"wf-1","status":"Completed","result":{}}`))
	defer ts.Close()

	e := newEngine(t, ts.URL, fastConfig(30))
	_, err := e.Wait(context.Background(), "/v1/style/checks/wf-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load())
}

func TestWait_TransportErrorPropagatesUnchanged(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"detail":"upstream exploded"}`))
	}))
	defer ts.Close()

	e := newEngine(t, ts.URL, fastConfig(30))
	_, err := e.Wait(context.Background(), "/v1/style/checks/wf-1")

	var httpErr *apierr.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Equal(t, "upstream exploded", httpErr.Message)
	assert.Equal(t, int64(1), calls.Load(), "transport failures must not be retried")
}

func TestWait_CancelledBetweenAttempts(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(statusScript(&calls, `{"workflow_id":"wf-1","status":"running"}`))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	e := newEngine(t, ts.URL, workflow.Config{MaxAttempts: 30, PollInterval: 200 * time.Millisecond})

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := e.Wait(ctx, "/v1/style/checks/wf-1")
	require.ErrorIs(t, err, apierr.ErrCancelled)
}

func TestWait_DeadlineSurfacesAsCancelled(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(statusScript(&calls, `{"workflow_id":"wf-1","status":"running"}`))
	defer ts.Close()

	e := newEngine(t, ts.URL, workflow.Config{
		MaxAttempts:  30,
		PollInterval: 200 * time.Millisecond,
		Deadline:     20 * time.Millisecond,
	})
	_, err := e.Wait(context.Background(), "/v1/style/checks/wf-1")

	require.ErrorIs(t, err, apierr.ErrCancelled)
	assert.NotErrorIs(t, err, apierr.ErrWorkflowTimeout)
}

// --- Submit ---

func TestSubmit_ReturnsAck(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"workflow_id":"wf-1","status":"processing"}`))
	}))
	defer ts.Close()

	e := newEngine(t, ts.URL, fastConfig(30))
	ack, err := e.Submit(context.Background(), transport.Envelope{
		Method: http.MethodPost,
		Path:   "/v1/style/rewrites",
		Body:   transport.JSONBody(map[string]string{"content": "hi"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "wf-1", ack.WorkflowID)
	assert.Equal(t, "processing", ack.Status)
}

func TestSubmit_MissingWorkflowID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"bad"}`))
	}))
	defer ts.Close()

	e := newEngine(t, ts.URL, fastConfig(30))
	_, err := e.Submit(context.Background(), transport.Envelope{Method: http.MethodPost, Path: "/v1/style/rewrites"})
	require.ErrorIs(t, err, apierr.ErrMissingWorkflowID)
}

// --- SubmitAndWait ---

func TestSubmitAndWait_OneSubmitOnePoll(t *testing.T) {
	var submits, polls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/style/rewrites", func(w http.ResponseWriter, r *http.Request) {
		submits.Add(1)
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"workflow_id":"wf-1","status":"processing"}`))
	})
	mux.HandleFunc("GET /v1/style/rewrites/wf-1", func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		w.Write([]byte(`{"workflow_id":"wf-1","status":"completed","result":{"merged_text":"X"}}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	e := newEngine(t, ts.URL, fastConfig(30))
	body, err := e.SubmitAndWait(context.Background(),
		transport.Envelope{
			Method: http.MethodPost,
			Path:   "/v1/style/rewrites",
			Body:   transport.JSONBody(map[string]string{"content": "x"}),
		},
		func(id string) string { return fmt.Sprintf("/v1/style/rewrites/%s", id) },
	)
	require.NoError(t, err)
	assert.Equal(t, int64(1), submits.Load())
	assert.Equal(t, int64(1), polls.Load())

	var terminal struct {
		Result struct {
			MergedText string `json:"merged_text"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(body, &terminal))
	assert.Equal(t, "X", terminal.Result.MergedText)
}

func TestSubmitAndWait_NoPollWithoutWorkflowID(t *testing.T) {
	var polls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/style/rewrites", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"bad"}`))
	})
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		w.Write([]byte(`{}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	e := newEngine(t, ts.URL, fastConfig(30))
	_, err := e.SubmitAndWait(context.Background(),
		transport.Envelope{Method: http.MethodPost, Path: "/v1/style/rewrites"},
		func(id string) string { return "/v1/style/rewrites/" + id },
	)
	require.ErrorIs(t, err, apierr.ErrMissingWorkflowID)
	assert.Equal(t, int64(0), polls.Load(), "no status request may be issued without a workflow_id")
}

package assistant

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newFakeService(t *testing.T, handler http.Handler) *OpenAIService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIService(Options{
		APIKey:         "sk-test",
		AssistantID:    "asst_test",
		PollIntervalMs: 1,
		BaseURL:        srv.URL + "/",
	})
}

func writeRun(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

func TestRunToStableStatePollsUntilTerminal(t *testing.T) {
	var gets atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /threads/thread_1/runs", func(w http.ResponseWriter, r *http.Request) {
		writeRun(w, `{"id": "run_1", "status": "queued"}`)
	})
	mux.HandleFunc("GET /threads/thread_1/runs/run_1", func(w http.ResponseWriter, r *http.Request) {
		if gets.Add(1) < 2 {
			writeRun(w, `{"id": "run_1", "status": "in_progress"}`)
			return
		}
		writeRun(w, `{"id": "run_1", "status": "completed"}`)
	})
	svc := newFakeService(t, mux)

	run, err := svc.RunToStableState(context.Background(), "thread_1")
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.GreaterOrEqual(t, gets.Load(), int32(2), "must poll through transient states")
}

func TestRunToStableStateBoundedByContext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /threads/thread_1/runs", func(w http.ResponseWriter, r *http.Request) {
		writeRun(w, `{"id": "run_1", "status": "queued"}`)
	})
	mux.HandleFunc("GET /threads/thread_1/runs/run_1", func(w http.ResponseWriter, r *http.Request) {
		// never stabilizes; the caller's deadline must end the wait
		writeRun(w, `{"id": "run_1", "status": "in_progress"}`)
	})
	svc := newFakeService(t, mux)
	svc.pollIntervalMs = 5

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := svc.RunToStableState(ctx, "thread_1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSubmitToolOutputsPollsUntilTerminal(t *testing.T) {
	var submitted string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /threads/thread_1/runs/run_1/submit_tool_outputs", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		submitted = string(body)
		writeRun(w, `{"id": "run_1", "status": "in_progress"}`)
	})
	mux.HandleFunc("GET /threads/thread_1/runs/run_1", func(w http.ResponseWriter, r *http.Request) {
		writeRun(w, `{"id": "run_1", "status": "completed"}`)
	})
	svc := newFakeService(t, mux)

	run, err := svc.SubmitToolOutputs(context.Background(), "thread_1", "run_1", []ToolOutput{
		{CallID: "call_1", Output: "Deadlines moved to 90 days."},
	})
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)

	outputs := gjson.Get(submitted, "tool_outputs").Array()
	require.Len(t, outputs, 1)
	assert.Equal(t, "call_1", outputs[0].Get("tool_call_id").String())
	assert.Equal(t, "Deadlines moved to 90 days.", outputs[0].Get("output").String())
}

func TestRunToStableStateImmediatelyStable(t *testing.T) {
	var gets atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /threads/thread_1/runs", func(w http.ResponseWriter, r *http.Request) {
		writeRun(w, `{
			"id": "run_1",
			"status": "requires_action",
			"required_action": {
				"type": "submit_tool_outputs",
				"submit_tool_outputs": {
					"tool_calls": [
						{"id": "call_1", "function": {"name": "tavily_search", "arguments": "{\"query\": \"q\"}"}}
					]
				}
			}
		}`)
	})
	mux.HandleFunc("GET /threads/thread_1/runs/run_1", func(w http.ResponseWriter, r *http.Request) {
		gets.Add(1)
		writeRun(w, `{"id": "run_1", "status": "requires_action"}`)
	})
	svc := newFakeService(t, mux)

	run, err := svc.RunToStableState(context.Background(), "thread_1")
	require.NoError(t, err)
	assert.Equal(t, RunStatusRequiresAction, run.Status)
	require.Len(t, run.ToolCalls, 1)
	assert.Equal(t, "call_1", run.ToolCalls[0].ID)
	assert.Equal(t, int32(0), gets.Load(), "stable runs must not be re-fetched")
}

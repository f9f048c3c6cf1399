package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casebot/casebot/internal/relay/assistant"
)

func newTestRouter(svc assistant.Service) http.Handler {
	relay := testRelay(svc, &fakeSearcher{})
	r := chi.NewRouter()
	NewChatAPI(relay).Router(r)
	return r
}

func doChatRequest(t *testing.T, handler http.Handler, method, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestPostChatMessageJSON(t *testing.T) {
	svc := &fakeAssistant{
		threadID: "thread_new",
		runs:     []*assistant.Run{completedRun()},
		texts:    []string{"Habeas corpus is a legal remedy."},
	}
	handler := newTestRouter(svc)

	w := doChatRequest(t, handler, http.MethodPost, "application/json",
		`{"query": "What is habeas corpus?", "thread_id": null}`)

	require.Equal(t, http.StatusOK, w.Code)
	var rsp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rsp))
	assert.Equal(t, "thread_new", rsp.ThreadID)
	assert.Equal(t, "Habeas corpus is a legal remedy.", rsp.Response)
}

func TestPostChatMessageReusesThreadID(t *testing.T) {
	svc := &fakeAssistant{
		runs:  []*assistant.Run{completedRun()},
		texts: []string{"Follow-up answer."},
	}
	handler := newTestRouter(svc)

	w := doChatRequest(t, handler, http.MethodPost, "application/json",
		`{"query": "And the deadline?", "thread_id": "thread_existing"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var rsp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rsp))
	assert.Equal(t, "thread_existing", rsp.ThreadID)
	assert.Equal(t, 0, svc.createCalls)
}

func TestPostChatMessageObjectThreadID(t *testing.T) {
	svc := &fakeAssistant{
		runs:  []*assistant.Run{completedRun()},
		texts: []string{"Answer."},
	}
	handler := newTestRouter(svc)

	w := doChatRequest(t, handler, http.MethodPost, "application/json",
		`{"query": "And the deadline?", "thread_id": {"id": "thread_obj"}}`)

	require.Equal(t, http.StatusOK, w.Code)
	var rsp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rsp))
	assert.Equal(t, "thread_obj", rsp.ThreadID)
}

func TestPostChatMessageForm(t *testing.T) {
	svc := &fakeAssistant{
		runs:  []*assistant.Run{completedRun()},
		texts: []string{"Form answer."},
	}
	handler := newTestRouter(svc)

	w := doChatRequest(t, handler, http.MethodPost, "application/x-www-form-urlencoded",
		"query=What+is+habeas+corpus%3F&thread_id=thread_form")

	require.Equal(t, http.StatusOK, w.Code)
	var rsp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rsp))
	assert.Equal(t, "thread_form", rsp.ThreadID)
	assert.Equal(t, "Form answer.", rsp.Response)
	require.Equal(t, []string{"What is habeas corpus?"}, svc.appended)
}

func TestPostChatMessageRejection(t *testing.T) {
	svc := &fakeAssistant{}
	handler := newTestRouter(svc)

	w := doChatRequest(t, handler, http.MethodPost, "application/json",
		`{"query": "tell me a joke"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var rsp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rsp))
	// no identifier supplied and none created: thread_id is null
	assert.Nil(t, rsp["thread_id"])
	assert.Equal(t, "This question is not appropriate or relevant.", rsp["response"])
	assert.Equal(t, 0, svc.createCalls)
}

func TestPostChatMessageInvalidJSON(t *testing.T) {
	handler := newTestRouter(&fakeAssistant{})

	for _, body := range []string{`{"query": `, `"just a string"`, `[1, 2]`} {
		w := doChatRequest(t, handler, http.MethodPost, "application/json", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		assert.Contains(t, w.Body.String(), "error")
	}
}

func TestChatEndpointMethodNotAllowed(t *testing.T) {
	handler := newTestRouter(&fakeAssistant{})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := doChatRequest(t, handler, method, "application/json", "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, "method %s", method)
	}
}

func TestPostChatMessageUpstreamFailure(t *testing.T) {
	svc := &fakeAssistant{
		runs: []*assistant.Run{
			{ID: "run_1", Status: assistant.RunStatusFailed, FailureReason: "rate limit"},
		},
	}
	handler := newTestRouter(svc)

	w := doChatRequest(t, handler, http.MethodPost, "application/json",
		`{"query": "What is habeas corpus?", "thread_id": "thread_existing"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var rsp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rsp))
	assert.NotEmpty(t, rsp["error"])
}

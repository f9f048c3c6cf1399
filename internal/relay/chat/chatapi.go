package chat

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/casebot/casebot/internal/common/httpx"
)

// ChatRequest is the inbound message from the widget. ThreadID is whatever
// the client sent: absent, a string, or an object carrying an id-like field.
type ChatRequest struct {
	Query    string
	ThreadID any
}

// ChatResponse is the reply to the widget. ThreadID is the canonical string
// identifier, or null on a rejection with no supplied identifier.
type ChatResponse struct {
	ThreadID any    `json:"thread_id"`
	Response string `json:"response"`
}

// ChatAPI exposes the relay over HTTP.
type ChatAPI struct {
	relay *Relay
}

// NewChatAPI creates the HTTP surface for the given relay.
func NewChatAPI(relay *Relay) *ChatAPI {
	return &ChatAPI{relay: relay}
}

// postChatMessage handles one inbound chat message. Accepts JSON and
// URL-encoded form bodies. Unexpected failures are caught here once, logged,
// and turned into a generic server-error outcome; the relay performs no
// internal retries.
func (api *ChatAPI) postChatMessage(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req, err := parseChatRequest(r)
	if err != nil {
		return nil, err
	}

	tid := NormalizeThreadID(req.ThreadID)

	result, apperr := api.relay.RunTurn(ctx, req.Query, tid)
	if apperr != nil {
		log.Ctx(ctx).Error().Err(apperr).Str("thread_id", tid.Value()).Msg("chat turn failed")
		return nil, apperr
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response: &ChatResponse{
			ThreadID: result.ThreadID.OrNull(),
			Response: result.Response,
		},
	}, nil
}

// parseChatRequest decodes the request body. JSON bodies may carry thread_id
// as a string, object, or null; form bodies carry it as a string.
func parseChatRequest(r *http.Request) (*ChatRequest, error) {
	if r.Body == nil {
		return nil, httpx.ErrInvalidRequest("request body is required")
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, httpx.ErrUnableToReadRequest()
	}

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if !gjson.ValidBytes(body) {
			return nil, httpx.ErrInvalidRequest("invalid JSON body")
		}
		parsed := gjson.ParseBytes(body)
		if parsed.Type != gjson.JSON || parsed.IsArray() {
			return nil, httpx.ErrInvalidRequest("invalid JSON body")
		}
		return &ChatRequest{
			Query:    parsed.Get("query").String(),
			ThreadID: parsed.Get("thread_id").Value(),
		}, nil
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, httpx.ErrInvalidRequest("invalid form body")
	}
	req := &ChatRequest{Query: values.Get("query")}
	if tid := values.Get("thread_id"); tid != "" {
		req.ThreadID = tid
	}
	return req, nil
}

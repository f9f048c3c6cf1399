package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/casebot/casebot/internal/common/httpx"
)

// Version is the current version of the chat API.
const Version = "0.1.0"

// ResponseHandlerParam defines the configuration for HTTP route handlers.
type ResponseHandlerParam struct {
	Method  string               // HTTP method
	Path    string               // URL path pattern
	Handler httpx.RequestHandler // handler function for the route
}

// Router registers the chat endpoint on the given router. Only POST is
// registered; chi answers other methods with 405.
func (api *ChatAPI) Router(r chi.Router) {
	handlers := []ResponseHandlerParam{
		{
			Method:  http.MethodPost,
			Path:    "/",
			Handler: api.postChatMessage,
		},
	}
	for _, handler := range handlers {
		r.Method(handler.Method, handler.Path, httpx.WrapHttpRsp(handler.Handler))
	}
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.ErrReqMethodNotSupported().Send(w)
	})
}

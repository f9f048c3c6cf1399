// Package httpx provides HTTP request/response handling utilities for the
// relay endpoints. It includes JSON responses, a uniform error envelope,
// request parsing, and a handler wrapper that maps application errors to
// HTTP status codes.
package httpx

import (
	"net/http"

	"github.com/casebot/casebot/internal/common/apperrors"
)

// Response represents an HTTP response with a status code and a JSON body.
type Response struct {
	StatusCode int
	Response   any
}

// RequestHandler defines the function type route handlers implement.
type RequestHandler func(r *http.Request) (*Response, error)

// WrapHttpRsp wraps a RequestHandler to provide standardized response
// handling, mapping httpx and application errors to the error envelope.
func WrapHttpRsp(handler RequestHandler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rsp, err := handler(r)
		if err != nil {
			if httperror, ok := err.(*Error); ok {
				httperror.Send(w)
			} else if appErr, ok := err.(apperrors.Error); ok {
				SendError(w, appErr)
			} else {
				ErrApplicationError(err.Error()).Send(w)
			}
			return
		}
		if rsp == nil {
			ErrApplicationError().Send(w)
			return
		}
		SendJsonRsp(r.Context(), w, rsp.StatusCode, rsp.Response)
	})
}

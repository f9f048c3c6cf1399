package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/casebot/casebot/internal/common/httpx"
)

// SetTimeout creates middleware that enforces a timeout for request handling.
// The deadline propagates through the request context, so upstream waits
// (assistant run polling, search calls) are bounded by it. If the handler
// does not finish in time, a timeout error response is sent.
func SetTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			rw := httpx.NewResponseWriter(w)
			r = r.WithContext(ctx)

			done := make(chan struct{})
			go func() {
				defer func() {
					if p := recover(); p != nil {
						log.Ctx(ctx).Error().Msgf("panic in handler: %v", p)
					}
					close(done)
				}()
				next.ServeHTTP(rw, r)
			}()

			select {
			case <-done:
				return
			case <-ctx.Done():
				if !rw.Written() {
					httpx.ErrRequestTimeout().Send(rw)
				}
				// the handler goroutine may still hold rw; all of its
				// later writes become no-ops
				rw.Discard()
				log.Ctx(ctx).Error().Msg("request timed out")
				return
			}
		})
	}
}

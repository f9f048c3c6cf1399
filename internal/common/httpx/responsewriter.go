package httpx

import (
	"net/http"
	"sync"
)

// ResponseWriter wraps http.ResponseWriter and tracks whether headers were
// written, so middleware can avoid writing a second response. Access is
// synchronized: a timeout middleware may answer the request from one
// goroutine while the handler still holds the writer in another.
type ResponseWriter struct {
	http.ResponseWriter
	mu        sync.Mutex
	written   bool
	discarded bool
	status    int
}

// NewResponseWriter creates a new ResponseWriter wrapping the provided writer.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w}
}

// WriteHeader implements http.ResponseWriter.WriteHeader.
// If headers were already written, this is a no-op.
func (rw *ResponseWriter) WriteHeader(code int) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	rw.writeHeaderLocked(code)
}

func (rw *ResponseWriter) writeHeaderLocked(code int) {
	if rw.written || rw.discarded {
		return
	}
	rw.status = code
	rw.written = true
	rw.ResponseWriter.WriteHeader(code)
}

// Write implements http.ResponseWriter.Write.
// If headers were not written, writes a StatusOK (200) header first.
func (rw *ResponseWriter) Write(b []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.discarded {
		return len(b), nil
	}
	if !rw.written {
		rw.writeHeaderLocked(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Written reports whether headers or body were written.
func (rw *ResponseWriter) Written() bool {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.written
}

// Discard makes all further writes through this writer no-ops. A middleware
// that has already answered the request calls this so a still-running
// handler cannot interleave its response.
func (rw *ResponseWriter) Discard() {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	rw.discarded = true
}

// Status returns the status code. Returns http.StatusOK (200) if not set.
func (rw *ResponseWriter) Status() int {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}

// Flush implements http.Flusher if the underlying writer supports it.
func (rw *ResponseWriter) Flush() {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.discarded {
		return
	}
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

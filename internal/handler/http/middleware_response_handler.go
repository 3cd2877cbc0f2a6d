// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Glide Sync Authors

package http

import "net/http"

// responseWriter decorates http.ResponseWriter so withLogging can observe
// the status code and body size after the downstream handler returned,
// without buffering the response. WriteHeader is forwarded exactly once,
// matching the stdlib contract.
type responseWriter struct {
	http.ResponseWriter

	status      int
	wroteHeader bool

	// size is the running total of bytes written to the response body.
	size int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.status = statusCode
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// Flush forwards to the underlying writer when it supports streaming; the
// SSE endpoint depends on it.
func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

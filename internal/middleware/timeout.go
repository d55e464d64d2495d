// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Timeout cancels the request context after d. When the deadline passes
// before the handler produced any output, the client gets the console's
// JSON error envelope with a 503. A handler that already started
// writing keeps the response; a handler that only starts writing after
// the deadline has its output dropped.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			dw := &deadlineWriter{ResponseWriter: w}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(dw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				dw.mu.Lock()
				defer dw.mu.Unlock()
				if dw.state == writerIdle {
					dw.state = writerTimedOut
					WriteAPIError(w, http.StatusServiceUnavailable, "timeout",
						"The request took too long to complete.", nil)
				}
			}
		})
	}
}

// deadlineWriter arbitrates the response between the handler goroutine
// and the timeout branch: whichever writes first owns it.
type deadlineWriter struct {
	http.ResponseWriter
	mu    sync.Mutex
	state int
}

const (
	writerIdle = iota
	writerActive
	writerTimedOut
)

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.state == writerIdle {
		dw.state = writerActive
		dw.ResponseWriter.WriteHeader(code)
	}
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	switch dw.state {
	case writerIdle:
		dw.state = writerActive
	case writerTimedOut:
		// The timeout response already went out; swallow the late write.
		return len(b), nil
	}
	return dw.ResponseWriter.Write(b)
}

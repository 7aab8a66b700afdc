// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"tastetrail/internal/metrics"
)

// Recoverer turns a handler panic into a JSON 500 carrying the request id,
// counts it per route and logs the stack. http.ErrAbortHandler is
// re-panicked so the server aborts the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			id := RequestIDFromCtx(r.Context())
			metrics.HandlerPanics.WithLabelValues(routePattern(r)).Inc()
			slog.Error("panic recovered",
				"request_id", id,
				"error", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			msg := "internal server error"
			if id != "" {
				msg += " (request " + id + ")"
			}
			writeError(w, http.StatusInternalServerError, msg)
		}()

		next.ServeHTTP(w, r)
	})
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"

	"tastetrail/internal/session"
)

// hstsValue is one year including subdomains.
const hstsValue = "max-age=31536000; includeSubDomains"

// SecureHeaders sets the headers every API response carries. Nothing the
// API returns may be framed or run scripts. Requests with a session cookie
// get personalised answers, so those responses are marked no-store. hsts
// adds Strict-Transport-Security and is only meaningful behind TLS.
func SecureHeaders(hsts bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "interest-cohort=()")
			if hsts {
				h.Set("Strict-Transport-Security", hstsValue)
			}
			if c, err := r.Cookie(session.CookieName); err == nil && c.Value != "" {
				h.Set("Cache-Control", "no-store")
			}

			next.ServeHTTP(w, r)
		})
	}
}

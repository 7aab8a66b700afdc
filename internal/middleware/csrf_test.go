// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const frontend = "https://tastetrail.example"

func csrfHandler(secure bool, seen *string) http.Handler {
	return CSRF(CSRFOptions{Secure: secure, TrustedOrigins: []string{frontend}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if seen != nil {
				*seen = CSRFTokenFromCtx(r.Context())
			}
			w.WriteHeader(http.StatusOK)
		}))
}

func csrfCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			return c
		}
	}
	return nil
}

func TestCSRFIssuesToken(t *testing.T) {
	for _, secure := range []bool{true, false} {
		var seen string
		rr := httptest.NewRecorder()
		csrfHandler(secure, &seen).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

		c := csrfCookie(rr)
		if c == nil {
			t.Fatal("CSRF cookie not set")
		}
		if c.Secure != secure || c.SameSite != http.SameSiteStrictMode || c.HttpOnly {
			t.Errorf("cookie = %+v", c)
		}
		if raw, err := base64.RawURLEncoding.DecodeString(c.Value); err != nil || len(raw) != csrfTokenBytes {
			t.Errorf("token %q: %d bytes, %v", c.Value, len(raw), err)
		}
		if seen != c.Value {
			t.Errorf("context token %q, cookie %q", seen, c.Value)
		}
	}
}

func TestCSRFReusesCookie(t *testing.T) {
	var seen string
	req := httptest.NewRequest(http.MethodGet, "/api/likes", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "existing-token"})
	rr := httptest.NewRecorder()
	csrfHandler(false, &seen).ServeHTTP(rr, req)

	if seen != "existing-token" || csrfCookie(rr) != nil {
		t.Errorf("seen %q, new cookie %v", seen, csrfCookie(rr))
	}
	if got := CSRFTokenFromCtx(httptest.NewRequest(http.MethodGet, "/", nil).Context()); got != "" {
		t.Errorf("CSRFTokenFromCtx outside middleware = %q", got)
	}
}

func TestCSRFWrites(t *testing.T) {
	const token = "tok-123"

	tests := []struct {
		name     string
		method   string
		cookie   string
		header   string
		origin   string
		wantCode int
		wantBody string
	}{
		{"get needs nothing", http.MethodGet, "", "", "https://evil.example", http.StatusOK, ""},
		{"head needs nothing", http.MethodHead, "", "", "", http.StatusOK, ""},
		{"options needs nothing", http.MethodOptions, "", "", "", http.StatusOK, ""},
		{"post with token", http.MethodPost, token, token, "", http.StatusOK, ""},
		{"post without header", http.MethodPost, token, "", "", http.StatusForbidden, "CSRF token mismatch"},
		{"put wrong token", http.MethodPut, token, strings.Repeat("0", 7), "", http.StatusForbidden, "CSRF token mismatch"},
		{"patch without cookie", http.MethodPatch, "", token, "", http.StatusForbidden, "CSRF token mismatch"},
		{"delete with token", http.MethodDelete, token, token, "", http.StatusOK, ""},
		{"trusted origin", http.MethodPost, token, token, frontend, http.StatusOK, ""},
		{"own host", http.MethodPost, token, token, "http://example.com", http.StatusOK, ""},
		{"foreign origin", http.MethodPost, token, token, "https://evil.example", http.StatusForbidden, "cross-origin request rejected"},
		{"garbage origin", http.MethodDelete, token, token, "::not a url", http.StatusForbidden, "cross-origin request rejected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// httptest requests target example.com.
			req := httptest.NewRequest(tt.method, "/api/collections", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(CSRFHeaderName, tt.header)
			}
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			csrfHandler(false, nil).ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantCode)
			}
			if tt.wantBody == "" {
				return
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body: got %q, want %q", rr.Body.String(), tt.wantBody)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type: got %q", ct)
			}
		})
	}
}

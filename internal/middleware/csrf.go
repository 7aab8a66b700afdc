package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"net/url"
	"slices"
)

const (
	// CSRFCookieName holds the token; the frontend reads it.
	CSRFCookieName = "tt_csrf"

	// CSRFHeaderName is the header the token is echoed in.
	CSRFHeaderName = "X-CSRF-Token"

	csrfTokenBytes = 32

	csrfKey contextKey = "csrf"
)

// CSRFOptions configures CSRF.
type CSRFOptions struct {
	// Secure marks the token cookie Secure.
	Secure bool
	// TrustedOrigins may send writes besides the API's own host, usually
	// the CORS allow-list.
	TrustedOrigins []string
}

// CSRF guards writes with a double-submit token: a cookie readable by the
// frontend that POST, PUT, PATCH and DELETE must echo in X-CSRF-Token.
// Writes carrying an Origin header must also come from the API host or a
// trusted origin.
func CSRF(opts CSRFOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(CSRFCookieName); err == nil {
				token = c.Value
			}
			if token == "" {
				b := make([]byte, csrfTokenBytes)
				if _, err := rand.Read(b); err != nil {
					writeError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				token = base64.RawURLEncoding.EncodeToString(b)
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					Secure:   opts.Secure,
					SameSite: http.SameSiteStrictMode,
				})
			}
			r = r.WithContext(context.WithValue(r.Context(), csrfKey, token))

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			if !sameOrigin(r, opts.TrustedOrigins) {
				writeError(w, http.StatusForbidden, "cross-origin request rejected")
				return
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(r.Header.Get(CSRFHeaderName))) != 1 {
				writeError(w, http.StatusForbidden, "CSRF token mismatch")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sameOrigin reports whether the request's Origin, when present, is the
// API host or one of trusted.
func sameOrigin(r *http.Request, trusted []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(trusted, origin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

// CSRFTokenFromCtx returns the token CSRF placed in the context, or "".
func CSRFTokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey).(string)
	return token
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the TasteTrail JSON API.
// Handlers are grouped by concern (content, search, comments, collections,
// likes, auth) and receive their dependencies through the handler struct.
package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"tastetrail/internal/apperr"
	"tastetrail/internal/filter"
	"tastetrail/internal/models"
	"tastetrail/internal/validation"
)

// maxBodyBytes caps request bodies read by decodeJSON.
const maxBodyBytes = 1 << 20

// ResponseCache serves encoded responses, filling misses with fill.
// *cache.ResponseCache implements it; a nil ResponseCache disables caching.
type ResponseCache interface {
	Load(ctx context.Context, key string, fill func(context.Context) ([]byte, error)) ([]byte, error)
}

func cached(ctx context.Context, c ResponseCache, key string, fill func(context.Context) ([]byte, error)) ([]byte, error) {
	if c == nil {
		return fill(ctx)
	}
	return c.Load(ctx, key, fill)
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

// feedPage is a merged content page plus whether the dashboard should
// offer a "load more" control for it.
type feedPage struct {
	*models.Page[models.ContentDocument]
	ShowLoadMore bool `json:"showLoadMore"`
}

// newFeedPage wraps p. Group filters are applied to the references before
// paging, so every returned document survives them.
func newFeedPage(p *models.Page[models.ContentDocument], limit int) feedPage {
	n := len(p.Docs)
	return feedPage{Page: p, ShowLoadMore: filter.ShowLoadMore(p.HasNextPage, n, n, limit)}
}

// writeJSON writes data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("encode response failed", "error", err)
		writeRaw(w, http.StatusInternalServerError, []byte(`{"error":"internal server error"}`))
		return
	}
	writeRaw(w, status, body)
}

// writeRaw writes an already encoded JSON body.
func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// writeError writes a JSON error message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeErr maps err to its status code. Server errors are logged and
// answered with fallback; client errors carry their own message.
func writeErr(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, fallback)
		return
	}

	body := errorBody{Error: clientMessage(status)}
	var verr *validation.Error
	if errors.As(err, &verr) {
		body.Error = verr.Error()
		body.Fields = verr.Fields
	}
	writeJSON(w, status, body)
}

func clientMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "not authenticated"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not found"
	case http.StatusConflict:
		return "conflict"
	}
	return "invalid request"
}

// decodeJSON reads the request body into v. An empty body leaves v unchanged.
func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

// queryInt returns the integer query parameter key, or fallback when it is
// missing or malformed.
func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return n
}

// queryGroups parses the comma separated groups parameter. Unknown names
// are an error.
func queryGroups(r *http.Request) ([]models.Group, error) {
	raw := r.URL.Query().Get("groups")
	if raw == "" {
		return nil, nil
	}
	var groups []models.Group
	for _, part := range strings.Split(raw, ",") {
		g, err := models.ParseGroup(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"tastetrail/internal/cache"
	"tastetrail/internal/gateway"
	"tastetrail/internal/models"
)

// PostFetcher returns one page of CMS documents. *gateway.Gateway
// implements it.
type PostFetcher interface {
	FetchPosts(ctx context.Context, req gateway.FetchRequest) (*models.Page[models.ContentDocument], error)
}

// Content serves CMS documents by id list.
type Content struct {
	posts PostFetcher
	cache ResponseCache
}

// NewContent creates the Content handler group. cache may be nil.
func NewContent(posts PostFetcher, cache ResponseCache) *Content {
	return &Content{posts: posts, cache: cache}
}

// GetPosts returns one page of documents of a single collection type,
// selected by id. Responses are cached by request.
func (c *Content) GetPosts(w http.ResponseWriter, r *http.Request) {
	var req gateway.FetchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	body, err := cached(r.Context(), c.cache, postsKey(req), func(ctx context.Context) ([]byte, error) {
		page, err := c.posts.FetchPosts(ctx, req)
		if err != nil {
			return nil, err
		}
		return json.Marshal(page)
	})
	if err != nil {
		writeErr(w, r, err, "Failed to fetch posts")
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func postsKey(req gateway.FetchRequest) string {
	parts := make([]string, 0, len(req.PostIDs)+3)
	parts = append(parts, string(req.CollectionType), strconv.Itoa(req.Page), strconv.Itoa(req.Limit))
	for _, id := range req.PostIDs {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return cache.Key(parts...)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"tastetrail/internal/filter"
	"tastetrail/internal/likes"
	"tastetrail/internal/middleware"
	"tastetrail/internal/models"
)

// Likes groups the liked-posts endpoints.
type Likes struct {
	svc *likes.Service
}

// NewLikes creates the Likes handler group.
func NewLikes(svc *likes.Service) *Likes {
	return &Likes{svc: svc}
}

// Feed returns one merged page of the caller's liked content, optionally
// restricted to ?groups=.
func (l *Likes) Feed(w http.ResponseWriter, r *http.Request) {
	groups, err := queryGroups(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := queryInt(r, "limit", filter.PageSize)
	page, err := l.svc.LikedFeed(r.Context(), middleware.IdentityFromCtx(r.Context()), groups, queryInt(r, "page", 1), limit)
	if err != nil {
		writeErr(w, r, err, "Failed to fetch liked posts")
		return
	}
	writeJSON(w, http.StatusOK, newFeedPage(page, limit))
}

// likeResponse reports the like state of a post after a toggle.
type likeResponse struct {
	Post  models.ContentReference `json:"post"`
	Liked bool                    `json:"liked"`
}

// Toggle likes the posted reference, or unlikes it when already liked.
func (l *Likes) Toggle(w http.ResponseWriter, r *http.Request) {
	var ref models.ContentReference
	if err := decodeJSON(r, &ref); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	liked, err := l.svc.Toggle(r.Context(), middleware.IdentityFromCtx(r.Context()), ref)
	if err != nil {
		writeErr(w, r, err, "Failed to update like")
		return
	}
	writeJSON(w, http.StatusOK, likeResponse{Post: ref, Liked: liked})
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"tastetrail/internal/comments"
	"tastetrail/internal/filter"
	"tastetrail/internal/middleware"
	"tastetrail/internal/models"
)

// Comments groups the comment and rating endpoints.
type Comments struct {
	svc *comments.Service
}

// NewComments creates the Comments handler group.
func NewComments(svc *comments.Service) *Comments {
	return &Comments{svc: svc}
}

// userFilterParam selects a reader's comments in a listing query.
const userFilterParam = "where[firebaseUID][equals]"

// List returns approved comments on a post (?postId=&collectionType=) or
// the rated comments of one reader (?where[firebaseUID][equals]=).
func (c *Comments) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", comments.DefaultLimit)

	if uid := q.Get(userFilterParam); uid != "" {
		p, err := c.svc.ListForUser(r.Context(), uid, page, limit)
		if err != nil {
			writeErr(w, r, err, "Failed to fetch comments")
			return
		}
		writeJSON(w, http.StatusOK, p)
		return
	}

	postID, err := strconv.ParseInt(q.Get("postId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "postId and collectionType are required")
		return
	}
	ref := models.ContentReference{ID: postID, CollectionType: models.CollectionType(q.Get("collectionType"))}
	p, err := c.svc.ListForPost(r.Context(), ref, page, limit)
	if err != nil {
		writeErr(w, r, err, "Failed to fetch comments")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Upsert creates or edits the caller's comment or rating.
func (c *Comments) Upsert(w http.ResponseWriter, r *http.Request) {
	var in comments.UpsertInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := c.svc.Upsert(r.Context(), middleware.IdentityFromCtx(r.Context()), in)
	if err != nil {
		writeErr(w, r, err, "Failed to save comment")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// Delete removes the caller's comments named by [id][in] query values.
// Comments that cannot be deleted are reported alongside the others.
func (c *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	ids, err := idsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "No comment IDs provided")
		return
	}

	res, err := c.svc.BulkDelete(r.Context(), middleware.IdentityFromCtx(r.Context()), ids)
	if err != nil {
		writeErr(w, r, err, "Failed to delete comments")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// idsFromQuery collects comment ids from [id][in], where[id][in] and their
// indexed forms such as where[id][in][0].
func idsFromQuery(r *http.Request) ([]int64, error) {
	var ids []int64
	for key, vals := range r.URL.Query() {
		k := strings.TrimPrefix(key, "where")
		if !strings.HasPrefix(k, "[id][in]") {
			continue
		}
		for _, v := range vals {
			for _, part := range strings.Split(v, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				id, err := strconv.ParseInt(part, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("invalid comment id %q", part)
				}
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// Ratings returns the caller's rated comments in the order named by ?sort=
// (newest, alphabetical or highest).
func (c *Comments) Ratings(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	p, err := c.svc.ListForUser(r.Context(), id.UserID, queryInt(r, "page", 1), queryInt(r, "limit", comments.MaxLimit))
	if err != nil {
		writeErr(w, r, err, "Failed to fetch ratings")
		return
	}
	p.Docs = filter.SortRatings(p.Docs, models.SortKey(r.URL.Query().Get("sort")))
	writeJSON(w, http.StatusOK, p)
}

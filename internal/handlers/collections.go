// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tastetrail/internal/collections"
	"tastetrail/internal/filter"
	"tastetrail/internal/middleware"
	"tastetrail/internal/models"
	"tastetrail/internal/validation"
)

// Pager fetches merged pages of referenced content. *feed.Merger
// implements it.
type Pager interface {
	Page(ctx context.Context, refs []models.ContentReference, page, limit int) (*models.Page[models.ContentDocument], error)
}

// Collections groups the reader collection endpoints.
type Collections struct {
	svc   *collections.Service
	pager Pager
}

// NewCollections creates the Collections handler group.
func NewCollections(svc *collections.Service, pager Pager) *Collections {
	return &Collections{svc: svc, pager: pager}
}

// List returns a page of the caller's collections, most recently updated
// first. Pages are cut in that order, so ?sort= (newest, alphabetical) only
// reorders the items of a page and is ignored once ?cursor= is given.
func (c *Collections) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cursor := q.Get("cursor")
	res, err := c.svc.List(r.Context(), middleware.IdentityFromCtx(r.Context()), cursor, queryInt(r, "limit", collections.DefaultLimit))
	if err != nil {
		writeErr(w, r, err, "Failed to fetch collections")
		return
	}
	if sort := q.Get("sort"); sort != "" && cursor == "" {
		res.Items = filter.SortCollections(res.Items, models.SortKey(sort))
	}
	writeJSON(w, http.StatusOK, res)
}

// collectionInput is the body of create and update requests.
type collectionInput struct {
	Name        string                   `json:"name" validate:"notblank,max=100"`
	Description string                   `json:"description" validate:"max=500"`
	InitialPost *models.ContentReference `json:"initialPost"`
}

// Create makes a new collection, optionally holding a first post.
func (c *Collections) Create(w http.ResponseWriter, r *http.Request) {
	var in collectionInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.Struct(in); err != nil {
		writeErr(w, r, err, "")
		return
	}
	if in.InitialPost != nil && !validRef(*in.InitialPost) {
		writeError(w, http.StatusBadRequest, "invalid initial post")
		return
	}

	col, err := c.svc.Create(r.Context(), middleware.IdentityFromCtx(r.Context()), collections.CreateInput{
		Name:        in.Name,
		Description: in.Description,
		InitialPost: in.InitialPost,
	})
	if err != nil {
		writeErr(w, r, err, "Failed to create collection")
		return
	}
	writeJSON(w, http.StatusCreated, col)
}

// Get returns one collection. ?public=1 allows anonymous reads.
func (c *Collections) Get(w http.ResponseWriter, r *http.Request) {
	col, err := c.svc.Get(r.Context(), middleware.IdentityFromCtx(r.Context()), chi.URLParam(r, "id"), isPublic(r))
	if err != nil {
		writeErr(w, r, err, "Failed to fetch collection")
		return
	}
	writeJSON(w, http.StatusOK, col)
}

// Update renames a collection and rewrites its description.
func (c *Collections) Update(w http.ResponseWriter, r *http.Request) {
	var in collectionInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.Struct(in); err != nil {
		writeErr(w, r, err, "")
		return
	}

	col, err := c.svc.Update(r.Context(), middleware.IdentityFromCtx(r.Context()), chi.URLParam(r, "id"), in.Name, in.Description)
	if err != nil {
		writeErr(w, r, err, "Failed to update collection")
		return
	}
	writeJSON(w, http.StatusOK, col)
}

// Delete removes a collection.
func (c *Collections) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.svc.Delete(r.Context(), middleware.IdentityFromCtx(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeErr(w, r, err, "Failed to delete collection")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// postMutation adds a post to or removes it from a collection.
type postMutation struct {
	PostID         int64                 `json:"postId" validate:"min=1"`
	CollectionType models.CollectionType `json:"collectionType" validate:"collectiontype"`
	Action         models.PostAction     `json:"action" validate:"oneof=add remove"`
}

// MutatePost applies an add or remove to the collection's posts.
func (c *Collections) MutatePost(w http.ResponseWriter, r *http.Request) {
	var in postMutation
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.Struct(in); err != nil {
		writeErr(w, r, err, "")
		return
	}

	ref := models.ContentReference{ID: in.PostID, CollectionType: in.CollectionType}
	col, err := c.svc.MutatePost(r.Context(), middleware.IdentityFromCtx(r.Context()), chi.URLParam(r, "id"), ref, in.Action)
	if err != nil {
		writeErr(w, r, err, "Failed to update collection")
		return
	}
	writeJSON(w, http.StatusOK, col)
}

// Posts returns one merged page of the collection's content, optionally
// restricted to ?groups=.
func (c *Collections) Posts(w http.ResponseWriter, r *http.Request) {
	groups, err := queryGroups(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	col, err := c.svc.Get(r.Context(), middleware.IdentityFromCtx(r.Context()), chi.URLParam(r, "id"), isPublic(r))
	if err != nil {
		writeErr(w, r, err, "Failed to fetch collection")
		return
	}

	limit := queryInt(r, "limit", filter.PageSize)
	page, err := c.pager.Page(r.Context(), filter.Refs(col.Posts, groups), queryInt(r, "page", 1), limit)
	if err != nil {
		writeErr(w, r, err, "Failed to fetch posts")
		return
	}
	writeJSON(w, http.StatusOK, newFeedPage(page, limit))
}

func isPublic(r *http.Request) bool {
	switch r.URL.Query().Get("public") {
	case "1", "true":
		return true
	}
	return false
}

func validRef(ref models.ContentReference) bool {
	return ref.ID > 0 && ref.CollectionType.Valid()
}

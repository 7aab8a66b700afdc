// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package comments implements reader comments and ratings on content
// documents. A reader has at most one top-level comment per document;
// posting again edits it. Comments with text wait for moderation, bare
// ratings are published immediately.
package comments

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"tastetrail/internal/apperr"
	"tastetrail/internal/models"
	"tastetrail/internal/validation"
)

const (
	// DefaultLimit is the page size when none is given.
	DefaultLimit = 8
	// MaxLimit caps the page size.
	MaxLimit = 100

	deleteParallelism = 8
)

// Store is the comment persistence. *store.CommentStore implements it.
// Single lookups return nil when nothing matches; Update and Delete report
// whether a row was affected.
type Store interface {
	FindByID(ctx context.Context, id int64) (*models.Comment, error)
	FindTopLevel(ctx context.Context, userID string, ref models.ContentReference) (*models.Comment, error)
	ListApprovedForPost(ctx context.Context, ref models.ContentReference, page, limit int) (*models.Page[models.Comment], error)
	ListRatedByUser(ctx context.Context, userID string, page, limit int) (*models.Page[models.Comment], error)
	Create(ctx context.Context, c *models.Comment) error
	Update(ctx context.Context, c *models.Comment) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Service implements the comment operations for an explicit caller.
type Service struct {
	store Store
}

// NewService creates a Service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

func pageArgs(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return page, min(limit, MaxLimit)
}

// ListForPost returns approved comments on a document, newest first.
func (s *Service) ListForPost(ctx context.Context, ref models.ContentReference, page, limit int) (*models.Page[models.Comment], error) {
	if !ref.CollectionType.Valid() || ref.ID <= 0 {
		return nil, fmt.Errorf("list comments: post %s: %w", ref.Key(), apperr.ErrInvalid)
	}
	page, limit = pageArgs(page, limit)
	p, err := s.store.ListApprovedForPost(ctx, ref, page, limit)
	if err != nil {
		return nil, apperr.Backend("list comments", err)
	}
	return p, nil
}

// ListForUser returns the reader's rated comments, newest first, each with
// the title of the rated document when it still exists.
func (s *Service) ListForUser(ctx context.Context, userID string, page, limit int) (*models.Page[models.Comment], error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("list ratings: %w", apperr.ErrInvalid)
	}
	page, limit = pageArgs(page, limit)
	p, err := s.store.ListRatedByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, apperr.Backend("list ratings", err)
	}
	return p, nil
}

// UpsertInput is a comment or rating posted by a reader.
type UpsertInput struct {
	ID             *int64                `json:"id"`
	Comment        string                `json:"comment" validate:"max=5000"`
	Rating         *int                  `json:"rating" validate:"omitempty,min=1,max=5"`
	ParentID       *string               `json:"parentId"`
	PostID         int64                 `json:"postId" validate:"omitempty,min=1"`
	CollectionType models.CollectionType `json:"collectionType" validate:"omitempty,collectiontype"`
	Name           string                `json:"name" validate:"max=200"`
}

// nextStatus is the moderation state after a write: any text needs
// review, a rating on its own keeps a pending comment pending and is
// otherwise published.
func nextStatus(text string, current models.CommentStatus) models.CommentStatus {
	if text != "" {
		return models.CommentPending
	}
	if current == models.CommentPending {
		return models.CommentPending
	}
	return models.CommentApproved
}

// Upsert writes the caller's comment. With an id it edits that comment,
// which must belong to the caller. Otherwise it edits the caller's existing
// top-level comment on the document, or creates one. Empty text and a nil
// rating leave the stored values unchanged on edit.
func (s *Service) Upsert(ctx context.Context, owner *models.Identity, in UpsertInput) (*models.Comment, error) {
	if owner == nil {
		return nil, fmt.Errorf("post comment: %w", apperr.ErrUnauthenticated)
	}
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("post comment: %w", err)
	}
	text := strings.TrimSpace(in.Comment)

	var existing *models.Comment
	if in.ID != nil {
		c, err := s.store.FindByID(ctx, *in.ID)
		if err != nil {
			return nil, apperr.Backend("post comment", err)
		}
		if c == nil || c.UserID != owner.UserID {
			return nil, fmt.Errorf("post comment %d: %w", *in.ID, apperr.ErrForbidden)
		}
		existing = c
	} else {
		if in.PostID <= 0 || in.CollectionType == "" {
			return nil, fmt.Errorf("post comment: postId and collectionType are required: %w", apperr.ErrInvalid)
		}
		ref := models.ContentReference{ID: in.PostID, CollectionType: in.CollectionType}
		c, err := s.store.FindTopLevel(ctx, owner.UserID, ref)
		if err != nil {
			return nil, apperr.Backend("post comment", err)
		}
		existing = c
	}

	if existing != nil {
		if text != "" {
			existing.Comment = text
		}
		if in.Rating != nil {
			existing.Rating = in.Rating
		}
		existing.Status = nextStatus(text, existing.Status)
		ok, err := s.store.Update(ctx, existing)
		if err != nil {
			return nil, apperr.Backend("post comment", err)
		}
		if !ok {
			return nil, fmt.Errorf("post comment %d: %w", existing.ID, apperr.ErrNotFound)
		}
		return existing, nil
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = owner.OwnerName()
	}
	c := &models.Comment{
		Comment:  text,
		Rating:   in.Rating,
		UserID:   owner.UserID,
		Name:     name,
		Status:   nextStatus(text, ""),
		ParentID: in.ParentID,
		Post:     models.ContentReference{ID: in.PostID, CollectionType: in.CollectionType},
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, apperr.Backend("post comment", err)
	}
	return c, nil
}

// DeletedRef names a comment a bulk delete was asked to remove.
type DeletedRef struct {
	ID int64 `json:"id"`
}

// DeleteError is a comment a bulk delete could not remove.
type DeleteError struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// BulkDeleteResult reports the outcome of a bulk delete.
type BulkDeleteResult struct {
	Docs        []DeletedRef  `json:"docs"`
	Errors      []DeleteError `json:"errors"`
	TotalDocs   int           `json:"totalDocs"`
	DeletedDocs int           `json:"deletedDocs"`
}

// BulkDelete deletes the caller's comments with the given ids in parallel.
// Ids that are missing, not owned by the caller or fail to delete are
// reported in Errors; the others are deleted regardless.
func (s *Service) BulkDelete(ctx context.Context, owner *models.Identity, ids []int64) (*BulkDeleteResult, error) {
	if owner == nil {
		return nil, fmt.Errorf("delete comments: %w", apperr.ErrUnauthenticated)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("delete comments: no ids: %w", apperr.ErrInvalid)
	}

	res := &BulkDeleteResult{
		Docs:      make([]DeletedRef, len(ids)),
		Errors:    []DeleteError{},
		TotalDocs: len(ids),
	}
	failed := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(deleteParallelism)
	for i, id := range ids {
		res.Docs[i] = DeletedRef{ID: id}
		g.Go(func() error {
			failed[i] = s.deleteOwned(ctx, owner.UserID, id)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range failed {
		if err == nil {
			res.DeletedDocs++
			continue
		}
		slog.Warn("comment delete failed", "comment", ids[i], "user", owner.UserID, "error", err)
		res.Errors = append(res.Errors, DeleteError{
			ID:      ids[i],
			Message: "Failed to delete comment " + strconv.FormatInt(ids[i], 10),
		})
	}
	return res, nil
}

func (s *Service) deleteOwned(ctx context.Context, userID string, id int64) error {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return apperr.Backend("find comment", err)
	}
	if c == nil {
		return apperr.ErrNotFound
	}
	if c.UserID != userID {
		return apperr.ErrForbidden
	}
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return apperr.Backend("delete comment", err)
	}
	if !ok {
		return apperr.ErrNotFound
	}
	return nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package likes implements the reader's liked posts, stored on the reader
// document, and the paginated feed of liked content.
package likes

import (
	"context"
	"fmt"
	"slices"

	"tastetrail/internal/apperr"
	"tastetrail/internal/filter"
	"tastetrail/internal/models"
)

// Store keeps the liked references of a reader. *docstore.ReaderStore
// implements it.
type Store interface {
	LikedPosts(ctx context.Context, id string) ([]models.ContentReference, error)
	ToggleLike(ctx context.Context, id string, ref models.ContentReference) (bool, error)
}

// Pager fetches merged pages of referenced content. *feed.Merger
// implements it.
type Pager interface {
	Page(ctx context.Context, refs []models.ContentReference, page, limit int) (*models.Page[models.ContentDocument], error)
}

// Service implements likes for an explicit caller.
type Service struct {
	store Store
	pager Pager
}

// NewService creates a Service.
func NewService(store Store, pager Pager) *Service {
	return &Service{store: store, pager: pager}
}

// Toggle likes ref, or unlikes it if it is already liked. Returns whether
// the post is liked afterwards.
func (s *Service) Toggle(ctx context.Context, owner *models.Identity, ref models.ContentReference) (bool, error) {
	if owner == nil {
		return false, fmt.Errorf("toggle like: %w", apperr.ErrUnauthenticated)
	}
	if !ref.CollectionType.Valid() || ref.ID <= 0 {
		return false, fmt.Errorf("toggle like %s: %w", ref.Key(), apperr.ErrInvalid)
	}
	liked, err := s.store.ToggleLike(ctx, owner.UserID, ref)
	if err != nil {
		return false, apperr.Wrap("toggle like", err)
	}
	return liked, nil
}

// Refs returns the caller's liked references in the order they were liked.
// An anonymous caller has none.
func (s *Service) Refs(ctx context.Context, owner *models.Identity) ([]models.ContentReference, error) {
	if owner == nil {
		return []models.ContentReference{}, nil
	}
	refs, err := s.store.LikedPosts(ctx, owner.UserID)
	if err != nil {
		return nil, apperr.Wrap("liked posts", err)
	}
	return refs, nil
}

// IsLiked reports whether the caller likes ref.
func (s *Service) IsLiked(ctx context.Context, owner *models.Identity, ref models.ContentReference) (bool, error) {
	refs, err := s.Refs(ctx, owner)
	if err != nil {
		return false, err
	}
	return slices.Contains(refs, ref), nil
}

// LikedFeed returns one page of the caller's liked content, restricted to
// the given groups when any are set. The page size applies per collection
// type.
func (s *Service) LikedFeed(ctx context.Context, owner *models.Identity, groups []models.Group, page, limit int) (*models.Page[models.ContentDocument], error) {
	if owner == nil {
		return nil, fmt.Errorf("liked feed: %w", apperr.ErrUnauthenticated)
	}
	refs, err := s.Refs(ctx, owner)
	if err != nil {
		return nil, err
	}
	p, err := s.pager.Page(ctx, filter.Refs(refs, groups), page, limit)
	if err != nil {
		return nil, apperr.Wrap("liked feed", err)
	}
	return p, nil
}

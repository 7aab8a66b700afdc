// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package collections implements reader-owned collections of saved posts
// on top of the document store. Reads go through an in-process cache;
// adding and removing posts is applied optimistically to the cached copy
// and rolled back to the exact pre-mutation snapshot if the write fails.
package collections

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tastetrail/internal/apperr"
	"tastetrail/internal/docstore"
	"tastetrail/internal/metrics"
	"tastetrail/internal/models"
)

const (
	// DefaultLimit is the listing page size when none is given.
	DefaultLimit = 8
	// MaxLimit caps the listing page size.
	MaxLimit = 50

	defaultCacheTTL     = 30 * time.Second
	defaultCacheEntries = 10_000
)

// Backend is the persistence the service needs. *docstore.CollectionStore
// implements it. Get returns nil for a missing collection; writes return
// apperr sentinels for missing, foreign and duplicate records.
type Backend interface {
	Get(ctx context.Context, id string) (*models.UserCollection, error)
	GetMany(ctx context.Context, ids []string) ([]*models.UserCollection, error)
	Create(ctx context.Context, c *models.UserCollection) error
	Update(ctx context.Context, ownerID, id, name, description string, now time.Time) (*models.UserCollection, error)
	Delete(ctx context.Context, ownerID, id string) error
	MutatePost(ctx context.Context, ownerID, id string, ref models.ContentReference, action models.PostAction, now time.Time) (*models.UserCollection, error)
	Count(ctx context.Context, ownerID string) (int, error)
	ListIndex(ctx context.Context, ownerID string, after *docstore.Handle, limit int) ([]models.CollectionIndexEntry, error)
}

// Service implements collection CRUD for an explicit caller identity.
type Service struct {
	backend Backend
	cache   *cache
	now     func() time.Time
}

// NewService creates a Service over the given backend.
func NewService(backend Backend) *Service {
	return &Service{
		backend: backend,
		cache:   newCache(defaultCacheTTL, defaultCacheEntries),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ListResult is one page of the owner's collections.
type ListResult struct {
	Items      []*models.UserCollection `json:"items"`
	NextCursor string                   `json:"nextCursor,omitempty"`
	Total      int                      `json:"total"`
	HasMore    bool                     `json:"hasMore"`
}

// List returns the owner's collections, most recently updated first. An
// empty cursor starts at the beginning and counts the total; later cursors
// carry that total forward. Index entries whose collection document is
// missing are skipped.
func (s *Service) List(ctx context.Context, owner *models.Identity, cur string, limit int) (*ListResult, error) {
	if owner == nil {
		return nil, fmt.Errorf("list collections: %w", apperr.ErrUnauthenticated)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	var (
		after *docstore.Handle
		total int
	)
	if cur != "" {
		c, err := decodeCursor(cur)
		if err != nil {
			return nil, fmt.Errorf("list collections: %w", err)
		}
		after, total = &c.After, c.Total
	} else {
		n, err := s.backend.Count(ctx, owner.UserID)
		if err != nil {
			return nil, apperr.Wrap("list collections", err)
		}
		total = n
	}

	entries, err := s.backend.ListIndex(ctx, owner.UserID, after, limit+1)
	if err != nil {
		return nil, apperr.Wrap("list collections", err)
	}
	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.CollectionID
	}
	docs, err := s.backend.GetMany(ctx, ids)
	if err != nil {
		return nil, apperr.Wrap("list collections", err)
	}

	items := make([]*models.UserCollection, 0, len(docs))
	for i, d := range docs {
		if d == nil {
			slog.Warn("collection index entry without document", "owner", owner.UserID, "collection", ids[i])
			continue
		}
		items = append(items, d)
	}

	res := &ListResult{Items: items, Total: total, HasMore: hasMore}
	if hasMore {
		res.NextCursor = encodeCursor(cursor{After: docstore.HandleOf(entries[len(entries)-1]), Total: total})
	}
	return res, nil
}

// Get returns one collection. Private reads require a caller identity;
// public reads do not.
func (s *Service) Get(ctx context.Context, owner *models.Identity, id string, public bool) (*models.UserCollection, error) {
	if !public && owner == nil {
		return nil, fmt.Errorf("get collection: %w", apperr.ErrUnauthenticated)
	}

	now := s.now()
	if c, ok := s.cache.fresh(id, now); ok {
		return c, nil
	}

	c, err := s.backend.Get(ctx, id)
	if err != nil {
		return nil, apperr.Wrap("get collection", err)
	}
	if c == nil {
		return nil, fmt.Errorf("get collection %s: %w", id, apperr.ErrNotFound)
	}

	e := s.cache.entry(id, now)
	if e.resolve.TryLock() {
		e.set(c.Clone(), StateConfirmed, now)
		e.resolve.Unlock()
	}
	return c, nil
}

// CreateInput holds the fields of a new collection.
type CreateInput struct {
	Name        string
	Description string
	InitialPost *models.ContentReference
}

// Create writes a new collection owned by the caller. Name and
// description are trimmed; rejecting a blank name is the caller's job.
func (s *Service) Create(ctx context.Context, owner *models.Identity, in CreateInput) (*models.UserCollection, error) {
	if owner == nil {
		return nil, fmt.Errorf("create collection: %w", apperr.ErrUnauthenticated)
	}

	now := s.now()
	c := &models.UserCollection{
		ID:          uuid.NewString(),
		OwnerID:     owner.UserID,
		OwnerName:   owner.OwnerName(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
		Posts:       []models.ContentReference{},
	}
	if in.InitialPost != nil {
		c.Posts = append(c.Posts, *in.InitialPost)
	}

	if err := s.backend.Create(ctx, c); err != nil {
		return nil, apperr.Wrap("create collection", err)
	}
	s.cache.entry(c.ID, now).set(c.Clone(), StateConfirmed, now)
	return c, nil
}

// Update rewrites the collection's name and description.
func (s *Service) Update(ctx context.Context, owner *models.Identity, id, name, description string) (*models.UserCollection, error) {
	if owner == nil {
		return nil, fmt.Errorf("update collection: %w", apperr.ErrUnauthenticated)
	}

	e := s.cache.entry(id, s.now())
	e.resolve.Lock()
	defer e.resolve.Unlock()

	now := s.now()
	c, err := s.backend.Update(ctx, owner.UserID, id, strings.TrimSpace(name), strings.TrimSpace(description), now)
	if err != nil {
		return nil, apperr.Wrap("update collection", err)
	}
	e.set(c.Clone(), StateConfirmed, now)
	return c, nil
}

// Delete removes the collection and its owner index entry. A missing
// collection fails with apperr.ErrNotFound and writes nothing.
func (s *Service) Delete(ctx context.Context, owner *models.Identity, id string) error {
	if owner == nil {
		return fmt.Errorf("delete collection: %w", apperr.ErrUnauthenticated)
	}
	if err := s.backend.Delete(ctx, owner.UserID, id); err != nil {
		return apperr.Wrap("delete collection", err)
	}
	s.cache.evict(id)
	return nil
}

// MutatePost adds or removes ref. The change is applied to the cached copy
// first, reloaded from the backend when missing, rolled back or expired; on success the server copy replaces it, on failure the snapshot
// taken before the change is restored. Adding a post already present fails
// with apperr.ErrConflict; removing an absent post succeeds unchanged.
func (s *Service) MutatePost(ctx context.Context, owner *models.Identity, id string, ref models.ContentReference, action models.PostAction) (*models.UserCollection, error) {
	if owner == nil {
		return nil, fmt.Errorf("mutate collection: %w", apperr.ErrUnauthenticated)
	}

	e := s.cache.entry(id, s.now())
	e.resolve.Lock()
	defer e.resolve.Unlock()

	snapshot, ok := e.base(s.now(), s.cache.ttl)
	if !ok {
		c, err := s.backend.Get(ctx, id)
		if err != nil {
			return nil, apperr.Wrap("mutate collection", err)
		}
		if c == nil {
			return nil, fmt.Errorf("mutate collection %s: %w", id, apperr.ErrNotFound)
		}
		e.set(c.Clone(), StateConfirmed, s.now())
		snapshot = c
	}

	now := s.now()
	optimistic := snapshot.Clone()
	if err := docstore.ApplyPostAction(optimistic, ref, action, now); err != nil {
		metrics.CollectionMutations.WithLabelValues(string(action), "conflict").Inc()
		return nil, fmt.Errorf("mutate collection %s: %w", id, err)
	}
	e.set(optimistic, StateOptimistic, now)

	server, err := s.backend.MutatePost(ctx, owner.UserID, id, ref, action, now)
	if err != nil {
		e.set(snapshot, StateRolledBack, now)
		metrics.CollectionMutations.WithLabelValues(string(action), "rolled_back").Inc()
		slog.Warn("collection mutation rolled back", "collection", id, "action", action, "post", ref.Key(), "error", err)
		return nil, apperr.Wrap("mutate collection", err)
	}

	e.set(server.Clone(), StateConfirmed, s.now())
	metrics.CollectionMutations.WithLabelValues(string(action), "confirmed").Inc()
	return server, nil
}

// Cached returns the cached copy of a collection and its mutation state.
func (s *Service) Cached(id string) (*models.UserCollection, MutationState, bool) {
	s.cache.mu.Lock()
	e, ok := s.cache.entries[id]
	s.cache.mu.Unlock()
	if !ok {
		return nil, StateConfirmed, false
	}
	doc, state := e.snapshot()
	return doc, state, doc != nil
}

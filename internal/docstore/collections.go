// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"tastetrail/internal/apperr"
	"tastetrail/internal/models"
)

// CollectionStore persists reader collections. Each collection is stored
// twice: the document itself under collections/{id} and the owner's index
// entry under users/{uid}/collections/{id}. The sorted set
// users/{uid}/collections orders the index by updatedAt.
//
// Writes enforce the access rule: only the owner may modify or delete a
// collection. Violations return apperr.ErrForbidden.
type CollectionStore struct {
	client *redis.Client
}

// NewCollectionStore creates a CollectionStore backed by the given Valkey client.
func NewCollectionStore(client *redis.Client) *CollectionStore {
	return &CollectionStore{client: client}
}

// Handle is a position in an owner's collection index, used to resume a
// listing after the last returned entry.
type Handle struct {
	ID    string `json:"id"`
	Score int64  `json:"score"`
}

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

// Get retrieves a collection document. Returns nil if not found.
func (s *CollectionStore) Get(ctx context.Context, id string) (*models.UserCollection, error) {
	var c models.UserCollection
	ok, err := getJSON(ctx, s.client, collectionKey(id), &c)
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// GetMany retrieves several collection documents in one round trip. The
// result is parallel to ids; missing documents are nil.
func (s *CollectionStore) GetMany(ctx context.Context, ids []string) ([]*models.UserCollection, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = collectionKey(id)
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get collections: %w", err)
	}

	out := make([]*models.UserCollection, len(ids))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var c models.UserCollection
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("decode collection %s: %w", ids[i], err)
		}
		out[i] = &c
	}
	return out, nil
}

// Create writes a new collection document and its index entry atomically.
func (s *CollectionStore) Create(ctx context.Context, c *models.UserCollection) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	entry, err := json.Marshal(indexEntry(c))
	if err != nil {
		return fmt.Errorf("encode index entry: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, collectionKey(c.ID), doc, 0)
		pipe.Set(ctx, collectionIndexKey(c.OwnerID, c.ID), entry, 0)
		pipe.ZAdd(ctx, collectionOrderKey(c.OwnerID), redis.Z{Score: score(c.UpdatedAt), Member: c.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// Update rewrites the name and description of a collection and bumps
// updatedAt on both the document and the index entry.
func (s *CollectionStore) Update(ctx context.Context, ownerID, id, name, description string, now time.Time) (*models.UserCollection, error) {
	return s.modify(ctx, ownerID, id, func(c *models.UserCollection) error {
		c.Name = name
		c.Description = description
		c.UpdatedAt = now
		return nil
	})
}

// MutatePost adds or removes a content reference. Adding a reference that
// is already present returns apperr.ErrConflict; removing an absent one is
// a no-op that still returns the current document.
func (s *CollectionStore) MutatePost(ctx context.Context, ownerID, id string, ref models.ContentReference, action models.PostAction, now time.Time) (*models.UserCollection, error) {
	return s.modify(ctx, ownerID, id, func(c *models.UserCollection) error {
		return ApplyPostAction(c, ref, action, now)
	})
}

// ApplyPostAction mutates c in place. It is shared by the store and by
// callers that apply the same change to a cached copy.
func ApplyPostAction(c *models.UserCollection, ref models.ContentReference, action models.PostAction, now time.Time) error {
	switch action {
	case models.PostActionAdd:
		if c.Contains(ref) {
			return fmt.Errorf("post %s already saved: %w", ref.Key(), apperr.ErrConflict)
		}
		c.Posts = append(c.Posts, ref)
	case models.PostActionRemove:
		kept := make([]models.ContentReference, 0, len(c.Posts))
		for _, p := range c.Posts {
			if p != ref {
				kept = append(kept, p)
			}
		}
		c.Posts = kept
	default:
		return fmt.Errorf("unknown post action %q: %w", action, apperr.ErrInvalid)
	}
	c.UpdatedAt = now
	return nil
}

// modify runs a WATCH/MULTI read-modify-write on a collection document
// owned by ownerID and rewrites its index entry in the same transaction.
func (s *CollectionStore) modify(ctx context.Context, ownerID, id string, change func(*models.UserCollection) error) (*models.UserCollection, error) {
	key := collectionKey(id)
	var result *models.UserCollection

	err := watch(ctx, s.client, func(tx *redis.Tx) error {
		var c models.UserCollection
		ok, err := getJSON(ctx, tx, key, &c)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("collection %s: %w", id, apperr.ErrNotFound)
		}
		if c.OwnerID != ownerID {
			return fmt.Errorf("collection %s: %w", id, apperr.ErrForbidden)
		}
		if err := change(&c); err != nil {
			return err
		}

		doc, err := json.Marshal(&c)
		if err != nil {
			return fmt.Errorf("encode collection: %w", err)
		}
		entry, err := json.Marshal(indexEntry(&c))
		if err != nil {
			return fmt.Errorf("encode index entry: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, doc, 0)
			pipe.Set(ctx, collectionIndexKey(ownerID, id), entry, 0)
			pipe.ZAdd(ctx, collectionOrderKey(ownerID), redis.Z{Score: score(c.UpdatedAt), Member: id})
			return nil
		})
		if err != nil {
			return err
		}
		result = &c
		return nil
	}, key)
	if err != nil {
		return nil, fmt.Errorf("modify collection: %w", err)
	}
	return result, nil
}

// Delete removes a collection document and its index entry atomically.
// Returns apperr.ErrNotFound without writing anything if it does not exist.
func (s *CollectionStore) Delete(ctx context.Context, ownerID, id string) error {
	key := collectionKey(id)
	err := watch(ctx, s.client, func(tx *redis.Tx) error {
		var c models.UserCollection
		ok, err := getJSON(ctx, tx, key, &c)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("collection %s: %w", id, apperr.ErrNotFound)
		}
		if c.OwnerID != ownerID {
			return fmt.Errorf("collection %s: %w", id, apperr.ErrForbidden)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key, collectionIndexKey(ownerID, id))
			pipe.ZRem(ctx, collectionOrderKey(ownerID), id)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

// Count returns the number of collections in the owner's index.
func (s *CollectionStore) Count(ctx context.Context, ownerID string) (int, error) {
	n, err := s.client.ZCard(ctx, collectionOrderKey(ownerID)).Result()
	if err != nil {
		return 0, fmt.Errorf("count collections: %w", err)
	}
	return int(n), nil
}

// ListIndex returns up to limit index entries of the owner, most recently
// updated first, starting after the given handle (nil for the first page).
// Ordering members whose index entry is missing are skipped.
func (s *CollectionStore) ListIndex(ctx context.Context, ownerID string, after *Handle, limit int) ([]models.CollectionIndexEntry, error) {
	ids, err := s.indexIDs(ctx, ownerID, after, limit)
	if err != nil {
		return nil, fmt.Errorf("list collection index: %w", err)
	}
	if len(ids) == 0 {
		return []models.CollectionIndexEntry{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = collectionIndexKey(ownerID, id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list collection index: %w", err)
	}

	entries := make([]models.CollectionIndexEntry, 0, len(ids))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			slog.Warn("collection index entry missing", "owner", ownerID, "collection", ids[i])
			continue
		}
		var e models.CollectionIndexEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("decode index entry %s: %w", ids[i], err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// indexIDs resolves the next page of collection ids. When the handle's
// collection is still indexed the page starts right after its rank;
// otherwise it resumes strictly below the handle's score.
func (s *CollectionStore) indexIDs(ctx context.Context, ownerID string, after *Handle, limit int) ([]string, error) {
	order := collectionOrderKey(ownerID)
	if after == nil {
		return s.client.ZRevRange(ctx, order, 0, int64(limit-1)).Result()
	}

	rank, err := s.client.ZRevRank(ctx, order, after.ID).Result()
	if err == nil {
		return s.client.ZRevRange(ctx, order, rank+1, rank+int64(limit)).Result()
	}
	if err != redis.Nil {
		return nil, err
	}

	return s.client.ZRevRangeByScore(ctx, order, &redis.ZRangeBy{
		Max:   "(" + strconv.FormatInt(after.Score, 10),
		Min:   "-inf",
		Count: int64(limit),
	}).Result()
}

// HandleOf returns the listing handle positioned at entry.
func HandleOf(e models.CollectionIndexEntry) Handle {
	return Handle{ID: e.CollectionID, Score: e.UpdatedAt.UnixMilli()}
}

func indexEntry(c *models.UserCollection) models.CollectionIndexEntry {
	return models.CollectionIndexEntry{
		CollectionID: c.ID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

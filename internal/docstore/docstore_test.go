package docstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tastetrail/internal/apperr"
	"tastetrail/internal/models"
)

// testValkeyClient returns a Redis client connected to the test Valkey.
// Skips the test if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15, // Use DB 15 for tests to isolate from dev data.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"users/*", "collections/*", "readers/*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newCollection(owner string, updated time.Time) *models.UserCollection {
	return &models.UserCollection{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		OwnerName: "Tester",
		Name:      "Weeknight dinners",
		CreatedAt: updated,
		UpdatedAt: updated,
		Posts:     []models.ContentReference{},
	}
}

var shakshuka = models.ContentReference{ID: 7, CollectionType: models.CollectionRecipes}

func TestCollectionStoreCreateAndGet(t *testing.T) {
	s := NewCollectionStore(testValkeyClient(t))
	ctx := context.Background()

	c := newCollection("owner-a", time.Now().UTC().Truncate(time.Millisecond))
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Name != c.Name || got.OwnerID != "owner-a" {
		t.Fatalf("Get: got %+v", got)
	}

	n, err := s.Count(ctx, "owner-a")
	if err != nil || n != 1 {
		t.Errorf("Count: n=%d err=%v", n, err)
	}

	entries, err := s.ListIndex(ctx, "owner-a", nil, 8)
	if err != nil {
		t.Fatalf("ListIndex: %v", err)
	}
	if len(entries) != 1 || entries[0].CollectionID != c.ID {
		t.Errorf("ListIndex: got %+v", entries)
	}
}

func TestCollectionStoreGetMissing(t *testing.T) {
	s := NewCollectionStore(testValkeyClient(t))

	got, err := s.Get(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestCollectionStoreMutatePost(t *testing.T) {
	s := NewCollectionStore(testValkeyClient(t))
	ctx := context.Background()
	now := time.Now().UTC()

	c := newCollection("owner-b", now)
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	added, err := s.MutatePost(ctx, "owner-b", c.ID, shakshuka, models.PostActionAdd, now.Add(time.Second))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !added.Contains(shakshuka) {
		t.Fatal("expected post after add")
	}

	_, err = s.MutatePost(ctx, "owner-b", c.ID, shakshuka, models.PostActionAdd, now.Add(2*time.Second))
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate add: expected ErrConflict, got %v", err)
	}

	for i := range 2 {
		removed, err := s.MutatePost(ctx, "owner-b", c.ID, shakshuka, models.PostActionRemove, now.Add(3*time.Second))
		if err != nil {
			t.Fatalf("remove #%d: %v", i+1, err)
		}
		if removed.Contains(shakshuka) || len(removed.Posts) != 0 {
			t.Errorf("remove #%d: posts = %+v", i+1, removed.Posts)
		}
	}
}

func TestCollectionStoreAccessRule(t *testing.T) {
	s := NewCollectionStore(testValkeyClient(t))
	ctx := context.Background()
	now := time.Now().UTC()

	c := newCollection("owner-c", now)
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := s.Update(ctx, "intruder", c.ID, "mine now", "", now); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("Update by non-owner: expected ErrForbidden, got %v", err)
	}
	if _, err := s.MutatePost(ctx, "intruder", c.ID, shakshuka, models.PostActionAdd, now); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("MutatePost by non-owner: expected ErrForbidden, got %v", err)
	}
	if err := s.Delete(ctx, "intruder", c.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("Delete by non-owner: expected ErrForbidden, got %v", err)
	}

	got, _ := s.Get(ctx, c.ID)
	if got == nil || got.Name != c.Name {
		t.Error("collection changed after forbidden writes")
	}
}

func TestCollectionStoreUpdate(t *testing.T) {
	s := NewCollectionStore(testValkeyClient(t))
	ctx := context.Background()
	created := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)

	older := newCollection("owner-d", created)
	newer := newCollection("owner-d", created.Add(time.Minute))
	for _, c := range []*models.UserCollection{older, newer} {
		if err := s.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	updated, err := s.Update(ctx, "owner-d", older.ID, "Brunch", "Sunday plans", time.Now().UTC())
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Brunch" || updated.Description != "Sunday plans" {
		t.Errorf("Update: got %+v", updated)
	}

	entries, err := s.ListIndex(ctx, "owner-d", nil, 8)
	if err != nil {
		t.Fatalf("ListIndex: %v", err)
	}
	if len(entries) != 2 || entries[0].CollectionID != older.ID {
		t.Errorf("expected updated collection first, got %+v", entries)
	}

	if _, err := s.Update(ctx, "owner-d", "missing", "x", "", time.Now()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Update missing: expected ErrNotFound, got %v", err)
	}
}

func TestCollectionStoreDelete(t *testing.T) {
	client := testValkeyClient(t)
	s := NewCollectionStore(client)
	ctx := context.Background()

	c := newCollection("owner-e", time.Now().UTC())
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Delete(ctx, "owner-e", c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := s.Get(ctx, c.ID); got != nil {
		t.Error("expected collection document to be gone")
	}
	if n, _ := client.Exists(ctx, collectionIndexKey("owner-e", c.ID)).Result(); n != 0 {
		t.Error("expected index entry to be gone")
	}
	if n, _ := s.Count(ctx, "owner-e"); n != 0 {
		t.Errorf("expected empty index, got %d", n)
	}

	if err := s.Delete(ctx, "owner-e", c.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second Delete: expected ErrNotFound, got %v", err)
	}
}

func TestCollectionStoreListIndexPaging(t *testing.T) {
	s := NewCollectionStore(testValkeyClient(t))
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	var ids []string
	for i := range 5 {
		c := newCollection("owner-f", base.Add(time.Duration(i)*time.Second))
		if err := s.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, c.ID)
	}

	first, err := s.ListIndex(ctx, "owner-f", nil, 2)
	if err != nil {
		t.Fatalf("ListIndex page 1: %v", err)
	}
	if len(first) != 2 || first[0].CollectionID != ids[4] || first[1].CollectionID != ids[3] {
		t.Fatalf("page 1: got %+v", first)
	}

	h := HandleOf(first[1])
	second, err := s.ListIndex(ctx, "owner-f", &h, 2)
	if err != nil {
		t.Fatalf("ListIndex page 2: %v", err)
	}
	if len(second) != 2 || second[0].CollectionID != ids[2] {
		t.Fatalf("page 2: got %+v", second)
	}

	// Resume after a handle whose collection has since been deleted.
	if err := s.Delete(ctx, "owner-f", ids[3]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	resumed, err := s.ListIndex(ctx, "owner-f", &h, 2)
	if err != nil {
		t.Fatalf("ListIndex after delete: %v", err)
	}
	if len(resumed) != 2 || resumed[0].CollectionID != ids[2] || resumed[1].CollectionID != ids[1] {
		t.Errorf("resumed page: got %+v", resumed)
	}
}

func TestCollectionStoreGetMany(t *testing.T) {
	s := NewCollectionStore(testValkeyClient(t))
	ctx := context.Background()

	c := newCollection("owner-g", time.Now().UTC())
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.GetMany(ctx, []string{c.ID, "gone"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 2 || got[0] == nil || got[1] != nil {
		t.Errorf("GetMany: got %+v", got)
	}
}

func TestApplyPostAction(t *testing.T) {
	now := time.Now()
	c := &models.UserCollection{Posts: []models.ContentReference{}}

	if err := ApplyPostAction(c, shakshuka, models.PostActionAdd, now); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := ApplyPostAction(c, shakshuka, models.PostActionAdd, now); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate add: expected ErrConflict, got %v", err)
	}
	if err := ApplyPostAction(c, shakshuka, "toggle", now); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("unknown action: expected ErrInvalid, got %v", err)
	}
	if err := ApplyPostAction(c, shakshuka, models.PostActionRemove, now); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(c.Posts) != 0 || !c.UpdatedAt.Equal(now) {
		t.Errorf("after remove: %+v", c)
	}
}

func TestReaderStoreCreateAndFind(t *testing.T) {
	s := NewReaderStore(testValkeyClient(t))
	ctx := context.Background()

	r, err := s.Create(ctx, "  Reader@Example.com ", "s3cret-pass", "Ana")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Email != "reader@example.com" {
		t.Errorf("email not normalized: %q", r.Email)
	}

	found, err := s.FindByEmail(ctx, "READER@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if found == nil || found.ID != r.ID {
		t.Fatalf("FindByEmail: got %+v", found)
	}
	if !s.CheckPassword(found, "s3cret-pass") {
		t.Error("expected password to match")
	}
	if s.CheckPassword(found, "wrong") {
		t.Error("expected wrong password to fail")
	}

	if _, err := s.Create(ctx, "reader@example.com", "other", "Dup"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate email: expected ErrConflict, got %v", err)
	}

	missing, err := s.FindByEmail(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Errorf("FindByEmail missing: got %+v, %v", missing, err)
	}
}

func TestReaderStoreToggleLike(t *testing.T) {
	s := NewReaderStore(testValkeyClient(t))
	ctx := context.Background()

	r, err := s.Create(ctx, "likes@example.com", "pw-123456", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	liked, err := s.ToggleLike(ctx, r.ID, shakshuka)
	if err != nil || !liked {
		t.Fatalf("first toggle: liked=%v err=%v", liked, err)
	}
	refs, err := s.LikedPosts(ctx, r.ID)
	if err != nil || len(refs) != 1 || refs[0] != shakshuka {
		t.Fatalf("LikedPosts: %+v, %v", refs, err)
	}

	liked, err = s.ToggleLike(ctx, r.ID, shakshuka)
	if err != nil || liked {
		t.Fatalf("second toggle: liked=%v err=%v", liked, err)
	}
	refs, _ = s.LikedPosts(ctx, r.ID)
	if len(refs) != 0 {
		t.Errorf("expected no likes, got %+v", refs)
	}

	if _, err := s.ToggleLike(ctx, "ghost", shakshuka); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown reader: expected ErrNotFound, got %v", err)
	}
}

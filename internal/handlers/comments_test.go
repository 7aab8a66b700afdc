package handlers

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"testing"
	"time"

	"tastetrail/internal/comments"
	"tastetrail/internal/models"
)

// memComments is an in-memory comments.Store.
type memComments struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.Comment
}

func newMemComments(seed ...models.Comment) *memComments {
	m := &memComments{rows: map[int64]models.Comment{}}
	for _, c := range seed {
		m.rows[c.ID] = c
		m.nextID = max(m.nextID, c.ID)
	}
	return m
}

func (m *memComments) FindByID(_ context.Context, id int64) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memComments) FindTopLevel(_ context.Context, userID string, ref models.ContentReference) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.UserID == userID && c.Post == ref && c.ParentID == nil {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memComments) list(keep func(models.Comment) bool, page, limit int) *models.Page[models.Comment] {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Comment
	for _, c := range m.rows {
		if keep(c) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b models.Comment) int { return b.CreatedAt.Compare(a.CreatedAt) })
	total := len(out)
	start := min((page-1)*limit, total)
	return models.NewPage(out[start:min(start+limit, total)], total, page, limit)
}

func (m *memComments) ListApprovedForPost(_ context.Context, ref models.ContentReference, page, limit int) (*models.Page[models.Comment], error) {
	return m.list(func(c models.Comment) bool { return c.Post == ref && c.Status == models.CommentApproved }, page, limit), nil
}

func (m *memComments) ListRatedByUser(_ context.Context, userID string, page, limit int) (*models.Page[models.Comment], error) {
	return m.list(func(c models.Comment) bool { return c.UserID == userID && c.IsRated() }, page, limit), nil
}

func (m *memComments) Create(_ context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.rows[c.ID] = *c
	return nil
}

func (m *memComments) Update(_ context.Context, c *models.Comment) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[c.ID]; !ok {
		return false, nil
	}
	m.rows[c.ID] = *c
	return true, nil
}

func (m *memComments) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

func ptr[T any](v T) *T { return &v }

var pasta = models.ContentReference{ID: 7, CollectionType: models.CollectionRecipes}

func seededComments() *memComments {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return newMemComments(
		models.Comment{ID: 1, Comment: "Lovely", Rating: ptr(5), UserID: "ana", Status: models.CommentApproved, Post: pasta, PostTitle: ptr("Pasta"), CreatedAt: base},
		models.Comment{ID: 2, Comment: "Awaiting", UserID: "bo", Status: models.CommentPending, Post: pasta, CreatedAt: base.Add(time.Hour)},
		models.Comment{ID: 3, Rating: ptr(2), UserID: "ana", Status: models.CommentApproved, Post: models.ContentReference{ID: 9, CollectionType: models.CollectionRestaurants}, PostTitle: ptr("Bistro"), CreatedAt: base.Add(2 * time.Hour)},
	)
}

func TestCommentsList(t *testing.T) {
	h := NewComments(comments.NewService(seededComments()))

	tests := []struct {
		name   string
		target string
		status int
		ids    []int64
	}{
		{"approved on post", "/api/comments?postId=7&collectionType=recipes", http.StatusOK, []int64{1}},
		{"by reader", "/api/comments?where[firebaseUID][equals]=ana", http.StatusOK, []int64{3, 1}},
		{"missing post", "/api/comments", http.StatusBadRequest, nil},
		{"bad collection", "/api/comments?postId=7&collectionType=desserts", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(h.List, newRequest(http.MethodGet, tt.target, "", nil))
			assertStatus(t, rr, tt.status)
			if tt.status != http.StatusOK {
				return
			}
			var page models.Page[models.Comment]
			decodeBody(t, rr, &page)
			var got []int64
			for _, c := range page.Docs {
				got = append(got, c.ID)
			}
			if !slices.Equal(got, tt.ids) {
				t.Errorf("ids = %v, want %v", got, tt.ids)
			}
		})
	}
}

func TestCommentsUpsert(t *testing.T) {
	store := seededComments()
	h := NewComments(comments.NewService(store))

	rr := serve(h.Upsert, newRequest(http.MethodPost, "/api/comments", `{"comment":"Great","postId":7,"collectionType":"recipes"}`, nil))
	assertStatus(t, rr, http.StatusUnauthorized)

	rr = serve(h.Upsert, newRequest(http.MethodPost, "/api/comments", `{"rating":4,"postId":8,"collectionType":"recipes"}`, testSession("cy")))
	assertStatus(t, rr, http.StatusOK)
	var created models.Comment
	decodeBody(t, rr, &created)
	if created.Status != models.CommentApproved || created.Name != "Test Reader" {
		t.Errorf("created = %+v", created)
	}

	rr = serve(h.Upsert, newRequest(http.MethodPost, "/api/comments", `{"id":1,"comment":"Hijack"}`, testSession("cy")))
	assertStatus(t, rr, http.StatusForbidden)

	rr = serve(h.Upsert, newRequest(http.MethodPost, "/api/comments", `{"rating":9,"postId":8,"collectionType":"recipes"}`, testSession("cy")))
	assertStatus(t, rr, http.StatusBadRequest)
}

func TestCommentsDelete(t *testing.T) {
	h := NewComments(comments.NewService(seededComments()))
	sess := testSession("ana")

	rr := serve(h.Delete, newRequest(http.MethodDelete, "/api/comments", "", sess))
	assertStatus(t, rr, http.StatusBadRequest)

	rr = serve(h.Delete, newRequest(http.MethodDelete, "/api/comments?[id][in]=abc", "", sess))
	assertStatus(t, rr, http.StatusBadRequest)

	rr = serve(h.Delete, newRequest(http.MethodDelete, "/api/comments?[id][in]=1&[id][in]=2&where[id][in][0]=42", "", sess))
	assertStatus(t, rr, http.StatusOK)
	var res comments.BulkDeleteResult
	decodeBody(t, rr, &res)
	if res.TotalDocs != 3 || res.DeletedDocs != 1 || len(res.Errors) != 2 {
		t.Errorf("result = %+v, want 1 deleted and 2 errors", res)
	}
}

func TestRatingsSorted(t *testing.T) {
	h := NewComments(comments.NewService(seededComments()))

	tests := []struct {
		sort string
		ids  []int64
	}{
		{"highest", []int64{1, 3}},
		{"newest", []int64{3, 1}},
		{"alphabetical", []int64{3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			rr := serve(h.Ratings, newRequest(http.MethodGet, "/api/ratings?sort="+tt.sort, "", testSession("ana")))
			assertStatus(t, rr, http.StatusOK)
			var page models.Page[models.Comment]
			decodeBody(t, rr, &page)
			var got []int64
			for _, c := range page.Docs {
				got = append(got, c.ID)
			}
			if !slices.Equal(got, tt.ids) {
				t.Errorf("ids = %v, want %v", got, tt.ids)
			}
		})
	}
}

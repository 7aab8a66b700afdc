package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"tastetrail/internal/gateway"
	"tastetrail/internal/models"
)

// fakeFinder serves documents for the requested ids and counts calls.
type fakeFinder struct {
	calls int
	err   error
}

func (f *fakeFinder) FindByIDs(_ context.Context, _ models.CollectionType, ids []int64, page, limit int) (*models.Page[models.ContentDocument], error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	docs := make([]models.ContentDocument, len(ids))
	for i, id := range ids {
		docs[i] = models.ContentDocument{ID: id, Title: "doc"}
	}
	return models.NewPage(docs, len(ids), page, limit), nil
}

func TestGetPosts(t *testing.T) {
	finder := &fakeFinder{}
	c := newMemCache()
	h := NewContent(gateway.New(finder, gateway.DefaultBreakerConfig()), c)
	body := `{"postIds":[3,1],"collectionType":"recipes"}`

	rr := serve(h.GetPosts, newRequest(http.MethodPost, "/api/getPosts", body, nil))
	assertStatus(t, rr, http.StatusOK)

	var page models.Page[struct {
		ID             int64                 `json:"id"`
		CollectionType models.CollectionType `json:"collectionType"`
		OriginalIndex  int                   `json:"originalIndex"`
	}]
	decodeBody(t, rr, &page)
	if page.TotalDocs != 2 || page.Page != 1 || len(page.Docs) != 2 {
		t.Fatalf("page = %+v", page)
	}
	if d := page.Docs[0]; d.ID != 3 || d.CollectionType != models.CollectionRecipes || d.OriginalIndex != 0 {
		t.Errorf("first doc = %+v", d)
	}

	rr = serve(h.GetPosts, newRequest(http.MethodPost, "/api/getPosts", body, nil))
	assertStatus(t, rr, http.StatusOK)
	if finder.calls != 1 || c.hits != 1 {
		t.Errorf("finder calls = %d, cache hits = %d; want the second request cached", finder.calls, c.hits)
	}
}

func TestGetPostsErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		want   string
	}{
		{"malformed body", `{"postIds":`, nil, http.StatusBadRequest, "invalid request body"},
		{"no ids", `{"postIds":[],"collectionType":"recipes"}`, nil, http.StatusBadRequest, ""},
		{"unknown type", `{"postIds":[1],"collectionType":"desserts"}`, nil, http.StatusBadRequest, ""},
		{"cms down", `{"postIds":[1],"collectionType":"recipes"}`, errors.New("connection refused"), http.StatusInternalServerError, "Failed to fetch posts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewContent(gateway.New(&fakeFinder{err: tt.err}, gateway.DefaultBreakerConfig()), nil)
			rr := serve(h.GetPosts, newRequest(http.MethodPost, "/api/getPosts", tt.body, nil))
			assertStatus(t, rr, tt.status)

			var got errorBody
			decodeBody(t, rr, &got)
			if got.Error == "" || (tt.want != "" && got.Error != tt.want) {
				t.Errorf("error = %q, want %q", got.Error, tt.want)
			}
		})
	}
}

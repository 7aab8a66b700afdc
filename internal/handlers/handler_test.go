// handler_test.go provides shared test infrastructure for handler tests.
// Services run over in-memory fakes of their stores.
package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"tastetrail/internal/apperr"
	"tastetrail/internal/docstore"
	"tastetrail/internal/middleware"
	"tastetrail/internal/models"
	"tastetrail/internal/session"
)

// testSession creates a session.Data for testing.
func testSession(userID string) *session.Data {
	return &session.Data{UserID: userID, Email: userID + "@tastetrail.local", DisplayName: "Test Reader"}
}

// newRequest builds a request with an optional JSON body and session.
func newRequest(method, target, body string, sess *session.Data) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, rd)
	if sess != nil {
		r = r.WithContext(context.WithValue(r.Context(), middleware.SessionKey, sess))
	}
	return r
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// serve runs h and returns the recorder.
func serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, r)
	return rr
}

// decodeBody unmarshals the recorded JSON body into v.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}

// memCache is an in-memory ResponseCache.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Load(ctx context.Context, key string, fill func(context.Context) ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	b, ok := c.data[key]
	if ok {
		c.hits++
	}
	c.mu.Unlock()
	if ok {
		return b, nil
	}

	b, err := fill(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.data[key] = b
	c.mu.Unlock()
	return b, nil
}

// memCollections is an in-memory collections.Backend.
type memCollections struct {
	mu   sync.Mutex
	docs map[string]*models.UserCollection
}

func newMemCollections() *memCollections {
	return &memCollections{docs: map[string]*models.UserCollection{}}
}

func (m *memCollections) Get(_ context.Context, id string) (*models.UserCollection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.docs[id]; ok {
		return c.Clone(), nil
	}
	return nil, nil
}

func (m *memCollections) GetMany(ctx context.Context, ids []string) ([]*models.UserCollection, error) {
	out := make([]*models.UserCollection, len(ids))
	for i, id := range ids {
		out[i], _ = m.Get(ctx, id)
	}
	return out, nil
}

func (m *memCollections) Create(_ context.Context, c *models.UserCollection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[c.ID] = c.Clone()
	return nil
}

func (m *memCollections) owned(ownerID, id string) (*models.UserCollection, error) {
	c, ok := m.docs[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if c.OwnerID != ownerID {
		return nil, apperr.ErrForbidden
	}
	return c, nil
}

func (m *memCollections) Update(_ context.Context, ownerID, id, name, description string, now time.Time) (*models.UserCollection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.owned(ownerID, id)
	if err != nil {
		return nil, err
	}
	c.Name, c.Description, c.UpdatedAt = name, description, now
	return c.Clone(), nil
}

func (m *memCollections) Delete(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.owned(ownerID, id); err != nil {
		return err
	}
	delete(m.docs, id)
	return nil
}

func (m *memCollections) MutatePost(_ context.Context, ownerID, id string, ref models.ContentReference, action models.PostAction, now time.Time) (*models.UserCollection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.owned(ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := docstore.ApplyPostAction(c, ref, action, now); err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

func (m *memCollections) Count(_ context.Context, ownerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.docs {
		if c.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *memCollections) ListIndex(_ context.Context, ownerID string, after *docstore.Handle, limit int) ([]models.CollectionIndexEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CollectionIndexEntry
	for _, c := range m.docs {
		if c.OwnerID == ownerID {
			out = append(out, models.CollectionIndexEntry{CollectionID: c.ID, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt})
		}
	}
	slices.SortFunc(out, func(a, b models.CollectionIndexEntry) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out[:min(limit, len(out))], nil
}

// stubPager returns one document per reference.
type stubPager struct {
	refs []models.ContentReference
	err  error
}

func (p *stubPager) Page(_ context.Context, refs []models.ContentReference, page, limit int) (*models.Page[models.ContentDocument], error) {
	p.refs = refs
	if p.err != nil {
		return nil, p.err
	}
	docs := make([]models.ContentDocument, len(refs))
	for i, r := range refs {
		docs[i] = models.ContentDocument{ID: r.ID, CollectionType: r.CollectionType, Title: r.Key()}
	}
	return models.NewPage(docs, len(docs), page, limit), nil
}

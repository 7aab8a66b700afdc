// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"tastetrail/internal/apperr"
	"tastetrail/internal/cache"
	"tastetrail/internal/middleware"
	"tastetrail/internal/models"
	"tastetrail/internal/search"
	"tastetrail/internal/validation"
)

// Searcher answers search terms and taxonomy listings.
// *search.Aggregator implements it.
type Searcher interface {
	Search(ctx context.Context, term string) (*search.Response, error)
	Taxonomies(ctx context.Context, kind models.TaxonomyKind) (*search.TaxonomyList, error)
}

// RecentSearches keeps readers' recent searches. *search.RecentStore
// implements it.
type RecentSearches interface {
	Add(ctx context.Context, uid string, rs search.RecentSearch) error
	List(ctx context.Context, uid string) ([]search.RecentSearch, error)
	Remove(ctx context.Context, uid, title string) error
	Clear(ctx context.Context, uid string) error
}

// Search groups the search endpoints.
type Search struct {
	searcher Searcher
	recent   RecentSearches
	cache    ResponseCache
}

// NewSearch creates the Search handler group. cache may be nil.
func NewSearch(searcher Searcher, recent RecentSearches, cache ResponseCache) *Search {
	return &Search{searcher: searcher, recent: recent, cache: cache}
}

// searchResponse is the search answer, optionally narrowed to one group.
type searchResponse struct {
	Docs             []search.Result                       `json:"docs"`
	AvailableFilters map[models.FacetKey][]models.Taxonomy `json:"availableFilters"`
	TagFilters       []models.FacetDef                     `json:"tagFilters,omitempty"`
}

// Query searches every collection for ?term=. With ?group= the hits are
// narrowed to that group and to any facet values given as query
// parameters named by facet key.
func (s *Search) Query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var group models.Group
	if raw := q.Get("group"); raw != "" {
		g, err := models.ParseGroup(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		group = g
	}

	res, err := s.lookup(r.Context(), q.Get("term"))
	if err != nil {
		writeErr(w, r, err, "Failed to search")
		return
	}

	out := searchResponse{Docs: res.Docs, AvailableFilters: res.AvailableFilters}
	if group != "" {
		out.Docs = search.Narrow(res.Docs, group, search.ActiveFilters(group, q))
		out.TagFilters = search.TagFiltersFor(group)
	}
	writeJSON(w, http.StatusOK, out)
}

// lookup returns the response for term, from the cache when possible.
// Terms are cached case-insensitively; the blank term is not cached.
func (s *Search) lookup(ctx context.Context, term string) (*search.Response, error) {
	term = strings.TrimSpace(term)
	if s.cache == nil || term == "" {
		return s.searcher.Search(ctx, term)
	}

	body, err := s.cache.Load(ctx, cache.Key("search", strings.ToLower(term)), func(ctx context.Context) ([]byte, error) {
		res, err := s.searcher.Search(ctx, term)
		if err != nil {
			return nil, err
		}
		return json.Marshal(res)
	})
	if err != nil {
		return nil, err
	}
	var res search.Response
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode cached search %q: %w", term, err)
	}
	return &res, nil
}

// taxonomyRequest names the taxonomy collection to list.
type taxonomyRequest struct {
	Collection string `json:"collection"`
}

// Taxonomies lists one taxonomy collection sorted by title.
func (s *Search) Taxonomies(w http.ResponseWriter, r *http.Request) {
	var req taxonomyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	kind, err := models.ParseTaxonomyKind(req.Collection)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := s.searcher.Taxonomies(r.Context(), kind)
	if err != nil {
		writeErr(w, r, err, "Failed to list taxonomies")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// recentResponse lists the caller's recent searches, newest first.
type recentResponse struct {
	Docs []search.RecentSearch `json:"docs"`
}

// Recent lists the caller's recent searches.
func (s *Search) Recent(w http.ResponseWriter, r *http.Request) {
	s.writeRecent(w, r)
}

// AddRecent records a search result the caller opened.
func (s *Search) AddRecent(w http.ResponseWriter, r *http.Request) {
	var rs search.RecentSearch
	if err := decodeJSON(r, &rs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.Struct(rs); err != nil {
		writeErr(w, r, err, "")
		return
	}

	id := middleware.IdentityFromCtx(r.Context())
	if err := s.recent.Add(r.Context(), id.UserID, rs); err != nil {
		writeErr(w, r, err, "Failed to save recent search")
		return
	}
	s.writeRecent(w, r)
}

// DeleteRecent removes the recent search named by ?title=, or all of them
// when no title is given.
func (s *Search) DeleteRecent(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	var err error
	if title := strings.TrimSpace(r.URL.Query().Get("title")); title != "" {
		err = s.recent.Remove(r.Context(), id.UserID, title)
	} else {
		err = s.recent.Clear(r.Context(), id.UserID)
	}
	if err != nil {
		writeErr(w, r, apperr.Wrap("delete recent search", err), "Failed to delete recent search")
		return
	}
	s.writeRecent(w, r)
}

func (s *Search) writeRecent(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	list, err := s.recent.List(r.Context(), id.UserID)
	if err != nil {
		writeErr(w, r, err, "Failed to load recent searches")
		return
	}
	if list == nil {
		list = []search.RecentSearch{}
	}
	writeJSON(w, http.StatusOK, recentResponse{Docs: list})
}

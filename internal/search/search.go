// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package search implements the site-wide search: a parallel partial match
// over every content collection, the facet values each hit can be narrowed
// by, and the per-reader list of recent searches.
package search

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"tastetrail/internal/apperr"
	"tastetrail/internal/models"
)

const (
	// PerCollection is the number of hits taken from each collection.
	PerCollection = 5
	// TaxonomyLimit caps a taxonomy listing.
	TaxonomyLimit = 100
)

// Searcher runs a partial title/slug match within one collection.
// *store.ContentStore implements it.
type Searcher interface {
	Search(ctx context.Context, ct models.CollectionType, term string, limit int) ([]models.ContentDocument, error)
}

// TaxonomyLister lists the terms of one taxonomy collection.
// *store.TaxonomyStore implements it.
type TaxonomyLister interface {
	ListByKind(ctx context.Context, kind models.TaxonomyKind, limit int) ([]models.Taxonomy, int, error)
}

// Result is a single search hit.
type Result struct {
	ID             int64                          `json:"id"`
	Title          string                         `json:"title"`
	Slug           string                         `json:"slug"`
	CollectionType models.CollectionType          `json:"collectionType"`
	FeaturedImage  *string                        `json:"featuredImage,omitempty"`
	Filters        map[models.FacetKey]FacetValue `json:"filters"`
}

// Response is the full answer to a search term.
type Response struct {
	Docs             []Result                              `json:"docs"`
	AvailableFilters map[models.FacetKey][]models.Taxonomy `json:"availableFilters"`
}

// TaxonomyList is one taxonomy collection, sorted by title.
type TaxonomyList struct {
	Docs      []models.Taxonomy `json:"docs"`
	TotalDocs int               `json:"totalDocs"`
}

// Aggregator searches all content collections at once.
type Aggregator struct {
	content    Searcher
	taxonomies TaxonomyLister
}

// NewAggregator creates an Aggregator over the CMS stores.
func NewAggregator(content Searcher, taxonomies TaxonomyLister) *Aggregator {
	return &Aggregator{content: content, taxonomies: taxonomies}
}

func emptyResponse() *Response {
	return &Response{Docs: []Result{}, AvailableFilters: map[models.FacetKey][]models.Taxonomy{}}
}

// Search matches term against the title and slug of every collection, up to
// PerCollection hits each. Hits are returned in collection display order.
// A blank term returns an empty response without touching the CMS. If any
// collection fails the whole search fails.
func (a *Aggregator) Search(ctx context.Context, term string) (*Response, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return emptyResponse(), nil
	}

	hits := make([][]models.ContentDocument, len(models.CollectionTypes))
	g, gctx := errgroup.WithContext(ctx)
	for i, ct := range models.CollectionTypes {
		g.Go(func() error {
			docs, err := a.content.Search(gctx, ct, term, PerCollection)
			if err != nil {
				return fmt.Errorf("%s: %w", ct, err)
			}
			for j := range docs {
				docs[j].CollectionType = ct
			}
			hits[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperr.Backend("search", err)
	}

	resp := emptyResponse()
	avail := newAvailable()
	for _, docs := range hits {
		for i := range docs {
			d := &docs[i]
			resp.Docs = append(resp.Docs, Result{
				ID:             d.ID,
				Title:          d.Title,
				Slug:           d.Slug,
				CollectionType: d.CollectionType,
				FeaturedImage:  d.FeaturedImage,
				Filters:        facetsOf(d.Details),
			})
			avail.collect(d.Details)
		}
	}
	resp.AvailableFilters = avail.options
	return resp, nil
}

// Taxonomies lists the terms of one taxonomy collection.
func (a *Aggregator) Taxonomies(ctx context.Context, kind models.TaxonomyKind) (*TaxonomyList, error) {
	items, total, err := a.taxonomies.ListByKind(ctx, kind, TaxonomyLimit)
	if err != nil {
		return nil, apperr.Backend("list taxonomies", err)
	}
	return &TaxonomyList{Docs: items, TotalDocs: total}, nil
}

// TagFiltersFor returns the facets offered when narrowing results of group.
func TagFiltersFor(group models.Group) []models.FacetDef {
	return models.FacetsByGroup[group]
}

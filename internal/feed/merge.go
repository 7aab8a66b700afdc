// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package feed presents a list of references to documents of several
// collection types as one paginated feed. References are bucketed by
// collection type, each bucket is fetched through the gateway, and the
// bucket pages are merged into one page.
//
// The page size applies per bucket: a page over references of N types
// holds up to N*limit documents.
package feed

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"tastetrail/internal/gateway"
	"tastetrail/internal/models"
)

// Fetcher fetches one page of one collection type. *gateway.Gateway
// implements it.
type Fetcher interface {
	FetchPosts(ctx context.Context, req gateway.FetchRequest) (*models.Page[models.ContentDocument], error)
}

// Bucket holds the ids of one collection type, in input order.
type Bucket struct {
	CollectionType models.CollectionType
	IDs            []int64
}

// Group buckets refs by collection type. Buckets are ordered by the first
// appearance of their type in refs. References with an unknown type are
// skipped.
func Group(refs []models.ContentReference) []Bucket {
	var buckets []Bucket
	pos := make(map[models.CollectionType]int)
	for _, r := range refs {
		if !r.CollectionType.Valid() {
			slog.Warn("skipping reference with unknown collection type", "id", r.ID, "collection_type", r.CollectionType)
			continue
		}
		i, ok := pos[r.CollectionType]
		if !ok {
			i = len(buckets)
			pos[r.CollectionType] = i
			buckets = append(buckets, Bucket{CollectionType: r.CollectionType})
		}
		buckets[i].IDs = append(buckets[i].IDs, r.ID)
	}
	return buckets
}

// Merge combines bucket pages, in bucket order, into one page: documents
// are concatenated, totals summed, HasNextPage is true if any bucket has
// more, and NextPage is the largest bucket next page.
func Merge(pages []*models.Page[models.ContentDocument]) *models.Page[models.ContentDocument] {
	out := &models.Page[models.ContentDocument]{Docs: []models.ContentDocument{}}
	for _, p := range pages {
		out.Docs = append(out.Docs, p.Docs...)
		out.TotalDocs += p.TotalDocs
		if p.HasNextPage {
			out.HasNextPage = true
		}
		if p.NextPage != nil && (out.NextPage == nil || *p.NextPage > *out.NextPage) {
			next := *p.NextPage
			out.NextPage = &next
		}
	}
	if !out.HasNextPage {
		out.NextPage = nil
	}
	return out
}

// Merger fetches merged pages through a Fetcher.
type Merger struct {
	fetcher Fetcher
}

// NewMerger creates a Merger over the given fetcher.
func NewMerger(fetcher Fetcher) *Merger {
	return &Merger{fetcher: fetcher}
}

// Page fetches page number page of refs with limit documents per bucket.
// Buckets are fetched concurrently; if any bucket fails the whole page
// fails. No references means an empty page and no fetches.
func (m *Merger) Page(ctx context.Context, refs []models.ContentReference, page, limit int) (*models.Page[models.ContentDocument], error) {
	buckets := Group(refs)
	if page <= 0 {
		page = gateway.DefaultPage
	}
	if len(buckets) == 0 {
		return &models.Page[models.ContentDocument]{Docs: []models.ContentDocument{}, Page: page}, nil
	}

	pages := make([]*models.Page[models.ContentDocument], len(buckets))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range buckets {
		g.Go(func() error {
			p, err := m.fetcher.FetchPosts(gctx, gateway.FetchRequest{
				PostIDs:        b.IDs,
				CollectionType: b.CollectionType,
				Page:           page,
				Limit:          limit,
			})
			if err != nil {
				return fmt.Errorf("bucket %s: %w", b.CollectionType, err)
			}
			pages[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("merge page %d: %w", page, err)
	}

	merged := Merge(pages)
	merged.Page = page
	return merged, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package gateway fetches pages of CMS documents by id for a single
// collection type. It is the only path from the API to the CMS content
// table for id-list reads, and guards that path with a circuit breaker.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"tastetrail/internal/apperr"
	"tastetrail/internal/metrics"
	"tastetrail/internal/models"
	"tastetrail/internal/validation"
)

const (
	// DefaultPage is the page used when a request does not name one.
	DefaultPage = 1
	// DefaultLimit is the page size used when a request does not name one.
	DefaultLimit = 8
)

// Finder is the CMS query the gateway delegates to. Implementations return
// documents in their own order (store.ContentStore orders by id).
type Finder interface {
	FindByIDs(ctx context.Context, ct models.CollectionType, ids []int64, page, limit int) (*models.Page[models.ContentDocument], error)
}

// FetchRequest selects one page of documents of one collection type.
type FetchRequest struct {
	PostIDs        []int64               `json:"postIds" validate:"required,min=1,max=500"`
	CollectionType models.CollectionType `json:"collectionType" validate:"collectiontype"`
	Page           int                   `json:"page" validate:"min=1"`
	Limit          int                   `json:"limit" validate:"min=1,max=100"`
}

// withDefaults fills in page and limit when the caller left them unset.
func (r FetchRequest) withDefaults() FetchRequest {
	if r.Page <= 0 {
		r.Page = DefaultPage
	}
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	return r
}

// BreakerConfig tunes the CMS circuit breaker.
type BreakerConfig struct {
	MaxRequests      uint32        // probes allowed while half-open
	Interval         time.Duration // closed-state counter reset period
	Timeout          time.Duration // open-state duration before probing
	FailureThreshold uint32        // consecutive failures that trip the breaker
}

// DefaultBreakerConfig returns the production breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// Gateway fetches CMS pages through a circuit breaker.
type Gateway struct {
	finder  Finder
	breaker *gobreaker.CircuitBreaker[*models.Page[models.ContentDocument]]
}

// New creates a Gateway over the given finder.
func New(finder Finder, cfg BreakerConfig) *Gateway {
	settings := gobreaker.Settings{
		Name:        "cms",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			metrics.BreakerState.Set(float64(to))
		},
		// A caller giving up is not a CMS failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &Gateway{
		finder:  finder,
		breaker: gobreaker.NewCircuitBreaker[*models.Page[models.ContentDocument]](settings),
	}
}

// FetchPosts returns one page of the requested documents. Every returned
// document carries the request's collection type and its position in
// PostIDs as OriginalIndex. The gateway does not reorder documents.
// Any CMS failure, including an open breaker, is reported as
// apperr.ErrBackend; invalid requests as apperr.ErrInvalid.
func (g *Gateway) FetchPosts(ctx context.Context, req FetchRequest) (*models.Page[models.ContentDocument], error) {
	req = req.withDefaults()
	if err := validation.Struct(&req); err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}

	page, err := g.breaker.Execute(func() (*models.Page[models.ContentDocument], error) {
		return g.finder.FindByIDs(ctx, req.CollectionType, req.PostIDs, req.Page, req.Limit)
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
		metrics.GatewayFetches.WithLabelValues(string(req.CollectionType), outcome).Inc()
		return nil, apperr.Backend("fetch posts", err)
	}
	metrics.GatewayFetches.WithLabelValues(string(req.CollectionType), "success").Inc()

	index := make(map[int64]int, len(req.PostIDs))
	for i, id := range req.PostIDs {
		if _, seen := index[id]; !seen {
			index[id] = i
		}
	}

	docs := make([]models.ContentDocument, len(page.Docs))
	for i, d := range page.Docs {
		d.CollectionType = req.CollectionType
		d.OriginalIndex = -1
		if pos, ok := index[d.ID]; ok {
			d.OriginalIndex = pos
		}
		docs[i] = d
	}

	out := *page
	out.Docs = docs
	out.Page = req.Page
	return &out, nil
}

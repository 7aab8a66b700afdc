// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package feed

import (
	"context"
	"errors"
	"slices"
	"sync"

	"tastetrail/internal/models"
)

// ErrBusy is returned by Load and LoadMore while a load is in flight.
var ErrBusy = errors.New("feed is loading")

// State is the load state of a Feed.
type State int

const (
	StateIdle State = iota
	StateLoading
)

func (s State) String() string {
	if s == StateLoading {
		return "loading"
	}
	return "idle"
}

// Feed accumulates merged pages over a fixed reference list. The first page
// replaces the accumulated documents; later pages append. A Feed allows one
// load at a time.
//
// The HTTP API pages statelessly through Merger; Feed is for Go clients that
// embed the package and hold a feed open across "load more" requests.
type Feed struct {
	merger *Merger
	refs   []models.ContentReference
	limit  int

	mu      sync.Mutex
	state   State
	docs    []models.ContentDocument
	last    *models.Page[models.ContentDocument]
	lastErr error
}

// NewFeed creates an idle feed over refs.
func NewFeed(merger *Merger, refs []models.ContentReference, limit int) *Feed {
	return &Feed{
		merger: merger,
		refs:   slices.Clone(refs),
		limit:  limit,
	}
}

// Load fetches the first page, replacing any accumulated documents.
func (f *Feed) Load(ctx context.Context) error {
	return f.load(ctx, 1)
}

// LoadMore fetches the next page and appends it. It does nothing when the
// last loaded page reported no next page.
func (f *Feed) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	if f.state == StateLoading {
		f.mu.Unlock()
		return ErrBusy
	}
	if f.last == nil {
		f.mu.Unlock()
		return f.load(ctx, 1)
	}
	if !f.last.HasNextPage || f.last.NextPage == nil {
		f.mu.Unlock()
		return nil
	}
	next := *f.last.NextPage
	f.mu.Unlock()
	return f.load(ctx, next)
}

func (f *Feed) load(ctx context.Context, page int) error {
	f.mu.Lock()
	if f.state == StateLoading {
		f.mu.Unlock()
		return ErrBusy
	}
	f.state = StateLoading
	f.mu.Unlock()

	result, err := f.merger.Page(ctx, f.refs, page, f.limit)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateIdle
	f.lastErr = err
	if err != nil {
		return err
	}
	if page == 1 {
		f.docs = slices.Clone(result.Docs)
	} else {
		f.docs = append(f.docs, result.Docs...)
	}
	f.last = result
	return nil
}

// State returns the current load state.
func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// LastError returns the error of the most recent load, or nil if it succeeded.
func (f *Feed) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Docs returns a copy of the accumulated documents.
func (f *Feed) Docs() []models.ContentDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.docs)
}

// HasMore reports whether the last loaded page had a next page.
func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last != nil && f.last.HasNextPage
}

// Total returns the combined total of the last loaded page.
func (f *Feed) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == nil {
		return 0
	}
	return f.last.TotalDocs
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package search

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period used for search-as-you-type.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces a burst of submitted terms into one trailing call
// made once no new term has arrived for the quiet period. Every submission
// gets a generation number; a call whose generation has been superseded by
// the time it completes is cancelled and its result dropped, so only the
// latest term is ever delivered.
//
// The HTTP handlers answer each query as it arrives; Debouncer is for Go
// clients that embed the package and drive search-as-you-type themselves.
type Debouncer[T any] struct {
	wait    time.Duration
	run     func(ctx context.Context, term string) (T, error)
	deliver func(gen uint64, term string, res T, err error)

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

// NewDebouncer creates a Debouncer. deliver is called with the debouncer's
// lock held and must not call back into it.
func NewDebouncer[T any](wait time.Duration, run func(ctx context.Context, term string) (T, error), deliver func(gen uint64, term string, res T, err error)) *Debouncer[T] {
	if wait <= 0 {
		wait = DefaultDebounce
	}
	return &Debouncer[T]{wait: wait, run: run, deliver: deliver}
}

// Submit schedules term, superseding anything submitted before. It returns
// the generation assigned to term, or 0 after Close.
func (d *Debouncer[T]) Submit(term string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0
	}

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen, term) })
	return gen
}

// Generation returns the latest generation handed out by Submit.
func (d *Debouncer[T]) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

func (d *Debouncer[T]) fire(gen uint64, term string) {
	d.mu.Lock()
	if d.closed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.mu.Unlock()

	res, err := d.run(ctx, term)
	cancel()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || gen != d.gen {
		return
	}
	d.cancel = nil
	d.deliver(gen, term, res, err)
}

// Close stops the pending timer and cancels any call in flight. Nothing is
// delivered after Close returns.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

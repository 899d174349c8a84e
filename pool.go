// Copyright 2026 The Vibe Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vibe

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// PoolConfig configures a resource Pool.
type PoolConfig[T any] struct {
	// New creates a resource. Required.
	New func(ctx context.Context) (T, error)

	// Destroy disposes of a resource. Optional.
	Destroy func(T)

	// Validate checks an idle resource before handing it out. Resources
	// failing validation are destroyed and replaced. Optional.
	Validate func(T) bool

	// Min is the idle floor the reaper maintains. Max is the hard ceiling
	// on resources in existence; Max must be positive and >= Min.
	Min int
	Max int

	// AcquireTimeout bounds how long Acquire waits for a free resource
	// when none is configured on the caller's context. Zero means wait
	// indefinitely (until the context is done).
	AcquireTimeout time.Duration

	// IdleTimeout is how long a resource may sit idle before the reaper
	// destroys it. Zero disables reaping.
	IdleTimeout time.Duration

	// Logger receives reaper and replenishment failures. Defaults to the
	// no-op logger.
	Logger *slog.Logger
}

// PoolStats is a point-in-time snapshot of pool state. Available plus
// InUse never exceeds the configured Max.
type PoolStats struct {
	Available int    // idle resources ready to hand out
	InUse     int    // resources currently held by callers
	Waiting   int    // callers blocked in Acquire
	Created   uint64 // resources built over the pool's lifetime
	Destroyed uint64 // resources disposed over the pool's lifetime
	Timeouts  uint64 // acquires that gave up waiting
}

// Pool is a bounded pool of reusable resources. At most Max resources
// exist at once; when all are in use, Acquire blocks in FIFO order until
// one is released or the wait times out. A released resource is handed
// directly to the oldest waiter, bypassing the idle list. A background
// reaper destroys resources idle longer than IdleTimeout while keeping
// Min available.
type Pool[T any] struct {
	cfg PoolConfig[T]

	mu      sync.Mutex
	idle    []idleResource[T] // LIFO: most recently released last
	waiters []chan T          // FIFO: oldest first
	inUse   int
	closed  bool

	created   uint64
	destroyed uint64
	timeouts  uint64

	stopReaper chan struct{}
	reaperDone chan struct{}
}

type idleResource[T any] struct {
	value    T
	idleFrom time.Time
}

// NewPool validates cfg, pre-creates Min resources, and starts the idle
// reaper when IdleTimeout is set.
func NewPool[T any](cfg PoolConfig[T]) (*Pool[T], error) {
	if cfg.New == nil || cfg.Max <= 0 || cfg.Min < 0 || cfg.Min > cfg.Max {
		return nil, ErrPoolConfigInvalid
	}
	if cfg.Logger == nil {
		cfg.Logger = noopLogger
	}

	p := &Pool[T]{
		cfg:        cfg,
		idle:       make([]idleResource[T], 0, cfg.Max),
		stopReaper: make(chan struct{}),
		reaperDone: make(chan struct{}),
	}

	for i := 0; i < cfg.Min; i++ {
		v, err := cfg.New(context.Background())
		if err != nil {
			p.destroyIdle()
			return nil, err
		}
		p.created++
		p.idle = append(p.idle, idleResource[T]{value: v, idleFrom: time.Now()})
	}

	if cfg.IdleTimeout > 0 {
		go p.reap()
	} else {
		close(p.reaperDone)
	}
	return p, nil
}

// Acquire returns a resource, creating one if the pool is under Max, or
// blocking until a holder releases one. The wait is bounded by ctx and by
// AcquireTimeout; expiry returns ErrAcquireTimeout. Returns ErrPoolClosed
// once Close has been called.
func (p *Pool[T]) Acquire(ctx context.Context) (T, error) {
	var zero T

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return zero, ErrPoolClosed
	}

	// Drain the idle list, validating as we go.
	for len(p.idle) > 0 {
		last := len(p.idle) - 1
		res := p.idle[last]
		p.idle = p.idle[:last]
		if p.cfg.Validate != nil && !p.cfg.Validate(res.value) {
			p.destroyed++
			p.mu.Unlock()
			p.destroyResource(res.value)
			p.mu.Lock()
			if p.closed {
				p.mu.Unlock()
				return zero, ErrPoolClosed
			}
			continue
		}
		p.inUse++
		p.mu.Unlock()
		return res.value, nil
	}

	// Nothing idle; build a new resource if we are under the ceiling.
	// The slot is reserved before unlocking so concurrent acquirers
	// cannot overshoot Max.
	if p.inUse < p.cfg.Max {
		p.inUse++
		p.mu.Unlock()
		v, err := p.cfg.New(ctx)
		if err != nil {
			p.mu.Lock()
			p.inUse--
			p.mu.Unlock()
			return zero, err
		}
		p.mu.Lock()
		p.created++
		p.mu.Unlock()
		return v, nil
	}

	// At capacity: join the waiter queue.
	w := make(chan T, 1)
	p.waiters = append(p.waiters, w)
	p.mu.Unlock()

	if p.cfg.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.AcquireTimeout)
		defer cancel()
	}

	select {
	case v, ok := <-w:
		if !ok {
			return zero, ErrPoolClosed
		}
		return v, nil
	case <-ctx.Done():
		p.abandonWaiter(w)
		if ctx.Err() == context.DeadlineExceeded {
			p.mu.Lock()
			p.timeouts++
			p.mu.Unlock()
			return zero, ErrAcquireTimeout
		}
		return zero, ctx.Err()
	}
}

// abandonWaiter removes w from the queue. If a release already handed w a
// resource, that resource is put back into circulation.
func (p *Pool[T]) abandonWaiter(w chan T) {
	p.mu.Lock()
	for i, cand := range p.waiters {
		if cand == w {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			p.mu.Unlock()
			return
		}
	}
	p.mu.Unlock()

	// Not in the queue: a releaser already picked us. Reclaim the
	// delivered resource so it is not leaked.
	select {
	case v, ok := <-w:
		if ok {
			p.mu.Lock()
			p.inUse++ // Release expects it to be accounted as held
			p.mu.Unlock()
			p.Release(v)
		}
	default:
	}
}

// Release returns a held resource to the pool. The oldest waiter, if any,
// receives it directly; otherwise it joins the idle list. Releasing into
// a closed pool destroys the resource.
func (p *Pool[T]) Release(v T) {
	p.mu.Lock()
	if p.closed {
		p.destroyed++
		p.mu.Unlock()
		p.destroyResource(v)
		return
	}
	p.inUse--

	if len(p.waiters) > 0 {
		w := p.waiters[0]
		p.waiters = p.waiters[1:]
		p.inUse++
		// The channel is buffered, so the send cannot block. Sending
		// before unlocking guarantees an abandoning waiter that no
		// longer finds itself queued will find the value to reclaim.
		w <- v
		p.mu.Unlock()
		return
	}

	p.idle = append(p.idle, idleResource[T]{value: v, idleFrom: time.Now()})
	p.mu.Unlock()
}

// Use acquires a resource, runs fn with it, and releases it even when fn
// panics.
func (p *Pool[T]) Use(ctx context.Context, fn func(T) error) error {
	v, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(v)
	return fn(v)
}

// Stats returns a snapshot of pool counters.
func (p *Pool[T]) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Available: len(p.idle),
		InUse:     p.inUse,
		Waiting:   len(p.waiters),
		Created:   p.created,
		Destroyed: p.destroyed,
		Timeouts:  p.timeouts,
	}
}

// Close shuts the pool down. Blocked acquirers fail with ErrPoolClosed,
// idle resources are destroyed, and the reaper stops. Resources still
// held by callers are destroyed as they are released. Close is
// idempotent.
func (p *Pool[T]) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	waiters := p.waiters
	p.waiters = nil
	p.mu.Unlock()

	close(p.stopReaper)
	if p.cfg.IdleTimeout > 0 {
		<-p.reaperDone
	}

	for _, w := range waiters {
		close(w)
	}

	p.mu.Lock()
	p.destroyIdle()
	p.mu.Unlock()
}

// destroyIdle disposes of every idle resource. Caller holds p.mu.
func (p *Pool[T]) destroyIdle() {
	idle := p.idle
	p.idle = nil
	p.destroyed += uint64(len(idle))
	for _, res := range idle {
		p.destroyResource(res.value)
	}
}

func (p *Pool[T]) destroyResource(v T) {
	if p.cfg.Destroy != nil {
		p.cfg.Destroy(v)
	}
}

// reap periodically destroys resources idle beyond IdleTimeout, keeping
// at least Min available, and rebuilds the idle floor when the pool has
// drained below it.
func (p *Pool[T]) reap() {
	defer close(p.reaperDone)

	ticker := time.NewTicker(p.cfg.IdleTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopReaper:
			return
		case now := <-ticker.C:
			p.reapOnce(now)
		}
	}
}

func (p *Pool[T]) reapOnce(now time.Time) {
	var stale []T

	p.mu.Lock()
	// Oldest entries sit at the front of the LIFO idle list.
	for len(p.idle) > p.cfg.Min && now.Sub(p.idle[0].idleFrom) > p.cfg.IdleTimeout {
		stale = append(stale, p.idle[0].value)
		p.idle = p.idle[1:]
		p.destroyed++
	}
	deficit := p.cfg.Min - (len(p.idle) + p.inUse)
	p.mu.Unlock()

	for _, v := range stale {
		p.destroyResource(v)
	}

	for i := 0; i < deficit; i++ {
		v, err := p.cfg.New(context.Background())
		if err != nil {
			p.cfg.Logger.Warn("pool replenish failed", "error", err)
			return
		}
		p.mu.Lock()
		if p.closed {
			p.destroyed++
			p.mu.Unlock()
			p.destroyResource(v)
			return
		}
		p.created++
		p.idle = append(p.idle, idleResource[T]{value: v, idleFrom: time.Now()})
		p.mu.Unlock()
	}
}

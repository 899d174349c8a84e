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
	"fmt"
	"io"
	"log/slog"
	"time"
)

// noopLogger is a singleton no-op logger used when no logger is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the singleton no-op logger.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// Middleware is a pre-handler pipeline stage. It receives the request
// context and may inspect or mutate request/response state, or veto
// further processing by finalizing the response or calling Context.Abort.
// Each middleware runs to completion before the next starts.
type Middleware func(*Context)

// Option configures a Router.
type Option func(*Router)

// Router is the top-level dispatch engine: the owned server configuration
// aggregate (route table, middleware, decorators, body parser, logging)
// passed explicitly through the pipeline — no ambient global state.
//
// Registration (routes, middleware, decorators) must complete before the
// listener accepts connections; the router is then safe for concurrent use.
type Router struct {
	table      *routeTable
	routes     []*Route
	middleware []Middleware

	appDecorators  decoratorSet
	reqDecorators  decoratorSet
	respDecorators decoratorSet

	bodyParser BodyParser
	logger     *slog.Logger
	noRoute    Middleware

	metrics *serverMetrics

	enableH2C      bool
	serverTimeouts *serverTimeouts
	trieThreshold  int
}

// serverTimeouts holds HTTP server timeout configuration.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

func defaultServerTimeouts() *serverTimeouts {
	return &serverTimeouts{
		readHeader: 5 * time.Second,
		read:       15 * time.Second,
		write:      30 * time.Second,
		idle:       60 * time.Second,
	}
}

// New creates a router with optional configuration. Configuration is
// validated immediately; see MustNew for a panicking variant.
func New(opts ...Option) (*Router, error) {
	r := &Router{
		logger:        noopLogger,
		trieThreshold: defaultTrieThreshold,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("router configuration: %w", err)
	}

	r.table = newRouteTable(r.trieThreshold)
	if r.bodyParser == nil {
		r.bodyParser = &defaultBodyParser{maxBytes: defaultMaxBodyBytes}
	}
	return r, nil
}

// MustNew creates a router and panics on invalid configuration.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("vibe.MustNew: %v", err))
	}
	return r
}

func (r *Router) validate() error {
	if r.trieThreshold <= 0 {
		return fmt.Errorf("%w: got %d", ErrTrieThresholdInvalid, r.trieThreshold)
	}
	if t := r.serverTimeouts; t != nil {
		if t.readHeader <= 0 || t.read <= 0 || t.write <= 0 || t.idle <= 0 {
			return ErrServerTimeoutInvalid
		}
	}
	return nil
}

// Use appends process-wide middleware, run in registration order for every
// request before route matching.
func (r *Router) Use(middleware ...Middleware) {
	r.middleware = append(r.middleware, middleware...)
}

// NoRoute sets a custom handler for requests that match no route. Passing
// nil restores the default 404 response.
func (r *Router) NoRoute(handler Middleware) {
	r.noRoute = handler
}

// Logger returns the router's configured logger.
func (r *Router) Logger() *slog.Logger {
	return r.logger
}

// WithLogger sets the structured logger used by the pipeline for handler
// faults and by Context.Logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTrieThreshold sets the route count at which dynamic matching switches
// from the linear scan to the radix trie. Default: 16. This is purely a
// performance policy; both matchers agree on every input.
func WithTrieThreshold(n int) Option {
	return func(r *Router) {
		r.trieThreshold = n
	}
}

// WithBodyParser replaces the default body parser collaborator.
func WithBodyParser(p BodyParser) Option {
	return func(r *Router) {
		r.bodyParser = p
	}
}

// WithH2C enables HTTP/2 cleartext support in Serve. Use only in
// development or behind a trusted load balancer.
func WithH2C(enable bool) Option {
	return func(r *Router) {
		r.enableH2C = enable
	}
}

// WithServerTimeouts configures the HTTP server timeouts used by Serve and
// ServeTLS. Defaults: 5s read-header, 15s read, 30s write, 60s idle.
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(r *Router) {
		r.serverTimeouts = &serverTimeouts{
			readHeader: readHeader,
			read:       read,
			write:      write,
			idle:       idle,
		}
	}
}

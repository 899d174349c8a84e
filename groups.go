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
	"net/http"
	"strings"
)

// Group is a router view bound to an accumulated path prefix and shared
// middleware. Nested groups concatenate prefixes; group middleware becomes
// route-scope middleware on every route registered through the group,
// ordered before the route's own middleware.
//
// Example:
//
//	api := r.Group("/api/v1", auth)
//	users := api.Group("/users")
//	users.GET("/:id", getUser) // GET /api/v1/users/:id
type Group struct {
	router     *Router
	prefix     string
	middleware []Middleware
}

// Group creates a route group on the router with the given prefix and
// optional middleware.
func (r *Router) Group(prefix string, middleware ...Middleware) *Group {
	return &Group{
		router:     r,
		prefix:     prefix,
		middleware: middleware,
	}
}

// Group creates a nested group whose prefix is the parent's prefix plus
// the provided one. Parent middleware is inherited.
func (g *Group) Group(prefix string, middleware ...Middleware) *Group {
	all := make([]Middleware, 0, len(g.middleware)+len(middleware))
	all = append(all, g.middleware...)
	all = append(all, middleware...)

	return &Group{
		router:     g.router,
		prefix:     joinPrefix(g.prefix, prefix),
		middleware: all,
	}
}

// Use appends middleware for all routes subsequently registered through
// this group.
func (g *Group) Use(middleware ...Middleware) {
	g.middleware = append(g.middleware, middleware...)
}

// Handle registers a route under the group's prefix.
func (g *Group) Handle(method, path string, handler any) *Route {
	rt := g.router.Handle(method, joinPrefix(g.prefix, path), handler)
	if len(g.middleware) > 0 {
		// Group middleware precedes any middleware added via Route.Use.
		combined := make([]Middleware, 0, len(g.middleware)+len(rt.middleware))
		combined = append(combined, g.middleware...)
		combined = append(combined, rt.middleware...)
		rt.middleware = combined
	}
	return rt
}

// GET registers a GET route under the group's prefix.
func (g *Group) GET(path string, handler any) *Route {
	return g.Handle(http.MethodGet, path, handler)
}

// POST registers a POST route under the group's prefix.
func (g *Group) POST(path string, handler any) *Route {
	return g.Handle(http.MethodPost, path, handler)
}

// PUT registers a PUT route under the group's prefix.
func (g *Group) PUT(path string, handler any) *Route {
	return g.Handle(http.MethodPut, path, handler)
}

// PATCH registers a PATCH route under the group's prefix.
func (g *Group) PATCH(path string, handler any) *Route {
	return g.Handle(http.MethodPatch, path, handler)
}

// DELETE registers a DELETE route under the group's prefix.
func (g *Group) DELETE(path string, handler any) *Route {
	return g.Handle(http.MethodDelete, path, handler)
}

// HEAD registers a HEAD route under the group's prefix.
func (g *Group) HEAD(path string, handler any) *Route {
	return g.Handle(http.MethodHead, path, handler)
}

// OPTIONS registers an OPTIONS route under the group's prefix.
func (g *Group) OPTIONS(path string, handler any) *Route {
	return g.Handle(http.MethodOptions, path, handler)
}

// Plugin is an encapsulated registration module. It receives a scoped
// router view and registers routes, middleware, and nested plugins against
// it; everything it registers inherits the scope's accumulated prefix.
type Plugin func(g *Group) error

// registerCfg holds options for Register.
type registerCfg struct {
	prefix     string
	middleware []Middleware
}

// RegisterOption configures a plugin registration.
type RegisterOption func(*registerCfg)

// WithPrefix mounts the plugin's registrations under an additional path
// prefix.
func WithPrefix(prefix string) RegisterOption {
	return func(cfg *registerCfg) {
		cfg.prefix = prefix
	}
}

// WithMiddleware adds middleware applied to every route the plugin
// registers.
func WithMiddleware(m ...Middleware) RegisterOption {
	return func(cfg *registerCfg) {
		cfg.middleware = append(cfg.middleware, m...)
	}
}

// Register runs an encapsulated registration module against a scoped view
// of the router. Must be called during the configuration phase.
func (r *Router) Register(plugin Plugin, opts ...RegisterOption) error {
	return r.Group("").Register(plugin, opts...)
}

// Register runs a plugin against a nested scope of this group; prefixes
// concatenate.
func (g *Group) Register(plugin Plugin, opts ...RegisterOption) error {
	cfg := registerCfg{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return plugin(g.Group(cfg.prefix, cfg.middleware...))
}

// joinPrefix concatenates two path fragments, collapsing the seam slash.
func joinPrefix(prefix, path string) string {
	if prefix == "" {
		return path
	}
	if path == "" {
		return prefix
	}
	if strings.HasSuffix(prefix, "/") && strings.HasPrefix(path, "/") {
		return prefix + path[1:]
	}
	if !strings.HasSuffix(prefix, "/") && !strings.HasPrefix(path, "/") {
		return prefix + "/" + path
	}
	return prefix + path
}

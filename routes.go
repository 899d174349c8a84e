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
	"net/http"
)

// Route is one registered (method, path pattern) binding. Routes are
// immutable once the router starts serving; the builder methods (Use,
// Media) are for the configuration phase only.
type Route struct {
	Method string
	Path   string

	handler    any
	invoke     Middleware
	middleware []Middleware
	media      *MediaConfig
	pattern    pattern
}

// Use appends route-scope middleware, run after global middleware and
// before the handler. Returns the route for chaining.
func (rt *Route) Use(middleware ...Middleware) *Route {
	rt.middleware = append(rt.middleware, middleware...)
	return rt
}

// Media sets the route's body-handling configuration. Its presence forces
// body parsing even for methods that don't conventionally carry a body.
func (rt *Route) Media(cfg MediaConfig) *Route {
	rt.media = &cfg
	return rt
}

// wantsBody reports whether the body-parse stage runs for this route.
func (rt *Route) wantsBody() bool {
	if rt.media != nil {
		return true
	}
	switch rt.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// RouteInfo is an introspection snapshot of a registered route.
type RouteInfo struct {
	Method string
	Path   string
}

// Handle registers a route for an arbitrary HTTP method. The handler may
// be a function (see newInvoker for supported shapes) or a literal value
// sent verbatim. Malformed templates and unsupported handlers are
// configuration errors and panic at registration time, never at request
// time.
func (r *Router) Handle(method, path string, handler any) *Route {
	p, err := compilePattern(path)
	if err != nil {
		panic(fmt.Sprintf("vibe: %s %s: %v", method, path, err))
	}
	invoke, err := newInvoker(handler)
	if err != nil {
		panic(fmt.Sprintf("vibe: %s %s: %v", method, path, err))
	}

	rt := &Route{
		Method:  method,
		Path:    path,
		handler: handler,
		invoke:  invoke,
		pattern: p,
	}
	r.table.add(rt)
	r.routes = append(r.routes, rt)
	return rt
}

// GET registers a route for GET requests.
func (r *Router) GET(path string, handler any) *Route {
	return r.Handle(http.MethodGet, path, handler)
}

// POST registers a route for POST requests.
func (r *Router) POST(path string, handler any) *Route {
	return r.Handle(http.MethodPost, path, handler)
}

// PUT registers a route for PUT requests.
func (r *Router) PUT(path string, handler any) *Route {
	return r.Handle(http.MethodPut, path, handler)
}

// PATCH registers a route for PATCH requests.
func (r *Router) PATCH(path string, handler any) *Route {
	return r.Handle(http.MethodPatch, path, handler)
}

// DELETE registers a route for DELETE requests.
func (r *Router) DELETE(path string, handler any) *Route {
	return r.Handle(http.MethodDelete, path, handler)
}

// HEAD registers a route for HEAD requests.
func (r *Router) HEAD(path string, handler any) *Route {
	return r.Handle(http.MethodHead, path, handler)
}

// OPTIONS registers a route for OPTIONS requests.
func (r *Router) OPTIONS(path string, handler any) *Route {
	return r.Handle(http.MethodOptions, path, handler)
}

// Routes returns an introspection snapshot of all registered routes in
// registration order.
func (r *Router) Routes() []RouteInfo {
	infos := make([]RouteInfo, len(r.routes))
	for i, rt := range r.routes {
		infos[i] = RouteInfo{Method: rt.Method, Path: rt.Path}
	}
	return infos
}

// RouteExists reports whether a route is registered for method and path.
func (r *Router) RouteExists(method, path string) bool {
	c := acquireContext()
	defer releaseContext(c)
	return r.table.match(method, path, c) != nil
}

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
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// ServeHTTP implements http.Handler. Each request runs the fixed pipeline:
//
//  1. normalize:  path/query split (query parsing stays lazy)
//  2. decorate:   request/response extension values attached
//  3. global middleware, in registration order
//  4. route match via the hybrid matcher; no match is a terminal 404/405
//  5. conditional body parse (body-carrying methods or media config)
//  6. route middleware
//  7. handler invocation with implicit serialization
//  8. error containment: faults below the pipeline boundary are logged and
//     converted to a generic 500 if the response has not started
//
// Any stage that finalizes the response short-circuits the rest. Exactly
// one response is sent per request.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var start time.Time
	if r.metrics != nil {
		start = time.Now()
		r.metrics.inflight.Inc()
	}

	c := acquireContext()
	c.begin(w, req, r)

	r.dispatch(c)
	c.finishCapture()

	if r.metrics != nil {
		routePath := "_not_found"
		if c.route != nil {
			routePath = c.route.Path
		}
		r.metrics.observe(req.Method, routePath, c.Response.StatusCode(), time.Since(start))
		r.metrics.inflight.Dec()
	}

	releaseContext(c)
}

// dispatch runs pipeline stages 2–8 for one request.
func (r *Router) dispatch(c *Context) {
	defer r.contain(c)

	// Stage 2: decoration, before any user code.
	r.applyDecorations(c)

	// Stage 3: global middleware. A finalized response here prevents route
	// matching entirely.
	if !c.runChain(r.middleware) {
		return
	}

	// Stage 4: route match. Absence of a match is a terminal outcome, not
	// an error.
	rt := r.table.match(c.Request.Method, c.Request.URL.Path, c)
	if rt == nil {
		r.handleNotFound(c)
		return
	}
	c.route = rt

	// Stage 5: conditional body parse. The parser signals client errors by
	// finalizing the response itself; its failure is never a crash.
	if rt.wantsBody() {
		cfg := MediaConfig{}
		if rt.media != nil {
			cfg = *rt.media
		}
		if err := r.bodyParser.Parse(c, cfg); err != nil {
			c.Logger().Debug("body parse rejected", "method", rt.Method, "path", rt.Path, "err", err)
			if !c.Response.Written() {
				c.WriteErrorResponse(http.StatusBadRequest, "malformed request body")
			}
			return
		}
	}

	// Stage 6: route middleware.
	if !c.runChain(rt.middleware) {
		return
	}

	// Stage 7: handler invocation and implicit serialization.
	rt.invoke(c)
}

// contain is the pipeline's single error boundary. Panics and recorded
// handler faults are logged and become a generic 500 when the response has
// not started; if headers are already out, nothing more is written.
func (r *Router) contain(c *Context) {
	if rec := recover(); rec != nil {
		c.fault = fmt.Errorf("panic: %v", rec)
	}

	for _, err := range c.errs {
		c.Logger().Warn("request error",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"err", err,
		)
	}

	if c.fault == nil {
		return
	}

	c.Logger().Error("handler fault",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"err", c.fault,
	)
	c.cancelCapture()
	if !c.Response.Written() {
		c.WriteErrorResponse(http.StatusInternalServerError, "internal server error")
	}
}

// handleNotFound emits the terminal response for an unmatched path: a 405
// with an Allow header when the path exists under other methods, the
// custom NoRoute handler when one is set, or the default 404.
func (r *Router) handleNotFound(c *Context) {
	if allowed := r.table.allowedMethods(c.Request.URL.Path, c.Request.Method); len(allowed) > 0 {
		c.MethodNotAllowed(allowed)
		return
	}

	if r.noRoute != nil {
		r.noRoute(c)
		if !c.Response.Written() {
			c.NotFound()
		}
		return
	}
	c.NotFound()
}

// Serve starts an HTTP server on addr with production-safe timeouts,
// enabling h2c when configured.
func (r *Router) Serve(addr string) error {
	h := http.Handler(r)
	if r.enableH2C {
		h = h2c.NewHandler(h, &http2.Server{})
	}

	timeouts := r.serverTimeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
	}
	return srv.ListenAndServe()
}

// ServeTLS starts an HTTPS server on addr. HTTP/2 is negotiated via ALPN.
func (r *Router) ServeTLS(addr, certFile, keyFile string) error {
	timeouts := r.serverTimeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
	}
	return srv.ListenAndServeTLS(certFile, keyFile)
}

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

// Package vibe is an embeddable HTTP request-dispatch engine.
//
// It routes each incoming request to exactly one handler (or a not-found
// fallback) through a fixed pipeline: request decoration, global middleware,
// route matching, optional body parsing, route middleware, handler
// invocation, and implicit response serialization. Errors raised below the
// pipeline boundary are caught once, logged, and converted to a generic
// server error.
//
// Routes are matched by a hybrid matcher: purely literal routes hit an O(1)
// static index, and dynamic routes go through either a per-method radix trie
// or a linear scan depending on table size. All indexes agree on every
// input; the choice is a performance policy, not a correctness one.
//
// Alongside the dispatch core the package provides two reusable primitives
// consumed by the pipeline: a fixed-capacity LRU response cache with TTL and
// ETag fingerprinting (see LRUCache and CacheMiddleware), and a generic
// bounded resource pool with waiting-queue semantics (see Pool).
//
// A minimal server:
//
//	r := vibe.MustNew()
//	r.GET("/users/:id", func(c *vibe.Context) (any, error) {
//	    return map[string]string{"id": c.Param("id")}, nil
//	})
//	r.GET("/", "hi")
//	r.Serve(":8080")
//
// Handlers may be functions of several shapes or plain literal values.
// A non-function value is sent verbatim; a function's non-nil return value
// is serialized automatically (structured values as JSON, primitives as
// text) unless the response has already been written.
//
// Route registration must complete before the listener accepts connections.
// The route table is immutable during serving; the cache and pool are safe
// for concurrent use.
package vibe

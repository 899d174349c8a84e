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
	"reflect"
	"strconv"
)

// isFunc reports whether v's dynamic type is a function.
func isFunc(v any) bool {
	return reflect.ValueOf(v).Kind() == reflect.Func
}

// responderKind tags the outcome of a handler invocation.
type responderKind uint8

const (
	respondEmpty       responderKind = iota // nothing to write
	respondText                             // textual body
	respondBytes                            // raw body
	respondStructured                       // JSON-serialized body
	respondAlreadySent                      // handler finalized the response itself
)

// responder is the tagged result of the handler stage, consumed by a single
// serialization step.
type responder struct {
	kind  responderKind
	text  string
	raw   []byte
	value any
}

// responderFor classifies a handler return value (or a literal route
// binding) into a responder variant. Strings and primitives become text,
// byte slices raw data, and everything else a structured JSON body.
func responderFor(v any) responder {
	switch val := v.(type) {
	case nil:
		return responder{kind: respondEmpty}
	case string:
		return responder{kind: respondText, text: val}
	case []byte:
		return responder{kind: respondBytes, raw: val}
	case bool:
		return responder{kind: respondText, text: strconv.FormatBool(val)}
	case int:
		return responder{kind: respondText, text: strconv.Itoa(val)}
	case int32:
		return responder{kind: respondText, text: strconv.FormatInt(int64(val), 10)}
	case int64:
		return responder{kind: respondText, text: strconv.FormatInt(val, 10)}
	case uint:
		return responder{kind: respondText, text: strconv.FormatUint(uint64(val), 10)}
	case uint64:
		return responder{kind: respondText, text: strconv.FormatUint(val, 10)}
	case float32:
		return responder{kind: respondText, text: strconv.FormatFloat(float64(val), 'g', -1, 32)}
	case float64:
		return responder{kind: respondText, text: strconv.FormatFloat(val, 'g', -1, 64)}
	case fmt.Stringer:
		return responder{kind: respondText, text: val.String()}
	default:
		return responder{kind: respondStructured, value: val}
	}
}

// write performs the single serialization step for a responder. It never
// writes over a finalized response.
func (r responder) write(c *Context) {
	if r.kind == respondEmpty || r.kind == respondAlreadySent || c.Response.Written() {
		return
	}
	switch r.kind {
	case respondText:
		if err := c.String(http.StatusOK, r.text); err != nil {
			c.Error(err)
		}
	case respondBytes:
		if err := c.Data(http.StatusOK, "application/octet-stream", r.raw); err != nil {
			c.Error(err)
		}
	case respondStructured:
		if err := c.JSON(http.StatusOK, r.value); err != nil {
			c.fail(err)
		}
	}
}

// newInvoker adapts a route's bound value into the pipeline's handler
// stage. Supported bindings:
//
//	func(*Context)                  // classic: writes the response itself
//	func(*Context) error            // error surfaces as a handler fault
//	func(*Context) (any, error)     // return value serialized implicitly
//	func(*Context) any              // return value serialized implicitly
//	Middleware                      // same as func(*Context)
//	any non-function value          // sent verbatim, no invocation
//
// Unsupported function signatures are a configuration error surfaced at
// registration.
func newInvoker(handler any) (Middleware, error) {
	switch h := handler.(type) {
	case nil:
		return nil, ErrNilHandler

	case Middleware:
		return Middleware(h), nil

	case func(*Context):
		return h, nil

	case func(*Context) error:
		return func(c *Context) {
			if err := h(c); err != nil {
				c.fail(err)
			}
		}, nil

	case func(*Context) any:
		return func(c *Context) {
			responderFor(h(c)).write(c)
		}, nil

	case func(*Context) (any, error):
		return func(c *Context) {
			v, err := h(c)
			if err != nil {
				c.fail(err)
				return
			}
			responderFor(v).write(c)
		}, nil

	case http.HandlerFunc:
		return func(c *Context) {
			h(c.Response, c.Request)
		}, nil

	case http.Handler:
		return func(c *Context) {
			h.ServeHTTP(c.Response, c.Request)
		}, nil

	default:
		if isFunc(handler) {
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedHandler, handler)
		}
		// Literal binding: the registered value is sent verbatim without
		// invoking anything.
		lit := responderFor(handler)
		return func(c *Context) {
			lit.write(c)
		}, nil
	}
}

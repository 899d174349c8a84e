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
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
)

// maxInlineParams is the number of captured parameters stored in the
// fixed arrays before overflowing to the Params map.
const maxInlineParams = 8

// Context carries one HTTP request through the dispatch pipeline. It
// provides access to the request and wrapped response, captured route
// parameters, request-scope decorations, the parsed body, and response
// rendering helpers.
//
// Context is NOT safe for concurrent use and is pooled: do not retain a
// reference past the handler's return, and copy any needed values before
// starting goroutines.
type Context struct {
	Request  *http.Request
	Response *ResponseWriter

	// Params holds captured parameters beyond the inline arrays. It is nil
	// for the common case of routes with few parameters.
	Params map[string]string

	router *Router
	route  *Route
	logger *slog.Logger

	paramKeys   [maxInlineParams]string
	paramValues [maxInlineParams]string
	paramCount  int32
	extraValues []string // positional overflow before names are applied

	aborted bool
	fault   error
	errs    []error

	query       url.Values
	queryParsed bool

	body    any
	bodyRaw []byte
	hasBody bool

	decorations map[string]any // request-scope extension values
	respExt     map[string]any // response-scope extension values
}

// begin binds the context to a request/response pair. The response wrapper
// is owned by the context and reused across requests.
func (c *Context) begin(w http.ResponseWriter, req *http.Request, r *Router) {
	if c.Response == nil {
		c.Response = &ResponseWriter{}
	}
	c.Response.reset(w)
	c.Request = req
	c.router = r
	c.logger = r.logger
}

// reset returns the context to its zero state for pooling.
func (c *Context) reset() {
	c.Request = nil
	if c.Response != nil {
		c.Response.reset(nil)
	}
	c.router = nil
	c.route = nil
	c.logger = nil
	c.aborted = false
	c.fault = nil
	c.errs = nil
	c.query = nil
	c.queryParsed = false
	c.body = nil
	c.bodyRaw = nil
	c.hasBody = false

	c.resetParams()

	if c.decorations != nil {
		clear(c.decorations)
	}
	if c.respExt != nil {
		clear(c.respExt)
	}
}

// resetParams clears captured parameter state only.
func (c *Context) resetParams() {
	n := min(c.paramCount, maxInlineParams)
	for i := int32(0); i < n; i++ {
		c.paramKeys[i] = ""
		c.paramValues[i] = ""
	}
	c.paramCount = 0
	c.extraValues = c.extraValues[:0]
	if c.Params != nil {
		clear(c.Params)
	}
}

// paramMark returns the current capture depth; truncateParams rewinds to it.
// Used by the matchers to undo captures from abandoned trie branches.
func (c *Context) paramMark() int32 {
	return c.paramCount
}

func (c *Context) truncateParams(mark int32) {
	for i := mark; i < c.paramCount && i < maxInlineParams; i++ {
		c.paramKeys[i] = ""
		c.paramValues[i] = ""
	}
	if over := c.paramCount - maxInlineParams; over > 0 {
		keep := max(mark-maxInlineParams, 0)
		c.extraValues = c.extraValues[:keep]
	}
	c.paramCount = mark
}

// pushParamValue records a captured value positionally. Names are assigned
// afterwards from the matched route's pattern.
func (c *Context) pushParamValue(v string) {
	if c.paramCount < maxInlineParams {
		c.paramValues[c.paramCount] = v
	} else {
		c.extraValues = append(c.extraValues, v)
	}
	c.paramCount++
}

// applyParamNames assigns capture names from the matched pattern, spilling
// anything past the inline arrays into the Params map.
func (c *Context) applyParamNames(names []string, mark int32) {
	for i := mark; i < c.paramCount; i++ {
		name := names[i-mark]
		if i < maxInlineParams {
			c.paramKeys[i] = name
			continue
		}
		if c.Params == nil {
			c.Params = make(map[string]string, 4)
		}
		c.Params[name] = c.extraValues[i-maxInlineParams]
	}
}

// Param returns the captured value of a route parameter, or "" if absent.
// Wildcard remainders are available under the name "wildcard".
func (c *Context) Param(key string) string {
	n := min(c.paramCount, maxInlineParams)
	for i := int32(0); i < n; i++ {
		if c.paramKeys[i] == key {
			return c.paramValues[i]
		}
	}
	return c.Params[key]
}

// ParamCount returns the number of captured parameters.
func (c *Context) ParamCount() int {
	return int(c.paramCount)
}

// Route returns the matched route, or nil before matching (global
// middleware) and on not-found dispatches.
func (c *Context) Route() *Route {
	return c.route
}

// Logger returns the request-scoped logger.
func (c *Context) Logger() *slog.Logger {
	if c.logger == nil {
		return noopLogger
	}
	return c.logger
}

// Abort stops the current chain: no later middleware or handler runs.
// Already-executed stages are unaffected.
func (c *Context) Abort() {
	c.aborted = true
}

// IsAborted reports whether the chain has been aborted.
func (c *Context) IsAborted() bool {
	return c.aborted
}

// Error records a non-fatal error against the request. Collected errors are
// available via Errors and logged by the pipeline on completion.
func (c *Context) Error(err error) {
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

// Errors returns the errors collected during this request.
func (c *Context) Errors() []error {
	return c.errs
}

// fail records a handler fault. The pipeline converts it to a generic
// server error if the response has not started.
func (c *Context) fail(err error) {
	if c.fault == nil {
		c.fault = err
	}
	c.aborted = true
}

// Query returns the first query value for key. Parsing is deferred until
// the first access and cached for the request.
func (c *Context) Query(key string) string {
	return c.queryValues().Get(key)
}

// QueryDefault returns the query value for key, or def when absent.
func (c *Context) QueryDefault(key, def string) string {
	vs := c.queryValues()
	if _, ok := vs[key]; !ok {
		return def
	}
	return vs.Get(key)
}

// QueryValues returns the lazily parsed query parameters.
func (c *Context) QueryValues() url.Values {
	return c.queryValues()
}

func (c *Context) queryValues() url.Values {
	if !c.queryParsed {
		c.query = c.Request.URL.Query()
		c.queryParsed = true
	}
	return c.query
}

// Body returns the decoded request body populated by the body parser:
// `any` for JSON documents, url.Values for form submissions, []byte for
// everything else. It is nil when no body was parsed.
func (c *Context) Body() any {
	return c.body
}

// HasBody reports whether the body parser consumed a request body.
func (c *Context) HasBody() bool {
	return c.hasBody
}

// BodyRaw returns the raw body bytes read by the body parser.
func (c *Context) BodyRaw() []byte {
	return c.bodyRaw
}

// BindJSON unmarshals the parsed body bytes into dst.
func (c *Context) BindJSON(dst any) error {
	if len(c.bodyRaw) == 0 {
		return fmt.Errorf("%w: empty body", ErrMalformedBody)
	}
	if err := json.Unmarshal(c.bodyRaw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return nil
}

// Set stores a request-scoped value, sharing the namespace with request
// decorators resolved at dispatch time.
func (c *Context) Set(key string, value any) {
	if c.decorations == nil {
		c.decorations = make(map[string]any, 8)
	}
	c.decorations[key] = value
}

// Get returns a request-scoped value (decorator or Set value).
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.decorations[key]
	return v, ok
}

// MustGet returns a request-scoped value and panics when it is missing.
func (c *Context) MustGet(key string) any {
	v, ok := c.decorations[key]
	if !ok {
		panic(fmt.Sprintf("vibe: no request decoration %q", key))
	}
	return v
}

// ResponseDecoration returns a response-scoped extension value.
func (c *Context) ResponseDecoration(key string) (any, bool) {
	v, ok := c.respExt[key]
	return v, ok
}

// Status writes the response status line with no body.
func (c *Context) Status(code int) {
	c.Response.WriteHeader(code)
}

// Header sets a response header. A value of "" removes the header.
func (c *Context) Header(key, value string) {
	if value == "" {
		c.Response.Header().Del(key)
		return
	}
	c.Response.Header().Set(key, value)
}

// JSON sends a JSON response with the given status code. The value is
// encoded to a buffer first so encoding failures never corrupt a partially
// written response.
func (c *Context) JSON(code int, obj any) error {
	var buf strings.Builder
	buf.Grow(256)
	if err := json.NewEncoder(&buf).Encode(obj); err != nil {
		return fmt.Errorf("json encoding failed for %T: %w", obj, err)
	}

	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Response.WriteHeader(code)
	_, err := c.Response.Write([]byte(buf.String()))
	return err
}

// String sends a plain-text response with the given status code.
func (c *Context) String(code int, value string) error {
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Response.WriteHeader(code)
	_, err := c.Response.Write([]byte(value))
	return err
}

// Stringf formats and sends a plain-text response.
func (c *Context) Stringf(code int, format string, args ...any) error {
	return c.String(code, fmt.Sprintf(format, args...))
}

// Data sends raw bytes with an explicit content type.
func (c *Context) Data(code int, contentType string, data []byte) error {
	if contentType != "" {
		c.Header("Content-Type", contentType)
	}
	c.Response.WriteHeader(code)
	_, err := c.Response.Write(data)
	return err
}

// YAML sends a YAML response with the given status code.
func (c *Context) YAML(code int, obj any) error {
	out, err := yaml.Marshal(obj)
	if err != nil {
		return fmt.Errorf("yaml encoding failed for %T: %w", obj, err)
	}
	return c.Data(code, "application/yaml; charset=utf-8", out)
}

// NoContent sends 204 No Content.
func (c *Context) NoContent() {
	c.Response.WriteHeader(http.StatusNoContent)
}

// Redirect sends an HTTP redirect to location.
func (c *Context) Redirect(code int, location string) {
	http.Redirect(c.Response, c.Request, location, code)
}

// WriteErrorResponse sends a minimal JSON error body with the given status.
func (c *Context) WriteErrorResponse(status int, message string) {
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Response.WriteHeader(status)
	body, _ := json.Marshal(map[string]any{"status": status, "error": message})
	c.Response.Write(body)
}

// NotFound sends the default 404 response.
func (c *Context) NotFound() {
	c.WriteErrorResponse(http.StatusNotFound, "route not found")
}

// MethodNotAllowed sends a 405 with the Allow header set.
func (c *Context) MethodNotAllowed(allowed []string) {
	c.Header("Allow", strings.Join(allowed, ", "))
	c.WriteErrorResponse(http.StatusMethodNotAllowed, "method not allowed")
}

// SetCookie adds a Set-Cookie header to the response.
func (c *Context) SetCookie(cookie *http.Cookie) {
	http.SetCookie(c.Response, cookie)
}

// Cookie returns the named request cookie's value.
func (c *Context) Cookie(name string) (string, error) {
	ck, err := c.Request.Cookie(name)
	if err != nil {
		return "", err
	}
	return ck.Value, nil
}

// span returns the current trace span from the request context.
func (c *Context) span() trace.Span {
	return trace.SpanFromContext(c.Request.Context())
}

// TraceID returns the current trace ID, or "" when not tracing.
func (c *Context) TraceID() string {
	sc := c.span().SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// SpanID returns the current span ID, or "" when not tracing.
func (c *Context) SpanID() string {
	sc := c.span().SpanContext()
	if !sc.HasSpanID() {
		return ""
	}
	return sc.SpanID().String()
}

// SetSpanAttribute attaches an attribute to the current trace span.
func (c *Context) SetSpanAttribute(key string, value any) {
	span := c.span()
	if !span.IsRecording() {
		return
	}
	switch v := value.(type) {
	case string:
		span.SetAttributes(attribute.String(key, v))
	case int:
		span.SetAttributes(attribute.Int(key, v))
	case int64:
		span.SetAttributes(attribute.Int64(key, v))
	case float64:
		span.SetAttributes(attribute.Float64(key, v))
	case bool:
		span.SetAttributes(attribute.Bool(key, v))
	default:
		span.SetAttributes(attribute.String(key, fmt.Sprint(v)))
	}
}

// AddSpanEvent records an event on the current trace span.
func (c *Context) AddSpanEvent(name string, attrs ...attribute.KeyValue) {
	span := c.span()
	if span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

// runChain executes hooks in registration order. Each hook runs to
// completion before the next starts; the chain stops when a hook aborts
// the context or finalizes the response. It reports whether the pipeline
// may continue to the next stage.
func (c *Context) runChain(hooks []Middleware) bool {
	for _, h := range hooks {
		h(c)
		if c.aborted || c.Response.Written() {
			return false
		}
	}
	return true
}

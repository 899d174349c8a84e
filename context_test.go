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
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, method, target string) (*Context, *httptest.ResponseRecorder) {
	t.Helper()
	r := MustNew()
	w := httptest.NewRecorder()
	c := &Context{}
	c.begin(w, httptest.NewRequest(method, target, nil), r)
	return c, w
}

func TestContext_ParamOverflowToMap(t *testing.T) {
	t.Parallel()

	c := &Context{}
	names := make([]string, 0, maxInlineParams+3)
	for i := 0; i < maxInlineParams+3; i++ {
		c.pushParamValue(fmt.Sprintf("v%d", i))
		names = append(names, fmt.Sprintf("k%d", i))
	}
	c.applyParamNames(names, 0)

	assert.Equal(t, maxInlineParams+3, c.ParamCount())
	for i := 0; i < maxInlineParams+3; i++ {
		assert.Equal(t, fmt.Sprintf("v%d", i), c.Param(fmt.Sprintf("k%d", i)))
	}
	assert.Len(t, c.Params, 3, "only the overflow should spill into the map")
}

func TestContext_TruncateParamsRewindsOverflow(t *testing.T) {
	t.Parallel()

	c := &Context{}
	for i := 0; i < maxInlineParams+2; i++ {
		c.pushParamValue("v")
	}
	mark := int32(maxInlineParams) // keep the inline portion only
	c.truncateParams(mark)
	assert.Equal(t, maxInlineParams, c.ParamCount())
	assert.Empty(t, c.extraValues)

	c.truncateParams(0)
	assert.Equal(t, 0, c.ParamCount())
}

func TestContext_QueryLazyParsing(t *testing.T) {
	t.Parallel()

	c, _ := newTestContext(t, http.MethodGet, "/search?q=go&limit=10")

	assert.False(t, c.queryParsed)
	assert.Equal(t, "go", c.Query("q"))
	assert.True(t, c.queryParsed, "first access must parse and cache")
	assert.Equal(t, "10", c.Query("limit"))
	assert.Equal(t, "", c.Query("missing"))
	assert.Equal(t, "25", c.QueryDefault("page", "25"))
	assert.Equal(t, "10", c.QueryDefault("limit", "25"))
}

func TestContext_SetGetMustGet(t *testing.T) {
	t.Parallel()

	c, _ := newTestContext(t, http.MethodGet, "/")
	c.Set("user", "ana")

	v, ok := c.Get("user")
	require.True(t, ok)
	assert.Equal(t, "ana", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, "ana", c.MustGet("user"))
	assert.Panics(t, func() { c.MustGet("missing") })
}

func TestContext_ErrorCollection(t *testing.T) {
	t.Parallel()

	c, _ := newTestContext(t, http.MethodGet, "/")
	first := errors.New("first")
	c.Error(first)
	c.Error(nil) // ignored
	c.Error(errors.New("second"))

	errs := c.Errors()
	require.Len(t, errs, 2)
	assert.Same(t, first, errs[0])
}

func TestContext_AbortStopsChain(t *testing.T) {
	t.Parallel()

	c, _ := newTestContext(t, http.MethodGet, "/")

	var order []string
	ok := c.runChain([]Middleware{
		func(c *Context) { order = append(order, "a") },
		func(c *Context) { order = append(order, "b"); c.Abort() },
		func(c *Context) { order = append(order, "never") },
	})

	assert.False(t, ok)
	assert.True(t, c.IsAborted())
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestContext_ChainStopsOnFinalizedResponse(t *testing.T) {
	t.Parallel()

	c, w := newTestContext(t, http.MethodGet, "/")

	ran := false
	ok := c.runChain([]Middleware{
		func(c *Context) { c.String(http.StatusTeapot, "short-circuit") },
		func(c *Context) { ran = true },
	})

	assert.False(t, ok)
	assert.False(t, ran)
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestContext_JSONRendering(t *testing.T) {
	t.Parallel()

	c, w := newTestContext(t, http.MethodGet, "/")
	require.NoError(t, c.JSON(http.StatusCreated, map[string]string{"id": "42"}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"42"}`, w.Body.String())
}

func TestContext_JSONEncodingFailureWritesNothing(t *testing.T) {
	t.Parallel()

	c, w := newTestContext(t, http.MethodGet, "/")
	err := c.JSON(http.StatusOK, map[string]any{"bad": func() {}})

	require.Error(t, err)
	assert.False(t, c.Response.Written(), "a failed encode must not start the response")
	assert.Empty(t, w.Body.String())
}

func TestContext_YAMLRendering(t *testing.T) {
	t.Parallel()

	c, w := newTestContext(t, http.MethodGet, "/")
	require.NoError(t, c.YAML(http.StatusOK, map[string]string{"name": "vibe"}))

	assert.Equal(t, "application/yaml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "name: vibe")
}

func TestContext_StringAndData(t *testing.T) {
	t.Parallel()

	c, w := newTestContext(t, http.MethodGet, "/")
	require.NoError(t, c.Stringf(http.StatusOK, "hello %s", "world"))
	assert.Equal(t, "hello world", w.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))

	c2, w2 := newTestContext(t, http.MethodGet, "/")
	require.NoError(t, c2.Data(http.StatusOK, "application/pdf", []byte("%PDF")))
	assert.Equal(t, "application/pdf", w2.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF", w2.Body.String())
	assert.Equal(t, int64(4), c2.Response.Size())
}

func TestContext_ResetClearsState(t *testing.T) {
	t.Parallel()

	c, _ := newTestContext(t, http.MethodGet, "/search?q=x")
	c.pushParamValue("v")
	c.applyParamNames([]string{"k"}, 0)
	c.Set("key", "value")
	c.Error(errors.New("boom"))
	c.Abort()
	_ = c.Query("q")

	c.reset()

	assert.Nil(t, c.Request)
	assert.Equal(t, 0, c.ParamCount())
	assert.Equal(t, "", c.Param("k"))
	assert.False(t, c.IsAborted())
	assert.Empty(t, c.Errors())
	assert.False(t, c.queryParsed)
	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestResponseWriter_SuppressesDuplicateWriteHeader(t *testing.T) {
	t.Parallel()

	c, w := newTestContext(t, http.MethodGet, "/")
	c.Response.WriteHeader(http.StatusAccepted)
	c.Response.WriteHeader(http.StatusTeapot) // ignored

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, http.StatusAccepted, c.Response.StatusCode())
	assert.True(t, c.Response.Written())
}

func TestResponseWriter_DefaultsTo200OnWrite(t *testing.T) {
	t.Parallel()

	c, _ := newTestContext(t, http.MethodGet, "/")
	_, err := c.Response.Write([]byte("ok"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, c.Response.StatusCode())
	assert.Equal(t, int64(2), c.Response.Size())
}

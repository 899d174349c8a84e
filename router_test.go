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
	"bytes"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	r, err := New()
	require.NoError(t, err)
	assert.NotNil(t, r.Logger())
	assert.Equal(t, defaultTrieThreshold, r.table.threshold)
}

func TestNew_InvalidConfiguration(t *testing.T) {
	t.Parallel()

	_, err := New(WithTrieThreshold(0))
	assert.ErrorIs(t, err, ErrTrieThresholdInvalid)

	_, err = New(WithServerTimeouts(0, time.Second, time.Second, time.Second))
	assert.ErrorIs(t, err, ErrServerTimeoutInvalid)

	assert.Panics(t, func() { MustNew(WithTrieThreshold(-5)) })
}

func TestWithLogger_UsedForHandlerFaults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := MustNew(WithLogger(logger))
	r.GET("/boom", func(c *Context) { panic("kaboom") })

	perform(r, http.MethodGet, "/boom", "")
	assert.Contains(t, buf.String(), "handler fault")
	assert.Contains(t, buf.String(), "kaboom")
}

func TestWithMetrics_RecordsRequests(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r := MustNew(WithMetrics(reg))
	r.GET("/users/:id", func(c *Context) { c.NoContent() })

	perform(r, http.MethodGet, "/users/1", "")
	perform(r, http.MethodGet, "/users/2", "")
	perform(r, http.MethodGet, "/missing", "")

	matched := r.metrics.requests.WithLabelValues(http.MethodGet, "/users/:id", "204")
	assert.Equal(t, float64(2), testutil.ToFloat64(matched),
		"the route pattern, not the raw path, must label the counter")

	unmatched := r.metrics.requests.WithLabelValues(http.MethodGet, "_not_found", "404")
	assert.Equal(t, float64(1), testutil.ToFloat64(unmatched))

	assert.Equal(t, float64(0), testutil.ToFloat64(r.metrics.inflight))
}

func TestDecorate_ApplicationScope(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.Decorate("version", "1.2.3"))

	v, ok := r.Decoration("version")
	require.True(t, ok)
	assert.Equal(t, "1.2.3", v)

	_, ok = r.Decoration("missing")
	assert.False(t, ok)

	assert.ErrorIs(t, r.Decorate("", "x"), ErrDecoratorNameEmpty)
}

func TestDecorateResponse_VisibleOnContext(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.DecorateResponse("served-by", "vibe-1"))

	var got any
	r.GET("/x", func(c *Context) {
		got, _ = c.ResponseDecoration("served-by")
		c.NoContent()
	})

	perform(r, http.MethodGet, "/x", "")
	assert.Equal(t, "vibe-1", got)
}

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
	"math/rand"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T, threshold int, templates ...string) *routeTable {
	t.Helper()
	table := newRouteTable(threshold)
	for _, template := range templates {
		template := template
		p, err := compilePattern(template)
		require.NoError(t, err)
		table.add(&Route{Method: http.MethodGet, Path: template, pattern: p})
	}
	return table
}

func TestRouteTable_StaticIndexHit(t *testing.T) {
	t.Parallel()

	table := newTable(t, defaultTrieThreshold, "/health", "/users/:id")

	c := &Context{}
	rt := table.match(http.MethodGet, "/health", c)
	require.NotNil(t, rt)
	assert.Equal(t, "/health", rt.Path)
	assert.Equal(t, 0, c.ParamCount())
}

func TestRouteTable_StaticRouteNeverShadowedByDynamic(t *testing.T) {
	t.Parallel()

	// Even past the trie threshold the literal route is found through the
	// hash index before any dynamic lookup runs.
	templates := []string{"/users/me"}
	for i := 0; i < 20; i++ {
		templates = append(templates, fmt.Sprintf("/filler%d/:id", i))
	}
	table := newTable(t, 4, templates...)
	require.GreaterOrEqual(t, table.size(), table.threshold)

	c := &Context{}
	rt := table.match(http.MethodGet, "/users/me", c)
	require.NotNil(t, rt)
	assert.Equal(t, "/users/me", rt.Path)
}

func TestRouteTable_MethodIsolation(t *testing.T) {
	t.Parallel()

	table := newTable(t, defaultTrieThreshold, "/users/:id")

	c := &Context{}
	assert.Nil(t, table.match(http.MethodPost, "/users/42", c))
	assert.NotNil(t, table.match(http.MethodGet, "/users/42", c))
}

func TestRouteTable_AllowedMethods(t *testing.T) {
	t.Parallel()

	table := newRouteTable(defaultTrieThreshold)
	for _, reg := range []struct{ method, path string }{
		{http.MethodGet, "/users/:id"},
		{http.MethodPut, "/users/:id"},
		{http.MethodPost, "/orders"},
	} {
		p, err := compilePattern(reg.path)
		require.NoError(t, err)
		table.add(&Route{Method: reg.method, Path: reg.path, pattern: p})
	}

	allowed := table.allowedMethods("/users/42", http.MethodDelete)
	assert.ElementsMatch(t, []string{http.MethodGet, http.MethodPut}, allowed)

	allowed = table.allowedMethods("/users/42", http.MethodGet)
	assert.ElementsMatch(t, []string{http.MethodPut}, allowed)

	assert.Empty(t, table.allowedMethods("/nothing", http.MethodGet))
}

// matcherOutcome is a comparable summary of one lookup: which route was
// chosen and what it captured.
type matcherOutcome struct {
	path   string
	params string
}

func outcomeOf(table *routeTable, path string) matcherOutcome {
	c := &Context{}
	rt := table.match(http.MethodGet, path, c)
	if rt == nil {
		return matcherOutcome{}
	}
	var sb strings.Builder
	for _, name := range rt.pattern.paramNames {
		name := name
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(c.Param(name))
		sb.WriteByte(';')
	}
	return matcherOutcome{path: rt.Path, params: sb.String()}
}

// TestRouteTable_MatcherAgreement drives the trie and the linear scan with
// identical route sets and random request paths, asserting both strategies
// return the same route and the same captured parameters.
func TestRouteTable_MatcherAgreement(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	literals := []string{"users", "orders", "files", "me", "v1", "items", "x"}

	randomTemplate := func() string {
		depth := 1 + rng.Intn(4)
		var sb strings.Builder
		for i := 0; i < depth; i++ {
			sb.WriteByte('/')
			switch r := rng.Intn(10); {
			case r < 6:
				sb.WriteString(literals[rng.Intn(len(literals))])
			case r < 9:
				fmt.Fprintf(&sb, ":p%d", i)
			default:
				sb.WriteByte('*')
				return sb.String()
			}
		}
		return sb.String()
	}

	randomPath := func() string {
		depth := 1 + rng.Intn(5)
		var sb strings.Builder
		for i := 0; i < depth; i++ {
			sb.WriteByte('/')
			if rng.Intn(10) < 8 {
				sb.WriteString(literals[rng.Intn(len(literals))])
			} else {
				fmt.Fprintf(&sb, "seg%d", rng.Intn(50))
			}
		}
		if rng.Intn(10) == 0 {
			sb.WriteByte('/')
		}
		return sb.String()
	}

	for round := 0; round < 50; round++ {
		templates := make([]string, 0, 12)
		seen := make(map[string]bool)
		for len(templates) < 12 {
			template := randomTemplate()
			if seen[template] {
				continue
			}
			seen[template] = true
			templates = append(templates, template)
		}

		// Same routes, same registration order; only the lookup strategy
		// differs.
		viaTrie := newTable(t, 1, templates...)
		viaLinear := newTable(t, 1000, templates...)

		for i := 0; i < 200; i++ {
			path := randomPath()
			got := outcomeOf(viaTrie, path)
			want := outcomeOf(viaLinear, path)
			require.Equal(t, want, got,
				"matchers disagree on %q with routes %v", path, templates)
		}
	}
}

func TestRouteTable_ThresholdSelectsStrategy(t *testing.T) {
	t.Parallel()

	// Below the threshold the linear scan serves dynamic lookups; the
	// observable contract is simply that matching works on both sides of
	// the boundary.
	small := newTable(t, 10, "/users/:id")
	big := newTable(t, 1, "/users/:id")

	for _, table := range []*routeTable{small, big} {
		c := &Context{}
		rt := table.match(http.MethodGet, "/users/7", c)
		require.NotNil(t, rt)
		assert.Equal(t, "7", c.Param("id"))
	}
}

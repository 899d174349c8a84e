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

import "hash/fnv"

// defaultTrieThreshold is the route count at which matching switches from
// the linear scan to the radix trie. The trie is asymptotically better but
// carries constant-factor overhead that makes the scan faster on small
// tables.
const defaultTrieThreshold = 16

// routeTable holds three redundant indexes over the same route set:
//
//   - static: method+path hash index for purely literal routes, O(1)
//   - trees:  per-method radix tries covering every route, O(path depth)
//   - linear: flat append-ordered list, O(n) scan
//
// The static index is always consulted first; for dynamic lookups the trie
// or the linear scan is chosen by the route-count threshold. All indexes
// produce identical match results and captured parameters for any input.
//
// The table is append-only during the configuration phase and read-only
// while serving; no locking is required for concurrent reads.
type routeTable struct {
	static    map[uint64]*Route
	trees     map[string]*trieNode
	linear    []*Route
	threshold int
}

func newRouteTable(threshold int) *routeTable {
	if threshold <= 0 {
		threshold = defaultTrieThreshold
	}
	return &routeTable{
		static:    make(map[uint64]*Route, 16),
		trees:     make(map[string]*trieNode, 4),
		threshold: threshold,
	}
}

// staticKey hashes method+path with FNV-1a for the static index.
func staticKey(method, path string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(method))
	h.Write([]byte{' '})
	h.Write([]byte(path))
	return h.Sum64()
}

// add inserts rt into all three indexes.
func (t *routeTable) add(rt *Route) {
	if rt.pattern.static {
		t.static[staticKey(rt.Method, rt.Path)] = rt
	}

	tree := t.trees[rt.Method]
	if tree == nil {
		tree = &trieNode{}
		t.trees[rt.Method] = tree
	}
	tree.insert(rt)

	t.linear = append(t.linear, rt)
}

// size returns the number of registered routes.
func (t *routeTable) size() int {
	return len(t.linear)
}

// match finds the route for method+path, filling captured parameters into
// c. It returns nil when nothing matches; absence of a match is a terminal
// not-found outcome, not an error.
func (t *routeTable) match(method, path string, c *Context) *Route {
	// Literal routes never fall through to the dynamic indexes.
	if rt, ok := t.static[staticKey(method, path)]; ok {
		if rt.Method == method && rt.Path == path { // hash collision guard
			return rt
		}
	}

	if len(t.linear) >= t.threshold {
		return t.matchTrie(method, path, c)
	}
	return t.matchLinear(method, path, c)
}

// matchTrie matches against the per-method radix trie.
func (t *routeTable) matchTrie(method, path string, c *Context) *Route {
	tree := t.trees[method]
	if tree == nil {
		return nil
	}

	if path == "/" || path == "" {
		if tree.route != nil {
			return tree.route
		}
		// Fall through: a root wildcard may still absorb the empty remainder.
	}

	start := 0
	if len(path) > 0 && path[0] == '/' {
		start = 1
	}

	mark := c.paramMark()
	rt := tree.search(path, start, c)
	if rt == nil {
		c.truncateParams(mark)
		return nil
	}
	c.applyParamNames(rt.pattern.paramNames, mark)
	return rt
}

// matchLinear scans the flat list. To agree with the trie's depth-first
// static > param > wildcard preference, it keeps the candidate whose
// priority vector is smallest; among identical vectors the last-registered
// route wins, matching the trie's rebind-on-insert behavior.
func (t *routeTable) matchLinear(method, path string, c *Context) *Route {
	var best *Route
	for _, rt := range t.linear {
		if rt.Method != method {
			continue
		}
		if !rt.pattern.match(path, nil) {
			continue
		}
		if best == nil || comparePriority(&rt.pattern, &best.pattern) <= 0 {
			best = rt
		}
	}
	if best == nil {
		return nil
	}

	mark := c.paramMark()
	best.pattern.match(path, c)
	c.applyParamNames(best.pattern.paramNames, mark)
	return best
}

// allowedMethods returns the HTTP methods whose trees match path.
// Used to distinguish 405 from 404 when no route matched under the
// request's own method.
func (t *routeTable) allowedMethods(path string, exclude string) []string {
	var allowed []string
	scratch := &Context{}
	for method := range t.trees {
		if method == exclude {
			continue
		}
		scratch.resetParams()
		if t.match(method, path, scratch) != nil {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

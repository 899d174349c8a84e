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

// trieEdge is a per-segment child in the route trie. Edges are scanned
// linearly during traversal, avoiding map hashing in the hot path.
type trieEdge struct {
	label string
	node  *trieNode
}

// trieNode is one node of a per-method route trie.
//
// Matching priority at every node is static > parametric > wildcard,
// enforced depth-first: a static child is tried first and the matcher
// backtracks to the parametric child (and finally the wildcard) if the
// deeper static branch dead-ends. All parametric branches from a node
// share one edge; captured values are named per matched route, so two
// route families sharing a parametric edge keep their own parameter names.
//
// Thread safety: the trie is written only during the single-threaded
// configuration phase and is immutable while serving, so reads need no
// locking.
type trieNode struct {
	edges    []trieEdge
	param    *trieNode // shared parametric child, nil if none
	wildcard *trieNode // trailing-wildcard child, nil if none
	route    *Route    // route bound at this node, nil if none
}

// findEdge returns the child node for the given literal segment, or nil.
func (n *trieNode) findEdge(segment string) *trieNode {
	for i := range n.edges {
		if n.edges[i].label == segment {
			return n.edges[i].node
		}
	}
	return nil
}

// findOrCreateEdge returns the child for the segment, creating it if needed.
func (n *trieNode) findOrCreateEdge(segment string) *trieNode {
	if child := n.findEdge(segment); child != nil {
		return child
	}
	child := &trieNode{}
	n.edges = append(n.edges, trieEdge{label: segment, node: child})
	return child
}

// insert binds rt at the node reached by walking the compiled pattern.
// Registering the same shape twice rebinds the node; the last registration
// wins, mirroring the linear index's shadowing order.
func (n *trieNode) insert(rt *Route) {
	current := n
	for i := range rt.pattern.segments {
		seg := &rt.pattern.segments[i]
		switch seg.kind {
		case segmentLiteral:
			current = current.findOrCreateEdge(seg.text)
		case segmentParam:
			if current.param == nil {
				current.param = &trieNode{}
			}
			current = current.param
		case segmentWildcard:
			if current.wildcard == nil {
				current.wildcard = &trieNode{}
			}
			current = current.wildcard
		}
	}
	current.route = rt
}

// search matches path[start:] against the subtree rooted at n, pushing
// captured segment values positionally onto c. It backtracks across the
// static/param/wildcard fallbacks, undoing captures from abandoned
// branches, and returns the bound route or nil.
//
// start indexes the first byte after a '/' separator; start > len(path)
// means the path is fully consumed.
func (n *trieNode) search(path string, start int, c *Context) *Route {
	if start > len(path) {
		return n.route
	}

	end := start
	for end < len(path) && path[end] != '/' {
		end++
	}
	segment := path[start:end]

	// Priority 1: exact static edge.
	if child := n.findEdge(segment); child != nil {
		if rt := child.search(path, end+1, c); rt != nil {
			return rt
		}
	}

	// Priority 2: parametric edge. Empty segments never bind a parameter.
	if n.param != nil && segment != "" {
		mark := c.paramMark()
		c.pushParamValue(segment)
		if rt := n.param.search(path, end+1, c); rt != nil {
			return rt
		}
		c.truncateParams(mark)
	}

	// Priority 3: wildcard absorbs the whole remainder, empty included.
	if n.wildcard != nil && n.wildcard.route != nil {
		c.pushParamValue(path[start:])
		return n.wildcard.route
	}

	return nil
}

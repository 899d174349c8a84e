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
	"strings"
)

// WildcardParam is the parameter name under which a wildcard segment
// captures the remainder of the request path.
const WildcardParam = "wildcard"

// segmentKind classifies one segment of a compiled route pattern.
type segmentKind uint8

const (
	segmentLiteral segmentKind = iota // exact text match
	segmentParam                      // captures exactly one path segment
	segmentWildcard                   // captures the full remainder
)

// segment is one descriptor of a compiled pattern. text holds the literal
// text for literal segments and the parameter name for param segments.
type segment struct {
	kind segmentKind
	text string
}

// pattern is a compiled route template: an ordered sequence of segment
// descriptors plus precomputed metadata used by the matchers.
//
// Invariants enforced by compilePattern: at most one wildcard segment and
// it is the final one; param segments capture exactly one path segment.
type pattern struct {
	raw        string
	segments   []segment
	paramNames []string // capture names in order; WildcardParam last if wildcard
	static     bool     // no param or wildcard segments
}

// compilePattern turns a route template into a matchable pattern.
// Templates use '/' separators, ":name" for parametric segments and a
// trailing "*" for a wildcard. Malformed templates are a configuration
// error surfaced at registration time.
func compilePattern(template string) (pattern, error) {
	p := pattern{raw: template, static: true}

	if template == "" {
		return p, ErrEmptyPattern
	}
	if template[0] != '/' {
		return p, fmt.Errorf("%w: %q", ErrPatternNoSlash, template)
	}

	// Root template compiles to zero segments.
	if template == "/" {
		return p, nil
	}

	parts := strings.Split(template[1:], "/")
	p.segments = make([]segment, 0, len(parts))

	for i, part := range parts {
		last := i == len(parts)-1

		switch {
		case part == "*":
			if !last {
				return pattern{}, fmt.Errorf("%w: %q", ErrWildcardNotTrailing, template)
			}
			p.segments = append(p.segments, segment{kind: segmentWildcard})
			p.paramNames = append(p.paramNames, WildcardParam)
			p.static = false

		case strings.HasPrefix(part, ":"):
			name := part[1:]
			if name == "" {
				return pattern{}, fmt.Errorf("%w: %q", ErrEmptyParamName, template)
			}
			p.segments = append(p.segments, segment{kind: segmentParam, text: name})
			p.paramNames = append(p.paramNames, name)
			p.static = false

		default:
			if strings.Contains(part, "*") {
				return pattern{}, fmt.Errorf("%w: %q", ErrWildcardNotTrailing, template)
			}
			p.segments = append(p.segments, segment{kind: segmentLiteral, text: part})
		}
	}

	return p, nil
}

// hasWildcard reports whether the pattern ends in a wildcard segment.
func (p *pattern) hasWildcard() bool {
	n := len(p.segments)
	return n > 0 && p.segments[n-1].kind == segmentWildcard
}

// match walks the request path against the pattern segment by segment.
// Captured values are pushed positionally onto c; the caller assigns names
// from paramNames after a successful match. Passing a nil context performs
// a capture-free shape check.
//
// The walk slices the path manually instead of strings.Split to avoid
// allocating a []string per request.
func (p *pattern) match(path string, c *Context) bool {
	pathLen := len(path)

	// Root pattern matches only the bare path.
	if len(p.segments) == 0 {
		return path == "/" || path == ""
	}

	var mark int32
	if c != nil {
		mark = c.paramMark()
	}

	start := 0
	if pathLen > 0 && path[0] == '/' {
		start = 1
	}

	for i := range p.segments {
		seg := &p.segments[i]

		if seg.kind == segmentWildcard {
			// The remainder (possibly empty) is absorbed whole. A path that
			// stops before the separator does not reach the wildcard.
			if start > pathLen {
				if c != nil {
					c.truncateParams(mark)
				}
				return false
			}
			if c != nil {
				c.pushParamValue(path[start:])
			}
			return true
		}

		if start > pathLen {
			// Path ran out before the pattern did.
			if c != nil {
				c.truncateParams(mark)
			}
			return false
		}

		end := start
		for end < pathLen && path[end] != '/' {
			end++
		}
		value := path[start:end]

		switch seg.kind {
		case segmentLiteral:
			if value != seg.text {
				if c != nil {
					c.truncateParams(mark)
				}
				return false
			}
		case segmentParam:
			if value == "" {
				if c != nil {
					c.truncateParams(mark)
				}
				return false
			}
			if c != nil {
				c.pushParamValue(value)
			}
		}

		start = end + 1
	}

	// Pattern consumed; the path must be consumed too.
	if start <= pathLen {
		if c != nil {
			c.truncateParams(mark)
		}
		return false
	}

	return true
}

// comparePriority orders two patterns by per-segment match priority
// (literal < param < wildcard, compared left to right). It returns a
// negative value if a wins, positive if b wins, and zero for identical
// priority vectors. Used by the linear matcher to agree with the trie's
// static > param > wildcard preference.
func comparePriority(a, b *pattern) int {
	rank := func(k segmentKind) int {
		switch k {
		case segmentLiteral:
			return 0
		case segmentParam:
			return 1
		default:
			return 2
		}
	}

	n := min(len(a.segments), len(b.segments))
	for i := 0; i < n; i++ {
		ra, rb := rank(a.segments[i].kind), rank(b.segments[i].kind)
		if ra != rb {
			return ra - rb
		}
	}

	// Equal up to the shorter pattern. Both matched the same path, so the
	// longer one continues with a wildcard absorbing an empty remainder;
	// the exactly-consumed pattern wins, as the trie prefers a bound node
	// over its wildcard child.
	return len(a.segments) - len(b.segments)
}

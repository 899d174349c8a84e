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

import "fmt"

// DecoratorFactory produces a fresh decoration value per request. Register
// one instead of a static value when the decoration must not be shared
// across requests.
type DecoratorFactory func() any

// decoratorSet is one decorator namespace (application, request, or
// response scope). Registration order is preserved so per-request
// resolution walks decorators deterministically.
type decoratorSet struct {
	names  []string
	values map[string]any
}

// add registers a named value, rejecting duplicates within the namespace.
func (d *decoratorSet) add(name string, value any) error {
	if name == "" {
		return ErrDecoratorNameEmpty
	}
	if d.values == nil {
		d.values = make(map[string]any, 8)
	}
	if _, exists := d.values[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateDecorator, name)
	}
	d.values[name] = value
	d.names = append(d.names, name)
	return nil
}

// resolve materializes the namespace into dst, invoking factories so each
// request gets its own value. Called once per request before any user code.
func (d *decoratorSet) resolve(dst map[string]any) map[string]any {
	if len(d.names) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(d.names))
	}
	for _, name := range d.names {
		v := d.values[name]
		if factory, ok := v.(DecoratorFactory); ok {
			dst[name] = factory()
		} else if factory, ok := v.(func() any); ok {
			dst[name] = factory()
		} else {
			dst[name] = v
		}
	}
	return dst
}

// Decorate registers a named application-scope value, available via
// Router.Decoration for the life of the router. Declaring the same name
// twice is a configuration error.
func (r *Router) Decorate(name string, value any) error {
	return r.appDecorators.add(name, value)
}

// DecorateRequest registers a named request-scope extension value attached
// to every Context before any user code runs. The value may be static or a
// DecoratorFactory (or func() any) invoked per request. The request
// namespace is independent of the application and response namespaces, and
// duplicates are rejected per namespace.
func (r *Router) DecorateRequest(name string, value any) error {
	return r.reqDecorators.add(name, value)
}

// DecorateResponse registers a named response-scope extension value,
// available via Context.ResponseDecoration.
func (r *Router) DecorateResponse(name string, value any) error {
	return r.respDecorators.add(name, value)
}

// Decoration returns an application-scope decoration by name.
func (r *Router) Decoration(name string) (any, bool) {
	v, ok := r.appDecorators.values[name]
	return v, ok
}

// applyDecorations resolves request- and response-scope decorators into the
// context. Runs before global middleware.
func (r *Router) applyDecorations(c *Context) {
	c.decorations = r.reqDecorators.resolve(c.decorations)
	c.respExt = r.respDecorators.resolve(c.respExt)
}

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

import "sync"

// contextPool reuses Context objects across requests.
var contextPool = sync.Pool{
	New: func() any {
		return &Context{}
	},
}

// acquireContext retrieves a Context from the pool. The type assertion is
// guarded so pool corruption surfaces as a clear panic instead of an
// opaque one.
func acquireContext() *Context {
	c, ok := contextPool.Get().(*Context)
	if !ok {
		panic("vibe: context pool corruption: non-Context type in pool")
	}
	return c
}

// releaseContext resets a Context and returns it to the pool.
func releaseContext(c *Context) {
	c.reset()
	contextPool.Put(c)
}

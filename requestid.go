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
	"github.com/gofrs/uuid/v5"
)

// RequestIDKey is the context key under which RequestID stores the
// request identifier.
const RequestIDKey = "request_id"

// RequestIDHeader is the header carrying the request identifier.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request a unique identifier. An identifier
// already present on the incoming request is trusted and propagated;
// otherwise a UUIDv4 is generated. The identifier is echoed on the
// response and stored under RequestIDKey for handlers and loggers.
func RequestID() Middleware {
	return func(c *Context) {
		id := c.Request.Header.Get(RequestIDHeader)
		if id == "" {
			u, err := uuid.NewV4()
			if err != nil {
				return
			}
			id = u.String()
		}
		c.Header(RequestIDHeader, id)
		c.Set(RequestIDKey, id)
	}
}

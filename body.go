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
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// defaultMaxBodyBytes is the payload ceiling applied when a route declares
// no media configuration.
const defaultMaxBodyBytes = 1 << 20 // 1 MiB

// MediaConfig is a route's body-handling configuration.
type MediaConfig struct {
	// MaxBytes caps the request body size; 0 uses the parser default.
	// Oversized payloads abort the read and produce a 413.
	MaxBytes int64

	// AllowedTypes restricts the request content type (media type only,
	// parameters ignored). Empty means any type is accepted.
	AllowedTypes []string
}

// BodyParser is the collaborator invoked by the body-parse stage. Given
// the context and the route's media configuration it populates the body
// structure on the context, or signals a client error by finalizing the
// response itself and returning the cause. Parser failures surface as 4xx
// responses, never as pipeline crashes.
type BodyParser interface {
	Parse(c *Context, cfg MediaConfig) error
}

// defaultBodyParser decodes JSON documents and urlencoded forms, storing
// anything else as raw bytes. It enforces the payload ceiling with
// http.MaxBytesReader, which closes the underlying connection on overrun.
type defaultBodyParser struct {
	maxBytes int64
}

func (p *defaultBodyParser) Parse(c *Context, cfg MediaConfig) error {
	req := c.Request
	if req.Body == nil || req.ContentLength == 0 {
		return nil
	}

	ctype := req.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(ctype)

	if len(cfg.AllowedTypes) > 0 && !typeAllowed(mediaType, cfg.AllowedTypes) {
		c.WriteErrorResponse(http.StatusUnsupportedMediaType, "unsupported media type")
		return fmt.Errorf("%w: %q", ErrMediaTypeNotAllowed, mediaType)
	}

	limit := cfg.MaxBytes
	if limit <= 0 {
		limit = p.maxBytes
	}
	raw, err := io.ReadAll(http.MaxBytesReader(c.Response, req.Body, limit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.WriteErrorResponse(http.StatusRequestEntityTooLarge, "request body too large")
			return fmt.Errorf("%w: limit %d", ErrBodyTooLarge, limit)
		}
		c.WriteErrorResponse(http.StatusBadRequest, "could not read request body")
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	c.bodyRaw = raw
	c.hasBody = true

	switch {
	case strings.Contains(mediaType, "json"):
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			c.WriteErrorResponse(http.StatusBadRequest, "malformed JSON body")
			return fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		c.body = v

	case mediaType == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			c.WriteErrorResponse(http.StatusBadRequest, "malformed form body")
			return fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		c.body = values

	default:
		c.body = raw
	}

	return nil
}

func typeAllowed(mediaType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.EqualFold(t, mediaType) {
			return true
		}
	}
	return false
}

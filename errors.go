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

import "errors"

var (
	// ErrEmptyPattern indicates that a route template is empty.
	ErrEmptyPattern = errors.New("route pattern must not be empty")

	// ErrPatternNoSlash indicates that a route template does not start with '/'.
	ErrPatternNoSlash = errors.New("route pattern must start with '/'")

	// ErrWildcardNotTrailing indicates that a '*' segment appears before the
	// final segment of a route template.
	ErrWildcardNotTrailing = errors.New("wildcard must be the final segment")

	// ErrEmptyParamName indicates a ':' segment with no name.
	ErrEmptyParamName = errors.New("parameter segment must have a name")

	// ErrNilHandler indicates that a nil handler was bound to a route.
	ErrNilHandler = errors.New("route handler must not be nil")

	// ErrUnsupportedHandler indicates a handler function with an
	// unsupported signature.
	ErrUnsupportedHandler = errors.New("unsupported handler signature")

	// ErrDuplicateDecorator indicates that a decorator name was declared
	// twice within the same scope.
	ErrDuplicateDecorator = errors.New("decorator name already registered")

	// ErrDecoratorNameEmpty indicates an empty decorator name.
	ErrDecoratorNameEmpty = errors.New("decorator name must not be empty")

	// ErrTrieThresholdInvalid indicates a non-positive trie threshold.
	ErrTrieThresholdInvalid = errors.New("trie threshold must be positive")

	// ErrServerTimeoutInvalid indicates that a server timeout value must be positive.
	ErrServerTimeoutInvalid = errors.New("server timeout must be positive")

	// ErrResponseWriterNotHijacker indicates that the underlying
	// ResponseWriter does not implement http.Hijacker.
	ErrResponseWriterNotHijacker = errors.New("response writer does not implement http.Hijacker")

	// ErrPoolClosed indicates an operation against a closed resource pool.
	ErrPoolClosed = errors.New("pool is closed")

	// ErrAcquireTimeout indicates that a pool acquire waited past its deadline.
	ErrAcquireTimeout = errors.New("pool acquire timed out")

	// ErrPoolConfigInvalid indicates an invalid resource pool configuration.
	ErrPoolConfigInvalid = errors.New("invalid pool configuration")

	// ErrCacheCapacityInvalid indicates a non-positive cache capacity.
	ErrCacheCapacityInvalid = errors.New("cache capacity must be positive")

	// ErrBodyTooLarge indicates that a request body exceeded the configured ceiling.
	ErrBodyTooLarge = errors.New("request body too large")

	// ErrMediaTypeNotAllowed indicates a request content type outside the
	// route's allowed set.
	ErrMediaTypeNotAllowed = errors.New("content type not allowed")

	// ErrMalformedBody indicates a request body that could not be decoded.
	ErrMalformedBody = errors.New("malformed request body")
)

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
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ETag represents an HTTP ETag with optional weak comparison flag.
type ETag struct {
	Value string
	Weak  bool
}

// String returns the ETag in HTTP format (W/"value" for weak, "value" for strong).
func (e ETag) String() string {
	if e.Value == "" {
		return ""
	}
	if e.Weak {
		return `W/"` + e.Value + `"`
	}
	return `"` + e.Value + `"`
}

// WeakETagFromBytes creates a weak ETag from byte data using SHA256.
func WeakETagFromBytes(b []byte) ETag {
	if len(b) == 0 {
		return ETag{}
	}
	hash := sha256.Sum256(b)
	return ETag{Value: hex.EncodeToString(hash[:]), Weak: true}
}

// StrongETagFromBytes creates a strong ETag from byte data using SHA256.
// Strong ETags require exact byte-for-byte matching.
func StrongETagFromBytes(b []byte) ETag {
	if len(b) == 0 {
		return ETag{}
	}
	hash := sha256.Sum256(b)
	return ETag{Value: hex.EncodeToString(hash[:]), Weak: false}
}

// SetETag sets the ETag response header.
func (c *Context) SetETag(tag ETag) {
	if tag.Value == "" {
		return
	}
	c.Header("ETag", tag.String())
}

// IfNoneMatch reports whether the request's If-None-Match header matches
// the given ETag. Comparison ignores the weak prefix, so a weak validator
// matches its strong counterpart.
func (c *Context) IfNoneMatch(tag ETag) bool {
	header := c.Request.Header.Get("If-None-Match")
	if header == "" || tag.Value == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		if candidate = normalizeETagValue(candidate); candidate == tag.Value || candidate == "*" {
			return true
		}
	}
	return false
}

// normalizeETagValue strips quotes and the W/ prefix from an ETag string.
func normalizeETagValue(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, "W/")
	return strings.Trim(tag, `"`)
}

// CacheEntry is a cached response: body bytes plus the metadata needed to
// replay it (content type, status) and validate it (fingerprint).
type CacheEntry struct {
	Value       []byte
	ContentType string
	Status      int
	ExpiresAt   time.Time
	Fingerprint ETag
}

func (e *CacheEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// LRUCache is a fixed-capacity response cache with least-recently-used
// eviction and per-entry TTL. Expired entries are evicted lazily on read.
// All methods are safe for concurrent use.
type LRUCache struct {
	mu         sync.Mutex
	capacity   int
	defaultTTL time.Duration
	order      *list.List // front = most recently used
	items      map[string]*list.Element
}

type lruItem struct {
	key   string
	entry CacheEntry
}

// NewLRUCache creates a cache holding at most capacity entries. Entries
// stored without an explicit TTL expire after defaultTTL; a zero
// defaultTTL means no expiry. Returns ErrCacheCapacityInvalid when
// capacity is not positive.
func NewLRUCache(capacity int, defaultTTL time.Duration) (*LRUCache, error) {
	if capacity <= 0 {
		return nil, ErrCacheCapacityInvalid
	}
	return &LRUCache{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		order:      list.New(),
		items:      make(map[string]*list.Element, capacity),
	}, nil
}

// MustNewLRUCache is like NewLRUCache but panics on configuration error.
func MustNewLRUCache(capacity int, defaultTTL time.Duration) *LRUCache {
	c, err := NewLRUCache(capacity, defaultTTL)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns the entry for key and marks it most recently used. An
// expired entry is removed and reported as a miss.
func (lc *LRUCache) Get(key string) (CacheEntry, bool) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	el, ok := lc.items[key]
	if !ok {
		return CacheEntry{}, false
	}
	item := el.Value.(*lruItem)
	if item.entry.expired(time.Now()) {
		lc.order.Remove(el)
		delete(lc.items, key)
		return CacheEntry{}, false
	}
	lc.order.MoveToFront(el)
	return item.entry, true
}

// Set stores body bytes under key using the cache's default TTL. The
// entry's fingerprint is computed from the bytes.
func (lc *LRUCache) Set(key string, value []byte, contentType string, status int) {
	lc.SetEntry(key, CacheEntry{
		Value:       value,
		ContentType: contentType,
		Status:      status,
		Fingerprint: WeakETagFromBytes(value),
	}, lc.defaultTTL)
}

// SetEntry stores a prepared entry under key with an explicit TTL. A zero
// ttl falls back to the cache default; a negative ttl disables expiry for
// the entry. Inserting over capacity evicts the least recently used entry.
func (lc *LRUCache) SetEntry(key string, entry CacheEntry, ttl time.Duration) {
	if ttl == 0 {
		ttl = lc.defaultTTL
	}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	} else {
		entry.ExpiresAt = time.Time{}
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	if el, ok := lc.items[key]; ok {
		el.Value.(*lruItem).entry = entry
		lc.order.MoveToFront(el)
		return
	}
	if lc.order.Len() >= lc.capacity {
		oldest := lc.order.Back()
		if oldest != nil {
			lc.order.Remove(oldest)
			delete(lc.items, oldest.Value.(*lruItem).key)
		}
	}
	lc.items[key] = lc.order.PushFront(&lruItem{key: key, entry: entry})
}

// Delete removes the entry for key, if present.
func (lc *LRUCache) Delete(key string) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if el, ok := lc.items[key]; ok {
		lc.order.Remove(el)
		delete(lc.items, key)
	}
}

// Clear removes every entry.
func (lc *LRUCache) Clear() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.order.Init()
	clear(lc.items)
}

// Size returns the number of live entries.
func (lc *LRUCache) Size() int {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.order.Len()
}

// Capacity returns the configured maximum entry count.
func (lc *LRUCache) Capacity() int {
	return lc.capacity
}

// cacheOptions configures CacheMiddleware behavior.
type cacheOptions struct {
	ttl      time.Duration
	keyQuery bool
}

// CacheOption adjusts how CacheMiddleware stores and keys responses.
type CacheOption func(*cacheOptions)

// CacheTTL overrides the cache's default TTL for responses stored by
// this middleware.
func CacheTTL(ttl time.Duration) CacheOption {
	return func(o *cacheOptions) { o.ttl = ttl }
}

// CacheKeyWithQuery includes the raw query string in the cache key, so
// /users?page=1 and /users?page=2 cache independently.
func CacheKeyWithQuery() CacheOption {
	return func(o *cacheOptions) { o.keyQuery = true }
}

// CacheMiddleware serves GET and HEAD responses from cache. On a hit it
// replays the stored body, content type and status, and finalizes the
// response so the handler never runs. When the client's If-None-Match
// matches the stored fingerprint it sends 304 with no body. On a miss it
// arranges for a successful response to be captured and stored after the
// handler completes.
func CacheMiddleware(cache *LRUCache, opts ...CacheOption) Middleware {
	var o cacheOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			return
		}

		key := c.Request.Method + " " + c.Request.URL.Path
		if o.keyQuery && c.Request.URL.RawQuery != "" {
			key += "?" + c.Request.URL.RawQuery
		}

		if entry, ok := cache.Get(key); ok {
			c.SetETag(entry.Fingerprint)
			if c.IfNoneMatch(entry.Fingerprint) {
				c.Status(http.StatusNotModified)
				c.Abort()
				return
			}
			if entry.ContentType != "" {
				c.Header("Content-Type", entry.ContentType)
			}
			c.Response.WriteHeader(entry.Status)
			if c.Request.Method != http.MethodHead {
				c.Response.Write(entry.Value)
			}
			c.Abort()
			return
		}

		c.Response.capture = &cacheCapture{cache: cache, key: key, ttl: o.ttl}
	}
}

// cacheCapture tees response bytes written after a cache miss so the
// completed response can be stored.
type cacheCapture struct {
	cache *LRUCache
	key   string
	ttl   time.Duration
	buf   bytes.Buffer
}

// finishCapture commits a captured response to the cache. Only successful
// responses with a body are stored; redirects and errors pass through
// uncached.
func (c *Context) finishCapture() {
	cc := c.Response.capture
	if cc == nil {
		return
	}
	c.Response.capture = nil

	status := c.Response.StatusCode()
	if status >= 300 || cc.buf.Len() == 0 {
		return
	}
	body := make([]byte, cc.buf.Len())
	copy(body, cc.buf.Bytes())
	cc.cache.SetEntry(cc.key, CacheEntry{
		Value:       body,
		ContentType: c.Response.Header().Get("Content-Type"),
		Status:      status,
		Fingerprint: WeakETagFromBytes(body),
	}, cc.ttl)
}

// cancelCapture discards any pending capture without storing it.
func (c *Context) cancelCapture() {
	c.Response.capture = nil
}

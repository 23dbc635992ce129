// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package document

import (
	"sync"

	"github.com/pb33f/telescope-core/host"
)

// Entry is what the Cache keeps per uri: the fully parsed document plus its computed type.
// A cache entry is either fully initialized or absent - never torn (spec.md S5's "Shared
// resources" guarantee).
type Entry struct {
	Doc  *Document
	Type Type
}

// Cache is the document-type cache of spec.md S4.3.5: keyed by uri, invalidated per-uri on
// host file-change notifications. It also happens to avoid re-parsing a document whose
// content hash has not changed, since Document is immutable once built.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	unsubs  map[string]host.Unsubscribe
}

// NewCache creates an empty document-type cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]Entry),
		unsubs:  make(map[string]host.Unsubscribe),
	}
}

// Get loads and classifies uri via h, reusing the cached entry unless the host's current
// content hash differs. jsonc enables lenient JSON parsing (S4.1).
func (c *Cache) Get(h host.Host, uri string, jsonc bool) (Entry, error) {
	res, err := h.Read(uri)
	if err != nil {
		return Entry{}, err
	}
	hash := res.Hash
	if hash == "" {
		hash = Hash(res.Text)
	}

	c.mu.RLock()
	cached, ok := c.entries[uri]
	c.mu.RUnlock()
	if ok && cached.Doc.Hash == hash {
		return cached, nil
	}

	doc := Parse(uri, res.Text, res.Mtime, "", jsonc)
	entry := Entry{Doc: doc, Type: DetectType(doc.Root)}

	c.mu.Lock()
	c.entries[uri] = entry
	c.mu.Unlock()

	c.subscribe(h, uri)
	return entry, nil
}

// Invalidate drops the cached entry for uri, forcing the next Get to re-read and re-parse.
func (c *Cache) Invalidate(uri string) {
	c.mu.Lock()
	delete(c.entries, uri)
	c.mu.Unlock()
}

// Peek returns the cached entry for uri without touching the host, if one exists.
func (c *Cache) Peek(uri string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[uri]
	return e, ok
}

func (c *Cache) subscribe(h host.Host, uri string) {
	c.mu.Lock()
	_, already := c.unsubs[uri]
	c.mu.Unlock()
	if already {
		return
	}
	unsub := h.OnFileChange(uri, func(changed string) {
		c.Invalidate(changed)
	})
	if unsub != nil {
		c.mu.Lock()
		c.unsubs[uri] = unsub
		c.mu.Unlock()
	}
}

// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package lintcontext

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pb33f/telescope-core/document"
	"github.com/pb33f/telescope-core/host"
	"github.com/pb33f/telescope-core/project"
	"github.com/pb33f/telescope-core/refgraph"
)

// BuildProjectContext implements spec.md S4.3.4: BFS forward from rootURI, loading every
// transitively referenced document. A load failure on a dependent is logged but not fatal -
// the edge stays unresolved and later surfaces as an unresolved-ref diagnostic (spec.md S7).
// Results are cached and revalidated per spec.md S4.3.5 via caches.Project.
func BuildProjectContext(rootURI string, h host.Host, caches *Caches, jsonc bool, log *slog.Logger) (*ProjectContext, error) {
	if cached, ok := caches.Project.Get(rootURI, h, jsonc); ok {
		return cached, nil
	}

	docs := map[string]*document.Document{}
	rootEntry, err := caches.DocType.Get(h, rootURI, jsonc)
	if err != nil {
		return nil, err
	}
	docs[rootURI] = rootEntry.Doc

	g := refgraph.New()
	queue := []string{rootURI}
	visited := map[string]bool{rootURI: true}

	for len(queue) > 0 {
		uri := queue[0]
		queue = queue[1:]
		doc := docs[uri]
		if doc == nil {
			continue
		}
		refgraph.DiscoverDocument(g, doc, h, func(u string) bool { return docs[u] != nil })
		for _, e := range g.EdgesFrom(uri) {
			if e.ToURI == uri || visited[e.ToURI] {
				continue
			}
			visited[e.ToURI] = true
			entry, lerr := caches.DocType.Get(h, e.ToURI, jsonc)
			if lerr != nil {
				warnf(log, "telescope: could not load referenced document", "from", uri, "ref", e.RefString, "to", e.ToURI, "error", lerr)
				continue
			}
			docs[e.ToURI] = entry.Doc
			queue = append(queue, e.ToURI)
		}
	}

	// re-run discovery now that every dependent is loaded, so edges into newly-loaded
	// documents are marked Resolved rather than provisionally unresolved.
	g2 := refgraph.New()
	for uri, doc := range docs {
		refgraph.DiscoverDocument(g2, doc, h, func(u string) bool { _, ok := docs[u]; return ok })
		_ = uri
	}

	ctx := &ProjectContext{
		RootURI: rootURI,
		Docs:    docs,
		Graph:   g2,
		Index:   project.Build(docs, g2),
	}
	caches.Project.Put(rootURI, ctx)
	caches.Project.Subscribe(rootURI, h)
	return ctx, nil
}

// projectCacheEntry is the project-context cache record of spec.md S4.3.5: the built
// context plus the member hashes it was validated against.
type projectCacheEntry struct {
	ctx           *ProjectContext
	memberHashes  map[string]string
	builtAt       time.Time
	unsubscribers []host.Unsubscribe
}

// ProjectCache is the project-context cache of spec.md S4.3.5: keyed by root uri, revalidated
// on every lookup by recomputing whether any member document's hash changed, whether a member
// was removed, or whether new members appeared.
type ProjectCache struct {
	mu      sync.RWMutex
	entries map[string]*projectCacheEntry
}

// NewProjectCache creates an empty project-context cache.
func NewProjectCache() *ProjectCache {
	return &ProjectCache{entries: map[string]*projectCacheEntry{}}
}

// Get returns the cached ProjectContext for rootURI if it is still valid, re-reading every
// member's current hash via h to check. ok is false on a cache miss or invalidation.
func (c *ProjectCache) Get(rootURI string, h host.Host, jsonc bool) (*ProjectContext, bool) {
	c.mu.RLock()
	entry, ok := c.entries[rootURI]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	for uri, prevHash := range entry.memberHashes {
		res, err := h.Read(uri)
		if err != nil {
			c.Invalidate(rootURI)
			return nil, false
		}
		hash := res.Hash
		if hash == "" {
			hash = document.Hash(res.Text)
		}
		if hash != prevHash {
			c.Invalidate(rootURI)
			return nil, false
		}
	}
	if len(entry.memberHashes) != len(entry.ctx.Docs) {
		c.Invalidate(rootURI)
		return nil, false
	}
	return entry.ctx, true
}

// Put stores a freshly built ProjectContext with the member hashes Get re-checks on every
// lookup (spec.md S4.3.5, S5). File-change subscription is done separately by Subscribe.
func (c *ProjectCache) Put(rootURI string, ctx *ProjectContext) {
	hashes := make(map[string]string, len(ctx.Docs))
	for uri, doc := range ctx.Docs {
		hashes[uri] = doc.Hash
	}
	c.mu.Lock()
	c.entries[rootURI] = &projectCacheEntry{ctx: ctx, memberHashes: hashes, builtAt: time.Now()}
	c.mu.Unlock()
}

// Subscribe registers file-change invalidation for rootURI's current members. Split out from
// Put; BuildProjectContext calls it after every Put, and a host whose OnFileChange returns nil
// registers nothing.
func (c *ProjectCache) Subscribe(rootURI string, h host.Host) {
	c.mu.RLock()
	entry, ok := c.entries[rootURI]
	c.mu.RUnlock()
	if !ok {
		return
	}
	var subs []host.Unsubscribe
	for uri := range entry.memberHashes {
		u := uri
		sub := h.OnFileChange(u, func(string) { c.Invalidate(rootURI) })
		if sub != nil {
			subs = append(subs, sub)
		}
	}
	c.mu.Lock()
	entry.unsubscribers = subs
	c.mu.Unlock()
}

// Invalidate drops the cached ProjectContext for rootURI, unsubscribing from any file-change
// callbacks it registered.
func (c *ProjectCache) Invalidate(rootURI string) {
	c.mu.Lock()
	entry, ok := c.entries[rootURI]
	delete(c.entries, rootURI)
	c.mu.Unlock()
	if ok {
		for _, unsub := range entry.unsubscribers {
			unsub()
		}
	}
}

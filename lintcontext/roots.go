// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package lintcontext

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pb33f/telescope-core/document"
	"github.com/pb33f/telescope-core/host"
	"github.com/pb33f/telescope-core/refgraph"
)

var specGlobs = []string{"**/*.yaml", "**/*.yml", "**/*.json"}

// DiscoverRoots implements spec.md S4.3.1: glob every yaml/json file in the workspace,
// classify each through the document-type cache, and collect the ones typed Root. Any
// user-supplied entrypoints are validated through the same cache and added even if the glob
// missed them (e.g. a file outside the configured workspace folders).
//
// A file that fails to load is skipped rather than aborting discovery, but every such failure
// is folded into the returned error via errors.Join so a caller can still log (or surface)
// the full set instead of only the first one.
func DiscoverRoots(h host.Host, cache *document.Cache, entrypoints []string, jsonc bool) ([]string, error) {
	uris, err := h.Glob(specGlobs)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var roots []string
	var loadErrs []error
	for _, uri := range uris {
		if seen[uri] {
			continue
		}
		seen[uri] = true
		entry, gerr := cache.Get(h, uri, jsonc)
		if gerr != nil {
			loadErrs = append(loadErrs, fmt.Errorf("%s: %w", uri, gerr))
			continue
		}
		if entry.Type == document.TypeRoot {
			roots = append(roots, uri)
		}
	}
	for _, uri := range entrypoints {
		if seen[uri] {
			continue
		}
		seen[uri] = true
		entry, gerr := cache.Get(h, uri, jsonc)
		if gerr != nil {
			loadErrs = append(loadErrs, fmt.Errorf("%s: %w", uri, gerr))
			continue
		}
		if entry.Type == document.TypeRoot {
			roots = append(roots, uri)
		}
	}
	sort.Strings(roots)
	return roots, errors.Join(loadErrs...)
}

// FindRootsForPartial implements spec.md S4.3.2's reverse traversal: starting from partial
// uri P, discover which of candidateRoots can reach P by forward $ref edges, by walking the
// ref graph backwards from P and stopping at any root encountered (roots are terminal in
// reverse search - spec.md S4.3.2 step 4). The result satisfies P4 (idempotent and
// order-independent with respect to root discovery order) because it is sorted before return.
func FindRootsForPartial(p string, h host.Host, cache *document.Cache, candidateRoots []string, jsonc bool) ([]string, error) {
	docs := map[string]*document.Document{}
	load := func(uri string) *document.Document {
		if d, ok := docs[uri]; ok {
			return d
		}
		entry, err := cache.Get(h, uri, jsonc)
		if err != nil {
			return nil
		}
		docs[uri] = entry.Doc
		return entry.Doc
	}

	if load(p) == nil {
		return nil, nil
	}
	for _, r := range candidateRoots {
		load(r)
	}

	// step 2: each loaded root also pulls in everything it forward-references, so the graph
	// contains a complete path between every root and every partial.
	g := refgraph.New()
	frontier := make([]string, 0, len(docs))
	for uri := range docs {
		frontier = append(frontier, uri)
	}
	loadedAll := map[string]bool{}
	for len(frontier) > 0 {
		uri := frontier[0]
		frontier = frontier[1:]
		if loadedAll[uri] {
			continue
		}
		loadedAll[uri] = true
		doc := load(uri)
		if doc == nil {
			continue
		}
		refgraph.DiscoverDocument(g, doc, h, func(u string) bool { return docs[u] != nil })
		for _, e := range g.EdgesFrom(uri) {
			if !loadedAll[e.ToURI] {
				if load(e.ToURI) != nil {
					frontier = append(frontier, e.ToURI)
				}
			}
		}
	}

	// step 4: BFS backwards from (P, #).
	type node struct{ uri, ptr string }
	start := node{p, "#"}
	visited := map[string]bool{refgraph.NodeKey(start.uri, start.ptr): true}
	queue := []node{start}
	foundRoots := map[string]bool{}

	isRoot := func(uri string) bool {
		entry, ok := cache.Peek(uri)
		return ok && entry.Type == document.TypeRoot
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if isRoot(cur.uri) {
			foundRoots[cur.uri] = true
			continue // roots are terminal; do not traverse past them
		}

		for _, e := range g.DependentEdges(cur.uri, cur.ptr) {
			if load(e.FromURI) == nil {
				continue
			}
			depKey := refgraph.NodeKey(e.FromURI, e.FromPtr)
			if !visited[depKey] {
				visited[depKey] = true
				queue = append(queue, node{e.FromURI, e.FromPtr})
			}
			rootKey := refgraph.NodeKey(e.FromURI, "#")
			if !visited[rootKey] {
				visited[rootKey] = true
				queue = append(queue, node{e.FromURI, "#"})
			}
		}
	}

	out := make([]string, 0, len(foundRoots))
	for r := range foundRoots {
		out = append(out, r)
	}
	sort.Strings(out)
	return out, nil
}

// GetPrimaryRoot returns the deterministic (lexicographically smallest) root URI from a set
// of roots reaching the same node (spec.md S4.3/glossary's "Primary root").
func GetPrimaryRoot(roots []string) string {
	if len(roots) == 0 {
		return ""
	}
	primary := roots[0]
	for _, r := range roots[1:] {
		if r < primary {
			primary = r
		}
	}
	return primary
}

func warnf(log *slog.Logger, msg string, args ...any) {
	if log == nil {
		log = slog.Default()
	}
	log.Warn(msg, args...)
}

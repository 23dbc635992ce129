// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package refgraph builds and queries the cross-document $ref graph spec.md S4.2 describes:
// a multigraph of directed edges, discovered by walking each document's IR, with both forward
// and reverse indexes so the context resolver (lintcontext) can traverse it in either
// direction.
package refgraph

import (
	"strings"

	"github.com/pb33f/telescope-core/document"
	"github.com/pb33f/telescope-core/host"
	"github.com/pb33f/telescope-core/ir"
	"github.com/pb33f/telescope-core/utils"
)

// NodeKey is the "uri#ptr" address used throughout the graph and its traversal APIs
// (spec.md S4.2). ptr is normalized first, so any informal spelling ("", "x", "/x") yields the
// canonical "#/a/b" form.
func NodeKey(uri, ptr string) string {
	ptr = utils.NormalizePointer(ptr)
	return uri + ptr
}

// Edge is one discovered $ref relationship (spec.md S3's "Reference edge").
type Edge struct {
	FromURI, FromPtr string
	ToURI, ToPtr     string
	RefString        string // the literal $ref value, for display and for unresolved edges
	Resolved         bool   // false when ToURI could not be loaded
}

func (e Edge) fromKey() string { return NodeKey(e.FromURI, e.FromPtr) }
func (e Edge) toKey() string   { return NodeKey(e.ToURI, e.ToPtr) }

// Graph owns the forward and reverse adjacency of every $ref edge discovered across a set of
// documents (spec.md S4.2). It is a multigraph: the same (from,to) pair may recur from
// different source locations.
type Graph struct {
	forward map[string][]Edge // fromKey -> edges
	reverse map[string][]Edge // toKey -> edges
	edges   []Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{forward: map[string][]Edge{}, reverse: map[string][]Edge{}}
}

// AddEdge inserts one discovered edge into both the forward and reverse indexes.
func (g *Graph) AddEdge(e Edge) {
	g.edges = append(g.edges, e)
	g.forward[e.fromKey()] = append(g.forward[e.fromKey()], e)
	g.reverse[e.toKey()] = append(g.reverse[e.toKey()], e)
}

// EdgesFrom returns every edge whose FromURI matches uri, optionally restricted to those
// whose FromPtr is ptr or a descendant of ptr (pointer-prefix matching), per spec.md S4.2.
func (g *Graph) EdgesFrom(uri string, ptr ...string) []Edge {
	var prefix string
	if len(ptr) > 0 && ptr[0] != "" {
		prefix = utils.NormalizePointer(ptr[0])
	}
	var out []Edge
	for _, e := range g.edges {
		if e.FromURI != uri {
			continue
		}
		if prefix != "" && prefix != "#" && e.FromPtr != prefix && !strings.HasPrefix(e.FromPtr, prefix+"/") {
			continue
		}
		out = append(out, e)
	}
	return out
}

// DependentsOf returns every fromKey ("uri#ptr") whose edge targets nodeKey, itself a
// "uri#ptr" string as produced by NodeKey.
func (g *Graph) DependentsOf(nodeKey string) []string {
	edges := g.reverse[nodeKey]
	out := make([]string, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.fromKey())
	}
	return out
}

// DependentEdges is like DependentsOf but returns the edges themselves, since callers in
// lintcontext need FromURI/FromPtr separately rather than a re-joined string.
func (g *Graph) DependentEdges(uri, ptr string) []Edge {
	return g.reverse[NodeKey(uri, ptr)]
}

// AllEdges returns every discovered edge, resolved and unresolved alike.
func (g *Graph) AllEdges() []Edge { return g.edges }

// Dependencies returns the flat, deduplicated set of every document URI transitively
// reachable by forward edges from uri (SPEC_FULL.md S12's bundler-grounded dependency
// inventory) - read-only, unlike the teacher's bundler which inlines these into one document.
func (g *Graph) Dependencies(uri string) []string {
	seen := map[string]bool{uri: true}
	queue := []string{uri}
	var order []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.edges {
			if e.FromURI != cur || !e.Resolved {
				continue
			}
			if seen[e.ToURI] {
				continue
			}
			seen[e.ToURI] = true
			order = append(order, e.ToURI)
			queue = append(queue, e.ToURI)
		}
	}
	return order
}

// GetValueAtPointer walks ir children by unescaped segment; numeric array indices are
// recognized. Returns nil if any segment is missing (spec.md S4.2).
func GetValueAtPointer(root *ir.Node, ptr string) *ir.Node {
	return ir.FindByPointer(root, ptr)
}

// DiscoverDocument walks doc's IR looking for $ref strings and appends a resolved or
// unresolved Edge to g for each one found (spec.md S4.2's "Discovery"). resolve is the
// host's pure Resolve function; known reports whether a candidate toURI is currently
// loadable, purely so the edge can be marked Resolved without the graph itself doing I/O.
func DiscoverDocument(g *Graph, doc *document.Document, h host.Host, known func(uri string) bool) {
	if doc == nil || doc.Root == nil {
		return
	}
	ir.Walk(doc.Root, func(n *ir.Node) bool {
		if n.Kind != ir.KindObject {
			return true
		}
		refNode := n.Child("$ref")
		if refNode == nil || refNode.Kind != ir.KindString {
			return true
		}
		refStr, _ := refNode.Value.(string)
		toURI, toPtr := splitRef(doc.URI, refStr, h)
		resolved := toURI == doc.URI || known == nil || known(toURI)
		g.AddEdge(Edge{
			FromURI: doc.URI, FromPtr: n.Ptr,
			ToURI: toURI, ToPtr: toPtr,
			RefString: refStr, Resolved: resolved,
		})
		return true
	})
}

// splitRef implements spec.md S4.2's ref-string splitting rule: empty path before '#' means
// same document; an http(s) URL is absolute; anything else is resolved against fromURI via
// the host's pure Resolve. A missing fragment defaults to the root pointer "#".
func splitRef(fromURI, ref string, h host.Host) (toURI, toPtr string) {
	path, frag, hasFrag := strings.Cut(ref, "#")
	toPtr = "#"
	if hasFrag && frag != "" {
		toPtr = utils.NormalizePointer(frag)
	}
	switch {
	case path == "":
		return fromURI, toPtr
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path, toPtr
	default:
		resolved, err := h.Resolve(fromURI, path)
		if err != nil || resolved == "" {
			return path, toPtr
		}
		return resolved, toPtr
	}
}

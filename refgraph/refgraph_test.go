// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package refgraph_test

import (
	"testing"
	"time"

	"github.com/pb33f/telescope-core/document"
	"github.com/pb33f/telescope-core/refgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeKey(t *testing.T) {
	assert.Equal(t, "memory://a.yaml#/foo/bar", refgraph.NodeKey("memory://a.yaml", "foo/bar"))
	assert.Equal(t, "memory://a.yaml#/foo/bar", refgraph.NodeKey("memory://a.yaml", "#/foo/bar"))
}

func TestDiscoverDocumentSameDocumentRef(t *testing.T) {
	raw := []byte("components:\n  schemas:\n    A:\n      type: object\n    B:\n      $ref: '#/components/schemas/A'\n")
	doc := document.Parse("memory://spec.yaml", raw, time.Time{}, "", false)
	require.Nil(t, doc.ParseError)

	g := refgraph.New()
	refgraph.DiscoverDocument(g, doc, nil, nil)

	edges := g.AllEdges()
	require.Len(t, edges, 1)
	assert.Equal(t, doc.URI, edges[0].ToURI)
	assert.Equal(t, "#/components/schemas/A", edges[0].ToPtr)
	assert.True(t, edges[0].Resolved)

	deps := g.DependentsOf(refgraph.NodeKey(doc.URI, "#/components/schemas/A"))
	require.Len(t, deps, 1)
	assert.Equal(t, refgraph.NodeKey(doc.URI, "#/components/schemas/B"), deps[0])
}

func TestDiscoverDocumentAbsoluteHTTPRef(t *testing.T) {
	raw := []byte("components:\n  schemas:\n    A:\n      $ref: 'https://example.com/schemas.yaml#/Thing'\n")
	doc := document.Parse("memory://spec.yaml", raw, time.Time{}, "", false)
	require.Nil(t, doc.ParseError)

	g := refgraph.New()
	refgraph.DiscoverDocument(g, doc, nil, func(uri string) bool { return false })

	edges := g.AllEdges()
	require.Len(t, edges, 1)
	assert.Equal(t, "https://example.com/schemas.yaml", edges[0].ToURI)
	assert.Equal(t, "#/Thing", edges[0].ToPtr)
	assert.False(t, edges[0].Resolved)
}

func TestEdgesFromPointerPrefixFiltering(t *testing.T) {
	g := refgraph.New()
	g.AddEdge(refgraph.Edge{FromURI: "a", FromPtr: "#/paths/~1widgets/get", ToURI: "a", ToPtr: "#/components/schemas/X"})
	g.AddEdge(refgraph.Edge{FromURI: "a", FromPtr: "#/paths/~1other/get", ToURI: "a", ToPtr: "#/components/schemas/Y"})

	all := g.EdgesFrom("a")
	assert.Len(t, all, 2)

	scoped := g.EdgesFrom("a", "#/paths/~1widgets")
	require.Len(t, scoped, 1)
	assert.Equal(t, "#/components/schemas/X", scoped[0].ToPtr)
}

func TestDependencies(t *testing.T) {
	g := refgraph.New()
	g.AddEdge(refgraph.Edge{FromURI: "a", FromPtr: "#/x", ToURI: "b", ToPtr: "#", Resolved: true})
	g.AddEdge(refgraph.Edge{FromURI: "b", FromPtr: "#/y", ToURI: "c", ToPtr: "#", Resolved: true})
	g.AddEdge(refgraph.Edge{FromURI: "a", FromPtr: "#/z", ToURI: "d", ToPtr: "#", Resolved: false})

	deps := g.Dependencies("a")
	assert.ElementsMatch(t, []string{"b", "c"}, deps)
}

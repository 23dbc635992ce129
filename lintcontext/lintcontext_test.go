// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package lintcontext_test

import (
	"path"
	"strings"
	"testing"
	"time"

	"github.com/pb33f/telescope-core/host"
	"github.com/pb33f/telescope-core/lintcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memHost is a minimal in-memory host.Host for exercising the context resolver without disk
// or network I/O; Resolve mimics relative-path joining the way a real filesystem host would.
type memHost struct {
	files map[string]string
}

func newMemHost(files map[string]string) *memHost { return &memHost{files: files} }

func (m *memHost) Read(uri string) (host.ReadResult, error) {
	text, ok := m.files[uri]
	if !ok {
		return host.ReadResult{}, assert.AnError
	}
	return host.ReadResult{Text: []byte(text), Mtime: time.Time{}}, nil
}

func (m *memHost) Exists(uri string) bool {
	_, ok := m.files[uri]
	return ok
}

func (m *memHost) Glob(patterns []string) ([]string, error) {
	var out []string
	for uri := range m.files {
		out = append(out, uri)
	}
	return out, nil
}

func (m *memHost) Resolve(fromURI, ref string) (string, error) {
	return path.Join(path.Dir(fromURI), ref), nil
}

func (m *memHost) OnFileChange(uri string, cb func(uri string)) host.Unsubscribe {
	return func() {}
}

func TestResolveLintingContextProjectAwareFollowsRefs(t *testing.T) {
	h := newMemHost(map[string]string{
		"root.yaml": "openapi: 3.0.3\ninfo:\n  title: x\npaths:\n  /w:\n    get:\n      responses:\n        \"200\":\n          content:\n            application/json:\n              schema:\n                $ref: 'widget.yaml'\n",
		"widget.yaml": "type: object\nproperties:\n  id:\n    type: string\n",
	})

	lc, err := lintcontext.ResolveLintingContext("root.yaml", h, lintcontext.ResolveOptions{Caches: lintcontext.NewCaches()})
	require.NoError(t, err)
	assert.Equal(t, lintcontext.ModeProjectAware, lc.Mode)
	require.NotNil(t, lc.Context)
	assert.Len(t, lc.Context.Docs, 2)
	assert.Contains(t, lc.Context.Docs, "widget.yaml")
}

func TestResolveLintingContextUnknownDocumentFallsBackToFragment(t *testing.T) {
	h := newMemHost(map[string]string{
		"notes.yaml": "just: some notes\nabout: things\n",
	})

	lc, err := lintcontext.ResolveLintingContext("notes.yaml", h, lintcontext.ResolveOptions{Caches: lintcontext.NewCaches()})
	require.NoError(t, err)
	assert.Equal(t, lintcontext.ModeFragment, lc.Mode)
	assert.Equal(t, []string{"notes.yaml"}, lc.URIs)

	// The document parsed fine, it just didn't classify as OpenAPI shaped; a GenericRule
	// still needs something to run against.
	require.NotNil(t, lc.Context)
	assert.Contains(t, lc.Context.Docs, "notes.yaml")
}

func TestResolveLintingContextHostReadFailureLeavesContextNil(t *testing.T) {
	h := newMemHost(map[string]string{})

	lc, err := lintcontext.ResolveLintingContext("missing.yaml", h, lintcontext.ResolveOptions{Caches: lintcontext.NewCaches()})
	require.NoError(t, err)
	assert.Equal(t, lintcontext.ModeFragment, lc.Mode)
	assert.Nil(t, lc.Context)
}

func TestResolveLintingContextPartialOwnedBySingleRoot(t *testing.T) {
	h := newMemHost(map[string]string{
		"root.yaml":   "openapi: 3.0.3\ninfo:\n  title: x\npaths:\n  /w:\n    $ref: 'widget-path.yaml'\n",
		"widget-path.yaml": "get:\n  responses:\n    \"200\":\n      description: ok\n",
	})

	lc, err := lintcontext.ResolveLintingContext("widget-path.yaml", h, lintcontext.ResolveOptions{Caches: lintcontext.NewCaches()})
	require.NoError(t, err)
	assert.Equal(t, lintcontext.ModeProjectAware, lc.Mode)
	require.Len(t, lc.RootURIs, 1)
	assert.Equal(t, "root.yaml", lc.RootURIs[0])
}

func TestProjectCacheInvalidatesOnContentChange(t *testing.T) {
	files := map[string]string{
		"root.yaml": "openapi: 3.0.3\ninfo:\n  title: x\npaths: {}\n",
	}
	h := newMemHost(files)
	caches := lintcontext.NewCaches()

	ctx1, err := lintcontext.BuildProjectContext("root.yaml", h, caches, false, nil)
	require.NoError(t, err)

	ctx2, ok := caches.Project.Get("root.yaml", h, false)
	require.True(t, ok)
	assert.Same(t, ctx1, ctx2)

	files["root.yaml"] = strings.Replace(files["root.yaml"], "title: x", "title: y", 1)
	_, ok = caches.Project.Get("root.yaml", h, false)
	assert.False(t, ok)
}

// globWithGhost wraps memHost but reports one extra uri from Glob that isn't actually
// readable, exercising DiscoverRoots' per-file error aggregation.
type globWithGhost struct {
	*memHost
	ghost string
}

func (g *globWithGhost) Glob(patterns []string) ([]string, error) {
	out, _ := g.memHost.Glob(patterns)
	return append(out, g.ghost), nil
}

func TestDiscoverRootsAggregatesPerFileLoadErrors(t *testing.T) {
	h := &globWithGhost{
		memHost: newMemHost(map[string]string{
			"root.yaml": "openapi: 3.0.3\ninfo:\n  title: x\npaths: {}\n",
		}),
		ghost: "missing.yaml",
	}

	roots, err := lintcontext.DiscoverRoots(h, lintcontext.NewCaches().DocType, nil, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
	assert.Equal(t, []string{"root.yaml"}, roots)
}

func TestGetPrimaryRootIsLexicographicallySmallest(t *testing.T) {
	assert.Equal(t, "a.yaml", lintcontext.GetPrimaryRoot([]string{"b.yaml", "a.yaml", "c.yaml"}))
	assert.Equal(t, "", lintcontext.GetPrimaryRoot(nil))
}

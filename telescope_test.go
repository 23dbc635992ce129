// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package telescope_test

import (
	"path"
	"testing"
	"time"

	telescope "github.com/pb33f/telescope-core"
	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/host"
	"github.com/pb33f/telescope-core/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memHost is the same minimal in-memory host used across the package test suites.
type memHost struct{ files map[string]string }

func newMemHost(files map[string]string) *memHost { return &memHost{files: files} }

func (m *memHost) Read(uri string) (host.ReadResult, error) {
	text, ok := m.files[uri]
	if !ok {
		return host.ReadResult{}, assert.AnError
	}
	return host.ReadResult{Text: []byte(text), Mtime: time.Time{}}, nil
}

func (m *memHost) Exists(uri string) bool { _, ok := m.files[uri]; return ok }

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

func (m *memHost) OnFileChange(uri string, cb func(uri string)) host.Unsubscribe { return func() {} }

func TestLintDocumentProjectAwareRunsDefaultRules(t *testing.T) {
	h := newMemHost(map[string]string{
		"root.yaml": "openapi: 3.0.3\ninfo:\n  title: x\npaths:\n  /widgets:\n    get:\n      operationId: list_widgets\n      responses:\n        \"200\":\n          description: ok\n",
	})

	lc, err := telescope.ResolveLintingContext("root.yaml", h, telescope.ResolveOptions{Caches: telescope.NewCaches()})
	require.NoError(t, err)
	require.Equal(t, telescope.ModeProjectAware, lc.Mode)

	diags, _ := telescope.LintDocument(lc, h, telescope.LintOptions{})
	var sawCamelCase bool
	for _, d := range diags {
		if d.Code == "rule-423-operation-id-camel-case" {
			sawCamelCase = true
		}
	}
	assert.True(t, sawCamelCase, "expected the default preset to flag list_widgets, got %+v", diags)
}

func TestLintDocumentFragmentRunsGenericRulesOnly(t *testing.T) {
	h := newMemHost(map[string]string{
		"notes.yaml": "just: some notes\nabout: things\n",
	})

	lc, err := telescope.ResolveLintingContext("notes.yaml", h, telescope.ResolveOptions{Caches: telescope.NewCaches()})
	require.NoError(t, err)
	require.Equal(t, telescope.ModeFragment, lc.Mode)

	var seenURI string
	gr := telescope.DefineGenericRule(rules.Meta{ID: "notes-check", Number: 1}, func(ctx *rules.GenericContext) {
		seenURI = ctx.URI
		ctx.Report(diagnostic.Diagnostic{Message: "fragment rule ran"})
	})

	diags, _ := telescope.LintDocument(lc, h, telescope.LintOptions{GenericRules: []*rules.GenericRule{gr}})
	require.Len(t, diags, 1)
	assert.Equal(t, "fragment rule ran", diags[0].Message)
	assert.Equal(t, "notes.yaml", seenURI)
}

func TestLintDocumentFragmentWithoutGenericRulesProducesNoDiagnostics(t *testing.T) {
	h := newMemHost(map[string]string{
		"notes.yaml": "just: some notes\n",
	})
	lc, err := telescope.ResolveLintingContext("notes.yaml", h, telescope.ResolveOptions{Caches: telescope.NewCaches()})
	require.NoError(t, err)

	diags, fixes := telescope.LintDocument(lc, h, telescope.LintOptions{})
	assert.Empty(t, diags)
	assert.Empty(t, fixes)
}

func TestLintDocumentMultiRootRunsEveryOwningRoot(t *testing.T) {
	h := newMemHost(map[string]string{
		"rootA.yaml": "openapi: 3.0.3\ninfo:\n  title: a\npaths:\n  /a:\n    $ref: 'shared.yaml'\n",
		"rootB.yaml": "openapi: 3.0.3\ninfo:\n  title: b\npaths:\n  /b:\n    $ref: 'shared.yaml'\n",
		"shared.yaml": "get:\n  operationId: sharedOp\n  responses:\n    \"200\":\n      description: ok\n",
	})

	lc, err := telescope.ResolveLintingContext("shared.yaml", h, telescope.ResolveOptions{Caches: telescope.NewCaches()})
	require.NoError(t, err)
	require.Equal(t, telescope.ModeMultiRoot, lc.Mode)
	require.Len(t, lc.MultiRootContexts, 2)

	diags, _ := telescope.LintDocument(lc, h, telescope.LintOptions{})
	byRoot := map[string]int{}
	for _, mrc := range lc.MultiRootContexts {
		byRoot[mrc.RootURI] = len(mrc.Context.Docs)
	}
	assert.Equal(t, 2, byRoot["rootA.yaml"])
	assert.Equal(t, 2, byRoot["rootB.yaml"])
	assert.NotEmpty(t, diags)
}

func TestLintDocumentProjectAwareReportsDuplicateKey(t *testing.T) {
	h := newMemHost(map[string]string{
		"root.yaml": "openapi: 3.0.3\ninfo:\n  title: x\n  title: y\npaths: {}\n",
	})

	lc, err := telescope.ResolveLintingContext("root.yaml", h, telescope.ResolveOptions{Caches: telescope.NewCaches()})
	require.NoError(t, err)

	diags, _ := telescope.LintDocument(lc, h, telescope.LintOptions{})
	var sawDup bool
	for _, d := range diags {
		if d.Code == "duplicate-key" {
			sawDup = true
		}
	}
	assert.True(t, sawDup, "expected a duplicate-key diagnostic, got %+v", diags)
}

func TestLintDocumentFragmentReportsParseErrorWithoutGenericRules(t *testing.T) {
	h := newMemHost(map[string]string{
		"broken.yaml": "key: [unterminated\n",
	})

	lc, err := telescope.ResolveLintingContext("broken.yaml", h, telescope.ResolveOptions{Caches: telescope.NewCaches()})
	require.NoError(t, err)
	require.Equal(t, telescope.ModeFragment, lc.Mode)

	diags, _ := telescope.LintDocument(lc, h, telescope.LintOptions{})
	require.Len(t, diags, 1)
	assert.Equal(t, "parse-error", diags[0].Code)
	assert.Equal(t, "broken.yaml", diags[0].URI)
}

func TestDefineRuleAndDefineGenericRuleCanonicalize(t *testing.T) {
	r := telescope.DefineRule(rules.Spec{Meta: rules.Meta{ID: "x", Number: 99}})
	require.NotNil(t, r)

	gr := telescope.DefineGenericRule(rules.Meta{ID: "y", Number: 100}, func(ctx *rules.GenericContext) {})
	require.NotNil(t, gr)
}

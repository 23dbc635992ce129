// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package rules

import (
	"strings"

	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/document"
	"github.com/pb33f/telescope-core/ir"
	"github.com/pb33f/telescope-core/ir/span"
	"github.com/pb33f/telescope-core/lintcontext"
	"github.com/pb33f/telescope-core/project"
	"github.com/pb33f/telescope-core/refgraph"
)

// ScopeInfo is the optional contextual enrichment getScopeContext returns: the nearest
// enclosing path/operation/component for an arbitrary pointer, when one can be found.
type ScopeInfo struct {
	Path          string
	Method        string
	OperationID   string
	ComponentKind project.ComponentKind
	ComponentName string
}

// ReportOptions configures one ReportAt/ReportHere call.
type ReportOptions struct {
	Message   string
	Severity  diagnostic.Severity
	PreferKey bool
}

// Context is the RuleContext spec.md S4.5.1 specifies: everything a visitor needs to report
// diagnostics, locate ranges, navigate the project index, and collect fixes, scoped to one
// ProjectContext and one rule invocation.
type Context struct {
	rule    *Rule
	state   any
	ctx     *lintcontext.ProjectContext
	current string // uri currently being visited; "" during the Project pass

	diagnostics []diagnostic.Diagnostic
	fixes       []diagnostic.FilePatch
}

func newContext(rule *Rule, state any, pc *lintcontext.ProjectContext) *Context {
	return &Context{rule: rule, state: state, ctx: pc}
}

// Diagnostics returns everything reported so far.
func (c *Context) Diagnostics() []diagnostic.Diagnostic { return c.diagnostics }

// Fixes returns every FilePatch collected so far.
func (c *Context) Fixes() []diagnostic.FilePatch { return c.fixes }

// Index returns the aggregated ProjectIndex for the context currently being linted.
func (c *Context) Index() *project.Index { return c.ctx.Index }

// Graph returns the ref graph backing the context currently being linted.
func (c *Context) Graph() *refgraph.Graph { return c.ctx.Graph }

// CurrentURI returns the document uri the running visitor is currently dispatched against
// ("" during the Project pass, which spans every document).
func (c *Context) CurrentURI() string { return c.current }

// Version reports the detected OpenAPI/Swagger version of the current project context.
func (c *Context) Version() string { return c.ctx.Index.Version }

// IsVersion reports whether the current project context's version equals v.
func (c *Context) IsVersion(v string) bool { return c.ctx.Index.Version == v }

func (c *Context) doc(uri string) *document.Document { return c.ctx.Docs[uri] }

// CurrentDocument returns the parsed Document backing CurrentURI, for rules that need to hand
// a *document.Document through to a sub-package (e.g. rules/schemavalidate's range resolution).
func (c *Context) CurrentDocument() *document.Document { return c.doc(c.current) }

// Report appends d, filling in code/source the way spec.md S4.5.1 specifies: code is prefixed
// "rule-<number>-<id>", source is always "telescope", and codeDescription is attached from the
// rule's URL when it has one.
func (c *Context) Report(d diagnostic.Diagnostic) {
	d.Code = diagnostic.RuleCode(c.rule.Meta.Number, c.rule.Meta.ID)
	d.Source = "telescope"
	if d.Severity == 0 {
		d.Severity = c.rule.Meta.DefaultSeverity
		if d.Severity == 0 {
			d.Severity = diagnostic.SeverityError
		}
	}
	if c.rule.Meta.URL != "" && d.CodeDescription == nil {
		d.CodeDescription = &diagnostic.CodeDescription{Href: c.rule.Meta.URL}
	}
	c.diagnostics = append(c.diagnostics, d)
}

// ReportRaw appends d without the "rule-<number>-<id>" code rewrite Report applies. It exists
// for the handful of engine-level diagnostic codes spec.md S7 specifies literally
// ("unresolved-ref", "parse-error", "schema-compilation-error") rather than per-rule codes.
func (c *Context) ReportRaw(d diagnostic.Diagnostic) {
	if d.Source == "" {
		d.Source = "telescope"
	}
	if d.Severity == 0 {
		d.Severity = diagnostic.SeverityError
	}
	c.diagnostics = append(c.diagnostics, d)
}

// ReportAt implements spec.md S4.5.1's field-relative reporting. A field that exists is reported
// at its value range (its key range with PreferKey); a missing one falls back to the deepest
// resolved ancestor's key range, then that ancestor's first child key, then the ancestor's value
// range, then (0:0,0:0). uri/node identify the entity currently
// being visited; fieldPath navigates from node down to the field the diagnostic concerns.
func (c *Context) ReportAt(uri string, node *ir.Node, fieldPath []string, opts ReportOptions) {
	rng, precision := c.resolveFieldRange(uri, node, fieldPath, opts.PreferKey)
	c.Report(diagnostic.Diagnostic{
		Message: opts.Message, URI: uri, Range: rng,
		Severity: opts.Severity, RangePrecision: precision,
	})
}

// ReportHere reports directly at node's own location, applying the same fallback ladder with an
// empty field path.
func (c *Context) ReportHere(uri string, node *ir.Node, opts ReportOptions) {
	c.ReportAt(uri, node, nil, opts)
}

// ReportAtRef is ReportAt for callers (typically the Project visitor) holding a *project.Ref
// rather than a bare (uri, node) pair.
func (c *Context) ReportAtRef(ref *project.Ref, fieldPath []string, opts ReportOptions) {
	c.ReportAt(ref.URI, ref.Node, fieldPath, opts)
}

// ReportHereRef is ReportHere for callers holding a *project.Ref.
func (c *Context) ReportHereRef(ref *project.Ref, opts ReportOptions) {
	c.ReportAt(ref.URI, ref.Node, nil, opts)
}

// RangeForField exposes the fallback-ladder range resolution ReportAt uses internally, for
// callers that need the range to build a Diagnostic with extra fields (e.g. Suggest) before
// calling Report themselves.
func (c *Context) RangeForField(uri string, node *ir.Node, fieldPath []string, preferKey bool) (span.Range, diagnostic.RangePrecision) {
	return c.resolveFieldRange(uri, node, fieldPath, preferKey)
}

func (c *Context) resolveFieldRange(uri string, node *ir.Node, fieldPath []string, preferKey bool) (span.Range, diagnostic.RangePrecision) {
	doc := c.doc(uri)
	if doc == nil || doc.Root == nil {
		return span.Zero, diagnostic.PrecisionFallback
	}

	target := node
	for i, seg := range fieldPath {
		child := target.Child(seg)
		if child == nil {
			// field (or an ancestor segment of it) is missing: fall back progressively.
			return c.fallbackRange(doc, target, fieldPath[:i], preferKey)
		}
		target = child
	}

	if len(fieldPath) > 0 {
		if preferKey && target.Loc.HasKey() {
			return doc.OffsetToRange(target.Loc.KeyStart, target.Loc.KeyEnd), diagnostic.PrecisionKey
		}
		return doc.OffsetToRange(target.Loc.ValStart, target.Loc.ValEnd), diagnostic.PrecisionExact
	}

	// reportHere: no field path, report ref's own location.
	if target.Loc.HasKey() {
		return doc.OffsetToRange(target.Loc.KeyStart, target.Loc.KeyEnd), diagnostic.PrecisionExact
	}
	return doc.OffsetToRange(target.Loc.ValStart, target.Loc.ValEnd), diagnostic.PrecisionExact
}

// fallbackRange walks back up resolved from the missing field, trying each tier of spec.md
// S4.5.1's ladder in turn.
func (c *Context) fallbackRange(doc *document.Document, resolved *ir.Node, ancestorSegs []string, preferKey bool) (span.Range, diagnostic.RangePrecision) {
	// tier: intermediate ancestor key (the deepest resolved ancestor's own key range).
	if resolved.Loc.HasKey() {
		return doc.OffsetToRange(resolved.Loc.KeyStart, resolved.Loc.KeyEnd), diagnostic.PrecisionParent
	}
	// tier: first child key of parent object.
	if resolved.Kind == ir.KindObject && len(resolved.Children) > 0 {
		first := resolved.Children[0]
		if first.Loc.HasKey() {
			return doc.OffsetToRange(first.Loc.KeyStart, first.Loc.KeyEnd), diagnostic.PrecisionFirstChild
		}
	}
	// tier: parent's own value range.
	if resolved.Loc.ValEnd > resolved.Loc.ValStart || resolved.Loc.ValStart > 0 {
		return doc.OffsetToRange(resolved.Loc.ValStart, resolved.Loc.ValEnd), diagnostic.PrecisionFallback
	}
	return span.Zero, diagnostic.PrecisionFallback
}

// Fix appends one or more FilePatches to the collected fix list (spec.md S4.5.2).
func (c *Context) Fix(patches ...diagnostic.FilePatch) {
	c.fixes = append(c.fixes, patches...)
}

// Locate resolves a JSON Pointer to a range via the IR (spec.md S4.5.1); it falls back to the
// source map only in the sense that OffsetToRange always consults the cached line-offset table,
// which is this engine's source map.
func (c *Context) Locate(uri, ptr string) span.Range {
	doc := c.doc(uri)
	if doc == nil || doc.Root == nil {
		return span.Zero
	}
	n := ir.FindByPointer(doc.Root, ptr)
	if n == nil {
		return span.Zero
	}
	return doc.OffsetToRange(n.Loc.Start, n.Loc.End)
}

// LocateKey resolves ptr to its key range, falling back to Locate's full-node range when the
// node has no key of its own (array elements, the document root).
func (c *Context) LocateKey(uri, ptr string) span.Range {
	doc := c.doc(uri)
	if doc == nil || doc.Root == nil {
		return span.Zero
	}
	n := ir.FindByPointer(doc.Root, ptr)
	if n == nil {
		return span.Zero
	}
	if n.Loc.HasKey() {
		return doc.OffsetToRange(n.Loc.KeyStart, n.Loc.KeyEnd)
	}
	return doc.OffsetToRange(n.Loc.Start, n.Loc.End)
}

// LocateFirstChild resolves ptr to an object node, then returns its first child's key range.
func (c *Context) LocateFirstChild(uri, ptr string) span.Range {
	doc := c.doc(uri)
	if doc == nil || doc.Root == nil {
		return span.Zero
	}
	n := ir.FindByPointer(doc.Root, ptr)
	if n == nil || n.Kind != ir.KindObject || len(n.Children) == 0 {
		return span.Zero
	}
	first := n.Children[0]
	if first.Loc.HasKey() {
		return doc.OffsetToRange(first.Loc.KeyStart, first.Loc.KeyEnd)
	}
	return doc.OffsetToRange(first.Loc.Start, first.Loc.End)
}

// OffsetToRange translates a raw byte-offset pair for uri directly (spec.md S4.5.1).
func (c *Context) OffsetToRange(uri string, start, end int) span.Range {
	doc := c.doc(uri)
	if doc == nil {
		return span.Zero
	}
	return doc.OffsetToRange(start, end)
}

// FindKeyRange returns the key range of key under parentPtr. Ranges are already precomputed at
// parse time on every object child (document.buildIR records KeyStart/KeyEnd alongside every
// value), so this is a direct IR lookup rather than a re-scan of the raw text.
func (c *Context) FindKeyRange(uri, parentPtr, key string) span.Range {
	doc := c.doc(uri)
	if doc == nil || doc.Root == nil {
		return span.Zero
	}
	parent := ir.FindByPointer(doc.Root, parentPtr)
	child := parent.Child(key)
	if child == nil || !child.Loc.HasKey() {
		return span.Zero
	}
	return doc.OffsetToRange(child.Loc.KeyStart, child.Loc.KeyEnd)
}

// GetRootDocuments returns the root URI(s) that own the project context currently being linted.
// uri/ptr are accepted for parity with spec.md S4.5.1's signature but are not consulted: a
// Context is always already scoped to the one ProjectContext the runner dispatched it for.
func (c *Context) GetRootDocuments(uri, ptr string) []string {
	return []string{c.ctx.RootURI}
}

// GetPrimaryRoot returns the current project context's root URI.
func (c *Context) GetPrimaryRoot(uri, ptr string) string {
	return c.ctx.RootURI
}

// GetScopeContext finds the nearest enclosing path, operation or schema component for ptr within uri, by
// scanning the project index for the longest-prefix-matching ref (spec.md S4.5.1).
func (c *Context) GetScopeContext(uri, ptr string) *ScopeInfo {
	idx := c.ctx.Index
	best := ""
	var info ScopeInfo
	found := false

	consider := func(candidatePtr string, apply func()) {
		if candidatePtr == ptr || (strings.HasPrefix(ptr, candidatePtr+"/")) {
			if len(candidatePtr) > len(best) {
				best = candidatePtr
				apply()
				found = true
			}
		}
	}

	for pair := idx.PathsByString.First(); pair != nil; pair = pair.Next() {
		for _, r := range pair.Value() {
			if r.URI != uri {
				continue
			}
			consider(r.Ptr, func() { info = ScopeInfo{Path: r.Path} })
		}
	}
	for _, ops := range idx.OperationsByOwner {
		for _, r := range ops {
			if r.URI != uri {
				continue
			}
			consider(r.Ptr, func() { info = ScopeInfo{Path: r.Path, Method: r.Method, OperationID: r.OperationID} })
		}
	}
	for pair := idx.Components[project.ComponentSchemas].First(); pair != nil; pair = pair.Next() {
		r := pair.Value()
		if r.URI != uri {
			continue
		}
		consider(r.Ptr, func() { info = ScopeInfo{ComponentKind: r.ComponentKind, ComponentName: r.Name} })
	}
	if !found {
		return nil
	}
	return &info
}

// GetChildSchemas returns every schema ref whose Parent is ref.
func (c *Context) GetChildSchemas(ref *project.Ref) []*project.Ref {
	var out []*project.Ref
	for _, r := range c.ctx.Index.Schemas {
		if r.Parent == ref {
			out = append(out, r)
		}
	}
	return out
}

// GetPropertySchema returns ref's "properties.<name>" child schema, or nil.
func (c *Context) GetPropertySchema(ref *project.Ref, name string) *project.Ref {
	for _, r := range c.GetChildSchemas(ref) {
		if r.Location == project.SchemaLocationProperties && r.PropertyName == name {
			return r
		}
	}
	return nil
}

// GetItemsSchema returns ref's "items" child schema, or nil.
func (c *Context) GetItemsSchema(ref *project.Ref) *project.Ref {
	for _, r := range c.GetChildSchemas(ref) {
		if r.Location == project.SchemaLocationItems {
			return r
		}
	}
	return nil
}

// GetRequiredProperties returns ref's own "required" array.
func (c *Context) GetRequiredProperties(ref *project.Ref) []string {
	return project.RequiredProperties(ref.Node)
}

// checkFields runs one visitor kind's declarative FieldRules against node (spec.md S4.5's
// "absent" rule: undefined, empty-after-trim string, or empty array; null and zero values are
// present).
func (c *Context) checkFields(fields []FieldRule, node *ir.Node) {
	for _, fr := range fields {
		child := node.Child(fr.Field)
		if ir.IsAbsent(child) {
			doc := c.doc(c.current)
			rng, precision := span.Zero, diagnostic.PrecisionFallback
			if doc != nil {
				if node.Loc.HasKey() {
					rng, precision = doc.OffsetToRange(node.Loc.KeyStart, node.Loc.KeyEnd), diagnostic.PrecisionParent
				} else {
					rng, precision = doc.OffsetToRange(node.Loc.ValStart, node.Loc.ValEnd), diagnostic.PrecisionFallback
				}
			}
			c.Report(diagnostic.Diagnostic{
				Message: fr.Message, URI: c.current, Range: rng,
				Severity: fr.Severity, RangePrecision: precision,
			})
		}
	}
}

// GenericContext is the reduced-context RuleContext variant defineGenericRule's callbacks
// receive (spec.md S6): no project index, no ref graph, just one file.
type GenericContext struct {
	URI     string
	Root    *ir.Node
	RawText []byte

	doc         *document.Document
	diagnostics []diagnostic.Diagnostic
	fixes       []diagnostic.FilePatch
	ruleID      string
	ruleNumber  int
}

func newGenericContext(rule *GenericRule, doc *document.Document) *GenericContext {
	return &GenericContext{
		URI: doc.URI, Root: doc.Root, RawText: doc.RawText,
		doc: doc, ruleID: rule.Meta.ID, ruleNumber: rule.Meta.Number,
	}
}

// Report appends d with its code/source filled in, same convention as Context.Report.
func (g *GenericContext) Report(d diagnostic.Diagnostic) {
	d.Code = diagnostic.RuleCode(g.ruleNumber, g.ruleID)
	d.Source = "telescope"
	d.URI = g.URI
	if d.Severity == 0 {
		d.Severity = diagnostic.SeverityError
	}
	g.diagnostics = append(g.diagnostics, d)
}

// Fix appends one or more FilePatches.
func (g *GenericContext) Fix(patches ...diagnostic.FilePatch) { g.fixes = append(g.fixes, patches...) }

// OffsetToRange translates a byte-offset pair using this file's cached line offsets.
func (g *GenericContext) OffsetToRange(start, end int) span.Range {
	return g.doc.OffsetToRange(start, end)
}

// Diagnostics returns everything reported so far.
func (g *GenericContext) Diagnostics() []diagnostic.Diagnostic { return g.diagnostics }

// Fixes returns every FilePatch collected so far.
func (g *GenericContext) Fixes() []diagnostic.FilePatch { return g.fixes }

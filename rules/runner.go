// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package rules

import (
	"log/slog"
	"sort"

	"github.com/pb33f/telescope-core/cancel"
	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/document"
	"github.com/pb33f/telescope-core/ir"
	"github.com/pb33f/telescope-core/lintcontext"
	"github.com/pb33f/telescope-core/project"
)

// RunOptions configures one Run call.
type RunOptions struct {
	Token  *cancel.Token
	Logger *slog.Logger
}

func (o RunOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Run implements spec.md S4.5's dispatch engine: it walks a ProjectContext's documents and
// aggregated index in the order §4.4/§4.5 specify, invoking every rule's matching visitor (plus
// its declarative field checks) and collecting diagnostics and fixes. One rule panicking never
// stops the others (spec.md S9's dispatch-robustness design note) - the runner recovers at each
// visitor invocation and logs the failure instead.
func Run(rs []*Rule, pc *lintcontext.ProjectContext, opts RunOptions) ([]diagnostic.Diagnostic, []diagnostic.FilePatch) {
	log := opts.logger()
	instances := make([]*ruleInstance, len(rs))
	for i, r := range rs {
		instances[i] = &ruleInstance{rule: r, state: r.newState()}
	}

	uris := make([]string, 0, len(pc.Docs))
	for u := range pc.Docs {
		uris = append(uris, u)
	}
	sort.Strings(uris)

	var loaderDiagnostics []diagnostic.Diagnostic
	for _, uri := range uris {
		if opts.Token.Cancelled() {
			return finish(loaderDiagnostics, instances)
		}
		doc := pc.Docs[uri]
		if doc == nil {
			continue
		}
		loaderDiagnostics = append(loaderDiagnostics, doc.Diagnostics()...)
		if doc.Root == nil {
			continue
		}

		for _, inst := range instances {
			ctx := newContext(inst.rule, inst.state, pc)
			ctx.current = uri
			dispatchSafe(log, inst.rule, VisitDocument, ctx, doc.Root)
			inst.diagnostics = append(inst.diagnostics, ctx.diagnostics...)
			inst.fixes = append(inst.fixes, ctx.fixes...)
		}

		if root := doc.Root.Child("openapi"); root != nil || doc.Root.Child("swagger") != nil {
			for _, inst := range instances {
				ctx := newContext(inst.rule, inst.state, pc)
				ctx.current = uri
				dispatchSafe(log, inst.rule, VisitRoot, ctx, doc.Root)
				if info := doc.Root.Child("info"); info != nil {
					dispatchSafe(log, inst.rule, VisitInfo, ctx, info)
				}
				if tags := doc.Root.Child("tags"); tags != nil {
					for _, tag := range tags.Children {
						dispatchSafe(log, inst.rule, VisitTag, ctx, tag)
					}
				}
				inst.diagnostics = append(inst.diagnostics, ctx.diagnostics...)
				inst.fixes = append(inst.fixes, ctx.fixes...)
			}
		}
	}

	if opts.Token.Cancelled() {
		return finish(loaderDiagnostics, instances)
	}

	idx := pc.Index
	dispatchPathsAndOperations(log, instances, pc, idx)
	dispatchComponents(log, instances, pc, idx)
	dispatchSchemas(log, instances, pc, idx)
	dispatchOtherEntities(log, instances, pc, idx)
	dispatchReferences(log, instances, pc, idx)

	if opts.Token.Cancelled() {
		return finish(loaderDiagnostics, instances)
	}

	for _, inst := range instances {
		ctx := newContext(inst.rule, inst.state, pc)
		dispatchProjectSafe(log, inst.rule, ctx)
		inst.diagnostics = append(inst.diagnostics, ctx.diagnostics...)
		inst.fixes = append(inst.fixes, ctx.fixes...)
	}

	return finish(loaderDiagnostics, instances)
}

// RunGeneric implements the GenericRule half of spec.md S6's defineGenericRule path: a single
// Document visit over the reduced context, with the same panic-isolation guarantee Run gives
// OpenAPI rules.
func RunGeneric(gr *GenericRule, doc *document.Document) ([]diagnostic.Diagnostic, []diagnostic.FilePatch) {
	if doc == nil || doc.Root == nil {
		return nil, nil
	}
	ctx := newGenericContext(gr, doc)
	func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Default().Error("telescope: generic rule panicked during dispatch", "rule", gr.Meta.ID, "panic", r)
			}
		}()
		gr.Check(ctx)
	}()
	return ctx.Diagnostics(), ctx.Fixes()
}

type ruleInstance struct {
	rule        *Rule
	state       any
	diagnostics []diagnostic.Diagnostic
	fixes       []diagnostic.FilePatch
}

func collect(instances []*ruleInstance) ([]diagnostic.Diagnostic, []diagnostic.FilePatch) {
	var diags []diagnostic.Diagnostic
	var fixes []diagnostic.FilePatch
	for _, inst := range instances {
		diags = append(diags, inst.diagnostics...)
		fixes = append(fixes, inst.fixes...)
	}
	return diags, fixes
}

// finish merges the loader-level diagnostics gathered while walking pc.Docs (parse-error and
// duplicate-key, neither of which goes through a rule) in front of whatever the rule instances
// collected themselves.
func finish(loaderDiagnostics []diagnostic.Diagnostic, instances []*ruleInstance) ([]diagnostic.Diagnostic, []diagnostic.FilePatch) {
	diags, fixes := collect(instances)
	return append(loaderDiagnostics, diags...), fixes
}

// dispatchSafe invokes every visitor rule has registered for kind (declarative fields plus
// imperative check), recovering from and logging any panic so other rules still run.
func dispatchSafe(log *slog.Logger, rule *Rule, kind VisitorKind, ctx *Context, node *ir.Node) {
	for _, fn := range rule.visitorsFor(kind, ctx.state) {
		invokeSafe(log, rule, func() { fn(ctx, node) })
	}
}

func dispatchProjectSafe(log *slog.Logger, rule *Rule, ctx *Context) {
	for _, fn := range rule.visitorsFor(VisitProject, ctx.state) {
		invokeSafe(log, rule, func() { fn(ctx, nil) })
	}
}

func invokeSafe(log *slog.Logger, rule *Rule, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("telescope: rule panicked during dispatch", "rule", rule.Meta.ID, "panic", r)
		}
	}()
	fn()
}

// dispatchPathsAndOperations walks PathsByString in the order paths were declared across the
// project's documents, the order the backing orderedmap preserves.
func dispatchPathsAndOperations(log *slog.Logger, instances []*ruleInstance, pc *lintcontext.ProjectContext, idx *project.Index) {
	for pair := idx.PathsByString.First(); pair != nil; pair = pair.Next() {
		for _, pathRef := range pair.Value() {
			for _, inst := range instances {
				ctx := newContext(inst.rule, inst.state, pc)
				ctx.current = pathRef.URI
				dispatchSafe(log, inst.rule, VisitPathItem, ctx, pathRef.Node)
				for _, op := range idx.OperationsByOwner[pathRef.Key()] {
					dispatchSafe(log, inst.rule, VisitOperation, ctx, op.Node)
				}
				inst.diagnostics = append(inst.diagnostics, ctx.diagnostics...)
				inst.fixes = append(inst.fixes, ctx.fixes...)
			}
		}
	}
}

// dispatchComponents walks each kind's orderedmap in declaration order, preserving the source
// document's component ordering instead of an alphabetical resort.
func dispatchComponents(log *slog.Logger, instances []*ruleInstance, pc *lintcontext.ProjectContext, idx *project.Index) {
	for _, kind := range append(append([]project.ComponentKind{}, project.AllComponentKinds...), project.ComponentPathItems) {
		for pair := idx.Components[kind].First(); pair != nil; pair = pair.Next() {
			ref := pair.Value()
			for _, inst := range instances {
				ctx := newContext(inst.rule, inst.state, pc)
				ctx.current = ref.URI
				dispatchSafe(log, inst.rule, VisitComponent, ctx, ref.Node)
				inst.diagnostics = append(inst.diagnostics, ctx.diagnostics...)
				inst.fixes = append(inst.fixes, ctx.fixes...)
			}
		}
	}
}

// dispatchSchemas visits every schema depth-first from its roots, so a rule observes a parent
// before its children (spec.md S4.5 point 5).
func dispatchSchemas(log *slog.Logger, instances []*ruleInstance, pc *lintcontext.ProjectContext, idx *project.Index) {
	childrenOf := map[*project.Ref][]*project.Ref{}
	var roots []*project.Ref
	for _, ref := range idx.Schemas {
		if ref.Parent == nil {
			roots = append(roots, ref)
		} else {
			childrenOf[ref.Parent] = append(childrenOf[ref.Parent], ref)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Key() < roots[j].Key() })
	for _, kids := range childrenOf {
		sort.Slice(kids, func(i, j int) bool { return kids[i].Key() < kids[j].Key() })
	}

	var visit func(ref *project.Ref)
	visit = func(ref *project.Ref) {
		for _, inst := range instances {
			ctx := newContext(inst.rule, inst.state, pc)
			ctx.current = ref.URI
			dispatchSafe(log, inst.rule, VisitSchema, ctx, ref.Node)
			inst.diagnostics = append(inst.diagnostics, ctx.diagnostics...)
			inst.fixes = append(inst.fixes, ctx.fixes...)
		}
		for _, child := range childrenOf[ref] {
			visit(child)
		}
	}
	for _, root := range roots {
		visit(root)
	}
}

func dispatchOtherEntities(log *slog.Logger, instances []*ruleInstance, pc *lintcontext.ProjectContext, idx *project.Index) {
	groups := []struct {
		kind VisitorKind
		refs map[string]*project.Ref
	}{
		{VisitParameter, idx.Parameters},
		{VisitResponse, idx.Responses},
		{VisitRequestBody, idx.RequestBodies},
		{VisitHeader, idx.Headers},
		{VisitMediaType, idx.MediaTypes},
		{VisitSecurityRequirement, idx.SecurityRequirements},
		{VisitExample, idx.Examples},
		{VisitLink, idx.Links},
		{VisitCallback, idx.Callbacks},
	}
	for _, g := range groups {
		for _, ref := range sortedRefs(g.refs) {
			for _, inst := range instances {
				ctx := newContext(inst.rule, inst.state, pc)
				ctx.current = ref.URI
				dispatchSafe(log, inst.rule, g.kind, ctx, ref.Node)
				inst.diagnostics = append(inst.diagnostics, ctx.diagnostics...)
				inst.fixes = append(inst.fixes, ctx.fixes...)
			}
		}
	}
}

func dispatchReferences(log *slog.Logger, instances []*ruleInstance, pc *lintcontext.ProjectContext, idx *project.Index) {
	for _, ref := range sortedRefs(idx.References) {
		for _, inst := range instances {
			ctx := newContext(inst.rule, inst.state, pc)
			ctx.current = ref.URI
			dispatchSafe(log, inst.rule, VisitReference, ctx, ref.Node)
			inst.diagnostics = append(inst.diagnostics, ctx.diagnostics...)
			inst.fixes = append(inst.fixes, ctx.fixes...)
		}
	}
}

func sortedRefs(m map[string]*project.Ref) []*project.Ref {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*project.Ref, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package lintcontext implements spec.md S4.3: root discovery, reverse-ref traversal to find
// the roots that own a partial, per-root ProjectContext construction, and the two caches
// (document-type, project-context) that make repeated resolution cheap.
package lintcontext

import (
	"log/slog"
	"sort"

	"github.com/pb33f/telescope-core/document"
	"github.com/pb33f/telescope-core/host"
	"github.com/pb33f/telescope-core/project"
	"github.com/pb33f/telescope-core/refgraph"
)

// Mode is which of the three linting strategies spec.md S3/S4.3.3 apply to a given uri.
type Mode string

const (
	ModeProjectAware Mode = "project-aware"
	ModeMultiRoot    Mode = "multi-root"
	ModeFragment     Mode = "fragment"
)

// ProjectContext couples one root document with every document it transitively references:
// the doc map, the ref graph built over it, and the aggregated project index (spec.md S3).
type ProjectContext struct {
	RootURI string
	Docs    map[string]*document.Document // uri -> parsed document
	Graph   *refgraph.Graph
	Index   *project.Index
}

// MultiRootContext pairs one root's ProjectContext with the document set considered "current"
// for it (the root's own members, plus the injected partial - spec.md S4.3.3).
type MultiRootContext struct {
	RootURI string
	Context *ProjectContext
	URIs    []string
}

// LintingContext is the output of the context resolver (spec.md S3): which mode applies to
// the uri under validation, and the project context(s) that go with it.
type LintingContext struct {
	Mode              Mode
	URIs              []string
	RootURIs          []string
	Context           *ProjectContext
	MultiRootContexts []MultiRootContext
}

// Caches are the two process-wide, single-writer caches spec.md S4.3.5/S5 describe. They
// must be supplied by the caller so lifecycles are explicit (design note in spec.md S9).
type Caches struct {
	DocType *document.Cache
	Project *ProjectCache
}

// NewCaches creates an empty, ready-to-use Caches value.
func NewCaches() *Caches {
	return &Caches{DocType: document.NewCache(), Project: NewProjectCache()}
}

// ResolveOptions configures a single ResolveLintingContext call.
type ResolveOptions struct {
	// WorkspaceFolders is accepted but not consulted: root discovery always globs the host's
	// whole workspace.
	WorkspaceFolders []string
	// Entrypoints are user-supplied root URIs validated through the document-type cache in
	// addition to whatever the glob discovers (spec.md S4.3.1).
	Entrypoints []string
	// Caches holds the caches to use across calls; when nil, ResolveLintingContext creates a
	// fresh set with NewCaches() for that one call.
	Caches *Caches
	// JSONC enables lenient (comments/trailing-comma) JSON parsing (spec.md S4.1).
	JSONC bool
	// Logger receives the non-fatal conditions spec.md S4.3.4/S7 call out as "logged but not
	// fatal". Defaults to slog.Default() if nil.
	Logger *slog.Logger
}

func (o *ResolveOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// ResolveLintingContext implements spec.md S4.3.3's mode-selection table end to end: it
// classifies uri, discovers roots when needed, and builds (or reuses, via Caches.Project)
// whatever ProjectContext(s) the mode calls for.
func ResolveLintingContext(uri string, h host.Host, opts ResolveOptions) (*LintingContext, error) {
	if opts.Caches == nil {
		opts.Caches = NewCaches()
	}
	log := opts.logger()

	entry, err := opts.Caches.DocType.Get(h, uri, opts.JSONC)
	if err != nil || entry.Type == document.TypeUnknown {
		// Context failure (S7): document classified unknown, or loader/host failed on the
		// primary uri. Fall back to fragment mode with no OpenAPI diagnostics for this uri;
		// entry.Doc is nil when the host read itself failed, so GenericRules still get a
		// document to run against whenever the failure was classification, not I/O.
		return fragmentContext(uri, entry.Doc), nil
	}

	if entry.Type == document.TypeRoot {
		ctx, buildErr := BuildProjectContext(uri, h, opts.Caches, opts.JSONC, log)
		if buildErr != nil {
			return fragmentContext(uri, entry.Doc), nil
		}
		return &LintingContext{
			Mode: ModeProjectAware, URIs: uriList(ctx.Docs), RootURIs: []string{uri}, Context: ctx,
		}, nil
	}

	// Partial: discover roots, then reverse-traverse to find which ones own it.
	roots, err := DiscoverRoots(h, opts.Caches.DocType, opts.Entrypoints, opts.JSONC)
	if err != nil {
		log.Warn("telescope: root discovery failed", "error", err)
	}
	owningRoots, err := FindRootsForPartial(uri, h, opts.Caches.DocType, roots, opts.JSONC)
	if err != nil {
		log.Warn("telescope: reverse root traversal failed", "uri", uri, "error", err)
	}

	switch len(owningRoots) {
	case 0:
		return fragmentContext(uri, entry.Doc), nil
	case 1:
		ctx, buildErr := BuildProjectContext(owningRoots[0], h, opts.Caches, opts.JSONC, log)
		if buildErr != nil {
			return fragmentContext(uri, entry.Doc), nil
		}
		injectPartial(ctx, uri, h, opts.Caches.DocType, opts.JSONC, log)
		return &LintingContext{
			Mode: ModeProjectAware, URIs: uriList(ctx.Docs),
			RootURIs: []string{owningRoots[0]}, Context: ctx,
		}, nil
	default:
		var multi []MultiRootContext
		var all []string
		for _, root := range owningRoots {
			ctx, buildErr := BuildProjectContext(root, h, opts.Caches, opts.JSONC, log)
			if buildErr != nil {
				continue
			}
			injectPartial(ctx, uri, h, opts.Caches.DocType, opts.JSONC, log)
			us := uriList(ctx.Docs)
			multi = append(multi, MultiRootContext{RootURI: root, Context: ctx, URIs: us})
			all = append(all, us...)
		}
		return &LintingContext{
			Mode: ModeMultiRoot, URIs: dedupeSorted(all),
			RootURIs: owningRoots, MultiRootContexts: multi,
		}, nil
	}
}

// fragmentContext builds the ModeFragment result: no ref graph or project index, just whatever
// single document parsed successfully, so GenericRules still have something to run against
// (spec.md S6's reduced-context path). doc is nil when the host read itself failed.
func fragmentContext(uri string, doc *document.Document) *LintingContext {
	lc := &LintingContext{Mode: ModeFragment, URIs: []string{uri}}
	if doc != nil {
		lc.Context = &ProjectContext{RootURI: uri, Docs: map[string]*document.Document{uri: doc}}
	}
	return lc
}

func injectPartial(ctx *ProjectContext, uri string, h host.Host, cache *document.Cache, jsonc bool, log *slog.Logger) {
	if _, ok := ctx.Docs[uri]; ok {
		return
	}
	entry, err := cache.Get(h, uri, jsonc)
	if err != nil {
		log.Warn("telescope: failed to load partial for injection", "uri", uri, "error", err)
		return
	}
	ctx.Docs[uri] = entry.Doc
	ctx.Index = project.Build(ctx.Docs, ctx.Graph)
}

func uriList(docs map[string]*document.Document) []string {
	out := make([]string, 0, len(docs))
	for u := range docs {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

func dedupeSorted(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

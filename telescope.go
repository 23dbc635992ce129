// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package telescope is the engine's root package: the four entry points spec.md S6 describes
// (resolveLintingContext, lintDocument, defineRule, defineGenericRule), thinly wrapping the
// lintcontext and rules packages so a host only ever needs one import.
package telescope

import (
	"log/slog"

	"github.com/pb33f/telescope-core/cancel"
	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/host"
	"github.com/pb33f/telescope-core/lintcontext"
	"github.com/pb33f/telescope-core/rules"
	"github.com/pb33f/telescope-core/rules/builtin"
)

// Re-exported so a host never has to import lintcontext directly for the common path.
type (
	Mode               = lintcontext.Mode
	LintingContext      = lintcontext.LintingContext
	ProjectContext      = lintcontext.ProjectContext
	MultiRootContext    = lintcontext.MultiRootContext
	Caches              = lintcontext.Caches
	ResolveOptions      = lintcontext.ResolveOptions
)

const (
	ModeProjectAware = lintcontext.ModeProjectAware
	ModeMultiRoot    = lintcontext.ModeMultiRoot
	ModeFragment     = lintcontext.ModeFragment
)

// NewCaches creates an empty, ready-to-use Caches value (re-exported from lintcontext).
func NewCaches() *Caches { return lintcontext.NewCaches() }

// ResolveLintingContext implements spec.md S6's resolveLintingContext entry point.
func ResolveLintingContext(uri string, h host.Host, opts ResolveOptions) (*LintingContext, error) {
	return lintcontext.ResolveLintingContext(uri, h, opts)
}

// DefineRule canonicalizes a rule spec (spec.md S6's defineRule).
func DefineRule(spec rules.Spec) *rules.Rule { return rules.Define(spec) }

// DefineGenericRule canonicalizes a reduced-context rule spec for non-OpenAPI YAML/JSON files
// (spec.md S6's defineGenericRule).
func DefineGenericRule(meta rules.Meta, check func(ctx *rules.GenericContext)) *rules.GenericRule {
	return rules.DefineGeneric(meta, check)
}

// DefaultRules is the recommended preset lintDocument falls back to when its rules argument is
// omitted (spec.md S6: "applies the rule list (or the recommended preset)").
var DefaultRules = builtin.All

// LintOptions configures a single LintDocument call.
type LintOptions struct {
	// Rules is the materialized rule list to run; nil means DefaultRules.
	Rules []*rules.Rule
	// GenericRules is consulted only in ModeFragment, where a primary document can't be
	// classified as OpenAPI (spec.md S6's "non-OpenAPI YAML/JSON files" variant).
	GenericRules []*rules.GenericRule
	// Token lets a caller cancel a long-running lint pass between dispatch phases.
	Token *cancel.Token
	// Logger receives rule-panic and other non-fatal diagnostics; defaults to slog.Default().
	Logger *slog.Logger
}

// LintDocument implements spec.md S6's lintDocument entry point: it applies the rule list (or
// the recommended preset) to every ProjectContext lc describes, merging their diagnostics and
// fixes, and handles ModeFragment's reduced GenericRule path per spec.md S7's context-failure
// fallback (no OpenAPI rules run against an unclassifiable document).
func LintDocument(lc *LintingContext, h host.Host, opts LintOptions) ([]diagnostic.Diagnostic, []diagnostic.FilePatch) {
	rs := opts.Rules
	if rs == nil {
		rs = DefaultRules
	}
	runOpts := rules.RunOptions{Token: opts.Token, Logger: opts.Logger}

	var diagnostics []diagnostic.Diagnostic
	var fixes []diagnostic.FilePatch

	switch lc.Mode {
	case ModeFragment:
		return lintFragment(lc, opts)

	case ModeMultiRoot:
		for _, mrc := range lc.MultiRootContexts {
			d, f := rules.Run(rs, mrc.Context, runOpts)
			diagnostics = append(diagnostics, d...)
			fixes = append(fixes, f...)
		}
		return diagnostics, fixes

	default: // ModeProjectAware
		if lc.Context == nil {
			return nil, nil
		}
		return rules.Run(rs, lc.Context, runOpts)
	}
}

// lintFragment runs GenericRules against the single unclassifiable document ModeFragment
// carries, per spec.md S6's defineGenericRule reduced context and S7's context-failure
// fallback ("produce no diagnostics" for OpenAPI-shaped rules - only generic rules apply).
func lintFragment(lc *LintingContext, opts LintOptions) ([]diagnostic.Diagnostic, []diagnostic.FilePatch) {
	if lc.Context == nil {
		return nil, nil
	}
	var diagnostics []diagnostic.Diagnostic
	var fixes []diagnostic.FilePatch
	for _, uri := range lc.URIs {
		doc, ok := lc.Context.Docs[uri]
		if !ok || doc == nil {
			continue
		}
		// parse-error/duplicate-key are loader-level (spec.md S4.1/S7) and surface even when a
		// document's shape can't be classified as OpenAPI at all - unlike every other
		// diagnostic, which needs a rule to produce it.
		diagnostics = append(diagnostics, doc.Diagnostics()...)
		for _, gr := range opts.GenericRules {
			diags, patches := rules.RunGeneric(gr, doc)
			diagnostics = append(diagnostics, diags...)
			fixes = append(fixes, patches...)
		}
	}
	return diagnostics, fixes
}

// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package rules implements spec.md S4.5: the rule shape, declarative field validators, the
// visitor dispatch runner, the fix builder, and the JSON-Schema-backed validator translator.
package rules

import (
	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/ir"
)

// Type is a rule's classification, mirroring ESLint-style rule typing so presets can group by
// intent rather than just severity.
type Type string

const (
	TypeProblem    Type = "problem"
	TypeSuggestion Type = "suggestion"
	TypeLayout     Type = "layout"
)

// Scope records whether a rule's Project visitor needs the full aggregated index or could run
// per-file (spec.md S4.5's rule meta `scope`). The runner does not consult it: every Project
// visitor receives the full aggregated index.
type Scope string

const (
	ScopeSingleFile Scope = "single-file"
	ScopeCrossFile  Scope = "cross-file"
)

// Meta is a rule's identity and presentation metadata (spec.md S4.5).
type Meta struct {
	ID              string
	Number          int
	Type            Type
	DefaultSeverity diagnostic.Severity
	URL             string
	Description     string
	FileFormats     []string // empty means "any format"; the runner does not filter on it
	Scope           Scope    // zero value stands for ScopeSingleFile
}

// FieldRule is one declarative field requirement spec.md S4.5 describes: "field missing" fires
// Message at Severity. The Required, Suggested and Recommended constructors below set Severity
// to error, warning and info respectively.
type FieldRule struct {
	Field    string
	Message  string
	Severity diagnostic.Severity
}

// Required builds a FieldRule reported at error severity, for spec.md S4.5's `required` tier.
func Required(field, message string) FieldRule {
	return FieldRule{Field: field, Message: message, Severity: diagnostic.SeverityError}
}

// Suggested builds a FieldRule reported at warning severity.
func Suggested(field, message string) FieldRule {
	return FieldRule{Field: field, Message: message, Severity: diagnostic.SeverityWarning}
}

// Recommended builds a FieldRule reported at info severity.
func Recommended(field, message string) FieldRule {
	return FieldRule{Field: field, Message: message, Severity: diagnostic.SeverityInfo}
}

// VisitorKind names one of the entity kinds the runner dispatches to (spec.md S4.5).
type VisitorKind string

const (
	VisitDocument            VisitorKind = "Document"
	VisitRoot                VisitorKind = "Root"
	VisitInfo                VisitorKind = "Info"
	VisitTag                 VisitorKind = "Tag"
	VisitPathItem            VisitorKind = "PathItem"
	VisitOperation           VisitorKind = "Operation"
	VisitComponent           VisitorKind = "Component"
	VisitSchema              VisitorKind = "Schema"
	VisitParameter           VisitorKind = "Parameter"
	VisitResponse            VisitorKind = "Response"
	VisitRequestBody         VisitorKind = "RequestBody"
	VisitHeader              VisitorKind = "Header"
	VisitMediaType           VisitorKind = "MediaType"
	VisitSecurityRequirement VisitorKind = "SecurityRequirement"
	VisitExample             VisitorKind = "Example"
	VisitLink                VisitorKind = "Link"
	VisitCallback            VisitorKind = "Callback"
	VisitReference           VisitorKind = "Reference"
	VisitProject             VisitorKind = "Project"
)

// VisitorFunc is one callback a rule supplies for a given VisitorKind. node is the IR node the
// visited atom points at (nil for VisitProject, which instead uses ctx.Index()).
type VisitorFunc func(ctx *Context, node *ir.Node)

// Visitors maps entity kind to callback; returned by Check and merged with the rule's
// declarative Fields (spec.md S9's open question: both fire for the same field/kind).
type Visitors map[VisitorKind]VisitorFunc

// Spec is the declarative description passed to Define: everything needed to build a Rule.
type Spec struct {
	Meta   Meta
	Fields map[VisitorKind][]FieldRule
	State  func() any
	Check  func(state any) Visitors
}

// Rule is a fully constructed, runnable rule (spec.md S4.5).
type Rule struct {
	Meta   Meta
	fields map[VisitorKind][]FieldRule
	state  func() any
	check  func(state any) Visitors
}

// Define canonicalizes a Spec into a Rule (spec.md S6's defineRule entry point).
func Define(s Spec) *Rule {
	return &Rule{Meta: s.Meta, fields: s.Fields, state: s.State, check: s.Check}
}

// GenericRule is the reduced-context variant for non-OpenAPI YAML/JSON files (spec.md S6's
// defineGenericRule). It only ever receives the Document visitor.
type GenericRule struct {
	Meta  Meta
	Check func(ctx *GenericContext)
}

// DefineGeneric canonicalizes a generic-rule spec (spec.md S6's defineGenericRule).
func DefineGeneric(meta Meta, check func(ctx *GenericContext)) *GenericRule {
	return &GenericRule{Meta: meta, Check: check}
}

// newState calls the rule's state factory once per run, or returns nil when it has none.
func (r *Rule) newState() any {
	if r.state == nil {
		return nil
	}
	return r.state()
}

// visitorsFor merges this rule's declarative Fields for kind with whatever imperative Visitors
// its Check callback returned for kind, so both fire (spec.md S9's resolved open question).
func (r *Rule) visitorsFor(kind VisitorKind, state any) []VisitorFunc {
	var out []VisitorFunc
	if fields := r.fields[kind]; len(fields) > 0 {
		fr := fields
		out = append(out, func(ctx *Context, node *ir.Node) {
			ctx.checkFields(fr, node)
		})
	}
	if r.check != nil {
		visitors := r.check(state)
		if fn, ok := visitors[kind]; ok {
			out = append(out, fn)
		}
	}
	return out
}

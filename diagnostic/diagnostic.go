// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package diagnostic defines the Diagnostic and FilePatch shapes spec.md S3/S6 describe, plus
// their conversion to and from LSP's protocol_3_16 types. Everything upstream of this package
// (the rule runner) works in these domain types; only a transport layer converts at the edge.
package diagnostic

import (
	"fmt"

	"github.com/pb33f/telescope-core/ir/span"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Severity mirrors LSP's DiagnosticSeverity ordering (error is most severe, numerically least).
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInfo
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "error"
	}
}

// ParseSeverity converts the string form rule authors write ("error"|"warning"|"info"|"hint")
// into a Severity, defaulting to SeverityError on an unrecognized value.
func ParseSeverity(s string) Severity {
	switch s {
	case "warning":
		return SeverityWarning
	case "info":
		return SeverityInfo
	case "hint":
		return SeverityHint
	default:
		return SeverityError
	}
}

// RangePrecision records which fallback tier of spec.md S4.5.1's range-resolution ladder a
// diagnostic's range actually came from, so a rule author (or a test) can tell an exact hit
// from a degraded one without re-deriving it.
type RangePrecision string

const (
	PrecisionExact      RangePrecision = "exact"
	PrecisionKey        RangePrecision = "key"
	PrecisionParent     RangePrecision = "parent"
	PrecisionFirstChild RangePrecision = "firstChild"
	PrecisionFallback   RangePrecision = "fallback"
)

// RelatedInformation mirrors LSP's DiagnosticRelatedInformation: a secondary location a
// diagnostic wants to point a reader at (e.g. the other occurrence of a duplicate key).
type RelatedInformation struct {
	URI     string
	Range   span.Range
	Message string
}

// CodeDescription is the href a diagnostic's code links out to, usually the owning rule's
// documentation URL.
type CodeDescription struct {
	Href string
}

// Suggestion is one labeled fix offer attached to a Diagnostic (spec.md S3's `suggest` field).
// Fix may hold more than one FilePatch when a single suggestion must touch multiple documents.
type Suggestion struct {
	Title string
	Fix   []FilePatch
}

// Diagnostic is the engine's sole reporting unit (spec.md S3). Document-level error conditions
// - parse failures, duplicate keys, unresolved refs, schema compilation failures - are reported
// as one of these, never returned to a caller as a Go error. A rule that panics is logged by
// the runner rather than reported as a Diagnostic.
type Diagnostic struct {
	Code               string
	Message            string
	URI                string
	Range              span.Range
	Severity           Severity
	Source             string
	CodeDescription    *CodeDescription
	RelatedInformation []RelatedInformation
	RangePrecision     RangePrecision
	Suggest            []Suggestion
}

// RuleCode formats spec.md S6's diagnostic-code convention: "rule-<number>-<id>".
func RuleCode(number int, id string) string {
	return fmt.Sprintf("rule-%d-%s", number, id)
}

// ToLSP converts d into glsp's wire Diagnostic, the one conversion point spec.md S1 carves out
// as belonging to a transport layer rather than the core.
func (d Diagnostic) ToLSP() protocol.Diagnostic {
	sev := protocol.DiagnosticSeverity(d.Severity)
	code := protocol.IntegerOrString{Value: d.Code}
	source := d.Source
	out := protocol.Diagnostic{
		Range:    d.Range,
		Severity: &sev,
		Code:     &code,
		Source:   &source,
		Message:  d.Message,
	}
	if d.CodeDescription != nil {
		out.CodeDescription = &protocol.CodeDescription{Href: protocol.URI(d.CodeDescription.Href)}
	}
	for _, ri := range d.RelatedInformation {
		out.RelatedInformation = append(out.RelatedInformation, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{URI: protocol.DocumentUri(ri.URI), Range: ri.Range},
			Message:  ri.Message,
		})
	}
	return out
}

// FromLSP builds a Diagnostic back from glsp's wire type, filling in uri since protocol.Diagnostic
// itself carries none (it is always implicitly scoped to the containing publishDiagnostics URI).
func FromLSP(uri string, d protocol.Diagnostic) Diagnostic {
	out := Diagnostic{Message: d.Message, URI: uri, Range: d.Range, Severity: SeverityError}
	if d.Severity != nil {
		out.Severity = Severity(*d.Severity)
	}
	if d.Code != nil {
		if s, ok := d.Code.Value.(string); ok {
			out.Code = s
		}
	}
	if d.Source != nil {
		out.Source = *d.Source
	}
	if d.CodeDescription != nil {
		out.CodeDescription = &CodeDescription{Href: string(d.CodeDescription.Href)}
	}
	for _, ri := range d.RelatedInformation {
		out.RelatedInformation = append(out.RelatedInformation, RelatedInformation{
			URI: string(ri.Location.URI), Range: ri.Location.Range, Message: ri.Message,
		})
	}
	return out
}

// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package document

import (
	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/ir/span"
)

// Diagnostics converts the loader-level failures a Document records - a parse error, or any
// duplicate mapping keys found while building the IR - into the engine's Diagnostic shape
// (spec.md S4.1/S7, SPEC_FULL.md S12). These never go through rule dispatch: they are surfaced
// whether or not the document could be classified as OpenAPI, unlike every other diagnostic the
// engine produces.
func (d *Document) Diagnostics() []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	if d.ParseError != nil {
		out = append(out, diagnostic.Diagnostic{
			Code:           "parse-error",
			Message:        d.ParseError.Message,
			URI:            d.URI,
			Range:          d.parseErrorRange(),
			Severity:       diagnostic.SeverityError,
			RangePrecision: diagnostic.PrecisionExact,
		})
	}
	for _, dup := range d.DuplicateKeys {
		start := d.offsetForLineCol(dup.Line, dup.Column)
		out = append(out, diagnostic.Diagnostic{
			Code:           "duplicate-key",
			Message:        "duplicate key \"" + dup.Key + "\" in mapping",
			URI:            d.URI,
			Range:          d.OffsetToRange(start, start+len(dup.Key)),
			Severity:       diagnostic.SeverityWarning,
			RangePrecision: diagnostic.PrecisionExact,
		})
	}
	return out
}

// parseErrorRange resolves ParseError's (line, column) to a span.Range, falling back to 0:0
// (spec.md S7's "else 0:0") when the underlying parser gave no usable position.
func (d *Document) parseErrorRange() span.Range {
	if d.ParseError.Line == 0 {
		return span.Zero
	}
	start := d.offsetForLineCol(d.ParseError.Line, d.ParseError.Column)
	return d.OffsetToRange(start, start)
}

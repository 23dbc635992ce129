// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package builtin

import (
	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/ir"
	"github.com/pb33f/telescope-core/rules"
)

// ExampleMatchesFormat supplements spec.md S8's scenario set: a schema's literal "example" value
// should itself satisfy "format" (uuid, hostname, idn-hostname), the same formats the teacher's
// renderer knows how to generate example data for. It checks only the format, through
// rules.FormatWithFix, so each failure carries a replacement fix; ExampleMatchesSchema separately
// validates the example against its whole schema through rules/schemavalidate.
var ExampleMatchesFormat = rules.Define(rules.Spec{
	Meta: rules.Meta{
		ID: "example-matches-format", Number: 424, Type: rules.TypeSuggestion,
		DefaultSeverity: diagnostic.SeverityWarning,
		Description:     "a schema's example value should satisfy its own format",
	},
	Check: func(state any) rules.Visitors {
		return rules.Visitors{
			rules.VisitSchema: func(ctx *rules.Context, node *ir.Node) {
				formatNode := node.Child("format")
				exampleNode := node.Child("example")
				if formatNode == nil || exampleNode == nil {
					return
				}
				format, _ := formatNode.Value.(string)
				value, isString := exampleNode.Value.(string)
				if format == "" || !isString {
					return
				}
				uri := ctx.CurrentURI()
				result := rules.FormatWithFix(uri, node.Ptr, "example", value, format)
				if result.Valid {
					return
				}
				rng, precision := ctx.RangeForField(uri, node, []string{"example"}, false)
				d := diagnostic.Diagnostic{
					Message: "example value does not satisfy format: " + format,
					URI:     uri, Range: rng, RangePrecision: precision,
				}
				if result.Fix != nil {
					d.Suggest = []diagnostic.Suggestion{{
						Title: "replace example with a value matching format " + format,
						Fix:   []diagnostic.FilePatch{*result.Fix},
					}}
					ctx.Fix(*result.Fix)
				}
				ctx.Report(d)
			},
		}
	},
})

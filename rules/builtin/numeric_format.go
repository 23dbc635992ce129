// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package builtin

import (
	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/ir"
	"github.com/pb33f/telescope-core/rules"
)

// NumericFormat is spec.md S8 scenario 3: an integer schema should declare format int32 or
// int64; any other (or absent) format is flagged.
var NumericFormat = rules.Define(rules.Spec{
	Meta: rules.Meta{
		ID: "numeric-format", Number: 422, Type: rules.TypeSuggestion,
		DefaultSeverity: diagnostic.SeverityError,
		Description:     "integer schemas should declare format int32 or int64",
	},
	Check: func(state any) rules.Visitors {
		return rules.Visitors{
			rules.VisitSchema: func(ctx *rules.Context, node *ir.Node) {
				typeNode := node.Child("type")
				if typeNode == nil {
					return
				}
				t, _ := typeNode.Value.(string)
				if t != "integer" {
					return
				}
				formatNode := node.Child("format")
				if formatNode == nil {
					ctx.ReportHere(ctx.CurrentURI(), node, rules.ReportOptions{
						Message: "integer schema should declare format int32 or int64",
					})
					return
				}
				format, _ := formatNode.Value.(string)
				if format != "int32" && format != "int64" {
					ctx.ReportAt(ctx.CurrentURI(), node, []string{"format"}, rules.ReportOptions{
						Message: "integer format should be int32 or int64",
					})
				}
			},
		}
	},
})

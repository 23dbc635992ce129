// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package builtin

import (
	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/ir"
	"github.com/pb33f/telescope-core/rules"
)

// OperationIDCamelCase is spec.md S8 scenario 6: operationId should be lowerCamelCase; the
// diagnostic carries an auto-fix suggestion rewriting it.
var OperationIDCamelCase = rules.Define(rules.Spec{
	Meta: rules.Meta{
		ID: "operation-id-camel-case", Number: 423, Type: rules.TypeSuggestion,
		DefaultSeverity: diagnostic.SeverityWarning,
		Description:     "operationId should be lowerCamelCase",
	},
	Check: func(state any) rules.Visitors {
		return rules.Visitors{
			rules.VisitOperation: func(ctx *rules.Context, node *ir.Node) {
				idNode := node.Child("operationId")
				if idNode == nil {
					return
				}
				value, _ := idNode.Value.(string)
				uri := ctx.CurrentURI()
				result := rules.CamelCaseWithFix(uri, node.Ptr, "operationId", value)
				if result.Valid {
					return
				}
				rng, precision := ctx.RangeForField(uri, node, []string{"operationId"}, false)
				d := diagnostic.Diagnostic{
					Message: "operationId should be lowerCamelCase: " + value,
					URI:     uri, Range: rng, RangePrecision: precision,
				}
				if result.Fix != nil {
					d.Suggest = []diagnostic.Suggestion{{
						Title: "rewrite as lowerCamelCase",
						Fix:   []diagnostic.FilePatch{*result.Fix},
					}}
					ctx.Fix(*result.Fix)
				}
				ctx.Report(d)
			},
		}
	},
})

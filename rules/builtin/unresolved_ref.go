// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package builtin

import (
	"fmt"

	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/ir"
	"github.com/pb33f/telescope-core/rules"
)

// UnresolvedRef is spec.md S7/S8 scenario 4: a $ref whose target could not be loaded or
// resolved produces one diagnostic at the $ref value's own range.
var UnresolvedRef = rules.Define(rules.Spec{
	Meta: rules.Meta{
		ID: "unresolved-ref", Number: 1, Type: rules.TypeProblem,
		DefaultSeverity: diagnostic.SeverityError,
		Description:     "a $ref could not be resolved to its target",
	},
	Check: func(state any) rules.Visitors {
		return rules.Visitors{
			rules.VisitReference: func(ctx *rules.Context, node *ir.Node) {
				refNode := node.Child("$ref")
				if refNode == nil {
					return
				}
				uri := ctx.CurrentURI()
				for _, e := range ctx.Graph().EdgesFrom(uri) {
					if e.FromPtr != node.Ptr {
						continue
					}
					if !e.Resolved {
						ctx.ReportRaw(diagnostic.Diagnostic{
							Code:           "unresolved-ref",
							Message:        fmt.Sprintf("could not resolve reference: %s", e.RefString),
							URI:            uri,
							Range:          ctx.OffsetToRange(uri, refNode.Loc.ValStart, refNode.Loc.ValEnd),
							Severity:       diagnostic.SeverityError,
							RangePrecision: diagnostic.PrecisionExact,
						})
					}
					return
				}
			},
		}
	},
})

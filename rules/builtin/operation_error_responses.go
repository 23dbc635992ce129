// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package builtin

import (
	"fmt"
	"strings"

	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/ir"
	"github.com/pb33f/telescope-core/rules"
)

var requiredErrorResponses = []string{"429", "500"}

// OperationErrorResponses is spec.md S8 scenario 2: every operation's responses must at least
// cover rate-limiting (429) and unexpected-server-failure (500).
var OperationErrorResponses = rules.Define(rules.Spec{
	Meta: rules.Meta{
		ID: "operation-error-responses", Number: 421, Type: rules.TypeProblem,
		DefaultSeverity: diagnostic.SeverityError,
		Description:     "operations should document 429 and 500 responses",
	},
	Check: func(state any) rules.Visitors {
		return rules.Visitors{
			rules.VisitOperation: func(ctx *rules.Context, node *ir.Node) {
				responses := node.Child("responses")
				var missing []string
				for _, code := range requiredErrorResponses {
					if responses == nil || responses.Child(code) == nil {
						missing = append(missing, code)
					}
				}
				if len(missing) == 0 {
					return
				}
				message := fmt.Sprintf("operation is missing error responses: %s", strings.Join(missing, ", "))
				ctx.ReportHere(ctx.CurrentURI(), node, rules.ReportOptions{Message: message})
			},
		}
	},
})

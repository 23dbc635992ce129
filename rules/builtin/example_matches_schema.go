// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package builtin

import (
	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/ir"
	"github.com/pb33f/telescope-core/rules"
	"github.com/pb33f/telescope-core/rules/schemavalidate"
)

// ExampleMatchesSchema wires rules/schemavalidate's translator (spec.md S4.5.3) into the
// dispatch engine: a schema's literal "example" should validate against the schema it sits on,
// not just satisfy "format" the way ExampleMatchesFormat checks. One Cache is shared across the
// whole run via Rule state, so repeated identical schemas (the common case - one component
// schema referenced from many operations) compile once.
var ExampleMatchesSchema = rules.Define(rules.Spec{
	Meta: rules.Meta{
		ID: "example-matches-schema", Number: 425, Type: rules.TypeSuggestion,
		DefaultSeverity: diagnostic.SeverityWarning,
		Description:     "a schema's example value should validate against the schema itself",
	},
	State: func() any { return schemavalidate.NewCache() },
	Check: func(state any) rules.Visitors {
		cache := state.(*schemavalidate.Cache)
		return rules.Visitors{
			rules.VisitSchema: func(ctx *rules.Context, node *ir.Node) {
				exampleNode := node.Child("example")
				if exampleNode == nil {
					return
				}
				schemaJSON, err := ir.ToJSON(node)
				if err != nil {
					return
				}
				doc := ctx.CurrentDocument()
				if doc == nil {
					return
				}
				data := ir.ToValue(exampleNode)
				for _, d := range schemavalidate.Validate(cache, schemaJSON, data, doc, node.Ptr+"/example") {
					if d.Code != "" {
						// a literal engine code (schema-compilation-error) - keep it as-is.
						ctx.ReportRaw(d)
						continue
					}
					ctx.Report(d)
				}
			},
		}
	},
})

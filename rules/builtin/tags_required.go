// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package builtin holds a handful of illustrative rules, grounded directly in spec.md S8's
// literal end-to-end scenarios, demonstrating how a rule author uses package rules.
package builtin

import (
	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/rules"
)

// TagsRequired is spec.md S8 scenario 1: every operation must declare at least one tag.
var TagsRequired = rules.Define(rules.Spec{
	Meta: rules.Meta{
		ID: "tags-required", Number: 420, Type: rules.TypeSuggestion,
		DefaultSeverity: diagnostic.SeverityError,
		Description:     "every operation should declare at least one tag",
	},
	Fields: map[rules.VisitorKind][]rules.FieldRule{
		rules.VisitOperation: {
			rules.Required("tags", "operation must declare at least one tag"),
		},
	},
})

// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package builtin

import "github.com/pb33f/telescope-core/rules"

// All is the default rule set a host gets when it doesn't supply its own (spec.md S6's
// LintDocument rules parameter being optional). For each entity it visits, the runner
// dispatches rules in the order of this slice.
var All = []*rules.Rule{
	UnresolvedRef,
	TagsRequired,
	OperationErrorResponses,
	NumericFormat,
	OperationIDCamelCase,
	ExampleMatchesFormat,
	ExampleMatchesSchema,
}

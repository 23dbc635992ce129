// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package diagnostic_test

import (
	"testing"

	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/ir/span"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityStringAndParse(t *testing.T) {
	assert.Equal(t, "error", diagnostic.SeverityError.String())
	assert.Equal(t, "warning", diagnostic.SeverityWarning.String())
	assert.Equal(t, "info", diagnostic.SeverityInfo.String())
	assert.Equal(t, "hint", diagnostic.SeverityHint.String())
	assert.Equal(t, "error", diagnostic.Severity(99).String())

	assert.Equal(t, diagnostic.SeverityWarning, diagnostic.ParseSeverity("warning"))
	assert.Equal(t, diagnostic.SeverityInfo, diagnostic.ParseSeverity("info"))
	assert.Equal(t, diagnostic.SeverityHint, diagnostic.ParseSeverity("hint"))
	assert.Equal(t, diagnostic.SeverityError, diagnostic.ParseSeverity("nonsense"))
}

func TestRuleCode(t *testing.T) {
	assert.Equal(t, "rule-420-tags-required", diagnostic.RuleCode(420, "tags-required"))
}

func TestToLSPRoundTrip(t *testing.T) {
	d := diagnostic.Diagnostic{
		Code:     "rule-1-unresolved-ref",
		Message:  "could not resolve reference",
		URI:      "memory://spec.yaml",
		Range:    span.NewRange(1, 2, 1, 10),
		Severity: diagnostic.SeverityError,
		Source:   "telescope",
		RelatedInformation: []diagnostic.RelatedInformation{
			{URI: "memory://other.yaml", Range: span.NewRange(0, 0, 0, 1), Message: "defined here"},
		},
	}

	wire := d.ToLSP()
	require.NotNil(t, wire.Severity)
	require.NotNil(t, wire.Code)
	assert.Equal(t, "rule-1-unresolved-ref", wire.Code.Value)
	assert.Equal(t, d.Message, wire.Message)
	require.Len(t, wire.RelatedInformation, 1)
	assert.Equal(t, "defined here", wire.RelatedInformation[0].Message)

	back := diagnostic.FromLSP("memory://spec.yaml", wire)
	assert.Equal(t, d.Code, back.Code)
	assert.Equal(t, d.Message, back.Message)
	assert.Equal(t, d.Severity, back.Severity)
	assert.Equal(t, d.Source, back.Source)
	require.Len(t, back.RelatedInformation, 1)
	assert.Equal(t, "memory://other.yaml", back.RelatedInformation[0].URI)
}

func TestFromLSPDefaultsSeverityToError(t *testing.T) {
	back := diagnostic.FromLSP("memory://x.yaml", protocol.Diagnostic{Message: "oops"})
	assert.Equal(t, diagnostic.SeverityError, back.Severity)
	assert.Equal(t, "oops", back.Message)
}

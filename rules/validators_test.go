// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package rules_test

import (
	"testing"

	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredWithFix(t *testing.T) {
	assert.True(t, rules.RequiredWithFix("u", "#", "tags", true, []string{}).Valid)

	result := rules.RequiredWithFix("u", "#", "tags", false, []string{})
	assert.False(t, result.Valid)
	require.NotNil(t, result.Fix)
	assert.Equal(t, diagnostic.OpAdd, result.Fix.Ops[0].Kind)
}

func TestMinLengthWithFixPadsValue(t *testing.T) {
	assert.True(t, rules.MinLengthWithFix("u", "#", "title", "widgets", 3, "").Valid)

	result := rules.MinLengthWithFix("u", "#", "title", "ab", 5, "x")
	assert.False(t, result.Valid)
	require.NotNil(t, result.Fix)
	padded, ok := result.Fix.Ops[0].Value.(string)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len([]rune(padded)), 5)
}

func TestOneOfWithFixFallsBackToFirstAllowed(t *testing.T) {
	assert.True(t, rules.OneOfWithFix("u", "#", "in", "query", []string{"query", "header"}, "").Valid)

	result := rules.OneOfWithFix("u", "#", "in", "nonsense", []string{"query", "header"}, "")
	assert.False(t, result.Valid)
	require.NotNil(t, result.Fix)
	assert.Equal(t, "query", result.Fix.Ops[0].Value)
}

func TestCamelCaseWithFix(t *testing.T) {
	assert.True(t, rules.CamelCaseWithFix("u", "#", "operationId", "listWidgets").Valid)

	result := rules.CamelCaseWithFix("u", "#", "operationId", "list_widgets")
	assert.False(t, result.Valid)
	require.NotNil(t, result.Fix)
	assert.Equal(t, "listWidgets", result.Fix.Ops[0].Value)

	result2 := rules.CamelCaseWithFix("u", "#", "operationId", "ListWidgets")
	require.NotNil(t, result2.Fix)
	assert.Equal(t, "listWidgets", result2.Fix.Ops[0].Value)
}

func TestFormatWithFixUUID(t *testing.T) {
	assert.True(t, rules.FormatWithFix("u", "#", "id", "3fa85f64-5717-4562-b3fc-2c963f66afa6", "uuid").Valid)

	result := rules.FormatWithFix("u", "#", "id", "not-a-uuid", "uuid")
	assert.False(t, result.Valid)
	require.NotNil(t, result.Fix)
	assert.Len(t, result.Fix.Ops[0].Value.(string), 36)
}

func TestFormatWithFixHostname(t *testing.T) {
	assert.True(t, rules.FormatWithFix("u", "#", "host", "example.com", "hostname").Valid)

	result := rules.FormatWithFix("u", "#", "host", "not a hostname!", "hostname")
	assert.False(t, result.Valid)
	require.NotNil(t, result.Fix)
	assert.Equal(t, "example.com", result.Fix.Ops[0].Value)
}

func TestFormatWithFixUnknownFormatPasses(t *testing.T) {
	assert.True(t, rules.FormatWithFix("u", "#", "x", "anything", "unsupported-format").Valid)
}

func TestPatternWithFixGeneratesMatchingValue(t *testing.T) {
	assert.True(t, rules.PatternWithFix("u", "#", "code", "AB12", `^[A-Z]{2}[0-9]{2}$`).Valid)

	result := rules.PatternWithFix("u", "#", "code", "nope", `^[A-Z]{2}[0-9]{2}$`)
	assert.False(t, result.Valid)
	require.NotNil(t, result.Fix)
	generated, ok := result.Fix.Ops[0].Value.(string)
	require.True(t, ok)
	assert.Regexp(t, `^[A-Z]{2}[0-9]{2}$`, generated)
}

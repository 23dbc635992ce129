// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package schemavalidate_test

import (
	"strings"
	"testing"
	"time"

	"github.com/pb33f/telescope-core/document"
	"github.com/pb33f/telescope-core/rules/schemavalidate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const widgetSchema = `{
  "type": "object",
  "properties": {
    "id": {"type": "string", "format": "uuid"},
    "name": {"type": "string", "minLength": 3}
  },
  "required": ["id", "name"],
  "additionalProperties": false
}`

func schemaDoc(t *testing.T) *document.Document {
	t.Helper()
	doc := document.Parse("memory://schema.json", []byte(`{"id":"not-a-uuid"}`), time.Time{}, document.FormatJSON, false)
	require.Nil(t, doc.ParseError)
	return doc
}

func TestValidatePassesValidData(t *testing.T) {
	cache := schemavalidate.NewCache()
	data := map[string]any{"id": "3fa85f64-5717-4562-b3fc-2c963f66afa6", "name": "widget"}
	diags := schemavalidate.Validate(cache, []byte(widgetSchema), data, schemaDoc(t), "#")
	assert.Empty(t, diags)
}

func TestValidateReportsFormatAndRequiredErrors(t *testing.T) {
	cache := schemavalidate.NewCache()
	data := map[string]any{"id": "not-a-uuid"}
	diags := schemavalidate.Validate(cache, []byte(widgetSchema), data, schemaDoc(t), "#")
	require.NotEmpty(t, diags)

	var sawFormat, sawRequired bool
	for _, d := range diags {
		assert.Equal(t, "memory://schema.json", d.URI)
		if strings.Contains(d.Message, "expected format") {
			sawFormat = true
		}
		if strings.Contains(d.Message, "missing required property") {
			sawRequired = true
		}
	}
	assert.True(t, sawFormat, "expected a format diagnostic, got %+v", diags)
	assert.True(t, sawRequired, "expected a required-property diagnostic, got %+v", diags)
}

func TestValidateCachesCompiledSchema(t *testing.T) {
	cache := schemavalidate.NewCache()
	data := map[string]any{"id": "3fa85f64-5717-4562-b3fc-2c963f66afa6", "name": "widget"}
	diags1 := schemavalidate.Validate(cache, []byte(widgetSchema), data, schemaDoc(t), "#")
	diags2 := schemavalidate.Validate(cache, []byte(widgetSchema), data, schemaDoc(t), "#")
	assert.Equal(t, diags1, diags2)
}

func TestValidateReportsCompilationError(t *testing.T) {
	cache := schemavalidate.NewCache()
	diags := schemavalidate.Validate(cache, []byte(`{ this is not valid json `), map[string]any{}, schemaDoc(t), "#")
	require.Len(t, diags, 1)
	assert.Equal(t, "schema-compilation-error", diags[0].Code)
}

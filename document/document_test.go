// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package document_test

import (
	"testing"
	"time"

	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/document"
	"github.com/pb33f/telescope-core/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, document.FormatJSON, document.DetectFormat([]byte(`  { "a": 1 }  `)))
	assert.Equal(t, document.FormatYAML, document.DetectFormat([]byte("a: 1\n")))
	assert.Equal(t, document.FormatYAML, document.DetectFormat([]byte("- a\n- b\n")))
}

func TestParseYAML(t *testing.T) {
	raw := []byte("openapi: 3.0.0\ninfo:\n  title: widgets\n")
	doc := document.Parse("memory://spec.yaml", raw, time.Time{}, "", false)

	require.Nil(t, doc.ParseError)
	require.NotNil(t, doc.Root)
	assert.Equal(t, document.FormatYAML, doc.Format)
	assert.Equal(t, document.Hash(raw), doc.Hash)

	title := ir.FindByPointer(doc.Root, "#/info/title")
	require.NotNil(t, title)
	assert.Equal(t, "widgets", title.Value)
}

func TestParseInvalidYAMLRecordsParseError(t *testing.T) {
	raw := []byte("key: [unterminated\n")
	doc := document.Parse("memory://broken.yaml", raw, time.Time{}, "", false)

	assert.Nil(t, doc.Root)
	require.NotNil(t, doc.ParseError)
	assert.NotEmpty(t, doc.ParseError.Message)
}

func TestParseJSONCWithCommentsAndTrailingCommas(t *testing.T) {
	raw := []byte(`{
		// a comment
		"openapi": "3.0.0",
		"info": {
			"title": "widgets", /* trailing comma below */
		},
	}`)

	strict := document.Parse("memory://jsonc.json", raw, time.Time{}, document.FormatJSON, false)
	assert.NotNil(t, strict.ParseError)

	lenient := document.Parse("memory://jsonc.json", raw, time.Time{}, document.FormatJSON, true)
	require.Nil(t, lenient.ParseError)
	require.NotNil(t, lenient.Root)
	title := ir.FindByPointer(lenient.Root, "#/info/title")
	require.NotNil(t, title)
	assert.Equal(t, "widgets", title.Value)
}

func TestDuplicateKeysAreRecordedAndFirstWins(t *testing.T) {
	raw := []byte("a: 1\na: 2\n")
	doc := document.Parse("memory://dup.yaml", raw, time.Time{}, "", false)

	require.NotNil(t, doc.Root)
	require.Len(t, doc.DuplicateKeys, 1)
	assert.Equal(t, "a", doc.DuplicateKeys[0].Key)

	a := ir.FindByPointer(doc.Root, "#/a")
	require.NotNil(t, a)
	assert.EqualValues(t, 1, a.Value)
}

func TestDiagnosticsReportsParseError(t *testing.T) {
	raw := []byte("key: [unterminated\n")
	doc := document.Parse("memory://broken.yaml", raw, time.Time{}, "", false)
	require.NotNil(t, doc.ParseError)

	diags := doc.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, "parse-error", diags[0].Code)
	assert.Equal(t, "memory://broken.yaml", diags[0].URI)
	assert.Equal(t, diagnostic.SeverityError, diags[0].Severity)
	assert.Equal(t, doc.ParseError.Message, diags[0].Message)
}

func TestDiagnosticsReportsDuplicateKey(t *testing.T) {
	raw := []byte("a: 1\na: 2\n")
	doc := document.Parse("memory://dup.yaml", raw, time.Time{}, "", false)
	require.Nil(t, doc.ParseError)
	require.Len(t, doc.DuplicateKeys, 1)

	diags := doc.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, "duplicate-key", diags[0].Code)
	assert.Equal(t, "memory://dup.yaml", diags[0].URI)
	assert.Equal(t, diagnostic.SeverityWarning, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "a")
}

func TestDiagnosticsEmptyForCleanDocument(t *testing.T) {
	raw := []byte("openapi: 3.0.3\ninfo:\n  title: widgets\n")
	doc := document.Parse("memory://spec.yaml", raw, time.Time{}, "", false)
	require.Nil(t, doc.ParseError)
	require.Empty(t, doc.DuplicateKeys)

	assert.Empty(t, doc.Diagnostics())
}

func TestOffsetToRangeRoundTripsThroughLineCol(t *testing.T) {
	raw := []byte("a: 1\nb: two\n")
	doc := document.Parse("memory://pos.yaml", raw, time.Time{}, "", false)
	require.NotNil(t, doc.Root)

	b := ir.FindByPointer(doc.Root, "#/b")
	require.NotNil(t, b)

	rng := doc.OffsetToRange(b.Loc.ValStart, b.Loc.ValEnd)
	assert.EqualValues(t, 1, rng.Start.Line)
	assert.EqualValues(t, "two", raw[b.Loc.ValStart:b.Loc.ValEnd])

	offset := doc.OffsetForLineCol(int(rng.Start.Line)+1, int(rng.Start.Character)+1)
	assert.Equal(t, b.Loc.ValStart, offset)
}

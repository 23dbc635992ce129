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

func TestFixBuilderEscapesPointerSegments(t *testing.T) {
	patch := rules.NewFix("memory://spec.yaml", "#/paths").SetField("/widgets", "x").Build()
	require.Len(t, patch.Ops, 1)
	assert.Equal(t, "#/paths/~1widgets", patch.Ops[0].Path)
}

func TestFixBuilderAddSetRemove(t *testing.T) {
	patch := rules.NewFix("memory://spec.yaml", "#/info").
		AddField("description", "a widget API").
		SetField("title", "widgets").
		RemoveField("deprecated").
		Build()

	require.Len(t, patch.Ops, 3)
	assert.Equal(t, diagnostic.OpAdd, patch.Ops[0].Kind)
	assert.Equal(t, "#/info/description", patch.Ops[0].Path)
	assert.Equal(t, diagnostic.OpReplace, patch.Ops[1].Kind)
	assert.Equal(t, diagnostic.OpRemove, patch.Ops[2].Kind)
	assert.Nil(t, patch.Ops[2].Value)
}

func TestFixBuilderAddAtPathJoinsEverySegment(t *testing.T) {
	patch := rules.NewFix("memory://spec.yaml", "#").AddAtPath([]string{"components", "schemas", "Widget"}, map[string]any{"type": "object"}).Build()
	require.Len(t, patch.Ops, 1)
	assert.Equal(t, "#/components/schemas/Widget", patch.Ops[0].Path)
}

func TestFixBuilderPreview(t *testing.T) {
	preview := rules.NewFix("memory://spec.yaml", "#/paths/~1x/get").SetField("operationId", "listUsers").Preview()
	assert.Equal(t, `replace #/paths/~1x/get/operationId = "listUsers"`, preview)
}

func TestFixBuilderBuildCopiesOpsSlice(t *testing.T) {
	b := rules.NewFix("memory://spec.yaml", "#").AddField("a", 1)
	patch1 := b.Build()
	b.AddField("b", 2)
	patch2 := b.Build()

	assert.Len(t, patch1.Ops, 1)
	assert.Len(t, patch2.Ops, 2)
}

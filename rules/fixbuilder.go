// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package rules

import (
	"strings"

	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/utils"
)

// FixBuilder fluently constructs a FilePatch for one URI, starting from an optional base
// pointer (spec.md S4.5.2). Segments containing "/" or "~" are escaped per RFC 6901.
type FixBuilder struct {
	uri  string
	base string
	ops  []diagnostic.Op
}

// NewFix starts a FixBuilder for uri, rooted at basePtr (pass "#" for the document root).
func NewFix(uri, basePtr string) *FixBuilder {
	return &FixBuilder{uri: uri, base: utils.NormalizePointer(basePtr)}
}

func (b *FixBuilder) path(segments ...string) string {
	p := b.base
	for _, s := range segments {
		p = utils.JoinPointer(p, s)
	}
	return p
}

// AddField appends an "add" op setting base+"/"+name to value.
func (b *FixBuilder) AddField(name string, value any) *FixBuilder {
	b.ops = append(b.ops, diagnostic.Op{Kind: diagnostic.OpAdd, Path: b.path(name), Value: value})
	return b
}

// AddAtPath appends an "add" op at base joined with every segment in segments.
func (b *FixBuilder) AddAtPath(segments []string, value any) *FixBuilder {
	b.ops = append(b.ops, diagnostic.Op{Kind: diagnostic.OpAdd, Path: b.path(segments...), Value: value})
	return b
}

// SetField appends a "replace" op setting base+"/"+name to value.
func (b *FixBuilder) SetField(name string, value any) *FixBuilder {
	b.ops = append(b.ops, diagnostic.Op{Kind: diagnostic.OpReplace, Path: b.path(name), Value: value})
	return b
}

// RemoveField appends a "remove" op deleting base+"/"+name.
func (b *FixBuilder) RemoveField(name string) *FixBuilder {
	b.ops = append(b.ops, diagnostic.Op{Kind: diagnostic.OpRemove, Path: b.path(name)})
	return b
}

// Build finalizes the FilePatch.
func (b *FixBuilder) Build() diagnostic.FilePatch {
	return diagnostic.FilePatch{URI: b.uri, Ops: append([]diagnostic.Op{}, b.ops...)}
}

// Preview renders the patch as a human-readable summary for tests and rule documentation,
// e.g. `replace #/paths/~1x/get/operationId = "listUsers"`.
func (b *FixBuilder) Preview() string {
	var sb strings.Builder
	for i, op := range b.ops {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(string(op.Kind))
		sb.WriteString(" ")
		sb.WriteString(op.Path)
		if op.Kind != diagnostic.OpRemove {
			sb.WriteString(" = ")
			sb.WriteString(previewValue(op.Value))
		}
	}
	return sb.String()
}

func previewValue(v any) string {
	if s, ok := v.(string); ok {
		return `"` + s + `"`
	}
	return stringify(v)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case string:
		return t
	default:
		return "<value>"
	}
}

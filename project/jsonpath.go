// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package project

import (
	"github.com/pb33f/telescope-core/document"
	"github.com/pb33f/telescope-core/ir"
	"github.com/vmware-labs/yaml-jsonpath/pkg/yamlpath"
	"gopkg.in/yaml.v3"
)

// FindByJSONPath runs an ad hoc JSONPath query (per SPEC_FULL.md S11) against doc's raw text
// and returns the matching IR nodes. It re-parses doc.RawText with gopkg.in/yaml.v3 the same
// way the teacher's own FindNodes helper does, then maps each match's line/column back onto the
// already-built IR tree by offset, so callers get IR nodes (with Ptr, Loc, Children) rather than
// bare yaml.Node values.
func FindByJSONPath(doc *document.Document, jsonPath string) ([]*ir.Node, error) {
	if doc == nil || doc.Root == nil {
		return nil, nil
	}
	path, err := yamlpath.NewPath(jsonPath)
	if err != nil {
		return nil, err
	}

	var root yaml.Node
	if err := yaml.Unmarshal(doc.RawText, &root); err != nil {
		return nil, err
	}
	matches, err := path.Find(&root)
	if err != nil {
		return nil, err
	}

	out := make([]*ir.Node, 0, len(matches))
	for _, m := range matches {
		offset := doc.OffsetForLineCol(m.Line, m.Column)
		if n := findByOffset(doc.Root, offset); n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// findByOffset returns the IR node whose value starts at offset, preferring the most deeply
// nested match (a container and its first child can share a start offset).
func findByOffset(root *ir.Node, offset int) *ir.Node {
	var best *ir.Node
	ir.Walk(root, func(n *ir.Node) bool {
		if n.Loc.ValStart == offset {
			best = n
		}
		return true
	})
	return best
}

// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package ir

import "encoding/json"

// ToValue converts an IR subtree into a plain Go value tree (map[string]any, []any, string,
// int64, float64, bool, nil) suitable for encoding/json or for handing to a JSON-Schema validator as
// instance data. Unlike the teacher's YAMLNodeToJSON, this walks the already-built IR rather
// than a raw yaml.Node, so no anchor/alias handling is needed - the loader (document.Parse) already
// flattened those while building the tree.
func ToValue(n *Node) any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindObject:
		m := make(map[string]any, len(n.Children))
		for _, c := range n.Children {
			m[c.Key] = ToValue(c)
		}
		return m
	case KindArray:
		a := make([]any, len(n.Children))
		for i, c := range n.Children {
			a[i] = ToValue(c)
		}
		return a
	default:
		return n.Value
	}
}

// ToJSON marshals n's value tree to JSON bytes, e.g. to hand a schema-shaped subtree to a
// JSON-Schema compiler that only accepts raw bytes.
func ToJSON(n *Node) ([]byte, error) {
	return json.Marshal(ToValue(n))
}

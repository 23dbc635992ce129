// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package document

import "github.com/pb33f/telescope-core/ir"

// Type is the classification spec.md S3 assigns to every document, computed once and cached
// by uri+hash (see Cache).
type Type int

const (
	// TypeUnknown covers parse failures and any shape that isn't recognizably OpenAPI; such
	// documents are never linted (spec.md S3).
	TypeUnknown Type = iota
	// TypeRoot is a document carrying an "openapi" or "swagger" key at its top level.
	TypeRoot
	// TypePartial is an OpenAPI fragment - not itself a root - referenced via $ref from one.
	TypePartial
)

func (t Type) String() string {
	switch t {
	case TypeRoot:
		return "root"
	case TypePartial:
		return "partial"
	default:
		return "unknown"
	}
}

var componentKindNames = map[string]bool{
	"schemas": true, "responses": true, "parameters": true, "examples": true,
	"requestBodies": true, "headers": true, "securitySchemes": true,
	"links": true, "callbacks": true, "pathItems": true,
}

var pathItemKeys = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true, "options": true,
	"head": true, "patch": true, "trace": true, "query": true,
	"parameters": true, "$ref": true, "summary": true, "description": true,
	"servers": true,
}

var httpMethodKeys = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace", "query"}

// DetectType classifies a parsed root IR node per spec.md S3. A nil root (parse failure)
// is always Unknown.
func DetectType(root *ir.Node) Type {
	if root == nil || root.Kind != ir.KindObject {
		return TypeUnknown
	}
	if root.Child("openapi") != nil || root.Child("swagger") != nil {
		return TypeRoot
	}
	if isPartialDocument(root) {
		return TypePartial
	}
	return TypeUnknown
}

// isPartialDocument implements the predicate spec.md S9 leaves open, resolved in
// SPEC_FULL.md S12: recognize the shapes real OpenAPI fragments take when extracted into
// their own file - a bare operation, schema, parameter, path item, or components map -
// while still requiring the document NOT look like a root.
func isPartialDocument(root *ir.Node) bool {
	if root.Child("openapi") != nil || root.Child("swagger") != nil ||
		root.Child("paths") != nil || root.Child("info") != nil {
		return false
	}

	keys := root.Keys()
	if len(keys) == 0 {
		return false
	}

	if isBarePathItem(root, keys) {
		return true
	}
	if isBareParameter(root) {
		return true
	}
	if isBareSchema(root) {
		return true
	}
	if isBareOperation(root) {
		return true
	}
	if isBareComponentsMap(keys) {
		return true
	}
	return false
}

func isBarePathItem(root *ir.Node, keys []string) bool {
	hasMethodOrRef := false
	for _, k := range keys {
		if !pathItemKeys[k] {
			return false
		}
		if k == "$ref" {
			hasMethodOrRef = true
		}
		for _, m := range httpMethodKeys {
			if k == m {
				hasMethodOrRef = true
			}
		}
	}
	return hasMethodOrRef
}

func isBareParameter(root *ir.Node) bool {
	return root.Child("in") != nil && root.Child("name") != nil
}

func isBareSchema(root *ir.Node) bool {
	for _, k := range []string{"type", "properties", "allOf", "oneOf", "anyOf", "$ref", "items", "enum"} {
		if root.Child(k) != nil {
			return true
		}
	}
	return false
}

func isBareOperation(root *ir.Node) bool {
	if root.Child("responses") == nil {
		return false
	}
	return root.Child("operationId") != nil || root.Child("summary") != nil || root.Child("parameters") != nil
}

func isBareComponentsMap(keys []string) bool {
	for _, k := range keys {
		if !componentKindNames[k] {
			return false
		}
	}
	return true
}

// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package project implements spec.md S4.4: atom extraction over a ProjectContext's document
// map, and the aggregated Index that gives rules O(1) access to every indexed OpenAPI entity
// instead of each rule re-walking the whole tree (spec.md S1 point 3).
package project

import "github.com/pb33f/telescope-core/ir"

// Kind discriminates the tagged Ref variants spec.md S9's design note calls for
// (Ref::{PathItem, Operation, Schema, Component{kind}, ...}). A single struct carries every
// variant's fields, following the same shape the teacher's own index.Reference uses across
// every kind of indexed entity.
type Kind int

const (
	KindPathItem Kind = iota
	KindOperation
	KindComponent
	KindSchema
	KindParameter
	KindResponse
	KindRequestBody
	KindHeader
	KindMediaType
	KindSecurityRequirement
	KindSecurityScheme
	KindExample
	KindLink
	KindCallback
	KindReference
)

// ComponentKind is one of the nine canonical OpenAPI component map names, plus pathItems for
// 3.1+ (spec.md S3).
type ComponentKind string

const (
	ComponentSchemas         ComponentKind = "schemas"
	ComponentResponses       ComponentKind = "responses"
	ComponentParameters      ComponentKind = "parameters"
	ComponentExamples        ComponentKind = "examples"
	ComponentRequestBodies   ComponentKind = "requestBodies"
	ComponentHeaders         ComponentKind = "headers"
	ComponentSecuritySchemes ComponentKind = "securitySchemes"
	ComponentLinks           ComponentKind = "links"
	ComponentCallbacks       ComponentKind = "callbacks"
	ComponentPathItems       ComponentKind = "pathItems"
)

// AllComponentKinds is the canonical iteration order for "for each of nine component kinds"
// (spec.md S4.4 point 3). pathItems is not in the list; extraction appends it for any document
// whose components object has a pathItems entry.
var AllComponentKinds = []ComponentKind{
	ComponentSchemas, ComponentResponses, ComponentParameters, ComponentExamples,
	ComponentRequestBodies, ComponentHeaders, ComponentSecuritySchemes,
	ComponentLinks, ComponentCallbacks,
}

// SchemaLocation is where, structurally, a SchemaAtom was found (spec.md S3).
type SchemaLocation string

const (
	SchemaLocationComponent            SchemaLocation = "component"
	SchemaLocationInline               SchemaLocation = "inline"
	SchemaLocationProperties           SchemaLocation = "properties"
	SchemaLocationItems                SchemaLocation = "items"
	SchemaLocationAllOf                SchemaLocation = "allOf"
	SchemaLocationOneOf                SchemaLocation = "oneOf"
	SchemaLocationAnyOf                SchemaLocation = "anyOf"
	SchemaLocationAdditionalProperties SchemaLocation = "additionalProperties"
	SchemaLocationPatternProperties    SchemaLocation = "patternProperties"
)

// HTTPMethods lists the operation keys a path item can carry, in the order spec.md S4.4
// point 2 names them (plus "query" and additionalOperations.* for 3.2, handled separately by
// the extractor since additionalOperations nests one level deeper).
var HTTPMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace", "query"}

// Ref is one indexed atom (spec.md S3's "Atom" / glossary): every variant carries uri, ptr and
// the IR node it points at, plus whichever of the variant-specific fields below its Kind uses.
type Ref struct {
	Kind Kind
	URI  string
	Ptr  string
	Node *ir.Node

	// PathItem / Operation
	Path          string
	Method        string
	OperationID   string
	DefinitionURI string // PathItem: target of its own $ref, if any
	DefinitionPtr string
	ReferenceURI  string // set when this ref arrived at its owner via a $ref
	ReferencePtr  string

	// Component / SecurityScheme
	ComponentKind ComponentKind
	Name          string

	// Schema
	Depth          int
	Location       SchemaLocation
	LocationIndex  int // index within allOf/oneOf/anyOf, or -1
	PropertyName   string
	IsRequired     bool
	Parent         *Ref
}

// Key returns the "uri#ptr" address used as a map key throughout Index.
func (r *Ref) Key() string { return NodeKey(r.URI, r.Ptr) }

// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package project

import (
	"strings"

	"github.com/pb33f/telescope-core/document"
	"github.com/pb33f/telescope-core/ir"
	"github.com/pb33f/telescope-core/orderedmap"
	"github.com/pb33f/telescope-core/refgraph"
)

// NodeKey is the "uri#ptr" address used as a map key throughout Index; it is the same scheme
// refgraph.Graph uses for its node keys.
func NodeKey(uri, ptr string) string { return refgraph.NodeKey(uri, ptr) }

// Index is the ProjectIndex of spec.md S3: aggregated atoms from every document in a
// ProjectContext, giving rules O(1) access instead of a fresh tree-walk per rule.
type Index struct {
	// PathsByString and Components are order-preserving (backed by orderedmap, the teacher's
	// own wrapper around wk8/go-ordered-map): iterating them walks paths/components in the
	// order they were declared in the source document, the way a host rendering "all paths" or
	// "all schemas" in a UI or report needs.
	PathsByString      orderedmap.Map[string, []*Ref] // "/path" -> path-item refs exposing it
	PathItemsToPaths   map[string][]string            // "uri#ptr" -> path strings (inverse of above)
	OperationsByOwner  map[string][]*Ref              // "uri#pathItemPtr" -> operation refs
	Components         map[ComponentKind]orderedmap.Map[string, *Ref]

	Schemas              map[string]*Ref
	Parameters           map[string]*Ref
	Responses            map[string]*Ref
	RequestBodies        map[string]*Ref
	Headers              map[string]*Ref
	MediaTypes           map[string]*Ref
	SecurityRequirements map[string]*Ref
	Examples             map[string]*Ref
	Links                map[string]*Ref
	Callbacks            map[string]*Ref
	References           map[string]*Ref

	Documents map[string]*ir.Node // uri -> parsed root value

	Version string // "2.0" | "3.0" | "3.1" | "3.2" | "unknown"
}

func newIndex() *Index {
	comps := make(map[ComponentKind]orderedmap.Map[string, *Ref], len(AllComponentKinds)+1)
	for _, k := range AllComponentKinds {
		comps[k] = orderedmap.New[string, *Ref]()
	}
	comps[ComponentPathItems] = orderedmap.New[string, *Ref]()
	return &Index{
		PathsByString:        orderedmap.New[string, []*Ref](),
		PathItemsToPaths:     map[string][]string{},
		OperationsByOwner:    map[string][]*Ref{},
		Components:           comps,
		Schemas:              map[string]*Ref{},
		Parameters:           map[string]*Ref{},
		Responses:            map[string]*Ref{},
		RequestBodies:        map[string]*Ref{},
		Headers:              map[string]*Ref{},
		MediaTypes:           map[string]*Ref{},
		SecurityRequirements: map[string]*Ref{},
		Examples:             map[string]*Ref{},
		Links:                map[string]*Ref{},
		Callbacks:            map[string]*Ref{},
		References:           map[string]*Ref{},
		Documents:            map[string]*ir.Node{},
	}
}

type builder struct {
	idx   *Index
	graph *refgraph.Graph
}

// Build extracts atoms from every document in docs, in the extraction order spec.md S4.4
// specifies, and aggregates them into one Index. graph supplies first-outgoing-edge lookups
// for $ref-valued path items.
func Build(docs map[string]*document.Document, graph *refgraph.Graph) *Index {
	b := &builder{idx: newIndex(), graph: graph}

	// deterministic order: callers iterate a map, but spec.md S5 only requires determinism
	// within one ProjectContext's rule dispatch, not extraction itself - sort for stability.
	uris := make([]string, 0, len(docs))
	for uri := range docs {
		uris = append(uris, uri)
	}
	sortStrings(uris)

	for _, uri := range uris {
		doc := docs[uri]
		if doc == nil || doc.Root == nil {
			continue
		}
		b.idx.Documents[uri] = doc.Root
		if b.idx.Version == "" {
			b.idx.Version = detectVersion(doc.Root)
		}
		b.extractDocument(uri, doc.Root)
	}
	if b.idx.Version == "" {
		b.idx.Version = "unknown"
	}
	// References: every object containing $ref, regardless of enclosing kind (step 6). The
	// ref graph already found exactly these locations during discovery.
	for _, e := range graph.AllEdges() {
		ptr := e.FromPtr
		node := ir.FindByPointer(doc(docs, e.FromURI), ptr)
		ref := &Ref{Kind: KindReference, URI: e.FromURI, Ptr: ptr, Node: node}
		b.idx.References[ref.Key()] = ref
	}
	return b.idx
}

func doc(docs map[string]*document.Document, uri string) *ir.Node {
	if d, ok := docs[uri]; ok && d != nil {
		return d.Root
	}
	return nil
}

func (b *builder) extractDocument(uri string, root *ir.Node) {
	b.extractPaths(uri, root)
	b.extractComponents(uri, root)
}

// extractPaths implements step 1 (PathItemAtom) and step 2 (OperationAtom) of spec.md S4.4.
func (b *builder) extractPaths(uri string, root *ir.Node) {
	paths := root.Child("paths")
	if paths == nil || paths.Kind != ir.KindObject {
		return
	}
	for _, pathNode := range paths.Children {
		pathStr := pathNode.Key
		ref := &Ref{Kind: KindPathItem, URI: uri, Ptr: pathNode.Ptr, Node: pathNode, Path: pathStr}

		if refChild := pathNode.Child("$ref"); refChild != nil {
			if edges := b.graph.EdgesFrom(uri, pathNode.Ptr); len(edges) > 0 {
				first := edges[0]
				ref.DefinitionURI, ref.DefinitionPtr = first.ToURI, first.ToPtr
				ref.ReferenceURI, ref.ReferencePtr = uri, pathNode.Ptr
			}
		}

		b.idx.PathsByString.Set(pathStr, append(b.idx.PathsByString.GetOrZero(pathStr), ref))
		key := ref.Key()
		b.idx.PathItemsToPaths[key] = appendUnique(b.idx.PathItemsToPaths[key], pathStr)

		b.extractOperations(uri, pathStr, pathNode)
	}
}

func (b *builder) extractOperations(uri, pathStr string, pathItem *ir.Node) {
	owner := NodeKey(uri, pathItem.Ptr)
	emit := func(method string, opNode *ir.Node) {
		opID := ""
		if idNode := opNode.Child("operationId"); idNode != nil {
			if s, ok := idNode.Value.(string); ok {
				opID = s
			}
		}
		ref := &Ref{
			Kind: KindOperation, URI: uri, Ptr: opNode.Ptr, Node: opNode,
			Path: pathStr, Method: method, OperationID: opID,
		}
		b.idx.OperationsByOwner[owner] = append(b.idx.OperationsByOwner[owner], ref)
		b.extractOperationSchemas(uri, ref)
	}

	for _, method := range HTTPMethods {
		if opNode := pathItem.Child(method); opNode != nil {
			emit(method, opNode)
		}
	}
	if additional := pathItem.Child("additionalOperations"); additional != nil && additional.Kind == ir.KindObject {
		for _, opNode := range additional.Children {
			emit(opNode.Key, opNode)
		}
	}
}

// extractOperationSchemas pulls in the schema roots reachable from one operation: its
// parameters, requestBody content, and response content/headers.
func (b *builder) extractOperationSchemas(uri string, op *Ref) {
	if params := op.Node.Child("parameters"); params != nil {
		for _, p := range params.Children {
			b.indexParameter(uri, p)
		}
	}
	if reqBody := op.Node.Child("requestBody"); reqBody != nil {
		b.indexRequestBody(uri, reqBody)
	}
	if responses := op.Node.Child("responses"); responses != nil {
		for _, respNode := range responses.Children {
			b.indexResponse(uri, respNode)
		}
	}
}

func (b *builder) indexParameter(uri string, p *ir.Node) {
	ref := &Ref{Kind: KindParameter, URI: uri, Ptr: p.Ptr, Node: p}
	if nameNode := p.Child("name"); nameNode != nil {
		if s, ok := nameNode.Value.(string); ok {
			ref.Name = s
		}
	}
	b.idx.Parameters[ref.Key()] = ref
	if schema := p.Child("schema"); schema != nil {
		b.indexSchemaRoot(uri, schema, SchemaLocationInline, nil, "", false, -1)
	}
}

func (b *builder) indexRequestBody(uri string, rb *ir.Node) {
	ref := &Ref{Kind: KindRequestBody, URI: uri, Ptr: rb.Ptr, Node: rb}
	b.idx.RequestBodies[ref.Key()] = ref
	b.indexContent(uri, rb.Child("content"))
}

func (b *builder) indexResponse(uri string, resp *ir.Node) {
	ref := &Ref{Kind: KindResponse, URI: uri, Ptr: resp.Ptr, Node: resp}
	b.idx.Responses[ref.Key()] = ref
	b.indexContent(uri, resp.Child("content"))
	if headers := resp.Child("headers"); headers != nil {
		for _, h := range headers.Children {
			b.indexHeader(uri, h)
		}
	}
}

func (b *builder) indexHeader(uri string, h *ir.Node) {
	ref := &Ref{Kind: KindHeader, URI: uri, Ptr: h.Ptr, Node: h}
	b.idx.Headers[ref.Key()] = ref
	if schema := h.Child("schema"); schema != nil {
		b.indexSchemaRoot(uri, schema, SchemaLocationInline, nil, "", false, -1)
	}
}

func (b *builder) indexContent(uri string, content *ir.Node) {
	if content == nil {
		return
	}
	for _, mt := range content.Children {
		ref := &Ref{Kind: KindMediaType, URI: uri, Ptr: mt.Ptr, Node: mt}
		b.idx.MediaTypes[ref.Key()] = ref
		if schema := mt.Child("schema"); schema != nil {
			b.indexSchemaRoot(uri, schema, SchemaLocationInline, nil, "", false, -1)
		}
		if examples := mt.Child("examples"); examples != nil {
			for _, ex := range examples.Children {
				exRef := &Ref{Kind: KindExample, URI: uri, Ptr: ex.Ptr, Node: ex, Name: ex.Key}
				b.idx.Examples[exRef.Key()] = exRef
			}
		}
	}
}

// extractComponents implements step 3 (ComponentAtom for nine kinds, plus pathItems in 3.1+)
// and triggers step 4 (recursive schema extraction) for the schemas kind.
func (b *builder) extractComponents(uri string, root *ir.Node) {
	components := root.Child("components")
	if components == nil {
		return
	}
	kinds := AllComponentKinds
	if pathItems := components.Child(string(ComponentPathItems)); pathItems != nil {
		kinds = append(append([]ComponentKind{}, AllComponentKinds...), ComponentPathItems)
	}
	for _, kind := range kinds {
		kindNode := components.Child(string(kind))
		if kindNode == nil || kindNode.Kind != ir.KindObject {
			continue
		}
		for _, entry := range kindNode.Children {
			ref := &Ref{Kind: KindComponent, URI: uri, Ptr: entry.Ptr, Node: entry, ComponentKind: kind, Name: entry.Key}
			b.idx.Components[kind].Set(entry.Key, ref)

			switch kind {
			case ComponentSchemas:
				b.indexSchemaRoot(uri, entry, SchemaLocationComponent, nil, "", false, -1)
			case ComponentParameters:
				b.indexParameter(uri, entry)
			case ComponentRequestBodies:
				b.indexRequestBody(uri, entry)
			case ComponentResponses:
				b.indexResponse(uri, entry)
			case ComponentHeaders:
				b.indexHeader(uri, entry)
			case ComponentSecuritySchemes:
				schemeRef := &Ref{Kind: KindSecurityScheme, URI: uri, Ptr: entry.Ptr, Node: entry, Name: entry.Key}
				_ = schemeRef // security schemes are also reachable via Components[ComponentSecuritySchemes]
			case ComponentExamples:
				exRef := &Ref{Kind: KindExample, URI: uri, Ptr: entry.Ptr, Node: entry, Name: entry.Key}
				b.idx.Examples[exRef.Key()] = exRef
			case ComponentLinks:
				lRef := &Ref{Kind: KindLink, URI: uri, Ptr: entry.Ptr, Node: entry, Name: entry.Key}
				b.idx.Links[lRef.Key()] = lRef
			case ComponentCallbacks:
				cRef := &Ref{Kind: KindCallback, URI: uri, Ptr: entry.Ptr, Node: entry, Name: entry.Key}
				b.idx.Callbacks[cRef.Key()] = cRef
				for _, cbPath := range entry.Children {
					b.extractOperations(uri, cbPath.Key, cbPath)
				}
			}
		}
	}

	// top-level security requirements (spec.md S4.4 point 5)
	if sec := root.Child("security"); sec != nil {
		for i, reqNode := range sec.Children {
			ref := &Ref{Kind: KindSecurityRequirement, URI: uri, Ptr: reqNode.Ptr, Node: reqNode, LocationIndex: i}
			b.idx.SecurityRequirements[ref.Key()] = ref
		}
	}
}

// indexSchemaRoot registers a schema occurrence and recursively descends into it per step 4
// of spec.md S4.4. Schemas with a $ref are not descended into.
func (b *builder) indexSchemaRoot(uri string, n *ir.Node, loc SchemaLocation, parent *Ref, propName string, required bool, locIdx int) *Ref {
	ref := &Ref{
		Kind: KindSchema, URI: uri, Ptr: n.Ptr, Node: n,
		Location: loc, Parent: parent, PropertyName: propName, IsRequired: required, LocationIndex: locIdx,
	}
	if parent != nil {
		ref.Depth = parent.Depth + 1
	}
	b.idx.Schemas[ref.Key()] = ref

	if n.Child("$ref") != nil {
		return ref // do not descend into a referenced schema
	}

	if props := n.Child("properties"); props != nil {
		requiredSet := requiredPropertySet(n)
		for _, p := range props.Children {
			b.indexSchemaRoot(uri, p, SchemaLocationProperties, ref, p.Key, requiredSet[p.Key], -1)
		}
	}
	if items := n.Child("items"); items != nil {
		b.indexSchemaRoot(uri, items, SchemaLocationItems, ref, "", false, -1)
	}
	for _, group := range []struct {
		key string
		loc SchemaLocation
	}{
		{"allOf", SchemaLocationAllOf}, {"oneOf", SchemaLocationOneOf}, {"anyOf", SchemaLocationAnyOf},
	} {
		if seq := n.Child(group.key); seq != nil {
			for i, item := range seq.Children {
				b.indexSchemaRoot(uri, item, group.loc, ref, "", false, i)
			}
		}
	}
	if ap := n.Child("additionalProperties"); ap != nil && ap.Kind == ir.KindObject {
		b.indexSchemaRoot(uri, ap, SchemaLocationAdditionalProperties, ref, "", false, -1)
	}
	if pp := n.Child("patternProperties"); pp != nil {
		for _, p := range pp.Children {
			b.indexSchemaRoot(uri, p, SchemaLocationPatternProperties, ref, p.Key, false, -1)
		}
	}
	return ref
}

// RequiredProperties returns a schema node's "required" array as plain strings, in source
// order, for rule authors and RuleContext's getRequiredProperties helper.
func RequiredProperties(schema *ir.Node) []string {
	req := schema.Child("required")
	if req == nil {
		return nil
	}
	out := make([]string, 0, len(req.Children))
	for _, item := range req.Children {
		if s, ok := item.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func requiredPropertySet(schema *ir.Node) map[string]bool {
	out := map[string]bool{}
	req := schema.Child("required")
	if req == nil {
		return out
	}
	for _, item := range req.Children {
		if s, ok := item.Value.(string); ok {
			out[s] = true
		}
	}
	return out
}

func appendUnique(ss []string, s string) []string {
	for _, e := range ss {
		if e == s {
			return ss
		}
	}
	return append(ss, s)
}

func sortStrings(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j-1] > ss[j]; j-- {
			ss[j-1], ss[j] = ss[j], ss[j-1]
		}
	}
}

// detectVersion implements spec.md S4.4's version-detection rule: the first document whose
// root has an "openapi" key, or a "swagger" key starting "2.", wins; it returns "" otherwise,
// and Build records "unknown" when no document wins.
func detectVersion(root *ir.Node) string {
	if v := root.Child("openapi"); v != nil {
		s, _ := v.Value.(string)
		switch {
		case strings.HasPrefix(s, "3.2"):
			return "3.2"
		case strings.HasPrefix(s, "3.1"):
			return "3.1"
		case strings.HasPrefix(s, "3.0"):
			return "3.0"
		}
		return "unknown"
	}
	if v := root.Child("swagger"); v != nil {
		s, _ := v.Value.(string)
		if strings.HasPrefix(s, "2.") {
			return "2.0"
		}
	}
	return ""
}

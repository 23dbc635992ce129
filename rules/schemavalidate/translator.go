// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package schemavalidate implements spec.md S4.5.3: compiling a JSON Schema (draft-detected,
// memoized by content hash), validating a value against it, and translating the validator's
// error tree into Diagnostics with the best range each keyword can offer.
package schemavalidate

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/pb33f/telescope-core/diagnostic"
	"github.com/pb33f/telescope-core/document"
	"github.com/pb33f/telescope-core/ir"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/net/idna"
)

func init() {
	// the library's built-in "hostname"/"idn-hostname" checkers only enforce the RFC 1123
	// label/length grammar; swap in x/net/idna so non-ASCII (punycode-eligible) hostnames are
	// actually validated instead of always passing.
	jsonschema.Formats["hostname"] = validHostname
	jsonschema.Formats["idn-hostname"] = validHostname
}

func validHostname(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return true
	}
	_, err := idna.Lookup.ToASCII(s)
	return err == nil
}

// Cache memoizes compiled schemas by the SHA-1 of their serialized JSON, so repeated
// validations of the same component schema (the common case - one schema, many request bodies)
// never recompile (spec.md S4.5.3 step 2).
type Cache struct {
	mu      sync.Mutex
	schemas map[string]*jsonschema.Schema
}

// NewCache creates an empty compile cache.
func NewCache() *Cache { return &Cache{schemas: map[string]*jsonschema.Schema{}} }

// Compile returns the compiled schema for the given raw JSON bytes, compiling (and caching) it
// on first use. Draft is detected from "$schema"; absent, it defaults to draft-07 the way the
// teacher's own validator backends assume when a document omits the meta-schema reference.
func (c *Cache) Compile(schemaJSON []byte) (*jsonschema.Schema, error) {
	sum := sha1.Sum(schemaJSON)
	key := hex.EncodeToString(sum[:])

	c.mu.Lock()
	if cached, ok := c.schemas[key]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	compiler := jsonschema.NewCompiler()
	compiler.Draft = detectDraft(schemaJSON)
	compiler.ExtractAnnotations = true
	compiler.AssertFormat = true

	url := "telescope://schema/" + key + ".json"
	if err := compiler.AddResource(url, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("schema-compilation-error: %w", err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema-compilation-error: %w", err)
	}

	c.mu.Lock()
	c.schemas[key] = compiled
	c.mu.Unlock()
	return compiled, nil
}

func detectDraft(schemaJSON []byte) *jsonschema.Draft {
	var probe struct {
		Schema string `json:"$schema"`
	}
	if err := json.Unmarshal(schemaJSON, &probe); err != nil || probe.Schema == "" {
		return jsonschema.Draft7
	}
	switch {
	case strings.Contains(probe.Schema, "2020-12"):
		return jsonschema.Draft2020
	case strings.Contains(probe.Schema, "2019-09"):
		return jsonschema.Draft2019
	case strings.Contains(probe.Schema, "draft-06"):
		return jsonschema.Draft6
	case strings.Contains(probe.Schema, "draft-04"):
		return jsonschema.Draft4
	default:
		return jsonschema.Draft7
	}
}

// Validate compiles schemaJSON (via cache) and validates data against it, translating every
// validation error into a Diagnostic located against schemaDoc's IR at dataPtr + instancePath
// (spec.md S4.5.3 steps 3-5). A compile failure produces a single schema-compilation-error
// diagnostic at (0,0) instead of validation diagnostics.
func Validate(cache *Cache, schemaJSON []byte, data any, schemaDoc *document.Document, dataPtr string) []diagnostic.Diagnostic {
	compiled, err := cache.Compile(schemaJSON)
	if err != nil {
		return []diagnostic.Diagnostic{{
			Code: "schema-compilation-error", Message: err.Error(), URI: schemaDoc.URI,
			Severity: diagnostic.SeverityError, Source: "telescope", RangePrecision: diagnostic.PrecisionFallback,
		}}
	}

	verr := compiled.Validate(data)
	if verr == nil {
		return nil
	}
	valErr, ok := verr.(*jsonschema.ValidationError)
	if !ok {
		return []diagnostic.Diagnostic{{
			Code: "schema-compilation-error", Message: verr.Error(), URI: schemaDoc.URI,
			Severity: diagnostic.SeverityError, Source: "telescope", RangePrecision: diagnostic.PrecisionFallback,
		}}
	}

	var out []diagnostic.Diagnostic
	var collect func(e *jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, translateOne(e, schemaDoc, dataPtr))
			return
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(valErr)
	return out
}

// translateOne implements spec.md S4.5.3 step 4's per-keyword range rules.
func translateOne(e *jsonschema.ValidationError, doc *document.Document, basePtr string) diagnostic.Diagnostic {
	segs := instancePathSegments(e.InstanceLocation)
	keyword := lastKeyword(e.KeywordLocation)
	message := formatMessage(keyword, e)

	ptr := joinSegments(basePtr, segs)
	node := ir.FindByPointer(doc.Root, ptr)

	switch keyword {
	case "required":
		parent := node
		if parent != nil && parent.Kind == ir.KindObject && len(parent.Children) > 0 {
			first := parent.Children[0]
			if first.Loc.HasKey() {
				return diag(doc, first.Loc.KeyStart, first.Loc.KeyEnd, message, diagnostic.PrecisionFirstChild)
			}
		}
		return fallbackDiag(doc, node, message)

	case "additionalProperties":
		// node already points at the offending value's parent via InstanceLocation for this
		// keyword in this library; if it resolves to an object, point at its own key instead.
		if node != nil && node.Loc.HasKey() {
			return diag(doc, node.Loc.KeyStart, node.Loc.KeyEnd, message, diagnostic.PrecisionKey)
		}
		return fallbackDiag(doc, node, message)

	default:
		if node != nil {
			return diag(doc, node.Loc.ValStart, node.Loc.ValEnd, message, diagnostic.PrecisionExact)
		}
		return fallbackDiag(doc, node, message)
	}
}

func diag(doc *document.Document, start, end int, message string, precision diagnostic.RangePrecision) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		Message: message, URI: doc.URI, Range: doc.OffsetToRange(start, end),
		Severity: diagnostic.SeverityError, RangePrecision: precision,
	}
}

// fallbackDiag implements the last two rungs of the range ladder: parent, then root, then (0,0).
func fallbackDiag(doc *document.Document, node *ir.Node, message string) diagnostic.Diagnostic {
	if node != nil {
		return diag(doc, node.Loc.Start, node.Loc.End, message, diagnostic.PrecisionFallback)
	}
	if doc.Root != nil {
		return diag(doc, doc.Root.Loc.Start, doc.Root.Loc.End, message, diagnostic.PrecisionFallback)
	}
	return diagnostic.Diagnostic{
		Message: message, URI: doc.URI, Severity: diagnostic.SeverityError,
		RangePrecision: diagnostic.PrecisionFallback,
	}
}

func lastKeyword(keywordLocation string) string {
	parts := strings.Split(strings.Trim(keywordLocation, "/"), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}

// instancePathSegments unescapes a jsonschema.ValidationError's InstanceLocation ("/a/0/b")
// into plain segments, recognizing integer segments as array indices per spec.md S4.5.3 step 4.
func instancePathSegments(loc string) []string {
	trimmed := strings.Trim(loc, "/")
	if trimmed == "" {
		return nil
	}
	raw := strings.Split(trimmed, "/")
	out := make([]string, 0, len(raw))
	for _, seg := range raw {
		seg = strings.ReplaceAll(seg, "~1", "/")
		seg = strings.ReplaceAll(seg, "~0", "~")
		out = append(out, seg)
	}
	return out
}

func joinSegments(base string, segs []string) string {
	ptr := base
	for _, s := range segs {
		if _, err := strconv.Atoi(s); err == nil {
			ptr += "/" + s
			continue
		}
		s = strings.ReplaceAll(s, "~", "~0")
		s = strings.ReplaceAll(s, "/", "~1")
		ptr += "/" + s
	}
	return ptr
}

// formatMessage implements spec.md S4.5.3 step 5's friendly per-keyword phrasing.
func formatMessage(keyword string, e *jsonschema.ValidationError) string {
	switch keyword {
	case "format":
		return fmt.Sprintf("value does not match expected format: %s", e.Message)
	case "pattern":
		return fmt.Sprintf("value does not match required pattern: %s", e.Message)
	case "required":
		return fmt.Sprintf("missing required property: %s", e.Message)
	case "type":
		return fmt.Sprintf("wrong type: %s", e.Message)
	case "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum":
		return fmt.Sprintf("numeric value out of range: %s", e.Message)
	case "minLength", "maxLength":
		return fmt.Sprintf("string length out of range: %s", e.Message)
	case "additionalProperties":
		return fmt.Sprintf("unexpected property: %s", e.Message)
	default:
		return e.Message
	}
}

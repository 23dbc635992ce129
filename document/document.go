// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package document implements spec.md S4.1: given raw bytes, build an immutable Parsed
// Document carrying an IR tree, a source map and a content hash. It never throws on
// malformed input (a parse failure degrades the document to type Unknown instead).
package document

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pb33f/telescope-core/ir"
	"github.com/pb33f/telescope-core/ir/span"
	"github.com/pb33f/telescope-core/utils"
	"gopkg.in/yaml.v3"
)

// Format is the textual encoding a Document was parsed from.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseError is the single diagnostic-shaped failure a Document records when its raw text
// could not be parsed at all (spec.md S4.1, S7).
type ParseError struct {
	Message      string
	Line, Column int // 1-indexed; (0,0) means "unavailable" - callers fall back to span.Zero
}

// DuplicateKey records a repeated mapping key found while building the IR (spec.md S4.1 and
// the duplicate-key Open Question resolved in SPEC_FULL.md S12): the first occurrence's value
// wins in the IR, but every later occurrence is kept here for the engine-level diagnostic.
type DuplicateKey struct {
	ParentPtr    string
	Key          string
	Line, Column int
}

// Document is an immutable Parsed Document (spec.md S3). Once built, nothing about it
// changes - a new edit produces a brand-new Document, never a mutation of this one.
type Document struct {
	URI           string
	RawText       []byte
	Format        Format
	Hash          string
	Mtime         time.Time
	Root          *ir.Node // nil when ParseError is set or the text holds no document
	ParseError    *ParseError
	DuplicateKeys []DuplicateKey

	lineOffsets []int // byte offset of the start of each 1-indexed line; lineOffsets[0] is line 1
}

// Hash computes the content hash spec.md S3/S4.1 calls for: stable across identical bytes,
// used by every cache in the engine to detect change.
func Hash(raw []byte) string {
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:])
}

// Parse builds a Document from raw bytes read by a host.Host. format, when "", is detected
// from the trimmed text the way spec.md S4.1 describes (brace-delimited => JSON, else YAML).
// jsonc allows JavaScript-style comments and trailing commas when format is JSON; it is
// ignored for YAML input.
func Parse(uri string, rawText []byte, mtime time.Time, format Format, jsonc bool) *Document {
	doc := &Document{
		URI:     uri,
		RawText: rawText,
		Hash:    Hash(rawText),
		Mtime:   mtime,
	}
	if format == "" {
		format = DetectFormat(rawText)
	}
	doc.Format = format
	doc.computeLineOffsets()

	var root yaml.Node
	err := yaml.Unmarshal(rawText, &root)
	if err != nil && format == FormatJSON && jsonc {
		err = yaml.Unmarshal(stripJSONC(rawText), &root)
	}
	if err != nil {
		doc.ParseError = toParseError(err)
		return doc
	}
	if len(root.Content) == 0 {
		return doc
	}
	doc.Root = doc.buildIR(root.Content[0], "#", "")
	return doc
}

// DetectFormat applies spec.md S4.1's brace heuristic: trimmed text starting with '{' and
// ending with '}' is JSON, everything else is treated as YAML (JSON is a YAML subset, so
// arrays-at-root and scalars-at-root still parse correctly via the YAML path).
func DetectFormat(raw []byte) Format {
	trimmed := strings.TrimSpace(string(raw))
	if len(trimmed) >= 2 && trimmed[0] == '{' && trimmed[len(trimmed)-1] == '}' {
		return FormatJSON
	}
	return FormatYAML
}

func toParseError(err error) *ParseError {
	pe := &ParseError{Message: err.Error()}
	if te, ok := err.(*yaml.TypeError); ok && len(te.Errors) > 0 {
		pe.Message = te.Errors[0]
	}
	// gopkg.in/yaml.v3 embeds "line N:" in scanner/parser error messages; best-effort extract it.
	if idx := strings.Index(pe.Message, "line "); idx >= 0 {
		rest := pe.Message[idx+5:]
		n := 0
		for _, r := range rest {
			if r < '0' || r > '9' {
				break
			}
			n = n*10 + int(r-'0')
		}
		if n > 0 {
			pe.Line = n
			pe.Column = 1
		}
	}
	return pe
}

func (d *Document) computeLineOffsets() {
	offsets := []int{0}
	for i, b := range d.RawText {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	d.lineOffsets = offsets
}

// offsetForLineCol converts a 1-indexed (line, column) pair - column counted in runes, the
// way gopkg.in/yaml.v3 reports it - into a byte offset into RawText.
func (d *Document) offsetForLineCol(line, col int) int {
	if line < 1 || line > len(d.lineOffsets) {
		return 0
	}
	lineStart := d.lineOffsets[line-1]
	if col <= 1 {
		return lineStart
	}
	lineEnd := len(d.RawText)
	if line < len(d.lineOffsets) {
		lineEnd = d.lineOffsets[line]
	}
	rest := d.RawText[lineStart:lineEnd]
	off, n := 0, 1
	for _, r := range string(rest) {
		if n == col {
			break
		}
		off += utf8.RuneLen(r)
		n++
	}
	return lineStart + off
}

// OffsetForLineCol exposes offsetForLineCol for callers outside this package (the jsonpath
// query helper in package project needs it to map yamlpath's line/column results back onto IR
// node offsets).
func (d *Document) OffsetForLineCol(line, col int) int { return d.offsetForLineCol(line, col) }

// OffsetToRange translates a byte-offset pair into an LSP span.Range using the cached line
// offsets (spec.md S4.5.1's offsetToRange helper).
func (d *Document) OffsetToRange(start, end int) span.Range {
	return span.Range{Start: d.positionForOffset(start), End: d.positionForOffset(end)}
}

func (d *Document) positionForOffset(offset int) span.Position {
	if offset < 0 {
		offset = 0
	}
	// binary search for the line containing offset
	lo, hi := 0, len(d.lineOffsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if d.lineOffsets[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	lineStart := d.lineOffsets[lo]
	if offset < lineStart {
		offset = lineStart
	}
	if offset > len(d.RawText) {
		offset = len(d.RawText)
	}
	character := utf8.RuneCount(d.RawText[lineStart:offset])
	return span.NewPosition(uint32(lo), uint32(character))
}

func scalarBytesLen(n *yaml.Node) int {
	switch n.Style {
	case yaml.DoubleQuotedStyle, yaml.SingleQuotedStyle:
		return len(n.Value) + 2
	default:
		return len(n.Value)
	}
}

func scalarKindValue(n *yaml.Node) (ir.Kind, any) {
	switch n.Tag {
	case "!!bool":
		var v bool
		_ = n.Decode(&v)
		return ir.KindBoolean, v
	case "!!int":
		var v int64
		if err := n.Decode(&v); err == nil {
			return ir.KindNumber, v
		}
		return ir.KindNumber, n.Value
	case "!!float":
		var v float64
		if err := n.Decode(&v); err == nil {
			return ir.KindNumber, v
		}
		return ir.KindNumber, n.Value
	case "!!null":
		return ir.KindNull, nil
	default:
		return ir.KindString, n.Value
	}
}

// stripJSONC strips "//" and "/* */" comments and trailing commas before a closing "}"/"]"
// from raw JSON text, leaving everything inside string literals untouched. It is only ever
// invoked as a fallback after a strict parse has already failed, with jsonc enabled.
func stripJSONC(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	inString := false
	escaped := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]

		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			out = append(out, c)
		case c == '/' && i+1 < len(raw) && raw[i+1] == '/':
			for i < len(raw) && raw[i] != '\n' {
				i++
			}
			i--
		case c == '/' && i+1 < len(raw) && raw[i+1] == '*':
			i += 2
			for i+1 < len(raw) && !(raw[i] == '*' && raw[i+1] == '/') {
				i++
			}
			i++
		case c == ',':
			j := i + 1
			for j < len(raw) && isJSONWhitespace(raw[j]) {
				j++
			}
			if j < len(raw) && (raw[j] == '}' || raw[j] == ']') {
				continue // drop the trailing comma
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}

func isJSONWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// buildIR recursively converts a *yaml.Node subtree into the ir.Node tree, computing byte
// offsets for every node and collecting duplicate mapping keys along the way (spec.md I1-I4).
func (d *Document) buildIR(n *yaml.Node, ptr, key string) *ir.Node {
	n = resolveAlias(n)
	start := d.offsetForLineCol(n.Line, n.Column)

	switch n.Kind {
	case yaml.MappingNode:
		out := &ir.Node{Kind: ir.KindObject, Key: key, Ptr: ptr}
		seen := make(map[string]bool, len(n.Content)/2)
		maxEnd := start
		for i := 0; i+1 < len(n.Content); i += 2 {
			kn := resolveAlias(n.Content[i])
			vn := n.Content[i+1]
			keyStr := kn.Value
			if seen[keyStr] {
				d.DuplicateKeys = append(d.DuplicateKeys, DuplicateKey{
					ParentPtr: ptr, Key: keyStr, Line: kn.Line, Column: kn.Column,
				})
				continue
			}
			seen[keyStr] = true
			childPtr := utils.JoinPointer(ptr, keyStr)
			child := d.buildIR(vn, childPtr, keyStr)
			keyStart := d.offsetForLineCol(kn.Line, kn.Column)
			keyEnd := keyStart + scalarBytesLen(kn)
			child.Loc = child.Loc.WithKey(keyStart, keyEnd)
			if child.Loc.End > maxEnd {
				maxEnd = child.Loc.End
			}
			out.Children = append(out.Children, child)
		}
		out.Loc = ir.Location{Start: start, End: maxEnd, ValStart: start, ValEnd: maxEnd}
		return out

	case yaml.SequenceNode:
		out := &ir.Node{Kind: ir.KindArray, Key: key, Ptr: ptr}
		maxEnd := start
		for i, item := range n.Content {
			childPtr := utils.JoinPointer(ptr, strconv.Itoa(i))
			child := d.buildIR(item, childPtr, "")
			if child.Loc.End > maxEnd {
				maxEnd = child.Loc.End
			}
			out.Children = append(out.Children, child)
		}
		out.Loc = ir.Location{Start: start, End: maxEnd, ValStart: start, ValEnd: maxEnd}
		return out

	default:
		kind, val := scalarKindValue(n)
		end := start + scalarBytesLen(n)
		return &ir.Node{
			Kind: kind, Key: key, Value: val, Ptr: ptr,
			Loc: ir.Location{Start: start, End: end, ValStart: start, ValEnd: end},
		}
	}
}

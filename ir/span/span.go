// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package span re-exports the LSP position/range vocabulary from
// github.com/tliron/glsp/protocol_3_16 so the rest of the engine never has to hand-roll
// line/character math or duplicate a wire-compatible Range type. A host's transport layer
// (out of scope per spec.md S1) can pass these straight into textDocument/publishDiagnostics.
package span

import protocol "github.com/tliron/glsp/protocol_3_16"

// Position is a zero-indexed line/character pair, exactly as LSP defines it.
type Position = protocol.Position

// Range is a half-open [Start, End) span over a single document.
type Range = protocol.Range

// Zero is the fallback range used when nothing better can be located (spec.md S4.5.1's
// final fallback level, and S7's parse-error-with-no-location case).
var Zero = Range{Start: Position{Line: 0, Character: 0}, End: Position{Line: 0, Character: 0}}

// NewPosition builds a Position from zero-indexed line/character values.
func NewPosition(line, character uint32) Position {
	return Position{Line: line, Character: character}
}

// NewRange builds a Range from zero-indexed start/end line/character values.
func NewRange(startLine, startChar, endLine, endChar uint32) Range {
	return Range{Start: NewPosition(startLine, startChar), End: NewPosition(endLine, endChar)}
}

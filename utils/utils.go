package utils

import "strings"

// EscapePointerSegment escapes a single JSON Pointer (RFC 6901) segment: '~' becomes
// '~0' and '/' becomes '~1'. Order matters - '~' must be escaped first.
func EscapePointerSegment(segment string) string {
	segment = strings.ReplaceAll(segment, "~", "~0")
	segment = strings.ReplaceAll(segment, "/", "~1")
	return segment
}

// UnescapePointerSegment reverses EscapePointerSegment.
func UnescapePointerSegment(segment string) string {
	segment = strings.ReplaceAll(segment, "~1", "/")
	segment = strings.ReplaceAll(segment, "~0", "~")
	return segment
}

// NormalizePointer coerces any of the informal pointer spellings a rule or host might pass
// ("", "x", "/x", "#/x") into the canonical "#"-prefixed form: "" -> "#", "x" -> "#/x",
// "/x" -> "#/x", "#/x" -> "#/x".
func NormalizePointer(p string) string {
	if p == "" {
		return "#"
	}
	if strings.HasPrefix(p, "#") {
		return p
	}
	if strings.HasPrefix(p, "/") {
		return "#" + p
	}
	return "#/" + p
}

// PointerSegments splits a canonical "#/a/b/c" pointer into its unescaped segments,
// ["a", "b", "c"]. The root pointer "#" yields an empty slice.
func PointerSegments(p string) []string {
	p = NormalizePointer(p)
	p = strings.TrimPrefix(p, "#")
	if p == "" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	out := make([]string, len(parts))
	for i, part := range parts {
		out[i] = UnescapePointerSegment(part)
	}
	return out
}

// JoinPointer appends an already-unescaped segment to a canonical parent pointer,
// escaping it along the way.
func JoinPointer(parent, segment string) string {
	parent = NormalizePointer(parent)
	if parent == "#" {
		return "#/" + EscapePointerSegment(segment)
	}
	return parent + "/" + EscapePointerSegment(segment)
}

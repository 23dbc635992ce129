// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package rules

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lucasjones/reggen"
	"github.com/pb33f/telescope-core/diagnostic"
	"golang.org/x/net/idna"
)

// ValidationResult is what every *WithFix validator returns (spec.md S4.5.2): Valid reports
// whether the check passed; Fix, when non-nil, is the patch the engine attaches to the
// diagnostic's suggest list when the validator fails.
type ValidationResult struct {
	Valid bool
	Fix   *diagnostic.FilePatch
}

func ok() ValidationResult { return ValidationResult{Valid: true} }

// RequiredWithFix checks that value is present (per ir.IsAbsent's rules, applied by the caller);
// when absent, its fix adds field = defaultValue at basePtr.
func RequiredWithFix(uri, basePtr, field string, present bool, defaultValue any) ValidationResult {
	if present {
		return ok()
	}
	patch := NewFix(uri, basePtr).AddField(field, defaultValue).Build()
	return ValidationResult{Valid: false, Fix: &patch}
}

// MinLengthWithFix checks value has at least min runes; its fix pads the value out with filler
// to reach the minimum, preserving whatever text was already there.
func MinLengthWithFix(uri, basePtr, field, value string, min int, filler string) ValidationResult {
	if len([]rune(value)) >= min {
		return ok()
	}
	if filler == "" {
		filler = " "
	}
	padded := value
	for len([]rune(padded)) < min {
		padded += filler
	}
	padded = string([]rune(padded)[:max(min, len([]rune(value)))])
	patch := NewFix(uri, basePtr).SetField(field, padded).Build()
	return ValidationResult{Valid: false, Fix: &patch}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// OneOfWithFix checks value is a member of allowed; its fix replaces it with fallback (or
// allowed[0] when fallback is empty and allowed is non-empty).
func OneOfWithFix(uri, basePtr, field, value string, allowed []string, fallback string) ValidationResult {
	for _, a := range allowed {
		if a == value {
			return ok()
		}
	}
	if fallback == "" && len(allowed) > 0 {
		fallback = allowed[0]
	}
	patch := NewFix(uri, basePtr).SetField(field, fallback).Build()
	return ValidationResult{Valid: false, Fix: &patch}
}

// CamelCaseWithFix checks value is already lowerCamelCase; its fix adds (per spec.md S8
// scenario 6's literal op) the camelCased rewrite at field.
func CamelCaseWithFix(uri, basePtr, field, value string) ValidationResult {
	camel := toCamelCase(value)
	if camel == value {
		return ok()
	}
	patch := NewFix(uri, basePtr).AddField(field, camel).Build()
	return ValidationResult{Valid: false, Fix: &patch}
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func toCamelCase(s string) string {
	if s == "" {
		return s
	}
	parts := nonAlnum.Split(s, -1)
	var words []string
	for _, p := range parts {
		words = append(words, splitCamelWords(p)...)
	}
	var sb strings.Builder
	for i, w := range words {
		if w == "" {
			continue
		}
		lower := strings.ToLower(w)
		if i == 0 {
			sb.WriteString(lower)
			continue
		}
		sb.WriteString(strings.ToUpper(lower[:1]))
		sb.WriteString(lower[1:])
	}
	return sb.String()
}

// splitCamelWords breaks an already-PascalCase/camelCase run into its constituent words so
// "ListUsers" -> ["List", "Users"] before case-folding, instead of lowercasing the whole token.
func splitCamelWords(s string) []string {
	var words []string
	var cur strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && r >= 'A' && r <= 'Z' && !(runes[i-1] >= 'A' && runes[i-1] <= 'Z') {
			words = append(words, cur.String())
			cur.Reset()
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		words = append(words, cur.String())
	}
	return words
}

// FormatWithFix checks value against a handful of string formats (uuid, hostname, idn-hostname)
// directly rather than through the JSON Schema backend, so that a failure can carry a fix; its
// fix replaces an invalid value with a generated one honoring the format. Mirrors the teacher's
// renderer case "uuid"/case "hostname" example generators, but as a validity check with a fix
// instead of a generator.
func FormatWithFix(uri, basePtr, field, value, format string) ValidationResult {
	switch format {
	case "uuid":
		if _, err := uuid.Parse(value); err == nil {
			return ok()
		}
		patch := NewFix(uri, basePtr).SetField(field, uuid.NewString()).Build()
		return ValidationResult{Valid: false, Fix: &patch}
	case "hostname", "idn-hostname":
		if _, err := idna.Lookup.ToASCII(value); err == nil {
			return ok()
		}
		patch := NewFix(uri, basePtr).SetField(field, "example.com").Build()
		return ValidationResult{Valid: false, Fix: &patch}
	default:
		return ok()
	}
}

// PatternWithFix checks value matches pattern; its fix replaces value with a freshly generated
// string that satisfies the pattern, via reggen's regex-to-example generator.
func PatternWithFix(uri, basePtr, field, value, pattern string) ValidationResult {
	re, err := regexp.Compile(pattern)
	if err == nil && re.MatchString(value) {
		return ok()
	}
	generated, genErr := reggen.Generate(pattern, 8)
	if genErr != nil {
		return ValidationResult{Valid: false}
	}
	patch := NewFix(uri, basePtr).SetField(field, generated).Build()
	return ValidationResult{Valid: false, Fix: &patch}
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapePointerSegment(t *testing.T) {
	assert.Equal(t, "~1users", EscapePointerSegment("/users"))
	assert.Equal(t, "a~0b", EscapePointerSegment("a~b"))
	assert.Equal(t, "~0~1", EscapePointerSegment("~/"))
}

func TestUnescapePointerSegment(t *testing.T) {
	assert.Equal(t, "/users", UnescapePointerSegment("~1users"))
	assert.Equal(t, "a~b", UnescapePointerSegment("a~0b"))
	assert.Equal(t, "~/", UnescapePointerSegment("~0~1"))
}

func TestNormalizePointer(t *testing.T) {
	assert.Equal(t, "#", NormalizePointer(""))
	assert.Equal(t, "#/x", NormalizePointer("/x"))
	assert.Equal(t, "#/x", NormalizePointer("x"))
	assert.Equal(t, "#/x", NormalizePointer("#/x"))
	assert.Equal(t, NormalizePointer("/x"), NormalizePointer(NormalizePointer("/x")))
}

func TestPointerSegments(t *testing.T) {
	assert.Nil(t, PointerSegments("#"))
	assert.Equal(t, []string{"paths", "/users", "get"}, PointerSegments("#/paths/~1users/get"))
}

func TestJoinPointer(t *testing.T) {
	assert.Equal(t, "#/paths/~1users", JoinPointer("#/paths", "/users"))
	assert.Equal(t, "#/a~0b", JoinPointer("#", "a~b"))
	assert.Equal(t, "#/x/y", JoinPointer(JoinPointer("", "x"), "y"))
}

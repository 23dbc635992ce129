// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package span_test

import (
	"testing"

	"github.com/pb33f/telescope-core/ir/span"
	"github.com/stretchr/testify/assert"
)

func TestNewPosition(t *testing.T) {
	p := span.NewPosition(3, 7)
	assert.Equal(t, uint32(3), p.Line)
	assert.Equal(t, uint32(7), p.Character)
}

func TestNewRange(t *testing.T) {
	r := span.NewRange(1, 2, 3, 4)
	assert.Equal(t, span.NewPosition(1, 2), r.Start)
	assert.Equal(t, span.NewPosition(3, 4), r.End)
}

func TestZeroIsAllZeroes(t *testing.T) {
	assert.Equal(t, span.NewRange(0, 0, 0, 0), span.Zero)
}

// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package cancel_test

import (
	"sync"
	"testing"

	"github.com/pb33f/telescope-core/cancel"
	"github.com/stretchr/testify/assert"
)

func TestZeroValueIsNeverCancelled(t *testing.T) {
	var tok cancel.Token
	assert.False(t, tok.Cancelled())
}

func TestNilTokenIsNeverCancelled(t *testing.T) {
	var tok *cancel.Token
	assert.False(t, tok.Cancelled())
	tok.Cancel() // must not panic
}

func TestCancel(t *testing.T) {
	tok := cancel.New()
	assert.False(t, tok.Cancelled())
	tok.Cancel()
	assert.True(t, tok.Cancelled())
	tok.Cancel() // idempotent
	assert.True(t, tok.Cancelled())
}

func TestCancelIsConcurrencySafe(t *testing.T) {
	tok := cancel.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok.Cancel()
			_ = tok.Cancelled()
		}()
	}
	wg.Wait()
	assert.True(t, tok.Cancelled())
}

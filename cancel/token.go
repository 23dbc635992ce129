// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package cancel implements the cooperative cancellation token of spec.md S5. In this module
// the rule runner (rules.Run) is the only traversal that takes one: it checks it between files
// and between dispatch phases, returning whatever partial result it has accumulated so far
// rather than an error. Atom extraction (project.Build) and the recursive schema walk take no
// token and always run to completion.
package cancel

import "sync/atomic"

// Token is a cooperative cancellation signal. The zero value is a valid, never-cancelled token,
// so callers that don't need cancellation can pass Token{} or nil safely.
type Token struct {
	flag atomic.Bool
}

// New returns a fresh, uncancelled Token.
func New() *Token { return &Token{} }

// Cancel requests cancellation. Safe to call from any goroutine, any number of times.
func (t *Token) Cancel() {
	if t != nil {
		t.flag.Store(true)
	}
}

// Cancelled reports whether Cancel has been called. A nil Token is never cancelled.
func (t *Token) Cancelled() bool {
	return t != nil && t.flag.Load()
}

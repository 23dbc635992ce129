// Copyright 2023 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

// Package host defines the interface the engine consumes from whatever embeds it - an editor,
// a CLI, a CI check. The engine never touches a filesystem, a network socket or a watcher
// directly: every byte it sees arrives through a Host.
package host

import "time"

// ReadResult is what a Host hands back for a single document read.
type ReadResult struct {
	// Text is the raw document bytes, exactly as stored.
	Text []byte

	// Mtime is the last-modified time the host observed for uri.
	Mtime time.Time

	// Hash is a content hash for uri. Hosts that don't want to compute one themselves
	// can leave it empty; the loader falls back to hashing Text itself (see document.Hash).
	Hash string
}

// Unsubscribe detaches a file-change callback registered with Host.OnFileChange.
type Unsubscribe func()

// Host is the external collaborator described in spec.md S6: every piece of I/O the engine
// needs flows through it, and every method must be safe to call from the cooperative pipeline
// described in spec.md S5 (only Read and Glob may block).
type Host interface {
	// Read loads the current content of uri. It is the only method, along with Glob, that may
	// perform blocking I/O.
	Read(uri string) (ReadResult, error)

	// Exists reports whether uri can currently be read.
	Exists(uri string) bool

	// Glob returns every uri in the host's workspace matching any of patterns.
	Glob(patterns []string) ([]string, error)

	// Resolve must be pure (no I/O): it turns a $ref string found in fromUri into an absolute
	// document uri, the way a browser resolves a relative link against a base.
	Resolve(fromUri, ref string) (string, error)

	// OnFileChange optionally lets the engine invalidate its caches when uri changes on disk.
	// Hosts that can't watch files may return a no-op Unsubscribe; nil is also accepted.
	OnFileChange(uri string, cb func(uri string)) Unsubscribe
}

// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package provider

import "errors"

var (
	// ErrUnknownSession indicates a session id that was never allocated or
	// has been destroyed.
	ErrUnknownSession = errors.New("provider: unknown session")

	// ErrCancelled indicates a waiting NextRevision call whose request was
	// aborted before the revision advanced. No session state is changed.
	ErrCancelled = errors.New("provider: wait cancelled")

	// ErrUnknownHook indicates a hook name outside the known set.
	ErrUnknownHook = errors.New("provider: unknown hook")

	// ErrNoArtwork indicates an artwork request for an item that has none.
	ErrNoArtwork = errors.New("provider: item has no artwork")

	// ErrUnsatisfiableRange indicates a byte range beyond the object size.
	ErrUnsatisfiableRange = errors.New("provider: requested range not satisfiable")
)

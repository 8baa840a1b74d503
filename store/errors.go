// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package store

import "errors"

var (
	// ErrNotFound indicates the target key is absent or tombstoned at the
	// requested revision.
	ErrNotFound = errors.New("store: not found")

	// ErrDeletedParent indicates a Set against a parent tombstoned at the
	// current revision.
	ErrDeletedParent = errors.New("store: parent deleted")

	// ErrRevisionInFuture indicates a read beyond the current revision.
	ErrRevisionInFuture = errors.New("store: revision in future")

	// ErrRevisionGone indicates a read below the earliest retained
	// revision, discarded by Clean.
	ErrRevisionGone = errors.New("store: revision reclaimed")

	// ErrRevisionOrder indicates a Commit whose revision does not advance
	// past the current one.
	ErrRevisionOrder = errors.New("store: revision must advance")

	// ErrReadOnlyRevision indicates a mutation through a handle bound to a
	// historical revision. Raised by the model layer, defined here with the
	// rest of the store taxonomy.
	ErrReadOnlyRevision = errors.New("store: revision is read-only")
)

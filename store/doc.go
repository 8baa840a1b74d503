// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

// Package store implements the revision-tracked parent/child store backing
// the library model.
//
// Keys are hierarchical: a parent key owns a set of child keys, each child
// carrying an opaque value. Every key holds an append-only history of
// (revision, operation, value) records; parent records additionally snapshot
// the live child-id list, copied-on-write between revisions, so a historical
// revision yields the exact set at that time without scanning all children.
//
// Mutations stage under the next revision until Commit stamps them and
// advances the current revision. Retained revisions are immutable; Clean
// discards history older than a given revision. Values are treated as
// immutable records: an edit is a Set with a fresh value, never an in-place
// mutation.
package store

// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

// Package models layers the typed library entities over the revision store.
//
// A Server owns Databases; a Database owns Items and Containers; a Container
// owns ContainerItems referencing Items in the same Database. Entities are
// plain structs treated as immutable once added: to change one, add an
// updated copy under the same id.
//
// Collections are lightweight read-through handles onto the store. They do
// not own entities; two handles over the same parent key observe the same
// data. A handle bound to a historical revision is read-only.
package models

// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

// Package responses builds the DMAP object trees returned by the DAAP
// endpoints. Builders are pure: they take revision views of the model and
// return a *daap.Object, leaving encoding and transport to the caller.
//
// Every list endpoint shares one shape: a status, an update-type flag, the
// total and returned counts, and either a listing of added/edited entries or
// a deleted-id listing. One response never carries both; iTunes applies
// deletions and additions in separate polls.
package responses

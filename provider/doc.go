// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

// Package provider orchestrates DAAP requests against the model: it owns the
// session table, advances the library revision, parks long-poll /update
// requests until the next revision, and delegates media and artwork bytes to
// a MediaSource.
//
// The writer side calls Update after mutating the model; Update commits the
// staged changes, wakes every parked waiter and reclaims store history once
// all sessions have caught up.
package provider

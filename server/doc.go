// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

// Package server implements the DAAP HTTP surface using the chi router: the
// route table, query-string decoding, the Basic auth gate, the object
// response cache, and byte-range media streaming. It is the only layer that
// translates errors from the store, model and provider into HTTP status
// codes.
package server

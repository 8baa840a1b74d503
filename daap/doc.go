// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

// Package daap implements the DMAP tagged binary format used by every DAAP
// response.
//
// The wire format is a recursive TLV: a 4-byte ASCII content code, a 4-byte
// big-endian unsigned length, and that many value bytes. Container atoms
// nest further TLVs. A static content-code table maps each code to its
// symbolic name (for example "mstt" = "dmap.status") and its wire type.
//
// Objects are built from pre-resolved *ContentCode values, which skips the
// name lookup on the hot path without changing the emitted bytes:
//
//	obj := daap.NewContainer(daap.LoginResponse,
//	    daap.New(daap.Status, 200),
//	    daap.New(daap.SessionID, 1),
//	)
//	raw, err := obj.Encode()
//
// Decoding consumes exactly the declared lengths and fails with a
// *DecodeError on short reads, unknown codes or container length mismatches.
package daap

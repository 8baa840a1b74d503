// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package daap

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by EncodeError and DecodeError.
var (
	// ErrUnknownCode indicates a wire tag that is not in the content-code
	// table.
	ErrUnknownCode = errors.New("unknown content code")

	// ErrShortRead indicates the input ended before the declared length.
	ErrShortRead = errors.New("short read")

	// ErrLengthMismatch indicates a container whose children do not add up
	// to its declared length.
	ErrLengthMismatch = errors.New("container length mismatch")

	// ErrTrailingData indicates bytes left over after the top-level atom.
	ErrTrailingData = errors.New("trailing data after atom")

	// ErrBadValue indicates a value that cannot be packed under the code's
	// wire type (wrong kind, overflow, malformed version string).
	ErrBadValue = errors.New("value not representable")
)

// EncodeError reports a value that could not be packed under its code.
type EncodeError struct {
	Code string // 4-byte wire tag, or symbolic name if unresolved
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("daap: encode %q: %v", e.Code, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError reports malformed input: short reads, unknown codes or
// mismatched container lengths.
type DecodeError struct {
	Code string // tag being decoded; empty when the header itself is short
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("daap: decode: %v", e.Err)
	}
	return fmt.Sprintf("daap: decode %q: %v", e.Code, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package daap

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Decode parses a single top-level atom and its descendants. The input must
// contain exactly one atom; leftover bytes fail with ErrTrailingData.
func Decode(data []byte) (*Object, error) {
	obj, rest, err := decodeOne(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, &DecodeError{Code: obj.Code.Tag, Err: ErrTrailingData}
	}
	return obj, nil
}

// decodeOne parses one atom from the front of data and returns the
// remainder.
func decodeOne(data []byte) (*Object, []byte, error) {
	if len(data) < 8 {
		return nil, nil, &DecodeError{Err: fmt.Errorf("%w: %d byte header", ErrShortRead, len(data))}
	}

	tag := string(data[0:4])
	length := binary.BigEndian.Uint32(data[4:8])
	body := data[8:]

	cc, ok := CodeByTag(tag)
	if !ok {
		return nil, nil, &DecodeError{Code: tag, Err: ErrUnknownCode}
	}
	if uint64(len(body)) < uint64(length) {
		return nil, nil, &DecodeError{Code: tag, Err: fmt.Errorf("%w: want %d bytes, have %d", ErrShortRead, length, len(body))}
	}

	value, rest := body[:length], body[length:]

	if cc.Type == TypeContainer {
		var children []*Object
		for len(value) > 0 {
			child, remainder, err := decodeOne(value)
			if err != nil {
				return nil, nil, err
			}
			children = append(children, child)
			value = remainder
		}
		// decodeOne consumes exactly per-child lengths, so reaching zero
		// here means the container length matched its children.
		return &Object{Code: cc, Value: children}, rest, nil
	}

	scalar, err := unpackValue(cc, value)
	if err != nil {
		return nil, nil, err
	}
	return &Object{Code: cc, Value: scalar}, rest, nil
}

// unpackValue converts wire bytes into the normalized scalar for the code's
// type: int64 for signed, uint64 for unsigned and dates, string for strings
// and versions.
func unpackValue(cc *ContentCode, b []byte) (any, error) {
	fixed := func(n int) error {
		if len(b) != n {
			return &DecodeError{Code: cc.Tag, Err: fmt.Errorf("%w: %s wants %d bytes, have %d", ErrLengthMismatch, cc.Type, n, len(b))}
		}
		return nil
	}

	switch cc.Type {
	case TypeByte:
		if err := fixed(1); err != nil {
			return nil, err
		}
		return int64(int8(b[0])), nil
	case TypeUByte:
		if err := fixed(1); err != nil {
			return nil, err
		}
		return uint64(b[0]), nil
	case TypeShort:
		if err := fixed(2); err != nil {
			return nil, err
		}
		return int64(int16(binary.BigEndian.Uint16(b))), nil
	case TypeUShort:
		if err := fixed(2); err != nil {
			return nil, err
		}
		return uint64(binary.BigEndian.Uint16(b)), nil
	case TypeInt:
		if err := fixed(4); err != nil {
			return nil, err
		}
		return int64(int32(binary.BigEndian.Uint32(b))), nil
	case TypeUInt:
		if err := fixed(4); err != nil {
			return nil, err
		}
		return uint64(binary.BigEndian.Uint32(b)), nil
	case TypeLong:
		if err := fixed(8); err != nil {
			return nil, err
		}
		return int64(binary.BigEndian.Uint64(b)), nil
	case TypeULong:
		if err := fixed(8); err != nil {
			return nil, err
		}
		return binary.BigEndian.Uint64(b), nil
	case TypeDate:
		if err := fixed(4); err != nil {
			return nil, err
		}
		return uint64(binary.BigEndian.Uint32(b)), nil
	case TypeVersion:
		if err := fixed(4); err != nil {
			return nil, err
		}
		major := binary.BigEndian.Uint16(b[0:2])
		minor := binary.BigEndian.Uint16(b[2:4])
		return fmt.Sprintf("%d.%d", major, minor), nil
	case TypeString:
		return decodeString(b), nil
	}

	return nil, &DecodeError{Code: cc.Tag, Err: fmt.Errorf("%w: type %d", ErrUnknownCode, cc.Type)}
}

// decodeString interprets the bytes as UTF-8, falling back to Latin-1 for
// legacy senders.
func decodeString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

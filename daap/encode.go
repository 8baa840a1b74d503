// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package daap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Encode serializes the atom and its descendants to DMAP tagged bytes.
// Encoding is deterministic: equal trees produce equal bytes.
func (o *Object) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := o.EncodeTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo appends the atom's serialization to buf.
func (o *Object) EncodeTo(buf *bytes.Buffer) error {
	if o.Code == nil {
		return &EncodeError{Code: "", Err: ErrUnknownCode}
	}

	if o.Code.Type == TypeContainer {
		children, ok := o.Value.([]*Object)
		if !ok && o.Value != nil {
			return &EncodeError{Code: o.Code.Tag, Err: fmt.Errorf("%w: container holds %T", ErrBadValue, o.Value)}
		}

		// Encode children first to learn the payload length.
		var body bytes.Buffer
		for _, child := range children {
			if err := child.EncodeTo(&body); err != nil {
				return err
			}
		}

		buf.WriteString(o.Code.Tag)
		writeUint32(buf, uint32(body.Len()))
		buf.Write(body.Bytes())
		return nil
	}

	value, err := packValue(o.Code.Type, o.Value)
	if err != nil {
		return &EncodeError{Code: o.Code.Tag, Err: err}
	}

	buf.WriteString(o.Code.Tag)
	writeUint32(buf, uint32(len(value)))
	buf.Write(value)
	return nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// packValue converts a scalar to its wire bytes.
func packValue(t Type, value any) ([]byte, error) {
	switch t {
	case TypeByte:
		i, err := toInt(value, math.MinInt8, math.MaxInt8)
		if err != nil {
			return nil, err
		}
		return []byte{byte(int8(i))}, nil

	case TypeUByte:
		u, err := toUint(value, math.MaxUint8)
		if err != nil {
			return nil, err
		}
		return []byte{byte(u)}, nil

	case TypeShort:
		i, err := toInt(value, math.MinInt16, math.MaxInt16)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(int16(i)))
		return b, nil

	case TypeUShort:
		u, err := toUint(value, math.MaxUint16)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(u))
		return b, nil

	case TypeInt:
		// Short ASCII literals are packed verbatim into the 4 value bytes.
		// The content-codes dictionary uses this for dmap.contentcodesnumber.
		if s, ok := value.(string); ok {
			if len(s) > 4 {
				return nil, fmt.Errorf("%w: string %q exceeds 4 bytes", ErrBadValue, s)
			}
			b := make([]byte, 4)
			copy(b, s)
			return b, nil
		}
		i, err := toInt(value, math.MinInt32, math.MaxInt32)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(int32(i)))
		return b, nil

	case TypeUInt:
		u, err := toUint(value, math.MaxUint32)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(u))
		return b, nil

	case TypeLong:
		i, err := toInt(value, math.MinInt64, math.MaxInt64)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(i))
		return b, nil

	case TypeULong:
		u, err := toUint(value, math.MaxUint64)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, u)
		return b, nil

	case TypeString:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: string field holds %T", ErrBadValue, value)
		}
		return []byte(s), nil

	case TypeDate:
		if ts, ok := value.(time.Time); ok {
			value = uint64(ts.Unix())
		}
		u, err := toUint(value, math.MaxUint32)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(u))
		return b, nil

	case TypeVersion:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: version field holds %T", ErrBadValue, value)
		}
		major, minor, err := parseVersion(s)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 4)
		binary.BigEndian.PutUint16(b[0:2], major)
		binary.BigEndian.PutUint16(b[2:4], minor)
		return b, nil
	}

	return nil, fmt.Errorf("%w: type %d", ErrBadValue, t)
}

// parseVersion accepts "major.minor" with an optional trailing ".patch"
// component, which is dropped on the wire.
func parseVersion(s string) (major, minor uint16, err error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("%w: version %q", ErrBadValue, s)
	}
	hi, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: version %q", ErrBadValue, s)
	}
	lo, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: version %q", ErrBadValue, s)
	}
	return uint16(hi), uint16(lo), nil
}

func toInt(value any, min, max int64) (int64, error) {
	var i int64
	switch v := value.(type) {
	case int:
		i = int64(v)
	case int8:
		i = int64(v)
	case int16:
		i = int64(v)
	case int32:
		i = int64(v)
	case int64:
		i = v
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows", ErrBadValue, v)
		}
		i = int64(v)
	case uint8:
		i = int64(v)
	case uint16:
		i = int64(v)
	case uint32:
		i = int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows", ErrBadValue, v)
		}
		i = int64(v)
	default:
		return 0, fmt.Errorf("%w: integer field holds %T", ErrBadValue, value)
	}
	if i < min || i > max {
		return 0, fmt.Errorf("%w: %d out of range [%d, %d]", ErrBadValue, i, min, max)
	}
	return i, nil
}

func toUint(value any, max uint64) (uint64, error) {
	var u uint64
	switch v := value.(type) {
	case int:
		if v < 0 {
			return 0, fmt.Errorf("%w: %d is negative", ErrBadValue, v)
		}
		u = uint64(v)
	case int8:
		if v < 0 {
			return 0, fmt.Errorf("%w: %d is negative", ErrBadValue, v)
		}
		u = uint64(v)
	case int16:
		if v < 0 {
			return 0, fmt.Errorf("%w: %d is negative", ErrBadValue, v)
		}
		u = uint64(v)
	case int32:
		if v < 0 {
			return 0, fmt.Errorf("%w: %d is negative", ErrBadValue, v)
		}
		u = uint64(v)
	case int64:
		if v < 0 {
			return 0, fmt.Errorf("%w: %d is negative", ErrBadValue, v)
		}
		u = uint64(v)
	case uint:
		u = uint64(v)
	case uint8:
		u = uint64(v)
	case uint16:
		u = uint64(v)
	case uint32:
		u = uint64(v)
	case uint64:
		u = v
	default:
		return 0, fmt.Errorf("%w: integer field holds %T", ErrBadValue, value)
	}
	if u > max {
		return 0, fmt.Errorf("%w: %d out of range [0, %d]", ErrBadValue, u, max)
	}
	return u, nil
}

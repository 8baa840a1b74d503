// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package daap

import "fmt"

// Object is one DMAP atom: a content code plus either a scalar value or, for
// container codes, a []*Object child list.
//
// Decoded scalars are normalized: signed integer types to int64, unsigned
// and date types to uint64, strings and versions to string. Encoding accepts
// any Go integer kind and coerces it, failing with *EncodeError on overflow.
type Object struct {
	Code  *ContentCode
	Value any
}

// New builds an atom from a pre-resolved content code. This is the fast
// construction path; it performs no table lookup.
func New(code *ContentCode, value any) *Object {
	return &Object{Code: code, Value: value}
}

// NewContainer builds a container atom from a pre-resolved content code.
func NewContainer(code *ContentCode, children ...*Object) *Object {
	return &Object{Code: code, Value: children}
}

// NewByName builds an atom by symbolic name, resolving it against the
// content-code table.
func NewByName(name string, value any) (*Object, error) {
	cc, ok := CodeByName(name)
	if !ok {
		return nil, &EncodeError{Code: name, Err: ErrUnknownCode}
	}
	return &Object{Code: cc, Value: value}, nil
}

// Children returns the child list of a container atom, or nil for scalars.
func (o *Object) Children() []*Object {
	children, _ := o.Value.([]*Object)
	return children
}

// Append adds children to a container atom.
func (o *Object) Append(children ...*Object) {
	existing, _ := o.Value.([]*Object)
	o.Value = append(existing, children...)
}

// Find searches the atom and its descendants for the first atom with the
// given symbolic name. Returns nil when absent.
func (o *Object) Find(name string) *Object {
	if o.Code != nil && o.Code.Name == name {
		return o
	}
	for _, child := range o.Children() {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// Int returns the scalar as a signed integer. Unsigned values are converted
// when they fit. Any integer kind is accepted, so the accessor works on both
// decoded atoms (normalized to int64/uint64) and freshly built trees.
func (o *Object) Int() (int64, bool) {
	switch v := o.Value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		if uint64(v) <= 1<<63-1 {
			return int64(v), true
		}
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v <= 1<<63-1 {
			return int64(v), true
		}
	}
	return 0, false
}

// Uint returns the scalar as an unsigned integer.
func (o *Object) Uint() (uint64, bool) {
	switch v := o.Value.(type) {
	case uint:
		return uint64(v), true
	case uint64:
		return v, true
	}
	i, ok := o.Int()
	if !ok || i < 0 {
		return 0, false
	}
	return uint64(i), true
}

// String renders the atom for debugging; containers render child counts
// rather than full subtrees.
func (o *Object) String() string {
	if o.Code == nil {
		return "daap.Object(?)"
	}
	if children := o.Children(); o.Code.Type == TypeContainer {
		return fmt.Sprintf("%s(%s)[%d children]", o.Code.Name, o.Code.Tag, len(children))
	}
	return fmt.Sprintf("%s(%s)=%v", o.Code.Name, o.Code.Tag, o.Value)
}

// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package models

import (
	"errors"

	"github.com/melodeon-dev/melodeon/store"
)

// Entity is anything a Collection can hold.
type Entity interface {
	Key() uint64
}

// Collection is a read-through view onto the children of one store parent
// key, typed to the entity class living there. The zero revision means the
// current revision including pending mutations; any other revision yields an
// immutable historical view.
type Collection[T Entity] struct {
	store    *store.Store
	parent   uint64
	revision uint64

	// attach wires owner-side state (nested collections) onto an entity
	// when it is added; detach cascades removal of owned collections.
	attach func(T)
	detach func(T)
}

func newCollection[T Entity](st *store.Store, parent uint64) *Collection[T] {
	return &Collection[T]{store: st, parent: parent, revision: store.Current}
}

// AtRevision returns a read-only view of the collection at the given
// revision. Reads fail with store.ErrRevisionGone below the retained window.
func (c *Collection[T]) AtRevision(revision uint64) *Collection[T] {
	view := *c
	view.revision = revision
	view.attach = nil
	view.detach = nil
	return &view
}

// Revision returns the revision this handle is bound to, store.Current for a
// live handle.
func (c *Collection[T]) Revision() uint64 {
	return c.revision
}

// Get returns the entity with the given id.
func (c *Collection[T]) Get(id uint64) (T, error) {
	var zero T
	value, err := c.store.Get(c.parent, id, c.revision)
	if err != nil {
		return zero, err
	}
	return value.(T), nil
}

// Len returns the number of entities. Zero for an absent parent.
func (c *Collection[T]) Len() int {
	ids, err := c.store.Children(c.parent, c.revision)
	if err != nil {
		return 0
	}
	return len(ids)
}

// IDs returns the entity ids, insertion order newest first. Nil for an
// absent parent.
func (c *Collection[T]) IDs() []uint64 {
	ids, err := c.store.Children(c.parent, c.revision)
	if err != nil {
		return nil
	}
	return ids
}

// Each walks the entities newest first until fn returns false.
func (c *Collection[T]) Each(fn func(T) bool) {
	_ = c.store.Iterate(c.parent, c.revision, func(_ uint64, value any) bool {
		return fn(value.(T))
	})
}

// Add stages the entity under its Key at the next revision. Adding an id
// that is already present stages an edit.
func (c *Collection[T]) Add(entity T) error {
	if c.revision != store.Current {
		return store.ErrReadOnlyRevision
	}
	if err := c.store.Set(c.parent, entity.Key(), entity); err != nil {
		return err
	}
	if c.attach != nil {
		c.attach(entity)
	}
	return nil
}

// Remove stages removal of the entity and cascades into the collections it
// owns.
func (c *Collection[T]) Remove(entity T) error {
	if c.revision != store.Current {
		return store.ErrReadOnlyRevision
	}
	if err := c.store.RemoveChild(c.parent, entity.Key()); err != nil {
		return err
	}
	if c.detach != nil {
		c.detach(entity)
	}
	return nil
}

// Updated returns the ids present in this view and absent or changed in
// other, ascending. A nil other means everything here is new.
func (c *Collection[T]) Updated(other *Collection[T]) []uint64 {
	if other == nil {
		return ascending(c.IDs())
	}
	return c.diffSign(other, +1)
}

// Removed returns the ids present in other but absent here, ascending.
func (c *Collection[T]) Removed(other *Collection[T]) []uint64 {
	if other == nil {
		return nil
	}
	return c.diffSign(other, -1)
}

func (c *Collection[T]) diffSign(other *Collection[T], sign int) []uint64 {
	changes, err := c.store.DiffParent(c.parent, c.resolved(), other.resolved())
	if err != nil {
		return nil
	}
	var ids []uint64
	for _, change := range changes {
		if change.Sign == sign {
			ids = append(ids, change.Child)
		}
	}
	return ids
}

// resolved maps the Current sentinel to the last committed revision, which
// is what diffs compare against.
func (c *Collection[T]) resolved() uint64 {
	if c.revision == store.Current {
		return c.store.Revision()
	}
	return c.revision
}

func ascending(ids []uint64) []uint64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uint64, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}

// tolerateAbsent drops ErrNotFound from cascade removals of parents that
// never held a child.
func tolerateAbsent(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package models

import (
	"github.com/melodeon-dev/melodeon/store"
)

// Server is the root of one shared library. It owns the revision store and
// the Databases collection.
type Server struct {
	Name         string
	PersistentID uint64

	store     *store.Store
	Databases *Collection[*Database]
}

// NewServer returns a Server with an empty store at revision 1.
func NewServer(name string) *Server {
	st := store.New()
	s := &Server{
		Name:         name,
		PersistentID: NewPersistentID(),
		store:        st,
	}
	s.Databases = newCollection[*Database](st, databasesKey())
	s.Databases.attach = func(d *Database) { d.bind(st) }
	s.Databases.detach = func(d *Database) { d.unbind(st) }
	return s
}

// Store exposes the underlying revision store for commit and retention
// control.
func (s *Server) Store() *store.Store {
	return s.store
}

// Revision returns the last committed revision.
func (s *Server) Revision() uint64 {
	return s.store.Revision()
}

// Database groups Items and Containers under one shared library.
type Database struct {
	ID           uint64
	PersistentID uint64
	Name         string

	Items      *Collection[*Item]
	Containers *Collection[*Container]
}

func (d *Database) Key() uint64 { return d.ID }

// bind wires the owned collections onto the database. Re-adding an edited
// copy of an existing database rebinds the same parent keys, so handles held
// before the edit stay valid.
func (d *Database) bind(st *store.Store) {
	d.Items = newCollection[*Item](st, itemsKey(d.ID))
	d.Containers = newCollection[*Container](st, containersKey(d.ID))
	d.Containers.attach = func(c *Container) { c.bind(st, d.ID) }
	d.Containers.detach = func(c *Container) { c.unbind(st, d.ID) }
}

func (d *Database) unbind(st *store.Store) {
	if d.Containers != nil {
		d.Containers.Each(func(c *Container) bool {
			c.unbind(st, d.ID)
			return true
		})
	}
	_ = tolerateAbsent(st.Remove(itemsKey(d.ID)))
	_ = tolerateAbsent(st.Remove(containersKey(d.ID)))
}

// Item is one playable track.
type Item struct {
	ID           uint64
	PersistentID uint64
	Name         string
	Artist       string
	Album        string
	Genre        string
	Year         int
	Track        int
	Duration     uint32 // milliseconds
	Bitrate      uint16 // kbit/s
	FileSize     uint64
	FileType     string // MIME type
	FileSuffix   string
	FileName     string
	HasArtwork   bool
}

func (i *Item) Key() uint64 { return i.ID }

// Container is a playlist. Every database carries exactly one base container
// listing the full library.
type Container struct {
	ID           uint64
	PersistentID uint64
	Name         string
	ParentID     uint64
	IsBase       bool
	IsSmart      bool

	Items *Collection[*ContainerItem]
}

func (c *Container) Key() uint64 { return c.ID }

func (c *Container) bind(st *store.Store, databaseID uint64) {
	c.Items = newCollection[*ContainerItem](st, containerItemsKey(databaseID, c.ID))
}

func (c *Container) unbind(st *store.Store, databaseID uint64) {
	_ = tolerateAbsent(st.Remove(containerItemsKey(databaseID, c.ID)))
}

// ContainerItem places an Item in a Container. ItemID must resolve within
// the same Database.
type ContainerItem struct {
	ID           uint64
	PersistentID uint64
	ItemID       uint64
	ContainerID  uint64
	Order        int
}

func (ci *ContainerItem) Key() uint64 { return ci.ID }

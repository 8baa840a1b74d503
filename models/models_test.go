// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package models

import (
	"errors"
	"reflect"
	"testing"

	"github.com/melodeon-dev/melodeon/store"
)

func buildLibrary(t *testing.T) (*Server, *Database) {
	t.Helper()
	srv := NewServer("Test Library")
	db := &Database{ID: 1, Name: "Main", PersistentID: NewPersistentID()}
	if err := srv.Databases.Add(db); err != nil {
		t.Fatalf("Add database failed: %v", err)
	}
	return srv, db
}

func TestServerStartsAtRevisionOne(t *testing.T) {
	srv := NewServer("Test Library")
	if got := srv.Revision(); got != 1 {
		t.Errorf("Revision = %d, want 1", got)
	}
	if srv.PersistentID == 0 {
		t.Error("Expected non-zero persistent id")
	}
}

func TestNestedCollections(t *testing.T) {
	srv, db := buildLibrary(t)

	if db.Items == nil || db.Containers == nil {
		t.Fatal("Adding a database should bind its collections")
	}

	item := &Item{ID: 10, Name: "Song", Artist: "Artist"}
	if err := db.Items.Add(item); err != nil {
		t.Fatalf("Add item failed: %v", err)
	}

	base := &Container{ID: 20, Name: "Main", IsBase: true}
	if err := db.Containers.Add(base); err != nil {
		t.Fatalf("Add container failed: %v", err)
	}
	if base.Items == nil {
		t.Fatal("Adding a container should bind its item collection")
	}
	if err := base.Items.Add(&ContainerItem{ID: 30, ItemID: 10, ContainerID: 20, Order: 1}); err != nil {
		t.Fatalf("Add container item failed: %v", err)
	}

	if err := srv.Store().Commit(2); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	got, err := db.Items.Get(10)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Song" {
		t.Errorf("Item name = %q, want Song", got.Name)
	}
	if db.Items.Len() != 1 || db.Containers.Len() != 1 || base.Items.Len() != 1 {
		t.Error("Unexpected collection lengths")
	}
}

func TestEachNewestFirst(t *testing.T) {
	_, db := buildLibrary(t)
	for i, name := range []string{"First", "Second", "Third"} {
		if err := db.Items.Add(&Item{ID: uint64(i + 1), Name: name}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	var names []string
	db.Items.Each(func(it *Item) bool {
		names = append(names, it.Name)
		return true
	})
	if !reflect.DeepEqual(names, []string{"Third", "Second", "First"}) {
		t.Errorf("Each order = %v", names)
	}
}

func TestHistoricalViewIsReadOnly(t *testing.T) {
	srv, db := buildLibrary(t)
	if err := db.Items.Add(&Item{ID: 1, Name: "Song"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := srv.Store().Commit(2); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	view := db.Items.AtRevision(2)
	if err := view.Add(&Item{ID: 2}); !errors.Is(err, store.ErrReadOnlyRevision) {
		t.Errorf("Expected ErrReadOnlyRevision, got %v", err)
	}
	if err := view.Remove(&Item{ID: 1}); !errors.Is(err, store.ErrReadOnlyRevision) {
		t.Errorf("Expected ErrReadOnlyRevision, got %v", err)
	}
	if view.Revision() != 2 {
		t.Errorf("Revision = %d, want 2", view.Revision())
	}
}

func TestHistoricalViewSeesOldValue(t *testing.T) {
	srv, db := buildLibrary(t)
	if err := db.Items.Add(&Item{ID: 1, Name: "Old"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := srv.Store().Commit(2); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := db.Items.Add(&Item{ID: 1, Name: "New"}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if err := srv.Store().Commit(3); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	old, err := db.Items.AtRevision(2).Get(1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if old.Name != "Old" {
		t.Errorf("Historical name = %q, want Old", old.Name)
	}
	current, err := db.Items.Get(1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if current.Name != "New" {
		t.Errorf("Current name = %q, want New", current.Name)
	}
}

func TestUpdatedAndRemoved(t *testing.T) {
	srv, db := buildLibrary(t)
	if err := db.Items.Add(&Item{ID: 1, Name: "A"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := db.Items.Add(&Item{ID: 2, Name: "B"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := srv.Store().Commit(2); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if err := db.Items.Add(&Item{ID: 1, Name: "A2"}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if err := db.Items.Remove(&Item{ID: 2}); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := db.Items.Add(&Item{ID: 3, Name: "C"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := srv.Store().Commit(3); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	newView := db.Items.AtRevision(3)
	oldView := db.Items.AtRevision(2)

	if got := newView.Updated(oldView); !reflect.DeepEqual(got, []uint64{1, 3}) {
		t.Errorf("Updated = %v, want [1 3]", got)
	}
	if got := newView.Removed(oldView); !reflect.DeepEqual(got, []uint64{2}) {
		t.Errorf("Removed = %v, want [2]", got)
	}

	// nil means a full listing: everything is new, nothing removed.
	if got := newView.Updated(nil); !reflect.DeepEqual(got, []uint64{1, 3}) {
		t.Errorf("Updated(nil) = %v, want [1 3]", got)
	}
	if got := newView.Removed(nil); got != nil {
		t.Errorf("Removed(nil) = %v, want nil", got)
	}
}

func TestRemoveDatabaseCascades(t *testing.T) {
	srv, db := buildLibrary(t)
	if err := db.Items.Add(&Item{ID: 1, Name: "Song"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	base := &Container{ID: 2, Name: "Main", IsBase: true}
	if err := db.Containers.Add(base); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := base.Items.Add(&ContainerItem{ID: 3, ItemID: 1, ContainerID: 2}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := srv.Store().Commit(2); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if err := srv.Databases.Remove(db); err != nil {
		t.Fatalf("Remove database failed: %v", err)
	}
	if err := srv.Store().Commit(3); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if srv.Databases.Len() != 0 {
		t.Error("Database still listed after removal")
	}
	if db.Items.Len() != 0 || db.Containers.Len() != 0 || base.Items.Len() != 0 {
		t.Error("Owned collections survived database removal")
	}

	// History at revision 2 is still intact.
	if got := srv.Databases.AtRevision(2).Len(); got != 1 {
		t.Errorf("Databases at revision 2 = %d, want 1", got)
	}
	if got := db.Items.AtRevision(2).Len(); got != 1 {
		t.Errorf("Items at revision 2 = %d, want 1", got)
	}
}

func TestNewPersistentID(t *testing.T) {
	a, b := NewPersistentID(), NewPersistentID()
	if a == 0 || b == 0 {
		t.Error("Expected non-zero ids")
	}
	if a == b {
		t.Error("Expected distinct ids")
	}
}

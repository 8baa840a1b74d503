// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package store

import (
	"errors"
	"reflect"
	"testing"
)

const parent = uint64(1)

// values collects the iteration order of child values under parent.
func values(t *testing.T, s *Store, revision uint64) []string {
	t.Helper()
	var out []string
	err := s.Iterate(parent, revision, func(_ uint64, v any) bool {
		out = append(out, v.(string))
		return true
	})
	if err != nil {
		t.Fatalf("Iterate failed: %v", err)
	}
	return out
}

func mustSet(t *testing.T, s *Store, child uint64, v string) {
	t.Helper()
	if err := s.Set(parent, child, v); err != nil {
		t.Fatalf("Set(%d, %q) failed: %v", child, v, err)
	}
}

func mustCommit(t *testing.T, s *Store, next uint64) {
	t.Helper()
	if err := s.Commit(next); err != nil {
		t.Fatalf("Commit(%d) failed: %v", next, err)
	}
}

func TestIterateNewestFirst(t *testing.T) {
	s := New()
	mustSet(t, s, 1, "A1")
	mustSet(t, s, 2, "B1")
	mustSet(t, s, 3, "C1")

	if got := values(t, s, Current); !reflect.DeepEqual(got, []string{"C1", "B1", "A1"}) {
		t.Errorf("Iterate = %v, want [C1 B1 A1]", got)
	}

	// Editing an existing key keeps its insertion position.
	mustSet(t, s, 1, "A2")
	mustSet(t, s, 4, "D1")

	if got := values(t, s, Current); !reflect.DeepEqual(got, []string{"D1", "C1", "B1", "A2"}) {
		t.Errorf("Iterate = %v, want [D1 C1 B1 A2]", got)
	}
}

func TestRemoveChild(t *testing.T) {
	s := New()
	mustSet(t, s, 1, "A1")
	mustSet(t, s, 2, "B1")
	mustSet(t, s, 3, "C1")

	if err := s.RemoveChild(parent, 1); err != nil {
		t.Fatalf("RemoveChild failed: %v", err)
	}
	if got := values(t, s, Current); !reflect.DeepEqual(got, []string{"C1", "B1"}) {
		t.Errorf("Iterate = %v, want [C1 B1]", got)
	}

	if err := s.RemoveChild(parent, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on double remove, got %v", err)
	}
	if err := s.RemoveChild(parent, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for absent child, got %v", err)
	}
}

func TestGetAcrossRevisions(t *testing.T) {
	s := New()
	mustSet(t, s, 1, "A1")
	mustCommit(t, s, 2)
	mustSet(t, s, 1, "A2")
	mustCommit(t, s, 3)

	if v, err := s.Get(parent, 1, Current); err != nil || v != "A2" {
		t.Errorf("Get(current) = %v, %v", v, err)
	}
	if v, err := s.Get(parent, 1, 3); err != nil || v != "A2" {
		t.Errorf("Get(3) = %v, %v", v, err)
	}
	if v, err := s.Get(parent, 1, 2); err != nil || v != "A1" {
		t.Errorf("Get(2) = %v, %v", v, err)
	}

	// Before the first commit the key did not exist.
	if _, err := s.Get(parent, 1, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(1) expected ErrNotFound, got %v", err)
	}

	if err := s.RemoveChild(parent, 1); err != nil {
		t.Fatalf("RemoveChild failed: %v", err)
	}
	mustCommit(t, s, 4)

	if _, err := s.Get(parent, 1, Current); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(current) after remove expected ErrNotFound, got %v", err)
	}
	if v, err := s.Get(parent, 1, 3); err != nil || v != "A2" {
		t.Errorf("Get(3) after remove = %v, %v", v, err)
	}
}

func TestGetRevisionBounds(t *testing.T) {
	s := New()
	mustSet(t, s, 1, "A1")
	mustCommit(t, s, 2)

	if _, err := s.Get(parent, 1, 7); !errors.Is(err, ErrRevisionInFuture) {
		t.Errorf("Expected ErrRevisionInFuture, got %v", err)
	}
	if _, err := s.Children(parent, 7); !errors.Is(err, ErrRevisionInFuture) {
		t.Errorf("Expected ErrRevisionInFuture, got %v", err)
	}
}

func TestPendingBundledUnderNextCommit(t *testing.T) {
	s := New()
	mustSet(t, s, 1, "A1")
	mustSet(t, s, 1, "A1.2") // last write wins within one revision
	mustCommit(t, s, 2)

	if v, err := s.Get(parent, 1, 2); err != nil || v != "A1.2" {
		t.Errorf("Get(2) = %v, %v", v, err)
	}

	// Pending mutations are not visible at the committed revision.
	mustSet(t, s, 2, "B1")
	if _, err := s.Get(parent, 2, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("Pending key visible at committed revision: %v", err)
	}
	if v, err := s.Get(parent, 2, Current); err != nil || v != "B1" {
		t.Errorf("Get(current) = %v, %v", v, err)
	}
}

func TestRemoveThenSetRestoresAsEdit(t *testing.T) {
	s := New()
	mustSet(t, s, 1, "A1")
	mustCommit(t, s, 2)

	if err := s.RemoveChild(parent, 1); err != nil {
		t.Fatalf("RemoveChild failed: %v", err)
	}
	mustSet(t, s, 1, "A2")
	mustCommit(t, s, 3)

	if v, err := s.Get(parent, 1, 3); err != nil || v != "A2" {
		t.Errorf("Get(3) = %v, %v", v, err)
	}
	if v, err := s.Get(parent, 1, 2); err != nil || v != "A1" {
		t.Errorf("Get(2) = %v, %v", v, err)
	}

	// The restore is an edit between 2 and 3, not a remove+add pair.
	changes, err := s.DiffParent(parent, 3, 2)
	if err != nil {
		t.Fatalf("DiffParent failed: %v", err)
	}
	want := []Change{{Parent: parent, Child: 1, Sign: +1}}
	if !reflect.DeepEqual(changes, want) {
		t.Errorf("DiffParent = %v, want %v", changes, want)
	}
}

func TestRemoveParentCascades(t *testing.T) {
	s := New()
	mustSet(t, s, 1, "A1")
	mustSet(t, s, 2, "B1")
	mustCommit(t, s, 2)

	if err := s.Remove(parent); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	mustCommit(t, s, 3)

	// A tombstoned parent reads as not found, never as an empty set.
	if _, err := s.Children(parent, 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("Children(3) expected ErrNotFound, got %v", err)
	}
	if _, err := s.Get(parent, 1, 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(3) expected ErrNotFound, got %v", err)
	}

	// History before the remove stays readable.
	if got, err := s.Children(parent, 2); err != nil || len(got) != 2 {
		t.Errorf("Children(2) = %v, %v", got, err)
	}

	// Setting under a tombstoned parent is refused.
	if err := s.Set(parent, 3, "C1"); !errors.Is(err, ErrDeletedParent) {
		t.Errorf("Expected ErrDeletedParent, got %v", err)
	}

	if err := s.Remove(parent); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on double remove, got %v", err)
	}
}

func TestCommitOrder(t *testing.T) {
	s := New()
	mustCommit(t, s, 2)
	if err := s.Commit(2); !errors.Is(err, ErrRevisionOrder) {
		t.Errorf("Expected ErrRevisionOrder, got %v", err)
	}
	if err := s.Commit(1); !errors.Is(err, ErrRevisionOrder) {
		t.Errorf("Expected ErrRevisionOrder, got %v", err)
	}
	// Gaps are allowed as long as the revision advances.
	mustCommit(t, s, 10)
	if got := s.Revision(); got != 10 {
		t.Errorf("Revision = %d, want 10", got)
	}
}

func TestClean(t *testing.T) {
	s := New()
	mustSet(t, s, 1, "A1")
	mustSet(t, s, 2, "B1")
	mustSet(t, s, 3, "C1")
	mustCommit(t, s, 2)

	if err := s.RemoveChild(parent, 1); err != nil {
		t.Fatalf("RemoveChild failed: %v", err)
	}
	mustCommit(t, s, 3)
	if err := s.RemoveChild(parent, 3); err != nil {
		t.Fatalf("RemoveChild failed: %v", err)
	}
	mustCommit(t, s, 4)

	if got := values(t, s, 2); !reflect.DeepEqual(got, []string{"C1", "B1", "A1"}) {
		t.Errorf("values(2) = %v", got)
	}

	s.Clean(3)

	// Revision 3 and later stay readable.
	if got := values(t, s, 3); !reflect.DeepEqual(got, []string{"C1", "B1"}) {
		t.Errorf("values(3) after clean = %v", got)
	}
	if got := values(t, s, 4); !reflect.DeepEqual(got, []string{"B1"}) {
		t.Errorf("values(4) after clean = %v", got)
	}

	// Revision 2 is gone.
	if _, err := s.Children(parent, 2); !errors.Is(err, ErrRevisionGone) {
		t.Errorf("Expected ErrRevisionGone, got %v", err)
	}
	if _, err := s.Get(parent, 1, 2); !errors.Is(err, ErrRevisionGone) {
		t.Errorf("Expected ErrRevisionGone, got %v", err)
	}

	s.Clean(4)
	if got := values(t, s, 4); !reflect.DeepEqual(got, []string{"B1"}) {
		t.Errorf("values(4) after full clean = %v", got)
	}
	if _, err := s.Children(parent, 3); !errors.Is(err, ErrRevisionGone) {
		t.Errorf("Expected ErrRevisionGone, got %v", err)
	}
	if got := s.Earliest(); got != 4 {
		t.Errorf("Earliest = %d, want 4", got)
	}
}

func TestDiffSigns(t *testing.T) {
	s := New()
	mustCommit(t, s, 2)
	mustSet(t, s, 1, "A2")
	mustCommit(t, s, 3)
	if err := s.RemoveChild(parent, 1); err != nil {
		t.Fatalf("RemoveChild failed: %v", err)
	}
	mustCommit(t, s, 4)

	tests := []struct {
		revA, revB uint64
		want       []Change
	}{
		{3, 2, []Change{{parent, 1, +1}}}, // added between 2 and 3
		{2, 3, []Change{{parent, 1, -1}}},
		{4, 3, []Change{{parent, 1, -1}}}, // removed between 3 and 4
		{3, 4, []Change{{parent, 1, +1}}},
		{4, 2, nil}, // absent at both
		{3, 3, []Change{{parent, 1, 0}}},
	}

	for _, tt := range tests {
		got, err := s.Diff(tt.revA, tt.revB)
		if err != nil {
			t.Fatalf("Diff(%d, %d) failed: %v", tt.revA, tt.revB, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Diff(%d, %d) = %v, want %v", tt.revA, tt.revB, got, tt.want)
		}
	}
}

func TestDiffEditedKey(t *testing.T) {
	s := New()
	mustSet(t, s, 1, "A1")
	mustCommit(t, s, 2)
	mustSet(t, s, 1, "A2")
	mustCommit(t, s, 3)
	mustCommit(t, s, 4)

	// Edited between B and A reads as +1 from A's side.
	if got, _ := s.Diff(3, 2); !reflect.DeepEqual(got, []Change{{parent, 1, +1}}) {
		t.Errorf("Diff(3, 2) = %v", got)
	}
	// Untouched between 3 and 4: identical record.
	if got, _ := s.Diff(4, 3); !reflect.DeepEqual(got, []Change{{parent, 1, 0}}) {
		t.Errorf("Diff(4, 3) = %v", got)
	}
}

func TestDiffRevisionBounds(t *testing.T) {
	s := New()
	mustSet(t, s, 1, "A1")
	mustCommit(t, s, 2)

	if _, err := s.Diff(2, 9); !errors.Is(err, ErrRevisionInFuture) {
		t.Errorf("Expected ErrRevisionInFuture, got %v", err)
	}

	s.Clean(2)
	// Nothing older than revision 2 is retained; earliest moved past 1.
	if _, err := s.Diff(2, 1); !errors.Is(err, ErrRevisionGone) {
		t.Errorf("Expected ErrRevisionGone, got %v", err)
	}
}

func TestIterateStopsEarly(t *testing.T) {
	s := New()
	mustSet(t, s, 1, "A1")
	mustSet(t, s, 2, "B1")
	mustSet(t, s, 3, "C1")

	var seen int
	err := s.Iterate(parent, Current, func(_ uint64, _ any) bool {
		seen++
		return seen < 2
	})
	if err != nil {
		t.Fatalf("Iterate failed: %v", err)
	}
	if seen != 2 {
		t.Errorf("Expected early stop after 2, saw %d", seen)
	}
}

func TestSnapshotSurvivesLaterCommits(t *testing.T) {
	s := New()
	mustSet(t, s, 1, "A1")
	mustSet(t, s, 2, "B1")
	mustCommit(t, s, 2)

	before, err := s.Children(parent, 2)
	if err != nil {
		t.Fatalf("Children failed: %v", err)
	}

	if err := s.RemoveChild(parent, 1); err != nil {
		t.Fatalf("RemoveChild failed: %v", err)
	}
	mustSet(t, s, 3, "C1")
	mustCommit(t, s, 3)

	after, err := s.Children(parent, 2)
	if err != nil {
		t.Fatalf("Children failed: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("Revision 2 snapshot changed: %v vs %v", before, after)
	}
}

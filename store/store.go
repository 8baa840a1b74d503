// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package store

import (
	"sort"
	"sync"
)

// Current selects the current revision, including staged mutations.
const Current uint64 = 0

// Operation tags one history record.
type Operation uint8

const (
	// OpAdd records a key becoming live.
	OpAdd Operation = iota + 1
	// OpEdit records a live key changing value.
	OpEdit
	// OpDelete records a tombstone.
	OpDelete
)

// Change is one element of a Diff result. Sign is +1 when the key is present
// at revision A and absent or different at revision B, -1 when present at B
// and absent at A, and 0 when identical at both.
type Change struct {
	Parent uint64
	Child  uint64
	Sign   int
}

type childRef struct {
	parent uint64
	child  uint64
}

// entry is one history record. Parent histories hold the insertion-ordered
// live child-id list as their value; child histories hold the opaque value.
type entry struct {
	revision uint64
	op       Operation
	value    any
}

// Store is the versioned parent/child dictionary. A single writer mutex
// serializes mutations; retained revisions are immutable, so readers observe
// consistent snapshots for any revision they started from.
type Store struct {
	mu sync.RWMutex

	current  uint64
	earliest uint64

	parents  map[uint64][]entry
	children map[childRef][]entry

	// Keys touched since the last Commit. Their tail records carry the
	// staging revision current+1 until Commit restamps them.
	stagedParents  map[uint64]struct{}
	stagedChildren map[childRef]struct{}
}

// New returns an empty store at revision 1.
func New() *Store {
	return &Store{
		current:        1,
		earliest:       1,
		parents:        make(map[uint64][]entry),
		children:       make(map[childRef][]entry),
		stagedParents:  make(map[uint64]struct{}),
		stagedChildren: make(map[childRef]struct{}),
	}
}

// Revision returns the current (last committed) revision.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Earliest returns the oldest retained revision.
func (s *Store) Earliest() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.earliest
}

// latest returns the newest record, staged included. Nil for empty history.
func latest(entries []entry) *entry {
	if len(entries) == 0 {
		return nil
	}
	return &entries[len(entries)-1]
}

// at returns the newest record with revision <= rev via right-biased binary
// search, or nil when the key has no record that old.
func at(entries []entry, rev uint64) *entry {
	low, high := 0, len(entries)
	for low < high {
		mid := (low + high) / 2
		if entries[mid].revision > rev {
			high = mid
		} else {
			low = mid + 1
		}
	}
	if low == 0 {
		return nil
	}
	return &entries[low-1]
}

// atIndex is at() returning the record index, -1 when absent. Used by Diff
// to compare record identity across revisions.
func atIndex(entries []entry, rev uint64) int {
	low, high := 0, len(entries)
	for low < high {
		mid := (low + high) / 2
		if entries[mid].revision > rev {
			high = mid
		} else {
			low = mid + 1
		}
	}
	return low - 1
}

func live(e *entry) bool {
	return e != nil && e.op != OpDelete
}

// checkRevision validates an explicit read revision against the retained
// window. Callers must hold at least the read lock.
func (s *Store) checkRevision(rev uint64) error {
	if rev > s.current {
		return ErrRevisionInFuture
	}
	if rev < s.earliest {
		return ErrRevisionGone
	}
	return nil
}

// stagingRevision is the revision staged mutations carry until Commit.
func (s *Store) stagingRevision() uint64 {
	return s.current + 1
}

// Set adds or updates (parent, child). The parent is created implicitly;
// setting under a parent tombstoned at the current revision fails with
// ErrDeletedParent. Repeated sets of the same key between commits collapse:
// the last write wins. A set following a remove of a key that was live at
// the last committed revision restores it as an edit.
func (s *Store) Set(parent, child uint64, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := latest(s.parents[parent]); p != nil && p.op == OpDelete {
		return ErrDeletedParent
	}

	ref := childRef{parent, child}
	staging := s.stagingRevision()
	history := s.children[ref]

	// Liveness at the last committed revision decides add vs edit, so a
	// remove+set pair inside one staging revision restores as an edit.
	op := OpAdd
	if live(at(history, s.current)) {
		op = OpEdit
	}

	if tail := latest(history); tail != nil && tail.revision == staging {
		history[len(history)-1] = entry{revision: staging, op: op, value: value}
	} else {
		s.children[ref] = append(history, entry{revision: staging, op: op, value: value})
	}
	s.stagedChildren[ref] = struct{}{}

	list := s.stageParent(parent)
	if !containsID(list, child) {
		s.setParentList(parent, append(list, child))
	}
	return nil
}

// Remove tombstones a parent at the current revision and cascades tombstones
// onto all live children. Fails with ErrNotFound when the parent is absent
// or already tombstoned.
func (s *Store) Remove(parent uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := latest(s.parents[parent])
	if !live(p) {
		return ErrNotFound
	}

	staging := s.stagingRevision()
	for _, child := range p.value.([]uint64) {
		ref := childRef{parent, child}
		history := s.children[ref]
		if !live(latest(history)) {
			continue
		}
		if tail := latest(history); tail != nil && tail.revision == staging {
			history[len(history)-1] = entry{revision: staging, op: OpDelete}
		} else {
			s.children[ref] = append(history, entry{revision: staging, op: OpDelete})
		}
		s.stagedChildren[ref] = struct{}{}
	}

	history := s.parents[parent]
	if tail := latest(history); tail != nil && tail.revision == staging {
		history[len(history)-1] = entry{revision: staging, op: OpDelete}
	} else {
		s.parents[parent] = append(history, entry{revision: staging, op: OpDelete})
	}
	s.stagedParents[parent] = struct{}{}
	return nil
}

// RemoveChild tombstones one (parent, child) at the current revision.
func (s *Store) RemoveChild(parent, child uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref := childRef{parent, child}
	history := s.children[ref]
	if !live(latest(history)) {
		return ErrNotFound
	}

	staging := s.stagingRevision()
	if tail := latest(history); tail != nil && tail.revision == staging {
		history[len(history)-1] = entry{revision: staging, op: OpDelete}
	} else {
		s.children[ref] = append(history, entry{revision: staging, op: OpDelete})
	}
	s.stagedChildren[ref] = struct{}{}

	list := s.stageParent(parent)
	s.setParentList(parent, removeID(list, child))
	return nil
}

// stageParent ensures the parent has a staged record with a copy-on-write
// child list and returns that list.
func (s *Store) stageParent(parent uint64) []uint64 {
	staging := s.stagingRevision()
	history := s.parents[parent]
	tail := latest(history)

	switch {
	case tail == nil:
		s.parents[parent] = append(history, entry{revision: staging, op: OpAdd, value: []uint64{}})
	case tail.revision != staging:
		var snapshot []uint64
		if tail.op != OpDelete {
			snapshot = append([]uint64(nil), tail.value.([]uint64)...)
		}
		s.parents[parent] = append(history, entry{revision: staging, op: OpEdit, value: snapshot})
	}
	s.stagedParents[parent] = struct{}{}

	history = s.parents[parent]
	return history[len(history)-1].value.([]uint64)
}

func (s *Store) setParentList(parent uint64, list []uint64) {
	history := s.parents[parent]
	history[len(history)-1].value = list
}

func containsID(list []uint64, id uint64) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(list []uint64, id uint64) []uint64 {
	for i, v := range list {
		if v == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Commit stamps all staged mutations with next and advances the current
// revision. next must be greater than the current revision. Committing with
// nothing staged still advances the revision.
func (s *Store) Commit(next uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if next <= s.current {
		return ErrRevisionOrder
	}

	staging := s.stagingRevision()
	for parent := range s.stagedParents {
		history := s.parents[parent]
		if tail := latest(history); tail != nil && tail.revision == staging {
			history[len(history)-1].revision = next
		}
	}
	for ref := range s.stagedChildren {
		history := s.children[ref]
		if tail := latest(history); tail != nil && tail.revision == staging {
			history[len(history)-1].revision = next
		}
	}

	s.stagedParents = make(map[uint64]struct{})
	s.stagedChildren = make(map[childRef]struct{})
	s.current = next
	return nil
}

// Get returns the value of (parent, child) at the given revision (Current
// for the latest, staged included).
func (s *Store) Get(parent, child uint64, revision uint64) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.children[childRef{parent, child}]
	e, err := s.lookup(history, revision)
	if err != nil {
		return nil, err
	}
	return e.value, nil
}

// Children returns the child ids live under parent at the given revision,
// insertion order newest first. A tombstoned or absent parent fails with
// ErrNotFound, never an empty set.
func (s *Store) Children(parent uint64, revision uint64) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.childrenLocked(parent, revision)
}

func (s *Store) childrenLocked(parent uint64, revision uint64) ([]uint64, error) {
	history := s.parents[parent]
	e, err := s.lookup(history, revision)
	if err != nil {
		return nil, err
	}

	list := e.value.([]uint64)
	reversed := make([]uint64, len(list))
	for i, id := range list {
		reversed[len(list)-1-i] = id
	}
	return reversed, nil
}

func (s *Store) lookup(history []entry, revision uint64) (*entry, error) {
	var e *entry
	if revision == Current {
		e = latest(history)
	} else {
		if err := s.checkRevision(revision); err != nil {
			return nil, err
		}
		e = at(history, revision)
	}
	if !live(e) {
		return nil, ErrNotFound
	}
	return e, nil
}

// Iterate walks (child, value) pairs under parent at the given revision,
// insertion order newest first, until fn returns false. The iteration
// observes the snapshot taken at the first call, so concurrent commits do
// not disturb it.
func (s *Store) Iterate(parent uint64, revision uint64, fn func(child uint64, value any) bool) error {
	s.mu.RLock()
	ids, err := s.childrenLocked(parent, revision)
	if err != nil {
		s.mu.RUnlock()
		return err
	}
	if revision == Current {
		// Pin the iteration to the staging view it started from.
		revision = s.current + 1
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.mu.RLock()
		e := at(s.children[childRef{parent, id}], revision)
		s.mu.RUnlock()
		if !live(e) {
			continue
		}
		if !fn(id, e.value) {
			return nil
		}
	}
	return nil
}

// Clean discards history strictly older than upTo. Data visible exactly at
// upTo and later is retained; reads below upTo fail with ErrRevisionGone
// afterwards. Revisions beyond the current one are clamped.
func (s *Store) Clean(upTo uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if upTo > s.current {
		upTo = s.current
	}
	if upTo <= s.earliest {
		return
	}

	for parent, history := range s.parents {
		trimmed := trimHistory(history, upTo)
		if len(trimmed) == 0 {
			delete(s.parents, parent)
		} else {
			s.parents[parent] = trimmed
		}
	}
	for ref, history := range s.children {
		trimmed := trimHistory(history, upTo)
		if len(trimmed) == 0 {
			delete(s.children, ref)
		} else {
			s.children[ref] = trimmed
		}
	}
	s.earliest = upTo
}

// trimHistory keeps the record that is current at upTo (unless it is a
// tombstone, which nothing can observe anymore) plus everything newer.
func trimHistory(history []entry, upTo uint64) []entry {
	start := 0
	for start < len(history) && history[start].revision <= upTo {
		start++
	}
	if start > 0 && history[start-1].op != OpDelete {
		start--
	}
	if start == 0 {
		return history
	}
	return append([]entry(nil), history[start:]...)
}

// Diff compares two retained revisions. See Change for the sign convention.
// The result is ordered by (parent, child) for determinism.
func (s *Store) Diff(revA, revB uint64) ([]Change, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkRevision(revA); err != nil {
		return nil, err
	}
	if err := s.checkRevision(revB); err != nil {
		return nil, err
	}

	var changes []Change
	for ref, history := range s.children {
		if change, ok := diffOne(history, revA, revB); ok {
			changes = append(changes, Change{Parent: ref.parent, Child: ref.child, Sign: change})
		}
	}
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Parent != changes[j].Parent {
			return changes[i].Parent < changes[j].Parent
		}
		return changes[i].Child < changes[j].Child
	})
	return changes, nil
}

// DiffParent is Diff restricted to the children of one parent.
func (s *Store) DiffParent(parent uint64, revA, revB uint64) ([]Change, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkRevision(revA); err != nil {
		return nil, err
	}
	if err := s.checkRevision(revB); err != nil {
		return nil, err
	}

	var changes []Change
	for ref, history := range s.children {
		if ref.parent != parent {
			continue
		}
		if change, ok := diffOne(history, revA, revB); ok {
			changes = append(changes, Change{Parent: parent, Child: ref.child, Sign: change})
		}
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Child < changes[j].Child
	})
	return changes, nil
}

// diffOne classifies one key between two revisions. Identity of the history
// record, not value equality, decides "identical": a key re-set between the
// revisions counts as different even if the value compares equal.
func diffOne(history []entry, revA, revB uint64) (int, bool) {
	idxA := atIndex(history, revA)
	idxB := atIndex(history, revB)
	liveA := idxA >= 0 && history[idxA].op != OpDelete
	liveB := idxB >= 0 && history[idxB].op != OpDelete

	switch {
	case liveA && !liveB:
		return +1, true
	case !liveA && liveB:
		return -1, true
	case liveA && liveB && idxA != idxB:
		return +1, true
	case liveA && liveB:
		return 0, true
	}
	return 0, false
}

// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package provider

import "sync"

// SessionState tracks where a client is in its lifecycle.
type SessionState uint8

const (
	// Connecting is the state between login and the first request.
	Connecting SessionState = iota
	// Connected is the steady state while browsing the library.
	Connected
	// Streaming is set while at least one media stream is open.
	Streaming
)

func (s SessionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Streaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// Session is the server-side state for one connected client.
type Session struct {
	ID            uint64
	UserAgent     string
	RemoteAddr    string
	ClientVersion string

	mu       sync.Mutex
	state    SessionState
	revision uint64

	// Counters. Items counts every media request; itemsUnique counts only
	// full (non-range) requests, approximating distinct plays.
	items       uint64
	itemsUnique uint64
	artworks    uint64

	// streams counts concurrently open media streams; the state reverts to
	// Connected when the last one closes.
	streams int
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Revision returns the last revision this client acknowledged.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Counters returns the per-session request counters.
func (s *Session) Counters() (items, itemsUnique, artworks uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items, s.itemsUnique, s.artworks
}

func (s *Session) setConnected() {
	s.mu.Lock()
	if s.streams == 0 {
		s.state = Connected
	}
	s.mu.Unlock()
}

// ackRevision records the revision the client reports having. It never
// decreases.
func (s *Session) ackRevision(revision uint64) {
	s.mu.Lock()
	if revision > s.revision {
		s.revision = revision
	}
	s.mu.Unlock()
}

func (s *Session) beginStream(ranged bool) {
	s.mu.Lock()
	s.state = Streaming
	s.streams++
	s.items++
	if !ranged {
		s.itemsUnique++
	}
	s.mu.Unlock()
}

func (s *Session) endStream() {
	s.mu.Lock()
	if s.streams > 0 {
		s.streams--
	}
	if s.streams == 0 {
		s.state = Connected
	}
	s.mu.Unlock()
}

func (s *Session) countArtwork() {
	s.mu.Lock()
	s.artworks++
	s.mu.Unlock()
}

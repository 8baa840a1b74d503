// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package provider

import (
	"context"
	"sync"

	"github.com/melodeon-dev/melodeon/internal/logging"
	"github.com/melodeon-dev/melodeon/internal/metrics"
	"github.com/melodeon-dev/melodeon/models"
	"github.com/melodeon-dev/melodeon/responses"
	"github.com/melodeon-dev/melodeon/store"
)

// Provider binds the model, the session table and a MediaSource into the
// request-level DAAP contract.
type Provider struct {
	server *models.Server
	media  MediaSource

	mu             sync.Mutex
	sessions       map[uint64]*Session
	sessionCounter uint64
	hooks          map[string][]HookFunc

	// updated is closed and replaced under mu on every Update; parked
	// NextRevision calls wait on the instance they sampled.
	updated chan struct{}
}

// New returns a Provider serving the given library. media may be nil for a
// browse-only provider; media requests then fail with store.ErrNotFound.
func New(server *models.Server, media MediaSource) *Provider {
	return &Provider{
		server:   server,
		media:    media,
		sessions: make(map[uint64]*Session),
		hooks:    make(map[string][]HookFunc),
		updated:  make(chan struct{}),
	}
}

// Server returns the library root.
func (p *Provider) Server() *models.Server {
	return p.server
}

// Revision returns the current library revision.
func (p *Provider) Revision() uint64 {
	return p.server.Revision()
}

// Capabilities describes the provider for the response builders.
func (p *Provider) Capabilities() responses.ServerCapabilities {
	caps := responses.ServerCapabilities{
		Name:          p.server.Name,
		DatabaseCount: p.server.Databases.Len(),
	}
	if p.media != nil {
		caps.SupportsPersistentID = p.media.SupportsPersistentID()
		caps.SupportsArtwork = p.media.SupportsArtwork()
	}
	return caps
}

// CreateSession allocates the next session id and attaches the client
// metadata. Session ids start at 1 and are never reused within a process.
func (p *Provider) CreateSession(userAgent, remoteAddr, clientVersion string) (*Session, error) {
	p.mu.Lock()
	p.sessionCounter++
	session := &Session{
		ID:            p.sessionCounter,
		UserAgent:     userAgent,
		RemoteAddr:    remoteAddr,
		ClientVersion: clientVersion,
		state:         Connecting,
		revision:      1,
	}
	p.sessions[session.ID] = session
	p.mu.Unlock()

	metrics.SessionsCreated.Inc()
	metrics.ActiveSessions.Inc()
	logging.Debug().
		Uint64("session_id", session.ID).
		Str("remote_addr", remoteAddr).
		Str("user_agent", userAgent).
		Msg("session created")

	return session, p.fireHooks(HookSessionCreated, session)
}

// Session resolves a session id.
func (p *Provider) Session(id uint64) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	session, ok := p.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return session, nil
}

// DestroySession removes the session. Destroying an unknown id is a no-op;
// hooks fire only when a session was actually removed.
func (p *Provider) DestroySession(id uint64) error {
	p.mu.Lock()
	session, ok := p.sessions[id]
	if ok {
		delete(p.sessions, id)
	}
	p.mu.Unlock()

	if !ok {
		return nil
	}
	metrics.ActiveSessions.Dec()
	logging.Debug().Uint64("session_id", id).Msg("session destroyed")
	return p.fireHooks(HookSessionDestroyed, session)
}

// NextRevision implements the /update long-poll. A client that is already
// caught up (delta == revision) records its acknowledged revision and blocks
// until the library advances or ctx is cancelled. A client that is catching
// up gets the current revision immediately.
func (p *Provider) NextRevision(ctx context.Context, sessionID, revision, delta uint64) (uint64, error) {
	p.mu.Lock()
	session, ok := p.sessions[sessionID]
	if !ok {
		p.mu.Unlock()
		return 0, ErrUnknownSession
	}
	wait := p.updated
	p.mu.Unlock()

	session.setConnected()

	if delta != revision {
		return p.server.Revision(), nil
	}

	session.ackRevision(revision)

	metrics.UpdateWaiters.Inc()
	defer metrics.UpdateWaiters.Dec()

	for {
		// Update commits before closing the channel, so a wakeup always
		// observes the advanced revision.
		if current := p.server.Revision(); current > revision {
			return current, nil
		}
		select {
		case <-wait:
			p.mu.Lock()
			wait = p.updated
			p.mu.Unlock()
		case <-ctx.Done():
			return 0, ErrCancelled
		}
	}
}

// Update advances the library revision: it commits the staged mutations,
// wakes every parked NextRevision call, reclaims store history once all
// sessions have acknowledged the latest revision, and fires the updated
// hooks. A failing commit leaves the revision unchanged and wakes nobody.
func (p *Provider) Update() error {
	p.mu.Lock()
	st := p.server.Store()
	next := st.Revision() + 1
	if err := st.Commit(next); err != nil {
		p.mu.Unlock()
		return err
	}

	close(p.updated)
	p.updated = make(chan struct{})

	if min, ok := p.minSessionRevisionLocked(); ok && min == next {
		st.Clean(min)
	}
	p.mu.Unlock()

	metrics.LibraryRevision.Set(float64(next))
	metrics.Updates.Inc()
	logging.Debug().Uint64("revision", next).Msg("library revision advanced")

	return p.fireHooks(HookUpdated, next)
}

func (p *Provider) minSessionRevisionLocked() (uint64, bool) {
	var min uint64
	found := false
	for _, session := range p.sessions {
		rev := session.Revision()
		if !found || rev < min {
			min, found = rev, true
		}
	}
	return min, found
}

// checkRevisions validates the client-supplied revision window against the
// retained history.
func (p *Provider) checkRevisions(revisions ...uint64) error {
	st := p.server.Store()
	current, earliest := st.Revision(), st.Earliest()
	for _, rev := range revisions {
		if rev > current {
			return store.ErrRevisionInFuture
		}
		if rev < earliest {
			return store.ErrRevisionGone
		}
	}
	return nil
}

// database resolves a database at the given revision (store.Current for the
// live view).
func (p *Provider) database(databaseID, revision uint64) (*models.Database, error) {
	col := p.server.Databases
	if revision != store.Current {
		col = col.AtRevision(revision)
	}
	return col.Get(databaseID)
}

// Databases returns the (new, old) database views for a (revision, delta)
// request. old is nil for a full listing.
func (p *Provider) Databases(revision, delta uint64) (current, old *models.Collection[*models.Database], err error) {
	if delta == 0 {
		return p.server.Databases, nil, nil
	}
	if err := p.checkRevisions(revision, delta); err != nil {
		return nil, nil, err
	}
	return p.server.Databases.AtRevision(revision), p.server.Databases.AtRevision(delta), nil
}

// Items returns the (new, old) item views of one database.
func (p *Provider) Items(databaseID, revision, delta uint64) (current, old *models.Collection[*models.Item], err error) {
	if delta == 0 {
		db, err := p.database(databaseID, store.Current)
		if err != nil {
			return nil, nil, err
		}
		return db.Items, nil, nil
	}
	if err := p.checkRevisions(revision, delta); err != nil {
		return nil, nil, err
	}
	db, err := p.database(databaseID, revision)
	if err != nil {
		return nil, nil, err
	}
	return db.Items.AtRevision(revision), db.Items.AtRevision(delta), nil
}

// Containers returns the (new, old) container views of one database.
func (p *Provider) Containers(databaseID, revision, delta uint64) (current, old *models.Collection[*models.Container], err error) {
	if delta == 0 {
		db, err := p.database(databaseID, store.Current)
		if err != nil {
			return nil, nil, err
		}
		return db.Containers, nil, nil
	}
	if err := p.checkRevisions(revision, delta); err != nil {
		return nil, nil, err
	}
	db, err := p.database(databaseID, revision)
	if err != nil {
		return nil, nil, err
	}
	return db.Containers.AtRevision(revision), db.Containers.AtRevision(delta), nil
}

// ContainerItems returns the (new, old) placement views of one container.
func (p *Provider) ContainerItems(databaseID, containerID, revision, delta uint64) (current, old *models.Collection[*models.ContainerItem], err error) {
	if delta == 0 {
		db, err := p.database(databaseID, store.Current)
		if err != nil {
			return nil, nil, err
		}
		c, err := db.Containers.Get(containerID)
		if err != nil {
			return nil, nil, err
		}
		return c.Items, nil, nil
	}
	if err := p.checkRevisions(revision, delta); err != nil {
		return nil, nil, err
	}
	db, err := p.database(databaseID, revision)
	if err != nil {
		return nil, nil, err
	}
	c, err := db.Containers.AtRevision(revision).Get(containerID)
	if err != nil {
		return nil, nil, err
	}
	return c.Items.AtRevision(revision), c.Items.AtRevision(delta), nil
}

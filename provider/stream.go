// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package provider

import (
	"io"
	"sync"

	"github.com/melodeon-dev/melodeon/internal/metrics"
	"github.com/melodeon-dev/melodeon/models"
	"github.com/melodeon-dev/melodeon/store"
)

// ByteRange is one half-open request window. End is the inclusive last byte,
// or negative for "through the end of the file".
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes the range selects out of total, and
// whether the range is satisfiable.
func (r ByteRange) Length(total int64) (int64, bool) {
	if r.Start < 0 || r.Start >= total {
		return 0, false
	}
	end := r.End
	if end < 0 || end >= total {
		end = total - 1
	}
	if end < r.Start {
		return 0, false
	}
	return end - r.Start + 1, true
}

// MediaSource supplies the raw bytes behind items and artwork. The model
// layer knows metadata only; implementations own file handles, remote
// connections, or whatever else backs the library.
type MediaSource interface {
	// ItemData opens the media bytes of an item. rng is nil for a full
	// request. Returns the stream, the MIME type, the total object size
	// and the length of this response.
	ItemData(item *models.Item, rng *ByteRange) (data io.ReadCloser, mime string, size, length int64, err error)

	// ArtworkData opens the artwork bytes of an item.
	ArtworkData(item *models.Item) (data io.ReadCloser, mime string, size int64, err error)

	// SupportsArtwork reports whether artwork fields should be emitted.
	SupportsArtwork() bool

	// SupportsPersistentID reports whether persistent ids should be
	// emitted.
	SupportsPersistentID() bool
}

// Stream is one open media or artwork response. The caller owns Data and
// must close it on every exit path.
type Stream struct {
	Data   io.ReadCloser
	MIME   string
	Size   int64 // total object size; 0 when unknown
	Length int64 // bytes carried by this response
}

// sessionStream reverts the session to Connected when the stream closes,
// on success and error paths alike.
type sessionStream struct {
	io.ReadCloser
	once    sync.Once
	session *Session
}

func (s *sessionStream) Close() error {
	err := s.ReadCloser.Close()
	s.once.Do(s.session.endStream)
	return err
}

// OpenItem opens the media bytes of one item for a session. The session is
// Streaming until the returned stream is closed. Every request increments
// the session's item counter; full requests also increment the unique
// counter.
func (p *Provider) OpenItem(sessionID, databaseID, itemID uint64, rng *ByteRange) (*Stream, error) {
	session, err := p.Session(sessionID)
	if err != nil {
		return nil, err
	}
	item, err := p.item(databaseID, itemID)
	if err != nil {
		return nil, err
	}
	if p.media == nil {
		return nil, store.ErrNotFound
	}

	session.beginStream(rng != nil)
	data, mime, size, length, err := p.media.ItemData(item, rng)
	if err != nil {
		session.endStream()
		return nil, err
	}

	metrics.StreamsStarted.WithLabelValues("item").Inc()
	return &Stream{
		Data:   &sessionStream{ReadCloser: data, session: session},
		MIME:   mime,
		Size:   size,
		Length: length,
	}, nil
}

// OpenArtwork opens the artwork bytes of one item for a session.
func (p *Provider) OpenArtwork(sessionID, databaseID, itemID uint64) (*Stream, error) {
	session, err := p.Session(sessionID)
	if err != nil {
		return nil, err
	}
	item, err := p.item(databaseID, itemID)
	if err != nil {
		return nil, err
	}
	if p.media == nil || !p.media.SupportsArtwork() {
		return nil, store.ErrNotFound
	}

	data, mime, size, err := p.media.ArtworkData(item)
	if err != nil {
		return nil, err
	}

	session.countArtwork()
	metrics.StreamsStarted.WithLabelValues("artwork").Inc()
	return &Stream{Data: data, MIME: mime, Size: size, Length: size}, nil
}

func (p *Provider) item(databaseID, itemID uint64) (*models.Item, error) {
	db, err := p.database(databaseID, store.Current)
	if err != nil {
		return nil, err
	}
	return db.Items.Get(itemID)
}

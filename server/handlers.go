// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/melodeon-dev/melodeon/daap"
	"github.com/melodeon-dev/melodeon/internal/cache"
	"github.com/melodeon-dev/melodeon/internal/logging"
	"github.com/melodeon-dev/melodeon/internal/metrics"
	"github.com/melodeon-dev/melodeon/responses"
)

// caps returns the provider capabilities overlaid with the surface config.
func (s *Server) caps() responses.ServerCapabilities {
	caps := s.provider.Capabilities()
	caps.PasswordSet = s.cfg.Password != ""
	return caps
}

// writeBody sends one encoded object response.
func writeBody(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", contentTypeDMAP)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// writeObject encodes and sends an object, bypassing the cache.
func (s *Server) writeObject(w http.ResponseWriter, r *http.Request, obj *daap.Object) {
	body, err := obj.Encode()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeBody(w, body)
}

// serveCached sends the cached response for this request when present, and
// otherwise builds, encodes and caches it. The revision arguments are part
// of the key, so a new library revision misses without any invalidation.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, endpoint string, build func() (*daap.Object, error)) {
	var key string
	if s.cache != nil {
		key = cache.Key(endpoint, r.URL.Path, r.URL.Query())
		if body, ok := s.cache.Get(key); ok {
			writeBody(w, body)
			return
		}
	}

	obj, err := build()
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := obj.Encode()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if s.cache != nil {
		s.cache.Put(key, body)
	}
	writeBody(w, body)
}

// checkSession resolves the session-id argument against the session table.
func (s *Server) checkSession(r *http.Request) (uint64, error) {
	sessionID, err := queryUint(r, "session-id")
	if err != nil {
		return 0, err
	}
	if _, err := s.provider.Session(sessionID); err != nil {
		return 0, err
	}
	return sessionID, nil
}

// revisionArgs decodes the optional revision window of a listing request.
func revisionArgs(r *http.Request) (revision, delta uint64, err error) {
	revision, err = queryUintDefault(r, "revision-number", 0)
	if err != nil {
		return 0, 0, err
	}
	delta, err = queryUintDefault(r, "delta", 0)
	if err != nil {
		return 0, 0, err
	}
	return revision, delta, nil
}

func (s *Server) handleServerInfo(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, "server-info", func() (*daap.Object, error) {
		return responses.ServerInfo(s.caps()), nil
	})
}

func (s *Server) handleContentCodes(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, "content-codes", func() (*daap.Object, error) {
		return responses.ContentCodes(), nil
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	session, err := s.provider.CreateSession(
		r.UserAgent(),
		r.RemoteAddr,
		r.Header.Get("Client-DAAP-Version"),
	)
	if err != nil {
		// Hook failures are an integration concern; the session exists
		// and the login still succeeds.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("session hook failed")
	}
	s.writeObject(w, r, responses.Login(session.ID))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sessionID, err := queryUint(r, "session-id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.provider.DestroySession(sessionID); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("session hook failed")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if _, err := s.checkSession(r); err != nil {
		writeError(w, r, err)
		return
	}
	// Keep-alive ping; acknowledging it is the whole job.
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	sessionID, err := queryUint(r, "session-id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	revision, err := queryUint(r, "revision-number")
	if err != nil {
		writeError(w, r, err)
		return
	}
	delta, err := queryUintDefault(r, "delta", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	next, err := s.provider.NextRevision(r.Context(), sessionID, revision, delta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeObject(w, r, responses.Update(next))
}

func (s *Server) handleDatabases(w http.ResponseWriter, r *http.Request) {
	if _, err := s.checkSession(r); err != nil {
		writeError(w, r, err)
		return
	}
	revision, delta, err := revisionArgs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.serveCached(w, r, "databases", func() (*daap.Object, error) {
		current, old, err := s.provider.Databases(revision, delta)
		if err != nil {
			return nil, err
		}
		return responses.Databases(current, old, s.caps()), nil
	})
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	if _, err := s.checkSession(r); err != nil {
		writeError(w, r, err)
		return
	}
	// Clients send type=music; the value selects nothing but its absence
	// is a protocol error. The meta field selection is advisory; listings
	// carry the fixed field set.
	if _, err := queryString(r, "type"); err != nil {
		writeError(w, r, err)
		return
	}
	_ = queryList(r, "meta")
	databaseID, err := paramUint(r, "databaseID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	revision, delta, err := revisionArgs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.serveCached(w, r, "items", func() (*daap.Object, error) {
		current, old, err := s.provider.Items(databaseID, revision, delta)
		if err != nil {
			return nil, err
		}
		return responses.Items(current, old, s.caps()), nil
	})
}

func (s *Server) handleContainers(w http.ResponseWriter, r *http.Request) {
	if _, err := s.checkSession(r); err != nil {
		writeError(w, r, err)
		return
	}
	databaseID, err := paramUint(r, "databaseID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	revision, delta, err := revisionArgs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.serveCached(w, r, "containers", func() (*daap.Object, error) {
		current, old, err := s.provider.Containers(databaseID, revision, delta)
		if err != nil {
			return nil, err
		}
		return responses.Containers(current, old, s.caps()), nil
	})
}

func (s *Server) handleContainerItems(w http.ResponseWriter, r *http.Request) {
	if _, err := s.checkSession(r); err != nil {
		writeError(w, r, err)
		return
	}
	databaseID, err := paramUint(r, "databaseID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	containerID, err := paramUint(r, "containerID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	revision, delta, err := revisionArgs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.serveCached(w, r, "container-items", func() (*daap.Object, error) {
		current, old, err := s.provider.ContainerItems(databaseID, containerID, revision, delta)
		if err != nil {
			return nil, err
		}
		return responses.ContainerItems(current, old, s.caps()), nil
	})
}

func (s *Server) handleItemStream(w http.ResponseWriter, r *http.Request) {
	sessionID, err := queryUint(r, "session-id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	databaseID, err := paramUint(r, "databaseID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	itemID, err := paramItemID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rng, err := parseByteRange(r.Header.Get("Range"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	stream, err := s.provider.OpenItem(sessionID, databaseID, itemID, rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer stream.Data.Close()

	w.Header().Set("Content-Type", stream.MIME)
	w.Header().Set("Content-Length", strconv.FormatInt(stream.Length, 10))
	if rng != nil {
		total := "*"
		if stream.Size > 0 {
			total = strconv.FormatInt(stream.Size, 10)
		}
		end := rng.Start + stream.Length - 1
		w.Header().Set("Content-Range", "bytes "+strconv.FormatInt(rng.Start, 10)+"-"+strconv.FormatInt(end, 10)+"/"+total)
		w.WriteHeader(http.StatusPartialContent)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	s.copyStream(w, r, stream.Data)
}

func (s *Server) handleArtwork(w http.ResponseWriter, r *http.Request) {
	sessionID, err := queryUint(r, "session-id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	databaseID, err := paramUint(r, "databaseID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	itemID, err := paramUint(r, "itemID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	stream, err := s.provider.OpenArtwork(sessionID, databaseID, itemID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer stream.Data.Close()

	w.Header().Set("Content-Type", stream.MIME)
	w.Header().Set("Content-Length", strconv.FormatInt(stream.Size, 10))
	w.WriteHeader(http.StatusOK)

	s.copyStream(w, r, stream.Data)
}

// copyStream pumps media bytes to the client. Aborted transfers are routine
// (seeks, skips, app close) and logged at debug only.
func (s *Server) copyStream(w http.ResponseWriter, r *http.Request, data io.Reader) {
	n, err := io.Copy(w, data)
	metrics.BytesStreamed.Add(float64(n))
	if err != nil {
		logging.Ctx(r.Context()).Debug().
			Err(err).
			Int64("bytes", n).
			Str("path", r.URL.Path).
			Msg("stream aborted")
	}
}

func (s *Server) handleNotImplemented(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// Login attempts are brute-forceable when a password is set, so /login gets
// a per-IP budget. Legitimate clients log in once per connection.
const (
	loginRateLimit  = 30
	loginRateWindow = time.Minute
)

// routes builds the DAAP route table.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(collectMetrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.daapHeaders)

	// Discovery endpoints are reachable without credentials.
	r.Get("/server-info", s.handleServerInfo)
	r.Get("/content-codes", s.handleContentCodes)

	// Media requests carry only the session id, never an Authorization
	// header; the session check inside the handlers gates them.
	r.Get("/databases/{databaseID}/items/{itemID}", s.handleItemStream)
	r.Get("/databases/{databaseID}/items/{itemID}/extra_data/artwork", s.handleArtwork)
	r.Get("/databases/{databaseID}/groups/{groupID}/extra_data/artwork", s.handleNotImplemented)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.With(httprate.LimitByIP(loginRateLimit, loginRateWindow)).
			Get("/login", s.handleLogin)
		r.Get("/logout", s.handleLogout)
		r.Get("/activity", s.handleActivity)
		r.Get("/update", s.handleUpdate)

		// Fairplay negotiation is not supported; answering 501 makes
		// clients fall back to plain streaming.
		r.Get("/fp-setup", s.handleNotImplemented)
		r.Post("/fp-setup", s.handleNotImplemented)

		r.Route("/databases", func(r chi.Router) {
			r.Get("/", s.handleDatabases)
			r.Route("/{databaseID}", func(r chi.Router) {
				r.Get("/items", s.handleItems)
				r.Get("/containers", s.handleContainers)
				r.Get("/containers/{containerID}/items", s.handleContainerItems)
				r.Get("/groups", s.handleNotImplemented)
			})
		})
	})

	return r
}

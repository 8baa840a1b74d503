// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package server

import (
	"net/http"
	"time"

	"github.com/melodeon-dev/melodeon/internal/cache"
	"github.com/melodeon-dev/melodeon/provider"
)

// Config holds the HTTP surface options.
type Config struct {
	// Name is the server name sent in the DAAP-Server header and used as
	// the Basic auth realm.
	Name string

	// Password enables the auth gate when non-empty.
	Password string

	// CacheEnabled fronts object responses with the LRU cache.
	CacheEnabled  bool
	CacheCapacity int
	CacheTTL      time.Duration
}

// Server is the DAAP HTTP surface over one provider.
type Server struct {
	cfg      Config
	provider *provider.Provider
	cache    *cache.ResponseCache
	handler  http.Handler
}

// New builds the surface and its route table.
func New(cfg Config, p *provider.Provider) *Server {
	s := &Server{
		cfg:      cfg,
		provider: p,
	}
	if cfg.CacheEnabled {
		s.cache = cache.NewResponseCache(cfg.CacheCapacity, cfg.CacheTTL)
	}
	s.handler = rewritePath(s.routes())
	return s
}

// Handler returns the root handler, ready to mount on an http.Server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Provider returns the provider backing this surface.
func (s *Server) Provider() *provider.Provider {
	return s.provider
}

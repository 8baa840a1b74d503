// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/melodeon-dev/melodeon/internal/logging"
)

// requireAuth gates the library behind HTTP Basic auth when a password is
// configured. DAAP auth is password-only: the user name is ignored, only the
// password is compared. /server-info and /content-codes stay open so clients
// can discover that a login is required.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	if s.cfg.Password == "" {
		return next
	}

	challenge := fmt.Sprintf("Basic realm=%q", s.cfg.Name)
	want := []byte(s.cfg.Password)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, pass, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(pass), want) != 1 {
			if ok {
				logging.Ctx(r.Context()).Warn().
					Str("remote_addr", r.RemoteAddr).
					Msg("rejected password")
			}
			w.Header().Set("WWW-Authenticate", challenge)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

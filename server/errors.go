// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package server

import (
	"errors"
	"net/http"
	"os"

	"github.com/melodeon-dev/melodeon/internal/logging"
	"github.com/melodeon-dev/melodeon/provider"
	"github.com/melodeon-dev/melodeon/store"
)

// errBadRequest is the sentinel wrapped by every request decoding failure.
var errBadRequest = errors.New("server: bad request")

// writeError translates an error from the lower layers into an HTTP status.
// DAAP error responses carry no body; clients react to the status code alone.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, provider.ErrCancelled):
		// The client went away while parked; nobody is reading the reply.
		return
	case errors.Is(err, errBadRequest),
		errors.Is(err, store.ErrRevisionInFuture),
		errors.Is(err, store.ErrRevisionGone):
		w.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, provider.ErrUnknownSession):
		w.WriteHeader(http.StatusForbidden)
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, provider.ErrNoArtwork),
		errors.Is(err, os.ErrNotExist):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, provider.ErrUnsatisfiableRange):
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
	default:
		logging.Ctx(r.Context()).Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("request failed")
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// queryUint decodes a required numeric query argument.
func queryUint(r *http.Request, name string) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing argument %q", errBadRequest, name)
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: argument %q is not a number", errBadRequest, name)
	}
	return v, nil
}

// queryUintDefault decodes an optional numeric query argument. Absent means
// the default; present but malformed is still an error.
func queryUintDefault(r *http.Request, name string, def uint64) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: argument %q is not a number", errBadRequest, name)
	}
	return v, nil
}

// queryString decodes a required string query argument.
func queryString(r *http.Request, name string) (string, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return "", fmt.Errorf("%w: missing argument %q", errBadRequest, name)
	}
	return raw, nil
}

// queryList decodes an optional comma-separated query argument. Absent means
// nil.
func queryList(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// paramUint decodes a numeric chi route parameter.
func paramUint(r *http.Request, name string) (uint64, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: path segment %q is not a number", errBadRequest, name)
	}
	return v, nil
}

// paramItemID decodes the item id route parameter. Media requests arrive as
// "{id}.{suffix}" ("37.mp3"); the suffix is advisory and dropped.
func paramItemID(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "itemID")
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		raw = raw[:i]
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad item id", errBadRequest)
	}
	return v, nil
}

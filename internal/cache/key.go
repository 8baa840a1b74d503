// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package cache

import (
	"hash/fnv"
	"net/url"
	"sort"
	"strconv"
)

// Key derives the content address of one object response from the endpoint
// name, the request path and the query arguments. session-id is excluded so
// all clients share entries; revision-number and delta stay in, which makes
// every new revision a natural miss.
func Key(endpoint, path string, args url.Values) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		if k == "session-id" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := fnv.New64a()
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write([]byte(path))
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k))
		h.Write([]byte{'='})
		for _, v := range args[k] {
			h.Write([]byte(v))
		}
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

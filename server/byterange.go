// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/melodeon-dev/melodeon/provider"
)

// parseByteRange decodes a Range header into the single window media
// requests use: "bytes=a-b" or the open-ended "bytes=a-". Multipart and
// suffix ranges are rejected; clients resume playback, they never splice.
// An empty header means a full request and returns nil.
func parseByteRange(header string) (*provider.ByteRange, error) {
	if header == "" {
		return nil, nil
	}
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return nil, fmt.Errorf("%w: unsupported range unit", errBadRequest)
	}
	if strings.ContainsRune(spec, ',') {
		return nil, fmt.Errorf("%w: multipart ranges not supported", errBadRequest)
	}

	first, last, ok := strings.Cut(spec, "-")
	if !ok || first == "" {
		return nil, fmt.Errorf("%w: malformed range %q", errBadRequest, header)
	}
	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil || start < 0 {
		return nil, fmt.Errorf("%w: malformed range %q", errBadRequest, header)
	}

	rng := &provider.ByteRange{Start: start, End: -1}
	if last != "" {
		end, err := strconv.ParseInt(last, 10, 64)
		if err != nil || end < start {
			return nil, fmt.Errorf("%w: malformed range %q", errBadRequest, header)
		}
		rng.End = end
	}
	return rng, nil
}

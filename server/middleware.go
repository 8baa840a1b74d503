// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/melodeon-dev/melodeon/internal/logging"
	"github.com/melodeon-dev/melodeon/internal/metrics"
)

// contentTypeDMAP is the MIME type of every encoded object response.
const contentTypeDMAP = "application/x-dmap-tagged"

// rewritePath normalizes request lines in absolute form. Some clients send
// "GET daap://host:3689/update HTTP/1.1"; the scheme and authority are
// dropped so routing sees the plain path. Applied outside the router.
func rewritePath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Scheme != "" || r.URL.Host != "" {
			r.URL.Scheme, r.URL.Host = "", ""
		}
		if p := r.URL.Path; strings.HasPrefix(p, "daap://") || strings.HasPrefix(p, "http://") {
			rest := p[strings.Index(p, "://")+3:]
			if i := strings.IndexByte(rest, '/'); i >= 0 {
				r.URL.Path = rest[i:]
			} else {
				r.URL.Path = "/"
			}
			r.URL.RawPath = ""
		}
		next.ServeHTTP(w, r)
	})
}

// requestID attaches a request id to the context and echoes it back in the
// X-Request-ID header.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = logging.NewRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

// accessLog emits one debug line per finished request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logging.Ctx(r.Context()).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// collectMetrics records request throughput and latency per route pattern,
// so media requests aggregate under one endpoint label instead of one label
// per item id.
func collectMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := chi.RouteContext(r.Context()).RoutePattern()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordRequest(r.Method, endpoint, ww.Status(), time.Since(start))
	})
}

// daapHeaders stamps the protocol headers every response carries. The
// DAAP-Server header identifies the share by its configured name.
func (s *Server) daapHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("DAAP-Server", s.cfg.Name)
		h.Set("Content-Language", "en_us")
		h.Set("Accept-Ranges", "bytes")
		next.ServeHTTP(w, r)
	})
}

// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

// Package main is the entry point for the Melodeon server.
//
// Melodeon shares a local music directory over DAAP (Digital Audio Access
// Protocol), the protocol iTunes and compatible clients use to browse and
// stream remote libraries. The server advertises itself over Bonjour, so
// clients on the local network discover it under Shared without any
// configuration.
//
// # Startup order
//
//  1. Configuration: defaults, optional YAML file, MELODEON_-prefixed
//     environment variables (Koanf v2, highest priority wins)
//  2. Logging: zerolog, configured from the logging section
//  3. Library: scan the configured directory into the in-memory model
//  4. HTTP: the DAAP surface on server.port, the admin surface
//     (/metrics, /healthz) on admin.port
//  5. Bonjour: _daap._tcp advertisement, withdrawn on shutdown
//
// Both listeners and the advertiser run under a suture supervision tree; a
// crashing advertiser never takes down the listeners.
//
// # Example usage
//
// Share ~/Music on the standard DAAP port:
//
//	export MELODEON_LIBRARY_PATH=$HOME/Music
//	./melodeon
//
// Password-protected share with a custom name:
//
//	export MELODEON_SERVER_NAME="Attic Records"
//	export MELODEON_SERVER_PASSWORD=secret
//	export MELODEON_LIBRARY_PATH=/srv/music
//	./melodeon
//
// The server handles SIGINT and SIGTERM: it withdraws the Bonjour record,
// stops accepting connections and waits for in-flight requests (10s timeout).
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/melodeon-dev/melodeon/internal/config"
	"github.com/melodeon-dev/melodeon/internal/logging"
	"github.com/melodeon-dev/melodeon/internal/supervisor"
	"github.com/melodeon-dev/melodeon/models"
	"github.com/melodeon-dev/melodeon/provider"
	"github.com/melodeon-dev/melodeon/providers/file"
	"github.com/melodeon-dev/melodeon/server"
	"github.com/melodeon-dev/melodeon/zeroconf"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config errors are logged with the default logger; the configured
		// one does not exist yet.
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("name", cfg.Server.Name).
		Str("addr", cfg.Server.Addr()).
		Str("library", cfg.Library.Path).
		Bool("password", cfg.Server.Password != "").
		Msg("starting melodeon")

	library := models.NewServer(cfg.Server.Name)
	source := file.NewSource(cfg.Library.Path)
	if err := source.Scan(library, cfg.Library.Database); err != nil {
		logging.Fatal().Err(err).Msg("library scan failed")
	}

	p := provider.New(library, source)
	if err := p.Update(); err != nil {
		logging.Fatal().Err(err).Msg("failed to commit initial library revision")
	}

	daapServer := server.New(server.Config{
		Name:          cfg.Server.Name,
		Password:      cfg.Server.Password,
		CacheEnabled:  cfg.Cache.Enabled,
		CacheCapacity: cfg.Cache.Capacity,
		CacheTTL:      cfg.Cache.TTL,
	}, p)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	tree.AddAPIService(&supervisor.HTTPService{
		Name: "daap",
		Server: &http.Server{
			Addr: cfg.Server.Addr(),
			// No write timeout: /update long-polls and media streams are
			// expected to outlive any reasonable bound.
			ReadHeaderTimeout: cfg.Server.Timeout,
			Handler:           daapServer.Handler(),
		},
	})

	if cfg.Admin.Enabled {
		tree.AddAPIService(&supervisor.HTTPService{
			Name: "admin",
			Server: &http.Server{
				Addr:              cfg.Admin.Addr(),
				ReadHeaderTimeout: cfg.Server.Timeout,
				Handler:           adminMux(p),
			},
		})
	}

	if cfg.Zeroconf.Enabled {
		tree.AddAdvertiseService(&zeroconf.Advertiser{
			Name:              cfg.Server.Name,
			Port:              cfg.Server.Port,
			PasswordProtected: cfg.Server.Password != "",
			MachineID:         library.PersistentID,
			DatabaseID:        library.PersistentID,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor tree terminated")
		os.Exit(1)
	}

	if unstopped, reportErr := tree.UnstoppedServiceReport(); reportErr == nil {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service missed shutdown timeout")
		}
	}
	logging.Info().Msg("melodeon stopped")
}

// adminMux serves the operational endpoints, kept off the DAAP listener so
// they are never exposed to the network the share is advertised on.
func adminMux(p *provider.Provider) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		body, err := json.Marshal(map[string]any{
			"status":   "ok",
			"revision": p.Revision(),
		})
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	})
	return mux
}

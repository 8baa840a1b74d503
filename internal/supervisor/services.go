// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/melodeon-dev/melodeon/internal/logging"
)

// HTTPService wraps an *http.Server as a suture service with graceful
// shutdown on context cancellation.
type HTTPService struct {
	Name   string
	Server *http.Server

	// ShutdownTimeout bounds graceful shutdown; default 10s.
	ShutdownTimeout time.Duration
}

// Serve implements suture.Service.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Server.ListenAndServe()
	}()

	logging.Info().Str("service", s.Name).Str("addr", s.Server.Addr).Msg("http listener starting")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		timeout := s.ShutdownTimeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := s.Server.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Str("service", s.Name).Msg("graceful shutdown incomplete")
			return err
		}
		logging.Info().Str("service", s.Name).Msg("http listener stopped")
		return ctx.Err()
	}
}

func (s *HTTPService) String() string {
	return s.Name
}

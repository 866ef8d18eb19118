// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/irule-builder/pkg/defaults"
	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
)

// Config holds server configuration.
type Config struct {
	// Address is the listen address, e.g. ":9090".
	Address string

	// Rate limiting of the JSON endpoints
	RateLimit      rate.Limit // requests per second
	RateLimitBurst int        // burst size

	// Timeouts
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// DefaultConfig returns the configuration used by watch mode.
func DefaultConfig(address string) *Config {
	return &Config{
		Address:           address,
		RateLimit:         20,
		RateLimitBurst:    40,
		ReadHeaderTimeout: defaults.MetricsReadHeaderTimeout,
		ShutdownTimeout:   defaults.MetricsShutdownTimeout,
	}
}

// Server exposes health, build status and prometheus metrics while the
// builder watches for changes.
type Server struct {
	config      *Config
	rateLimiter *rate.Limiter

	mu     sync.RWMutex
	ready  bool
	status BuildStatus
}

// New creates a Server. A nil config listens on ":9090".
func New(config *Config) *Server {
	if config == nil {
		config = DefaultConfig(":9090")
	}
	return &Server{
		config:      config,
		rateLimiter: rate.NewLimiter(config.RateLimit, config.RateLimitBurst),
	}
}

// Handler returns the routes served by the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.withMiddleware(s.handleHealth))
	mux.HandleFunc("/ready", s.withMiddleware(s.handleReady))
	mux.HandleFunc("/status", s.withMiddleware(s.rateLimitMiddleware(s.handleStatus)))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// RecordBuild stores the outcome of a pipeline run for /status. The
// server reports ready after the first run, whatever its outcome.
func (s *Server) RecordBuild(runID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ready = true
	s.status.Builds++
	s.status.LastBuild = time.Now().UTC()
	s.status.RunID = runID
	s.status.OK = err == nil
	s.status.Code = ""
	s.status.Error = ""
	if err != nil {
		s.status.Code = string(apperrors.CodeOf(err))
		s.status.Error = err.Error()
	}
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeInvalidRequest,
			"failed to listen for metrics", err, map[string]any{"address": s.config.Address})
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	slog.Info("serving metrics", "address", ln.Addr().String())

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeUnknown, "failed to shut down metrics server", err)
		}
		return nil
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return apperrors.Wrap(apperrors.ErrCodeUnknown, "metrics server failed", err)
	}
}

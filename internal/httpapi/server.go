// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

// Package httpapi exposes the authentication service over HTTP: the
// /auth/register and /auth/login endpoints and the per-request
// authentication pipeline.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/samber/oops"

	"github.com/playforge/authd/internal/auth"
)

// NewRouter wires the auth endpoints and middleware chain. The
// authentication pipeline runs on every route; the register and login
// endpoints themselves serve anonymous requests.
func NewRouter(handler *Handler, tokens TokenVerifier, players auth.PlayerRepository, logger *slog.Logger) *mux.Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := mux.NewRouter()
	r.Use(Recovery(logger))
	r.Use(RequestLogging(logger))
	r.Use(Authentication(tokens, players, logger))

	authRoutes := r.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/register", handler.Register).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login", handler.Login).Methods(http.MethodPost)

	return r
}

// Server runs the HTTP API with graceful shutdown.
type Server struct {
	addr       string
	handler    http.Handler
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates a Server for the given address and handler.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{addr: addr, handler: handler}
}

// Start begins serving. It returns an error channel that receives any
// serve failure after startup; the channel closes on graceful stop.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("http server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("http server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	slog.Info("http server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_http_server").Wrap(err)
		}
	}

	slog.Info("http server stopped")
	return nil
}

// Addr returns the listen address, or "" when not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
)

// Server is an HTTP server implementation, which uses
// the HTTP handler provided.
type Server struct {
	name       string
	address    string
	addressSet chan struct{}
	addressMu  sync.RWMutex
	handler    http.Handler
	logger     Logger
	optional   optionalSettings
}

// New creates a new HTTP server with a name, listening on
// the address specified and using the HTTP handler provided.
func New(name, address string, handler http.Handler,
	logger Logger, options ...Option) *Server {
	return &Server{
		name:       name,
		address:    address,
		addressSet: make(chan struct{}),
		handler:    handler,
		logger:     logger,
		optional:   newOptionalSettings(options),
	}
}

// Run runs the HTTP server until ctx is canceled.
// The ready channel is closed once the server is listening.
// The done channel gets the terminal error of the server, which is nil
// when the server shut down gracefully.
func (s *Server) Run(ctx context.Context, ready chan<- struct{}, done chan<- error) {
	server := http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadHeaderTimeout: s.optional.readHeaderTimeout,
	}

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		close(s.addressSet)
		done <- fmt.Errorf("%s server: %w", s.name, err)
		return
	}

	s.addressMu.Lock()
	s.address = listener.Addr().String()
	s.addressMu.Unlock()
	close(s.addressSet)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.optional.shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(s.name + " server shutdown error: " + err.Error())
		}
	}()

	s.logger.Info(s.name + " server listening on " + s.GetAddress())
	close(ready)

	err = server.Serve(listener)
	if !errors.Is(err, http.ErrServerClosed) {
		done <- fmt.Errorf("%s server: %w", s.name, err)
		return
	}
	<-shutdownDone
	done <- nil
}

// GetAddress obtains the address the HTTP server is listening on.
// It blocks until the server has started listening or failed to.
func (s *Server) GetAddress() (address string) {
	<-s.addressSet
	s.addressMu.RLock()
	defer s.addressMu.RUnlock()
	return s.address
}

// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ChainSafe/tally/internal/httpserver"
	"github.com/ChainSafe/tally/internal/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var logger log.LeveledLogger = log.NewFromGlobal(log.AddContext("pkg", "metrics"))

var (
	// ErrServerExitedUnexpectedly is returned when the metrics server
	// stops without being asked to.
	ErrServerExitedUnexpectedly = errors.New("metrics server exited unexpectedly")
	// ErrStopTimeout is returned when the metrics server does not
	// stop within the stop timeout.
	ErrStopTimeout = errors.New("metrics server stop timeout")
)

const stopTimeout = 10 * time.Second

// Server is a Prometheus metrics HTTP server serving /metrics.
type Server struct {
	cancel context.CancelFunc
	server *httpserver.Server
	done   chan error
}

// NewServer creates a metrics server listening on the address given
// and serving the metrics gathered from the gatherer given.
// A nil gatherer serves the Prometheus default registry.
func NewServer(address string, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &Server{
		server: httpserver.New("metrics", address, mux, logger),
	}
}

// Start starts the metrics server and returns once it is listening.
func (s *Server) Start() (err error) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	ready := make(chan struct{})
	s.done = make(chan error, 1)

	go s.server.Run(ctx, ready, s.done)

	select {
	case <-ready:
		logger.Infof("serving metrics at http://%s/metrics", s.server.GetAddress())
		return nil
	case err := <-s.done:
		cancel()
		if err != nil {
			return err
		}
		return ErrServerExitedUnexpectedly
	}
}

// Address returns the address the server listens on.
func (s *Server) Address() string {
	return s.server.GetAddress()
}

// Stop stops the metrics server.
func (s *Server) Stop() (err error) {
	s.cancel()
	timer := time.NewTimer(stopTimeout)
	defer timer.Stop()
	select {
	case err := <-s.done:
		if err != nil {
			return fmt.Errorf("stopping metrics server: %w", err)
		}
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

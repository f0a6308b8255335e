// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package api serves the session to a browser: a JSON-RPC 2.0 endpoint
// for the election_* methods, a websocket stream of snapshots and a
// static page rendering them.
package api

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ChainSafe/tally/internal/httpserver"
	"github.com/ChainSafe/tally/internal/log"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/rpc/v2"
	"github.com/klauspost/compress/gzhttp"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "api"))

//go:embed index.html
var indexPage []byte

var (
	// ErrServerExitedUnexpectedly is returned when the API server
	// stops without being asked to.
	ErrServerExitedUnexpectedly = errors.New("api server exited unexpectedly")
	// ErrStopTimeout is returned when the API server does not stop in time.
	ErrStopTimeout = errors.New("api server stop timeout")
)

const stopTimeout = 5 * time.Second

// Config is the API server configuration.
type Config struct {
	Address string
	LogLvl  log.Level
}

// Server serves the session API. It implements services.Service.
type Server struct {
	server   *httpserver.Server
	streamer *snapshotStreamer
	cancel   context.CancelFunc
	done     chan error
}

// NewServer creates an API server for the session given.
func NewServer(session Session, cfg Config) (server *Server, err error) {
	logger.Patch(log.SetLevel(cfg.LogLvl))

	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(newSnakeCodec(), "application/json")
	rpcServer.RegisterCodec(newSnakeCodec(), "application/json;charset=UTF-8")
	rpcServer.RegisterValidateRequestFunc(requestValidator(LocalhostFilter(), validator.New()))

	err = rpcServer.RegisterService(NewElectionModule(session), "election")
	if err != nil {
		return nil, fmt.Errorf("registering election module: %w", err)
	}

	streamer := newSnapshotStreamer(session)

	router := mux.NewRouter()
	router.Handle("/rpc", gzhttp.GzipHandler(rpcServer)).Methods(http.MethodPost)
	router.Handle("/ws", streamer)
	router.Handle("/", gzhttp.GzipHandler(http.HandlerFunc(serveIndex))).Methods(http.MethodGet)

	return &Server{
		server:   httpserver.New("api", cfg.Address, router, logger),
		streamer: streamer,
	}, nil
}

func serveIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := w.Write(indexPage)
	if err != nil {
		logger.Debugf("writing index page: %s", err)
	}
}

// Start starts the server and returns once it is listening.
func (s *Server) Start() (err error) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	ready := make(chan struct{})
	s.done = make(chan error, 1)

	go s.server.Run(ctx, ready, s.done)

	select {
	case <-ready:
		logger.Infof("serving election page at http://%s/", s.server.GetAddress())
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

// Stop closes the websocket connections and stops the server.
func (s *Server) Stop() (err error) {
	s.streamer.close()
	s.cancel()

	timer := time.NewTimer(stopTimeout)
	defer timer.Stop()
	select {
	case err := <-s.done:
		if err != nil {
			return fmt.Errorf("stopping api server: %w", err)
		}
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/ChainSafe/tally/lib/state"
	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// SnapshotMessage is a message pushed to websocket clients.
type SnapshotMessage struct {
	Jsonrpc string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  state.Snapshot `json:"params"`
}

const snapshotMethod = "election_snapshot"

func newSnapshotMessage(snapshot state.Snapshot) SnapshotMessage {
	return SnapshotMessage{
		Jsonrpc: "2.0",
		Method:  snapshotMethod,
		Params:  snapshot,
	}
}

// snapshotStreamer pushes every snapshot of the session to the
// websocket clients connected.
type snapshotStreamer struct {
	session  Session
	upgrader websocket.Upgrader

	mutex sync.Mutex
	conns map[*wsConn]struct{}
}

func newSnapshotStreamer(session Session) *snapshotStreamer {
	s := &snapshotStreamer{
		session: session,
		conns:   make(map[*wsConn]struct{}),
	}
	filter := LocalhostFilter()
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			err := localOnly(filter, r.RemoteAddr)
			if err != nil {
				logger.Debugf("websocket request refused: %s", err)
				return false
			}
			return true
		},
	}
	return s
}

// ServeHTTP upgrades the connection and streams snapshots to it
// until the client disconnects or the streamer is closed.
func (s *snapshotStreamer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("websocket upgrade failed: %s", err)
		return
	}

	conn := &wsConn{
		ws:      ws,
		session: s.session,
		closed:  make(chan struct{}),
	}

	s.mutex.Lock()
	s.conns[conn] = struct{}{}
	s.mutex.Unlock()

	conn.handle()

	s.mutex.Lock()
	delete(s.conns, conn)
	s.mutex.Unlock()
}

// close closes all websocket connections.
func (s *snapshotStreamer) close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for conn := range s.conns {
		conn.close()
	}
}

type wsConn struct {
	ws        *websocket.Conn
	session   Session
	closed    chan struct{}
	closeOnce sync.Once
}

func (c *wsConn) handle() {
	snapshots := c.session.Watch()
	defer c.session.Unwatch(snapshots)
	defer c.close()

	// detects the client disconnecting; incoming messages are ignored
	go func() {
		defer c.close()
		for {
			_, _, err := c.ws.ReadMessage()
			if err != nil {
				return
			}
		}
	}()

	err := c.send(c.session.Snapshot())
	if err != nil {
		logger.Debugf("sending snapshot: %s", err)
		return
	}

	for {
		select {
		case <-c.closed:
			return
		case snapshot := <-snapshots:
			err = c.send(snapshot)
			if err != nil {
				logger.Debugf("sending snapshot: %s", err)
				return
			}
		}
	}
}

func (c *wsConn) send(snapshot state.Snapshot) error {
	err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err != nil {
		return err
	}
	return c.ws.WriteJSON(newSnapshotMessage(snapshot))
}

func (c *wsConn) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		err := c.ws.Close()
		if err != nil {
			logger.Debugf("closing websocket connection: %s", err)
		}
	})
}

// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package provider

import (
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Kind is the kind of provider a handle is connected through.
type Kind uint8

const (
	// Injected is a wallet provider requiring account authorization.
	Injected Kind = iota
	// Legacy is a wallet provider exposing its accounts directly.
	Legacy
	// Fallback is the configured network endpoint.
	Fallback
)

func (k Kind) String() string {
	switch k {
	case Injected:
		return "injected"
	case Legacy:
		return "legacy"
	case Fallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Handle is a connection to the ledger with the active account.
type Handle struct {
	rpc        *rpc.Client
	client     *ethclient.Client
	account    common.Address
	kind       Kind
	endpoint   string
	transactor Transactor
}

// NewHandle creates a handle over an RPC client. The transactor sends
// transactions through the wallet behind the client, from the account given.
func NewHandle(client *rpc.Client, account common.Address, kind Kind, endpoint string) *Handle {
	return &Handle{
		rpc:        client,
		client:     ethclient.NewClient(client),
		account:    account,
		kind:       kind,
		endpoint:   endpoint,
		transactor: &walletTransactor{client: client, from: account},
	}
}

// RPC returns the underlying RPC client.
func (h *Handle) RPC() *rpc.Client { return h.rpc }

// Client returns the Ethereum client of the handle.
func (h *Handle) Client() *ethclient.Client { return h.client }

// Account returns the active account.
func (h *Handle) Account() common.Address { return h.account }

// Kind returns the kind of provider of the handle.
func (h *Handle) Kind() Kind { return h.kind }

// Endpoint returns the endpoint the handle is connected to.
func (h *Handle) Endpoint() string { return h.endpoint }

// Transactor returns the transactor sending transactions from the account.
func (h *Handle) Transactor() Transactor { return h.transactor }

// SupportsSubscriptions returns true if the connection can
// deliver push notifications, which is not the case over HTTP.
func (h *Handle) SupportsSubscriptions() bool {
	return supportsSubscriptions(h.endpoint)
}

// Close closes the connection.
func (h *Handle) Close() {
	h.rpc.Close()
}

func supportsSubscriptions(endpoint string) bool {
	if endpoint == "" {
		// in-process connection
		return true
	}

	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" {
		// IPC path
		return true
	}

	switch strings.ToLower(u.Scheme) {
	case "ws", "wss", "stdio":
		return true
	case "http", "https":
		return false
	default:
		return true
	}
}

// redact keeps the scheme and host of an endpoint, dropping
// paths which may carry credentials.
func redact(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}
	return u.Scheme + "://" + u.Host
}

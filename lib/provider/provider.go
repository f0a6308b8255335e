// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/ChainSafe/tally/config"
	"github.com/ChainSafe/tally/internal/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "provider"))

var errNoAccount = errors.New("no account available")

// Environment advertises the wallet providers available to the process.
type Environment interface {
	// Loaded returns a channel closed once the environment is fully loaded.
	Loaded() <-chan struct{}
	InjectedProvider() (endpoint string, ok bool)
	LegacyProvider() (endpoint string, ok bool)
}

// Config is the configuration of the resolver.
type Config struct {
	Network     config.Network
	Credentials config.Credentials
	// Websocket selects the websocket variant of the fallback endpoint.
	Websocket bool
	LogLvl    log.Level
}

// Resolver resolves a connected handle to the ledger.
type Resolver struct {
	env  Environment
	cfg  Config
	dial func(ctx context.Context, endpoint string) (*rpc.Client, error)
}

// NewResolver creates a resolver using the environment and configuration given.
func NewResolver(env Environment, cfg Config) *Resolver {
	logger.Patch(log.SetLevel(cfg.LogLvl))
	return &Resolver{
		env:  env,
		cfg:  cfg,
		dial: rpc.DialContext,
	}
}

// Resolve waits for the environment to be loaded and resolves a
// handle, trying in order the injected provider, the legacy provider
// and the fallback endpoint of the configured network.
func (r *Resolver) Resolve(ctx context.Context) (handle *Handle, err error) {
	select {
	case <-r.env.Loaded():
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if endpoint, ok := r.env.InjectedProvider(); ok {
		handle, err = r.resolveInjected(ctx, endpoint)
	} else if endpoint, ok := r.env.LegacyProvider(); ok {
		handle, err = r.resolveLegacy(ctx, endpoint)
	} else {
		handle, err = r.resolveFallback(ctx)
	}

	if err != nil {
		return nil, err
	}

	logger.Infof("using %s provider at %s with account %s",
		handle.Kind(), redact(handle.Endpoint()), handle.Account().Hex())
	return handle, nil
}

func (r *Resolver) resolveInjected(ctx context.Context, endpoint string) (*Handle, error) {
	client, err := r.dial(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing injected provider: %w", ErrUnavailable, err)
	}

	logger.Debug("requesting account authorization from injected provider")
	var accounts []common.Address
	err = client.CallContext(ctx, &accounts, "eth_requestAccounts")
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %w", ErrAuthorization, err)
	}

	if len(accounts) == 0 {
		client.Close()
		return nil, fmt.Errorf("%w: no account authorized", ErrAuthorization)
	}

	return NewHandle(client, accounts[0], Injected, endpoint), nil
}

func (r *Resolver) resolveLegacy(ctx context.Context, endpoint string) (*Handle, error) {
	client, err := r.dial(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing legacy provider: %w", ErrUnavailable, err)
	}

	account, err := firstAccount(ctx, client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: legacy provider: %w", ErrUnavailable, err)
	}

	return NewHandle(client, account, Legacy, endpoint), nil
}

func (r *Resolver) resolveFallback(ctx context.Context) (*Handle, error) {
	network := r.cfg.Network
	credentials := r.cfg.Credentials

	if network.Hosted() && (credentials.InfuraProjectID == "" || credentials.Mnemonic == "") {
		return nil, fmt.Errorf("%w: no credentials for hosted network %s",
			ErrUnavailable, network.Name)
	}

	endpoint := network.Endpoint(credentials.InfuraProjectID, r.cfg.Websocket)
	if endpoint == "" {
		return nil, fmt.Errorf("%w: no endpoint for network %s", ErrUnavailable, network.Name)
	}

	client, err := r.dial(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing %s: %w", ErrUnavailable, redact(endpoint), err)
	}

	if !network.Hosted() {
		account, err := firstAccount(ctx, client)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, redact(endpoint), err)
		}
		return NewHandle(client, account, Fallback, endpoint), nil
	}

	key, err := DeriveKey(credentials.Mnemonic, credentials.AccountIndex)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	handle := NewHandle(client, crypto.PubkeyToAddress(key.PublicKey), Fallback, endpoint)
	handle.transactor = &keyedTransactor{
		client: handle.client,
		key:    key,
		from:   handle.account,
	}
	return handle, nil
}

func firstAccount(ctx context.Context, client *rpc.Client) (account common.Address, err error) {
	var accounts []common.Address
	err = client.CallContext(ctx, &accounts, "eth_accounts")
	if err != nil {
		return account, fmt.Errorf("listing accounts: %w", err)
	}
	if len(accounts) == 0 {
		return account, errNoAccount
	}
	return accounts[0], nil
}

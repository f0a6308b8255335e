// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package session runs the control flow of a tally session: it resolves
// a provider, checks the network, loads the election state, keeps the
// tallies live and submits votes on user commands.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ChainSafe/tally/config"
	"github.com/ChainSafe/tally/internal/log"
	"github.com/ChainSafe/tally/lib/election"
	"github.com/ChainSafe/tally/lib/guard"
	"github.com/ChainSafe/tally/lib/provider"
	"github.com/ChainSafe/tally/lib/state"
	"github.com/ChainSafe/tally/lib/statesync"
	"github.com/ChainSafe/tally/lib/tally"
	"github.com/ChainSafe/tally/lib/vote"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "session"))

var (
	// ErrNotReady is returned by commands needing a loaded session.
	ErrNotReady = errors.New("session not ready")
	// ErrStopped is returned by commands on a stopped session.
	ErrStopped = errors.New("session stopped")
	// ErrContractAddress is returned when the contract address cannot
	// be determined.
	ErrContractAddress = errors.New("cannot determine contract address")
)

// Session is one run of the tally client against a ledger.
type Session struct {
	id     string
	cfg    config.Config
	env    provider.Environment
	holder *state.Holder
	logger *log.Logger

	// set by Load and Start
	mutex     sync.Mutex
	handle    *provider.Handle
	contract  *election.Contract
	loaded    statesync.Snapshot
	listener  *tally.Listener
	submitter *vote.Submitter

	ctx    context.Context
	cancel context.CancelFunc
	votes  sync.WaitGroup
}

// New creates a session for the configuration and environment given.
// Nothing is read from the ledger until Load or Start is called.
func New(cfg config.Config, env provider.Environment) *Session {
	id := uuid.New().String()

	sessionLogger := logger.New(log.AddContext("session", id))
	sessionLogger.Patch(log.SetLevel(cfg.Log.Session))

	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		id:     id,
		cfg:    cfg,
		env:    env,
		holder: state.NewHolder(id, cfg.Network.Name),
		logger: sessionLogger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID returns the unique id of the session.
func (s *Session) ID() string {
	return s.id
}

// Holder returns the state holder of the session.
func (s *Session) Holder() *state.Holder {
	return s.holder
}

// Start loads the election and then keeps tallies live and accepts
// votes. Errors fatal to the session are set as a fatal alert, logged
// once and returned. A network mismatch is not an error: the session
// then stays read-only with an alert naming both networks.
func (s *Session) Start(ctx context.Context) (err error) {
	err = s.Load(ctx)
	if err != nil {
		return err
	}

	if s.holder.Snapshot().Degraded {
		return nil
	}

	s.subscribe(ctx)
	s.startSubmitter()
	return nil
}

// Load resolves the provider, checks the network and installs the
// election state read from the ledger, without subscribing to votes.
func (s *Session) Load(ctx context.Context) (err error) {
	err = s.load(ctx)
	if err == nil {
		return nil
	}

	alert := fatalAlert(err)
	s.holder.SetAlert(alert)
	s.logger.Errorf("%s: %s", alert.Message, err)
	return err
}

func (s *Session) load(ctx context.Context) (err error) {
	resolver := provider.NewResolver(s.env, provider.Config{
		Network:     s.cfg.Network,
		Credentials: s.cfg.Credentials,
		Websocket:   s.cfg.Provider.Websocket,
		LogLvl:      s.cfg.Log.Provider,
	})

	handle, err := resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	s.mutex.Lock()
	s.handle = handle
	s.mutex.Unlock()
	s.holder.SetAccount(handle.Account())
	s.logger.Infof("connected through %s provider %s with account %s",
		handle.Kind(), handle.Endpoint(), handle.Account().Hex())

	reader := guard.NewRPCReader(handle.RPC())
	err = guard.New(reader, guard.Config{
		Network: s.cfg.Network,
		LogLvl:  s.cfg.Log.Guard,
	}).Check(ctx)
	var mismatch *guard.MismatchError
	switch {
	case errors.As(err, &mismatch):
		s.holder.Degrade(state.Alert{
			Kind:        state.AlertNetwork,
			Message:     mismatch.Title(),
			Description: mismatch.Description(),
		})
		s.logger.Warn(mismatch.Error())
		return nil
	case err != nil:
		return err
	}

	networkID, err := reader.NetworkID(ctx)
	if err != nil {
		return fmt.Errorf("%w: reading network id: %w", statesync.ErrLedgerRead, err)
	}

	address, err := s.contractAddress(networkID)
	if err != nil {
		return err
	}
	contract := election.NewContract(address, handle.Client(), handle.RPC())

	synchronizer := statesync.New(contract, handle.Client(), statesync.Config{
		BatchSize: s.cfg.Sync.BatchSize,
		LogLvl:    s.cfg.Log.Sync,
	})
	loaded, err := synchronizer.Load(ctx, handle.Account())
	if err != nil {
		return err
	}

	s.mutex.Lock()
	s.contract = contract
	s.loaded = loaded
	s.mutex.Unlock()

	s.holder.Install(loaded.Roster, loaded.Voted, loaded.Block)
	s.logger.Infof("election %s loaded with %d candidates at block %d",
		address.Hex(), len(loaded.Roster), loaded.Block)
	return nil
}

func (s *Session) contractAddress(networkID *big.Int) (address common.Address, err error) {
	if s.cfg.Contract.Address != "" {
		return common.HexToAddress(s.cfg.Contract.Address), nil
	}

	artifact, err := election.LoadArtifact(s.cfg.Contract.Artifact)
	if err != nil {
		return address, fmt.Errorf("%w: %w", ErrContractAddress, err)
	}

	address, err = artifact.Address(networkID.String())
	if err != nil {
		return address, fmt.Errorf("%w: %w", ErrContractAddress, err)
	}
	return address, nil
}

// subscribe starts the tally listener from the block after the one
// the election was loaded at. A failure is logged and the session
// continues without live tallies.
func (s *Session) subscribe(ctx context.Context) {
	subscriber := tally.NewSubscriber(s.handle.Client(), tally.Config{
		Contract:     s.contract.Address(),
		Push:         s.handle.SupportsSubscriptions(),
		PollInterval: s.cfg.Tally.PollInterval,
		LogLvl:       s.cfg.Log.Tally,
	})

	subscription, err := subscriber.Subscribe(ctx, s.loaded.Block+1)
	if err != nil {
		s.logger.Errorf("live tallies disabled: %s", err)
		return
	}

	listener := tally.NewListener(subscription, s.holder)
	listener.Listen()

	s.mutex.Lock()
	s.listener = listener
	s.mutex.Unlock()
}

func (s *Session) startSubmitter() {
	cost := vote.CostPolicy(vote.DynamicCost{})
	if s.cfg.Vote.CostPolicy == config.CostPolicyFixed {
		cost = vote.FixedCost{
			Gas:      s.cfg.Vote.Gas,
			GasPrice: new(big.Int).SetUint64(s.cfg.Vote.GasPrice),
		}
	}

	submitter := vote.New(s.handle.Client(), s.handle.Transactor(), s.holder, vote.Config{
		Contract:        s.contract.Address(),
		Cost:            cost,
		Confirmations:   s.cfg.Network.Confirmations,
		ReceiptInterval: s.cfg.Vote.ReceiptInterval,
		LogLvl:          s.cfg.Log.Vote,
	})

	s.mutex.Lock()
	s.submitter = submitter
	s.mutex.Unlock()

	s.logger.Infof("accepting votes with %s cost policy", cost)
}

// Stop stops the live tallies, abandons any vote in flight and
// closes the provider connection.
func (s *Session) Stop() (err error) {
	s.mutex.Lock()
	s.cancel()
	listener := s.listener
	handle := s.handle
	s.mutex.Unlock()

	if listener != nil {
		err = listener.Stop()
		if err != nil {
			err = fmt.Errorf("stopping tally listener: %w", err)
		}
	}

	s.votes.Wait()

	if handle != nil {
		handle.Close()
	}

	s.logger.Debug("session stopped")
	return err
}

func fatalAlert(err error) state.Alert {
	alert := state.Alert{
		Description: err.Error(),
		Fatal:       true,
	}

	switch {
	case errors.Is(err, provider.ErrAuthorization):
		alert.Kind = state.AlertProvider
		alert.Message = "Wallet authorization rejected"
	case errors.Is(err, provider.ErrUnavailable):
		alert.Kind = state.AlertProvider
		alert.Message = "No ledger provider available"
	case errors.Is(err, statesync.ErrLedgerRead),
		errors.Is(err, ErrContractAddress):
		alert.Kind = state.AlertLedger
		alert.Message = "Cannot load the election"
	default:
		alert.Kind = state.AlertNetwork
		alert.Message = "Cannot reach the ledger"
	}

	return alert
}

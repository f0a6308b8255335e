// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package guard

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ChainSafe/tally/config"
	"github.com/ChainSafe/tally/internal/log"
	"github.com/ethereum/go-ethereum/common"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "guard"))

// ErrNetworkMismatch is wrapped by MismatchError.
var ErrNetworkMismatch = errors.New("network mismatch")

// Reader reads the identity of the network a handle is connected to.
type Reader interface {
	NetworkID(ctx context.Context) (id *big.Int, err error)
	GenesisHash(ctx context.Context) (hash common.Hash, err error)
}

// MismatchError is returned when the connected network is not
// the network the election is expected on.
type MismatchError struct {
	// Actual is the network type label of the connected network.
	Actual     string
	ActualID   string
	Expected   string
	ExpectedID string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: connected to %s network (id %s), expected %s network (id %s)",
		ErrNetworkMismatch, e.Actual, e.ActualID, e.Expected, e.ExpectedID)
}

// Is returns true for ErrNetworkMismatch.
func (e *MismatchError) Is(target error) bool {
	return target == ErrNetworkMismatch
}

// Title returns a short human readable title of the mismatch.
func (e *MismatchError) Title() string {
	return "Wrong network"
}

// Description returns a human readable description naming both networks.
func (e *MismatchError) Description() string {
	return fmt.Sprintf("Your wallet is connected to the %s network but the election "+
		"runs on the %s network. Switch network and reload.", e.Actual, e.Expected)
}

// Config is the guard configuration.
type Config struct {
	// Network is the network the election is expected on.
	Network config.Network
	LogLvl  log.Level
}

// Guard checks a provider handle is connected to the expected network.
type Guard struct {
	reader   Reader
	expected config.Network
}

// New creates a guard reading the network identity from reader.
func New(reader Reader, cfg Config) *Guard {
	logger.Patch(log.SetLevel(cfg.LogLvl))

	return &Guard{
		reader:   reader,
		expected: cfg.Network,
	}
}

// Check checks the network the reader is connected to is the expected
// network. It returns a *MismatchError if it is not, or an error if
// the network id cannot be read. The wildcard network always passes.
func (g *Guard) Check(ctx context.Context) (err error) {
	reader, expected := g.reader, g.expected

	actualID, err := reader.NetworkID(ctx)
	if err != nil {
		return fmt.Errorf("reading network id: %w", err)
	}

	if expected.IsWildcard() {
		logger.Debugf("network id %s accepted for %s network", actualID, expected.Name)
		return nil
	}

	expectedID, err := expected.NumericID()
	if err != nil {
		return err
	}

	if actualID.IsUint64() && actualID.Uint64() == expectedID {
		logger.Debugf("network id %s matches %s network", actualID, expected.Name)
		return nil
	}

	label, err := NetworkType(ctx, reader, actualID)
	if err != nil {
		logger.Warnf("cannot determine network type of network id %s: %s", actualID, err)
		label = unknownNetworkType
	}

	return &MismatchError{
		Actual:     label,
		ActualID:   actualID.String(),
		Expected:   expected.Name,
		ExpectedID: expected.ID,
	}
}

// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ChainSafe/tally/internal/log"
	"github.com/go-playground/validator/v10"
)

// Cost policies of the vote submitter.
const (
	CostPolicyDynamic = "dynamic"
	CostPolicyFixed   = "fixed"
)

var (
	// ErrInvalid is returned when the configuration is not valid.
	ErrInvalid = errors.New("invalid configuration")
	// ErrFixedCost is returned when the fixed cost policy is
	// configured without gas or gas price.
	ErrFixedCost = errors.New("fixed cost policy needs gas and gas price")
)

// Config is the runtime configuration of the tally client.
type Config struct {
	Network     Network
	Credentials Credentials
	Provider    ProviderConfig
	Contract    ContractConfig
	Sync        SyncConfig
	Tally       TallyConfig
	Vote        VoteConfig
	API         APIConfig
	Metrics     MetricsConfig
	Log         LogConfig
}

// Credentials are the credentials to reach and sign
// for a hosted network.
type Credentials struct {
	InfuraProjectID string
	Mnemonic        string
	AccountIndex    uint32
}

// ProviderConfig configures the fallback provider.
type ProviderConfig struct {
	// Websocket selects the websocket variant of the fallback endpoint,
	// which allows push subscriptions to vote events.
	Websocket bool
}

// ContractConfig locates the deployed election contract.
type ContractConfig struct {
	Address  string `validate:"omitempty,eth_addr"`
	Artifact string `validate:"required_without=Address"`
}

// SyncConfig configures the state synchronizer.
type SyncConfig struct {
	BatchSize int `validate:"gte=1"`
}

// TallyConfig configures the live tally subscriber.
type TallyConfig struct {
	PollInterval time.Duration `validate:"gt=0"`
}

// VoteConfig configures the vote submitter.
type VoteConfig struct {
	CostPolicy      string `validate:"oneof=dynamic fixed"`
	Gas             uint64
	GasPrice        uint64
	ReceiptInterval time.Duration `validate:"gt=0"`
}

// APIConfig configures the local JSON-RPC and websocket API.
type APIConfig struct {
	Enabled bool
	Address string `validate:"required"`
}

// MetricsConfig configures the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool
	Address string `validate:"required"`
}

// LogConfig holds the log levels of the process and of each package.
type LogConfig struct {
	Level    log.Level
	Provider log.Level
	Guard    log.Level
	Sync     log.Level
	Tally    log.Level
	Vote     log.Level
	Session  log.Level
	API      log.Level
}

// Default returns the default configuration targeting
// the local development network.
func Default() Config {
	return Config{
		Network: Networks["development"],
		Sync: SyncConfig{
			BatchSize: 100,
		},
		Tally: TallyConfig{
			PollInterval: 2 * time.Second,
		},
		Vote: VoteConfig{
			CostPolicy:      CostPolicyDynamic,
			Gas:             6721975,
			GasPrice:        20000000000,
			ReceiptInterval: time.Second,
		},
		API: APIConfig{
			Address: "127.0.0.1:8080",
		},
		Metrics: MetricsConfig{
			Address: "127.0.0.1:9876",
		},
		Log: LogConfig{
			Level:    log.Info,
			Provider: log.DoNotChange,
			Guard:    log.DoNotChange,
			Sync:     log.DoNotChange,
			Tally:    log.DoNotChange,
			Vote:     log.DoNotChange,
			Session:  log.DoNotChange,
			API:      log.DoNotChange,
		},
	}
}

// Validate validates the configuration.
func (c Config) Validate() (err error) {
	validate := validator.New()
	err = validate.Struct(c)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if !c.Network.IsWildcard() {
		if _, err := c.Network.NumericID(); err != nil {
			return fmt.Errorf("%w: network %s: %w", ErrInvalid, c.Network.Name, err)
		}
	}

	if c.Vote.CostPolicy == CostPolicyFixed &&
		(c.Vote.Gas == 0 || c.Vote.GasPrice == 0) {
		return ErrFixedCost
	}

	return nil
}

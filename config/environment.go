// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Environment variables read by the client.
const (
	// EnvInjectedProvider is the endpoint of a wallet provider
	// supporting account authorization requests.
	EnvInjectedProvider = "ETHEREUM_PROVIDER"
	// EnvLegacyProvider is the endpoint of a legacy wallet provider.
	EnvLegacyProvider = "WEB3_PROVIDER"

	EnvNetworkType     = "TALLY_NETWORK_TYPE"
	EnvInfuraProjectID = "TALLY_INFURA_PROJECT_ID"
	EnvMnemonic        = "TALLY_MNEMONIC"
	EnvAccountIndex    = "TALLY_ACCOUNT_INDEX"
	EnvContractAddress = "TALLY_CONTRACT_ADDRESS"
)

const defaultEnvFile = ".env"

// Environment is the process environment, optionally
// populated from dotenv files.
type Environment struct {
	lookup   func(key string) (value string, ok bool)
	load     func(filenames ...string) error
	loaded   chan struct{}
	loadOnce sync.Once
	loadErr  error
}

// NewEnvironment creates an environment reading the process environment.
func NewEnvironment() *Environment {
	return &Environment{
		lookup: os.LookupEnv,
		load:   godotenv.Load,
		loaded: make(chan struct{}),
	}
}

// Load loads the dotenv files given into the process environment,
// without overriding variables already set. With no file given, the
// .env file of the working directory is loaded if it exists.
// Load only runs once and signals Loaded once done.
func (e *Environment) Load(filenames ...string) (err error) {
	e.loadOnce.Do(func() {
		defer close(e.loaded)

		if len(filenames) == 0 {
			_, statErr := os.Stat(defaultEnvFile)
			if errors.Is(statErr, os.ErrNotExist) {
				return
			}
			filenames = []string{defaultEnvFile}
		}

		if loadErr := e.load(filenames...); loadErr != nil {
			e.loadErr = fmt.Errorf("loading environment files: %w", loadErr)
		}
	})
	return e.loadErr
}

// Loaded returns a channel closed once the environment is loaded.
func (e *Environment) Loaded() <-chan struct{} {
	return e.loaded
}

// InjectedProvider returns the injected wallet provider endpoint, if any.
func (e *Environment) InjectedProvider() (endpoint string, ok bool) {
	return e.get(EnvInjectedProvider)
}

// LegacyProvider returns the legacy wallet provider endpoint, if any.
func (e *Environment) LegacyProvider() (endpoint string, ok bool) {
	return e.get(EnvLegacyProvider)
}

func (e *Environment) get(key string) (value string, ok bool) {
	value, ok = e.lookup(key)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

// Patch overrides the configuration given with the values
// of the environment variables set.
func (e *Environment) Patch(c *Config) (err error) {
	if name, ok := e.get(EnvNetworkType); ok {
		network, err := LookupNetwork(name)
		if err != nil {
			return fmt.Errorf("environment variable %s: %w", EnvNetworkType, err)
		}
		c.Network = network
	}

	if projectID, ok := e.get(EnvInfuraProjectID); ok {
		c.Credentials.InfuraProjectID = projectID
	}

	if mnemonic, ok := e.get(EnvMnemonic); ok {
		c.Credentials.Mnemonic = mnemonic
	}

	if s, ok := e.get(EnvAccountIndex); ok {
		index, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return fmt.Errorf("environment variable %s: %w", EnvAccountIndex, err)
		}
		c.Credentials.AccountIndex = uint32(index)
	}

	if address, ok := e.get(EnvContractAddress); ok {
		c.Contract.Address = address
	}

	return nil
}

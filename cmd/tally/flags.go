// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"github.com/urfave/cli"
)

// Configuration file flags
var (
	// ConfigFlag is the TOML configuration file
	ConfigFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	// EnvFileFlag is the dotenv file loaded into the environment
	EnvFileFlag = cli.StringFlag{
		Name:  "env-file",
		Usage: "Dotenv file to load, defaults to .env in the working directory if it exists",
	}
)

// Global log level flags
var (
	LogFlag = cli.StringFlag{
		Name:  "log",
		Usage: "Global log level. Supports levels crit (silent), eror, warn, info, dbug and trce (trace)",
	}
	LogProviderLevelFlag = cli.StringFlag{
		Name:  "log-provider",
		Usage: "Provider package log level. Supports levels crit (silent), eror, warn, info, dbug and trce (trace)",
	}
	LogGuardLevelFlag = cli.StringFlag{
		Name:  "log-guard",
		Usage: "Guard package log level. Supports levels crit (silent), eror, warn, info, dbug and trce (trace)",
	}
	LogSyncLevelFlag = cli.StringFlag{
		Name:  "log-sync",
		Usage: "Sync package log level. Supports levels crit (silent), eror, warn, info, dbug and trce (trace)",
	}
	LogTallyLevelFlag = cli.StringFlag{
		Name:  "log-tally",
		Usage: "Tally package log level. Supports levels crit (silent), eror, warn, info, dbug and trce (trace)",
	}
	LogVoteLevelFlag = cli.StringFlag{
		Name:  "log-vote",
		Usage: "Vote package log level. Supports levels crit (silent), eror, warn, info, dbug and trce (trace)",
	}
	LogSessionLevelFlag = cli.StringFlag{
		Name:  "log-session",
		Usage: "Session package log level. Supports levels crit (silent), eror, warn, info, dbug and trce (trace)",
	}
	LogAPILevelFlag = cli.StringFlag{
		Name:  "log-api",
		Usage: "API package log level. Supports levels crit (silent), eror, warn, info, dbug and trce (trace)",
	}
)

// Ledger flags
var (
	// NetworkFlag selects the network the election is deployed on
	NetworkFlag = cli.StringFlag{
		Name:  "network",
		Usage: "Network of the election: development, ropsten, kovan, rinkeby, goerli, sepolia or mainnet",
	}
	// ContractFlag is the election contract address
	ContractFlag = cli.StringFlag{
		Name:  "contract",
		Usage: "Address of the election contract, overrides --artifact",
	}
	// ArtifactFlag is the compiled contract artifact holding deployed addresses
	ArtifactFlag = cli.StringFlag{
		Name:  "artifact",
		Usage: "Contract artifact file listing the deployed address per network id",
	}
	// WebsocketFlag selects the websocket fallback endpoint
	WebsocketFlag = cli.BoolFlag{
		Name:  "websocket",
		Usage: "Use the websocket endpoint of the fallback provider, receiving votes by push",
	}
	// AccountIndexFlag is the HD wallet account index of hosted networks
	AccountIndexFlag = cli.UintFlag{
		Name:  "account-index",
		Usage: "Account index derived from the mnemonic on hosted networks",
	}
	BatchSizeFlag = cli.IntFlag{
		Name:  "batch-size",
		Usage: "Number of candidates read per batch when loading the election",
	}
	PollIntervalFlag = cli.DurationFlag{
		Name:  "poll-interval",
		Usage: "Vote event polling interval when the provider cannot push",
	}
)

// Vote flags
var (
	CostPolicyFlag = cli.StringFlag{
		Name:  "cost-policy",
		Usage: "Transaction cost policy: dynamic (estimate gas and price) or fixed",
	}
	GasFlag = cli.Uint64Flag{
		Name:  "gas",
		Usage: "Gas limit of the fixed cost policy",
	}
	GasPriceFlag = cli.Uint64Flag{
		Name:  "gas-price",
		Usage: "Gas price in wei of the fixed cost policy",
	}
	// VoteFlag casts a vote once the election is loaded
	VoteFlag = cli.Uint64Flag{
		Name:  "vote",
		Usage: "Candidate id to vote for once the election is loaded",
	}
)

// Server flags
var (
	APIFlag = cli.BoolFlag{
		Name:  "api",
		Usage: "Serve the election page and JSON-RPC API",
	}
	APIAddressFlag = cli.StringFlag{
		Name:  "api-address",
		Usage: "Listening address of the API server",
	}
	MetricsFlag = cli.BoolFlag{
		Name:  "metrics",
		Usage: "Serve Prometheus metrics",
	}
	MetricsAddressFlag = cli.StringFlag{
		Name:  "metrics-address",
		Usage: "Listening address of the metrics server",
	}
)

// Export flags
var (
	// OutputFlag is the file the configuration is exported to
	OutputFlag = cli.StringFlag{
		Name:  "output",
		Usage: "File to export the effective configuration to",
		Value: "config.toml",
	}
)

// flag sets for the commands
var (
	LogFlags = []cli.Flag{
		LogFlag,
		LogProviderLevelFlag,
		LogGuardLevelFlag,
		LogSyncLevelFlag,
		LogTallyLevelFlag,
		LogVoteLevelFlag,
		LogSessionLevelFlag,
		LogAPILevelFlag,
	}

	ConfigFlags = append([]cli.Flag{
		ConfigFlag,
		EnvFileFlag,
		NetworkFlag,
		ContractFlag,
		ArtifactFlag,
		WebsocketFlag,
		AccountIndexFlag,
		BatchSizeFlag,
		PollIntervalFlag,
		CostPolicyFlag,
		GasFlag,
		GasPriceFlag,
		APIFlag,
		APIAddressFlag,
		MetricsFlag,
		MetricsAddressFlag,
	}, LogFlags...)

	RootFlags = append([]cli.Flag{VoteFlag}, ConfigFlags...)

	ExportFlags = append([]cli.Flag{OutputFlag}, ConfigFlags...)
)

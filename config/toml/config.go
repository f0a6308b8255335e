// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package toml

// Config is the TOML configuration file of the tally client.
type Config struct {
	Global   GlobalConfig   `toml:"global,omitempty"`
	Log      LogConfig      `toml:"log,omitempty"`
	Provider ProviderConfig `toml:"provider,omitempty"`
	Contract ContractConfig `toml:"contract,omitempty"`
	Sync     SyncConfig     `toml:"sync,omitempty"`
	Tally    TallyConfig    `toml:"tally,omitempty"`
	Vote     VoteConfig     `toml:"vote,omitempty"`
	API      APIConfig      `toml:"api,omitempty"`
	Metrics  MetricsConfig  `toml:"metrics,omitempty"`
}

// GlobalConfig is to marshal/unmarshal toml global config vars
type GlobalConfig struct {
	Network string `toml:"network,omitempty"`
	LogLvl  string `toml:"log,omitempty"`
}

// LogConfig represents the log levels for individual packages
type LogConfig struct {
	ProviderLvl string `toml:"provider,omitempty"`
	GuardLvl    string `toml:"guard,omitempty"`
	SyncLvl     string `toml:"sync,omitempty"`
	TallyLvl    string `toml:"tally,omitempty"`
	VoteLvl     string `toml:"vote,omitempty"`
	SessionLvl  string `toml:"session,omitempty"`
	APILvl      string `toml:"api,omitempty"`
}

// ProviderConfig is to marshal/unmarshal toml provider config vars
type ProviderConfig struct {
	Websocket    bool   `toml:"websocket,omitempty"`
	AccountIndex uint32 `toml:"account-index,omitempty"`
}

// ContractConfig is to marshal/unmarshal toml contract config vars
type ContractConfig struct {
	Address  string `toml:"address,omitempty"`
	Artifact string `toml:"artifact,omitempty"`
}

// SyncConfig is to marshal/unmarshal toml sync config vars
type SyncConfig struct {
	BatchSize int `toml:"batch-size,omitempty"`
}

// TallyConfig is to marshal/unmarshal toml tally config vars
type TallyConfig struct {
	PollInterval string `toml:"poll-interval,omitempty"`
}

// VoteConfig is to marshal/unmarshal toml vote config vars
type VoteConfig struct {
	CostPolicy      string `toml:"cost-policy,omitempty"`
	Gas             uint64 `toml:"gas,omitempty"`
	GasPrice        uint64 `toml:"gas-price,omitempty"`
	ReceiptInterval string `toml:"receipt-interval,omitempty"`
}

// APIConfig is to marshal/unmarshal toml api config vars
type APIConfig struct {
	Enabled bool   `toml:"enabled,omitempty"`
	Address string `toml:"address,omitempty"`
}

// MetricsConfig is to marshal/unmarshal toml metrics config vars
type MetricsConfig struct {
	Enabled bool   `toml:"enabled,omitempty"`
	Address string `toml:"address,omitempty"`
}

// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ChainSafe/tally/config"
	ctoml "github.com/ChainSafe/tally/config/toml"
	"github.com/ChainSafe/tally/internal/log"
	"github.com/urfave/cli"
)

// loadConfigFile loads the TOML configuration file given by the
// --config flag, if any.
func loadConfigFile(ctx *cli.Context, tomlCfg *ctoml.Config) (err error) {
	path := ctx.String(ConfigFlag.Name)
	if path == "" {
		return nil
	}

	logger.Infof("loading toml configuration from %s...", path)
	return ctoml.LoadFile(path, tomlCfg)
}

// createConfig assembles the configuration from, in increasing order
// of precedence, the defaults, the TOML file, the environment and the flags.
func createConfig(ctx *cli.Context, env *config.Environment) (cfg config.Config, err error) {
	cfg = config.Default()

	tomlCfg := new(ctoml.Config)
	err = loadConfigFile(ctx, tomlCfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to load toml configuration: %w", err)
	}

	err = setConfigFromTOML(*tomlCfg, &cfg)
	if err != nil {
		return cfg, err
	}

	var envFiles []string
	if envFile := ctx.String(EnvFileFlag.Name); envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	err = env.Load(envFiles...)
	if err != nil {
		return cfg, err
	}

	err = env.Patch(&cfg)
	if err != nil {
		return cfg, err
	}

	err = setConfigFromFlags(ctx, &cfg)
	if err != nil {
		return cfg, err
	}

	err = setLogConfig(ctx, tomlCfg, &cfg.Log)
	if err != nil {
		return cfg, fmt.Errorf("failed to set log configuration: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return cfg, err
	}

	return cfg, nil
}

// setConfigFromTOML sets the configuration fields set in the TOML configuration.
func setConfigFromTOML(tomlCfg ctoml.Config, cfg *config.Config) (err error) {
	if tomlCfg.Global.Network != "" {
		cfg.Network, err = config.LookupNetwork(tomlCfg.Global.Network)
		if err != nil {
			return err
		}
	}

	if tomlCfg.Provider.Websocket {
		cfg.Provider.Websocket = true
	}
	if tomlCfg.Provider.AccountIndex != 0 {
		cfg.Credentials.AccountIndex = tomlCfg.Provider.AccountIndex
	}

	if tomlCfg.Contract.Address != "" {
		cfg.Contract.Address = tomlCfg.Contract.Address
	}
	if tomlCfg.Contract.Artifact != "" {
		cfg.Contract.Artifact = tomlCfg.Contract.Artifact
	}

	if tomlCfg.Sync.BatchSize != 0 {
		cfg.Sync.BatchSize = tomlCfg.Sync.BatchSize
	}

	if tomlCfg.Tally.PollInterval != "" {
		cfg.Tally.PollInterval, err = time.ParseDuration(tomlCfg.Tally.PollInterval)
		if err != nil {
			return fmt.Errorf("tally poll interval: %w", err)
		}
	}

	if tomlCfg.Vote.CostPolicy != "" {
		cfg.Vote.CostPolicy = tomlCfg.Vote.CostPolicy
	}
	if tomlCfg.Vote.Gas != 0 {
		cfg.Vote.Gas = tomlCfg.Vote.Gas
	}
	if tomlCfg.Vote.GasPrice != 0 {
		cfg.Vote.GasPrice = tomlCfg.Vote.GasPrice
	}
	if tomlCfg.Vote.ReceiptInterval != "" {
		cfg.Vote.ReceiptInterval, err = time.ParseDuration(tomlCfg.Vote.ReceiptInterval)
		if err != nil {
			return fmt.Errorf("vote receipt interval: %w", err)
		}
	}

	if tomlCfg.API.Enabled {
		cfg.API.Enabled = true
	}
	if tomlCfg.API.Address != "" {
		cfg.API.Address = tomlCfg.API.Address
	}

	if tomlCfg.Metrics.Enabled {
		cfg.Metrics.Enabled = true
	}
	if tomlCfg.Metrics.Address != "" {
		cfg.Metrics.Address = tomlCfg.Metrics.Address
	}

	return nil
}

// setConfigFromFlags sets the configuration fields of the flags set.
func setConfigFromFlags(ctx *cli.Context, cfg *config.Config) (err error) {
	if name := ctx.String(NetworkFlag.Name); name != "" {
		cfg.Network, err = config.LookupNetwork(name)
		if err != nil {
			return err
		}
	}

	if address := ctx.String(ContractFlag.Name); address != "" {
		cfg.Contract.Address = address
	}
	if artifact := ctx.String(ArtifactFlag.Name); artifact != "" {
		cfg.Contract.Artifact = artifact
	}

	if ctx.IsSet(WebsocketFlag.Name) {
		cfg.Provider.Websocket = ctx.Bool(WebsocketFlag.Name)
	}
	if ctx.IsSet(AccountIndexFlag.Name) {
		cfg.Credentials.AccountIndex = uint32(ctx.Uint(AccountIndexFlag.Name))
	}
	if ctx.IsSet(BatchSizeFlag.Name) {
		cfg.Sync.BatchSize = ctx.Int(BatchSizeFlag.Name)
	}
	if ctx.IsSet(PollIntervalFlag.Name) {
		cfg.Tally.PollInterval = ctx.Duration(PollIntervalFlag.Name)
	}

	if policy := ctx.String(CostPolicyFlag.Name); policy != "" {
		cfg.Vote.CostPolicy = policy
	}
	if ctx.IsSet(GasFlag.Name) {
		cfg.Vote.Gas = ctx.Uint64(GasFlag.Name)
	}
	if ctx.IsSet(GasPriceFlag.Name) {
		cfg.Vote.GasPrice = ctx.Uint64(GasPriceFlag.Name)
	}

	if ctx.IsSet(APIFlag.Name) {
		cfg.API.Enabled = ctx.Bool(APIFlag.Name)
	}
	if address := ctx.String(APIAddressFlag.Name); address != "" {
		cfg.API.Address = address
	}
	if ctx.IsSet(MetricsFlag.Name) {
		cfg.Metrics.Enabled = ctx.Bool(MetricsFlag.Name)
	}
	if address := ctx.String(MetricsAddressFlag.Name); address != "" {
		cfg.Metrics.Address = address
	}

	return nil
}

type stringKVStore interface {
	String(key string) (value string)
}

// getLogLevel obtains the log level in the following order:
// 1. Try to obtain it from the flag value corresponding to flagName.
// 2. Try to obtain it from the TOML value given, if step 1. failed.
// 3. Return the default value given if both previous steps failed.
func getLogLevel(flagsKVStore stringKVStore, flagName, tomlValue string, defaultLevel log.Level) (
	level log.Level, err error) {
	if flagValue := flagsKVStore.String(flagName); flagValue != "" {
		return parseLogLevelString(flagValue)
	}

	if tomlValue == "" {
		return defaultLevel, nil
	}

	return parseLogLevelString(tomlValue)
}

// ErrLogLevelIntegerOutOfRange is returned for a log level integer
// outside of the range of levels.
var ErrLogLevelIntegerOutOfRange = errors.New("log level integer can only be between 0 and 5 included")

func parseLogLevelString(logLevelString string) (logLevel log.Level, err error) {
	levelInt, err := strconv.Atoi(logLevelString)
	if err == nil { // level given as an integer
		if levelInt < 0 || levelInt > 5 {
			return 0, fmt.Errorf("%w: log level given: %d", ErrLogLevelIntegerOutOfRange, levelInt)
		}
		logLevel = log.Level(levelInt)
		return logLevel, nil
	}

	logLevel, err = log.ParseLevel(logLevelString)
	if err != nil {
		return 0, fmt.Errorf("cannot parse log level string: %w", err)
	}

	return logLevel, nil
}

// setLogConfig sets the global and package log levels. A package level
// not set by flag or TOML defaults to the global level.
func setLogConfig(flagsKVStore stringKVStore, tomlCfg *ctoml.Config, logCfg *config.LogConfig) (err error) {
	if tomlCfg == nil {
		tomlCfg = new(ctoml.Config)
	}

	logCfg.Level, err = getLogLevel(flagsKVStore, LogFlag.Name, tomlCfg.Global.LogLvl, log.Info)
	if err != nil {
		return fmt.Errorf("cannot get global log level: %w", err)
	}
	tomlCfg.Global.LogLvl = logCfg.Level.String()

	levelsData := []struct {
		name      string
		flagName  string
		tomlValue string
		levelPtr  *log.Level // pointer to value to modify
	}{
		{
			name:      "provider",
			flagName:  LogProviderLevelFlag.Name,
			tomlValue: tomlCfg.Log.ProviderLvl,
			levelPtr:  &logCfg.Provider,
		},
		{
			name:      "guard",
			flagName:  LogGuardLevelFlag.Name,
			tomlValue: tomlCfg.Log.GuardLvl,
			levelPtr:  &logCfg.Guard,
		},
		{
			name:      "sync",
			flagName:  LogSyncLevelFlag.Name,
			tomlValue: tomlCfg.Log.SyncLvl,
			levelPtr:  &logCfg.Sync,
		},
		{
			name:      "tally",
			flagName:  LogTallyLevelFlag.Name,
			tomlValue: tomlCfg.Log.TallyLvl,
			levelPtr:  &logCfg.Tally,
		},
		{
			name:      "vote",
			flagName:  LogVoteLevelFlag.Name,
			tomlValue: tomlCfg.Log.VoteLvl,
			levelPtr:  &logCfg.Vote,
		},
		{
			name:      "session",
			flagName:  LogSessionLevelFlag.Name,
			tomlValue: tomlCfg.Log.SessionLvl,
			levelPtr:  &logCfg.Session,
		},
		{
			name:      "API",
			flagName:  LogAPILevelFlag.Name,
			tomlValue: tomlCfg.Log.APILvl,
			levelPtr:  &logCfg.API,
		},
	}

	for _, levelData := range levelsData {
		level, err := getLogLevel(flagsKVStore, levelData.flagName, levelData.tomlValue, logCfg.Level)
		if err != nil {
			return fmt.Errorf("cannot get %s log level: %w", levelData.name, err)
		}
		*levelData.levelPtr = level
	}

	logger.Debugf("set log configuration: --log %s global %s", flagsKVStore.String(LogFlag.Name), logCfg.Level)
	return nil
}

// toTOMLConfig converts the configuration to its TOML form.
// Credentials are left out: they only come from the environment.
func toTOMLConfig(cfg config.Config) ctoml.Config {
	return ctoml.Config{
		Global: ctoml.GlobalConfig{
			Network: cfg.Network.Name,
			LogLvl:  levelString(cfg.Log.Level),
		},
		Log: ctoml.LogConfig{
			ProviderLvl: levelString(cfg.Log.Provider),
			GuardLvl:    levelString(cfg.Log.Guard),
			SyncLvl:     levelString(cfg.Log.Sync),
			TallyLvl:    levelString(cfg.Log.Tally),
			VoteLvl:     levelString(cfg.Log.Vote),
			SessionLvl:  levelString(cfg.Log.Session),
			APILvl:      levelString(cfg.Log.API),
		},
		Provider: ctoml.ProviderConfig{
			Websocket:    cfg.Provider.Websocket,
			AccountIndex: cfg.Credentials.AccountIndex,
		},
		Contract: ctoml.ContractConfig{
			Address:  cfg.Contract.Address,
			Artifact: cfg.Contract.Artifact,
		},
		Sync: ctoml.SyncConfig{
			BatchSize: cfg.Sync.BatchSize,
		},
		Tally: ctoml.TallyConfig{
			PollInterval: cfg.Tally.PollInterval.String(),
		},
		Vote: ctoml.VoteConfig{
			CostPolicy:      cfg.Vote.CostPolicy,
			Gas:             cfg.Vote.Gas,
			GasPrice:        cfg.Vote.GasPrice,
			ReceiptInterval: cfg.Vote.ReceiptInterval.String(),
		},
		API: ctoml.APIConfig{
			Enabled: cfg.API.Enabled,
			Address: cfg.API.Address,
		},
		Metrics: ctoml.MetricsConfig{
			Enabled: cfg.Metrics.Enabled,
			Address: cfg.Metrics.Address,
		},
	}
}

func levelString(level log.Level) string {
	if level == log.DoNotChange {
		return ""
	}
	return level.String()
}

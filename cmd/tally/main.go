// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ChainSafe/tally/api"
	"github.com/ChainSafe/tally/config"
	ctoml "github.com/ChainSafe/tally/config/toml"
	"github.com/ChainSafe/tally/internal/log"
	"github.com/ChainSafe/tally/internal/metrics"
	"github.com/ChainSafe/tally/lib/provider"
	"github.com/ChainSafe/tally/lib/services"
	"github.com/ChainSafe/tally/lib/state"
	"github.com/ChainSafe/tally/session"
	_ "github.com/breml/rootcerts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pterm/pterm"
	"github.com/urfave/cli"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "cmd"))

var (
	exportCommand = cli.Command{
		Action:    exportAction,
		Name:      "export",
		Usage:     "Export the effective configuration to a TOML file",
		ArgsUsage: "",
		Flags:     ExportFlags,
		Description: "The export command writes the configuration assembled from the defaults,\n" +
			"\tthe TOML file, the environment and the flags to a TOML file.\n" +
			"\tCredentials are not exported.\n" +
			"\tUsage: tally export --network goerli --output config.toml",
	}
	statusCommand = cli.Command{
		Action:    statusAction,
		Name:      "status",
		Usage:     "Print the current tallies of the election and exit",
		ArgsUsage: "",
		Flags:     ConfigFlags,
		Description: "The status command loads the election once and prints its tallies\n" +
			"\twithout subscribing to new votes.\n" +
			"\tUsage: tally status --contract 0x...",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "tally"
	app.Usage = "Election client keeping live tallies of an election contract"
	app.Action = tallyAction
	app.Flags = RootFlags
	app.Commands = []cli.Command{
		exportCommand,
		statusCommand,
	}
	return app
}

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		logger.Critical(err.Error())
		os.Exit(1)
	}
}

// prepareConfig creates the configuration and sets up the logger with it.
func prepareConfig(ctx *cli.Context, env *config.Environment) (cfg config.Config, err error) {
	cfg, err = createConfig(ctx, env)
	if err != nil {
		return cfg, fmt.Errorf("failed to create configuration: %w", err)
	}
	setupLogger(cfg.Log.Level)
	logger.Info(cfg.String())
	return cfg, nil
}

// tallyAction is the root action: it starts a session and renders
// its snapshots until interrupted.
func tallyAction(ctx *cli.Context) (err error) {
	if arguments := ctx.Args(); len(arguments) > 0 {
		return fmt.Errorf("failed to read command argument: %q", arguments[0])
	}

	env := config.NewEnvironment()
	cfg, err := prepareConfig(ctx, env)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := session.New(cfg, env)
	defer func() {
		err := s.Stop()
		if err != nil {
			logger.Errorf("stopping session: %s", err)
		}
	}()

	registry, err := newServiceRegistry(cfg, s)
	if err != nil {
		return err
	}
	err = registry.StartAll()
	if err != nil {
		return fmt.Errorf("failed to start services: %w", err)
	}
	defer registry.StopAll()

	r, err := newRenderer(isTerminal(os.Stdout), os.Stdout)
	if err != nil {
		return err
	}
	defer r.stop()

	snapshots := s.Watch()
	defer s.Unwatch(snapshots)
	renderDone := make(chan struct{})
	go func() {
		defer close(renderDone)
		r.run(runCtx, s.Snapshot(), snapshots)
	}()
	defer func() {
		stop()
		<-renderDone
	}()

	err = s.Start(runCtx)
	if err != nil {
		// the session already logged the error
		return cli.NewExitError("", 1)
	}

	if ctx.IsSet(VoteFlag.Name) {
		castVote(s, ctx.Uint64(VoteFlag.Name))
	}

	<-runCtx.Done()
	logger.Info("signal interrupt, shutting down...")
	return nil
}

func newServiceRegistry(cfg config.Config, s *session.Session) (
	registry *services.ServiceRegistry, err error) {
	registry = services.NewServiceRegistry(logger)

	if cfg.API.Enabled {
		server, err := api.NewServer(s, api.Config{
			Address: cfg.API.Address,
			LogLvl:  cfg.Log.API,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create api server: %w", err)
		}
		registry.RegisterService(server)
	}

	if cfg.Metrics.Enabled {
		registry.RegisterService(metrics.NewServer(cfg.Metrics.Address, prometheus.DefaultGatherer))
	}

	return registry, nil
}

func castVote(s *session.Session, candidateID uint64) {
	err := s.SelectCandidate(candidateID)
	if err != nil {
		logger.Errorf("cannot select candidate %d: %s", candidateID, err)
		return
	}

	err = s.CastVote()
	if err != nil {
		logger.Errorf("cannot vote for candidate %d: %s", candidateID, err)
	}
}

// exportAction writes the effective configuration to a TOML file.
func exportAction(ctx *cli.Context) (err error) {
	cfg, err := prepareConfig(ctx, config.NewEnvironment())
	if err != nil {
		return err
	}

	output := ctx.String(OutputFlag.Name)
	err = ctoml.ExportFile(toTOMLConfig(cfg), output)
	if err != nil {
		return fmt.Errorf("failed to export configuration: %w", err)
	}

	logger.Infof("exported configuration to %s", output)
	return nil
}

// statusAction prints the tallies of the election once.
func statusAction(ctx *cli.Context) (err error) {
	env := config.NewEnvironment()
	cfg, err := prepareConfig(ctx, env)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !isTerminal(os.Stdout) {
		pterm.DisableStyling()
	}

	snapshot, err := loadStatus(runCtx, cfg, env)
	if err != nil {
		// the session already logged the error
		return cli.NewExitError("", 1)
	}

	return printStatus(snapshot, os.Stdout)
}

// loadStatus loads the election once and returns the resulting snapshot.
func loadStatus(ctx context.Context, cfg config.Config, env provider.Environment) (
	snapshot state.Snapshot, err error) {
	s := session.New(cfg, env)
	defer func() {
		stopErr := s.Stop()
		if stopErr != nil {
			logger.Errorf("stopping session: %s", stopErr)
		}
	}()

	err = s.Load(ctx)
	return s.Snapshot(), err
}

func printStatus(snapshot state.Snapshot, writer io.Writer) (err error) {
	text, err := renderSnapshot(snapshot)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(writer, text)
	if err != nil {
		return fmt.Errorf("writing status: %w", err)
	}
	return nil
}

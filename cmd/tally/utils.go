// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"os"

	"github.com/ChainSafe/tally/internal/log"
	terminal "golang.org/x/term"
)

// setupLogger sets up the global logger with the level given.
func setupLogger(level log.Level) {
	log.Patch(
		log.SetWriter(os.Stdout),
		log.SetFormat(log.FormatConsole),
		log.SetCallerFile(true),
		log.SetCallerLine(true),
		log.SetLevel(level),
	)
	logger.Patch(log.SetLevel(level))
}

// isTerminal returns true if the file given is a terminal.
func isTerminal(file *os.File) bool {
	return terminal.IsTerminal(int(file.Fd()))
}

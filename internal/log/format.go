// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

// Format is the format of the logger.
type Format uint8

const (
	// FormatConsole is the console format with a timestamp,
	// a coloured level, the message and the context key values.
	FormatConsole Format = iota
	// FormatPlain is the console format without colours,
	// useful when the output is not a terminal.
	FormatPlain
)

// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"time"
)

func levelPtr(l Level) *Level { return &l }

func formatPtr(f Format) *Format { return &f }

func newCallerSettings(file, line bool) callerSettings {
	return callerSettings{
		file: &file,
		line: &line,
	}
}

func fixedTime() time.Time {
	return time.Date(2022, time.October, 3, 12, 30, 0, 0, time.UTC)
}

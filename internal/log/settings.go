// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"io"
	"os"
)

type settings struct {
	writer  io.Writer
	level   *Level
	format  *Format
	caller  callerSettings
	context []contextKeyValues
}

type contextKeyValues struct {
	key    string
	values []string
}

func newSettings(options []Option) (settings settings) {
	for _, option := range options {
		option(&settings)
	}
	return settings
}

// mergeWith sets all the unset fields of s with the
// fields from other, and appends the context key values
// of other which are not already in s.
func (s *settings) mergeWith(other settings) {
	if s.writer == nil {
		s.writer = other.writer
	}

	if s.level == nil && other.level != nil {
		level := *other.level
		s.level = &level
	}

	if s.format == nil && other.format != nil {
		format := *other.format
		s.format = &format
	}

	s.caller.mergeWith(other.caller)

	for _, otherKV := range other.context {
		found := false
		for i := range s.context {
			if s.context[i].key == otherKV.key {
				found = true
				break
			}
		}
		if found {
			continue
		}
		values := make([]string, len(otherKV.values))
		copy(values, otherKV.values)
		s.context = append(s.context, contextKeyValues{key: otherKV.key, values: values})
	}
}

// overrideWith sets all the set fields of other into s.
func (s *settings) overrideWith(other settings) {
	if other.writer != nil {
		s.writer = other.writer
	}

	if other.level != nil {
		level := *other.level
		s.level = &level
	}

	if other.format != nil {
		format := *other.format
		s.format = &format
	}

	s.caller.overrideWith(other.caller)

	for _, otherKV := range other.context {
		values := append([]string(nil), otherKV.values...)
		replaced := false
		for i := range s.context {
			if s.context[i].key == otherKV.key {
				s.context[i].values = values
				replaced = true
				break
			}
		}
		if !replaced {
			s.context = append(s.context, contextKeyValues{key: otherKV.key, values: values})
		}
	}
}

func (s *settings) setDefaults() {
	if s.writer == nil {
		s.writer = os.Stdout
	}

	if s.level == nil {
		level := Info
		s.level = &level
	}

	if s.format == nil {
		format := FormatConsole
		s.format = &format
	}

	s.caller.setDefaults()
}

// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package toml

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/naoina/toml"
)

// LoadFile decodes the TOML file at path into cfg.
func LoadFile(path string, cfg *Config) (err error) {
	path, err = filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("finding absolute path: %w", err)
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}

	err = toml.NewDecoder(file).Decode(cfg)
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("decoding toml file %s: %w", path, err)
	}

	return file.Close()
}

// ExportFile encodes cfg as TOML and writes it to path.
func ExportFile(cfg Config, path string) (err error) {
	raw, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling configuration: %w", err)
	}

	err = os.WriteFile(path, raw, 0600)
	if err != nil {
		return fmt.Errorf("writing configuration file: %w", err)
	}

	return nil
}

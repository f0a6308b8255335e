// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LoadArtifact(t *testing.T) {
	t.Parallel()

	const content = `{
  "contractName": "Election",
  "abi": [],
  "networks": {
    "5777": {
      "events": {},
      "links": {},
      "address": "0x5fbdb2315678afecb367f032d93f642f64180aa3",
      "transactionHash": "0x0000000000000000000000000000000000000000000000000000000000000001"
    }
  }
}`

	path := filepath.Join(t.TempDir(), "Election.json")
	err := os.WriteFile(path, []byte(content), 0600)
	require.NoError(t, err)

	artifact, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, "Election", artifact.ContractName)

	address, err := artifact.Address("5777")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3"), address)

	_, err = artifact.Address("3")
	assert.ErrorIs(t, err, ErrNotDeployed)
	assert.EqualError(t, err, "contract not deployed on network: Election is not deployed on network 3")
}

func Test_LoadArtifact_errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := LoadArtifact(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "bad.json")
	err = os.WriteFile(path, []byte("{"), 0600)
	require.NoError(t, err)

	_, err = LoadArtifact(path)
	assert.ErrorContains(t, err, "decoding artifact")
}

func Test_CopyRoster(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CopyRoster(nil))

	roster := []Candidate{{ID: 1, Name: "Alice"}}
	copied := CopyRoster(roster)
	copied[0].VoteCount++
	assert.Equal(t, uint64(0), roster[0].VoteCount)
}

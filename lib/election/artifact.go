// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNotDeployed is returned when a build artifact has no
// deployment for the network id looked up.
var ErrNotDeployed = errors.New("contract not deployed on network")

// Artifact is the subset of a truffle build artifact
// describing the deployments of a contract.
type Artifact struct {
	ContractName string                `json:"contractName"`
	Networks     map[string]Deployment `json:"networks"`
}

// Deployment is a deployment of a contract on a network.
type Deployment struct {
	Address         common.Address `json:"address"`
	TransactionHash common.Hash    `json:"transactionHash"`
}

// LoadArtifact reads the truffle build artifact at path.
func LoadArtifact(path string) (artifact Artifact, err error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return artifact, fmt.Errorf("reading artifact: %w", err)
	}

	err = json.Unmarshal(data, &artifact)
	if err != nil {
		return artifact, fmt.Errorf("decoding artifact %s: %w", path, err)
	}

	return artifact, nil
}

// Address returns the address of the contract deployed
// on the network with the id given.
func (a Artifact) Address(networkID string) (address common.Address, err error) {
	deployment, ok := a.Networks[networkID]
	if !ok {
		return address, fmt.Errorf("%w: %s is not deployed on network %s",
			ErrNotDeployed, a.ContractName, networkID)
	}
	return deployment.Address, nil
}

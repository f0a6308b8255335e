// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package config

import (
	"github.com/qdm12/gotree"
)

func (c Config) String() string {
	return c.toLinesNode().String()
}

func (c Config) toLinesNode() (node *gotree.Node) {
	node = gotree.New("Configuration")

	network := node.Appendf("Network: %s", c.Network.Name)
	network.Appendf("ID: %s", c.Network.ID)
	if c.Network.Hosted() {
		network.Appendf("Endpoint: %s", c.Network.Endpoint("[redacted]", c.Provider.Websocket))
		network.Appendf("Infura project id: %s", obfuscate(c.Credentials.InfuraProjectID))
		network.Appendf("Mnemonic: %s", obfuscate(c.Credentials.Mnemonic))
		network.Appendf("Account index: %d", c.Credentials.AccountIndex)
	} else {
		network.Appendf("Endpoint: %s", c.Network.Endpoint("", c.Provider.Websocket))
	}
	network.Appendf("Confirmations: %d", c.Network.Confirmations)

	contract := node.Appendf("Contract")
	if c.Contract.Address != "" {
		contract.Appendf("Address: %s", c.Contract.Address)
	} else {
		contract.Appendf("Artifact: %s", c.Contract.Artifact)
	}

	node.Appendf("Sync batch size: %d", c.Sync.BatchSize)
	node.Appendf("Tally poll interval: %s", c.Tally.PollInterval)

	vote := node.Appendf("Vote")
	vote.Appendf("Cost policy: %s", c.Vote.CostPolicy)
	if c.Vote.CostPolicy == CostPolicyFixed {
		vote.Appendf("Gas: %d", c.Vote.Gas)
		vote.Appendf("Gas price: %d wei", c.Vote.GasPrice)
	}
	vote.Appendf("Receipt interval: %s", c.Vote.ReceiptInterval)

	node.Appendf("API: %s", enabledAddress(c.API.Enabled, c.API.Address))
	node.Appendf("Metrics: %s", enabledAddress(c.Metrics.Enabled, c.Metrics.Address))
	node.Appendf("Log level: %s", c.Log.Level)

	return node
}

func obfuscate(secret string) string {
	if secret == "" {
		return "[not set]"
	}
	return "[set]"
}

func enabledAddress(enabled bool, address string) string {
	if !enabled {
		return "disabled"
	}
	return address
}

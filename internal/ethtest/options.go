// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package ethtest

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Option is a functional option for the fake node.
type Option func(n *Node)

// WithNetworkID sets the network id returned by net_version.
// The default is 5777.
func WithNetworkID(id uint64) Option {
	return func(n *Node) { n.networkID = id }
}

// WithChainID sets the chain id. The default is 1337.
func WithChainID(id uint64) Option {
	return func(n *Node) { n.chainID = new(big.Int).SetUint64(id) }
}

// WithGenesisHash sets the hash reported for the genesis block.
func WithGenesisHash(hash common.Hash) Option {
	return func(n *Node) { n.genesisHash = hash }
}

// WithCandidates sets the candidate names of the election contract,
// with ids starting at 1.
func WithCandidates(names ...string) Option {
	return func(n *Node) {
		n.candidates = make([]candidate, len(names))
		for i, name := range names {
			n.candidates[i] = candidate{name: name}
		}
	}
}

// WithAccounts sets the accounts managed by the node wallet.
func WithAccounts(accounts ...common.Address) Option {
	return func(n *Node) { n.accounts = accounts }
}

// WithContract sets the address of the election contract.
func WithContract(address common.Address) Option {
	return func(n *Node) { n.contract = address }
}

// WithManualMining disables mining a block for each transaction.
// Blocks are then mined with Mine.
func WithManualMining() Option {
	return func(n *Node) { n.autoMine = false }
}

// WithGas sets the gas needed by a vote and the suggested gas price.
func WithGas(gas uint64, gasPrice *big.Int) Option {
	return func(n *Node) {
		n.voteGas = gas
		n.gasPrice = gasPrice
	}
}

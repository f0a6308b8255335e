// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package guard

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

var errNoGenesis = errors.New("genesis block not found")

// RPCReader reads the network identity over JSON-RPC.
type RPCReader struct {
	rpc    *rpc.Client
	client *ethclient.Client
}

// NewRPCReader creates a reader using the RPC client given.
func NewRPCReader(client *rpc.Client) *RPCReader {
	return &RPCReader{
		rpc:    client,
		client: ethclient.NewClient(client),
	}
}

// NetworkID returns the network id from net_version.
func (r *RPCReader) NetworkID(ctx context.Context) (id *big.Int, err error) {
	return r.client.NetworkID(ctx)
}

// GenesisHash returns the hash of block 0 as reported by the node.
func (r *RPCReader) GenesisHash(ctx context.Context) (hash common.Hash, err error) {
	var block *struct {
		Hash common.Hash `json:"hash"`
	}
	err = r.rpc.CallContext(ctx, &block, "eth_getBlockByNumber", "0x0", false)
	if err != nil {
		return hash, err
	}
	if block == nil {
		return hash, errNoGenesis
	}
	return block.Hash, nil
}

// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package guard

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
)

const (
	privateNetworkType = "private"
	unknownNetworkType = "unknown"
)

var kovanGenesisHash = common.HexToHash("0xa3c565fc15c7478862d50ccd6561e3c06b24cc509bf388941c25ea985ce32cb9")

type networkKey struct {
	id      uint64
	genesis common.Hash
}

var networkTypes = map[networkKey]string{
	{id: 1, genesis: params.MainnetGenesisHash}:        "main",
	{id: 3, genesis: params.RopstenGenesisHash}:        "ropsten",
	{id: 4, genesis: params.RinkebyGenesisHash}:        "rinkeby",
	{id: 5, genesis: params.GoerliGenesisHash}:         "goerli",
	{id: 42, genesis: kovanGenesisHash}:                "kovan",
	{id: 11155111, genesis: params.SepoliaGenesisHash}: "sepolia",
}

// NetworkType returns the type label of the network with the id given,
// identified by its id and genesis block hash. Networks not matching
// a public network are labeled private.
func NetworkType(ctx context.Context, reader Reader, id *big.Int) (label string, err error) {
	if !id.IsUint64() {
		return privateNetworkType, nil
	}

	genesis, err := reader.GenesisHash(ctx)
	if err != nil {
		return "", fmt.Errorf("reading genesis hash: %w", err)
	}

	label, ok := networkTypes[networkKey{id: id.Uint64(), genesis: genesis}]
	if !ok {
		return privateNetworkType, nil
	}
	return label, nil
}

// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package provider

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// TxRequest is a contract call transaction to send.
type TxRequest struct {
	To       common.Address
	Data     []byte
	Gas      uint64
	GasPrice *big.Int
}

// Transactor sends transactions from the account of a handle.
type Transactor interface {
	From() common.Address
	Send(ctx context.Context, request TxRequest) (hash common.Hash, err error)
}

// walletTransactor lets the wallet or node behind the
// provider sign transactions, using eth_sendTransaction.
type walletTransactor struct {
	client *rpc.Client
	from   common.Address
}

func (w *walletTransactor) From() common.Address { return w.from }

func (w *walletTransactor) Send(ctx context.Context, request TxRequest) (
	hash common.Hash, err error) {
	args := map[string]interface{}{
		"from": w.from,
		"to":   request.To,
		"data": hexutil.Bytes(request.Data),
	}
	if request.Gas != 0 {
		args["gas"] = hexutil.Uint64(request.Gas)
	}
	if request.GasPrice != nil {
		args["gasPrice"] = (*hexutil.Big)(request.GasPrice)
	}

	err = w.client.CallContext(ctx, &hash, "eth_sendTransaction", args)
	if err != nil {
		return hash, err
	}
	return hash, nil
}

// keyedTransactor signs transactions locally with a private key
// and sends them with eth_sendRawTransaction.
type keyedTransactor struct {
	client *ethclient.Client
	key    *ecdsa.PrivateKey
	from   common.Address

	chainIDMutex sync.Mutex
	chainID      *big.Int
}

func (k *keyedTransactor) From() common.Address { return k.from }

func (k *keyedTransactor) Send(ctx context.Context, request TxRequest) (
	hash common.Hash, err error) {
	chainID, err := k.getChainID(ctx)
	if err != nil {
		return hash, fmt.Errorf("getting chain id: %w", err)
	}

	nonce, err := k.client.PendingNonceAt(ctx, k.from)
	if err != nil {
		return hash, fmt.Errorf("getting nonce: %w", err)
	}

	to := request.To
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Gas:      request.Gas,
		GasPrice: request.GasPrice,
		Data:     request.Data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), k.key)
	if err != nil {
		return hash, fmt.Errorf("signing transaction: %w", err)
	}

	err = k.client.SendTransaction(ctx, signed)
	if err != nil {
		return hash, err
	}
	return signed.Hash(), nil
}

func (k *keyedTransactor) getChainID(ctx context.Context) (chainID *big.Int, err error) {
	k.chainIDMutex.Lock()
	defer k.chainIDMutex.Unlock()

	if k.chainID == nil {
		k.chainID, err = k.client.ChainID(ctx)
		if err != nil {
			return nil, err
		}
	}
	return k.chainID, nil
}

// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package vote

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
)

// ErrFixedCost is returned by a fixed cost policy without gas or gas price.
var ErrFixedCost = errors.New("fixed cost requires gas and gas price")

// CostPolicy computes the gas and gas price of a vote transaction.
type CostPolicy interface {
	Cost(ctx context.Context, estimator Estimator, msg ethereum.CallMsg) (
		gas uint64, gasPrice *big.Int, err error)
	String() string
}

// Estimator estimates transaction costs.
type Estimator interface {
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (gas uint64, err error)
	SuggestGasPrice(ctx context.Context) (gasPrice *big.Int, err error)
}

// DynamicCost estimates the gas of each transaction and uses the gas
// price suggested by the node.
type DynamicCost struct{}

// Cost implements CostPolicy.
func (DynamicCost) Cost(ctx context.Context, estimator Estimator, msg ethereum.CallMsg) (
	gas uint64, gasPrice *big.Int, err error) {
	gas, err = estimator.EstimateGas(ctx, msg)
	if err != nil {
		return 0, nil, fmt.Errorf("estimating gas: %w", err)
	}

	gasPrice, err = estimator.SuggestGasPrice(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("suggesting gas price: %w", err)
	}

	return gas, gasPrice, nil
}

func (DynamicCost) String() string { return "dynamic" }

// FixedCost uses a fixed gas ceiling and gas price for every transaction.
type FixedCost struct {
	Gas      uint64
	GasPrice *big.Int
}

// Cost implements CostPolicy.
func (f FixedCost) Cost(context.Context, Estimator, ethereum.CallMsg) (
	gas uint64, gasPrice *big.Int, err error) {
	if f.Gas == 0 || f.GasPrice == nil || f.GasPrice.Sign() <= 0 {
		return 0, nil, ErrFixedCost
	}
	return f.Gas, new(big.Int).Set(f.GasPrice), nil
}

func (f FixedCost) String() string {
	return fmt.Sprintf("fixed (%d gas at %s wei)", f.Gas, f.GasPrice)
}

// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package vote

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ChainSafe/tally/internal/log"
	"github.com/ChainSafe/tally/lib/election"
	"github.com/ChainSafe/tally/lib/provider"
	"github.com/ChainSafe/tally/lib/state"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "vote"))

const defaultReceiptInterval = time.Second

var (
	// ErrTransaction is wrapped by every vote lifecycle failure.
	ErrTransaction = errors.New("vote transaction failed")
	// ErrNoSelection is returned when submitting without a selected candidate.
	ErrNoSelection = errors.New("no candidate selected")
)

// Chain is the ledger access needed to price and track a transaction.
type Chain interface {
	Estimator
	TransactionReceipt(ctx context.Context, hash common.Hash) (receipt *types.Receipt, err error)
	BlockNumber(ctx context.Context) (number uint64, err error)
}

// Holder is the session state a submission reports to.
type Holder interface {
	BeginVote(candidateID uint64, status string) (err error)
	UpdatePending(pending state.PendingTransaction)
	SettleVote()
	FailVote(alert state.Alert)
}

// Config is the submitter configuration.
type Config struct {
	Contract common.Address
	// Cost defaults to DynamicCost.
	Cost CostPolicy
	// Confirmations is the number of blocks, including the one of the
	// transaction, after which a confirmed transaction is settled.
	Confirmations   uint64
	ReceiptInterval time.Duration
	LogLvl          log.Level
}

// Submitter submits vote transactions and tracks them until they
// settle or fail.
type Submitter struct {
	chain           Chain
	transactor      provider.Transactor
	holder          Holder
	contract        common.Address
	cost            CostPolicy
	confirmations   uint64
	receiptInterval time.Duration
	outcomesCounter *prometheus.CounterVec
}

// New creates a vote submitter.
func New(chain Chain, transactor provider.Transactor, holder Holder, cfg Config) *Submitter {
	logger.Patch(log.SetLevel(cfg.LogLvl))

	cost := cfg.Cost
	if cost == nil {
		cost = DynamicCost{}
	}

	confirmations := cfg.Confirmations
	if confirmations == 0 {
		confirmations = 1
	}

	receiptInterval := cfg.ReceiptInterval
	if receiptInterval <= 0 {
		receiptInterval = defaultReceiptInterval
	}

	return &Submitter{
		chain:           chain,
		transactor:      transactor,
		holder:          holder,
		contract:        cfg.Contract,
		cost:            cost,
		confirmations:   confirmations,
		receiptInterval: receiptInterval,
		outcomesCounter: outcomesCounter,
	}
}

// Outcome is the result of a submission.
type Outcome struct {
	Status Status
	// Transitions lists every status the submission went through,
	// starting with Idle.
	Transitions []Status
	Hash        common.Hash
	Block       uint64
	// Err is the failure reason when Status is Failed.
	Err error
}

// Submit votes for the candidate given and blocks until the transaction
// settles or fails. The error returned is only set when the vote is
// rejected before entering the lifecycle, for example with
// ErrNoSelection or state.ErrBusy; lifecycle failures are reported
// in the outcome and in the holder alert.
func (s *Submitter) Submit(ctx context.Context, candidateID uint64) (
	outcome Outcome, err error) {
	outcomes, err := s.Begin(ctx, candidateID)
	if err != nil {
		return outcome, err
	}
	return <-outcomes, nil
}

// Begin marks the holder busy with a vote for the candidate given and
// tracks the transaction in a goroutine. The outcome is sent on the
// channel returned once the transaction settles or fails.
func (s *Submitter) Begin(ctx context.Context, candidateID uint64) (
	outcomes <-chan Outcome, err error) {
	if candidateID == 0 {
		return nil, ErrNoSelection
	}

	err = s.holder.BeginVote(candidateID, Estimating.String())
	if err != nil {
		return nil, err
	}

	tracker := &tracker{
		holder:  s.holder,
		pending: state.PendingTransaction{CandidateID: candidateID},
		outcome: Outcome{
			Status:      Idle,
			Transitions: []Status{Idle},
		},
	}

	results := make(chan Outcome, 1)
	go func() {
		err := s.run(ctx, tracker, candidateID)
		if err != nil {
			tracker.fail(err)
		}
		s.outcomesCounter.WithLabelValues(tracker.outcome.Status.String()).Inc()
		results <- tracker.outcome
	}()

	return results, nil
}

func (s *Submitter) run(ctx context.Context, tracker *tracker, candidateID uint64) error {
	tracker.transition(Estimating)

	data, err := election.PackVote(candidateID)
	if err != nil {
		return fmt.Errorf("%w: packing vote: %w", ErrTransaction, err)
	}

	msg := ethereum.CallMsg{
		From: s.transactor.From(),
		To:   &s.contract,
		Data: data,
	}
	gas, gasPrice, err := s.cost.Cost(ctx, s.chain, msg)
	if err != nil {
		return fmt.Errorf("%w: %s cost: %w", ErrTransaction, s.cost, err)
	}
	tracker.pending.Gas = gas
	tracker.pending.GasPrice = gasPrice

	hash, err := s.transactor.Send(ctx, provider.TxRequest{
		To:       s.contract,
		Data:     data,
		Gas:      gas,
		GasPrice: gasPrice,
	})
	if err != nil {
		return fmt.Errorf("%w: sending transaction: %w", ErrTransaction, err)
	}
	tracker.pending.Hash = hash
	tracker.outcome.Hash = hash
	tracker.transition(Submitted)
	logger.Infof("vote for candidate %d submitted in transaction %s", candidateID, hash.Hex())

	receipt, err := s.waitReceipt(ctx, hash)
	if err != nil {
		return err
	}

	block := receipt.BlockNumber.Uint64()
	tracker.pending.Block = block
	tracker.outcome.Block = block

	if receipt.Status != types.ReceiptStatusSuccessful {
		if receipt.GasUsed >= gas {
			return fmt.Errorf("%w: transaction %s ran out of gas in block %d (gas limit %d)",
				ErrTransaction, hash.Hex(), block, gas)
		}
		return fmt.Errorf("%w: transaction %s reverted in block %d",
			ErrTransaction, hash.Hex(), block)
	}

	tracker.transition(Confirmed)
	logger.Infof("vote transaction %s confirmed in block %d", hash.Hex(), block)

	err = s.waitConfirmations(ctx, block)
	if err != nil {
		return err
	}

	tracker.settle()
	logger.Infof("vote transaction %s settled after %d confirmations", hash.Hex(), s.confirmations)
	return nil
}

func (s *Submitter) waitReceipt(ctx context.Context, hash common.Hash) (
	receipt *types.Receipt, err error) {
	ticker := time.NewTicker(s.receiptInterval)
	defer ticker.Stop()

	for {
		receipt, err = s.chain.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			return receipt, nil
		case !errors.Is(err, ethereum.NotFound):
			return nil, fmt.Errorf("%w: reading receipt of %s: %w", ErrTransaction, hash.Hex(), err)
		}

		logger.Tracef("receipt of %s not available yet", hash.Hex())

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: waiting for receipt of %s: %w", ErrTransaction, hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

func (s *Submitter) waitConfirmations(ctx context.Context, block uint64) error {
	target := block + s.confirmations - 1

	ticker := time.NewTicker(s.receiptInterval)
	defer ticker.Stop()

	for {
		head, err := s.chain.BlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("%w: reading latest block number: %w", ErrTransaction, err)
		}
		if head >= target {
			return nil
		}

		logger.Debugf("block %d has %d of %d confirmations", block, head-block+1, s.confirmations)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: waiting for block %d: %w", ErrTransaction, target, ctx.Err())
		case <-ticker.C:
		}
	}
}

// tracker records the lifecycle of one submission and mirrors it
// into the holder.
type tracker struct {
	holder  Holder
	pending state.PendingTransaction
	outcome Outcome
}

func (t *tracker) transition(status Status) {
	t.outcome.Status = status
	t.outcome.Transitions = append(t.outcome.Transitions, status)
	t.pending.Status = status.String()
	pending := t.pending
	if pending.GasPrice != nil {
		pending.GasPrice = new(big.Int).Set(pending.GasPrice)
	}
	t.holder.UpdatePending(pending)
}

func (t *tracker) settle() {
	t.outcome.Status = Settled
	t.outcome.Transitions = append(t.outcome.Transitions, Settled)
	t.holder.SettleVote()
}

func (t *tracker) fail(err error) {
	t.outcome.Status = Failed
	t.outcome.Transitions = append(t.outcome.Transitions, Failed)
	t.outcome.Err = err
	logger.Errorf("vote for candidate %d failed: %s", t.pending.CandidateID, err)
	t.holder.FailVote(state.Alert{
		Kind:        state.AlertTransaction,
		Message:     "Vote failed",
		Description: err.Error(),
	})
}

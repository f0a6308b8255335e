// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package statesync

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ChainSafe/tally/internal/log"
	"github.com/ChainSafe/tally/lib/election"
	"github.com/ethereum/go-ethereum/common"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "statesync"))

// MaxCandidates is the largest roster the synchronizer loads.
const MaxCandidates = 10000

const defaultBatchSize = 100

var (
	// ErrLedgerRead is wrapped by every error of Load.
	ErrLedgerRead = errors.New("ledger read failed")
	// ErrTooManyCandidates is returned when the candidate count
	// exceeds MaxCandidates.
	ErrTooManyCandidates = errors.New("too many candidates")
	// ErrCandidateMismatch is returned when the contract returns a
	// candidate with another id than the one requested.
	ErrCandidateMismatch = errors.New("candidate id mismatch")
)

// Contract reads the election contract at a given block.
type Contract interface {
	CandidatesCount(ctx context.Context, block *big.Int) (count uint64, err error)
	Candidates(ctx context.Context, block *big.Int, ids []uint64) (candidates []election.Candidate, err error)
	Voted(ctx context.Context, block *big.Int, account common.Address) (voted bool, err error)
}

// BlockReader reads the latest block number.
type BlockReader interface {
	BlockNumber(ctx context.Context) (number uint64, err error)
}

// Snapshot is the election state read at a single block.
type Snapshot struct {
	Roster []election.Candidate
	Voted  bool
	// Block is the block number all reads were made at.
	Block uint64
}

// Config is the synchronizer configuration.
type Config struct {
	BatchSize int
	LogLvl    log.Level
}

// Synchronizer loads the initial election state from the ledger.
type Synchronizer struct {
	contract  Contract
	blocks    BlockReader
	batchSize int
}

// New creates a synchronizer.
func New(contract Contract, blocks BlockReader, cfg Config) *Synchronizer {
	logger.Patch(log.SetLevel(cfg.LogLvl))

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &Synchronizer{
		contract:  contract,
		blocks:    blocks,
		batchSize: batchSize,
	}
}

// Load reads the candidate count, every candidate in ascending id
// order and the voted flag of the account given, all at the latest
// block. Any failed read fails the whole load and no partial roster
// is returned.
func (s *Synchronizer) Load(ctx context.Context, account common.Address) (
	snapshot Snapshot, err error) {
	head, err := s.blocks.BlockNumber(ctx)
	if err != nil {
		return snapshot, fmt.Errorf("%w: reading latest block number: %w", ErrLedgerRead, err)
	}
	block := new(big.Int).SetUint64(head)

	count, err := s.contract.CandidatesCount(ctx, block)
	if err != nil {
		return snapshot, fmt.Errorf("%w: reading candidates count: %w", ErrLedgerRead, err)
	}

	if count > MaxCandidates {
		return snapshot, fmt.Errorf("%w: %w: %d exceeds %d",
			ErrLedgerRead, ErrTooManyCandidates, count, MaxCandidates)
	}

	logger.Debugf("reading %d candidates at block %d", count, head)

	roster, err := s.readRoster(ctx, block, count)
	if err != nil {
		return snapshot, err
	}

	voted, err := s.contract.Voted(ctx, block, account)
	if err != nil {
		return snapshot, fmt.Errorf("%w: reading voted flag of %s: %w", ErrLedgerRead, account.Hex(), err)
	}

	logger.Infof("loaded %d candidates at block %d, account %s voted: %t",
		len(roster), head, account.Hex(), voted)

	return Snapshot{
		Roster: roster,
		Voted:  voted,
		Block:  head,
	}, nil
}

func (s *Synchronizer) readRoster(ctx context.Context, block *big.Int, count uint64) (
	roster []election.Candidate, err error) {
	roster = make([]election.Candidate, 0, count)

	for first := uint64(1); first <= count; first += uint64(s.batchSize) {
		last := first + uint64(s.batchSize) - 1
		if last > count {
			last = count
		}

		ids := make([]uint64, 0, last-first+1)
		for id := first; id <= last; id++ {
			ids = append(ids, id)
		}

		candidates, err := s.contract.Candidates(ctx, block, ids)
		if err != nil {
			return nil, fmt.Errorf("%w: reading candidates %d to %d: %w", ErrLedgerRead, first, last, err)
		}

		if len(candidates) != len(ids) {
			return nil, fmt.Errorf("%w: expected %d candidates but got %d",
				ErrLedgerRead, len(ids), len(candidates))
		}

		for i, candidate := range candidates {
			if candidate.ID != ids[i] {
				return nil, fmt.Errorf("%w: %w: requested %d but got %d",
					ErrLedgerRead, ErrCandidateMismatch, ids[i], candidate.ID)
			}
		}

		roster = append(roster, candidates...)
	}

	return roster, nil
}

// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	// ErrOutOfRange is returned when a number read from the contract
	// does not fit in 64 bits.
	ErrOutOfRange = errors.New("number out of range")
	// ErrNotVotedEvent is returned when a log is not a voted event.
	ErrNotVotedEvent = errors.New("log is not a voted event")
)

// BatchCaller sends JSON-RPC batch requests.
type BatchCaller interface {
	BatchCallContext(ctx context.Context, b []rpc.BatchElem) error
}

// Contract is a read binding to a deployed Election contract.
type Contract struct {
	address common.Address
	bound   *bind.BoundContract
	batcher BatchCaller
}

// NewContract binds the Election contract deployed at the address given.
func NewContract(address common.Address, caller bind.ContractCaller, batcher BatchCaller) *Contract {
	return &Contract{
		address: address,
		bound:   bind.NewBoundContract(address, parsedABI, caller, nil, nil),
		batcher: batcher,
	}
}

// Address returns the contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

// CandidatesCount reads the number of candidates at the block given.
// A nil block reads at the latest block.
func (c *Contract) CandidatesCount(ctx context.Context, block *big.Int) (count uint64, err error) {
	var out []interface{}
	err = c.bound.Call(callOpts(ctx, block), &out, MethodCandidatesCount)
	if err != nil {
		return 0, err
	}

	return toUint64(out[0])
}

// Candidate reads the candidate with the given id at the block given.
func (c *Contract) Candidate(ctx context.Context, block *big.Int, id uint64) (
	candidate Candidate, err error) {
	var out []interface{}
	err = c.bound.Call(callOpts(ctx, block), &out, MethodCandidates, new(big.Int).SetUint64(id))
	if err != nil {
		return candidate, err
	}

	return candidateFromOutputs(out)
}

// Voted reads whether the account given has voted, at the block given.
func (c *Contract) Voted(ctx context.Context, block *big.Int, account common.Address) (
	voted bool, err error) {
	var out []interface{}
	err = c.bound.Call(callOpts(ctx, block), &out, MethodVoters, account)
	if err != nil {
		return false, err
	}

	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// Candidates reads the candidates with the ids given at the block given,
// using a single JSON-RPC batch request. The candidates are returned in
// the order of the ids. Any failed element fails the whole read.
func (c *Contract) Candidates(ctx context.Context, block *big.Int, ids []uint64) (
	candidates []Candidate, err error) {
	if len(ids) == 0 {
		return nil, nil
	}

	blockArg := "latest"
	if block != nil {
		blockArg = hexutil.EncodeBig(block)
	}

	results := make([]hexutil.Bytes, len(ids))
	batch := make([]rpc.BatchElem, len(ids))
	for i, id := range ids {
		data, err := parsedABI.Pack(MethodCandidates, new(big.Int).SetUint64(id))
		if err != nil {
			return nil, fmt.Errorf("packing call for candidate %d: %w", id, err)
		}

		batch[i] = rpc.BatchElem{
			Method: "eth_call",
			Args: []interface{}{
				map[string]interface{}{
					"to":   c.address,
					"data": hexutil.Bytes(data),
				},
				blockArg,
			},
			Result: &results[i],
		}
	}

	err = c.batcher.BatchCallContext(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("sending batch: %w", err)
	}

	candidates = make([]Candidate, len(ids))
	for i, element := range batch {
		if element.Error != nil {
			return nil, fmt.Errorf("reading candidate %d: %w", ids[i], element.Error)
		}

		if len(results[i]) == 0 {
			return nil, fmt.Errorf("reading candidate %d: %w", ids[i], bind.ErrNoCode)
		}

		out, err := parsedABI.Unpack(MethodCandidates, results[i])
		if err != nil {
			return nil, fmt.Errorf("decoding candidate %d: %w", ids[i], err)
		}

		candidates[i], err = candidateFromOutputs(out)
		if err != nil {
			return nil, fmt.Errorf("decoding candidate %d: %w", ids[i], err)
		}
	}

	return candidates, nil
}

// PackVote encodes the call data of a vote for the candidate given.
func PackVote(candidateID uint64) (data []byte, err error) {
	return parsedABI.Pack(MethodVote, new(big.Int).SetUint64(candidateID))
}

// VotedTopic returns the topic identifying voted events.
func VotedTopic() common.Hash {
	return parsedABI.Events[EventVoted].ID
}

// VotedQuery returns the log filter query for voted events of the
// contract between the blocks given. A nil to block is unbounded.
func (c *Contract) VotedQuery(from, to *big.Int) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		FromBlock: from,
		ToBlock:   to,
		Addresses: []common.Address{c.address},
		Topics:    [][]common.Hash{{VotedTopic()}},
	}
}

// ParseVoted decodes a voted event from a contract log.
func ParseVoted(log types.Log) (event VotedEvent, err error) {
	if len(log.Topics) != 2 || log.Topics[0] != VotedTopic() {
		return event, fmt.Errorf("%w: log %d of transaction %s",
			ErrNotVotedEvent, log.Index, log.TxHash.Hex())
	}

	candidateID := new(big.Int).SetBytes(log.Topics[1].Bytes())
	if !candidateID.IsUint64() {
		return event, fmt.Errorf("%w: candidate id %s", ErrOutOfRange, candidateID)
	}

	return VotedEvent{
		CandidateID: candidateID.Uint64(),
		BlockNumber: log.BlockNumber,
		LogIndex:    log.Index,
		TxHash:      log.TxHash,
	}, nil
}

func callOpts(ctx context.Context, block *big.Int) *bind.CallOpts {
	return &bind.CallOpts{
		Context:     ctx,
		BlockNumber: block,
	}
}

func candidateFromOutputs(out []interface{}) (candidate Candidate, err error) {
	const expectedOutputs = 3
	if len(out) != expectedOutputs {
		return candidate, fmt.Errorf("expected %d outputs but got %d", expectedOutputs, len(out))
	}

	candidate.ID, err = toUint64(out[0])
	if err != nil {
		return candidate, fmt.Errorf("id: %w", err)
	}

	candidate.Name = *abi.ConvertType(out[1], new(string)).(*string)

	candidate.VoteCount, err = toUint64(out[2])
	if err != nil {
		return candidate, fmt.Errorf("vote count: %w", err)
	}

	return candidate, nil
}

func toUint64(output interface{}) (n uint64, err error) {
	value := *abi.ConvertType(output, new(*big.Int)).(**big.Int)
	if value == nil || value.Sign() < 0 || !value.IsUint64() {
		return 0, fmt.Errorf("%w: %v", ErrOutOfRange, value)
	}
	return value.Uint64(), nil
}

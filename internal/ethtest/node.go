// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package ethtest implements an in-process fake Ethereum node serving
// the JSON-RPC methods used by the tally client, with a deployed
// Election contract.
package ethtest

import (
	"encoding/binary"
	"errors"
	"math/big"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ChainSafe/tally/lib/election"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	// ErrReverted is the error of calls and estimations reverting.
	ErrReverted = errors.New("execution reverted")
	// ErrUnknownAccount is returned when sending a transaction
	// from an account not managed by the node wallet.
	ErrUnknownAccount = errors.New("unknown account")
)

// DefaultContract is the default address of the election contract.
var DefaultContract = common.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")

const defaultVoteGas = 50000

type candidate struct {
	name      string
	voteCount uint64
}

type transaction struct {
	hash     common.Hash
	from     common.Address
	to       *common.Address
	gas      uint64
	gasPrice *big.Int
	data     []byte
}

// Node is a fake Ethereum node. It is safe for concurrent use.
type Node struct {
	mutex sync.Mutex

	// chain
	networkID   uint64
	chainID     *big.Int
	genesisHash common.Hash
	headers     []*types.Header
	autoMine    bool
	voteGas     uint64
	gasPrice    *big.Int

	// wallet
	accounts []common.Address
	nonces   map[common.Address]uint64

	// contract
	contract   common.Address
	candidates []candidate
	voters     map[common.Address]bool

	// transactions
	pending  []transaction
	receipts map[common.Hash]*types.Receipt
	logs     []types.Log
	logsFeed event.Feed

	// test hooks
	methodErrors    map[string]error
	contractErrors  map[string]error
	candidateErrors map[uint64]error
	callBlocks      []string

	server *rpc.Server
}

// New creates a fake node serving over an in-process RPC server,
// which is stopped at the end of the test.
func New(t testing.TB, options ...Option) *Node {
	t.Helper()

	n := &Node{
		networkID:       5777,
		chainID:         big.NewInt(1337),
		autoMine:        true,
		voteGas:         defaultVoteGas,
		gasPrice:        big.NewInt(20000000000),
		nonces:          make(map[common.Address]uint64),
		contract:        DefaultContract,
		voters:          make(map[common.Address]bool),
		receipts:        make(map[common.Hash]*types.Receipt),
		methodErrors:    make(map[string]error),
		contractErrors:  make(map[string]error),
		candidateErrors: make(map[uint64]error),
	}

	for _, option := range options {
		option(n)
	}

	n.headers = []*types.Header{newHeader(common.Hash{}, 0)}
	if n.genesisHash == (common.Hash{}) {
		n.genesisHash = n.headers[0].Hash()
	}

	n.server = rpc.NewServer()
	err := n.server.RegisterName("eth", &ethAPI{node: n})
	if err != nil {
		t.Fatal(err)
	}
	err = n.server.RegisterName("net", &netAPI{node: n})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(n.server.Stop)

	return n
}

// Server returns the RPC server of the node.
func (n *Node) Server() *rpc.Server {
	return n.server
}

// Dial returns an in-process RPC client connected to the node,
// closed at the end of the test.
func (n *Node) Dial(t testing.TB) *rpc.Client {
	t.Helper()
	client := rpc.DialInProc(n.server)
	t.Cleanup(client.Close)
	return client
}

// ServeHTTP serves the node over HTTP until the end of the test
// and returns its URL.
func (n *Node) ServeHTTP(t testing.TB) (url string) {
	t.Helper()
	server := httptest.NewServer(n.server)
	t.Cleanup(server.Close)
	return server.URL
}

// ServeWebsocket serves the node over websocket until the end of
// the test and returns its URL.
func (n *Node) ServeWebsocket(t testing.TB) (url string) {
	t.Helper()
	server := httptest.NewServer(n.server.WebsocketHandler([]string{"*"}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

// ChainID returns the chain id of the node.
func (n *Node) ChainID() *big.Int {
	return new(big.Int).Set(n.chainID)
}

// Contract returns the election contract address.
func (n *Node) Contract() common.Address {
	return n.contract
}

// FailMethod makes the JSON-RPC method given, such as eth_blockNumber,
// fail with err. A nil err removes the failure.
func (n *Node) FailMethod(method string, err error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	setOrDelete(n.methodErrors, method, err)
}

// FailContractCall makes calls to the contract method given,
// such as candidatesCount, fail with err.
func (n *Node) FailContractCall(method string, err error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	setOrDelete(n.contractErrors, method, err)
}

// FailCandidate makes calls reading the candidate given fail with err.
func (n *Node) FailCandidate(id uint64, err error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	setOrDelete(n.candidateErrors, id, err)
}

func setOrDelete[K comparable](m map[K]error, key K, err error) {
	if err == nil {
		delete(m, key)
		return
	}
	m[key] = err
}

// CallBlocks returns the block arguments of the eth_call requests received.
func (n *Node) CallBlocks() []string {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	blocks := make([]string, len(n.callBlocks))
	copy(blocks, n.callBlocks)
	return blocks
}

// Head returns the number of the latest block.
func (n *Node) Head() uint64 {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.head()
}

func (n *Node) head() uint64 {
	return uint64(len(n.headers) - 1)
}

// VoteCount returns the vote count of the candidate given.
func (n *Node) VoteCount(id uint64) uint64 {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if id == 0 || id > uint64(len(n.candidates)) {
		return 0
	}
	return n.candidates[id-1].voteCount
}

// HasVoted returns whether the account given has voted.
func (n *Node) HasVoted(account common.Address) bool {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.voters[account]
}

// SetVoted marks the account given as having voted.
func (n *Node) SetVoted(account common.Address) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.voters[account] = true
}

// Mine mines count empty blocks, including pending transactions
// in the first one.
func (n *Node) Mine(count int) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	for i := 0; i < count; i++ {
		n.mine()
	}
}

// CastVote records a vote of the voter given in a new block, as if it
// was sent by another client. It returns the error reverting the vote.
func (n *Node) CastVote(voter common.Address, candidateID uint64) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	data, err := election.PackVote(candidateID)
	if err != nil {
		return err
	}

	err = n.checkVote(voter, data)
	if err != nil {
		return err
	}

	to := n.contract
	n.pending = append(n.pending, transaction{
		hash:     txHash(voter, n.nonces[voter], data),
		from:     voter,
		to:       &to,
		gas:      n.voteGas,
		gasPrice: n.gasPrice,
		data:     data,
	})
	n.nonces[voter]++
	n.mine()
	return nil
}

// EmitVoted emits a voted event for the candidate id given in a new
// block, without changing the contract state.
func (n *Node) EmitVoted(candidateID uint64) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	n.mine()
	header := n.headers[len(n.headers)-1]
	log := n.newVotedLog(header, common.Hash{}, candidateID)
	n.logs = append(n.logs, log)
	n.logsFeed.Send(log)
}

func (n *Node) mine() {
	parent := n.headers[len(n.headers)-1]
	header := newHeader(parent.Hash(), n.head()+1)
	n.headers = append(n.headers, header)

	pending := n.pending
	n.pending = nil
	for i, tx := range pending {
		receipt := n.execute(header, uint(i), tx)
		n.receipts[tx.hash] = receipt
	}
}

func (n *Node) execute(header *types.Header, index uint, tx transaction) (receipt *types.Receipt) {
	receipt = &types.Receipt{
		Type:              types.LegacyTxType,
		Status:            types.ReceiptStatusFailed,
		CumulativeGasUsed: tx.gas,
		GasUsed:           tx.gas,
		Logs:              []*types.Log{},
		TxHash:            tx.hash,
		BlockHash:         header.Hash(),
		BlockNumber:       new(big.Int).Set(header.Number),
		TransactionIndex:  index,
	}

	err := n.checkVote(tx.from, tx.data)
	if err != nil || tx.to == nil || *tx.to != n.contract || tx.gas < n.voteGas {
		receipt.Bloom = types.CreateBloom(types.Receipts{receipt})
		return receipt
	}

	candidateID := decodeVote(tx.data)
	n.candidates[candidateID-1].voteCount++
	n.voters[tx.from] = true

	log := n.newVotedLog(header, tx.hash, candidateID)
	log.TxIndex = index
	n.logs = append(n.logs, log)
	n.logsFeed.Send(log)

	receipt.Status = types.ReceiptStatusSuccessful
	receipt.GasUsed = n.voteGas
	receipt.CumulativeGasUsed = n.voteGas
	receipt.Logs = []*types.Log{&log}
	receipt.Bloom = types.CreateBloom(types.Receipts{receipt})
	return receipt
}

func (n *Node) newVotedLog(header *types.Header, txHash common.Hash,
	candidateID uint64) types.Log {
	return types.Log{
		Address: n.contract,
		Topics: []common.Hash{
			election.VotedTopic(),
			common.BigToHash(new(big.Int).SetUint64(candidateID)),
		},
		Data:        []byte{},
		BlockNumber: header.Number.Uint64(),
		TxHash:      txHash,
		BlockHash:   header.Hash(),
		Index:       uint(len(n.logs)),
	}
}

// checkVote returns ErrReverted if the vote data given would revert
// when sent by the voter given.
func (n *Node) checkVote(voter common.Address, data []byte) error {
	candidateID := decodeVote(data)
	switch {
	case candidateID == 0, candidateID > uint64(len(n.candidates)):
		return ErrReverted
	case n.voters[voter]:
		return ErrReverted
	}
	return nil
}

// decodeVote returns the candidate id of vote call data,
// or 0 if the data is not a vote call.
func decodeVote(data []byte) (candidateID uint64) {
	method, ok := election.ABI().Methods[election.MethodVote]
	if !ok || len(data) < 4 || string(data[:4]) != string(method.ID) {
		return 0
	}

	args, err := method.Inputs.Unpack(data[4:])
	if err != nil || len(args) != 1 {
		return 0
	}

	id, ok := args[0].(*big.Int)
	if !ok || !id.IsUint64() {
		return 0
	}
	return id.Uint64()
}

func newHeader(parent common.Hash, number uint64) *types.Header {
	return &types.Header{
		ParentHash:  parent,
		UncleHash:   types.EmptyUncleHash,
		Root:        types.EmptyRootHash,
		TxHash:      types.EmptyRootHash,
		ReceiptHash: types.EmptyRootHash,
		Difficulty:  big.NewInt(1),
		Number:      new(big.Int).SetUint64(number),
		GasLimit:    6721975,
		Time:        1600000000 + number,
		Extra:       []byte{},
	}
}

func txHash(from common.Address, nonce uint64, data []byte) common.Hash {
	nonceBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(nonceBytes, nonce)
	return crypto.Keccak256Hash(from.Bytes(), nonceBytes, data)
}

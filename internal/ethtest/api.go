// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package ethtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ChainSafe/tally/lib/election"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

type netAPI struct {
	node *Node
}

// Version returns the network id.
func (api *netAPI) Version() (string, error) {
	n := api.node
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if err := n.methodErrors["net_version"]; err != nil {
		return "", err
	}
	return strconv.FormatUint(n.networkID, 10), nil
}

type ethAPI struct {
	node *Node
}

type callArgs struct {
	From     *common.Address `json:"from"`
	To       *common.Address `json:"to"`
	Gas      *hexutil.Uint64 `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice"`
	Value    *hexutil.Big    `json:"value"`
	Data     *hexutil.Bytes  `json:"data"`
	Input    *hexutil.Bytes  `json:"input"`
}

func (args callArgs) data() []byte {
	switch {
	case args.Input != nil:
		return *args.Input
	case args.Data != nil:
		return *args.Data
	default:
		return nil
	}
}

func (args callArgs) from() common.Address {
	if args.From == nil {
		return common.Address{}
	}
	return *args.From
}

type filterCriteria struct {
	FromBlock *rpc.BlockNumber `json:"fromBlock"`
	ToBlock   *rpc.BlockNumber `json:"toBlock"`
	Addresses []common.Address `json:"address"`
	Topics    [][]common.Hash  `json:"topics"`
}

func (n *Node) methodError(method string) error {
	return n.methodErrors[method]
}

// ChainId returns the chain id.
func (api *ethAPI) ChainId() (*hexutil.Big, error) { //nolint:revive,stylecheck
	n := api.node
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if err := n.methodError("eth_chainId"); err != nil {
		return nil, err
	}
	return (*hexutil.Big)(new(big.Int).Set(n.chainID)), nil
}

// BlockNumber returns the latest block number.
func (api *ethAPI) BlockNumber() (hexutil.Uint64, error) {
	n := api.node
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if err := n.methodError("eth_blockNumber"); err != nil {
		return 0, err
	}
	return hexutil.Uint64(n.head()), nil
}

// GetBlockByNumber returns the header of the block given.
func (api *ethAPI) GetBlockByNumber(number rpc.BlockNumber, _ bool) (
	block map[string]interface{}, err error) {
	n := api.node
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if err := n.methodError("eth_getBlockByNumber"); err != nil {
		return nil, err
	}

	index := n.resolveBlock(number)
	if index > n.head() {
		return nil, nil //nolint:nilnil
	}

	header := n.headers[index]
	encoded, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(encoded, &block)
	if err != nil {
		return nil, err
	}

	if index == 0 {
		block["hash"] = n.genesisHash
	}
	block["transactions"] = []common.Hash{}
	block["uncles"] = []common.Hash{}
	return block, nil
}

func formatBlock(number rpc.BlockNumber) string {
	if number < 0 {
		return "latest"
	}
	return hexutil.EncodeUint64(uint64(number))
}

func (n *Node) resolveBlock(number rpc.BlockNumber) uint64 {
	if number < 0 {
		return n.head()
	}
	return uint64(number)
}

// GetCode returns the code at the address given.
func (api *ethAPI) GetCode(address common.Address, _ rpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	n := api.node
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if err := n.methodError("eth_getCode"); err != nil {
		return nil, err
	}
	if address != n.contract {
		return hexutil.Bytes{}, nil
	}
	return hexutil.Bytes{0x60, 0x80, 0x60, 0x40}, nil
}

// Call executes a read call against the election contract.
func (api *ethAPI) Call(args callArgs, block rpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	n := api.node
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if number, ok := block.Number(); ok {
		n.callBlocks = append(n.callBlocks, formatBlock(number))
	}

	if err := n.methodError("eth_call"); err != nil {
		return nil, err
	}

	if args.To == nil || *args.To != n.contract {
		return hexutil.Bytes{}, nil
	}

	data := args.data()
	if len(data) < 4 {
		return nil, ErrReverted
	}

	contractABI := election.ABI()
	method, err := contractABI.MethodById(data[:4])
	if err != nil {
		return nil, ErrReverted
	}

	if err := n.contractErrors[method.Name]; err != nil {
		return nil, err
	}

	inputs, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, ErrReverted
	}

	switch method.Name {
	case election.MethodCandidatesCount:
		return method.Outputs.Pack(big.NewInt(int64(len(n.candidates))))
	case election.MethodCandidates:
		id := inputs[0].(*big.Int)
		if id.IsUint64() {
			if err := n.candidateErrors[id.Uint64()]; err != nil {
				return nil, err
			}
		}
		if !id.IsUint64() || id.Uint64() == 0 || id.Uint64() > uint64(len(n.candidates)) {
			return method.Outputs.Pack(big.NewInt(0), "", big.NewInt(0))
		}
		c := n.candidates[id.Uint64()-1]
		return method.Outputs.Pack(id, c.name, new(big.Int).SetUint64(c.voteCount))
	case election.MethodVoters:
		voter := inputs[0].(common.Address)
		return method.Outputs.Pack(n.voters[voter])
	case election.MethodVote:
		if err := n.checkVote(args.from(), data); err != nil {
			return nil, err
		}
		return hexutil.Bytes{}, nil
	default:
		return nil, ErrReverted
	}
}

// EstimateGas estimates the gas of a transaction.
func (api *ethAPI) EstimateGas(args callArgs, _ *rpc.BlockNumberOrHash) (hexutil.Uint64, error) {
	n := api.node
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if err := n.methodError("eth_estimateGas"); err != nil {
		return 0, err
	}
	if args.To == nil || *args.To != n.contract {
		return 21000, nil
	}
	if err := n.checkVote(args.from(), args.data()); err != nil {
		return 0, err
	}
	return hexutil.Uint64(n.voteGas), nil
}

// GasPrice returns the suggested gas price.
func (api *ethAPI) GasPrice() (*hexutil.Big, error) {
	n := api.node
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if err := n.methodError("eth_gasPrice"); err != nil {
		return nil, err
	}
	return (*hexutil.Big)(new(big.Int).Set(n.gasPrice)), nil
}

// RequestAccounts returns the wallet accounts after authorization.
func (api *ethAPI) RequestAccounts() ([]common.Address, error) {
	n := api.node
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if err := n.methodError("eth_requestAccounts"); err != nil {
		return nil, err
	}
	return append([]common.Address{}, n.accounts...), nil
}

// Accounts returns the wallet accounts.
func (api *ethAPI) Accounts() ([]common.Address, error) {
	n := api.node
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if err := n.methodError("eth_accounts"); err != nil {
		return nil, err
	}
	return append([]common.Address{}, n.accounts...), nil
}

// GetTransactionCount returns the next nonce of the account given.
func (api *ethAPI) GetTransactionCount(address common.Address, _ rpc.BlockNumberOrHash) (
	hexutil.Uint64, error) {
	n := api.node
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if err := n.methodError("eth_getTransactionCount"); err != nil {
		return 0, err
	}
	return hexutil.Uint64(n.nonces[address]), nil
}

// SendTransaction signs a transaction with the wallet and sends it.
func (api *ethAPI) SendTransaction(args callArgs) (common.Hash, error) {
	n := api.node
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if err := n.methodError("eth_sendTransaction"); err != nil {
		return common.Hash{}, err
	}

	from := args.from()
	if !n.managed(from) {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrUnknownAccount, from.Hex())
	}

	gas := n.voteGas
	if args.Gas != nil {
		gas = uint64(*args.Gas)
	}
	gasPrice := n.gasPrice
	if args.GasPrice != nil {
		gasPrice = args.GasPrice.ToInt()
	}

	data := args.data()
	tx := transaction{
		hash:     txHash(from, n.nonces[from], data),
		from:     from,
		to:       args.To,
		gas:      gas,
		gasPrice: gasPrice,
		data:     data,
	}
	n.nonces[from]++
	n.submit(tx)
	return tx.hash, nil
}

// SendRawTransaction sends a signed transaction.
func (api *ethAPI) SendRawTransaction(input hexutil.Bytes) (common.Hash, error) {
	n := api.node
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if err := n.methodError("eth_sendRawTransaction"); err != nil {
		return common.Hash{}, err
	}

	signed := new(types.Transaction)
	err := signed.UnmarshalBinary(input)
	if err != nil {
		return common.Hash{}, err
	}

	from, err := types.Sender(types.LatestSignerForChainID(n.chainID), signed)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid sender: %w", err)
	}

	if signed.Nonce() != n.nonces[from] {
		return common.Hash{}, fmt.Errorf("invalid nonce %d, expected %d",
			signed.Nonce(), n.nonces[from])
	}
	n.nonces[from]++

	n.submit(transaction{
		hash:     signed.Hash(),
		from:     from,
		to:       signed.To(),
		gas:      signed.Gas(),
		gasPrice: signed.GasPrice(),
		data:     signed.Data(),
	})
	return signed.Hash(), nil
}

func (n *Node) managed(account common.Address) bool {
	for _, managed := range n.accounts {
		if managed == account {
			return true
		}
	}
	return false
}

func (n *Node) submit(tx transaction) {
	n.pending = append(n.pending, tx)
	if n.autoMine {
		n.mine()
	}
}

// GetTransactionReceipt returns the receipt of a mined transaction,
// or nil if the transaction is pending or unknown.
func (api *ethAPI) GetTransactionReceipt(hash common.Hash) (*types.Receipt, error) {
	n := api.node
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if err := n.methodError("eth_getTransactionReceipt"); err != nil {
		return nil, err
	}
	return n.receipts[hash], nil
}

// GetLogs returns the logs matching the criteria given.
func (api *ethAPI) GetLogs(criteria filterCriteria) ([]types.Log, error) {
	n := api.node
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if err := n.methodError("eth_getLogs"); err != nil {
		return nil, err
	}

	from := uint64(0)
	if criteria.FromBlock != nil {
		from = n.resolveBlock(*criteria.FromBlock)
	}
	to := n.head()
	if criteria.ToBlock != nil {
		to = n.resolveBlock(*criteria.ToBlock)
	}

	logs := []types.Log{}
	for _, log := range n.logs {
		if log.BlockNumber < from || log.BlockNumber > to || !criteria.matches(log) {
			continue
		}
		logs = append(logs, log)
	}
	return logs, nil
}

// Logs subscribes to the logs matching the criteria given.
func (api *ethAPI) Logs(ctx context.Context, criteria filterCriteria) (*rpc.Subscription, error) {
	n := api.node
	n.mutex.Lock()
	err := n.methodError("eth_subscribe")
	n.mutex.Unlock()
	if err != nil {
		return nil, err
	}

	notifier, supported := rpc.NotifierFromContext(ctx)
	if !supported {
		return nil, rpc.ErrNotificationsUnsupported
	}

	rpcSub := notifier.CreateSubscription()
	logs := make(chan types.Log, 128)
	feedSub := n.logsFeed.Subscribe(logs)

	go func() {
		defer feedSub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				if criteria.matches(log) {
					_ = notifier.Notify(rpcSub.ID, log)
				}
			case <-rpcSub.Err():
				return
			case <-feedSub.Err():
				return
			}
		}
	}()

	return rpcSub, nil
}

func (criteria filterCriteria) matches(log types.Log) bool {
	if len(criteria.Addresses) > 0 {
		found := false
		for _, address := range criteria.Addresses {
			if address == log.Address {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(criteria.Topics) > len(log.Topics) {
		return false
	}
	for i, alternatives := range criteria.Topics {
		if len(alternatives) == 0 {
			continue
		}
		found := false
		for _, topic := range alternatives {
			if bytes.Equal(topic.Bytes(), log.Topics[i].Bytes()) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package tally

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ChainSafe/tally/internal/ethtest"
	"github.com/ChainSafe/tally/internal/log"
	"github.com/ChainSafe/tally/lib/election"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var voters = []common.Address{
	common.HexToAddress("0x0000000000000000000000000000000000000001"),
	common.HexToAddress("0x0000000000000000000000000000000000000002"),
	common.HexToAddress("0x0000000000000000000000000000000000000003"),
	common.HexToAddress("0x0000000000000000000000000000000000000004"),
}

func newTestSubscriber(t *testing.T, node *ethtest.Node, push bool) *Subscriber {
	t.Helper()
	client := ethclient.NewClient(node.Dial(t))
	return NewSubscriber(client, Config{
		Contract:     node.Contract(),
		Push:         push,
		PollInterval: 10 * time.Millisecond,
		LogLvl:       log.Critical,
	})
}

type delivered struct {
	candidateID uint64
	block       uint64
}

func receive(t *testing.T, subscription *Subscription, count int) (events []delivered) {
	t.Helper()
	timer := time.NewTimer(5 * time.Second)
	defer timer.Stop()
	for len(events) < count {
		select {
		case votedEvent, ok := <-subscription.Events():
			require.True(t, ok, "events channel closed")
			events = append(events, delivered{
				candidateID: votedEvent.CandidateID,
				block:       votedEvent.BlockNumber,
			})
		case <-timer.C:
			t.Fatalf("timed out after receiving %d of %d events", len(events), count)
		}
	}
	return events
}

func Test_Subscriber_Subscribe(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		push     bool
		from     uint64
		expected []delivered
	}{
		"push from genesis": {
			push:     true,
			from:     0,
			expected: []delivered{{1, 1}, {2, 2}, {1, 3}, {2, 4}},
		},
		"push skips earlier blocks": {
			push:     true,
			from:     2,
			expected: []delivered{{2, 2}, {1, 3}, {2, 4}},
		},
		"push after head": {
			push:     true,
			from:     3,
			expected: []delivered{{1, 3}, {2, 4}},
		},
		"poll from genesis": {
			from:     0,
			expected: []delivered{{1, 1}, {2, 2}, {1, 3}, {2, 4}},
		},
		"poll skips earlier blocks": {
			from:     2,
			expected: []delivered{{2, 2}, {1, 3}, {2, 4}},
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			node := ethtest.New(t, ethtest.WithCandidates("Alice", "Bob"))
			require.NoError(t, node.CastVote(voters[0], 1))
			require.NoError(t, node.CastVote(voters[1], 2))

			subscriber := newTestSubscriber(t, node, testCase.push)
			subscription, err := subscriber.Subscribe(context.Background(), testCase.from)
			require.NoError(t, err)
			defer subscription.Unsubscribe()

			require.NoError(t, node.CastVote(voters[2], 1))
			require.NoError(t, node.CastVote(voters[3], 2))

			events := receive(t, subscription, len(testCase.expected))
			assert.Equal(t, testCase.expected, events)
		})
	}
}

func votedLog(block, candidateID uint64) types.Log {
	return types.Log{
		Topics: []common.Hash{
			election.VotedTopic(),
			common.BigToHash(new(big.Int).SetUint64(candidateID)),
		},
		BlockNumber: block,
	}
}

func Test_Subscriber_Subscribe_pushOverlap(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	const from, head = 3, 5

	var liveErrs <-chan error = make(chan error)
	live := NewMockSubscription(ctrl)
	live.EXPECT().Err().Return(liveErrs).AnyTimes()
	live.EXPECT().Unsubscribe()

	reader := NewMockLogReader(ctrl)
	subscriber := NewSubscriber(reader, Config{
		Contract: common.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3"),
		Push:     true,
		LogLvl:   log.Critical,
	})

	reader.EXPECT().SubscribeFilterLogs(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ ethereum.FilterQuery,
			ch chan<- types.Log) (ethereum.Subscription, error) {
			ch <- votedLog(head, 2)
			ch <- votedLog(head-1, 1)
			ch <- votedLog(head+1, 1)
			return live, nil
		})
	reader.EXPECT().BlockNumber(gomock.Any()).Return(uint64(head), nil)
	reader.EXPECT().FilterLogs(gomock.Any(), subscriber.query(from, head)).
		Return([]types.Log{votedLog(from, 1), votedLog(head, 2)}, nil)

	subscription, err := subscriber.Subscribe(context.Background(), from)
	require.NoError(t, err)
	defer subscription.Unsubscribe()

	events := receive(t, subscription, 3)

	expected := []delivered{{1, from}, {2, head}, {1, head + 1}}
	assert.Equal(t, expected, events)
}

func Test_Subscriber_Subscribe_unknownCandidate(t *testing.T) {
	t.Parallel()

	node := ethtest.New(t, ethtest.WithCandidates("Alice"))
	subscriber := newTestSubscriber(t, node, true)

	subscription, err := subscriber.Subscribe(context.Background(), 1)
	require.NoError(t, err)
	defer subscription.Unsubscribe()

	node.EmitVoted(9)

	events := receive(t, subscription, 1)
	assert.Equal(t, []delivered{{9, 1}}, events)
}

func Test_Subscriber_Subscribe_pushError(t *testing.T) {
	t.Parallel()

	node := ethtest.New(t)
	node.FailMethod("eth_subscribe", errors.New("subscriptions disabled"))
	subscriber := newTestSubscriber(t, node, true)

	subscription, err := subscriber.Subscribe(context.Background(), 0)

	assert.ErrorIs(t, err, ErrEventTransport)
	assert.Nil(t, subscription)
}

func Test_Subscriber_Subscribe_transportError(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		push bool
	}{
		"push backfill": {push: true},
		"poll":          {},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			node := ethtest.New(t, ethtest.WithCandidates("Alice"))
			node.FailMethod("eth_getLogs", errors.New("node failure"))
			subscriber := newTestSubscriber(t, node, testCase.push)

			subscription, err := subscriber.Subscribe(context.Background(), 0)
			require.NoError(t, err)

			select {
			case _, ok := <-subscription.Events():
				assert.False(t, ok)
			case <-time.After(5 * time.Second):
				t.Fatal("events channel not closed")
			}

			err = <-subscription.Err()
			assert.ErrorIs(t, err, ErrEventTransport)
		})
	}
}

func Test_Subscription_Unsubscribe(t *testing.T) {
	t.Parallel()

	for _, push := range []bool{true, false} {
		node := ethtest.New(t, ethtest.WithCandidates("Alice"))
		subscriber := newTestSubscriber(t, node, push)

		subscription, err := subscriber.Subscribe(context.Background(), 0)
		require.NoError(t, err)

		subscription.Unsubscribe()

		_, ok := <-subscription.Events()
		assert.False(t, ok)
		_, ok = <-subscription.Err()
		assert.False(t, ok)
	}
}

func Test_deliver(t *testing.T) {
	t.Parallel()

	node := ethtest.New(t, ethtest.WithCandidates("Alice"))
	require.NoError(t, node.CastVote(voters[0], 1))
	client := ethclient.NewClient(node.Dial(t))
	contract := election.NewContract(node.Contract(), client, nil)
	logs, err := client.FilterLogs(context.Background(), contract.VotedQuery(nil, nil))
	require.NoError(t, err)
	require.Len(t, logs, 1)

	events := make(chan election.VotedEvent, 1)
	quit := make(chan struct{})

	removed := logs[0]
	removed.Removed = true
	assert.True(t, deliver(removed, events, quit))
	assert.Empty(t, events)

	undecodable := logs[0]
	undecodable.Topics = undecodable.Topics[:1]
	assert.True(t, deliver(undecodable, events, quit))
	assert.Empty(t, events)

	assert.True(t, deliver(logs[0], events, quit))
	assert.Equal(t, uint64(1), (<-events).CandidateID)

	close(quit)
	blocked := make(chan election.VotedEvent)
	assert.False(t, deliver(logs[0], blocked, quit))
}

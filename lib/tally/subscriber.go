// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package tally

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ChainSafe/tally/internal/log"
	"github.com/ChainSafe/tally/lib/election"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "tally"))

const (
	defaultPollInterval = 2 * time.Second
	logsBufferSize      = 128
)

// ErrEventTransport is wrapped by every error of a subscription.
var ErrEventTransport = errors.New("event transport failed")

var errSubscriptionClosed = errors.New("subscription closed by the node")

// LogReader reads and subscribes to contract logs.
type LogReader interface {
	BlockNumber(ctx context.Context) (number uint64, err error)
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) (logs []types.Log, err error)
	SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery,
		ch chan<- types.Log) (subscription ethereum.Subscription, err error)
}

// Config is the subscriber configuration.
type Config struct {
	Contract common.Address
	// Push selects the push source, which requires a node
	// supporting log subscriptions. Otherwise logs are polled.
	Push         bool
	PollInterval time.Duration
	LogLvl       log.Level
}

// Subscriber opens voted event subscriptions.
type Subscriber struct {
	reader       LogReader
	contract     common.Address
	push         bool
	pollInterval time.Duration
}

// NewSubscriber creates a subscriber reading logs of the contract configured.
func NewSubscriber(reader LogReader, cfg Config) *Subscriber {
	logger.Patch(log.SetLevel(cfg.LogLvl))

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	return &Subscriber{
		reader:       reader,
		contract:     cfg.Contract,
		push:         cfg.Push,
		pollInterval: pollInterval,
	}
}

// Subscription delivers voted events in the order the node delivers them.
// Its events channel is closed once the subscription ends, after which
// the error channel yields the error ending it, if any.
type Subscription struct {
	events       chan election.VotedEvent
	subscription event.Subscription
}

// Events returns the channel of voted events.
func (s *Subscription) Events() <-chan election.VotedEvent {
	return s.events
}

// Err returns the error channel of the subscription. It is closed
// once the subscription ends.
func (s *Subscription) Err() <-chan error {
	return s.subscription.Err()
}

// Unsubscribe stops the subscription and waits for it to end.
func (s *Subscription) Unsubscribe() {
	s.subscription.Unsubscribe()
}

// Subscribe subscribes to voted events from the block given onward.
func (s *Subscriber) Subscribe(ctx context.Context, from uint64) (
	subscription *Subscription, err error) {
	if s.push {
		return s.subscribePush(ctx, from)
	}
	return s.subscribePoll(from), nil
}

func (s *Subscriber) query(from, to uint64) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{s.contract},
		Topics:    [][]common.Hash{{election.VotedTopic()}},
	}
}

// subscribePush subscribes to live logs, then backfills logs from the
// block given up to the head observed after subscribing. Live logs at
// or below that head are skipped since the backfill covers them.
func (s *Subscriber) subscribePush(ctx context.Context, from uint64) (
	subscription *Subscription, err error) {
	logs := make(chan types.Log, logsBufferSize)
	liveQuery := ethereum.FilterQuery{
		Addresses: []common.Address{s.contract},
		Topics:    [][]common.Hash{{election.VotedTopic()}},
	}

	live, err := s.reader.SubscribeFilterLogs(ctx, liveQuery, logs)
	if err != nil {
		return nil, fmt.Errorf("%w: subscribing to voted logs: %w", ErrEventTransport, err)
	}

	head, err := s.reader.BlockNumber(ctx)
	if err != nil {
		live.Unsubscribe()
		return nil, fmt.Errorf("%w: reading latest block number: %w", ErrEventTransport, err)
	}

	logger.Debugf("subscribed to voted logs, backfilling blocks %d to %d", from, head)

	events := make(chan election.VotedEvent)
	sub := event.NewSubscription(func(quit <-chan struct{}) error {
		defer close(events)
		defer live.Unsubscribe()

		ctx, cancel := quitContext(quit)
		defer cancel()

		if from <= head {
			backfill, err := s.reader.FilterLogs(ctx, s.query(from, head))
			if err != nil {
				return fmt.Errorf("%w: backfilling blocks %d to %d: %w",
					ErrEventTransport, from, head, err)
			}
			for _, voteLog := range backfill {
				if !deliver(voteLog, events, quit) {
					return nil
				}
			}
		}

		for {
			select {
			case <-quit:
				return nil
			case err := <-live.Err():
				if err == nil {
					err = errSubscriptionClosed
				}
				return fmt.Errorf("%w: %w", ErrEventTransport, err)
			case voteLog := <-logs:
				if voteLog.BlockNumber <= head || voteLog.BlockNumber < from {
					continue
				}
				if !deliver(voteLog, events, quit) {
					return nil
				}
			}
		}
	})

	return &Subscription{
		events:       events,
		subscription: sub,
	}, nil
}

// subscribePoll reads logs of new blocks every poll interval.
func (s *Subscriber) subscribePoll(from uint64) (subscription *Subscription) {
	events := make(chan election.VotedEvent)
	sub := event.NewSubscription(func(quit <-chan struct{}) error {
		defer close(events)

		ctx, cancel := quitContext(quit)
		defer cancel()

		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		next := from
		for {
			head, err := s.reader.BlockNumber(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("%w: reading latest block number: %w", ErrEventTransport, err)
			}

			if head >= next {
				logs, err := s.reader.FilterLogs(ctx, s.query(next, head))
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return fmt.Errorf("%w: reading logs of blocks %d to %d: %w",
						ErrEventTransport, next, head, err)
				}
				for _, voteLog := range logs {
					if !deliver(voteLog, events, quit) {
						return nil
					}
				}
				next = head + 1
			}

			select {
			case <-quit:
				return nil
			case <-ticker.C:
			}
		}
	})

	logger.Debugf("polling voted logs from block %d every %s", from, s.pollInterval)

	return &Subscription{
		events:       events,
		subscription: sub,
	}
}

// deliver decodes and sends the log given, and returns false if the
// subscription was stopped meanwhile. Removed and undecodable logs
// are skipped.
func deliver(voteLog types.Log, events chan<- election.VotedEvent, quit <-chan struct{}) (ok bool) {
	if voteLog.Removed {
		logger.Debugf("skipping removed log %d of block %d", voteLog.Index, voteLog.BlockNumber)
		return true
	}

	votedEvent, err := election.ParseVoted(voteLog)
	if err != nil {
		logger.Warnf("skipping log: %s", err)
		return true
	}

	select {
	case events <- votedEvent:
		return true
	case <-quit:
		return false
	}
}

func quitContext(quit <-chan struct{}) (ctx context.Context, cancel context.CancelFunc) {
	ctx, cancel = context.WithCancel(context.Background())
	go func() {
		select {
		case <-quit:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package tally

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/ChainSafe/tally/lib/election"
	"github.com/ChainSafe/tally/lib/state"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultStopTimeout = 5 * time.Second

// ErrStopTimeout is returned by Stop if the listener does not
// stop in time.
var ErrStopTimeout = errors.New("timeout stopping listener")

// Holder is the state the listener applies voted events to.
type Holder interface {
	ApplyVote(candidateID uint64) (applied bool)
	Snapshot() state.Snapshot
}

// Listener applies the voted events of a subscription to the holder,
// until stopped or until the subscription ends.
type Listener struct {
	subscription *Subscription
	holder       Holder

	cancel      chan struct{}
	done        chan struct{}
	stopOnce    sync.Once
	stopTimeout time.Duration

	appliedCounter prometheus.Counter
	droppedCounter prometheus.Counter
	votesGauge     *prometheus.GaugeVec
}

// NewListener creates a listener for the subscription given.
func NewListener(subscription *Subscription, holder Holder) *Listener {
	return &Listener{
		subscription:   subscription,
		holder:         holder,
		cancel:         make(chan struct{}),
		done:           make(chan struct{}),
		stopTimeout:    defaultStopTimeout,
		appliedCounter: appliedCounter,
		droppedCounter: droppedCounter,
		votesGauge:     votesGauge,
	}
}

// Listen starts applying events in a goroutine.
func (l *Listener) Listen() {
	l.setVotes(l.holder.Snapshot().Roster)

	go func() {
		defer close(l.done)
		defer l.subscription.Unsubscribe()

		events := l.subscription.Events()
		for {
			select {
			case <-l.cancel:
				return
			case votedEvent, ok := <-events:
				if !ok {
					l.logEnd(<-l.subscription.Err())
					return
				}
				l.apply(votedEvent)
			}
		}
	}()
}

// Done returns a channel closed once the listener has stopped.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// Stop stops the listener and its subscription.
func (l *Listener) Stop() error {
	l.stopOnce.Do(func() { close(l.cancel) })

	timer := time.NewTimer(l.stopTimeout)
	defer timer.Stop()

	select {
	case <-l.done:
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

func (l *Listener) apply(votedEvent election.VotedEvent) {
	if !l.holder.ApplyVote(votedEvent.CandidateID) {
		l.droppedCounter.Inc()
		logger.Debugf("dropped vote for unknown candidate %d at block %d",
			votedEvent.CandidateID, votedEvent.BlockNumber)
		return
	}

	l.appliedCounter.Inc()
	logger.Debugf("applied vote for candidate %d at block %d",
		votedEvent.CandidateID, votedEvent.BlockNumber)

	candidate, ok := l.holder.Snapshot().Candidate(votedEvent.CandidateID)
	if ok {
		l.setVotes([]election.Candidate{candidate})
	}
}

func (l *Listener) setVotes(roster []election.Candidate) {
	for _, candidate := range roster {
		label := strconv.FormatUint(candidate.ID, 10)
		l.votesGauge.WithLabelValues(label).Set(float64(candidate.VoteCount))
	}
}

// logEnd logs the error ending the subscription. The subscription
// is not restarted.
func (l *Listener) logEnd(err error) {
	if err == nil {
		logger.Debug("voted event subscription ended")
		return
	}
	logger.Errorf("voted event subscription stopped: %s", err)
}

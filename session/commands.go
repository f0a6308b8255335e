// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package session

import (
	"github.com/ChainSafe/tally/lib/state"
	"github.com/ChainSafe/tally/lib/vote"
)

// Snapshot returns the current snapshot of the session.
func (s *Session) Snapshot() state.Snapshot {
	return s.holder.Snapshot()
}

// SelectCandidate selects the candidate to vote for. Zero clears
// the selection.
func (s *Session) SelectCandidate(candidateID uint64) (err error) {
	return s.holder.Select(candidateID)
}

// CastVote submits a vote for the selected candidate. It returns once
// the vote is accepted for submission; the transaction lifecycle then
// shows in the snapshots. A rejected vote changes nothing.
func (s *Session) CastVote() (err error) {
	snapshot := s.holder.Snapshot()
	switch {
	case snapshot.Degraded:
		return state.ErrDegraded
	case snapshot.Selected == 0:
		return vote.ErrNoSelection
	}

	s.mutex.Lock()
	submitter := s.submitter
	switch {
	case submitter == nil:
		s.mutex.Unlock()
		return ErrNotReady
	case s.ctx.Err() != nil:
		s.mutex.Unlock()
		return ErrStopped
	}
	// Stop waits on votes after cancelling the context under the mutex.
	s.votes.Add(1)
	s.mutex.Unlock()

	outcomes, err := submitter.Begin(s.ctx, snapshot.Selected)
	if err != nil {
		s.votes.Done()
		return err
	}

	go func() {
		defer s.votes.Done()
		outcome := <-outcomes
		if outcome.Err != nil {
			s.logger.Warnf("vote for candidate %d ended %s", snapshot.Selected, outcome.Status)
			return
		}
		s.logger.Infof("vote for candidate %d %s in transaction %s",
			snapshot.Selected, outcome.Status, outcome.Hash.Hex())
	}()

	return nil
}

// DismissAlert clears the alert of the session unless it is fatal.
func (s *Session) DismissAlert() (err error) {
	return s.holder.DismissAlert()
}

// Watch returns a channel receiving every new snapshot. It must be
// released with Unwatch.
func (s *Session) Watch() chan state.Snapshot {
	return s.holder.GetSnapshotChannel()
}

// Unwatch releases a channel obtained with Watch.
func (s *Session) Unwatch(ch chan state.Snapshot) {
	s.holder.FreeSnapshotChannel(ch)
}

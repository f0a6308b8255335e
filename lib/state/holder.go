// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ChainSafe/tally/internal/log"
	"github.com/ChainSafe/tally/lib/election"
	"github.com/ethereum/go-ethereum/common"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "state"))

var (
	// ErrBusy is returned when a vote is already in flight.
	ErrBusy = errors.New("a vote is already in flight")
	// ErrDegraded is returned when voting in a read-only session.
	ErrDegraded = errors.New("session is read-only")
	// ErrNotLoaded is returned when voting before the roster is installed.
	ErrNotLoaded = errors.New("roster not loaded")
	// ErrAlreadyVoted is returned when voting again from an account
	// which already voted.
	ErrAlreadyVoted = errors.New("account already voted")
	// ErrUnknownCandidate is returned when selecting a candidate
	// absent from the roster.
	ErrUnknownCandidate = errors.New("unknown candidate")
	// ErrFatalAlert is returned when dismissing a fatal alert.
	ErrFatalAlert = errors.New("fatal alert cannot be dismissed")
)

// Holder holds the current snapshot of the session. Every write
// replaces the whole snapshot and bumps its version.
type Holder struct {
	mutex    sync.RWMutex
	snapshot Snapshot
	watchers map[chan Snapshot]struct{}
}

// NewHolder creates a holder with an empty snapshot.
func NewHolder(sessionID, network string) *Holder {
	return &Holder{
		snapshot: Snapshot{
			SessionID: sessionID,
			Network:   network,
		},
		watchers: make(map[chan Snapshot]struct{}),
	}
}

// Snapshot returns the current snapshot.
func (h *Holder) Snapshot() Snapshot {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.snapshot
}

// replace applies the change given to a copy of the current snapshot
// and publishes the copy. A change returning an error publishes nothing.
func (h *Holder) replace(change func(s *Snapshot) error) (err error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	next := h.snapshot
	err = change(&next)
	if err != nil {
		return err
	}

	next.Version++
	h.snapshot = next
	h.notify(next)
	return nil
}

// SetAccount sets the account of the session.
func (h *Holder) SetAccount(account common.Address) {
	_ = h.replace(func(s *Snapshot) error {
		s.Account = account
		return nil
	})
}

// Install installs the initial roster and voted flag read at the block given.
func (h *Holder) Install(roster []election.Candidate, voted bool, block uint64) {
	roster = election.CopyRoster(roster)
	_ = h.replace(func(s *Snapshot) error {
		s.Roster = roster
		s.Voted = s.Voted || voted
		s.Block = block
		s.Loaded = true
		return nil
	})
}

// ApplyVote increments the vote count of the candidate given by one.
// It returns false if the candidate is not in the roster, in which
// case nothing is published.
func (h *Holder) ApplyVote(candidateID uint64) (applied bool) {
	err := h.replace(func(s *Snapshot) error {
		index := findCandidate(s.Roster, candidateID)
		if index < 0 {
			return ErrUnknownCandidate
		}
		roster := election.CopyRoster(s.Roster)
		roster[index].VoteCount++
		s.Roster = roster
		return nil
	})
	return err == nil
}

// Select selects the candidate given. Zero clears the selection.
func (h *Holder) Select(candidateID uint64) (err error) {
	return h.replace(func(s *Snapshot) error {
		if candidateID != 0 && findCandidate(s.Roster, candidateID) < 0 {
			return fmt.Errorf("%w: %d", ErrUnknownCandidate, candidateID)
		}
		s.Selected = candidateID
		return nil
	})
}

// BeginVote marks the session busy with a pending vote for the
// candidate given. It fails with ErrBusy if a vote is in flight.
func (h *Holder) BeginVote(candidateID uint64, status string) (err error) {
	return h.replace(func(s *Snapshot) error {
		switch {
		case s.Busy:
			return ErrBusy
		case s.Degraded:
			return ErrDegraded
		case !s.Loaded:
			return ErrNotLoaded
		case s.Voted:
			return ErrAlreadyVoted
		case findCandidate(s.Roster, candidateID) < 0:
			return fmt.Errorf("%w: %d", ErrUnknownCandidate, candidateID)
		}
		s.Busy = true
		s.Pending = &PendingTransaction{
			CandidateID: candidateID,
			Status:      status,
		}
		return nil
	})
}

// UpdatePending replaces the pending transaction while a vote is in flight.
func (h *Holder) UpdatePending(pending PendingTransaction) {
	_ = h.replace(func(s *Snapshot) error {
		if !s.Busy {
			return ErrBusy
		}
		s.Pending = &pending
		return nil
	})
}

// SettleVote ends the vote in flight successfully: the account is
// marked as having voted and the session is no longer busy.
func (h *Holder) SettleVote() {
	_ = h.replace(func(s *Snapshot) error {
		s.Voted = true
		s.Busy = false
		s.Pending = nil
		s.Selected = 0
		return nil
	})
}

// FailVote ends the vote in flight with the alert given.
// The voted flag is left unchanged.
func (h *Holder) FailVote(alert Alert) {
	_ = h.replace(func(s *Snapshot) error {
		s.Busy = false
		s.Pending = nil
		s.Alert = &alert
		return nil
	})
}

// SetAlert sets the alert of the session.
func (h *Holder) SetAlert(alert Alert) {
	_ = h.replace(func(s *Snapshot) error {
		s.Alert = &alert
		return nil
	})
}

// Degrade makes the session read-only with the alert given.
func (h *Holder) Degrade(alert Alert) {
	_ = h.replace(func(s *Snapshot) error {
		s.Degraded = true
		s.Selected = 0
		s.Alert = &alert
		return nil
	})
}

// DismissAlert clears a non fatal alert.
func (h *Holder) DismissAlert() (err error) {
	return h.replace(func(s *Snapshot) error {
		if s.Alert != nil && s.Alert.Fatal {
			return ErrFatalAlert
		}
		s.Alert = nil
		return nil
	})
}

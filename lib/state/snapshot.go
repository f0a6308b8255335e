// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"math/big"

	"github.com/ChainSafe/tally/lib/election"
	"github.com/ethereum/go-ethereum/common"
)

// Alert kinds.
const (
	AlertProvider    = "provider"
	AlertNetwork     = "network"
	AlertLedger      = "ledger"
	AlertTransaction = "transaction"
)

// Alert is the error slot of the snapshot.
type Alert struct {
	Kind        string `json:"kind"`
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
	// Fatal alerts cannot be dismissed.
	Fatal bool `json:"fatal"`
}

// PendingTransaction is the vote transaction in flight.
type PendingTransaction struct {
	CandidateID uint64      `json:"candidateId"`
	Gas         uint64      `json:"gas,omitempty"`
	GasPrice    *big.Int    `json:"gasPrice,omitempty"`
	Hash        common.Hash `json:"hash"`
	Block       uint64      `json:"block,omitempty"`
	Status      string      `json:"status"`
}

// Snapshot is an immutable view of the session state.
// Its roster and pointers are never modified once published.
type Snapshot struct {
	SessionID string               `json:"sessionId"`
	Account   common.Address       `json:"account"`
	Network   string               `json:"network"`
	Roster    []election.Candidate `json:"roster"`
	Loaded    bool                 `json:"loaded"`
	Voted     bool                 `json:"voted"`
	Busy      bool                 `json:"busy"`
	Selected  uint64               `json:"selected"`
	Degraded  bool                 `json:"degraded"`
	Alert     *Alert               `json:"alert,omitempty"`
	Pending   *PendingTransaction  `json:"pending,omitempty"`
	Block     uint64               `json:"block"`
	Version   uint64               `json:"version"`
}

// Errored returns true if the snapshot carries an alert.
func (s Snapshot) Errored() bool {
	return s.Alert != nil
}

// CanVote returns true if a vote for the selected candidate
// can be submitted.
func (s Snapshot) CanVote() bool {
	return s.Loaded && !s.Voted && !s.Busy && !s.Degraded && s.Selected != 0
}

// Candidate returns the candidate with the id given from the roster.
func (s Snapshot) Candidate(id uint64) (candidate election.Candidate, ok bool) {
	index := findCandidate(s.Roster, id)
	if index < 0 {
		return candidate, false
	}
	return s.Roster[index], true
}

func findCandidate(roster []election.Candidate, id uint64) (index int) {
	for i := range roster {
		if roster[i].ID == id {
			return i
		}
	}
	return -1
}

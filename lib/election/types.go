// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Candidate is a candidate of the election with its tally.
type Candidate struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	VoteCount uint64 `json:"voteCount"`
}

func (c Candidate) String() string {
	return fmt.Sprintf("#%d %s (%d votes)", c.ID, c.Name, c.VoteCount)
}

// VotedEvent is a vote recorded by the contract.
type VotedEvent struct {
	CandidateID uint64
	BlockNumber uint64
	LogIndex    uint
	TxHash      common.Hash
}

// CopyRoster returns a copy of the roster given.
func CopyRoster(roster []Candidate) []Candidate {
	if roster == nil {
		return nil
	}
	copied := make([]Candidate, len(roster))
	copy(copied, roster)
	return copied
}

// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package vote

import "fmt"

// Status is a stage of the vote transaction lifecycle.
type Status uint8

const (
	// Idle is the status before a vote is submitted.
	Idle Status = iota
	// Estimating is the status while the transaction cost is computed.
	Estimating
	// Submitted is the status once the node accepted the transaction.
	Submitted
	// Confirmed is the status once the transaction is in a block.
	Confirmed
	// Settled is the terminal status once the transaction block
	// has enough confirmations.
	Settled
	// Failed is the terminal status of a rejected, reverted or
	// abandoned transaction.
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Estimating:
		return "estimating"
	case Submitted:
		return "submitted"
	case Confirmed:
		return "confirmed"
	case Settled:
		return "settled"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("unknown status %d", s)
	}
}

// Terminal returns true for the Settled and Failed statuses.
func (s Status) Terminal() bool {
	return s == Settled || s == Failed
}

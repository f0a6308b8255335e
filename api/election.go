// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package api

import (
	"net/http"

	"github.com/ChainSafe/tally/lib/state"
)

// Session is the session the API exposes.
type Session interface {
	Snapshot() state.Snapshot
	SelectCandidate(candidateID uint64) (err error)
	CastVote() (err error)
	DismissAlert() (err error)
	Watch() chan state.Snapshot
	Unwatch(ch chan state.Snapshot)
}

// ElectionModule is the RPC module of the election session.
type ElectionModule struct {
	session Session
}

// NewElectionModule creates the election RPC module.
func NewElectionModule(session Session) *ElectionModule {
	return &ElectionModule{session: session}
}

// EmptyRequest represents an RPC request with no fields.
type EmptyRequest struct{}

// SelectCandidateRequest selects a candidate. Zero clears the selection.
type SelectCandidateRequest struct {
	CandidateID uint64 `json:"candidateId" validate:"lte=10000"`
}

// SnapshotResponse is the session snapshot after the call.
type SnapshotResponse state.Snapshot

// Snapshot returns the current session snapshot.
func (em *ElectionModule) Snapshot(_ *http.Request, _ *EmptyRequest, res *SnapshotResponse) error {
	*res = SnapshotResponse(em.session.Snapshot())
	return nil
}

// SelectCandidate selects the candidate to vote for.
func (em *ElectionModule) SelectCandidate(_ *http.Request, req *SelectCandidateRequest,
	res *SnapshotResponse) error {
	err := em.session.SelectCandidate(req.CandidateID)
	if err != nil {
		return err
	}
	*res = SnapshotResponse(em.session.Snapshot())
	return nil
}

// CastVote submits a vote for the selected candidate.
func (em *ElectionModule) CastVote(_ *http.Request, _ *EmptyRequest, res *SnapshotResponse) error {
	err := em.session.CastVote()
	if err != nil {
		return err
	}
	*res = SnapshotResponse(em.session.Snapshot())
	return nil
}

// DismissAlert clears the non fatal alert of the session.
func (em *ElectionModule) DismissAlert(_ *http.Request, _ *EmptyRequest, res *SnapshotResponse) error {
	err := em.session.DismissAlert()
	if err != nil {
		return err
	}
	*res = SnapshotResponse(em.session.Snapshot())
	return nil
}

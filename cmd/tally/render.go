// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChainSafe/tally/lib/state"
	"github.com/pterm/pterm"
)

// renderSnapshot renders the snapshot given as a block of text.
func renderSnapshot(snapshot state.Snapshot) (text string, err error) {
	var b strings.Builder

	b.WriteString(pterm.Sprintfln("Network: %s", pterm.LightCyan(snapshot.Network)))
	b.WriteString(pterm.Sprintfln("Account: %s", pterm.LightCyan(snapshot.Account.Hex())))

	if alert := snapshot.Alert; alert != nil {
		printer := pterm.Warning
		if alert.Fatal {
			printer = pterm.Error
		}
		b.WriteString(printer.Sprintln(alert.Message))
		if alert.Description != "" {
			b.WriteString(pterm.Sprintln(alert.Description))
		}
	}

	if !snapshot.Loaded {
		if snapshot.Alert == nil {
			b.WriteString(pterm.Info.Sprintln("Loading election..."))
		}
		return b.String(), nil
	}

	b.WriteString(pterm.Sprintfln("Block: %d", snapshot.Block))

	data := pterm.TableData{{"ID", "Candidate", "Votes"}}
	for _, candidate := range snapshot.Roster {
		name := candidate.Name
		if candidate.ID == snapshot.Selected {
			name = pterm.LightYellow("> " + name)
		}
		data = append(data, []string{
			strconv.FormatUint(candidate.ID, 10),
			name,
			strconv.FormatUint(candidate.VoteCount, 10),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", fmt.Errorf("rendering roster: %w", err)
	}
	b.WriteString(table)
	b.WriteString("\n")

	switch {
	case snapshot.Busy && snapshot.Pending != nil:
		pending := snapshot.Pending
		line := fmt.Sprintf("Vote for candidate %d: %s", pending.CandidateID, pending.Status)
		if pending.Block != 0 {
			line += fmt.Sprintf(" in block %d", pending.Block)
		}
		b.WriteString(pterm.Info.Sprintln(line))
	case snapshot.Voted:
		b.WriteString(pterm.Success.Sprintln("Your vote has been recorded"))
	case snapshot.Degraded:
		b.WriteString(pterm.Warning.Sprintln("Read-only session, voting is disabled"))
	}

	return b.String(), nil
}

// renderer renders snapshots either in a terminal area updated in
// place, or as successive blocks of plain text.
type renderer struct {
	area   *pterm.AreaPrinter
	writer io.Writer
}

func newRenderer(interactive bool, writer io.Writer) (r *renderer, err error) {
	if !interactive {
		pterm.DisableStyling()
		return &renderer{writer: writer}, nil
	}

	area, err := pterm.DefaultArea.Start()
	if err != nil {
		return nil, fmt.Errorf("starting terminal area: %w", err)
	}
	return &renderer{area: area}, nil
}

func (r *renderer) render(snapshot state.Snapshot) {
	text, err := renderSnapshot(snapshot)
	if err != nil {
		logger.Errorf("cannot render snapshot: %s", err)
		return
	}

	if r.area != nil {
		r.area.Update(text)
		return
	}

	_, err = fmt.Fprintln(r.writer, text)
	if err != nil {
		logger.Debugf("writing snapshot: %s", err)
	}
}

// run renders the initial snapshot and then every newer snapshot
// received until the context is canceled.
func (r *renderer) run(ctx context.Context, initial state.Snapshot, snapshots <-chan state.Snapshot) {
	r.render(initial)
	last := initial.Version

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot := <-snapshots:
			if snapshot.Version <= last {
				continue
			}
			last = snapshot.Version
			r.render(snapshot)
		}
	}
}

func (r *renderer) stop() {
	if r.area == nil {
		return
	}
	err := r.area.Stop()
	if err != nil {
		logger.Debugf("stopping terminal area: %s", err)
	}
}

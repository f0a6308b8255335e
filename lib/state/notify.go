// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

const defaultBufferSize = 16

// GetSnapshotChannel returns a channel receiving every published
// snapshot. When the channel is full, the oldest snapshot is dropped
// so the latest snapshot is always delivered.
func (h *Holder) GetSnapshotChannel() chan Snapshot {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	ch := make(chan Snapshot, defaultBufferSize)
	h.watchers[ch] = struct{}{}
	return ch
}

// FreeSnapshotChannel stops publishing snapshots to the channel given.
func (h *Holder) FreeSnapshotChannel(ch chan Snapshot) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.watchers, ch)
}

// notify must be called with the holder mutex held.
func (h *Holder) notify(snapshot Snapshot) {
	for ch := range h.watchers {
		select {
		case ch <- snapshot:
			continue
		default:
		}

		logger.Tracef("snapshot channel full, dropping oldest snapshot")
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}

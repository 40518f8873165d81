// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transfer tracks the lifecycle of upload and download operations.
//
// Every operation gets its own tracked slot keyed by (persona, filename,
// operation id), so two transfers of the same filename, concurrent or
// across personas, never collide. The tracker is passive: it records what
// the orchestration layer reports and answers queries from the views. It is
// mutated only from the program's update loop.
package transfer

import (
	"time"

	"github.com/google/uuid"

	"github.com/morganforge/persona-desk/internal/persona"
)

// =============================================================================
// KINDS AND STATUSES
// =============================================================================

// Kind distinguishes the two transfer directions.
type Kind int

const (
	KindUpload Kind = iota
	KindDownload
)

// String returns a display label for the kind.
func (k Kind) String() string {
	if k == KindDownload {
		return "download"
	}
	return "upload"
}

// Status is the lifecycle state of a single transfer.
type Status int

const (
	StatusIdle Status = iota
	StatusInFlight
	StatusSucceeded
	StatusFailed
)

// String returns a display label for the status.
func (s Status) String() string {
	switch s {
	case StatusInFlight:
		return "in flight"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Terminal reports whether the transfer has settled.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// =============================================================================
// KEY AND STATE
// =============================================================================

// Key identifies one transfer operation. OpID makes the key unique even
// for repeated transfers of the same file.
type Key struct {
	Persona  persona.ID
	Filename string
	OpID     string
}

// State is the tracked state of one transfer.
type State struct {
	Key       Key
	Kind      Kind
	Progress  int // 0..100, as last reported
	Status    Status
	StartedAt time.Time
}

// =============================================================================
// TRACKER
// =============================================================================

// Tracker holds the live transfer table.
type Tracker struct {
	ops   map[string]*State // keyed by OpID
	order []string          // begin order, for stable rendering
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{ops: make(map[string]*State)}
}

// Begin registers a new in-flight transfer and returns its key.
func (t *Tracker) Begin(p persona.ID, filename string, kind Kind) Key {
	key := Key{Persona: p, Filename: filename, OpID: uuid.NewString()}
	t.ops[key.OpID] = &State{
		Key:       key,
		Kind:      kind,
		Progress:  0,
		Status:    StatusInFlight,
		StartedAt: time.Now(),
	}
	t.order = append(t.order, key.OpID)
	return key
}

// UpdateProgress records the latest reported percent, clamped to 0..100.
// Values are passed through as reported; the backend may report
// non-monotonic progress and the tracker does not smooth it.
func (t *Tracker) UpdateProgress(key Key, percent int) {
	st, ok := t.ops[key.OpID]
	if !ok || st.Status.Terminal() {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	st.Progress = percent
}

// Complete marks the transfer as settled. Successful transfers report
// full progress regardless of the last update seen.
func (t *Tracker) Complete(key Key, ok bool) {
	st, found := t.ops[key.OpID]
	if !found {
		return
	}
	if ok {
		st.Status = StatusSucceeded
		st.Progress = 100
	} else {
		st.Status = StatusFailed
	}
}

// Reset removes a settled transfer from the table, returning its slot to
// idle. The upload view calls this on a short timer after completion so
// the success state stays visible before clearing.
func (t *Tracker) Reset(key Key) {
	if _, ok := t.ops[key.OpID]; !ok {
		return
	}
	delete(t.ops, key.OpID)
	for i, id := range t.order {
		if id == key.OpID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// =============================================================================
// QUERIES
// =============================================================================

// Get returns the state for a key.
func (t *Tracker) Get(key Key) (State, bool) {
	st, ok := t.ops[key.OpID]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// Busy reports whether any transfer is in flight.
func (t *Tracker) Busy() bool {
	for _, st := range t.ops {
		if st.Status == StatusInFlight {
			return true
		}
	}
	return false
}

// InFlight reports whether a transfer of the given kind is running for
// the (persona, filename) pair, across all operation ids.
func (t *Tracker) InFlight(p persona.ID, filename string, kind Kind) bool {
	for _, st := range t.ops {
		if st.Status == StatusInFlight && st.Kind == kind &&
			st.Key.Persona == p && st.Key.Filename == filename {
			return true
		}
	}
	return false
}

// States returns all tracked transfers in begin order.
func (t *Tracker) States() []State {
	out := make([]State, 0, len(t.order))
	for _, id := range t.order {
		if st, ok := t.ops[id]; ok {
			out = append(out, *st)
		}
	}
	return out
}

// Len returns the number of tracked transfers.
func (t *Tracker) Len() int {
	return len(t.ops)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package persona defines the static catalog of assistant personas.
//
// The registry is built once at startup and injected into every view that
// needs it. Consumers hold it by value and never reconstruct or mutate it.
package persona

import (
	"errors"

	"github.com/charmbracelet/lipgloss"
)

// ErrUnknownPersona is returned by Lookup for ids outside the catalog.
// The UI only ever offers catalog ids, so hitting this indicates a bug
// in the caller rather than a user-reachable state.
var ErrUnknownPersona = errors.New("unknown persona")

// ID identifies a persona. IDs double as the chat role label for
// assistant replies.
type ID string

const (
	HR    ID = "HR"
	Legal ID = "Legal"
	L1    ID = "L1"
	L2    ID = "L2"
)

// String returns the string representation of the id.
func (id ID) String() string {
	return string(id)
}

// Persona holds the display metadata for one assistant identity.
type Persona struct {
	ID    ID
	Name  string
	Desc  string
	Color lipgloss.AdaptiveColor
}

// Registry is an immutable lookup table of personas.
type Registry struct {
	order    []ID
	personas map[ID]Persona
}

// NewRegistry builds the default four-persona catalog.
func NewRegistry() Registry {
	table := []Persona{
		{ID: HR, Name: "HR", Desc: "HR assistant",
			Color: lipgloss.AdaptiveColor{Light: "#0F62FE", Dark: "#78A9FF"}},
		{ID: Legal, Name: "Legal", Desc: "Legal assistant",
			Color: lipgloss.AdaptiveColor{Light: "#6F42C1", Dark: "#BE95FF"}},
		{ID: L1, Name: "L1", Desc: "Support persona",
			Color: lipgloss.AdaptiveColor{Light: "#00A86B", Dark: "#42BE65"}},
		{ID: L2, Name: "L2", Desc: "Support persona",
			Color: lipgloss.AdaptiveColor{Light: "#FF7A00", Dark: "#FFB784"}},
	}

	r := Registry{
		order:    make([]ID, 0, len(table)),
		personas: make(map[ID]Persona, len(table)),
	}
	for _, p := range table {
		r.order = append(r.order, p.ID)
		r.personas[p.ID] = p
	}
	return r
}

// Lookup returns the persona for id, or ErrUnknownPersona.
func (r Registry) Lookup(id ID) (Persona, error) {
	p, ok := r.personas[id]
	if !ok {
		return Persona{}, ErrUnknownPersona
	}
	return p, nil
}

// Contains reports whether id is in the catalog.
func (r Registry) Contains(id ID) bool {
	_, ok := r.personas[id]
	return ok
}

// All returns the personas in display order.
func (r Registry) All() []Persona {
	out := make([]Persona, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.personas[id])
	}
	return out
}

// Default returns the persona selected at startup.
func (r Registry) Default() Persona {
	return r.personas[r.order[0]]
}

// Len returns the number of personas in the catalog.
func (r Registry) Len() int {
	return len(r.order)
}

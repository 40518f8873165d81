// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()

	for _, id := range []ID{HR, Legal, L1, L2} {
		p, err := r.Lookup(id)
		require.NoError(t, err, "catalog persona %q should resolve", id)
		assert.Equal(t, id, p.ID)
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Desc)
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Lookup("Finance")
	assert.ErrorIs(t, err, ErrUnknownPersona)
}

func TestRegistry_DisplayOrder(t *testing.T) {
	r := NewRegistry()

	all := r.All()
	require.Len(t, all, 4)
	assert.Equal(t, HR, all[0].ID)
	assert.Equal(t, Legal, all[1].ID)
	assert.Equal(t, L1, all[2].ID)
	assert.Equal(t, L2, all[3].ID)
}

func TestRegistry_Default(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, HR, r.Default().ID)
}

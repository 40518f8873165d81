// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/persona-desk/internal/persona"
)

// =============================================================================
// USER MESSAGE TESTS
// =============================================================================

func TestConversation_AddUserMessage(t *testing.T) {
	c := NewConversation(persona.HR)

	msg, ok := c.AddUserMessage("hello there")
	require.True(t, ok)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, "hello there", msg.Content)
	assert.False(t, msg.Timestamp.IsZero())
	assert.Empty(t, msg.Attachments)
}

func TestConversation_AddUserMessageBlankIsNoop(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "spaces", input: "   "},
		{name: "tabs and newlines", input: "\t\n  \n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewConversation(persona.HR)
			msg, ok := c.AddUserMessage(tc.input)
			assert.False(t, ok)
			assert.Nil(t, msg)
			assert.Equal(t, 0, c.Len())
		})
	}
}

func TestConversation_AddUserMessageTrimsOnlyEdges(t *testing.T) {
	c := NewConversation(persona.HR)

	msg, ok := c.AddUserMessage("  keep  inner   spacing  ")
	require.True(t, ok)
	assert.Equal(t, "keep  inner   spacing", msg.Content)
}

// =============================================================================
// PLACEHOLDER RESOLUTION TESTS
// =============================================================================

func TestConversation_ReplaceOrAppendByContent_LastMatchWins(t *testing.T) {
	c := NewConversation(persona.HR)

	// Two uploads of the same file produce identical placeholder text.
	first := c.AddPlaceholder("Uploading a.txt...")
	second := c.AddPlaceholder("Uploading a.txt...")
	require.NotEqual(t, first.CorrelationID, second.CorrelationID)

	result := NewResult(RoleSystem, "File successfully uploaded: a.txt", Attachment{Name: "a.txt"})
	c.ReplaceOrAppendByContent("Uploading a.txt...", result)

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	// The earlier placeholder is untouched; the most recent one resolved.
	assert.Equal(t, "Uploading a.txt...", msgs[0].Content)
	assert.Same(t, first, msgs[0])
	assert.Equal(t, "File successfully uploaded: a.txt", msgs[1].Content)
}

func TestConversation_ReplaceOrAppendByContent_AppendsWhenMissing(t *testing.T) {
	c := NewConversation(persona.HR)
	c.AddPlaceholder("Uploading a.txt...")

	result := NewResult(RoleSystem, "File successfully uploaded: missing.txt")
	c.ReplaceOrAppendByContent("Uploading missing.txt...", result)

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "File successfully uploaded: missing.txt", msgs[1].Content)
}

func TestConversation_ResolveByCorrelation(t *testing.T) {
	c := NewConversation(persona.HR)

	c.AddUserMessage("context before")
	ph := c.AddPlaceholder("Uploading report.pdf...")
	c.AddUserMessage("context after")

	ok := c.ResolveByCorrelation(ph.CorrelationID,
		NewResult(RoleSystem, "File successfully uploaded: report.pdf", Attachment{Name: "report.pdf"}))
	require.True(t, ok)

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	// Position preserved.
	assert.Equal(t, "File successfully uploaded: report.pdf", msgs[1].Content)
	require.Len(t, msgs[1].Attachments, 1)
	assert.Equal(t, "report.pdf", msgs[1].Attachments[0].Name)

	// Placeholder text is fully gone from the log.
	for _, m := range msgs {
		assert.NotEqual(t, "Uploading report.pdf...", m.Content)
	}
}

func TestConversation_ResolveByCorrelation_SameFilenameTwice(t *testing.T) {
	c := NewConversation(persona.HR)

	first := c.AddPlaceholder("Uploading a.txt...")
	second := c.AddPlaceholder("Uploading a.txt...")

	// Resolving the first placeholder must not touch the second, even
	// though their text is identical.
	ok := c.ResolveByCorrelation(first.CorrelationID, NewResult(RoleSystem, "File successfully uploaded: a.txt"))
	require.True(t, ok)

	msgs := c.Messages()
	assert.Equal(t, "File successfully uploaded: a.txt", msgs[0].Content)
	assert.Same(t, second, msgs[1])
}

func TestConversation_ResolveByCorrelation_Unknown(t *testing.T) {
	c := NewConversation(persona.HR)
	c.AddPlaceholder("Uploading a.txt...")

	assert.False(t, c.ResolveByCorrelation("nope", NewSystemMessage("x")))
	assert.False(t, c.ResolveByCorrelation("", NewSystemMessage("x")))
	assert.Equal(t, 1, c.Len())
}

// =============================================================================
// ORDERING TESTS
// =============================================================================

// Appends land in resolution order, not trigger order: an upload that
// settles before an earlier chat reply shows up first. This interleaving
// is deliberate; a change to serialized appends must flip this test.
func TestConversation_ArrivalOrderAppends(t *testing.T) {
	c := NewConversation(persona.HR)

	c.AddUserMessage("summarize the handbook") // send triggered first
	c.AddPlaceholder("Uploading notes.txt...") // upload triggered second

	// Upload response arrives first.
	c.ReplaceOrAppendByContent("Uploading notes.txt...",
		NewResult(RoleSystem, "File successfully uploaded: notes.txt", Attachment{Name: "notes.txt"}))
	// Chat response arrives second.
	c.AddResult(Role(persona.HR), "Here is the summary.")

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "File successfully uploaded: notes.txt", msgs[1].Content)
	assert.Equal(t, "Here is the summary.", msgs[2].Content)
}

func TestConversation_PersonaSwitchKeepsLog(t *testing.T) {
	c := NewConversation(persona.HR)
	c.AddUserMessage("question for HR")
	c.AddResult(Role(persona.HR), "HR answer")

	c.SetActivePersona(persona.Legal)
	assert.Equal(t, persona.Legal, c.ActivePersona())
	assert.Equal(t, 2, c.Len())

	c.AddResult(Role(persona.Legal), "Legal answer")
	msgs := c.Messages()
	assert.Equal(t, Role(persona.HR), msgs[1].Role)
	assert.Equal(t, Role(persona.Legal), msgs[2].Role)
}

// =============================================================================
// SNAPSHOT / PRUNE TESTS
// =============================================================================

func TestConversation_SnapshotUnaffectedByLaterMutations(t *testing.T) {
	c := NewConversation(persona.HR)
	ph := c.AddPlaceholder("Uploading a.txt...")

	snapshot := c.Messages()
	c.ResolveByCorrelation(ph.CorrelationID, NewResult(RoleSystem, "File successfully uploaded: a.txt"))
	c.AddUserMessage("more")

	// The snapshot taken before the mutations still shows the placeholder.
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Uploading a.txt...", snapshot[0].Content)
}

func TestConversation_PruneKeepsMostRecent(t *testing.T) {
	c := NewConversation(persona.HR)
	for i := 0; i < MaxMessages+10; i++ {
		c.AddResult(RoleSystem, fmt.Sprintf("notice %d", i))
	}

	msgs := c.Messages()
	require.Len(t, msgs, MaxMessages)
	assert.Equal(t, fmt.Sprintf("notice %d", MaxMessages+9), msgs[len(msgs)-1].Content)
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewPlaceholder_HasCorrelationID(t *testing.T) {
	a := NewPlaceholder("Uploading a.txt...")
	b := NewPlaceholder("Uploading a.txt...")

	assert.Equal(t, RoleSystem, a.Role)
	assert.NotEmpty(t, a.CorrelationID)
	assert.NotEqual(t, a.CorrelationID, b.CorrelationID)
}

func TestRole_Predicates(t *testing.T) {
	assert.True(t, RoleUser.IsUser())
	assert.True(t, RoleSystem.IsSystem())
	assert.False(t, Role(persona.HR).IsUser())
	assert.False(t, Role(persona.HR).IsSystem())
}

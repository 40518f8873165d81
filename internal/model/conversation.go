// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"

	"github.com/morganforge/persona-desk/internal/persona"
)

// MaxMessages bounds the in-memory log. When exceeded, the oldest
// messages are pruned to prevent unbounded growth in long sessions.
const MaxMessages = 1000

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation owns the ordered message log for the chat view.
//
// The active persona is a per-message label, not a partition: switching
// persona changes which assistant future replies come from but does not
// clear or filter the existing log.
//
// All mutations replace the message slice wholesale (copy-on-write), so a
// reader holding a slice from Messages never observes a partial update.
// The conversation is mutated only from the program's update loop and is
// not safe for concurrent mutation.
type Conversation struct {
	activePersona persona.ID
	messages      []*Message
}

// NewConversation creates an empty conversation for the given persona.
func NewConversation(active persona.ID) *Conversation {
	return &Conversation{
		activePersona: active,
		messages:      make([]*Message, 0),
	}
}

// ActivePersona returns the persona that future sends are addressed to.
func (c *Conversation) ActivePersona() persona.ID {
	return c.activePersona
}

// SetActivePersona switches the target persona. The log is preserved.
func (c *Conversation) SetActivePersona(id persona.ID) {
	c.activePersona = id
}

// =============================================================================
// APPEND OPERATIONS
// =============================================================================

// AddUserMessage appends a user message for non-blank input and returns
// it. Blank input (empty after trimming) is a no-op, not an error. The
// appended content is the trimmed text, stored verbatim beyond that.
func (c *Conversation) AddUserMessage(content string) (*Message, bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, false
	}
	msg := NewUserMessage(trimmed)
	c.append(msg)
	return msg, true
}

// AddResult appends a resolved outcome: an assistant reply under the
// persona's role, or a system notice for errors.
func (c *Conversation) AddResult(role Role, content string, attachments ...Attachment) *Message {
	msg := NewResult(role, content, attachments...)
	c.append(msg)
	return msg
}

// AddPlaceholder appends an optimistic system message for an in-flight
// operation and returns it. The caller keeps the correlation id to
// resolve the placeholder once the operation settles.
func (c *Conversation) AddPlaceholder(content string) *Message {
	msg := NewPlaceholder(content)
	c.append(msg)
	return msg
}

// =============================================================================
// PLACEHOLDER RESOLUTION
// =============================================================================

// ResolveByCorrelation replaces the placeholder carrying the given
// correlation id, preserving its position in the log. Returns false when
// no such placeholder exists (already resolved, or pruned).
func (c *Conversation) ResolveByCorrelation(correlationID string, replacement *Message) bool {
	if correlationID == "" {
		return false
	}
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].CorrelationID == correlationID {
			c.replaceAt(i, replacement)
			return true
		}
	}
	return false
}

// ReplaceOrAppendByContent replaces the most recent message whose content
// exactly equals match, preserving its position; when no message matches,
// the replacement is appended instead.
//
// The scan runs from the end so that repeated placeholders with identical
// text resolve newest-first: a response settles the most recent pending
// placeholder, never an older one.
func (c *Conversation) ReplaceOrAppendByContent(match string, replacement *Message) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Content == match {
			c.replaceAt(i, replacement)
			return
		}
	}
	c.append(replacement)
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// Messages returns the current ordered log. The returned slice is the
// store's current snapshot; mutations swap in a new slice rather than
// writing through it.
func (c *Conversation) Messages() []*Message {
	return c.messages
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// IsEmpty reports whether the log has no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.messages) == 0
}

// LastMessage returns the most recent message, or nil when empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.messages) == 0 {
		return nil
	}
	return c.messages[len(c.messages)-1]
}

// Clear removes all messages. The active persona is preserved.
func (c *Conversation) Clear() {
	c.messages = make([]*Message, 0)
}

// =============================================================================
// INTERNAL
// =============================================================================

// append adds a message to a fresh slice so prior snapshots stay intact.
func (c *Conversation) append(msg *Message) {
	next := make([]*Message, len(c.messages), len(c.messages)+1)
	copy(next, c.messages)
	next = append(next, msg)
	c.messages = c.prune(next)
}

// replaceAt swaps the message at index i in a copied slice.
func (c *Conversation) replaceAt(i int, msg *Message) {
	next := make([]*Message, len(c.messages))
	copy(next, c.messages)
	next[i] = msg
	c.messages = next
}

// prune drops the oldest messages once the log exceeds MaxMessages.
func (c *Conversation) prune(msgs []*Message) []*Message {
	if len(msgs) <= MaxMessages {
		return msgs
	}
	return msgs[len(msgs)-MaxMessages:]
}

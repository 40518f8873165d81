// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the message log for a persona conversation.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role labels the sender of a message. The user and system roles are
// fixed; assistant replies carry the persona id as their role so a single
// log can interleave replies from different personas.
type Role string

const (
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsUser reports whether the message came from the user.
func (r Role) IsUser() bool {
	return r == RoleUser
}

// IsSystem reports whether the message is a system notice.
func (r Role) IsSystem() bool {
	return r == RoleSystem
}

// =============================================================================
// ATTACHMENT TYPE
// =============================================================================

// Attachment references a file carried by a message. Attachments are
// owned by their message and copied with it.
type Attachment struct {
	Name string `json:"name"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in the conversation log. Messages are
// immutable once appended; the log replaces entries wholesale rather
// than mutating them in place.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// CorrelationID ties an optimistic placeholder to the response that
	// resolves it. Empty for ordinary messages.
	CorrelationID string `json:"correlation_id,omitempty"`

	Attachments []Attachment `json:"attachments,omitempty"`
}

// NewMessage creates a message with a generated id and the current time.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewSystemMessage creates a system notice.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// NewPlaceholder creates a system message representing an in-flight
// operation. It carries a fresh correlation id so the eventual outcome
// can resolve this exact entry even when placeholder text repeats.
func NewPlaceholder(content string) *Message {
	msg := NewMessage(RoleSystem, content)
	msg.CorrelationID = uuid.NewString()
	return msg
}

// NewResult creates a resolved outcome message with optional attachments.
func NewResult(role Role, content string, attachments ...Attachment) *Message {
	msg := NewMessage(role, content)
	msg.Attachments = attachments
	return msg
}

// HasAttachments reports whether the message carries any attachments.
func (m *Message) HasAttachments() bool {
	return len(m.Attachments) > 0
}

// generateID creates a unique message id.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the shared UI widgets for the persona-desk
// TUI.
package components

import (
	"context"
	"sync"
)

// CancelManager holds a view's cancel function behind a mutex so teardown
// can race in-flight command goroutines safely. Views embed it as a
// pointer: Bubble Tea copies models on every Update, and a copied mutex
// would silently stop guarding.
type CancelManager struct {
	mu         sync.Mutex
	cancelFunc context.CancelFunc
}

// NewCancelManager creates a CancelManager pointer.
func NewCancelManager() *CancelManager {
	return &CancelManager{}
}

// Set stores a new cancel function, cancelling any previous one so no
// context leaks when a view is re-activated.
func (cm *CancelManager) Set(fn context.CancelFunc) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
	}
	cm.cancelFunc = fn
}

// Cancel invokes the stored cancel function and clears it. Safe to call
// multiple times or with nothing set.
func (cm *CancelManager) Cancel() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
		cm.cancelFunc = nil
	}
}

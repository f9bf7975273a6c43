/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"

	"pagebuilder/internal/domain"
)

// DefaultMaxEntries is the number of snapshots retained when Config leaves it unset.
const DefaultMaxEntries = 30

// Config controls the depth cap of the history.
type Config struct {
	// MaxEntries bounds the number of retained snapshots; the oldest are evicted first.
	MaxEntries int
}

// Manager is a linear undo/redo history over whole-document snapshots.
// Every stored and returned document is an isolated deep copy.
// It is safe for concurrent use.
type Manager struct {
	cfg       Config
	mu        sync.Mutex
	snapshots []domain.Document
	cursor    int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	return &Manager{cfg: cfg, cursor: -1}
}

// Reset drops all history and seeds it with doc as the only snapshot.
func (m *Manager) Reset(doc domain.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = []domain.Document{doc.Clone()}
	m.cursor = 0
}

// Push records doc as the newest snapshot. Anything after the cursor is discarded.
func (m *Manager) Push(doc domain.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots[:m.cursor+1], doc.Clone())
	if over := len(m.snapshots) - m.cfg.MaxEntries; over > 0 {
		// drop the oldest extras
		m.snapshots = append([]domain.Document{}, m.snapshots[over:]...)
	}
	m.cursor = len(m.snapshots) - 1
}

// Undo steps back one snapshot. When nothing is left to undo it returns the
// snapshot at the cursor (nil on an empty history) and false.
func (m *Manager) Undo() (domain.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cursor <= 0 {
		return m.currentLocked(), false
	}
	m.cursor--
	return m.currentLocked(), true
}

// Redo steps forward one snapshot, mirroring Undo.
func (m *Manager) Redo() (domain.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cursor < 0 || m.cursor >= len(m.snapshots)-1 {
		return m.currentLocked(), false
	}
	m.cursor++
	return m.currentLocked(), true
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor >= 0 && m.cursor < len(m.snapshots)-1
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (entries int, cursor int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snapshots), m.cursor
}

func (m *Manager) currentLocked() domain.Document {
	if m.cursor < 0 {
		return nil
	}
	return m.snapshots[m.cursor].Clone()
}

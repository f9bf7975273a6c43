/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package autosave debounces document changes into persistence calls.
// Nothing is written until the session is hydrated from storage, and a document identical
// to the last persisted one is never written again.
package autosave

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"pagebuilder/internal/domain"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/storage"
)

// DefaultDelay is the idle time after the last change before a save starts.
const DefaultDelay = time.Second

// Status is the user-visible save indicator.
type Status string

const (
	StatusSaved  Status = "saved"
	StatusSaving Status = "saving"
	StatusError  Status = "error"
)

// State is a snapshot of the indicator.
type State struct {
	Status   Status
	LastSave time.Time
	// Err holds the last failure while Status is StatusError.
	Err error
	// Skipped is set when the last save was refused by the wipe guard.
	Skipped bool
}

// Saver persists a document. *storage.Persister implements it.
type Saver interface {
	Save(ctx context.Context, doc domain.Document) (storage.SaveResult, error)
}

type Options struct {
	// Delay is the debounce interval; zero means DefaultDelay.
	Delay time.Duration
	// OnStatus is called after every status change, outside internal locks.
	OnStatus func(State)
}

// Autosaver schedules debounced saves of the live document.
type Autosaver struct {
	saver    Saver
	delay    time.Duration
	onStatus func(State)
	log      *slog.Logger

	mu       sync.Mutex
	timer    *time.Timer
	pending  domain.Document
	hydrated bool
	stopped  bool
	state    State

	// flushMu serializes flushes so dedupe sees a consistent lastJSON.
	flushMu  sync.Mutex
	lastJSON string
}

func New(saver Saver, opts Options) *Autosaver {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	return &Autosaver{
		saver:    saver,
		delay:    opts.Delay,
		onStatus: opts.OnStatus,
		log:      applog.WithComponent("autosave"),
		state:    State{Status: StatusSaved},
	}
}

// MarkHydrated opens the gate. doc is what was just loaded and counts as already persisted.
func (a *Autosaver) MarkHydrated(doc domain.Document) {
	data, _ := json.Marshal(doc)
	a.flushMu.Lock()
	a.lastJSON = string(data)
	a.flushMu.Unlock()

	a.mu.Lock()
	a.hydrated = true
	a.state.LastSave = time.Now()
	a.mu.Unlock()
}

// Schedule records doc as the latest state and restarts the debounce timer.
// Calls before MarkHydrated or after Stop are ignored.
func (a *Autosaver) Schedule(doc domain.Document) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.hydrated || a.stopped || doc == nil {
		return
	}
	a.pending = doc
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

func (a *Autosaver) fire() {
	// Errors are reflected in the status; the next Schedule retries.
	_ = a.Flush(context.Background())
}

// Flush saves the pending document now, if there is one and it differs from the last save.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	a.mu.Lock()
	doc := a.pending
	a.pending = nil
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	hydrated := a.hydrated
	a.mu.Unlock()
	if doc == nil || !hydrated {
		return nil
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if string(data) == a.lastJSON {
		return nil
	}

	a.setState(func(s *State) { s.Status = StatusSaving })
	res, err := a.saver.Save(ctx, doc)
	if err != nil {
		a.log.Error("autosave failed", slog.Any("err", err))
		a.mu.Lock()
		if a.pending == nil {
			a.pending = doc
		}
		a.mu.Unlock()
		a.setState(func(s *State) {
			s.Status = StatusError
			s.Err = err
		})
		return err
	}
	a.lastJSON = string(data)
	a.setState(func(s *State) {
		s.Status = StatusSaved
		s.Err = nil
		s.Skipped = res.Skipped
		s.LastSave = time.Now()
	})
	return nil
}

// Stop cancels the pending timer and waits for an in-flight save. Later Schedule calls are ignored.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	a.stopped = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	a.flushMu.Lock()
	a.flushMu.Unlock()
}

// Status returns the current indicator state.
func (a *Autosaver) Status() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Autosaver) setState(fn func(*State)) {
	a.mu.Lock()
	fn(&a.state)
	st := a.state
	a.mu.Unlock()
	if a.onStatus != nil {
		a.onStatus(st)
	}
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package editor holds the live editing session: the current document, its undo history,
// the selection on the open page and preview mode. Every change is handed to a Scheduler
// (the autosaver); committed changes are also pushed to history.
package editor

import (
	"log/slog"
	"reflect"
	"sync"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/idgen"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/undo"
)

// Scheduler receives every new live document. *autosave.Autosaver implements it.
type Scheduler interface {
	Schedule(doc domain.Document)
}

type Options struct {
	History   *undo.Manager
	Scheduler Scheduler
	Router    Router
	NewID     idgen.Generator
	// Page is the page open at start; empty means home.
	Page domain.PageID
}

// Session is the single owner and writer of the live document.
// It is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	doc     domain.Document
	page    domain.PageID
	history *undo.Manager
	sched   Scheduler
	router  Router
	newID   idgen.Generator
	sel     Selection
	preview bool
	log     *slog.Logger
}

// NewSession starts a session on doc and seeds the history with it.
func NewSession(doc domain.Document, opts Options) *Session {
	if doc == nil {
		doc = domain.InitialDocument()
	}
	doc = domain.Normalize(doc)
	if opts.History == nil {
		opts.History = undo.NewManager(undo.Config{})
	}
	if opts.Router == nil {
		opts.Router = NopRouter{}
	}
	if opts.NewID == nil {
		opts.NewID = idgen.Default
	}
	if !opts.Page.Valid() {
		opts.Page = domain.PageHome
	}
	opts.History.Reset(doc)
	return &Session{
		doc:     doc,
		page:    opts.Page,
		history: opts.History,
		sched:   opts.Scheduler,
		router:  opts.Router,
		newID:   opts.NewID,
		log:     applog.WithComponent("editor"),
	}
}

// Document returns an isolated copy of the live document.
func (s *Session) Document() domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Element looks up an element on page in the live document.
func (s *Session) Element(page domain.PageID, id string) (domain.Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.FindElement(page, id)
}

// History exposes the undo manager.
func (s *Session) History() *undo.Manager { return s.history }

// Page returns the open page.
func (s *Session) Page() domain.PageID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// ChangePage records a navigation. The selection is always cleared, even when page is unchanged.
func (s *Session) ChangePage(page domain.PageID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Clear()
	if !page.Valid() {
		return false
	}
	s.page = page
	return true
}

// apply installs next as the live document. Callers hold s.mu.
// Domain operations return their input on a no-op; such results are neither
// recorded nor scheduled.
func (s *Session) apply(next domain.Document, commit bool) {
	if sameDocument(next, s.doc) {
		return
	}
	s.doc = next
	if commit {
		s.history.Push(next)
	}
	if s.sched != nil {
		s.sched.Schedule(next)
	}
}

// AddElements appends one element per content payload and returns the new ids.
func (s *Session) AddElements(page domain.PageID, typ domain.ElementType, contents []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !page.Valid() || !typ.Valid() || len(contents) == 0 {
		return nil
	}
	var ids []string
	gen := func() string {
		id := s.newID()
		ids = append(ids, id)
		return id
	}
	s.apply(domain.AddElements(s.doc, page, typ, contents, gen), true)
	applog.WithPage(s.log, string(page)).Debug("elements added", slog.String("type", string(typ)), slog.Int("count", len(ids)))
	return ids
}

// AddText adds one placeholder text box and returns its id.
func (s *Session) AddText(page domain.PageID) string {
	ids := s.AddElements(page, domain.ElementText, []string{domain.DefaultTextLabel})
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// UpdateElement merges patch into one element. Live updates (commit=false) skip history.
func (s *Session) UpdateElement(page domain.PageID, id string, patch domain.ElementPatch, commit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(domain.UpdateElement(s.doc, page, id, patch), commit)
}

// MoveElements shifts every listed element by (dx, dy).
func (s *Session) MoveElements(page domain.PageID, ids []string, dx, dy float64, commit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(domain.MoveElements(s.doc, page, ids, dx, dy), commit)
}

// Commit pushes the live document to history. It ends a gesture or a text edit.
func (s *Session) Commit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Push(s.doc)
}

// DeleteElements removes ids from page and clears the selection.
func (s *Session) DeleteElements(page domain.PageID, ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(domain.DeleteElements(s.doc, page, ids), true)
	s.sel.Clear()
}

// SetBackground changes the background of page, or of every page when all is set.
func (s *Session) SetBackground(page domain.PageID, background string, bgType domain.BackgroundType, all bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(domain.SetBackground(s.doc, page, background, bgType, all), true)
}

// ShiftZIndex brings an element forward (delta > 0) or sends it backward.
func (s *Session) ShiftZIndex(page domain.PageID, id string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(domain.ShiftZIndex(s.doc, page, id, delta), true)
}

// SetLink sets or clears (empty link) the link of an element.
func (s *Session) SetLink(page domain.PageID, id, link string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(domain.SetLink(s.doc, page, id, link), true)
}

// SetText replaces the content of an element. Keystrokes arrive with commit=false;
// the edit is committed once, when the text box loses focus.
func (s *Session) SetText(page domain.PageID, id, text string, commit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(domain.SetText(s.doc, page, id, text), commit)
}

// SetFontSize changes the font size of a text element.
func (s *Session) SetFontSize(page domain.PageID, id string, size float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(domain.SetFontSize(s.doc, page, id, size), true)
}

// Replace swaps in a whole document, as after an import.
func (s *Session) Replace(doc domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Clear()
	s.apply(domain.Normalize(doc.Clone()), true)
	s.log.Info("document replaced", slog.Int("elements", domain.ContentSize(s.doc)))
}

// Undo moves one step back in history. It reports false when there is nothing to undo
// or the session is in preview mode.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preview {
		return false
	}
	doc, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.apply(doc, false)
	return true
}

// Redo moves one step forward in history, mirroring Undo.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preview {
		return false
	}
	doc, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.apply(doc, false)
	return true
}

// SetPreview switches between editing and preview. Entering preview clears the selection.
func (s *Session) SetPreview(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preview = on
	if on {
		s.sel.Clear()
	}
}

func (s *Session) Preview() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// ActivateLink follows the link of an element in preview mode.
// Internal pages are routed through Navigate and become the open page; http links open externally.
func (s *Session) ActivateLink(page domain.PageID, id string) bool {
	s.mu.Lock()
	if !s.preview {
		s.mu.Unlock()
		return false
	}
	el, found := s.doc.FindElement(page, id)
	if !found {
		s.mu.Unlock()
		return false
	}
	target, external, ok := LinkTarget(el.Link)
	if !ok {
		s.mu.Unlock()
		return false
	}
	if !external {
		s.page = target
		s.sel.Clear()
	}
	router := s.router
	s.mu.Unlock()

	if external {
		router.OpenExternal(el.Link)
	} else {
		router.Navigate(target)
	}
	return true
}

// Select replaces the selection with id, or toggles id when multi is set.
func (s *Session) Select(id string, multi bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if multi {
		s.sel.Toggle(id)
		return
	}
	s.sel.Set(id)
}

// AddToSelection adds ids without removing anything.
func (s *Session) AddToSelection(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Add(ids...)
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Clear()
}

// Selected returns the selected ids in selection order.
func (s *Session) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.IDs()
}

func (s *Session) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Has(id)
}

func sameDocument(a, b domain.Document) bool {
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"
	"sync"
	"testing"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/undo"
)

type recordingScheduler struct {
	mu   sync.Mutex
	docs []domain.Document
}

func (r *recordingScheduler) Schedule(doc domain.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
}

type recordingRouter struct {
	pages []domain.PageID
	urls  []string
}

func (r *recordingRouter) Navigate(p domain.PageID) { r.pages = append(r.pages, p) }
func (r *recordingRouter) OpenExternal(u string)    { r.urls = append(r.urls, u) }

func seq() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func newTestSession(t *testing.T) (*Session, *recordingScheduler, *recordingRouter) {
	t.Helper()
	sched := &recordingScheduler{}
	router := &recordingRouter{}
	s := NewSession(nil, Options{Scheduler: sched, Router: router, NewID: seq()})
	return s, sched, router
}

func TestAddTextOnHome(t *testing.T) {
	s, sched, _ := newTestSession(t)
	id := s.AddText(domain.PageHome)
	doc := s.Document()
	els := doc[domain.PageHome].Elements
	if len(els) != 1 || els[0].ID != id {
		t.Fatalf("expected one element with id %q, got %+v", id, els)
	}
	el := els[0]
	if el.ZIndex != 1 || el.X != 150 || el.Y != 150 || el.Content != "NOVA CAIXA DE TEXTO" {
		t.Fatalf("unexpected text element: %+v", el)
	}
	if len(sched.docs) != 1 {
		t.Fatalf("expected one scheduled save, got %d", len(sched.docs))
	}
	if !s.History().CanUndo() {
		t.Fatalf("add should be committed to history")
	}
}

func TestLiveUpdatesDoNotPushHistory(t *testing.T) {
	s, sched, _ := newTestSession(t)
	id := s.AddText(domain.PageHome)
	entriesBefore, _ := s.History().Stats()
	for i := 0; i < 20; i++ {
		s.MoveElements(domain.PageHome, []string{id}, 10, 0, false)
	}
	if entries, _ := s.History().Stats(); entries != entriesBefore {
		t.Fatalf("live moves pushed history: %d -> %d", entriesBefore, entries)
	}
	s.Commit()
	if entries, _ := s.History().Stats(); entries != entriesBefore+1 {
		t.Fatalf("commit should add exactly one entry, got %d -> %d", entriesBefore, entries)
	}
	if len(sched.docs) != 21 {
		t.Fatalf("every change should be scheduled, got %d", len(sched.docs))
	}
	el, _ := s.Element(domain.PageHome, id)
	if el.X != 350 {
		t.Fatalf("expected x=350 after 200px drag, got %v", el.X)
	}

	if !s.Undo() {
		t.Fatalf("undo should succeed")
	}
	el, _ = s.Element(domain.PageHome, id)
	if el.X != 150 {
		t.Fatalf("one undo should revert the whole drag, got x=%v", el.X)
	}
}

func TestUndoRedoThroughSession(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.AddText(domain.PageHome)
	s.SetBackground(domain.PageHome, "#000000", domain.BackgroundColor, true)
	if !s.Undo() {
		t.Fatalf("undo failed")
	}
	if got := s.Document()[domain.PageSobre].Background; got != domain.DefaultBackground {
		t.Fatalf("background should be reverted, got %q", got)
	}
	if !s.Redo() {
		t.Fatalf("redo failed")
	}
	if got := s.Document()[domain.PageMapa].Background; got != "#000000" {
		t.Fatalf("background should be reapplied, got %q", got)
	}
	s.Undo()
	s.Undo()
	if s.Undo() {
		t.Fatalf("undo past the start should report false")
	}
	if domain.ContentSize(s.Document()) != 0 {
		t.Fatalf("expected initial document")
	}
}

func TestDeleteClearsSelection(t *testing.T) {
	s, _, _ := newTestSession(t)
	ids := s.AddElements(domain.PageHome, domain.ElementImage, []string{"a", "b"})
	s.Select(ids[0], false)
	s.Select(ids[1], true)
	if len(s.Selected()) != 2 {
		t.Fatalf("expected two selected, got %v", s.Selected())
	}
	s.DeleteElements(domain.PageHome, []string{ids[0]})
	if len(s.Selected()) != 0 {
		t.Fatalf("delete should clear selection")
	}
	if domain.ContentSize(s.Document()) != 1 {
		t.Fatalf("expected one remaining element")
	}
}

func TestSelectReplaceAndToggle(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.Select("a", false)
	s.Select("b", false)
	if got := s.Selected(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("single select should replace, got %v", got)
	}
	s.Select("c", true)
	s.Select("b", true)
	if got := s.Selected(); len(got) != 1 || got[0] != "c" {
		t.Fatalf("multi select should toggle, got %v", got)
	}
	s.AddToSelection([]string{"c", "d"})
	if got := s.Selected(); len(got) != 2 || !s.IsSelected("d") {
		t.Fatalf("add should union, got %v", got)
	}
}

func TestChangePageClearsSelection(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.Select("x", false)
	if !s.ChangePage(domain.PageMapa) {
		t.Fatalf("ChangePage to a known page failed")
	}
	if s.Page() != domain.PageMapa || len(s.Selected()) != 0 {
		t.Fatalf("expected mapa with empty selection, got %s %v", s.Page(), s.Selected())
	}
	s.Select("y", false)
	if s.ChangePage(domain.PageID("blog")) {
		t.Fatalf("unknown page must be rejected")
	}
	if s.Page() != domain.PageMapa || len(s.Selected()) != 0 {
		t.Fatalf("rejected navigation should keep page and still clear selection")
	}
}

func TestReplaceNormalizesAndCommits(t *testing.T) {
	s, _, _ := newTestSession(t)
	imported := domain.Document{domain.PageHome: {Background: "#123456", BgType: domain.BackgroundColor, Elements: []domain.Element{{ID: "z", Type: domain.ElementText, ZIndex: 1}}}}
	s.Replace(imported)
	doc := s.Document()
	if len(doc) != len(domain.Pages) || doc[domain.PageHome].Background != "#123456" {
		t.Fatalf("replace should normalize the document: %+v", doc)
	}
	imported[domain.PageHome].Elements[0].Content = "mutated"
	if el, _ := s.Element(domain.PageHome, "z"); el.Content != "" {
		t.Fatalf("session aliases the imported document")
	}
	if !s.Undo() || domain.ContentSize(s.Document()) != 0 {
		t.Fatalf("replace should be undoable")
	}
}

func TestActivateLinkRoutes(t *testing.T) {
	s, _, router := newTestSession(t)
	ids := s.AddElements(domain.PageHome, domain.ElementImage, []string{"a", "b", "c"})
	s.SetLink(domain.PageHome, ids[0], "sobre")
	s.SetLink(domain.PageHome, ids[1], "https://example.org")
	s.SetLink(domain.PageHome, ids[2], "nowhere")

	if s.ActivateLink(domain.PageHome, ids[0]) {
		t.Fatalf("links must not activate outside preview mode")
	}
	s.SetPreview(true)
	if !s.ActivateLink(domain.PageHome, ids[1]) || len(router.urls) != 1 || router.urls[0] != "https://example.org" {
		t.Fatalf("external link not opened: %v", router.urls)
	}
	if !s.ActivateLink(domain.PageHome, ids[0]) || len(router.pages) != 1 || router.pages[0] != domain.PageSobre {
		t.Fatalf("internal link not routed: %v", router.pages)
	}
	if s.Page() != domain.PageSobre {
		t.Fatalf("open page should follow the link, got %s", s.Page())
	}
	if s.ActivateLink(domain.PageHome, ids[2]) {
		t.Fatalf("unknown internal target should not activate")
	}
	if s.Undo() {
		t.Fatalf("undo is disabled in preview mode")
	}
}

func TestStaleIDsAreHarmless(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.UpdateElement(domain.PageHome, "ghost", domain.ElementPatch{X: domain.Ptr(1.0)}, true)
	s.MoveElements(domain.PageID("blog"), []string{"ghost"}, 1, 1, true)
	s.ShiftZIndex(domain.PageHome, "ghost", 1)
	if domain.ContentSize(s.Document()) != 0 {
		t.Fatalf("stale ids must not create content")
	}
}

func TestSessionUsesProvidedHistory(t *testing.T) {
	h := undo.NewManager(undo.Config{MaxEntries: 3})
	s := NewSession(domain.InitialDocument(), Options{History: h, NewID: seq()})
	for i := 0; i < 5; i++ {
		s.AddText(domain.PageUtopia)
	}
	if entries, _ := h.Stats(); entries != 3 {
		t.Fatalf("expected history capped at 3, got %d", entries)
	}
}

func TestNoOpCommitsLeaveHistoryAlone(t *testing.T) {
	s, sched, _ := newTestSession(t)
	id := s.AddText(domain.PageHome)
	entries, _ := s.History().Stats()
	scheduled := len(sched.docs)

	s.DeleteElements(domain.PageHome, []string{"ghost"})
	s.UpdateElement(domain.PageHome, "ghost", domain.ElementPatch{X: domain.Ptr(5.0)}, true)
	s.MoveElements(domain.PageSobre, []string{id}, 10, 10, true)
	s.ShiftZIndex(domain.PageHome, id, -1)
	s.SetText(domain.PageHome, "ghost", "x", true)

	if got, _ := s.History().Stats(); got != entries {
		t.Fatalf("no-op commits pushed history: %d -> %d", entries, got)
	}
	if len(sched.docs) != scheduled {
		t.Fatalf("no-op commits scheduled saves: %d -> %d", scheduled, len(sched.docs))
	}
	if !s.Undo() || domain.ContentSize(s.Document()) != 0 {
		t.Fatalf("first undo should remove the added text")
	}
}

func TestSetTextLiveThenCommit(t *testing.T) {
	s, _, _ := newTestSession(t)
	id := s.AddText(domain.PageHome)
	entries, _ := s.History().Stats()

	for _, partial := range []string{"O", "Ol", "Olá"} {
		s.SetText(domain.PageHome, id, partial, false)
	}
	if got, _ := s.History().Stats(); got != entries {
		t.Fatalf("keystrokes pushed history: %d -> %d", entries, got)
	}
	s.Commit()
	el, _ := s.Element(domain.PageHome, id)
	if el.Content != "Olá" {
		t.Fatalf("unexpected content %q", el.Content)
	}
	if !s.Undo() {
		t.Fatalf("undo should succeed")
	}
	el, _ = s.Element(domain.PageHome, id)
	if el.Content != domain.DefaultTextLabel {
		t.Fatalf("undo should restore the placeholder, got %q", el.Content)
	}
}

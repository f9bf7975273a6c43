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
	"fmt"
	"testing"

	"pagebuilder/internal/domain"
)

func docWith(n int) domain.Document {
	contents := make([]string, n)
	for i := range contents {
		contents[i] = fmt.Sprintf("c%d", i)
	}
	i := 0
	return domain.AddElements(domain.InitialDocument(), domain.PageHome, domain.ElementText, contents, func() string {
		i++
		return fmt.Sprintf("id%d", i)
	})
}

func TestUndoReturnsToStateBeforeFirstPush(t *testing.T) {
	m := NewManager(Config{})
	m.Reset(domain.InitialDocument())
	const n = 7
	for i := 1; i <= n; i++ {
		m.Push(docWith(i))
	}
	var got domain.Document
	for i := 0; i < n; i++ {
		d, ok := m.Undo()
		if !ok {
			t.Fatalf("undo %d reported nothing to undo", i+1)
		}
		got = d
	}
	if domain.ContentSize(got) != 0 {
		t.Fatalf("expected initial document after %d undos, got %d elements", n, domain.ContentSize(got))
	}
	d, ok := m.Undo()
	if ok {
		t.Fatalf("extra undo should report false")
	}
	if domain.ContentSize(d) != 0 {
		t.Fatalf("extra undo should keep the oldest snapshot, got %d elements", domain.ContentSize(d))
	}
}

func TestRedoAfterUndo(t *testing.T) {
	m := NewManager(Config{})
	m.Reset(domain.InitialDocument())
	m.Push(docWith(1))
	m.Push(docWith(2))
	if _, ok := m.Redo(); ok {
		t.Fatalf("redo at the tip should report false")
	}
	m.Undo()
	d, ok := m.Redo()
	if !ok || domain.ContentSize(d) != 2 {
		t.Fatalf("redo expected 2 elements, got ok=%v size=%d", ok, domain.ContentSize(d))
	}
}

func TestPushTruncatesRedo(t *testing.T) {
	m := NewManager(Config{})
	m.Reset(domain.InitialDocument())
	m.Push(docWith(1))
	m.Push(docWith(2))
	m.Undo()
	m.Push(docWith(5))
	if m.CanRedo() {
		t.Fatalf("redo branch should be discarded after a push")
	}
	if entries, cursor := m.Stats(); entries != 3 || cursor != 2 {
		t.Fatalf("expected 3 entries at cursor 2, got entries=%d cursor=%d", entries, cursor)
	}
}

func TestCapRetainsMostRecent(t *testing.T) {
	m := NewManager(Config{MaxEntries: 30})
	for i := 1; i <= 35; i++ {
		m.Push(docWith(i))
	}
	entries, cursor := m.Stats()
	if entries != 30 || cursor != 29 {
		t.Fatalf("expected 30 entries at cursor 29, got entries=%d cursor=%d", entries, cursor)
	}
	var oldest domain.Document
	for m.CanUndo() {
		oldest, _ = m.Undo()
	}
	if got := domain.ContentSize(oldest); got != 6 {
		t.Fatalf("oldest retained snapshot should hold 6 elements, got %d", got)
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	m := NewManager(Config{})
	live := docWith(1)
	m.Reset(live)
	live[domain.PageHome].Elements[0].Content = "mutated"
	m.Push(docWith(2))
	d, _ := m.Undo()
	if d[domain.PageHome].Elements[0].Content != "c0" {
		t.Fatalf("snapshot aliased the live document: %q", d[domain.PageHome].Elements[0].Content)
	}
	d[domain.PageHome].Elements[0].Content = "again"
	d2, _ := m.Redo()
	d3, _ := m.Undo()
	if d3[domain.PageHome].Elements[0].Content != "c0" || domain.ContentSize(d2) != 2 {
		t.Fatalf("returned document aliased history storage")
	}
}

func TestEmptyHistory(t *testing.T) {
	m := NewManager(Config{})
	if d, ok := m.Undo(); ok || d != nil {
		t.Fatalf("empty history undo should be a no-op")
	}
	if d, ok := m.Redo(); ok || d != nil {
		t.Fatalf("empty history redo should be a no-op")
	}
	m.Push(docWith(1))
	if m.CanUndo() {
		t.Fatalf("single snapshot should not be undoable")
	}
}

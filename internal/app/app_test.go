/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pagebuilder/internal/config"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/export"
	"pagebuilder/internal/storage"
)

func testConfig(t *testing.T) config.AppConfig {
	t.Helper()
	root := t.TempDir()
	cfg := config.Defaults()
	cfg.Storage.DataDir = filepath.Join(root, "db")
	cfg.Storage.BackupDir = filepath.Join(root, "emergency")
	// Long enough that only Save and Close write.
	cfg.Editor.AutosaveDelayMs = 3_600_000
	return cfg
}

func mustOpen(t *testing.T, cfg config.AppConfig) *App {
	t.Helper()
	a, err := Open(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return a
}

func mustClose(t *testing.T, a *App) {
	t.Helper()
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpenWithoutDataStartsWithInitialLayout(t *testing.T) {
	a := mustOpen(t, testConfig(t))
	defer mustClose(t, a)

	if a.Source() != storage.SourceNone {
		t.Fatalf("expected no source, got %s", a.Source())
	}
	doc := a.Session().Document()
	if len(doc) != len(domain.Pages) {
		t.Fatalf("expected %d pages, got %d", len(domain.Pages), len(doc))
	}
	if domain.ContentSize(doc) != 0 {
		t.Fatalf("expected empty document")
	}
	if a.Session().History().CanUndo() {
		t.Fatalf("fresh history must not be undoable")
	}
}

func TestEditsPersistAcrossReopen(t *testing.T) {
	cfg := testConfig(t)
	a := mustOpen(t, cfg)
	id := a.Session().AddText(domain.PageHome)
	mustClose(t, a)

	b := mustOpen(t, cfg)
	defer mustClose(t, b)
	if b.Source() != storage.SourcePrimary {
		t.Fatalf("expected primary source, got %s", b.Source())
	}
	el, ok := b.Session().Element(domain.PageHome, id)
	if !ok {
		t.Fatalf("element %s not restored", id)
	}
	if el.Content != domain.DefaultTextLabel {
		t.Fatalf("unexpected content %q", el.Content)
	}
	if b.Session().History().CanUndo() {
		t.Fatalf("history must not survive a reopen")
	}
}

func TestOpenFallsBackToBackup(t *testing.T) {
	cfg := testConfig(t)
	a := mustOpen(t, cfg)
	a.Session().AddText(domain.PageSobre)
	mustClose(t, a)

	if err := os.RemoveAll(cfg.Storage.DataDir); err != nil {
		t.Fatalf("remove data dir: %v", err)
	}
	b := mustOpen(t, cfg)
	defer mustClose(t, b)
	if b.Source() != storage.SourceBackup {
		t.Fatalf("expected backup source, got %s", b.Source())
	}
	if n := len(b.Session().Document()[domain.PageSobre].Elements); n != 1 {
		t.Fatalf("expected 1 element on sobre, got %d", n)
	}
}

func TestWipeIsRefusedOnClose(t *testing.T) {
	cfg := testConfig(t)
	a := mustOpen(t, cfg)
	for i := 0; i < 6; i++ {
		a.Session().AddText(domain.PageHome)
	}
	mustClose(t, a)

	b := mustOpen(t, cfg)
	ids := make([]string, 0, 6)
	for _, el := range b.Session().Document()[domain.PageHome].Elements {
		ids = append(ids, el.ID)
	}
	b.Session().DeleteElements(domain.PageHome, ids)
	mustClose(t, b)
	if !b.Status().Skipped {
		t.Fatalf("expected the empty save to be skipped")
	}

	c := mustOpen(t, cfg)
	defer mustClose(t, c)
	if n := domain.ContentSize(c.Session().Document()); n != 6 {
		t.Fatalf("expected 6 elements to survive, got %d", n)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	a := mustOpen(t, testConfig(t))
	defer mustClose(t, a)
	a.Session().AddText(domain.PageHome)
	a.Session().SetBackground(domain.PageMapa, "#123456", domain.BackgroundColor, false)
	want := a.Session().Document()

	path, err := a.Export(t.TempDir())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	a.Session().AddText(domain.PageHome)
	if err := a.Import(path); err != nil {
		t.Fatalf("Import: %v", err)
	}
	got := a.Session().Document()
	if domain.ContentSize(got) != domain.ContentSize(want) || got[domain.PageMapa].Background != "#123456" {
		t.Fatalf("import did not restore the exported document")
	}
}

func TestImportFailureLeavesDocumentAlone(t *testing.T) {
	a := mustOpen(t, testConfig(t))
	defer mustClose(t, a)
	a.Session().AddText(domain.PageHome)

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	err := a.Import(bad)
	if !errors.Is(err, export.ErrImportParse) {
		t.Fatalf("expected ErrImportParse, got %v", err)
	}
	if n := domain.ContentSize(a.Session().Document()); n != 1 {
		t.Fatalf("document changed after failed import: %d elements", n)
	}
}

func TestHistoryLimitFromConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Editor.HistoryLimit = 3
	a := mustOpen(t, cfg)
	defer mustClose(t, a)
	for i := 0; i < 5; i++ {
		a.Session().AddText(domain.PageHome)
	}
	if entries, _ := a.Session().History().Stats(); entries != 3 {
		t.Fatalf("expected 3 history entries, got %d", entries)
	}
}

func TestUnknownIDStrategyFailsOpen(t *testing.T) {
	cfg := testConfig(t)
	cfg.Editor.IDStrategy = "sequential"
	if _, err := Open(context.Background(), cfg, Options{}); err == nil {
		t.Fatalf("expected an error for an unknown id strategy")
	}
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package app wires storage, history, autosave, the editing session and the gesture
// controller into one host object.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"pagebuilder/internal/autosave"
	"pagebuilder/internal/config"
	"pagebuilder/internal/crash"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/editor"
	"pagebuilder/internal/export"
	"pagebuilder/internal/gesture"
	"pagebuilder/internal/idgen"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/storage"
	"pagebuilder/internal/undo"
)

type Options struct {
	Router editor.Router
	// OnStatus receives every autosave indicator change.
	OnStatus func(autosave.State)
}

// App is a running builder instance.
type App struct {
	cfg       config.AppConfig
	store     *storage.Store
	persister *storage.Persister
	saver     *autosave.Autosaver
	session   *editor.Session
	gestures  *gesture.Controller
	source    storage.LoadSource
	log       *slog.Logger
}

// Open loads the persisted document (primary, then backup, then the initial layout),
// seeds the history with it and opens the autosave gate.
func Open(ctx context.Context, cfg config.AppConfig, opts Options) (*App, error) {
	l := applog.WithComponent("app")
	newID, err := idgen.FromName(cfg.Editor.IDStrategy)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	store := storage.NewStore(cfg.Storage.DataDir)
	backup := storage.NewBackup(cfg.Storage.BackupDir, cfg.Storage.BackupMaxChars)
	persister := storage.NewPersister(store, storage.NewWriteQueue(), backup, cfg.Storage.WipeGuardMin)

	doc, source, err := persister.Load(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if doc == nil {
		doc = domain.InitialDocument()
	}

	saver := autosave.New(persister, autosave.Options{Delay: cfg.Editor.AutosaveDelay(), OnStatus: opts.OnStatus})
	session := editor.NewSession(doc, editor.Options{
		History:   undo.NewManager(undo.Config{MaxEntries: cfg.Editor.HistoryLimit}),
		Scheduler: saver,
		Router:    opts.Router,
		NewID:     newID,
	})
	saver.MarkHydrated(session.Document())

	l.Info("opened", slog.String("source", source.String()), slog.Int("elements", domain.ContentSize(doc)))
	return &App{
		cfg:       cfg,
		store:     store,
		persister: persister,
		saver:     saver,
		session:   session,
		gestures:  gesture.New(session, gesture.Options{ToolbarOffset: cfg.Editor.ToolbarOffset}),
		source:    source,
		log:       l,
	}, nil
}

func (a *App) Session() *editor.Session { return a.session }
func (a *App) Gestures() *gesture.Controller { return a.gestures }
func (a *App) Autosave() *autosave.Autosaver { return a.saver }
func (a *App) Persister() *storage.Persister { return a.persister }
func (a *App) Source() storage.LoadSource { return a.source }
func (a *App) Status() autosave.State { return a.saver.Status() }
func (a *App) Config() config.AppConfig { return a.cfg }

// CrashTarget describes what crash.Recover should rescue for this instance.
func (a *App) CrashTarget() *crash.Target {
	return &crash.Target{
		Dir:      filepath.Join(a.cfg.Storage.BackupDir, "crash"),
		Backup:   a.persister.Backup(),
		Document: a.session.Document,
	}
}

// Save flushes any pending autosave now.
func (a *App) Save(ctx context.Context) error {
	return a.saver.Flush(ctx)
}

// Export writes the live document as JSON to path and returns the file written.
func (a *App) Export(path string) (string, error) {
	return export.ExportFile(path, a.session.Document(), time.Now())
}

// Import replaces the live document with the file at path. On failure nothing changes.
func (a *App) Import(path string) error {
	doc, err := export.ImportFile(path)
	if err != nil {
		return err
	}
	a.session.Replace(doc)
	a.log.Info("imported", slog.String("path", path), slog.Int("elements", domain.ContentSize(doc)))
	return nil
}

// Close stops autosave, writes whatever is still pending and closes the store.
func (a *App) Close(ctx context.Context) error {
	a.saver.Stop()
	ferr := a.saver.Flush(ctx)
	cerr := a.store.Close()
	return errors.Join(ferr, cerr)
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"log/slog"

	"pagebuilder/internal/domain"
	applog "pagebuilder/internal/log"
)

// DefaultWipeGuardMin is the persisted element count above which an empty save is refused.
const DefaultWipeGuardMin = 5

// LoadSource tells where a loaded document came from.
type LoadSource int

const (
	SourceNone LoadSource = iota
	SourcePrimary
	SourceBackup
)

func (s LoadSource) String() string {
	switch s {
	case SourcePrimary:
		return "primary"
	case SourceBackup:
		return "backup"
	default:
		return "none"
	}
}

// SaveResult describes an accepted Save call.
type SaveResult struct {
	// Skipped is set when the wipe guard refused the write; nothing was persisted.
	Skipped bool
	// BackupWritten reports whether the emergency copy was refreshed.
	BackupWritten bool
}

// Persister composes the primary Store, the WriteQueue and the Backup channel.
type Persister struct {
	store    *Store
	queue    *WriteQueue
	backup   *Backup
	guardMin int
	log      *slog.Logger
}

func NewPersister(store *Store, queue *WriteQueue, backup *Backup, wipeGuardMin int) *Persister {
	if queue == nil {
		queue = NewWriteQueue()
	}
	if wipeGuardMin <= 0 {
		wipeGuardMin = DefaultWipeGuardMin
	}
	return &Persister{store: store, queue: queue, backup: backup, guardMin: wipeGuardMin, log: applog.WithComponent("storage")}
}

// IsWipe reports whether replacing existing with candidate would erase a document
// holding more than limit elements.
func IsWipe(existing, candidate domain.Document, limit int) bool {
	return domain.ContentSize(existing) > limit && domain.ContentSize(candidate) == 0
}

// Save persists doc through the write queue. A nil document is a no-op.
// The existing record is read straight from the store inside the queued operation;
// an unreadable record counts as no existing data.
func (p *Persister) Save(ctx context.Context, doc domain.Document) (SaveResult, error) {
	if doc == nil {
		return SaveResult{}, nil
	}
	l := applog.WithOperation(p.log, "save")
	var res SaveResult
	err := p.queue.Enqueue(ctx, func(ctx context.Context) error {
		res = SaveResult{}
		existing, found, lerr := p.store.Load(ctx)
		if lerr != nil {
			l.Debug("existing record unreadable, guard disabled", slog.Any("err", lerr))
		}
		if found && IsWipe(existing, doc, p.guardMin) {
			res.Skipped = true
			l.Warn("refusing to replace persisted document with an empty one",
				slog.Int("existing", domain.ContentSize(existing)))
			return nil
		}
		if p.backup != nil {
			ok, berr := p.backup.Write(doc)
			if berr != nil {
				l.Warn("backup write failed", slog.Any("err", berr))
			}
			res.BackupWritten = ok
		}
		return p.store.Save(ctx, doc)
	})
	if err != nil {
		return SaveResult{}, err
	}
	l.Debug("saved", slog.Int("elements", domain.ContentSize(doc)), slog.Bool("skipped", res.Skipped))
	return res, nil
}

// Load returns the primary record, else the backup, else SourceNone.
// Store failures degrade to the backup; only a cancelled ctx is returned as an error.
func (p *Persister) Load(ctx context.Context) (domain.Document, LoadSource, error) {
	l := applog.WithOperation(p.log, "load")
	doc, found, err := p.store.Load(ctx)
	switch {
	case err != nil:
		l.Warn("primary store unavailable, trying backup", slog.Any("err", err))
	case found:
		return domain.Normalize(doc), SourcePrimary, nil
	}
	if cerr := ctx.Err(); cerr != nil {
		return nil, SourceNone, cerr
	}
	if p.backup != nil {
		if doc, ok := p.backup.Read(); ok {
			l.Info("restored from backup", slog.String("path", p.backup.Path()))
			return domain.Normalize(doc), SourceBackup, nil
		}
	}
	return nil, SourceNone, nil
}

// Store returns the underlying primary store.
func (p *Persister) Store() *Store { return p.store }

// Backup returns the secondary channel, or nil.
func (p *Persister) Backup() *Backup { return p.backup }

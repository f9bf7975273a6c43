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
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"unicode/utf8"

	"pagebuilder/internal/domain"
	applog "pagebuilder/internal/log"
)

// BackupKey names the emergency copy; the file is <dir>/<BackupKey>.json.
const BackupKey = "utopia_urbana_emergency_backup"

// DefaultBackupMaxChars is the size limit applied when none is configured.
const DefaultBackupMaxChars = 4_000_000

// Backup is the secondary storage channel: one JSON file outside the database directory.
type Backup struct {
	dir      string
	maxChars int
}

func NewBackup(dir string, maxChars int) *Backup {
	if maxChars <= 0 {
		maxChars = DefaultBackupMaxChars
	}
	return &Backup{dir: dir, maxChars: maxChars}
}

// Path returns the full path of the backup file.
func (b *Backup) Path() string {
	return filepath.Join(b.dir, BackupKey+".json")
}

// Write replaces the backup with doc. Documents whose serialized form has maxChars
// characters or more are not written; ok reports whether the file was replaced.
func (b *Backup) Write(doc domain.Document) (ok bool, err error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("marshal backup: %w", err)
	}
	if n := utf8.RuneCount(data); n >= b.maxChars {
		applog.WithComponent("storage").Debug("backup skipped, document too large",
			slog.Int("chars", n), slog.Int("max", b.maxChars))
		return false, nil
	}
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return false, fmt.Errorf("ensure backup dir: %w", err)
	}
	// Transactional write: to temp file in same directory, then rename over target
	target := b.Path()
	temp := filepath.Join(b.dir, fmt.Sprintf(".%s.tmp-%d-%d", BackupKey, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		_ = os.Remove(temp)
		return false, fmt.Errorf("write temp backup: %w", werr)
	}
	if rerr := os.Rename(temp, target); rerr != nil {
		// attempt cleanup temp
		_ = os.Remove(temp)
		return false, fmt.Errorf("replace backup: %w", rerr)
	}
	return true, nil
}

// Read returns the backed-up document. Missing, unreadable or corrupt files all mean no data.
func (b *Backup) Read() (domain.Document, bool) {
	data, err := os.ReadFile(b.Path())
	if err != nil {
		return nil, false
	}
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		applog.WithComponent("storage").Warn("ignoring corrupt backup", slog.String("path", b.Path()), slog.Any("err", err))
		return nil, false
	}
	return doc, true
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

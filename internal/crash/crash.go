/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report plus an emergency copy of the live document.
package crash

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"pagebuilder/internal/domain"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/storage"
	"pagebuilder/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Target describes what to rescue on a panic. Every field is optional.
type Target struct {
	// Dir receives the crash report; the system temp dir is used when empty.
	Dir string
	// Backup receives the emergency copy of the document.
	Backup *storage.Backup
	// Document returns the live document. *editor.Session's Document method fits.
	Document func() domain.Document
}

// Recover captures a panic, logs an error with stacktrace,
// writes an error report file, and saves the live document to the backup channel.
// Documents too large for the backup are written next to the report instead.
//
// Usage: defer crash.Recover(t)
func Recover(t *Target) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, _ := writeReport(t, r, stack)
		if path, err := rescueDocument(t, reportPath); err != nil {
			l.Error("emergency copy failed", slog.Any("err", err))
		} else if path != "" {
			l.Info("emergency copy written", slog.String("path", path))
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		// Exit with a non-zero code to indicate failure in CLI context.
		exitFn(2)
	}
}

func reportDir(t *Target) string {
	if t != nil && t.Dir != "" {
		_ = os.MkdirAll(t.Dir, 0o755)
		return t.Dir
	}
	return os.TempDir()
}

func writeReport(t *Target, panicVal any, stack []byte) (string, error) {
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(reportDir(t), fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Page Builder Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if t != nil && t.Backup != nil {
		_, _ = fmt.Fprintf(&buf, "Backup: %s\n", t.Backup.Path())
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}

// rescueDocument returns the path of the copy it wrote, or "" when there was nothing to save.
func rescueDocument(t *Target, reportPath string) (path string, err error) {
	if t == nil || t.Document == nil {
		return "", nil
	}
	// The document getter may itself be what panicked.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read live document: %v", r)
		}
	}()
	doc := t.Document()
	if doc == nil {
		return "", nil
	}
	if t.Backup != nil {
		ok, werr := t.Backup.Write(doc)
		if werr == nil && ok {
			return t.Backup.Path(), nil
		}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	path = reportPath[:len(reportPath)-len(filepath.Ext(reportPath))] + ".json"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return path, nil
}

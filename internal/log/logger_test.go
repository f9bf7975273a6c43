/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestInitJSONFileHandler verifies that file logging writes JSON records carrying
// the static app attrs and the contextual component/op/page attrs.
func TestInitJSONFileHandler(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "pb.log")
	Init(Options{Level: "debug", Format: "console", File: fpath, Writer: &bytes.Buffer{}})

	l := WithPage(WithOperation(WithComponent("storage"), "save"), "home")
	l.Info("record written", slog.Int("elements", 3))

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	if m["app"] != "pagebuilder" {
		t.Fatalf("missing app attr: %v", m["app"])
	}
	if m["component"] != "storage" || m["op"] != "save" || m["page"] != "home" {
		t.Fatalf("context attrs mismatch: %v", m)
	}
	if m["elements"] != float64(3) {
		t.Fatalf("elements attr mismatch: %v", m["elements"])
	}
}

func TestConsoleHandlerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Writer: &buf})
	L().Info("hidden")
	L().Warn("visible", slog.String("k", "v"))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "WRN visible") || !strings.Contains(out, "k=v") {
		t.Fatalf("unexpected console output: %q", out)
	}
}

func TestConsoleHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Writer: &buf})
	L().WithGroup("save").Debug("grouped", slog.Int("n", 42))
	if !strings.Contains(buf.String(), "save.n=42") {
		t.Fatalf("expected grouped key in output, got %q", buf.String())
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	t.Setenv(EnvFormat, "json")
	t.Setenv(EnvSource, "true")
	t.Setenv(EnvFile, "")
	o := FromEnv()
	if o.Level != "debug" || o.Format != "json" || !o.AddSource {
		t.Fatalf("unexpected options from env: %+v", o)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted as YAML in the user scope.
// Environment variables are read-only overrides applied after the file.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type StorageConfig struct {
	// DataDir holds the primary SQLite store.
	DataDir string `yaml:"data_dir"`
	// BackupDir holds the secondary emergency copy; kept apart from DataDir on purpose.
	BackupDir string `yaml:"backup_dir"`
	// BackupMaxChars skips the secondary copy when the serialized document is this large or larger.
	BackupMaxChars int `yaml:"backup_max_chars"`
	// WipeGuardMin is the persisted element count above which an empty save is refused.
	WipeGuardMin int `yaml:"wipe_guard_min"`
}

type EditorConfig struct {
	HistoryLimit    int     `yaml:"history_limit"`
	AutosaveDelayMs int     `yaml:"autosave_delay_ms"`
	ToolbarOffset   float64 `yaml:"toolbar_offset"`
	IDStrategy      string  `yaml:"id_strategy"` // "nanoid" | "uuid"
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Storage       StorageConfig `yaml:"storage"`
	Editor        EditorConfig  `yaml:"editor"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults. Directories are resolved lazily by Load.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Storage:       StorageConfig{BackupMaxChars: 4_000_000, WipeGuardMin: 5},
		Editor:        EditorConfig{HistoryLimit: 30, AutosaveDelayMs: 1000, ToolbarOffset: 64, IDStrategy: "nanoid"},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath    = "PB_CONFIG"
	EnvDataDir       = "PB_DATA_DIR"
	EnvBackupDir     = "PB_BACKUP_DIR"
	EnvAutosaveDelay = "PB_AUTOSAVE_DELAY_MS"
	EnvHistoryLimit  = "PB_HISTORY_LIMIT"
	EnvIDStrategy    = "PB_ID_STRATEGY"
	EnvLogLevel      = "PB_LOG_LEVEL"
	EnvLogFormat     = "PB_LOG_FORMAT"
	EnvLogSource     = "PB_LOG_SOURCE"
	EnvLogFile       = "PB_LOG_FILE"
)

// ConfigPath returns the per-user config file path, or PB_CONFIG when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	base, err := userDir(configRoot)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.yaml"), nil
}

type dirKind int

const (
	configRoot dirKind = iota
	dataRoot
)

func userDir(kind dirKind) (string, error) {
	home := os.Getenv("HOME")
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "PageBuilder")
	case "darwin":
		base = filepath.Join(home, "Library", "Application Support", "PageBuilder")
	default:
		if kind == dataRoot {
			if x := os.Getenv("XDG_DATA_HOME"); x != "" {
				base = filepath.Join(x, "pagebuilder")
				break
			}
			base = filepath.Join(home, ".local", "share", "pagebuilder")
			break
		}
		base = filepath.Join(home, ".config", "pagebuilder")
	}
	if strings.TrimSpace(base) == "" {
		return "", errors.New("cannot resolve user directory")
	}
	return base, nil
}

// Load reads the user config file (if present), applies defaults and environment overrides,
// and fills in directory defaults.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	if err := resolveDirs(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg as YAML to the user config path.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func resolveDirs(cfg *AppConfig) error {
	if cfg.Storage.DataDir != "" && cfg.Storage.BackupDir != "" {
		return nil
	}
	base, err := userDir(dataRoot)
	if err != nil {
		return err
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = filepath.Join(base, "db")
	}
	if cfg.Storage.BackupDir == "" {
		cfg.Storage.BackupDir = filepath.Join(base, "emergency")
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if s := strings.TrimSpace(src.Storage.DataDir); s != "" {
		dst.Storage.DataDir = s
	}
	if s := strings.TrimSpace(src.Storage.BackupDir); s != "" {
		dst.Storage.BackupDir = s
	}
	if src.Storage.BackupMaxChars > 0 {
		dst.Storage.BackupMaxChars = src.Storage.BackupMaxChars
	}
	if src.Storage.WipeGuardMin > 0 {
		dst.Storage.WipeGuardMin = src.Storage.WipeGuardMin
	}
	if src.Editor.HistoryLimit > 0 {
		dst.Editor.HistoryLimit = src.Editor.HistoryLimit
	}
	if src.Editor.AutosaveDelayMs > 0 {
		dst.Editor.AutosaveDelayMs = src.Editor.AutosaveDelayMs
	}
	if src.Editor.ToolbarOffset != 0 {
		dst.Editor.ToolbarOffset = src.Editor.ToolbarOffset
	}
	if s := strings.ToLower(strings.TrimSpace(src.Editor.IDStrategy)); s != "" {
		dst.Editor.IDStrategy = s
	}
	if s := strings.TrimSpace(src.Logging.Level); s != "" {
		dst.Logging.Level = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.Logging.Format); s != "" {
		dst.Logging.Format = strings.ToLower(s)
	}
	dst.Logging.Source = src.Logging.Source
	if s := strings.TrimSpace(src.Logging.File); s != "" {
		dst.Logging.File = s
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackupDir)); v != "" {
		cfg.Storage.BackupDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutosaveDelay)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Editor.AutosaveDelayMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryLimit)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Editor.HistoryLimit = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvIDStrategy)); v != "" {
		cfg.Editor.IDStrategy = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var name string
	switch key {
	case "storage.data_dir":
		name = EnvDataDir
	case "storage.backup_dir":
		name = EnvBackupDir
	case "editor.autosave_delay_ms":
		name = EnvAutosaveDelay
	case "editor.history_limit":
		name = EnvHistoryLimit
	case "editor.id_strategy":
		name = EnvIDStrategy
	case "logging.level":
		name = EnvLogLevel
	case "logging.format":
		name = EnvLogFormat
	case "logging.source":
		name = EnvLogSource
	case "logging.file":
		name = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// AutosaveDelay returns the debounce delay, falling back to the default when unset.
func (e EditorConfig) AutosaveDelay() time.Duration {
	if e.AutosaveDelayMs <= 0 {
		return time.Duration(Defaults().Editor.AutosaveDelayMs) * time.Millisecond
	}
	return time.Duration(e.AutosaveDelayMs) * time.Millisecond
}

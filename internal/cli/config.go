// Copyright 2026 Repobrowse Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"repobrowse/internal/storage"
)

// getConfigDir returns the config directory path.
// Uses REPOBROWSE_CONFIG_DIR env var if set, otherwise defaults to ~/.repobrowse.
// This is computed dynamically to support test isolation.
func getConfigDir() string {
	if dir := os.Getenv("REPOBROWSE_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".repobrowse")
}

// ConfigDir returns the configuration directory path
func ConfigDir() string {
	return getConfigDir()
}

// SettingsPath returns the global settings file path
func SettingsPath() string {
	return filepath.Join(getConfigDir(), "settings.yaml")
}

// IngestLockPath returns the advisory lock file path guarding writes to the
// given index file.
func IngestLockPath(indexPath string) string {
	return indexPath + ".lock"
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	return os.MkdirAll(getConfigDir(), 0700)
}

// defaultSettingsTemplate is written on first run so the knobs are
// discoverable without documentation.
const defaultSettingsTemplate = `# repobrowse global settings
#
# page_size: assets per page for 'asset list' (default 10)
# delete_batch_size: nodes removed per round by 'repo rm' (default 1000)
# busy_timeout: SQLite busy_timeout in milliseconds (default 30000)
# ingest_lock: serialize ingest runs per index file with a lock file (default true)
# logging: none, warn, info, debug, trace
page_size: 10
delete_batch_size: 1000
busy_timeout: 30000
ingest_lock: true
logging: none
`

// InitConfigDir initializes the config directory with default files
func InitConfigDir() error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	settingsPath := SettingsPath()
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := os.WriteFile(settingsPath, []byte(defaultSettingsTemplate), 0600); err != nil {
			return fmt.Errorf("failed to create default settings: %w", err)
		}
	}
	return nil
}

// Settings represents the global configuration from {config_dir}/settings.yaml
type Settings struct {
	PageSize        int      `yaml:"page_size"`         // default: storage.DefaultPageSize
	DeleteBatchSize int      `yaml:"delete_batch_size"` // default: 1000
	BusyTimeout     int      `yaml:"busy_timeout"`      // default: storage.DefaultBusyTimeout
	IngestLock      *bool    `yaml:"ingest_lock"`       // default: true (pointer to detect missing)
	Gitignore       *bool    `yaml:"gitignore"`         // default: true
	Includes        []string `yaml:"includes"`          // default: []
	Excludes        []string `yaml:"excludes"`          // default: []
	Logging         string   `yaml:"logging"`           // logging level: none, warn, info, debug, trace (case insensitive)
}

// ApplyDefaults fills zero-value fields with their defaults.
func (s *Settings) ApplyDefaults() {
	if s.PageSize <= 0 {
		s.PageSize = storage.DefaultPageSize
	}
	if s.DeleteBatchSize <= 0 {
		s.DeleteBatchSize = 1000
	}
	if s.BusyTimeout <= 0 {
		s.BusyTimeout = storage.DefaultBusyTimeout
	}
	if s.IngestLock == nil {
		t := true
		s.IngestLock = &t
	}
	if s.Gitignore == nil {
		t := true
		s.Gitignore = &t
	}
}

// IngestLockEnabled returns whether ingest locking is enabled (defaults to true).
func (s *Settings) IngestLockEnabled() bool {
	if s.IngestLock == nil {
		return true
	}
	return *s.IngestLock
}

// GitignoreEnabled returns whether gitignore filtering is enabled (defaults to true).
func (s *Settings) GitignoreEnabled() bool {
	if s.Gitignore == nil {
		return true
	}
	return *s.Gitignore
}

// LogLevel returns the normalized (lowercase) logging level.
func (s *Settings) LogLevel() string {
	return strings.ToLower(s.Logging)
}

// LoadSettings loads the global settings from {config_dir}/settings.yaml.
// A missing file yields the defaults.
func LoadSettings() (*Settings, error) {
	var s Settings
	data, err := os.ReadFile(SettingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			s.ApplyDefaults()
			return &s, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	s.ApplyDefaults()
	return &s, nil
}

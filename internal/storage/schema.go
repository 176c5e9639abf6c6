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

package storage

import (
	"database/sql"
	"os"
	"strconv"
	"strings"
)

const SchemaVersion = "1"

// Default busy_timeout in milliseconds (30 seconds)
const DefaultBusyTimeout = 30000

// EnvBusyTimeout overrides the SQLite busy_timeout for all index access
const EnvBusyTimeout = "REPOBROWSE_BUSY_TIMEOUT"

// configBusyTimeout is the config-file busy_timeout (set via SetConfigBusyTimeout)
var configBusyTimeout int

// SetConfigBusyTimeout sets the config-based busy_timeout value.
// This should be called after loading the config file; 0 is ignored.
func SetConfigBusyTimeout(timeout int) {
	configBusyTimeout = timeout
}

// GetBusyTimeout returns the busy_timeout value.
// Priority: env var > config file > default.
func GetBusyTimeout() int {
	if val := os.Getenv(EnvBusyTimeout); val != "" {
		if timeout, err := strconv.Atoi(val); err == nil && timeout > 0 {
			return timeout
		}
	}
	if configBusyTimeout > 0 {
		return configBusyTimeout
	}
	return DefaultBusyTimeout
}

// Schema SQL for the browse index file
const indexFileSchema = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_info (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- Component registry: logical package/version units
CREATE TABLE IF NOT EXISTS components (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    external_id TEXT NOT NULL UNIQUE,
    repository_name TEXT NOT NULL,
    format TEXT NOT NULL,
    name TEXT NOT NULL,
    version TEXT,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_components_repository ON components(repository_name);

-- Asset registry: individual files, optionally belonging to a component
CREATE TABLE IF NOT EXISTS assets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    external_id TEXT NOT NULL UNIQUE,
    repository_name TEXT NOT NULL,
    format TEXT NOT NULL,
    path TEXT NOT NULL,
    content_type TEXT,
    size INTEGER NOT NULL DEFAULT 0,
    component_id INTEGER,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (component_id) REFERENCES components(id)
);

CREATE INDEX IF NOT EXISTS idx_assets_repository ON assets(repository_name);

-- Materialized browse tree: one row per folder/leaf node
CREATE TABLE IF NOT EXISTS browse_nodes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    repository_name TEXT NOT NULL,
    format TEXT NOT NULL,
    path TEXT NOT NULL,
    parent_path TEXT NOT NULL,
    name TEXT NOT NULL,
    component_id INTEGER,
    asset_id INTEGER
);

-- Primary index that guarantees path uniqueness for nodes in a given
-- repository. This is the sole mutual-exclusion primitive of the tree.
CREATE UNIQUE INDEX IF NOT EXISTS idx_browse_nodes_coordinate
    ON browse_nodes(repository_name, parent_path, name);

-- Partial indexes skip nulls: we never query on a null component/asset id
CREATE INDEX IF NOT EXISTS idx_browse_nodes_component
    ON browse_nodes(component_id) WHERE component_id IS NOT NULL;

CREATE UNIQUE INDEX IF NOT EXISTS idx_browse_nodes_asset
    ON browse_nodes(asset_id) WHERE asset_id IS NOT NULL;
`

const initIndexFile = `
INSERT OR IGNORE INTO schema_info (key, value) VALUES ('version', ?);
INSERT OR IGNORE INTO schema_info (key, value) VALUES ('type', 'browse-index');
INSERT OR IGNORE INTO schema_info (key, value) VALUES ('created_at', datetime('now'));
`

// execStatements executes multiple SQL statements separated by semicolons.
// libsql driver doesn't support multi-statement Exec, so we split and execute individually.
func execStatements(db *sql.DB, sqlScript string, args ...interface{}) error {
	statements := splitStatements(sqlScript)
	argIdx := 0
	for _, stmt := range statements {
		if stmt == "" {
			continue
		}
		// Count placeholders in this statement
		placeholders := strings.Count(stmt, "?")
		stmtArgs := args[argIdx : argIdx+placeholders]
		argIdx += placeholders
		if _, err := db.Exec(stmt, stmtArgs...); err != nil {
			return err
		}
	}
	return nil
}

// splitStatements splits a SQL script into individual statements
func splitStatements(script string) []string {
	var statements []string
	var current strings.Builder

	lines := strings.Split(script, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		// Skip comments and empty lines
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			statements = append(statements, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	// Handle any remaining content
	if current.Len() > 0 {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

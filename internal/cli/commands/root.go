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

package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"repobrowse/internal/browse"
	"repobrowse/internal/cli"
	"repobrowse/internal/storage"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the version info for --version flag
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

// getVersionString returns the version string with build info
func getVersionString() string {
	buildDate := formatBuildDate(date)
	if strings.HasSuffix(version, "-dev") {
		// Dev build: include epoch and commit for troubleshooting
		return fmt.Sprintf("%s (%s, epoch: %s, commit: %s)", version, buildDate, date, commit)
	}
	// Prod build: version with date
	return fmt.Sprintf("%s (%s)", version, buildDate)
}

// formatBuildDate converts epoch timestamp to readable date
func formatBuildDate(epoch string) string {
	ts, err := strconv.ParseInt(epoch, 10, 64)
	if err != nil {
		return epoch
	}
	return time.Unix(ts, 0).Format("2006-01-02")
}

// indexPath is the --index persistent flag, shared by every subcommand
// that touches an index file.
var indexPath string

// settings holds the loaded global settings after PersistentPreRunE.
var settings *cli.Settings

var rootCmd = &cobra.Command{
	Use:   "repobrowse",
	Short: "Hierarchical browse index over artifact repositories",
	Long: `Maintains a materialized browse tree over the components and assets of
artifact repositories, stored in a single SQLite index file. Supports
incremental node creation and pruning, directory ingestion, and paginated
listings.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		// Initialize config directory
		if err := cli.InitConfigDir(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		var err error
		settings, err = cli.LoadSettings()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		storage.SetConfigBusyTimeout(settings.BusyTimeout)
		configureLogging(settings.LogLevel())

		return nil
	},
}

// configureLogging maps the settings log level onto logrus. "none" or empty
// keeps the CLI quiet apart from command output.
func configureLogging(level string) {
	switch level {
	case "", "none":
		log.SetLevel(log.ErrorLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "trace":
		log.SetLevel(log.TraceLevel)
	default:
		log.SetLevel(log.ErrorLevel)
	}
}

// openIndex opens the index file named by --index.
func openIndex() (*storage.IndexFile, error) {
	if indexPath == "" {
		return nil, fmt.Errorf("no index file specified (use --index)")
	}
	f, err := storage.Open(indexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", indexPath, err)
	}
	return f, nil
}

// openManagers opens the index file and wires the browse manager over it.
func openManagers() (*storage.IndexFile, *browse.Manager, *storage.Registry, error) {
	f, err := openIndex()
	if err != nil {
		return nil, nil, nil, err
	}
	registry := f.Registry()
	manager := browse.NewManager(f.BrowseStore(), registry)
	return f, manager, registry, nil
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("repobrowse version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&indexPath, "index", "i", "", "Path to the .repobrowse index file")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

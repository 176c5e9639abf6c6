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
	"path/filepath"

	"github.com/spf13/cobra"

	"repobrowse/internal/storage"
)

var initCmd = &cobra.Command{
	Use:   "init <index-file>",
	Short: "Create a new browse index file",
	Long: `Create a new browse index file at the given path.

The index file is a self-contained SQLite database holding the component
and asset registry plus the materialized browse tree. Fails if the file
already exists.

Examples:
  # Create an index in the current directory
  repobrowse init repos.repobrowse

  # Create an index at an explicit location
  repobrowse init ~/data/repos.repobrowse`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	f, err := storage.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer f.Close()

	fmt.Printf("Initialized empty browse index in %s\n", path)
	return nil
}

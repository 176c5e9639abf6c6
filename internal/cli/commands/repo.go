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
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage repositories in the browse index",
	Long: `Manage repositories in the browse index.

Subcommands:
  rm   Remove every trace of a repository from the index`,
}

var repoRmSkipConfirm bool

var repoRmCmd = &cobra.Command{
	Use:   "rm <repository>",
	Short: "Remove every trace of a repository from the index",
	Long: `Delete all browse nodes, assets and components of a repository.

Nodes go in bounded batches so a huge repository never holds the
database for one long transaction; the batch size comes from
delete_batch_size in settings.yaml.`,
	Args: cobra.ExactArgs(1),
	RunE: runRepoRm,
}

func init() {
	repoRmCmd.Flags().BoolVarP(&repoRmSkipConfirm, "yes", "y", false, "Skip confirmation prompt")
	repoCmd.AddCommand(repoRmCmd)
	rootCmd.AddCommand(repoCmd)
}

func runRepoRm(cmd *cobra.Command, args []string) error {
	repositoryName := args[0]

	if !repoRmSkipConfirm {
		fmt.Printf("Remove repository %q from %s? [y/N] ", repositoryName, indexPath)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted")
			return nil
		}
	}

	f, manager, registry, err := openManagers()
	if err != nil {
		return err
	}
	defer f.Close()

	ctx := cmd.Context()

	nodes := 0
	for {
		removed, err := manager.DeleteByRepository(ctx, repositoryName, settings.DeleteBatchSize)
		if err != nil {
			return fmt.Errorf("failed to remove browse nodes: %w", err)
		}
		nodes += removed
		if removed < settings.DeleteBatchSize {
			break
		}
	}

	entities, err := registry.PurgeRepository(ctx, repositoryName)
	if err != nil {
		return fmt.Errorf("failed to purge registry: %w", err)
	}

	fmt.Printf("Removed %d nodes and %d registry entries of %q\n", nodes, entities, repositoryName)
	return nil
}

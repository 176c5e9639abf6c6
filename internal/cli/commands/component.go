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
	"strings"

	"github.com/spf13/cobra"

	"repobrowse/internal/browse"
	"repobrowse/internal/common"
	"repobrowse/internal/storage"
	"repobrowse/internal/util"
)

var componentCmd = &cobra.Command{
	Use:   "component",
	Short: "Manage components in the browse index",
	Long: `Manage components in the browse index.

Subcommands:
  add   Register a component and place its node in the browse tree
  rm    Remove a component and prune its nodes

Examples:
  # Register a component under /com/acme/app/1.2
  repobrowse component add -i repos.repobrowse maven-releases com/acme/app/1.2 \
      --format maven2 --name app --component-version 1.2

  # Remove a component by its id
  repobrowse component rm -i repos.repobrowse 4f6c...`,
}

var (
	componentFormat  string
	componentID      string
	componentName    string
	componentVersion string
)

var componentAddCmd = &cobra.Command{
	Use:   "add <repository> <path>",
	Short: "Register a component and place its node in the browse tree",
	Long: `Register a component in the index and create (or merge into) the browse
node at the given slash-separated path. Missing ancestor folders are
created along the way.

The path names where the component appears in the tree, e.g.
com/acme/app/1.2. If a node already exists at that path carrying a
different component, the command fails with a collision.`,
	Args: cobra.ExactArgs(2),
	RunE: runComponentAdd,
}

var componentRmCmd = &cobra.Command{
	Use:   "rm <component-id>",
	Short: "Remove a component and prune its nodes",
	Long: `Remove a component from the index. Every browse node carrying the
component either loses the reference (when an asset still lives there)
or is deleted, and emptied ancestor folders are pruned.`,
	Args: cobra.ExactArgs(1),
	RunE: runComponentRm,
}

func init() {
	componentAddCmd.Flags().StringVar(&componentFormat, "format", "raw", "Repository format (maven2, npm, docker, raw, ...)")
	componentAddCmd.Flags().StringVar(&componentID, "id", "", "External component id (generated if empty)")
	componentAddCmd.Flags().StringVar(&componentName, "name", "", "Component name (defaults to the last path segment)")
	componentAddCmd.Flags().StringVar(&componentVersion, "component-version", "", "Component version")

	componentCmd.AddCommand(componentAddCmd)
	componentCmd.AddCommand(componentRmCmd)
	rootCmd.AddCommand(componentCmd)
}

func runComponentAdd(cmd *cobra.Command, args []string) error {
	repositoryName := args[0]
	segments := common.SplitSegments(args[1])
	if !common.ValidSegments(segments) {
		return fmt.Errorf("invalid path %q", args[1])
	}

	f, manager, registry, err := openManagers()
	if err != nil {
		return err
	}
	defer f.Close()

	ctx := cmd.Context()

	name := componentName
	if name == "" {
		name = segments[len(segments)-1]
	}
	component := &storage.Component{
		ExternalID:     browse.EntityID(componentID),
		RepositoryName: repositoryName,
		Format:         componentFormat,
		Name:           name,
		Version:        componentVersion,
	}
	if err := registry.AddComponent(ctx, component); err != nil {
		return fmt.Errorf("failed to register component: %w", err)
	}

	outcome, err := util.RetryWithResult(ctx, func() (browse.Outcome, error) {
		return manager.CreateComponentNode(ctx, repositoryName, componentFormat, segments, component.ExternalID)
	}, util.IngestRetryOptions(ctx)...)
	if err != nil {
		return fmt.Errorf("failed to place component node: %w", err)
	}

	fmt.Printf("Component %s at /%s (%s)\n", component.ExternalID, strings.Join(segments, "/"), outcome)
	return nil
}

func runComponentRm(cmd *cobra.Command, args []string) error {
	id := browse.EntityID(args[0])

	f, manager, registry, err := openManagers()
	if err != nil {
		return err
	}
	defer f.Close()

	ctx := cmd.Context()

	if err := manager.DeleteComponentNode(ctx, id); err != nil {
		return fmt.Errorf("failed to prune component nodes: %w", err)
	}
	if err := registry.DeleteComponent(ctx, id); err != nil {
		return fmt.Errorf("failed to remove component: %w", err)
	}

	fmt.Printf("Removed component %s\n", id)
	return nil
}

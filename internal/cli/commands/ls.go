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

	"repobrowse/internal/common"
)

var (
	lsMaxNodes int
	lsFilter   string
	lsParams   []string
)

var lsCmd = &cobra.Command{
	Use:   "ls <repository> [path]",
	Short: "List one level of the browse tree",
	Long: `List the direct children of a browse tree path. With no path, lists the
repository root.

Folders are marked with a trailing slash; nodes carrying a component or
asset reference are annotated. --filter takes a boolean SQL expression
over the node columns (component_id, asset_id, name, ...) with :name
placeholders bound from repeated --param key=value flags.

Examples:
  repobrowse ls -i repos.repobrowse maven-releases
  repobrowse ls -i repos.repobrowse maven-releases com/acme
  repobrowse ls -i repos.repobrowse maven-releases --filter "asset_id IS NULL"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runLs,
}

func init() {
	lsCmd.Flags().IntVar(&lsMaxNodes, "max-nodes", 1000, "Maximum number of entries to return")
	lsCmd.Flags().StringVar(&lsFilter, "filter", "", "Boolean SQL expression filtering the listed nodes")
	lsCmd.Flags().StringArrayVar(&lsParams, "param", nil, "Filter placeholder binding, key=value (repeatable)")
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	repositoryName := args[0]
	var segments []string
	if len(args) > 1 {
		segments = common.SplitSegments(args[1])
		if !common.ValidSegments(segments) {
			return fmt.Errorf("invalid path %q", args[1])
		}
	}

	filterParams, err := parseFilterParams(lsParams)
	if err != nil {
		return err
	}

	f, manager, _, err := openManagers()
	if err != nil {
		return err
	}
	defer f.Close()

	nodes, err := manager.GetByPath(cmd.Context(), repositoryName, segments, lsMaxNodes, lsFilter, filterParams)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", common.JoinFolderPath(segments), err)
	}

	if len(nodes) == 0 {
		fmt.Println("Empty")
		return nil
	}
	for _, node := range nodes {
		name := node.Name
		if !node.Leaf {
			name += "/"
		}
		var marks []string
		if node.ComponentRef != 0 {
			marks = append(marks, "component")
		}
		if node.AssetRef != 0 {
			marks = append(marks, "asset")
		}
		if len(marks) > 0 {
			fmt.Printf("%-40s [%s]\n", name, strings.Join(marks, ", "))
		} else {
			fmt.Println(name)
		}
	}
	return nil
}

// parseFilterParams turns repeated key=value flags into filter bindings.
func parseFilterParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, want key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}

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

var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Manage assets in the browse index",
	Long: `Manage assets in the browse index.

Subcommands:
  add   Register an asset and place its node in the browse tree
  rm    Remove an asset and prune its node
  list  List the assets of a repository, one page at a time

Examples:
  # Register an asset under /com/acme/app/1.2/app-1.2.jar
  repobrowse asset add -i repos.repobrowse maven-releases com/acme/app/1.2/app-1.2.jar \
      --format maven2 --component 4f6c...

  # List assets page by page
  repobrowse asset list -i repos.repobrowse maven-releases
  repobrowse asset list -i repos.repobrowse maven-releases --token 10`,
}

var (
	assetFormat      string
	assetID          string
	assetComponent   string
	assetContentType string
	assetSize        int64
)

var assetAddCmd = &cobra.Command{
	Use:   "add <repository> <path>",
	Short: "Register an asset and place its node in the browse tree",
	Long: `Register an asset in the index and create (or merge into) the browse node
at the given slash-separated path. Missing ancestor folders are created
along the way; a bare folder node at the path is demoted to a leaf.

--component links the asset to an already registered component, so the
node can carry both references.`,
	Args: cobra.ExactArgs(2),
	RunE: runAssetAdd,
}

var assetRmCmd = &cobra.Command{
	Use:   "rm <asset-id>",
	Short: "Remove an asset and prune its node",
	Long: `Remove an asset from the index. Its browse node either loses the asset
reference (when a component still lives there) or is deleted, and
emptied ancestor folders are pruned.`,
	Args: cobra.ExactArgs(1),
	RunE: runAssetRm,
}

var (
	listToken    string
	listPageSize int
)

var assetListCmd = &cobra.Command{
	Use:   "list <repository>",
	Short: "List the assets of a repository, one page at a time",
	Long: `List the assets of a repository, one page at a time.

Each page ends with a continuation token; pass it back with --token to
fetch the next page. No token on the last page.`,
	Args: cobra.ExactArgs(1),
	RunE: runAssetList,
}

func init() {
	assetAddCmd.Flags().StringVar(&assetFormat, "format", "raw", "Repository format (maven2, npm, docker, raw, ...)")
	assetAddCmd.Flags().StringVar(&assetID, "id", "", "External asset id (generated if empty)")
	assetAddCmd.Flags().StringVar(&assetComponent, "component", "", "External id of the owning component")
	assetAddCmd.Flags().StringVar(&assetContentType, "content-type", "", "Asset content type")
	assetAddCmd.Flags().Int64Var(&assetSize, "size", 0, "Asset size in bytes")

	assetListCmd.Flags().StringVar(&listToken, "token", "", "Continuation token from the previous page")
	assetListCmd.Flags().IntVar(&listPageSize, "page-size", 0, "Assets per page (default from settings)")

	assetCmd.AddCommand(assetAddCmd)
	assetCmd.AddCommand(assetRmCmd)
	assetCmd.AddCommand(assetListCmd)
	rootCmd.AddCommand(assetCmd)
}

func runAssetAdd(cmd *cobra.Command, args []string) error {
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

	asset := &storage.Asset{
		ExternalID:     browse.EntityID(assetID),
		RepositoryName: repositoryName,
		Format:         assetFormat,
		Path:           common.JoinLeafPath(segments),
		ContentType:    assetContentType,
		Size:           assetSize,
	}
	if assetComponent != "" {
		ref, err := registry.ComponentRef(ctx, browse.EntityID(assetComponent))
		if err != nil {
			return fmt.Errorf("failed to resolve component %s: %w", assetComponent, err)
		}
		asset.ComponentRef = ref
	}
	if err := registry.AddAsset(ctx, asset); err != nil {
		return fmt.Errorf("failed to register asset: %w", err)
	}

	outcome, err := util.RetryWithResult(ctx, func() (browse.Outcome, error) {
		return manager.CreateAssetNode(ctx, repositoryName, assetFormat, segments, asset.ExternalID)
	}, util.IngestRetryOptions(ctx)...)
	if err != nil {
		return fmt.Errorf("failed to place asset node: %w", err)
	}

	fmt.Printf("Asset %s at /%s (%s)\n", asset.ExternalID, strings.Join(segments, "/"), outcome)
	return nil
}

func runAssetRm(cmd *cobra.Command, args []string) error {
	id := browse.EntityID(args[0])

	f, manager, registry, err := openManagers()
	if err != nil {
		return err
	}
	defer f.Close()

	ctx := cmd.Context()

	if err := manager.DeleteAssetNode(ctx, id); err != nil {
		return fmt.Errorf("failed to prune asset node: %w", err)
	}
	if err := registry.DeleteAsset(ctx, id); err != nil {
		return fmt.Errorf("failed to remove asset: %w", err)
	}

	fmt.Printf("Removed asset %s\n", id)
	return nil
}

func runAssetList(cmd *cobra.Command, args []string) error {
	repositoryName := args[0]

	f, err := openIndex()
	if err != nil {
		return err
	}
	defer f.Close()

	pageSize := listPageSize
	if pageSize <= 0 {
		pageSize = settings.PageSize
	}

	page, err := f.Registry().ListAssets(cmd.Context(), repositoryName, pageSize, listToken)
	if err != nil {
		return fmt.Errorf("failed to list assets: %w", err)
	}

	if len(page.Assets) == 0 {
		fmt.Println("No assets")
		return nil
	}
	for _, a := range page.Assets {
		fmt.Printf("%-40s %10d  %s\n", a.Path, a.Size, a.ExternalID)
	}
	if page.ContinuationToken != "" {
		fmt.Printf("\nNext page: --token %s\n", page.ContinuationToken)
	}
	return nil
}

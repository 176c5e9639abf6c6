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

package browse

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetByPath_MarksLeaves(t *testing.T) {
	t.Parallel()
	manager, _, resolver := newTestManager()
	ctx := context.Background()
	resolver.addComponent("comp-1")
	resolver.addAsset("asset-1")

	_, err := manager.CreateComponentNode(ctx, "repo", "maven2",
		[]string{"com", "acme", "app", "1.0"}, "comp-1")
	require.NoError(t, err)
	_, err = manager.CreateAssetNode(ctx, "repo", "maven2",
		[]string{"com", "acme", "app", "1.0", "app.jar"}, "asset-1")
	require.NoError(t, err)

	nodes, err := manager.GetByPath(ctx, "repo", []string{"com", "acme", "app"}, 100, "", nil)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "1.0", nodes[0].Name)
	assert.False(t, nodes[0].Leaf, "the version folder still holds the jar")
	assert.NotZero(t, nodes[0].ComponentRef)

	nodes, err = manager.GetByPath(ctx, "repo", []string{"com", "acme", "app", "1.0"}, 100, "", nil)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "app.jar", nodes[0].Name)
	assert.True(t, nodes[0].Leaf)
	assert.NotZero(t, nodes[0].AssetRef)
}

func TestGetByPath_Root(t *testing.T) {
	t.Parallel()
	manager, _, resolver := newTestManager()
	ctx := context.Background()
	resolver.addAsset("asset-1")

	_, err := manager.CreateAssetNode(ctx, "repo", "raw", []string{"dir", "f.txt"}, "asset-1")
	require.NoError(t, err)

	nodes, err := manager.GetByPath(ctx, "repo", nil, 100, "", nil)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "dir", nodes[0].Name)
	assert.False(t, nodes[0].Leaf)
}

func TestGetByPath_EmptyFolder(t *testing.T) {
	t.Parallel()
	manager, _, _ := newTestManager()

	nodes, err := manager.GetByPath(context.Background(), "repo", []string{"nothing"}, 100, "", nil)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestGetByPath_MaxNodes(t *testing.T) {
	t.Parallel()
	manager, _, resolver := newTestManager()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id := EntityID(fmt.Sprintf("asset-%d", i))
		resolver.addAsset(id)
		_, err := manager.CreateAssetNode(ctx, "repo", "raw", []string{fmt.Sprintf("f%d", i)}, id)
		require.NoError(t, err)
	}

	nodes, err := manager.GetByPath(ctx, "repo", nil, 3, "", nil)
	require.NoError(t, err)
	assert.Len(t, nodes, 3)
}

func TestGetByPath_ScopedPackageTree(t *testing.T) {
	t.Parallel()
	manager, _, resolver := newTestManager()
	ctx := context.Background()
	resolver.addComponent("lodash")
	resolver.addAsset("tarball")
	resolver.addAsset("manifest")

	// npm layout: the package folder carries the component, the tarball
	// hangs under a "-" folder, the manifest sits next to it
	_, err := manager.CreateComponentNode(ctx, "npm-hosted", "npm", []string{"lodash"}, "lodash")
	require.NoError(t, err)
	_, err = manager.CreateAssetNode(ctx, "npm-hosted", "npm",
		[]string{"lodash", "-", "lodash-4.17.21.tgz"}, "tarball")
	require.NoError(t, err)
	_, err = manager.CreateAssetNode(ctx, "npm-hosted", "npm",
		[]string{"lodash", "package.json"}, "manifest")
	require.NoError(t, err)

	nodes, err := manager.GetByPath(ctx, "npm-hosted", nil, 100, "", nil)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "lodash", nodes[0].Name)
	assert.False(t, nodes[0].Leaf)
	assert.NotZero(t, nodes[0].ComponentRef)

	nodes, err = manager.GetByPath(ctx, "npm-hosted", []string{"lodash"}, 100, "", nil)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "-", nodes[0].Name)
	assert.False(t, nodes[0].Leaf)
	assert.Equal(t, "package.json", nodes[1].Name)
	assert.True(t, nodes[1].Leaf)

	nodes, err = manager.GetByPath(ctx, "npm-hosted", []string{"lodash", "-"}, 100, "", nil)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "lodash-4.17.21.tgz", nodes[0].Name)
	assert.True(t, nodes[0].Leaf)
}

func TestGetByPath_RepositoryIsolation(t *testing.T) {
	t.Parallel()
	manager, _, resolver := newTestManager()
	ctx := context.Background()
	resolver.addAsset("a")
	resolver.addAsset("b")

	_, err := manager.CreateAssetNode(ctx, "repo-a", "raw", []string{"f"}, "a")
	require.NoError(t, err)
	_, err = manager.CreateAssetNode(ctx, "repo-b", "raw", []string{"g"}, "b")
	require.NoError(t, err)

	nodes, err := manager.GetByPath(ctx, "repo-a", nil, 100, "", nil)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "f", nodes[0].Name)
}

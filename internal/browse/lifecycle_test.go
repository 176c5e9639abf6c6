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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repobrowse/internal/common"
)

func TestCreateComponentNode_MaterializesAncestors(t *testing.T) {
	t.Parallel()
	manager, store, resolver := newTestManager()
	ctx := context.Background()
	resolver.addComponent("comp-1")

	outcome, err := manager.CreateComponentNode(ctx, "maven-releases", "maven2",
		[]string{"com", "acme", "app", "1.0"}, "comp-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)

	// every ancestor level exists as a bare folder
	for _, tc := range []struct {
		parentPath string
		name       string
		path       string
	}{
		{"/", "com", "/com/"},
		{"/com/", "acme", "/com/acme/"},
		{"/com/acme/", "app", "/com/acme/app/"},
	} {
		node, err := store.FindNode(ctx, "maven-releases", tc.parentPath, tc.name)
		require.NoError(t, err, "missing ancestor %s%s", tc.parentPath, tc.name)
		assert.Equal(t, tc.path, node.Path)
		assert.True(t, node.IsFolder())
		assert.Zero(t, node.ComponentRef)
		assert.Zero(t, node.AssetRef)
	}

	node, err := store.FindNode(ctx, "maven-releases", "/com/acme/app/", "1.0")
	require.NoError(t, err)
	assert.Equal(t, "/com/acme/app/1.0", node.Path)
	assert.False(t, node.IsFolder())
	assert.NotZero(t, node.ComponentRef)
}

func TestCreateComponentNode_Idempotent(t *testing.T) {
	t.Parallel()
	manager, store, resolver := newTestManager()
	ctx := context.Background()
	resolver.addComponent("comp-1")

	_, err := manager.CreateComponentNode(ctx, "repo", "raw", []string{"a", "b"}, "comp-1")
	require.NoError(t, err)
	before := store.inserts

	outcome, err := manager.CreateComponentNode(ctx, "repo", "raw", []string{"a", "b"}, "comp-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeMerged, outcome)
	assert.Equal(t, before, store.inserts, "repeat must not insert anything")
}

func TestCreateComponentNode_MergesIntoAssetNode(t *testing.T) {
	t.Parallel()
	manager, store, resolver := newTestManager()
	ctx := context.Background()
	resolver.addComponent("comp-1")
	resolver.addAsset("asset-1")

	_, err := manager.CreateAssetNode(ctx, "repo", "raw", []string{"pkg", "file"}, "asset-1")
	require.NoError(t, err)

	outcome, err := manager.CreateComponentNode(ctx, "repo", "raw", []string{"pkg", "file"}, "comp-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeMerged, outcome)

	node, err := store.FindNode(ctx, "repo", "/pkg/", "file")
	require.NoError(t, err)
	assert.NotZero(t, node.ComponentRef)
	assert.NotZero(t, node.AssetRef)
}

func TestCreateComponentNode_Collision(t *testing.T) {
	t.Parallel()
	manager, store, resolver := newTestManager()
	ctx := context.Background()
	firstRef := resolver.addComponent("comp-1")
	resolver.addComponent("comp-2")

	_, err := manager.CreateComponentNode(ctx, "repo", "raw", []string{"a"}, "comp-1")
	require.NoError(t, err)

	outcome, err := manager.CreateComponentNode(ctx, "repo", "raw", []string{"a"}, "comp-2")
	assert.Equal(t, OutcomeConflict, outcome)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCollision)

	// the occupant is untouched
	node, err := store.FindNode(ctx, "repo", "/", "a")
	require.NoError(t, err)
	assert.Equal(t, firstRef, node.ComponentRef)
}

func TestCreateComponentNode_InvalidPath(t *testing.T) {
	t.Parallel()
	manager, _, resolver := newTestManager()
	resolver.addComponent("comp-1")

	tests := []struct {
		name     string
		segments []string
	}{
		{"empty", nil},
		{"dot dot", []string{"a", ".."}},
		{"empty segment", []string{"a", ""}},
		{"embedded slash", []string{"a/b"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := manager.CreateComponentNode(context.Background(), "repo", "raw", tt.segments, "comp-1")
			assert.ErrorIs(t, err, common.ErrInvalidPath)
		})
	}
}

func TestCreateAssetNode_DemotesFolderToLeaf(t *testing.T) {
	t.Parallel()
	manager, store, resolver := newTestManager()
	ctx := context.Background()
	resolver.addAsset("deep")
	resolver.addAsset("dir")

	// the deep asset materializes /a/ and /a/b/ as folders
	_, err := manager.CreateAssetNode(ctx, "repo", "raw", []string{"a", "b", "f.txt"}, "deep")
	require.NoError(t, err)

	node, err := store.FindNode(ctx, "repo", "/a/", "b")
	require.NoError(t, err)
	require.True(t, node.IsFolder())

	// attaching an asset to the folder node drops its trailing slash
	outcome, err := manager.CreateAssetNode(ctx, "repo", "raw", []string{"a", "b"}, "dir")
	require.NoError(t, err)
	assert.Equal(t, OutcomeMerged, outcome)

	node, err = store.FindNode(ctx, "repo", "/a/", "b")
	require.NoError(t, err)
	assert.Equal(t, "/a/b", node.Path)
	assert.False(t, node.IsFolder())
	assert.NotZero(t, node.AssetRef)
}

func TestCreateAssetNode_CoercesLeafAncestorToFolder(t *testing.T) {
	t.Parallel()
	manager, store, resolver := newTestManager()
	ctx := context.Background()
	resolver.addAsset("shallow")
	resolver.addAsset("nested")

	_, err := manager.CreateAssetNode(ctx, "repo", "raw", []string{"a"}, "shallow")
	require.NoError(t, err)

	// nesting under the leaf flips its path back to folder shape
	_, err = manager.CreateAssetNode(ctx, "repo", "raw", []string{"a", "b"}, "nested")
	require.NoError(t, err)

	node, err := store.FindNode(ctx, "repo", "/", "a")
	require.NoError(t, err)
	assert.Equal(t, "/a/", node.Path)
	assert.True(t, node.IsFolder())
	assert.NotZero(t, node.AssetRef, "coercion must not drop the asset ref")
}

func TestCreateAssetNode_AncestorWalkStopsEarly(t *testing.T) {
	t.Parallel()
	manager, store, resolver := newTestManager()
	ctx := context.Background()
	resolver.addAsset("first")
	resolver.addAsset("second")

	_, err := manager.CreateAssetNode(ctx, "repo", "raw", []string{"a", "b", "c", "one"}, "first")
	require.NoError(t, err)
	before := store.inserts

	// the sibling shares every ancestor, so only its own node is inserted
	_, err = manager.CreateAssetNode(ctx, "repo", "raw", []string{"a", "b", "c", "two"}, "second")
	require.NoError(t, err)
	assert.Equal(t, before+1, store.inserts)
}

func TestCreateAssetNode_Collision(t *testing.T) {
	t.Parallel()
	manager, _, resolver := newTestManager()
	ctx := context.Background()
	resolver.addAsset("asset-1")
	resolver.addAsset("asset-2")

	_, err := manager.CreateAssetNode(ctx, "repo", "raw", []string{"f"}, "asset-1")
	require.NoError(t, err)

	outcome, err := manager.CreateAssetNode(ctx, "repo", "raw", []string{"f"}, "asset-2")
	assert.Equal(t, OutcomeConflict, outcome)
	assert.ErrorIs(t, err, common.ErrCollision)
}

func TestCreateNode_UnknownEntity(t *testing.T) {
	t.Parallel()
	manager, _, _ := newTestManager()
	ctx := context.Background()

	_, err := manager.CreateComponentNode(ctx, "repo", "raw", []string{"a"}, "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = manager.CreateAssetNode(ctx, "repo", "raw", []string{"a"}, "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

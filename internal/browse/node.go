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

// Package browse maintains a materialized path index over the component and
// asset graph of each repository. The index mirrors the graph as a navigable
// directory tree and is kept incrementally consistent as components and
// assets are created and deleted, possibly out of order and concurrently.
//
// The tree offers no cross-node transactions. The unique (repository, parent
// path, name) index of the backing store is the sole mutual-exclusion
// primitive: concurrent creators race at the store level and the loser falls
// into the merge or conflict path instead of erroring unrecoverably.
package browse

import "context"

// EntityID is the opaque external identity of a component or asset. The
// Resolver maps it to the storage-level reference kept inside browse nodes.
type EntityID string

// Node is one entry of the browse tree: a folder, a leaf, or both a
// component and an asset occupying the same path.
//
// Folder nodes carry a path ending with "/"; leaf nodes do not. ParentPath
// always ends with "/". A ref value of 0 means the ref is absent.
type Node struct {
	ID             int64
	RepositoryName string
	Format         string
	Path           string
	ParentPath     string
	Name           string
	ComponentRef   int64
	AssetRef       int64

	// Leaf is computed per tree snapshot, never persisted: true when the
	// node currently has no children.
	Leaf bool
}

// IsFolder reports whether the node's stored path is folder-shaped.
func (n *Node) IsFolder() bool {
	return len(n.Path) > 0 && n.Path[len(n.Path)-1] == '/'
}

// Store is the document-store contract the browse tree is built on: typed
// rows, a unique composite index over (repository_name, parent_path, name),
// parameterized queries, and per-row CRUD. Implementations surface a unique
// index violation from InsertNode as common.ErrExists and absence from the
// single-row lookups as common.ErrNotFound; every other failure is
// propagated unmodified.
type Store interface {
	// FindNode returns the node at the exact coordinate, or common.ErrNotFound.
	FindNode(ctx context.Context, repositoryName, parentPath, name string) (*Node, error)

	// InsertNode persists a new node and fills in its ID. A concurrent
	// insert at the same coordinate loses with common.ErrExists.
	InsertNode(ctx context.Context, node *Node) error

	// SetNodePath rewrites the display path of an existing node, used to
	// flip a node between folder and leaf shape.
	SetNodePath(ctx context.Context, nodeID int64, path string) error

	SetComponentRef(ctx context.Context, nodeID, ref int64) error
	SetAssetRef(ctx context.Context, nodeID, ref int64) error
	ClearComponentRef(ctx context.Context, nodeID int64) error
	ClearAssetRef(ctx context.Context, nodeID int64) error

	DeleteNode(ctx context.Context, nodeID int64) error

	// NodesByComponent returns every node referencing the component; some
	// formats expose one component under several branches of the tree.
	NodesByComponent(ctx context.Context, ref int64) ([]*Node, error)

	// NodeByAsset returns the single node referencing the asset, or
	// common.ErrNotFound.
	NodeByAsset(ctx context.Context, ref int64) (*Node, error)

	// CountChildrenUpTo counts direct children of basePath, scanning at
	// most limit index rows. The probe costs O(limit), not a full scan.
	CountChildrenUpTo(ctx context.Context, repositoryName, basePath string, limit int) (int, error)

	// ListChildren returns up to maxNodes direct children of basePath.
	// assetFilter is an optional boolean SQL expression joined by
	// conjunction, with :name placeholders bound from filterParams.
	ListChildren(ctx context.Context, repositoryName, basePath string, maxNodes int, assetFilter string, filterParams map[string]any) ([]*Node, error)

	// DeleteByRepository unconditionally removes up to limit nodes of the
	// repository and reports how many went away.
	DeleteByRepository(ctx context.Context, repositoryName string, limit int) (int, error)
}

// Resolver maps opaque component/asset identities to storage-level
// references and back. Injected into the Manager as a capability.
type Resolver interface {
	ComponentRef(ctx context.Context, id EntityID) (int64, error)
	AssetRef(ctx context.Context, id EntityID) (int64, error)
	ComponentID(ctx context.Context, ref int64) (EntityID, error)
	AssetID(ctx context.Context, ref int64) (EntityID, error)
}

// Manager is the mutation and query surface of the browse tree. All
// operations are bounded sequences of synchronous store calls; none is
// atomic across the ancestor-chain-plus-leaf write sequence, so a caller
// seeing OutcomeConflict retries the entire logical operation.
type Manager struct {
	store    Store
	resolver Resolver
}

// NewManager returns a Manager over the given store and resolver.
func NewManager(store Store, resolver Resolver) *Manager {
	return &Manager{store: store, resolver: resolver}
}

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
	"sort"

	"repobrowse/internal/common"
)

// memStore is an in-memory Store used to exercise the Manager without a
// database. It enforces the unique coordinate index the same way the real
// store does and counts inserts so tests can assert how much work a walk did.
type memStore struct {
	nodes   map[int64]*Node
	nextID  int64
	inserts int
}

func newMemStore() *memStore {
	return &memStore{nodes: make(map[int64]*Node)}
}

func (s *memStore) lookup(repositoryName, parentPath, name string) *Node {
	for _, n := range s.nodes {
		if n.RepositoryName == repositoryName && n.ParentPath == parentPath && n.Name == name {
			return n
		}
	}
	return nil
}

func (s *memStore) FindNode(_ context.Context, repositoryName, parentPath, name string) (*Node, error) {
	if n := s.lookup(repositoryName, parentPath, name); n != nil {
		copied := *n
		return &copied, nil
	}
	return nil, common.ErrNotFound
}

func (s *memStore) InsertNode(_ context.Context, node *Node) error {
	if s.lookup(node.RepositoryName, node.ParentPath, node.Name) != nil {
		return common.ErrExists
	}
	s.nextID++
	node.ID = s.nextID
	copied := *node
	s.nodes[node.ID] = &copied
	s.inserts++
	return nil
}

func (s *memStore) byID(nodeID int64) (*Node, error) {
	n, ok := s.nodes[nodeID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return n, nil
}

func (s *memStore) SetNodePath(_ context.Context, nodeID int64, path string) error {
	n, err := s.byID(nodeID)
	if err != nil {
		return err
	}
	n.Path = path
	return nil
}

func (s *memStore) SetComponentRef(_ context.Context, nodeID, ref int64) error {
	n, err := s.byID(nodeID)
	if err != nil {
		return err
	}
	n.ComponentRef = ref
	return nil
}

func (s *memStore) SetAssetRef(_ context.Context, nodeID, ref int64) error {
	n, err := s.byID(nodeID)
	if err != nil {
		return err
	}
	n.AssetRef = ref
	return nil
}

func (s *memStore) ClearComponentRef(_ context.Context, nodeID int64) error {
	return s.SetComponentRef(nil, nodeID, 0)
}

func (s *memStore) ClearAssetRef(_ context.Context, nodeID int64) error {
	return s.SetAssetRef(nil, nodeID, 0)
}

func (s *memStore) DeleteNode(_ context.Context, nodeID int64) error {
	if _, ok := s.nodes[nodeID]; !ok {
		return common.ErrNotFound
	}
	delete(s.nodes, nodeID)
	return nil
}

func (s *memStore) NodesByComponent(_ context.Context, ref int64) ([]*Node, error) {
	var out []*Node
	for _, n := range s.nodes {
		if n.ComponentRef == ref {
			copied := *n
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) NodeByAsset(_ context.Context, ref int64) (*Node, error) {
	for _, n := range s.nodes {
		if n.AssetRef == ref {
			copied := *n
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *memStore) CountChildrenUpTo(_ context.Context, repositoryName, basePath string, limit int) (int, error) {
	count := 0
	for _, n := range s.nodes {
		if n.RepositoryName == repositoryName && n.ParentPath == basePath {
			count++
			if count == limit {
				break
			}
		}
	}
	return count, nil
}

func (s *memStore) ListChildren(_ context.Context, repositoryName, basePath string, maxNodes int, assetFilter string, _ map[string]any) ([]*Node, error) {
	if assetFilter != "" {
		return nil, fmt.Errorf("memStore does not evaluate filters")
	}
	var out []*Node
	for _, n := range s.nodes {
		if n.RepositoryName == repositoryName && n.ParentPath == basePath {
			copied := *n
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if maxNodes > 0 && len(out) > maxNodes {
		out = out[:maxNodes]
	}
	return out, nil
}

func (s *memStore) DeleteByRepository(_ context.Context, repositoryName string, limit int) (int, error) {
	deleted := 0
	for id, n := range s.nodes {
		if deleted == limit {
			break
		}
		if n.RepositoryName == repositoryName {
			delete(s.nodes, id)
			deleted++
		}
	}
	return deleted, nil
}

// memResolver maps test entity ids to refs. Components get refs starting at
// 100, assets at 200, so a mixed-up ref is obvious in a failure message.
type memResolver struct {
	components map[EntityID]int64
	assets     map[EntityID]int64
}

func newMemResolver() *memResolver {
	return &memResolver{
		components: make(map[EntityID]int64),
		assets:     make(map[EntityID]int64),
	}
}

func (r *memResolver) addComponent(id EntityID) int64 {
	ref := int64(100 + len(r.components))
	r.components[id] = ref
	return ref
}

func (r *memResolver) addAsset(id EntityID) int64 {
	ref := int64(200 + len(r.assets))
	r.assets[id] = ref
	return ref
}

func (r *memResolver) ComponentRef(_ context.Context, id EntityID) (int64, error) {
	ref, ok := r.components[id]
	if !ok {
		return 0, fmt.Errorf("component %s: %w", id, common.ErrNotFound)
	}
	return ref, nil
}

func (r *memResolver) AssetRef(_ context.Context, id EntityID) (int64, error) {
	ref, ok := r.assets[id]
	if !ok {
		return 0, fmt.Errorf("asset %s: %w", id, common.ErrNotFound)
	}
	return ref, nil
}

func (r *memResolver) ComponentID(_ context.Context, ref int64) (EntityID, error) {
	for id, r2 := range r.components {
		if r2 == ref {
			return id, nil
		}
	}
	return "", common.ErrNotFound
}

func (r *memResolver) AssetID(_ context.Context, ref int64) (EntityID, error) {
	for id, r2 := range r.assets {
		if r2 == ref {
			return id, nil
		}
	}
	return "", common.ErrNotFound
}

var _ Store = (*memStore)(nil)
var _ Resolver = (*memResolver)(nil)

// newTestManager wires a Manager over fresh in-memory fixtures.
func newTestManager() (*Manager, *memStore, *memResolver) {
	store := newMemStore()
	resolver := newMemResolver()
	return NewManager(store, resolver), store, resolver
}

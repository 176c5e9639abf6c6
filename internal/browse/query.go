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

	"repobrowse/internal/common"
)

// GetByPath returns the nodes directly visible under the given path,
// annotated with their leaf status and capped at maxNodes. Pagination beyond
// maxNodes is the caller's responsibility.
//
// assetFilter is an optional boolean expression joined to the children query
// by conjunction, with :name placeholders bound from filterParams. It lets
// the read path hide assets the caller may not see or that miss a content
// criterion; filters should keep bare folder nodes (no asset ref) visible so
// intermediate structure is not hidden, e.g.
//
//	component_id IS NOT NULL OR asset_id IS NULL OR asset_id = :aid
func (m *Manager) GetByPath(ctx context.Context, repositoryName string, segments []string, maxNodes int, assetFilter string, filterParams map[string]any) ([]*Node, error) {
	basePath := common.JoinFolderPath(segments)

	children, err := m.store.ListChildren(ctx, repositoryName, basePath, maxNodes, assetFilter, filterParams)
	if err != nil {
		return nil, err
	}

	for _, child := range children {
		// a child with no children of its own is a leaf
		count, err := m.store.CountChildrenUpTo(ctx, repositoryName, child.ParentPath+child.Name+"/", 1)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			child.Leaf = true
		}
	}
	return children, nil
}

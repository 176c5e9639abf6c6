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
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"repobrowse/internal/common"
)

// DeleteComponentNode removes the component ref from every node referencing
// the component. A node that also holds an asset ref survives demoted; a
// node left with no refs is deleted together with any ancestor folders that
// become empty.
func (m *Manager) DeleteComponentNode(ctx context.Context, component EntityID) error {
	ref, err := m.resolver.ComponentRef(ctx, component)
	if err != nil {
		return fmt.Errorf("resolve component %q: %w", component, err)
	}

	// some formats have the same component appearing on different branches
	nodes, err := m.store.NodesByComponent(ctx, ref)
	if err != nil {
		return err
	}
	for _, node := range nodes {
		if node.AssetRef != 0 {
			// asset still exists, just remove component details
			if err := m.store.ClearComponentRef(ctx, node.ID); err != nil {
				return err
			}
			continue
		}
		if err := m.maybeDeleteParents(ctx, node.RepositoryName, node.ParentPath); err != nil {
			return err
		}
		if err := m.store.DeleteNode(ctx, node.ID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAssetNode removes the asset ref from the single node referencing the
// asset, following the same demotion-or-delete rule against the component
// ref. A missing node is not an error; the delete event may have raced an
// earlier teardown.
func (m *Manager) DeleteAssetNode(ctx context.Context, asset EntityID) error {
	ref, err := m.resolver.AssetRef(ctx, asset)
	if err != nil {
		return fmt.Errorf("resolve asset %q: %w", asset, err)
	}

	node, err := m.store.NodeByAsset(ctx, ref)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if node.ComponentRef != 0 {
		// component still exists, just remove asset details
		return m.store.ClearAssetRef(ctx, node.ID)
	}
	if err := m.maybeDeleteParents(ctx, node.RepositoryName, node.ParentPath); err != nil {
		return err
	}
	return m.store.DeleteNode(ctx, node.ID)
}

// DeleteByRepository removes up to limit nodes of the repository and returns
// how many were removed. Call repeatedly until fewer than limit come back;
// the cap bounds per-call work during large repository teardown.
func (m *Manager) DeleteByRepository(ctx context.Context, repositoryName string, limit int) (int, error) {
	deleted, err := m.store.DeleteByRepository(ctx, repositoryName, limit)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Debugf("[Browse] deleted %d nodes of repository %s", deleted, repositoryName)
	}
	return deleted, nil
}

// maybeDeleteParents walks upward from parentPath and removes ancestor
// folders whose only remaining content is the node being deleted. The walk
// collects the deletable chain first and removes it topmost-first, so every
// child-count probe runs against an intact tree. Each step is its own
// read-then-maybe-delete with no lock: a concurrent sibling insert can race
// the count probe, an accepted eventual-consistency window that heals on the
// next ingestion of the affected path.
func (m *Manager) maybeDeleteParents(ctx context.Context, repositoryName, parentPath string) error {
	var chain []*Node

	for parentPath != common.RootPath {
		// count of 1 meaning the node currently being deleted
		count, err := m.store.CountChildrenUpTo(ctx, repositoryName, parentPath, 2)
		if err != nil {
			return err
		}
		if count != 1 {
			break
		}

		parent, err := m.store.FindNode(ctx, repositoryName,
			common.ParentFolderPath(parentPath), common.LastFolderName(parentPath))
		if errors.Is(err, common.ErrNotFound) {
			break
		}
		if err != nil {
			return err
		}
		if parent.ComponentRef != 0 || parent.AssetRef != 0 {
			// live content, not a bare folder, even with a single child
			break
		}

		chain = append(chain, parent)
		parentPath = parent.ParentPath
	}

	for i := len(chain) - 1; i >= 0; i-- {
		if err := m.store.DeleteNode(ctx, chain[i].ID); err != nil {
			return err
		}
	}
	return nil
}

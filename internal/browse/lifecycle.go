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
	"strings"

	log "github.com/sirupsen/logrus"

	"repobrowse/internal/common"
)

// CreateComponentNode attaches the component to the node at the given path,
// creating the node and any missing ancestor folders first. The last segment
// is the node's own name.
func (m *Manager) CreateComponentNode(ctx context.Context, repositoryName, format string, segments []string, component EntityID) (Outcome, error) {
	if !common.ValidSegments(segments) {
		return 0, fmt.Errorf("component path %v: %w", segments, common.ErrInvalidPath)
	}
	ref, err := m.resolver.ComponentRef(ctx, component)
	if err != nil {
		return 0, fmt.Errorf("resolve component %q: %w", component, err)
	}

	if err := m.maybeCreateParentNodes(ctx, repositoryName, format, segments[:len(segments)-1]); err != nil {
		return 0, err
	}

	parentPath := common.JoinFolderPath(segments[:len(segments)-1])
	name := segments[len(segments)-1]

	node, err := m.findOrInsert(ctx, &Node{
		RepositoryName: repositoryName,
		Format:         format,
		Path:           common.JoinLeafPath(segments),
		ParentPath:     parentPath,
		Name:           name,
		ComponentRef:   ref,
	})
	if err != nil {
		return 0, err
	}
	if node == nil {
		return OutcomeCreated, nil
	}

	switch {
	case node.ComponentRef == 0:
		// merge new information directly into the existing record
		if err := m.store.SetComponentRef(ctx, node.ID, ref); err != nil {
			return 0, err
		}
		return OutcomeMerged, nil
	case node.ComponentRef == ref:
		// idempotent repeat
		return OutcomeMerged, nil
	default:
		// retry in case this is due to an out-of-order delete event
		return OutcomeConflict, &CollisionError{
			RepositoryName: repositoryName,
			ParentPath:     parentPath,
			Name:           name,
			Kind:           "component",
		}
	}
}

// CreateAssetNode attaches the asset to the node at the given path, creating
// the node and any missing ancestor folders first. Attaching an asset to a
// folder-shaped node demotes its path to leaf shape.
func (m *Manager) CreateAssetNode(ctx context.Context, repositoryName, format string, segments []string, asset EntityID) (Outcome, error) {
	if !common.ValidSegments(segments) {
		return 0, fmt.Errorf("asset path %v: %w", segments, common.ErrInvalidPath)
	}
	ref, err := m.resolver.AssetRef(ctx, asset)
	if err != nil {
		return 0, fmt.Errorf("resolve asset %q: %w", asset, err)
	}

	if err := m.maybeCreateParentNodes(ctx, repositoryName, format, segments[:len(segments)-1]); err != nil {
		return 0, err
	}

	parentPath := common.JoinFolderPath(segments[:len(segments)-1])
	name := segments[len(segments)-1]

	node, err := m.findOrInsert(ctx, &Node{
		RepositoryName: repositoryName,
		Format:         format,
		Path:           common.JoinLeafPath(segments),
		ParentPath:     parentPath,
		Name:           name,
		AssetRef:       ref,
	})
	if err != nil {
		return 0, err
	}
	if node == nil {
		return OutcomeCreated, nil
	}

	switch {
	case node.AssetRef == 0:
		if err := m.store.SetAssetRef(ctx, node.ID, ref); err != nil {
			return 0, err
		}
		// now that the node holds an asset it loses the trailing slash
		if node.IsFolder() && !strings.HasSuffix(name, "/") {
			if err := m.store.SetNodePath(ctx, node.ID, strings.TrimSuffix(node.Path, "/")); err != nil {
				return 0, err
			}
		}
		return OutcomeMerged, nil
	case node.AssetRef == ref:
		return OutcomeMerged, nil
	default:
		return OutcomeConflict, &CollisionError{
			RepositoryName: repositoryName,
			ParentPath:     parentPath,
			Name:           name,
			Kind:           "asset",
		}
	}
}

// findOrInsert probes the node's coordinate and inserts it when vacant.
// Returns (nil, nil) when the insert won, or the pre-existing node for the
// caller's merge/conflict handling. A lost insert race against the unique
// index falls back to the occupant.
func (m *Manager) findOrInsert(ctx context.Context, node *Node) (*Node, error) {
	existing, err := m.store.FindNode(ctx, node.RepositoryName, node.ParentPath, node.Name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	insErr := m.store.InsertNode(ctx, node)
	if insErr == nil {
		return nil, nil
	}
	if !errors.Is(insErr, common.ErrExists) {
		return nil, insErr
	}

	log.Debugf("[Browse] lost insert race at %s%s in %s, merging into winner",
		node.ParentPath, node.Name, node.RepositoryName)
	return m.store.FindNode(ctx, node.RepositoryName, node.ParentPath, node.Name)
}

// maybeCreateParentNodes walks the ancestor segments from deepest to
// shallowest and creates a bare folder node for each missing level. The walk
// stops at the first existing ancestor: everything above an existing folder
// node is guaranteed to exist already, so the work is bounded by the number
// of actually missing ancestors rather than the tree depth.
func (m *Manager) maybeCreateParentNodes(ctx context.Context, repositoryName, format string, ancestors []string) error {
	for i := len(ancestors); i > 0; i-- {
		parentPath := common.JoinFolderPath(ancestors[:i-1])
		name := ancestors[i-1]

		existing, err := m.findOrInsert(ctx, &Node{
			RepositoryName: repositoryName,
			Format:         format,
			Path:           common.JoinFolderPath(ancestors[:i]),
			ParentPath:     parentPath,
			Name:           name,
		})
		if err != nil {
			return err
		}
		if existing == nil {
			// created a missing folder; shallower ancestors may still be missing
			continue
		}

		// an existing ancestor without proper folder shape typically means a
		// nested asset got there first; coerce it before stopping
		if !existing.IsFolder() {
			if err := m.store.SetNodePath(ctx, existing.ID, existing.Path+"/"); err != nil {
				return err
			}
		}
		break
	}
	return nil
}

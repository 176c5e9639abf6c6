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

package storage

import (
	"time"

	"github.com/uptrace/bun"

	"repobrowse/internal/browse"
)

// Bun ORM models for the browse index tables.

// BrowseNodeModel represents the browse_nodes table.
// The ref columns use nullzero: a Go value of 0 maps to SQL NULL, which the
// partial indexes on component_id/asset_id skip.
type BrowseNodeModel struct {
	bun.BaseModel `bun:"table:browse_nodes"`

	ID             int64  `bun:"id,pk,autoincrement"`
	RepositoryName string `bun:"repository_name,notnull"`
	Format         string `bun:"format,notnull"`
	Path           string `bun:"path,notnull"`
	ParentPath     string `bun:"parent_path,notnull"`
	Name           string `bun:"name,notnull"`
	ComponentRef   int64  `bun:"component_id,nullzero"`
	AssetRef       int64  `bun:"asset_id,nullzero"`
}

// ToNode converts a BrowseNodeModel to a browse.Node
func (m *BrowseNodeModel) ToNode() *browse.Node {
	return &browse.Node{
		ID:             m.ID,
		RepositoryName: m.RepositoryName,
		Format:         m.Format,
		Path:           m.Path,
		ParentPath:     m.ParentPath,
		Name:           m.Name,
		ComponentRef:   m.ComponentRef,
		AssetRef:       m.AssetRef,
	}
}

// NodeModelFromNode converts a browse.Node to a BrowseNodeModel
func NodeModelFromNode(n *browse.Node) *BrowseNodeModel {
	return &BrowseNodeModel{
		ID:             n.ID,
		RepositoryName: n.RepositoryName,
		Format:         n.Format,
		Path:           n.Path,
		ParentPath:     n.ParentPath,
		Name:           n.Name,
		ComponentRef:   n.ComponentRef,
		AssetRef:       n.AssetRef,
	}
}

// ComponentModel represents the components table
type ComponentModel struct {
	bun.BaseModel `bun:"table:components"`

	ID             int64  `bun:"id,pk,autoincrement"`
	ExternalID     string `bun:"external_id,notnull,unique"`
	RepositoryName string `bun:"repository_name,notnull"`
	Format         string `bun:"format,notnull"`
	Name           string `bun:"name,notnull"`
	Version        string `bun:"version,nullzero"`
	CreatedAt      int64  `bun:"created_at,notnull"` // Unix timestamp
}

// ToComponent converts a ComponentModel to a Component
func (m *ComponentModel) ToComponent() *Component {
	return &Component{
		Ref:            m.ID,
		ExternalID:     browse.EntityID(m.ExternalID),
		RepositoryName: m.RepositoryName,
		Format:         m.Format,
		Name:           m.Name,
		Version:        m.Version,
		CreatedAt:      time.Unix(m.CreatedAt, 0),
	}
}

// AssetModel represents the assets table
type AssetModel struct {
	bun.BaseModel `bun:"table:assets"`

	ID             int64  `bun:"id,pk,autoincrement"`
	ExternalID     string `bun:"external_id,notnull,unique"`
	RepositoryName string `bun:"repository_name,notnull"`
	Format         string `bun:"format,notnull"`
	Path           string `bun:"path,notnull"`
	ContentType    string `bun:"content_type,nullzero"`
	Size           int64  `bun:"size,notnull"`
	ComponentRef   int64  `bun:"component_id,nullzero"`
	CreatedAt      int64  `bun:"created_at,notnull"` // Unix timestamp
}

// ToAsset converts an AssetModel to an Asset
func (m *AssetModel) ToAsset() *Asset {
	return &Asset{
		Ref:            m.ID,
		ExternalID:     browse.EntityID(m.ExternalID),
		RepositoryName: m.RepositoryName,
		Format:         m.Format,
		Path:           m.Path,
		ContentType:    m.ContentType,
		Size:           m.Size,
		ComponentRef:   m.ComponentRef,
		CreatedAt:      time.Unix(m.CreatedAt, 0),
	}
}

// Component is a registered logical package/version unit.
type Component struct {
	Ref            int64
	ExternalID     browse.EntityID
	RepositoryName string
	Format         string
	Name           string
	Version        string
	CreatedAt      time.Time
}

// Asset is a registered file, optionally belonging to a component.
type Asset struct {
	Ref            int64
	ExternalID     browse.EntityID
	RepositoryName string
	Format         string
	Path           string
	ContentType    string
	Size           int64
	ComponentRef   int64
	CreatedAt      time.Time
}

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
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"repobrowse/internal/browse"
	"repobrowse/internal/common"
)

// DefaultPageSize is the page size of the asset listing consumed by the
// REST boundary.
const DefaultPageSize = 10

// Registry is the component/asset registry. It owns the external identities
// of components and assets and implements the reference resolution the
// browse tree needs: opaque external id to storage ref and back.
type Registry struct {
	*bun.DB
}

var _ browse.Resolver = (*Registry)(nil)

// AddComponent registers a component and fills in its storage ref. An empty
// ExternalID gets a generated one.
func (r *Registry) AddComponent(ctx context.Context, c *Component) error {
	if c.ExternalID == "" {
		c.ExternalID = browse.EntityID(uuid.NewString())
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	model := &ComponentModel{
		ExternalID:     string(c.ExternalID),
		RepositoryName: c.RepositoryName,
		Format:         c.Format,
		Name:           c.Name,
		Version:        c.Version,
		CreatedAt:      c.CreatedAt.Unix(),
	}
	_, err := r.NewInsert().Model(model).Returning("id").Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("component %s: %w", c.ExternalID, common.ErrExists)
		}
		return err
	}
	c.Ref = model.ID
	return nil
}

// AddAsset registers an asset and fills in its storage ref. An empty
// ExternalID gets a generated one.
func (r *Registry) AddAsset(ctx context.Context, a *Asset) error {
	if a.ExternalID == "" {
		a.ExternalID = browse.EntityID(uuid.NewString())
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	model := &AssetModel{
		ExternalID:     string(a.ExternalID),
		RepositoryName: a.RepositoryName,
		Format:         a.Format,
		Path:           a.Path,
		ContentType:    a.ContentType,
		Size:           a.Size,
		ComponentRef:   a.ComponentRef,
		CreatedAt:      a.CreatedAt.Unix(),
	}
	_, err := r.NewInsert().Model(model).Returning("id").Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("asset %s: %w", a.ExternalID, common.ErrExists)
		}
		return err
	}
	a.Ref = model.ID
	return nil
}

// ComponentByID returns the component registered under the external id.
func (r *Registry) ComponentByID(ctx context.Context, id browse.EntityID) (*Component, error) {
	var model ComponentModel
	err := r.NewSelect().
		Model(&model).
		Where("external_id = ?", string(id)).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.ToComponent(), nil
}

// AssetByID returns the asset registered under the external id.
func (r *Registry) AssetByID(ctx context.Context, id browse.EntityID) (*Asset, error) {
	var model AssetModel
	err := r.NewSelect().
		Model(&model).
		Where("external_id = ?", string(id)).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.ToAsset(), nil
}

// DeleteComponent removes the registry row; tree nodes are the Pruning
// Manager's business.
func (r *Registry) DeleteComponent(ctx context.Context, id browse.EntityID) error {
	res, err := r.NewDelete().
		Model((*ComponentModel)(nil)).
		Where("external_id = ?", string(id)).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("component %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// DeleteAsset removes the registry row; tree nodes are the Pruning
// Manager's business.
func (r *Registry) DeleteAsset(ctx context.Context, id browse.EntityID) error {
	res, err := r.NewDelete().
		Model((*AssetModel)(nil)).
		Where("external_id = ?", string(id)).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("asset %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// PurgeRepository drops every asset and component registered under the
// repository. Assets go first so the component FK never dangles.
func (r *Registry) PurgeRepository(ctx context.Context, repositoryName string) (int, error) {
	assets, err := r.NewDelete().
		Model((*AssetModel)(nil)).
		Where("repository_name = ?", repositoryName).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	components, err := r.NewDelete().
		Model((*ComponentModel)(nil)).
		Where("repository_name = ?", repositoryName).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	na, _ := assets.RowsAffected()
	nc, _ := components.RowsAffected()
	return int(na + nc), nil
}

// AssetPage is one page of the asset listing. An empty ContinuationToken
// means the listing is exhausted.
type AssetPage struct {
	Assets            []*Asset
	ContinuationToken string
}

// ListAssets returns one page of assets of a repository, ordered by storage
// ref. token is the opaque continuation token of the previous page, empty
// for the first page; limit <= 0 falls back to DefaultPageSize.
func (r *Registry) ListAssets(ctx context.Context, repositoryName string, limit int, token string) (*AssetPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	afterRef := int64(0)
	if token != "" {
		parsed, err := strconv.ParseInt(token, 10, 64)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("token %q: %w", token, common.ErrInvalidToken)
		}
		afterRef = parsed
	}

	var models []AssetModel
	err := r.NewSelect().
		Model(&models).
		Where("repository_name = ?", repositoryName).
		Where("id > ?", afterRef).
		Order("id").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	page := &AssetPage{Assets: make([]*Asset, len(models))}
	for i := range models {
		page.Assets[i] = models[i].ToAsset()
	}
	// a short page means nothing is left, so no further token
	if len(models) == limit {
		page.ContinuationToken = strconv.FormatInt(models[len(models)-1].ID, 10)
	}
	return page, nil
}

// browse.Resolver implementation

// ComponentRef resolves an external component id to its storage ref.
func (r *Registry) ComponentRef(ctx context.Context, id browse.EntityID) (int64, error) {
	var ref int64
	err := r.NewRaw(`SELECT id FROM components WHERE external_id = ?`, string(id)).Scan(ctx, &ref)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("component %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	return ref, nil
}

// AssetRef resolves an external asset id to its storage ref.
func (r *Registry) AssetRef(ctx context.Context, id browse.EntityID) (int64, error) {
	var ref int64
	err := r.NewRaw(`SELECT id FROM assets WHERE external_id = ?`, string(id)).Scan(ctx, &ref)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("asset %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	return ref, nil
}

// ComponentID resolves a storage ref back to the external component id.
func (r *Registry) ComponentID(ctx context.Context, ref int64) (browse.EntityID, error) {
	var id string
	err := r.NewRaw(`SELECT external_id FROM components WHERE id = ?`, ref).Scan(ctx, &id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("component ref %d: %w", ref, common.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return browse.EntityID(id), nil
}

// AssetID resolves a storage ref back to the external asset id.
func (r *Registry) AssetID(ctx context.Context, ref int64) (browse.EntityID, error) {
	var id string
	err := r.NewRaw(`SELECT external_id FROM assets WHERE id = ?`, ref).Scan(ctx, &id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("asset ref %d: %w", ref, common.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return browse.EntityID(id), nil
}

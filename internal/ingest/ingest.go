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

// Package ingest turns a local directory tree into component and asset
// create events against the browse index, the same event stream a
// format-specific content handler would emit.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"repobrowse/internal/browse"
	"repobrowse/internal/common"
	"repobrowse/internal/storage"
	"repobrowse/internal/util"
)

// Config configures a directory ingestion.
type Config struct {
	RepositoryName string
	Format         string

	// ComponentName, when set, registers one component for the whole
	// directory and roots every asset under its node.
	ComponentName    string
	ComponentVersion string

	// PathPrefix holds segments prepended to every ingested path. Empty
	// defaults to [ComponentName] when a component is named, else nothing.
	PathPrefix []string

	GitignoreEnabled bool
	Includes         []string
	Excludes         []string
}

// Result summarizes one ingestion run.
type Result struct {
	ComponentID browse.EntityID
	Assets      int
	Skipped     int
	Bytes       int64
	Duration    time.Duration
}

// Ingester walks a directory and feeds the browse tree through the node
// lifecycle manager, retrying collisions the way any ingestion caller must.
type Ingester struct {
	manager  *browse.Manager
	registry *storage.Registry
	config   Config
}

// New returns an Ingester for the given managers and configuration.
func New(manager *browse.Manager, registry *storage.Registry, config Config) *Ingester {
	if len(config.PathPrefix) == 0 && config.ComponentName != "" {
		config.PathPrefix = []string{config.ComponentName}
	}
	return &Ingester{manager: manager, registry: registry, config: config}
}

// Run ingests sourceDir and returns the run summary.
func (ing *Ingester) Run(ctx context.Context, sourceDir string) (*Result, error) {
	start := time.Now()

	sourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", sourceDir)
	}

	result := &Result{}
	filter := BuildFileFilter(sourceDir, ing.config.GitignoreEnabled, ing.config.Includes, ing.config.Excludes)

	var componentRef int64
	if ing.config.ComponentName != "" {
		component, err := ing.createComponent(ctx)
		if err != nil {
			return nil, err
		}
		result.ComponentID = component.ExternalID
		componentRef = component.Ref
	}

	err = filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == sourceDir {
			return nil
		}
		relPath, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if !filter(relPath, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			result.Skipped++
			return nil
		}
		if d.IsDir() {
			// folders materialize lazily from their deepest asset
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		if err := ing.createAsset(ctx, relPath, fi.Size(), componentRef); err != nil {
			return fmt.Errorf("ingest %s: %w", relPath, err)
		}
		result.Assets++
		result.Bytes += fi.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	log.Infof("[Ingest] %s: %d assets (%d bytes) into %s, %d skipped, took %s",
		sourceDir, result.Assets, result.Bytes, ing.config.RepositoryName,
		result.Skipped, result.Duration.Round(time.Millisecond))
	return result, nil
}

func (ing *Ingester) createComponent(ctx context.Context) (*storage.Component, error) {
	component := &storage.Component{
		RepositoryName: ing.config.RepositoryName,
		Format:         ing.config.Format,
		Name:           ing.config.ComponentName,
		Version:        ing.config.ComponentVersion,
	}
	if err := ing.registry.AddComponent(ctx, component); err != nil {
		return nil, err
	}

	err := util.Retry(ctx, func() error {
		_, err := ing.manager.CreateComponentNode(ctx,
			ing.config.RepositoryName, ing.config.Format, ing.config.PathPrefix, component.ExternalID)
		return err
	}, util.IngestRetryOptions(ctx)...)
	if err != nil {
		return nil, err
	}
	return component, nil
}

func (ing *Ingester) createAsset(ctx context.Context, relPath string, size int64, componentRef int64) error {
	segments := append(append([]string{}, ing.config.PathPrefix...), common.SplitSegments(relPath)...)

	asset := &storage.Asset{
		RepositoryName: ing.config.RepositoryName,
		Format:         ing.config.Format,
		Path:           common.JoinLeafPath(segments),
		ContentType:    mime.TypeByExtension(filepath.Ext(relPath)),
		Size:           size,
		ComponentRef:   componentRef,
	}
	if err := ing.registry.AddAsset(ctx, asset); err != nil {
		return err
	}

	return util.Retry(ctx, func() error {
		_, err := ing.manager.CreateAssetNode(ctx,
			ing.config.RepositoryName, ing.config.Format, segments, asset.ExternalID)
		return err
	}, util.IngestRetryOptions(ctx)...)
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/uptrace/bun"

	"repobrowse/internal/browse"
	"repobrowse/internal/common"
)

// BrowseDB implements the browse.Store contract over a Bun database handle.
type BrowseDB struct {
	*bun.DB
}

var _ browse.Store = (*BrowseDB)(nil)

// FindNode returns the node at the exact (repository, parentPath, name)
// coordinate; common.ErrNotFound if no such node exists.
func (db *BrowseDB) FindNode(ctx context.Context, repositoryName, parentPath, name string) (*browse.Node, error) {
	var model BrowseNodeModel
	err := db.NewSelect().
		Model(&model).
		Where("repository_name = ?", repositoryName).
		Where("parent_path = ?", parentPath).
		Where("name = ?", name).
		Limit(1).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.ToNode(), nil
}

// InsertNode persists a new node and fills in node.ID. A violation of the
// unique coordinate index surfaces as common.ErrExists so the caller can
// fall into the merge/conflict path.
func (db *BrowseDB) InsertNode(ctx context.Context, node *browse.Node) error {
	model := NodeModelFromNode(node)
	// Use RETURNING to get the row id (libsql doesn't support LastInsertId)
	_, err := db.NewInsert().
		Model(model).
		Returning("id").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("node %s%s in %s: %w",
				node.ParentPath, node.Name, node.RepositoryName, common.ErrExists)
		}
		return err
	}
	node.ID = model.ID
	return nil
}

// SetNodePath rewrites the display path of a node.
func (db *BrowseDB) SetNodePath(ctx context.Context, nodeID int64, path string) error {
	_, err := db.NewUpdate().
		Model((*BrowseNodeModel)(nil)).
		Set("path = ?", path).
		Where("id = ?", nodeID).
		Exec(ctx)
	return err
}

// SetComponentRef attaches a component ref to a node.
func (db *BrowseDB) SetComponentRef(ctx context.Context, nodeID, ref int64) error {
	_, err := db.NewUpdate().
		Model((*BrowseNodeModel)(nil)).
		Set("component_id = ?", ref).
		Where("id = ?", nodeID).
		Exec(ctx)
	return err
}

// SetAssetRef attaches an asset ref to a node.
func (db *BrowseDB) SetAssetRef(ctx context.Context, nodeID, ref int64) error {
	_, err := db.NewUpdate().
		Model((*BrowseNodeModel)(nil)).
		Set("asset_id = ?", ref).
		Where("id = ?", nodeID).
		Exec(ctx)
	return err
}

// ClearComponentRef removes the component ref, leaving the node in place.
func (db *BrowseDB) ClearComponentRef(ctx context.Context, nodeID int64) error {
	_, err := db.NewUpdate().
		Model((*BrowseNodeModel)(nil)).
		Set("component_id = NULL").
		Where("id = ?", nodeID).
		Exec(ctx)
	return err
}

// ClearAssetRef removes the asset ref, leaving the node in place.
func (db *BrowseDB) ClearAssetRef(ctx context.Context, nodeID int64) error {
	_, err := db.NewUpdate().
		Model((*BrowseNodeModel)(nil)).
		Set("asset_id = NULL").
		Where("id = ?", nodeID).
		Exec(ctx)
	return err
}

// DeleteNode removes a node row by id.
func (db *BrowseDB) DeleteNode(ctx context.Context, nodeID int64) error {
	_, err := db.NewDelete().
		Model((*BrowseNodeModel)(nil)).
		Where("id = ?", nodeID).
		Exec(ctx)
	return err
}

// NodesByComponent returns all nodes carrying the component ref.
func (db *BrowseDB) NodesByComponent(ctx context.Context, ref int64) ([]*browse.Node, error) {
	var models []BrowseNodeModel
	err := db.NewSelect().
		Model(&models).
		Where("component_id = ?", ref).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	nodes := make([]*browse.Node, len(models))
	for i := range models {
		nodes[i] = models[i].ToNode()
	}
	return nodes, nil
}

// NodeByAsset returns the single node carrying the asset ref, or
// common.ErrNotFound.
func (db *BrowseDB) NodeByAsset(ctx context.Context, ref int64) (*browse.Node, error) {
	var model BrowseNodeModel
	err := db.NewSelect().
		Model(&model).
		Where("asset_id = ?", ref).
		Limit(1).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.ToNode(), nil
}

// CountChildrenUpTo counts direct children of basePath, scanning at most
// limit rows of the coordinate index so the probe costs O(limit).
func (db *BrowseDB) CountChildrenUpTo(ctx context.Context, repositoryName, basePath string, limit int) (int, error) {
	var count int
	err := db.NewRaw(`
		SELECT COUNT(*) FROM (
			SELECT 1 FROM browse_nodes
			WHERE repository_name = ? AND parent_path = ?
			LIMIT ?
		)
	`, repositoryName, basePath, limit).Scan(ctx, &count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListChildren returns up to maxNodes direct children of basePath, with the
// optional assetFilter expression joined by conjunction. Named :param
// placeholders in the filter are bound from filterParams.
func (db *BrowseDB) ListChildren(ctx context.Context, repositoryName, basePath string, maxNodes int, assetFilter string, filterParams map[string]any) ([]*browse.Node, error) {
	var models []BrowseNodeModel
	q := db.NewSelect().
		Model(&models).
		Where("repository_name = ?", repositoryName).
		Where("parent_path = ?", basePath)

	if assetFilter != "" {
		expr, args, err := expandNamedParams(assetFilter, filterParams)
		if err != nil {
			return nil, err
		}
		q = q.Where("("+expr+")", args...)
	}

	err := q.Order("name").Limit(maxNodes).Scan(ctx)
	if err != nil {
		return nil, err
	}
	nodes := make([]*browse.Node, len(models))
	for i := range models {
		nodes[i] = models[i].ToNode()
	}
	return nodes, nil
}

// DeleteByRepository unconditionally removes up to limit nodes of the
// repository; the id subselect stands in for DELETE ... LIMIT, which SQLite
// only offers as a compile-time option.
func (db *BrowseDB) DeleteByRepository(ctx context.Context, repositoryName string, limit int) (int, error) {
	res, err := db.NewRaw(`
		DELETE FROM browse_nodes WHERE id IN (
			SELECT id FROM browse_nodes WHERE repository_name = ? LIMIT ?
		)
	`, repositoryName, limit).Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

var namedParamPattern = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// expandNamedParams rewrites :name placeholders in a filter expression to
// positional ? bindings, collecting the matching values in order of
// appearance. A placeholder without a value is an error; unused values are
// ignored.
func expandNamedParams(expr string, params map[string]any) (string, []any, error) {
	var args []any
	var missing []string

	expanded := namedParamPattern.ReplaceAllStringFunc(expr, func(match string) string {
		name := match[1:]
		value, ok := params[name]
		if !ok {
			missing = append(missing, name)
			return match
		}
		args = append(args, value)
		return "?"
	})

	if len(missing) > 0 {
		return "", nil, fmt.Errorf("filter parameter(s) not bound: %s", strings.Join(missing, ", "))
	}
	return expanded, args, nil
}

// isUniqueViolation reports whether the error is a SQLite unique index
// violation. libsql exposes no typed error for it, only the message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/esther/internal/apperror"
	"github.com/sakif/esther/internal/model"
	"github.com/sakif/esther/internal/repository"
)

var _ repository.ListRepository = (*DB)(nil)

const listColumns = `id, owner_id, title, slug, description, is_public, created, modified`

func scanList(row rowScanner) (*model.List, error) {
	var (
		l    model.List
		desc sql.NullString
	)
	if err := row.Scan(
		&l.ID, &l.OwnerID, &l.Title, &l.Slug, &desc,
		&l.IsPublic, &l.Created, &l.Modified,
	); err != nil {
		return nil, err
	}
	l.Description = stringPtr(desc)
	l.Created = l.Created.UTC()
	l.Modified = l.Modified.UTC()
	return &l, nil
}

// CreateList inserts a list and fills in its ID and timestamps.
//
// The slug check and the insert share one transaction; a slug already in
// use by any owner returns apperror.ErrConflict.
func (db *DB) CreateList(ctx context.Context, list *model.List) error {
	now := db.now()
	list.Created = now
	list.Modified = now

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var taken bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM lists WHERE slug = ?)`, list.Slug,
	).Scan(&taken); err != nil {
		return fmt.Errorf("sqlite: checking slug %s: %w", list.Slug, err)
	}
	if taken {
		return apperror.Conflict("list", list.Slug)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO lists (owner_id, title, slug, description, is_public, created, modified)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		list.OwnerID,
		list.Title,
		list.Slug,
		nullString(list.Description),
		list.IsPublic,
		list.Created,
		list.Modified,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("list", list.Slug)
		}
		return fmt.Errorf("sqlite: creating list %s: %w", list.Slug, err)
	}

	if list.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("sqlite: reading list id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing list %s: %w", list.Slug, err)
	}
	return nil
}

// GetList retrieves the list with the given slug, provided it belongs to
// ownerID. A list owned by someone else is reported as not found.
func (db *DB) GetList(ctx context.Context, ownerID int64, slug string) (*model.List, error) {
	l, err := scanList(db.conn.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE owner_id = ? AND slug = ?`,
		ownerID, slug,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("list", slug)
		}
		return nil, fmt.Errorf("sqlite: getting list %s: %w", slug, err)
	}
	return l, nil
}

// ListLists returns an owner's lists, oldest first.
func (db *DB) ListLists(ctx context.Context, q repository.ListQuery) ([]model.List, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+listColumns+`
		 FROM lists
		 WHERE owner_id = ? AND (? OR is_public)
		 ORDER BY created, id`,
		q.OwnerID,
		q.IncludePrivate,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing lists of user %d: %w", q.OwnerID, err)
	}
	defer rows.Close()

	lists := make([]model.List, 0)
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning list row: %w", err)
		}
		lists = append(lists, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating lists: %w", err)
	}
	return lists, nil
}

// UpdateList writes the mutable fields of a list and bumps Modified.
// The slug is never rewritten.
func (db *DB) UpdateList(ctx context.Context, list *model.List) error {
	list.Modified = db.now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE lists
		 SET title = ?, description = ?, is_public = ?, modified = ?
		 WHERE id = ?`,
		list.Title,
		nullString(list.Description),
		list.IsPublic,
		list.Modified,
		list.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating list %d: %w", list.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("list", idString(list.ID))
	}
	return nil
}

// SlugExists reports whether any list, of any owner, uses slug.
func (db *DB) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM lists WHERE slug = ?)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking slug %s: %w", slug, err)
	}
	return exists, nil
}

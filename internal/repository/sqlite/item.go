package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/esther/internal/apperror"
	"github.com/sakif/esther/internal/model"
	"github.com/sakif/esther/internal/repository"
)

var _ repository.ItemRepository = (*DB)(nil)

const itemColumns = `id, list_id, content, details, is_done, due, created, modified`

func scanItem(row rowScanner) (*model.Item, error) {
	var (
		it      model.Item
		details sql.NullString
		due     sql.NullTime
	)
	if err := row.Scan(
		&it.ID, &it.ListID, &it.Content, &details,
		&it.IsDone, &due, &it.Created, &it.Modified,
	); err != nil {
		return nil, err
	}
	it.Details = stringPtr(details)
	it.Due = timePtr(due)
	it.Created = it.Created.UTC()
	it.Modified = it.Modified.UTC()
	return &it, nil
}

// CreateItem inserts an item and fills in its ID and timestamps.
func (db *DB) CreateItem(ctx context.Context, item *model.Item) error {
	now := db.now()
	item.Created = now
	item.Modified = now

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO items (list_id, content, details, is_done, due, created, modified)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ListID,
		item.Content,
		nullString(item.Details),
		item.IsDone,
		nullTime(item.Due),
		item.Created,
		item.Modified,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating item in list %d: %w", item.ListID, err)
	}

	if item.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("sqlite: reading item id: %w", err)
	}
	return nil
}

// GetItem retrieves an item of the given list.
// An item belonging to another list is reported as not found.
func (db *DB) GetItem(ctx context.Context, listID, itemID int64) (*model.Item, error) {
	it, err := scanItem(db.conn.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE list_id = ? AND id = ?`,
		listID, itemID,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("item", idString(itemID))
		}
		return nil, fmt.Errorf("sqlite: getting item %d: %w", itemID, err)
	}
	return it, nil
}

// ListItems returns the items of a list ordered by due date, then
// creation time. Items without a due date come last.
func (db *DB) ListItems(ctx context.Context, listID int64) ([]model.Item, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items
		 WHERE list_id = ?
		 ORDER BY due IS NULL, due, created, id`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing items of list %d: %w", listID, err)
	}
	defer rows.Close()

	items := make([]model.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning item row: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating items: %w", err)
	}
	return items, nil
}

// UpdateItem writes the mutable fields of an item and bumps Modified.
func (db *DB) UpdateItem(ctx context.Context, item *model.Item) error {
	item.Modified = db.now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE items
		 SET content = ?, details = ?, is_done = ?, due = ?, modified = ?
		 WHERE id = ?`,
		item.Content,
		nullString(item.Details),
		item.IsDone,
		nullTime(item.Due),
		item.Modified,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating item %d: %w", item.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("item", idString(item.ID))
	}
	return nil
}

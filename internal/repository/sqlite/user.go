package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/esther/internal/apperror"
	"github.com/sakif/esther/internal/model"
	"github.com/sakif/esther/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, short_name, full_name, password_hash, is_active, is_admin, created, modified`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u        model.User
		fullName sql.NullString
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.ShortName,
		&fullName,
		&u.PasswordHash,
		&u.IsActive,
		&u.IsAdmin,
		&u.Created,
		&u.Modified,
	)
	if err != nil {
		return nil, err
	}
	u.FullName = stringPtr(fullName)
	u.Created = u.Created.UTC()
	u.Modified = u.Modified.UTC()
	return &u, nil
}

// CreateUser inserts a user and fills in its ID and timestamps.
// A duplicate e-mail address returns apperror.ErrConflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := db.now()
	user.Created = now
	user.Modified = now

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (email, short_name, full_name, password_hash, is_active, is_admin, created, modified)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Email,
		user.ShortName,
		nullString(user.FullName),
		user.PasswordHash,
		user.IsActive,
		user.IsAdmin,
		user.Created,
		user.Modified,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: creating user %s: %w", user.Email, err)
	}

	user.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading user id: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", idString(id))
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by e-mail address, case-insensitively.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", email, err)
	}
	return u, nil
}

// ListUsers returns every user ordered by e-mail address.
func (db *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}

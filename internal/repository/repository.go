// Package repository declares the storage interfaces the services depend on.
//
// Implementations live in subpackages (see repository/sqlite). Lookups
// that find nothing return an apperror.ErrNotFound error; create calls
// that hit a uniqueness constraint return apperror.ErrConflict.
package repository

import (
	"context"

	"github.com/sakif/esther/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

// ListQuery selects the lists of one owner. Private lists are only
// returned when IncludePrivate is set.
type ListQuery struct {
	OwnerID        int64
	IncludePrivate bool
}

type ListRepository interface {
	CreateList(ctx context.Context, list *model.List) error
	GetList(ctx context.Context, ownerID int64, slug string) (*model.List, error)
	ListLists(ctx context.Context, q ListQuery) ([]model.List, error)
	UpdateList(ctx context.Context, list *model.List) error
	SlugExists(ctx context.Context, slug string) (bool, error)
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *model.Item) error
	GetItem(ctx context.Context, listID, itemID int64) (*model.Item, error)
	ListItems(ctx context.Context, listID int64) ([]model.Item, error)
	UpdateItem(ctx context.Context, item *model.Item) error
}

package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sakif/esther/internal/apperror"
	"github.com/sakif/esther/internal/model"
	"github.com/sakif/esther/internal/repository"
)

// fakeStore is an in-memory implementation of every repository interface.
// It hands out copies, so a service only changes stored state through an
// explicit create or update call.
type fakeStore struct {
	users  map[int64]*model.User
	lists  map[int64]*model.List
	items  map[int64]*model.Item
	nextID int64
	now    time.Time

	// set to a non-nil error to simulate a storage failure on writes
	writeErr error
	updates  int
}

var (
	_ repository.UserRepository = (*fakeStore)(nil)
	_ repository.ListRepository = (*fakeStore)(nil)
	_ repository.ItemRepository = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[int64]*model.User),
		lists: make(map[int64]*model.List),
		items: make(map[int64]*model.Item),
		now:   time.Date(2013, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) tick() time.Time {
	f.now = f.now.Add(time.Minute)
	f.nextID++
	return f.now
}

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperror.Conflict("user", user.Email)
		}
	}
	user.Created = f.tick()
	user.Modified = user.Created
	user.ID = f.nextID
	c := *user
	f.users[user.ID] = &c
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", "x")
	}
	c := *u
	return &c, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeStore) ListUsers(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeStore) CreateList(_ context.Context, list *model.List) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	for _, l := range f.lists {
		if l.Slug == list.Slug {
			return apperror.Conflict("list", list.Slug)
		}
	}
	list.Created = f.tick()
	list.Modified = list.Created
	list.ID = f.nextID
	c := *list
	f.lists[list.ID] = &c
	return nil
}

func (f *fakeStore) GetList(_ context.Context, ownerID int64, slug string) (*model.List, error) {
	for _, l := range f.lists {
		if l.OwnerID == ownerID && l.Slug == slug {
			c := *l
			return &c, nil
		}
	}
	return nil, apperror.NotFound("list", slug)
}

func (f *fakeStore) ListLists(_ context.Context, q repository.ListQuery) ([]model.List, error) {
	out := make([]model.List, 0)
	for _, l := range f.lists {
		if l.OwnerID == q.OwnerID && (q.IncludePrivate || l.IsPublic) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateList(_ context.Context, list *model.List) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.lists[list.ID]; !ok {
		return apperror.NotFound("list", list.Slug)
	}
	f.updates++
	list.Modified = f.tick()
	c := *list
	f.lists[list.ID] = &c
	return nil
}

func (f *fakeStore) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, l := range f.lists {
		if l.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateItem(_ context.Context, item *model.Item) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	item.Created = f.tick()
	item.Modified = item.Created
	item.ID = f.nextID
	c := *item
	f.items[item.ID] = &c
	return nil
}

func (f *fakeStore) GetItem(_ context.Context, listID, itemID int64) (*model.Item, error) {
	it, ok := f.items[itemID]
	if !ok || it.ListID != listID {
		return nil, apperror.NotFound("item", "x")
	}
	c := *it
	return &c, nil
}

func (f *fakeStore) ListItems(_ context.Context, listID int64) ([]model.Item, error) {
	out := make([]model.Item, 0)
	for _, it := range f.items {
		if it.ListID == listID {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateItem(_ context.Context, item *model.Item) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.items[item.ID]; !ok {
		return apperror.NotFound("item", "x")
	}
	f.updates++
	item.Modified = f.tick()
	c := *item
	f.items[item.ID] = &c
	return nil
}

// addUser stores an active user directly, bypassing validation.
func (f *fakeStore) addUser(email string) *model.User {
	u := &model.User{Email: email, ShortName: strings.Split(email, "@")[0], IsActive: true}
	f.CreateUser(context.Background(), u)
	return u
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

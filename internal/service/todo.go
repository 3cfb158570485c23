// Package service contains the business rules of the application.
//
// Handlers parse HTTP and write responses; services decide what a request
// is allowed to do and talk to storage through the repository interfaces:
//
//	Handler (HTTP) → Service (rules) → Repository (storage)
//
// Services never read the caller from a global. The acting identity is an
// explicit model.Identity argument on every operation that needs one.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gosimple/slug"

	"github.com/sakif/esther/internal/apperror"
	"github.com/sakif/esther/internal/form"
	"github.com/sakif/esther/internal/model"
	"github.com/sakif/esther/internal/repository"
)

const (
	msgTitleTaken   = "Invalid title: a list with this title already exists."
	msgTitleNoSlug  = "Invalid title: the title must contain letters or digits."
	msgCreateOthers = "lists can only be created by their owner"
	msgWriteOthers  = "this list belongs to another user"
)

// TodoService enforces visibility and ownership for lists and items and
// applies create and partial-update requests to them.
//
// A private resource owned by someone else is reported as not found, so
// its existence never leaks. A public resource owned by someone else is
// readable, and writes to it are forbidden.
type TodoService struct {
	users  repository.UserRepository
	lists  repository.ListRepository
	items  repository.ItemRepository
	loc    *time.Location
	logger *slog.Logger
}

// NewTodoService creates a TodoService. loc localizes datetimes submitted
// without a UTC offset; nil means UTC.
func NewTodoService(
	users repository.UserRepository,
	lists repository.ListRepository,
	items repository.ItemRepository,
	loc *time.Location,
	logger *slog.Logger,
) *TodoService {
	if loc == nil {
		loc = time.UTC
	}
	return &TodoService{
		users:  users,
		lists:  lists,
		items:  items,
		loc:    loc,
		logger: logger,
	}
}

// ListPatch is a validated update to a list. Unset fields are left alone.
type ListPatch struct {
	Title       form.Opt[string]
	Description form.Opt[*string]
	IsPublic    form.Opt[bool]
}

func (p *ListPatch) fields() []form.Field {
	return []form.Field{
		form.Text("title", &p.Title, form.Required(), form.MaxLength(model.MaxListTitleLength)),
		form.OptionalText("description", &p.Description),
		form.Bool("is_public", &p.IsPublic),
	}
}

// Apply writes the set fields onto l and reports whether anything changed.
func (p ListPatch) Apply(l *model.List) bool {
	changed := false
	if v, ok := p.Title.Get(); ok && v != l.Title {
		l.Title = v
		changed = true
	}
	if v, ok := p.Description.Get(); ok && !equalStringPtr(v, l.Description) {
		l.Description = v
		changed = true
	}
	if v, ok := p.IsPublic.Get(); ok && v != l.IsPublic {
		l.IsPublic = v
		changed = true
	}
	return changed
}

// ItemPatch is a validated update to an item. Unset fields are left alone.
type ItemPatch struct {
	Content form.Opt[string]
	Details form.Opt[*string]
	IsDone  form.Opt[bool]
	Due     form.Opt[*time.Time]
}

func (p *ItemPatch) fields(loc *time.Location) []form.Field {
	return []form.Field{
		form.Text("content", &p.Content, form.Required(), form.MaxLength(model.MaxItemContentLength)),
		form.OptionalText("details", &p.Details, form.MaxLength(model.MaxItemDetailsLength)),
		form.Bool("is_done", &p.IsDone),
		form.DateTime("due", &p.Due, loc),
	}
}

// Apply writes the set fields onto it and reports whether anything changed.
func (p ItemPatch) Apply(it *model.Item) bool {
	changed := false
	if v, ok := p.Content.Get(); ok && v != it.Content {
		it.Content = v
		changed = true
	}
	if v, ok := p.Details.Get(); ok && !equalStringPtr(v, it.Details) {
		it.Details = v
		changed = true
	}
	if v, ok := p.IsDone.Get(); ok && v != it.IsDone {
		it.IsDone = v
		changed = true
	}
	if v, ok := p.Due.Get(); ok && !equalTimePtr(v, it.Due) {
		it.Due = v
		changed = true
	}
	return changed
}

// ---- lists ----

// Lists returns the lists of ownerID that the caller may see, oldest first.
func (s *TodoService) Lists(ctx context.Context, who model.Identity, ownerID int64) ([]model.List, error) {
	if _, err := s.users.GetUserByID(ctx, ownerID); err != nil {
		return nil, s.fail("service/todo: loading owner", err, slog.Int64("ownerID", ownerID))
	}

	lists, err := s.lists.ListLists(ctx, repository.ListQuery{
		OwnerID:        ownerID,
		IncludePrivate: who.Is(ownerID),
	})
	if err != nil {
		return nil, s.fail("service/todo: listing lists", err, slog.Int64("ownerID", ownerID))
	}
	return lists, nil
}

// CreateList validates values as a complete list and stores it under
// ownerID. Only the owner may create lists. The slug is derived from the
// title here and never changes afterwards.
func (s *TodoService) CreateList(ctx context.Context, who model.Identity, ownerID int64, values form.Values) (*model.List, error) {
	if !who.Is(ownerID) {
		return nil, apperror.Forbidden(msgCreateOthers)
	}
	if _, err := s.users.GetUserByID(ctx, ownerID); err != nil {
		return nil, s.fail("service/todo: loading owner", err, slog.Int64("ownerID", ownerID))
	}

	var p ListPatch
	f := form.New(p.fields(), values)
	f.Validate()

	candidate := ""
	if f.Valid("title") {
		candidate = slug.Make(p.Title.Value())
		switch {
		case candidate == "":
			f.AddError("title", msgTitleNoSlug)
		default:
			taken, err := s.lists.SlugExists(ctx, candidate)
			if err != nil {
				return nil, s.fail("service/todo: checking slug", err, slog.String("slug", candidate))
			}
			if taken {
				f.AddError("title", msgTitleTaken)
			}
		}
	}
	if err := f.Err(); err != nil {
		return nil, err
	}

	if _, ok := values["is_public"]; !ok {
		p.IsPublic = form.Set(true)
	}

	list := &model.List{OwnerID: ownerID, Slug: candidate}
	p.Apply(list)

	if err := s.lists.CreateList(ctx, list); err != nil {
		// Lost a race with another create of the same title.
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("title", msgTitleTaken)
		}
		return nil, s.fail("service/todo: creating list", err, slog.String("slug", candidate))
	}

	s.logger.Info("list created",
		slog.Int64("listID", list.ID),
		slog.Int64("ownerID", ownerID),
		slog.String("slug", list.Slug),
	)
	return list, nil
}

// GetList returns a list the caller may read.
func (s *TodoService) GetList(ctx context.Context, who model.Identity, ownerID int64, listSlug string) (*model.List, error) {
	return s.readableList(ctx, who, ownerID, listSlug)
}

// PatchList applies a partial update to a list.
//
// Checks run in a fixed order: the list must exist and be visible, the
// caller must own it, the body must be non-empty and name only known
// fields, and each present field must validate. Nothing is written unless
// every check passes and at least one value changes.
func (s *TodoService) PatchList(ctx context.Context, who model.Identity, ownerID int64, listSlug string, values form.Values) (*model.List, error) {
	list, err := s.lists.GetList(ctx, ownerID, listSlug)
	if err != nil {
		return nil, s.fail("service/todo: loading list", err, slog.String("slug", listSlug))
	}
	if err := authorizeWrite(who, list.OwnerID, list.IsPublic, listNotFound(listSlug)); err != nil {
		return nil, err
	}

	var p ListPatch
	if err := bindPartial(p.fields(), values); err != nil {
		return nil, err
	}

	if p.Apply(list) {
		if err := s.lists.UpdateList(ctx, list); err != nil {
			return nil, s.fail("service/todo: updating list", err, slog.Int64("listID", list.ID))
		}
		s.logger.Info("list updated", slog.Int64("listID", list.ID))
	}
	return list, nil
}

// ---- items ----

// Items returns the items of a list the caller may read, ordered by due
// date (undated last) then creation time.
func (s *TodoService) Items(ctx context.Context, who model.Identity, ownerID int64, listSlug string) ([]model.Item, error) {
	list, err := s.readableList(ctx, who, ownerID, listSlug)
	if err != nil {
		return nil, err
	}

	items, err := s.items.ListItems(ctx, list.ID)
	if err != nil {
		return nil, s.fail("service/todo: listing items", err, slog.Int64("listID", list.ID))
	}
	return items, nil
}

// CreateItem validates values as a complete item and adds it to a list.
// A list the caller cannot see is not found; a visible list owned by
// someone else is forbidden.
func (s *TodoService) CreateItem(ctx context.Context, who model.Identity, ownerID int64, listSlug string, values form.Values) (*model.Item, error) {
	list, err := s.readableList(ctx, who, ownerID, listSlug)
	if err != nil {
		return nil, err
	}
	if !who.Is(list.OwnerID) {
		return nil, apperror.Forbidden(msgWriteOthers)
	}

	var p ItemPatch
	f := form.New(p.fields(s.loc), values)
	if !f.Validate() {
		return nil, f.Err()
	}

	item := &model.Item{ListID: list.ID}
	p.Apply(item)

	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, s.fail("service/todo: creating item", err, slog.Int64("listID", list.ID))
	}

	s.logger.Info("item created",
		slog.Int64("itemID", item.ID),
		slog.Int64("listID", list.ID),
	)
	return item, nil
}

// GetItem returns an item of a list the caller may read.
func (s *TodoService) GetItem(ctx context.Context, who model.Identity, ownerID int64, listSlug string, itemID int64) (*model.Item, error) {
	list, err := s.readableList(ctx, who, ownerID, listSlug)
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, list.ID, itemID)
	if err != nil {
		return nil, s.fail("service/todo: loading item", err, slog.Int64("itemID", itemID))
	}
	return item, nil
}

// PatchItem applies a partial update to an item. An item takes its owner
// and visibility from its list; the checks run in the same order as
// PatchList.
func (s *TodoService) PatchItem(ctx context.Context, who model.Identity, ownerID int64, listSlug string, itemID int64, values form.Values) (*model.Item, error) {
	list, err := s.lists.GetList(ctx, ownerID, listSlug)
	if err != nil {
		return nil, s.fail("service/todo: loading list", err, slog.String("slug", listSlug))
	}
	// Nothing under a private list is looked up for a caller who cannot
	// see the list, so a missing item and a hidden one answer alike.
	if err := authorizeRead(who, list.OwnerID, list.IsPublic, listNotFound(listSlug)); err != nil {
		return nil, err
	}
	item, err := s.items.GetItem(ctx, list.ID, itemID)
	if err != nil {
		return nil, s.fail("service/todo: loading item", err, slog.Int64("itemID", itemID))
	}
	if err := authorizeWrite(who, list.OwnerID, list.IsPublic, listNotFound(listSlug)); err != nil {
		return nil, err
	}

	var p ItemPatch
	if err := bindPartial(p.fields(s.loc), values); err != nil {
		return nil, err
	}

	if p.Apply(item) {
		if err := s.items.UpdateItem(ctx, item); err != nil {
			return nil, s.fail("service/todo: updating item", err, slog.Int64("itemID", item.ID))
		}
		s.logger.Info("item updated", slog.Int64("itemID", item.ID))
	}
	return item, nil
}

// ---- helpers ----

func (s *TodoService) readableList(ctx context.Context, who model.Identity, ownerID int64, listSlug string) (*model.List, error) {
	list, err := s.lists.GetList(ctx, ownerID, listSlug)
	if err != nil {
		return nil, s.fail("service/todo: loading list", err, slog.String("slug", listSlug))
	}
	if err := authorizeRead(who, list.OwnerID, list.IsPublic, listNotFound(listSlug)); err != nil {
		return nil, err
	}
	return list, nil
}

// fail wraps err with msg. Errors that are not part of the application's
// error taxonomy are storage failures and get logged.
func (s *TodoService) fail(msg string, err error, attrs ...any) error {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		s.logger.Error(msg, append(attrs, slog.String("error", err.Error()))...)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func canRead(who model.Identity, ownerID int64, isPublic bool) bool {
	return isPublic || who.Is(ownerID)
}

// authorizeRead hides private resources of other users behind notFound.
func authorizeRead(who model.Identity, ownerID int64, isPublic bool, notFound error) error {
	if !canRead(who, ownerID, isPublic) {
		return notFound
	}
	return nil
}

// authorizeWrite lets only the owner write. Other callers get notFound for
// a private resource and Forbidden for a public one.
func authorizeWrite(who model.Identity, ownerID int64, isPublic bool, notFound error) error {
	if who.Is(ownerID) {
		return nil
	}
	if !isPublic {
		return notFound
	}
	return apperror.Forbidden(msgWriteOthers)
}

// bindPartial validates values against the fields they name.
func bindPartial(fields []form.Field, values form.Values) error {
	f, err := form.NewPartial(fields, values)
	if err != nil {
		return err
	}
	if !f.Validate() {
		return f.Err()
	}
	return nil
}

func listNotFound(listSlug string) error {
	return apperror.NotFound("list", listSlug)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/esther/internal/apperror"
	"github.com/sakif/esther/internal/model"
)

func createTestItem(t *testing.T, db *DB, listID int64, content string, due *time.Time) *model.Item {
	t.Helper()
	item := &model.Item{ListID: listID, Content: content, Due: due}
	if err := db.CreateItem(context.Background(), item); err != nil {
		t.Fatalf("failed to create test item: %v", err)
	}
	return item
}

func TestCreateItem(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	list := createTestList(t, db, owner.ID, "errands", true)

	due := time.Date(2013, 3, 9, 10, 15, 39, 0, time.UTC)
	details := "Bottom shelf, aisle 12."
	item := &model.Item{
		ListID:  list.ID,
		Content: "Buy four pieces of shrimp.",
		Details: &details,
		Due:     &due,
	}
	if err := db.CreateItem(context.Background(), item); err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}

	found, err := db.GetItem(context.Background(), list.ID, item.ID)
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if found.Content != item.Content || found.IsDone {
		t.Errorf("found = %+v", found)
	}
	if found.Details == nil || *found.Details != details {
		t.Errorf("Details = %v, want %q", found.Details, details)
	}
	if found.Due == nil || !found.Due.Equal(due) {
		t.Errorf("Due = %v, want %v", found.Due, due)
	}
}

func TestGetItem_WrongList(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	a := createTestList(t, db, owner.ID, "a", true)
	b := createTestList(t, db, owner.ID, "b", true)
	item := createTestItem(t, db, a.ID, "in a", nil)

	_, err := db.GetItem(context.Background(), b.ID, item.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListItems_OrderedByDueThenCreated(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2013, 3, 1, 12, 0, 0, 0, time.UTC)
	stepClock(db, base)
	owner := createTestUser(t, db, "owner@example.com")
	list := createTestList(t, db, owner.ID, "errands", true)

	later := base.Add(3 * time.Hour)
	sooner := base.Add(1 * time.Hour)

	// Created in reverse due order; the undated item is created first.
	createTestItem(t, db, list.ID, "no due date", nil)
	createTestItem(t, db, list.ID, "due later", &later)
	createTestItem(t, db, list.ID, "due sooner", &sooner)
	createTestItem(t, db, list.ID, "also due later", &later)

	items, err := db.ListItems(context.Background(), list.ID)
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}

	want := []string{"due sooner", "due later", "also due later", "no due date"}
	if len(items) != len(want) {
		t.Fatalf("len = %d, want %d", len(items), len(want))
	}
	for i, w := range want {
		if items[i].Content != w {
			t.Errorf("items[%d] = %q, want %q", i, items[i].Content, w)
		}
	}
}

func TestUpdateItem(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	list := createTestList(t, db, owner.ID, "errands", true)
	due := time.Date(2013, 3, 9, 10, 0, 0, 0, time.UTC)
	item := createTestItem(t, db, list.ID, "Go to the store", &due)

	item.IsDone = true
	item.Due = nil
	item.Content = "Went to the store"
	if err := db.UpdateItem(context.Background(), item); err != nil {
		t.Fatalf("UpdateItem() error = %v", err)
	}

	found, err := db.GetItem(context.Background(), list.ID, item.ID)
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if !found.IsDone || found.Due != nil || found.Content != "Went to the store" {
		t.Errorf("found = %+v", found)
	}
}

func TestUpdateItem_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateItem(context.Background(), &model.Item{ID: 12, Content: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

package model

import "time"

// Field limits shared by validation and the schema.
const (
	MaxListTitleLength   = 128
	MaxItemContentLength = 255
	MaxItemDetailsLength = 2048
)

// List is a todo list owned by a user.
//
// Slug is derived from Title when the list is created and never changes
// afterwards, so renaming a list keeps its URL. Slugs are unique across
// all users.
type List struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	IsPublic    bool      `json:"is_public"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
}

// Item is a single entry of a todo list.
//
// Items of a list are ordered by Due (items without a due date last),
// then by Created.
type Item struct {
	ID       int64      `json:"id"`
	ListID   int64      `json:"list_id"`
	Content  string     `json:"content"`
	Details  *string    `json:"details"`
	IsDone   bool       `json:"is_done"`
	Due      *time.Time `json:"due"`
	Created  time.Time  `json:"created"`
	Modified time.Time  `json:"modified"`
}

// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a site account. Users own todo lists.
//
// Accounts are created by an administrator (cmd/manage adduser); there is
// no self-service registration. PasswordHash is empty for accounts that
// only sign in through GitHub.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	ShortName    string    `json:"short_name"`
	FullName     *string   `json:"full_name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsAdmin      bool      `json:"is_admin"`
	Created      time.Time `json:"created"`
	Modified     time.Time `json:"modified"`
}

// Identity is the acting caller of a request: either anonymous or a
// signed-in user.
type Identity struct {
	UserID        int64
	Authenticated bool
}

// Anonymous is the identity of a caller with no valid session.
var Anonymous = Identity{}

// UserIdentity returns the identity of a signed-in user.
func UserIdentity(userID int64) Identity {
	return Identity{UserID: userID, Authenticated: true}
}

// Is reports whether the identity is the signed-in user with the given id.
func (i Identity) Is(userID int64) bool {
	return i.Authenticated && i.UserID == userID
}

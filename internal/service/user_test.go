package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/esther/internal/apperror"
	"github.com/sakif/esther/internal/auth"
	"github.com/sakif/esther/internal/form"
)

func newTestUserService(store *fakeStore) *UserService {
	return NewUserService(store, auth.NewPasswordServiceForTest(bcrypt.MinCost), discardLogger())
}

func TestAddUser(t *testing.T) {
	store := newFakeStore()
	svc := newTestUserService(store)

	user, err := svc.AddUser(context.Background(), form.Values{
		"email":      "Esther@Example.com",
		"short_name": "Esther",
		"full_name":  "Esther Example",
		"password":   "hunter22",
	})
	require.NoError(t, err)

	assert.Equal(t, "esther@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsAdmin)
	require.NotNil(t, user.FullName)
	assert.Equal(t, "Esther Example", *user.FullName)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.NoError(t, auth.NewPasswordServiceForTest(bcrypt.MinCost).Verify(user.PasswordHash, "hunter22"))
}

func TestAddUser_Validation(t *testing.T) {
	svc := newTestUserService(newFakeStore())

	_, err := svc.AddUser(context.Background(), form.Values{"email": "not-an-email", "is_admin": "sure"})

	errs := fieldErrors(t, err)
	assert.Equal(t, []string{"Invalid email address."}, errs["email"])
	assert.Equal(t, []string{"This field is required."}, errs["short_name"])
	assert.Equal(t, []string{"This field is required."}, errs["password"])
	assert.Equal(t, []string{"Not a valid boolean value."}, errs["is_admin"])
	assert.NotContains(t, errs, "full_name")
}

func TestAddUser_DuplicateEmail(t *testing.T) {
	store := newFakeStore()
	svc := newTestUserService(store)
	store.addUser("esther@example.com")

	_, err := svc.AddUser(context.Background(), form.Values{
		"email": "ESTHER@example.com", "short_name": "E", "password": "pw",
	})

	assert.Contains(t, fieldErrors(t, err), "email")
}

func TestAddUser_StoreFailure(t *testing.T) {
	store := newFakeStore()
	store.writeErr = errors.New("disk full")
	svc := newTestUserService(store)

	_, err := svc.AddUser(context.Background(), form.Values{
		"email": "esther@example.com", "short_name": "E", "password": "pw",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrValidation)
}

func TestListUsers(t *testing.T) {
	store := newFakeStore()
	svc := newTestUserService(store)
	store.addUser("zed@example.com")
	store.addUser("amy@example.com")

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "amy@example.com", users[0].Email)
}

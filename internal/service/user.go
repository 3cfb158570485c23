package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/esther/internal/apperror"
	"github.com/sakif/esther/internal/auth"
	"github.com/sakif/esther/internal/form"
	"github.com/sakif/esther/internal/model"
	"github.com/sakif/esther/internal/repository"
)

// Account field limits.
const (
	MaxEmailLength     = 254
	MaxShortNameLength = 30
	MaxFullNameLength  = 128
)

const msgEmailTaken = "A user with this email address already exists."

// UserService manages site accounts. It backs the administrative
// commands; the HTTP API never creates users.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{users: users, passwords: passwords, logger: logger}
}

// AddUser validates values as a complete account and stores it.
//
// Recognised fields are email, short_name, full_name, password and
// is_admin. New accounts are active. The email is stored lowercased.
func (s *UserService) AddUser(ctx context.Context, values form.Values) (*model.User, error) {
	var (
		email, shortName, password form.Opt[string]
		fullName                   form.Opt[*string]
		isAdmin                    form.Opt[bool]
	)
	f := form.New([]form.Field{
		form.Text("email", &email, form.Required(), form.MaxLength(MaxEmailLength), form.Email()),
		form.Text("short_name", &shortName, form.Required(), form.MaxLength(MaxShortNameLength)),
		form.OptionalText("full_name", &fullName, form.MaxLength(MaxFullNameLength)),
		form.Text("password", &password, form.Required()),
		form.Bool("is_admin", &isAdmin),
	}, values)
	if !f.Validate() {
		return nil, f.Err()
	}

	hash, err := s.passwords.Hash(password.Value())
	if err != nil {
		return nil, apperror.ValidationFailed("password", "Password is too long.")
	}

	user := &model.User{
		Email:        strings.ToLower(email.Value()),
		ShortName:    shortName.Value(),
		FullName:     fullName.Value(),
		PasswordHash: hash,
		IsActive:     true,
		IsAdmin:      isAdmin.Value(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("email", msgEmailTaken)
		}
		return nil, fmt.Errorf("service/user: creating user: %w", err)
	}

	s.logger.Info("user created",
		slog.Int64("userID", user.ID),
		slog.String("email", user.Email),
		slog.Bool("admin", user.IsAdmin),
	)
	return user, nil
}

// ListUsers returns every account ordered by email.
func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/user: listing users: %w", err)
	}
	return users, nil
}

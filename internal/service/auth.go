package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/esther/internal/apperror"
	"github.com/sakif/esther/internal/auth"
	"github.com/sakif/esther/internal/form"
	"github.com/sakif/esther/internal/model"
	"github.com/sakif/esther/internal/repository"
)

const (
	msgBadCredentials = "invalid email or password"
	msgNoAccount      = "no active account is linked to this GitHub email"
)

// AuthService signs users in and issues session tokens.
//
// There is no self-service registration: both password and GitHub
// sign-in only resolve accounts that already exist and are active.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the signed-in user with the issued token so the
// handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Login checks an email and password submitted as form values.
//
// Missing fields are a validation error. An unknown email, a wrong
// password and an inactive account all produce the same Unauthorized
// error.
func (s *AuthService) Login(ctx context.Context, values form.Values) (*AuthResult, error) {
	var email, password form.Opt[string]
	f := form.New([]form.Field{
		form.Text("email", &email, form.Required()),
		form.Text("password", &password, form.Required()),
	}, values)
	if !f.Validate() {
		return nil, f.Err()
	}

	user, err := s.users.GetUserByEmail(ctx, email.Value())
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Info("login failed", slog.String("reason", "unknown email"))
			return nil, apperror.Unauthorized(msgBadCredentials)
		}
		return nil, fmt.Errorf("service/auth: loading user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password.Value()); err != nil {
		s.logger.Info("login failed", slog.Int64("userID", user.ID), slog.String("reason", "password"))
		return nil, apperror.Unauthorized(msgBadCredentials)
	}
	if !user.IsActive {
		s.logger.Info("login failed", slog.Int64("userID", user.ID), slog.String("reason", "inactive"))
		return nil, apperror.Unauthorized(msgBadCredentials)
	}

	return s.issue(user, "password")
}

// LoginGitHub signs in the active account whose email matches the GitHub
// profile's primary verified email.
func (s *AuthService) LoginGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil || ghUser.Email == "" {
		return nil, apperror.Forbidden(msgNoAccount)
	}

	user, err := s.users.GetUserByEmail(ctx, ghUser.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Info("GitHub login refused", slog.String("login", ghUser.Login))
			return nil, apperror.Forbidden(msgNoAccount)
		}
		return nil, fmt.Errorf("service/auth: loading user: %w", err)
	}
	if !user.IsActive {
		s.logger.Info("GitHub login refused", slog.String("login", ghUser.Login), slog.Int64("userID", user.ID))
		return nil, apperror.Forbidden(msgNoAccount)
	}

	return s.issue(user, "github")
}

// GetUserByID returns the user named by a validated session.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %d: %w", id, err)
	}
	return user, nil
}

func (s *AuthService) issue(user *model.User, method string) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}

	s.logger.Info("user authenticated",
		slog.Int64("userID", user.ID),
		slog.String("method", method),
	)
	return &AuthResult{User: user, Token: token}, nil
}

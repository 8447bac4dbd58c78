package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/fritter-app/fritter/internal/auth"
	"github.com/fritter-app/fritter/internal/models"
)

// AccountService handles registration and login, issuing session tokens.
type AccountService struct {
	authn  auth.Authenticator
	tokens *auth.JWTManager
}

// NewAccountService creates a new AccountService.
func NewAccountService(authn auth.Authenticator, tokens *auth.JWTManager) *AccountService {
	return &AccountService{authn: authn, tokens: tokens}
}

// Register creates an account and returns the user with a session token.
func (s *AccountService) Register(ctx context.Context, username, password string) (*models.User, string, error) {
	if strings.TrimSpace(username) == "" {
		return nil, "", models.ErrValidation("username must be nonempty")
	}

	user, err := s.authn.Register(ctx, strings.TrimSpace(username), password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			return nil, "", models.ErrValidation("%v", err)
		case errors.Is(err, auth.ErrUsernameTaken):
			return nil, "", models.ErrConflict("%v", err)
		default:
			return nil, "", err
		}
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, token, nil
}

// Login verifies credentials and returns the user with a session token.
func (s *AccountService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.authn.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, "", models.ErrForbidden("%v", err)
		}
		return nil, "", err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)
	return user, token, nil
}

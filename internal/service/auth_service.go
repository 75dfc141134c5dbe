package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/splitr/splitr/internal/auth"
	"github.com/splitr/splitr/internal/models"
)

// AuthService handles registration and login, issuing JWTs on success.
type AuthService struct {
	authenticator auth.Authenticator
	jwt           *auth.JWTManager
}

// NewAuthService creates an AuthService.
func NewAuthService(authenticator auth.Authenticator, jwt *auth.JWTManager) *AuthService {
	return &AuthService{authenticator: authenticator, jwt: jwt}
}

// Register creates an account and returns the user with a session token.
func (s *AuthService) Register(ctx context.Context, email, name, phone, password string) (*models.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)
	if email == "" {
		return nil, "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	if name == "" {
		return nil, "", fmt.Errorf("%w: name is required", ErrValidation)
	}

	user, err := s.authenticator.Register(ctx, email, name, strings.TrimSpace(phone), password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("User registered", "user_id", user.ID)
	return user, token, nil
}

// Login verifies credentials and returns the user with a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.authenticator.Authenticate(ctx, strings.TrimSpace(strings.ToLower(email)), password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

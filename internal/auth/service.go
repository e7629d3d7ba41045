package auth

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/core/datamodel/employee"
)

type RepositoryAPI interface {
	GetCredentials(ctx context.Context, username string) (*Credentials, error)
}

// Service is the main auth service with dependencies
type Service struct {
	repo   RepositoryAPI
	tokens TokenGenerator
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenGenerator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

// Authenticate checks the password and issues an access token for the user's role.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	username := strings.TrimSpace(dto.Username)
	creds, err := s.repo.GetCredentials(ctx, username)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			s.logger.Warn("login for unknown user", "username", username)
			return AuthTokens{}, apperrors.ErrInvalidCredentials
		}
		return AuthTokens{}, err
	}

	if err := VerifyPassword(creds.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login with wrong password", "user_id", creds.UserID)
		return AuthTokens{}, apperrors.ErrInvalidCredentials
	}
	if creds.Status != employee.StatusActive {
		s.logger.Warn("login for inactive user", "user_id", creds.UserID)
		return AuthTokens{}, apperrors.ErrUserInactive
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(creds.Actor())
	if err != nil {
		s.logger.Error("failed to sign access token", "error", err, "user_id", creds.UserID)
		return AuthTokens{}, apperrors.NewInternalError("failed to issue token", err)
	}

	s.logger.Info("user logged in", "user_id", creds.UserID, "role", creds.Role)
	return AuthTokens{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}

// ValidateAccessToken resolves a bearer token to the acting user.
func (s *Service) ValidateAccessToken(tokenString string) (*apperrors.Actor, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims.Actor(), nil
}

package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tripcrew/backend/internal/apperrors"
	"github.com/tripcrew/backend/internal/auth"
	"github.com/tripcrew/backend/internal/auth/oauth"
	"github.com/tripcrew/backend/internal/domain"
)

// UserEventPublisher is implemented by the kafka user events producer.
type UserEventPublisher interface {
	ProduceUserRegistered(user *domain.User) (int64, error)
}

// AuthService orchestrates the Google login flow: code exchange, identity
// resolution, user upsert and session token issuance.
type AuthService struct {
	provider oauth.Provider
	resolver oauth.IdentityResolver
	userRepo domain.UserRepository
	jwtSvc   auth.JWTService
	events   UserEventPublisher
	logger   *slog.Logger
}

func NewAuthService(
	provider oauth.Provider,
	resolver oauth.IdentityResolver,
	userRepo domain.UserRepository,
	jwtSvc auth.JWTService,
	events UserEventPublisher,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		provider: provider,
		resolver: resolver,
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		events:   events,
		logger:   logger,
	}
}

// LoginURL builds the provider authorization URL. No side effects.
func (s *AuthService) LoginURL(redirectURI, state string) string {
	return s.provider.AuthURL(redirectURI, state)
}

// CompleteLogin finishes the OAuth dance: exchange the code, resolve the
// identity, upsert the user and mint a session token. Component errors
// pass through with their kind intact. The redirectURI must match the one
// the authorization URL was built with byte for byte.
func (s *AuthService) CompleteLogin(ctx context.Context, code, redirectURI string) (string, *domain.User, error) {
	if code == "" {
		return "", nil, apperrors.Validation("authorization code required")
	}

	result, err := s.provider.Exchange(ctx, code, redirectURI)
	if err != nil {
		return "", nil, err
	}

	identity, err := s.resolver.Resolve(ctx, result)
	if err != nil {
		return "", nil, err
	}

	user, created, err := s.userRepo.Upsert(ctx, *identity)
	if err != nil {
		return "", nil, err
	}

	token, err := s.jwtSvc.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, apperrors.Internal(err)
	}

	if created && s.events != nil {
		// Best effort: a dead broker must not fail a login.
		if _, err := s.events.ProduceUserRegistered(user); err != nil {
			s.logger.Error("failed to publish user.registered event",
				slog.String("user_id", user.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	return token, user, nil
}

// Refresh reissues a session token for an already-authenticated user. No
// provider interaction and no database write.
func (s *AuthService) Refresh(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	token, err := s.jwtSvc.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return token, nil
}

// CurrentUser verifies the session token and loads the account. A valid
// signature does not imply the account still exists: a row deleted
// out-of-band surfaces as not found.
func (s *AuthService) CurrentUser(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.jwtSvc.ValidateToken(tokenString)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			s.logger.Debug("rejected expired session token")
		}
		return nil, apperrors.InvalidCredential()
	}

	return s.userRepo.FindByID(ctx, claims.UserID)
}

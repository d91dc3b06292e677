package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/token"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// AuthService coordinates sign-up, sign-in, credential rotation and
// sign-out. All credential failures it returns are normalized to a single
// unauthenticated outcome; the underlying distinction only reaches the log.
type AuthService struct {
	users      repository.UserRepository
	tokens     *token.Service
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborator requirements for the service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Tokens   *token.Service
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// Tokens exposes the underlying token service for middleware usage.
func (s *AuthService) Tokens() *token.Service {
	return s.tokens
}

// SignUp creates a new identity record. It does not establish a session.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if email == "" || name == "" {
		return nil, apperrors.NewValidationError("name and email required", nil)
	}
	if password == "" {
		return nil, apperrors.NewValidationError("password is required", nil)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Theme:        domain.ThemeSystem,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// SignIn authenticates by email and password and issues the initial
// credential pair. Unknown email and wrong password are indistinguishable to
// the caller.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NewUnauthorized("wrong credentials")
		}
		return nil, nil, apperrors.NewInternalError(err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("wrong credentials")
	}

	pair, fingerprint, err := s.issuePair(user)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	// Initial issuance: no prior fingerprint to compare against.
	if err := s.users.UpdateRefreshFingerprint(ctx, user.ID, &fingerprint); err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, pair, nil
}

// Refresh rotates the credential pair. Presenting a refresh credential whose
// fingerprint no longer matches the stored one fails without mutating any
// state; on success the old refresh credential becomes permanently unusable.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*domain.User, *domain.TokenPair, error) {
	if rawRefresh == "" {
		return nil, nil, apperrors.NewUnauthorized("missing refresh token")
	}

	claims, err := s.tokens.VerifyRefreshToken(rawRefresh)
	if err != nil {
		s.logger.Warn("refresh credential rejected", zap.Error(err))
		return nil, nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("refresh for unknown identity", zap.String("subject", claims.SubjectID))
			return nil, nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, nil, apperrors.NewInternalError(err)
	}
	if user.RefreshFingerprint == nil {
		s.logger.Warn("refresh without stored fingerprint", zap.String("subject", user.ID))
		return nil, nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	if !auth.MatchRefreshFingerprint(*user.RefreshFingerprint, rawRefresh) {
		s.logger.Warn("refresh fingerprint mismatch, possible reuse of rotated credential",
			zap.String("subject", user.ID))
		return nil, nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	pair, fingerprint, err := s.issuePair(user)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	// Conditional overwrite keyed on the fingerprint we compared against, so
	// concurrent rotations of the same credential cannot both win.
	err = s.users.CompareAndSwapRefreshFingerprint(ctx, user.ID, *user.RefreshFingerprint, fingerprint)
	if err != nil {
		if errors.Is(err, repository.ErrFingerprintConflict) {
			s.logger.Warn("lost rotation race", zap.String("subject", user.ID))
			return nil, nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, pair, nil
}

// SignOut clears the stored fingerprint when the presented refresh
// credential verifies. Every failure is swallowed: sign-out never fails.
// Transport clearing is the caller's guaranteed step, not this method's.
func (s *AuthService) SignOut(ctx context.Context, rawRefresh string) {
	if rawRefresh == "" {
		return
	}
	claims, err := s.tokens.VerifyRefreshToken(rawRefresh)
	if err != nil {
		// Identity cannot be trusted; skip the store cleanup.
		s.logger.Warn("sign-out with unverifiable refresh credential", zap.Error(err))
		return
	}
	if err := s.users.UpdateRefreshFingerprint(ctx, claims.SubjectID, nil); err != nil {
		s.logger.Warn("sign-out fingerprint clear failed",
			zap.String("subject", claims.SubjectID), zap.Error(err))
	}
}

// CurrentUser loads the identity record behind a verified session.
func (s *AuthService) CurrentUser(ctx context.Context, subjectID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("unauthorized")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

func (s *AuthService) issuePair(user *domain.User) (*domain.TokenPair, string, error) {
	accessToken, accessExp, err := s.tokens.CreateAccessToken(token.AccessClaims(user))
	if err != nil {
		return nil, "", err
	}
	refreshToken, refreshExp, err := s.tokens.CreateRefreshToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	fingerprint, err := auth.FingerprintRefreshToken(refreshToken, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}
	return &domain.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, fingerprint, nil
}

// normalizeEmail trims and lowercases; passwords are never normalized.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

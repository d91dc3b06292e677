package token

import (
	"time"

	"github.com/spec-kit/auth-service/internal/domain"
)

// Service issues and verifies the access/refresh credential pair. Access and
// refresh credentials are signed with distinct secrets. The edge verifier
// shares the access secret but runs on the restricted codec; codec selection
// happens here, by call site, never inside shared verification logic.
type Service struct {
	access     Codec
	accessEdge Codec
	refresh    Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService wires both codec profiles over the configured secrets and TTLs.
func NewService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Service {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Service{
		access:     NewJWTCodec(accessSecret),
		accessEdge: NewEdgeCodec(accessSecret),
		refresh:    NewJWTCodec(refreshSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// CreateAccessToken issues a short-lived credential carrying the full
// identity claims.
func (s *Service) CreateAccessToken(claims Claims) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.accessTTL)
	raw, err := s.access.Issue(claims, s.accessTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return raw, expiresAt, nil
}

// CreateRefreshToken issues a long-lived credential carrying only the
// subject id; the minimal payload limits blast radius if decoded.
func (s *Service) CreateRefreshToken(subjectID string) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.refreshTTL)
	raw, err := s.refresh.Issue(Claims{SubjectID: subjectID}, s.refreshTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return raw, expiresAt, nil
}

// VerifyAccessToken verifies an access credential on the full profile.
func (s *Service) VerifyAccessToken(raw string) (*Claims, error) {
	return s.access.Verify(raw)
}

// VerifyAccessTokenEdge verifies an access credential on the restricted
// profile. It must accept exactly the tokens VerifyAccessToken accepts.
func (s *Service) VerifyAccessTokenEdge(raw string) (*Claims, error) {
	return s.accessEdge.Verify(raw)
}

// VerifyRefreshToken verifies a refresh credential.
func (s *Service) VerifyRefreshToken(raw string) (*Claims, error) {
	return s.refresh.Verify(raw)
}

// AccessTTL returns the access credential lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the refresh credential lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// AccessClaims projects a user record into access credential claims.
func AccessClaims(user *domain.User) Claims {
	return Claims{
		SubjectID: user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Theme:     user.Theme,
	}
}

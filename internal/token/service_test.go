package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
)

func newTestService() *Service {
	return NewService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestServiceAccessTokenBothProfiles(t *testing.T) {
	svc := newTestService()

	raw, expiresAt, err := svc.CreateAccessToken(sampleClaims())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	full, err := svc.VerifyAccessToken(raw)
	require.NoError(t, err)

	edge, err := svc.VerifyAccessTokenEdge(raw)
	require.NoError(t, err)

	assert.Equal(t, full.SubjectID, edge.SubjectID)
	assert.Equal(t, full.Email, edge.Email)
	assert.Equal(t, full.Role, edge.Role)
	assert.Equal(t, full.Theme, edge.Theme)
}

func TestServiceRefreshTokenMinimalPayload(t *testing.T) {
	svc := newTestService()

	raw, _, err := svc.CreateRefreshToken("user-123")
	require.NoError(t, err)

	claims, err := svc.VerifyRefreshToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.SubjectID)
	assert.Empty(t, claims.Email)
	assert.Empty(t, claims.Role)
}

func TestServiceDistinctSecrets(t *testing.T) {
	svc := newTestService()

	access, _, err := svc.CreateAccessToken(sampleClaims())
	require.NoError(t, err)
	refresh, _, err := svc.CreateRefreshToken("user-123")
	require.NoError(t, err)

	_, err = svc.VerifyRefreshToken(access)
	assert.ErrorIs(t, err, ErrCredentialSignatureInvalid)

	_, err = svc.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, ErrCredentialSignatureInvalid)
}

func TestServiceTTLDefaults(t *testing.T) {
	svc := NewService("a", "r", 0, 0)
	assert.Equal(t, 15*time.Minute, svc.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, svc.RefreshTTL())
}

func TestAccessClaimsProjection(t *testing.T) {
	user := &domain.User{
		ID:    "user-1",
		Email: "a@b.com",
		Role:  domain.RoleUser,
		Theme: domain.ThemeLight,
	}
	claims := AccessClaims(user)
	assert.Equal(t, user.ID, claims.SubjectID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Role, claims.Role)
	assert.Equal(t, user.Theme, claims.Theme)
}

package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/token"
)

func testTokens() *token.Service {
	return token.NewService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func accessCookie(t *testing.T, tokens *token.Service, role domain.Role) *http.Cookie {
	t.Helper()
	raw, _, err := tokens.CreateAccessToken(token.Claims{
		SubjectID: "user-1",
		Email:     "a@b.com",
		Role:      role,
		Theme:     domain.ThemeDark,
	})
	require.NoError(t, err)
	return &http.Cookie{Name: AccessCookie, Value: raw}
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/token"
)

func resolveSession(t *testing.T, resolver *SessionResolver, cookie *http.Cookie) *Session {
	t.Helper()

	var session *Session
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		session = resolver.GetSession(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	_, err := app.Test(req, -1)
	require.NoError(t, err)
	return session
}

func TestGetSessionValid(t *testing.T) {
	tokens := testTokens()
	resolver := NewSessionResolver(tokens)

	session := resolveSession(t, resolver, accessCookie(t, tokens, domain.RoleAdmin))
	require.NotNil(t, session)
	assert.Equal(t, "user-1", session.SubjectID)
	assert.Equal(t, "a@b.com", session.Email)
	assert.Equal(t, domain.RoleAdmin, session.Role)
	assert.Equal(t, domain.ThemeDark, session.Theme)
}

func TestGetSessionMissingCookie(t *testing.T) {
	resolver := NewSessionResolver(testTokens())
	assert.Nil(t, resolveSession(t, resolver, nil))
}

func TestGetSessionInvalidToken(t *testing.T) {
	resolver := NewSessionResolver(testTokens())
	assert.Nil(t, resolveSession(t, resolver, &http.Cookie{Name: AccessCookie, Value: "garbage"}))
}

func TestGetSessionExpiredToken(t *testing.T) {
	resolver := NewSessionResolver(testTokens())

	raw, err := token.NewJWTCodec("access-secret").
		Issue(token.Claims{SubjectID: "user-1"}, -time.Minute)
	require.NoError(t, err)

	assert.Nil(t, resolveSession(t, resolver, &http.Cookie{Name: AccessCookie, Value: raw}))
}

func TestGetSessionWrongSecret(t *testing.T) {
	other := token.NewService("other-secret", "refresh-secret", time.Minute, time.Hour)
	raw, _, err := other.CreateAccessToken(token.Claims{SubjectID: "user-1"})
	require.NoError(t, err)

	resolver := NewSessionResolver(testTokens())
	assert.Nil(t, resolveSession(t, resolver, &http.Cookie{Name: AccessCookie, Value: raw}))
}

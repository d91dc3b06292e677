package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
)

func newRequireRoleApp(t *testing.T, gate *RoleGate, opts RequireRoleOptions) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Get("/guarded", gate.RequireRole(opts), func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"subject": session.SubjectID})
	})
	return app
}

func TestRequireRoleUnauthenticatedRedirects(t *testing.T) {
	gate := NewRoleGate(NewSessionResolver(testTokens()))
	app := newRequireRoleApp(t, gate, RequireRoleOptions{Roles: []domain.Role{domain.RoleAdmin}})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, SignInPath, resp.Header.Get("Location"))
}

func TestRequireRoleForbiddenRedirectsHome(t *testing.T) {
	tokens := testTokens()
	gate := NewRoleGate(NewSessionResolver(tokens))
	app := newRequireRoleApp(t, gate, RequireRoleOptions{Roles: []domain.Role{domain.RoleAdmin}})

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.AddCookie(accessCookie(t, tokens, domain.RoleUser))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestRequireRoleAllowedPassesThrough(t *testing.T) {
	tokens := testTokens()
	gate := NewRoleGate(NewSessionResolver(tokens))
	app := newRequireRoleApp(t, gate, RequireRoleOptions{
		Roles: []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin},
	})

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.AddCookie(accessCookie(t, tokens, domain.RoleAdmin))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleCustomRedirects(t *testing.T) {
	tokens := testTokens()
	gate := NewRoleGate(NewSessionResolver(tokens))
	app := newRequireRoleApp(t, gate, RequireRoleOptions{
		Roles:                   []domain.Role{domain.RoleEditor},
		UnauthenticatedRedirect: "/login",
		ForbiddenRedirect:       "/denied",
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.AddCookie(accessCookie(t, tokens, domain.RoleUser))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "/denied", resp.Header.Get("Location"))
}

func TestRequireRoleAPI(t *testing.T) {
	tokens := testTokens()
	gate := NewRoleGate(NewSessionResolver(tokens))

	var result GateResult
	app := fiber.New()
	app.Get("/check", func(c *fiber.Ctx) error {
		result = gate.RequireRoleAPI(c, domain.RoleAdmin, domain.RoleSuperAdmin)
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/check", nil), -1)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, ReasonUnauthenticated, result.Reason)
	assert.Nil(t, result.Session)

	req := httptest.NewRequest(http.MethodGet, "/check", nil)
	req.AddCookie(accessCookie(t, tokens, domain.RoleUser))
	_, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, ReasonForbidden, result.Reason)

	req = httptest.NewRequest(http.MethodGet, "/check", nil)
	req.AddCookie(accessCookie(t, tokens, domain.RoleSuperAdmin))
	_, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.True(t, result.OK)
	require.NotNil(t, result.Session)
	assert.Equal(t, "user-1", result.Session.SubjectID)
}

func newWithRoleApp(gate *RoleGate, handler func(c *fiber.Ctx, session *Session) error) *fiber.App {
	app := fiber.New()
	app.Get("/api/guarded", gate.WithRole(handler, domain.RoleAdmin, domain.RoleSuperAdmin))
	return app
}

func TestWithRoleStatusCodes(t *testing.T) {
	tokens := testTokens()
	gate := NewRoleGate(NewSessionResolver(tokens))
	app := newWithRoleApp(gate, func(c *fiber.Ctx, session *Session) error {
		return c.JSON(fiber.Map{"subject": session.SubjectID})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/guarded", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/guarded", nil)
	req.AddCookie(accessCookie(t, tokens, domain.RoleUser))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/guarded", nil)
	req.AddCookie(accessCookie(t, tokens, domain.RoleAdmin))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWithRoleHandlerErrorMapsTo500(t *testing.T) {
	tokens := testTokens()
	gate := NewRoleGate(NewSessionResolver(tokens))
	app := newWithRoleApp(gate, func(c *fiber.Ctx, session *Session) error {
		return errors.New("backing store exploded")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/guarded", nil)
	req.AddCookie(accessCookie(t, tokens, domain.RoleAdmin))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestWithRoleHandlerPanicMapsTo500(t *testing.T) {
	tokens := testTokens()
	gate := NewRoleGate(NewSessionResolver(tokens))
	app := newWithRoleApp(gate, func(c *fiber.Ctx, session *Session) error {
		panic("unexpected")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/guarded", nil)
	req.AddCookie(accessCookie(t, tokens, domain.RoleSuperAdmin))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestRoleAllowedMembership(t *testing.T) {
	admin := &Session{SubjectID: "u", Role: domain.RoleAdmin}

	assert.True(t, RoleAllowed(admin, []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}))
	assert.False(t, RoleAllowed(admin, []domain.Role{domain.RoleSuperAdmin}))
	assert.False(t, RoleAllowed(nil, []domain.Role{domain.RoleUser}))
	assert.False(t, RoleAllowed(admin, nil))
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/service"
)

// AuthHandler exposes the authentication routes.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *auth.SessionResolver
	cookies  *auth.CookieWriter
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService, sessions *auth.SessionResolver, cookies *auth.CookieWriter) *AuthHandler {
	return &AuthHandler{auth: authService, sessions: sessions, cookies: cookies}
}

// SignUp handles POST /auth/signup.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.auth.SignUp(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}

// SignIn handles POST /auth/signin. On success both credential slots are
// written.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	user, pair, err := h.auth.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.cookies.SetPair(c, *pair)
	return c.JSON(fiber.Map{"user": dto.NewUserResponse(user)})
}

// Refresh handles POST /auth/refresh. Any failure clears both slots.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	user, pair, err := h.auth.Refresh(c.Context(), c.Cookies(auth.RefreshCookie))
	if err != nil {
		h.cookies.Clear(c)
		return err
	}

	h.cookies.SetPair(c, *pair)
	return c.JSON(fiber.Map{"user": dto.NewUserResponse(user)})
}

// SignOut handles POST /auth/signout. The transport is cleared via the
// deferred step, so it happens no matter how the store cleanup exits, and
// the response is always a success.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	defer h.cookies.Clear(c)
	h.auth.SignOut(c.Context(), c.Cookies(auth.RefreshCookie))
	return c.JSON(fiber.Map{"message": "signed out"})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	session := h.sessions.GetSession(c)
	if session == nil {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := h.auth.CurrentUser(c.Context(), session.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": dto.NewUserResponse(user)})
}

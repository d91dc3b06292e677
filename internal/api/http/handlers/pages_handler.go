package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/auth"
)

// PagesHandler serves the protected page endpoints. The redirecting role
// gate runs in front of these; by the time they execute, a session has been
// resolved and stored on the request.
type PagesHandler struct{}

// NewPagesHandler constructs the handler.
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// Dashboard handles GET /dashboard.
func (h *PagesHandler) Dashboard(c *fiber.Ctx) error {
	return h.render(c, "dashboard")
}

// Admin handles GET /admin.
func (h *PagesHandler) Admin(c *fiber.Ctx) error {
	return h.render(c, "admin")
}

func (h *PagesHandler) render(c *fiber.Ctx, page string) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(fiber.Map{
		"page": page,
		"user": fiber.Map{
			"id":    session.SubjectID,
			"email": session.Email,
			"role":  string(session.Role),
			"theme": string(session.Theme),
		},
	})
}

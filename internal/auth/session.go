package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/token"
)

// Session is the request-scoped authenticated identity projection. It is
// recomputed from the access credential on every request and never
// persisted.
type Session struct {
	SubjectID string
	Email     string
	Role      domain.Role
	Theme     domain.Theme
}

// SessionResolver derives a Session from the request's access credential.
type SessionResolver struct {
	tokens *token.Service
}

// NewSessionResolver builds a resolver over the token service.
func NewSessionResolver(tokens *token.Service) *SessionResolver {
	return &SessionResolver{tokens: tokens}
}

// GetSession returns the current session or nil. Every failure mode,
// missing slot included, collapses to nil; it never returns an error.
func (r *SessionResolver) GetSession(c *fiber.Ctx) *Session {
	raw := c.Cookies(AccessCookie)
	if raw == "" {
		return nil
	}
	claims, err := r.tokens.VerifyAccessToken(raw)
	if err != nil {
		return nil
	}
	return &Session{
		SubjectID: claims.SubjectID,
		Email:     claims.Email,
		Role:      claims.Role,
		Theme:     claims.Theme,
	}
}

package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/domain"
)

const sessionKey = "auth_session"

// SignInPath is the default unauthenticated destination.
const SignInPath = "/auth/signin"

// RoleAllowed reports whether the session's role is in the allowed set.
// Plain membership over the allowed list; no role implies another, so both
// admin tiers must be listed where both should pass.
func RoleAllowed(session *Session, allowed []domain.Role) bool {
	if session == nil {
		return false
	}
	for _, role := range allowed {
		if session.Role == role {
			return true
		}
	}
	return false
}

// GateReason tags the failure arm of a gate result.
type GateReason string

const (
	ReasonUnauthenticated GateReason = "unauthenticated"
	ReasonForbidden       GateReason = "forbidden"
)

// GateResult is the tagged outcome of gate evaluation. When OK is true,
// Session carries the verified identity and Reason is empty.
type GateResult struct {
	OK      bool
	Reason  GateReason
	Session *Session
}

// RoleGate evaluates role access for both enforcement points. The
// redirecting variant serves page-rendering contexts; the API variant
// returns typed results and status codes.
type RoleGate struct {
	sessions *SessionResolver
}

// NewRoleGate builds a gate over the session resolver.
func NewRoleGate(sessions *SessionResolver) *RoleGate {
	return &RoleGate{sessions: sessions}
}

// RequireRoleOptions configures the redirecting gate. Zero-value
// destinations fall back to the sign-in entry and home.
type RequireRoleOptions struct {
	Roles                   []domain.Role
	UnauthenticatedRedirect string
	ForbiddenRedirect       string
}

// RequireRole returns a redirecting middleware for page contexts. A redirect
// is terminal for the request; on success the session is stored on the
// request for downstream handlers.
func (g *RoleGate) RequireRole(opts RequireRoleOptions) fiber.Handler {
	unauthenticated := opts.UnauthenticatedRedirect
	if unauthenticated == "" {
		unauthenticated = SignInPath
	}
	forbidden := opts.ForbiddenRedirect
	if forbidden == "" {
		forbidden = "/"
	}

	return func(c *fiber.Ctx) error {
		session := g.sessions.GetSession(c)
		if session == nil {
			return c.Redirect(unauthenticated, fiber.StatusFound)
		}
		if !RoleAllowed(session, opts.Roles) {
			return c.Redirect(forbidden, fiber.StatusFound)
		}
		c.Locals(sessionKey, session)
		return c.Next()
	}
}

// RequireRoleAPI evaluates the gate without side effects.
func (g *RoleGate) RequireRoleAPI(c *fiber.Ctx, roles ...domain.Role) GateResult {
	session := g.sessions.GetSession(c)
	if session == nil {
		return GateResult{Reason: ReasonUnauthenticated}
	}
	if !RoleAllowed(session, roles) {
		return GateResult{Reason: ReasonForbidden}
	}
	return GateResult{OK: true, Session: session}
}

// WithRole wraps an API handler with role enforcement: unauthenticated maps
// to 401, forbidden to 403, and any handler error or panic to 500. No error
// escapes to the transport layer unmapped.
func (g *RoleGate) WithRole(handler func(c *fiber.Ctx, session *Session) error, roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = c.Status(fiber.StatusInternalServerError).
					JSON(fiber.Map{"error": "internal server error"})
			}
		}()

		result := g.RequireRoleAPI(c, roles...)
		if !result.OK {
			status := fiber.StatusForbidden
			if result.Reason == ReasonUnauthenticated {
				status = fiber.StatusUnauthorized
			}
			return c.Status(status).JSON(fiber.Map{"error": string(result.Reason)})
		}

		if handlerErr := handler(c, result.Session); handlerErr != nil {
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"error": "internal server error"})
		}
		return nil
	}
}

// SessionFromContext retrieves a session stored by RequireRole.
func SessionFromContext(c *fiber.Ctx) (*Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	session, ok := val.(*Session)
	return session, ok
}

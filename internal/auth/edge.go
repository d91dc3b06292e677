package auth

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/token"
)

// EdgeGateConfig configures the lightweight request gate.
type EdgeGateConfig struct {
	// Protected prefixes require a valid access credential.
	Protected []string
	// Restricted maps a prefix to the roles allowed under it.
	Restricted map[string][]domain.Role
	// Bypass prefixes (static assets, auth routes) skip the gate entirely.
	Bypass []string
	// SignInPath overrides the unauthenticated destination.
	SignInPath string
	// NeutralPath is where non-matching roles land. Defaults to "/".
	NeutralPath string
}

// EdgeGate intercepts requests to protected path prefixes. It verifies on
// the restricted codec profile and never loads the identity record; the full
// handler gate performs the deeper checks.
type EdgeGate struct {
	cfg    EdgeGateConfig
	tokens *token.Service
	logger *zap.Logger
}

// NewEdgeGate builds the gate, applying destination defaults.
func NewEdgeGate(cfg EdgeGateConfig, tokens *token.Service, logger *zap.Logger) *EdgeGate {
	if cfg.SignInPath == "" {
		cfg.SignInPath = SignInPath
	}
	if cfg.NeutralPath == "" {
		cfg.NeutralPath = "/"
	}
	return &EdgeGate{cfg: cfg, tokens: tokens, logger: logger}
}

// Handle is the gate middleware.
func (g *EdgeGate) Handle(c *fiber.Ctx) error {
	path := c.Path()

	for _, prefix := range g.cfg.Bypass {
		if strings.HasPrefix(path, prefix) {
			return c.Next()
		}
	}

	if !matchesAnyPrefix(path, g.cfg.Protected) {
		return c.Next()
	}

	raw := c.Cookies(AccessCookie)
	if raw == "" {
		return g.redirectToSignIn(c, path)
	}

	claims, err := g.tokens.VerifyAccessTokenEdge(raw)
	if err != nil {
		g.logger.Warn("edge gate rejected credential",
			zap.String("path", path), zap.Error(err))
		return g.redirectToSignIn(c, path)
	}

	for prefix, roles := range g.cfg.Restricted {
		if !pathHasPrefix(path, prefix) {
			continue
		}
		if !roleIn(claims.Role, roles) {
			g.logger.Warn("edge gate denied role",
				zap.String("path", path), zap.String("role", string(claims.Role)))
			return c.Redirect(g.cfg.NeutralPath, fiber.StatusFound)
		}
	}

	return c.Next()
}

func (g *EdgeGate) redirectToSignIn(c *fiber.Ctx, from string) error {
	return c.Redirect(g.cfg.SignInPath+"?from="+url.QueryEscape(from), fiber.StatusFound)
}

func matchesAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if pathHasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// pathHasPrefix matches the prefix as a whole path segment, so "/admin"
// guards "/admin" and "/admin/users" but not "/administration".
func pathHasPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func roleIn(role domain.Role, allowed []domain.Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/domain"
)

// Credential slot names on the cookie channel.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// CookieWriter is the credential transport. Each slot is HTTP-only,
// same-site strict, root-scoped and secure in production, with a max-age
// equal to that credential's TTL. SetPair and Clear are the only mutating
// operations.
type CookieWriter struct {
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCookieWriter builds the transport for the configured TTLs.
func NewCookieWriter(secure bool, accessTTL, refreshTTL time.Duration) *CookieWriter {
	return &CookieWriter{secure: secure, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// SetPair writes both credential slots.
func (w *CookieWriter) SetPair(c *fiber.Ctx, pair domain.TokenPair) {
	w.set(c, AccessCookie, pair.AccessToken, int(w.accessTTL.Seconds()))
	w.set(c, RefreshCookie, pair.RefreshToken, int(w.refreshTTL.Seconds()))
}

// Clear expires both slots regardless of whether they were set. Idempotent.
func (w *CookieWriter) Clear(c *fiber.Ctx) {
	w.set(c, AccessCookie, "", 0)
	w.set(c, RefreshCookie, "", 0)
}

func (w *CookieWriter) set(c *fiber.Ctx, name, value string, maxAge int) {
	cookie := &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HTTPOnly: true,
		Secure:   w.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
	if maxAge <= 0 {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
	}
	c.Cookie(cookie)
}

package token

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/auth-service/internal/domain"
)

// jwtClaims is the wire claim set shared by both codec implementations.
type jwtClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	Theme string `json:"theme,omitempty"`
	jwt.RegisteredClaims
}

// JWTCodec is the full-profile codec backed by golang-jwt.
type JWTCodec struct {
	secret []byte
}

// NewJWTCodec builds a codec signing with the given secret.
func NewJWTCodec(secret string) *JWTCodec {
	return &JWTCodec{secret: []byte(secret)}
}

// Issue signs the claims as an HS256 JWT valid for ttl.
func (c *JWTCodec) Issue(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	wire := &jwtClaims{
		Email: claims.Email,
		Role:  string(claims.Role),
		Theme: string(claims.Theme),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.SubjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, wire).SignedString(c.secret)
}

// Verify validates signature and expiry and returns the claims, or a typed
// verification failure.
func (c *JWTCodec) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrCredentialMissing
	}

	parsed, err := jwt.ParseWithClaims(raw, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrCredentialSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrCredentialExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrCredentialSignatureInvalid
		default:
			return nil, ErrCredentialMalformed
		}
	}

	wire, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return nil, ErrCredentialMalformed
	}
	return claimsFromWire(wire)
}

func claimsFromWire(wire *jwtClaims) (*Claims, error) {
	if wire.Subject == "" {
		return nil, ErrCredentialMalformed
	}
	claims := &Claims{
		SubjectID: wire.Subject,
		Email:     wire.Email,
		Role:      domain.Role(wire.Role),
		Theme:     domain.Theme(wire.Theme),
	}
	if wire.IssuedAt != nil {
		claims.IssuedAt = wire.IssuedAt.Time
	}
	if wire.ExpiresAt != nil {
		claims.ExpiresAt = wire.ExpiresAt.Time
	}
	return claims, nil
}

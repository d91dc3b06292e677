package token

import (
	"errors"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/spec-kit/auth-service/internal/domain"
)

// EdgeCodec is the restricted-profile codec backed by jwx. It is the
// verifier used by the edge gate, which runs without the full runtime's
// capability set; it produces and accepts the same HS256 format as JWTCodec.
type EdgeCodec struct {
	secret []byte
}

// NewEdgeCodec builds a codec signing with the given secret.
func NewEdgeCodec(secret string) *EdgeCodec {
	return &EdgeCodec{secret: []byte(secret)}
}

// Issue signs the claims as an HS256 JWT valid for ttl.
func (c *EdgeCodec) Issue(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	builder := jwt.NewBuilder().
		Subject(claims.SubjectID).
		IssuedAt(now).
		Expiration(now.Add(ttl))
	if claims.Email != "" {
		builder = builder.Claim("email", claims.Email)
	}
	if claims.Role != "" {
		builder = builder.Claim("role", string(claims.Role))
	}
	if claims.Theme != "" {
		builder = builder.Claim("theme", string(claims.Theme))
	}

	tok, err := builder.Build()
	if err != nil {
		return "", err
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, c.secret))
	if err != nil {
		return "", err
	}
	return string(signed), nil
}

// Verify validates signature and expiry and returns the claims, or a typed
// verification failure.
func (c *EdgeCodec) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrCredentialMissing
	}

	tok, err := jwt.Parse([]byte(raw), jwt.WithKey(jwa.HS256, c.secret), jwt.WithValidate(true))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, ErrCredentialExpired
		}
		// A well-formed token that fails the keyed parse has a bad signature.
		if _, parseErr := jwt.Parse([]byte(raw), jwt.WithVerify(false), jwt.WithValidate(false)); parseErr == nil {
			return nil, ErrCredentialSignatureInvalid
		}
		return nil, ErrCredentialMalformed
	}

	if tok.Subject() == "" {
		return nil, ErrCredentialMalformed
	}

	claims := &Claims{
		SubjectID: tok.Subject(),
		IssuedAt:  tok.IssuedAt(),
		ExpiresAt: tok.Expiration(),
	}
	if v, ok := tok.Get("email"); ok {
		if email, ok := v.(string); ok {
			claims.Email = email
		}
	}
	if v, ok := tok.Get("role"); ok {
		if role, ok := v.(string); ok {
			claims.Role = domain.Role(role)
		}
	}
	if v, ok := tok.Get("theme"); ok {
		if theme, ok := v.(string); ok {
			claims.Theme = domain.Theme(theme)
		}
	}
	return claims, nil
}

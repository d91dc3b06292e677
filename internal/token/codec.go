package token

import (
	"errors"
	"time"

	"github.com/spec-kit/auth-service/internal/domain"
)

// Verification failure taxonomy. Callers at the API boundary normalize all
// of these to a single unauthenticated outcome; internal logging keeps the
// distinction.
var (
	ErrCredentialMissing          = errors.New("credential missing")
	ErrCredentialMalformed        = errors.New("credential malformed")
	ErrCredentialExpired          = errors.New("credential expired")
	ErrCredentialSignatureInvalid = errors.New("credential signature invalid")
)

// Claims is the identity payload carried inside a credential. SubjectID is
// mandatory: a verified credential without it is a malformed credential, not
// one with a defaulted subject.
type Claims struct {
	SubjectID string
	Email     string
	Role      domain.Role
	Theme     domain.Theme
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec signs and verifies compact time-bound identity claims. It knows
// nothing about storage or transport. Two implementations exist over the
// same HS256 JWT format: JWTCodec for the full runtime profile and EdgeCodec
// for the restricted profile. Each must accept credentials produced by the
// other.
type Codec interface {
	Issue(claims Claims, ttl time.Duration) (string, error)
	Verify(raw string) (*Claims, error)
}

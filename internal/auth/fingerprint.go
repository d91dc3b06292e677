package auth

import (
	"crypto/sha256"

	"golang.org/x/crypto/bcrypt"
)

// FingerprintRefreshToken produces the salted one-way fingerprint persisted
// against an identity record. The raw token is pre-digested with SHA-256 so
// its full length contributes to the hash; bcrypt only reads 72 bytes and a
// signed refresh credential is longer than that.
func FingerprintRefreshToken(raw string, cost int) (string, error) {
	sum := sha256.Sum256([]byte(raw))
	fp, err := bcrypt.GenerateFromPassword(sum[:], cost)
	if err != nil {
		return "", err
	}
	return string(fp), nil
}

// MatchRefreshFingerprint reports whether the raw refresh credential matches
// a stored fingerprint. The bcrypt comparison is constant-time.
func MatchRefreshFingerprint(fingerprint, raw string) bool {
	sum := sha256.Sum256([]byte(raw))
	return bcrypt.CompareHashAndPassword([]byte(fingerprint), sum[:]) == nil
}

package domain

import "time"

// TokenPair bundles a freshly issued access and refresh credential. The
// access credential carries the full identity claims; the refresh credential
// carries only the subject id.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

package domain

import (
	"strings"
	"time"
)

// Role enumerates account roles. Matching is plain set membership; no role
// implies another.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAuthor     Role = "AUTHOR"
	RoleEditor     Role = "EDITOR"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// AllRoles returns the closed role enumeration.
func AllRoles() []Role {
	return []Role{RoleUser, RoleAuthor, RoleEditor, RoleAdmin, RoleSuperAdmin}
}

// ParseRole normalizes casing and reports whether the value is a known role.
func ParseRole(s string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllRoles() {
		if role == known {
			return role, true
		}
	}
	return "", false
}

// Theme is the per-user display preference carried through the session.
type Theme string

const (
	ThemeLight  Theme = "LIGHT"
	ThemeDark   Theme = "DARK"
	ThemeSystem Theme = "SYSTEM"
)

// ParseTheme normalizes a theme value, falling back to SYSTEM.
func ParseTheme(s string) Theme {
	switch Theme(strings.ToUpper(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight
	case ThemeDark:
		return ThemeDark
	default:
		return ThemeSystem
	}
}

// User is the identity record. RefreshFingerprint holds the salted one-way
// hash of the currently valid refresh credential; at most one is valid per
// identity at a time.
type User struct {
	ID                 string
	Name               string
	Email              string
	PasswordHash       string
	Role               Role
	Theme              Theme
	RefreshFingerprint *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

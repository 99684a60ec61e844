package domain

import "strings"

// Role is the closed set of account kinds. Registration dispatches on it.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleCoach  Role = "coach"
	RolePlayer Role = "player"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoach, RolePlayer:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole accepts any casing and surrounding whitespace.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrRoleRequired
	}
	r := Role(strings.ToLower(s))
	if !r.Valid() {
		return "", ErrRoleInvalid
	}
	return r, nil
}

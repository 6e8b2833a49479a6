package auth

import "strings"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole lowercases r and reports whether it is a known role.
func ParseRole(r string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(r))) {
	case RoleCustomer:
		return RoleCustomer, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// Session is a signed-in identity. It is either complete or absent.
type Session struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Token  string `json:"token"`
}

func (s Session) complete() bool {
	if s.UserID == "" || s.Name == "" || s.Email == "" || s.Token == "" {
		return false
	}
	_, ok := ParseRole(string(s.Role))
	return ok
}

// Identity is the non-secret part of a session, persisted separately so
// views can render the signed-in user without touching the token.
type Identity struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

func (s Session) Identity() Identity {
	return Identity{UserID: s.UserID, Name: s.Name, Email: s.Email, Role: s.Role}
}

type Credentials struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,max=512"`
}

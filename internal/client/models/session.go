// Package models defines the client-side view records of the euronode API.
// The server owns every record; the client only keeps the session locally.
package models

import (
	"errors"
	"strings"
)

// Role distinguishes the two kinds of logged-in users.
type Role string

const (
	RoleCentral Role = "central"
	RoleClient  Role = "client"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCentral || r == RoleClient
}

var ErrInvalidSession = errors.New("invalid session")

// Session is the identity of the logged-in user, as returned by /login/.
type Session struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Hospital string `json:"hospital,omitempty"`
}

// Validate rejects records that cannot drive a protected screen.
func (s Session) Validate() error {
	switch {
	case s.ID <= 0:
		return errors.Join(ErrInvalidSession, errors.New("missing id"))
	case strings.TrimSpace(s.Email) == "":
		return errors.Join(ErrInvalidSession, errors.New("missing email"))
	case !s.Role.Valid():
		return errors.Join(ErrInvalidSession, errors.New("unknown role "+string(s.Role)))
	}
	return nil
}

func (s Session) IsCentral() bool { return s.Role == RoleCentral }

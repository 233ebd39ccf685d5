package models

import "github.com/google/uuid"

// SessionKind distinguishes a signed-in caller from an anonymous one.
type SessionKind int

const (
	SessionAnonymous SessionKind = iota
	SessionAuthenticated
)

// Session is attached to every request by the session middleware.
type Session struct {
	Kind      SessionKind `json:"-"`
	AccountID uuid.UUID   `json:"accountId"`
	Role      Role        `json:"role"`
	Name      string      `json:"name"`
}

// AnonymousSession is the session of a caller without a valid token.
var AnonymousSession = Session{Kind: SessionAnonymous}

// IsAuthenticated reports whether the caller presented a valid token.
func (s Session) IsAuthenticated() bool {
	return s.Kind == SessionAuthenticated
}

// HasRole reports whether the caller is signed in as role.
func (s Session) HasRole(role Role) bool {
	return s.IsAuthenticated() && s.Role == role
}

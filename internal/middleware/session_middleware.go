package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/supplyconnect/internal/models"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

const sessionKey = "session"

// SessionMiddleware attaches a models.Session to every request and guards
// role-scoped route groups.
type SessionMiddleware struct{}

// NewSessionMiddleware constructs a new SessionMiddleware.
func NewSessionMiddleware() *SessionMiddleware {
	return &SessionMiddleware{}
}

// Handle resolves the caller's session. A missing or invalid token yields an
// anonymous session rather than an error; Require decides what that means.
func (m *SessionMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := models.AnonymousSession

		if token := bearerToken(c); token != "" {
			if claims, err := utils.ValidateJWT(token); err == nil {
				session = models.Session{
					Kind:      models.SessionAuthenticated,
					AccountID: claims.AccountID,
					Role:      claims.Role,
					Name:      claims.Name,
				}
			}
		}

		c.Set(sessionKey, session)
		if session.IsAuthenticated() {
			c.Set("account_id", session.AccountID.String())
		}
		c.Next()
	}
}

// Require aborts with LOGIN_REQUIRED unless the caller is signed in as role.
// The X-Login-Path header tells the client where to send the user.
func (m *SessionMiddleware) Require(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := GetSession(c)
		if !session.IsAuthenticated() {
			c.Header("X-Login-Path", role.LoginPath())
			utils.Error(c, 401, "LOGIN_REQUIRED", "Please log in to continue")
			c.Abort()
			return
		}
		if session.Role != role {
			c.Header("X-Login-Path", role.LoginPath())
			utils.Error(c, 403, "FORBIDDEN", "This page is only available to "+string(role)+" accounts")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAny aborts with LOGIN_REQUIRED unless the caller is signed in.
func (m *SessionMiddleware) RequireAny() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetSession(c).IsAuthenticated() {
			utils.Error(c, 401, "LOGIN_REQUIRED", "Please log in to continue")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSession returns the session attached by Handle, or an anonymous one.
func GetSession(c *gin.Context) models.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return models.AnonymousSession
	}
	session, ok := v.(models.Session)
	if !ok {
		return models.AnonymousSession
	}
	return session
}

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medtrack-api/internal/models"
	"github.com/harentsoaR/medtrack-api/internal/session"
)

// SessionCookie is the cookie that carries the signed session token.
const SessionCookie = "medtrack_session"

const (
	sessionKey = "session"
	tokenKey   = "sessionToken"
)

// SessionMiddleware resolves the session token from the cookie or a Bearer
// header and stores the live session on the context. Requests without a
// valid session pass through anonymously.
func SessionMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token != "" {
			c.Set(tokenKey, token)
			if sess, ok := sessions.Current(token); ok {
				c.Set(sessionKey, sess)
			}
		}
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// CurrentSession returns the session resolved for this request, if any.
func CurrentSession(c *gin.Context) (session.Session, bool) {
	value, exists := c.Get(sessionKey)
	if !exists {
		return session.Session{}, false
	}
	sess, ok := value.(session.Session)
	return sess, ok
}

// SessionToken returns the raw token presented with the request.
func SessionToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}

// RequireSession redirects to the login page unless the request carries a
// session whose role is one of roles. No roles means any logged-in user.
func RequireSession(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok || (len(roles) > 0 && !slices.Contains(roles, sess.Role)) {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

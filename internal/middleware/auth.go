package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/excellence-college/school-portal/internal/session"
)

// ContextSessionKey is the gin context key storing the admin session.
const ContextSessionKey = "adminSession"

// sessionGuard is the slice of the session manager the guard consumes.
type sessionGuard interface {
	Load(c *gin.Context) (*session.Session, error)
	Revalidate(c *gin.Context, sess *session.Session) (*session.Session, error)
}

// RequireSession protects admin routes. Requests without a valid session are
// redirected to the login page; a session whose token the backend no longer
// accepts is torn down before redirecting.
func RequireSession(manager sessionGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := manager.Load(c)
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/admin/login")
			c.Abort()
			return
		}

		sess, err = manager.Revalidate(c, sess)
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/admin/login")
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, sess)
		c.Next()
	}
}

// SessionFromContext returns the session attached by RequireSession.
func SessionFromContext(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok
}

package middleware

import (
	"net/http"

	"genzfits/internal/logger"
	"genzfits/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionContextKey = "session"

// SessionFromContext returns the session loaded by SessionMiddleware.
func SessionFromContext(c *gin.Context) (session.Session, bool) {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return session.Session{}, false
	}
	sess, ok := value.(session.Session)
	return sess, ok
}

// SetSession stores sess on the request context.
func SetSession(c *gin.Context, sess session.Session) {
	c.Set(sessionContextKey, sess)
}

// SessionMiddleware resolves the session cookie, if any, and stores the
// session on the context. Anonymous requests pass through untouched.
func SessionMiddleware(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(session.CookieName)
		if err == nil && token != "" {
			if sess, resolveErr := store.Resolve(token); resolveErr == nil {
				SetSession(c, sess)
			}
		}
		c.Next()
	}
}

// RequireSession rejects requests that carry no live session.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := SessionFromContext(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Login required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests whose session is missing or bound to a
// non-admin user.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFromContext(c)
		if !ok || !sess.User.IsAdmin {
			fields := []zap.Field{zap.String("path", c.Request.URL.Path)}
			if ok {
				fields = append(fields, zap.Int64("user_id", sess.User.ID))
			}
			logger.FromGin(c).Warn("Rejected non-admin request", fields...)

			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized: admin access required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

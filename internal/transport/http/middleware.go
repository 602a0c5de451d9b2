package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/quacklabs/quack/internal/store"
)

// SessionCookie is the name of the bearer session cookie.
const SessionCookie = "session"

// ContextKeyUser is the gin context key holding the resolved *store.User.
const ContextKeyUser = "user"

// SessionMiddleware resolves the session cookie to a user and stores it in
// the request context. A missing or stale cookie leaves the context empty;
// handlers that require identity use CurrentUser.
func SessionMiddleware(sessions store.SessionStore, users store.UserStore, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		sess, err := sessions.GetSession(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				logger.Warn().Err(err).Msg("resolve session")
			}
			c.Next()
			return
		}

		user, err := users.GetUser(c.Request.Context(), sess.UserID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				logger.Warn().Err(err).Msg("resolve session user")
			}
			c.Next()
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user from the gin context, or nil.
func CurrentUser(c *gin.Context) *store.User {
	v, ok := c.Get(ContextKeyUser)
	if !ok {
		return nil
	}
	user, ok := v.(*store.User)
	if !ok {
		return nil
	}
	return user
}

// RequireUser returns the authenticated user or writes a 401 and aborts.
func RequireUser(c *gin.Context) *store.User {
	user := CurrentUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return nil
	}
	return user
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}

package middleware

import (
	"net/http"
	"strings"

	"resume-review-backend/internal/delivery/http/response"
	"resume-review-backend/internal/domain"
	"resume-review-backend/pkg/apperror"
	"resume-review-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

const AuthCookieName = "auth_token"

// bearerToken reads the session credential from the Authorization header, then the cookie.
func bearerToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil {
		return cookie
	}
	return ""
}

// SessionFromGin returns the session attached by AuthMiddleware.
func SessionFromGin(c *gin.Context) domain.Session {
	return domain.SessionFrom(c.Request.Context())
}

// AuthMiddleware resolves the caller and rejects anything that is not a valid session.
func AuthMiddleware(sessionUC domain.SessionUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sessionUC.Resolve(c.Request.Context(), bearerToken(c))
		if err != nil {
			code, message := http.StatusUnauthorized, "session verification failed"
			if apperror.KindOf(err) == apperror.KindBackend {
				code, message = http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again."
			} else if apperror.KindOf(err) == apperror.KindConflict {
				code, message = http.StatusConflict, err.Error()
			}

			security.DefaultLogger().LogAuthFailed(
				c.Request.Context(),
				c.ClientIP(),
				c.GetHeader("User-Agent"),
				c.GetString(string(domain.KeyRequestID)),
				err.Error(),
			)
			response.Error(c, code, message, nil)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(domain.WithSession(c.Request.Context(), session))
		c.Set(string(domain.KeySession), session)
		c.Set(string(domain.KeyUserID), session.UserID)
		c.Set(string(domain.KeyUserEmail), session.Email)

		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFromGin(c)
		if !session.IsAdmin() {
			security.DefaultLogger().LogUnauthorizedAccess(
				c.Request.Context(),
				session.UserID,
				c.ClientIP(),
				c.GetString(string(domain.KeyRequestID)),
				c.FullPath(),
			)
			response.Error(c, http.StatusForbidden, "Admin access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

package middleware

import (
	"context"
	"strings"

	"medxmentor-backend/internal/domain"
	"medxmentor-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// AuthCookieName is the cookie checked when no Authorization header is sent.
const AuthCookieName = "auth_token"

// TokenParser validates a session token and returns the user id it was issued to.
type TokenParser interface {
	Parse(token string) (string, error)
}

func AuthMiddleware(tokens TokenParser, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			abortUnauthorized(c, "Not authorized, no token")
			return
		}

		userID, err := tokens.Parse(tokenString)
		if err != nil {
			abortUnauthorized(c, "Not authorized, token failed")
			return
		}

		// Load the user so deleted accounts lose access immediately
		user, err := authUC.GetCurrentUser(c.Request.Context(), userID)
		if err != nil || user == nil {
			abortUnauthorized(c, "Not authorized, user not found")
			return
		}

		role := user.Role
		if role == "" {
			role = domain.RoleMentee
		}

		c.Set(string(domain.KeyUserID), user.ID)
		c.Set(string(domain.KeyUserEmail), user.Email)
		c.Set(string(domain.KeyUserRole), role)

		ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, user.ID)
		ctx = context.WithValue(ctx, domain.KeyUserEmail, user.Email)
		ctx = context.WithValue(ctx, domain.KeyUserRole, role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil {
		return cookie
	}
	return ""
}

// abortUnauthorized routes the failure through ErrorHandler so it is rendered
// and security-logged like any other 401.
func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.Unauthorized(message))
	c.Abort()
}

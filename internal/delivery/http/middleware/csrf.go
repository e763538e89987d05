package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"medxmentor-backend/internal/delivery/http/response"
	"medxmentor-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

const (
	// CSRFTokenCookieName is readable by the frontend so it can echo the value back
	CSRFTokenCookieName = "csrf_token"
	// CSRFTokenHeaderName must carry the cookie value on mutating requests
	CSRFTokenHeaderName = "X-CSRF-Token"
	CSRFTokenLength     = 32
	CSRFTokenExpiry     = 24 * time.Hour
)

// Public routes where no session cookie exists yet.
var csrfExemptPaths = map[string]bool{
	"/api/auth/login":    true,
	"/api/auth/register": true,
	"/api/auth/logout":   true,
	"/api/health":        true,
}

func generateCSRFToken() (string, error) {
	bytes := make([]byte, CSRFTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CSRFMiddleware implements the double-submit cookie pattern for requests
// authenticated by the auth_token cookie. Requests carrying an Authorization
// header are not checked: browsers never attach it on their own.
func CSRFMiddleware(isProduction bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		csrfCookie, err := c.Cookie(CSRFTokenCookieName)
		if err != nil || csrfCookie == "" {
			newToken, err := generateCSRFToken()
			if err != nil {
				response.Error(c, http.StatusInternalServerError, "Failed to generate security token", nil)
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CSRFTokenCookieName, newToken, int(CSRFTokenExpiry.Seconds()), "/", "", isProduction, false)
			csrfCookie = newToken
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if csrfExemptPaths[c.Request.URL.Path] || c.GetHeader("Authorization") != "" {
			c.Next()
			return
		}
		if session, err := c.Cookie(AuthCookieName); err != nil || session == "" {
			// No cookie session to ride on; AuthMiddleware rejects the request if needed
			c.Next()
			return
		}

		headerToken := c.GetHeader(CSRFTokenHeaderName)
		if headerToken == "" {
			rejectCSRF(c, "Missing CSRF token", "missing_token")
			return
		}
		if subtle.ConstantTimeCompare([]byte(headerToken), []byte(csrfCookie)) != 1 {
			rejectCSRF(c, "Invalid CSRF token", "token_mismatch")
			return
		}

		c.Next()
	}
}

func rejectCSRF(c *gin.Context, message, reason string) {
	security.DefaultLogger().LogCSRFViolation(c.Request.Context(), c.ClientIP(), c.Request.URL.Path, reason)
	response.Error(c, http.StatusForbidden, message, nil)
	c.Abort()
}

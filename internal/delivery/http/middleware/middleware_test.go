package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medxmentor-backend/internal/delivery/http/response"
	"medxmentor-backend/internal/domain"
	"medxmentor-backend/pkg/apperror"
	"medxmentor-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubTokens map[string]string

func (s stubTokens) Parse(token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", errors.New("invalid token")
}

type stubAuthUC struct {
	domain.AuthUsecase
	users map[string]*domain.User
}

func (s stubAuthUC) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, apperror.NotFound("User not found")
}

// observeSecurityLog swaps the default security logger for one recorded in memory.
func observeSecurityLog(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	previous := security.DefaultLogger()
	core, logs := observer.New(zapcore.InfoLevel)
	security.SetDefaultLogger(security.NewSecurityLogger(zap.New(core), "medxmentor-backend", "test"))
	t.Cleanup(func() { security.SetDefaultLogger(previous) })
	return logs
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "ok", nil)
	})

	t.Run("generates one", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		id := w.Header().Get("X-Request-ID")
		assert.Len(t, id, 36)
		assert.Equal(t, id, decode(t, w).RequestID)
	})

	t.Run("honours the caller's", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "trace-123")
		r.ServeHTTP(w, req)
		assert.Equal(t, "trace-123", w.Header().Get("X-Request-ID"))
	})
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/app", func(c *gin.Context) { _ = c.Error(apperror.NotFound("Assessment not found")) })
	r.GET("/upstream", func(c *gin.Context) {
		_ = c.Error(apperror.Upstream("OpenAI API key is not configured.", errors.New("no key")))
	})
	r.GET("/plain", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })

	tests := []struct {
		path    string
		code    int
		message string
	}{
		{"/app", http.StatusNotFound, "Assessment not found"},
		{"/upstream", http.StatusBadGateway, "OpenAI API key is not configured."},
		{"/plain", http.StatusInternalServerError, "An unexpected error occurred. Please try again later."},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

		assert.Equal(t, tt.code, w.Code, tt.path)
		body := decode(t, w)
		assert.False(t, body.Success)
		assert.Equal(t, tt.message, body.Message)
		assert.NotContains(t, w.Body.String(), "connection refused")
	}
}

func TestErrorHandlerSecurityEvents(t *testing.T) {
	logs := observeSecurityLog(t)

	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.POST("/assessments", func(c *gin.Context) { _ = c.Error(apperror.BadRequest("Invalid request body")) })
	r.GET("/assessments/:id", func(c *gin.Context) {
		_ = c.Error(apperror.Forbidden("Not authorized to view this assessment"))
	})
	r.GET("/missing", func(c *gin.Context) { _ = c.Error(apperror.NotFound("Assessment not found")) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/assessments", nil),
		httptest.NewRequest(http.MethodGet, "/assessments/abc", nil),
		httptest.NewRequest(http.MethodGet, "/missing", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Equal(t, 2, logs.Len())

	invalid := logs.FilterMessage("validation_failed").All()
	require.Len(t, invalid, 1)
	assert.Equal(t, zapcore.WarnLevel, invalid[0].Level)
	details, ok := invalid[0].ContextMap()["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/assessments", details["endpoint"])
	assert.Equal(t, "Invalid request body", details["reason"])

	assert.Equal(t, 1, logs.FilterMessage("unauthorized_access").Len())
}

func TestAuthMiddleware(t *testing.T) {
	users := map[string]*domain.User{"u1": {ID: "u1", Email: "amina@example.com", Role: domain.RoleMentee}}
	tokens := stubTokens{"good": "u1", "orphan": "deleted-user"}

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/me", AuthMiddleware(tokens, stubAuthUC{users: users}), func(c *gin.Context) {
		id, _ := domain.UserIDFrom(c.Request.Context())
		c.String(http.StatusOK, id+"|"+c.GetString(string(domain.KeyUserRole)))
	})

	call := func(setup func(*http.Request)) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		setup(req)
		r.ServeHTTP(w, req)
		return w
	}

	w := call(func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1|mentee", w.Body.String())

	w = call(func(req *http.Request) { req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "good"}) })
	assert.Equal(t, http.StatusOK, w.Code)

	for name, setup := range map[string]func(*http.Request){
		"missing":      func(*http.Request) {},
		"bad token":    func(req *http.Request) { req.Header.Set("Authorization", "Bearer forged") },
		"wrong scheme": func(req *http.Request) { req.Header.Set("Authorization", "Basic good") },
		"deleted user": func(req *http.Request) { req.Header.Set("Authorization", "Bearer orphan") },
	} {
		w := call(setup)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
		assert.False(t, decode(t, w).Success, name)
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://medxmentor.org/"}, true))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := func(origin string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", origin)
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("https://medxmentor.org")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://medxmentor.org", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight("http://localhost:3000")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitMiddlewareInMemory(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", RateLimitMiddleware(RateLimitConfig{
		Limit:     2,
		Window:    time.Minute,
		KeyPrefix: "rl:test:" + t.Name() + ":",
	}), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestUserOrIPKey(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "ip:10.1.2.3", userOrIPKey(c))

	c.Set(string(domain.KeyUserID), "u1")
	assert.Equal(t, "user:u1", userOrIPKey(c))
}

func TestCSRFMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CSRFMiddleware(false))
	r.GET("/api/assessments", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/assessments", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/api/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	post := func(path string, setup func(*http.Request)) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		setup(req)
		r.ServeHTTP(w, req)
		return w
	}
	session := &http.Cookie{Name: AuthCookieName, Value: "tok"}
	csrf := &http.Cookie{Name: CSRFTokenCookieName, Value: "abc123"}

	t.Run("issues a token on safe requests", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/assessments", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Set-Cookie"), CSRFTokenCookieName+"=")
	})

	t.Run("cookie session without header", func(t *testing.T) {
		w := post("/api/assessments", func(req *http.Request) {
			req.AddCookie(session)
			req.AddCookie(csrf)
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Missing CSRF token", decode(t, w).Message)
	})

	t.Run("cookie session with mismatched header", func(t *testing.T) {
		w := post("/api/assessments", func(req *http.Request) {
			req.AddCookie(session)
			req.AddCookie(csrf)
			req.Header.Set(CSRFTokenHeaderName, "forged")
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("cookie session with matching header", func(t *testing.T) {
		w := post("/api/assessments", func(req *http.Request) {
			req.AddCookie(session)
			req.AddCookie(csrf)
			req.Header.Set(CSRFTokenHeaderName, "abc123")
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("bearer requests are not checked", func(t *testing.T) {
		w := post("/api/assessments", func(req *http.Request) {
			req.AddCookie(session)
			req.Header.Set("Authorization", "Bearer tok")
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("login is exempt", func(t *testing.T) {
		w := post("/api/auth/login", func(req *http.Request) { req.AddCookie(session) })
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

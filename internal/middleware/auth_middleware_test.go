package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/axevisa/visa-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTService() *jwt.Service {
	return jwt.NewService("test-secret-key-123456789", time.Hour)
}

func testRouter(jwtService *jwt.Service, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handlers := []gin.HandlerFunc{AuthMiddleware(jwtService)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		userCtx := MustGetUserContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userCtx.UserID, "role": userCtx.Role})
	})

	router.GET("/protected", handlers...)
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_Success(t *testing.T) {
	jwtService := testJWTService()
	router := testRouter(jwtService)

	token, err := jwtService.GenerateToken(uuid.New(), "USER")
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"USER"`)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router := testRouter(testJWTService())

	w := doRequest(router, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_AUTH_HEADER")
}

func TestAuthMiddleware_BadFormat(t *testing.T) {
	router := testRouter(testJWTService())

	w := doRequest(router, "Token abc123")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT")
}

func TestAuthMiddleware_EmptyToken(t *testing.T) {
	router := testRouter(testJWTService())

	w := doRequest(router, "Bearer ")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := testRouter(testJWTService())

	w := doRequest(router, "Bearer not.a.token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	expiredService := jwt.NewService("test-secret-key-123456789", -time.Minute)
	router := testRouter(testJWTService())

	token, err := expiredService.GenerateToken(uuid.New(), "USER")
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestRequireRole_Allows(t *testing.T) {
	jwtService := testJWTService()
	router := testRouter(jwtService, "ADMIN")

	token, err := jwtService.GenerateToken(uuid.New(), "ADMIN")
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_AllowsAnyListedRole(t *testing.T) {
	jwtService := testJWTService()
	router := testRouter(jwtService, "EXPERT", "ADMIN")

	token, err := jwtService.GenerateToken(uuid.New(), "EXPERT")
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_Forbids(t *testing.T) {
	jwtService := testJWTService()
	router := testRouter(jwtService, "ADMIN")

	token, err := jwtService.GenerateToken(uuid.New(), "USER")
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "INSUFFICIENT_PERMISSIONS")
}

func TestGetUserContext_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, exists := GetUserContext(c)
	assert.False(t, exists)
}

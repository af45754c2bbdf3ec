package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/counselflow/counselflow-api/internal/models"
	"github.com/counselflow/counselflow-api/internal/policy"
	"github.com/counselflow/counselflow-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func callerEcho(c *gin.Context) {
	caller, ok := CurrentCaller(c)
	if !ok {
		c.Status(http.StatusTeapot)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": caller.UserID, "role": caller.Role, "ip": caller.IPAddress})
}

func newAuthRouter() *gin.Engine {
	router := gin.New()
	router.Use(Auth(testSecret))
	router.GET("/me", callerEcho)
	return router
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuth_ValidBearerToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "u-1", "ana@firm.test", models.RoleAssociate, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	newAuthRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "u-1", body["userId"])
	assert.Equal(t, models.RoleAssociate, body["role"])
	assert.Equal(t, "192.0.2.1", body["ip"])
}

func TestAuth_QueryToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "u-1", "", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	newAuthRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_Rejections(t *testing.T) {
	expired, err := GenerateToken(testSecret, "u-1", "", models.RoleAdmin, -time.Minute)
	require.NoError(t, err)
	forged, err := GenerateToken("other-secret", "u-1", "", models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Role: models.RoleAdmin}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing", "", "Authorization header is required"},
		{"wrong scheme", "Basic abc", "Invalid authorization header format"},
		{"expired", "Bearer " + expired, "token has expired"},
		{"bad signature", "Bearer " + forged, "invalid token"},
		{"no subject", "Bearer " + noUser, "invalid token claims"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			newAuthRouter().ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.want, body["error"])
		})
	}
}

func TestRequireRole(t *testing.T) {
	for role, want := range map[string]int{
		models.RoleAdmin:     http.StatusOK,
		models.RolePartner:   http.StatusOK,
		models.RoleAssociate: http.StatusForbidden,
	} {
		router := gin.New()
		router.Use(func(c *gin.Context) { SetCaller(c, policy.Caller{UserID: "u", Role: role}) })
		router.GET("/audits", RequireRole(models.RoleAdmin, models.RolePartner), callerEcho)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audits", nil))
		assert.Equal(t, want, w.Code, role)
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	generated := w.Header().Get("X-Request-ID")
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", "existing-request-id-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "existing-request-id-123", w.Header().Get("X-Request-ID"))
}

func TestGetRequestIDEmpty(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetRequestID(c))
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "req-42", body["request_id"])
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"https://app.counselflow.test"}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.counselflow.test")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.counselflow.test", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.test")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger_IncludesRequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.Log
	logger.Log = slog.New(slog.NewJSONHandler(&buf, nil))
	t.Cleanup(func() { logger.Log = prev })

	token, err := GenerateToken(testSecret, "u-7", "", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	router := gin.New()
	router.Use(RequestID(), RequestLogger(), Auth(testSecret))
	router.GET("/api/v1/contracts", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts?token="+token, nil)
	req.Header.Set("X-Request-ID", "req-7")
	router.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-7", entry["request_id"])
	assert.Equal(t, "u-7", entry["user_id"])
	assert.Equal(t, "/api/v1/contracts?token=REDACTED", entry["path"])
	assert.Equal(t, float64(200), entry["status"])
}

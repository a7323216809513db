package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"egov-portal/internal/i18n"
	"egov-portal/internal/models"
	"egov-portal/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.GenerateToken("2", "officer@demo.com", "officer")
	require.NoError(t, err)

	r := gin.New()
	r.Use(Language(i18n.English))
	r.GET("/me", AuthMiddleware(jwtManager), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": GetRole(c)})
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"missing header", "", http.StatusUnauthorized, "auth.required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "auth.invalid_header"},
		{"bad token", "Bearer nope", http.StatusUnauthorized, "auth.invalid_token"},
		{"valid token", "Bearer " + token, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := perform(r, http.MethodGet, "/me", headers)
			assert.Equal(t, tt.wantStatus, w.Code)

			body := decodeBody(t, w)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["code"])
				assert.NotEmpty(t, body["error"])
				return
			}
			assert.Equal(t, "2", body["user_id"])
			assert.Equal(t, "officer", body["role"])
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.GenerateToken("1", "citizen@demo.com", "citizen")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/resolve", OptionalAuth(jwtManager), func(c *gin.Context) {
		userID, ok := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "authenticated": ok})
	})

	anonymous := decodeBody(t, perform(r, http.MethodGet, "/resolve", nil))
	assert.Equal(t, false, anonymous["authenticated"])

	invalid := decodeBody(t, perform(r, http.MethodGet, "/resolve", map[string]string{"Authorization": "Bearer broken"}))
	assert.Equal(t, false, invalid["authenticated"])

	authed := decodeBody(t, perform(r, http.MethodGet, "/resolve", map[string]string{"Authorization": "Bearer " + token}))
	assert.Equal(t, true, authed["authenticated"])
	assert.Equal(t, "1", authed["user_id"])
}

func withRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if role != "" {
			c.Set(ContextRole, role)
		}
		c.Next()
	}
}

func okHandler(c *gin.Context) { c.Status(http.StatusNoContent) }

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		role       string
		wantStatus int
	}{
		{"officer", http.StatusNoContent},
		{"citizen", http.StatusForbidden},
		{"admin", http.StatusForbidden},
		{"superuser", http.StatusForbidden},
		{"", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		r := gin.New()
		r.GET("/review", withRole(tt.role), RequirePermission(models.PermissionReviewDocuments), okHandler)

		w := perform(r, http.MethodGet, "/review", nil)
		assert.Equal(t, tt.wantStatus, w.Code, "role %q", tt.role)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		role       string
		wantStatus int
	}{
		{"admin", http.StatusNoContent},
		{"officer", http.StatusNoContent},
		{"citizen", http.StatusForbidden},
	}

	for _, tt := range tests {
		r := gin.New()
		r.GET("/officer", withRole(tt.role), RequireRole(models.RoleOfficer), okHandler)

		w := perform(r, http.MethodGet, "/officer", nil)
		assert.Equal(t, tt.wantStatus, w.Code, "role %q", tt.role)
	}
}

func TestRequireAnyRole(t *testing.T) {
	r := gin.New()
	r.GET("/citizen", withRole("officer"), RequireAnyRole(models.RoleCitizen, models.RoleAdmin), okHandler)

	w := perform(r, http.MethodGet, "/citizen", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "auth.forbidden", body["code"])
	assert.Equal(t, "officer", body["user_role"])

	r.GET("/stats", withRole("admin"), RequireAnyRole(models.RoleOfficer, models.RoleAdmin), okHandler)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/stats", nil).Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	r := gin.New()
	r.Use(Language(i18n.English))
	r.GET("/verify", rl.RateLimit(), okHandler)

	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/verify", nil).Code)
	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/verify", nil).Code)

	w := perform(r, http.MethodGet, "/verify", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "error.rate_limited", decodeBody(t, w)["code"])
}

func TestRateLimiter_WindowExpires(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	now := time.Now()
	assert.True(t, rl.allow("1.2.3.4", now))
	assert.False(t, rl.allow("1.2.3.4", now.Add(30*time.Second)))
	assert.True(t, rl.allow("5.6.7.8", now))
	assert.True(t, rl.allow("1.2.3.4", now.Add(2*time.Minute)))
}

func TestLanguage(t *testing.T) {
	r := gin.New()
	r.Use(Language(i18n.English))
	r.GET("/lang", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"lang": GetLanguage(c), "title": Translate(c, "nav.dashboard")})
	})

	tests := []struct {
		name    string
		path    string
		headers map[string]string
		want    string
	}{
		{"default", "/lang", nil, "en"},
		{"query", "/lang?lang=hi", nil, "hi"},
		{"header", "/lang", map[string]string{"X-Language": "hi"}, "hi"},
		{"accept-language", "/lang", map[string]string{"Accept-Language": "hi-IN,hi;q=0.9,en;q=0.8"}, "hi"},
		{"accept-language q-weights", "/lang", map[string]string{"Accept-Language": "en;q=0.1, hi;q=0.9"}, "hi"},
		{"query wins", "/lang?lang=en", map[string]string{"X-Language": "hi"}, "en"},
		{"unsupported falls back", "/lang?lang=fr", nil, "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, http.MethodGet, tt.path, tt.headers)
			body := decodeBody(t, w)
			assert.Equal(t, tt.want, body["lang"])
			assert.Equal(t, tt.want, w.Header().Get("Content-Language"))
		})
	}

	hindi := decodeBody(t, perform(r, http.MethodGet, "/lang?lang=hi", nil))
	assert.Equal(t, "डैशबोर्ड", hindi["title"])
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestID))
	})

	w := perform(r, http.MethodGet, "/ping", nil)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	assert.Equal(t, w.Header().Get(HeaderRequestID), w.Body.String())

	w = perform(r, http.MethodGet, "/ping", map[string]string{HeaderRequestID: "req-123"})
	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
}

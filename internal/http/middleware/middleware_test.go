package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prashanttechie/portfolio-project/internal/auth"
	"github.com/prashanttechie/portfolio-project/internal/shared/apperr"
)

func testEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := gin.New()
	r.Use(RequestID(), Recovery(l), ErrorHandler(l))
	return r
}

func TestErrorHandler_RendersAppError(t *testing.T) {
	r := testEngine()
	r.GET("/x", func(c *gin.Context) {
		Fail(c, apperr.InvalidErr("Missing required fields", map[string]string{"email": "This field is required."}))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "rid-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "rid-1", w.Header().Get(HeaderRequestID))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Missing required fields", body["error"])
	assert.Equal(t, "rid-1", body["request_id"])
	assert.Equal(t, map[string]any{"email": "This field is required."}, body["fields"])
}

func TestRecovery_HidesPanic(t *testing.T) {
	r := testEngine()
	r.GET("/boom", func(c *gin.Context) { panic("db password is hunter2") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestRequireAdmin(t *testing.T) {
	tokens := auth.NewTokens("s3cret", time.Hour)
	admin, err := tokens.Issue("ops", auth.RoleAdmin)
	require.NoError(t, err)

	r := testEngine()
	r.GET("/admin", RequireAdmin(tokens), func(c *gin.Context) {
		cl, ok := CurrentClaims(c)
		require.True(t, ok)
		c.String(http.StatusOK, cl.UserID)
	})

	cases := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"none", func(*http.Request) {}, http.StatusUnauthorized},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+admin) }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AdminCookieName, Value: admin}) }, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestRequestID_RejectsUnsafeHeader(t *testing.T) {
	r := testEngine()
	var fromCtx string
	r.GET("/x", func(c *gin.Context) {
		fromCtx = RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "bad id\r\nx")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	rid := w.Header().Get(HeaderRequestID)
	assert.Len(t, rid, 36)
	assert.Equal(t, rid, fromCtx)
}

func TestLogger_OmitsQueryAndQuietsHealthChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	r := gin.New()
	r.Use(RequestID(), Logger(l))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/courses", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Empty(t, buf.String())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/courses?email=a@b.c", nil))
	out := buf.String()
	assert.Contains(t, out, `"msg":"http_request"`)
	assert.Contains(t, out, `"route":"/api/courses"`)
	assert.NotContains(t, out, "a@b.c")
}

package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/prashanttechie/portfolio-project/internal/auth"
	apphttp "github.com/prashanttechie/portfolio-project/internal/http"
	"github.com/prashanttechie/portfolio-project/internal/modules/enrollments"
	"github.com/prashanttechie/portfolio-project/internal/modules/payments"
	"github.com/prashanttechie/portfolio-project/internal/testutil"
)

type env struct {
	db     *gorm.DB
	router *gin.Engine
	orders *testutil.Orders
	tokens *auth.Tokens
}

func newEnv(t *testing.T) env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	orders := &testutil.Orders{}
	tokens := auth.NewTokens("admin-jwt-secret", time.Hour)
	r := apphttp.NewRouter(apphttp.Deps{
		Logger:   testutil.Logger(),
		DB:       db,
		SQLDB:    sqlDB,
		Gateway:  testutil.Gateway(orders),
		Currency: "INR",
		Tokens:   tokens,
	})
	return env{db: db, router: r, orders: orders, tokens: tokens}
}

func (e env) do(t *testing.T, method, path string, body []byte, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestCreateOrder_HTTP(t *testing.T) {
	e := newEnv(t)
	course := testutil.SeedCourse(t, e.db, "Go", "2999.00")

	body, _ := json.Marshal(map[string]any{"courseId": course.ID, "name": "Asha", "email": "asha@example.com"})
	w := e.do(t, http.MethodPost, "/api/payments/create-order", body, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	got := decode(t, w)
	assert.Equal(t, "order_test1", got["orderId"])
	assert.Equal(t, 2999.0, got["amount"])
	assert.Equal(t, "INR", got["currency"])
	assert.Equal(t, testutil.KeyID, got["keyId"])
	assert.NotZero(t, got["enrollmentId"])
	assert.Equal(t, int64(299900), e.orders.Calls[0]["amount"])
}

func TestCreateOrder_HTTPErrors(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/payments/create-order", []byte(`{"name":"Asha"}`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	got := decode(t, w)
	assert.Equal(t, "Missing required fields", got["error"])
	assert.Contains(t, got["fields"], "courseId")

	w = e.do(t, http.MethodPost, "/api/payments/create-order", []byte(`{"courseId":5,"name":"a","email":"a@b.co"}`), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodPost, "/api/payments/create-order", []byte(`{not json`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerify_HTTP(t *testing.T) {
	e := newEnv(t)
	course := testutil.SeedCourse(t, e.db, "Go", "100.00")
	testutil.SeedEnrollment(t, e.db, 4, course.ID, "order_4")

	good := payments.Sign(testutil.KeySecret, payments.CheckoutPayload("order_4", "pay_4"))
	bad, _ := json.Marshal(map[string]any{
		"razorpay_order_id": "order_4", "razorpay_payment_id": "pay_4", "razorpay_signature": "deadbeef", "enrollmentId": 4,
	})
	w := e.do(t, http.MethodPost, "/api/payments/verify", bad, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid payment signature", decode(t, w)["error"])

	ok, _ := json.Marshal(map[string]any{
		"razorpay_order_id": "order_4", "razorpay_payment_id": "pay_4", "razorpay_signature": good, "enrollmentId": 4,
	})
	w = e.do(t, http.MethodPost, "/api/payments/verify", ok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode(t, w)
	assert.Equal(t, true, got["success"])
	assert.Equal(t, "COMPLETED", got["paymentStatus"])

	w = e.do(t, http.MethodGet, "/api/enrollments/4/status", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmed", decode(t, w)["state"])
}

const sampleCaptured = `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","amount":299900,"currency":"INR","method":"upi","notes":{"enrollmentId":"42"}}}}}`

func TestWebhook_HTTP(t *testing.T) {
	e := newEnv(t)
	course := testutil.SeedCourse(t, e.db, "Go", "2999.00")
	testutil.SeedEnrollment(t, e.db, 42, course.ID, "order_1")
	body := []byte(sampleCaptured)

	t.Run("missing signature", func(t *testing.T) {
		w := e.do(t, http.MethodPost, "/api/payments/webhook", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var en enrollments.Enrollment
		require.NoError(t, e.db.First(&en, 42).Error)
		assert.Equal(t, enrollments.StatusPending, en.PaymentStatus)
	})

	t.Run("valid", func(t *testing.T) {
		h := http.Header{}
		h.Set("x-razorpay-signature", payments.Sign(testutil.WebhookSecret, body))
		w := e.do(t, http.MethodPost, "/api/payments/webhook", body, h)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "ok", decode(t, w)["status"])

		var en enrollments.Enrollment
		require.NoError(t, e.db.First(&en, 42).Error)
		assert.Equal(t, enrollments.StatusCompleted, en.PaymentStatus)
	})

	t.Run("malformed but signed is acknowledged", func(t *testing.T) {
		junk := []byte(`{"event":`)
		h := http.Header{}
		h.Set("X-Razorpay-Signature", payments.Sign(testutil.WebhookSecret, junk))
		w := e.do(t, http.MethodPost, "/api/payments/webhook", junk, h)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAdminRoutes(t *testing.T) {
	e := newEnv(t)
	course := testutil.SeedCourse(t, e.db, "Go", "2999.00")
	testutil.SeedEnrollment(t, e.db, 42, course.ID, "order_1")
	body := []byte(sampleCaptured)
	h := http.Header{}
	h.Set(payments.HeaderSignature, payments.Sign(testutil.WebhookSecret, body))
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/payments/webhook", body, h).Code)

	w := e.do(t, http.MethodGet, "/api/payments", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	userTok, err := e.tokens.Issue("u1", "user")
	require.NoError(t, err)
	w = e.do(t, http.MethodGet, "/api/payments", nil, http.Header{"Authorization": {"Bearer " + userTok}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminTok, err := e.tokens.Issue("ops", auth.RoleAdmin)
	require.NoError(t, err)
	authz := http.Header{"Authorization": {"Bearer " + adminTok}}

	w = e.do(t, http.MethodGet, "/api/payments?status=completed&limit=500", nil, authz)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode(t, w)
	assert.Equal(t, "2999.00", got["totalRevenue"])
	list := got["payments"].([]any)
	require.Len(t, list, 1)
	first := list[0].(map[string]any)
	assert.Equal(t, "pay_1", first["razorpayPaymentId"])
	assert.Equal(t, "Go", first["enrollment"].(map[string]any)["course"].(map[string]any)["title"])

	w = e.do(t, http.MethodGet, "/api/payments?status=bogus", nil, authz)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/api/courses", []byte(`{"title":"Rust","price":"1499.50","category":"systems"}`), authz)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "1499.50", decode(t, w)["price"])

	w = e.do(t, http.MethodPost, "/api/courses", []byte(`{"title":"Rust","price":"0","level":"Expert"}`), authz)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "price")
	assert.Contains(t, fields, "level")

	w = e.do(t, http.MethodGet, "/api/courses?category=systems", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["courses"], 1)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/healthz", nil, nil).Code)

	w := e.do(t, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

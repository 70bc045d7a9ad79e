// Package testutil wires an in-memory database and gateway fakes for package tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/prashanttechie/portfolio-project/internal/database"
	"github.com/prashanttechie/portfolio-project/internal/modules/courses"
	"github.com/prashanttechie/portfolio-project/internal/modules/enrollments"
	"github.com/prashanttechie/portfolio-project/internal/modules/payments"
)

const (
	KeyID         = "rzp_test_key"
	KeySecret     = "test_key_secret"
	WebhookSecret = "test_webhook_secret"
)

var dbSeq atomic.Int64

// NewDB returns a migrated private in-memory SQLite database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared",
		strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()), dbSeq.Add(1))
	db, err := database.Open("sqlite", name)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func SeedCourse(t testing.TB, db *gorm.DB, title, price string) courses.Course {
	t.Helper()
	c := courses.Course{
		Title:       title,
		Description: title + " description",
		Price:       decimal.RequireFromString(price),
		Duration:    "8 weeks",
		Level:       "Beginner",
		Category:    "web",
		Published:   true,
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// SeedEnrollment inserts an enrollment with an explicit id so webhook bodies can name it.
func SeedEnrollment(t testing.TB, db *gorm.DB, id, courseID uint, orderRef string) enrollments.Enrollment {
	t.Helper()
	e := enrollments.Enrollment{
		ID:            id,
		CourseID:      courseID,
		Name:          "Asha Rao",
		Email:         "asha@example.com",
		PaymentStatus: enrollments.StatusPending,
	}
	if orderRef != "" {
		e.OrderRef = &orderRef
	}
	require.NoError(t, db.Create(&e).Error)
	return e
}

func Gateway(orders payments.OrderAPI) *payments.Razorpay {
	return payments.NewRazorpayWithOrders(payments.RazorpayConfig{
		KeyID:         KeyID,
		KeySecret:     KeySecret,
		WebhookSecret: WebhookSecret,
		Timeout:       time.Second,
	}, orders)
}

// Orders fakes the SDK order resource.
type Orders struct {
	mu    sync.Mutex
	Calls []map[string]interface{}

	CreateFn func(data map[string]interface{}) (map[string]interface{}, error)
}

func (o *Orders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	o.mu.Lock()
	o.Calls = append(o.Calls, data)
	n := len(o.Calls)
	o.mu.Unlock()

	if o.CreateFn != nil {
		return o.CreateFn(data)
	}
	return map[string]interface{}{"id": fmt.Sprintf("order_test%d", n), "status": "created"}, nil
}

var ErrGatewayDown = errors.New("gateway unavailable")

func FailingOrders() *Orders {
	return &Orders{CreateFn: func(map[string]interface{}) (map[string]interface{}, error) {
		return nil, ErrGatewayDown
	}}
}

// Notifier records settlements; dispatch is asynchronous, so read through Wait.
type Notifier struct {
	mu   sync.Mutex
	sent []payments.Settlement
	ch   chan struct{}
}

func NewNotifier() *Notifier { return &Notifier{ch: make(chan struct{}, 64)} }

func (n *Notifier) NotifySettlement(_ context.Context, s payments.Settlement) error {
	n.mu.Lock()
	n.sent = append(n.sent, s)
	n.mu.Unlock()
	n.ch <- struct{}{}
	return nil
}

// Wait blocks until count settlements arrived or the timeout passes.
func (n *Notifier) Wait(t testing.TB, count int) []payments.Settlement {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for i := 0; i < count; i++ {
		select {
		case <-n.ch:
		case <-deadline:
			t.Fatalf("waited for %d settlements, got %d", count, i)
		}
	}
	return n.Sent()
}

func (n *Notifier) Sent() []payments.Settlement {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]payments.Settlement(nil), n.sent...)
}

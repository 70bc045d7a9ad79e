package payments_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prashanttechie/portfolio-project/internal/modules/enrollments"
	"github.com/prashanttechie/portfolio-project/internal/modules/payments"
	"github.com/prashanttechie/portfolio-project/internal/shared/apperr"
	"github.com/prashanttechie/portfolio-project/internal/testutil"
)

func TestCreateOrder_PendingEnrollmentAndMinorAmount(t *testing.T) {
	db := testutil.NewDB(t)
	course := testutil.SeedCourse(t, db, "Go Fundamentals", "2999.00")
	orders := &testutil.Orders{}
	svc := payments.NewOrderService(db, testutil.Gateway(orders), "INR", testutil.Logger())

	res, err := svc.CreateOrder(context.Background(), payments.CreateOrderInput{
		CourseID: course.ID,
		Name:     " Asha Rao ",
		Email:    "asha@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(299900), res.AmountMinor)
	assert.True(t, res.Amount.Equal(course.Price))
	assert.Equal(t, "INR", res.Currency)
	assert.Equal(t, testutil.KeyID, res.KeyID)
	assert.NotEmpty(t, res.OrderID)

	require.Len(t, orders.Calls, 1)
	assert.Equal(t, int64(299900), orders.Calls[0]["amount"])
	assert.Equal(t, "INR", orders.Calls[0]["currency"])

	var all []enrollments.Enrollment
	require.NoError(t, db.Find(&all).Error)
	require.Len(t, all, 1)
	en := all[0]
	assert.Equal(t, res.EnrollmentID, en.ID)
	assert.Equal(t, enrollments.StatusPending, en.PaymentStatus)
	assert.Equal(t, "Asha Rao", en.Name)
	require.NotNil(t, en.OrderRef)
	assert.Equal(t, res.OrderID, *en.OrderRef)

	notes := orders.Calls[0]["notes"].(map[string]interface{})
	assert.Equal(t, "Go Fundamentals", notes["courseName"])
	assert.NotEmpty(t, notes["enrollmentId"])
}

func TestCreateOrder_Validation(t *testing.T) {
	db := testutil.NewDB(t)
	svc := payments.NewOrderService(db, testutil.Gateway(&testutil.Orders{}), "INR", testutil.Logger())

	_, err := svc.CreateOrder(context.Background(), payments.CreateOrderInput{Name: "x"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Invalid))
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, ae.Fields, "courseId")
	assert.Contains(t, ae.Fields, "email")
}

func TestCreateOrder_UnknownCourse(t *testing.T) {
	db := testutil.NewDB(t)
	orders := &testutil.Orders{}
	svc := payments.NewOrderService(db, testutil.Gateway(orders), "INR", testutil.Logger())

	_, err := svc.CreateOrder(context.Background(), payments.CreateOrderInput{CourseID: 99, Name: "a", Email: "a@b.c"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	assert.Empty(t, orders.Calls)
}

func TestCreateOrder_GatewayFailureRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	course := testutil.SeedCourse(t, db, "Go", "10.50")
	svc := payments.NewOrderService(db, testutil.Gateway(testutil.FailingOrders()), "INR", testutil.Logger())

	_, err := svc.CreateOrder(context.Background(), payments.CreateOrderInput{CourseID: course.ID, Name: "a", Email: "a@b.c"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Upstream))
	assert.ErrorIs(t, err, testutil.ErrGatewayDown)

	var n int64
	require.NoError(t, db.Model(&enrollments.Enrollment{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateOrder_GatewayCallHoldsNoTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	course := testutil.SeedCourse(t, db, "Go", "10.50")

	var seen int64
	var seenErr error
	orders := &testutil.Orders{CreateFn: func(map[string]interface{}) (map[string]interface{}, error) {
		// the sqlite pool has one connection; this blocks if a transaction is still open
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		seenErr = db.WithContext(ctx).Model(&enrollments.Enrollment{}).
			Where("payment_status = ?", enrollments.StatusPending).Count(&seen).Error
		return map[string]interface{}{"id": "order_free", "status": "created"}, nil
	}}
	svc := payments.NewOrderService(db, testutil.Gateway(orders), "INR", testutil.Logger())

	res, err := svc.CreateOrder(context.Background(), payments.CreateOrderInput{CourseID: course.ID, Name: "a", Email: "a@b.c"})
	require.NoError(t, err)
	require.NoError(t, seenErr)
	assert.Equal(t, int64(1), seen)

	var en enrollments.Enrollment
	require.NoError(t, db.First(&en, res.EnrollmentID).Error)
	require.NotNil(t, en.OrderRef)
	assert.Equal(t, "order_free", *en.OrderRef)
}

package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/prashanttechie/portfolio-project/internal/modules/courses"
	"github.com/prashanttechie/portfolio-project/internal/modules/enrollments"
	"github.com/prashanttechie/portfolio-project/internal/shared/apperr"
	"github.com/prashanttechie/portfolio-project/internal/shared/money"
)

type OrderService struct {
	db       *gorm.DB
	gateway  Gateway
	currency string
	logger   *slog.Logger
}

func NewOrderService(db *gorm.DB, gw Gateway, currency string, logger *slog.Logger) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{db: db, gateway: gw, currency: currency, logger: logger}
}

type CreateOrderInput struct {
	CourseID uint
	Name     string
	Email    string
	Phone    string
}

type CreateOrderResult struct {
	OrderID      string
	EnrollmentID uint
	Amount       decimal.Decimal // major units
	AmountMinor  int64
	Currency     string
	KeyID        string
}

// CreateOrder opens a PENDING enrollment and a gateway order for the course price.
// The enrollment is committed first, the gateway is called outside any transaction, and the
// order reference is attached afterwards. A failed gateway call deletes the enrollment again.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (CreateOrderResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if in.CourseID == 0 || name == "" || email == "" {
		fields := map[string]string{}
		if in.CourseID == 0 {
			fields["courseId"] = "This field is required."
		}
		if name == "" {
			fields["name"] = "This field is required."
		}
		if email == "" {
			fields["email"] = "This field is required."
		}
		return CreateOrderResult{}, apperr.InvalidErr("Missing required fields", fields)
	}

	// 1) pending enrollment
	var (
		course courses.Course
		en     enrollments.Enrollment
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		course, err = courses.NewRepo(tx).Get(ctx, in.CourseID)
		if err != nil {
			if errors.Is(err, courses.ErrCourseNotFound) {
				return apperr.NotFoundErr("Course not found")
			}
			return err
		}

		en = enrollments.Enrollment{
			CourseID:      course.ID,
			Name:          name,
			Email:         email,
			PaymentStatus: enrollments.StatusPending,
		}
		if p := strings.TrimSpace(in.Phone); p != "" {
			en.Phone = &p
		}
		return tx.WithContext(ctx).Create(&en).Error
	})
	if err != nil {
		return CreateOrderResult{}, apperr.Wrap(fmt.Errorf("create order: %w", err))
	}

	// 2) gateway call, no transaction held
	amountMinor := money.ToMinor(course.Price)
	enID := strconv.FormatUint(uint64(en.ID), 10)
	order, err := s.gateway.CreateOrder(ctx, CreateOrderRequest{
		AmountMinor: amountMinor,
		Currency:    s.currency,
		Receipt:     "enrollment_" + enID,
		Notes: map[string]string{
			"enrollmentId": enID,
			"courseId":     strconv.FormatUint(uint64(course.ID), 10),
			"courseName":   course.Title,
			"studentName":  name,
			"studentEmail": email,
		},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "gateway order creation failed", "course_id", in.CourseID, "enrollment_id", en.ID, "err", err)
		s.discard(ctx, en.ID)
		return CreateOrderResult{}, apperr.UpstreamErr("Failed to create payment order", err)
	}

	// 3) attach the order reference
	err = s.db.WithContext(ctx).Model(&enrollments.Enrollment{}).
		Where("id = ? AND order_ref IS NULL", en.ID).
		Update("order_ref", order.OrderID).Error
	if err != nil {
		s.logger.ErrorContext(ctx, "attach order reference failed", "enrollment_id", en.ID, "order_id", order.OrderID, "err", err)
		s.discard(ctx, en.ID)
		return CreateOrderResult{}, apperr.Wrap(fmt.Errorf("create order: attach %s: %w", order.OrderID, err))
	}

	res := CreateOrderResult{
		OrderID:      order.OrderID,
		EnrollmentID: en.ID,
		Amount:       course.Price,
		AmountMinor:  amountMinor,
		Currency:     s.currency,
		KeyID:        s.gateway.KeyID(),
	}
	s.logger.InfoContext(ctx, "payment order created",
		"enrollment_id", res.EnrollmentID, "order_id", res.OrderID, "amount_minor", res.AmountMinor)
	return res, nil
}

// discard removes an enrollment whose gateway order never materialised. It runs detached
// from ctx so a cancelled request still cleans up.
func (s *OrderService) discard(ctx context.Context, enrollmentID uint) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	err := s.db.WithContext(ctx).
		Where("id = ? AND payment_status = ? AND order_ref IS NULL", enrollmentID, enrollments.StatusPending).
		Delete(&enrollments.Enrollment{}).Error
	if err != nil {
		s.logger.ErrorContext(ctx, "discard pending enrollment failed", "enrollment_id", enrollmentID, "err", err)
	}
}

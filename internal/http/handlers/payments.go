package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prashanttechie/portfolio-project/internal/http/middleware"
	"github.com/prashanttechie/portfolio-project/internal/modules/enrollments"
	"github.com/prashanttechie/portfolio-project/internal/modules/payments"
)

type PaymentsHandler struct {
	Orders *payments.OrderService
	Verify *payments.VerifyService
}

func NewPaymentsHandler(orders *payments.OrderService, verify *payments.VerifyService) *PaymentsHandler {
	return &PaymentsHandler{Orders: orders, Verify: verify}
}

type createOrderRequest struct {
	CourseID uint   `json:"courseId"`
	Name     string `json:"name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
}

type createOrderResponse struct {
	OrderID      string      `json:"orderId"`
	EnrollmentID uint        `json:"enrollmentId"`
	Amount       json.Number `json:"amount"`
	Currency     string      `json:"currency"`
	KeyID        string      `json:"keyId"`
}

// POST /api/payments/create-order
func (h *PaymentsHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := bindJSON(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	res, err := h.Orders.CreateOrder(c.Request.Context(), payments.CreateOrderInput{
		CourseID: req.CourseID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, createOrderResponse{
		OrderID:      res.OrderID,
		EnrollmentID: res.EnrollmentID,
		Amount:       json.Number(res.Amount.StringFixed(2)),
		Currency:     res.Currency,
		KeyID:        res.KeyID,
	})
}

type verifyRequest struct {
	OrderID      string `json:"razorpay_order_id"`
	PaymentID    string `json:"razorpay_payment_id"`
	Signature    string `json:"razorpay_signature"`
	EnrollmentID uint   `json:"enrollmentId"`
}

// POST /api/payments/verify
func (h *PaymentsHandler) VerifyPayment(c *gin.Context) {
	var req verifyRequest
	if err := bindJSON(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	res, err := h.Verify.Verify(c.Request.Context(), payments.VerifyInput{
		OrderID:      req.OrderID,
		PaymentID:    req.PaymentID,
		Signature:    req.Signature,
		EnrollmentID: req.EnrollmentID,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	msg := "Payment verified successfully"
	if res.Idempotent && res.PaymentStatus == enrollments.StatusCompleted {
		msg = "Payment already verified"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       msg,
		"paymentStatus": res.PaymentStatus,
	})
}

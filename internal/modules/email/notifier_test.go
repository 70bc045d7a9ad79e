package email

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prashanttechie/portfolio-project/internal/mailer"
	"github.com/prashanttechie/portfolio-project/internal/modules/enrollments"
	"github.com/prashanttechie/portfolio-project/internal/modules/payments"
)

func TestEnrollmentNotifier(t *testing.T) {
	cases := []struct {
		status  enrollments.PaymentStatus
		subject string
		body    string
	}{
		{enrollments.StatusCompleted, "Enrollment confirmed: Go <Basics>", "₹2999.00"},
		{enrollments.StatusFailed, "Payment failed: Go <Basics>", "retry"},
		{enrollments.StatusRefunded, "Refund issued: Go <Basics>", "refund of ₹2999.00"},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			m := &mailer.Mock{}
			n := NewEnrollmentNotifier(m, "noreply@example.com", "Courses")

			err := n.NotifySettlement(context.Background(), payments.Settlement{
				EnrollmentID: 42,
				CourseTitle:  "Go <Basics>",
				StudentName:  "Asha",
				StudentEmail: "asha@example.com",
				Status:       tc.status,
				Amount:       decimal.RequireFromString("2999"),
				Currency:     "INR",
			})
			require.NoError(t, err)
			require.Len(t, m.Sent, 1)

			sent := m.Sent[0]
			assert.Equal(t, []string{"asha@example.com"}, sent.To)
			assert.Equal(t, tc.subject, sent.Subject)
			assert.Contains(t, sent.TextBody, tc.body)
			assert.Contains(t, sent.HTMLBody, "Go &lt;Basics&gt;")
			assert.Equal(t, "42", sent.Headers["X-Enrollment-Id"])
		})
	}
}

func TestEnrollmentNotifier_SkipsPendingAndMissingEmail(t *testing.T) {
	m := &mailer.Mock{}
	n := NewEnrollmentNotifier(m, "noreply@example.com", "")

	require.NoError(t, n.NotifySettlement(context.Background(), payments.Settlement{Status: enrollments.StatusPending, StudentEmail: "a@b.c"}))
	require.NoError(t, n.NotifySettlement(context.Background(), payments.Settlement{Status: enrollments.StatusCompleted}))
	assert.Empty(t, m.Sent)
}

// Package email sends student-facing messages for enrollment payment transitions.
package email

import (
	"context"
	"fmt"
	"html"

	"github.com/prashanttechie/portfolio-project/internal/mailer"
	"github.com/prashanttechie/portfolio-project/internal/modules/enrollments"
	"github.com/prashanttechie/portfolio-project/internal/modules/payments"
	"github.com/prashanttechie/portfolio-project/internal/shared/money"
)

type EnrollmentNotifier struct {
	mailer   mailer.Service
	fromAddr string
	fromName string
}

func NewEnrollmentNotifier(m mailer.Service, fromAddr, fromName string) *EnrollmentNotifier {
	return &EnrollmentNotifier{mailer: m, fromAddr: fromAddr, fromName: fromName}
}

// NotifySettlement implements payments.Notifier.
func (n *EnrollmentNotifier) NotifySettlement(ctx context.Context, s payments.Settlement) error {
	if s.StudentEmail == "" {
		return nil
	}
	subject, text, ok := render(s)
	if !ok {
		return nil
	}

	return n.mailer.Send(ctx, mailer.Email{
		From:     n.fromAddr,
		FromName: n.fromName,
		To:       []string{s.StudentEmail},
		Subject:  subject,
		TextBody: text,
		HTMLBody: "<html><body style=\"font-family: sans-serif;\"><p>" +
			html.EscapeString(text) + "</p></body></html>",
		Headers: map[string]string{"X-Enrollment-Id": fmt.Sprint(s.EnrollmentID)},
	})
}

func render(s payments.Settlement) (subject, text string, ok bool) {
	amount := money.Format(s.Currency, s.Amount)
	switch s.Status {
	case enrollments.StatusCompleted:
		return "Enrollment confirmed: " + s.CourseTitle,
			fmt.Sprintf("Hi %s, your payment of %s was received and your enrollment in %s (#%d) is confirmed.",
				s.StudentName, amount, s.CourseTitle, s.EnrollmentID), true
	case enrollments.StatusFailed:
		return "Payment failed: " + s.CourseTitle,
			fmt.Sprintf("Hi %s, your payment for %s did not go through. You can retry the checkout at any time.",
				s.StudentName, s.CourseTitle), true
	case enrollments.StatusRefunded:
		return "Refund issued: " + s.CourseTitle,
			fmt.Sprintf("Hi %s, a refund of %s for %s (#%d) has been issued.",
				s.StudentName, amount, s.CourseTitle, s.EnrollmentID), true
	}
	return "", "", false
}

package mailer

import (
	"context"
	"errors"
	"sync"
)

// Mock records messages instead of delivering them. Safe for concurrent use, since
// settlement emails are sent from background goroutines.
type Mock struct {
	mu   sync.Mutex
	Sent []Email
	Err  error
}

func (m *Mock) Send(ctx context.Context, e Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(e.To) == 0 {
		return errors.New("mailer: no recipients")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, e)
	return nil
}

// Messages returns a copy of what has been recorded so far.
func (m *Mock) Messages() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Email(nil), m.Sent...)
}

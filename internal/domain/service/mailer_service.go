package service

import "context"

// Mailer delivers transactional mail. Delivery is best-effort: callers
// must not fail the triggering request when Send errors.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

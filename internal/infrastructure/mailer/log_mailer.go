package mailer

import (
	"context"

	"dormdrop/pkg/logger"
)

// LogMailer stands in for a real relay during development: it logs the
// mail instead of delivering it.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	logger.Info("mail (dev): to=%s subject=%q body=%q", to, subject, body)
	return nil
}

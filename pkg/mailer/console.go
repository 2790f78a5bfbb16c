package mailer

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleMailer logs messages instead of delivering them. Used in
// development and whenever no SendGrid key is configured.
type ConsoleMailer struct {
	logger *zap.Logger
}

// NewConsoleMailer constructs a console mailer.
func NewConsoleMailer(logger *zap.Logger) *ConsoleMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleMailer{logger: logger}
}

// Send writes the message to the log.
func (m *ConsoleMailer) Send(_ context.Context, msg *Message) error {
	m.logger.Info("email (console transport)",
		zap.String("to", msg.ToEmail),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTMLContent)),
	)
	return nil
}

package email

import (
	"context"

	"github.com/sirupsen/logrus"
)

// ConsoleSender writes emails to the log instead of delivering them. Used in
// development where no Sendgrid key is configured.
type ConsoleSender struct {
	logger *logrus.Logger
}

func NewConsoleSender(logger *logrus.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger}
}

func (s *ConsoleSender) SendEmail(_ context.Context, to, subject, body string) error {
	s.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Infof("console email: %s", body)
	return nil
}

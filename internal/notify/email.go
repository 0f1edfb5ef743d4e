package notify

import (
	"context"
	"fmt"

	"entertainer-booking/pkg/utils"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// EmailSender sends plain-text mail over SMTP.
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

func NewEmailSender(config utils.EmailConfig, log *zap.Logger) *EmailSender {
	return &EmailSender{
		dialer: gomail.NewDialer(config.Host, config.Port, config.User, config.Password),
		from:   config.From,
		log:    log.With(zap.String("sender", "email")),
	}
}

func (s *EmailSender) Send(ctx context.Context, msg Rendered) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.Recipient)
	m.SetHeader("Subject", msg.Subject)
	if msg.CorrelationID != "" {
		m.SetHeader("X-Correlation-ID", msg.CorrelationID)
	}
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	s.log.Info("Email sent",
		zap.String("to", utils.MaskContact(msg.Recipient)),
		zap.String("subject", msg.Subject),
		zap.String("correlation_id", msg.CorrelationID),
	)
	return nil
}

package notify

import (
	"context"

	"entertainer-booking/pkg/utils"

	"go.uber.org/zap"
)

// LogSender writes messages to the log. Used for channels without credentials.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg Rendered) error {
	s.log.Info("Notification (log only)",
		zap.String("channel", string(msg.Channel)),
		zap.String("to", utils.MaskContact(msg.Recipient)),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
		zap.String("correlation_id", msg.CorrelationID),
	)
	return nil
}

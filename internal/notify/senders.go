package notify

import (
	"entertainer-booking/pkg/utils"

	"go.uber.org/zap"
)

// SendersFromConfig builds a sender for every channel that has credentials.
// Channels left out fall back to the log sender.
func SendersFromConfig(config *utils.Config, log *zap.Logger) map[Channel]Sender {
	senders := make(map[Channel]Sender)

	if config.Email.Host != "" {
		senders[ChannelEmail] = NewEmailSender(config.Email, log)
	}
	if config.SMS.AccountSID != "" && config.SMS.AuthToken != "" {
		if config.SMS.From != "" {
			senders[ChannelSMS] = NewTwilioSender(config.SMS, ChannelSMS, log)
		}
		if config.SMS.WhatsAppFrom != "" {
			senders[ChannelWhatsApp] = NewTwilioSender(config.SMS, ChannelWhatsApp, log)
		}
	}

	for _, ch := range []Channel{ChannelEmail, ChannelSMS, ChannelWhatsApp} {
		if _, ok := senders[ch]; !ok {
			log.Warn("Notification channel not configured, logging only", zap.String("channel", string(ch)))
		}
	}
	return senders
}

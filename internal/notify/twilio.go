package notify

import (
	"context"
	"fmt"

	"entertainer-booking/pkg/utils"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// TwilioSender sends SMS, or WhatsApp when configured with the WhatsApp channel.
type TwilioSender struct {
	client  *twilio.RestClient
	from    string
	channel Channel
	log     *zap.Logger
}

func NewTwilioSender(config utils.SMSConfig, channel Channel, log *zap.Logger) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: config.AccountSID,
		Password: config.AuthToken,
	})

	from := config.From
	if channel == ChannelWhatsApp {
		from = config.WhatsAppFrom
	}

	return &TwilioSender{
		client:  client,
		from:    from,
		channel: channel,
		log:     log.With(zap.String("sender", string(channel))),
	}
}

func (s *TwilioSender) address(number string) string {
	if s.channel == ChannelWhatsApp {
		return "whatsapp:" + number
	}
	return number
}

func (s *TwilioSender) Send(ctx context.Context, msg Rendered) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(s.address(msg.Recipient))
	params.SetFrom(s.address(s.from))
	params.SetBody(msg.Body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send %s: %w", s.channel, err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	s.log.Info("Message sent",
		zap.String("to", utils.MaskContact(msg.Recipient)),
		zap.String("sid", sid),
		zap.String("correlation_id", msg.CorrelationID),
	)
	return nil
}

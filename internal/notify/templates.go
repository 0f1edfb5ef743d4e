package notify

import (
	"bytes"
	"fmt"
	"text/template"
)

// Template keys.
const (
	TemplateBookingCreated       = "booking.created"
	TemplateBookingStatusChanged = "booking.status_changed"
	TemplateCancellationReview   = "booking.cancellation_review"
	TemplatePaymentSubmitted     = "payment.submitted"
	TemplatePaymentVerified      = "payment.verified"
	TemplatePaymentRejected      = "payment.rejected"
	TemplatePaymentFlagged       = "payment.flagged"
	TemplateApplicationApproved  = "vetting.approved"
	TemplateApplicationRejected  = "vetting.rejected"
	TemplateApplicationSubmitted = "vetting.submitted"
)

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustTemplate(key, subject, body string) messageTemplate {
	return messageTemplate{
		subject: template.Must(template.New(key + ".subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New(key + ".body").Option("missingkey=zero").Parse(body)),
	}
}

var templates = map[string]messageTemplate{
	TemplateBookingCreated: mustTemplate(TemplateBookingCreated,
		"Booking {{.reference}} received",
		"Hi {{.name}}, booking {{.reference}} for {{.event_date}} has been received. Total {{.total}}, deposit {{.deposit}}."),
	TemplateBookingStatusChanged: mustTemplate(TemplateBookingStatusChanged,
		"Booking {{.reference}} is now {{.status}}",
		"Hi {{.name}}, booking {{.reference}} moved from {{.from}} to {{.status}}.{{if .reason}} Reason: {{.reason}}{{end}}"),
	TemplateCancellationReview: mustTemplate(TemplateCancellationReview,
		"Cancellation request for {{.reference}}",
		"Hi {{.name}}, the cancellation request for booking {{.reference}} is inside the notice window and will be reviewed by our team."),
	TemplatePaymentSubmitted: mustTemplate(TemplatePaymentSubmitted,
		"Payment received for {{.reference}}",
		"Hi {{.name}}, we received your payment of {{.amount}} for booking {{.reference}}. It will be verified shortly."),
	TemplatePaymentVerified: mustTemplate(TemplatePaymentVerified,
		"Payment verified for {{.reference}}",
		"Hi {{.name}}, your payment of {{.amount}} for booking {{.reference}} has been verified. Payment status: {{.payment_status}}."),
	TemplatePaymentRejected: mustTemplate(TemplatePaymentRejected,
		"Payment for {{.reference}} needs attention",
		"Hi {{.name}}, your payment of {{.amount}} for booking {{.reference}} could not be verified.{{if .notes}} {{.notes}}{{end}} Please upload a new receipt."),
	TemplatePaymentFlagged: mustTemplate(TemplatePaymentFlagged,
		"Payment for {{.reference}} is under review",
		"Hi {{.name}}, your payment of {{.amount}} for booking {{.reference}} does not match the expected {{.expected}}. Our team will be in touch."),
	TemplateApplicationSubmitted: mustTemplate(TemplateApplicationSubmitted,
		"Application received",
		"Hi {{.name}}, thanks for applying as {{.stage_name}}. We will review your application soon."),
	TemplateApplicationApproved: mustTemplate(TemplateApplicationApproved,
		"Welcome aboard, {{.stage_name}}",
		"Hi {{.name}}, your performer application has been approved. You can now list your services."),
	TemplateApplicationRejected: mustTemplate(TemplateApplicationRejected,
		"Your performer application",
		"Hi {{.name}}, your performer application was not approved.{{if .notes}} {{.notes}}{{end}}"),
}

// Render applies the message's template.
func Render(msg Message) (Rendered, error) {
	tpl, ok := templates[msg.TemplateKey]
	if !ok {
		return Rendered{}, fmt.Errorf("unknown notification template %q", msg.TemplateKey)
	}

	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, msg.Variables); err != nil {
		return Rendered{}, fmt.Errorf("render %s subject: %w", msg.TemplateKey, err)
	}
	if err := tpl.body.Execute(&body, msg.Variables); err != nil {
		return Rendered{}, fmt.Errorf("render %s body: %w", msg.TemplateKey, err)
	}

	return Rendered{
		Channel:       msg.Channel,
		Recipient:     msg.Recipient,
		Subject:       subject.String(),
		Body:          body.String(),
		CorrelationID: msg.CorrelationID,
	}, nil
}

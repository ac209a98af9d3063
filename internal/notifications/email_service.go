package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"concertly/internal/shared/config"
	"concertly/pkg/logger"
)

// EmailService renders and delivers notification emails. When SMTP is not
// configured, deliveries are logged instead of sent.
type EmailService interface {
	Send(ctx context.Context, notification *Notification) error
}

type smtpEmailService struct {
	cfg       *config.EmailConfig
	log       *logger.Logger
	templates map[NotificationType]*template.Template
}

const bookingConfirmationTemplate = `
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Booking Confirmed 🎫</h2>
	<p>Hi {{.customerName}},</p>
	<p>Your reservation for <strong>{{.concertName}}</strong> is confirmed.</p>
	<table style="border-collapse: collapse;">
		<tr><td style="padding: 4px 12px 4px 0;">Reservation ID</td><td><strong>{{.reservationId}}</strong></td></tr>
		<tr><td style="padding: 4px 12px 4px 0;">Tickets</td><td>{{.quantity}}</td></tr>
		<tr><td style="padding: 4px 12px 4px 0;">Total</td><td>${{printf "%.2f" .totalPrice}}</td></tr>
	</table>
	<p>See you there!</p>
</body>
</html>`

const concertReminderTemplate = `
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Concert Reminder 🔔</h2>
	<p>Hi {{.customerName}},</p>
	<p><strong>{{.concertName}}</strong> is coming up on {{.concertDate}} at {{.venue}}.</p>
	<p>Your reservation <strong>{{.reservationId}}</strong> covers {{.quantity}} ticket(s).</p>
</body>
</html>`

func NewEmailService(cfg *config.EmailConfig, log *logger.Logger) (EmailService, error) {
	templates := map[NotificationType]*template.Template{}
	for t, body := range map[NotificationType]string{
		TypeBookingConfirmation: bookingConfirmationTemplate,
		TypeConcertReminder:     concertReminderTemplate,
	} {
		parsed, err := template.New(string(t)).Parse(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", t, err)
		}
		templates[t] = parsed
	}

	return &smtpEmailService{
		cfg:       cfg,
		log:       log,
		templates: templates,
	}, nil
}

func (s *smtpEmailService) Send(ctx context.Context, notification *Notification) error {
	tmpl, ok := s.templates[notification.Type]
	if !ok {
		return fmt.Errorf("no template for notification type %q", notification.Type)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, notification.Data); err != nil {
		return fmt.Errorf("failed to render %s email: %w", notification.Type, err)
	}

	if s.cfg.SMTPHost == "" {
		s.log.Info("email delivery skipped, SMTP not configured",
			"type", string(notification.Type),
			"recipient", notification.RecipientEmail,
			"subject", notification.Subject,
		)
		return nil
	}

	return s.deliver(notification, body.String())
}

func (s *smtpEmailService) deliver(notification *Notification, htmlBody string) error {
	from := s.cfg.FromEmail
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromEmail)
	}

	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + notification.RecipientEmail + "\r\n")
	msg.WriteString("Subject: " + notification.Subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{notification.RecipientEmail}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", notification.RecipientEmail, err)
	}
	return nil
}

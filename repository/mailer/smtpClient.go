package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"pkgrental/model"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpMailer struct {
	cfg SMTPConfig
	log *slog.Logger
}

func NewSMTP(cfg SMTPConfig, log *slog.Logger) Mailer {
	return &smtpMailer{cfg: cfg, log: log}
}

func (m *smtpMailer) Send(ctx context.Context, req Request) (bool, string) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return false, err.Error()
	}
	if err := msg.To(req.Recipient); err != nil {
		return false, err.Error()
	}

	switch req.Kind {
	case model.EmailThankYou:
		msg.Subject("Thank You for Returning Your Rental!")
		msg.SetBodyString(mail.TypeTextHTML, thankYouBody(req))
	default:
		msg.Subject(fmt.Sprintf("Your QR Code - %s", req.Code))
		msg.SetBodyString(mail.TypeTextHTML, issuanceBody(req))
		if len(req.Attachment) > 0 {
			msg.AttachReader(fmt.Sprintf("qr_code_%s.png", req.Code), bytes.NewReader(req.Attachment))
		}
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return false, err.Error()
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		m.log.Error("smtp send failed", "recipient", req.Recipient, "kind", req.Kind, "err", err)
		return false, err.Error()
	}
	return true, "sent"
}

func issuanceBody(req Request) string {
	city := req.City
	if city == "" {
		city = "your local"
	}
	pkg := req.PackageType
	if pkg == "" {
		pkg = "rental"
	}
	noun := "package"
	if req.Quantity != 1 {
		noun = "packages"
	}
	return fmt.Sprintf(`
	<html><body style="font-family: Arial, sans-serif; color: #333;">
		<h2>Your Pickup QR Code</h2>
		<p>Dear %s %s,</p>
		<p>Thank you for your order! Your QR code is attached.</p>
		<p>Confirmation number: <strong>%s</strong></p>
		<ul>
			<li>Event: %s</li>
			<li>Package: %d x %s %s</li>
			<li>Pickup Code: %s</li>
		</ul>
		<p><strong>Important:</strong> save this QR code to your phone. You'll need it to pick up your items.</p>
	</body></html>`,
		req.FirstName, req.LastName, req.Code, city, req.Quantity, pkg, noun, req.Code)
}

func thankYouBody(req Request) string {
	city := req.City
	if city == "" {
		city = "your local"
	}
	pkg := req.PackageType
	if pkg == "" {
		pkg = "rental"
	}
	return fmt.Sprintf(`
	<html><body style="font-family: Arial, sans-serif; color: #333;">
		<h2>Thank You!</h2>
		<p>Dear %s %s,</p>
		<p>Thank you for returning your %s package from the %s event!</p>
		<p>We hope to see you again next year.</p>
	</body></html>`,
		req.FirstName, req.LastName, pkg, city)
}

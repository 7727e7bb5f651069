package registerwatch

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

// Mailer delivers watch notifications.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type SmtpMailer struct {
	config SmtpConfig
}

func NewSmtpMailer(config SmtpConfig) SmtpMailer {
	return SmtpMailer{config: config}
}

func (m SmtpMailer) Send(ctx context.Context, to, subject, body string) error {
	_, span := tracer.Start(ctx, "SmtpMailer.Send")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("RegistryLens <%s>", m.config.EmailAddress)
	mail.To = []string{to}
	mail.Subject = subject
	mail.Text = []byte(body)

	err := mail.Send(
		fmt.Sprintf("%s:%d", m.config.Server, m.config.Port),
		smtp.PlainAuth("", m.config.EmailAddress, m.config.Password, m.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(fmt.Sprintf("%s:%d", m.config.Server, m.config.Port), nil)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to send email")
			return err
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}

	return nil
}

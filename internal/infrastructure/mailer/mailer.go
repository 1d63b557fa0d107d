package mailer

import (
	"context"
	"fmt"

	"github.com/MGTheTrain/admin-console/internal/domain/mail"
	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"

	gomail "github.com/wneessen/go-mail"
)

// Mailer dispatches to the driver named by the credentials
type Mailer struct {
	smtp *SMTPMailer
	log  *LogMailer
}

// NewMailer creates a mail.Mailer supporting the smtp and log drivers
func NewMailer(logger logger.Logger) (mail.Mailer, error) {
	return &Mailer{
		smtp: &SMTPMailer{logger: logger},
		log:  &LogMailer{logger: logger},
	}, nil
}

// Send implements mail.Mailer
func (m *Mailer) Send(ctx context.Context, creds *mail.Credentials, msg *mail.Message) error {
	if creds == nil {
		return fmt.Errorf("mail credentials are required")
	}
	switch creds.Driver {
	case config.MailDriverLog:
		return m.log.Send(ctx, creds, msg)
	case config.MailDriverSMTP, "":
		return m.smtp.Send(ctx, creds, msg)
	default:
		return fmt.Errorf("unsupported mail driver: %s", creds.Driver)
	}
}

// SMTPMailer sends through an SMTP server using go-mail
type SMTPMailer struct {
	logger logger.Logger
}

// Send implements mail.Mailer
func (m *SMTPMailer) Send(ctx context.Context, creds *mail.Credentials, msg *mail.Message) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	out, err := buildMessage(creds, msg)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(creds.Host, clientOptions(creds)...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", creds.Host, err)
	}

	m.logger.Info("Sent mail '", msg.Subject, "' to ", len(msg.To), " recipients using ", creds.Source, " credentials")
	return nil
}

func clientOptions(creds *mail.Credentials) []gomail.Option {
	opts := []gomail.Option{gomail.WithPort(creds.Port)}

	switch creds.Encryption {
	case mail.EncryptionSSL:
		opts = append(opts, gomail.WithSSL())
	case mail.EncryptionTLS:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	default:
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	if creds.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(creds.Username),
			gomail.WithPassword(creds.Password),
		)
	}
	return opts
}

func buildMessage(creds *mail.Credentials, msg *mail.Message) (*gomail.Msg, error) {
	out := gomail.NewMsg()

	if creds.FromName != "" {
		if err := out.FromFormat(creds.FromName, creds.FromAddress); err != nil {
			return nil, fmt.Errorf("invalid sender: %w", err)
		}
	} else if err := out.From(creds.FromAddress); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := out.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if len(msg.Cc) > 0 {
		if err := out.Cc(msg.Cc...); err != nil {
			return nil, fmt.Errorf("invalid cc recipient: %w", err)
		}
	}
	out.Subject(msg.Subject)

	switch {
	case msg.HTML != "":
		out.SetBodyString(gomail.TypeTextHTML, msg.HTML)
		if msg.Text != "" {
			out.AddAlternativeString(gomail.TypeTextPlain, msg.Text)
		}
	default:
		out.SetBodyString(gomail.TypeTextPlain, msg.Text)
	}
	return out, nil
}

// LogMailer writes outgoing mail to the log instead of sending it
type LogMailer struct {
	logger logger.Logger
}

// Send implements mail.Mailer
func (m *LogMailer) Send(_ context.Context, creds *mail.Credentials, msg *mail.Message) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if _, err := buildMessage(creds, msg); err != nil {
		return err
	}

	m.logger.Info("Mail to ", msg.To, " from ", creds.FromAddress, " subject '", msg.Subject, "': ", msg.HTML, msg.Text)
	return nil
}

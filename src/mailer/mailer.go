package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"fintrack-server/src/logger"

	"github.com/wneessen/go-mail"
)

var ErrNotConfigured = errors.New("smtp is not configured")

type Sender interface {
	SendReport(ctx context.Context, to, subject, body, filename, mime string, data []byte) error
}

// SMTPSender relays mail through an authenticated STARTTLS server. The SMTP
// user doubles as the From address.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
}

func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	return &SMTPSender{host: host, port: port, username: username, password: password}
}

func (s *SMTPSender) message(to, subject, body, filename, mime string, data []byte) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.username); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)
	if len(data) > 0 {
		if err := m.AttachReader(filename, bytes.NewReader(data), mail.WithFileContentType(mail.ContentType(mime))); err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", filename, err)
		}
	}
	return m, nil
}

func (s *SMTPSender) SendReport(ctx context.Context, to, subject, body, filename, mime string, data []byte) error {
	if s.host == "" || s.username == "" || s.password == "" {
		return ErrNotConfigured
	}
	m, err := s.message(to, subject, body, filename, mime, data)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.host,
		mail.WithPort(s.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.username),
		mail.WithPassword(s.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().Str("to", to).Str("attachment", filename).Int("bytes", len(data)).Msg("report email sent")
	return nil
}

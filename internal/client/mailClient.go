package client

import (
	"context"
	"fmt"
	"io"
	"storefront-api/internal/config"

	"gopkg.in/gomail.v2"
)

type Attachment struct {
	FileName    string
	ContentType string
	Content     []byte
}

type Mail struct {
	ToAddress string
	ToName    string
	Subject   string
	Body      string
	Attach    []Attachment
}

type Mailer interface {
	Send(ctx context.Context, mail *Mail) error
}

type smtpMailerImpl struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewSMTPMailer(cfg *config.SMTP) Mailer {
	return &smtpMailerImpl{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

func (m *smtpMailerImpl) Send(ctx context.Context, mail *Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetAddressHeader("To", mail.ToAddress, mail.ToName)
	msg.SetHeader("Subject", mail.Subject)
	msg.SetBody("text/plain", mail.Body)

	for _, a := range mail.Attach {
		content := a.Content
		msg.Attach(a.FileName,
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
		)
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", mail.ToAddress, err)
	}
	return nil
}

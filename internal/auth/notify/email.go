package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig carries the relay settings for outgoing mail.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// ClientURL is the public base URL of the frontend. Verification
	// links point at it, not at this service.
	ClientURL string
}

// SMTPSender sends account mail over a plain SMTP relay.
type SMTPSender struct {
	cfg SMTPConfig

	// send is swapped out in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

var _ EmailSender = (*SMTPSender)(nil)

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, send: smtp.SendMail}
}

func (s *SMTPSender) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", strings.TrimRight(s.cfg.ClientURL, "/"), token)

	body := fmt.Sprintf(
		"Salut, %s!\r\n\r\n"+
			"Îți mulțumim că te-ai înregistrat. Pentru a-ți activa contul, te rugăm să confirmi adresa de email accesând linkul de mai jos:\r\n\r\n"+
			"%s\r\n\r\n"+
			"Dacă nu tu ai creat acest cont, poți ignora acest mesaj.\r\n",
		name, link)

	return s.deliver(ctx, to, "Confirmă adresa de email", body)
}

func (s *SMTPSender) SendWelcomeEmail(ctx context.Context, to, name string) error {
	body := fmt.Sprintf(
		"Salut, %s!\r\n\r\n"+
			"Contul tău a fost verificat cu succes. De acum vei primi notificări înainte de expirarea ITP-ului.\r\n",
		name)

	return s.deliver(ctx, to, "Bine ai venit!", body)
}

func (s *SMTPSender) deliver(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := s.send(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

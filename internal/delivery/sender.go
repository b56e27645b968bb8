package delivery

import (
	"bytes"
	"fmt"
	"net/smtp"

	"ticketing-backend/config"

	"github.com/domodwyer/mailyak/v3"
)

type Sender interface {
	Send(to, subject, body string, attachment []byte, filename string) error
}

type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPSender(cfg *config.SMTPConfig) Sender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		auth: auth,
		from: cfg.From,
	}
}

func (s *SMTPSender) Send(to, subject, body string, attachment []byte, filename string) error {
	mail := mailyak.New(s.addr, s.auth)
	mail.From(s.from)
	mail.To(to)
	mail.Subject(subject)
	mail.Plain().Set(body)
	if len(attachment) > 0 {
		mail.Attach(filename, bytes.NewReader(attachment))
	}
	return mail.Send()
}

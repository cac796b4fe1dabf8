package infra

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"snp/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends ticket notifications straight over SMTP. It is the
// MAIL_TRANSPORT=smtp alternative to the MailUp relay.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	from     string
	cb       *CircuitBreaker
}

func NewMailer(cfg *config.Config, cb *CircuitBreaker) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from:     fmt.Sprintf("%s <%s>", cfg.MailFromName, cfg.MailFromEmail),
		cb:       cb,
	}
}

// Enviar sends one HTML message. The SMTP library has no context support, so
// ctx is only checked before dialing.
func (m *Mailer) Enviar(ctx context.Context, msg Email) error {
	to := strings.TrimSpace(msg.ToEmail)
	if to == "" {
		return &DeliveryFailure{Destinatario: msg.ToEmail, Err: ErrDestinatarioVacio}
	}
	if err := ctx.Err(); err != nil {
		return &DeliveryFailure{Destinatario: to, Err: err}
	}

	e := email.NewEmail()
	e.From = m.from
	if msg.ToName != "" {
		e.To = []string{fmt.Sprintf("%s <%s>", msg.ToName, to)}
	} else {
		e.To = []string{to}
	}
	e.Subject = msg.Subject
	e.HTML = []byte(msg.HTML)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if err := m.cb.Execute(func() error { return e.Send(m.addr, auth) }); err != nil {
		return &DeliveryFailure{Destinatario: to, Err: err}
	}
	return nil
}

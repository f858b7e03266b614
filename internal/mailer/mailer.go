package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nahid2887/padzzey-sub000/internal/config"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// New returns an SMTP mailer when a host is configured and a logging mailer otherwise.
func New(cfg config.SMTPConfig, log zerolog.Logger) Mailer {
	if !cfg.Enabled() {
		return &LogMailer{log: log}
	}
	return &SMTPMailer{cfg: cfg}
}

type SMTPMailer struct {
	cfg  config.SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	send := m.send
	if send == nil {
		send = smtp.SendMail
	}
	if err := send(addr, auth, m.cfg.From, []string{msg.To}, compose(m.cfg.From, msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func compose(from string, m Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + m.To + "\r\n")
	b.WriteString("Subject: " + m.Subject + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// LogMailer writes messages to the log instead of sending them. Used in development.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("email not sent, smtp is not configured")
	return nil
}

func accountLabel(userType string) string {
	return cases.Title(language.English).String(strings.ToLower(userType))
}

// OTPMessage is the password reset code email.
func OTPMessage(to, userType, otp string, expiry time.Duration) Message {
	label := accountLabel(userType)
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Password Reset OTP - %s Account", label),
		Body: fmt.Sprintf("Hello,\n\nYou requested a password reset for your %s account.\n\n"+
			"Your verification code is: %s\n\nThis code will expire in %d minutes.\n\n"+
			"If you didn't request this, please ignore this email.\n\nBest regards,\nPdezzy Team\n",
			label, otp, int(expiry.Minutes())),
	}
}

// ResetConfirmationMessage tells the user their password changed.
func ResetConfirmationMessage(to, userType string) Message {
	label := accountLabel(userType)
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Password Reset Confirmation - %s Account", label),
		Body: fmt.Sprintf("Hello,\n\nYour password for your %s account has been successfully reset.\n\n"+
			"If you didn't perform this action, please contact support immediately.\n\n"+
			"Best regards,\nPdezzy Team\n", label),
	}
}

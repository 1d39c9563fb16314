package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer sends the account lifecycle emails. The send is blocking; a provider
// failure surfaces as the request's error.
type Mailer interface {
	SendActivation(ctx context.Context, to, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
}

// SMTPMailer sends mail through an authenticated SMTP relay.
type SMTPMailer struct {
	host      string
	port      string
	username  string
	password  string
	clientURL string // frontend base URL the emailed links point at
}

func NewSMTPMailer(host, port, username, password, clientURL string) *SMTPMailer {
	return &SMTPMailer{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		clientURL: clientURL,
	}
}

const buttonStyle = "display: inline-block; padding: 10px 20px; background-color: #007bff; color: #fff; text-decoration: none; border-radius: 5px;"

// SendActivation emails the account activation link
func (m *SMTPMailer) SendActivation(ctx context.Context, to, token string) error {
	body := fmt.Sprintf(`
		<p>This email is to verify your email account.</p>
		<p>Please click on the following button to activate your account.</p>
		<a href=%s/activation/%s style="%s">Activate Account</a>`,
		m.clientURL, token, buttonStyle)

	return m.send(ctx, to, "User Account Activation Request", body)
}

// SendPasswordReset emails the password reset link
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	body := fmt.Sprintf(`
		<p>You are receiving this email because you (or someone else) has requested a password reset for your account.</p>
		<p>Please click on the following button to reset your password.</p>
		<a href=%s/reset-password/%s style="%s">Reset Password</a>
		<p>If you did not request this, please ignore this mail, and your password will remain unchanged.</p>`,
		m.clientURL, token, buttonStyle)

	return m.send(ctx, to, "Password Reset Request", body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := strings.Join([]string{
		"From: " + m.username,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	addr := m.host + ":" + m.port

	if err := smtp.SendMail(addr, auth, m.username, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	return nil
}

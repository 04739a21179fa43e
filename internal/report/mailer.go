package report

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer delivers a composed report.
type Mailer interface {
	Send(msg Message) error
}

// SMTPMailer sends the report through a plain-auth SMTP relay.
type SMTPMailer struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Sender    string
	Recipient string
}

const mimeBoundary = "=_automsr_report_boundary"

// Send delivers msg as a multipart/alternative mail so clients without HTML
// still get the plain rendering.
func (m *SMTPMailer) Send(msg Message) error {
	body := buildMIME(m.Sender, m.Recipient, msg)

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	if err := smtp.SendMail(addr, auth, m.Sender, []string{m.Recipient}, body); err != nil {
		return fmt.Errorf("send report mail via %s: %w", addr, err)
	}
	return nil
}

func buildMIME(sender, recipient string, msg Message) []byte {
	var b strings.Builder
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }

	header("From", sender)
	header("To", recipient)
	header("Subject", msg.Subject)
	header("MIME-Version", "1.0")
	header("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", mimeBoundary))
	b.WriteString("\r\n")

	part := func(contentType, content string) {
		fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
		header("Content-Type", contentType)
		b.WriteString("\r\n")
		b.WriteString(content)
		b.WriteString("\r\n")
	}
	part("text/plain; charset=utf-8", msg.Plain)
	if msg.HTML != "" {
		part("text/html; charset=utf-8", msg.HTML)
	}
	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)

	return []byte(b.String())
}

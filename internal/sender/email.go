package sender

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"receipt-mailer/config"
	"receipt-mailer/internal/model"

	gopkgmail "gopkg.in/gomail.v2"
)

// Composer fills the plain-text body template and builds one message per
// student with the rendered receipt attached.
type Composer struct {
	cfg  *config.Run
	tmpl *template.Template
}

// NewComposer parses the body template. Execution fails later if the
// template references a substitution key that is not supplied.
func NewComposer(cfg *config.Run, body string) (*Composer, error) {
	tmpl, err := template.New("email_body").Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	return &Composer{cfg: cfg, tmpl: tmpl}, nil
}

func (c *Composer) Compose(s model.StudentPayment, attachmentPath string) (*gopkgmail.Message, error) {
	body, err := c.renderBody(s)
	if err != nil {
		return nil, fmt.Errorf("render email body: %w", err)
	}

	m := gopkgmail.NewMessage()
	m.SetHeader("Subject", c.cfg.EmailSubject)
	m.SetAddressHeader("From", c.cfg.FromEmail, c.cfg.FromName)
	m.SetHeader("To", s.Email)
	m.SetBody("text/plain", body)
	m.Attach(attachmentPath)
	return m, nil
}

func (c *Composer) renderBody(s model.StudentPayment) (string, error) {
	data := map[string]any{
		"student_first_name": firstName(s.Name),
		"student_name":       s.Name,
		"amount":             s.Amount,
		"payment_date":       s.Date,
		"payment_method":     s.PaymentMethod,
		"semester":           c.cfg.Semester,
		"from_name":          c.cfg.FromName,
		"from_title":         c.cfg.FromTitle,
		"from_email":         c.cfg.FromEmail,
	}
	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func firstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return fullName
	}
	return fields[0]
}

// SMTPSender delivers one message per dial: fresh connection, STARTTLS
// upgrade, optional auth, single send, close. No retry, no reuse.
type SMTPSender struct {
	cfg config.SMTP
}

func NewSMTPSender(cfg config.SMTP) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send opens the SMTP session and delivers m. gomail authenticates only
// when the dialer carries a username.
func (s *SMTPSender) Send(m *gopkgmail.Message) error {
	d := gopkgmail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

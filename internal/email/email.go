// Package email renders and delivers the unread-message digest mails
// produced by the notification batcher. Delivery goes over plain SMTP;
// an unconfigured host switches the sender into a log-only mode so local
// development never needs a mail relay.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sender delivers digest mails over SMTP.
type Sender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// NewSender constructs a Sender from SMTP connection settings.
func NewSender(host, port, username, password, from string) *Sender {
	return &Sender{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
	}
}

// MessagePreview is one line of the digest body.
type MessagePreview struct {
	AuthorID string
	Content  string
	SentAt   time.Time
}

// Digest is the data rendered into one digest mail.
type Digest struct {
	// UserID is the recipient.
	UserID string
	// Count is the number of messages collected in the window.
	Count int
	// WindowStart is when the first message opened the window.
	WindowStart time.Time
	// Previews holds up to a handful of recent unread messages.
	Previews []MessagePreview
}

const digestTemplate = `
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #ddd; border-radius: 5px; }
        .header { background-color: #1f2a44; color: white; padding: 10px; text-align: center; border-radius: 5px 5px 0 0; }
        .content { padding: 20px; }
        .msg { padding: 8px 12px; margin: 6px 0; background-color: #f5f6fa; border-radius: 4px; }
        .author { font-weight: bold; }
        .footer { margin-top: 20px; font-size: 0.8em; color: #777; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Title}}</h1>
        </div>
        <div class="content">
            <p>You received {{.Count}} new {{if eq .Count 1}}message{{else}}messages{{end}} while you were away.</p>
            {{range .Previews}}
            <div class="msg"><span class="author">{{.AuthorID}}</span>: {{.Content}}</div>
            {{end}}
            <p>Open the app to read and reply.</p>
        </div>
        <div class="footer">
            <p>You get at most one of these per 15 minutes of activity.</p>
        </div>
    </div>
</body>
</html>
`

// titler upper-cases subject words per English casing rules.
var titler = cases.Title(language.English)

// Subject returns the subject line for a digest.
func Subject(d Digest) string {
	noun := "messages"
	if d.Count == 1 {
		noun = "message"
	}
	return titler.String(fmt.Sprintf("you have %d new %s", d.Count, noun))
}

// SendDigest renders the digest and delivers it to the given address.
// With no SMTP host configured the mail is logged instead of sent.
func (s *Sender) SendDigest(to string, d Digest) error {
	t, err := template.New("digest").Parse(digestTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	subject := Subject(d)
	var body bytes.Buffer
	if err := t.Execute(&body, map[string]any{
		"Title":    subject,
		"Count":    d.Count,
		"Previews": d.Previews,
	}); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	headers := map[string]string{
		"From":         s.From,
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": `text/html; charset="UTF-8"`,
	}
	message := ""
	for k, v := range headers {
		message += fmt.Sprintf("%s: %s\r\n", k, v)
	}
	message += "\r\n" + body.String()

	if s.Host == "" {
		log.Info().
			Str("to", to).
			Str("subject", subject).
			Int("count", d.Count).
			Msg("smtp host not configured, digest logged instead of sent")
		return nil
	}

	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)
	return smtp.SendMail(addr, auth, s.From, []string{to}, []byte(message))
}

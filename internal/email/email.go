// Package email mails the finished report through a plain SMTP relay,
// with weekly or monthly framing and optional PNG plot attachments.
package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/awsaudit-dev/awsaudit/internal/config"
)

// Sender mails reports using a configured relay.
type Sender struct {
	cfg    config.EmailConfig
	logger log.FieldLogger

	// send is smtp.SendMail, replaceable in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSender creates a Sender for the given email settings.
func NewSender(cfg config.EmailConfig, logger log.FieldLogger) *Sender {
	return &Sender{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// Send mails the report. Weekly selects the incremental subject and
// preamble; otherwise the end-of-month framing is used. Attachment
// paths must point at PNG files.
func (s *Sender) Send(report string, weekly bool, attachments []string) error {
	now := time.Now()

	subject := expand(s.cfg.SubjectMonthly, now)
	preamble := expand(s.cfg.PreambleMonthly, now)
	if weekly {
		subject = expand(s.cfg.SubjectWeekly, now)
		preamble = expand(s.cfg.PreambleWeekly, now)
	}
	preamble += expand(s.cfg.Preamble, now)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	body := preamble + report + fmt.Sprintf("\n\n---\nSent from %s.\n", hostname)

	msg, err := buildMessage(s.cfg.From, s.cfg.To, subject, body, attachments)
	if err != nil {
		return err
	}

	s.logger.WithFields(log.Fields{"to": s.cfg.To, "subject": subject}).Info("sending report email")
	if err := s.send(s.cfg.Server, nil, s.cfg.From, []string{s.cfg.To}, msg); err != nil {
		return fmt.Errorf("sending report email: %w", err)
	}
	return nil
}

// buildMessage assembles a multipart MIME message: one text part for
// the report, one image part per attachment.
func buildMessage(from, to, subject, body string, attachments []string) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mw.Boundary())

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating text part: %w", err)
	}
	if _, err := text.Write([]byte(body)); err != nil {
		return nil, fmt.Errorf("writing report body: %w", err)
	}

	for _, path := range attachments {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading attachment: %w", err)
		}
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"image/png"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", filepath.Base(path))},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, fmt.Errorf("creating attachment part: %w", err)
		}
		if _, err := part.Write([]byte(encodeBase64(data))); err != nil {
			return nil, fmt.Errorf("writing attachment: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing message: %w", err)
	}
	return buf.Bytes(), nil
}

// encodeBase64 encodes attachment bytes wrapped at 76 columns, per
// RFC 2045.
func encodeBase64(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var b strings.Builder
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	return b.String()
}

// expand substitutes the date tokens the subject and preamble strings
// may carry.
func expand(s string, now time.Time) string {
	return strings.NewReplacer(
		"{month_name}", now.Format("January"),
		"{month}", now.Format("01"),
		"{day}", now.Format("02"),
		"{year}", now.Format("2006"),
		"{date}", now.Format("01/02/2006"),
	).Replace(s)
}

// Package mailer sends transactional email through SMTP, Resend, or a log
// sink for local development.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Provider names accepted in Config.Provider.
const (
	ProviderSMTP   = "smtp"
	ProviderResend = "resend"
	ProviderLog    = "log"
)

// Email is a single outgoing message.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Config selects and configures the delivery provider.
type Config struct {
	Provider string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	ResendAPIKey string

	From     string
	FromName string

	Timeout time.Duration
}

// transport delivers a fully addressed message.
type transport interface {
	send(ctx context.Context, from string, msg Email) error
}

// Mailer sends Email values with the configured provider.
type Mailer struct {
	t        transport
	from     string
	provider string
	timeout  time.Duration
	log      *zap.Logger
}

// New builds a Mailer for cfg.Provider. An empty provider means "log".
func New(cfg Config, logger *zap.Logger) (*Mailer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderLog
	}

	var t transport
	switch provider {
	case ProviderSMTP:
		if cfg.SMTPHost == "" {
			return nil, errors.New("mailer: smtp host is required")
		}
		t = smtpTransport{host: cfg.SMTPHost, port: cfg.SMTPPort, user: cfg.SMTPUser, pass: cfg.SMTPPass}
	case ProviderResend:
		if cfg.ResendAPIKey == "" {
			return nil, errors.New("mailer: resend api key is required")
		}
		t = resendTransport{client: resend.NewClient(cfg.ResendAPIKey)}
	case ProviderLog:
		t = logTransport{log: logger}
	default:
		return nil, fmt.Errorf("mailer: unknown provider %q", cfg.Provider)
	}

	if cfg.From == "" {
		return nil, errors.New("mailer: from address is required")
	}
	if strings.ContainsAny(cfg.From+cfg.FromName, "\r\n") {
		return nil, errors.New("mailer: from address must be a single line")
	}
	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Mailer{t: t, from: from, provider: provider, timeout: timeout, log: logger}, nil
}

// Provider returns the active provider name.
func (m *Mailer) Provider() string { return m.provider }

// Send delivers msg. The call is bounded by the configured timeout.
func (m *Mailer) Send(ctx context.Context, msg Email) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("mailer: recipient is required")
	}
	if strings.ContainsAny(msg.To, "\r\n") {
		return errors.New("mailer: recipient must be a single address")
	}
	msg.Subject = headerValue(msg.Subject)
	if msg.Subject == "" {
		return errors.New("mailer: subject is required")
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.t.send(ctx, m.from, msg); err != nil {
		m.log.Error("email send failed",
			zap.String("provider", m.provider),
			zap.String("to", msg.To),
			zap.Error(err))
		return fmt.Errorf("send email via %s: %w", m.provider, err)
	}
	m.log.Info("email sent", zap.String("provider", m.provider), zap.String("to", msg.To))
	return nil
}

type resendTransport struct {
	client *resend.Client
}

func (t resendTransport) send(ctx context.Context, from string, msg Email) error {
	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
		Text:    msg.TextBody,
	}
	_, err := t.client.Emails.SendWithContext(ctx, params)
	return err
}

type smtpTransport struct {
	host string
	port int
	user string
	pass string
}

func (t smtpTransport) send(ctx context.Context, from string, msg Email) error {
	addr := net.JoinHostPort(t.host, strconv.Itoa(t.port))
	var auth smtp.Auth
	if t.user != "" {
		auth = smtp.PlainAuth("", t.user, t.pass, t.host)
	}

	envelopeFrom := from
	if i := strings.LastIndex(from, "<"); i >= 0 {
		envelopeFrom = strings.TrimSuffix(from[i+1:], ">")
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, envelopeFrom, []string{msg.To}, buildMIME(from, msg))
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// buildMIME renders a multipart/alternative message with text and HTML parts.
func buildMIME(from string, msg Email) []byte {
	const boundary = "eventdesk-alt-boundary"
	var b strings.Builder
	b.WriteString("From: " + headerValue(from) + "\r\n")
	b.WriteString("To: " + headerValue(msg.To) + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", headerValue(msg.Subject)) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	if msg.HTMLBody == "" {
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		b.WriteString(msg.TextBody)
		return []byte(b.String())
	}
	b.WriteString("Content-Type: multipart/alternative; boundary=" + boundary + "\r\n\r\n")
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.TextBody + "\r\n")
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.HTMLBody + "\r\n")
	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String())
}

// headerValue folds a value onto one line. Each run of CR and LF becomes a
// single space so stored data cannot start a new header.
func headerValue(v string) string {
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool { return r == '\r' || r == '\n' }), " ")
}

type logTransport struct {
	log *zap.Logger
}

func (t logTransport) send(_ context.Context, from string, msg Email) error {
	t.log.Info("email (log provider)",
		zap.String("from", from),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.TextBody))
	return nil
}

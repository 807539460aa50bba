package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/explorepe/explorepe-api/pkg/metrics"
	"go.uber.org/zap"
)

// Message is a single HTML email
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	// Template names the message kind for metrics, e.g. "verification"
	Template string
}

// Sender delivers messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds SMTP relay settings
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// New returns an SMTP sender, or a log-only sender when no host is configured
func New(cfg Config) Sender {
	if cfg.Host == "" {
		logger.Warn("SMTP_HOST not set: emails will be logged instead of sent")
		return &LogSender{}
	}
	return NewSMTPSender(cfg)
}

// SMTPSender sends mail through an SMTP relay.
// Port 465 uses implicit TLS, any other port upgrades with STARTTLS.
type SMTPSender struct {
	cfg Config
}

// NewSMTPSender creates a sender for the given relay
func NewSMTPSender(cfg Config) *SMTPSender {
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPSender{cfg: cfg}
}

// Send delivers msg, giving up when ctx is done
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	start := time.Now()

	err := s.send(ctx, msg)
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := metrics.MeasureDuration(start)
	metrics.ExternalRequestDuration.WithLabelValues("smtp", status).Observe(duration)
	metrics.EmailsSent.WithLabelValues(msg.Template, status).Inc()
	logger.LogAPICall(ctx, "smtp", "send_"+msg.Template, status, duration, zap.Error(err))

	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", msg.Template, err)
	}
	return nil
}

func (s *SMTPSender) send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	tlsConfig := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}

	dialer := &net.Dialer{}
	var conn net.Conn
	var err error
	if s.cfg.Port == "465" {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline) //nolint:errcheck
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if s.cfg.Port != "465" {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if s.cfg.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(buildMIME(s.cfg, msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return client.Quit()
}

// buildMIME renders headers and body. Non-ASCII headers are Q-encoded.
func buildMIME(cfg Config, msg Message) []byte {
	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", cfg.FromName), cfg.From)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(msg.HTMLBody, "\n", "\r\n"))
	return buf.Bytes()
}

// LogSender logs messages instead of sending them. Used in development.
type LogSender struct{}

// Send logs the recipient and subject
func (LogSender) Send(_ context.Context, msg Message) error {
	metrics.EmailsSent.WithLabelValues(msg.Template, "logged").Inc()
	logger.Info("Email not sent (no SMTP configured)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("template", msg.Template))
	return nil
}

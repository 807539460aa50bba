package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationEmail(t *testing.T) {
	msg, err := VerificationEmail("https://explore.pe/", "ana@example.com", "Ana <b>", "abc123")
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "Verifica tu cuenta en Explore.pe", msg.Subject)
	assert.Equal(t, "verification", msg.Template)
	assert.Contains(t, msg.HTMLBody, "https://explore.pe/verify?token=abc123")
	assert.Contains(t, msg.HTMLBody, "Ana &lt;b&gt;")
	assert.NotContains(t, msg.HTMLBody, "<b>")
}

func TestPasswordResetEmail(t *testing.T) {
	msg, err := PasswordResetEmail("https://explore.pe", "ana@example.com", "Ana", "tok")
	require.NoError(t, err)

	assert.Equal(t, "Restablecer contraseña - Explore.pe", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "https://explore.pe/reset-password?token=tok")
	assert.Contains(t, msg.HTMLBody, "1 hora")
}

func TestBuildMIME_EncodesHeaders(t *testing.T) {
	raw := string(buildMIME(
		Config{From: "no-reply@explore.pe", FromName: "Explore.pe - No Reply"},
		Message{To: "ana@example.com", Subject: "Restablecer contraseña - Explore.pe", HTMLBody: "<p>hola</p>\n<p>chau</p>"},
	))

	assert.Contains(t, raw, "To: ana@example.com\r\n")
	assert.Contains(t, raw, "Subject: =?utf-8?q?")
	assert.Contains(t, raw, "<no-reply@explore.pe>")
	assert.Contains(t, raw, "Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
	assert.True(t, strings.HasSuffix(raw, "<p>hola</p>\r\n<p>chau</p>"))
}

func TestNew_WithoutHostLogsOnly(t *testing.T) {
	sender := New(Config{})
	_, ok := sender.(*LogSender)
	require.True(t, ok)
	assert.NoError(t, sender.Send(context.Background(), Message{To: "a@b.c", Template: "verification"}))
}

func TestNewSMTPSender_Defaults(t *testing.T) {
	s := NewSMTPSender(Config{Host: "smtp.example.com", Username: "bot@explore.pe"})
	assert.Equal(t, "587", s.cfg.Port)
	assert.Equal(t, "bot@explore.pe", s.cfg.From)
}

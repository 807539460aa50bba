package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

const footer = `<hr style="margin: 30px 0; border: none; border-top: 1px solid #eee;">
<p style="color: #666; font-size: 14px; text-align: center;">Explore.pe - Conectando turistas con guías locales en Perú</p>`

var verificationTemplate = template.Must(template.New("verification").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h1 style="color: #333; text-align: center;">¡Bienvenido a Explore.pe!</h1>
<p>Hola {{.Name}},</p>
<p>Gracias por registrarte en Explore.pe. Para completar tu registro y activar tu perfil, verifica tu correo electrónico con el siguiente enlace:</p>
<div style="text-align: center; margin: 30px 0;">
<a href="{{.Link}}" style="background-color: #10b981; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Verificar mi cuenta</a>
</div>
<p>O copia y pega este enlace en tu navegador:</p>
<p style="word-break: break-all; color: #666;">{{.Link}}</p>
<p>Si no creaste una cuenta en Explore.pe, puedes ignorar este mensaje.</p>
` + footer + `
</div>`))

var passwordResetTemplate = template.Must(template.New("password_reset").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h1 style="color: #333; text-align: center;">Restablecer Contraseña</h1>
<p>Hola {{.Name}},</p>
<p>Recibimos una solicitud para restablecer la contraseña de tu cuenta en Explore.pe.</p>
<div style="text-align: center; margin: 30px 0;">
<a href="{{.Link}}" style="background-color: #3b82f6; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Restablecer mi contraseña</a>
</div>
<p>O copia y pega este enlace en tu navegador:</p>
<p style="word-break: break-all; color: #666;">{{.Link}}</p>
<p>Este enlace expirará en 1 hora por seguridad.</p>
<p>Si no solicitaste restablecer tu contraseña, puedes ignorar este mensaje.</p>
` + footer + `
</div>`))

type linkData struct {
	Name string
	Link string
}

// VerificationEmail builds the account verification message
func VerificationEmail(baseURL, to, name, token string) (Message, error) {
	body, err := render(verificationTemplate, linkData{Name: name, Link: tokenLink(baseURL, "/verify", token)})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       to,
		Subject:  "Verifica tu cuenta en Explore.pe",
		HTMLBody: body,
		Template: "verification",
	}, nil
}

// PasswordResetEmail builds the password reset message
func PasswordResetEmail(baseURL, to, name, token string) (Message, error) {
	body, err := render(passwordResetTemplate, linkData{Name: name, Link: tokenLink(baseURL, "/reset-password", token)})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       to,
		Subject:  "Restablecer contraseña - Explore.pe",
		HTMLBody: body,
		Template: "password_reset",
	}, nil
}

func tokenLink(baseURL, path, token string) string {
	return strings.TrimRight(baseURL, "/") + path + "?token=" + url.QueryEscape(token)
}

func render(tmpl *template.Template, data linkData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

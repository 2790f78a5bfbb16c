package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"github.com/edunexia/portal-api/pkg/mailer"
)

const welcomeSubject = "Bem-vindo(a) à EdunexIA - Seus dados de acesso ao Portal do Aluno"

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Olá, {{.Name}}!</h2>
  <p>Sua matrícula no curso <strong>{{.CourseName}}</strong> foi confirmada.</p>
  <p>Use os dados abaixo para acessar o Portal do Aluno:</p>
  <table cellpadding="6" style="border: 1px solid #ddd;">
    <tr><td><strong>Login:</strong></td><td>{{.Login}}</td></tr>
    <tr><td><strong>Senha inicial:</strong></td><td>{{.Password}}</td></tr>
  </table>
  <p><a href="{{.LoginURL}}">Acessar o Portal do Aluno</a></p>
  <p>Recomendamos alterar sua senha no primeiro acesso.</p>
  <p>Equipe EdunexIA</p>
</body>
</html>`))

// WelcomeData feeds the credentials email template.
type WelcomeData struct {
	Name       string
	Login      string
	Password   string
	CourseName string
	LoginURL   string
}

// NotifierService performs best-effort delivery of the welcome +
// credentials email. It never propagates transport errors; the caller gets
// a boolean and conversion proceeds either way.
type NotifierService struct {
	mailer   mailer.Mailer
	loginURL string
	logger   *zap.Logger
}

// NewNotifierService constructs NotifierService.
func NewNotifierService(m mailer.Mailer, loginURL string, logger *zap.Logger) *NotifierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotifierService{mailer: m, loginURL: loginURL, logger: logger}
}

// SendCredentials renders and dispatches the welcome email. Returns false
// when rendering or transport fails.
func (s *NotifierService) SendCredentials(ctx context.Context, data WelcomeData) bool {
	data.LoginURL = s.loginURL

	var body bytes.Buffer
	if err := welcomeTemplate.Execute(&body, data); err != nil {
		s.logger.Error("failed to render credentials email", zap.Error(err))
		return false
	}

	msg := &mailer.Message{
		ToName:      data.Name,
		ToEmail:     data.Login,
		Subject:     welcomeSubject,
		HTMLContent: body.String(),
		TextContent: fmt.Sprintf("Login: %s / Senha inicial: %s / %s", data.Login, data.Password, data.LoginURL),
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Warn("failed to send credentials email",
			zap.String("to", data.Login),
			zap.Error(err),
		)
		return false
	}
	return true
}

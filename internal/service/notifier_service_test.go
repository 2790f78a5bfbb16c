package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edunexia/portal-api/pkg/mailer"
)

type captureMailer struct {
	sent []*mailer.Message
	err  error
}

func (m *captureMailer) Send(ctx context.Context, msg *mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestSendCredentialsDeliversWelcomeEmail(t *testing.T) {
	transport := &captureMailer{}
	svc := NewNotifierService(transport, "https://portal.example.com/login", zap.NewNop())

	ok := svc.SendCredentials(context.Background(), WelcomeData{
		Name:       "Maria Souza",
		Login:      "maria@example.com",
		Password:   "12345678900",
		CourseName: "MBA em Gestão",
	})
	require.True(t, ok)
	require.Len(t, transport.sent, 1)

	msg := transport.sent[0]
	assert.Equal(t, "maria@example.com", msg.ToEmail)
	assert.Equal(t, welcomeSubject, msg.Subject)
	assert.Contains(t, msg.HTMLContent, "Maria Souza")
	assert.Contains(t, msg.HTMLContent, "MBA em Gestão")
	assert.Contains(t, msg.HTMLContent, "12345678900")
	assert.Contains(t, msg.HTMLContent, "https://portal.example.com/login")
}

func TestSendCredentialsSwallowsTransportFailure(t *testing.T) {
	svc := NewNotifierService(&captureMailer{err: errors.New("sendgrid unavailable")}, "", zap.NewNop())

	ok := svc.SendCredentials(context.Background(), WelcomeData{
		Name:  "Maria Souza",
		Login: "maria@example.com",
	})
	assert.False(t, ok)
}

package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edunexia/portal-api/internal/models"
	appErrors "github.com/edunexia/portal-api/pkg/errors"
)

type webhookSimplifiedRepository interface {
	FindByExternalID(ctx context.Context, externalID string) (*models.SimplifiedEnrollment, error)
	UpdateStatus(ctx context.Context, id int64, status models.SimplifiedEnrollmentStatus) error
}

type statusLogWriter interface {
	Create(ctx context.Context, log *models.StatusLog) error
}

// WebhookResult reports how an incoming payment event was handled.
type WebhookResult struct {
	Ignored    bool                              `json:"ignored"`
	FromStatus models.SimplifiedEnrollmentStatus `json:"from_status,omitempty"`
	ToStatus   models.SimplifiedEnrollmentStatus `json:"to_status,omitempty"`
}

// WebhookService translates Asaas payment events into simplified-enrollment
// status transitions. Unknown references and irrelevant events are
// acknowledged and ignored so the provider does not retry them forever.
type WebhookService struct {
	simplified webhookSimplifiedRepository
	logs       statusLogWriter
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewWebhookService constructs WebhookService.
func NewWebhookService(simplified webhookSimplifiedRepository, logs statusLogWriter, validate *validator.Validate, logger *zap.Logger) *WebhookService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{simplified: simplified, logs: logs, validator: validate, logger: logger}
}

// HandleAsaasEvent applies one payment event.
func (s *WebhookService) HandleAsaasEvent(ctx context.Context, event models.AsaasWebhookEvent) (*WebhookResult, error) {
	if err := s.validator.Struct(event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid webhook payload")
	}

	target, relevant := statusForEvent(event.Event)
	if !relevant {
		s.logger.Debug("ignoring webhook event", zap.String("event", event.Event))
		return &WebhookResult{Ignored: true}, nil
	}

	if event.Payment.ExternalReference == "" {
		return &WebhookResult{Ignored: true}, nil
	}

	se, err := s.simplified.FindByExternalID(ctx, event.Payment.ExternalReference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("webhook references unknown enrollment",
				zap.String("external_reference", event.Payment.ExternalReference),
				zap.String("event", event.Event),
			)
			return &WebhookResult{Ignored: true}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	// Converted records are terminal; a late or duplicate event must not
	// regress them.
	if se.Converted() || se.Status == target {
		return &WebhookResult{Ignored: true}, nil
	}

	if err := s.simplified.UpdateStatus(ctx, se.ID, target); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment status")
	}

	if err := s.logs.Create(ctx, &models.StatusLog{
		SimplifiedEnrollmentID: se.ID,
		FromStatus:             se.Status,
		ToStatus:               target,
		Reason:                 "Evento de pagamento Asaas: " + event.Event,
	}); err != nil {
		s.logger.Warn("failed to record webhook status log", zap.Int64("id", se.ID), zap.Error(err))
	}

	s.logger.Info("webhook advanced enrollment status",
		zap.Int64("id", se.ID),
		zap.String("event", event.Event),
		zap.String("from", string(se.Status)),
		zap.String("to", string(target)),
	)
	return &WebhookResult{FromStatus: se.Status, ToStatus: target}, nil
}

func statusForEvent(event string) (models.SimplifiedEnrollmentStatus, bool) {
	switch event {
	case models.AsaasPaymentCreated:
		return models.SimplifiedStatusPaymentPending, true
	case models.AsaasPaymentConfirmed, models.AsaasPaymentReceived:
		return models.SimplifiedStatusPaymentConfirmed, true
	case models.AsaasPaymentRefunded:
		return models.SimplifiedStatusCancelled, true
	default:
		return "", false
	}
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/edunexia/portal-api/internal/models"
	appErrors "github.com/edunexia/portal-api/pkg/errors"
)

type reconcilerSource interface {
	ListPendingConversion(ctx context.Context, limit int) ([]models.SimplifiedEnrollment, error)
	ListIncomplete(ctx context.Context, limit int) ([]models.SimplifiedEnrollment, error)
}

type enrollmentConverter interface {
	Sync(ctx context.Context, id int64) error
}

// ReconcileResult is the tally returned by every batch run. Partial failure
// is visible through the failed count, never through an error.
type ReconcileResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// ReconcilerService scans for simplified enrollments stuck before
// conversion and drives the converter for each. Runs are strictly
// sequential: every conversion is a write-heavy multi-step operation, and
// parallelising would reopen the races the converter's locking closes.
type ReconcilerService struct {
	source    reconcilerSource
	converter enrollmentConverter
	batchSize int
	logger    *zap.Logger
}

// NewReconcilerService constructs ReconcilerService.
func NewReconcilerService(source reconcilerSource, converter enrollmentConverter, batchSize int, logger *zap.Logger) *ReconcilerService {
	if batchSize <= 0 {
		batchSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcilerService{source: source, converter: converter, batchSize: batchSize, logger: logger}
}

// ProcessPending converts every record sitting in payment_confirmed.
func (s *ReconcilerService) ProcessPending(ctx context.Context) (*ReconcileResult, error) {
	records, err := s.source.ListPendingConversion(ctx, s.batchSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending enrollments")
	}
	return s.convertAll(ctx, records, "pending"), nil
}

// RecoverIncomplete re-drives records that should have converted but are
// missing their formal-enrollment link.
func (s *ReconcilerService) RecoverIncomplete(ctx context.Context) (*ReconcileResult, error) {
	records, err := s.source.ListIncomplete(ctx, s.batchSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list incomplete enrollments")
	}
	return s.convertAll(ctx, records, "recovery"), nil
}

func (s *ReconcilerService) convertAll(ctx context.Context, records []models.SimplifiedEnrollment, mode string) *ReconcileResult {
	result := &ReconcileResult{}
	for _, record := range records {
		if err := s.converter.Sync(ctx, record.ID); err != nil {
			result.Failed++
			s.logger.Warn("conversion failed",
				zap.String("mode", mode),
				zap.Int64("id", record.ID),
				zap.Error(err),
			)
			continue
		}
		result.Processed++
	}

	s.logger.Info("reconciliation run finished",
		zap.String("mode", mode),
		zap.Int("processed", result.Processed),
		zap.Int("failed", result.Failed),
	)
	return result
}

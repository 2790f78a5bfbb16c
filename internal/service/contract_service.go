package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edunexia/portal-api/internal/models"
	appErrors "github.com/edunexia/portal-api/pkg/errors"
)

type contractRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Contract, error)
	FindDetailByID(ctx context.Context, id int64) (*models.ContractDetail, error)
	List(ctx context.Context, filter models.ContractFilter) ([]models.Contract, int, error)
}

// ContractConfig holds the business defaults applied when no explicit
// overrides accompany a conversion.
type ContractConfig struct {
	DefaultInstallments int
	DurationMonths      int
	Campus              string
}

// ContractOverrides allows an admin-triggered conversion to pin contract
// terms instead of deriving them from the course and enrollment.
type ContractOverrides struct {
	Type            *models.ContractType
	TotalValue      *float64
	Installments    *int
	DiscountPercent *float64
	PaymentMethod   string
	Campus          string
}

// ContractService derives educational-contract terms at conversion time and
// serves the contract read surface.
type ContractService struct {
	repo   contractRepository
	cfg    ContractConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewContractService constructs ContractService.
func NewContractService(repo contractRepository, cfg ContractConfig, logger *zap.Logger) *ContractService {
	if cfg.DefaultInstallments <= 0 {
		cfg.DefaultInstallments = 18
	}
	if cfg.DurationMonths <= 0 {
		cfg.DurationMonths = 18
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractService{repo: repo, cfg: cfg, logger: logger, now: time.Now}
}

// Build derives the full set of contract terms for a conversion. The result
// is persisted by the conversion transaction, never here.
func (s *ContractService) Build(studentID int64, course *models.Course, se *models.SimplifiedEnrollment, ov *ContractOverrides) *models.Contract {
	if ov == nil {
		ov = &ContractOverrides{}
	}
	now := s.now().UTC()

	contractType := InferContractType(course.Name)
	if ov.Type != nil {
		contractType = *ov.Type
	}

	totalValue := 0.0
	if se.FullPrice != nil {
		totalValue = *se.FullPrice
	}
	if ov.TotalValue != nil {
		totalValue = *ov.TotalValue
	}

	installments := s.cfg.DefaultInstallments
	if ov.Installments != nil && *ov.Installments > 0 {
		installments = *ov.Installments
	}

	discount := 0.0
	if se.FullPrice != nil && se.DiscountedPrice != nil && *se.FullPrice > 0 {
		discount = roundCents((*se.FullPrice - *se.DiscountedPrice) / *se.FullPrice * 100)
	}
	if ov.DiscountPercent != nil {
		discount = *ov.DiscountPercent
	}

	paymentMethod := ov.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "BOLETO"
	}

	campus := ov.Campus
	if campus == "" {
		campus = s.cfg.Campus
	}

	// Validity is a fixed business default independent of the installment
	// count; the two are allowed to disagree.
	return &models.Contract{
		StudentID:        studentID,
		CourseID:         course.ID,
		Number:           ContractNumber(course.Code, studentID, now),
		Type:             contractType,
		Status:           models.ContractStatusPending,
		TotalValue:       totalValue,
		Installments:     installments,
		InstallmentValue: roundCents(totalValue / float64(installments)),
		DiscountPercent:  discount,
		PaymentMethod:    paymentMethod,
		StartDate:        now,
		EndDate:          now.AddDate(0, s.cfg.DurationMonths, 0),
		Campus:           campus,
	}
}

// Get returns a contract with student and course context.
func (s *ContractService) Get(ctx context.Context, id int64) (*models.ContractDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "contract not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contract")
	}
	return detail, nil
}

// List returns contracts with pagination metadata.
func (s *ContractService) List(ctx context.Context, filter models.ContractFilter) ([]models.Contract, *models.Pagination, error) {
	contracts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list contracts")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return contracts, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ContractNumber derives the generated contract number:
// {courseCode|"C"}-{studentID}-{last six digits of epoch millis}. Clock
// collisions at the same truncation are tolerated because one student
// enrolls in one course at most once.
func ContractNumber(courseCode string, studentID int64, at time.Time) string {
	code := strings.TrimSpace(courseCode)
	if code == "" {
		code = "C"
	}
	return fmt.Sprintf("%s-%d-%06d", code, studentID, at.UnixMilli()%1_000_000)
}

// InferContractType guesses the contract category from the course name.
// Precedence follows the catalogue conventions; GRADUACAO is the fallback.
func InferContractType(courseName string) models.ContractType {
	name := strings.ToLower(courseName)
	switch {
	case strings.Contains(name, "graduação") && strings.Contains(name, "segunda"):
		return models.ContractSegundaGraduacao
	case strings.Contains(name, "graduação") && strings.Contains(name, "pós"):
		return models.ContractPosGraduacao
	case strings.Contains(name, "mba"):
		return models.ContractMBA
	case strings.Contains(name, "técnico"):
		return models.ContractTecnico
	case strings.Contains(name, "livre") || strings.Contains(name, "extensão"):
		return models.ContractCursoLivre
	default:
		return models.ContractGraduacao
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/edunexia/portal-api/internal/models"
	appErrors "github.com/edunexia/portal-api/pkg/errors"
)

type provisionerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// ProvisionResult carries the resolved account. PlainPassword is set only
// when the account was created in this call; it is needed downstream for the
// credentials email and must never be persisted.
type ProvisionResult struct {
	User          *models.User
	Created       bool
	PlainPassword string
}

// ProvisionerService resolves (finds or creates) exactly one student account
// per distinct email for a simplified enrollment.
type ProvisionerService struct {
	users  provisionerUserRepository
	logger *zap.Logger
}

// NewProvisionerService constructs ProvisionerService.
func NewProvisionerService(users provisionerUserRepository, logger *zap.Logger) *ProvisionerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProvisionerService{users: users, logger: logger}
}

// Provision returns the account bound to the enrollment's email, creating it
// on first use. The initial password is the digits of the student's national
// document, or a random token when no document was captured.
func (s *ProvisionerService) Provision(ctx context.Context, se *models.SimplifiedEnrollment) (*ProvisionResult, error) {
	email := strings.ToLower(strings.TrimSpace(se.StudentEmail))
	if email == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "simplified enrollment has no student email")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return &ProvisionResult{User: existing, Created: false}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up account")
	}

	seed := DigitsOnly(se.StudentDocument)
	if seed == "" {
		seed, err = randomToken(8)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate initial password")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash initial password")
	}

	user := &models.User{
		Username:     email,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     firstName(se.StudentName),
		Document:     se.StudentDocument,
		Phone:        se.StudentPhone,
		Role:         models.RoleStudent,
		PortalType:   models.PortalStudent,
		Active:       true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent conversion for the same email may have won the
		// unique-constraint race; resolve to the surviving row.
		if winner, findErr := s.users.FindByEmail(ctx, email); findErr == nil {
			s.logger.Info("account already provisioned concurrently", zap.String("email", email))
			return &ProvisionResult{User: winner, Created: false}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}

	return &ProvisionResult{User: user, Created: true, PlainPassword: seed}, nil
}

// DigitsOnly strips every non-digit character. Applied to national documents
// before they are used as password seeds.
func DigitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func firstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return fullName
	}
	return fields[0]
}

func randomToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf)[:length], nil
}

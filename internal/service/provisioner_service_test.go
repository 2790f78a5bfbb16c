package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/edunexia/portal-api/internal/models"
	appErrors "github.com/edunexia/portal-api/pkg/errors"
)

type mockProvisionerRepo struct {
	usersByEmail map[string]*models.User
	createErr    error
	created      []*models.User
}

func (m *mockProvisionerRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProvisionerRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = int64(len(m.created) + 1)
	m.created = append(m.created, user)
	if m.usersByEmail == nil {
		m.usersByEmail = make(map[string]*models.User)
	}
	m.usersByEmail[user.Email] = user
	return nil
}

func TestProvisionReturnsExistingAccount(t *testing.T) {
	existing := &models.User{ID: 5, Email: "maria@example.com", Role: models.RoleStudent}
	repo := &mockProvisionerRepo{usersByEmail: map[string]*models.User{"maria@example.com": existing}}
	svc := NewProvisionerService(repo, zap.NewNop())

	result, err := svc.Provision(context.Background(), &models.SimplifiedEnrollment{
		StudentName:  "Maria Souza",
		StudentEmail: "  Maria@Example.com ",
	})
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, int64(5), result.User.ID)
	assert.Empty(t, result.PlainPassword)
	assert.Empty(t, repo.created)
}

func TestProvisionCreatesAccountWithDocumentSeed(t *testing.T) {
	repo := &mockProvisionerRepo{}
	svc := NewProvisionerService(repo, zap.NewNop())

	result, err := svc.Provision(context.Background(), &models.SimplifiedEnrollment{
		StudentName:     "Maria Souza Lima",
		StudentEmail:    "maria@example.com",
		StudentDocument: "123.456.789-00",
		StudentPhone:    "11999990000",
	})
	require.NoError(t, err)
	require.True(t, result.Created)
	assert.Equal(t, "12345678900", result.PlainPassword)
	assert.Equal(t, "maria@example.com", result.User.Username)
	assert.Equal(t, models.RoleStudent, result.User.Role)
	assert.Equal(t, models.PortalStudent, result.User.PortalType)
	assert.True(t, result.User.Active)

	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte("12345678900")))
}

func TestProvisionGeneratesRandomPasswordWithoutDocument(t *testing.T) {
	repo := &mockProvisionerRepo{}
	svc := NewProvisionerService(repo, zap.NewNop())

	result, err := svc.Provision(context.Background(), &models.SimplifiedEnrollment{
		StudentName:  "João Pereira",
		StudentEmail: "joao@example.com",
	})
	require.NoError(t, err)
	require.True(t, result.Created)
	assert.Len(t, result.PlainPassword, 8)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte(result.PlainPassword)))
}

func TestProvisionRequiresEmail(t *testing.T) {
	svc := NewProvisionerService(&mockProvisionerRepo{}, zap.NewNop())

	_, err := svc.Provision(context.Background(), &models.SimplifiedEnrollment{StudentName: "Sem Email"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProvisionResolvesCreateRace(t *testing.T) {
	winner := &models.User{ID: 9, Email: "maria@example.com"}
	repo := &raceProvisionerRepo{winner: winner}
	svc := NewProvisionerService(repo, zap.NewNop())

	result, err := svc.Provision(context.Background(), &models.SimplifiedEnrollment{
		StudentName:     "Maria Souza",
		StudentEmail:    "maria@example.com",
		StudentDocument: "12345678900",
	})
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, int64(9), result.User.ID)
}

// raceProvisionerRepo simulates a concurrent writer: the first lookup misses,
// Create hits the unique constraint, the second lookup finds the winner.
type raceProvisionerRepo struct {
	winner  *models.User
	lookups int
}

func (m *raceProvisionerRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.lookups++
	if m.lookups == 1 {
		return nil, sql.ErrNoRows
	}
	return m.winner, nil
}

func (m *raceProvisionerRepo) Create(ctx context.Context, user *models.User) error {
	return errors.New("duplicate key value violates unique constraint")
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "12345678900", DigitsOnly("123.456.789-00"))
	assert.Equal(t, "", DigitsOnly("sem documento"))
	assert.Equal(t, "2024", DigitsOnly("ano 2024"))
}

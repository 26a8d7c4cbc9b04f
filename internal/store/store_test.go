package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/diewo77/jurigo/internal/config"
	"github.com/diewo77/jurigo/internal/db"
	"github.com/diewo77/jurigo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	d, err := db.Open(config.DatabaseConfig{Driver: "sqlite", Path: "file:" + name + "?mode=memory&cache=shared"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(d))
	return d
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	d, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return d, mock
}

func sampleCompany(email string) *models.Company {
	return &models.Company{
		Name:           "Acme",
		LegalStructure: models.StructureSASU,
		ActivityDomain: models.DomainITWeb,
		ContactEmail:   email,
		Status:         models.StatusDraft,
		CurrentStep:    models.FirstStep,
	}
}

func TestCompaniesCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewCompanies(newTestDB(t))

	c := sampleCompany("Founder@Example.com")
	c.Associates = []models.Associate{{FirstName: "Ada", LastName: "L", Email: "ada@example.com", SharePercentage: 50}}
	require.NoError(t, s.Create(ctx, c))
	require.NotEmpty(t, c.ID)

	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	require.Len(t, got.Associates, 1)
	assert.Equal(t, "ada@example.com", got.Associates[0].Email)

	got.Status = models.StatusPendingPayment
	require.NoError(t, s.Save(ctx, got))
	again, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, again.Status)

	_, err = s.Get(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCompaniesQueries(t *testing.T) {
	ctx := context.Background()
	s := NewCompanies(newTestDB(t))
	uid := uint(7)

	a := sampleCompany("same@example.com")
	b := sampleCompany("SAME@example.com")
	b.UserID = &uid
	b.Status = models.StatusCompleted
	c := sampleCompany("other@example.com")
	for _, x := range []*models.Company{a, b, c} {
		require.NoError(t, s.Create(ctx, x))
	}

	byEmail, err := s.ListByEmail(ctx, "same@EXAMPLE.com")
	require.NoError(t, err)
	assert.Len(t, byEmail, 2)

	byUser, err := s.ListByUser(ctx, uid)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, b.ID, byUser[0].ID)

	all, err := s.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	completed, err := s.List(ctx, ListFilter{Status: models.StatusCompleted})
	require.NoError(t, err)
	assert.Len(t, completed, 1)

	counts, err := s.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.StatusDraft])
	assert.Equal(t, int64(1), counts[models.StatusCompleted])
	assert.Zero(t, counts[models.StatusUnderReview])

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestDocumentsAndNotes(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	companies, docs, notes := NewCompanies(d), NewDocuments(d), NewNotes(d)

	c := sampleCompany("x@example.com")
	require.NoError(t, companies.Create(ctx, c))

	first := &models.Document{CompanyID: c.ID, Type: "id_president", Name: "id.pdf", Key: "k1", URL: "u1",
		Status: models.DocumentPending, UploadedAt: time.Now().Add(-time.Minute)}
	second := &models.Document{CompanyID: c.ID, Type: "proof_address_company", Name: "bail.pdf", Key: "k2", URL: "u2",
		Status: models.DocumentPending}
	require.NoError(t, docs.Create(ctx, first))
	require.NoError(t, docs.Create(ctx, second))

	list, err := docs.ListByCompany(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)

	first.Status = models.DocumentApproved
	require.NoError(t, docs.Save(ctx, first))
	pending, err := docs.CountByStatus(ctx, models.DocumentPending)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	require.NoError(t, docs.Delete(ctx, second.ID))
	_, err = docs.Get(ctx, second.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, docs.Delete(ctx, second.ID), models.ErrNotFound)

	require.NoError(t, notes.Create(ctx, &models.AdminNote{CompanyID: c.ID, AdminID: 1, Content: "KBIS requested"}))
	got, err := notes.ListByCompany(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "KBIS requested", got[0].Content)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := NewUsers(newTestDB(t))

	u := &models.User{Email: " Client@Example.com", Password: "hash"}
	require.NoError(t, s.Create(ctx, u))
	assert.Equal(t, "client@example.com", u.Email)
	assert.Equal(t, models.RoleClient, u.Role)

	byEmail, err := s.ByEmail(ctx, "CLIENT@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	taken, err := s.EmailTaken(ctx, "client@example.com")
	require.NoError(t, err)
	assert.True(t, taken)

	_, err = s.Get(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)

	dup := &models.User{Email: "client@example.com", Password: "x"}
	assert.ErrorIs(t, s.Create(ctx, dup), models.ErrDependency)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDatabaseFailuresAreDependencyErrors(t *testing.T) {
	ctx := context.Background()
	d, mock := newMockDB(t)
	down := errors.New("connection refused")

	mock.ExpectQuery(`SELECT (.+) FROM "companies"`).WillReturnError(down)
	_, err := NewCompanies(d).Get(ctx, "c1")
	assert.ErrorIs(t, err, models.ErrDependency)
	assert.ErrorIs(t, err, down)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).WillReturnError(down)
	_, err = NewUsers(d).Count(ctx)
	assert.ErrorIs(t, err, models.ErrDependency)

	mock.ExpectExec(`DELETE FROM "documents"`).WillReturnError(down)
	assert.ErrorIs(t, NewDocuments(d).Delete(ctx, "d1"), models.ErrDependency)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotFoundFromMock(t *testing.T) {
	d, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT (.+) FROM "documents"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err := NewDocuments(d).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NotErrorIs(t, err, models.ErrDependency)
	require.NoError(t, mock.ExpectationsWereMet())
}

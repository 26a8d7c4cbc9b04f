package lifecycle_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/diewo77/jurigo/internal/blob"
	"github.com/diewo77/jurigo/internal/config"
	"github.com/diewo77/jurigo/internal/db"
	"github.com/diewo77/jurigo/internal/events"
	"github.com/diewo77/jurigo/internal/lifecycle"
	"github.com/diewo77/jurigo/internal/logging"
	"github.com/diewo77/jurigo/internal/models"
	"github.com/diewo77/jurigo/internal/policy"
	"github.com/diewo77/jurigo/internal/store"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type identityKey struct{}

// ctxIdentity reads the caller from the context, standing in for the
// cookie session.
type ctxIdentity struct{}

func (ctxIdentity) Resolve(ctx context.Context) (lifecycle.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(lifecycle.Identity)
	return id, ok && id.UserID != 0
}

func as(id lifecycle.Identity) context.Context {
	return context.WithValue(context.Background(), identityKey{}, id)
}

var anonymous = context.Background()

type fakeBlobs struct {
	mu        sync.Mutex
	deleted   []string
	deleteErr error
}

func (f *fakeBlobs) UploadURL(_ context.Context, key, _ string) (blob.Reference, error) {
	return blob.Reference{URL: "https://blobs.test/upload/" + key, Key: key, ExpiresAt: time.Now().Add(time.Minute)}, nil
}

func (f *fakeBlobs) DownloadURL(_ context.Context, key string) (blob.Reference, error) {
	return blob.Reference{URL: "https://blobs.test/download/" + key, Key: key, ExpiresAt: time.Now().Add(time.Minute)}, nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return models.WrapError(models.ErrDependency, "blob.delete", f.deleteErr)
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBlobs) PublicURL(key string) string { return "https://blobs.test/" + key }

type countingObserver struct {
	mu          sync.Mutex
	created     int
	transitions []string
	uploaded    int
	verified    []string
	failures    int
}

func (o *countingObserver) CompanyCreated(string) { o.mu.Lock(); o.created++; o.mu.Unlock() }
func (o *countingObserver) CompanyTransitioned(from, to string) {
	o.mu.Lock()
	o.transitions = append(o.transitions, from+">"+to)
	o.mu.Unlock()
}
func (o *countingObserver) DocumentUploaded(string) { o.mu.Lock(); o.uploaded++; o.mu.Unlock() }
func (o *countingObserver) DocumentVerified(s string) {
	o.mu.Lock()
	o.verified = append(o.verified, s)
	o.mu.Unlock()
}
func (o *countingObserver) EventPublishFailed(string) { o.mu.Lock(); o.failures++; o.mu.Unlock() }

// tickingClock advances one second per reading so successive stamps differ.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type env struct {
	db       *gorm.DB
	ctl      *lifecycle.Controller
	blobs    *fakeBlobs
	events   *events.Recorder
	observer *countingObserver

	client models.User
	other  models.User
	admin  models.User
}

func (e *env) asClient() context.Context {
	return as(lifecycle.Identity{UserID: e.client.ID, Role: models.RoleClient})
}

func (e *env) asOther() context.Context {
	return as(lifecycle.Identity{UserID: e.other.ID, Role: models.RoleClient})
}

func (e *env) asAdmin() context.Context {
	return as(lifecycle.Identity{UserID: e.admin.ID, Role: models.RoleAdmin})
}

func newEnv(t *testing.T, opts lifecycle.Options) *env {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	d, err := db.Open(config.DatabaseConfig{Driver: "sqlite", Path: "file:" + name + "?mode=memory&cache=shared"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(d))

	e := &env{db: d, blobs: &fakeBlobs{}, events: &events.Recorder{}, observer: &countingObserver{}}
	users := store.NewUsers(d)
	for _, u := range []*models.User{
		{Email: "client@example.com", Password: "x", Role: models.RoleClient},
		{Email: "other@example.com", Password: "x", Role: models.RoleClient},
		{Email: "admin@example.com", Password: "x", Role: models.RoleAdmin},
	} {
		require.NoError(t, users.Create(context.Background(), u))
	}
	require.NoError(t, d.Where("email = ?", "client@example.com").First(&e.client).Error)
	require.NoError(t, d.Where("email = ?", "other@example.com").First(&e.other).Error)
	require.NoError(t, d.Where("email = ?", "admin@example.com").First(&e.admin).Error)

	clock := &tickingClock{t: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)}
	e.ctl = lifecycle.New(lifecycle.Deps{
		Companies: store.NewCompanies(d),
		Documents: store.NewDocuments(d),
		Notes:     store.NewNotes(d),
		Users:     users,
		Blobs:     e.blobs,
		Identity:  ctxIdentity{},
		Gate:      policy.NewGate(),
		Events:    e.events,
		Observer:  e.observer,
		Logger:    logging.Discard(),
		Clock:     clock.Now,
		Options:   opts,
	})
	return e
}

func defaultOptions() lifecycle.Options {
	return lifecycle.Options{DocumentOwnership: true}
}

func sasuInput(email string) lifecycle.CompanyInput {
	return lifecycle.CompanyInput{
		Name:           "Atelier Nova",
		LegalStructure: models.StructureSASU,
		ActivityDomain: models.DomainITWeb,
		ContactEmail:   email,
	}
}

// countQueries counts the SELECTs issued from now on.
func (e *env) countQueries(t *testing.T) *int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Callback().Query().Before("gorm:query").Register("test:count_queries", func(*gorm.DB) {
		atomic.AddInt64(&n, 1)
	}))
	return &n
}

// ownedCompany creates a company and links it to the env client.
func (e *env) ownedCompany(t *testing.T, structure models.LegalStructure) *models.Company {
	t.Helper()
	in := sasuInput("client@example.com")
	in.LegalStructure = structure
	c, err := e.ctl.CreateCompany(anonymous, in)
	require.NoError(t, err)
	c, err = e.ctl.LinkCompanyToUser(e.asClient(), c.ID, e.client.ID)
	require.NoError(t, err)
	return c
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *lifecycle.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	require.ErrorIs(t, err, models.ErrValidation)
	return verr.Violations
}

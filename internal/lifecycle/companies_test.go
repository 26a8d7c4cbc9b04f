package lifecycle_test

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/diewo77/jurigo/gate"
	"github.com/diewo77/jurigo/internal/events"
	"github.com/diewo77/jurigo/internal/legal"
	"github.com/diewo77/jurigo/internal/lifecycle"
	"github.com/diewo77/jurigo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCreateCompanySASU(t *testing.T) {
	e := newEnv(t, defaultOptions())

	c, err := e.ctl.CreateCompany(anonymous, sasuInput("founder@example.com"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusDraft, c.Status)
	assert.Equal(t, models.FirstStep, c.CurrentStep)
	assert.Nil(t, c.UserID)
	assert.Equal(t, int64(14900), legal.Price(c.LegalStructure))
	assert.Len(t, legal.RequiredDocuments(c.LegalStructure), 3)
	assert.Equal(t, 1, e.observer.created)
	assert.Equal(t, []string{events.CompanyCreated}, e.events.Types())
}

func TestCreateCompanyAssignsDistinctIDs(t *testing.T) {
	e := newEnv(t, defaultOptions())
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		c, err := e.ctl.CreateCompany(anonymous, sasuInput("same@example.com"))
		require.NoError(t, err)
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
		assert.Equal(t, models.StatusDraft, c.Status)
		assert.Equal(t, 1, c.CurrentStep)
	}
	list, err := e.ctl.CompaniesByEmail(anonymous, "same@example.com")
	require.NoError(t, err)
	assert.Len(t, list, 5)
}

func TestCreateCompanyValidation(t *testing.T) {
	e := newEnv(t, defaultOptions())

	_, err := e.ctl.CreateCompany(anonymous, lifecycle.CompanyInput{
		LegalStructure: "sa",
		ActivityDomain: "mining",
		ContactEmail:   "not-an-email",
		CapitalAmount:  ptr(-5),
		Associates:     []models.Associate{{FirstName: "Ada"}},
	})
	fields := validationFields(t, err)
	assert.Equal(t, "required", fields["name"])
	assert.Equal(t, "invalid_choice", fields["legal_structure"])
	assert.Equal(t, "invalid_choice", fields["activity_domain"])
	assert.Equal(t, "invalid_email", fields["contact_email"])
	assert.Equal(t, "out_of_range", fields["capital_amount"])
	assert.Equal(t, "required", fields["associates[0].email"])

	n, err := e.ctl.CompaniesByEmail(anonymous, "not-an-email@example.com")
	require.NoError(t, err)
	assert.Empty(t, n)
	assert.Empty(t, e.events.Events())
}

func TestCreateCompanyMinimumCapital(t *testing.T) {
	e := newEnv(t, defaultOptions())

	in := sasuInput("a@example.com")
	in.CapitalAmount = ptr(0)
	_, err := e.ctl.CreateCompany(anonymous, in)
	assert.Equal(t, "out_of_range", validationFields(t, err)["capital_amount"])

	in.LegalStructure = models.StructureAutoEntrepreneur
	_, err = e.ctl.CreateCompany(anonymous, in)
	assert.NoError(t, err)
}

func TestCreateCompanySignedInClientOwnsIt(t *testing.T) {
	e := newEnv(t, defaultOptions())
	c, err := e.ctl.CreateCompany(e.asClient(), sasuInput("client@example.com"))
	require.NoError(t, err)
	require.NotNil(t, c.UserID)
	assert.Equal(t, e.client.ID, *c.UserID)

	mine, err := e.ctl.CompaniesForCurrentUser(e.asClient())
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestUpdateCompany(t *testing.T) {
	e := newEnv(t, defaultOptions())
	c, err := e.ctl.CreateCompany(anonymous, sasuInput("a@example.com"))
	require.NoError(t, err)

	updated, err := e.ctl.UpdateCompany(anonymous, c.ID, lifecycle.CompanyPatch{
		City:          ptr("Lyon"),
		CapitalAmount: ptr(1000),
		CurrentStep:   ptr(3),
		Associates:    &[]models.Associate{{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", SharePercentage: 100}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Lyon", updated.City)
	assert.Equal(t, 3, updated.CurrentStep)
	assert.Equal(t, "Atelier Nova", updated.Name)

	got, err := e.ctl.GetCompany(anonymous, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000, *got.CapitalAmount)
	require.Len(t, got.Associates, 1)
}

func TestUpdateCompanyValidation(t *testing.T) {
	e := newEnv(t, defaultOptions())
	c, err := e.ctl.CreateCompany(anonymous, sasuInput("a@example.com"))
	require.NoError(t, err)

	_, err = e.ctl.UpdateCompany(e.asAdmin(), c.ID, lifecycle.CompanyPatch{
		LegalStructure: ptr(models.StructureSAS),
		CurrentStep:    ptr(6),
		Status:         ptr(models.CompanyStatus("archived")),
		ContactEmail:   ptr(""),
		Name:           ptr("  "),
	})
	fields := validationFields(t, err)
	assert.Equal(t, "immutable", fields["legal_structure"])
	assert.Equal(t, "out_of_range", fields["current_step"])
	assert.Equal(t, "invalid_choice", fields["status"])
	assert.Equal(t, "required", fields["contact_email"])
	assert.Equal(t, "required", fields["name"])

	// Repeating the current structure is not a change.
	_, err = e.ctl.UpdateCompany(anonymous, c.ID, lifecycle.CompanyPatch{LegalStructure: ptr(models.StructureSASU)})
	assert.NoError(t, err)
}

func TestUpdateCompanyMissing(t *testing.T) {
	e := newEnv(t, defaultOptions())
	_, err := e.ctl.UpdateCompany(anonymous, "5f0c7f3e-8d6b-4d1e-9f59-2a4c0c1b7a10", lifecycle.CompanyPatch{City: ptr("Paris")})
	assert.ErrorIs(t, err, models.ErrNotFound)

	got, err := e.ctl.GetCompany(anonymous, "5f0c7f3e-8d6b-4d1e-9f59-2a4c0c1b7a10")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestOwnedCompanyIsClosedToOthers(t *testing.T) {
	e := newEnv(t, defaultOptions())
	c := e.ownedCompany(t, models.StructureSASU)

	_, err := e.ctl.UpdateCompany(anonymous, c.ID, lifecycle.CompanyPatch{City: ptr("Nice")})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = e.ctl.UpdateCompany(e.asOther(), c.ID, lifecycle.CompanyPatch{City: ptr("Nice")})
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.ErrorIs(t, err, gate.ErrForbidden)

	_, err = e.ctl.GetCompany(e.asOther(), c.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = e.ctl.SubmitCompany(anonymous, c.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = e.ctl.UpdateCompany(e.asClient(), c.ID, lifecycle.CompanyPatch{City: ptr("Nice")})
	assert.NoError(t, err)
	_, err = e.ctl.UpdateCompany(e.asAdmin(), c.ID, lifecycle.CompanyPatch{City: ptr("Nice")})
	assert.NoError(t, err)
}

func TestUpdateCompanyStatusWritesArePermissiveByDefault(t *testing.T) {
	e := newEnv(t, defaultOptions())
	c, err := e.ctl.CreateCompany(anonymous, sasuInput("a@example.com"))
	require.NoError(t, err)

	// draft straight to completed is outside the table but accepted.
	updated, err := e.ctl.UpdateCompany(e.asAdmin(), c.ID, lifecycle.CompanyPatch{Status: ptr(models.StatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Contains(t, e.observer.transitions, "draft>completed")
	assert.Contains(t, e.events.Types(), events.CompanyStatusChanged)
}

func TestUpdateCompanyStrictTransitions(t *testing.T) {
	e := newEnv(t, lifecycle.Options{StrictTransitions: true, DocumentOwnership: true})
	c, err := e.ctl.CreateCompany(anonymous, sasuInput("a@example.com"))
	require.NoError(t, err)

	_, err = e.ctl.UpdateCompany(e.asAdmin(), c.ID, lifecycle.CompanyPatch{Status: ptr(models.StatusCompleted)})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	got, err := e.ctl.GetCompany(anonymous, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, got.Status)

	_, err = e.ctl.UpdateCompany(e.asAdmin(), c.ID, lifecycle.CompanyPatch{Status: ptr(models.StatusPendingPayment)})
	assert.NoError(t, err)
}

func TestSubmitCompanyIsIdempotent(t *testing.T) {
	e := newEnv(t, defaultOptions())
	c, err := e.ctl.CreateCompany(anonymous, sasuInput("a@example.com"))
	require.NoError(t, err)

	first, err := e.ctl.SubmitCompany(anonymous, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, first.Status)
	assert.Equal(t, models.LastStep, first.CurrentStep)
	require.NotNil(t, first.SubmittedAt)
	firstAt := *first.SubmittedAt

	second, err := e.ctl.SubmitCompany(anonymous, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, second.Status)
	assert.Equal(t, models.LastStep, second.CurrentStep)
	require.NotNil(t, second.SubmittedAt)
	assert.True(t, second.SubmittedAt.After(firstAt))
	assert.Equal(t, []string{"draft>pending_payment"}, e.observer.transitions)
}

func TestSubmitFromAnyStatusUnlessStrict(t *testing.T) {
	for _, strict := range []bool{false, true} {
		t.Run(fmt.Sprintf("strict_%v", strict), func(t *testing.T) {
			e := newEnv(t, lifecycle.Options{StrictTransitions: strict, DocumentOwnership: true})
			c, err := e.ctl.CreateCompany(anonymous, sasuInput("a@example.com"))
			require.NoError(t, err)
			_, err = e.ctl.UpdateCompanyStatus(e.asAdmin(), c.ID, models.StatusPendingPayment)
			require.NoError(t, err)
			_, err = e.ctl.UpdateCompanyStatus(e.asAdmin(), c.ID, models.StatusPaid)
			require.NoError(t, err)

			_, err = e.ctl.SubmitCompany(anonymous, c.ID)
			assert.ErrorIs(t, err, gate.ErrForbidden, "visitors cannot submit a paid company")

			_, err = e.ctl.SubmitCompany(e.asAdmin(), c.ID)
			if strict {
				assert.ErrorIs(t, err, models.ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLinkCompanyToUser(t *testing.T) {
	e := newEnv(t, defaultOptions())
	c, err := e.ctl.CreateCompany(anonymous, sasuInput("a@example.com"))
	require.NoError(t, err)

	_, err = e.ctl.LinkCompanyToUser(anonymous, c.ID, e.client.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = e.ctl.LinkCompanyToUser(e.asOther(), c.ID, e.client.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	linked, err := e.ctl.LinkCompanyToUser(e.asClient(), c.ID, e.client.ID)
	require.NoError(t, err)
	assert.Equal(t, e.client.ID, *linked.UserID)

	// Relinking to yourself is a no-op.
	linked, err = e.ctl.LinkCompanyToUser(e.asClient(), c.ID, e.client.ID)
	require.NoError(t, err)
	assert.Equal(t, e.client.ID, *linked.UserID)

	// Admins may still move ownership, last writer wins.
	linked, err = e.ctl.LinkCompanyToUser(e.asAdmin(), c.ID, e.other.ID)
	require.NoError(t, err)
	assert.Equal(t, e.other.ID, *linked.UserID)
	linked, err = e.ctl.LinkCompanyToUser(e.asAdmin(), c.ID, e.client.ID)
	require.NoError(t, err)
	assert.Equal(t, e.client.ID, *linked.UserID)

	_, err = e.ctl.LinkCompanyToUser(e.asClient(), "5f0c7f3e-8d6b-4d1e-9f59-2a4c0c1b7a10", e.client.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateCompanyStatusRequiresAdmin(t *testing.T) {
	e := newEnv(t, defaultOptions())
	c := e.ownedCompany(t, models.StructureSASU)

	_, err := e.ctl.UpdateCompanyStatus(anonymous, c.ID, models.StatusCompleted)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	// Even the owner is not an admin.
	_, err = e.ctl.UpdateCompanyStatus(e.asClient(), c.ID, models.StatusCompleted)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	got, err := e.ctl.GetCompany(e.asClient(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, got.Status)
}

func TestUpdateCompanyStatusCompleted(t *testing.T) {
	e := newEnv(t, defaultOptions())
	c, err := e.ctl.CreateCompany(anonymous, sasuInput("a@example.com"))
	require.NoError(t, err)

	first, err := e.ctl.UpdateCompanyStatus(e.asAdmin(), c.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, first.Status)
	require.NotNil(t, first.CompletedAt)
	firstAt := *first.CompletedAt

	second, err := e.ctl.UpdateCompanyStatus(e.asAdmin(), c.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, second.Status)
	require.NotNil(t, second.CompletedAt)
	assert.True(t, second.CompletedAt.After(firstAt))
}

func TestUpdateCompanyStatusAnyStatusWhenPermissive(t *testing.T) {
	e := newEnv(t, defaultOptions())
	c, err := e.ctl.CreateCompany(anonymous, sasuInput("a@example.com"))
	require.NoError(t, err)
	for _, s := range []models.CompanyStatus{models.StatusRejected, models.StatusDraft, models.StatusUnderReview, models.StatusPaid} {
		got, err := e.ctl.UpdateCompanyStatus(e.asAdmin(), c.ID, s)
		require.NoError(t, err, s)
		assert.Equal(t, s, got.Status)
	}
}

func TestUpdateCompanyStatusStrict(t *testing.T) {
	e := newEnv(t, lifecycle.Options{StrictTransitions: true, DocumentOwnership: true})
	c, err := e.ctl.CreateCompany(anonymous, sasuInput("a@example.com"))
	require.NoError(t, err)

	_, err = e.ctl.UpdateCompanyStatus(e.asAdmin(), c.ID, models.StatusRejected)
	assert.ErrorIs(t, err, models.ErrInvalidTransition, "draft cannot be rejected")

	path := []models.CompanyStatus{
		models.StatusPendingPayment, models.StatusPaid, models.StatusDocumentsPending,
		models.StatusDocumentsUploaded, models.StatusUnderReview, models.StatusRejected,
	}
	for _, s := range path {
		_, err := e.ctl.UpdateCompanyStatus(e.asAdmin(), c.ID, s)
		require.NoError(t, err, s)
	}
	_, err = e.ctl.UpdateCompanyStatus(e.asAdmin(), c.ID, models.StatusUnderReview)
	assert.ErrorIs(t, err, models.ErrInvalidTransition, "rejected is terminal")

	_, err = e.ctl.UpdateCompanyStatus(e.asAdmin(), c.ID, models.StatusRejected)
	assert.NoError(t, err, "self transition is always allowed")
}

func TestUpdateCompanyStatusValidation(t *testing.T) {
	e := newEnv(t, defaultOptions())
	_, err := e.ctl.UpdateCompanyStatus(e.asAdmin(), "5f0c7f3e-8d6b-4d1e-9f59-2a4c0c1b7a10", "archived")
	assert.Equal(t, "invalid_choice", validationFields(t, err)["status"])

	_, err = e.ctl.UpdateCompanyStatus(e.asAdmin(), "5f0c7f3e-8d6b-4d1e-9f59-2a4c0c1b7a10", models.StatusPaid)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRecordPayment(t *testing.T) {
	e := newEnv(t, lifecycle.Options{StrictTransitions: true, DocumentOwnership: true})
	c, err := e.ctl.CreateCompany(anonymous, sasuInput("a@example.com"))
	require.NoError(t, err)

	_, err = e.ctl.RecordPayment(anonymous, lifecycle.PaymentInput{CompanyID: c.ID, Reference: "pi_1"})
	assert.ErrorIs(t, err, models.ErrInvalidTransition, "draft must be submitted first")

	_, err = e.ctl.SubmitCompany(anonymous, c.ID)
	require.NoError(t, err)
	paid, err := e.ctl.RecordPayment(anonymous, lifecycle.PaymentInput{CompanyID: c.ID, Reference: "pi_1"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, paid.Status)
	assert.Equal(t, "pi_1", paid.PaymentIntentID)
	require.NotNil(t, paid.Amount)
	assert.Equal(t, int64(14900), *paid.Amount)
	assert.NotNil(t, paid.PaidAt)
	assert.Contains(t, e.events.Types(), events.CompanyPaid)

	_, err = e.ctl.RecordPayment(anonymous, lifecycle.PaymentInput{CompanyID: c.ID})
	assert.Equal(t, "required", validationFields(t, err)["reference"])
}

func TestEventFailuresDoNotFailOperations(t *testing.T) {
	e := newEnv(t, defaultOptions())
	e.events.Err = assert.AnError

	c, err := e.ctl.CreateCompany(anonymous, sasuInput("a@example.com"))
	require.NoError(t, err)
	_, err = e.ctl.SubmitCompany(anonymous, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, e.observer.failures)
}

func TestOwnedCompanyCannotBeTakenOver(t *testing.T) {
	e := newEnv(t, defaultOptions())
	c := e.ownedCompany(t, models.StructureSASU)
	e.upload(t, c.ID, "id_president")

	_, err := e.ctl.ListDocuments(e.asOther(), c.ID)
	require.ErrorIs(t, err, gate.ErrForbidden)

	_, err = e.ctl.LinkCompanyToUser(e.asOther(), c.ID, e.other.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.ErrorIs(t, err, gate.ErrForbidden)

	got, err := e.ctl.GetCompany(e.asClient(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, e.client.ID, got.GetUserID())

	docs, err := e.ctl.ListDocuments(e.asClient(), c.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	_, err = e.ctl.ListDocuments(e.asOther(), c.ID)
	assert.ErrorIs(t, err, gate.ErrForbidden)
}

func TestVisitorsCannotWriteStatus(t *testing.T) {
	e := newEnv(t, lifecycle.Options{StrictTransitions: true, DocumentOwnership: true})
	c, err := e.ctl.CreateCompany(anonymous, sasuInput("a@example.com"))
	require.NoError(t, err)

	_, err = e.ctl.UpdateCompany(anonymous, c.ID, lifecycle.CompanyPatch{Status: ptr(models.StatusPendingPayment)})
	assert.ErrorIs(t, err, gate.ErrForbidden, "status is never written from the wizard")

	_, err = e.ctl.SubmitCompany(anonymous, c.ID)
	require.NoError(t, err)

	_, err = e.ctl.UpdateCompany(anonymous, c.ID, lifecycle.CompanyPatch{Status: ptr(models.StatusPaid)})
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.ErrorIs(t, err, gate.ErrForbidden)

	_, err = e.ctl.UpdateCompany(anonymous, c.ID, lifecycle.CompanyPatch{CurrentStep: ptr(2)})
	assert.ErrorIs(t, err, gate.ErrForbidden, "a submitted company is closed to the wizard")

	_, err = e.ctl.UpdateCompany(anonymous, c.ID, lifecycle.CompanyPatch{City: ptr("Nice")})
	assert.ErrorIs(t, err, gate.ErrForbidden)

	got, err := e.ctl.GetCompany(anonymous, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, got.Status)
	assert.Equal(t, models.LastStep, got.CurrentStep)

	paid, err := e.ctl.UpdateCompany(e.asAdmin(), c.ID, lifecycle.CompanyPatch{Status: ptr(models.StatusPaid)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, paid.Status)
}

func TestOwnerCannotWriteStatus(t *testing.T) {
	e := newEnv(t, defaultOptions())
	c := e.ownedCompany(t, models.StructureSASU)

	_, err := e.ctl.UpdateCompany(e.asClient(), c.ID, lifecycle.CompanyPatch{Status: ptr(models.StatusCompleted)})
	assert.ErrorIs(t, err, gate.ErrForbidden)

	_, err = e.ctl.SubmitCompany(e.asClient(), c.ID)
	require.NoError(t, err)
	_, err = e.ctl.UpdateCompany(e.asClient(), c.ID, lifecycle.CompanyPatch{Status: ptr(models.StatusCompleted)})
	assert.ErrorIs(t, err, gate.ErrForbidden)
	_, err = e.ctl.UpdateCompany(e.asClient(), c.ID, lifecycle.CompanyPatch{CurrentStep: ptr(1)})
	assert.ErrorIs(t, err, gate.ErrForbidden)

	got, err := e.ctl.GetCompany(e.asClient(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, got.Status)
}

func TestMalformedIDsNeverReachTheStore(t *testing.T) {
	e := newEnv(t, defaultOptions())
	queries := e.countQueries(t)

	_, err := e.ctl.SubmitCompany(anonymous, "not-a-uuid")
	assert.Equal(t, "invalid_uuid", validationFields(t, err)["company_id"])

	_, err = e.ctl.GetCompany(anonymous, "not-a-uuid")
	assert.Equal(t, "invalid_uuid", validationFields(t, err)["company_id"])

	_, err = e.ctl.UpdateCompany(anonymous, "", lifecycle.CompanyPatch{City: ptr("Nice")})
	assert.Equal(t, "required", validationFields(t, err)["company_id"])

	_, err = e.ctl.RequestDownloadReference(e.asClient(), "abc")
	assert.Equal(t, "invalid_uuid", validationFields(t, err)["document_id"])

	_, err = e.ctl.Notes(e.asAdmin(), "abc")
	assert.Equal(t, "invalid_uuid", validationFields(t, err)["company_id"])

	assert.Zero(t, atomic.LoadInt64(queries))
}

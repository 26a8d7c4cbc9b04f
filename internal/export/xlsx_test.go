package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/diewo77/jurigo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteCompanies(t *testing.T) {
	capital := 1000
	amount := int64(14900)
	paid := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	companies := []models.Company{
		{
			ID: "c1", Name: "Atelier Nova", LegalStructure: models.StructureSASU,
			ActivityDomain: models.DomainITWeb, Status: models.StatusPaid, CurrentStep: 5,
			ContactEmail: "lea@example.com", CapitalAmount: &capital, Amount: &amount,
			PaymentIntentID: "pi_1", PaidAt: &paid,
			CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		},
		{ID: "c2", Name: "Solo", LegalStructure: models.StructureAutoEntrepreneur, Status: models.StatusDraft, CurrentStep: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCompanies(&buf, "en", companies))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, columns, rows[0])

	first := rows[1]
	assert.Equal(t, "c1", first[0])
	assert.Equal(t, "Atelier Nova", first[1])
	assert.Equal(t, "SASU", first[2])
	assert.Equal(t, "1000", first[9])
	assert.Equal(t, "149", first[10])
	assert.Equal(t, "pi_1", first[11])
	assert.Equal(t, "2026-03-02T10:00:00Z", first[14])

	assert.Equal(t, "c2", rows[2][0])
}

func TestWriteCompaniesEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCompanies(&buf, "fr", nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFileName(t *testing.T) {
	got := FileName(time.Date(2026, 10, 17, 8, 30, 5, 0, time.UTC))
	assert.Equal(t, "companies-20261017-083005.xlsx", got)
}

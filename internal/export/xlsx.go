// Package export renders the admin company listing as a spreadsheet.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/diewo77/jurigo/i18n"
	"github.com/diewo77/jurigo/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Companies"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var columns = []string{
	"ID", "Name", "Structure", "Activity", "Status", "Step",
	"Contact email", "Contact phone", "City", "Capital",
	"Amount (EUR)", "Payment reference", "Created", "Submitted", "Paid", "Completed",
}

// FileName is the download name of an export made at t.
func FileName(t time.Time) string {
	return "companies-" + t.UTC().Format("20060102-150405") + ".xlsx"
}

// WriteCompanies writes one row per company, with labels in lang.
func WriteCompanies(w io.Writer, lang string, companies []models.Company) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("export: header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return fmt.Errorf("export: header range: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	for i, c := range companies {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: row %d: %w", i, err)
		}
		row := companyRow(lang, c)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("export: row %d: %w", i, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write: %w", err)
	}
	return nil
}

func companyRow(lang string, c models.Company) []any {
	return []any{
		c.ID,
		c.Name,
		i18n.StructureLabel(lang, string(c.LegalStructure)),
		i18n.DomainLabel(lang, string(c.ActivityDomain)),
		i18n.StatusLabel(lang, string(c.Status)),
		c.CurrentStep,
		c.ContactEmail,
		c.ContactPhone,
		c.City,
		intOrEmpty(c.CapitalAmount),
		euros(c.Amount),
		c.PaymentIntentID,
		stamp(&c.CreatedAt),
		stamp(c.SubmittedAt),
		stamp(c.PaidAt),
		stamp(c.CompletedAt),
	}
}

func intOrEmpty(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

// euros converts an amount in cents.
func euros(cents *int64) any {
	if cents == nil {
		return ""
	}
	return float64(*cents) / 100
}

func stamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

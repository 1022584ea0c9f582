// Package export renders case data and documents for review outside the API:
// XLSX and CSV sheets of the extracted data and an HTML preview of a document.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"notaria/internal/domain"
)

const dataSheet = "Datos"

// WriteCaseXLSX writes the review sheet as a workbook. Required fields the
// data set lacks get a row with an empty value so the reviewer sees every gap.
func WriteCaseXLSX(w io.Writer, c *domain.Case, ct *domain.CaseType) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), dataSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(dataSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(dataSheet, "A1", "H1", bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	_ = f.SetColWidth(dataSheet, "A", "C", 18)
	_ = f.SetColWidth(dataSheet, "D", "D", 48)

	for i, r := range reviewRows(c, ct) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			r.Section, r.Key, r.Label, r.Value, r.Confidence, r.Source, yesNo(r.NeedsReview), yesNo(r.Required),
		}
		if err := f.SetSheetRow(dataSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"notaria/internal/domain"
)

// BOM makes Excel on Windows read the file as UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCaseCSV writes the review sheet as UTF-8 CSV with a leading BOM.
func WriteCaseCSV(w io.Writer, c *domain.Case, ct *domain.CaseType) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, r := range reviewRows(c, ct) {
		row := []string{
			r.Section, r.Key, r.Label, r.Value,
			strconv.FormatFloat(r.Confidence, 'f', 2, 64), r.Source, yesNo(r.NeedsReview), yesNo(r.Required),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadFieldValues reads a review sheet produced by WriteCaseXLSX and returns
// the non-empty values keyed "section.field". Rows without a field key are
// skipped.
func ReadFieldValues(r io.Reader) (map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := dataSheet
	if idx, _ := f.GetSheetIndex(dataSheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	values := make(map[string]string)
	// row 0 is the header
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		section := strings.TrimSpace(cellVal(row, 0))
		key := strings.TrimSpace(cellVal(row, 1))
		value := strings.TrimSpace(cellVal(row, 3))
		if key == "" || value == "" {
			continue
		}
		if section != "" {
			key = section + "." + key
		}
		values[key] = value
	}
	return values, nil
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

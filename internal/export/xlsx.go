package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes each table to its own sheet of a single workbook.
func WriteXLSX(w io.Writer, tables ...Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("add sheet %s: %w", t.Name, err)
		}

		header := make([]any, len(t.Header))
		for c, h := range t.Header {
			header[c] = h
		}
		if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
			return fmt.Errorf("write %s header: %w", t.Name, err)
		}

		for r, row := range t.Rows {
			cells := make([]any, len(row))
			for c, v := range row {
				cells[c] = v
				if c < len(t.Numeric) && t.Numeric[c] {
					if n, err := strconv.ParseFloat(v, 64); err == nil {
						cells[c] = n
					}
				}
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(t.Name, cell, &cells); err != nil {
				return fmt.Errorf("write %s row %d: %w", t.Name, r+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Package export writes posting rows as downloadable CSV and XLSX files.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/safeledger/dashboard/internal/core/domain"
)

const sheetName = "Postings"

// Columns is the export header, in order.
var Columns = []string{"id", "accountHandleNumber", "postDescription", "postAmount", "postCurrency", "postDate", "is_suspicious"}

func values(p domain.Posting) []string {
	return []string{
		strconv.FormatInt(p.ID, 10),
		strconv.FormatInt(p.AccountHandleNumber, 10),
		p.PostDescription,
		p.RawAmount,
		p.PostCurrency,
		p.DisplayDate(),
		strconv.FormatBool(p.IsSuspicious),
	}
}

// WriteCSV writes rows with every field quoted and CRLF line endings.
func WriteCSV(w io.Writer, rows []domain.Posting) error {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(Columns, ","))
	for _, p := range rows {
		vals := values(p)
		for i, v := range vals {
			vals[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
		}
		lines = append(lines, strings.Join(vals, ","))
	}
	if _, err := io.WriteString(w, strings.Join(lines, "\r\n")); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes rows to a single-sheet workbook. Amounts that parsed are stored as
// numbers so spreadsheet sums work; the rest are kept as text.
func WriteXLSX(w io.Writer, rows []domain.Posting) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("xlsx header: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("xlsx header: %w", err)
		}
	}

	for r, p := range rows {
		row := []any{
			p.ID,
			p.AccountHandleNumber,
			p.PostDescription,
			p.RawAmount,
			p.PostCurrency,
			p.DisplayDate(),
			p.IsSuspicious,
		}
		if p.HasAmount() {
			row[3] = p.PostAmount.Decimal.InexactFloat64()
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("xlsx row %d: %w", r, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("xlsx row %d: %w", r, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

package roster

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/campushq/onboard/internal/domain"

	"github.com/xuri/excelize/v2"
)

// WriteTemplateCSV writes a one-line CSV header template for the member kind.
func WriteTemplateCSV(w io.Writer, kind domain.MemberKind) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(Columns(kind)); err != nil {
		return fmt.Errorf("failed to write template header: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteTemplateXLSX writes a single-sheet workbook whose first row is the
// expected header set for the member kind.
func WriteTemplateXLSX(w io.Writer, kind domain.MemberKind) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	columns := Columns(kind)
	cells := make([]any, len(columns))
	for i, column := range columns {
		cells[i] = column
	}

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return fmt.Errorf("failed to write template header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx template: %w", err)
	}
	return nil
}

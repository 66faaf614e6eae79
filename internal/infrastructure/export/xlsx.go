// Package export renders loan applications as downloadable spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
)

const (
	FormatXLSX      = "xlsx"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName       = "Loans"
	createdAtLayout = "2006-01-02 15:04:05"
)

var xlsxHeader = []any{
	"Name", "PAN", "Aadhaar", "DOB", "State", "Pincode",
	"Email", "Income", "Phone", "Loan Amount", "Tenure", "Created At",
}

// XLSXEncoder writes one "Loans" sheet with a header row and one row per
// application. Creation times are shown in loc.
type XLSXEncoder struct {
	loc *time.Location
}

func NewXLSXEncoder(loc *time.Location) *XLSXEncoder {
	if loc == nil {
		loc = time.UTC
	}
	return &XLSXEncoder{loc: loc}
}

func (e *XLSXEncoder) Format() string      { return FormatXLSX }
func (e *XLSXEncoder) ContentType() string { return ContentTypeXLSX }

func (e *XLSXEncoder) Encode(w io.Writer, apps []model.LoanApplication) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", "L", 18); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	for i, app := range apps {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			app.FullName(),
			app.PAN().String(),
			app.Aadhaar().String(),
			app.DateOfBirth().Format(valueobject.DateLayout),
			app.State(),
			app.Pincode().String(),
			app.Email().String(),
			app.MonthlyIncome().Amount().InexactFloat64(),
			app.Mobile().String(),
			app.LoanAmount().Amount().InexactFloat64(),
			app.TenureYears(),
			app.CreatedAt().In(e.loc).Format(createdAtLayout),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/bibbank/loanintake/internal/domain/model"
)

const (
	FormatCSV      = "csv"
	ContentTypeCSV = "text/csv; charset=utf-8"

	csvDateLayout = "02/01/2006"
)

var csvHeader = []string{"Name", "Amount", "Mobile", "Pincode", "State", "Date"}

// CSVEncoder writes the short admin listing: name, loan amount, mobile,
// pincode, state and the creation date as DD/MM/YYYY in loc.
type CSVEncoder struct {
	loc *time.Location
}

func NewCSVEncoder(loc *time.Location) *CSVEncoder {
	if loc == nil {
		loc = time.UTC
	}
	return &CSVEncoder{loc: loc}
}

func (e *CSVEncoder) Format() string      { return FormatCSV }
func (e *CSVEncoder) ContentType() string { return ContentTypeCSV }

func (e *CSVEncoder) Encode(w io.Writer, apps []model.LoanApplication) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, app := range apps {
		record := []string{
			app.FullName(),
			app.LoanAmount().Amount().String(),
			app.Mobile().String(),
			app.Pincode().String(),
			app.State(),
			app.CreatedAt().In(e.loc).Format(csvDateLayout),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

package valueobject

import "strings"

// Field names one input of the loan application form. The string value is
// also the wire name used in JSON bodies and error maps.
type Field string

const (
	FieldFullName      Field = "full_name"
	FieldPAN           Field = "pan"
	FieldAadhaar       Field = "aadhaar"
	FieldDateOfBirth   Field = "date_of_birth"
	FieldState         Field = "state"
	FieldPincode       Field = "pincode"
	FieldEmail         Field = "email"
	FieldMobile        Field = "mobile"
	FieldMonthlyIncome Field = "monthly_income"
	FieldLoanAmount    Field = "loan_amount"
	FieldTenureYears   Field = "tenure_years"
)

// AllFields lists every form field in display order.
var AllFields = []Field{
	FieldFullName,
	FieldPAN,
	FieldAadhaar,
	FieldDateOfBirth,
	FieldState,
	FieldPincode,
	FieldEmail,
	FieldMobile,
	FieldMonthlyIncome,
	FieldLoanAmount,
	FieldTenureYears,
}

// ParseField maps a wire name to a Field.
func ParseField(s string) (Field, bool) {
	for _, f := range AllFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

func (f Field) String() string { return string(f) }

// FieldErrors maps each failing field to a short human-readable message.
// An empty map means the input is valid.
type FieldErrors map[Field]string

// Valid reports whether no field failed.
func (e FieldErrors) Valid() bool { return len(e) == 0 }

// Fields returns the failing fields in display order.
func (e FieldErrors) Fields() []Field {
	out := make([]Field, 0, len(e))
	for _, f := range AllFields {
		if _, ok := e[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Strings converts the map to plain string keys for JSON encoding.
func (e FieldErrors) Strings() map[string]string {
	out := make(map[string]string, len(e))
	for f, msg := range e {
		out[string(f)] = msg
	}
	return out
}

func (e FieldErrors) String() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, string(f)+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

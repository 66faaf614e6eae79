package service

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
	"github.com/bibbank/loanintake/pkg/money"
)

// ---------------------------------------------------------------------------
// ApplicationValidator – domain service for the intake field rules
// ---------------------------------------------------------------------------

// ApplicationInput is the raw, untyped content of the application form.
// Every value is kept as the user typed it.
type ApplicationInput struct {
	FullName      string
	PAN           string
	Aadhaar       string
	DateOfBirth   string
	State         string
	Pincode       string
	Email         string
	Mobile        string
	MonthlyIncome string
	LoanAmount    string
	TenureYears   string
}

// Get returns the raw value of one field.
func (in ApplicationInput) Get(f valueobject.Field) string {
	switch f {
	case valueobject.FieldFullName:
		return in.FullName
	case valueobject.FieldPAN:
		return in.PAN
	case valueobject.FieldAadhaar:
		return in.Aadhaar
	case valueobject.FieldDateOfBirth:
		return in.DateOfBirth
	case valueobject.FieldState:
		return in.State
	case valueobject.FieldPincode:
		return in.Pincode
	case valueobject.FieldEmail:
		return in.Email
	case valueobject.FieldMobile:
		return in.Mobile
	case valueobject.FieldMonthlyIncome:
		return in.MonthlyIncome
	case valueobject.FieldLoanAmount:
		return in.LoanAmount
	case valueobject.FieldTenureYears:
		return in.TenureYears
	}
	return ""
}

// With returns a copy of the input with one field replaced.
func (in ApplicationInput) With(f valueobject.Field, value string) ApplicationInput {
	next := in
	switch f {
	case valueobject.FieldFullName:
		next.FullName = value
	case valueobject.FieldPAN:
		next.PAN = value
	case valueobject.FieldAadhaar:
		next.Aadhaar = value
	case valueobject.FieldDateOfBirth:
		next.DateOfBirth = value
	case valueobject.FieldState:
		next.State = value
	case valueobject.FieldPincode:
		next.Pincode = value
	case valueobject.FieldEmail:
		next.Email = value
	case valueobject.FieldMobile:
		next.Mobile = value
	case valueobject.FieldMonthlyIncome:
		next.MonthlyIncome = value
	case valueobject.FieldLoanAmount:
		next.LoanAmount = value
	case valueobject.FieldTenureYears:
		next.TenureYears = value
	}
	return next
}

// ValidationRules holds the configurable limits of the intake rules.
// The maximums match the loan_applications column sizes, so every accepted
// input can be stored.
type ValidationRules struct {
	MinMonthlyIncome decimal.Decimal
	MaxMonthlyIncome decimal.Decimal
	MinLoanAmount    decimal.Decimal
	MaxLoanAmount    decimal.Decimal
	MinTenureYears   int
	MaxTenureYears   int
	MinAgeYears      int
	MinNameLength    int
	MaxNameLength    int
	MaxStateLength   int
	MaxEmailLength   int
	// Location is the time zone ages are evaluated in. Nil means UTC.
	Location *time.Location
}

// DefaultValidationRules returns the production limits.
func DefaultValidationRules() ValidationRules {
	return ValidationRules{
		MinMonthlyIncome: decimal.NewFromInt(15_000),
		MaxMonthlyIncome: decimal.NewFromInt(1_000_000_000),
		MinLoanAmount:    decimal.NewFromInt(20_000),
		MaxLoanAmount:    decimal.NewFromInt(1_550_000),
		MinTenureYears:   1,
		MaxTenureYears:   20,
		MinAgeYears:      18,
		MinNameLength:    2,
		MaxNameLength:    50,
		MaxStateLength:   100,
		MaxEmailLength:   254,
		Location:         time.UTC,
	}
}

const (
	MsgNameRequired  = "Please enter full name"
	MsgPAN           = "Enter valid PAN (ABCDE1234F)"
	MsgAadhaar       = "Enter valid 12-digit Aadhaar"
	MsgDOBRequired   = "Please select date of birth"
	MsgDOBInvalid    = "Enter a valid date of birth"
	MsgStateRequired = "Please enter state"
	MsgPincode       = "Enter valid 6-digit pincode"
	MsgEmail         = "Only Gmail allowed"
	MsgMobile        = "Mobile must start with +91 followed by 10 digits"
	MsgAmountPaise   = "Amount can have at most 2 decimal places"
)

// amountScale is the number of decimal places stored for rupee amounts.
const amountScale = 2

// maxParsedYears bounds tenure parsing so the int conversion cannot wrap.
var maxParsedYears = decimal.NewFromInt(math.MaxInt32)

var nameRe = regexp.MustCompile(`^[A-Za-z ]+$`)

// ApplicationValidator applies every field rule to an ApplicationInput.
// It is pure: no I/O, and the result depends only on the input and now.
type ApplicationValidator struct {
	rules ValidationRules

	msgName      string
	msgAge       string
	msgIncome    string
	msgIncomeMax string
	msgLoan      string
	msgTenure    string
	msgState     string
	msgEmailLen  string
}

// NewApplicationValidator builds a validator for the given limits.
func NewApplicationValidator(rules ValidationRules) *ApplicationValidator {
	if rules.Location == nil {
		rules.Location = time.UTC
	}
	return &ApplicationValidator{
		rules:     rules,
		msgName:   fmt.Sprintf("Name must be %d-%d letters and spaces", rules.MinNameLength, rules.MaxNameLength),
		msgAge:    fmt.Sprintf("You must be %d+ years", rules.MinAgeYears),
		msgIncome:    fmt.Sprintf("Income must be %s+", money.FormatINR(rules.MinMonthlyIncome)),
		msgIncomeMax: fmt.Sprintf("Income must be at most %s", money.FormatINR(rules.MaxMonthlyIncome)),
		msgLoan:      fmt.Sprintf("Loan %s - %s only", limitLabel(rules.MinLoanAmount), limitLabel(rules.MaxLoanAmount)),
		msgTenure:    fmt.Sprintf("Tenure %d-%d years", rules.MinTenureYears, rules.MaxTenureYears),
		msgState:     fmt.Sprintf("State must be at most %d characters", rules.MaxStateLength),
		msgEmailLen:  fmt.Sprintf("Email must be at most %d characters", rules.MaxEmailLength),
	}
}

// Rules returns the limits the validator was built with.
func (v *ApplicationValidator) Rules() ValidationRules { return v.rules }

// Validate runs all rules and returns one message per failing field.
// There is no short-circuit: every field is checked.
func (v *ApplicationValidator) Validate(in ApplicationInput, now time.Time) valueobject.FieldErrors {
	errs := valueobject.FieldErrors{}

	name := strings.TrimSpace(in.FullName)
	switch {
	case name == "":
		errs[valueobject.FieldFullName] = MsgNameRequired
	case !nameRe.MatchString(name),
		utf8.RuneCountInString(name) < v.rules.MinNameLength,
		utf8.RuneCountInString(name) > v.rules.MaxNameLength:
		errs[valueobject.FieldFullName] = v.msgName
	}

	if _, err := valueobject.NewPAN(in.PAN); err != nil {
		errs[valueobject.FieldPAN] = MsgPAN
	}
	if _, err := valueobject.NewAadhaar(in.Aadhaar); err != nil {
		errs[valueobject.FieldAadhaar] = MsgAadhaar
	}
	if msg := v.checkDateOfBirth(in.DateOfBirth, now); msg != "" {
		errs[valueobject.FieldDateOfBirth] = msg
	}
	switch state := strings.TrimSpace(in.State); {
	case state == "":
		errs[valueobject.FieldState] = MsgStateRequired
	case v.rules.MaxStateLength > 0 && utf8.RuneCountInString(state) > v.rules.MaxStateLength:
		errs[valueobject.FieldState] = v.msgState
	}
	if _, err := valueobject.NewPincode(in.Pincode); err != nil {
		errs[valueobject.FieldPincode] = MsgPincode
	}
	if _, err := valueobject.NewEmail(in.Email); err != nil {
		errs[valueobject.FieldEmail] = MsgEmail
	} else if v.rules.MaxEmailLength > 0 && len(in.Email) > v.rules.MaxEmailLength {
		errs[valueobject.FieldEmail] = v.msgEmailLen
	}
	if _, err := valueobject.NewMobile(in.Mobile); err != nil {
		errs[valueobject.FieldMobile] = MsgMobile
	}

	switch income, ok := parseAmount(in.MonthlyIncome); {
	case !ok || income.LessThan(v.rules.MinMonthlyIncome):
		errs[valueobject.FieldMonthlyIncome] = v.msgIncome
	case !v.rules.MaxMonthlyIncome.IsZero() && income.GreaterThan(v.rules.MaxMonthlyIncome):
		errs[valueobject.FieldMonthlyIncome] = v.msgIncomeMax
	case !wholePaise(income):
		errs[valueobject.FieldMonthlyIncome] = MsgAmountPaise
	}
	switch amount, ok := parseAmount(in.LoanAmount); {
	case !ok || amount.LessThan(v.rules.MinLoanAmount) || amount.GreaterThan(v.rules.MaxLoanAmount):
		errs[valueobject.FieldLoanAmount] = v.msgLoan
	case !wholePaise(amount):
		errs[valueobject.FieldLoanAmount] = MsgAmountPaise
	}
	if years, ok := parseYears(in.TenureYears); !ok ||
		years < v.rules.MinTenureYears || years > v.rules.MaxTenureYears {
		errs[valueobject.FieldTenureYears] = v.msgTenure
	}

	return errs
}

// Build validates the input and converts it into typed applicant details.
// A rejected input yields a *model.ValidationError.
func (v *ApplicationValidator) Build(in ApplicationInput, now time.Time) (model.ApplicantDetails, error) {
	if errs := v.Validate(in, now); !errs.Valid() {
		return model.ApplicantDetails{}, model.NewValidationError(errs)
	}

	// Every rule passed, so the conversions below cannot fail.
	pan, _ := valueobject.NewPAN(in.PAN)
	aadhaar, _ := valueobject.NewAadhaar(in.Aadhaar)
	pincode, _ := valueobject.NewPincode(in.Pincode)
	email, _ := valueobject.NewEmail(in.Email)
	mobile, _ := valueobject.NewMobile(in.Mobile)
	dob, _ := time.ParseInLocation(valueobject.DateLayout, in.DateOfBirth, time.UTC)
	income, _ := parseAmount(in.MonthlyIncome)
	amount, _ := parseAmount(in.LoanAmount)
	years, _ := parseYears(in.TenureYears)

	return model.ApplicantDetails{
		FullName:      strings.TrimSpace(in.FullName),
		PAN:           pan,
		Aadhaar:       aadhaar,
		DateOfBirth:   dob,
		State:         strings.TrimSpace(in.State),
		Pincode:       pincode,
		Email:         email,
		MonthlyIncome: money.Rupees(income),
		Mobile:        mobile,
		LoanAmount:    money.Rupees(amount),
		TenureYears:   years,
	}, nil
}

func (v *ApplicationValidator) checkDateOfBirth(raw string, now time.Time) string {
	if strings.TrimSpace(raw) == "" {
		return MsgDOBRequired
	}
	loc := v.rules.Location
	dob, err := time.ParseInLocation(valueobject.DateLayout, raw, loc)
	if err != nil {
		return MsgDOBInvalid
	}
	today := now.In(loc)
	if dob.After(today) {
		return MsgDOBInvalid
	}
	if AgeOn(dob, today) < v.rules.MinAgeYears {
		return v.msgAge
	}
	return ""
}

// AgeOn returns completed years between dob and on: the year difference,
// minus one if the birthday has not yet come round in on's year.
func AgeOn(dob, on time.Time) int {
	age := on.Year() - dob.Year()
	if on.Month() < dob.Month() || (on.Month() == dob.Month() && on.Day() < dob.Day()) {
		age--
	}
	return age
}

func parseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// wholePaise reports whether d fits the stored scale without rounding.
func wholePaise(d decimal.Decimal) bool {
	return d.Equal(d.Round(amountScale))
}

func parseYears(raw string) (int, bool) {
	d, ok := parseAmount(raw)
	if !ok || !d.IsInteger() || d.Abs().GreaterThan(maxParsedYears) {
		return 0, false
	}
	return int(d.IntPart()), true
}

// limitLabel renders a limit the way the offer screen does: ₹20k, ₹15.5L.
func limitLabel(amount decimal.Decimal) string {
	label := money.FormatShortINR(amount)
	for _, unit := range []string{"Cr", "L", "K"} {
		if strings.HasSuffix(label, ".0"+unit) {
			label = strings.TrimSuffix(label, ".0"+unit) + unit
			break
		}
	}
	return strings.Replace(label, "K", "k", 1)
}

package valueobject

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// Applicant identifiers – immutable value objects
// ---------------------------------------------------------------------------

var (
	panRe     = regexp.MustCompile(`^[A-Za-z]{5}[0-9]{4}[A-Za-z]$`)
	aadhaarRe = regexp.MustCompile(`^\d{12}$`)
	pincodeRe = regexp.MustCompile(`^\d{6}$`)
	gmailRe   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@gmail\.com$`)
	mobileRe  = regexp.MustCompile(`^\+91[6-9]\d{9}$`)
)

var (
	ErrInvalidPAN     = errors.New("invalid PAN")
	ErrInvalidAadhaar = errors.New("invalid Aadhaar number")
	ErrInvalidPincode = errors.New("invalid pincode")
	ErrInvalidEmail   = errors.New("invalid email")
	ErrInvalidMobile  = errors.New("invalid mobile number")
)

// PAN is an Indian Permanent Account Number, stored upper-cased.
type PAN struct{ value string }

// NewPAN accepts the ABCDE1234F shape in any ASCII letter case. The shape is
// checked before upper-casing so letters like U+017F never fold into range.
func NewPAN(s string) (PAN, error) {
	if !panRe.MatchString(s) {
		return PAN{}, fmt.Errorf("%w: %q", ErrInvalidPAN, s)
	}
	return PAN{value: strings.ToUpper(s)}, nil
}

func (p PAN) String() string { return p.value }

// Aadhaar is a 12-digit national identity number.
type Aadhaar struct{ value string }

func NewAadhaar(s string) (Aadhaar, error) {
	if !aadhaarRe.MatchString(s) {
		return Aadhaar{}, fmt.Errorf("%w: %q", ErrInvalidAadhaar, s)
	}
	return Aadhaar{value: s}, nil
}

func (a Aadhaar) String() string { return a.value }

// Pincode is a 6-digit postal code.
type Pincode struct{ value string }

func NewPincode(s string) (Pincode, error) {
	if !pincodeRe.MatchString(s) {
		return Pincode{}, fmt.Errorf("%w: %q", ErrInvalidPincode, s)
	}
	return Pincode{value: s}, nil
}

func (p Pincode) String() string { return p.value }

// Email is a Gmail address. Other providers are rejected.
type Email struct{ value string }

func NewEmail(s string) (Email, error) {
	if !gmailRe.MatchString(s) {
		return Email{}, fmt.Errorf("%w: %q", ErrInvalidEmail, s)
	}
	return Email{value: s}, nil
}

func (e Email) String() string { return e.value }

// Mobile is an Indian mobile number in +91XXXXXXXXXX form.
type Mobile struct{ value string }

func NewMobile(s string) (Mobile, error) {
	if !mobileRe.MatchString(s) {
		return Mobile{}, fmt.Errorf("%w: %q", ErrInvalidMobile, s)
	}
	return Mobile{value: s}, nil
}

func (m Mobile) String() string { return m.value }

// ---------------------------------------------------------------------------
// Reconstruction from persistence (no validation)
// ---------------------------------------------------------------------------

func ReconstructPAN(s string) PAN         { return PAN{value: s} }
func ReconstructAadhaar(s string) Aadhaar { return Aadhaar{value: s} }
func ReconstructPincode(s string) Pincode { return Pincode{value: s} }
func ReconstructEmail(s string) Email     { return Email{value: s} }
func ReconstructMobile(s string) Mobile   { return Mobile{value: s} }

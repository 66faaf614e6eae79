package valueobject

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// DayWindow is the inclusive range [date 00:00:00.000, date 23:59:59.999]
// of one calendar day in a given location.
type DayWindow struct {
	date  string
	start time.Time
	end   time.Time
}

// NewDayWindow parses a YYYY-MM-DD date in loc. A nil loc means UTC.
func NewDayWindow(date string, loc *time.Location) (DayWindow, error) {
	if loc == nil {
		loc = time.UTC
	}
	if date == "" {
		return DayWindow{}, fmt.Errorf("%w: date is required", ErrInvalidDate)
	}
	start, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return DayWindow{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return DayWindow{date: date, start: start, end: end}, nil
}

// DayWindowOf returns the window for the calendar day containing t in loc.
func DayWindowOf(t time.Time, loc *time.Location) DayWindow {
	if loc == nil {
		loc = time.UTC
	}
	w, _ := NewDayWindow(t.In(loc).Format(DateLayout), loc)
	return w
}

func (w DayWindow) Date() string     { return w.date }
func (w DayWindow) Start() time.Time { return w.start }
func (w DayWindow) End() time.Time   { return w.end }
func (w DayWindow) IsZero() bool     { return w.date == "" }

// Contains reports whether t falls inside the window, both ends inclusive.
func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.start) && !t.After(w.end)
}

func (w DayWindow) String() string { return w.date }

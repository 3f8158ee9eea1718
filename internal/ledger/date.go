package ledger

import (
	"fmt"
	"strconv"
	"time"
)

const (
	minEntryYear = 2020
	maxEntryYear = 2050
)

// DateError describes why a bank date code could not be used.
type DateError struct {
	Raw    int64
	Reason string
}

func (e *DateError) Error() string {
	return fmt.Sprintf("invalid bank date %d: %s", e.Raw, e.Reason)
}

// StableDateCode renders a raw DDMMYYYY code with its leading zero restored.
// It is only used in identifiers, never sent to the bank.
func StableDateCode(raw int64) string {
	if raw < 0 {
		raw = 0
	}
	return fmt.Sprintf("%08d", raw)
}

// ParseBankDate decodes the extract's DDMMYYYY integer. Codes that lost
// their leading zero (7 digits) are repaired first.
func ParseBankDate(raw int64, loc *time.Location) (time.Time, error) {
	if raw <= 0 {
		return time.Time{}, &DateError{Raw: raw, Reason: "missing"}
	}

	s := strconv.FormatInt(raw, 10)
	switch len(s) {
	case 7:
		s = "0" + s
	case 8:
	default:
		return time.Time{}, &DateError{Raw: raw, Reason: fmt.Sprintf("expected 7 or 8 digits, got %d", len(s))}
	}

	day, _ := strconv.Atoi(s[0:2])
	month, _ := strconv.Atoi(s[2:4])
	year, _ := strconv.Atoi(s[4:8])

	switch {
	case day < 1 || day > 31:
		return time.Time{}, &DateError{Raw: raw, Reason: fmt.Sprintf("day %d out of range", day)}
	case month < 1 || month > 12:
		return time.Time{}, &DateError{Raw: raw, Reason: fmt.Sprintf("month %d out of range", month)}
	case year < minEntryYear || year > maxEntryYear:
		return time.Time{}, &DateError{Raw: raw, Reason: fmt.Sprintf("year %d out of range", year)}
	}

	if loc == nil {
		loc = time.UTC
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day {
		return time.Time{}, &DateError{Raw: raw, Reason: "day does not exist in month"}
	}
	return t, nil
}

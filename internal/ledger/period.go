package ledger

import (
	"fmt"
	"time"

	"github.com/GregMSThompson/wallet-sync/internal/dto"
)

// DefaultMaxYear bounds the clock; anything later is treated as a broken clock.
const DefaultMaxYear = 2030

// ResolvePeriod picks the extract range. A wallet without stored
// transactions gets the whole current month up to today; otherwise only
// today is requested. The end of the range is never after today.
func ResolvePeriod(hasTransactions bool, now time.Time, maxYear int) dto.SyncPeriod {
	now = SaneNow(now, maxYear)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if hasTransactions {
		return dto.SyncPeriod{Start: today, End: today, Incremental: true}
	}

	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	end := start.AddDate(0, 1, -1)
	if end.After(today) {
		end = today
	}
	return dto.SyncPeriod{Start: start, End: end}
}

// SaneNow replaces a clock year beyond maxYear with maxYear, keeping month
// and day. maxYear <= 0 disables the check.
func SaneNow(now time.Time, maxYear int) time.Time {
	if maxYear <= 0 || now.Year() <= maxYear {
		return now
	}
	return time.Date(maxYear, now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())
}

// EncodeBankDate renders a date the way the extract API expects it:
// day without padding, two-digit month, four-digit year ("1032024").
func EncodeBankDate(t time.Time) string {
	return fmt.Sprintf("%d%02d%04d", t.Day(), int(t.Month()), t.Year())
}

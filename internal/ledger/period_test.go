package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePeriod(t *testing.T) {
	tests := []struct {
		name        string
		has         bool
		now         time.Time
		start, end  time.Time
		incremental bool
	}{
		{"first sync mid month", false, time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC), day(2024, 3, 1), day(2024, 3, 15), false},
		{"first sync last day", false, time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC), day(2024, 2, 1), day(2024, 2, 29), false},
		{"first sync first day", false, time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC), day(2024, 7, 1), day(2024, 7, 1), false},
		{"incremental", true, time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC), day(2024, 3, 15), day(2024, 3, 15), true},
		{"broken clock", false, time.Date(2099, 6, 10, 12, 0, 0, 0, time.UTC), day(2030, 6, 1), day(2030, 6, 10), false},
		{"broken clock incremental", true, time.Date(2099, 6, 10, 12, 0, 0, 0, time.UTC), day(2030, 6, 10), day(2030, 6, 10), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ResolvePeriod(tt.has, tt.now, DefaultMaxYear)
			assert.True(t, tt.start.Equal(p.Start), "start %s", p.Start)
			assert.True(t, tt.end.Equal(p.End), "end %s", p.End)
			assert.Equal(t, tt.incremental, p.Incremental)
		})
	}
}

func TestResolvePeriod_FirstSyncEncoding(t *testing.T) {
	p := ResolvePeriod(false, time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), DefaultMaxYear)
	assert.Equal(t, "1032024", EncodeBankDate(p.Start))
	assert.Equal(t, "15032024", EncodeBankDate(p.End))
}

func TestResolvePeriod_NeverInFuture(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	for now := time.Date(2024, 1, 1, 23, 0, 0, 0, loc); now.Year() == 2024; now = now.AddDate(0, 0, 1) {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		for _, has := range []bool{true, false} {
			p := ResolvePeriod(has, now, DefaultMaxYear)
			require.Falsef(t, p.End.After(today), "end %s after today %s", p.End, today)
			require.Falsef(t, p.Start.After(p.End), "start %s after end %s", p.Start, p.End)
			require.Equal(t, now.Month(), p.Start.Month())
		}
	}
}

func TestSaneNow(t *testing.T) {
	now := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now, SaneNow(now, DefaultMaxYear))

	far := time.Date(2101, 5, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 2030, SaneNow(far, DefaultMaxYear).Year())
	assert.Equal(t, far, SaneNow(far, 0))
}

func TestEncodeBankDate(t *testing.T) {
	tests := map[string]time.Time{
		"1032024":  day(2024, 3, 1),
		"15032024": day(2024, 3, 15),
		"5122024":  day(2024, 12, 5),
		"31122030": day(2030, 12, 31),
	}
	for want, in := range tests {
		assert.Equal(t, want, EncodeBankDate(in))
	}
}

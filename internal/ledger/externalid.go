package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/GregMSThompson/wallet-sync/internal/dto"
)

// ExternalID derives the dedup key of a bank row:
//
//	{walletId}_{DDMMYYYY}_{document|0}_{lot|0}_{hash}
//
// The hash covers description, complement and the raw amount literal, so
// the same row always yields the same key across syncs.
func ExternalID(walletID string, e dto.BBLedgerEntry) string {
	h := sha256.Sum256([]byte(e.HistoricalText + "\x00" + e.ComplementText + "\x00" + e.Value.String()))

	return strings.Join([]string{
		walletID,
		StableDateCode(e.EntryDate),
		numberOrZero(e.DocumentNumber),
		numberOrZero(e.LotNumber),
		hex.EncodeToString(h[:12]),
	}, "_")
}

func numberOrZero(n int64) string {
	if n <= 0 {
		return "0"
	}
	return strconv.FormatInt(n, 10)
}

package dto

import (
	"time"

	"github.com/GregMSThompson/wallet-sync/internal/models"
)

// TransactionListParams is the raw filter of a transaction listing. Dates
// are inclusive and formatted YYYY-MM-DD in the service time zone.
type TransactionListParams struct {
	DateFrom string
	DateTo   string
	Type     string
	Order    string // "asc" or "desc"
	Limit    int
}

// TransactionQuery is the validated form of TransactionListParams handed to
// the store. To is exclusive.
type TransactionQuery struct {
	WalletID string
	From     *time.Time
	To       *time.Time
	Type     *string
	Desc     bool
	Limit    int
}

type TransactionListResult struct {
	WalletID     string                `json:"walletId"`
	From         string                `json:"from,omitempty"`
	To           string                `json:"to,omitempty"`
	Count        int                   `json:"count"`
	Total        float64               `json:"total"`
	Transactions []*models.Transaction `json:"transactions"`
}

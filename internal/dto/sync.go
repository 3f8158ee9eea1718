package dto

import (
	"net/http"
	"time"

	"github.com/GregMSThompson/wallet-sync/internal/models"
)

// BankCredentials is resolved fresh for each sync and never persisted.
type BankCredentials struct {
	Environment    string
	OAuthURL       string
	APIBaseURL     string
	ApplicationKey string
	ClientBasic    string // base64("clientId:clientSecret")
	ClientID       string
	ClientSecret   string
	Agency         string
	Account        string
	CertPath       string
	KeyPath        string
	CAPath         string
}

// BankAuth is an authenticated session against the bank API.
type BankAuth struct {
	AccessToken string
	Expiry      time.Time
	Credentials BankCredentials
	HTTPClient  *http.Client
}

// SyncPeriod is an inclusive date range; Start and End are encoded with
// ledger.EncodeBankDate before hitting the bank.
type SyncPeriod struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Incremental bool      `json:"incremental"`
}

// SyncWarning records a row that was degraded rather than dropped.
type SyncWarning struct {
	Index  int    `json:"index"`
	Field  string `json:"field"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

// SyncResult is what the sync service hands back to its callers.
type SyncResult struct {
	Wallet            *models.Wallet `json:"wallet"`
	Period            SyncPeriod     `json:"period"`
	TransactionCount  int            `json:"transactionCount"`
	Balance           float64        `json:"balance"`
	BalanceSource     string         `json:"balanceSource"` // "endpoint", "extract", "unchanged"
	TotalRecords      int            `json:"totalRegistros"`
	SkippedMarkers    int            `json:"skippedMarkers"`
	SkippedDuplicates int            `json:"skippedDuplicates"`
	SkippedInvalid    int            `json:"skippedInvalid"`
	Warnings          []SyncWarning  `json:"warnings,omitempty"`
}

// SyncResponse is the HTTP body of POST /wallets/{walletId}/sync.
type SyncResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Wallet  *models.Wallet `json:"wallet"`
	Data    SyncData       `json:"data"`
}

type SyncData struct {
	TransactionCount int           `json:"transactionCount"`
	Balance          float64       `json:"balance"`
	TotalRecords     int           `json:"totalRegistros"`
	Warnings         []SyncWarning `json:"warnings,omitempty"`
}

package handlers

import (
	"log/slog"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/wallet-sync/internal/response"
)

type Deps struct {
	ProjectID       string
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	WalletSvc       walletService
	SyncSvc         syncService
	TransactionSvc  transactionService
	Firebase        *auth.Client
}

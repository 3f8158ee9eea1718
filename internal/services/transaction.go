package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/wallet-sync/internal/dto"
	"github.com/GregMSThompson/wallet-sync/internal/errs"
	"github.com/GregMSThompson/wallet-sync/internal/models"
	"github.com/GregMSThompson/wallet-sync/pkg/helpers"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
	listDateLayout   = "2006-01-02"
)

type walletTSStore interface {
	Get(ctx context.Context, uid, walletID string) (*models.Wallet, error)
}

type transactionTSStore interface {
	Query(ctx context.Context, uid string, q dto.TransactionQuery, handle func(*models.Transaction) error) error
}

type transactionService struct {
	wallets  walletTSStore
	txs      transactionTSStore
	location *time.Location
}

func NewTransactionService(wallets walletTSStore, txs transactionTSStore, location *time.Location) *transactionService {
	if location == nil {
		location = time.UTC
	}
	return &transactionService{wallets: wallets, txs: txs, location: location}
}

// ListTransactions returns the stored transactions of a wallet together with
// their signed total.
func (s *transactionService) ListTransactions(ctx context.Context, uid, walletID string, p dto.TransactionListParams) (dto.TransactionListResult, error) {
	q, err := s.buildQuery(walletID, p)
	if err != nil {
		return dto.TransactionListResult{}, err
	}
	if _, err := s.wallets.Get(ctx, uid, walletID); err != nil {
		return dto.TransactionListResult{}, err
	}

	result := dto.TransactionListResult{
		WalletID:     walletID,
		From:         p.DateFrom,
		To:           p.DateTo,
		Transactions: []*models.Transaction{},
	}
	total := decimal.Zero
	err = s.txs.Query(ctx, uid, q, func(tx *models.Transaction) error {
		result.Transactions = append(result.Transactions, tx)
		total = total.Add(decimal.NewFromFloat(tx.Amount))
		return nil
	})
	if err != nil {
		return dto.TransactionListResult{}, err
	}

	result.Count = len(result.Transactions)
	result.Total = total.InexactFloat64()
	return result, nil
}

func (s *transactionService) buildQuery(walletID string, p dto.TransactionListParams) (dto.TransactionQuery, error) {
	q := dto.TransactionQuery{WalletID: walletID, Limit: p.Limit}

	if p.DateFrom != "" {
		from, err := time.ParseInLocation(listDateLayout, p.DateFrom, s.location)
		if err != nil {
			return q, errs.NewValidationError("invalid from date, expected YYYY-MM-DD")
		}
		q.From = &from
	}
	if p.DateTo != "" {
		to, err := time.ParseInLocation(listDateLayout, p.DateTo, s.location)
		if err != nil {
			return q, errs.NewValidationError("invalid to date, expected YYYY-MM-DD")
		}
		end := to.AddDate(0, 0, 1)
		q.To = &end
	}
	if q.From != nil && q.To != nil && !q.From.Before(*q.To) {
		return q, errs.NewValidationError("from date must not be after to date")
	}

	if p.Type != "" {
		t := strings.ToUpper(p.Type)
		switch models.TransactionType(t) {
		case models.TransactionTypeDeposit, models.TransactionTypeExpense, models.TransactionTypeInvestment:
			q.Type = helpers.Ptr(t)
		default:
			return q, errs.NewValidationError("unknown transaction type: " + p.Type)
		}
	}

	switch strings.ToLower(p.Order) {
	case "", "desc":
		q.Desc = true
	case "asc":
	default:
		return q, errs.NewValidationError("order must be asc or desc")
	}

	switch {
	case q.Limit <= 0:
		q.Limit = defaultListLimit
	case q.Limit > maxListLimit:
		q.Limit = maxListLimit
	}
	return q, nil
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GregMSThompson/wallet-sync/internal/dto"
	"github.com/GregMSThompson/wallet-sync/internal/errs"
	"github.com/GregMSThompson/wallet-sync/internal/models"
	"github.com/GregMSThompson/wallet-sync/pkg/helpers"
)

type txFakeQueryStore struct {
	txs     []*models.Transaction
	err     error
	queries []dto.TransactionQuery
}

func (f *txFakeQueryStore) Query(ctx context.Context, uid string, q dto.TransactionQuery, handle func(*models.Transaction) error) error {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return f.err
	}
	for _, tx := range f.txs {
		if err := handle(tx); err != nil {
			return err
		}
	}
	return nil
}

func TestTransactionServiceList(t *testing.T) {
	wallets := &walletFakeStore{list: []*models.Wallet{{WalletID: "w1"}}}
	txs := &txFakeQueryStore{txs: []*models.Transaction{
		{TransactionID: "a", Amount: 0.1},
		{TransactionID: "b", Amount: 0.2},
		{TransactionID: "c", Amount: -150.5},
	}}
	svc := NewTransactionService(wallets, txs, brt)

	res, err := svc.ListTransactions(helpers.TestCtx(), "uid-1", "w1", dto.TransactionListParams{
		DateFrom: "2024-03-01",
		DateTo:   "2024-03-31",
		Type:     "expense",
		Order:    "asc",
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("ListTransactions returned error: %v", err)
	}
	if res.Count != 3 || res.Total != -150.2 || res.WalletID != "w1" {
		t.Fatalf("unexpected result: %+v", res)
	}

	if len(txs.queries) != 1 {
		t.Fatalf("expected one query, got %d", len(txs.queries))
	}
	q := txs.queries[0]
	wantFrom := time.Date(2024, 3, 1, 0, 0, 0, 0, brt)
	wantTo := time.Date(2024, 4, 1, 0, 0, 0, 0, brt)
	if q.WalletID != "w1" || !q.From.Equal(wantFrom) || !q.To.Equal(wantTo) {
		t.Fatalf("unexpected range: %+v", q)
	}
	if q.Type == nil || *q.Type != "EXPENSE" || q.Desc || q.Limit != 10 {
		t.Fatalf("unexpected filters: %+v", q)
	}
}

func TestTransactionServiceDefaults(t *testing.T) {
	wallets := &walletFakeStore{list: []*models.Wallet{{WalletID: "w1"}}}
	txs := &txFakeQueryStore{}
	svc := NewTransactionService(wallets, txs, brt)

	res, err := svc.ListTransactions(helpers.TestCtx(), "uid-1", "w1", dto.TransactionListParams{Limit: 10000})
	if err != nil {
		t.Fatalf("ListTransactions returned error: %v", err)
	}
	if res.Transactions == nil || res.Count != 0 {
		t.Fatalf("expected empty non-nil list, got %+v", res)
	}
	q := txs.queries[0]
	if q.From != nil || q.To != nil || q.Type != nil || !q.Desc || q.Limit != maxListLimit {
		t.Fatalf("unexpected defaults: %+v", q)
	}
}

func TestTransactionServiceValidation(t *testing.T) {
	tests := []struct {
		name string
		p    dto.TransactionListParams
	}{
		{"bad from", dto.TransactionListParams{DateFrom: "01/03/2024"}},
		{"bad to", dto.TransactionListParams{DateTo: "2024-13-01"}},
		{"reversed range", dto.TransactionListParams{DateFrom: "2024-03-10", DateTo: "2024-03-01"}},
		{"unknown type", dto.TransactionListParams{Type: "refund"}},
		{"bad order", dto.TransactionListParams{Order: "newest"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			txs := &txFakeQueryStore{}
			svc := NewTransactionService(&walletFakeStore{list: []*models.Wallet{{WalletID: "w1"}}}, txs, brt)

			_, err := svc.ListTransactions(helpers.TestCtx(), "uid-1", "w1", tc.p)
			var e *errs.ValidationError
			if !errors.As(err, &e) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(txs.queries) != 0 {
				t.Fatalf("store queried on invalid input")
			}
		})
	}
}

func TestTransactionServiceWalletNotFound(t *testing.T) {
	txs := &txFakeQueryStore{}
	svc := NewTransactionService(&walletFakeStore{}, txs, brt)

	_, err := svc.ListTransactions(helpers.TestCtx(), "uid-1", "missing", dto.TransactionListParams{})
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if len(txs.queries) != 0 {
		t.Fatalf("store queried for a missing wallet")
	}
}

func TestTransactionServiceStoreError(t *testing.T) {
	txs := &txFakeQueryStore{err: errs.NewDatabaseError("query_transactions", "failed to list transactions", errors.New("boom"))}
	svc := NewTransactionService(&walletFakeStore{list: []*models.Wallet{{WalletID: "w1"}}}, txs, brt)

	_, err := svc.ListTransactions(helpers.TestCtx(), "uid-1", "w1", dto.TransactionListParams{})
	var e *errs.DatabaseError
	if !errors.As(err, &e) {
		t.Fatalf("expected DatabaseError, got %v", err)
	}
}

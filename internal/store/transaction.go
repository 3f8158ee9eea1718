package store

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/wallet-sync/internal/dto"
	"github.com/GregMSThompson/wallet-sync/internal/errs"
	"github.com/GregMSThompson/wallet-sync/internal/models"
)

// Existence checks are batched in GetAll calls of this size.
const getAllChunk = 300

type transactionStore struct {
	client *firestore.Client
}

func NewTransactionStore(client *firestore.Client) *transactionStore {
	return &transactionStore{client: client}
}

func (s *transactionStore) txCollection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("transactions")
}

// HasTransactions reports whether the wallet has at least one stored transaction.
func (s *transactionStore) HasTransactions(ctx context.Context, uid, walletID string) (bool, error) {
	docs, err := s.txCollection(uid).Where("walletId", "==", walletID).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return false, errs.NewDatabaseError("has_transactions", "failed to query transactions", err)
	}
	return len(docs) > 0, nil
}

// ExistingExternalIDs returns the subset of ids that already have a document.
func (s *transactionStore) ExistingExternalIDs(ctx context.Context, uid string, ids []string) (map[string]bool, error) {
	found := make(map[string]bool)
	for start := 0; start < len(ids); start += getAllChunk {
		end := min(start+getAllChunk, len(ids))
		refs := make([]*firestore.DocumentRef, 0, end-start)
		for _, id := range ids[start:end] {
			refs = append(refs, s.txCollection(uid).Doc(id))
		}
		snaps, err := s.client.GetAll(ctx, refs)
		if err != nil {
			return nil, errs.NewDatabaseError("existing_external_ids", "failed to check existing transactions", err)
		}
		for _, snap := range snaps {
			if snap.Exists() {
				found[snap.Ref.ID] = true
			}
		}
	}
	return found, nil
}

// CommitSync creates the transactions that do not exist yet and applies the
// wallet update in one Firestore transaction. Nothing is written when any
// step fails. It returns the number of documents created.
func (s *transactionStore) CommitSync(ctx context.Context, uid, walletID string, txs []models.Transaction, update models.WalletSyncUpdate) (int, error) {
	walletRef := walletCollection(s.client, uid).Doc(walletID)
	refs := make([]*firestore.DocumentRef, 0, len(txs)+1)
	refs = append(refs, walletRef)
	for _, t := range txs {
		refs = append(refs, s.txCollection(uid).Doc(t.ExternalID))
	}

	var inserted int
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		inserted = 0

		snaps, err := tx.GetAll(refs)
		if err != nil {
			return err
		}
		if !snaps[0].Exists() {
			return errs.NewNotFoundError("wallet not found")
		}

		for i, snap := range snaps[1:] {
			if snap.Exists() {
				continue
			}
			if err := tx.Create(refs[i+1], txs[i]); err != nil {
				return err
			}
			inserted++
		}

		updates := []firestore.Update{
			{Path: "metadata.lastSync", Value: update.SyncedAt},
			{Path: "metadata.lastSyncStatus", Value: update.Status},
			{Path: "metadata.lastSyncCount", Value: inserted},
			{Path: "updatedAt", Value: update.SyncedAt},
		}
		if update.Balance != nil {
			updates = append(updates, firestore.Update{Path: "balance", Value: *update.Balance})
		}
		return tx.Update(walletRef, updates)
	}, firestore.MaxAttempts(1))
	if err != nil {
		return 0, commitError(err)
	}
	return inserted, nil
}

func commitError(err error) error {
	var nf *errs.NotFoundError
	if errors.As(err, &nf) {
		return nf
	}
	if status.Code(err) == codes.NotFound {
		return errs.NewNotFoundError("wallet not found")
	}
	return errs.NewDatabaseError("commit_sync", "failed to persist sync", err)
}

// Query streams the transactions of one wallet ordered by date. handle is
// called once per document; returning an error stops the iteration.
func (s *transactionStore) Query(ctx context.Context, uid string, q dto.TransactionQuery, handle func(*models.Transaction) error) error {
	query := s.txCollection(uid).Where("walletId", "==", q.WalletID)
	if q.From != nil {
		query = query.Where("date", ">=", *q.From)
	}
	if q.To != nil {
		query = query.Where("date", "<", *q.To)
	}
	if q.Type != nil {
		query = query.Where("type", "==", *q.Type)
	}
	dir := firestore.Asc
	if q.Desc {
		dir = firestore.Desc
	}
	query = query.OrderBy("date", dir)
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return errs.NewDatabaseError("query_transactions", "failed to list transactions", err)
		}
		var tx models.Transaction
		if err := doc.DataTo(&tx); err != nil {
			return errs.NewDatabaseError("decode_transaction", "failed to decode transaction", err)
		}
		if err := handle(&tx); err != nil {
			return err
		}
	}
}

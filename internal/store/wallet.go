package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/wallet-sync/internal/errs"
	"github.com/GregMSThompson/wallet-sync/internal/models"
)

type walletStore struct {
	client *firestore.Client
}

func NewWalletStore(client *firestore.Client) *walletStore {
	return &walletStore{client: client}
}

func walletCollection(client *firestore.Client, uid string) *firestore.CollectionRef {
	return client.Collection("users").Doc(uid).Collection("wallets")
}

func (s *walletStore) Create(ctx context.Context, uid string, w *models.Wallet) error {
	now := time.Now()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
	w.UserID = uid

	ref := walletCollection(s.client, uid).NewDoc()
	if w.WalletID != "" {
		ref = walletCollection(s.client, uid).Doc(w.WalletID)
	}
	w.WalletID = ref.ID

	if _, err := ref.Set(ctx, w); err != nil {
		return errs.NewDatabaseError("create_wallet", "failed to save wallet", err)
	}
	return nil
}

func (s *walletStore) Get(ctx context.Context, uid, walletID string) (*models.Wallet, error) {
	doc, err := walletCollection(s.client, uid).Doc(walletID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, errs.NewNotFoundError("wallet not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("get_wallet", "failed to load wallet", err)
	}
	return walletFromDoc(uid, doc)
}

func (s *walletStore) List(ctx context.Context, uid string) ([]*models.Wallet, error) {
	docs, err := walletCollection(s.client, uid).OrderBy("name", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("list_wallets", "failed to list wallets", err)
	}
	wallets := make([]*models.Wallet, 0, len(docs))
	for _, d := range docs {
		w, err := walletFromDoc(uid, d)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, nil
}

func walletFromDoc(uid string, doc *firestore.DocumentSnapshot) (*models.Wallet, error) {
	var w models.Wallet
	if err := doc.DataTo(&w); err != nil {
		return nil, errs.NewDatabaseError("decode_wallet", "failed to decode wallet", err)
	}
	w.WalletID = doc.Ref.ID
	if w.UserID == "" {
		w.UserID = uid
	}
	return &w, nil
}

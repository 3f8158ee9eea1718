package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/GregMSThompson/wallet-sync/internal/dto"
	"github.com/GregMSThompson/wallet-sync/internal/errs"
	"github.com/GregMSThompson/wallet-sync/internal/models"
	"github.com/GregMSThompson/wallet-sync/pkg/helpers"
)

type walletFakeStore struct {
	created   []*models.Wallet
	list      []*models.Wallet
	createErr error
}

func (f *walletFakeStore) Create(ctx context.Context, uid string, w *models.Wallet) error {
	if f.createErr != nil {
		return f.createErr
	}
	w.UserID = uid
	f.created = append(f.created, w)
	return nil
}

func (f *walletFakeStore) Get(ctx context.Context, uid, walletID string) (*models.Wallet, error) {
	for _, w := range f.list {
		if w.WalletID == walletID {
			return w, nil
		}
	}
	return nil, errs.NewNotFoundError("wallet not found")
}

func (f *walletFakeStore) List(ctx context.Context, uid string) ([]*models.Wallet, error) {
	return f.list, nil
}

type walletFakeEncrypter struct {
	err error
}

func (f *walletFakeEncrypter) Encrypt(ctx context.Context, plaintext string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "enc:" + plaintext, nil
}

type walletFakeSecrets struct {
	put map[string]string
}

func (f *walletFakeSecrets) Put(ctx context.Context, secretID, value string) error {
	if f.put == nil {
		f.put = map[string]string{}
	}
	f.put[secretID] = value
	return nil
}

func linkRequest() dto.LinkWalletRequest {
	return dto.LinkWalletRequest{
		WalletID:       "w1",
		Name:           " Conta BB ",
		Environment:    "sandbox",
		Agency:         "1234",
		Account:        "98765",
		ApplicationKey: "app-key",
		ClientBasic:    "YmFzaWM=",
	}
}

func TestWalletServiceLinkBankWallet(t *testing.T) {
	store := &walletFakeStore{}
	secrets := &walletFakeSecrets{}
	svc := NewWalletService(store, &walletFakeEncrypter{}, secrets)
	svc.clockNow = func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) }

	w, err := svc.LinkBankWallet(helpers.TestCtx(), "uid-1", linkRequest())
	if err != nil {
		t.Fatalf("LinkBankWallet returned error: %v", err)
	}
	if len(store.created) != 1 || store.created[0] != w {
		t.Fatalf("expected wallet to be created once, got %#v", store.created)
	}
	if w.Name != "Conta BB" || w.Type != models.WalletTypeBankIntegration || w.BankID != BankBB {
		t.Fatalf("unexpected wallet: %#v", w)
	}

	want := &models.IntegrationHandle{
		Environment:         "sandbox",
		ApplicationKey:      "enc:app-key",
		ClientBasicSecretID: "bb-basic-uid-1-w1",
		Agency:              "1234",
		Account:             "98765",
	}
	if !reflect.DeepEqual(w.Metadata.Integration, want) {
		t.Fatalf("Integration = %#v, want %#v", w.Metadata.Integration, want)
	}
	if !reflect.DeepEqual(secrets.put, map[string]string{"bb-basic-uid-1-w1": "YmFzaWM="}) {
		t.Fatalf("unexpected secrets: %#v", secrets.put)
	}
}

func TestWalletServiceLinkGeneratesID(t *testing.T) {
	svc := NewWalletService(&walletFakeStore{}, &walletFakeEncrypter{}, &walletFakeSecrets{})
	svc.newID = func() string { return "generated" }
	req := linkRequest()
	req.WalletID = ""

	w, err := svc.LinkBankWallet(helpers.TestCtx(), "uid-1", req)
	if err != nil {
		t.Fatalf("LinkBankWallet returned error: %v", err)
	}
	if w.WalletID != "generated" || w.Metadata.Integration.ClientBasicSecretID != "bb-basic-uid-1-generated" {
		t.Fatalf("unexpected ids: %s %s", w.WalletID, w.Metadata.Integration.ClientBasicSecretID)
	}
}

func TestWalletServiceLinkValidation(t *testing.T) {
	store := &walletFakeStore{}
	secrets := &walletFakeSecrets{}
	svc := NewWalletService(store, &walletFakeEncrypter{}, secrets)
	req := linkRequest()
	req.ClientBasic = ""
	req.ClientID = "client-1"
	req.Agency = ""

	_, err := svc.LinkBankWallet(helpers.TestCtx(), "uid-1", req)
	var e *errs.ValidationError
	if !errors.As(err, &e) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if e.Message != "missing required fields: agency, clientBasic" {
		t.Fatalf("unexpected message: %s", e.Message)
	}
	if len(store.created) != 0 || len(secrets.put) != 0 {
		t.Fatalf("expected no writes on invalid request")
	}
}

func TestWalletServiceLinkEncryptFailure(t *testing.T) {
	store := &walletFakeStore{}
	secrets := &walletFakeSecrets{}
	svc := NewWalletService(store, &walletFakeEncrypter{err: errs.NewEncryptionError("failed to encrypt", nil)}, secrets)

	_, err := svc.LinkBankWallet(helpers.TestCtx(), "uid-1", linkRequest())
	var e *errs.EncryptionError
	if !errors.As(err, &e) {
		t.Fatalf("expected EncryptionError, got %v", err)
	}
	if len(store.created) != 0 || len(secrets.put) != 0 {
		t.Fatalf("expected no writes after encryption failure")
	}
}

func TestWalletServiceGetWallet(t *testing.T) {
	store := &walletFakeStore{list: []*models.Wallet{{WalletID: "w1"}, {WalletID: "w2"}}}
	svc := NewWalletService(store, &walletFakeEncrypter{}, &walletFakeSecrets{})

	got, err := svc.GetWallet(helpers.TestCtx(), "uid-1", "w2")
	if err != nil || got.WalletID != "w2" {
		t.Fatalf("GetWallet = %#v, %v", got, err)
	}
	if _, err := svc.GetWallet(helpers.TestCtx(), "uid-1", "nope"); err == nil {
		t.Fatalf("expected not found")
	}
	all, err := svc.ListWallets(helpers.TestCtx(), "uid-1")
	if err != nil || len(all) != 2 {
		t.Fatalf("ListWallets = %d wallets, %v", len(all), err)
	}
}

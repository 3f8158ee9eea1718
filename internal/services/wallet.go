package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/wallet-sync/internal/dto"
	"github.com/GregMSThompson/wallet-sync/internal/errs"
	"github.com/GregMSThompson/wallet-sync/internal/models"
	"github.com/GregMSThompson/wallet-sync/pkg/logger"
)

// BankBB is the bankId of Banco do Brasil wallets.
const BankBB = "bb"

type walletWSStore interface {
	Create(ctx context.Context, uid string, w *models.Wallet) error
	Get(ctx context.Context, uid, walletID string) (*models.Wallet, error)
	List(ctx context.Context, uid string) ([]*models.Wallet, error)
}

type credentialEncrypter interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
}

type secretWriter interface {
	Put(ctx context.Context, secretID, value string) error
}

type walletService struct {
	wallets   walletWSStore
	encrypter credentialEncrypter
	secrets   secretWriter
	clockNow  func() time.Time
	newID     func() string
}

func NewWalletService(wallets walletWSStore, encrypter credentialEncrypter, secrets secretWriter) *walletService {
	return &walletService{
		wallets:   wallets,
		encrypter: encrypter,
		secrets:   secrets,
		clockNow:  time.Now,
		newID:     uuid.NewString,
	}
}

func (s *walletService) ListWallets(ctx context.Context, uid string) ([]*models.Wallet, error) {
	return s.wallets.List(ctx, uid)
}

func (s *walletService) GetWallet(ctx context.Context, uid, walletID string) (*models.Wallet, error) {
	return s.wallets.Get(ctx, uid, walletID)
}

// LinkBankWallet creates a Banco do Brasil wallet. The application key is
// stored as KMS ciphertext and the client secrets go to Secret Manager.
func (s *walletService) LinkBankWallet(ctx context.Context, uid string, req dto.LinkWalletRequest) (*models.Wallet, error) {
	if err := validateLink(req); err != nil {
		return nil, err
	}

	w := &models.Wallet{
		WalletID:  req.WalletID,
		Name:      strings.TrimSpace(req.Name),
		Type:      models.WalletTypeBankIntegration,
		BankID:    BankBB,
		CreatedAt: s.clockNow(),
	}
	if w.WalletID == "" {
		w.WalletID = s.newID()
	}

	appKey, err := s.encrypter.Encrypt(ctx, req.ApplicationKey)
	if err != nil {
		return nil, err
	}
	handle := &models.IntegrationHandle{
		Environment:    req.Environment,
		ApplicationKey: appKey,
		ClientID:       req.ClientID,
		Agency:         req.Agency,
		Account:        req.Account,
		CertPath:       req.CertPath,
		KeyPath:        req.KeyPath,
		CAPath:         req.CAPath,
	}

	if req.ClientBasic != "" {
		handle.ClientBasicSecretID = bankSecretID(uid, w.WalletID, "basic")
		if err := s.secrets.Put(ctx, handle.ClientBasicSecretID, req.ClientBasic); err != nil {
			return nil, err
		}
	}
	if req.ClientSecret != "" {
		handle.ClientSecretSecretID = bankSecretID(uid, w.WalletID, "secret")
		if err := s.secrets.Put(ctx, handle.ClientSecretSecretID, req.ClientSecret); err != nil {
			return nil, err
		}
	}
	w.Metadata.Integration = handle

	if err := s.wallets.Create(ctx, uid, w); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("bank wallet linked", "wallet_id", w.WalletID, "environment", req.Environment)
	return w, nil
}

// bankSecretID names the Secret Manager secret holding one credential of a wallet.
func bankSecretID(uid, walletID, field string) string {
	return fmt.Sprintf("bb-%s-%s-%s", field, uid, walletID)
}

func validateLink(req dto.LinkWalletRequest) error {
	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if req.Agency == "" {
		missing = append(missing, "agency")
	}
	if req.Account == "" {
		missing = append(missing, "account")
	}
	if req.ApplicationKey == "" {
		missing = append(missing, "applicationKey")
	}
	if req.ClientBasic == "" && (req.ClientID == "" || req.ClientSecret == "") {
		missing = append(missing, "clientBasic")
	}
	if len(missing) > 0 {
		return errs.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

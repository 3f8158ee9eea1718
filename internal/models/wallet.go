package models

import (
	"time"
)

type WalletType string

const (
	WalletTypeBankIntegration WalletType = "BANK_INTEGRATION"
	WalletTypeManual          WalletType = "MANUAL"
)

const SyncStatusSuccess = "success"

type Wallet struct {
	WalletID  string         `firestore:"walletId" json:"walletId"`
	UserID    string         `firestore:"userId" json:"userId"`
	Name      string         `firestore:"name" json:"name"`
	Balance   float64        `firestore:"balance" json:"balance"`
	Type      WalletType     `firestore:"type" json:"type"`
	BankID    string         `firestore:"bankId" json:"bankId,omitempty"` // e.g. "bb"
	Metadata  WalletMetadata `firestore:"metadata" json:"metadata"`
	CreatedAt time.Time      `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time      `firestore:"updatedAt" json:"updatedAt"`
}

// WalletMetadata is the sync bookkeeping plus the handle to the bank credentials.
type WalletMetadata struct {
	LastSync       *time.Time         `firestore:"lastSync,omitempty" json:"lastSync,omitempty"`
	LastSyncStatus string             `firestore:"lastSyncStatus,omitempty" json:"lastSyncStatus,omitempty"`
	LastSyncCount  int                `firestore:"lastSyncCount" json:"lastSyncCount"`
	Integration    *IntegrationHandle `firestore:"integration,omitempty" json:"-"`
}

// IntegrationHandle points at the credentials of a linked bank account.
// ApplicationKey is KMS ciphertext; the client secrets live in Secret Manager
// and only their secret IDs are stored here.
type IntegrationHandle struct {
	Environment          string `firestore:"environment,omitempty"` // "sandbox" or "production"
	APIBaseURL           string `firestore:"apiBaseUrl,omitempty"`
	ApplicationKey       string `firestore:"applicationKey,omitempty"`
	ClientID             string `firestore:"clientId,omitempty"`
	ClientBasicSecretID  string `firestore:"clientBasicSecretId,omitempty"`
	ClientSecretSecretID string `firestore:"clientSecretSecretId,omitempty"`
	Agency               string `firestore:"agency,omitempty"`
	Account              string `firestore:"account,omitempty"`
	CertPath             string `firestore:"certPath,omitempty"`
	KeyPath              string `firestore:"keyPath,omitempty"`
	CAPath               string `firestore:"caPath,omitempty"`
}

// WalletSyncUpdate is what a successful sync writes back to the wallet.
// A nil Balance leaves the stored balance untouched.
type WalletSyncUpdate struct {
	Balance  *float64
	SyncedAt time.Time
	Status   string
}

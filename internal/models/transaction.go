package models

import (
	"time"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeExpense    TransactionType = "EXPENSE"
	TransactionTypeInvestment TransactionType = "INVESTMENT"
)

type PaymentMethod string

const (
	PaymentMethodPix          PaymentMethod = "PIX"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentMethodBoleto       PaymentMethod = "BOLETO"
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// Transaction is an immutable ledger entry. TransactionID is the Firestore
// doc ID and equals ExternalID for bank-imported rows.
type Transaction struct {
	TransactionID string              `firestore:"transactionId" json:"transactionId"`
	WalletID      string              `firestore:"walletId" json:"walletId"`
	UserID        string              `firestore:"userId" json:"userId"`
	Name          string              `firestore:"name" json:"name"`
	Amount        float64             `firestore:"amount" json:"amount"` // negative = outflow
	Date          time.Time           `firestore:"date" json:"date"`
	Type          TransactionType     `firestore:"type" json:"type"`
	Category      string              `firestore:"category" json:"category"`
	PaymentMethod PaymentMethod       `firestore:"paymentMethod" json:"paymentMethod"`
	ExternalID    string              `firestore:"externalId" json:"externalId"`
	Metadata      TransactionMetadata `firestore:"metadata" json:"metadata"`
	CreatedAt     time.Time           `firestore:"createdAt" json:"createdAt"`
}

// TransactionMetadata preserves the raw bank fields for audit. Extra carries
// any source field without a named slot.
type TransactionMetadata struct {
	Source             string         `firestore:"source,omitempty" json:"source,omitempty"`
	OriginalValue      string         `firestore:"originalValue,omitempty" json:"originalValue,omitempty"`
	OriginalDate       int64          `firestore:"originalDate,omitempty" json:"originalDate,omitempty"`
	SignIndicator      string         `firestore:"signIndicator,omitempty" json:"signIndicator,omitempty"`
	HistoricalCode     int            `firestore:"historicalCode,omitempty" json:"historicalCode,omitempty"`
	DocumentNumber     string         `firestore:"documentNumber,omitempty" json:"documentNumber,omitempty"`
	LotNumber          string         `firestore:"lotNumber,omitempty" json:"lotNumber,omitempty"`
	Counterparty       *Counterparty  `firestore:"counterparty,omitempty" json:"counterparty,omitempty"`
	ClassificationRule string         `firestore:"classificationRule,omitempty" json:"classificationRule,omitempty"`
	InferredKind       string         `firestore:"inferredKind,omitempty" json:"inferredKind,omitempty"`
	DateDegraded       bool           `firestore:"dateDegraded,omitempty" json:"dateDegraded,omitempty"`
	Extra              map[string]any `firestore:"extra,omitempty" json:"extra,omitempty"`
}

type Counterparty struct {
	Document string `firestore:"document,omitempty" json:"document,omitempty"`
	Bank     int    `firestore:"bank,omitempty" json:"bank,omitempty"`
	Agency   int    `firestore:"agency,omitempty" json:"agency,omitempty"`
	Account  string `firestore:"account,omitempty" json:"account,omitempty"`
}

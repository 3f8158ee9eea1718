package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/wallet-sync/internal/dto"
	"github.com/GregMSThompson/wallet-sync/internal/errs"
	"github.com/GregMSThompson/wallet-sync/internal/ledger"
	"github.com/GregMSThompson/wallet-sync/internal/models"
	"github.com/GregMSThompson/wallet-sync/pkg/helpers"
	"github.com/GregMSThompson/wallet-sync/pkg/logger"
)

// Stage is a step of a wallet sync. A failed sync reports the stage it stopped in.
type Stage string

const (
	StageResolvingCredentials Stage = "resolving_credentials"
	StageResolvingPeriod      Stage = "resolving_period"
	StageAuthenticating       Stage = "authenticating"
	StageFetchingBalance      Stage = "fetching_balance"
	StageFetchingExtract      Stage = "fetching_extract"
	StageNormalizing          Stage = "normalizing"
	StageDeduplicating        Stage = "deduplicating"
	StagePersisting           Stage = "persisting"
	StageDone                 Stage = "done"
	StageFailed               Stage = "failed"
)

const (
	BalanceSourceEndpoint  = "endpoint"
	BalanceSourceExtract   = "extract"
	BalanceSourceUnchanged = "unchanged"
)

// --- Dependencies (minimal interfaces scoped to this service) ---

type walletSSStore interface {
	Get(ctx context.Context, uid, walletID string) (*models.Wallet, error)
}

type transactionSSStore interface {
	HasTransactions(ctx context.Context, uid, walletID string) (bool, error)
	ExistingExternalIDs(ctx context.Context, uid string, ids []string) (map[string]bool, error)
	CommitSync(ctx context.Context, uid, walletID string, txs []models.Transaction, update models.WalletSyncUpdate) (int, error)
}

type credentialSource interface {
	Resolve(ctx context.Context, w *models.Wallet) (dto.BankCredentials, error)
}

// bankClient is the bank API adapter surface used by the sync.
type bankClient interface {
	Authenticate(ctx context.Context, creds dto.BankCredentials) (dto.BankAuth, error)
	GetBalance(ctx context.Context, auth dto.BankAuth) (dto.BBBalance, error)
	GetExtract(ctx context.Context, auth dto.BankAuth, period dto.SyncPeriod) (dto.BBExtract, error)
}

type syncService struct {
	wallets  walletSSStore
	txs      transactionSSStore
	creds    credentialSource
	banks    map[string]bankClient
	rules    *ledger.Rules
	maxYear  int
	location *time.Location
	clockNow func() time.Time
	newID    func() string
}

func NewSyncService(wallets walletSSStore, txs transactionSSStore, creds credentialSource, rules *ledger.Rules, maxYear int, location *time.Location) *syncService {
	if location == nil {
		location = time.UTC
	}
	return &syncService{
		wallets:  wallets,
		txs:      txs,
		creds:    creds,
		banks:    make(map[string]bankClient),
		rules:    rules,
		maxYear:  maxYear,
		location: location,
		clockNow: time.Now,
		newID:    uuid.NewString,
	}
}

// RegisterBank makes wallets whose bankId equals id syncable through client.
func (s *syncService) RegisterBank(id string, client bankClient) {
	s.banks[strings.ToLower(id)] = client
}

// SyncWallet pulls the bank extract for one wallet and persists the new
// transactions together with the reconciled balance.
func (s *syncService) SyncWallet(ctx context.Context, uid, walletID string) (dto.SyncResult, error) {
	log, ctx := logger.With(ctx, "wallet_id", walletID, "sync_id", s.newID())
	run := &syncRun{svc: s, uid: uid, walletID: walletID, stage: StageResolvingCredentials}

	started := s.clockNow()
	res, err := run.execute(ctx)
	if err != nil {
		var dbErr *errs.DatabaseError
		if errors.As(err, &dbErr) {
			log.Error("wallet sync failed", "stage", StageFailed, "failed_in", run.stage, "error", err)
		} else {
			log.Warn("wallet sync failed", "stage", StageFailed, "failed_in", run.stage, "error", err)
		}
		return dto.SyncResult{}, err
	}

	log.Info("wallet sync finished",
		"stage", StageDone,
		"inserted", res.TransactionCount,
		"total_records", res.TotalRecords,
		"skipped_duplicates", res.SkippedDuplicates,
		"skipped_markers", res.SkippedMarkers,
		"skipped_invalid", res.SkippedInvalid,
		"warnings", len(res.Warnings),
		"balance_source", res.BalanceSource,
		"duration_ms", s.clockNow().Sub(started).Milliseconds(),
	)
	return res, nil
}

// syncRun holds the state of a single sync as it moves through the stages.
type syncRun struct {
	svc      *syncService
	uid      string
	walletID string
	stage    Stage
}

func (r *syncRun) enter(ctx context.Context, stage Stage) {
	r.stage = stage
	logger.FromContext(ctx).Debug("sync stage", "stage", stage)
}

func (r *syncRun) execute(ctx context.Context) (dto.SyncResult, error) {
	s := r.svc
	log := logger.FromContext(ctx)

	r.enter(ctx, StageResolvingCredentials)
	wallet, err := s.wallets.Get(ctx, r.uid, r.walletID)
	if err != nil {
		return dto.SyncResult{}, err
	}
	if wallet.Type != models.WalletTypeBankIntegration {
		return dto.SyncResult{}, errs.NewIntegrationNotConfiguredError(errs.ReasonNotBankIntegrated, "wallet is not linked to a bank")
	}
	bank, ok := s.banks[strings.ToLower(wallet.BankID)]
	if !ok {
		return dto.SyncResult{}, errs.NewUnsupportedBankError(wallet.BankID)
	}
	creds, err := s.creds.Resolve(ctx, wallet)
	if err != nil {
		return dto.SyncResult{}, err
	}

	r.enter(ctx, StageResolvingPeriod)
	now := s.clockNow().In(s.location)
	if clamped := ledger.SaneNow(now, s.maxYear); !clamped.Equal(now) {
		log.Warn("clock is past SYNCMAXYEAR, sync period clamped", "now", now, "maxYear", s.maxYear, "clampedTo", clamped)
	}
	hasTxs, err := s.txs.HasTransactions(ctx, r.uid, r.walletID)
	if err != nil {
		return dto.SyncResult{}, err
	}
	period := ledger.ResolvePeriod(hasTxs, now, s.maxYear)
	log.Info("sync period resolved",
		"start", ledger.EncodeBankDate(period.Start),
		"end", ledger.EncodeBankDate(period.End),
		"incremental", period.Incremental,
	)

	r.enter(ctx, StageAuthenticating)
	auth, err := bank.Authenticate(ctx, creds)
	if err != nil {
		return dto.SyncResult{}, err
	}

	r.enter(ctx, StageFetchingBalance)
	endpointBalance := r.fetchBalance(ctx, bank, auth)

	r.enter(ctx, StageFetchingExtract)
	extract, err := bank.GetExtract(ctx, auth, period)
	if err != nil {
		return dto.SyncResult{}, err
	}

	r.enter(ctx, StageNormalizing)
	batch := ledger.NewNormalizer(s.rules, r.walletID, r.uid, now).Normalize(extract.Entries)
	for _, w := range batch.Warnings {
		log.Warn("ledger entry degraded", "index", w.Index, "field", w.Field, "raw", w.Raw, "reason", w.Reason)
	}
	if logger.IsDebugEnabled(ctx) {
		for _, e := range batch.Entries {
			log.Debug("ledger entry classified",
				"index", e.Index,
				"external_id", e.Transaction.ExternalID,
				"amount", e.Amount.String(),
				"type", e.Transaction.Type,
				"category", e.Transaction.Category,
				"rule", e.Transaction.Metadata.ClassificationRule)
		}
	}

	r.enter(ctx, StageDeduplicating)
	fresh, dupes, invalid, warnings, err := r.dedupe(ctx, batch.Entries)
	if err != nil {
		return dto.SyncResult{}, err
	}

	r.enter(ctx, StagePersisting)
	balance, source := chooseBalance(endpointBalance, batch.Balance)
	update := models.WalletSyncUpdate{
		SyncedAt: now,
		Status:   models.SyncStatusSuccess,
	}
	if balance != nil {
		update.Balance = helpers.Ptr(balance.InexactFloat64())
	}
	inserted, err := s.txs.CommitSync(ctx, r.uid, r.walletID, fresh, update)
	if err != nil {
		return dto.SyncResult{}, err
	}
	// Rows that lost the race to a concurrent sync were skipped in the transaction.
	dupes += len(fresh) - inserted

	applySyncUpdate(wallet, update, inserted)
	r.enter(ctx, StageDone)

	return dto.SyncResult{
		Wallet:            wallet,
		Period:            period,
		TransactionCount:  inserted,
		Balance:           wallet.Balance,
		BalanceSource:     source,
		TotalRecords:      extract.TotalRecords,
		SkippedMarkers:    batch.Markers,
		SkippedDuplicates: dupes,
		SkippedInvalid:    invalid,
		Warnings:          append(batch.Warnings, warnings...),
	}, nil
}

// fetchBalance is best effort: any failure falls back to the extract markers.
func (r *syncRun) fetchBalance(ctx context.Context, bank bankClient, auth dto.BankAuth) *decimal.Decimal {
	log := logger.FromContext(ctx)
	bal, err := bank.GetBalance(ctx, auth)
	if err != nil {
		log.Warn("balance endpoint unavailable, using extract", "error", err)
		return nil
	}
	raw := bal.Balance.String()
	if raw == "" {
		raw = bal.AvailableBalance.String()
	}
	if raw == "" {
		return nil
	}
	v, err := ledger.ParseAmount(raw)
	if err != nil {
		log.Warn("balance endpoint returned an unparseable amount", "raw", raw)
		return nil
	}
	return &v
}

// dedupe drops in-batch repeats, rows already stored and rows missing a
// required field, in that order.
func (r *syncRun) dedupe(ctx context.Context, entries []ledger.Entry) ([]models.Transaction, int, int, []dto.SyncWarning, error) {
	var (
		dupes    int
		invalid  int
		warnings []dto.SyncWarning
	)

	seen := make(map[string]bool, len(entries))
	candidates := make([]ledger.Entry, 0, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		id := e.Transaction.ExternalID
		if seen[id] {
			dupes++
			continue
		}
		seen[id] = true
		candidates = append(candidates, e)
		ids = append(ids, id)
	}

	existing, err := r.svc.txs.ExistingExternalIDs(ctx, r.uid, ids)
	if err != nil {
		return nil, 0, 0, nil, err
	}

	fresh := make([]models.Transaction, 0, len(candidates))
	for _, e := range candidates {
		if existing[e.Transaction.ExternalID] {
			dupes++
			continue
		}
		if field := missingField(e.Transaction); field != "" {
			invalid++
			warnings = append(warnings, dto.SyncWarning{Index: e.Index, Field: field, Reason: "required field missing, row skipped"})
			logger.FromContext(ctx).Warn("ledger entry skipped", "index", e.Index, "field", field)
			continue
		}
		fresh = append(fresh, e.Transaction)
	}
	return fresh, dupes, invalid, warnings, nil
}

func missingField(t models.Transaction) string {
	switch {
	case t.ExternalID == "":
		return "externalId"
	case t.UserID == "":
		return "userId"
	case t.WalletID == "":
		return "walletId"
	case strings.TrimSpace(t.Name) == "":
		return "name"
	case t.Date.IsZero():
		return "date"
	case t.Type == "":
		return "type"
	case !ledger.ValidCategory(ledger.Category(t.Category)):
		return "category"
	case t.PaymentMethod == "":
		return "paymentMethod"
	}
	return ""
}

func chooseBalance(endpoint, extract *decimal.Decimal) (*decimal.Decimal, string) {
	switch {
	case endpoint != nil:
		return endpoint, BalanceSourceEndpoint
	case extract != nil:
		return extract, BalanceSourceExtract
	default:
		return nil, BalanceSourceUnchanged
	}
}

func applySyncUpdate(w *models.Wallet, u models.WalletSyncUpdate, inserted int) {
	w.Balance = helpers.ValueOr(u.Balance, w.Balance)
	w.Metadata.LastSync = helpers.Ptr(u.SyncedAt)
	w.Metadata.LastSyncStatus = u.Status
	w.Metadata.LastSyncCount = inserted
	w.UpdatedAt = u.SyncedAt
}

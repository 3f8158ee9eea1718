package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/wallet-sync/internal/dto"
	"github.com/GregMSThompson/wallet-sync/internal/models"
)

// SourceBBExtract tags transactions imported from the Banco do Brasil extract.
const SourceBBExtract = "bb_extract"

const minComplementLength = 3

// Entry is one candidate transaction produced from a raw row.
type Entry struct {
	Index          int
	Transaction    models.Transaction
	Debit          bool
	Amount         decimal.Decimal
	Classification Classification
	Warnings       []dto.SyncWarning
}

// Batch is the normalizer's report over a whole extract.
type Batch struct {
	Entries  []Entry
	Markers  int
	Balance  *decimal.Decimal // last balance-source marker, if any
	Warnings []dto.SyncWarning
}

// Normalizer turns raw extract rows into transactions for one wallet.
type Normalizer struct {
	rules    *Rules
	walletID string
	userID   string
	now      time.Time
}

func NewNormalizer(rules *Rules, walletID, userID string, now time.Time) *Normalizer {
	return &Normalizer{
		rules:    rules,
		walletID: walletID,
		userID:   userID,
		now:      now,
	}
}

// Normalize maps every row in order. Balance markers are counted and mined
// for the balance but never become entries; malformed rows are kept with
// warnings attached.
func (n *Normalizer) Normalize(rows []dto.BBLedgerEntry) Batch {
	var b Batch
	for i, row := range rows {
		if n.isMarker(row) {
			b.Markers++
			n.captureBalance(&b, i, row)
			continue
		}
		e := n.NormalizeEntry(i, row)
		b.Entries = append(b.Entries, e)
		b.Warnings = append(b.Warnings, e.Warnings...)
	}
	return b
}

func (n *Normalizer) isMarker(row dto.BBLedgerEntry) bool {
	return n.rules.IsBalanceMarker(row.HistoricalText) ||
		n.rules.IsBalanceMarker(EnrichDescription(row.HistoricalText, row.ComplementText))
}

func (n *Normalizer) captureBalance(b *Batch, i int, row dto.BBLedgerEntry) {
	if !n.rules.IsBalanceSource(row.HistoricalText) && !n.rules.IsBalanceSource(row.ComplementText) {
		return
	}
	v, err := ParseAmount(row.Value.String())
	if err != nil {
		b.Warnings = append(b.Warnings, dto.SyncWarning{
			Index: i, Field: "valorLancamento", Raw: row.Value.String(), Reason: "unparseable balance marker: " + err.Error(),
		})
		return
	}
	// Without an indicator the literal's own sign is the balance sign.
	switch strings.ToUpper(strings.TrimSpace(row.SignIndicator)) {
	case "D":
		v = v.Abs().Neg()
	case "C":
		v = v.Abs()
	}
	b.Balance = &v
}

// NormalizeEntry maps a single non-marker row.
func (n *Normalizer) NormalizeEntry(i int, row dto.BBLedgerEntry) Entry {
	e := Entry{Index: i}

	text := NormalizeText(row.HistoricalText + " " + row.ComplementText)
	e.Debit = n.rules.IsDebit(row.SignIndicator, row.EntryTypeIndicator, text, row.HistoricalCode)

	amount, err := ParseAmount(row.Value.String())
	if err != nil {
		e.Warnings = append(e.Warnings, dto.SyncWarning{
			Index: i, Field: "valorLancamento", Raw: row.Value.String(), Reason: err.Error(),
		})
		amount = decimal.Zero
	}
	amount = amount.Abs()
	if e.Debit {
		amount = amount.Neg()
	}
	e.Amount = amount

	date, err := ParseBankDate(row.EntryDate, n.now.Location())
	dateDegraded := false
	if err != nil {
		e.Warnings = append(e.Warnings, dto.SyncWarning{
			Index: i, Field: "dataLancamento", Raw: StableDateCode(row.EntryDate), Reason: err.Error(),
		})
		date = n.now
		dateDegraded = true
	}

	e.Classification = n.rules.Classify(text, row.HistoricalCode, e.Debit)

	externalID := ExternalID(n.walletID, row)
	e.Transaction = models.Transaction{
		TransactionID: externalID,
		WalletID:      n.walletID,
		UserID:        n.userID,
		Name:          EnrichDescription(row.HistoricalText, row.ComplementText),
		Amount:        amount.InexactFloat64(),
		Date:          date,
		Type:          e.Classification.Type,
		Category:      string(e.Classification.Category),
		PaymentMethod: e.Classification.PaymentMethod,
		ExternalID:    externalID,
		Metadata:      n.metadata(row, e.Classification, dateDegraded),
		CreatedAt:     n.now,
	}
	return e
}

func (n *Normalizer) metadata(row dto.BBLedgerEntry, c Classification, dateDegraded bool) models.TransactionMetadata {
	md := models.TransactionMetadata{
		Source:             SourceBBExtract,
		OriginalValue:      row.Value.String(),
		OriginalDate:       row.EntryDate,
		SignIndicator:      row.SignIndicator,
		HistoricalCode:     row.HistoricalCode,
		DocumentNumber:     numberOrZero(row.DocumentNumber),
		LotNumber:          numberOrZero(row.LotNumber),
		ClassificationRule: c.Rule,
		InferredKind:       string(c.Kind),
		DateDegraded:       dateDegraded,
	}

	if row.CounterpartyDocument != 0 || row.CounterpartyBank != 0 || row.CounterpartyAccount != "" {
		md.Counterparty = &models.Counterparty{
			Document: numberOrZero(row.CounterpartyDocument),
			Bank:     row.CounterpartyBank,
			Agency:   row.CounterpartyAgency,
			Account:  strings.TrimSpace(row.CounterpartyAccount + row.CounterpartyAccountDV),
		}
	}

	extra := map[string]any{}
	if row.EntryTypeIndicator != "" {
		extra["entryTypeIndicator"] = row.EntryTypeIndicator
	}
	if row.MovementDate != 0 {
		extra["movementDate"] = row.MovementDate
	}
	if row.OriginAgency != 0 {
		extra["originAgency"] = row.OriginAgency
	}
	if row.CounterpartyPersonType != "" {
		extra["counterpartyPersonType"] = row.CounterpartyPersonType
	}
	if len(extra) > 0 {
		md.Extra = extra
	}
	return md
}

// EnrichDescription appends the complement unless it is too short or the
// description already says it.
func EnrichDescription(description, complement string) string {
	d := strings.TrimSpace(description)
	c := strings.TrimSpace(complement)
	if d == "" {
		return c
	}
	if len([]rune(c)) < minComplementLength {
		return d
	}
	if strings.Contains(NormalizeText(d), NormalizeText(c)) {
		return d
	}
	return d + " - " + c
}

// ParseAmount accepts the API's decimal literal and the Brazilian
// "1.234,56" form.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

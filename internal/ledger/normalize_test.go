package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregMSThompson/wallet-sync/internal/dto"
	"github.com/GregMSThompson/wallet-sync/internal/models"
)

var fixedNow = time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)

func newTestNormalizer(t *testing.T) *Normalizer {
	return NewNormalizer(mustRules(t), "w1", "u1", fixedNow)
}

func extractRows() []dto.BBLedgerEntry {
	return []dto.BBLedgerEntry{
		{HistoricalText: "Saldo Anterior", Value: "500.00", SignIndicator: "C", EntryDate: 1032025},
		{HistoricalText: "Pix - Enviado", ComplementText: "Maria Souza", Value: "150.50", SignIndicator: "D", EntryDate: 5032025, DocumentNumber: 12345, HistoricalCode: 144},
		{HistoricalText: "Pix - Recebido", ComplementText: "Loja Centro", Value: "-200", SignIndicator: "C", EntryDate: 6032025, DocumentNumber: 777},
		{HistoricalText: "Tarifa pacote de serviços", Value: "12.90", EntryDate: 10032025},
		{HistoricalText: "Compra fornecedor", Value: "80,00", SignIndicator: "D", EntryDate: 32132025},
		{HistoricalText: "S A L D O", Value: "300.00", SignIndicator: "C", EntryDate: 15032025},
		{HistoricalText: "Saldo Atual", Value: "1000.00", SignIndicator: "C", EntryDate: 20032025},
	}
}

func TestNormalize_Batch(t *testing.T) {
	b := newTestNormalizer(t).Normalize(extractRows())

	require.Len(t, b.Entries, 4)
	assert.Equal(t, 3, b.Markers)
	require.NotNil(t, b.Balance)
	assert.True(t, decimal.RequireFromString("1000").Equal(*b.Balance), b.Balance.String())
	require.Len(t, b.Warnings, 1)
	assert.Equal(t, "dataLancamento", b.Warnings[0].Field)
	assert.Equal(t, 4, b.Warnings[0].Index)

	for _, e := range b.Entries {
		assert.False(t, strings.HasPrefix(NormalizeText(e.Transaction.Name), "saldo"), e.Transaction.Name)
	}
}

func TestNormalize_SignInvariant(t *testing.T) {
	b := newTestNormalizer(t).Normalize(extractRows())

	for _, e := range b.Entries {
		if e.Debit {
			assert.LessOrEqualf(t, e.Transaction.Amount, 0.0, "row %d", e.Index)
		} else {
			assert.GreaterOrEqualf(t, e.Transaction.Amount, 0.0, "row %d", e.Index)
		}
	}

	byIndex := map[int]Entry{}
	for _, e := range b.Entries {
		byIndex[e.Index] = e
	}
	assert.Equal(t, -150.50, byIndex[1].Transaction.Amount)
	assert.Equal(t, 200.0, byIndex[2].Transaction.Amount)
	assert.Equal(t, -12.90, byIndex[3].Transaction.Amount)
	assert.Equal(t, -80.0, byIndex[4].Transaction.Amount)
}

func TestNormalizeEntry_Fields(t *testing.T) {
	n := newTestNormalizer(t)
	row := dto.BBLedgerEntry{
		EntryTypeIndicator:    "D",
		HistoricalText:        "Pix - Enviado",
		ComplementText:        "Maria Souza",
		Value:                 "150.50",
		SignIndicator:         "D",
		EntryDate:             5032025,
		DocumentNumber:        12345,
		LotNumber:             9,
		HistoricalCode:        144,
		CounterpartyDocument:  12345678901,
		CounterpartyBank:      1,
		CounterpartyAgency:    1234,
		CounterpartyAccount:   "55667",
		CounterpartyAccountDV: "X",
	}

	e := n.NormalizeEntry(0, row)
	tx := e.Transaction

	assert.Empty(t, e.Warnings)
	assert.Equal(t, "Pix - Enviado - Maria Souza", tx.Name)
	assert.True(t, day(2025, 3, 5).Equal(tx.Date))
	assert.Equal(t, models.TransactionTypeExpense, tx.Type)
	assert.Equal(t, models.PaymentMethodPix, tx.PaymentMethod)
	assert.Equal(t, string(CategoryOther), tx.Category)
	assert.Equal(t, "w1", tx.WalletID)
	assert.Equal(t, "u1", tx.UserID)
	assert.Equal(t, tx.ExternalID, tx.TransactionID)
	assert.True(t, strings.HasPrefix(tx.ExternalID, "w1_05032025_12345_9_"))

	md := tx.Metadata
	assert.Equal(t, SourceBBExtract, md.Source)
	assert.Equal(t, "150.50", md.OriginalValue)
	assert.Equal(t, int64(5032025), md.OriginalDate)
	assert.Equal(t, "D", md.SignIndicator)
	assert.Equal(t, 144, md.HistoricalCode)
	assert.Equal(t, "default", md.ClassificationRule)
	assert.Equal(t, string(KindPixSent), md.InferredKind)
	assert.False(t, md.DateDegraded)
	require.NotNil(t, md.Counterparty)
	assert.Equal(t, "12345678901", md.Counterparty.Document)
	assert.Equal(t, "55667X", md.Counterparty.Account)
	assert.Equal(t, "D", md.Extra["entryTypeIndicator"])
}

func TestNormalizeEntry_MalformedDateDegrades(t *testing.T) {
	e := newTestNormalizer(t).NormalizeEntry(3, dto.BBLedgerEntry{
		HistoricalText: "Compra", Value: "10.00", SignIndicator: "D", EntryDate: 99999999,
	})

	require.Len(t, e.Warnings, 1)
	assert.Equal(t, "dataLancamento", e.Warnings[0].Field)
	assert.Equal(t, "99999999", e.Warnings[0].Raw)
	assert.Equal(t, fixedNow, e.Transaction.Date)
	assert.True(t, e.Transaction.Metadata.DateDegraded)
	assert.Equal(t, -10.0, e.Transaction.Amount)
}

func TestNormalizeEntry_MalformedAmountDegrades(t *testing.T) {
	e := newTestNormalizer(t).NormalizeEntry(0, dto.BBLedgerEntry{
		HistoricalText: "Pix - Recebido", Value: "abc", SignIndicator: "C", EntryDate: 5032025,
	})

	require.Len(t, e.Warnings, 1)
	assert.Equal(t, "valorLancamento", e.Warnings[0].Field)
	assert.Equal(t, 0.0, e.Transaction.Amount)
}

func TestNormalize_MarkerInComplementOnly(t *testing.T) {
	b := newTestNormalizer(t).Normalize([]dto.BBLedgerEntry{
		{HistoricalText: "", ComplementText: "Saldo Atual", Value: "250,00", SignIndicator: "D", EntryDate: 5032025},
	})

	assert.Empty(t, b.Entries)
	assert.Equal(t, 1, b.Markers)
	require.NotNil(t, b.Balance)
	assert.True(t, decimal.RequireFromString("-250").Equal(*b.Balance))
}

func TestNormalize_LastBalanceSourceWins(t *testing.T) {
	b := newTestNormalizer(t).Normalize([]dto.BBLedgerEntry{
		{HistoricalText: "Saldo Atual", Value: "10.00", SignIndicator: "C"},
		{HistoricalText: "Saldo Disponível", Value: "20.00", SignIndicator: "C"},
	})
	require.NotNil(t, b.Balance)
	assert.True(t, decimal.RequireFromString("20").Equal(*b.Balance))
}

func TestNormalize_BalanceSign(t *testing.T) {
	tests := []struct {
		name string
		row  dto.BBLedgerEntry
		want string
	}{
		{"negative literal without indicator", dto.BBLedgerEntry{HistoricalText: "Saldo Atual", Value: "-250.00"}, "-250"},
		{"positive literal without indicator", dto.BBLedgerEntry{HistoricalText: "S A L D O", Value: "250.00"}, "250"},
		{"debit indicator wins over literal", dto.BBLedgerEntry{HistoricalText: "Saldo Atual", Value: "250.00", SignIndicator: "D"}, "-250"},
		{"credit indicator wins over literal", dto.BBLedgerEntry{HistoricalText: "Saldo Atual", Value: "-250.00", SignIndicator: "c"}, "250"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestNormalizer(t).Normalize([]dto.BBLedgerEntry{tt.row})
			require.NotNil(t, b.Balance)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(*b.Balance), b.Balance.String())
		})
	}
}

func TestEnrichDescription(t *testing.T) {
	tests := []struct {
		desc, complement, want string
	}{
		{"Pix - Recebido", "João da Silva", "Pix - Recebido - João da Silva"},
		{"Pix - Recebido", "ab", "Pix - Recebido"},
		{"Pix - Recebido", "", "Pix - Recebido"},
		{"Pagto conta energia", "ENERGIA", "Pagto conta energia"},
		{"", "Tarifa", "Tarifa"},
		{"  Saque  ", "  24h centro ", "Saque - 24h centro"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EnrichDescription(tt.desc, tt.complement))
	}
}

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"1234.56":  "1234.56",
		"1.234,56": "1234.56",
		"-200":     "-200",
		" 12,9 ":   "12.9",
		"0":        "0",
	}
	for in, want := range tests {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		assert.True(t, decimal.RequireFromString(want).Equal(got), "%q -> %s", in, got)
	}

	for _, bad := range []string{"", "abc", "1,2,3"} {
		_, err := ParseAmount(bad)
		assert.Error(t, err, bad)
	}
}

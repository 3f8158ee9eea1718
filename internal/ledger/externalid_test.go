package ledger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GregMSThompson/wallet-sync/internal/dto"
)

func TestExternalID(t *testing.T) {
	row := dto.BBLedgerEntry{
		HistoricalText: "Pix - Recebido",
		ComplementText: "Loja Centro",
		Value:          "200.00",
		EntryDate:      5032025,
		DocumentNumber: 777,
		LotNumber:      14,
	}

	id := ExternalID("w1", row)
	assert.Equal(t, id, ExternalID("w1", row))
	assert.True(t, strings.HasPrefix(id, "w1_05032025_777_14_"), id)

	parts := strings.Split(id, "_")
	assert.Len(t, parts, 5)
	assert.Len(t, parts[4], 24)
}

func TestExternalID_ZeroDocumentAndLot(t *testing.T) {
	id := ExternalID("w1", dto.BBLedgerEntry{HistoricalText: "Tarifa", Value: "1.00", EntryDate: 15032024})
	assert.True(t, strings.HasPrefix(id, "w1_15032024_0_0_"), id)
}

func TestExternalID_Distinguishes(t *testing.T) {
	base := dto.BBLedgerEntry{HistoricalText: "Pix - Recebido", ComplementText: "A", Value: "10.00", EntryDate: 5032025, DocumentNumber: 1}
	id := ExternalID("w1", base)

	variants := map[string]dto.BBLedgerEntry{}
	v := base
	v.Value = "10.01"
	variants["amount"] = v
	v = base
	v.ComplementText = "B"
	variants["complement"] = v
	v = base
	v.HistoricalText = "Pix - Enviado"
	variants["description"] = v
	v = base
	v.EntryDate = 6032025
	variants["date"] = v
	v = base
	v.DocumentNumber = 2
	variants["document"] = v

	for name, row := range variants {
		assert.NotEqual(t, id, ExternalID("w1", row), name)
	}
	assert.NotEqual(t, id, ExternalID("w2", base))
}

func TestExternalID_FieldBoundaries(t *testing.T) {
	a := dto.BBLedgerEntry{HistoricalText: "Pix|x", ComplementText: "y", Value: "0", EntryDate: 5032024}
	b := dto.BBLedgerEntry{HistoricalText: "Pix", ComplementText: "x|y", Value: "0", EntryDate: 5032024}
	assert.NotEqual(t, ExternalID("w", a), ExternalID("w", b))

	c := dto.BBLedgerEntry{HistoricalText: "Pix ", ComplementText: "x", Value: "0", EntryDate: 5032024}
	d := dto.BBLedgerEntry{HistoricalText: "Pix", ComplementText: " x", Value: "0", EntryDate: 5032024}
	assert.NotEqual(t, ExternalID("w", c), ExternalID("w", d))
}

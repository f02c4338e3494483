package services

import (
	"testing"

	"github.com/flowfin/go-conciliador/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeArgoFeed(t *testing.T) {
	sales := []models.ArgoSale{
		{NSU: " 123 ", SaleDate: "2025-05-10 14:30:00", GrossAmount: decimal.RequireFromString("150.00"), PaymentMethod: "credito", CompanyID: "ACME"},
		{NSU: "", SaleDate: "2025-05-10", GrossAmount: decimal.RequireFromString("10.00"), CompanyID: "ACME"},
		{NSU: "456", SaleDate: "not-a-date", GrossAmount: decimal.RequireFromString("10.00"), CompanyID: "ACME"},
		{NSU: "789", SaleDate: "2025-05-10", GrossAmount: decimal.RequireFromString("-5.00"), CompanyID: "ACME"},
	}

	records, warnings := NormalizeArgoFeed(sales)

	require.Len(t, records, 1)
	assert.Equal(t, "123", records[0].SourceID)
	assert.Equal(t, "ACME", records[0].CompanyID)
	assert.Equal(t, models.OriginArgo, records[0].Origin)
	assert.Equal(t, day("2025-05-10"), records[0].OccurredAt)
	assert.Equal(t, "credito", records[0].Metadata[models.MetadataPaymentMethod])
	assert.Equal(t, "2025-05-10 14:30:00", records[0].Metadata[models.MetadataOccurredTime])

	require.Len(t, warnings, 3)
	for _, w := range warnings {
		assert.Equal(t, models.OriginArgo, w.Origin)
		assert.NotEmpty(t, w.Reason)
	}
}

func TestNormalizeNetunnaFeed_FlattensVenda(t *testing.T) {
	settlements := []models.NetunnaSettlement{
		{Venda: models.NetunnaVenda{
			NSU:           "00042",
			VendaData:     "2025-05-10T14:30:00-03:00",
			ValorBruto:    decimal.RequireFromString("99.90"),
			Bandeira:      "VISA",
			Operadora:     "CIELO",
			EmpresaCodigo: "N-ACME",
		}},
		{Venda: models.NetunnaVenda{NSU: "43", VendaData: "??"}},
	}

	records, warnings := NormalizeNetunnaFeed(settlements)

	require.Len(t, records, 1)
	assert.Equal(t, "00042", records[0].SourceID)
	assert.Equal(t, "N-ACME", records[0].CompanyID)
	assert.Equal(t, models.OriginNetunna, records[0].Origin)
	assert.Equal(t, day("2025-05-10"), records[0].OccurredAt)
	assert.Equal(t, "VISA", records[0].Metadata[models.MetadataCardBrand])
	assert.Equal(t, "CIELO", records[0].Metadata[models.MetadataAcquirer])

	require.Len(t, warnings, 1)
	assert.Equal(t, "43", warnings[0].SourceID)
}

func TestFilterDateRange(t *testing.T) {
	records := []models.TransactionRecord{
		argoRecord("1", "2025-05-09", "10.00"),
		argoRecord("2", "2025-05-10", "10.00"),
		argoRecord("3", "2025-05-11", "10.00"),
	}

	start := day("2025-05-10")
	end := day("2025-05-10")
	filtered := filterDateRange(records, &start, &end)

	require.Len(t, filtered, 1)
	assert.Equal(t, "2", filtered[0].SourceID)

	assert.Len(t, filterDateRange(records, nil, nil), 3)
}

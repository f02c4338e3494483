package services

import (
	"strings"
	"time"

	"github.com/flowfin/go-conciliador/internal/common"
	"github.com/flowfin/go-conciliador/internal/models"

	"go.uber.org/zap"
)

// NormalizeArgoFeed converts raw ARGO sale records to the common shape. A
// malformed record is dropped with a warning, never aborting the batch.
// Identifiers come out trimmed only; zero-padding happens at session level
// once both feeds are known.
func NormalizeArgoFeed(sales []models.ArgoSale) ([]models.TransactionRecord, []models.FeedWarning) {
	records := make([]models.TransactionRecord, 0, len(sales))
	warnings := make([]models.FeedWarning, 0)

	for _, sale := range sales {
		nsu := strings.TrimSpace(sale.NSU)
		if nsu == "" {
			warnings = append(warnings, feedWarning(models.OriginArgo, strings.TrimSpace(sale.CompanyID), sale.NSU, "empty nsu"))
			continue
		}

		occurredAt, err := common.ParseFeedTimestamp(sale.SaleDate)
		if err != nil {
			warnings = append(warnings, feedWarning(models.OriginArgo, strings.TrimSpace(sale.CompanyID), nsu, "unparseable sale_date: "+sale.SaleDate))
			continue
		}
		if sale.GrossAmount.IsNegative() {
			warnings = append(warnings, feedWarning(models.OriginArgo, strings.TrimSpace(sale.CompanyID), nsu, "negative gross_amount"))
			continue
		}

		metadata := map[string]string{
			models.MetadataOccurredTime: occurredAt.Format(common.DateFormatYYYYMMDDWithTime),
		}
		if sale.PaymentMethod != "" {
			metadata[models.MetadataPaymentMethod] = sale.PaymentMethod
		}

		records = append(records, models.TransactionRecord{
			SourceID:   nsu,
			OccurredAt: common.TruncateToDay(occurredAt),
			Amount:     sale.GrossAmount,
			Origin:     models.OriginArgo,
			CompanyID:  strings.TrimSpace(sale.CompanyID),
			Metadata:   metadata,
		})
	}

	return records, warnings
}

// NormalizeNetunnaFeed converts raw Netunna settlement records, flattening
// the nested venda object. This is the only place the dotted upstream shape
// is known.
func NormalizeNetunnaFeed(settlements []models.NetunnaSettlement) ([]models.TransactionRecord, []models.FeedWarning) {
	records := make([]models.TransactionRecord, 0, len(settlements))
	warnings := make([]models.FeedWarning, 0)

	for _, settlement := range settlements {
		venda := settlement.Venda

		nsu := strings.TrimSpace(venda.NSU)
		if nsu == "" {
			warnings = append(warnings, feedWarning(models.OriginNetunna, strings.TrimSpace(venda.EmpresaCodigo), venda.NSU, "empty venda.nsu"))
			continue
		}

		occurredAt, err := common.ParseFeedTimestamp(venda.VendaData)
		if err != nil {
			warnings = append(warnings, feedWarning(models.OriginNetunna, strings.TrimSpace(venda.EmpresaCodigo), nsu, "unparseable venda.venda_data: "+venda.VendaData))
			continue
		}
		if venda.ValorBruto.IsNegative() {
			warnings = append(warnings, feedWarning(models.OriginNetunna, strings.TrimSpace(venda.EmpresaCodigo), nsu, "negative venda.valor_bruto"))
			continue
		}

		metadata := map[string]string{
			models.MetadataOccurredTime: occurredAt.Format(common.DateFormatYYYYMMDDWithTime),
		}
		if venda.Bandeira != "" {
			metadata[models.MetadataCardBrand] = venda.Bandeira
		}
		if venda.Operadora != "" {
			metadata[models.MetadataAcquirer] = venda.Operadora
		}

		records = append(records, models.TransactionRecord{
			SourceID:   nsu,
			OccurredAt: common.TruncateToDay(occurredAt),
			Amount:     venda.ValorBruto,
			Origin:     models.OriginNetunna,
			CompanyID:  strings.TrimSpace(venda.EmpresaCodigo),
			Metadata:   metadata,
		})
	}

	return records, warnings
}

func feedWarning(origin models.Origin, companyID, sourceID, reason string) models.FeedWarning {
	zap.L().Warn("[RECON-FEED] record dropped",
		zap.String("origin", origin.String()),
		zap.String("companyId", companyID),
		zap.String("sourceId", sourceID),
		zap.String("reason", reason))
	return models.FeedWarning{Origin: origin, CompanyID: companyID, SourceID: sourceID, Reason: reason}
}

// filterDateRange keeps the records whose day falls inside [start, end]. A
// nil bound leaves that side open.
func filterDateRange(records []models.TransactionRecord, start, end *time.Time) []models.TransactionRecord {
	if start == nil && end == nil {
		return records
	}
	filtered := make([]models.TransactionRecord, 0, len(records))
	for _, r := range records {
		if start != nil && r.OccurredAt.Before(*start) {
			continue
		}
		if end != nil && r.OccurredAt.After(*end) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

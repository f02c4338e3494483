package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Origin identifies which settlement feed a record came from.
type Origin int

const (
	OriginArgo Origin = iota
	OriginNetunna
)

func (o Origin) String() string {
	switch o {
	case OriginArgo:
		return "ARGO"
	case OriginNetunna:
		return "NETUNNA"
	default:
		return "UNKNOWN"
	}
}

func (o Origin) MarshalJSON() ([]byte, error) {
	return []byte(`"` + o.String() + `"`), nil
}

// ArgoSale is the raw acquirer-side record as delivered by the ARGO feed.
// Dates stay untyped here so a single malformed record can be rejected
// during normalization without failing the whole batch.
type ArgoSale struct {
	NSU           string          `json:"nsu"`
	SaleDate      string          `json:"sale_date"`
	GrossAmount   decimal.Decimal `json:"gross_amount"`
	PaymentMethod string          `json:"payment_method"`
	CompanyID     string          `json:"company_id"`
}

// NetunnaSettlement is the raw processor-side record. The upstream API nests
// everything under a "venda" object; the normalizer flattens it.
type NetunnaSettlement struct {
	Venda NetunnaVenda `json:"venda"`
}

type NetunnaVenda struct {
	NSU           string          `json:"nsu"`
	VendaData     string          `json:"venda_data"`
	ValorBruto    decimal.Decimal `json:"valor_bruto"`
	Bandeira      string          `json:"bandeira"`
	Operadora     string          `json:"operadora"`
	EmpresaCodigo string          `json:"empresa_codigo"`
}

// Metadata keys carried through normalization for display and audit.
const (
	MetadataPaymentMethod = "paymentMethod"
	MetadataCardBrand     = "cardBrand"
	MetadataAcquirer      = "acquirer"
	MetadataOccurredTime  = "occurredTime"
)

// TransactionRecord is the common shape both feeds normalize into. SourceID
// is zero-padded to the batch max width before any cross-source comparison;
// OccurredAt is truncated to the day, the original time-of-day lives in
// Metadata.
type TransactionRecord struct {
	SourceID   string            `json:"sourceId"`
	OccurredAt time.Time         `json:"occurredAt"`
	Amount     decimal.Decimal   `json:"amount"`
	Origin     Origin            `json:"origin"`
	CompanyID  string            `json:"companyId"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// FeedWarning reports one record excluded during normalization.
type FeedWarning struct {
	Origin    Origin `json:"origin"`
	CompanyID string `json:"companyId,omitempty"`
	SourceID  string `json:"sourceId"`
	Reason    string `json:"reason"`
}

// NormalizeSourceID trims a raw identifier and left-pads it with zeros to
// width. Width is a batch-level property (the longest trimmed identifier
// observed across both feeds), never computed per record.
func NormalizeSourceID(raw string, width int) string {
	id := strings.TrimSpace(raw)
	if len(id) >= width {
		return id
	}
	return strings.Repeat("0", width-len(id)) + id
}

// CanonicalSourceID strips leading zeros before padding, the same identity
// rule NaturalKey applies. Ids recorded under a different batch width then
// converge on the current batch's padded key.
func CanonicalSourceID(raw string, width int) string {
	id := strings.TrimLeft(strings.TrimSpace(raw), "0")
	if id == "" {
		id = "0"
	}
	return NormalizeSourceID(id, width)
}

// SourceIDWidth returns the pad width for a batch of already-trimmed ids.
func SourceIDWidth(batches ...[]TransactionRecord) int {
	width := 0
	for _, batch := range batches {
		for _, r := range batch {
			if l := len(strings.TrimSpace(r.SourceID)); l > width {
				width = l
			}
		}
	}
	return width
}

// CompanyPair maps an ARGO company id to its Netunna counterpart. The
// mapping is resolved externally (by shared CNPJ); the core only consumes
// already-paired ids.
type CompanyPair struct {
	ArgoID    string `json:"argoId" validate:"required,noStartEndSpaces"`
	NetunnaID string `json:"netunnaId" validate:"required,noStartEndSpaces"`
	Name      string `json:"name"`
}

package checkout

import (
	"time"

	"github.com/angelmondragon/salon-retail/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLineDTO is the client view of a receipt line.
type SaleLineDTO struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductBrand    string          `json:"product_brand"`
	Quantity        decimal.Decimal `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	UnitPriceExVat  decimal.Decimal `json:"unit_price_ex_vat"`
	UnitPriceIncVat decimal.Decimal `json:"unit_price_inc_vat"`
	LineTotalExVat  decimal.Decimal `json:"line_total_ex_vat"`
	LineTotalIncVat decimal.Decimal `json:"line_total_inc_vat"`
}

// SaleDTO is the client view of a checkout receipt.
type SaleDTO struct {
	ID          uuid.UUID       `json:"id"`
	TotalExVat  decimal.Decimal `json:"total_ex_vat"`
	TotalIncVat decimal.Decimal `json:"total_inc_vat"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	LineCount   int             `json:"line_count"`
	Lines       []SaleLineDTO   `json:"lines"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewSaleDTO builds a DTO from the persisted sale.
func NewSaleDTO(sale *models.Sale) SaleDTO {
	lines := make([]SaleLineDTO, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		lines = append(lines, SaleLineDTO{
			ID:              l.ID,
			ProductID:       l.ProductID,
			ProductName:     l.ProductName,
			ProductBrand:    l.ProductBrand,
			Quantity:        l.Quantity,
			DiscountPercent: l.DiscountPercent,
			UnitPriceExVat:  l.UnitPriceExVat,
			UnitPriceIncVat: l.UnitPriceIncVat,
			LineTotalExVat:  l.LineTotalExVat,
			LineTotalIncVat: l.LineTotalIncVat,
		})
	}
	return SaleDTO{
		ID:          sale.ID,
		TotalExVat:  sale.TotalExVat,
		TotalIncVat: sale.TotalIncVat,
		VATAmount:   sale.VATAmount,
		LineCount:   sale.LineCount,
		Lines:       lines,
		CreatedAt:   sale.CreatedAt,
	}
}

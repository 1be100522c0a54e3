package cart

import (
	"time"

	"github.com/angelmondragon/salon-retail/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLineDTO is the client view of a cart line.
type CartLineDTO struct {
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
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CartSummaryDTO is the client view of the whole cart.
type CartSummaryDTO struct {
	Lines       []CartLineDTO   `json:"lines"`
	TotalExVat  decimal.Decimal `json:"total_ex_vat"`
	TotalIncVat decimal.Decimal `json:"total_inc_vat"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
}

// UpdateLineDTO is the client view of an edited line.
type UpdateLineDTO struct {
	Line     CartLineDTO `json:"line"`
	Warnings []string    `json:"warnings,omitempty"`
}

// NewCartLineDTO builds a DTO from the persisted line.
func NewCartLineDTO(line *models.CartLine) CartLineDTO {
	return CartLineDTO{
		ID:              line.ID,
		ProductID:       line.ProductID,
		ProductName:     line.ProductName,
		ProductBrand:    line.ProductBrand,
		Quantity:        line.Quantity,
		DiscountPercent: line.DiscountPercent,
		UnitPriceExVat:  line.UnitPriceExVat,
		UnitPriceIncVat: line.UnitPriceIncVat,
		LineTotalExVat:  line.LineTotalExVat,
		LineTotalIncVat: line.LineTotalIncVat,
		CreatedAt:       line.CreatedAt,
		UpdatedAt:       line.UpdatedAt,
	}
}

// NewCartSummaryDTO builds a DTO from a cart summary.
func NewCartSummaryDTO(summary *CartSummary) CartSummaryDTO {
	lines := make([]CartLineDTO, 0, len(summary.Lines))
	for i := range summary.Lines {
		lines = append(lines, NewCartLineDTO(&summary.Lines[i]))
	}
	return CartSummaryDTO{
		Lines:       lines,
		TotalExVat:  summary.TotalExVat,
		TotalIncVat: summary.TotalIncVat,
		VATAmount:   summary.VATAmount,
	}
}

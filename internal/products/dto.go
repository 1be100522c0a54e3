package product

import (
	"time"

	"github.com/angelmondragon/salon-retail/pkg/checkout"
	"github.com/angelmondragon/salon-retail/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO represents the catalog payload returned to clients.
type ProductDTO struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	BuyPriceExVat   decimal.Decimal `json:"buy_price_ex_vat"`
	BuyPriceIncVat  decimal.Decimal `json:"buy_price_inc_vat"`
	VATRate         decimal.Decimal `json:"vat_rate"`
	SellPriceExVat  decimal.Decimal `json:"sell_price_ex_vat"`
	SellPriceIncVat decimal.Decimal `json:"sell_price_inc_vat"`
	ProfitAbs       decimal.Decimal `json:"profit_abs"`
	StockQuantity   decimal.Decimal `json:"stock_quantity"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	prices := checkout.ProductPrices(*product)
	return &ProductDTO{
		ID:              product.ID,
		Name:            product.Name,
		Brand:           product.Brand,
		BuyPriceExVat:   product.BuyPriceExVat,
		BuyPriceIncVat:  prices.BuyPriceIncVat,
		VATRate:         product.VATRate,
		SellPriceExVat:  product.SellPriceExVat,
		SellPriceIncVat: prices.SellPriceIncVat,
		ProfitAbs:       prices.ProfitAbs,
		StockQuantity:   product.StockQuantity,
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.UpdatedAt,
	}
}

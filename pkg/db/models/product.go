package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a retail catalog entry sold over the counter.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name           string          `gorm:"column:name;not null"`
	Brand          string          `gorm:"column:brand;not null;default:''"`
	BuyPriceExVat  decimal.Decimal `gorm:"column:buy_price_ex_vat;type:numeric(12,2);not null;default:0"`
	VATRate        decimal.Decimal `gorm:"column:vat_rate;type:numeric(6,4);not null"`
	SellPriceExVat decimal.Decimal `gorm:"column:sell_price_ex_vat;type:numeric(12,2);not null"`
	StockQuantity  decimal.Decimal `gorm:"column:stock_quantity;type:numeric(12,2);not null;default:0;check:chk_sale_products_stock_non_negative,stock_quantity >= 0"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "sale_products" }

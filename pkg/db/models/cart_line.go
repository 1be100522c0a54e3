package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one product's pending quantity in a session's cart. Prices are
// cached from the catalog at the time of the last mutation.
type CartLine struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SessionID       string          `gorm:"column:session_id;not null;uniqueIndex:ux_sale_cart_lines_session_product,priority:1"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_sale_cart_lines_session_product,priority:2"`
	ProductName     string          `gorm:"column:product_name;not null"`
	ProductBrand    string          `gorm:"column:product_brand;not null;default:''"`
	Quantity        decimal.Decimal `gorm:"column:quantity;type:numeric(12,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2);not null;default:0"`
	UnitPriceExVat  decimal.Decimal `gorm:"column:unit_price_ex_vat;type:numeric(12,2);not null"`
	UnitPriceIncVat decimal.Decimal `gorm:"column:unit_price_inc_vat;type:numeric(12,2);not null"`
	LineTotalExVat  decimal.Decimal `gorm:"column:line_total_ex_vat;type:numeric(12,2);not null"`
	LineTotalIncVat decimal.Decimal `gorm:"column:line_total_inc_vat;type:numeric(12,2);not null"`
	Product         *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartLine) TableName() string { return "sale_cart_lines" }

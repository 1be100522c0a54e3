package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is the receipt written when a cart is checked out.
type Sale struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SessionID   string          `gorm:"column:session_id;not null;index"`
	TotalExVat  decimal.Decimal `gorm:"column:total_ex_vat;type:numeric(12,2);not null"`
	TotalIncVat decimal.Decimal `gorm:"column:total_inc_vat;type:numeric(12,2);not null"`
	VATAmount   decimal.Decimal `gorm:"column:vat_amount;type:numeric(12,2);not null"`
	LineCount   int             `gorm:"column:line_count;not null"`
	Lines       []SaleLine      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (Sale) TableName() string { return "sales" }

// SaleLine snapshots a cart line as it was consumed by checkout.
type SaleLine struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SaleID          uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName     string          `gorm:"column:product_name;not null"`
	ProductBrand    string          `gorm:"column:product_brand;not null;default:''"`
	Quantity        decimal.Decimal `gorm:"column:quantity;type:numeric(12,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2);not null"`
	UnitPriceExVat  decimal.Decimal `gorm:"column:unit_price_ex_vat;type:numeric(12,2);not null"`
	UnitPriceIncVat decimal.Decimal `gorm:"column:unit_price_inc_vat;type:numeric(12,2);not null"`
	LineTotalExVat  decimal.Decimal `gorm:"column:line_total_ex_vat;type:numeric(12,2);not null"`
	LineTotalIncVat decimal.Decimal `gorm:"column:line_total_inc_vat;type:numeric(12,2);not null"`
}

func (SaleLine) TableName() string { return "sale_lines" }

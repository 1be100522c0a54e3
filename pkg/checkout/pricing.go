package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salon-retail/pkg/db/models"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// LinePrice is the full price breakdown of one cart line.
type LinePrice struct {
	Quantity        decimal.Decimal
	DiscountPercent decimal.Decimal
	UnitPriceExVat  decimal.Decimal
	UnitPriceIncVat decimal.Decimal
	LineTotalExVat  decimal.Decimal
	LineTotalIncVat decimal.Decimal
}

// Totals aggregates line totals for a cart or a receipt.
type Totals struct {
	TotalExVat  decimal.Decimal
	TotalIncVat decimal.Decimal
	VATAmount   decimal.Decimal
}

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ClampDiscount bounds a discount percentage to [0, 100].
func ClampDiscount(d decimal.Decimal) decimal.Decimal {
	switch {
	case d.IsNegative():
		return decimal.Zero
	case d.GreaterThan(hundred):
		return hundred
	default:
		return d
	}
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// UnitPrices applies the discount to the ex-VAT sell price and then adds VAT.
// Each step is rounded, so unitInc is derived from the rounded unitEx.
func UnitPrices(sellPriceExVat, discountPercent, vatRate decimal.Decimal) (unitEx, unitInc decimal.Decimal) {
	sell := floorZero(sellPriceExVat)
	vat := floorZero(vatRate)
	discount := ClampDiscount(discountPercent)

	unitEx = Round2(sell.Mul(one.Sub(discount.Div(hundred))))
	unitInc = Round2(unitEx.Mul(one.Add(vat)))
	return unitEx, unitInc
}

// LineTotals multiplies the rounded unit prices by quantity.
func LineTotals(unitEx, unitInc, qty decimal.Decimal) (lineEx, lineInc decimal.Decimal) {
	return Round2(unitEx.Mul(qty)), Round2(unitInc.Mul(qty))
}

// PriceLine prices qty units of product at the given discount against the
// product's current sell price and VAT rate.
func PriceLine(product models.Product, qty, discountPercent decimal.Decimal) LinePrice {
	discount := ClampDiscount(discountPercent)
	unitEx, unitInc := UnitPrices(product.SellPriceExVat, discount, product.VATRate)
	lineEx, lineInc := LineTotals(unitEx, unitInc, qty)
	return LinePrice{
		Quantity:        qty,
		DiscountPercent: discount,
		UnitPriceExVat:  unitEx,
		UnitPriceIncVat: unitInc,
		LineTotalExVat:  lineEx,
		LineTotalIncVat: lineInc,
	}
}

// ApplyTo copies the breakdown onto a persisted cart line.
func (p LinePrice) ApplyTo(line *models.CartLine) {
	line.Quantity = p.Quantity
	line.DiscountPercent = p.DiscountPercent
	line.UnitPriceExVat = p.UnitPriceExVat
	line.UnitPriceIncVat = p.UnitPriceIncVat
	line.LineTotalExVat = p.LineTotalExVat
	line.LineTotalIncVat = p.LineTotalIncVat
}

// SumLines totals the cached line prices.
func SumLines(lines []models.CartLine) Totals {
	totals := Totals{TotalExVat: decimal.Zero, TotalIncVat: decimal.Zero}
	for _, line := range lines {
		totals.TotalExVat = totals.TotalExVat.Add(line.LineTotalExVat)
		totals.TotalIncVat = totals.TotalIncVat.Add(line.LineTotalIncVat)
	}
	totals.TotalExVat = Round2(totals.TotalExVat)
	totals.TotalIncVat = Round2(totals.TotalIncVat)
	totals.VATAmount = totals.TotalIncVat.Sub(totals.TotalExVat)
	return totals
}

// CatalogPrices are the read-only values shown next to a catalog entry.
type CatalogPrices struct {
	BuyPriceIncVat  decimal.Decimal
	SellPriceIncVat decimal.Decimal
	ProfitAbs       decimal.Decimal
}

// ProductPrices derives the VAT-inclusive prices and absolute profit.
func ProductPrices(product models.Product) CatalogPrices {
	vat := one.Add(floorZero(product.VATRate))
	return CatalogPrices{
		BuyPriceIncVat:  Round2(product.BuyPriceExVat.Mul(vat)),
		SellPriceIncVat: Round2(product.SellPriceExVat.Mul(vat)),
		ProfitAbs:       Round2(product.SellPriceExVat.Sub(product.BuyPriceExVat)),
	}
}

// SellPriceFromMargin marks a buy price up by margin.
func SellPriceFromMargin(buyPriceExVat, margin decimal.Decimal) decimal.Decimal {
	return Round2(floorZero(buyPriceExVat).Mul(one.Add(floorZero(margin))))
}

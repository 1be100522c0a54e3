package helpers

import (
	"github.com/angelmondragon/salon-retail/internal/checkout/reservation"
	"github.com/angelmondragon/salon-retail/pkg/checkout"
	"github.com/angelmondragon/salon-retail/pkg/db/models"
	"github.com/google/uuid"
)

// QuantityInputs projects cart lines onto the quantity validator input.
func QuantityInputs(lines []models.CartLine) []checkout.LineQuantityInput {
	inputs := make([]checkout.LineQuantityInput, len(lines))
	for i, line := range lines {
		inputs[i] = checkout.LineQuantityInput{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
		}
	}
	return inputs
}

// DeductionRequests keeps cart order so the first short product is the one reported.
func DeductionRequests(lines []models.CartLine) []reservation.StockDeductionRequest {
	requests := make([]reservation.StockDeductionRequest, len(lines))
	for i, line := range lines {
		requests[i] = reservation.StockDeductionRequest{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Qty:         line.Quantity,
		}
	}
	return requests
}

// BuildSale snapshots the cart lines into a receipt. Totals are summed from
// the cached line totals, which is what the shopper was shown.
func BuildSale(sessionID string, lines []models.CartLine) *models.Sale {
	totals := checkout.SumLines(lines)
	sale := &models.Sale{
		ID:          uuid.New(),
		SessionID:   sessionID,
		TotalExVat:  totals.TotalExVat,
		TotalIncVat: totals.TotalIncVat,
		VATAmount:   totals.VATAmount,
		LineCount:   len(lines),
		Lines:       make([]models.SaleLine, 0, len(lines)),
	}
	for _, line := range lines {
		sale.Lines = append(sale.Lines, models.SaleLine{
			ID:              uuid.New(),
			SaleID:          sale.ID,
			ProductID:       line.ProductID,
			ProductName:     line.ProductName,
			ProductBrand:    line.ProductBrand,
			Quantity:        line.Quantity,
			DiscountPercent: line.DiscountPercent,
			UnitPriceExVat:  line.UnitPriceExVat,
			UnitPriceIncVat: line.UnitPriceIncVat,
			LineTotalExVat:  line.LineTotalExVat,
			LineTotalIncVat: line.LineTotalIncVat,
		})
	}
	return sale
}

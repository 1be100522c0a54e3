package reservation

import (
	"context"
	"errors"
	"fmt"

	product "github.com/angelmondragon/salon-retail/internal/products"
	"github.com/angelmondragon/salon-retail/pkg/checkout"
	pkgerrors "github.com/angelmondragon/salon-retail/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockDeductionRequest is one cart line's claim on a product's stock.
type StockDeductionRequest struct {
	ProductID   uuid.UUID
	ProductName string
	Qty         decimal.Decimal
}

// StockDeductionResult reports the stock left after a deduction.
type StockDeductionResult struct {
	ProductID uuid.UUID
	Deducted  decimal.Decimal
	Remaining decimal.Decimal
}

// DeductStock applies every request in order using guarded decrements bound
// to tx. The first request the stock cannot cover aborts with an
// INSUFFICIENT_STOCK error; the caller rolls tx back so earlier deductions
// never become visible.
func DeductStock(ctx context.Context, tx *gorm.DB, requests []StockDeductionRequest) ([]StockDeductionResult, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	for _, req := range requests {
		if req.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
		}
		if !req.Qty.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be positive for %s", req.ProductName))
		}
	}

	catalog := product.NewRepository(tx)
	results := make([]StockDeductionResult, 0, len(requests))
	for _, req := range requests {
		err := catalog.DecrementStock(ctx, req.ProductID, req.Qty)
		switch {
		case errors.Is(err, product.ErrInsufficientStock):
			return nil, shortfall(ctx, catalog, req)
		case err != nil:
			return nil, err
		}

		current, err := catalog.FindByID(ctx, req.ProductID)
		if err != nil {
			return nil, err
		}
		results = append(results, StockDeductionResult{
			ProductID: req.ProductID,
			Deducted:  req.Qty,
			Remaining: current.StockQuantity,
		})
	}
	return results, nil
}

// shortfall reloads the product so the error carries the stock actually on hand.
func shortfall(ctx context.Context, catalog *product.Repository, req StockDeductionRequest) error {
	current, err := catalog.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s no longer exists", req.ProductName))
		}
		return err
	}
	return checkout.InsufficientStock(current.ID, current.Name, req.Qty, current.StockQuantity)
}

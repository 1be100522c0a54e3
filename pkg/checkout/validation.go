package checkout

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/salon-retail/pkg/errors"
)

// LineQuantityInput describes the data required to verify a cart line before stock deduction.
type LineQuantityInput struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
}

// LineQuantityViolation exposes the data returned to callers when a validation fails.
type LineQuantityViolation struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Quantity    string    `json:"quantity"`
}

// ValidateLineQuantities ensures every line carries a positive quantity.
// A zero line is a valid cart state but cannot be sold.
func ValidateLineQuantities(items []LineQuantityInput) error {
	var violations []LineQuantityViolation
	for _, item := range items {
		if item.Quantity.IsPositive() {
			continue
		}
		violations = append(violations, LineQuantityViolation{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity.StringFixed(2),
		})
	}
	if len(violations) == 0 {
		return nil
	}
	msg := fmt.Sprintf("quantity must be positive for %s", violations[0].ProductName)
	if len(violations) > 1 {
		msg = fmt.Sprintf("quantity must be positive for %d item(s)", len(violations))
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{
		"violations": violations,
	})
}

// InsufficientStock builds the error returned when a requested quantity exceeds
// the stock currently on hand.
func InsufficientStock(productID uuid.UUID, productName string, requested, available decimal.Decimal) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("not enough stock for %s", productName)).WithDetails(map[string]any{
		"product_id":   productID.String(),
		"product_name": productName,
		"requested":    requested.StringFixed(2),
		"available":    available.StringFixed(2),
	})
}

package checkout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/salon-retail/pkg/errors"
)

func TestValidateLineQuantities_NoViolations(t *testing.T) {
	items := []LineQuantityInput{
		{
			ProductID:   uuid.New(),
			ProductName: "Argan Shampoo",
			Quantity:    decimal.RequireFromString("0.01"),
		},
		{
			ProductID:   uuid.New(),
			ProductName: "Styling Wax",
			Quantity:    decimal.NewFromInt(2),
		},
	}
	if err := ValidateLineQuantities(items); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateLineQuantities_Violations(t *testing.T) {
	violationItems := []LineQuantityInput{
		{
			ProductID:   uuid.New(),
			ProductName: "Zeroed Conditioner",
			Quantity:    decimal.Zero,
		},
		{
			ProductID:   uuid.New(),
			ProductName: "Negative Serum",
			Quantity:    decimal.NewFromInt(-1),
		},
	}
	err := ValidateLineQuantities(violationItems)
	if err == nil {
		t.Fatal("expected error for non-positive quantities")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected pkgerrors.Error, got %T", err)
	}
	if typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected code %s, got %s", pkgerrors.CodeValidation, typed.Code())
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	rawViolations, ok := details["violations"].([]LineQuantityViolation)
	if !ok {
		t.Fatalf("expected violations slice, got %T", details["violations"])
	}
	if len(rawViolations) != len(violationItems) {
		t.Fatalf("expected %d violations, got %d", len(violationItems), len(rawViolations))
	}
	for i, violation := range rawViolations {
		input := violationItems[i]
		if violation.ProductID != input.ProductID {
			t.Fatalf("expected product id %s, got %s", input.ProductID, violation.ProductID)
		}
		if violation.ProductName != input.ProductName {
			t.Fatalf("expected product name %q, got %q", input.ProductName, violation.ProductName)
		}
	}
}

func TestValidateLineQuantities_SingleViolationNamesProduct(t *testing.T) {
	err := ValidateLineQuantities([]LineQuantityInput{{ProductID: uuid.New(), ProductName: "Hair Oil", Quantity: decimal.Zero}})
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Message() != "quantity must be positive for Hair Oil" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestInsufficientStockDetails(t *testing.T) {
	id := uuid.New()
	err := InsufficientStock(id, "Hair Oil", decimal.RequireFromString("2.01"), decimal.NewFromInt(2))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	if typed.Message() != "not enough stock for Hair Oil" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
	details := typed.Details().(map[string]any)
	if details["product_id"] != id.String() {
		t.Fatalf("expected product id detail, got %v", details["product_id"])
	}
	if details["requested"] != "2.01" || details["available"] != "2.00" {
		t.Fatalf("unexpected quantities %v / %v", details["requested"], details["available"])
	}
}

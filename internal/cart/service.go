package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	product "github.com/angelmondragon/salon-retail/internal/products"
	"github.com/angelmondragon/salon-retail/pkg/checkout"
	"github.com/angelmondragon/salon-retail/pkg/db"
	"github.com/angelmondragon/salon-retail/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salon-retail/pkg/errors"
	"github.com/angelmondragon/salon-retail/pkg/logger"
	"github.com/angelmondragon/salon-retail/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WarningQuantityClamped is reported when an update asked for more than is in stock.
const WarningQuantityClamped = "quantity_clamped_to_stock"

// errConcurrentInsert marks a lost race on the (session, product) unique
// index; the retried transaction finds the winner's line and merges into it.
var errConcurrentInsert = errors.New("cart line inserted concurrently")

type store interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	Run(ctx context.Context, fn func(db *gorm.DB) error) error
}

type catalogBinder interface {
	Catalog(tx *gorm.DB) product.Catalog
}

// Service exposes the session cart operations.
type Service interface {
	AddToCart(ctx context.Context, sessionID string, input AddToCartInput) (*models.CartLine, error)
	UpdateLine(ctx context.Context, sessionID string, lineID uuid.UUID, input UpdateLineInput) (*UpdateLineResult, error)
	ListLines(ctx context.Context, sessionID string) ([]models.CartLine, error)
	Summary(ctx context.Context, sessionID string) (*CartSummary, error)
	ClearCart(ctx context.Context, sessionID string) error
}

// AddToCartInput is a request to add quantity of a product to the cart.
// A nil DiscountPercent keeps the discount already on the line.
type AddToCartInput struct {
	ProductID       uuid.UUID
	Quantity        decimal.Decimal
	DiscountPercent *decimal.Decimal
}

// UpdateLineInput carries the fields an edit may change; nil fields stay as they are.
type UpdateLineInput struct {
	Quantity        *decimal.Decimal
	DiscountPercent *decimal.Decimal
}

// UpdateLineResult is the edited line plus any adjustments made to the request.
type UpdateLineResult struct {
	Line     *models.CartLine
	Warnings []string
}

// CartSummary is the session's lines with their totals.
type CartSummary struct {
	Lines       []models.CartLine
	TotalExVat  decimal.Decimal
	TotalIncVat decimal.Decimal
	VATAmount   decimal.Decimal
}

// ServiceParams configure the cart service.
type ServiceParams struct {
	Repo    CartRepository
	Store   store
	Catalog catalogBinder
	Logger  *logger.Logger
	Metrics *metrics.CheckoutMetrics
}

type service struct {
	repo    CartRepository
	store   store
	catalog catalogBinder
	logg    *logger.Logger
	metrics *metrics.CheckoutMetrics
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    params.Repo,
		store:   params.Store,
		catalog: params.Catalog,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// AddToCart checks the requested quantity against current stock and merges it
// into the session's line for the product. Stock is not reserved.
func (s *service) AddToCart(ctx context.Context, sessionID string, input AddToCartInput) (*models.CartLine, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	qty := checkout.Round2(input.Quantity)
	if !qty.Equal(input.Quantity) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity supports at most 2 decimal places")
	}

	var result *models.CartLine
	err := s.store.WithTx(ctx, func(tx *gorm.DB) error {
		p, err := s.catalog.Catalog(tx).FindByID(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return err
		}
		if qty.GreaterThan(p.StockQuantity) {
			return checkout.InsufficientStock(p.ID, p.Name, qty, p.StockQuantity)
		}

		repo := s.repo.WithTx(tx)
		line, err := repo.FindBySessionAndProduct(ctx, sessionID, p.ID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			discount := decimal.Zero
			if input.DiscountPercent != nil {
				discount = *input.DiscountPercent
			}
			line = &models.CartLine{
				ID:        uuid.New(),
				SessionID: sessionID,
				ProductID: p.ID,
			}
			snapshotProduct(line, p)
			checkout.PriceLine(*p, qty, discount).ApplyTo(line)
			if _, err := repo.Create(ctx, line); err != nil {
				if db.IsUniqueViolation(err, "") {
					return errConcurrentInsert
				}
				return err
			}
		case err != nil:
			return err
		default:
			discount := line.DiscountPercent
			if input.DiscountPercent != nil {
				discount = *input.DiscountPercent
			}
			snapshotProduct(line, p)
			checkout.PriceLine(*p, line.Quantity.Add(qty), discount).ApplyTo(line)
			if _, err := repo.Update(ctx, line); err != nil {
				return err
			}
		}
		result = line
		return nil
	})
	if err != nil {
		return nil, wrapStoreError(err, "add to cart")
	}

	s.metrics.IncCartMutation("add")
	return result, nil
}

// UpdateLine edits a line's quantity and discount. Quantities are clamped to
// [0, stock]; a zero line stays in the cart.
func (s *service) UpdateLine(ctx context.Context, sessionID string, lineID uuid.UUID, input UpdateLineInput) (*UpdateLineResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if lineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line id is required")
	}
	if input.Quantity == nil && input.DiscountPercent == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity or discount_percent is required")
	}

	var result *UpdateLineResult
	err := s.store.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		line, err := repo.FindByIDAndSession(ctx, lineID, sessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
			}
			return err
		}
		p, err := s.catalog.Catalog(tx).FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return err
		}

		var warnings []string
		qty := line.Quantity
		if input.Quantity != nil {
			var clamped bool
			qty, clamped = clampQuantity(*input.Quantity, p.StockQuantity)
			if clamped {
				warnings = append(warnings, WarningQuantityClamped)
			}
		}
		discount := line.DiscountPercent
		if input.DiscountPercent != nil {
			discount = *input.DiscountPercent
		}

		snapshotProduct(line, p)
		checkout.PriceLine(*p, qty, discount).ApplyTo(line)
		if _, err := repo.Update(ctx, line); err != nil {
			return err
		}
		result = &UpdateLineResult{Line: line, Warnings: warnings}
		return nil
	})
	if err != nil {
		return nil, wrapStoreError(err, "update cart line")
	}

	if len(result.Warnings) > 0 {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"line_id":    lineID.String(),
			"product_id": result.Line.ProductID.String(),
			"requested":  input.Quantity.StringFixed(2),
			"applied":    result.Line.Quantity.StringFixed(2),
		})
		s.logg.Warn(logCtx, "cart.quantity_clamped_to_stock")
	}
	s.metrics.IncCartMutation("update")
	return result, nil
}

func (s *service) ListLines(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	var lines []models.CartLine
	err := s.store.Run(ctx, func(conn *gorm.DB) error {
		var err error
		lines, err = s.repo.WithTx(conn).ListBySession(ctx, sessionID)
		return err
	})
	if err != nil {
		return nil, wrapStoreError(err, "list cart lines")
	}
	return lines, nil
}

// Summary lists the session's lines with cart totals.
func (s *service) Summary(ctx context.Context, sessionID string) (*CartSummary, error) {
	lines, err := s.ListLines(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	totals := checkout.SumLines(lines)
	return &CartSummary{
		Lines:       lines,
		TotalExVat:  totals.TotalExVat,
		TotalIncVat: totals.TotalIncVat,
		VATAmount:   totals.VATAmount,
	}, nil
}

// ClearCart drops every line of the session. Clearing an empty cart is a no-op.
func (s *service) ClearCart(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	err := s.store.Run(ctx, func(conn *gorm.DB) error {
		_, err := s.repo.WithTx(conn).DeleteBySession(ctx, sessionID)
		return err
	})
	if err != nil {
		return wrapStoreError(err, "clear cart")
	}
	s.metrics.IncCartMutation("clear")
	return nil
}

func snapshotProduct(line *models.CartLine, p *models.Product) {
	line.ProductName = p.Name
	line.ProductBrand = p.Brand
}

// clampQuantity bounds a requested quantity to [0, stock] and reports whether
// the stock ceiling was applied.
func clampQuantity(requested, stock decimal.Decimal) (decimal.Decimal, bool) {
	qty := checkout.Round2(requested)
	if qty.IsNegative() {
		return decimal.Zero, false
	}
	if stock.IsNegative() {
		stock = decimal.Zero
	}
	if qty.GreaterThan(stock) {
		return stock, true
	}
	return qty, false
}

func wrapStoreError(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

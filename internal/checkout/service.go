package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/salon-retail/internal/cart"
	"github.com/angelmondragon/salon-retail/internal/checkout/helpers"
	"github.com/angelmondragon/salon-retail/internal/checkout/reservation"
	"github.com/angelmondragon/salon-retail/pkg/checkout"
	"github.com/angelmondragon/salon-retail/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salon-retail/pkg/errors"
	"github.com/angelmondragon/salon-retail/pkg/logger"
	"github.com/angelmondragon/salon-retail/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type store interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	Run(ctx context.Context, fn func(db *gorm.DB) error) error
}

type passwordVerifier interface {
	Verify(submitted string) bool
}

type stockDeductor interface {
	Deduct(ctx context.Context, tx *gorm.DB, requests []reservation.StockDeductionRequest) ([]reservation.StockDeductionResult, error)
}

type deductionEngine struct{}

func (deductionEngine) Deduct(ctx context.Context, tx *gorm.DB, requests []reservation.StockDeductionRequest) ([]reservation.StockDeductionResult, error) {
	return reservation.DeductStock(ctx, tx, requests)
}

// Service converts a session's cart into a sale.
type Service interface {
	Checkout(ctx context.Context, sessionID, password string) (*models.Sale, error)
	GetSale(ctx context.Context, sessionID string, saleID uuid.UUID) (*models.Sale, error)
}

// ServiceParams configure the checkout service.
type ServiceParams struct {
	Store     store
	CartRepo  cart.CartRepository
	SalesRepo Repository
	Password  passwordVerifier
	Deductor  stockDeductor
	Logger    *logger.Logger
	Metrics   *metrics.CheckoutMetrics
}

type service struct {
	store    store
	cartRepo cart.CartRepository
	sales    Repository
	password passwordVerifier
	deductor stockDeductor
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.SalesRepo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if params.Password == nil {
		return nil, fmt.Errorf("password verifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	deductor := params.Deductor
	if deductor == nil {
		deductor = deductionEngine{}
	}
	return &service{
		store:    params.Store,
		cartRepo: params.CartRepo,
		sales:    params.SalesRepo,
		password: params.Password,
		deductor: deductor,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// Checkout verifies the operator password, then in a single transaction
// deducts stock for every cart line, writes the receipt and clears the cart.
// Any failure leaves stock and cart exactly as they were.
func (s *service) Checkout(ctx context.Context, sessionID, password string) (sale *models.Sale, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveCheckout(outcomeFor(err), time.Since(started))
	}()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	ctx = s.logg.WithSessionID(ctx, sessionID)

	if !s.password.Verify(password) {
		s.logg.Warn(ctx, "checkout.password_rejected")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "incorrect password")
	}

	err = s.store.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)

		lines, err := cartRepo.ListBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
		}
		if err := checkout.ValidateLineQuantities(helpers.QuantityInputs(lines)); err != nil {
			return err
		}

		if _, err := s.deductor.Deduct(ctx, tx, helpers.DeductionRequests(lines)); err != nil {
			return err
		}

		receipt := helpers.BuildSale(sessionID, lines)
		if err := s.sales.WithTx(tx).CreateSale(ctx, receipt); err != nil {
			return err
		}

		if _, err := cartRepo.DeleteBySession(ctx, sessionID); err != nil {
			return err
		}
		sale = receipt
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout failed")
		}
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout.aborted")
		return nil, err
	}

	logCtx := s.logg.WithSaleID(ctx, sale.ID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"line_count":    sale.LineCount,
		"total_inc_vat": sale.TotalIncVat.StringFixed(2),
	})
	s.logg.Info(logCtx, "checkout.completed")
	return sale, nil
}

// GetSale returns a receipt written for the session.
func (s *service) GetSale(ctx context.Context, sessionID string, saleID uuid.UUID) (*models.Sale, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if saleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id is required")
	}
	var sale *models.Sale
	err := s.store.Run(ctx, func(conn *gorm.DB) error {
		var err error
		sale, err = s.sales.WithTx(conn).FindByIDAndSession(ctx, saleID, sessionID)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return sale, nil
}

func outcomeFor(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	switch {
	case pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized):
		return metrics.OutcomeUnauthorized
	case pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart):
		return metrics.OutcomeEmptyCart
	case pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock):
		return metrics.OutcomeInsufficientStock
	case pkgerrors.IsCode(err, pkgerrors.CodeValidation):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}

package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/salon-retail/pkg/checkout"
	"github.com/angelmondragon/salon-retail/pkg/config"
	"github.com/angelmondragon/salon-retail/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salon-retail/pkg/errors"
	"github.com/angelmondragon/salon-retail/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	SearchProducts(ctx context.Context, input SearchProductsInput) (*ProductListResult, error)
}

// CreateProductInput holds the validated payload to create a product.
// SellPriceExVat and VATRate fall back to the configured margin and VAT.
type CreateProductInput struct {
	Name           string
	Brand          string
	BuyPriceExVat  decimal.Decimal
	SellPriceExVat *decimal.Decimal
	VATRate        *decimal.Decimal
	StockQuantity  decimal.Decimal
}

type runner interface {
	Run(ctx context.Context, fn func(db *gorm.DB) error) error
}

type service struct {
	repo     *Repository
	dbClient runner
	pricing  config.PricingConfig
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient runner, pricing config.PricingConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		pricing:  pricing,
	}, nil
}

// CreateProduct adds a catalog entry, deriving the sell price from the buy
// price and profit margin when none is supplied.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.BuyPriceExVat.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buy price must be non-negative")
	}
	if input.StockQuantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock quantity must be non-negative")
	}

	vat := s.pricing.VAT()
	if input.VATRate != nil {
		if input.VATRate.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "vat rate must be non-negative")
		}
		vat = *input.VATRate
	}

	buy := checkout.Round2(input.BuyPriceExVat)
	sell := checkout.SellPriceFromMargin(buy, s.pricing.Margin())
	if input.SellPriceExVat != nil {
		if input.SellPriceExVat.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sell price must be non-negative")
		}
		sell = checkout.Round2(*input.SellPriceExVat)
	}

	product := &models.Product{
		ID:             uuid.New(),
		Name:           name,
		Brand:          strings.TrimSpace(input.Brand),
		BuyPriceExVat:  buy,
		VATRate:        vat.Round(4),
		SellPriceExVat: sell,
		StockQuantity:  checkout.Round2(input.StockQuantity),
	}

	if err := s.dbClient.Run(ctx, func(db *gorm.DB) error {
		_, err := s.repo.WithTx(db).CreateProduct(ctx, product)
		return err
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return NewProductDTO(product), nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	var product *models.Product
	err := s.dbClient.Run(ctx, func(db *gorm.DB) error {
		var err error
		product, err = s.repo.WithTx(db).FindByID(ctx, productID)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewProductDTO(product), nil
}

func (s *service) SearchProducts(ctx context.Context, input SearchProductsInput) (*ProductListResult, error) {
	if _, err := pagination.ParseCursor(input.Pagination.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	var result *ProductListResult
	err := s.dbClient.Run(ctx, func(db *gorm.DB) error {
		var err error
		result, err = s.repo.WithTx(db).Search(ctx, searchQuery{Text: input.Query, Pagination: input.Pagination})
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}
	return result, nil
}

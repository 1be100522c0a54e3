package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salon-retail/api/responses"
	"github.com/angelmondragon/salon-retail/api/validators"
	productsvc "github.com/angelmondragon/salon-retail/internal/products"
	pkgerrors "github.com/angelmondragon/salon-retail/pkg/errors"
	"github.com/angelmondragon/salon-retail/pkg/logger"
	"github.com/angelmondragon/salon-retail/pkg/pagination"
)

const (
	maxProductNameLen  = 200
	maxProductBrandLen = 120
	maxSearchLen       = 100
)

type createProductRequest struct {
	Name           string           `json:"name" validate:"required,max=200"`
	Brand          string           `json:"brand" validate:"max=120"`
	BuyPriceExVat  *decimal.Decimal `json:"buy_price_ex_vat" validate:"required"`
	SellPriceExVat *decimal.Decimal `json:"sell_price_ex_vat,omitempty"`
	VATRate        *decimal.Decimal `json:"vat_rate,omitempty"`
	StockQuantity  *decimal.Decimal `json:"stock_quantity" validate:"required"`
}

func (p createProductRequest) toCreateInput() productsvc.CreateProductInput {
	return productsvc.CreateProductInput{
		Name:           validators.SanitizeString(p.Name, maxProductNameLen),
		Brand:          validators.SanitizeString(p.Brand, maxProductBrandLen),
		BuyPriceExVat:  *p.BuyPriceExVat,
		SellPriceExVat: p.SellPriceExVat,
		VATRate:        p.VATRate,
		StockQuantity:  *p.StockQuantity,
	}
}

// ProductCreate adds a catalog entry.
func ProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), payload.toCreateInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductDetail returns one catalog entry.
func ProductDetail(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := uuidParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductSearch lists catalog entries matching ?q= on name or brand.
func ProductSearch(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		result, err := svc.SearchProducts(r.Context(), productsvc.SearchProductsInput{
			Query: validators.SanitizeString(query.Get("q"), maxSearchLen),
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: query.Get("cursor"),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

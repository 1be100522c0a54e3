package cart

import (
	"context"
	"io"
	"testing"
	"time"

	product "github.com/angelmondragon/salon-retail/internal/products"
	"github.com/angelmondragon/salon-retail/pkg/db"
	"github.com/angelmondragon/salon-retail/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salon-retail/pkg/errors"
	"github.com/angelmondragon/salon-retail/pkg/logger"
	"github.com/angelmondragon/salon-retail/pkg/migrate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type cartFixture struct {
	conn *gorm.DB
	svc  Service
}

func newFixture(t *testing.T) *cartFixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:cart_"+uuid.NewString()+"?mode=memory&cache=shared&_foreign_keys=on"), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, migrate.AutoMigrate(context.Background(), conn))

	svc, err := NewService(ServiceParams{
		Repo:    NewRepository(conn),
		Store:   db.NewFromConn(conn, db.RetryPolicy{MaxAttempts: 2, Delay: time.Millisecond}),
		Catalog: product.NewRepository(conn),
		Logger:  logger.New(logger.Options{ServiceName: "cart-test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return &cartFixture{conn: conn, svc: svc}
}

func (f *cartFixture) seedProduct(t *testing.T, name, sell, stock string) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:             uuid.New(),
		Name:           name,
		Brand:          "Salon Pro",
		BuyPriceExVat:  decimal.RequireFromString("5.00"),
		VATRate:        decimal.RequireFromString("0.255"),
		SellPriceExVat: decimal.RequireFromString(sell),
		StockQuantity:  decimal.RequireFromString(stock),
	}
	require.NoError(t, f.conn.Create(p).Error)
	return p
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code(), "unexpected error: %v", err)
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestAddToCartPricesNewLine(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Argan Shampoo", "10.00", "5")

	line, err := f.svc.AddToCart(context.Background(), "sess-1", AddToCartInput{ProductID: p.ID, Quantity: dec("2")})
	require.NoError(t, err)
	assert.Equal(t, "Argan Shampoo", line.ProductName)
	assert.Equal(t, "Salon Pro", line.ProductBrand)
	assert.Equal(t, "10.00", line.UnitPriceExVat.StringFixed(2))
	assert.Equal(t, "12.55", line.UnitPriceIncVat.StringFixed(2))
	assert.Equal(t, "20.00", line.LineTotalExVat.StringFixed(2))
	assert.Equal(t, "25.10", line.LineTotalIncVat.StringFixed(2))

	var reloaded models.Product
	require.NoError(t, f.conn.First(&reloaded, "id = ?", p.ID).Error)
	assert.Equal(t, "5.00", reloaded.StockQuantity.StringFixed(2), "adding must not reserve stock")
}

func TestAddToCartMergesIntoSingleLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Argan Shampoo", "10.00", "5")

	_, err := f.svc.AddToCart(ctx, "sess-1", AddToCartInput{ProductID: p.ID, Quantity: dec("1"), DiscountPercent: decPtr("10")})
	require.NoError(t, err)
	line, err := f.svc.AddToCart(ctx, "sess-1", AddToCartInput{ProductID: p.ID, Quantity: dec("1")})
	require.NoError(t, err)

	assert.Equal(t, "2.00", line.Quantity.StringFixed(2))
	assert.Equal(t, "10.00", line.DiscountPercent.StringFixed(2), "discount preserved when not supplied")
	assert.Equal(t, "18.00", line.LineTotalExVat.StringFixed(2))
	assert.Equal(t, "22.60", line.LineTotalIncVat.StringFixed(2))

	lines, err := f.svc.ListLines(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)

	line, err = f.svc.AddToCart(ctx, "sess-1", AddToCartInput{ProductID: p.ID, Quantity: dec("1"), DiscountPercent: decPtr("0")})
	require.NoError(t, err)
	assert.True(t, line.DiscountPercent.IsZero(), "explicit discount replaces the stored one")
	assert.Equal(t, "3.00", line.Quantity.StringFixed(2))

	other, err := f.svc.ListLines(ctx, "sess-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAddToCartStockBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Hair Oil", "12.00", "2")

	_, err := f.svc.AddToCart(ctx, "sess-a", AddToCartInput{ProductID: p.ID, Quantity: dec("2.01")})
	requireCode(t, err, pkgerrors.CodeInsufficientStock)
	details := pkgerrors.As(err).Details().(map[string]any)
	assert.Equal(t, "Hair Oil", details["product_name"])
	assert.Equal(t, "2.01", details["requested"])
	assert.Equal(t, "2.00", details["available"])

	lines, err := f.svc.ListLines(ctx, "sess-a")
	require.NoError(t, err)
	assert.Empty(t, lines)

	line, err := f.svc.AddToCart(ctx, "sess-a", AddToCartInput{ProductID: p.ID, Quantity: dec("2")})
	require.NoError(t, err)
	assert.Equal(t, "2.00", line.Quantity.StringFixed(2))
}

func TestAddToCartValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Hair Oil", "12.00", "2")

	_, err := f.svc.AddToCart(ctx, " ", AddToCartInput{ProductID: p.ID, Quantity: dec("1")})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.AddToCart(ctx, "sess", AddToCartInput{ProductID: p.ID, Quantity: dec("0")})
	requireCode(t, err, pkgerrors.CodeValidation)
	assert.Equal(t, "quantity must be positive", pkgerrors.As(err).Message())

	_, err = f.svc.AddToCart(ctx, "sess", AddToCartInput{ProductID: p.ID, Quantity: dec("-1")})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.AddToCart(ctx, "sess", AddToCartInput{ProductID: uuid.New(), Quantity: dec("1")})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestAddToCartRejectsSubCentQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Hair Oil", "12.00", "2")

	_, err := f.svc.AddToCart(ctx, "sess", AddToCartInput{ProductID: p.ID, Quantity: dec("2.004")})
	requireCode(t, err, pkgerrors.CodeValidation)
	assert.Equal(t, "quantity supports at most 2 decimal places", pkgerrors.As(err).Message())

	_, err = f.svc.AddToCart(ctx, "sess", AddToCartInput{ProductID: p.ID, Quantity: dec("0.004")})
	requireCode(t, err, pkgerrors.CodeValidation)

	lines, err := f.svc.ListLines(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, lines)

	line, err := f.svc.AddToCart(ctx, "sess", AddToCartInput{ProductID: p.ID, Quantity: dec("1.500")})
	require.NoError(t, err)
	assert.Equal(t, "1.50", line.Quantity.StringFixed(2))
}

func TestUpdateLineClampsToStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Argan Shampoo", "10.00", "5")

	line, err := f.svc.AddToCart(ctx, "sess-1", AddToCartInput{ProductID: p.ID, Quantity: dec("1")})
	require.NoError(t, err)

	result, err := f.svc.UpdateLine(ctx, "sess-1", line.ID, UpdateLineInput{Quantity: decPtr("9"), DiscountPercent: decPtr("150")})
	require.NoError(t, err)
	assert.Equal(t, []string{WarningQuantityClamped}, result.Warnings)
	assert.Equal(t, "5.00", result.Line.Quantity.StringFixed(2))
	assert.Equal(t, "100.00", result.Line.DiscountPercent.StringFixed(2))
	assert.True(t, result.Line.LineTotalIncVat.IsZero())

	result, err = f.svc.UpdateLine(ctx, "sess-1", line.ID, UpdateLineInput{Quantity: decPtr("-3")})
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.True(t, result.Line.Quantity.IsZero())

	lines, err := f.svc.ListLines(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, lines, 1, "zero-quantity lines stay in the cart")
}

func TestUpdateLineRepricesFromCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Argan Shampoo", "10.00", "5")

	line, err := f.svc.AddToCart(ctx, "sess-1", AddToCartInput{ProductID: p.ID, Quantity: dec("2")})
	require.NoError(t, err)

	require.NoError(t, f.conn.Model(&models.Product{}).Where("id = ?", p.ID).Update("sell_price_ex_vat", dec("20.00")).Error)

	result, err := f.svc.UpdateLine(ctx, "sess-1", line.ID, UpdateLineInput{DiscountPercent: decPtr("10")})
	require.NoError(t, err)
	assert.Equal(t, "18.00", result.Line.UnitPriceExVat.StringFixed(2))
	assert.Equal(t, "22.59", result.Line.UnitPriceIncVat.StringFixed(2))
	assert.Equal(t, "45.18", result.Line.LineTotalIncVat.StringFixed(2))
}

func TestUpdateLineScopedToSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Argan Shampoo", "10.00", "5")

	line, err := f.svc.AddToCart(ctx, "sess-1", AddToCartInput{ProductID: p.ID, Quantity: dec("1")})
	require.NoError(t, err)

	_, err = f.svc.UpdateLine(ctx, "sess-2", line.ID, UpdateLineInput{Quantity: decPtr("2")})
	requireCode(t, err, pkgerrors.CodeNotFound)
	assert.Equal(t, "cart line not found", pkgerrors.As(err).Message())

	_, err = f.svc.UpdateLine(ctx, "sess-1", line.ID, UpdateLineInput{})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestSummaryAndClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shampoo := f.seedProduct(t, "Argan Shampoo", "10.00", "5")
	wax := f.seedProduct(t, "Styling Wax", "4.00", "10")

	_, err := f.svc.AddToCart(ctx, "sess-1", AddToCartInput{ProductID: shampoo.ID, Quantity: dec("2"), DiscountPercent: decPtr("10")})
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, "sess-1", AddToCartInput{ProductID: wax.ID, Quantity: dec("1")})
	require.NoError(t, err)

	summary, err := f.svc.Summary(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, summary.Lines, 2)
	assert.Equal(t, "Argan Shampoo", summary.Lines[0].ProductName)
	assert.Equal(t, "22.00", summary.TotalExVat.StringFixed(2))
	assert.Equal(t, "27.62", summary.TotalIncVat.StringFixed(2))
	assert.Equal(t, "5.62", summary.VATAmount.StringFixed(2))

	require.NoError(t, f.svc.ClearCart(ctx, "sess-1"))
	require.NoError(t, f.svc.ClearCart(ctx, "sess-1"))

	summary, err = f.svc.Summary(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, summary.Lines)
	assert.True(t, summary.TotalIncVat.IsZero())
}

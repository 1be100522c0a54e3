package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/angelmondragon/salon-retail/api/controllers"
	"github.com/angelmondragon/salon-retail/api/middleware"
	"github.com/angelmondragon/salon-retail/internal/cart"
	checkoutsvc "github.com/angelmondragon/salon-retail/internal/checkout"
	products "github.com/angelmondragon/salon-retail/internal/products"
	"github.com/angelmondragon/salon-retail/pkg/auth/session"
	"github.com/angelmondragon/salon-retail/pkg/config"
	"github.com/angelmondragon/salon-retail/pkg/db"
	"github.com/angelmondragon/salon-retail/pkg/logger"
)

type sessionManager interface {
	Resolve(r *http.Request) (session.Session, error)
	Write(w http.ResponseWriter, s session.Session)
}

// RedisStore is the redis surface used by checkout protection and readiness.
// Pass an untyped nil when redis is not configured.
type RedisStore interface {
	Get(context.Context, string) (string, error)
	Set(context.Context, string, any, time.Duration) error
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	Del(context.Context, ...string) error
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	IdempotencyKey(scope, id string) string
	Ping(context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient RedisStore,
	sessionManager sessionManager,
	productService products.Service,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		secureHeaders(cfg),
	)

	checkoutPolicy := middleware.NewRateLimitPolicy(
		"checkout",
		cfg.CheckoutRateLimit.Window,
		cfg.CheckoutRateLimit.IPLimit,
		cfg.CheckoutRateLimit.SessionLimit,
	)

	var (
		rateStore   middleware.RateLimitStore
		idemStore   middleware.IdempotencyStore
		redisPinger controllers.Pinger
	)
	if redisClient != nil {
		rateStore = redisClient
		idemStore = redisClient
		redisPinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.HTTP.RequestsPerMinute > 0 {
			r.Use(httprate.Limit(cfg.HTTP.RequestsPerMinute, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		}
		r.Use(middleware.Session(sessionManager, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductSearch(productService, logg))
			r.Post("/", controllers.ProductCreate(productService, logg))
			r.Get("/{productId}", controllers.ProductDetail(productService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Patch("/items/{lineId}", controllers.CartUpdateItem(cartService, logg))
		})

		r.With(
			middleware.RateLimit(checkoutPolicy, rateStore, logg),
			middleware.Idempotency(idemStore, logg),
		).Post("/checkout", controllers.Checkout(checkoutService, logg))

		r.Get("/sales/{saleId}", controllers.SaleGet(checkoutService, logg))
	})

	return r
}

func secureHeaders(cfg *config.Config) func(http.Handler) http.Handler {
	return secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !cfg.App.IsProd(),
	}).Handler
}

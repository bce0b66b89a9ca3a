package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/localpop/localpop-backend/api/controllers"
	"github.com/localpop/localpop-backend/api/middleware"
	"github.com/localpop/localpop-backend/internal/auth"
	"github.com/localpop/localpop-backend/internal/products"
	"github.com/localpop/localpop-backend/internal/purchases"
	"github.com/localpop/localpop-backend/internal/reviews"
	"github.com/localpop/localpop-backend/internal/stats"
	"github.com/localpop/localpop-backend/internal/users"
	"github.com/localpop/localpop-backend/internal/wishlist"
	"github.com/localpop/localpop-backend/pkg/auth/session"
	"github.com/localpop/localpop-backend/pkg/config"
	"github.com/localpop/localpop-backend/pkg/enums"
	"github.com/localpop/localpop-backend/pkg/logger"
)

// Deps bundles everything the router wires into handlers. The payment
// notify route stays public: the gateway authenticates itself through the
// payload signature, not a bearer token.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       controllers.Pinger
	RedisPinger    controllers.Pinger
	Sessions       session.AccessSessionChecker
	Registry       *prometheus.Registry
	AuthService    auth.Service
	Register       auth.RegisterService
	Products       products.Service
	Purchases      purchases.Service
	Payments       controllers.PaymentGateway
	Reviews        reviews.Service
	Wishlist       wishlist.Service
	Stats          stats.Service
	UserRepository *users.Repository
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisPinger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(deps.Register, deps.AuthService, logg))
		r.Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	// Public marketplace browse plus the gateway callback.
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/payments/notify", controllers.PaymentsNotify(deps.Payments, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(deps.Products, logg))
			r.Get("/{productId}", controllers.ProductsGet(deps.Products, logg))
			r.Get("/{productId}/related", controllers.ProductsRelated(deps.Products, logg))
			r.Get("/{productId}/reviews", controllers.ReviewsList(deps.Reviews, logg))
			r.Get("/{productId}/reviews/summary", controllers.ReviewsSummary(deps.Reviews, logg))
		})
	})

	// Authenticated surface.
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Post("/v1/payments/pay", controllers.PaymentsPay(deps.Purchases, deps.Payments, logg))
		r.Get("/v1/purchases", controllers.PurchasesBuyerHistory(deps.Purchases, logg))

		r.Route("/v1/products/{productId}", func(r chi.Router) {
			r.With(middleware.RequireRole(string(enums.UserRoleBuyer), logg)).
				Post("/reviews", controllers.ReviewsCreate(deps.Reviews, logg))
		})

		r.Route("/v1/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(deps.Wishlist, logg))
			r.Post("/{productId}", controllers.WishlistAdd(deps.Wishlist, logg))
			r.Delete("/{productId}", controllers.WishlistRemove(deps.Wishlist, logg))
		})

		r.Route("/v1/seller", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleSeller), logg))

			r.Get("/products", controllers.SellerProductsList(deps.Products, logg))
			r.Post("/products", controllers.SellerProductsCreate(deps.Products, logg))
			r.Patch("/products/{productId}", controllers.SellerProductsUpdate(deps.Products, logg))
			r.Delete("/products/{productId}", controllers.SellerProductsDelete(deps.Products, logg))
			r.Get("/sales", controllers.PurchasesSellerHistory(deps.Purchases, logg))
			r.Get("/stats", controllers.SellerStats(deps.Stats, logg))
			r.Get("/analytics", controllers.SellerAnalytics(deps.Stats, logg))
			r.Post("/reviews/{reviewId}/reply", controllers.ReviewsReply(deps.Reviews, logg))
		})

		r.Route("/admin/v1", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

			r.Get("/stats", controllers.AdminStats(deps.Stats, logg))
			r.Get("/overview", controllers.AdminOverview(deps.Stats, logg))
			r.Get("/users", controllers.AdminUsersList(deps.UserRepository, logg))
			r.Patch("/users/{userId}/status", controllers.AdminUserSetStatus(deps.UserRepository, logg))
			r.Get("/products", controllers.AdminProductsList(deps.Products, logg))
			r.Patch("/products/{productId}/flag", controllers.AdminProductSetFlag(deps.Products, logg))
			r.Delete("/products/{productId}", controllers.AdminProductDelete(deps.Products, logg))
		})
	})

	return r
}

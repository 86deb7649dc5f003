package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/caffeinepub/saree-catalogue-portal/internal/service"
	"github.com/caffeinepub/saree-catalogue-portal/internal/storage/memory"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/health"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/middleware"
)

// Services are the application services behind the routes. The owner
// services are nil when the process only serves public reads.
type Services struct {
	Public     *service.PublicCatalogService
	ShareLinks *service.ShareLinkService
	Products   *service.ProductService
	Customers  *service.CustomerService
	Profiles   *service.ProfileService
	Roles      *service.RoleService
}

// RouterConfig holds the transport settings of the router.
type RouterConfig struct {
	ServiceName    string
	RateLimitRPS   float64
	RateLimitBurst int
	PublicMaxAge   int
	PprofCIDRs     []string
	CORS           middleware.CORSConfig
	// Media serves uploaded files when images are kept in memory.
	Media *memory.Storage
}

// NewRouter creates a chi router with all catalog routes registered.
func NewRouter(svcs Services, validateToken middleware.TokenValidator, healthHandler *health.Handler, cfg RouterConfig, logger *slog.Logger) http.Handler {
	registerValidations()

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestLogger(logger))

	// Infra endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	if cfg.Media != nil {
		r.Get("/media/*", NewMediaHandler(cfg.Media).Serve)
	}

	publicHandler := NewPublicHandler(svcs.Public, svcs.ShareLinks, svcs.Profiles, logger)

	// Share-link reads: no credentials accepted or required.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))

		r.Route("/api/v1/public", func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.PublicMaxAge))

			r.Get("/catalogs/{weaver}/{customerType}", publicHandler.GetCatalog)
			r.Get("/products/{weaver}/{productId}/{customerType}", publicHandler.GetProduct)
			if svcs.Profiles != nil {
				r.Get("/weavers/{weaver}/profile", publicHandler.GetWeaverProfile)
			}
		})

		r.Post("/api/v1/resolve", publicHandler.Resolve)
	})

	if svcs.Products == nil {
		return r
	}

	productHandler := NewProductHandler(svcs.Products, logger)
	customerHandler := NewCustomerHandler(svcs.Customers, logger)
	profileHandler := NewProfileHandler(svcs.Profiles, svcs.Roles, logger)
	shareLinkHandler := NewShareLinkHandler(svcs.ShareLinks, logger)

	// Owner management: every route acts on the caller's own catalog.
	r.Route("/api/v1/me", func(r chi.Router) {
		r.Use(middleware.Auth(validateToken))
		r.Use(middleware.RequestLogger(logger))
		r.Use(middleware.NoStore)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Post("/", productHandler.CreateProduct)
			r.Get("/{id}", productHandler.GetProduct)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
			r.Post("/{id}/toggle-stock", productHandler.ToggleOutOfStock)
			r.Put("/{id}/quantity", productHandler.UpdateQuantity)
			r.Post("/{id}/images", productHandler.UploadImage)
			r.Get("/{id}/share-links", shareLinkHandler.ProductLinks)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", customerHandler.ListCustomers)
			r.Post("/", customerHandler.CreateCustomer)
			r.Get("/{id}", customerHandler.GetCustomer)
			r.Put("/{id}", customerHandler.SaveCustomer)
			r.Delete("/{id}", customerHandler.DeleteCustomer)
		})

		r.Get("/profile", profileHandler.GetWeaverProfile)
		r.Put("/profile", profileHandler.SaveWeaverProfile)
		r.Post("/profile/logo", profileHandler.UploadLogo)
		r.Get("/user-profile", profileHandler.GetUserProfile)
		r.Put("/user-profile", profileHandler.SaveUserProfile)
		r.Get("/users/{principal}/profile", profileHandler.GetUserProfileOf)

		r.Get("/role", profileHandler.GetRole)
		r.Get("/is-admin", profileHandler.IsAdmin)
		r.Put("/users/{principal}/role", profileHandler.AssignRole)

		r.Get("/share-links", shareLinkHandler.CatalogLinks)
		r.Get("/catalog/{customerType}", shareLinkHandler.PreviewCatalog)
	})

	return r
}

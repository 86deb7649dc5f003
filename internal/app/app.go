package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/caffeinepub/saree-catalogue-portal/internal/auth"
	"github.com/caffeinepub/saree-catalogue-portal/internal/backend"
	"github.com/caffeinepub/saree-catalogue-portal/internal/cache"
	"github.com/caffeinepub/saree-catalogue-portal/internal/config"
	"github.com/caffeinepub/saree-catalogue-portal/internal/event"
	handler "github.com/caffeinepub/saree-catalogue-portal/internal/handler/http"
	"github.com/caffeinepub/saree-catalogue-portal/internal/repository"
	"github.com/caffeinepub/saree-catalogue-portal/internal/repository/postgres"
	"github.com/caffeinepub/saree-catalogue-portal/internal/service"
	"github.com/caffeinepub/saree-catalogue-portal/internal/sharelink"
	"github.com/caffeinepub/saree-catalogue-portal/internal/storage"
	"github.com/caffeinepub/saree-catalogue-portal/internal/storage/memory"
	s3storage "github.com/caffeinepub/saree-catalogue-portal/internal/storage/s3"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/database"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/health"
	pkgkafka "github.com/caffeinepub/saree-catalogue-portal/pkg/kafka"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/middleware"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/tracing"
)

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	consumer       *pkgkafka.Consumer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
// In remote mode only the public surface is served and no database is
// opened.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		Insecure:       true,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	parser := sharelink.NewParser(identityValidator(cfg.IdentityFormat))
	builder, err := sharelink.NewBuilder(cfg.PublicAppURL)
	if err != nil {
		return nil, err
	}
	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry)
	if err != nil {
		return nil, err
	}

	healthHandler := health.NewHandler()

	// Source of public reads.
	var (
		reader   repository.PublicCatalogReader
		products *postgres.ProductRepository
	)
	if cfg.Remote() {
		client, err := backend.New(cfg.BackendURL, cfg.BackendTimeout, logger)
		if err != nil {
			return nil, fmt.Errorf("create backend client: %w", err)
		}
		healthHandler.RegisterCritical("backend", client.Ping)
		reader = client
		logger.Info("reading public catalogs from remote backend", slog.String("url", cfg.BackendURL))
	} else {
		if err := a.openPostgres(ctx); err != nil {
			return nil, err
		}
		pool := a.pool
		healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		products = postgres.NewProductRepository(pool)
		reader = products
	}

	// Public query cache.
	var queryCache *cache.QueryCache
	if cfg.CacheEnabled {
		rdb, err := database.NewRedisClient(ctx, cfg.RedisConfig())
		if err != nil {
			logger.Warn("redis unavailable, public query cache disabled", slog.String("error", err.Error()))
		} else {
			a.rdb = rdb
			queryCache = cache.NewQueryCache(rdb, cfg.CacheTTL, logger)
			healthHandler.RegisterNonCritical("redis", queryCache.Ping)
			reader = cache.NewReader(reader, queryCache, logger)
			logger.Info("public query cache enabled", slog.Duration("ttl", cfg.CacheTTL))
		}
	}

	// Kafka events.
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
		if err := a.producer.Ping(ctx); err != nil {
			logger.Warn("kafka ping failed, continuing in degraded mode", slog.String("error", err.Error()))
		}

		if queryCache != nil {
			a.consumer = pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
				Brokers:  cfg.KafkaBrokers,
				GroupID:  event.ConsumerGroupCatalogCache,
				Topic:    event.TopicProductEvents,
				MinBytes: 1,
				MaxBytes: 10e6,
			}, event.NewConsumer(queryCache, logger).Handle, logger)
		}
	}

	public := service.NewPublicCatalogService(reader, parser, logger)
	svcs := handler.Services{
		Public:     public,
		ShareLinks: service.NewShareLinkService(builder, nil, public),
	}

	routerCfg := handler.RouterConfig{
		ServiceName:    cfg.ServiceName,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		PublicMaxAge:   cfg.PublicMaxAge,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		CORS:           middleware.DefaultCORSConfig(),
	}

	// Owner management needs the local store.
	if products != nil {
		store, media, err := newStorage(ctx, cfg)
		if err != nil {
			return nil, err
		}
		routerCfg.Media = media

		var (
			invalidator service.CacheInvalidator
			events      service.ProductEvents
		)
		if queryCache != nil {
			invalidator = queryCache
		}
		if a.producer != nil {
			events = event.NewProducer(a.producer, logger)
		}

		profiles := postgres.NewProfileRepository(a.pool)
		roles := service.NewRoleService(profiles, parser, logger)
		if err := roles.Bootstrap(ctx, cfg.AdminPrincipals); err != nil {
			return nil, fmt.Errorf("bootstrap admins: %w", err)
		}

		svcs.ShareLinks = service.NewShareLinkService(builder, products, public)
		svcs.Products = service.NewProductService(products, invalidator, events, store, logger)
		svcs.Customers = service.NewCustomerService(postgres.NewCustomerRepository(a.pool), logger)
		svcs.Profiles = service.NewProfileService(profiles, roles, parser, store, logger)
		svcs.Roles = roles
	}

	router := handler.NewRouter(svcs, jwtManager.Validator(parser.ValidateIdentity), healthHandler, routerCfg, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

func (a *App) openPostgres(ctx context.Context) error {
	pool, err := database.NewPostgresPool(ctx, a.cfg.PostgresConfig(), a.logger)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", a.cfg.PostgresHost),
		slog.Int("port", a.cfg.PostgresPort),
		slog.String("database", a.cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, a.cfg.ServiceName)

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, postgres.Migrations(), a.logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	a.logger.Info("database migrations completed")

	if a.cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(a.cfg.SlowQueryThresholdMs)*time.Millisecond, a.logger)
	}
	return nil
}

// Run starts the HTTP server and the cache-invalidation consumer, then blocks
// until ctx is canceled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if a.consumer != nil {
		g.Go(func() error {
			if err := a.consumer.Start(gctx); err != nil {
				return fmt.Errorf("product events consumer: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown signal received")

		// Graceful HTTP server shutdown with a 10-second deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	err := g.Wait()
	a.close()
	return err
}

// close releases every client that was opened. It tolerates a partially
// built App.
func (a *App) close() {
	a.logger.Info("shutting down application...")

	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
}

func identityValidator(format string) sharelink.IdentityValidator {
	if format == config.IdentityOpaque {
		return sharelink.OpaqueIdentity
	}
	return nil
}

// newStorage builds the image store. The in-memory store is also returned
// on its own so the router can serve its files.
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, *memory.Storage, error) {
	if cfg.StorageDriver == config.StorageS3 {
		s, err := s3storage.New(ctx, s3storage.Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create s3 storage: %w", err)
		}
		return s, nil, nil
	}

	m := memory.New(cfg.MediaBaseURL)
	return m, m, nil
}

// Package main populates a weaver catalog with demo sarees, customers and a
// business profile so the public share links have something to show. It
// writes straight to PostgreSQL through the catalog services and prints the
// resulting share links.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caffeinepub/saree-catalogue-portal/internal/repository/postgres"
	"github.com/caffeinepub/saree-catalogue-portal/internal/service"
	"github.com/caffeinepub/saree-catalogue-portal/internal/sharelink"
	pkgconfig "github.com/caffeinepub/saree-catalogue-portal/pkg/config"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/database"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/logger"
)

// seedConfig is the subset of the server settings the seeder needs.
type seedConfig struct {
	PublicAppURL string `env:"PUBLIC_APP_URL,required"`
	Weaver       string `env:"SEED_WEAVER" envDefault:"2vxsx-fae"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"catalog"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"catalog_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"catalog"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
}

func main() {
	if err := pkgconfig.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
	var cfg seedConfig
	if err := pkgconfig.Load(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("catalog-seed", cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg seedConfig, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	parser := sharelink.NewParser(nil)
	if err := parser.ValidateIdentity(cfg.Weaver); err != nil {
		return fmt.Errorf("SEED_WEAVER: %w", err)
	}
	builder, err := sharelink.NewBuilder(cfg.PublicAppURL)
	if err != nil {
		return fmt.Errorf("PUBLIC_APP_URL: %w", err)
	}

	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL
	pgCfg.MaxConns = 2
	pgCfg.MinConns = 1

	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, postgres.Migrations(), log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	profiles := postgres.NewProfileRepository(pool)
	roles := service.NewRoleService(profiles, parser, log)
	s := &seeder{
		weaver:    cfg.Weaver,
		products:  service.NewProductService(postgres.NewProductRepository(pool), nil, nil, nil, log),
		customers: service.NewCustomerService(postgres.NewCustomerRepository(pool), log),
		profiles:  service.NewProfileService(profiles, roles, parser, nil, log),
		builder:   builder,
		out:       os.Stdout,
		logger:    log,
	}
	return s.seed(ctx)
}

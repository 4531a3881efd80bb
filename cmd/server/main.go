// Command server runs the HealthTrack REST backend.
//
//	@title						HealthTrack API
//	@version					1.0
//	@description				Personal health tracking: accounts, medications and health metric readings.
//	@host						localhost:8080
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/healthtrack/healthtrack/docs"
	"github.com/healthtrack/healthtrack/internal/api"
	"github.com/healthtrack/healthtrack/internal/infrastructure/config"
	"github.com/healthtrack/healthtrack/internal/infrastructure/db/mongo"
	"github.com/healthtrack/healthtrack/internal/infrastructure/db/postgres"
	"github.com/healthtrack/healthtrack/internal/infrastructure/db/redis"
	"github.com/healthtrack/healthtrack/internal/infrastructure/http"
	"github.com/healthtrack/healthtrack/internal/infrastructure/http/handlers"
	"github.com/healthtrack/healthtrack/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "healthtrack-api",
	})
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	deps := api.Dependencies{
		JWTSecret:          cfg.JWTSecret,
		TokenTTL:           cfg.TokenTTL,
		AuthRateLimit:      cfg.AuthRateLimit,
		HistoryWarmWorkers: cfg.Redis.WarmWorkers,
		Logger:             log,
	}

	closeStore, err := openStore(ctx, cfg, log, &deps)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Redis.Enabled {
		client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer client.Close()
		deps.HistoryCache = redis.NewHistoryCache(client, cfg.Redis.HistoryCacheTTL)
		deps.Checks = append(deps.Checks, handlers.Check{Name: "redis", Ping: redis.Ping(client)})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("history cache enabled")
	}

	e := api.NewRouter(deps)
	return http.NewServer(e, cfg.Port, log).Run(ctx)
}

// openStore connects the configured storage driver and fills the
// repositories and readiness check in deps.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger, deps *api.Dependencies) (func(), error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		wirePostgres(db, deps)
		log.Info().Str("driver", cfg.StorageDriver).Msg("storage ready")
		return func() { _ = db.Close() }, nil

	default:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		wireMongo(db, deps)
		log.Info().Str("driver", cfg.StorageDriver).Str("database", cfg.Mongo.Database).Msg("storage ready")
		return func() { _ = client.Disconnect(context.Background()) }, nil
	}
}

func wirePostgres(db *sql.DB, deps *api.Dependencies) {
	deps.Users = postgres.NewUserRepository(db)
	deps.Medications = postgres.NewMedicationRepository(db)
	deps.Metrics = postgres.NewMetricRepository(db)
	deps.Checks = append(deps.Checks, handlers.Check{Name: "postgres", Ping: db.PingContext})
}

func wireMongo(db *mongodrv.Database, deps *api.Dependencies) {
	deps.Users = mongo.NewUserRepository(db)
	deps.Medications = mongo.NewMedicationRepository(db)
	deps.Metrics = mongo.NewMetricRepository(db)
	deps.Checks = append(deps.Checks, handlers.Check{Name: "mongo", Ping: mongo.Ping(db)})
}

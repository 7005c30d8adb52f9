package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Yzairi/CDA/internal/adapter/repository/cache"
	"github.com/Yzairi/CDA/internal/adapter/repository/mongodb"
	"github.com/Yzairi/CDA/internal/adapter/repository/postgres"
	"github.com/Yzairi/CDA/internal/config"
	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Store bundles the repositories of the configured driver.
type Store struct {
	Users    domain.UserRepository
	Listings domain.ListingRepository

	ping    func(ctx context.Context) error
	closers []func()
}

// Ping reports whether the backing database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Store) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// NewStoreFromConfig opens the driver selected by STORAGE_DRIVER and, when REDIS_ADDR is set,
// wraps the listing repository with the Redis read-through cache.
func NewStoreFromConfig(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (*Store, error) {
	var (
		store *Store
		err   error
	)
	switch cfg.StorageDriver {
	case "postgres":
		store, err = newPostgresStore(ctx, cfg, appLogger)
	case "mongo":
		store, err = newMongoStore(ctx, cfg, appLogger)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			appLogger.Warn("Redis unavailable, listing cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			store.Listings = cache.NewCachedListingRepository(store.Listings, client, cfg.CacheTTL, appLogger)
			store.closers = append(store.closers, func() { _ = client.Close() })
			appLogger.Info("Listing cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
		}
	}
	return store, nil
}

func newPostgresStore(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (*Store, error) {
	db, err := postgres.Open(ctx, cfg.PostgresDSN, appLogger)
	if err != nil {
		return nil, err
	}
	if cfg.DBAutoMigrate {
		if err := postgres.MigrateUp(db); err != nil {
			postgres.Close(db, appLogger)
			return nil, err
		}
		appLogger.Info("Database schema is up to date")
	}
	sqlDB, err := db.DB()
	if err != nil {
		postgres.Close(db, appLogger)
		return nil, err
	}
	return &Store{
		Users:    postgres.NewUserRepository(db, appLogger),
		Listings: postgres.NewListingRepository(db, appLogger),
		ping:     sqlDB.PingContext,
		closers:  []func(){func() { postgres.Close(db, appLogger) }},
	}, nil
}

func newMongoStore(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	appLogger.Info("Connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	db := client.Database(cfg.MongoDatabase)
	if err := mongodb.EnsureIndexes(connectCtx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &Store{
		Users:    mongodb.NewUserRepository(db, appLogger),
		Listings: mongodb.NewListingRepository(db, appLogger),
		ping:     func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
		closers: []func(){func() {
			if err := client.Disconnect(context.Background()); err != nil {
				appLogger.Warn("Error disconnecting from MongoDB", zap.Error(err))
			}
		}},
	}, nil
}

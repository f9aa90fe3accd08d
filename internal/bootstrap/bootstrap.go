// Package bootstrap assembles the store, locker and services for a process.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"erp-backend/internal/app"
	"erp-backend/internal/config"
	"erp-backend/internal/core"
	"erp-backend/internal/db"
	"erp-backend/internal/lock"
	"erp-backend/internal/memstore"
	"erp-backend/internal/metrics"
)

// Runtime holds the wired application and the resources it owns.
type Runtime struct {
	App     app.ApplicationService
	Store   core.Store
	Metrics *metrics.Metrics
	Pool    *pgxpool.Pool // nil for the memory driver

	closers []func()
}

// Close releases database and redis connections.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// Open builds a Runtime from cfg. m may be nil.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger, m *metrics.Metrics) (*Runtime, error) {
	if log == nil {
		log = zap.NewNop()
	}
	rt := &Runtime{Metrics: m}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		if err := db.EnsureSchema(ctx, pool); err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
		rt.Pool = pool
		rt.Store = db.NewStore(pool)
	default:
		rt.Store = memstore.New()
	}

	var locker core.KeyLocker
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			rt.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		rt.closers = append(rt.closers, func() { _ = rdb.Close() })
		locker = lock.NewRedis(rdb, cfg.LockTTL, cfg.LockWait, log)
		log.Info("using redis locks", zap.String("addr", cfg.RedisAddr))
	} else {
		locker = lock.NewLocal()
	}

	engine := core.NewInventoryEngine(m, log)
	rt.App = app.NewAppService(
		core.NewCatalogService(rt.Store, locker, m, log),
		core.NewOrderService(rt.Store, locker, engine, m, log),
		core.NewPurchaseOrderService(rt.Store, locker, engine, m, log),
		core.NewReportingService(rt.Store),
		core.NewLedger(rt.Store, log),
		log,
	)
	log.Info("store ready", zap.String("driver", cfg.StoreDriver))
	return rt, nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jcmexdev/storefront-api/internal/coordinator/sagalog"
	"github.com/jcmexdev/storefront-api/internal/coordinator/sagalog/sqlite"
	"github.com/jcmexdev/storefront-api/internal/pkg/cache"
	"github.com/jcmexdev/storefront-api/internal/pkg/config"
	"github.com/jcmexdev/storefront-api/internal/pkg/kafka"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront-api/internal/storefront/infra/adapters/notify"
	"github.com/jcmexdev/storefront-api/internal/storefront/infra/adapters/store/kvdoc"
	"github.com/jcmexdev/storefront-api/internal/storefront/infra/adapters/store/memory"
	"github.com/jcmexdev/storefront-api/internal/storefront/infra/adapters/store/mongostore"
)

type catalog interface {
	ports.ProductCatalog
	ports.CatalogSeeder
}

type stores struct {
	carts      ports.CartStore
	orders     ports.OrderStore
	complaints ports.ComplaintStore
	catalog    catalog
	close      func(ctx context.Context) error
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	switch cfg.StoreBackend {
	case config.BackendPebble, config.BackendBadger:
		dir := filepath.Join(cfg.DataDir, cfg.StoreBackend)
		var (
			kv  kvdoc.KV
			err error
		)
		if cfg.StoreBackend == config.BackendPebble {
			kv, err = kvdoc.OpenPebble(dir)
		} else {
			kv, err = kvdoc.OpenBadger(dir)
		}
		if err != nil {
			return nil, fmt.Errorf("open %s store at %s: %w", cfg.StoreBackend, dir, err)
		}
		db := kvdoc.New(kv)
		return &stores{
			carts:      db.Carts(),
			orders:     db.Orders(),
			complaints: db.Complaints(),
			catalog:    db.Catalog(),
			close:      func(context.Context) error { return db.Close() },
		}, nil

	case config.BackendMongo:
		db, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &stores{
			carts:      db.Carts(),
			orders:     db.Orders(),
			complaints: db.Complaints(),
			catalog:    db.Catalog(),
			close:      db.Close,
		}, nil

	default:
		return &stores{
			carts:      memory.NewCartStore(),
			orders:     memory.NewOrderStore(),
			complaints: memory.NewComplaintStore(),
			catalog:    memory.NewCatalog(),
			close:      func(context.Context) error { return nil },
		}, nil
	}
}

type sagaLog interface {
	sagalog.Repository
	Close() error
}

type memorySagaLog struct{ *sagalog.MemoryRepository }

func (memorySagaLog) Close() error { return nil }

func openSagaLog(cfg config.Config) (sagaLog, error) {
	if cfg.SagaLogPath == "" {
		slog.Warn("SAGA_LOG_PATH not set, saga log kept in memory")
		return memorySagaLog{sagalog.NewMemoryRepository()}, nil
	}
	repo, err := sqlite.Open(cfg.SagaLogPath)
	if err != nil {
		return nil, fmt.Errorf("open saga log: %w", err)
	}
	return repo, nil
}

// openCache returns the idempotency cache. An unreachable Redis is only
// logged; go-redis reconnects on its own.
func openCache(ctx context.Context, cfg config.Config) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache(cfg.OTelServiceName)
	}
	rc := cache.NewRedisCache(cfg.RedisAddr, cfg.OTelServiceName)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		slog.Warn("redis not reachable at startup", "addr", cfg.RedisAddr, "error", err)
	}
	return rc
}

type notifier interface {
	ports.Notifier
	Close() error
}

type logNotifier struct{ notify.LogNotifier }

func (logNotifier) Close() error { return nil }

func openNotifier(cfg config.Config) notifier {
	client := kafka.NewClient(cfg.KafkaBrokers)
	if !client.Enabled() {
		return logNotifier{}
	}
	return notify.NewKafkaNotifier(client.NewWriter(cfg.NotificationTopic))
}

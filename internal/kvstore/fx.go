package kvstore

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/docflow/internal/config"
	"github.com/smallbiznis/docflow/internal/kvstore/domain"
	"github.com/smallbiznis/docflow/internal/kvstore/gormstore"
	"github.com/smallbiznis/docflow/internal/kvstore/memory"
	"github.com/smallbiznis/docflow/internal/kvstore/redisstore"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("kvstore",
	fx.Provide(provideRedis),
	fx.Provide(NewStore),
)

type Params struct {
	fx.In

	Config config.Config
	DB     *gorm.DB      `optional:"true"`
	Redis  *redis.Client `optional:"true"`
	Log    *zap.Logger
}

// NewStore selects the backend named by STORE_BACKEND.
func NewStore(p Params) (domain.Store, error) {
	ns := p.Config.Store.Namespace
	log := p.Log.Named("kvstore")

	switch p.Config.Store.Backend {
	case config.StoreBackendSQL:
		if p.DB == nil {
			return nil, fmt.Errorf("store backend %q requires a database", p.Config.Store.Backend)
		}
		log.Info("using sql key-value store", zap.String("namespace", ns))
		return gormstore.New(p.DB, ns), nil
	case config.StoreBackendRedis:
		if p.Redis == nil {
			return nil, fmt.Errorf("store backend %q requires redis", p.Config.Store.Backend)
		}
		log.Info("using redis key-value store", zap.String("namespace", ns))
		return redisstore.New(p.Redis, ns), nil
	default:
		log.Warn("using in-memory key-value store, data is lost on restart", zap.String("namespace", ns))
		return memory.New(ns), nil
	}
}

func provideRedis(lc fx.Lifecycle, cfg config.Config) *redis.Client {
	if cfg.Store.Backend != config.StoreBackendRedis {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.StopHook(client.Close))
	return client
}

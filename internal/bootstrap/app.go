package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/sidtn/order-read-api/configs"
	"github.com/sidtn/order-read-api/internal/adapter/cache"
	httpadapter "github.com/sidtn/order-read-api/internal/adapter/http"
	"github.com/sidtn/order-read-api/internal/adapter/repo"
	"github.com/sidtn/order-read-api/internal/logging"
	"github.com/sidtn/order-read-api/internal/usecase"
)

type App struct {
	Router *gin.Engine
	DB     *sqlx.DB
	Redis  *redis.Client
}

// InitWithConfig connects both backends, clears every cache key under
// this deployment's prefix, and only then builds the router. Nothing
// can serve a request before the clear finishes, so no payload cached
// by a previous process generation survives into this one.
func InitWithConfig(ctx context.Context, cfg configs.Config) (*App, func(), error) {
	l := logging.Init(cfg.App.Name, cfg.App.LogPath, cfg.App.LogLevel)

	db, err := sqlx.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	keys := usecase.NewKeyScheme(cfg.Cache.Prefix)
	redisCache := cache.NewRedisCache(rdb)

	// Startup invalidation gates readiness.
	removed, err := redisCache.ClearByPrefix(ctx, keys.Prefix())
	if err != nil {
		_ = db.Close()
		_ = rdb.Close()
		return nil, nil, err
	}
	l.Info("cache cleared", "prefix", keys.Prefix(), "keys_removed", removed)

	orderRepo := repo.NewMySQLOrderRepo(db)
	reader := usecase.NewReadOrders(keys, redisCache, orderRepo, cfg.CacheTTL())

	h := httpadapter.NewOrderHandler(reader)
	router := httpadapter.NewRouter(h, healthz(db, rdb))

	cleanup := func() {
		_ = db.Close()
		_ = rdb.Close()
	}

	return &App{Router: router, DB: db, Redis: rdb}, cleanup, nil
}

func healthz(db *sqlx.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "mysql": err.Error()})
			return
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

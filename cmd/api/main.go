package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"storefront/internal/cartstore"
	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/db"
	"storefront/internal/infra/notify"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/metrics"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	//.envは無くても環境変数で動く
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	//メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	//Repository（GORM実装）
	txm := infraRepo.NewTxManagerGorm(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	notificationRepo := infraRepo.NewNotificationGormRepository(gormDB)

	//カタログ読み取り（REDIS_ADDRがあればキャッシュを挟む）
	var catalog usecase.ProductCatalog = productRepo
	var invalidator usecase.ProductCacheInvalidator
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, cache will fall back to db", "addr", cfg.RedisAddr, "err", err)
		}
		pc := cache.NewProductCache(rdb, productRepo, cfg.ProductCacheTTL, log)
		catalog = pc
		invalidator = pc
	}

	carts := cartstore.New()

	//Usecase
	cartUC := usecase.NewCartUsecase(carts, catalog, m, log)
	checkoutUC := usecase.NewCheckoutUsecase(txm, carts, invalidator, usecase.CheckoutConfig{
		LowStockThreshold: cfg.LowStockThreshold,
		Timeout:           cfg.CheckoutTimeout,
	}, m, log)
	orderUC := usecase.NewOrderUsecase(txm, log)

	//バックグラウンド処理
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		carts.RunSweeper(ctx, cfg.CartSweepInterval, cfg.CartIdleTTL, func(removed int) {
			m.SetOpenCarts(carts.Len())
			if removed > 0 {
				log.Info("idle carts swept", "removed", removed)
			}
		})
	}()

	if len(cfg.KafkaBrokers) > 0 {
		pub := notify.NewKafkaPublisher(cfg.KafkaNotifyTopic, cfg.KafkaBrokers...)
		defer pub.Close()
		relay := usecase.NewNotificationRelay(notificationRepo, pub, 100, log)

		wg.Add(1)
		go func() {
			defer wg.Done()
			relay.Run(ctx, cfg.NotifyRelayInterval)
		}()
	} else {
		log.Info("KAFKA_BROKERS not set, stock notifications stay in the database only")
	}

	//Server
	e := server.New(server.Deps{
		Cart:     handler.NewCartHandler(cartUC),
		Checkout: handler.NewCheckoutHandler(checkoutUC),
		Order:    handler.NewOrderHandler(orderUC),
		Health:   handler.NewHealthHandler(sqlDB),
		Metrics:  m,
		Gatherer: reg,
		Log:      log,
	})

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}
	log.Info("server starting", "addr", addr, "env", cfg.GoEnv)

	err = server.Start(ctx, e, addr, 10*time.Second)
	stop()
	wg.Wait()
	return err
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod

	DatabaseURL      string // あればPOSTGRES_*より優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	LowStockThreshold int64         // この値以下で在庫少通知
	CheckoutTimeout   time.Duration // チェックアウトTxの上限

	// 放置カートの破棄まで
	CartIdleTTL       time.Duration
	CartSweepInterval time.Duration

	// 空ならキャッシュ無し
	RedisAddr       string
	ProductCacheTTL time.Duration

	// 空なら通知リレー無し
	KafkaBrokers        []string
	KafkaNotifyTopic    string
	NotifyRelayInterval time.Duration
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: os.Getenv("GO_ENV"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       getenv("POSTGRES_DB", "app"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaNotifyTopic: getenv("KAFKA_NOTIFICATION_TOPIC", "stock-notifications"),
	}

	var err error
	if cfg.PostgresPort, err = atoiDefault("POSTGRES_PORT", 5432); err != nil {
		return Config{}, err
	}
	threshold, err := atoiDefault("LOW_STOCK_THRESHOLD", 5)
	if err != nil {
		return Config{}, err
	}
	cfg.LowStockThreshold = int64(threshold)

	if cfg.CheckoutTimeout, err = durationDefault("CHECKOUT_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CartIdleTTL, err = durationDefault("CART_IDLE_TTL", 2*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CartSweepInterval, err = durationDefault("CART_SWEEP_INTERVAL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ProductCacheTTL, err = durationDefault("PRODUCT_CACHE_TTL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.NotifyRelayInterval, err = durationDefault("NOTIFICATION_RELAY_INTERVAL", 2*time.Second); err != nil {
		return Config{}, err
	}

	//必須チェック
	if cfg.DatabaseURL == "" && cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("DATABASE_URL or POSTGRES_PASSWORD is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.LowStockThreshold < 0 {
		return Config{}, fmt.Errorf("LOW_STOCK_THRESHOLD must be >= 0")
	}
	if cfg.CheckoutTimeout <= 0 {
		return Config{}, fmt.Errorf("CHECKOUT_TIMEOUT must be > 0")
	}

	return cfg, nil
}

// DSNはgorm(pgx)に渡す接続文字列
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

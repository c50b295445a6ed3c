package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// 永続化先
type StoreKind string

const (
	StorePostgres StoreKind = "postgres"
	StoreMemory   StoreKind = "memory"
)

// キャンセル・削除時の在庫戻しの方針
type RestockPolicy string

const (
	// 1注文につき1回だけ戻す（stock_returned フラグ）
	RestockOnce RestockPolicy = "once"
	// 旧システム互換：キャンセルのたび・削除のたびに戻す
	RestockLegacy RestockPolicy = "legacy"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	Store StoreKind // postgres / memory

	DatabaseURL      string // あれば最優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5433）
	PostgresSSLMode  string // disable / require

	GoEnv    string // dev/prod
	LogLevel string // debug/info/warn/error

	RestockPolicy RestockPolicy
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		Store: StoreKind(strings.ToLower(getenv("STORE", string(StorePostgres)))),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       getenv("POSTGRES_DB", "padaria"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		GoEnv:    getenv("GO_ENV", "dev"),
		LogLevel: strings.ToLower(getenv("LOG_LEVEL", "info")),

		RestockPolicy: RestockPolicy(strings.ToLower(getenv("RESTOCK_POLICY", string(RestockOnce)))),
	}

	//必須チェック
	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" && cfg.PostgresPassword == "" {
			return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
		}
	case StoreMemory:
	default:
		return Config{}, fmt.Errorf("STORE must be postgres or memory: %q", cfg.Store)
	}
	switch cfg.RestockPolicy {
	case RestockOnce, RestockLegacy:
	default:
		return Config{}, fmt.Errorf("RESTOCK_POLICY must be once or legacy: %q", cfg.RestockPolicy)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error: %q", cfg.LogLevel)
	}

	return cfg, nil
}

// ":8080" 形式
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// DATABASE_URL が無ければ個別の値から組み立てる
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

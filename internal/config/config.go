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

	LogLevel  string // debug/info/warn/error
	LogFormat string // text/json/color

	DatabaseURL      string // あれば POSTGRES_* より優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string

	KVBackend    string // memory/sqlite/postgres
	KVSQLitePath string

	CatalogSource string // embedded/toml/postgres
	CatalogPath   string // toml のパス

	Geocoder        string // static/kakao
	KakaoRESTAPIKey string
	KakaoBaseURL    string
	GeocodeCacheTTL time.Duration

	DeviceMode         string // relay/static/none
	DeviceLat          float64
	DeviceLng          float64
	DeviceTimeout      time.Duration
	DeviceMaxAge       time.Duration
	DeviceHighAccuracy bool

	DefaultDistrict string

	AMQPURL      string // 空なら通知はログのみ
	AMQPExchange string

	FluentEnabled   bool
	FluentHost      string
	FluentPort      int
	FluentTagPrefix string
}

// Loadは環境変数（未設定はデフォルト）
func Load() (Config, error) {
	var err error
	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "dev"),

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getenv("LOG_FORMAT", "text")),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "app"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		KVBackend:    strings.ToLower(getenv("KV_BACKEND", "memory")),
		KVSQLitePath: getenv("KV_SQLITE_PATH", "rental_local.db"),

		CatalogSource: strings.ToLower(getenv("CATALOG_SOURCE", "embedded")),
		CatalogPath:   os.Getenv("CATALOG_PATH"),

		Geocoder:        strings.ToLower(getenv("GEOCODER", "static")),
		KakaoRESTAPIKey: os.Getenv("KAKAO_REST_API_KEY"),
		KakaoBaseURL:    getenv("KAKAO_BASE_URL", "https://dapi.kakao.com"),

		DeviceMode: strings.ToLower(getenv("DEVICE_MODE", "relay")),

		DefaultDistrict: getenv("DEFAULT_DISTRICT", "성동구"),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getenv("AMQP_EXCHANGE", "location_events"),

		FluentHost:      getenv("FLUENT_HOST", "localhost"),
		FluentTagPrefix: getenv("FLUENT_TAG_PREFIX", "rental"),
	}

	if cfg.PostgresPort, err = atoiDefault("POSTGRES_PORT", 5432); err != nil {
		return Config{}, err
	}
	if cfg.GeocodeCacheTTL, err = durationDefault("GEOCODE_CACHE_TTL", 10*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.DeviceTimeout, err = durationDefault("DEVICE_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.DeviceMaxAge, err = durationDefault("DEVICE_MAX_AGE", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.DeviceHighAccuracy, err = boolDefault("DEVICE_HIGH_ACCURACY", true); err != nil {
		return Config{}, err
	}
	if cfg.FluentEnabled, err = boolDefault("FLUENT_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.FluentPort, err = atoiDefault("FLUENT_PORT", 24224); err != nil {
		return Config{}, err
	}

	//必須チェック
	switch cfg.KVBackend {
	case "memory", "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("KV_BACKEND must be memory, sqlite or postgres")
	}
	switch cfg.CatalogSource {
	case "embedded", "postgres":
	case "toml":
		if cfg.CatalogPath == "" {
			return Config{}, fmt.Errorf("CATALOG_PATH is required")
		}
	default:
		return Config{}, fmt.Errorf("CATALOG_SOURCE must be embedded, toml or postgres")
	}
	switch cfg.Geocoder {
	case "static":
	case "kakao":
		if cfg.KakaoRESTAPIKey == "" {
			return Config{}, fmt.Errorf("KAKAO_REST_API_KEY is required")
		}
	default:
		return Config{}, fmt.Errorf("GEOCODER must be static or kakao")
	}
	switch cfg.DeviceMode {
	case "relay", "none":
	case "static":
		if cfg.DeviceLat, err = mustFloat("DEVICE_LAT"); err != nil {
			return Config{}, err
		}
		if cfg.DeviceLng, err = mustFloat("DEVICE_LNG"); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("DEVICE_MODE must be relay, static or none")
	}
	switch cfg.LogFormat {
	case "text", "json", "color":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT must be text, json or color")
	}

	return cfg, nil
}

// UsesPostgres は DB 接続が必要か。
func (c Config) UsesPostgres() bool {
	return c.KVBackend == "postgres" || c.CatalogSource == "postgres"
}

// PostgresDSN は gorm 用の DSN。
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func getenv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func mustFloat(key string) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return f, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func boolDefault(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}

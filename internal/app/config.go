package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Драйверы локального хранилища.
const (
	StorageDriverMemory   = "memory"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
	StorageDriverRedis    = "redis"
)

// Config описывает настройки киоска.
type Config struct {
	// APIURL — адрес API магазина.
	APIURL string
	// APITimeout — таймаут запроса к API; 0 означает "без таймаута".
	APITimeout time.Duration

	HTTPAddr    string
	MetricsAddr string

	StorageDriver       string
	SQLitePath          string
	PostgresDSN         string
	PostgresAutoMigrate bool
	RedisAddr           string
	// DeviceID разделяет слоты киосков в общих хранилищах (postgres, redis).
	DeviceID string

	KafkaBrokers string
	KafkaTopic   string

	LogLevel log.Level
}

// DefaultConfig возвращает настройки для локального запуска.
func DefaultConfig() Config {
	return Config{
		APIURL:              "http://localhost:5000",
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverSQLite,
		SQLitePath:          "mi-tienda.db",
		PostgresAutoMigrate: true,
		RedisAddr:           "localhost:6379",
		LogLevel:            log.InfoLevel,
	}
}

// hostname подменяется в тестах.
var hostname = os.Hostname

// LoadConfig читает .env (если есть) и переменные окружения TIENDA_*.
// Пустой TIENDA_DEVICE_ID выводится из имени хоста, чтобы слот киоска
// в общем хранилище переживал перезапуск.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	return configFromEnv(os.LookupEnv)
}

func configFromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()

	getString := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	getString("TIENDA_API_URL", &cfg.APIURL)
	getString("TIENDA_HTTP_ADDR", &cfg.HTTPAddr)
	getString("TIENDA_METRICS_ADDR", &cfg.MetricsAddr)
	getString("TIENDA_STORAGE_DRIVER", &cfg.StorageDriver)
	getString("TIENDA_SQLITE_PATH", &cfg.SQLitePath)
	getString("TIENDA_POSTGRES_DSN", &cfg.PostgresDSN)
	getString("TIENDA_REDIS_ADDR", &cfg.RedisAddr)
	getString("TIENDA_DEVICE_ID", &cfg.DeviceID)
	getString("TIENDA_KAFKA_BROKERS", &cfg.KafkaBrokers)
	getString("TIENDA_KAFKA_TOPIC", &cfg.KafkaTopic)

	if v, ok := lookup("TIENDA_API_TIMEOUT"); ok && strings.TrimSpace(v) != "" {
		timeout, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil || timeout < 0 {
			return Config{}, fmt.Errorf("invalid TIENDA_API_TIMEOUT %q", v)
		}
		cfg.APITimeout = timeout
	}
	if v, ok := lookup("TIENDA_POSTGRES_AUTO_MIGRATE"); ok && strings.TrimSpace(v) != "" {
		autoMigrate, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("invalid TIENDA_POSTGRES_AUTO_MIGRATE %q: %w", v, err)
		}
		cfg.PostgresAutoMigrate = autoMigrate
	}
	if v, ok := lookup("TIENDA_LOG_LEVEL"); ok && strings.TrimSpace(v) != "" {
		level, err := log.ParseLevel(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("invalid TIENDA_LOG_LEVEL %q: %w", v, err)
		}
		cfg.LogLevel = level
	}

	cfg.StorageDriver = strings.ToLower(cfg.StorageDriver)
	if cfg.DeviceID == "" {
		deviceID, err := defaultDeviceID(cfg.StorageDriver)
		if err != nil {
			return Config{}, err
		}
		cfg.DeviceID = deviceID
	}
	return cfg, cfg.Validate()
}

func defaultDeviceID(driver string) (string, error) {
	host, err := hostname()
	host = strings.ToLower(strings.TrimSpace(host))
	if err == nil && host != "" {
		return "kiosk-" + host, nil
	}
	if sharedStorage(driver) {
		return "", fmt.Errorf("TIENDA_DEVICE_ID is required for %s storage: hostname unavailable", driver)
	}
	return "kiosk-local", nil
}

// sharedStorage сообщает, делят ли хранилище несколько киосков.
func sharedStorage(driver string) bool {
	return driver == StorageDriverPostgres || driver == StorageDriverRedis
}

// Validate проверяет согласованность настроек хранилища.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("TIENDA_SQLITE_PATH is required for sqlite storage")
		}
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("TIENDA_POSTGRES_DSN is required for postgres storage")
		}
	case StorageDriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("TIENDA_REDIS_ADDR is required for redis storage")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
	if sharedStorage(c.StorageDriver) && strings.TrimSpace(c.DeviceID) == "" {
		return fmt.Errorf("TIENDA_DEVICE_ID is required for %s storage", c.StorageDriver)
	}
	return nil
}

// KafkaBrokerList разбирает список брокеров через запятую.
func (c Config) KafkaBrokerList() []string {
	if strings.TrimSpace(c.KafkaBrokers) == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, part := range parts {
		if b := strings.TrimSpace(part); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Package config loads process settings from the environment. A .env file in
// the working directory is read first when present; real environment
// variables win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory = "memory"
	BackendPebble = "pebble"
	BackendBadger = "badger"
	BackendMongo  = "mongo"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort int
	// GRPCPort serves the gRPC health service; 0 disables it.
	GRPCPort int

	StoreBackend  string
	DataDir       string
	MongoURI      string
	MongoDatabase string

	ProductsSeedFile string
	// SagaLogPath is the sqlite file of the saga log; empty keeps it in memory.
	SagaLogPath string

	// RedisAddr backs the idempotency cache; empty keeps it in memory.
	RedisAddr      string
	IdempotencyTTL time.Duration

	KafkaBrokers      string
	NotificationTopic string

	OTelServiceName string
	OTelEndpoint    string

	ShutdownTimeout time.Duration
}

// Load reads .env (if any) and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: read .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults and validation.
func FromEnv(getenv func(string) string) (Config, error) {
	e := env{get: getenv}
	cfg := Config{
		AppEnv:            e.str("APP_ENV", "dev"),
		LogLevel:          e.str("LOG_LEVEL", "info"),
		HTTPPort:          e.num("HTTP_PORT", 8080),
		GRPCPort:          e.num("GRPC_PORT", 0),
		StoreBackend:      strings.ToLower(e.str("STORE_BACKEND", BackendMemory)),
		DataDir:           e.str("DATA_DIR", "./data"),
		MongoURI:          e.str("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     e.str("MONGO_DATABASE", "storefront"),
		ProductsSeedFile:  e.str("PRODUCTS_SEED_FILE", ""),
		SagaLogPath:       e.str("SAGA_LOG_PATH", ""),
		RedisAddr:         e.str("REDIS_ADDR", ""),
		IdempotencyTTL:    e.duration("IDEMPOTENCY_TTL", 24*time.Hour),
		KafkaBrokers:      e.str("KAFKA_BROKERS", ""),
		NotificationTopic: e.str("NOTIFICATION_TOPIC", "storefront.notifications"),
		OTelServiceName:   e.str("OTEL_SERVICE_NAME", "storefront-api"),
		OTelEndpoint:      e.str("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ShutdownTimeout:   e.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	if e.err != nil {
		return Config{}, e.err
	}

	switch cfg.StoreBackend {
	case BackendMemory, BackendPebble, BackendBadger, BackendMongo:
	default:
		return Config{}, fmt.Errorf("config: unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	return cfg, nil
}

func (c Config) HTTPAddr() string { return fmt.Sprintf(":%d", c.HTTPPort) }
func (c Config) GRPCAddr() string { return fmt.Sprintf(":%d", c.GRPCPort) }

// env collects the first parse error so Load can report it.
type env struct {
	get func(string) string
	err error
}

func (e *env) str(key, def string) string {
	if v := strings.TrimSpace(e.get(key)); v != "" {
		return v
	}
	return def
}

func (e *env) num(key string, def int) int {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(fmt.Errorf("config: %s: %w", key, err))
		return def
	}
	return n
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(fmt.Errorf("config: %s: %w", key, err))
		return def
	}
	return d
}

func (e *env) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

const (
	StoreDriverDuckDB   = "duckdb"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

const (
	SeedSourceGenerated   = "generated"
	SeedSourceObjectStore = "objectstore"
	SeedSourceNone        = "none"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Store         StoreConfig
	Query         QueryConfig
	Seed          SeedConfig
	ObjectStore   ObjectStoreConfig
	AI            AIConfig
	Chat          ChatConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type StoreConfig struct {
	Driver string
	DSN    string
}

type QueryConfig struct {
	ReadOnly bool
	MaxRows  int
	Timeout  time.Duration
}

type SeedConfig struct {
	Source   string
	Value    int64
	Users    int
	Events   int
	Tasks    int
	Snapshot string
}

type ObjectStoreConfig struct {
	Endpoint         string
	Region           string
	Bucket           string
	AccessKeyID      string
	SecretAccessKey  string
	UseSSL           bool
	Prefix           string
	AutoCreateBucket bool
}

type AIConfig struct {
	BaseURL            string
	APIKey             string
	Model              string
	QueryTemperature   float64
	QueryMaxTokens     int
	SummaryTemperature float64
	SummaryMaxTokens   int
	Timeout            time.Duration
}

type ChatConfig struct {
	DefaultStrategy  string
	RejectConcurrent bool
	MaxSessions      int
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("SQLCHAT_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid SQLCHAT_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if err := applyString(lookup, "SQLCHAT_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SQLCHAT_HTTP_ADDR", &cfg.HTTP.Address); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SQLCHAT_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SQLCHAT_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SQLCHAT_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SQLCHAT_STORE_DRIVER", &cfg.Store.Driver); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SQLCHAT_STORE_DSN", &cfg.Store.DSN); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "SQLCHAT_QUERY_READ_ONLY", &cfg.Query.ReadOnly); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "SQLCHAT_QUERY_MAX_ROWS", &cfg.Query.MaxRows); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SQLCHAT_QUERY_TIMEOUT", &cfg.Query.Timeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SQLCHAT_SEED_SOURCE", &cfg.Seed.Source); err != nil {
		return Config{}, err
	}
	if err := applyInt64(lookup, "SQLCHAT_SEED_VALUE", &cfg.Seed.Value); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "SQLCHAT_SEED_USERS", &cfg.Seed.Users); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "SQLCHAT_SEED_EVENTS", &cfg.Seed.Events); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "SQLCHAT_SEED_TASKS", &cfg.Seed.Tasks); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SQLCHAT_SEED_SNAPSHOT", &cfg.Seed.Snapshot); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SQLCHAT_OBJECTSTORE_ENDPOINT", &cfg.ObjectStore.Endpoint); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SQLCHAT_OBJECTSTORE_REGION", &cfg.ObjectStore.Region); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SQLCHAT_OBJECTSTORE_BUCKET", &cfg.ObjectStore.Bucket); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SQLCHAT_OBJECTSTORE_ACCESS_KEY", &cfg.ObjectStore.AccessKeyID); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SQLCHAT_OBJECTSTORE_SECRET_KEY", &cfg.ObjectStore.SecretAccessKey); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "SQLCHAT_OBJECTSTORE_USE_SSL", &cfg.ObjectStore.UseSSL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SQLCHAT_OBJECTSTORE_PREFIX", &cfg.ObjectStore.Prefix); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "SQLCHAT_OBJECTSTORE_AUTO_CREATE_BUCKET", &cfg.ObjectStore.AutoCreateBucket); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SQLCHAT_AI_BASE_URL", &cfg.AI.BaseURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SQLCHAT_AI_API_KEY", &cfg.AI.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SQLCHAT_AI_MODEL", &cfg.AI.Model); err != nil {
		return Config{}, err
	}
	if err := applyFloat(lookup, "SQLCHAT_AI_QUERY_TEMPERATURE", &cfg.AI.QueryTemperature); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "SQLCHAT_AI_QUERY_MAX_TOKENS", &cfg.AI.QueryMaxTokens); err != nil {
		return Config{}, err
	}
	if err := applyFloat(lookup, "SQLCHAT_AI_SUMMARY_TEMPERATURE", &cfg.AI.SummaryTemperature); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "SQLCHAT_AI_SUMMARY_MAX_TOKENS", &cfg.AI.SummaryMaxTokens); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SQLCHAT_AI_TIMEOUT", &cfg.AI.Timeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SQLCHAT_CHAT_DEFAULT_STRATEGY", &cfg.Chat.DefaultStrategy); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "SQLCHAT_CHAT_REJECT_CONCURRENT", &cfg.Chat.RejectConcurrent); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "SQLCHAT_CHAT_MAX_SESSIONS", &cfg.Chat.MaxSessions); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "SQLCHAT_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "SQLCHAT_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}

	cfg.Store.Driver = strings.ToLower(cfg.Store.Driver)
	cfg.Seed.Source = strings.ToLower(cfg.Seed.Source)
	cfg.Chat.DefaultStrategy = strings.ToLower(cfg.Chat.DefaultStrategy)

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	switch cfg.Store.Driver {
	case StoreDriverDuckDB, StoreDriverSQLite:
	case StoreDriverPostgres:
		if cfg.Store.DSN == "" {
			return Config{}, fmt.Errorf("SQLCHAT_STORE_DSN is required for the postgres driver")
		}
	default:
		return Config{}, fmt.Errorf("invalid SQLCHAT_STORE_DRIVER: %q", cfg.Store.Driver)
	}
	switch cfg.Seed.Source {
	case SeedSourceGenerated, SeedSourceNone:
	case SeedSourceObjectStore:
		if cfg.Seed.Snapshot == "" {
			return Config{}, fmt.Errorf("SQLCHAT_SEED_SNAPSHOT is required when seeding from the object store")
		}
	default:
		return Config{}, fmt.Errorf("invalid SQLCHAT_SEED_SOURCE: %q", cfg.Seed.Source)
	}
	switch cfg.Chat.DefaultStrategy {
	case "zero-shot", "single-domain", "cross-domain":
	default:
		return Config{}, fmt.Errorf("invalid SQLCHAT_CHAT_DEFAULT_STRATEGY: %q", cfg.Chat.DefaultStrategy)
	}
	if cfg.Query.MaxRows < 0 {
		return Config{}, fmt.Errorf("SQLCHAT_QUERY_MAX_ROWS must be >= 0")
	}
	if cfg.Seed.Users <= 0 {
		return Config{}, fmt.Errorf("SQLCHAT_SEED_USERS must be > 0")
	}
	if cfg.Seed.Events < 0 || cfg.Seed.Tasks < 0 {
		return Config{}, fmt.Errorf("seed row counts must be >= 0")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "sqlchat-api"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Store: StoreConfig{
			Driver: StoreDriverDuckDB,
			DSN:    "",
		},
		Query: QueryConfig{
			ReadOnly: false,
			MaxRows:  200,
			Timeout:  10 * time.Second,
		},
		Seed: SeedConfig{
			Source: SeedSourceGenerated,
			Value:  time.Now().UTC().UnixNano(),
			Users:  10,
			Events: 5,
			Tasks:  5,
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:         "localhost:9000",
			Region:           "us-east-1",
			Bucket:           "sqlchat",
			AccessKeyID:      "minio",
			SecretAccessKey:  "miniostorage",
			UseSSL:           false,
			Prefix:           "",
			AutoCreateBucket: true,
		},
		AI: AIConfig{
			BaseURL:            "https://api.openai.com",
			Model:              "gpt-4o-mini",
			QueryTemperature:   0.7,
			QueryMaxTokens:     200,
			SummaryTemperature: 0.3,
			SummaryMaxTokens:   150,
			Timeout:            30 * time.Second,
		},
		Chat: ChatConfig{
			DefaultStrategy:  "single-domain",
			RejectConcurrent: false,
			MaxSessions:      100,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  false,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18080"
		cfg.Seed.Value = 42
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.Observability.LogJSON = true
		cfg.Query.ReadOnly = true
		cfg.ObjectStore.UseSSL = true
		cfg.ObjectStore.AutoCreateBucket = false
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt64(lookup LookupFunc, key string, dst *int64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}

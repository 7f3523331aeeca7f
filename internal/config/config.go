package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "C360CHAT_"

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	AI            AIConfig
	Warehouse     WarehouseConfig
	ObjectStore   ObjectStoreConfig
	Session       SessionConfig
	Observability ObservabilityConfig
	Auth          AuthConfig
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

// AIConfig selects the language model that turns prompts into SQL.
type AIConfig struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// WarehouseConfig describes the table the assistant answers questions about
// and how to reach it.
type WarehouseConfig struct {
	Driver  string
	Dataset string
	Table   string
	// LocalGlob points the duckdb driver at parquet files on disk instead of
	// the object store.
	LocalGlob       string
	ObjectPrefix    string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	RowLimit        int
	QueryTimeout    time.Duration
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

type SessionConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

type AuthConfig struct {
	Required   bool
	StaticKeys string
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup(envPrefix + "PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid %sPROFILE: %q", envPrefix, profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	env := &envReader{lookup: lookup}
	env.String("SERVICE_NAME", &cfg.Service.Name)

	env.String("HTTP_ADDR", &cfg.HTTP.Address)
	env.Duration("HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout)
	env.Duration("HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout)
	env.Duration("HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout)

	env.String("AI_PROVIDER", &cfg.AI.Provider)
	env.String("AI_BASE_URL", &cfg.AI.BaseURL)
	env.String("AI_API_KEY", &cfg.AI.APIKey)
	env.String("AI_MODEL", &cfg.AI.Model)
	env.Float("AI_TEMPERATURE", &cfg.AI.Temperature)
	env.Duration("AI_TIMEOUT", &cfg.AI.Timeout)

	env.String("WAREHOUSE_DRIVER", &cfg.Warehouse.Driver)
	env.String("WAREHOUSE_DATASET", &cfg.Warehouse.Dataset)
	env.String("WAREHOUSE_TABLE", &cfg.Warehouse.Table)
	env.String("WAREHOUSE_LOCAL_GLOB", &cfg.Warehouse.LocalGlob)
	env.String("WAREHOUSE_OBJECT_PREFIX", &cfg.Warehouse.ObjectPrefix)
	env.String("WAREHOUSE_DSN", &cfg.Warehouse.DSN)
	env.Int("WAREHOUSE_MAX_OPEN_CONNS", &cfg.Warehouse.MaxOpenConns)
	env.Int("WAREHOUSE_MAX_IDLE_CONNS", &cfg.Warehouse.MaxIdleConns)
	env.Duration("WAREHOUSE_CONN_MAX_IDLE_TIME", &cfg.Warehouse.ConnMaxIdleTime)
	env.Duration("WAREHOUSE_CONN_MAX_LIFETIME", &cfg.Warehouse.ConnMaxLifetime)
	env.Int("WAREHOUSE_ROW_LIMIT", &cfg.Warehouse.RowLimit)
	env.Duration("WAREHOUSE_QUERY_TIMEOUT", &cfg.Warehouse.QueryTimeout)

	env.String("OBJECTSTORE_ENDPOINT", &cfg.ObjectStore.Endpoint)
	env.String("OBJECTSTORE_REGION", &cfg.ObjectStore.Region)
	env.String("OBJECTSTORE_BUCKET", &cfg.ObjectStore.Bucket)
	env.String("OBJECTSTORE_ACCESS_KEY", &cfg.ObjectStore.AccessKeyID)
	env.String("OBJECTSTORE_SECRET_KEY", &cfg.ObjectStore.SecretAccessKey)
	env.Bool("OBJECTSTORE_USE_SSL", &cfg.ObjectStore.UseSSL)
	env.String("OBJECTSTORE_PREFIX", &cfg.ObjectStore.Prefix)
	env.Bool("OBJECTSTORE_AUTO_CREATE_BUCKET", &cfg.ObjectStore.AutoCreateBucket)

	env.Duration("SESSION_IDLE_TTL", &cfg.Session.IdleTTL)
	env.Duration("SESSION_SWEEP_INTERVAL", &cfg.Session.SweepInterval)

	env.Bool("LOG_JSON", &cfg.Observability.LogJSON)
	env.LogLevel("LOG_LEVEL", &cfg.Observability.LogLevel)

	env.Bool("AUTH_REQUIRED", &cfg.Auth.Required)
	env.String("AUTH_STATIC_KEYS", &cfg.Auth.StaticKeys)
	if env.err != nil {
		return Config{}, env.err
	}

	cfg.AI.Provider = strings.ToLower(cfg.AI.Provider)
	cfg.Warehouse.Driver = strings.ToLower(cfg.Warehouse.Driver)
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = providerKeyFallback(lookup, cfg.AI.Provider)
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = defaultModel(cfg.AI.Provider)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Service.Name == "" {
		return fmt.Errorf("service name is required")
	}
	if c.HTTP.Address == "" {
		return fmt.Errorf("http address is required")
	}
	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("invalid %sAI_PROVIDER: %q", envPrefix, c.AI.Provider)
	}
	switch c.Warehouse.Driver {
	case DriverDuckDB:
	case DriverPostgres:
		if c.Warehouse.DSN == "" {
			return fmt.Errorf("warehouse dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid %sWAREHOUSE_DRIVER: %q", envPrefix, c.Warehouse.Driver)
	}
	if c.Warehouse.Dataset == "" || c.Warehouse.Table == "" {
		return fmt.Errorf("warehouse dataset and table are required")
	}
	if c.Warehouse.RowLimit < 0 {
		return fmt.Errorf("warehouse row limit must be >= 0")
	}
	if c.Session.IdleTTL < 0 || c.Session.SweepInterval < 0 {
		return fmt.Errorf("session durations must be >= 0")
	}
	return nil
}

// providerKeyFallback reads the provider's conventional key variable when no
// prefixed key is set.
func providerKeyFallback(lookup LookupFunc, provider string) string {
	key := "GEMINI_API_KEY"
	if provider == ProviderOpenAI {
		key = "OPENAI_API_KEY"
	}
	raw, ok := lookup(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(raw)
}

func defaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return "gpt-5"
	}
	return "gemini-2.5-flash"
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "c360chat-api"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		AI: AIConfig{
			Provider:    ProviderGemini,
			BaseURL:     "https://api.openai.com",
			Temperature: 0,
			Timeout:     60 * time.Second,
		},
		Warehouse: WarehouseConfig{
			Driver:          DriverDuckDB,
			Dataset:         "prod_presentation",
			Table:           "customer360",
			MaxOpenConns:    10,
			MaxIdleConns:    10,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
			QueryTimeout:    60 * time.Second,
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:         "localhost:9000",
			Region:           "us-east-1",
			Bucket:           "c360chat",
			AccessKeyID:      "minio",
			SecretAccessKey:  "miniostorage",
			AutoCreateBucket: true,
		},
		Session: SessionConfig{
			IdleTTL:       30 * time.Minute,
			SweepInterval: time.Minute,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18080"
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.Auth.Required = true
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

// envReader applies prefixed environment overrides and keeps the first parse
// error. Unset variables leave the destination untouched.
type envReader struct {
	lookup LookupFunc
	err    error
}

func (r *envReader) read(name string, parse func(string) error) {
	if r.err != nil {
		return
	}
	raw, ok := r.lookup(envPrefix + name)
	if !ok {
		return
	}
	if err := parse(strings.TrimSpace(raw)); err != nil {
		r.err = fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
	}
}

func readAs[T any](r *envReader, name string, dst *T, parse func(string) (T, error)) {
	r.read(name, func(raw string) error {
		value, err := parse(raw)
		if err != nil {
			return err
		}
		*dst = value
		return nil
	})
}

func (r *envReader) String(name string, dst *string) {
	readAs(r, name, dst, func(raw string) (string, error) { return raw, nil })
}

func (r *envReader) Duration(name string, dst *time.Duration) {
	readAs(r, name, dst, time.ParseDuration)
}

func (r *envReader) Bool(name string, dst *bool) {
	readAs(r, name, dst, strconv.ParseBool)
}

func (r *envReader) Int(name string, dst *int) {
	readAs(r, name, dst, strconv.Atoi)
}

func (r *envReader) Float(name string, dst *float64) {
	readAs(r, name, dst, func(raw string) (float64, error) { return strconv.ParseFloat(raw, 64) })
}

func (r *envReader) LogLevel(name string, dst *slog.Level) {
	readAs(r, name, dst, parseLogLevel)
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", raw)
	}
}

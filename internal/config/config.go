package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP      HTTPConfig
	Processor ProcessorConfig
	Store     StoreConfig
	Billing   BillingConfig
	Labels    LabelsConfig
	Logging   LoggingConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	AllowedOriginsCSV string
	RateLimitRPS      float64
	RateLimitBurst    int
}

// ProcessorConfig describes access to the payment processor.
type ProcessorConfig struct {
	Mode           string // stripe|memory
	SecretKey      string
	PublishableKey string
	SearchLimit    int
	// SeedFile is a fixture dataset loaded into the in-memory processor at startup.
	SeedFile string
}

// StoreConfig describes the storefront: redirect base and the credit catalog.
type StoreConfig struct {
	BaseURL     string
	CatalogFile string
	Packages    []PackageConfig
}

// PackageConfig is one sellable credit package.
type PackageConfig struct {
	Size      string  `mapstructure:"size"`
	PriceID   string  `mapstructure:"price_id"`
	Credits   int64   `mapstructure:"credits"`
	BonusRate float64 `mapstructure:"bonus_rate"`
}

// BillingConfig holds the post-paid charge formula.
type BillingConfig struct {
	BaseCost         float64
	Surcharge        float64
	Currency         string
	UsageDescription string
}

// LabelsConfig controls localized payment-type labels.
type LabelsConfig struct {
	Language string
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

const (
	ProcessorModeStripe = "stripe"
	ProcessorModeMemory = "memory"
)

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultRateLimitBurst   = 20
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultSearchLimit      = 10
	defaultBaseURL          = "http://localhost:3000"
	defaultBaseCost         = 150.0
	defaultSurcharge        = 1.10
	defaultCurrency         = "usd"
	defaultUsageDescription = "AWS usage charges"
	defaultLabelLanguage    = "ko"
	defaultDotEnvPath       = ".env"
)

// defaultPackages lists the packages sold out of the box. Price identifiers
// come from STRIPE_PRICE_ID_<size>.
var defaultPackages = []PackageConfig{
	{Size: "100", BonusRate: 0},
	{Size: "1000", BonusRate: 0.02},
	{Size: "10000", BonusRate: 0.05},
}

// Load reads configuration from environment variables, applying defaults.
// Variables from a .env file (DOTENV_PATH, default ./.env) are loaded first
// without overriding the real environment.
func Load() (Config, error) {
	if err := loadDotEnv(valueOrDefault("DOTENV_PATH", defaultDotEnvPath)); err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Host:            valueOrDefault("SERVER_HOST", defaultHost),
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			RateLimitBurst:  parseIntWithDefault("SERVER_RATE_LIMIT_BURST", defaultRateLimitBurst),
		},
		Processor: ProcessorConfig{
			Mode:           strings.ToLower(valueOrDefault("PROCESSOR_MODE", ProcessorModeStripe)),
			SecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
			PublishableKey: firstNonEmpty(os.Getenv("STRIPE_PUBLISHABLE_KEY"), os.Getenv("NEXT_PUBLIC_STRIPE_PUBLISHABLE_KEY")),
			SearchLimit:    parseIntWithDefault("STRIPE_CUSTOMER_SEARCH_LIMIT", defaultSearchLimit),
			SeedFile:       os.Getenv("PROCESSOR_SEED_FILE"),
		},
		Store: StoreConfig{
			BaseURL:     strings.TrimRight(firstNonEmpty(os.Getenv("BASE_URL"), os.Getenv("NEXT_PUBLIC_BASE_URL"), defaultBaseURL), "/"),
			CatalogFile: os.Getenv("PRICE_CATALOG_FILE"),
		},
		Billing: BillingConfig{
			Currency:         strings.ToLower(valueOrDefault("BILLING_CURRENCY", defaultCurrency)),
			UsageDescription: valueOrDefault("BILLING_USAGE_DESCRIPTION", defaultUsageDescription),
		},
		Labels: LabelsConfig{
			Language: valueOrDefault("LABEL_LANGUAGE", defaultLabelLanguage),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
	}

	switch cfg.Processor.Mode {
	case ProcessorModeStripe, ProcessorModeMemory:
	default:
		return Config{}, fmt.Errorf("invalid PROCESSOR_MODE %q", cfg.Processor.Mode)
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
	}
	for _, d := range durations {
		if v := os.Getenv(d.key); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", d.key, err)
			}
			*d.dst = parsed
		}
	}

	cfg.HTTP.AllowedOriginsCSV = os.Getenv("SERVER_ALLOWED_ORIGINS")

	if cfg.HTTP.RateLimitRPS, err = parseFloat("SERVER_RATE_LIMIT_RPS", 0); err != nil {
		return Config{}, err
	}
	if cfg.HTTP.RateLimitRPS < 0 {
		return Config{}, errors.New("SERVER_RATE_LIMIT_RPS must not be negative")
	}

	if cfg.Billing.BaseCost, err = parseFloat("BILLING_BASE_COST", defaultBaseCost); err != nil {
		return Config{}, err
	}
	if cfg.Billing.Surcharge, err = parseFloat("BILLING_SURCHARGE", defaultSurcharge); err != nil {
		return Config{}, err
	}
	if cfg.Billing.BaseCost < 0 || cfg.Billing.Surcharge < 0 {
		return Config{}, errors.New("billing base cost and surcharge must not be negative")
	}

	cfg.Store.Packages = envPackages()
	if cfg.Store.CatalogFile != "" {
		filePackages, err := LoadCatalogFile(cfg.Store.CatalogFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Store.Packages = mergePackages(cfg.Store.Packages, filePackages)
	}

	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func envPackages() []PackageConfig {
	pkgs := make([]PackageConfig, 0, len(defaultPackages))
	for _, pkg := range defaultPackages {
		pkg.PriceID = os.Getenv("STRIPE_PRICE_ID_" + pkg.Size)
		pkgs = append(pkgs, pkg)
	}
	return pkgs
}

// mergePackages overlays file entries on the env-derived ones, keyed by size.
// Blank fields in an override keep the base value.
func mergePackages(base, overrides []PackageConfig) []PackageConfig {
	index := make(map[string]int, len(base))
	out := append([]PackageConfig(nil), base...)
	for i, pkg := range out {
		index[pkg.Size] = i
	}
	for _, pkg := range overrides {
		i, ok := index[pkg.Size]
		if !ok {
			index[pkg.Size] = len(out)
			out = append(out, pkg)
			continue
		}
		if pkg.PriceID != "" {
			out[i].PriceID = pkg.PriceID
		}
		if pkg.Credits != 0 {
			out[i].Credits = pkg.Credits
		}
		if pkg.BonusRate != 0 {
			out[i].BonusRate = pkg.BonusRate
		}
	}
	return out
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	val, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return val, nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/BrandonDHaskell/timekeep/internal/validation"
)

// ConfigPathEnvVar names the optional YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are tried when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{"config.yaml", "/etc/timekeep/config.yaml"}

type Config struct {
	Env string `koanf:"env" validate:"oneof=dev prod"` // "dev" | "prod"

	Server     ServerConfig     `koanf:"server"`
	Store      StoreConfig      `koanf:"store"`
	Vendor     VendorConfig     `koanf:"vendor"`
	Attendance AttendanceConfig `koanf:"attendance"`
	Logging    LoggingConfig    `koanf:"logging"`
	Retention  RetentionConfig  `koanf:"retention"`

	// DevSeedVendor creates a demo vendor schema at startup (dev only).
	DevSeedVendor bool `koanf:"dev_seed_vendor"`
}

type ServerConfig struct {
	HTTPAddr string `koanf:"http_addr" validate:"required"`
	GRPCAddr string `koanf:"grpc_addr"` // empty disables the gRPC health server

	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"` // 0 disables
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

type StoreConfig struct {
	Path string `koanf:"path" validate:"required"` // e.g. "./data/timekeep.db"
}

type VendorConfig struct {
	Driver       string        `koanf:"driver" validate:"oneof=sqlite pgx"`
	DSN          string        `koanf:"dsn" validate:"required"`
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

type AttendanceConfig struct {
	ShiftOutCutoffHours int  `koanf:"shift_out_cutoff_hours" validate:"gte=0,lte=24"`
	InOutSwap           bool `koanf:"inout_swap"`

	MappingCacheTTL    time.Duration `koanf:"mapping_cache_ttl"`
	SwapSampleLimit    int           `koanf:"swap_sample_limit" validate:"gte=1"`
	SwapMinSamples     int           `koanf:"swap_min_samples" validate:"gte=1"`
	SwapRatioThreshold float64       `koanf:"swap_ratio_threshold" validate:"gt=0,lt=1"`
}

// Cutoff is the overnight grace window as a duration.
func (a AttendanceConfig) Cutoff() time.Duration {
	return time.Duration(a.ShiftOutCutoffHours) * time.Hour
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

type RetentionConfig struct {
	ReportRunDays      int `koanf:"report_run_days" validate:"gte=0"` // 0 = keep forever
	PruneIntervalHours int `koanf:"prune_interval_hours" validate:"gte=1"`
}

func defaultConfig() Config {
	return Config{
		Env: "dev",
		Server: ServerConfig{
			HTTPAddr:          ":8080",
			GRPCAddr:          ":9090",
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
		},
		Store: StoreConfig{Path: "./data/timekeep.db"},
		Vendor: VendorConfig{
			Driver:       "sqlite",
			DSN:          "./data/vendor.db",
			QueryTimeout: 30 * time.Second,
		},
		Attendance: AttendanceConfig{
			ShiftOutCutoffHours: 6,
			MappingCacheTTL:     300 * time.Second,
			SwapSampleLimit:     200,
			SwapMinSamples:      50,
			SwapRatioThreshold:  0.60,
		},
		Logging:   LoggingConfig{Level: "info", Format: "json"},
		Retention: RetentionConfig{ReportRunDays: 90, PruneIntervalHours: 6},
	}
}

// Load layers struct defaults, an optional YAML file and the environment,
// then validates the result.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	if v, ok := k.Get("server.cors_origins").(string); ok {
		if err := k.Set("server.cors_origins", splitCSV(v)); err != nil {
			return Config{}, fmt.Errorf("cors origins: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env != "dev" && cfg.Env != "prod" {
		// fail-soft: treat unknown as dev
		cfg.Env = "dev"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct constraints.
func (c Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("invalid config: %w", verr)
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envMappings = map[string]string{
	"timekeep_env": "env",

	"http_addr":           "server.http_addr",
	"grpc_addr":           "server.grpc_addr",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",
	"cors_origins":        "server.cors_origins",

	"store_path": "store.path",

	"vendor_driver":        "vendor.driver",
	"vendor_dsn":           "vendor.dsn",
	"vendor_query_timeout": "vendor.query_timeout",

	"shift_out_cutoff_hours": "attendance.shift_out_cutoff_hours",
	"inout_swap":             "attendance.inout_swap",
	"mapping_cache_ttl":      "attendance.mapping_cache_ttl",
	"swap_sample_limit":      "attendance.swap_sample_limit",
	"swap_min_samples":       "attendance.swap_min_samples",
	"swap_ratio_threshold":   "attendance.swap_ratio_threshold",

	"log_level":  "logging.level",
	"log_format": "logging.format",

	"report_run_retention_days": "retention.report_run_days",
	"prune_interval_hours":      "retention.prune_interval_hours",

	"dev_seed_vendor": "dev_seed_vendor",
}

// envTransformFunc maps known environment variables to config paths and
// drops everything else.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func splitCSV(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Package config loads the service configuration from the environment,
// after reading a .env file when one exists.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/render"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Fonts  FontsConfig
	Export ExportConfig
	Assets AssetsConfig
	App    AppConfig
}

type ServerConfig struct {
	Port         string
	AllowOrigins []string
	// MaxRenderSize caps the size of GET .../render previews.
	MaxRenderSize int
	// RenderRate is the number of previews allowed per second. Zero is
	// unlimited.
	RenderRate  float64
	RenderBurst int
}

type StoreConfig struct {
	Backend       string
	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

type FontsConfig struct {
	// Dir is watched for .ttf/.otf files. Empty disables it.
	Dir string
	// CDNURL is the hosted font URL template, with {family} and {variant}.
	CDNURL string
}

type ExportConfig struct {
	// Profile is a YAML export profile file. Empty uses the default profile.
	Profile string
	// Rate is the number of exports allowed per second. Zero is unlimited.
	Rate  float64
	Burst int
}

type AssetsConfig struct {
	AWSRegion string
	BaseDir   string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

// Load reads .env, if present, then the environment, and validates the
// result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		artboard.Logger().Debug("config: no .env file, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "8080"),
			AllowOrigins:  getEnvAsList("CORS_ORIGINS"),
			MaxRenderSize: getEnvAsInt("RENDER_MAX_SIZE", 4096),
			RenderRate:    getEnvAsFloat("RENDER_RATE", 0),
			RenderBurst:   getEnvAsInt("RENDER_BURST", 10),
		},
		Store: StoreConfig{
			Backend:       strings.ToLower(getEnv("STORE", StoreMemory)),
			DSN:           getEnv("DB_DSN", ""),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			TTL:           getEnvAsDuration("PROJECT_TTL", 0),
		},
		Fonts: FontsConfig{
			Dir:    getEnv("FONT_DIR", ""),
			CDNURL: getEnv("FONT_CDN_URL", ""),
		},
		Export: ExportConfig{
			Profile: getEnv("EXPORT_PROFILE", ""),
			Rate:    getEnvAsFloat("EXPORT_RATE", 0),
			Burst:   getEnvAsInt("EXPORT_BURST", 2),
		},
		Assets: AssetsConfig{
			AWSRegion: getEnv("AWS_REGION", ""),
			BaseDir:   getEnv("ASSET_DIR", ""),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "dev"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for missing or inconsistent values.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("config: PORT is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("config: PORT %q is not a number", c.Server.Port)
	}
	if c.Server.MaxRenderSize < 1 || c.Server.MaxRenderSize > render.MaxSize {
		return fmt.Errorf("config: RENDER_MAX_SIZE must be between 1 and %d", render.MaxSize)
	}
	if c.Server.RenderRate < 0 {
		return fmt.Errorf("config: RENDER_RATE must not be negative")
	}
	switch c.Store.Backend {
	case StoreMemory:
	case StorePostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("config: DB_DSN is required for STORE=postgres")
		}
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("config: REDIS_ADDR is required for STORE=redis")
		}
	default:
		return fmt.Errorf("config: unknown STORE %q", c.Store.Backend)
	}
	if c.Store.TTL < 0 {
		return fmt.Errorf("config: PROJECT_TTL must not be negative")
	}
	if c.Export.Rate < 0 {
		return fmt.Errorf("config: EXPORT_RATE must not be negative")
	}
	if c.Fonts.CDNURL != "" && !strings.Contains(c.Fonts.CDNURL, "{family}") {
		return fmt.Errorf("config: FONT_CDN_URL must contain {family}")
	}
	if _, err := ParseLevel(c.App.LogLevel); err != nil {
		return err
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}

// ExportProfile loads the configured export profile.
func (c *Config) ExportProfile() (render.ExportProfile, error) {
	if c.Export.Profile == "" {
		return render.DefaultProfile(), nil
	}
	return render.LoadProfile(c.Export.Profile)
}

// ParseLevel maps LOG_LEVEL to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: invalid LOG_LEVEL %q", s)
	}
	return l, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		artboard.Logger().Warn("config: invalid integer, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		artboard.Logger().Warn("config: invalid number, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		artboard.Logger().Warn("config: invalid duration, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

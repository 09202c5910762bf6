package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jmgilman/go/errors"
)

type Config struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
	Env  string `toml:"env"`

	MaxCacheSize   int    `toml:"max_cache_size"`
	CachePolicy    string `toml:"cache_policy"`
	CacheMaxAge    int    `toml:"cache_max_age"`
	CachePublic    bool   `toml:"cache_public"`
	CacheImmutable bool   `toml:"cache_immutable"`
	ETagEnabled    bool   `toml:"etag_enabled"`

	ImageFormat         string `toml:"image_format"`
	ImageQuality        int    `toml:"image_quality"`
	JPEGProgressive     bool   `toml:"jpeg_progressive"`
	PNGCompressionLevel int    `toml:"png_compression_level"`
	ImageEncoder        string `toml:"image_encoder"`
	VipsMaxCacheMB      int    `toml:"vips_max_cache_mb"`
	VipsConcurrency     int    `toml:"vips_concurrency"`

	MinImageDimension int `toml:"min_image_dimension"`
	MaxImageDimension int `toml:"max_image_dimension"`
	MinFontSize       int `toml:"min_font_size"`
	MaxFontSize       int `toml:"max_font_size"`

	FontPath           string `toml:"font_path"`
	FontPreload        bool   `toml:"font_preload"`
	FontPreloadWorkers int    `toml:"font_preload_workers"`

	DefaultTextWrap      bool `toml:"default_text_wrap"`
	DefaultTextWrapWidth int  `toml:"default_text_wrap_width"`
	MinTextWrapWidth     int  `toml:"min_text_wrap_width"`
	MaxTextWrapWidth     int  `toml:"max_text_wrap_width"`

	RequestTimeoutMS int `toml:"request_timeout"`

	LogLevel          string `toml:"log_level"`
	LogFileEnabled    bool   `toml:"log_file_enabled"`
	LogFilePath       string `toml:"log_file_path"`
	LogFileMaxSizeMB  int    `toml:"log_file_max_size_mb"`
	CORSEnabled       bool   `toml:"cors_enabled"`
	CORSOrigin        string `toml:"cors_origin"`
	RateLimitEnabled  bool   `toml:"rate_limit_enabled"`
	RateLimitWindowMS int    `toml:"rate_limit_window"`
	RateLimitMax      int    `toml:"rate_limit_max"`
	TrustProxy        bool   `toml:"trust_proxy"`

	HealthCheckEnabled bool   `toml:"health_check_enabled"`
	HealthCheckPath    string `toml:"health_check_path"`

	ContentDisposition string `toml:"content_disposition"`
	VerboseErrors      bool   `toml:"verbose_errors"`
	Debug              bool   `toml:"debug"`
}

func Default() *Config {
	return &Config{
		Port: 5930,
		Env:  "development",

		MaxCacheSize:   100,
		CachePolicy:    "fifo",
		CacheMaxAge:    31536000,
		CachePublic:    true,
		CacheImmutable: true,
		ETagEnabled:    true,

		ImageFormat:         "png",
		ImageQuality:        90,
		JPEGProgressive:     true,
		PNGCompressionLevel: 6,
		ImageEncoder:        "native",
		VipsMaxCacheMB:      256,
		VipsConcurrency:     1,

		MinImageDimension: 1,
		MaxImageDimension: 5000,
		MinFontSize:       8,
		MaxFontSize:       128,

		FontPreloadWorkers: 2,

		DefaultTextWrap:      false,
		DefaultTextWrapWidth: 80,
		MinTextWrapWidth:     50,
		MaxTextWrapWidth:     95,

		RequestTimeoutMS: 30000,

		LogLevel:          "info",
		LogFilePath:       "./logs/app.log",
		LogFileMaxSizeMB:  100,
		CORSOrigin:        "*",
		RateLimitWindowMS: 900000,
		RateLimitMax:      100,

		HealthCheckEnabled: true,
		HealthCheckPath:    "/health",
	}
}

// Load builds the configuration from defaults, the TOML file named by
// CONFIG_FILE (if any) and the environment, in that order.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadFile overlays values present in a TOML file.
func (c *Config) LoadFile(path string) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnvInt("PORT", c.Port)
	c.Host = getEnv("HOST", c.Host)
	c.Env = getEnv("APP_ENV", getEnv("NODE_ENV", c.Env))

	c.MaxCacheSize = getEnvInt("MAX_CACHE_SIZE", c.MaxCacheSize)
	c.CachePolicy = strings.ToLower(getEnv("CACHE_POLICY", c.CachePolicy))
	c.CacheMaxAge = getEnvInt("CACHE_MAX_AGE", c.CacheMaxAge)
	c.CachePublic = getEnvBool("CACHE_PUBLIC", c.CachePublic)
	c.CacheImmutable = getEnvBool("CACHE_IMMUTABLE", c.CacheImmutable)
	c.ETagEnabled = getEnvBool("ETAG_ENABLED", c.ETagEnabled)

	c.ImageFormat = strings.ToLower(getEnv("IMAGE_FORMAT", c.ImageFormat))
	c.ImageQuality = getEnvInt("IMAGE_QUALITY", c.ImageQuality)
	c.JPEGProgressive = getEnvBool("JPEG_PROGRESSIVE", c.JPEGProgressive)
	c.PNGCompressionLevel = getEnvInt("PNG_COMPRESSION_LEVEL", c.PNGCompressionLevel)
	c.ImageEncoder = strings.ToLower(getEnv("IMAGE_ENCODER", c.ImageEncoder))
	c.VipsMaxCacheMB = getEnvInt("VIPS_MAX_CACHE_MB", c.VipsMaxCacheMB)
	c.VipsConcurrency = getEnvInt("VIPS_CONCURRENCY", c.VipsConcurrency)

	c.MinImageDimension = getEnvInt("MIN_IMAGE_DIMENSION", c.MinImageDimension)
	c.MaxImageDimension = getEnvInt("MAX_IMAGE_DIMENSION", c.MaxImageDimension)
	c.MinFontSize = getEnvInt("MIN_FONT_SIZE", c.MinFontSize)
	c.MaxFontSize = getEnvInt("MAX_FONT_SIZE", c.MaxFontSize)

	c.FontPath = getEnv("FONT_PATH", c.FontPath)
	c.FontPreload = getEnvBool("FONT_PRELOAD", c.FontPreload)
	c.FontPreloadWorkers = getEnvInt("FONT_PRELOAD_WORKERS", c.FontPreloadWorkers)

	c.DefaultTextWrap = getEnvBool("DEFAULT_TEXT_WRAP", c.DefaultTextWrap)
	c.DefaultTextWrapWidth = getEnvInt("DEFAULT_TEXT_WRAP_WIDTH", c.DefaultTextWrapWidth)
	c.MinTextWrapWidth = getEnvInt("MIN_TEXT_WRAP_WIDTH", c.MinTextWrapWidth)
	c.MaxTextWrapWidth = getEnvInt("MAX_TEXT_WRAP_WIDTH", c.MaxTextWrapWidth)

	c.RequestTimeoutMS = getEnvInt("REQUEST_TIMEOUT", c.RequestTimeoutMS)

	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))
	c.LogFileEnabled = getEnvBool("LOG_FILE_ENABLED", c.LogFileEnabled)
	c.LogFilePath = getEnv("LOG_FILE_PATH", c.LogFilePath)
	c.LogFileMaxSizeMB = getEnvInt("LOG_FILE_MAX_SIZE_MB", c.LogFileMaxSizeMB)
	c.CORSEnabled = getEnvBool("CORS_ENABLED", c.CORSEnabled)
	c.CORSOrigin = getEnv("CORS_ORIGIN", c.CORSOrigin)
	c.RateLimitEnabled = getEnvBool("RATE_LIMIT_ENABLED", c.RateLimitEnabled)
	c.RateLimitWindowMS = getEnvInt("RATE_LIMIT_WINDOW", c.RateLimitWindowMS)
	c.RateLimitMax = getEnvInt("RATE_LIMIT_MAX", c.RateLimitMax)
	c.TrustProxy = getEnvBool("TRUST_PROXY", c.TrustProxy)

	c.HealthCheckEnabled = getEnvBool("HEALTH_CHECK_ENABLED", c.HealthCheckEnabled)
	c.HealthCheckPath = getEnv("HEALTH_CHECK_PATH", c.HealthCheckPath)

	c.ContentDisposition = getEnv("CONTENT_DISPOSITION", c.ContentDisposition)
	c.VerboseErrors = getEnvBool("VERBOSE_ERRORS", c.VerboseErrors)
	c.Debug = getEnvBool("DEBUG", c.Debug)
}

// Validate rejects inconsistent settings.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Port < 0 || c.Port > 65535 {
		add("port %d out of range", c.Port)
	}
	if c.MaxCacheSize < 1 {
		add("max cache size must be at least 1, got %d", c.MaxCacheSize)
	}
	switch c.CachePolicy {
	case "fifo", "lru", "disabled":
	default:
		add("unknown cache policy %q", c.CachePolicy)
	}
	switch c.ImageFormat {
	case "png", "jpeg", "jpg", "bmp":
	default:
		add("unknown image format %q", c.ImageFormat)
	}
	switch c.ImageEncoder {
	case "native", "vips":
	default:
		add("unknown image encoder %q", c.ImageEncoder)
	}
	if c.ImageQuality < 1 || c.ImageQuality > 100 {
		add("image quality must be between 1 and 100, got %d", c.ImageQuality)
	}
	if c.PNGCompressionLevel < 0 || c.PNGCompressionLevel > 9 {
		add("png compression level must be between 0 and 9, got %d", c.PNGCompressionLevel)
	}
	if c.MinImageDimension < 1 || c.MinImageDimension > c.MaxImageDimension {
		add("image dimension bounds invalid: %d..%d", c.MinImageDimension, c.MaxImageDimension)
	}
	if c.MinFontSize < 1 || c.MinFontSize > c.MaxFontSize {
		add("font size bounds invalid: %d..%d", c.MinFontSize, c.MaxFontSize)
	}
	if c.MinTextWrapWidth < 1 || c.MinTextWrapWidth > c.MaxTextWrapWidth || c.MaxTextWrapWidth > 100 {
		add("text wrap width bounds invalid: %d..%d", c.MinTextWrapWidth, c.MaxTextWrapWidth)
	}
	if c.DefaultTextWrapWidth < c.MinTextWrapWidth || c.DefaultTextWrapWidth > c.MaxTextWrapWidth {
		add("default text wrap width %d outside %d..%d", c.DefaultTextWrapWidth, c.MinTextWrapWidth, c.MaxTextWrapWidth)
	}
	if c.RequestTimeoutMS < 0 {
		add("request timeout must not be negative")
	}
	if c.RateLimitEnabled && (c.RateLimitMax < 1 || c.RateLimitWindowMS < 1) {
		add("rate limit needs a positive max and window")
	}
	if c.HealthCheckEnabled && !strings.HasPrefix(c.HealthCheckPath, "/") {
		add("health check path must start with /, got %q", c.HealthCheckPath)
	}

	if len(problems) > 0 {
		return errors.Newf(errors.CodeInvalidConfig, "invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

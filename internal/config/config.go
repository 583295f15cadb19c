package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile           = ".env"
	defaultPort              = "8080"
	defaultReadHeaderTimeout = 10 * time.Second
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 15 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
	defaultSyncTimeout       = 10 * time.Second
	defaultSyncInterval      = 5 * time.Minute
	defaultCommunityPageSize = 9
	defaultPublicDir         = "public"
	defaultLogLevel          = "info"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	Content ContentConfig
	Sync    SyncConfig
	Render  RenderConfig
	Log     LogConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	PublicDir         string
	AllowedOrigins    []string
	Dev               bool
}

// ContentConfig points at the optional YAML overlay of the built-in content.
type ContentConfig struct {
	File string
}

// SyncConfig controls the spreadsheet feed sync.
type SyncConfig struct {
	// Feeds maps feed name to URL. Entries override the content file's feeds.
	Feeds    map[string]string
	Optional []string
	Timeout  time.Duration
	// Interval of zero syncs once at startup only.
	Interval time.Duration
	// Token guards the manual sync endpoint. Empty disables the endpoint.
	Token string
}

// RenderConfig holds page rendering knobs.
type RenderConfig struct {
	CommunityPageSize int
	BaseURL           string
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string
}

// ValidationError is returned when configuration fields are invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path. An empty path skips dotenv loading.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load resolves configuration with precedence dotenv < OS env < explicit env map.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:              stringWithDefault(lookup, "STOREFRONT_PORT", stringWithDefault(lookup, "PORT", defaultPort)),
			ReadHeaderTimeout: durationWithDefault(lookup, "STOREFRONT_READ_HEADER_TIMEOUT", defaultReadHeaderTimeout),
			ReadTimeout:       durationWithDefault(lookup, "STOREFRONT_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:      durationWithDefault(lookup, "STOREFRONT_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:       durationWithDefault(lookup, "STOREFRONT_IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout:   durationWithDefault(lookup, "STOREFRONT_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
			PublicDir:         stringWithDefault(lookup, "STOREFRONT_PUBLIC_DIR", defaultPublicDir),
			AllowedOrigins:    csvWithDefault(lookup, "STOREFRONT_ALLOWED_ORIGINS"),
			Dev:               boolWithDefault(lookup, "STOREFRONT_DEV", false),
		},
		Content: ContentConfig{
			File: stringWithDefault(lookup, "STOREFRONT_CONTENT_FILE", ""),
		},
		Sync: SyncConfig{
			Feeds:    mapWithDefault(lookup, "STOREFRONT_FEEDS"),
			Optional: csvWithDefault(lookup, "STOREFRONT_FEED_OPTIONAL"),
			Timeout:  durationWithDefault(lookup, "STOREFRONT_SYNC_TIMEOUT", defaultSyncTimeout),
			Interval: durationWithDefault(lookup, "STOREFRONT_SYNC_INTERVAL", defaultSyncInterval),
			Token:    strings.TrimSpace(stringWithDefault(lookup, "STOREFRONT_SYNC_TOKEN", "")),
		},
		Render: RenderConfig{
			CommunityPageSize: intWithDefault(lookup, "STOREFRONT_COMMUNITY_PAGE_SIZE", defaultCommunityPageSize),
			BaseURL:           strings.TrimRight(stringWithDefault(lookup, "STOREFRONT_BASE_URL", ""), "/"),
		},
		Log: LogConfig{
			Level: strings.ToLower(stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel)),
		},
	}

	// Per-feed variables win over the combined map.
	for _, name := range []string{"products", "community"} {
		key := "STOREFRONT_FEED_" + strings.ToUpper(name) + "_URL"
		if value, ok := lookup(key); ok {
			cfg.Sync.Feeds[name] = strings.TrimSpace(value)
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FeedURLs merges declared feed URLs with the configured overrides. An
// override set to the empty string disables that feed.
func (c SyncConfig) FeedURLs(declared map[string]string) map[string]string {
	out := make(map[string]string, len(declared)+len(c.Feeds))
	for name, url := range declared {
		out[name] = strings.TrimSpace(url)
	}
	for name, url := range c.Feeds {
		out[name] = url
	}
	return out
}

func validateConfig(cfg Config) error {
	var invalid []string
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port <= 0 || port > 65535 {
		invalid = append(invalid, "Server.Port")
	}
	if cfg.Server.ReadTimeout <= 0 {
		invalid = append(invalid, "Server.ReadTimeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		invalid = append(invalid, "Server.WriteTimeout")
	}
	if cfg.Sync.Timeout <= 0 {
		invalid = append(invalid, "Sync.Timeout")
	}
	if cfg.Sync.Interval < 0 {
		invalid = append(invalid, "Sync.Interval")
	}
	if cfg.Render.CommunityPageSize <= 0 {
		invalid = append(invalid, "Render.CommunityPageSize")
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		invalid = append(invalid, "Log.Level")
	}
	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

// Durations accept Go syntax ("90s") or a bare number of seconds.
func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
		return -1
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return -1
		}
		return parsed
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// mapWithDefault parses "name=value,name=value". Values may be empty so a
// feed can be switched off.
func mapWithDefault(lookup func(string) (string, bool), key string) map[string]string {
	values := make(map[string]string)
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return values
	}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, found := strings.Cut(entry, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if !found || name == "" {
			continue
		}
		values[name] = strings.TrimSpace(value)
	}
	return values
}

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the chat service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Storage   StorageConfig   `mapstructure:"storage"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
	DocsEnabled     bool          `mapstructure:"docs_enabled"`
}

// LLMConfig describes the OpenAI-compatible completion endpoint.
type LLMConfig struct {
	Provider      string        `mapstructure:"provider"` // groq, openai; empty infers from base_url
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	DefaultModel  string        `mapstructure:"default_model"`
	FormatModel   string        `mapstructure:"format_model"`
	FormatEnabled bool          `mapstructure:"format_enabled"`
	Temperature   float32       `mapstructure:"temperature"`
	MaxTokens     int           `mapstructure:"max_tokens"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SystemPrompt  string        `mapstructure:"system_prompt"`
	FormatPrompt  string        `mapstructure:"format_prompt"`
}

func (l LLMConfig) Validate() error {
	if strings.TrimSpace(l.APIKey) == "" {
		return fmt.Errorf("llm.api_key required (or GROQ_API_KEY)")
	}
	if strings.TrimSpace(l.BaseURL) == "" {
		return fmt.Errorf("llm.base_url required")
	}
	if l.MaxTokens < 0 {
		return fmt.Errorf("llm.max_tokens cannot be negative")
	}
	return nil
}

// ScraperConfig controls how URLs found in a query are fetched and reduced.
type ScraperConfig struct {
	Fetcher   string             `mapstructure:"fetcher"` // http, chromedp
	Mode      string             `mapstructure:"mode"`    // text, markdown
	Timeout   time.Duration      `mapstructure:"timeout"`
	MaxChars  int                `mapstructure:"max_chars"`
	UserAgent string             `mapstructure:"user_agent"`
	CacheTTL  time.Duration      `mapstructure:"cache_ttl"`
	Policy    ScrapePolicyConfig `mapstructure:"policy"`
}

func (s ScraperConfig) Validate() error {
	switch s.Fetcher {
	case "http", "chromedp":
	default:
		return fmt.Errorf("scraper.fetcher must be http or chromedp, got %q", s.Fetcher)
	}
	switch s.Mode {
	case "text", "markdown":
	default:
		return fmt.Errorf("scraper.mode must be text or markdown, got %q", s.Mode)
	}
	if s.MaxChars <= 0 {
		return fmt.Errorf("scraper.max_chars must be > 0")
	}
	if s.CacheTTL < 0 {
		return fmt.Errorf("scraper.cache_ttl cannot be negative")
	}
	return s.Policy.Validate()
}

// RateLimitConfig configures the fixed-window per-IP limiter.
type RateLimitConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Window      time.Duration `mapstructure:"window"`
	MaxRequests int           `mapstructure:"max_requests"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
	SkipPaths   []string      `mapstructure:"skip_paths"`
}

func (r RateLimitConfig) Validate() error {
	if !r.Enabled {
		return nil
	}
	if r.Window < time.Second {
		return fmt.Errorf("rate_limit.window must be at least 1s")
	}
	if r.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit.max_requests must be > 0")
	}
	return nil
}

// StorageConfig contains storage and persistence settings
type StorageConfig struct {
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.URL) != "" {
		return nil
	}
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("storage.redis.host required when url is not provided")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.port required when url is not provided")
	}
	return nil
}

// Addr returns host:port for the Redis server.
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, r.Port)
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (p PostgresConfig) Validate() error {
	if strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("storage.postgres.host required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// DSN builds a postgres:// connection string, preferring an explicit URL.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s", p.User, p.Password, net.JoinHostPort(p.Host, port), p.DBName, ssl)
}

// Validate checks every section that has structural requirements. LLM and
// storage credentials are validated by the commands that need them.
func (c *Config) Validate() error {
	if err := c.Scraper.Validate(); err != nil {
		return err
	}
	if err := c.RateLimit.Validate(); err != nil {
		return err
	}
	if _, ok := LookupModel(c.LLM.DefaultModel); !ok {
		return fmt.Errorf("llm.default_model %q is not a supported model", c.LLM.DefaultModel)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.debug", false)
	v.SetDefault("general.log_level", "info")

	v.SetDefault("server.address", ":3000")
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.auto_migrate", false)
	v.SetDefault("server.migrations_dir", "file://migrations")
	v.SetDefault("server.docs_enabled", true)

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.default_model", DefaultModel)
	v.SetDefault("llm.format_model", "")
	v.SetDefault("llm.format_enabled", false)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 0)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.system_prompt", DefaultSystemPrompt)
	v.SetDefault("llm.format_prompt", DefaultFormatPrompt)

	v.SetDefault("scraper.fetcher", "http")
	v.SetDefault("scraper.mode", "text")
	v.SetDefault("scraper.timeout", 15*time.Second)
	v.SetDefault("scraper.max_chars", 10000)
	v.SetDefault("scraper.user_agent", "ChatFusionBot/1.0 (+https://github.com/mohammad-safakhou/chatfusion)")
	v.SetDefault("scraper.cache_ttl", 0)
	v.SetDefault("scraper.policy.allow", []string{})
	v.SetDefault("scraper.policy.disallow", []string{})

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.window", 60*time.Second)
	v.SetDefault("rate_limit.max_requests", 190)
	v.SetDefault("rate_limit.key_prefix", "rate_limit:")
	v.SetDefault("rate_limit.skip_paths", []string{"/healthz", "/metrics", "/favicon.ico", "/static/*"})

	v.SetDefault("storage.redis.url", "")
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", "6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.timeout", 5*time.Second)

	v.SetDefault("storage.postgres.url", "")
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", "5432")
	v.SetDefault("storage.postgres.user", "")
	v.SetDefault("storage.postgres.password", "")
	v.SetDefault("storage.postgres.dbname", "chatfusion")
	v.SetDefault("storage.postgres.sslmode", "disable")
	v.SetDefault("storage.postgres.timeout", 5*time.Second)
}

// Load reads configuration from path (or the default search paths when
// path is empty), the environment and an optional .env file.
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	setDefaults(v)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if exe, err := os.Executable(); err == nil {
			exeDir := filepath.Dir(exe)
			v.AddConfigPath(exeDir)
			v.AddConfigPath(filepath.Join(exeDir, "..", "config"))
		}
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("CHATFUSION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// legacy env names still honoured
	_ = v.BindEnv("llm.api_key", "CHATFUSION_LLM_API_KEY", "GROQ_API_KEY")
	_ = v.BindEnv("storage.redis.url", "CHATFUSION_STORAGE_REDIS_URL", "REDIS_URL")
	_ = v.BindEnv("storage.postgres.url", "CHATFUSION_STORAGE_POSTGRES_URL", "DATABASE_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Scraper.Policy = cfg.Scraper.Policy.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

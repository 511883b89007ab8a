package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/fraudshield/internal/domain/fraud"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"readTimeout"`
		WriteTimeout time.Duration `yaml:"writeTimeout"`
		// MaxUploadMB bounds analyze request bodies, multipart included.
		MaxUploadMB    int      `yaml:"maxUploadMB"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
		Migrate  bool   `yaml:"migrate"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	AI struct {
		Provider  string        `yaml:"provider"`
		Model     string        `yaml:"model"`
		ChatModel string        `yaml:"chatModel"`
		Timeout   time.Duration `yaml:"timeout"`
		// APIKey is read from the environment, never from the file.
		APIKey string `yaml:"-"`
	} `yaml:"ai"`

	Chat struct {
		MaxSessions int           `yaml:"maxSessions"`
		SessionTTL  time.Duration `yaml:"sessionTTL"`
	} `yaml:"chat"`

	Auth struct {
		// APIKeys maps tenant id to its API key. Empty disables auth.
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"rateLimit"`

	Thresholds fraud.RiskThresholds `yaml:"thresholds"`
}

// Load baca file config.yaml, then secrets from the environment (.env optional)
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.AI.APIKey = apiKeyFromEnv(cfg.AI.Provider)
	return cfg, nil
}

// Parse decodes YAML and fills defaults. Secrets are not touched.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func apiKeyFromEnv(provider string) string {
	if provider == ProviderOpenAI {
		return os.Getenv("OPENAI_API_KEY")
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		return v
	}
	return os.Getenv("API_KEY")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		// covers the 60s model call plus a streamed chat reply
		c.Server.WriteTimeout = 120 * time.Second
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 20
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMemory
	}
	if c.AI.Provider == "" {
		c.AI.Provider = ProviderGemini
	}
	if c.AI.Model == "" {
		if c.AI.Provider == ProviderOpenAI {
			c.AI.Model = "gpt-4o-mini"
		} else {
			c.AI.Model = "gemini-2.5-flash"
		}
	}
	if c.AI.ChatModel == "" {
		c.AI.ChatModel = c.AI.Model
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 60 * time.Second
	}
	if c.Chat.MaxSessions == 0 {
		c.Chat.MaxSessions = 1000
	}
	if c.Chat.SessionTTL == 0 {
		c.Chat.SessionTTL = 30 * time.Minute
	}
	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 30
	}
	if c.RateLimit.RefillRate == 0 {
		c.RateLimit.RefillRate = 1
	}
	if c.Thresholds == (fraud.RiskThresholds{}) {
		c.Thresholds = fraud.DefaultThresholds
	}
}

// Validate checks the settings needed to start the server.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown ai provider %q", c.AI.Provider)
	}
	if c.AI.APIKey == "" {
		if c.AI.Provider == ProviderOpenAI {
			return errors.New("OPENAI_API_KEY is not set")
		}
		return errors.New("GEMINI_API_KEY (or API_KEY) is not set")
	}
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq keyword/value connection string.
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}

// MaxUploadBytes is Server.MaxUploadMB in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

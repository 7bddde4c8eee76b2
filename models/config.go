package models

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rohanthewiz/serr"
	"gopkg.in/yaml.v3"
)

// ============================================================================
// Configuration
//
// Settings come from an optional YAML file named by NOTEVAULT_CONFIG, then
// NOTEVAULT_* environment variables override individual values. Validate is
// called at startup to fail fast on misconfiguration.
// ============================================================================

// StorageMode selects whether a remote store is used.
type StorageMode string

const (
	ModeLocal StorageMode = "local"
	ModeCloud StorageMode = "cloud"
)

// Config holds every runtime setting.
type Config struct {
	Address             string        `yaml:"address"`
	LogLevel            string        `yaml:"log_level"`
	Mode                StorageMode   `yaml:"mode"`
	LocalDB             string        `yaml:"local_db"`
	MigrationConfirmTTL time.Duration `yaml:"migration_confirm_ttl"`
	Mongo               MongoConfig   `yaml:"mongo"`
	Access              AccessConfig  `yaml:"access"`
	Gemini              GeminiConfig  `yaml:"gemini"`
}

// MongoConfig configures the remote document store.
type MongoConfig struct {
	URI          string        `yaml:"uri"`
	Database     string        `yaml:"database"`
	Transactions bool          `yaml:"transactions"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// AccessConfig configures the access gate.
type AccessConfig struct {
	Password  string        `yaml:"password"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// GeminiConfig configures AI-assisted note creation. An empty APIKey disables it.
type GeminiConfig struct {
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	Language string        `yaml:"language"`
	Timeout  time.Duration `yaml:"timeout"`
}

const (
	defaultAddress      = ":8000"
	defaultLocalDB      = "data/notevault.ddb"
	defaultMongoDB      = "notevault"
	defaultPollInterval = 5 * time.Second
	defaultTokenTTL     = 7 * 24 * time.Hour
	defaultGeminiModel  = "gemini-2.5-flash"
	minSecretLength     = 32
	minPollInterval     = time.Second
)

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Address:             defaultAddress,
		LogLevel:            "info",
		Mode:                ModeLocal,
		LocalDB:             defaultLocalDB,
		MigrationConfirmTTL: defaultConfirmTTL,
		Mongo: MongoConfig{
			Database:     defaultMongoDB,
			Transactions: true,
			PollInterval: defaultPollInterval,
		},
		Access: AccessConfig{TokenTTL: defaultTokenTTL},
		Gemini: GeminiConfig{
			Model:    defaultGeminiModel,
			Language: "English",
			Timeout:  defaultAnalysisTimeout,
		},
	}
}

// LoadConfig reads the optional YAML file and applies environment overrides.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("NOTEVAULT_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, serr.Wrap(err, "failed to read config file "+path)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, serr.Wrap(err, "failed to parse config file "+path)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Address, "NOTEVAULT_ADDRESS")
	setString(&c.LogLevel, "NOTEVAULT_LOG_LEVEL")
	setString(&c.LocalDB, "NOTEVAULT_LOCAL_DB")
	if v := os.Getenv("NOTEVAULT_MODE"); v != "" {
		c.Mode = StorageMode(strings.ToLower(v))
	}

	setString(&c.Mongo.URI, "NOTEVAULT_MONGO_URI")
	setString(&c.Mongo.Database, "NOTEVAULT_MONGO_DB")
	setString(&c.Access.Password, "NOTEVAULT_ACCESS_PASSWORD")
	setString(&c.Access.JWTSecret, "NOTEVAULT_JWT_SECRET")
	setString(&c.Gemini.APIKey, "NOTEVAULT_GEMINI_API_KEY")
	setString(&c.Gemini.Model, "NOTEVAULT_GEMINI_MODEL")
	setString(&c.Gemini.Language, "NOTEVAULT_GEMINI_LANGUAGE")

	if v := os.Getenv("NOTEVAULT_MONGO_TRANSACTIONS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return serr.Wrap(err, "invalid NOTEVAULT_MONGO_TRANSACTIONS value, expected true/false")
		}
		c.Mongo.Transactions = b
	}

	durations := []struct {
		env string
		dst *time.Duration
	}{
		{"NOTEVAULT_MONGO_POLL_INTERVAL", &c.Mongo.PollInterval},
		{"NOTEVAULT_TOKEN_TTL", &c.Access.TokenTTL},
		{"NOTEVAULT_MIGRATION_CONFIRM_TTL", &c.MigrationConfirmTTL},
		{"NOTEVAULT_ANALYSIS_TIMEOUT", &c.Gemini.Timeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return serr.Wrap(err, "invalid "+d.env+" value, expected duration like '5m' or '30s'")
		}
		*d.dst = parsed
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// Validate checks the settings needed for the selected mode.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeLocal:
	case ModeCloud:
		if c.Mongo.URI == "" {
			return serr.New("NOTEVAULT_MONGO_URI is required in cloud mode")
		}
		if c.Mongo.Database == "" {
			return serr.New("NOTEVAULT_MONGO_DB must not be empty")
		}
		if c.Mongo.PollInterval < minPollInterval {
			return serr.New("NOTEVAULT_MONGO_POLL_INTERVAL must be at least 1s")
		}
	default:
		return serr.New("NOTEVAULT_MODE must be 'local' or 'cloud', got '" + string(c.Mode) + "'")
	}

	if c.Access.Password == "" {
		return serr.New("NOTEVAULT_ACCESS_PASSWORD is required")
	}
	if len(c.Access.JWTSecret) < minSecretLength {
		return serr.New("NOTEVAULT_JWT_SECRET must be at least 32 characters")
	}
	if c.Access.TokenTTL <= 0 {
		return serr.New("NOTEVAULT_TOKEN_TTL must be positive")
	}
	if c.MigrationConfirmTTL <= 0 {
		return serr.New("NOTEVAULT_MIGRATION_CONFIRM_TTL must be positive")
	}
	if c.Gemini.APIKey != "" && c.Gemini.Timeout <= 0 {
		return serr.New("NOTEVAULT_ANALYSIS_TIMEOUT must be positive")
	}
	return nil
}

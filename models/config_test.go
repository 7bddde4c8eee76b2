package models_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"notevault/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("NOTEVAULT_CONFIG", "")
	cfg, err := models.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Mode != models.ModeLocal {
		t.Errorf("expected local mode by default, got %s", cfg.Mode)
	}
	if cfg.MigrationConfirmTTL != 2*time.Minute {
		t.Errorf("unexpected confirm TTL %s", cfg.MigrationConfirmTTL)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("unexpected default model %s", cfg.Gemini.Model)
	}
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notevault.yaml")
	yaml := `
address: ":9000"
mode: cloud
mongo:
  uri: mongodb://file-host:27017
  database: fromfile
  poll_interval: 3s
access:
  password: from-file
  jwt_secret: ` + testSecret + `
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NOTEVAULT_CONFIG", path)
	t.Setenv("NOTEVAULT_MONGO_URI", "mongodb://env-host:27017")
	t.Setenv("NOTEVAULT_MIGRATION_CONFIRM_TTL", "45s")

	cfg, err := models.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Address != ":9000" || cfg.Mode != models.ModeCloud || cfg.Mongo.Database != "fromfile" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Mongo.URI != "mongodb://env-host:27017" {
		t.Errorf("env should override the file, got %s", cfg.Mongo.URI)
	}
	if cfg.Mongo.PollInterval != 3*time.Second || cfg.MigrationConfirmTTL != 45*time.Second {
		t.Errorf("durations not parsed: poll=%s ttl=%s", cfg.Mongo.PollInterval, cfg.MigrationConfirmTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoadConfigBadEnv(t *testing.T) {
	t.Setenv("NOTEVAULT_CONFIG", "")
	t.Setenv("NOTEVAULT_TOKEN_TTL", "forever")
	if _, err := models.LoadConfig(); err == nil {
		t.Error("expected an error for an unparsable duration")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *models.Config {
		cfg := models.DefaultConfig()
		cfg.Access.Password = "secret"
		cfg.Access.JWTSecret = testSecret
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*models.Config)
		wantErr bool
	}{
		{"local mode", func(c *models.Config) {}, false},
		{"unknown mode", func(c *models.Config) { c.Mode = "hybrid" }, true},
		{"cloud without uri", func(c *models.Config) { c.Mode = models.ModeCloud }, true},
		{"cloud with uri", func(c *models.Config) { c.Mode = models.ModeCloud; c.Mongo.URI = "mongodb://x" }, false},
		{"cloud with tiny poll interval", func(c *models.Config) {
			c.Mode = models.ModeCloud
			c.Mongo.URI = "mongodb://x"
			c.Mongo.PollInterval = time.Millisecond
		}, true},
		{"no password", func(c *models.Config) { c.Access.Password = "" }, true},
		{"short secret", func(c *models.Config) { c.Access.JWTSecret = "short" }, true},
		{"zero confirm ttl", func(c *models.Config) { c.MigrationConfirmTTL = 0 }, true},
		{"gemini without timeout", func(c *models.Config) { c.Gemini.APIKey = "k"; c.Gemini.Timeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/healthjournal-backend/internal/data/adapter"
	"github.com/yungbote/healthjournal-backend/internal/platform/envutil"
)

// Config is everything the process reads at startup. Values resolve in
// order: defaults, then the YAML file (if any), then environment variables.
type Config struct {
	LogMode string         `yaml:"log_mode"`
	Storage adapter.Config `yaml:"storage"`
}

func Default() Config {
	return Config{
		LogMode: "development",
		Storage: adapter.Config{
			SQLitePath: "healthjournal.db",
		},
	}
}

// Load reads configuration from an optional YAML file and applies env var
// overrides. An empty path falls back to HEALTHJOURNAL_CONFIG.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("HEALTHJOURNAL_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.Storage.DatabaseURL = envutil.String("DATABASE_URL", cfg.Storage.DatabaseURL)
	cfg.Storage.UseV2Schema = envutil.Bool("USE_V2_SCHEMA", cfg.Storage.UseV2Schema)
	cfg.Storage.LocalMode = envutil.Bool("LOCAL_MODE", cfg.Storage.LocalMode)
	cfg.Storage.SQLitePath = envutil.String("SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.RemoteAPIKey = envutil.String("REMOTE_API_KEY", cfg.Storage.RemoteAPIKey)
	cfg.Storage.RemoteBaseID = envutil.String("REMOTE_BASE_ID", cfg.Storage.RemoteBaseID)
	cfg.Storage.RemoteBaseURL = envutil.String("REMOTE_BASE_URL", cfg.Storage.RemoteBaseURL)
}

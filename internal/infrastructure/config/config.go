package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Database string `yaml:"database"`
}

type StorageConfig struct {
	// FuncDataDir is the base storage path; object files live in
	// sub-directories named by the object identifier.
	FuncDataDir string `yaml:"funcdata_dir"`
}

type ApplicationConfig struct {
	Version string `yaml:"version"`
}

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Storage     StorageConfig     `yaml:"storage"`
	Application ApplicationConfig `yaml:"application"`
}

// Default returns a config populated with sensible defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Database: "data/funcdata.db",
		},
		Storage: StorageConfig{
			FuncDataDir: "data/funcdata",
		},
		Application: ApplicationConfig{
			Version: "v1.0.0",
		},
	}
}

// Load attempts to read configs/app.yaml; if not present returns defaults.
// Environment variables override both.
func Load() *Config {
	cfg := Default()
	path := filepath.Join("configs", "app.yaml")
	if b, err := os.ReadFile(path); err == nil {
		_ = yaml.Unmarshal(b, cfg)
	}

	// Environment overrides (non-fatal)
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Database.Database = v
	}
	if v := os.Getenv("FUNCDATA_DIR"); v != "" {
		cfg.Storage.FuncDataDir = v
	}
	return cfg
}

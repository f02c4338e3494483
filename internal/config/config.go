package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

type (
	Config struct {
		App                App               `json:"app"`
		Postgres           Postgres          `json:"postgres"`
		Ledger             LedgerConfig      `json:"ledger"`
		ReconEngine        ReconEngineConfig `json:"recon_engine"`
		NewRelicLicenseKey string            `json:"new_relic_license_key"`
	}

	App struct {
		Env             string        `json:"env"`
		HTTPPort        int           `json:"http_port"`
		GracefulTimeout time.Duration `json:"graceful_timeout"`
		Name            string        `json:"name"`
		LogLevel        string        `json:"log_level"`
	}

	Postgres struct {
		DbHost            string `json:"db_host"`
		DbPort            string `json:"db_port"`
		DbUser            string `json:"db_user"`
		DbPass            string `json:"db_pass"`
		DbName            string `json:"db_name"`
		MaxOpenConnection int    `json:"maxOpenConnections"`
		MaxIdleConnection int    `json:"maxIdleConnections"`
		ConnMaxLifetime   int    `json:"connMaxLifetime"`
	}

	// LedgerConfig locates the durable stores: the badger directory for the
	// validation ledger and the directory holding per-company closure files.
	LedgerConfig struct {
		StorageDir string `json:"storage_dir"`
		ClosureDir string `json:"closure_dir"`
	}

	ReconEngineConfig struct {
		// ExcludeMarkedErrors removes MARK_ERROR records from future
		// matching and suggestion pools. The default keeps them eligible;
		// MARK_ERROR then only annotates.
		ExcludeMarkedErrors bool `json:"exclude_marked_errors"`

		// MaxFeedRecords caps a single run's input size per feed; 0 means
		// unlimited.
		MaxFeedRecords int `json:"max_feed_records"`
	}
)

func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		p.DbHost, p.DbPort, p.DbUser, p.DbPass, p.DbName)
}

// Load reads the JSON config file. Path resolution order: explicit argument,
// CONFIG_PATH env var, ./config.json.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.json"
	}

	var conf Config
	raw, err := os.ReadFile(path)
	if err != nil {
		return conf, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(raw, &conf); err != nil {
		return conf, fmt.Errorf("failed to parse config file: %w", err)
	}

	conf.applyEnvOverrides()
	conf.applyDefaults()
	return conf, nil
}

// applyEnvOverrides lets the deployment override the operational knobs
// without touching the file. File values win only when the env var is unset.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.App.Env = v
	}
	if v := os.Getenv("APP_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
	if v := os.Getenv("APP_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.App.HTTPPort = port
		}
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Postgres.DbHost = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		c.Postgres.DbPort = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Postgres.DbUser = v
	}
	if v := os.Getenv("DB_PASS"); v != "" {
		c.Postgres.DbPass = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Postgres.DbName = v
	}
	if v := os.Getenv("LEDGER_STORAGE_DIR"); v != "" {
		c.Ledger.StorageDir = v
	}
	if v := os.Getenv("LEDGER_CLOSURE_DIR"); v != "" {
		c.Ledger.ClosureDir = v
	}
	if v := os.Getenv("NEW_RELIC_LICENSE_KEY"); v != "" {
		c.NewRelicLicenseKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "go-conciliador"
	}
	if c.App.HTTPPort == 0 {
		c.App.HTTPPort = 9567
	}
	if c.App.GracefulTimeout == 0 {
		c.App.GracefulTimeout = 5 * time.Second
	}
	if c.Ledger.StorageDir == "" {
		c.Ledger.StorageDir = "data/ledger"
	}
	if c.Ledger.ClosureDir == "" {
		c.Ledger.ClosureDir = "data/closures"
	}
}

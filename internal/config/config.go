// Package config loads service configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	API     APIConfig     `yaml:"api"`
	IPFS    IPFSConfig    `yaml:"ipfs"`
	Ledger  LedgerConfig  `yaml:"ledger"`
}

type LoggingConfig struct {
	Debug bool `yaml:"debug" envconfig:"LOGGING_DEBUG"`
}

type APIConfig struct {
	ListenAddress string `yaml:"listenAddress" envconfig:"API_LISTEN_ADDRESS"`

	// PublicURL is the externally reachable base URL, used in QR codes
	// and response links.
	PublicURL string `yaml:"publicUrl" envconfig:"API_PUBLIC_URL"`
}

type IPFSConfig struct {
	APIURL        string        `yaml:"apiUrl" envconfig:"IPFS_API_URL"`
	GatewayURL    string        `yaml:"gatewayUrl" envconfig:"IPFS_GATEWAY_URL"`
	UploadTimeout time.Duration `yaml:"uploadTimeout" envconfig:"IPFS_UPLOAD_TIMEOUT"`
}

type LedgerConfig struct {
	// DataDir is where the SQLite ledger lives. Empty means in-memory.
	DataDir string        `yaml:"dataDir" envconfig:"LEDGER_DATA_DIR"`
	Timeout time.Duration `yaml:"timeout" envconfig:"LEDGER_TIMEOUT"`
}

// Load builds the configuration: defaults, then the YAML file at path (if
// it exists), then CERTLEDGER_* environment variables.
func Load(path string) (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			ListenAddress: ":2444",
			PublicURL:     "http://localhost:2444",
		},
		IPFS: IPFSConfig{
			APIURL:        "http://localhost:5001",
			GatewayURL:    "https://ipfs.io",
			UploadTimeout: 30 * time.Second,
		},
		Ledger: LedgerConfig{
			DataDir: "./data",
			Timeout: 10 * time.Second,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("certledger", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.API.ListenAddress == "" {
		return errors.New("config: empty api listen address")
	}
	if c.IPFS.APIURL == "" {
		return errors.New("config: empty ipfs api url")
	}
	if c.IPFS.UploadTimeout <= 0 {
		return errors.New("config: ipfs upload timeout must be positive")
	}
	if c.Ledger.Timeout <= 0 {
		return errors.New("config: ledger timeout must be positive")
	}
	return nil
}

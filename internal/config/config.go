package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	defaultNetwork = "testnet"

	configFile  = "config.json"
	walletsFile = "wallets.json"

	// EnvNetwork overrides the configured default network for display
	// defaults when no wallet is connected.
	EnvNetwork = "DXBFORGE_NETWORK"
)

// Load reads config from dir (or creates defaults). dir defaults to ~/.dxbforge.
// The DXBFORGE_NETWORK environment variable, when set to a valid network name,
// overrides the persisted default network.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".dxbforge")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.configDir = dir
	if cfg.RPCOverrides == nil {
		cfg.RPCOverrides = make(map[string]string)
	}
	if env := os.Getenv(EnvNetwork); env == "testnet" || env == "mainnet" {
		cfg.DefaultNetwork = env
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// LoadWallets reads wallets.json.
func (c *Config) LoadWallets() (*WalletsFile, error) {
	var wf WalletsFile
	data, err := os.ReadFile(filepath.Join(c.configDir, walletsFile))
	if os.IsNotExist(err) {
		return &wf, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, err
	}
	return &wf, nil
}

// SaveWallets writes wallets.json.
func (c *Config) SaveWallets(wf *WalletsFile) error {
	data, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, walletsFile), data, 0o600)
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		DefaultNetwork: defaultNetwork,
		RPCOverrides:   make(map[string]string),
		Retry:          DefaultRetry(),
		configDir:      dir,
	}
}

// DefaultRetry returns the stock transport tuning: 3 attempts, 1 s between
// attempts, 10 s per request, 2 s receipt polling.
func DefaultRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		RetryDelayMS:   1000,
		RequestTimeout: 10_000,
		PollIntervalMS: 2000,
	}
}

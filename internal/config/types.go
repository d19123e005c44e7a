package config

// Config holds all dxbforge configuration.
type Config struct {
	DefaultNetwork string            `json:"default_network"` // "testnet" | "mainnet"
	DefaultWallet  string            `json:"default_wallet"`
	RPCOverrides   map[string]string `json:"rpc_overrides"` // network name -> RPC URL
	Retry          RetryConfig       `json:"retry"`

	// internal: config dir path used for Save()
	configDir string
}

// RetryConfig is the explicit transport tuning record. Every retry count,
// delay, and timeout the transport uses lives here rather than as a literal
// buried in the client code.
type RetryConfig struct {
	MaxAttempts    int `json:"max_attempts"`       // HTTP attempts per RPC request
	RetryDelayMS   int `json:"retry_delay_ms"`     // delay between attempts
	RequestTimeout int `json:"request_timeout_ms"` // per-request HTTP timeout
	PollIntervalMS int `json:"poll_interval_ms"`   // receipt polling interval
}

// Wallet represents a stored signing wallet entry.
type Wallet struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	KeyRef    string `json:"key_ref"` // keychain reference
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
}

// WalletsFile is the structure of wallets.json.
type WalletsFile struct {
	Wallets []Wallet `json:"wallets"`
}

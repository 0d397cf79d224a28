package config

import (
	"strings"
	"time"

	"evm-wallet-inspector/internal/domain/entity"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	App      AppConfig              `mapstructure:"app"`
	Chains   map[string]ChainConfig `mapstructure:"chains"`
	Storage  StorageConfig          `mapstructure:"storage"`
	Explorer ExplorerConfig         `mapstructure:"explorer"`
	Events   EventsConfig           `mapstructure:"events"`
	Holdings HoldingsConfig         `mapstructure:"holdings"`
	NATS     NATSConfig             `mapstructure:"nats"`
}

// AppConfig represents application-specific configuration
type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
	HTTPPort int    `mapstructure:"http_port"`
}

// ChainConfig represents a single chain's endpoints and credentials
type ChainConfig struct {
	RPCURL         string `mapstructure:"rpc_url"`
	ExplorerURL    string `mapstructure:"explorer_url"`
	ExplorerAPIKey string `mapstructure:"explorer_api_key"`
}

// StorageConfig represents durable storage configuration
type StorageConfig struct {
	ABIDir string `mapstructure:"abi_dir"`
}

// ExplorerConfig represents block-explorer client configuration
type ExplorerConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RetryAttempts  int           `mapstructure:"retry_attempts"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff"`
}

// EventsConfig represents event query engine configuration
type EventsConfig struct {
	// MaxBlockSpan splits large block ranges into sub-queries of at most
	// this many blocks; 0 issues a single unchunked query.
	MaxBlockSpan uint64 `mapstructure:"max_block_span"`
}

// HoldingsConfig represents holdings aggregator configuration
type HoldingsConfig struct {
	CuratedPath    string `mapstructure:"curated_path"`
	WorkerPoolSize int    `mapstructure:"worker_pool_size"`
}

// NATSConfig represents NATS publishing configuration
type NATSConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	URL               string        `mapstructure:"url"`
	SubjectPrefix     string        `mapstructure:"subject_prefix"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	ReconnectAttempts int           `mapstructure:"reconnect_attempts"`
	ReconnectDelay    time.Duration `mapstructure:"reconnect_delay"`
}

// Load loads configuration from environment variables and files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/evm-wallet-inspector")

	// Environment variables
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Default values
	setDefaults()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Registry builds the immutable chain registry from the loaded configuration
func (c *Config) Registry() *entity.Registry {
	chains := make(map[entity.ChainID]entity.ChainConfig, len(c.Chains))
	for id, cfg := range c.Chains {
		chains[entity.ChainID(id)] = entity.ChainConfig{
			RPCURL:         cfg.RPCURL,
			ExplorerURL:    cfg.ExplorerURL,
			ExplorerAPIKey: cfg.ExplorerAPIKey,
		}
	}
	return entity.NewRegistry(chains)
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.http_port", 8080)

	// Chain defaults
	viper.SetDefault("chains.eth.rpc_url", "")
	viper.SetDefault("chains.eth.explorer_url", "https://api.etherscan.io/api")
	viper.SetDefault("chains.eth.explorer_api_key", "")
	viper.SetDefault("chains.polygon.rpc_url", "")
	viper.SetDefault("chains.polygon.explorer_url", "https://api.polygonscan.com/api")
	viper.SetDefault("chains.polygon.explorer_api_key", "")

	// Storage defaults
	viper.SetDefault("storage.abi_dir", "data/contracts")

	// Explorer defaults
	viper.SetDefault("explorer.request_timeout", "15s")
	viper.SetDefault("explorer.retry_attempts", 3)
	viper.SetDefault("explorer.retry_backoff", "500ms")

	// Events defaults
	viper.SetDefault("events.max_block_span", 0)

	// Holdings defaults
	viper.SetDefault("holdings.curated_path", "curated.json")
	viper.SetDefault("holdings.worker_pool_size", 4)

	// NATS defaults
	viper.SetDefault("nats.enabled", false)
	viper.SetDefault("nats.url", "nats://localhost:4222")
	viper.SetDefault("nats.subject_prefix", "decoded-events")
	viper.SetDefault("nats.connect_timeout", "10s")
	viper.SetDefault("nats.reconnect_attempts", 5)
	viper.SetDefault("nats.reconnect_delay", "2s")

	// Bind env for credentials and endpoints
	viper.BindEnv("chains.eth.rpc_url", "ETHEREUM_RPC_URL")
	viper.BindEnv("chains.eth.explorer_api_key", "ETHERSCAN_API_KEY")
	viper.BindEnv("chains.polygon.rpc_url", "POLYGON_RPC_URL")
	viper.BindEnv("chains.polygon.explorer_api_key", "POLYGONSCAN_API_KEY")
	viper.BindEnv("nats.url", "NATS_URL")
}

package config

import "time"

// BridgeConfig is the root configuration for a bridge instance.
type BridgeConfig struct {
	Instance     InstanceConfig     `yaml:"instance"`
	SharedMemory SharedMemoryConfig `yaml:"shared_memory"`
	Store        StoreConfig        `yaml:"store"`
	Refresh      RefreshConfig      `yaml:"refresh"`
	Feeds        FeedsConfig        `yaml:"feeds"`
	Stream       StreamConfig       `yaml:"stream"`
	Archive      ArchiveConfig      `yaml:"archive"`
	Monitor      MonitorConfig      `yaml:"monitor"`
}

// InstanceConfig identifies this bridge.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// SharedMemoryConfig describes the segment shared with the pricing engine.
// Layout has no default: the two observed layouts are incompatible, so the
// variant must be stated explicitly rather than guessed from the segment.
type SharedMemoryConfig struct {
	Name   string `yaml:"name"`   // segment name, e.g. /trading_data
	Dir    string `yaml:"dir"`    // shared-memory mount; empty means /dev/shm
	Layout string `yaml:"layout"` // compact or extended, required
	Mode   string `yaml:"mode"`   // read_only or read_write
}

// StoreConfig holds the durable series store settings.
type StoreConfig struct {
	Root string `yaml:"root"`
}

// RefreshConfig holds refresh loop settings.
type RefreshConfig struct {
	Interval      time.Duration `yaml:"interval"`       // full cycle period
	Pacing        time.Duration `yaml:"pacing"`         // delay between symbols
	LookbackDays  int           `yaml:"lookback_days"`  // feed pull window
	Symbols       []string      `yaml:"symbols"`        // explicit worklist; empty derives it from the store
	CryptoTickers []string      `yaml:"crypto_tickers"` // symbols routed to the crypto feed
}

// FeedsConfig groups the remote bar feeds.
type FeedsConfig struct {
	CoinGecko CoinGeckoConfig `yaml:"coingecko"`
	Yahoo     YahooConfig     `yaml:"yahoo"`
}

// CoinGeckoConfig holds the crypto feed settings.
type CoinGeckoConfig struct {
	BaseURL    string            `yaml:"base_url"`
	Timeout    time.Duration     `yaml:"timeout"`
	MaxRetries int               `yaml:"max_retries"`
	IDs        map[string]string `yaml:"ids"` // ticker to CoinGecko coin id
}

// YahooConfig holds the equities feed settings.
type YahooConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// StreamConfig holds the live kline stream settings.
type StreamConfig struct {
	Enabled            bool          `yaml:"enabled"`
	URL                string        `yaml:"url"`
	Symbols            []string      `yaml:"symbols"`  // exchange pair names, e.g. btcusdt
	Interval           string        `yaml:"interval"` // kline interval, e.g. 1m
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
}

// ArchiveConfig holds the optional Postgres mirror settings.
type ArchiveConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Postgres      DBConfig      `yaml:"postgres"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// MonitorConfig holds the health endpoint settings.
type MonitorConfig struct {
	Port int `yaml:"port"`
}

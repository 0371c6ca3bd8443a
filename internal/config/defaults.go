package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultMode                 = "read_write"
	DefaultStoreRoot            = "market_data"
	DefaultRefreshInterval      = 30 * time.Second
	DefaultPacing               = 1 * time.Second
	DefaultLookbackDays         = 1
	DefaultCoinGeckoURL         = "https://api.coingecko.com/api/v3"
	DefaultYahooURL             = "https://query1.finance.yahoo.com"
	DefaultFeedTimeout          = 15 * time.Second
	DefaultFeedMaxRetries       = 3
	DefaultStreamURL            = "wss://stream.binance.com:9443/ws"
	DefaultStreamInterval       = "1m"
	DefaultReconnectBaseDelay   = 1 * time.Second
	DefaultReconnectMaxDelay    = 60 * time.Second
	DefaultDBPort               = 5432
	DefaultDBSSLMode            = "prefer"
	DefaultMaxConns             = 10
	DefaultMinConns             = 2
	DefaultArchiveBatchSize     = 500
	DefaultArchiveFlushInterval = 2 * time.Second
	DefaultMonitorPort          = 8080
)

// DefaultCryptoTickers are the symbols routed to the crypto feed when the
// config does not name its own set.
var DefaultCryptoTickers = []string{"BTC", "ETH", "BTCUSD", "ETHUSD"}

// DefaultCoinGeckoIDs maps the default tickers to CoinGecko coin ids.
var DefaultCoinGeckoIDs = map[string]string{
	"BTC":    "bitcoin",
	"ETH":    "ethereum",
	"BTCUSD": "bitcoin",
	"ETHUSD": "ethereum",
}

func (c *BridgeConfig) applyDefaults() {
	// Shared memory defaults. Layout stays empty on purpose; validation
	// rejects a config that does not state it.
	if c.SharedMemory.Mode == "" {
		c.SharedMemory.Mode = DefaultMode
	}

	// Store defaults
	if c.Store.Root == "" {
		c.Store.Root = DefaultStoreRoot
	}

	// Refresh defaults
	if c.Refresh.Interval == 0 {
		c.Refresh.Interval = DefaultRefreshInterval
	}
	if c.Refresh.Pacing == 0 {
		c.Refresh.Pacing = DefaultPacing
	}
	if c.Refresh.LookbackDays == 0 {
		c.Refresh.LookbackDays = DefaultLookbackDays
	}
	if len(c.Refresh.CryptoTickers) == 0 {
		c.Refresh.CryptoTickers = append([]string(nil), DefaultCryptoTickers...)
	}

	// Feed defaults
	if c.Feeds.CoinGecko.BaseURL == "" {
		c.Feeds.CoinGecko.BaseURL = DefaultCoinGeckoURL
	}
	if c.Feeds.CoinGecko.Timeout == 0 {
		c.Feeds.CoinGecko.Timeout = DefaultFeedTimeout
	}
	if c.Feeds.CoinGecko.MaxRetries == 0 {
		c.Feeds.CoinGecko.MaxRetries = DefaultFeedMaxRetries
	}
	if len(c.Feeds.CoinGecko.IDs) == 0 {
		c.Feeds.CoinGecko.IDs = make(map[string]string, len(DefaultCoinGeckoIDs))
		for ticker, id := range DefaultCoinGeckoIDs {
			c.Feeds.CoinGecko.IDs[ticker] = id
		}
	}
	if c.Feeds.Yahoo.BaseURL == "" {
		c.Feeds.Yahoo.BaseURL = DefaultYahooURL
	}
	if c.Feeds.Yahoo.Timeout == 0 {
		c.Feeds.Yahoo.Timeout = DefaultFeedTimeout
	}
	if c.Feeds.Yahoo.MaxRetries == 0 {
		c.Feeds.Yahoo.MaxRetries = DefaultFeedMaxRetries
	}

	// Stream defaults
	if c.Stream.URL == "" {
		c.Stream.URL = DefaultStreamURL
	}
	if c.Stream.Interval == "" {
		c.Stream.Interval = DefaultStreamInterval
	}
	if c.Stream.ReconnectBaseDelay == 0 {
		c.Stream.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Stream.ReconnectMaxDelay == 0 {
		c.Stream.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}

	// Archive defaults
	applyDBDefaults(&c.Archive.Postgres)
	if c.Archive.BatchSize == 0 {
		c.Archive.BatchSize = DefaultArchiveBatchSize
	}
	if c.Archive.FlushInterval == 0 {
		c.Archive.FlushInterval = DefaultArchiveFlushInterval
	}

	// Monitor defaults
	if c.Monitor.Port == 0 {
		c.Monitor.Port = DefaultMonitorPort
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}

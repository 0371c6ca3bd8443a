package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/TheBitty/TradingApp/internal/shm"
)

// Validate checks that all required fields are set and values are valid.
func (c *BridgeConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.SharedMemory.Name == "" {
		return errors.New("shared_memory.name is required")
	}
	if c.SharedMemory.Layout == "" {
		return errors.New("shared_memory.layout is required (compact or extended); it is never inferred")
	}
	if _, err := shm.ParseLayout(c.SharedMemory.Layout); err != nil {
		return fmt.Errorf("shared_memory.layout: %w", err)
	}
	if _, err := shm.ParseMode(c.SharedMemory.Mode); err != nil {
		return fmt.Errorf("shared_memory.mode: %w", err)
	}

	if c.Store.Root == "" {
		return errors.New("store.root is required")
	}

	if c.Refresh.Interval <= 0 {
		return errors.New("refresh.interval must be positive")
	}
	if c.Refresh.Pacing < 0 {
		return errors.New("refresh.pacing must be >= 0")
	}
	if c.Refresh.LookbackDays < 1 {
		return errors.New("refresh.lookback_days must be >= 1")
	}

	if err := validateFeed("feeds.coingecko", c.Feeds.CoinGecko.BaseURL, c.Feeds.CoinGecko.Timeout, c.Feeds.CoinGecko.MaxRetries); err != nil {
		return err
	}
	if err := validateFeed("feeds.yahoo", c.Feeds.Yahoo.BaseURL, c.Feeds.Yahoo.Timeout, c.Feeds.Yahoo.MaxRetries); err != nil {
		return err
	}

	if c.Stream.Enabled {
		if c.Stream.URL == "" {
			return errors.New("stream.url is required when stream.enabled")
		}
		if len(c.Stream.Symbols) == 0 {
			return errors.New("stream.symbols is required when stream.enabled")
		}
		if c.Stream.Interval == "" {
			return errors.New("stream.interval is required when stream.enabled")
		}
	}

	if c.Archive.Enabled {
		if err := c.Archive.Postgres.validate("archive.postgres"); err != nil {
			return err
		}
		if c.Archive.BatchSize < 1 {
			return errors.New("archive.batch_size must be >= 1")
		}
		if c.Archive.FlushInterval <= 0 {
			return errors.New("archive.flush_interval must be positive")
		}
	}

	if c.Monitor.Port < 1 || c.Monitor.Port > 65535 {
		return fmt.Errorf("monitor.port must be between 1 and 65535, got %d", c.Monitor.Port)
	}

	return nil
}

func validateFeed(prefix, baseURL string, timeout time.Duration, maxRetries int) error {
	if baseURL == "" {
		return fmt.Errorf("%s.base_url is required", prefix)
	}
	if timeout <= 0 {
		return fmt.Errorf("%s.timeout must be positive", prefix)
	}
	if maxRetries < 0 {
		return fmt.Errorf("%s.max_retries must be >= 0", prefix)
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

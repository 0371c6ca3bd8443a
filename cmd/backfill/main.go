// backfill pulls daily history from the HTTP feeds into the series store.
// Crypto symbols come from CoinGecko, everything else from Yahoo Finance.
//
// Usage:
//
//	go run ./cmd/backfill --config configs/bridged.local.yaml --class crypto --days 30 BTC ETH
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/TheBitty/TradingApp/internal/config"
	"github.com/TheBitty/TradingApp/internal/feed"
	"github.com/TheBitty/TradingApp/internal/model"
	"github.com/TheBitty/TradingApp/internal/store"
)

func main() {
	configPath := flag.String("config", "configs/bridged.local.yaml", "path to config file")
	className := flag.String("class", "stocks", "asset class to store under (stocks, forex, crypto)")
	days := flag.Int("days", 30, "history window in days")
	flag.Parse()

	symbols := flag.Args()
	if len(symbols) == 0 {
		fmt.Fprintln(os.Stderr, "usage: backfill [flags] SYMBOL [SYMBOL...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	class, err := model.ParseAssetClass(*className)
	if err != nil {
		log.Fatalf("bad -class: %v", err)
	}

	st, err := store.New(cfg.Store.Root)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	var src feed.Source
	if class == model.AssetCrypto {
		src = feed.NewCoinGecko(
			cfg.Feeds.CoinGecko.BaseURL,
			cfg.Feeds.CoinGecko.IDs,
			feed.WithTimeout(cfg.Feeds.CoinGecko.Timeout),
			feed.WithRetries(cfg.Feeds.CoinGecko.MaxRetries, time.Second),
		)
	} else {
		src = feed.NewYahoo(
			cfg.Feeds.Yahoo.BaseURL,
			feed.WithTimeout(cfg.Feeds.Yahoo.Timeout),
			feed.WithRetries(cfg.Feeds.Yahoo.MaxRetries, time.Second),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	failures := 0
	for i, symbol := range symbols {
		if i > 0 && cfg.Refresh.Pacing > 0 {
			time.Sleep(cfg.Refresh.Pacing)
		}

		fmt.Printf("=== Backfilling %s (%s, %s, %dd) ===\n", symbol, class, src.Name(), *days)

		bars, err := src.Fetch(ctx, symbol, *days)
		if err != nil {
			fmt.Printf("  fetch failed: %v\n", err)
			failures++
			continue
		}
		if len(bars) == 0 {
			fmt.Println("  no bars returned")
			continue
		}

		if err := st.Append(class, symbol, bars); err != nil {
			fmt.Printf("  append failed: %v\n", err)
			failures++
			continue
		}

		path, _ := st.SeriesPath(class, symbol)
		first, last := bars[0], bars[len(bars)-1]
		fmt.Printf("  wrote %d bars [%s .. %s] to %s\n",
			len(bars),
			time.Unix(first.Timestamp, 0).UTC().Format("2006-01-02"),
			time.Unix(last.Timestamp, 0).UTC().Format("2006-01-02"),
			path,
		)
	}

	if failures > 0 {
		log.Fatalf("%d of %d symbols failed", failures, len(symbols))
	}
}

// shmread attaches to the shared-memory segment read-only and prints every
// polled record with its freshness, the way a consumer process sees it.
//
// Usage:
//
//	go run ./cmd/shmread --config configs/bridged.local.yaml --interval 1s
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TheBitty/TradingApp/internal/config"
	"github.com/TheBitty/TradingApp/internal/shm"
)

func main() {
	configPath := flag.String("config", "configs/bridged.local.yaml", "path to config file")
	interval := flag.Duration("interval", time.Second, "poll interval")
	count := flag.Int("count", 0, "number of polls before exiting (0 = run until interrupted)")
	flag.Parse()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	layout, err := shm.ParseLayout(cfg.SharedMemory.Layout)
	if err != nil {
		log.Fatalf("bad layout: %v", err)
	}

	// Always attach read-only, whatever the daemon config says.
	channel := shm.NewLazy(shm.Config{
		Name:   cfg.SharedMemory.Name,
		Dir:    cfg.SharedMemory.Dir,
		Mode:   shm.ReadOnly,
		Layout: layout,
	})
	defer channel.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Printf("polling %s (%s layout) every %s - press Ctrl+C to stop\n",
		channel.Config().Path(), layout, *interval)

	var tracker shm.Tracker
	reads, fresh := 0, 0

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			printSummary(reads, fresh, &tracker)
			return

		case <-ticker.C:
			rec, err := channel.Read()
			if err != nil {
				if errors.Is(err, shm.ErrNotFound) {
					fmt.Printf("[WAITING] segment %s not present\n", channel.Config().Path())
				} else {
					fmt.Printf("[ERROR] %v\n", err)
				}
				continue
			}

			reads++
			if !rec.Plausible() {
				fmt.Printf("[IMPLAUSIBLE] likely torn read: price=%v volume=%v ts=%d\n",
					rec.Price, rec.Volume, rec.Timestamp)
				continue
			}
			switch tracker.Observe(rec) {
			case shm.FreshnessFresh:
				fresh++
				fmt.Printf("[FRESH] symbol=%s price=%.4f volume=%.4f ts=%d (%s)\n",
					rec.Symbol, rec.Price, rec.Volume, rec.Timestamp,
					time.Unix(rec.Timestamp, 0).UTC().Format(time.RFC3339))
			case shm.FreshnessNoChange:
				ts, _ := tracker.LastTimestamp()
				fmt.Printf("[NO CHANGE] ts=%d\n", ts)
			case shm.FreshnessInvalid:
				fmt.Println("[INVALID] no valid record published")
			}

			if *count > 0 && reads >= *count {
				printSummary(reads, fresh, &tracker)
				return
			}
		}
	}
}

func printSummary(reads, fresh int, tracker *shm.Tracker) {
	ts, primed := tracker.LastTimestamp()
	fmt.Printf("\nreads=%d fresh=%d", reads, fresh)
	if primed {
		fmt.Printf(" last_ts=%d", ts)
	}
	fmt.Println()
}

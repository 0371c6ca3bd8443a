// storectl inspects and maintains the on-disk series store.
//
// Usage:
//
//	go run ./cmd/storectl --config configs/bridged.local.yaml list
//	go run ./cmd/storectl --config configs/bridged.local.yaml tail BTC
//	go run ./cmd/storectl --config configs/bridged.local.yaml export /tmp/market_backup
//	go run ./cmd/storectl --config configs/bridged.local.yaml --yes clear
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/TheBitty/TradingApp/internal/config"
	"github.com/TheBitty/TradingApp/internal/model"
	"github.com/TheBitty/TradingApp/internal/store"
)

func main() {
	configPath := flag.String("config", "configs/bridged.local.yaml", "path to config file")
	yes := flag.Bool("yes", false, "confirm destructive commands")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
	}

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	st, err := store.New(cfg.Store.Root)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	switch cmd := flag.Arg(0); cmd {
	case "list":
		runList(st)
	case "tail":
		runTail(st, flag.Arg(1), flag.Arg(2))
	case "latest":
		runLatest(st, flag.Arg(1))
	case "export":
		runExport(st, flag.Arg(1))
	case "clear":
		runClear(st, *yes)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: storectl [flags] COMMAND

commands:
  list            list stored symbols per asset class
  tail SYM [N]    print the last N bars of a symbol (default 5)
  latest SYM      print the newest bar of a symbol
  export DST      copy every series file into DST
  clear           delete every series file (requires --yes)`)
	flag.PrintDefaults()
	os.Exit(2)
}

func runList(st *store.Store) {
	classes, err := st.ListSymbols()
	if err != nil {
		log.Fatalf("list symbols: %v", err)
	}

	total := 0
	for _, class := range model.AssetClasses() {
		syms := classes[class]
		fmt.Printf("%s (%d):\n", class, len(syms))
		for _, sym := range syms {
			fmt.Printf("  %s\n", sym)
		}
		total += len(syms)
	}
	fmt.Printf("total: %d symbols under %s\n", total, st.Root())
}

func runTail(st *store.Store, symbol, limitArg string) {
	if symbol == "" {
		usage()
	}
	limit := 5
	if limitArg != "" {
		n, err := strconv.Atoi(limitArg)
		if err != nil || n <= 0 {
			log.Fatalf("bad limit %q", limitArg)
		}
		limit = n
	}

	bars, err := st.Tail(symbol, limit)
	if err != nil {
		log.Fatalf("tail %s: %v", symbol, err)
	}

	for _, bar := range bars {
		printBar(bar)
	}
}

func runLatest(st *store.Store, symbol string) {
	if symbol == "" {
		usage()
	}

	bar, class, err := st.Latest(symbol)
	if err != nil {
		log.Fatalf("latest %s: %v", symbol, err)
	}

	fmt.Printf("class=%s effective_price=%.6g\n", class, bar.EffectivePrice())
	printBar(bar)
}

func runExport(st *store.Store, dst string) {
	if dst == "" {
		usage()
	}

	n, err := st.Export(dst)
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	fmt.Printf("exported %d series files to %s\n", n, dst)
}

func runClear(st *store.Store, confirmed bool) {
	if !confirmed {
		log.Fatal("clear deletes every series file; re-run with --yes to confirm")
	}

	n, err := st.Clear()
	if err != nil {
		log.Fatalf("clear: %v", err)
	}
	fmt.Printf("removed %d series files from %s\n", n, st.Root())
}

func printBar(bar model.Bar) {
	fmt.Printf("%s  %s  o=%.6g h=%.6g l=%.6g c=%.6g v=%.6g price=%.6g source=%s\n",
		time.Unix(bar.Timestamp, 0).UTC().Format("2006-01-02 15:04:05"),
		bar.Symbol,
		bar.Open, bar.High, bar.Low, bar.Close, bar.Volume, bar.Price,
		bar.Source,
	)
}

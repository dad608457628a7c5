// Command loadgen drives internal/engine with synthetic order flow for
// throughput measurement, calling the matching engine directly rather
// than going through HTTP.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime/pprof"
	"time"

	"github.com/shopspring/decimal"

	"matchcore/internal/engine"
)

func main() {
	totalOrders := flag.Int("orders", 500000, "number of orders to submit")
	priceLevels := flag.Int64("price-levels", 200, "unique price levels around the mid")
	tick := flag.Int64("tick", 1, "sell price used when the random offset reaches the mid price")
	basePrice := flag.Int64("base-price", 10000, "mid price used for randomization")
	symbol := flag.String("symbol", "SIM", "symbol to trade")
	seed := flag.Int64("seed", time.Now().UnixNano(), "seed for deterministic random streams")
	cpuProfile := flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile := flag.String("memprofile", "", "write heap profile to file")
	marketRatio := flag.Int("market-ratio", 5, "1 in N orders will be market instead of limit")
	iocRatio := flag.Int("ioc-ratio", 10, "1 in N limit-eligible orders will be ioc instead of limit")
	fokRatio := flag.Int("fok-ratio", 20, "1 in N limit-eligible orders will be fok instead of limit")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic(err)
		}
		defer pprof.StopCPUProfile()
	}

	eng := engine.NewMatchingEngine()

	var matches int64
	start := time.Now()
	for i := 0; i < *totalOrders; i++ {
		order := nextRandomOrder(rng, *symbol, *basePrice, *priceLevels, *tick, *marketRatio, *iocRatio, *fokRatio)
		trades := eng.Ingest(order)
		matches += int64(len(trades))
	}
	elapsed := time.Since(start)

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err == nil {
			defer f.Close()
			_ = pprof.WriteHeapProfile(f)
		}
	}

	ordersPerSec := float64(*totalOrders) / elapsed.Seconds()
	tradesPerSec := float64(matches) / elapsed.Seconds()

	fmt.Printf("submitted %d orders in %s (%.0f orders/s)\n", *totalOrders, elapsed.Truncate(time.Millisecond), ordersPerSec)
	fmt.Printf("matched %d trades (%.0f trades/s)\n", matches, tradesPerSec)
	fmt.Printf("config: market-ratio=1/%d ioc-ratio=1/%d fok-ratio=1/%d\n", *marketRatio, *iocRatio, *fokRatio)
}

func nextRandomOrder(rng *rand.Rand, symbol string, mid, width, tick int64, marketRatio, iocRatio, fokRatio int) *engine.Order {
	side := engine.Side(rng.Intn(2))
	var price int64
	if side == engine.Buy {
		price = mid + rng.Int63n(width)
	} else {
		offset := rng.Int63n(width)
		if mid > offset {
			price = mid - offset
		} else {
			price = tick
		}
	}

	otype := engine.Limit
	switch {
	case marketRatio > 0 && rng.Intn(marketRatio) == 0:
		otype = engine.Market
	case iocRatio > 0 && rng.Intn(iocRatio) == 0:
		otype = engine.IOC
	case fokRatio > 0 && rng.Intn(fokRatio) == 0:
		otype = engine.FOK
	}

	qty := rng.Int63n(5) + 1

	var priceDec decimal.Decimal
	if otype != engine.Market {
		priceDec = decimal.NewFromInt(price)
	}

	return engine.NewOrder(otype, side, symbol, priceDec, decimal.NewFromInt(qty))
}

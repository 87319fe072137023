// Binance depth follower: maintains a live level book from the partial
// depth stream, folds it into optimized 256-bin snapshots and publishes
// them over NATS on the feed's route subject.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/btr-supply/mitch"
	"github.com/btr-supply/mitch/internal/book"
	"github.com/btr-supply/mitch/internal/dotenv"
	"github.com/btr-supply/mitch/internal/latlog"
	"github.com/btr-supply/mitch/internal/metrics"
	"github.com/btr-supply/mitch/internal/nats"
	"github.com/btr-supply/mitch/internal/providers"
	"github.com/btr-supply/mitch/internal/symbols"

	"github.com/gorilla/websocket"
)

var (
	natsServers = flag.String("servers", "nats://localhost:4222", "NATS URLs")
	symbolFlag  = flag.String("symbol", symbols.FromEnv("BTCUSDT"), "Binance symbol (e.g. BTCUSDT)")
	depthFlag   = flag.Int("depth", 20, "Binance USD-M partial book depth (5, 10, 20)")
	curveFlag   = flag.Int("curve", int(mitch.BiLinGeo), "bin curve (0..3)")
	volScale    = flag.Float64("vol-scale", 1e-3, "units per volume count")
	metricsAddr = flag.String("metrics", "", "metrics listen address (empty disables)")
	latlogDir   = flag.String("latlog", os.Getenv("MITCH_LATLOG_DIR"), "latency log directory (empty disables)")
)

func main() {
	_ = dotenv.Load(".env")
	flag.Parse()
	servers := strings.Split(*natsServers, ",")
	symbol := *symbolFlag
	if symbol == "" {
		log.Fatal("symbol is required")
	}
	symbolNorm := symbols.Normalize(symbol)
	depth := *depthFlag
	switch depth {
	case 5, 10, 20:
	default:
		log.Printf("Unsupported depth %d, defaulting to 20", depth)
		depth = 20
	}

	instrument, err := symbols.Resolve(symbolNorm, mitch.Spot)
	if err != nil {
		log.Fatalf("resolve %s: %v", symbolNorm, err)
	}
	provider, err := providers.Resolve("binance", 0.9)
	if err != nil {
		log.Fatalf("resolve provider: %v", err)
	}
	route := provider.Route(mitch.KindOrderBook)

	binner, err := book.NewBinner(instrument, mitch.Curve(*curveFlag), *volScale)
	if err != nil {
		log.Fatalf("binner: %v", err)
	}

	conn := nats.Connect(servers, "mitch-binance-book")
	defer conn.Close()

	lat := latlog.New(*latlogDir, "binance-book")
	defer lat.Close()
	metrics.StartServer(*metricsAddr, log.Printf)
	published := metrics.NewCounter("mitch_books_published_total", "Book snapshots published", metrics.ProviderLabels(provider.Name))
	bidVolume := metrics.NewGauge("mitch_book_bid_volume", "Total bid volume of the last snapshot", metrics.ProviderLabels(provider.Name))
	askVolume := metrics.NewGauge("mitch_book_ask_volume", "Total ask volume of the last snapshot", metrics.ProviderLabels(provider.Name))

	wsURL := fmt.Sprintf("wss://fstream.binance.com/ws/%s@depth%d@100ms", symbols.BinanceStream(symbolNorm), depth)
	log.Printf("Starting Binance Book Follower. Servers: %v, Subject: %s, Symbol: %s, Depth: %d, Curve: %v",
		servers, nats.SubjectFor(route), symbolNorm, depth, binner.Curve)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	levels := book.New()

	emit := func() {
		start := time.Now()
		snap, err := binner.Snapshot(levels)
		if err != nil {
			return
		}
		frame, err := mitch.EncodeOrderBookBatch(mitch.TimestampOf(start), []mitch.OrderBook{snap})
		if err != nil {
			log.Printf("encode error: %v", err)
			return
		}
		if err := conn.Publish(route, frame); err != nil {
			log.Printf("NATS publish error: %v", err)
			return
		}
		published.Inc()
		bidVolume.Set(int64(snap.TotalBidVolume()))
		askVolume.Set(int64(snap.TotalAskVolume()))
		lat.Latency("publish", start, map[string]any{"mid": snap.MidPrice})
	}

	for {
		ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			log.Printf("Dial error: %v. Retrying in 5s...", err)
			select {
			case <-interrupt:
				return
			case <-time.After(5 * time.Second):
				continue
			}
		}

		done := make(chan struct{})

		go func() {
			defer close(done)
			defer ws.Close()

			for {
				_, message, err := ws.ReadMessage()
				if err != nil {
					log.Printf("Read error: %v", err)
					return
				}

				var env struct {
					Bids    [][]string `json:"b"`
					Asks    [][]string `json:"a"`
					BidsAlt [][]string `json:"bids"`
					AsksAlt [][]string `json:"asks"`
				}
				if err := json.Unmarshal(message, &env); err != nil {
					continue
				}
				bids := env.Bids
				asks := env.Asks
				if len(bids) == 0 {
					bids = env.BidsAlt
				}
				if len(asks) == 0 {
					asks = env.AsksAlt
				}
				if len(bids) == 0 && len(asks) == 0 {
					continue
				}

				// Partial depth frames are full snapshots at this depth.
				levels.ApplySnapshot(bids, asks)
				emit()
			}
		}()

		select {
		case <-interrupt:
			log.Println("Interrupt received, shutting down...")
			ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case <-done:
			log.Println("WebSocket closed, reconnecting...")
			time.Sleep(1 * time.Second)
		}
	}
}

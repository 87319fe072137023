// Binance aggTrade follower: converts the venue trade stream into
// encoded trade batches and publishes them to Kafka under the feed's
// route key.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/btr-supply/mitch"
	"github.com/btr-supply/mitch/internal/dotenv"
	"github.com/btr-supply/mitch/internal/kafka"
	"github.com/btr-supply/mitch/internal/latlog"
	"github.com/btr-supply/mitch/internal/metrics"
	"github.com/btr-supply/mitch/internal/providers"
	"github.com/btr-supply/mitch/internal/symbols"

	"github.com/gorilla/websocket"
)

var (
	kafkaBrokers = flag.String("brokers", "localhost:9092", "Kafka brokers")
	topicFlag    = flag.String("topic", "mitch", "Kafka topic")
	symbolFlag   = flag.String("symbol", symbols.FromEnv("BTCUSDT"), "Binance symbol (e.g. BTCUSDT)")
	qtyScale     = flag.Float64("qty-scale", 1e-3, "units per quantity count (1e-3 stores milli-units)")
	metricsAddr  = flag.String("metrics", "", "metrics listen address (empty disables)")
	latlogDir    = flag.String("latlog", os.Getenv("MITCH_LATLOG_DIR"), "latency log directory (empty disables)")
)

type binanceAggTrade struct {
	TradeID   uint64 `json:"a"`
	Price     string `json:"p"`
	Quantity  string `json:"q"`
	TradeTime int64  `json:"T"`
	IsSell    bool   `json:"m"` // buyer is maker => taker sold
}

func main() {
	_ = dotenv.Load(".env")
	flag.Parse()
	brokers := strings.Split(*kafkaBrokers, ",")
	symbol := *symbolFlag
	if symbol == "" {
		log.Fatal("symbol is required")
	}
	symbolNorm := symbols.Normalize(symbol)

	instrument, err := symbols.Resolve(symbolNorm, mitch.Spot)
	if err != nil {
		log.Fatalf("resolve %s: %v", symbolNorm, err)
	}
	provider, err := providers.Resolve("binance", 0.9)
	if err != nil {
		log.Fatalf("resolve provider: %v", err)
	}
	route := provider.Route(mitch.KindTrade)

	producer := kafka.NewProducer(brokers, *topicFlag)
	defer producer.Close()

	lat := latlog.New(*latlogDir, "binance-trades")
	defer lat.Close()
	metrics.StartServer(*metricsAddr, log.Printf)
	published := metrics.NewCounter("mitch_trades_published_total", "Trade batches published", metrics.ProviderLabels(provider.Name))
	dropped := metrics.NewCounter("mitch_trades_dropped_total", "Trades dropped by parse or overflow", metrics.ProviderLabels(provider.Name))

	wsURL := fmt.Sprintf("wss://fstream.binance.com/ws/%s@aggTrade", symbols.BinanceStream(symbolNorm))
	log.Printf("Starting Binance Trade Follower. Brokers: %v, Topic: %s, Symbol: %s, Instrument: %v, Route: %v",
		brokers, *topicFlag, symbolNorm, instrument, route)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	// Only the main loop receives from interrupt; everything else
	// watches stop so one Ctrl-C reaches every goroutine.
	stop := make(chan struct{})
	var stopOnce sync.Once
	closeStop := func() {
		stopOnce.Do(func() { close(stop) })
	}

	// Pending trades are flushed as one batch every 100ms.
	buf := newTradeBuffer()

	emitDone := make(chan struct{})
	go func() {
		defer close(emitDone)
		flushLoop(stop, 100*time.Millisecond, buf, func(batch []mitch.Trade) {
			if len(batch) > mitch.MaxBatchCount {
				dropped.Add(int64(len(batch) - mitch.MaxBatchCount))
				batch = batch[len(batch)-mitch.MaxBatchCount:]
			}
			start := time.Now()
			frame, err := mitch.EncodeTradeBatch(mitch.TimestampOf(start), batch)
			if err != nil {
				log.Printf("encode error: %v", err)
				return
			}
			if err := producer.Publish(route, frame); err != nil {
				log.Printf("Kafka write error: %v", err)
				return
			}
			published.Inc()
			lat.Latency("publish", start, map[string]any{"trades": len(batch)})
		})
	}()

	for {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			log.Printf("Error connecting to WebSocket: %v. Retrying in 5s...", err)
			select {
			case <-interrupt:
				closeStop()
				return
			case <-time.After(5 * time.Second):
				continue
			}
		}

		done := make(chan struct{})

		go func() {
			defer close(done)
			defer conn.Close()

			for {
				_, message, err := conn.ReadMessage()
				if err != nil {
					log.Printf("Read error: %v", err)
					return
				}

				var ev binanceAggTrade
				if err := json.Unmarshal(message, &ev); err != nil {
					continue
				}
				trade, ok := toTrade(instrument, ev, *qtyScale)
				if !ok {
					dropped.Inc()
					continue
				}

				buf.Add(trade)
			}
		}()

		select {
		case <-interrupt:
			log.Println("Interrupt received, shutting down...")
			closeStop()
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			<-emitDone
			return
		case <-done:
			log.Println("WebSocket closed, reconnecting...")
			time.Sleep(1 * time.Second)
		}
	}
}

// tradeBuffer accumulates parsed trades between flushes.
type tradeBuffer struct {
	mu      sync.Mutex
	pending []mitch.Trade
}

func newTradeBuffer() *tradeBuffer { return &tradeBuffer{} }

func (b *tradeBuffer) Add(t mitch.Trade) {
	b.mu.Lock()
	b.pending = append(b.pending, t)
	b.mu.Unlock()
}

func (b *tradeBuffer) Drain() []mitch.Trade {
	b.mu.Lock()
	batch := b.pending
	b.pending = nil
	b.mu.Unlock()
	return batch
}

// flushLoop drains buf every interval and hands non-empty batches to
// emit. It returns once stop is closed.
func flushLoop(stop <-chan struct{}, interval time.Duration, buf *tradeBuffer, emit func([]mitch.Trade)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if batch := buf.Drain(); len(batch) > 0 {
				emit(batch)
			}
		case <-stop:
			return
		}
	}
}

func toTrade(instrument mitch.InstrumentID, ev binanceAggTrade, qtyScale float64) (mitch.Trade, bool) {
	price, err := strconv.ParseFloat(ev.Price, 64)
	if err != nil || price <= 0 {
		return mitch.Trade{}, false
	}
	qty, err := strconv.ParseFloat(ev.Quantity, 64)
	if err != nil || qty <= 0 {
		return mitch.Trade{}, false
	}
	counts := qty / qtyScale
	if counts < 1 {
		counts = 1
	}
	if counts > 1<<32-1 {
		return mitch.Trade{}, false
	}
	side := mitch.Buy
	if ev.IsSell {
		side = mitch.Sell
	}
	return mitch.Trade{
		InstrumentID: instrument,
		Price:        price,
		Quantity:     uint32(counts),
		TradeID:      uint32(ev.TradeID), // venue ids wrap the low 32 bits
		Side:         side,
	}, true
}

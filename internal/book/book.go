// Package book maintains a live price-level order book fed by venue
// depth streams and aggregates it into fixed 128-bin snapshots.
package book

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/btr-supply/mitch"
)

// Book is a mutable two-sided level book. Levels arrive as venue JSON
// string pairs and are kept keyed by their exact price string so venue
// formatting quirks never merge distinct levels.
type Book struct {
	mu   sync.Mutex
	bids map[string]level
	asks map[string]level
}

type level struct {
	price float64
	qty   float64
}

// New returns an empty book.
func New() *Book {
	return &Book{
		bids: make(map[string]level),
		asks: make(map[string]level),
	}
}

// ApplySnapshot replaces both sides with the given levels.
func (b *Book) ApplySnapshot(bids, asks [][]string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bids = make(map[string]level, len(bids))
	b.asks = make(map[string]level, len(asks))
	applyLevels(b.bids, bids, false)
	applyLevels(b.asks, asks, false)
}

// ApplyDelta merges level updates; a zero quantity removes the level.
func (b *Book) ApplyDelta(bids, asks [][]string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	applyLevels(b.bids, bids, true)
	applyLevels(b.asks, asks, true)
}

func applyLevels(dst map[string]level, levels [][]string, deletes bool) {
	for _, lvl := range levels {
		if len(lvl) < 2 {
			continue
		}
		price, err := strconv.ParseFloat(lvl[0], 64)
		if err != nil {
			continue
		}
		qty, err := strconv.ParseFloat(lvl[1], 64)
		if err != nil {
			continue
		}
		if qty <= 0 {
			if deletes {
				delete(dst, lvl[0])
			}
			continue
		}
		dst[lvl[0]] = level{price: price, qty: qty}
	}
}

// Best returns the best bid and ask prices, or ok=false while either
// side is empty.
func (b *Book) Best() (bid, ask float64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bestLocked()
}

func (b *Book) bestLocked() (bid, ask float64, ok bool) {
	for _, lvl := range b.bids {
		if lvl.price > bid {
			bid = lvl.price
		}
	}
	ask = math.Inf(1)
	for _, lvl := range b.asks {
		if lvl.price < ask {
			ask = lvl.price
		}
	}
	if bid <= 0 || math.IsInf(ask, 1) {
		return 0, 0, false
	}
	return bid, ask, true
}

// Levels returns up to depth levels per side, best first, as price/qty
// pairs.
func (b *Book) Levels(depth int) (bids, asks [][2]float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return sortLevels(b.bids, true, depth), sortLevels(b.asks, false, depth)
}

func sortLevels(src map[string]level, desc bool, depth int) [][2]float64 {
	out := make([][2]float64, 0, len(src))
	for _, lvl := range src {
		out = append(out, [2]float64{lvl.price, lvl.qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i][0] > out[j][0]
		}
		return out[i][0] < out[j][0]
	})
	if depth > 0 && len(out) > depth {
		out = out[:depth]
	}
	return out
}

// Binner converts the live book into optimized snapshots. VolumeScale
// divides level quantities before the uint32 truncation so books quoted
// in fractional units keep resolution (e.g. 1e-3 stores milli-units).
type Binner struct {
	InstrumentID mitch.InstrumentID
	Curve        mitch.Curve
	VolumeScale  float64

	table *mitch.BinTable
}

// NewBinner builds a binner over one of the built-in curves.
func NewBinner(id mitch.InstrumentID, curve mitch.Curve, volumeScale float64) (*Binner, error) {
	table, err := mitch.CurveTable(curve)
	if err != nil {
		return nil, err
	}
	if !(volumeScale > 0) {
		return nil, fmt.Errorf("book: volume scale %v is not positive", volumeScale)
	}
	return &Binner{InstrumentID: id, Curve: curve, VolumeScale: volumeScale, table: table}, nil
}

// Snapshot folds the current book into a 256-bin snapshot around the
// current mid. Levels past the 200% boundary saturate into the outer
// bin; each populated level contributes one count.
func (bn *Binner) Snapshot(b *Book) (mitch.OrderBook, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bid, ask, ok := b.bestLocked()
	if !ok {
		return mitch.OrderBook{}, fmt.Errorf("book: empty side, no mid")
	}
	mid := (bid + ask) / 2

	snap := mitch.OrderBook{
		InstrumentID: bn.InstrumentID,
		MidPrice:     mid,
		Curve:        bn.Curve,
	}
	for _, lvl := range b.bids {
		bin := bn.table.BinForOffset((mid - lvl.price) / mid)
		addToBin(&snap.Bids[bin], lvl.qty/bn.VolumeScale)
	}
	for _, lvl := range b.asks {
		bin := bn.table.BinForOffset((lvl.price - mid) / mid)
		addToBin(&snap.Asks[bin], lvl.qty/bn.VolumeScale)
	}
	return snap, nil
}

func addToBin(bin *mitch.Bin, qty float64) {
	bin.Count++
	v := uint64(bin.Volume) + uint64(qty)
	if v > math.MaxUint32 {
		v = math.MaxUint32
	}
	bin.Volume = uint32(v)
}

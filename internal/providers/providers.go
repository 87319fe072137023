// Package providers maps market-provider names to the 16-bit numbers
// embedded in route identifiers.
package providers

import (
	"fmt"
	"strings"

	"github.com/btr-supply/mitch"
	"github.com/btr-supply/mitch/internal/similarity"
)

// Provider is one venue in the directory.
type Provider struct {
	ID      uint16
	Name    string
	Aliases []string
}

// The directory is append-only: numbers are wire identifiers and must
// never be reassigned.
var directory = []Provider{
	{ID: 101, Name: "Binance", Aliases: []string{"binance futures", "binance usdm"}},
	{ID: 102, Name: "Bybit"},
	{ID: 103, Name: "OKX", Aliases: []string{"okex"}},
	{ID: 104, Name: "Kraken"},
	{ID: 105, Name: "Bitget"},
	{ID: 106, Name: "Gate", Aliases: []string{"gate.io", "gateio"}},
	{ID: 107, Name: "KuCoin", Aliases: []string{"kucoin futures"}},
	{ID: 108, Name: "MEXC"},
	{ID: 853, Name: "Coinbase", Aliases: []string{"coinbase pro", "gdax"}},
	{ID: 1741, Name: "NYSE", Aliases: []string{"new york stock exchange"}},
	{ID: 1742, Name: "NASDAQ"},
	{ID: 1750, Name: "CME", Aliases: []string{"chicago mercantile exchange"}},
	{ID: 1760, Name: "LSE", Aliases: []string{"london stock exchange"}},
}

var (
	byName = make(map[string]*Provider)
	byID   = make(map[uint16]*Provider)
)

func init() {
	for i := range directory {
		p := &directory[i]
		byName[normalize(p.Name)] = p
		for _, a := range p.Aliases {
			byName[normalize(a)] = p
		}
		byID[p.ID] = p
	}
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	r := strings.NewReplacer("-", "", "_", "", ".", "", " ", "")
	return r.Replace(s)
}

// Resolve finds a provider by name or alias. Lookup is exact on the
// normalized form first, then fuzzy over the directory with substring
// and prefix bonuses, so "gate exchange" still lands on Gate; fuzzy
// hits below minConfidence are rejected.
func Resolve(name string, minConfidence float64) (Provider, error) {
	q := normalize(name)
	if q == "" {
		return Provider{}, fmt.Errorf("providers: empty name")
	}
	if p, ok := byName[q]; ok {
		return *p, nil
	}
	var best *Provider
	var bestSim float64
	for i := range directory {
		p := &directory[i]
		sim := similarity.Enhanced(q, normalize(p.Name))
		for _, a := range p.Aliases {
			if s := similarity.Enhanced(q, normalize(a)); s > sim {
				sim = s
			}
		}
		if sim > bestSim {
			best, bestSim = p, sim
		}
	}
	if best == nil || bestSim < minConfidence {
		return Provider{}, fmt.Errorf("providers: no match for %q (best %.2f)", name, bestSim)
	}
	return *best, nil
}

// ByID looks a provider up by its wire number.
func ByID(id uint16) (Provider, bool) {
	p, ok := byID[id]
	if !ok {
		return Provider{}, false
	}
	return *p, true
}

// Route builds the route identifier for one of this provider's feeds.
func (p Provider) Route(kind byte) mitch.RouteID {
	return mitch.PackRoute(p.ID, kind)
}

// All returns the full directory.
func All() []Provider {
	out := make([]Provider, len(directory))
	copy(out, directory)
	return out
}

// Package symbols resolves venue ticker strings to packed instrument
// identifiers: normalization, suffix stripping, quote-currency detection
// and fuzzy matching over the embedded asset tables.
package symbols

import (
	"fmt"
	"os"
	"strings"

	"github.com/btr-supply/mitch"
	"github.com/btr-supply/mitch/internal/similarity"
)

const (
	envSymbol    = "SYMBOL"
	envSymbolAlt = "MITCH_SYMBOL"
)

// FromEnv returns the configured trading symbol, falling back to
// defaultSymbol.
func FromEnv(defaultSymbol string) string {
	if v := strings.TrimSpace(os.Getenv(envSymbol)); v != "" {
		return Normalize(v)
	}
	if v := strings.TrimSpace(os.Getenv(envSymbolAlt)); v != "" {
		return Normalize(v)
	}
	return Normalize(defaultSymbol)
}

// Normalize uppercases a symbol and strips separators.
func Normalize(symbol string) string {
	s := strings.TrimSpace(symbol)
	if s == "" {
		return ""
	}
	r := strings.NewReplacer("-", "", "_", "", "/", "", " ", "")
	return strings.ToUpper(r.Replace(s))
}

// Lower is Normalize in stream-name case.
func Lower(symbol string) string {
	return strings.ToLower(Normalize(symbol))
}

// Asset is one entry of the embedded asset tables.
type Asset struct {
	Class   mitch.AssetClass
	Num     uint16
	Name    string
	Aliases []string
}

// The tables carry the liquid subset of each class; numbers are wire
// identifiers and must never be reassigned. Forex numbers follow the
// upstream registry (EUR=111, USD=461).
var assets = []Asset{
	{mitch.Forex, 111, "EUR", nil},
	{mitch.Forex, 461, "USD", []string{"DOLLAR"}},
	{mitch.Forex, 152, "GBP", []string{"STERLING"}},
	{mitch.Forex, 221, "JPY", []string{"YEN"}},
	{mitch.Forex, 71, "CAD", nil},
	{mitch.Forex, 26, "AUD", nil},
	{mitch.Forex, 87, "CHF", nil},
	{mitch.CryptoAssets, 1, "BTC", []string{"BITCOIN", "XBT"}},
	{mitch.CryptoAssets, 2, "ETH", []string{"ETHEREUM", "ETHER"}},
	{mitch.CryptoAssets, 3, "USDT", []string{"TETHER"}},
	{mitch.CryptoAssets, 4, "USDC", []string{"USDCOIN"}},
	{mitch.CryptoAssets, 5, "SOL", []string{"SOLANA"}},
	{mitch.CryptoAssets, 6, "XRP", []string{"RIPPLE"}},
	{mitch.CryptoAssets, 7, "BNB", nil},
	{mitch.CryptoAssets, 8, "DOGE", []string{"DOGECOIN"}},
	{mitch.CryptoAssets, 9, "ADA", []string{"CARDANO"}},
	{mitch.Equities, 7421, "AAPL", []string{"APPLE"}},
	{mitch.Equities, 7422, "MSFT", []string{"MICROSOFT"}},
	{mitch.Equities, 7423, "TSLA", []string{"TESLA"}},
	{mitch.Commodities, 12, "XAU", []string{"GOLD"}},
	{mitch.Commodities, 13, "XAG", []string{"SILVER"}},
	{mitch.Commodities, 21, "WTI", []string{"CRUDE", "USOIL"}},
}

var assetIndex = func() map[string]*Asset {
	m := make(map[string]*Asset, len(assets)*2)
	for i := range assets {
		a := &assets[i]
		m[a.Name] = a
		for _, al := range a.Aliases {
			if _, taken := m[al]; !taken {
				m[al] = a
			}
		}
	}
	return m
}()

// Quote currencies probed during detection, most specific first so that
// "USDT" never matches as "USD" plus a trailing T.
var quoteOrder = []string{"USDT", "USDC", "USD", "EUR", "GBP", "JPY", "CAD", "AUD", "CHF", "BTC", "ETH"}

// Match is one resolved asset with the confidence of the lookup.
type Match struct {
	Asset      Asset
	Confidence float64
}

// FindAsset resolves one asset name or ticker fragment: exact table hit,
// then exact alias, then Jaro-Winkler fuzzy match at or above
// minConfidence.
func FindAsset(query string, minConfidence float64) (Match, error) {
	q := Normalize(stripSuffixes(query))
	if q == "" {
		return Match{}, fmt.Errorf("symbols: empty asset query")
	}
	if a, ok := assetIndex[q]; ok {
		return Match{Asset: *a, Confidence: 1}, nil
	}
	var best *Asset
	var bestSim float64
	for i := range assets {
		a := &assets[i]
		sim := similarity.JaroWinkler(q, a.Name)
		for _, al := range a.Aliases {
			if s := similarity.JaroWinkler(q, al); s > sim {
				sim = s
			}
		}
		if sim > bestSim || (sim == bestSim && best != nil && len(a.Name) < len(best.Name)) {
			best, bestSim = a, sim
		}
	}
	if best == nil || bestSim < minConfidence {
		return Match{}, fmt.Errorf("symbols: no asset match for %q (best %.2f)", query, bestSim)
	}
	return Match{Asset: *best, Confidence: bestSim}, nil
}

// Resolve parses a venue symbol like "BTCUSDT" or "EUR/USD" into a
// packed instrument identifier: strip venue suffixes, detect the quote
// currency, resolve the remainder as the base asset. A bare quote
// currency ("EUR") resolves against USD.
func Resolve(symbol string, kind mitch.InstrumentKind) (mitch.InstrumentID, error) {
	s := Normalize(stripSuffixes(symbol))
	if s == "" {
		return 0, fmt.Errorf("symbols: empty symbol")
	}

	quote, rest, ok := detectQuote(s)
	if !ok {
		return 0, fmt.Errorf("symbols: no quote currency in %q", symbol)
	}
	if rest == "" {
		// The symbol is just a currency; quote it against USD.
		usd := assetIndex["USD"]
		id, err := mitch.PackInstrument(kind, quote.Class, quote.Num, usd.Class, usd.Num, 0)
		if err != nil {
			return 0, err
		}
		return id, id.Validate()
	}

	base, err := FindAsset(rest, 0.7)
	if err != nil {
		return 0, fmt.Errorf("symbols: base of %q: %w", symbol, err)
	}
	id, err := mitch.PackInstrument(kind, base.Asset.Class, base.Asset.Num, quote.Class, quote.Num, 0)
	if err != nil {
		return 0, err
	}
	return id, id.Validate()
}

func detectQuote(s string) (Asset, string, bool) {
	for _, q := range quoteOrder {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return *assetIndex[q], strings.TrimSuffix(s, q), true
		}
	}
	// A bare currency is its own quote side.
	if a, ok := assetIndex[s]; ok && a.Class == mitch.Forex && a.Name != "USD" {
		return *a, "", true
	}
	return Asset{}, "", false
}

// Venue decorations stripped before resolution: delimiter-scoped
// single-letter feeds ("EURUSD.m") and standalone marketing suffixes
// ("BTCUSDTmini"). Applied twice for compound forms.
func stripSuffixes(symbol string) string {
	s := strings.ToLower(strings.TrimSpace(symbol))
	for pass := 0; pass < 2; pass++ {
		if i := strings.LastIndexAny(s, "._-"); i > 0 {
			switch s[i+1:] {
			case "us", "m", "c", "z", "b", "r", "d", "i":
				s = s[:i]
				continue
			}
		}
		for _, suf := range []string{"usx", "mini", "micro", "cash", "spot", "ecn", "zero"} {
			if strings.HasSuffix(s, suf) && len(s) > len(suf) {
				s = strings.TrimSuffix(s, suf)
				break
			}
		}
	}
	return s
}

// BinanceStream returns the lowercase stream symbol Binance expects.
func BinanceStream(symbol string) string {
	return Lower(symbol)
}

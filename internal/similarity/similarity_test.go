package similarity

import "testing"

func TestJaroWinklerBounds(t *testing.T) {
	if got := JaroWinkler("binance", "binance"); got != 1 {
		t.Errorf("identical: got %v", got)
	}
	if got := JaroWinkler("", "binance"); got != 0 {
		t.Errorf("empty: got %v", got)
	}
	if got := JaroWinkler("abc", "xyz"); got != 0 {
		t.Errorf("disjoint: got %v", got)
	}
}

func TestJaroWinklerPrefixBonus(t *testing.T) {
	// Shared prefixes rate higher than the same edits elsewhere.
	withPrefix := JaroWinkler("binance", "binnance")
	without := JaroWinkler("binance", "nibnance")
	if withPrefix <= without {
		t.Errorf("prefix bonus missing: %v <= %v", withPrefix, without)
	}
	if withPrefix < 0.9 {
		t.Errorf("near-identical strings rated %v", withPrefix)
	}
}

func TestJaroWinklerSymmetric(t *testing.T) {
	a, b := "kraken", "karken"
	if JaroWinkler(a, b) != JaroWinkler(b, a) {
		t.Errorf("asymmetric result for %q/%q", a, b)
	}
}

func TestEnhanced(t *testing.T) {
	if Enhanced("coin", "coinbase") <= JaroWinkler("coin", "coinbase") {
		t.Errorf("substring bonus missing")
	}
	if got := Enhanced("coinbase", "coinbase"); got != 1 {
		t.Errorf("identical capped: got %v", got)
	}
}

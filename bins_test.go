package mitch

import (
	"errors"
	"testing"
)

func TestCurveTablesWellFormed(t *testing.T) {
	for _, c := range []Curve{LinGaussian, LinGeoFlat, BiLinGeo, TriLinear} {
		tab, err := CurveTable(c)
		if err != nil {
			t.Fatalf("%v: %v", c, err)
		}
		r := tab.Ratios()
		if len(r) != BinsPerSide {
			t.Fatalf("%v: %d ratios", c, len(r))
		}
		if !(r[0] > 0) {
			t.Errorf("%v: first ratio %v not positive", c, r[0])
		}
		for i := 1; i < BinsPerSide; i++ {
			if !(r[i] > r[i-1]) {
				t.Errorf("%v: not strictly increasing at bin %d (%v <= %v)", c, i, r[i], r[i-1])
			}
		}
		if r[BinsPerSide-1] != MaxOffsetRatio {
			t.Errorf("%v: last ratio %v, want exactly %v", c, r[BinsPerSide-1], MaxOffsetRatio)
		}
	}
	if _, err := CurveTable(Curve(4)); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("undefined curve: got %v", err)
	}
}

func TestCurveTableHeads(t *testing.T) {
	// Each curve starts at its documented minimum offset.
	heads := map[Curve]float64{
		LinGaussian: 1e-7,
		LinGeoFlat:  1e-7,
		BiLinGeo:    2.5e-7,
		TriLinear:   0.0002,
	}
	for c, want := range heads {
		tab, err := CurveTable(c)
		if err != nil {
			t.Fatalf("%v: %v", c, err)
		}
		if got := tab.Ratio(0); got != want {
			t.Errorf("%v: first ratio %v want %v", c, got, want)
		}
	}
}

func TestBinForOffset(t *testing.T) {
	tab, err := CurveTable(LinGaussian)
	if err != nil {
		t.Fatal(err)
	}
	if got := tab.BinForOffset(0); got != 0 {
		t.Errorf("zero offset: got bin %d want 0", got)
	}
	// An exact boundary belongs to its own bin.
	if got := tab.BinForOffset(tab.Ratio(40)); got != 40 {
		t.Errorf("boundary 40: got bin %d", got)
	}
	// Just past a boundary belongs to the next bin.
	if got := tab.BinForOffset(tab.Ratio(40) * 1.000001); got != 41 {
		t.Errorf("past boundary 40: got bin %d", got)
	}
	// Offsets beyond 200% saturate into the last bin.
	if got := tab.BinForOffset(3.5); got != BinsPerSide-1 {
		t.Errorf("saturation: got bin %d want %d", got, BinsPerSide-1)
	}
}

func TestRatioClamped(t *testing.T) {
	tab, err := CurveTable(TriLinear)
	if err != nil {
		t.Fatal(err)
	}
	if tab.Ratio(-5) != tab.Ratio(0) {
		t.Errorf("negative bin not clamped")
	}
	if tab.Ratio(500) != tab.Ratio(BinsPerSide-1) {
		t.Errorf("oversized bin not clamped")
	}
}

func TestPriceForBin(t *testing.T) {
	tab, err := CurveTable(TriLinear)
	if err != nil {
		t.Fatal(err)
	}
	mid := 1000.0
	if got := tab.PriceForBin(mid, Bid, BinsPerSide-1); got != mid*(1-MaxOffsetRatio) {
		t.Errorf("outer bid boundary: got %v", got)
	}
	if got := tab.PriceForBin(mid, Ask, BinsPerSide-1); got != mid*(1+MaxOffsetRatio) {
		t.Errorf("outer ask boundary: got %v", got)
	}
	if !(tab.PriceForBin(mid, Bid, 0) < mid) || !(tab.PriceForBin(mid, Ask, 0) > mid) {
		t.Errorf("first bin boundaries do not bracket the mid")
	}
}

func TestNewBinTable(t *testing.T) {
	tab, err := CurveTable(LinGeoFlat)
	if err != nil {
		t.Fatal(err)
	}
	good := tab.Ratios()
	if _, err := NewBinTable(good); err != nil {
		t.Fatalf("valid table rejected: %v", err)
	}

	if _, err := NewBinTable(good[:127]); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("short table: got %v", err)
	}
	bad := tab.Ratios()
	bad[0] = 0
	if _, err := NewBinTable(bad); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("zero first ratio: got %v", err)
	}
	bad = tab.Ratios()
	bad[64] = bad[63]
	if _, err := NewBinTable(bad); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("plateau: got %v", err)
	}
	bad = tab.Ratios()
	bad[127] = 2.5
	if _, err := NewBinTable(bad); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("ratio past maximum: got %v", err)
	}
}

func TestNewBinTableCopiesInput(t *testing.T) {
	tab, err := CurveTable(LinGaussian)
	if err != nil {
		t.Fatal(err)
	}
	src := tab.Ratios()
	custom, err := NewBinTable(src)
	if err != nil {
		t.Fatal(err)
	}
	src[0] = 99
	if custom.Ratio(0) == 99 {
		t.Fatalf("table aliases caller slice")
	}
}

func BenchmarkBinForOffset(b *testing.B) {
	tab, err := CurveTable(LinGaussian)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tab.BinForOffset(0.0042)
	}
}

package mitch

import (
	"fmt"
	"sort"
)

// Curve selects how the 128 bins of one book side spread across the
// price axis. The byte values are the wire codes carried in the
// optimized snapshot header.
type Curve uint8

const (
	// LinGaussian spaces the first 16 bins linearly from a 0.00001%
	// offset, then grows quartically to the tail: tightest around the
	// mid, coarsest at the edge.
	LinGaussian Curve = 0
	// LinGeoFlat uses the same linear head but a geometric tail whose
	// growth rate decays to zero, giving more uniform mid-range spacing.
	LinGeoFlat Curve = 1
	// BiLinGeo uses two linear segments of increasing slope over the
	// first three quarters of the bins and geometric growth on the
	// outer quarter.
	BiLinGeo Curve = 2
	// TriLinear uses three linear segments of increasing slope, tuned
	// for instruments with wide habitual spreads; it reaches high
	// offsets far sooner than the other curves.
	TriLinear Curve = 3
)

var curveNames = [...]string{"lin-gaussian", "lin-geo-flat", "bi-lin-geo", "tri-linear"}

func (c Curve) String() string {
	if int(c) < len(curveNames) {
		return curveNames[c]
	}
	return fmt.Sprintf("curve(%d)", uint8(c))
}

// BinsPerSide is the number of liquidity bins on each side of an
// optimized order-book snapshot.
const BinsPerSide = 128

// MaxOffsetRatio is the outer boundary of the last bin: 200% away from
// the mid price.
const MaxOffsetRatio = 2.0

// BinTable holds the 128 strictly increasing offset ratios that bound
// the bins of one book side. Ratio i is |price-mid|/mid at the outer
// boundary of bin i. Tables are immutable once built and safe to share.
//
// The built-in curve tables are computed once at startup from frozen
// coefficients using only IEEE-754 addition, multiplication and
// division, so every platform reproduces bit-identical tables.
type BinTable struct {
	ratios [BinsPerSide]float64
}

var curveTables [4]*BinTable

func init() {
	curveTables[LinGaussian] = &BinTable{ratios: buildLinGaussian()}
	curveTables[LinGeoFlat] = &BinTable{ratios: buildLinGeoFlat()}
	curveTables[BiLinGeo] = &BinTable{ratios: buildBiLinGeo()}
	curveTables[TriLinear] = &BinTable{ratios: buildTriLinear()}
}

// CurveTable returns the shared read-only table for one of the built-in
// curves.
func CurveTable(c Curve) (*BinTable, error) {
	if c > TriLinear {
		return nil, fmt.Errorf("%w: curve %d undefined", ErrInvariantViolation, c)
	}
	return curveTables[c], nil
}

// NewBinTable builds a table from an externally curated boundary list,
// for deployments that load bin boundaries from configuration instead
// of a built-in curve. The list must hold exactly 128 strictly
// increasing ratios in (0, MaxOffsetRatio].
func NewBinTable(ratios []float64) (*BinTable, error) {
	if len(ratios) != BinsPerSide {
		return nil, fmt.Errorf("%w: bin table needs %d ratios, got %d", ErrInvariantViolation, BinsPerSide, len(ratios))
	}
	if !(ratios[0] > 0) {
		return nil, fmt.Errorf("%w: bin table ratio 0 must be positive, got %v", ErrInvariantViolation, ratios[0])
	}
	if ratios[BinsPerSide-1] > MaxOffsetRatio {
		return nil, fmt.Errorf("%w: bin table ratio 127 exceeds %v", ErrInvariantViolation, MaxOffsetRatio)
	}
	for i := 1; i < BinsPerSide; i++ {
		if !(ratios[i] > ratios[i-1]) {
			return nil, fmt.Errorf("%w: bin table not strictly increasing at %d", ErrInvariantViolation, i)
		}
	}
	t := &BinTable{}
	copy(t.ratios[:], ratios)
	return t, nil
}

// Ratio returns the boundary ratio of a bin, clamping bin to 0..127.
func (t *BinTable) Ratio(bin int) float64 {
	if bin < 0 {
		bin = 0
	}
	if bin >= BinsPerSide {
		bin = BinsPerSide - 1
	}
	return t.ratios[bin]
}

// Ratios returns a copy of the full boundary list.
func (t *BinTable) Ratios() []float64 {
	out := make([]float64, BinsPerSide)
	copy(out, t.ratios[:])
	return out
}

// BinForOffset returns the smallest bin whose boundary ratio is at
// least the given |price-mid|/mid offset, saturating at 127 for larger
// offsets.
func (t *BinTable) BinForOffset(ratio float64) int {
	i := sort.SearchFloat64s(t.ratios[:], ratio)
	if i >= BinsPerSide {
		return BinsPerSide - 1
	}
	return i
}

// PriceForBin converts a bin index back to the absolute price of its
// outer boundary: mid*(1-r) on the bid side, mid*(1+r) on the ask side.
func (t *BinTable) PriceForBin(mid float64, side BookSide, bin int) float64 {
	r := t.Ratio(bin)
	if side == Bid {
		return mid * (1 - r)
	}
	return mid * (1 + r)
}

// Curve construction. Each builder pins the first bin at the curve's
// minimum offset and the last bin at exactly MaxOffsetRatio, and keeps
// every intermediate step positive.

// buildLinGaussian: bins 0..15 linear at 1e-7 per bin (0.00001% steps),
// bins 16..126 quartic in t=(i-15)/112, bin 127 pinned at the maximum.
func buildLinGaussian() [BinsPerSide]float64 {
	var r [BinsPerSide]float64
	for i := 0; i < 16; i++ {
		r[i] = 1e-7 * float64(i+1)
	}
	head := r[15]
	for i := 16; i < BinsPerSide-1; i++ {
		t := float64(i-15) / 112
		r[i] = head + (MaxOffsetRatio-head)*t*t*t*t
	}
	r[BinsPerSide-1] = MaxOffsetRatio
	return r
}

// buildLinGeoFlat: same linear head; tail steps grow geometrically with
// a factor that decays linearly from 1.12 to 1.0, cumulative sums
// rescaled so bin 127 lands exactly on the maximum.
func buildLinGeoFlat() [BinsPerSide]float64 {
	var r [BinsPerSide]float64
	for i := 0; i < 16; i++ {
		r[i] = 1e-7 * float64(i+1)
	}
	head := r[15]
	var cum [112]float64
	step, sum := 1e-7, 0.0
	for k := 0; k < 112; k++ {
		step *= 1 + 0.12*float64(111-k)/112
		sum += step
		cum[k] = sum
	}
	for k := 0; k < 111; k++ {
		r[16+k] = head + (MaxOffsetRatio-head)*cum[k]/sum
	}
	r[BinsPerSide-1] = MaxOffsetRatio
	return r
}

// buildBiLinGeo: linear at 2.5e-7 per bin over 0..31 (0.000025% steps),
// linear at 1e-6 per bin over 32..95, geometric (factor 1.28) on the
// outer quarter, rescaled to end exactly on the maximum.
func buildBiLinGeo() [BinsPerSide]float64 {
	var r [BinsPerSide]float64
	for i := 0; i < 32; i++ {
		r[i] = 2.5e-7 * float64(i+1)
	}
	for i := 32; i < 96; i++ {
		r[i] = r[31] + 1e-6*float64(i-31)
	}
	knee := r[95]
	var cum [32]float64
	step, sum := 1e-6, 0.0
	for k := 0; k < 32; k++ {
		step *= 1.28
		sum += step
		cum[k] = sum
	}
	for k := 0; k < 31; k++ {
		r[96+k] = knee + (MaxOffsetRatio-knee)*cum[k]/sum
	}
	r[BinsPerSide-1] = MaxOffsetRatio
	return r
}

// buildTriLinear: three linear segments with slopes 0.0002 (bins 0..41,
// from a 0.02% minimum), 0.008 (bins 42..84) and (2-r84)/43 (bins
// 85..127), the last pinned on the maximum.
func buildTriLinear() [BinsPerSide]float64 {
	var r [BinsPerSide]float64
	for i := 0; i < 42; i++ {
		r[i] = 0.0002 * float64(i+1)
	}
	for i := 42; i < 85; i++ {
		r[i] = r[41] + 0.008*float64(i-41)
	}
	slope := (MaxOffsetRatio - r[84]) / 43
	for i := 85; i < BinsPerSide-1; i++ {
		r[i] = r[84] + slope*float64(i-84)
	}
	r[BinsPerSide-1] = MaxOffsetRatio
	return r
}

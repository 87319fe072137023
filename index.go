package mitch

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Index is a synthetic aggregated view of one instrument across every
// contributing market (64 bytes on the wire, 9 bytes padding). Offsets
// are expressed in 1e-9 price basis points relative to the mid; forces
// are scaled integers (0..10000 unsigned, -10000..10000 signed).
type Index struct {
	InstrumentID    InstrumentID
	Mid             float64
	BidVolume       uint32
	AskVolume       uint32
	MeanSpread      int32
	BestBidOffset   int32
	BestAskOffset   int32
	WorstBidOffset  int32
	WorstAskOffset  int32
	VolatilityForce uint16
	LiquidityForce  uint16
	TrendForce      int16
	MomentumForce   int16
	Confidence      uint8
	Rejected        uint8
	Accepted        uint8
}

// Encode writes the index into the first 64 bytes of dst, zero-filling
// the padding.
func (x *Index) Encode(dst []byte) error {
	if len(dst) < IndexSize {
		return fmt.Errorf("%w: index needs %d bytes, have %d", ErrTruncatedInput, IndexSize, len(dst))
	}
	binary.LittleEndian.PutUint64(dst[0:8], uint64(x.InstrumentID))
	binary.LittleEndian.PutUint64(dst[8:16], math.Float64bits(x.Mid))
	binary.LittleEndian.PutUint32(dst[16:20], x.BidVolume)
	binary.LittleEndian.PutUint32(dst[20:24], x.AskVolume)
	binary.LittleEndian.PutUint32(dst[24:28], uint32(x.MeanSpread))
	binary.LittleEndian.PutUint32(dst[28:32], uint32(x.BestBidOffset))
	binary.LittleEndian.PutUint32(dst[32:36], uint32(x.BestAskOffset))
	binary.LittleEndian.PutUint32(dst[36:40], uint32(x.WorstBidOffset))
	binary.LittleEndian.PutUint32(dst[40:44], uint32(x.WorstAskOffset))
	binary.LittleEndian.PutUint16(dst[44:46], x.VolatilityForce)
	binary.LittleEndian.PutUint16(dst[46:48], x.LiquidityForce)
	binary.LittleEndian.PutUint16(dst[48:50], uint16(x.TrendForce))
	binary.LittleEndian.PutUint16(dst[50:52], uint16(x.MomentumForce))
	dst[52] = x.Confidence
	dst[53] = x.Rejected
	dst[54] = x.Accepted
	zero(dst[55:64])
	return nil
}

// DecodeIndex reads an index from the first 64 bytes of buf.
func DecodeIndex(buf []byte) (Index, error) {
	if len(buf) < IndexSize {
		return Index{}, fmt.Errorf("%w: index needs %d bytes, have %d", ErrTruncatedInput, IndexSize, len(buf))
	}
	return Index{
		InstrumentID:    InstrumentID(binary.LittleEndian.Uint64(buf[0:8])),
		Mid:             math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16])),
		BidVolume:       binary.LittleEndian.Uint32(buf[16:20]),
		AskVolume:       binary.LittleEndian.Uint32(buf[20:24]),
		MeanSpread:      int32(binary.LittleEndian.Uint32(buf[24:28])),
		BestBidOffset:   int32(binary.LittleEndian.Uint32(buf[28:32])),
		BestAskOffset:   int32(binary.LittleEndian.Uint32(buf[32:36])),
		WorstBidOffset:  int32(binary.LittleEndian.Uint32(buf[36:40])),
		WorstAskOffset:  int32(binary.LittleEndian.Uint32(buf[40:44])),
		VolatilityForce: binary.LittleEndian.Uint16(buf[44:46]),
		LiquidityForce:  binary.LittleEndian.Uint16(buf[46:48]),
		TrendForce:      int16(binary.LittleEndian.Uint16(buf[48:50])),
		MomentumForce:   int16(binary.LittleEndian.Uint16(buf[50:52])),
		Confidence:      buf[52],
		Rejected:        buf[53],
		Accepted:        buf[54],
	}, nil
}

// BestBidPrice converts the best bid offset back to an absolute price.
func (x *Index) BestBidPrice() float64 {
	return x.Mid * (1 + float64(x.BestBidOffset)/1e9)
}

// BestAskPrice converts the best ask offset back to an absolute price.
func (x *Index) BestAskPrice() float64 {
	return x.Mid * (1 + float64(x.BestAskOffset)/1e9)
}

// Validate checks the index invariants: nonzero instrument, positive
// mid, forces and confidence within range, and no confidence claimed
// when no source was accepted.
func (x *Index) Validate() error {
	if x.InstrumentID == 0 {
		return fmt.Errorf("%w: index instrument id is zero", ErrInvariantViolation)
	}
	if !(x.Mid > 0) {
		return fmt.Errorf("%w: index mid %v is not positive", ErrInvariantViolation, x.Mid)
	}
	if x.Confidence > 100 {
		return fmt.Errorf("%w: index confidence %d out of range", ErrInvariantViolation, x.Confidence)
	}
	if x.VolatilityForce > 10000 || x.LiquidityForce > 10000 {
		return fmt.Errorf("%w: index force out of range", ErrInvariantViolation)
	}
	if x.TrendForce < -10000 || x.TrendForce > 10000 {
		return fmt.Errorf("%w: index trend force %d out of range", ErrInvariantViolation, x.TrendForce)
	}
	if x.MomentumForce < -10000 || x.MomentumForce > 10000 {
		return fmt.Errorf("%w: index momentum force %d out of range", ErrInvariantViolation, x.MomentumForce)
	}
	if x.Accepted == 0 && x.Confidence > 0 {
		return fmt.Errorf("%w: index confidence %d without accepted sources", ErrInvariantViolation, x.Confidence)
	}
	return nil
}

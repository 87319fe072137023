package mitch

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Tick is a best-bid/offer quote snapshot (32 bytes on the wire, no
// padding).
type Tick struct {
	InstrumentID InstrumentID
	BidPrice     float64
	AskPrice     float64
	BidVolume    uint32
	AskVolume    uint32
}

// Encode writes the tick into the first 32 bytes of dst.
func (t *Tick) Encode(dst []byte) error {
	if len(dst) < TickSize {
		return fmt.Errorf("%w: tick needs %d bytes, have %d", ErrTruncatedInput, TickSize, len(dst))
	}
	binary.LittleEndian.PutUint64(dst[0:8], uint64(t.InstrumentID))
	binary.LittleEndian.PutUint64(dst[8:16], math.Float64bits(t.BidPrice))
	binary.LittleEndian.PutUint64(dst[16:24], math.Float64bits(t.AskPrice))
	binary.LittleEndian.PutUint32(dst[24:28], t.BidVolume)
	binary.LittleEndian.PutUint32(dst[28:32], t.AskVolume)
	return nil
}

// DecodeTick reads a tick from the first 32 bytes of buf.
func DecodeTick(buf []byte) (Tick, error) {
	if len(buf) < TickSize {
		return Tick{}, fmt.Errorf("%w: tick needs %d bytes, have %d", ErrTruncatedInput, TickSize, len(buf))
	}
	return Tick{
		InstrumentID: InstrumentID(binary.LittleEndian.Uint64(buf[0:8])),
		BidPrice:     math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16])),
		AskPrice:     math.Float64frombits(binary.LittleEndian.Uint64(buf[16:24])),
		BidVolume:    binary.LittleEndian.Uint32(buf[24:28]),
		AskVolume:    binary.LittleEndian.Uint32(buf[28:32]),
	}, nil
}

// Validate checks the tick invariants: nonzero instrument, both prices
// positive, ask at or above bid.
func (t *Tick) Validate() error {
	if t.InstrumentID == 0 {
		return fmt.Errorf("%w: tick instrument id is zero", ErrInvariantViolation)
	}
	if !(t.BidPrice > 0) {
		return fmt.Errorf("%w: tick bid price %v is not positive", ErrInvariantViolation, t.BidPrice)
	}
	if !(t.AskPrice > 0) {
		return fmt.Errorf("%w: tick ask price %v is not positive", ErrInvariantViolation, t.AskPrice)
	}
	if t.AskPrice < t.BidPrice {
		return fmt.Errorf("%w: tick ask %v below bid %v", ErrInvariantViolation, t.AskPrice, t.BidPrice)
	}
	return nil
}

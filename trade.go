package mitch

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Trade is one execution event (32 bytes on the wire, 7 bytes padding).
type Trade struct {
	InstrumentID InstrumentID
	Price        float64
	Quantity     uint32
	TradeID      uint32
	Side         Side
}

// Encode writes the trade into the first 32 bytes of dst, zero-filling
// the padding.
func (t *Trade) Encode(dst []byte) error {
	if len(dst) < TradeSize {
		return fmt.Errorf("%w: trade needs %d bytes, have %d", ErrTruncatedInput, TradeSize, len(dst))
	}
	binary.LittleEndian.PutUint64(dst[0:8], uint64(t.InstrumentID))
	binary.LittleEndian.PutUint64(dst[8:16], math.Float64bits(t.Price))
	binary.LittleEndian.PutUint32(dst[16:20], t.Quantity)
	binary.LittleEndian.PutUint32(dst[20:24], t.TradeID)
	dst[24] = byte(t.Side)
	zero(dst[25:32])
	return nil
}

// DecodeTrade reads a trade from the first 32 bytes of buf. Domain
// invariants are not checked here; call Validate on the result when the
// source is untrusted.
func DecodeTrade(buf []byte) (Trade, error) {
	if len(buf) < TradeSize {
		return Trade{}, fmt.Errorf("%w: trade needs %d bytes, have %d", ErrTruncatedInput, TradeSize, len(buf))
	}
	return Trade{
		InstrumentID: InstrumentID(binary.LittleEndian.Uint64(buf[0:8])),
		Price:        math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16])),
		Quantity:     binary.LittleEndian.Uint32(buf[16:20]),
		TradeID:      binary.LittleEndian.Uint32(buf[20:24]),
		Side:         Side(buf[24]),
	}, nil
}

// Validate checks the trade invariants: nonzero instrument and trade
// identifiers, positive price and quantity.
func (t *Trade) Validate() error {
	if t.InstrumentID == 0 {
		return fmt.Errorf("%w: trade instrument id is zero", ErrInvariantViolation)
	}
	if !(t.Price > 0) {
		return fmt.Errorf("%w: trade price %v is not positive", ErrInvariantViolation, t.Price)
	}
	if t.Quantity == 0 {
		return fmt.Errorf("%w: trade quantity is zero", ErrInvariantViolation)
	}
	if t.TradeID == 0 {
		return fmt.Errorf("%w: trade id is zero", ErrInvariantViolation)
	}
	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

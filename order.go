package mitch

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Order is one order lifecycle event (32 bytes on the wire, 1 byte
// padding). Expiry is a 48-bit millisecond Unix timestamp; zero means
// good-till-cancelled.
type Order struct {
	InstrumentID InstrumentID
	OrderID      uint32
	Price        float64
	Quantity     uint32
	Type         OrderType
	Side         Side
	Expiry       uint64
}

// Encode writes the order into the first 32 bytes of dst. The type and
// side share byte 24 (bit 0 = side, bits 1-7 = type); the expiry is
// truncated to 48 bits.
func (o *Order) Encode(dst []byte) error {
	if len(dst) < OrderSize {
		return fmt.Errorf("%w: order needs %d bytes, have %d", ErrTruncatedInput, OrderSize, len(dst))
	}
	binary.LittleEndian.PutUint64(dst[0:8], uint64(o.InstrumentID))
	binary.LittleEndian.PutUint32(dst[8:12], o.OrderID)
	binary.LittleEndian.PutUint64(dst[12:20], math.Float64bits(o.Price))
	binary.LittleEndian.PutUint32(dst[20:24], o.Quantity)
	dst[24] = CombineTypeAndSide(o.Type, o.Side)
	putUint48(dst[25:31], o.Expiry)
	dst[31] = 0
	return nil
}

// DecodeOrder reads an order from the first 32 bytes of buf.
func DecodeOrder(buf []byte) (Order, error) {
	if len(buf) < OrderSize {
		return Order{}, fmt.Errorf("%w: order needs %d bytes, have %d", ErrTruncatedInput, OrderSize, len(buf))
	}
	typ, side := SplitTypeAndSide(buf[24])
	return Order{
		InstrumentID: InstrumentID(binary.LittleEndian.Uint64(buf[0:8])),
		OrderID:      binary.LittleEndian.Uint32(buf[8:12]),
		Price:        math.Float64frombits(binary.LittleEndian.Uint64(buf[12:20])),
		Quantity:     binary.LittleEndian.Uint32(buf[20:24]),
		Type:         typ,
		Side:         side,
		Expiry:       uint48(buf[25:31]),
	}, nil
}

// Validate checks the order invariants. Cancels reference an existing
// order, so they carry no price requirement; every other type needs a
// positive price.
func (o *Order) Validate() error {
	if o.InstrumentID == 0 {
		return fmt.Errorf("%w: order instrument id is zero", ErrInvariantViolation)
	}
	if o.OrderID == 0 {
		return fmt.Errorf("%w: order id is zero", ErrInvariantViolation)
	}
	if o.Type > Cancel {
		return fmt.Errorf("%w: order type %d out of range", ErrInvariantViolation, o.Type)
	}
	if o.Type != Cancel && !(o.Price > 0) {
		return fmt.Errorf("%w: order price %v is not positive", ErrInvariantViolation, o.Price)
	}
	if o.Expiry > timestampMask {
		return fmt.Errorf("%w: order expiry %d exceeds 48 bits", ErrInvariantViolation, o.Expiry)
	}
	return nil
}

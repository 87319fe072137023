package mitch

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Bin is one aggregated liquidity bucket (8 bytes on the wire).
type Bin struct {
	Count  uint32
	Volume uint32
}

// OrderBook is the optimized fixed-size depth snapshot (2072 bytes on
// the wire): a 24-byte sub-header followed by 128 bid bins and 128 ask
// bins. Bids[0] and Asks[0] are the bins nearest the mid; higher indexes
// move away from it.
type OrderBook struct {
	InstrumentID InstrumentID
	MidPrice     float64
	Curve        Curve
	Bids         [BinsPerSide]Bin
	Asks         [BinsPerSide]Bin
}

// Encode writes the snapshot into the first 2072 bytes of dst.
func (b *OrderBook) Encode(dst []byte) error {
	if len(dst) < OrderBookSize {
		return fmt.Errorf("%w: order book needs %d bytes, have %d", ErrTruncatedInput, OrderBookSize, len(dst))
	}
	binary.LittleEndian.PutUint64(dst[0:8], uint64(b.InstrumentID))
	binary.LittleEndian.PutUint64(dst[8:16], math.Float64bits(b.MidPrice))
	dst[16] = byte(b.Curve)
	zero(dst[17:24])
	off := 24
	for i := range b.Bids {
		binary.LittleEndian.PutUint32(dst[off:off+4], b.Bids[i].Count)
		binary.LittleEndian.PutUint32(dst[off+4:off+8], b.Bids[i].Volume)
		off += BinSize
	}
	for i := range b.Asks {
		binary.LittleEndian.PutUint32(dst[off:off+4], b.Asks[i].Count)
		binary.LittleEndian.PutUint32(dst[off+4:off+8], b.Asks[i].Volume)
		off += BinSize
	}
	return nil
}

// DecodeOrderBook reads an optimized snapshot from the first 2072 bytes
// of buf.
func DecodeOrderBook(buf []byte) (OrderBook, error) {
	if len(buf) < OrderBookSize {
		return OrderBook{}, fmt.Errorf("%w: order book needs %d bytes, have %d", ErrTruncatedInput, OrderBookSize, len(buf))
	}
	var b OrderBook
	b.InstrumentID = InstrumentID(binary.LittleEndian.Uint64(buf[0:8]))
	b.MidPrice = math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16]))
	b.Curve = Curve(buf[16])
	off := 24
	for i := range b.Bids {
		b.Bids[i].Count = binary.LittleEndian.Uint32(buf[off : off+4])
		b.Bids[i].Volume = binary.LittleEndian.Uint32(buf[off+4 : off+8])
		off += BinSize
	}
	for i := range b.Asks {
		b.Asks[i].Count = binary.LittleEndian.Uint32(buf[off : off+4])
		b.Asks[i].Volume = binary.LittleEndian.Uint32(buf[off+4 : off+8])
		off += BinSize
	}
	return b, nil
}

// Validate checks the snapshot invariants: nonzero instrument, positive
// mid, defined curve.
func (b *OrderBook) Validate() error {
	if b.InstrumentID == 0 {
		return fmt.Errorf("%w: order book instrument id is zero", ErrInvariantViolation)
	}
	if !(b.MidPrice > 0) {
		return fmt.Errorf("%w: order book mid %v is not positive", ErrInvariantViolation, b.MidPrice)
	}
	if b.Curve > TriLinear {
		return fmt.Errorf("%w: order book curve %d undefined", ErrInvariantViolation, b.Curve)
	}
	return nil
}

// TotalBidVolume sums the volume across all bid bins.
func (b *OrderBook) TotalBidVolume() uint64 {
	var sum uint64
	for i := range b.Bids {
		sum += uint64(b.Bids[i].Volume)
	}
	return sum
}

// TotalAskVolume sums the volume across all ask bins.
func (b *OrderBook) TotalAskVolume() uint64 {
	var sum uint64
	for i := range b.Asks {
		sum += uint64(b.Asks[i].Volume)
	}
	return sum
}

// BookUpdate is the classic variable-length order-book entry: a 32-byte
// sub-header followed by one uint32 volume per tick. Entry length is
// self-describing only after the sub-header is read, so batches of
// updates decode sequentially.
type BookUpdate struct {
	InstrumentID InstrumentID
	FirstTick    float64
	TickSize     float64
	Side         BookSide
	Volumes      []uint32
}

// EncodedSize returns the wire size of this entry: 32 bytes of
// sub-header plus four per volume.
func (u *BookUpdate) EncodedSize() int {
	return BookUpdateHeaderSize + 4*len(u.Volumes)
}

// Encode writes the entry into dst and returns the number of bytes
// written. Zero ticks is legal and produces a bare 32-byte sub-header.
func (u *BookUpdate) Encode(dst []byte) (int, error) {
	if len(u.Volumes) > math.MaxUint16 {
		return 0, fmt.Errorf("%w: %d ticks exceed the 16-bit tick count", ErrFieldOverflow, len(u.Volumes))
	}
	size := u.EncodedSize()
	if len(dst) < size {
		return 0, fmt.Errorf("%w: book update needs %d bytes, have %d", ErrTruncatedInput, size, len(dst))
	}
	binary.LittleEndian.PutUint64(dst[0:8], uint64(u.InstrumentID))
	binary.LittleEndian.PutUint64(dst[8:16], math.Float64bits(u.FirstTick))
	binary.LittleEndian.PutUint64(dst[16:24], math.Float64bits(u.TickSize))
	binary.LittleEndian.PutUint16(dst[24:26], uint16(len(u.Volumes)))
	dst[26] = byte(u.Side)
	zero(dst[27:32])
	off := BookUpdateHeaderSize
	for _, v := range u.Volumes {
		binary.LittleEndian.PutUint32(dst[off:off+4], v)
		off += 4
	}
	return size, nil
}

// DecodeBookUpdate reads one classic entry from the front of buf and
// returns it with the number of bytes consumed. The volume slice is
// copied out of buf; the entry holds no reference to caller memory.
func DecodeBookUpdate(buf []byte) (BookUpdate, int, error) {
	if len(buf) < BookUpdateHeaderSize {
		return BookUpdate{}, 0, fmt.Errorf("%w: book update header needs %d bytes, have %d", ErrTruncatedInput, BookUpdateHeaderSize, len(buf))
	}
	numTicks := int(binary.LittleEndian.Uint16(buf[24:26]))
	size := BookUpdateHeaderSize + 4*numTicks
	if len(buf) < size {
		return BookUpdate{}, 0, fmt.Errorf("%w: book update declares %d ticks (%d bytes), have %d", ErrTruncatedInput, numTicks, size, len(buf))
	}
	u := BookUpdate{
		InstrumentID: InstrumentID(binary.LittleEndian.Uint64(buf[0:8])),
		FirstTick:    math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16])),
		TickSize:     math.Float64frombits(binary.LittleEndian.Uint64(buf[16:24])),
		Side:         BookSide(buf[26]),
	}
	if numTicks > 0 {
		u.Volumes = make([]uint32, numTicks)
		off := BookUpdateHeaderSize
		for i := range u.Volumes {
			u.Volumes[i] = binary.LittleEndian.Uint32(buf[off : off+4])
			off += 4
		}
	}
	return u, size, nil
}

// Validate checks the update invariants: nonzero instrument, positive
// first tick and tick size whenever the entry carries volumes.
func (u *BookUpdate) Validate() error {
	if u.InstrumentID == 0 {
		return fmt.Errorf("%w: book update instrument id is zero", ErrInvariantViolation)
	}
	if len(u.Volumes) > math.MaxUint16 {
		return fmt.Errorf("%w: %d ticks exceed the 16-bit tick count", ErrInvariantViolation, len(u.Volumes))
	}
	if len(u.Volumes) > 0 {
		if !(u.FirstTick > 0) {
			return fmt.Errorf("%w: book update first tick %v is not positive", ErrInvariantViolation, u.FirstTick)
		}
		if !(u.TickSize > 0) {
			return fmt.Errorf("%w: book update tick size %v is not positive", ErrInvariantViolation, u.TickSize)
		}
	}
	return nil
}

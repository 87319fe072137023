package mitch

import "fmt"

// Batch composition and splitting: one header followed by 1..255 body
// entries of a single kind. Fixed-size kinds pre-validate the buffer
// length against the declared count; classic book updates are
// self-describing only entry by entry and decode sequentially.

func checkBatchCount(n int) error {
	if n == 0 {
		return fmt.Errorf("%w: batch needs at least one entry", ErrCountMismatch)
	}
	if n > MaxBatchCount {
		return fmt.Errorf("%w: %d entries exceed the 8-bit count", ErrFieldOverflow, n)
	}
	return nil
}

// splitFixed validates the header of a fixed-size batch and returns it
// along with the body region.
func splitFixed(buf []byte, kind byte, bodySize int) (Header, []byte, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return Header{}, nil, err
	}
	if err := h.Validate(); err != nil {
		return Header{}, nil, err
	}
	if h.Kind != kind {
		return Header{}, nil, fmt.Errorf("%w: expected %q, header says %q", ErrUnknownMessageKind, kind, h.Kind)
	}
	want := HeaderSize + int(h.Count)*bodySize
	if len(buf) != want {
		return Header{}, nil, fmt.Errorf("%w: %d entries of %d bytes need %d bytes, have %d", ErrCountMismatch, h.Count, bodySize, want, len(buf))
	}
	return h, buf[HeaderSize:], nil
}

// EncodeTradeBatch packs 1..255 trades behind one header.
func EncodeTradeBatch(timestamp uint64, trades []Trade) ([]byte, error) {
	if err := checkBatchCount(len(trades)); err != nil {
		return nil, err
	}
	buf := make([]byte, HeaderSize+len(trades)*TradeSize)
	h := Header{Kind: KindTrade, Timestamp: timestamp, Count: uint8(len(trades))}
	if err := h.Encode(buf); err != nil {
		return nil, err
	}
	for i := range trades {
		if err := trades[i].Encode(buf[HeaderSize+i*TradeSize:]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// DecodeTradeBatch splits a trade batch back into its header and
// entries.
func DecodeTradeBatch(buf []byte) (Header, []Trade, error) {
	h, body, err := splitFixed(buf, KindTrade, TradeSize)
	if err != nil {
		return Header{}, nil, err
	}
	out := make([]Trade, h.Count)
	for i := range out {
		if out[i], err = DecodeTrade(body[i*TradeSize:]); err != nil {
			return Header{}, nil, err
		}
	}
	return h, out, nil
}

// EncodeOrderBatch packs 1..255 orders behind one header.
func EncodeOrderBatch(timestamp uint64, orders []Order) ([]byte, error) {
	if err := checkBatchCount(len(orders)); err != nil {
		return nil, err
	}
	buf := make([]byte, HeaderSize+len(orders)*OrderSize)
	h := Header{Kind: KindOrder, Timestamp: timestamp, Count: uint8(len(orders))}
	if err := h.Encode(buf); err != nil {
		return nil, err
	}
	for i := range orders {
		if err := orders[i].Encode(buf[HeaderSize+i*OrderSize:]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// DecodeOrderBatch splits an order batch back into its header and
// entries.
func DecodeOrderBatch(buf []byte) (Header, []Order, error) {
	h, body, err := splitFixed(buf, KindOrder, OrderSize)
	if err != nil {
		return Header{}, nil, err
	}
	out := make([]Order, h.Count)
	for i := range out {
		if out[i], err = DecodeOrder(body[i*OrderSize:]); err != nil {
			return Header{}, nil, err
		}
	}
	return h, out, nil
}

// EncodeTickBatch packs 1..255 ticks behind one header.
func EncodeTickBatch(timestamp uint64, ticks []Tick) ([]byte, error) {
	if err := checkBatchCount(len(ticks)); err != nil {
		return nil, err
	}
	buf := make([]byte, HeaderSize+len(ticks)*TickSize)
	h := Header{Kind: KindTick, Timestamp: timestamp, Count: uint8(len(ticks))}
	if err := h.Encode(buf); err != nil {
		return nil, err
	}
	for i := range ticks {
		if err := ticks[i].Encode(buf[HeaderSize+i*TickSize:]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// DecodeTickBatch splits a tick batch back into its header and entries.
func DecodeTickBatch(buf []byte) (Header, []Tick, error) {
	h, body, err := splitFixed(buf, KindTick, TickSize)
	if err != nil {
		return Header{}, nil, err
	}
	out := make([]Tick, h.Count)
	for i := range out {
		if out[i], err = DecodeTick(body[i*TickSize:]); err != nil {
			return Header{}, nil, err
		}
	}
	return h, out, nil
}

// EncodeIndexBatch packs 1..255 indices behind one header.
func EncodeIndexBatch(timestamp uint64, indices []Index) ([]byte, error) {
	if err := checkBatchCount(len(indices)); err != nil {
		return nil, err
	}
	buf := make([]byte, HeaderSize+len(indices)*IndexSize)
	h := Header{Kind: KindIndex, Timestamp: timestamp, Count: uint8(len(indices))}
	if err := h.Encode(buf); err != nil {
		return nil, err
	}
	for i := range indices {
		if err := indices[i].Encode(buf[HeaderSize+i*IndexSize:]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// DecodeIndexBatch splits an index batch back into its header and
// entries.
func DecodeIndexBatch(buf []byte) (Header, []Index, error) {
	h, body, err := splitFixed(buf, KindIndex, IndexSize)
	if err != nil {
		return Header{}, nil, err
	}
	out := make([]Index, h.Count)
	for i := range out {
		if out[i], err = DecodeIndex(body[i*IndexSize:]); err != nil {
			return Header{}, nil, err
		}
	}
	return h, out, nil
}

// EncodeOrderBookBatch packs 1..255 optimized snapshots behind one
// header. Despite its size each snapshot is fixed-length, so it batches
// like any other fixed body.
func EncodeOrderBookBatch(timestamp uint64, books []OrderBook) ([]byte, error) {
	if err := checkBatchCount(len(books)); err != nil {
		return nil, err
	}
	buf := make([]byte, HeaderSize+len(books)*OrderBookSize)
	h := Header{Kind: KindOrderBook, Timestamp: timestamp, Count: uint8(len(books))}
	if err := h.Encode(buf); err != nil {
		return nil, err
	}
	for i := range books {
		if err := books[i].Encode(buf[HeaderSize+i*OrderBookSize:]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// DecodeOrderBookBatch splits an optimized snapshot batch back into its
// header and entries.
func DecodeOrderBookBatch(buf []byte) (Header, []OrderBook, error) {
	h, body, err := splitFixed(buf, KindOrderBook, OrderBookSize)
	if err != nil {
		return Header{}, nil, err
	}
	out := make([]OrderBook, h.Count)
	for i := range out {
		if out[i], err = DecodeOrderBook(body[i*OrderBookSize:]); err != nil {
			return Header{}, nil, err
		}
	}
	return h, out, nil
}

// EncodeBookUpdateBatch packs 1..255 classic book updates behind one
// header. Entries may differ in length within one batch.
func EncodeBookUpdateBatch(timestamp uint64, updates []BookUpdate) ([]byte, error) {
	if err := checkBatchCount(len(updates)); err != nil {
		return nil, err
	}
	size := HeaderSize
	for i := range updates {
		size += updates[i].EncodedSize()
	}
	buf := make([]byte, size)
	h := Header{Kind: KindOrderBook, Timestamp: timestamp, Count: uint8(len(updates))}
	if err := h.Encode(buf); err != nil {
		return nil, err
	}
	off := HeaderSize
	for i := range updates {
		n, err := updates[i].Encode(buf[off:])
		if err != nil {
			return nil, err
		}
		off += n
	}
	return buf, nil
}

// DecodeBookUpdateBatch splits a classic book-update batch. Entry
// lengths are self-describing only after each sub-header is read, so
// entries decode strictly in sequence; the buffer length cannot be
// pre-validated the way fixed-size batches are. Trailing bytes after
// the declared count fail with ErrCountMismatch.
//
// The wire kind is shared with the optimized snapshot: the caller
// states the shape by choosing this function, it is never inferred from
// the bytes.
func DecodeBookUpdateBatch(buf []byte) (Header, []BookUpdate, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return Header{}, nil, err
	}
	if err := h.Validate(); err != nil {
		return Header{}, nil, err
	}
	if h.Kind != KindOrderBook {
		return Header{}, nil, fmt.Errorf("%w: expected %q, header says %q", ErrUnknownMessageKind, KindOrderBook, h.Kind)
	}
	out := make([]BookUpdate, h.Count)
	off := HeaderSize
	for i := range out {
		u, n, err := DecodeBookUpdate(buf[off:])
		if err != nil {
			return Header{}, nil, err
		}
		out[i] = u
		off += n
	}
	if off != len(buf) {
		return Header{}, nil, fmt.Errorf("%w: %d trailing bytes after %d entries", ErrCountMismatch, len(buf)-off, h.Count)
	}
	return h, out, nil
}

// Message is one decoded batch: the header plus the slice matching its
// kind. Exactly one slice is populated.
type Message struct {
	Header  Header
	Trades  []Trade
	Orders  []Order
	Ticks   []Tick
	Indices []Index
	Books   []OrderBook
}

// Decode splits and decodes a whole message buffer, dispatching on the
// header's kind byte. On the wire, kind 'b' is the optimized snapshot;
// consumers of classic book updates must call DecodeBookUpdateBatch
// explicitly instead.
func Decode(buf []byte) (*Message, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	msg := &Message{}
	switch h.Kind {
	case KindTrade:
		msg.Header, msg.Trades, err = DecodeTradeBatch(buf)
	case KindOrder:
		msg.Header, msg.Orders, err = DecodeOrderBatch(buf)
	case KindTick:
		msg.Header, msg.Ticks, err = DecodeTickBatch(buf)
	case KindIndex:
		msg.Header, msg.Indices, err = DecodeIndexBatch(buf)
	case KindOrderBook:
		msg.Header, msg.Books, err = DecodeOrderBookBatch(buf)
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

package mitch

import (
	"errors"
	"testing"
)

func TestTradeBatchRoundTrip(t *testing.T) {
	trades := make([]Trade, 3)
	for i := range trades {
		trades[i] = Trade{InstrumentID: 1, Price: 100 + float64(i), Quantity: 10, TradeID: uint32(i + 1), Side: Side(i % 2)}
	}
	buf, err := EncodeTradeBatch(12345, trades)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(buf) != HeaderSize+3*TradeSize {
		t.Fatalf("size: got %d want %d", len(buf), HeaderSize+3*TradeSize)
	}
	h, out, err := DecodeTradeBatch(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Kind != KindTrade || h.Timestamp != 12345 || h.Count != 3 {
		t.Fatalf("header: %+v", h)
	}
	for i := range trades {
		if out[i] != trades[i] {
			t.Fatalf("entry %d mismatch", i)
		}
	}
}

func TestBatchSingleEntry(t *testing.T) {
	buf, err := EncodeTickBatch(1, []Tick{{InstrumentID: 1, BidPrice: 9.9, AskPrice: 10.1}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(buf) != HeaderSize+TickSize {
		t.Fatalf("size: got %d want %d", len(buf), HeaderSize+TickSize)
	}
	if _, _, err := DecodeTickBatch(buf); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestBatchMaxEntries(t *testing.T) {
	orders := make([]Order, MaxBatchCount)
	for i := range orders {
		orders[i] = Order{InstrumentID: 1, OrderID: uint32(i + 1), Price: 50, Quantity: 1, Type: Limit}
	}
	buf, err := EncodeOrderBatch(7, orders)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	h, out, err := DecodeOrderBatch(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Count != MaxBatchCount || len(out) != MaxBatchCount {
		t.Fatalf("count: header %d, entries %d", h.Count, len(out))
	}
}

func TestBatchCountLimits(t *testing.T) {
	if _, err := EncodeTradeBatch(1, nil); !errors.Is(err, ErrCountMismatch) {
		t.Errorf("empty batch: got %v want ErrCountMismatch", err)
	}
	if _, err := EncodeTradeBatch(1, make([]Trade, 256)); !errors.Is(err, ErrFieldOverflow) {
		t.Errorf("256 entries: got %v want ErrFieldOverflow", err)
	}
}

func TestBatchCountMismatch(t *testing.T) {
	buf, err := EncodeIndexBatch(9, []Index{{InstrumentID: 1, Mid: 100}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// Header says one entry, buffer carries extra bytes.
	if _, _, err := DecodeIndexBatch(append(buf, 0)); !errors.Is(err, ErrCountMismatch) {
		t.Errorf("trailing byte: got %v", err)
	}
	// Header says two entries, buffer carries one.
	buf[7] = 2
	if _, _, err := DecodeIndexBatch(buf); !errors.Is(err, ErrCountMismatch) {
		t.Errorf("missing body: got %v", err)
	}
}

func TestBatchKindMismatch(t *testing.T) {
	buf, err := EncodeTradeBatch(1, []Trade{{InstrumentID: 1, Price: 1, Quantity: 1, TradeID: 1}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, _, err := DecodeOrderBatch(buf); !errors.Is(err, ErrUnknownMessageKind) {
		t.Errorf("trade buffer through order decoder: got %v", err)
	}
	buf[0] = 'x'
	if _, _, err := DecodeTradeBatch(buf); !errors.Is(err, ErrUnknownMessageKind) {
		t.Errorf("unknown kind byte: got %v", err)
	}
	buf[0] = 'q'
	if _, _, err := DecodeTradeBatch(buf); !errors.Is(err, ErrUnknownMessageKind) {
		t.Errorf("legacy kind byte: got %v", err)
	}
}

func TestOrderBookBatchRoundTrip(t *testing.T) {
	books := []OrderBook{sampleOrderBook(), sampleOrderBook()}
	books[1].MidPrice = 99.5
	buf, err := EncodeOrderBookBatch(55, books)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(buf) != HeaderSize+2*OrderBookSize {
		t.Fatalf("size: got %d", len(buf))
	}
	h, out, err := DecodeOrderBookBatch(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Count != 2 || out[0] != books[0] || out[1] != books[1] {
		t.Fatalf("round trip mismatch")
	}
}

func TestBookUpdateBatchRoundTrip(t *testing.T) {
	updates := []BookUpdate{
		{InstrumentID: 1, FirstTick: 100, TickSize: 0.5, Side: Bid, Volumes: []uint32{5, 6, 7}},
		{InstrumentID: 1, FirstTick: 101, TickSize: 0.5, Side: Ask},
		{InstrumentID: 2, FirstTick: 3000, TickSize: 1, Side: Ask, Volumes: []uint32{42}},
	}
	buf, err := EncodeBookUpdateBatch(88, updates)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	wantSize := HeaderSize + 3*BookUpdateHeaderSize + 4*(3+0+1)
	if len(buf) != wantSize {
		t.Fatalf("size: got %d want %d", len(buf), wantSize)
	}
	h, out, err := DecodeBookUpdateBatch(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Kind != KindOrderBook || h.Count != 3 {
		t.Fatalf("header: %+v", h)
	}
	for i := range updates {
		if out[i].InstrumentID != updates[i].InstrumentID || len(out[i].Volumes) != len(updates[i].Volumes) {
			t.Fatalf("entry %d mismatch: %+v", i, out[i])
		}
	}
}

func TestBookUpdateBatchTrailingBytes(t *testing.T) {
	buf, err := EncodeBookUpdateBatch(1, []BookUpdate{{InstrumentID: 1, FirstTick: 10, TickSize: 1}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, _, err := DecodeBookUpdateBatch(append(buf, 0, 0)); !errors.Is(err, ErrCountMismatch) {
		t.Fatalf("trailing bytes: got %v", err)
	}
}

func TestBookUpdateBatchTruncatedEntry(t *testing.T) {
	buf, err := EncodeBookUpdateBatch(1, []BookUpdate{
		{InstrumentID: 1, FirstTick: 10, TickSize: 1, Volumes: []uint32{1, 2}},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, _, err := DecodeBookUpdateBatch(buf[:len(buf)-3]); !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("truncated entry: got %v", err)
	}
}

func TestDecodeDispatch(t *testing.T) {
	tradeBuf, err := EncodeTradeBatch(10, []Trade{{InstrumentID: 1, Price: 1, Quantity: 1, TradeID: 1}})
	if err != nil {
		t.Fatalf("encode trades: %v", err)
	}
	msg, err := Decode(tradeBuf)
	if err != nil {
		t.Fatalf("decode trades: %v", err)
	}
	if msg.Header.Kind != KindTrade || len(msg.Trades) != 1 {
		t.Fatalf("trade dispatch: %+v", msg)
	}

	bookBuf, err := EncodeOrderBookBatch(20, []OrderBook{sampleOrderBook()})
	if err != nil {
		t.Fatalf("encode books: %v", err)
	}
	msg, err = Decode(bookBuf)
	if err != nil {
		t.Fatalf("decode books: %v", err)
	}
	if msg.Header.Kind != KindOrderBook || len(msg.Books) != 1 {
		t.Fatalf("book dispatch: %+v", msg)
	}

	if _, err := Decode([]byte{'x', 0, 0, 0, 0, 0, 0, 1}); !errors.Is(err, ErrUnknownMessageKind) {
		t.Fatalf("unknown kind: got %v", err)
	}
	if _, err := Decode(nil); !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("empty buffer: got %v", err)
	}
}

func BenchmarkTradeBatchDecode(b *testing.B) {
	trades := make([]Trade, 100)
	for i := range trades {
		trades[i] = Trade{InstrumentID: 1, Price: 100, Quantity: 1, TradeID: uint32(i + 1)}
	}
	buf, err := EncodeTradeBatch(1, trades)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, _, err := DecodeTradeBatch(buf); err != nil {
			b.Fatal(err)
		}
	}
}

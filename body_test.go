package mitch

import (
	"bytes"
	"errors"
	"testing"
)

func mustInstrument(t *testing.T) InstrumentID {
	t.Helper()
	id, err := PackInstrument(Spot, CryptoAssets, 1, Forex, 461, 0)
	if err != nil {
		t.Fatalf("pack instrument: %v", err)
	}
	return id
}

func TestTradeRoundTrip(t *testing.T) {
	in := Trade{
		InstrumentID: mustInstrument(t),
		Price:        64123.5,
		Quantity:     250_000,
		TradeID:      991,
		Side:         Sell,
	}
	var buf [TradeSize]byte
	if err := in.Encode(buf[:]); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeTrade(buf[:])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestTradePaddingZeroed(t *testing.T) {
	in := Trade{InstrumentID: 1, Price: 1, Quantity: 1, TradeID: 1, Side: Buy}
	buf := bytes.Repeat([]byte{0xFF}, TradeSize)
	if err := in.Encode(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	for i := 25; i < TradeSize; i++ {
		if buf[i] != 0 {
			t.Fatalf("padding byte %d not zeroed: 0x%02X", i, buf[i])
		}
	}
}

func TestTradeBufferRoundTrip(t *testing.T) {
	// Any correctly sized buffer with zero padding survives
	// decode-then-encode bit for bit.
	src := make([]byte, TradeSize)
	for i := 0; i < 25; i++ {
		src[i] = byte(i*31 + 7)
	}
	tr, err := DecodeTrade(src)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	dst := make([]byte, TradeSize)
	if err := tr.Encode(dst); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(src, dst) {
		t.Fatalf("buffer round trip mismatch:\n src % X\n dst % X", src, dst)
	}
}

func TestTradeValidate(t *testing.T) {
	base := Trade{InstrumentID: 1, Price: 10, Quantity: 5, TradeID: 3}
	mut := []struct {
		name string
		f    func(*Trade)
	}{
		{"zero instrument", func(tr *Trade) { tr.InstrumentID = 0 }},
		{"zero price", func(tr *Trade) { tr.Price = 0 }},
		{"negative price", func(tr *Trade) { tr.Price = -1 }},
		{"zero quantity", func(tr *Trade) { tr.Quantity = 0 }},
		{"zero trade id", func(tr *Trade) { tr.TradeID = 0 }},
	}
	for _, m := range mut {
		tr := base
		m.f(&tr)
		if err := tr.Validate(); !errors.Is(err, ErrInvariantViolation) {
			t.Errorf("%s: got %v want ErrInvariantViolation", m.name, err)
		}
	}
}

func TestOrderRoundTrip(t *testing.T) {
	in := Order{
		InstrumentID: mustInstrument(t),
		OrderID:      42,
		Price:        1.0843,
		Quantity:     1_000_000,
		Type:         Limit,
		Side:         Buy,
		Expiry:       1_767_225_600_000,
	}
	var buf [OrderSize]byte
	if err := in.Encode(buf[:]); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeOrder(buf[:])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
}

func TestOrderTypeAndSideByte(t *testing.T) {
	for _, typ := range []OrderType{Market, Limit, Stop, Cancel} {
		for _, side := range []Side{Buy, Sell} {
			b := CombineTypeAndSide(typ, side)
			gotType, gotSide := SplitTypeAndSide(b)
			if gotType != typ || gotSide != side {
				t.Errorf("type %d side %d: byte 0x%02X split to %d,%d", typ, side, b, gotType, gotSide)
			}
		}
	}
	if CombineTypeAndSide(Limit, Sell) != 0x03 {
		t.Errorf("limit sell byte: got 0x%02X want 0x03", CombineTypeAndSide(Limit, Sell))
	}
}

func TestOrderValidate(t *testing.T) {
	cancel := Order{InstrumentID: 1, OrderID: 9, Type: Cancel}
	if err := cancel.Validate(); err != nil {
		t.Fatalf("cancel without price rejected: %v", err)
	}
	market := Order{InstrumentID: 1, OrderID: 9, Type: Market}
	if err := market.Validate(); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("market without price accepted")
	}
	expiry := Order{InstrumentID: 1, OrderID: 9, Type: Limit, Price: 1, Expiry: 1 << 48}
	if err := expiry.Validate(); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("49-bit expiry accepted")
	}
}

func TestTickRoundTrip(t *testing.T) {
	in := Tick{
		InstrumentID: mustInstrument(t),
		BidPrice:     64123.4,
		AskPrice:     64123.6,
		BidVolume:    1500,
		AskVolume:    900,
	}
	var buf [TickSize]byte
	if err := in.Encode(buf[:]); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeTick(buf[:])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
}

func TestTickValidate(t *testing.T) {
	crossed := Tick{InstrumentID: 1, BidPrice: 10.5, AskPrice: 10.4, BidVolume: 1, AskVolume: 1}
	if err := crossed.Validate(); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("crossed quote accepted")
	}
	locked := Tick{InstrumentID: 1, BidPrice: 10.5, AskPrice: 10.5}
	if err := locked.Validate(); err != nil {
		t.Fatalf("locked quote rejected: %v", err)
	}
}

func TestIndexRoundTrip(t *testing.T) {
	in := Index{
		InstrumentID:    mustInstrument(t),
		Mid:             64123.5,
		BidVolume:       12_000,
		AskVolume:       11_500,
		MeanSpread:      1850,
		BestBidOffset:   -920,
		BestAskOffset:   930,
		WorstBidOffset:  -45_000,
		WorstAskOffset:  47_000,
		VolatilityForce: 3200,
		LiquidityForce:  8100,
		TrendForce:      -1500,
		MomentumForce:   400,
		Confidence:      87,
		Rejected:        2,
		Accepted:        14,
	}
	var buf [IndexSize]byte
	if err := in.Encode(buf[:]); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeIndex(buf[:])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestIndexOffsetPrices(t *testing.T) {
	x := Index{Mid: 1000, BestBidOffset: -1_000_000, BestAskOffset: 2_000_000}
	if got := x.BestBidPrice(); got != 999 {
		t.Errorf("best bid: got %v want 999", got)
	}
	if got := x.BestAskPrice(); got != 1002 {
		t.Errorf("best ask: got %v want 1002", got)
	}
}

func TestIndexValidate(t *testing.T) {
	base := Index{InstrumentID: 1, Mid: 100, Confidence: 50, Accepted: 3}
	mut := []struct {
		name string
		f    func(*Index)
	}{
		{"confidence over 100", func(x *Index) { x.Confidence = 101 }},
		{"volatility force", func(x *Index) { x.VolatilityForce = 10001 }},
		{"liquidity force", func(x *Index) { x.LiquidityForce = 10001 }},
		{"trend force", func(x *Index) { x.TrendForce = -10001 }},
		{"momentum force", func(x *Index) { x.MomentumForce = 10001 }},
		{"confidence without sources", func(x *Index) { x.Accepted = 0 }},
	}
	for _, m := range mut {
		x := base
		m.f(&x)
		if err := x.Validate(); !errors.Is(err, ErrInvariantViolation) {
			t.Errorf("%s: got %v want ErrInvariantViolation", m.name, err)
		}
	}
	zeroed := Index{InstrumentID: 1, Mid: 100, Accepted: 0, Confidence: 0}
	if err := zeroed.Validate(); err != nil {
		t.Errorf("zero confidence with no sources rejected: %v", err)
	}
}

func TestBodyTruncated(t *testing.T) {
	short := make([]byte, 31)
	if _, err := DecodeTrade(short); !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("trade: got %v", err)
	}
	if _, err := DecodeOrder(short); !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("order: got %v", err)
	}
	if _, err := DecodeTick(short); !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("tick: got %v", err)
	}
	if _, err := DecodeIndex(make([]byte, 63)); !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("index: got %v", err)
	}
}

func BenchmarkTradeEncode(b *testing.B) {
	tr := Trade{InstrumentID: 1, Price: 64000, Quantity: 100, TradeID: 1, Side: Buy}
	var buf [TradeSize]byte
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := tr.Encode(buf[:]); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTradeDecode(b *testing.B) {
	tr := Trade{InstrumentID: 1, Price: 64000, Quantity: 100, TradeID: 1, Side: Buy}
	var buf [TradeSize]byte
	if err := tr.Encode(buf[:]); err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := DecodeTrade(buf[:]); err != nil {
			b.Fatal(err)
		}
	}
}

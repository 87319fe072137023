// Package mitch implements the MITCH binary protocol for market-data
// events: fixed-layout message bodies behind a shared 8-byte header, the
// packed instrument and route identifiers embedded in those bodies, and
// the adaptive price-bin tables used by optimized order-book snapshots.
//
// All multi-byte fields are little-endian. Encode and decode operate on
// caller-owned buffers and retain no references across calls; every
// function in this package is safe for concurrent use.
package mitch

import "errors"

// Message kind codes (ASCII), byte 0 of every header.
const (
	KindTrade     byte = 't'
	KindOrder     byte = 'o'
	KindTick      byte = 's'
	KindIndex     byte = 'i'
	KindOrderBook byte = 'b'
)

// kindOrderBookLegacy is the pre-v2 order-book code. Buffers produced
// under the old convention are not wire compatible with this package, so
// the code is rejected rather than silently accepted.
const kindOrderBookLegacy byte = 'q'

// Encoded sizes in bytes.
const (
	HeaderSize           = 8
	TradeSize            = 32
	OrderSize            = 32
	TickSize             = 32
	IndexSize            = 64
	OrderBookSize        = 2072
	BinSize              = 8
	BookUpdateHeaderSize = 32
)

// MaxBatchCount is the largest number of body entries one header can
// declare.
const MaxBatchCount = 255

var (
	// ErrTruncatedInput reports a buffer shorter than the required length.
	ErrTruncatedInput = errors.New("mitch: truncated input")
	// ErrUnknownMessageKind reports a message kind outside the five
	// defined codes, or a kind other than the one the caller asked for.
	ErrUnknownMessageKind = errors.New("mitch: unknown message kind")
	// ErrFieldOverflow reports a pack value exceeding its bit width.
	ErrFieldOverflow = errors.New("mitch: field overflow")
	// ErrInvalidIdentifier reports an identifier failing a range or
	// self-reference check.
	ErrInvalidIdentifier = errors.New("mitch: invalid identifier")
	// ErrCountMismatch reports a header count inconsistent with the
	// buffer length, or an empty batch.
	ErrCountMismatch = errors.New("mitch: count mismatch")
	// ErrInvariantViolation reports a body value failing a domain
	// invariant.
	ErrInvariantViolation = errors.New("mitch: invariant violation")
)

// Side is the taker side of a trade or order.
type Side uint8

const (
	Buy  Side = 0
	Sell Side = 1
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// BookSide distinguishes the two halves of an order book.
type BookSide uint8

const (
	Bid BookSide = 0
	Ask BookSide = 1
)

func (s BookSide) String() string {
	if s == Ask {
		return "ask"
	}
	return "bid"
}

// OrderType is the order lifecycle action carried in bits 1-7 of the
// combined type/side byte.
type OrderType uint8

const (
	Market OrderType = 0
	Limit  OrderType = 1
	Stop   OrderType = 2
	Cancel OrderType = 3
)

// CombineTypeAndSide packs an order type and side into one byte:
// bit 0 = side, bits 1-7 = type.
func CombineTypeAndSide(ot OrderType, s Side) uint8 {
	return uint8(ot)<<1 | uint8(s)&1
}

// SplitTypeAndSide is the inverse of CombineTypeAndSide.
func SplitTypeAndSide(b uint8) (OrderType, Side) {
	return OrderType(b >> 1 & 0x7F), Side(b & 1)
}

// ValidKind reports whether k is one of the five defined message kinds.
func ValidKind(k byte) bool {
	switch k {
	case KindTrade, KindOrder, KindTick, KindIndex, KindOrderBook:
		return true
	}
	return false
}

// BodySizeForKind returns the fixed per-entry body size for a message
// kind. KindOrderBook refers to the optimized 2072-byte snapshot; classic
// book entries are variable-length and have no fixed size.
func BodySizeForKind(k byte) (int, bool) {
	switch k {
	case KindTrade:
		return TradeSize, true
	case KindOrder:
		return OrderSize, true
	case KindTick:
		return TickSize, true
	case KindIndex:
		return IndexSize, true
	case KindOrderBook:
		return OrderBookSize, true
	}
	return 0, false
}

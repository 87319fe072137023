package mitch

import (
	"fmt"
	"time"
)

// timestampMask truncates a nanoseconds-since-midnight value to the 48
// bits the wire format carries.
const timestampMask = uint64(1)<<48 - 1

// Header is the 8-byte prefix shared by every MITCH message: one kind
// byte, a 48-bit timestamp in nanoseconds since midnight UTC, and the
// number of body entries that follow.
type Header struct {
	Kind      byte
	Timestamp uint64
	Count     uint8
}

// Encode writes the header into the first 8 bytes of dst. The timestamp
// is truncated to 48 bits.
func (h Header) Encode(dst []byte) error {
	if len(dst) < HeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncatedInput, HeaderSize, len(dst))
	}
	dst[0] = h.Kind
	putUint48(dst[1:7], h.Timestamp)
	dst[7] = h.Count
	return nil
}

// DecodeHeader reads a header from the first 8 bytes of buf. It checks
// only for truncation: a zero count is representable but meaningless, so
// rejecting it is the caller's job (see Header.Validate).
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncatedInput, HeaderSize, len(buf))
	}
	return Header{
		Kind:      buf[0],
		Timestamp: uint48(buf[1:7]),
		Count:     buf[7],
	}, nil
}

// Validate checks that the kind is one of the five defined codes and the
// count is at least one.
func (h Header) Validate() error {
	if !ValidKind(h.Kind) {
		if h.Kind == kindOrderBookLegacy {
			return fmt.Errorf("%w: legacy order-book code 'q' is not supported", ErrUnknownMessageKind)
		}
		return fmt.Errorf("%w: 0x%02X", ErrUnknownMessageKind, h.Kind)
	}
	if h.Count == 0 {
		return fmt.Errorf("%w: header declares zero entries", ErrCountMismatch)
	}
	return nil
}

func (h Header) String() string {
	return fmt.Sprintf("Header(kind=%q ts=%d count=%d)", h.Kind, h.Timestamp&timestampMask, h.Count)
}

// TimestampOf converts a wall-clock time to the header representation:
// nanoseconds since the preceding midnight UTC.
func TimestampOf(t time.Time) uint64 {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return uint64(t.Sub(midnight).Nanoseconds())
}

func putUint48(dst []byte, v uint64) {
	v &= timestampMask
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
	dst[4] = byte(v >> 32)
	dst[5] = byte(v >> 40)
}

func uint48(src []byte) uint64 {
	return uint64(src[0]) | uint64(src[1])<<8 | uint64(src[2])<<16 |
		uint64(src[3])<<24 | uint64(src[4])<<32 | uint64(src[5])<<40
}

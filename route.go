package mitch

import "fmt"

// RouteID is the packed 32-bit pub/sub routing identifier:
//
//	provider[31:16] | messageKind[15:8] | reserved[7:0]=0
type RouteID uint32

// PackRoute builds a RouteID from a provider number and a message kind.
// The reserved byte is always zero.
func PackRoute(provider uint16, kind byte) RouteID {
	return RouteID(uint32(provider)<<16 | uint32(kind)<<8)
}

// Provider extracts the 16-bit provider number.
func (r RouteID) Provider() uint16 { return uint16(r >> 16) }

// Kind extracts the message-kind byte.
func (r RouteID) Kind() byte { return byte(r >> 8) }

// Reserved extracts the low byte, which must be zero.
func (r RouteID) Reserved() uint8 { return uint8(r) }

// Validate checks that the kind is one of the defined codes and the
// reserved byte is zero.
func (r RouteID) Validate() error {
	if !ValidKind(r.Kind()) {
		return fmt.Errorf("%w: route kind 0x%02X undefined", ErrInvalidIdentifier, r.Kind())
	}
	if r.Reserved() != 0 {
		return fmt.Errorf("%w: route reserved byte 0x%02X is not zero", ErrInvalidIdentifier, r.Reserved())
	}
	return nil
}

func (r RouteID) String() string {
	return fmt.Sprintf("RouteID(provider=%d kind=%q)", r.Provider(), r.Kind())
}

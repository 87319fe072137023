package mitch

import "fmt"

// AssetClass is the 4-bit asset category embedded in an InstrumentID.
type AssetClass uint8

const (
	Equities           AssetClass = 0x0
	CorporateBonds     AssetClass = 0x1
	SovereignDebt      AssetClass = 0x2
	Forex              AssetClass = 0x3
	Commodities        AssetClass = 0x4
	RealEstate         AssetClass = 0x5
	CryptoAssets       AssetClass = 0x6
	PrivateMarkets     AssetClass = 0x7
	Collectibles       AssetClass = 0x8
	Infrastructure     AssetClass = 0x9
	Indices            AssetClass = 0xA
	StructuredProducts AssetClass = 0xB
	CashEquivalents    AssetClass = 0xC
	LoansReceivables   AssetClass = 0xD

	maxAssetClass = LoansReceivables
)

var assetClassNames = [...]string{
	"equities", "corporate-bonds", "sovereign-debt", "forex", "commodities",
	"real-estate", "crypto", "private-markets", "collectibles",
	"infrastructure", "indices", "structured-products", "cash-equivalents",
	"loans-receivables",
}

func (c AssetClass) String() string {
	if int(c) < len(assetClassNames) {
		return assetClassNames[c]
	}
	return fmt.Sprintf("asset-class(0x%X)", uint8(c))
}

// InstrumentKind is the 4-bit financial product category embedded in an
// InstrumentID.
type InstrumentKind uint8

const (
	Spot               InstrumentKind = 0x0
	Future             InstrumentKind = 0x1
	Forward            InstrumentKind = 0x2
	Swap               InstrumentKind = 0x3
	PerpetualSwap      InstrumentKind = 0x4
	CFD                InstrumentKind = 0x5
	CallOption         InstrumentKind = 0x6
	PutOption          InstrumentKind = 0x7
	DigitalOption      InstrumentKind = 0x8
	BarrierOption      InstrumentKind = 0x9
	Warrant            InstrumentKind = 0xA
	PredictionContract InstrumentKind = 0xB
	StructuredProduct  InstrumentKind = 0xC

	maxInstrumentKind = StructuredProduct
)

var instrumentKindNames = [...]string{
	"spot", "future", "forward", "swap", "perpetual", "cfd", "call", "put",
	"digital-option", "barrier-option", "warrant", "prediction",
	"structured-product",
}

func (k InstrumentKind) String() string {
	if int(k) < len(instrumentKindNames) {
		return instrumentKindNames[k]
	}
	return fmt.Sprintf("instrument-kind(0x%X)", uint8(k))
}

// InstrumentID is the packed 64-bit identifier of a tradable pair:
//
//	kind[63:60] | baseClass[59:56] | baseNum[55:40] |
//	quoteClass[39:36] | quoteNum[35:20] | subType[19:0]
//
// The zero value is reserved and has no valid interpretation.
type InstrumentID uint64

// maxSubType is the largest value the 20-bit sub-type field holds.
const maxSubType = 0xFFFFF

// PackInstrument builds an InstrumentID from its components. It fails
// with ErrFieldOverflow when a component exceeds its bit width; range
// checks against the defined class and kind enumerations belong to
// Validate.
func PackInstrument(kind InstrumentKind, baseClass AssetClass, baseNum uint16, quoteClass AssetClass, quoteNum uint16, subType uint32) (InstrumentID, error) {
	if kind > 0xF {
		return 0, fmt.Errorf("%w: instrument kind 0x%X exceeds 4 bits", ErrFieldOverflow, uint8(kind))
	}
	if baseClass > 0xF || quoteClass > 0xF {
		return 0, fmt.Errorf("%w: asset class exceeds 4 bits", ErrFieldOverflow)
	}
	if subType > maxSubType {
		return 0, fmt.Errorf("%w: sub-type 0x%X exceeds 20 bits", ErrFieldOverflow, subType)
	}
	base := uint64(baseClass)<<16 | uint64(baseNum)
	quote := uint64(quoteClass)<<16 | uint64(quoteNum)
	return InstrumentID(uint64(kind)<<60 | base<<40 | quote<<20 | uint64(subType)), nil
}

// Kind extracts the instrument kind (bits 63:60).
func (id InstrumentID) Kind() InstrumentKind { return InstrumentKind(id >> 60 & 0xF) }

// BaseClass extracts the base asset class (bits 59:56).
func (id InstrumentID) BaseClass() AssetClass { return AssetClass(id >> 56 & 0xF) }

// BaseNum extracts the base asset number (bits 55:40).
func (id InstrumentID) BaseNum() uint16 { return uint16(id >> 40 & 0xFFFF) }

// QuoteClass extracts the quote asset class (bits 39:36).
func (id InstrumentID) QuoteClass() AssetClass { return AssetClass(id >> 36 & 0xF) }

// QuoteNum extracts the quote asset number (bits 35:20).
func (id InstrumentID) QuoteNum() uint16 { return uint16(id >> 20 & 0xFFFF) }

// SubType extracts the 20-bit sub-type (bits 19:0).
func (id InstrumentID) SubType() uint32 { return uint32(id & maxSubType) }

// Validate rejects identifiers whose kind or classes fall outside the
// defined enumerations and pairs that quote an asset against itself.
// Every 64-bit pattern is syntactically decodable; this is the semantic
// check.
func (id InstrumentID) Validate() error {
	if id == 0 {
		return fmt.Errorf("%w: instrument id zero is reserved", ErrInvalidIdentifier)
	}
	if k := id.Kind(); k > maxInstrumentKind {
		return fmt.Errorf("%w: instrument kind 0x%X undefined", ErrInvalidIdentifier, uint8(k))
	}
	if c := id.BaseClass(); c > maxAssetClass {
		return fmt.Errorf("%w: base asset class 0x%X undefined", ErrInvalidIdentifier, uint8(c))
	}
	if c := id.QuoteClass(); c > maxAssetClass {
		return fmt.Errorf("%w: quote asset class 0x%X undefined", ErrInvalidIdentifier, uint8(c))
	}
	if id.BaseClass() == id.QuoteClass() && id.BaseNum() == id.QuoteNum() {
		return fmt.Errorf("%w: base and quote asset are identical", ErrInvalidIdentifier)
	}
	return nil
}

func (id InstrumentID) String() string {
	return fmt.Sprintf("InstrumentID(%016X %s %s:%d/%s:%d sub=%d)",
		uint64(id), id.Kind(), id.BaseClass(), id.BaseNum(),
		id.QuoteClass(), id.QuoteNum(), id.SubType())
}

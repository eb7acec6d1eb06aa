// Package domain defines the venue-agnostic view model shared by every layer
// of crossdesk: unified positions, protective orders, close summaries, balance
// checks, and the interfaces the cache and store implementations satisfy.
// Nothing in this package is a system of record; every value is rebuilt from
// the backend on each fetch cycle.
package domain

import "strings"

// Exchange identifies the venue a record originated from. Provenance
// determines which adapter produced a position and which actions are legal
// against it.
type Exchange string

const (
	ExchangeHyperliquid Exchange = "hyperliquid"
	ExchangeOrderly     Exchange = "orderly"
	ExchangePolymarket  Exchange = "polymarket"
)

// MarketType classifies the instrument behind a position.
type MarketType string

const (
	MarketTypePerpetual  MarketType = "perpetual"
	MarketTypeSpot       MarketType = "spot"
	MarketTypePrediction MarketType = "prediction"
)

// Side is the direction of a position. It is always derived - from the sign
// of a signed size field where the venue reports one, or from an explicit
// side string otherwise - and together with Size it is the sole source of
// directional truth.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// Position is the unified, venue-agnostic position model rendered by the
// dashboard. Size is always a non-negative magnitude; the sign lives in Side.
type Position struct {
	// Symbol is the display symbol with venue prefixes/suffixes stripped.
	Symbol string
	// RawSymbol is the unmodified venue-native identifier. Close and cancel
	// calls must use RawSymbol, never Symbol.
	RawSymbol string

	Exchange   Exchange
	MarketType MarketType

	Side Side
	Size float64

	EntryPrice    float64
	CurrentPrice  float64
	PositionValue float64
	UnrealizedPnL float64
	// ROE is return on equity as a fraction. Rendering multiplies by 100.
	ROE      float64
	Leverage int

	// LiquidationPrice is nil when the venue does not compute one (spot,
	// prediction markets).
	LiquidationPrice *float64
	// LiquidationDistance is |mark - liq| / mark, nil when LiquidationPrice
	// is nil or the mark is zero.
	LiquidationDistance *float64

	// ProtectionApplicable reports whether the venue exposes protective-order
	// data at all. When false the dashboard renders "n/a" rather than "none".
	ProtectionApplicable bool
	StopLoss             *ProtectiveOrder
	TakeProfit           *ProtectiveOrder

	// Degraded marks a position adapted from a malformed raw record with safe
	// defaults substituted. Display-only: the row still renders so the user
	// can see that something exists that needs attention.
	Degraded bool
}

// Notional returns the position's notional value at the current mark.
func (p Position) Notional() float64 {
	return p.Size * p.CurrentPrice
}

// DisplaySymbol strips the known venue suffixes ("-PERP", "-USD") from a raw
// symbol for display. The raw form must be retained separately for any write
// operation against the venue.
func DisplaySymbol(raw string) string {
	s := strings.TrimSuffix(raw, "-PERP")
	s = strings.TrimSuffix(s, "-USD")
	return s
}

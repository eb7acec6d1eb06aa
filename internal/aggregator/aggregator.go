// Package aggregator merges per-venue adapter output into the single ordered
// position list the dashboard renders, attaches protective orders, and
// computes derived risk fields. Everything here is pure: no network, no
// state, full-replacement input in, full list out.
package aggregator

import (
	"math"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
	"github.com/joshnichols-lang/crossdesk/internal/platform/hyperliquid"
	"github.com/joshnichols-lang/crossdesk/internal/platform/orderly"
	"github.com/joshnichols-lang/crossdesk/internal/platform/polymarket"
)

// RawBatch carries one fetch cycle's raw records, one slice per venue. The
// explicit per-venue fields keep every payload typed; there is no shared
// "any record" shape.
type RawBatch struct {
	Hyperliquid []hyperliquid.RawPosition
	Orderly     []orderly.RawPosition
	Polymarket  []polymarket.RawPosition
}

// Adapt runs the venue adapters over every raw record and concatenates the
// results. Each venue's own ordering is preserved; ordering across venues
// carries no meaning. A malformed record is adapted with safe defaults and
// flagged, never dropped - dropping silently would hide real risk.
func Adapt(batch RawBatch) []domain.Position {
	positions := make([]domain.Position, 0,
		len(batch.Hyperliquid)+len(batch.Orderly)+len(batch.Polymarket))

	for _, raw := range batch.Hyperliquid {
		positions = append(positions, hyperliquid.AdaptPosition(raw))
	}
	for _, raw := range batch.Orderly {
		positions = append(positions, orderly.AdaptPosition(raw))
	}
	for _, raw := range batch.Polymarket {
		positions = append(positions, polymarket.AdaptPosition(raw))
	}

	return positions
}

// AdaptOrders normalizes raw hyperliquid resting orders for matching.
func AdaptOrders(raw []hyperliquid.RawOpenOrder) []domain.OpenOrder {
	if len(raw) == 0 {
		return nil
	}
	orders := make([]domain.OpenOrder, 0, len(raw))
	for _, r := range raw {
		orders = append(orders, hyperliquid.AdaptOpenOrder(r))
	}
	return orders
}

// Attach joins protective orders onto positions and fills the derived risk
// fields. Positions and orders arrive from independently-scheduled fetches,
// so the join is best-effort: an order referencing a just-closed position
// simply finds no match, and a position whose orders are one cycle stale
// keeps last cycle's association until the next order refresh.
//
// Only hyperliquid positions participate; the source system exposes no
// protective-order data for the other venues, which render not-applicable.
func Attach(positions []domain.Position, orders []domain.OpenOrder) []domain.Position {
	out := make([]domain.Position, len(positions))
	copy(out, positions)

	for i := range out {
		derive(&out[i])

		if out[i].Exchange != domain.ExchangeHyperliquid {
			continue
		}
		stopLoss, takeProfit := matchProtective(out[i].RawSymbol, orders)
		out[i].StopLoss = stopLoss
		out[i].TakeProfit = takeProfit
	}

	return out
}

// Aggregate is the full pipeline: adapt every raw record, then attach
// protective orders and derived fields.
func Aggregate(batch RawBatch, orders []domain.OpenOrder) []domain.Position {
	return Attach(Adapt(batch), orders)
}

// matchProtective scans orders in source order and returns the first
// qualifying stop-loss and the first qualifying take-profit for the given
// raw symbol. Qualification is exact symbol match, reduce-only, and the
// venue's position-TP/SL tag - never price or size. When multiple reduce-only
// orders share a symbol the first in the source array wins; the source does
// not disambiguate ties.
func matchProtective(rawSymbol string, orders []domain.OpenOrder) (stopLoss, takeProfit *domain.ProtectiveOrder) {
	for _, order := range orders {
		if order.Coin != rawSymbol || !order.ReduceOnly || !order.PositionTPSL {
			continue
		}
		kind, ok := order.ProtectiveKind()
		if !ok {
			continue
		}

		protective := &domain.ProtectiveOrder{
			Coin:                order.Coin,
			Kind:                kind,
			TriggerOrLimitPrice: order.TriggerPrice,
			ReduceOnly:          order.ReduceOnly,
		}

		switch kind {
		case domain.ProtectiveStopLoss:
			if stopLoss == nil {
				stopLoss = protective
			}
		case domain.ProtectiveTakeProfit:
			if takeProfit == nil {
				takeProfit = protective
			}
		}

		if stopLoss != nil && takeProfit != nil {
			break
		}
	}
	return stopLoss, takeProfit
}

// derive fills the fields computed from the adapted record rather than
// reported by the venue.
func derive(pos *domain.Position) {
	if pos.LiquidationPrice != nil && pos.CurrentPrice > 0 {
		dist := math.Abs(pos.CurrentPrice-*pos.LiquidationPrice) / pos.CurrentPrice
		pos.LiquidationDistance = &dist
	}
	if pos.PositionValue == 0 {
		pos.PositionValue = pos.Notional()
	}
}

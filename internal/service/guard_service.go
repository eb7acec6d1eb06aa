package service

import (
	"fmt"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// defaultMinimumMaticForGas is the native-gas floor below which the guard
// refuses to submit, even if USDC covers the trade itself.
const defaultMinimumMaticForGas = 0.01

// TradeGuard gates order submission on cached balances. Check is a single
// synchronous decision over one snapshot; it never fetches, never blocks, and
// re-validation only happens on the caller's next submit attempt.
type TradeGuard struct {
	minimumMaticForGas float64
}

// NewTradeGuard creates a TradeGuard. A non-positive minimumMaticForGas falls
// back to the default floor.
func NewTradeGuard(minimumMaticForGas float64) *TradeGuard {
	if minimumMaticForGas <= 0 {
		minimumMaticForGas = defaultMinimumMaticForGas
	}
	return &TradeGuard{minimumMaticForGas: minimumMaticForGas}
}

// Check decides whether a trade requiring requiredAmount USDC can go ahead
// against the given balance snapshot. When both USDC and gas are short, gas
// wins the recommendation: a gas-less wallet cannot execute any follow-up
// transaction, including a second bridge, so it must be topped up first.
func (g *TradeGuard) Check(requiredAmount float64, snap domain.BalanceSnapshot) domain.BalanceCheckResult {
	deficit := requiredAmount - snap.USDC
	if deficit < 0 {
		deficit = 0
	}

	result := domain.BalanceCheckResult{
		NeedsUSDC:          deficit > 0,
		NeedsMatic:         snap.Matic < g.minimumMaticForGas,
		RequiredUSDCAmount: deficit,
		MinimumMaticForGas: g.minimumMaticForGas,
	}
	result.Sufficient = !result.NeedsUSDC && !result.NeedsMatic

	switch {
	case result.Sufficient:
		// Nothing to bridge.
	case result.NeedsUSDC && result.NeedsMatic:
		result.RecommendedAsset = "MATIC"
		result.Message = fmt.Sprintf(
			"Insufficient MATIC for gas and %.2f more USDC needed. Bridge MATIC first: without gas the wallet cannot execute any transaction, including a second bridge.",
			deficit,
		)
	case result.NeedsMatic:
		result.RecommendedAsset = "MATIC"
		result.Message = fmt.Sprintf(
			"Insufficient MATIC for gas (below %.2f). Bridge MATIC before retrying.",
			g.minimumMaticForGas,
		)
	default:
		result.RecommendedAsset = "USDC"
		result.Message = fmt.Sprintf(
			"Insufficient USDC: %.2f more needed. Bridge USDC and retry the order.",
			deficit,
		)
	}

	return result
}

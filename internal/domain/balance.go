package domain

import "time"

// BalanceSnapshot is the latest cached wallet balance for the funding chain.
// It is written only by the balance refresh cycle and read-shared by the
// order guard and the display grid.
type BalanceSnapshot struct {
	USDC      float64
	Matic     float64
	FetchedAt time.Time
}

// WalletAddresses holds the user's embedded-wallet deposit addresses per
// chain, as reported by the backend.
type WalletAddresses struct {
	Hyperliquid string
	Polygon     string
	Solana      string
	EVM         string
	BNB         string
}

// BalanceCheckResult is the outcome of one balance-gate evaluation. It is
// computed fresh from the latest snapshot on every submit attempt and never
// persisted.
type BalanceCheckResult struct {
	Sufficient bool
	NeedsUSDC  bool
	NeedsMatic bool
	// RequiredUSDCAmount is the bridging deficit, floored at zero.
	RequiredUSDCAmount float64
	// MinimumMaticForGas echoes the configured gas reserve the check ran
	// against.
	MinimumMaticForGas float64
	// RecommendedAsset is the asset the user should bridge first. Gas wins
	// ties: a gas-less wallet cannot execute any follow-up transaction,
	// including a second bridge.
	RecommendedAsset string
	Message          string
}

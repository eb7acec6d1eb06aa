package domain

import "time"

// DepositState is the current step of a deposit dialog's quote/execute flow.
type DepositState string

const (
	DepositStateInput     DepositState = "input"
	DepositStateQuote     DepositState = "quote"
	DepositStateExecuting DepositState = "executing"
	DepositStateSuccess   DepositState = "success"
)

// DepositRecord is a persisted record of one executed cross-chain deposit.
type DepositRecord struct {
	ID          int64
	FlowID      string
	FromChainID int
	ToChainID   int
	TokenSymbol string
	// Amount is the human-readable decimal amount the user entered.
	Amount string
	// AmountUnits is the smallest-unit integer form submitted to the bridge.
	AmountUnits string
	Recipient   string
	TxHash      string
	CreatedAt   time.Time
}

// Package deposit drives the four-step quote/execute flow behind the deposit
// dialog: input -> quote -> executing -> {success | quote}. One Flow backs
// one open dialog; closing the dialog discards the whole thing.
package deposit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joshnichols-lang/crossdesk/internal/bridge"
	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// Token identifies a bridgeable source token.
type Token struct {
	Symbol   string
	Address  string
	Decimals int
	ChainID  int
}

// Quoter is the slice of the bridge aggregator client the flow needs.
type Quoter interface {
	GetQuote(ctx context.Context, req bridge.QuoteRequest) (bridge.Quote, error)
	ExecuteBridge(ctx context.Context, quote bridge.Quote, recipient string) (string, error)
}

// Config fixes the destination side and slippage for every quote the flow
// fetches.
type Config struct {
	DestChainID       int
	DestTokenAddress  string
	SlippageTolerance float64
}

// Snapshot is a point-in-time copy of the flow for rendering. StepError is
// the inline error bound to the current step, empty when the last action
// succeeded.
type Snapshot struct {
	State     domain.DepositState
	Amount    string
	Token     *Token
	Recipient string
	Quote     *bridge.Quote
	TxHash    string
	StepError string
}

// Flow is the deposit state machine. All mutation happens under one mutex;
// network calls run unlocked and re-validate a generation counter on return,
// so a response that lands after the dialog was closed is ignored rather
// than applied.
type Flow struct {
	cfg    Config
	client Quoter
	logger *slog.Logger

	mu        sync.Mutex
	gen       uint64
	state     domain.DepositState
	amount    string
	token     *Token
	recipient string
	quote     *bridge.Quote
	txHash    string
	stepErr   string
}

// NewFlow creates a Flow in the input state, as when the dialog opens.
func NewFlow(cfg Config, client Quoter, logger *slog.Logger) *Flow {
	return &Flow{
		cfg:    cfg,
		client: client,
		logger: logger.With(slog.String("component", "deposit_flow")),
		state:  domain.DepositStateInput,
	}
}

// SetInput records the user's entries. Editing the input invalidates any
// held quote and drops back to the input step.
func (f *Flow) SetInput(amount string, token Token, recipient string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.amount = amount
	tok := token
	f.token = &tok
	f.recipient = recipient
	f.quote = nil
	f.txHash = ""
	f.stepErr = ""
	f.state = domain.DepositStateInput
}

// Reset is the dialog-close hook. Whatever step the flow was in, it returns
// to input with every field cleared, and any in-flight call's eventual
// resolution is ignored. No state survives a dialog close.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.gen++
	f.state = domain.DepositStateInput
	f.amount = ""
	f.token = nil
	f.recipient = ""
	f.quote = nil
	f.txHash = ""
	f.stepErr = ""
}

// Snapshot returns a copy of the current flow for rendering.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := Snapshot{
		State:     f.state,
		Amount:    f.amount,
		Recipient: f.recipient,
		TxHash:    f.txHash,
		StepError: f.stepErr,
	}
	if f.token != nil {
		tok := *f.token
		snap.Token = &tok
	}
	if f.quote != nil {
		q := *f.quote
		snap.Quote = &q
	}
	return snap
}

// GetQuote validates the input step, fetches a route quote, and advances to
// the quote step. A validation or network error stays on the current step as
// an inline error; the machine never advances on failure.
func (f *Flow) GetQuote(ctx context.Context) error {
	f.mu.Lock()
	if f.state != domain.DepositStateInput && f.state != domain.DepositStateQuote {
		f.mu.Unlock()
		return fmt.Errorf("deposit: get quote from %s: %w", f.state, domain.ErrInvalidDepositStep)
	}
	if f.amount == "" {
		f.stepErr = "enter an amount"
		f.mu.Unlock()
		return fmt.Errorf("deposit: empty amount")
	}
	if f.token == nil {
		f.stepErr = "select a source token"
		f.mu.Unlock()
		return fmt.Errorf("deposit: no source token resolved")
	}
	if !common.IsHexAddress(f.recipient) {
		f.stepErr = "deposit address not resolved"
		f.mu.Unlock()
		return fmt.Errorf("deposit: invalid recipient %q", f.recipient)
	}

	units, err := ToUnits(f.amount, f.token.Decimals)
	if err != nil {
		f.stepErr = "invalid amount"
		f.mu.Unlock()
		return err
	}

	req := bridge.QuoteRequest{
		FromChainID:       f.token.ChainID,
		FromTokenAddress:  f.token.Address,
		ToChainID:         f.cfg.DestChainID,
		ToTokenAddress:    f.cfg.DestTokenAddress,
		Amount:            units,
		SlippageTolerance: f.cfg.SlippageTolerance,
	}
	gen := f.gen
	f.mu.Unlock()

	quote, err := f.client.GetQuote(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		// Dialog closed while the quote was in flight; discard the result.
		return nil
	}
	if err != nil {
		f.stepErr = "quote failed, please try again"
		f.logger.WarnContext(ctx, "quote fetch failed", slog.String("error", err.Error()))
		return err
	}

	f.quote = &quote
	f.state = domain.DepositStateQuote
	f.stepErr = ""
	return nil
}

// Execute submits the held quote for on-chain execution. Failure returns to
// the quote step with the quote preserved - only a fresh quote fetch ever
// clears it - so the user is not forced to re-quote after a transient error.
func (f *Flow) Execute(ctx context.Context) error {
	f.mu.Lock()
	if f.state != domain.DepositStateQuote {
		f.mu.Unlock()
		return fmt.Errorf("deposit: execute from %s: %w", f.state, domain.ErrInvalidDepositStep)
	}
	if f.quote == nil {
		f.mu.Unlock()
		return fmt.Errorf("deposit: %w", domain.ErrNoQuote)
	}

	quote := *f.quote
	recipient := f.recipient
	gen := f.gen
	f.state = domain.DepositStateExecuting
	f.stepErr = ""
	f.mu.Unlock()

	txHash, err := f.client.ExecuteBridge(ctx, quote, recipient)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		return nil
	}
	if err != nil {
		f.state = domain.DepositStateQuote
		f.stepErr = "bridge execution failed, you can retry with the same quote"
		f.logger.WarnContext(ctx, "bridge execution failed", slog.String("error", err.Error()))
		return err
	}

	f.state = domain.DepositStateSuccess
	f.txHash = txHash
	return nil
}

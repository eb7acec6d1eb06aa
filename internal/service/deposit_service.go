package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joshnichols-lang/crossdesk/internal/deposit"
	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

// DepositService manages one deposit flow per open dialog, keyed by a flow
// ID handed out at dialog open. Closing the dialog tears the flow down; a
// late network resolution against a closed flow is dropped by the flow
// itself.
type DepositService struct {
	cfg    deposit.Config
	quoter deposit.Quoter
	tokens map[string]deposit.Token
	store  domain.DepositStore
	logger *slog.Logger

	mu    sync.Mutex
	flows map[string]*deposit.Flow
}

// NewDepositService creates a DepositService. tokens maps upper-case symbol
// to the bridgeable source token; the store may be nil when persistence is
// not wired.
func NewDepositService(
	cfg deposit.Config,
	quoter deposit.Quoter,
	tokens map[string]deposit.Token,
	store domain.DepositStore,
	logger *slog.Logger,
) *DepositService {
	return &DepositService{
		cfg:    cfg,
		quoter: quoter,
		tokens: tokens,
		store:  store,
		logger: logger.With(slog.String("component", "deposit_service")),
		flows:  make(map[string]*deposit.Flow),
	}
}

// Open creates a fresh flow for a newly opened dialog and returns its ID.
func (s *DepositService) Open() string {
	id := uuid.New().String()
	flow := deposit.NewFlow(s.cfg, s.quoter, s.logger)

	s.mu.Lock()
	s.flows[id] = flow
	s.mu.Unlock()

	return id
}

// Close is the dialog-close hook: the flow resets (dropping any in-flight
// resolution) and is removed. Closing an unknown flow is a no-op.
func (s *DepositService) Close(flowID string) {
	s.mu.Lock()
	flow, ok := s.flows[flowID]
	delete(s.flows, flowID)
	s.mu.Unlock()

	if ok {
		flow.Reset()
	}
}

// Snapshot returns the current state of a flow for rendering.
func (s *DepositService) Snapshot(flowID string) (deposit.Snapshot, error) {
	flow, err := s.flow(flowID)
	if err != nil {
		return deposit.Snapshot{}, err
	}
	return flow.Snapshot(), nil
}

// Quote records the user's entries and fetches a bridge quote. Validation
// and network errors surface as the flow's inline step error; the returned
// snapshot always reflects the post-attempt state.
func (s *DepositService) Quote(ctx context.Context, flowID, amount, tokenSymbol, recipient string) (deposit.Snapshot, error) {
	flow, err := s.flow(flowID)
	if err != nil {
		return deposit.Snapshot{}, err
	}

	token, ok := s.tokens[strings.ToUpper(tokenSymbol)]
	if !ok {
		return deposit.Snapshot{}, fmt.Errorf("deposit_service: unknown token %q: %w",
			tokenSymbol, domain.ErrNotFound)
	}

	flow.SetInput(amount, token, recipient)
	if err := flow.GetQuote(ctx); err != nil {
		s.logger.DebugContext(ctx, "quote failed",
			slog.String("flow_id", flowID),
			slog.String("error", err.Error()),
		)
	}
	return flow.Snapshot(), nil
}

// Execute submits the held quote for on-chain execution. On success the
// deposit is recorded for the history view; a recording failure does not
// undo the executed bridge.
func (s *DepositService) Execute(ctx context.Context, flowID string) (deposit.Snapshot, error) {
	flow, err := s.flow(flowID)
	if err != nil {
		return deposit.Snapshot{}, err
	}

	execErr := flow.Execute(ctx)
	snap := flow.Snapshot()
	if execErr != nil {
		s.logger.DebugContext(ctx, "execute failed",
			slog.String("flow_id", flowID),
			slog.String("error", execErr.Error()),
		)
		return snap, nil
	}

	if s.store != nil && snap.State == domain.DepositStateSuccess && snap.Token != nil {
		units, unitErr := deposit.ToUnits(snap.Amount, snap.Token.Decimals)
		rec := domain.DepositRecord{
			FlowID:      flowID,
			FromChainID: snap.Token.ChainID,
			ToChainID:   s.cfg.DestChainID,
			TokenSymbol: snap.Token.Symbol,
			Amount:      snap.Amount,
			Recipient:   snap.Recipient,
			TxHash:      snap.TxHash,
			CreatedAt:   time.Now().UTC(),
		}
		if unitErr == nil {
			rec.AmountUnits = units.String()
		}
		if err := s.store.Record(ctx, rec); err != nil {
			s.logger.ErrorContext(ctx, "deposit record failed",
				slog.String("flow_id", flowID),
				slog.String("tx_hash", snap.TxHash),
				slog.String("error", err.Error()),
			)
		}
	}

	return snap, nil
}

func (s *DepositService) flow(flowID string) (*deposit.Flow, error) {
	s.mu.Lock()
	flow, ok := s.flows[flowID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("deposit_service: flow %q: %w", flowID, domain.ErrNotFound)
	}
	return flow, nil
}

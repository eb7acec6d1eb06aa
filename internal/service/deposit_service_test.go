package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshnichols-lang/crossdesk/internal/bridge"
	"github.com/joshnichols-lang/crossdesk/internal/deposit"
	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

const testRecipient = "0x52908400098527886E0F7030069857D2E4169EE7"

type fakeQuoter struct {
	quote      bridge.Quote
	quoteErr   error
	txHash     string
	executeErr error
}

func (f *fakeQuoter) GetQuote(ctx context.Context, req bridge.QuoteRequest) (bridge.Quote, error) {
	return f.quote, f.quoteErr
}

func (f *fakeQuoter) ExecuteBridge(ctx context.Context, quote bridge.Quote, recipient string) (string, error) {
	return f.txHash, f.executeErr
}

type fakeDepositStore struct {
	records []domain.DepositRecord
}

func (f *fakeDepositStore) Record(ctx context.Context, rec domain.DepositRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeDepositStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.DepositRecord, error) {
	return f.records, nil
}

func (f *fakeDepositStore) ListBefore(ctx context.Context, cutoff time.Time) ([]domain.DepositRecord, error) {
	return nil, nil
}

func (f *fakeDepositStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func newDepositService(quoter *fakeQuoter, store domain.DepositStore) *DepositService {
	return NewDepositService(
		deposit.Config{DestChainID: 137, DestTokenAddress: "0xusdc", SlippageTolerance: 0.005},
		quoter,
		map[string]deposit.Token{
			"USDC": {Symbol: "USDC", Address: "0xsrc", Decimals: 6, ChainID: 1},
		},
		store,
		discardLogger(),
	)
}

func TestDepositServiceOpenClose(t *testing.T) {
	svc := newDepositService(&fakeQuoter{}, nil)

	id := svc.Open()
	require.NotEmpty(t, id)

	snap, err := svc.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, domain.DepositStateInput, snap.State)

	svc.Close(id)
	_, err = svc.Snapshot(id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Closing twice is a no-op.
	svc.Close(id)
}

func TestDepositServiceQuote(t *testing.T) {
	t.Run("known token advances to quote", func(t *testing.T) {
		quoter := &fakeQuoter{quote: bridge.Quote{ID: "q1", Raw: []byte(`{}`)}}
		svc := newDepositService(quoter, nil)
		id := svc.Open()

		snap, err := svc.Quote(context.Background(), id, "100", "usdc", testRecipient)
		require.NoError(t, err)
		assert.Equal(t, domain.DepositStateQuote, snap.State)
		require.NotNil(t, snap.Quote)
		assert.Equal(t, "q1", snap.Quote.ID)
	})

	t.Run("unknown token is a flow error", func(t *testing.T) {
		svc := newDepositService(&fakeQuoter{}, nil)
		id := svc.Open()

		_, err := svc.Quote(context.Background(), id, "100", "PEPE", testRecipient)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("step failure rides in the snapshot", func(t *testing.T) {
		svc := newDepositService(&fakeQuoter{}, nil)
		id := svc.Open()

		snap, err := svc.Quote(context.Background(), id, "", "USDC", testRecipient)
		require.NoError(t, err)
		assert.Equal(t, domain.DepositStateInput, snap.State)
		assert.NotEmpty(t, snap.StepError)
	})

	t.Run("unknown flow id", func(t *testing.T) {
		svc := newDepositService(&fakeQuoter{}, nil)
		_, err := svc.Quote(context.Background(), "missing", "100", "USDC", testRecipient)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestDepositServiceExecute(t *testing.T) {
	t.Run("success records the deposit", func(t *testing.T) {
		quoter := &fakeQuoter{quote: bridge.Quote{ID: "q1", Raw: []byte(`{}`)}, txHash: "0xdeadbeef"}
		store := &fakeDepositStore{}
		svc := newDepositService(quoter, store)
		id := svc.Open()

		_, err := svc.Quote(context.Background(), id, "100", "USDC", testRecipient)
		require.NoError(t, err)

		snap, err := svc.Execute(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.DepositStateSuccess, snap.State)
		assert.Equal(t, "0xdeadbeef", snap.TxHash)

		require.Len(t, store.records, 1)
		rec := store.records[0]
		assert.Equal(t, id, rec.FlowID)
		assert.Equal(t, 1, rec.FromChainID)
		assert.Equal(t, 137, rec.ToChainID)
		assert.Equal(t, "100", rec.Amount)
		assert.Equal(t, "100000000", rec.AmountUnits)
		assert.Equal(t, "0xdeadbeef", rec.TxHash)
	})

	t.Run("execution failure stays on quote and records nothing", func(t *testing.T) {
		quoter := &fakeQuoter{quote: bridge.Quote{ID: "q1", Raw: []byte(`{}`)}, executeErr: errors.New("bridge rejected")}
		store := &fakeDepositStore{}
		svc := newDepositService(quoter, store)
		id := svc.Open()

		_, err := svc.Quote(context.Background(), id, "100", "USDC", testRecipient)
		require.NoError(t, err)

		snap, err := svc.Execute(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.DepositStateQuote, snap.State)
		assert.NotEmpty(t, snap.StepError)
		assert.Empty(t, store.records)
	})
}

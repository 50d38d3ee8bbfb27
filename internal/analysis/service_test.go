package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-risk-lab/internal/domain"
	"wallet-risk-lab/internal/ingestion"
	"wallet-risk-lab/internal/observability"
)

const wallet = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

type fakeFetcher struct {
	snap  *ingestion.Snapshot
	err   error
	calls int
}

func (f *fakeFetcher) Snapshot(ctx context.Context, address string) (*ingestion.Snapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func sampleSnapshot(stop ingestion.StopReason) *ingestion.Snapshot {
	ts := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	return &ingestion.Snapshot{
		History: &ingestion.TransactionHistory{
			Transactions: []domain.Transaction{
				{
					Hash:      "0x1",
					Timestamp: ts,
					From:      wallet,
					To:        "0x00000000000000000000000000000000000000aa",
					Value:     "1000000000000000000",
					Logs: []domain.LogEvent{{
						TickerSymbol: "USDT",
						Decoded: &domain.DecodedEvent{Name: "Transfer", Params: []domain.EventParam{
							{Name: "from", Value: wallet},
							{Name: "to", Value: "0x00000000000000000000000000000000000000bb"},
							{Name: "value", Value: "1000000", ValueQuote: 1},
						}},
					}},
				},
				{
					Hash:      "0x2",
					Timestamp: ts.Add(2 * time.Hour),
					From:      "0x00000000000000000000000000000000000000cc",
					To:        wallet,
					Value:     "3000000000000000000",
				},
			},
			Pages:      1,
			StopReason: stop,
		},
		Balances: []domain.BalanceItem{{Native: true, Balance: "4200000000000000000", Decimals: 18}},
	}
}

func TestNormalizeAddress(t *testing.T) {
	got, err := NormalizeAddress("  " + wallet + "\n")
	require.NoError(t, err)
	assert.Equal(t, wallet, got)

	got, err = NormalizeAddress(wallet[2:])
	require.NoError(t, err)
	assert.Equal(t, wallet, got)

	got, err = NormalizeAddress("0X" + wallet[2:])
	require.NoError(t, err)
	assert.Equal(t, wallet, got)

	_, err = NormalizeAddress("   ")
	assert.ErrorIs(t, err, ErrMissingAddress)

	_, err = NormalizeAddress("0x1234")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = NormalizeAddress("0xZZ2d35Cc6634C0532925a3b844Bc454e4438f44e")
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.True(t, IsInputError(err))
}

func TestService_Features(t *testing.T) {
	fetcher := &fakeFetcher{snap: sampleSnapshot(ingestion.StopComplete)}
	svc := New(Options{Fetcher: fetcher, Metrics: observability.NewMetrics("test", prometheus.NewRegistry())})

	result, err := svc.Features(context.Background(), wallet)
	require.NoError(t, err)

	assert.Equal(t, wallet, result.Address)
	assert.Equal(t, 2, result.TransactionCount)
	assert.Equal(t, 1, result.TransferCount)
	assert.Equal(t, 1, result.PagesFetched)
	assert.False(t, result.Partial)

	r := result.Record
	assert.Equal(t, wallet, r.Address)
	assert.Equal(t, 1, r.SentTnx)
	assert.Equal(t, 1, r.ReceivedTnx)
	assert.InDelta(t, 120, r.TimeDiffFirstLastMins, 1e-9)
	assert.InDelta(t, 1, r.TotalEtherSent, 1e-12)
	assert.InDelta(t, 3, r.TotalEtherReceived, 1e-12)
	assert.InDelta(t, 4.2, r.TotalEtherBalance, 1e-12)
	assert.Equal(t, 1, r.TotalERC20Tnxs)
	require.NotNil(t, r.ERC20MostSentTokenType)
	assert.Equal(t, "USDT", *r.ERC20MostSentTokenType)
	assert.Nil(t, r.ERC20MostRecTokenType)
}

func TestService_Features_BareHexAddress(t *testing.T) {
	fetcher := &fakeFetcher{snap: sampleSnapshot(ingestion.StopComplete)}
	svc := New(Options{Fetcher: fetcher})

	result, err := svc.Features(context.Background(), wallet[2:])
	require.NoError(t, err)

	assert.Equal(t, wallet, result.Address)
	assert.Equal(t, wallet, result.Record.Address)
	assert.Equal(t, 1, result.Record.SentTnx)
	assert.Equal(t, 1, result.Record.ReceivedTnx)
	assert.Equal(t, 1, result.Record.UniqueSentToAddresses)
	assert.InDelta(t, 1, result.Record.TotalEtherSent, 1e-12)
}

func TestService_PartialHistory(t *testing.T) {
	fetcher := &fakeFetcher{snap: sampleSnapshot(ingestion.StopCeiling)}
	svc := New(Options{Fetcher: fetcher})

	result, err := svc.Features(context.Background(), wallet)
	require.NoError(t, err)
	assert.True(t, result.Partial)
	assert.Equal(t, ingestion.StopCeiling, result.StopReason)
}

func TestService_RejectsInputBeforeFetch(t *testing.T) {
	fetcher := &fakeFetcher{snap: sampleSnapshot(ingestion.StopComplete)}
	svc := New(Options{Fetcher: fetcher})

	_, err := svc.Features(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingAddress)

	_, err = svc.Features(context.Background(), "not-an-address")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	assert.Zero(t, fetcher.calls)
}

func TestService_FetchError(t *testing.T) {
	upstreamErr := errors.New("balances unavailable")
	svc := New(Options{Fetcher: &fakeFetcher{err: upstreamErr}})

	result, err := svc.Features(context.Background(), wallet)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, upstreamErr)
	assert.False(t, IsInputError(err))
}

package ingestion

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wallet-risk-lab/internal/covalent"
	"wallet-risk-lab/internal/domain"
	"wallet-risk-lab/internal/observability"
)

// DefaultMaxPages bounds how many transaction pages are requested per address.
const DefaultMaxPages = 50

// StopReason explains why a transaction fetch ended.
type StopReason string

const (
	StopComplete StopReason = "complete" // indexer reported no further pages
	StopError    StopReason = "error"    // a page request failed
	StopCeiling  StopReason = "ceiling"  // page ceiling reached while more pages remained
)

// Partial reports whether the history may be incomplete.
func (r StopReason) Partial() bool {
	return r == StopError || r == StopCeiling
}

// TransactionHistory is the accumulated result of a paginated fetch.
type TransactionHistory struct {
	Transactions []domain.Transaction
	Pages        int // pages successfully fetched
	Skipped      int // items rejected at the indexer boundary
	StopReason   StopReason
	Err          error // page error that stopped the loop, if any
}

// Partial reports whether the fetch stopped before the full history was read.
func (h *TransactionHistory) Partial() bool {
	return h.StopReason.Partial()
}

// Snapshot is the raw input of the feature engine for one address.
type Snapshot struct {
	History  *TransactionHistory
	Balances []domain.BalanceItem
}

// Fetcher retrieves transaction history and balances from the indexer.
type Fetcher struct {
	indexer  covalent.Indexer
	maxPages int
	pageSize int
	logger   *zap.SugaredLogger
	metrics  *observability.Metrics
}

// FetcherOptions contains configuration for creating a Fetcher.
type FetcherOptions struct {
	Indexer  covalent.Indexer
	MaxPages int // 0 means DefaultMaxPages
	PageSize int // 0 leaves the page size to the indexer
	Logger   *zap.SugaredLogger
	Metrics  *observability.Metrics
}

// NewFetcher creates a new Fetcher.
func NewFetcher(opts FetcherOptions) *Fetcher {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Fetcher{
		indexer:  opts.Indexer,
		maxPages: maxPages,
		pageSize: opts.PageSize,
		logger:   logger,
		metrics:  opts.Metrics,
	}
}

// MaxPages returns the configured page ceiling.
func (f *Fetcher) MaxPages() int {
	return f.maxPages
}

// FetchTransactions reads pages sequentially until the indexer reports no
// further pages, a request fails or the page ceiling is hit. Pages without
// accepted items do not end the loop.
// A failed page ends the loop and the items gathered so far are returned
// without an error; only context cancellation before the first page is an error.
func (f *Fetcher) FetchTransactions(ctx context.Context, address string) (*TransactionHistory, error) {
	history := &TransactionHistory{StopReason: StopCeiling}

	for page := 0; page < f.maxPages; page++ {
		result, err := f.indexer.TransactionsPage(ctx, address, page, f.pageSize)
		if err != nil {
			if page == 0 && ctx.Err() != nil {
				return nil, ctx.Err()
			}
			f.logger.Warnw("transaction page failed, returning partial history",
				"address", address,
				"page", page,
				"transactions", len(history.Transactions),
				"error", err,
			)
			history.StopReason = StopError
			history.Err = err
			break
		}

		history.Pages++
		history.Skipped += result.Skipped
		f.metrics.RecordPage(len(result.Items), result.Skipped)

		history.Transactions = append(history.Transactions, result.Items...)

		if !result.HasMore {
			history.StopReason = StopComplete
			break
		}
	}

	if history.StopReason == StopCeiling {
		f.logger.Warnw("page ceiling reached, history truncated",
			"address", address,
			"max_pages", f.maxPages,
			"transactions", len(history.Transactions),
		)
	}
	if history.Partial() {
		f.metrics.RecordPartialFetch(string(history.StopReason))
	}

	f.logger.Debugw("transaction history fetched",
		"address", address,
		"pages", history.Pages,
		"transactions", len(history.Transactions),
		"skipped", history.Skipped,
		"stop_reason", history.StopReason,
	)
	return history, nil
}

// FetchBalances retrieves the balance snapshot. Any failure is returned.
func (f *Fetcher) FetchBalances(ctx context.Context, address string) ([]domain.BalanceItem, error) {
	items, err := f.indexer.Balances(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("fetch balances: %w", err)
	}
	return items, nil
}

// FetchTransactionPage retrieves a single page of transactions without
// pagination or partial-result handling.
func (f *Fetcher) FetchTransactionPage(ctx context.Context, address string, page, pageSize int) (*covalent.TransactionPage, error) {
	result, err := f.indexer.TransactionsPage(ctx, address, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction page %d: %w", page, err)
	}
	return result, nil
}

// Snapshot fetches transaction history and balances concurrently.
// A balance failure cancels the history fetch and fails the snapshot.
func (f *Fetcher) Snapshot(ctx context.Context, address string) (*Snapshot, error) {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	var snap Snapshot
	g.Go(func() error {
		history, err := f.FetchTransactions(gctx, address)
		if err != nil {
			return fmt.Errorf("fetch transactions: %w", err)
		}
		snap.History = history
		return nil
	})
	g.Go(func() error {
		balances, err := f.FetchBalances(gctx, address)
		if err != nil {
			return err
		}
		snap.Balances = balances
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	f.logger.Infow("snapshot fetched",
		"address", address,
		"transactions", len(snap.History.Transactions),
		"balances", len(snap.Balances),
		"partial", snap.History.Partial(),
		"duration", time.Since(start),
	)
	return &snap, nil
}

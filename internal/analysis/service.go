// Package analysis runs the wallet feature pipeline.
// Flow: validate → fetch (transactions ∥ balances) → extract transfers → compute → assemble
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"wallet-risk-lab/internal/features"
	"wallet-risk-lab/internal/ingestion"
	"wallet-risk-lab/internal/observability"
)

// SnapshotFetcher retrieves the raw inputs of the pipeline.
type SnapshotFetcher interface {
	Snapshot(ctx context.Context, address string) (*ingestion.Snapshot, error)
}

// Result is the assembled output of one pipeline run.
type Result struct {
	Address          string
	Record           features.Record
	TransactionCount int
	TransferCount    int
	PagesFetched     int
	Partial          bool                 // history stopped early (page error or ceiling)
	StopReason       ingestion.StopReason // why pagination ended
	Duration         time.Duration
}

// Service coordinates the feature pipeline.
type Service struct {
	fetcher SnapshotFetcher
	logger  *zap.SugaredLogger
	metrics *observability.Metrics
}

// Options for creating Service.
type Options struct {
	Fetcher SnapshotFetcher
	Logger  *zap.SugaredLogger
	Metrics *observability.Metrics
}

// New creates a new Service.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		fetcher: opts.Fetcher,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// NormalizeAddress trims address, checks it is a 0x-prefixed or bare
// 40-digit hex address and returns it with a lowercase 0x prefix. Letter
// case of the digits is kept.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", ErrMissingAddress
	}
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	if has0xPrefix(address) {
		return "0x" + address[2:], nil
	}
	return "0x" + address, nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// Features runs the pipeline for address and returns the feature record.
// Input errors are returned before any fetch; a balance failure fails the
// run while a transaction pagination failure yields a partial result.
func (s *Service) Features(ctx context.Context, address string) (*Result, error) {
	start := time.Now()

	address, err := NormalizeAddress(address)
	if err != nil {
		s.metrics.RecordAnalysis("invalid", time.Since(start).Seconds())
		return nil, err
	}

	snap, err := s.fetcher.Snapshot(ctx, address)
	if err != nil {
		s.metrics.RecordAnalysis("error", time.Since(start).Seconds())
		s.logger.Errorw("snapshot failed", "address", address, "error", err)
		return nil, fmt.Errorf("fetch wallet data: %w", err)
	}

	transfers := features.ExtractTransfers(snap.History.Transactions)
	record := features.Compute(address, snap.History.Transactions, transfers, snap.Balances)

	result := &Result{
		Address:          address,
		Record:           record,
		TransactionCount: len(snap.History.Transactions),
		TransferCount:    len(transfers),
		PagesFetched:     snap.History.Pages,
		Partial:          snap.History.Partial(),
		StopReason:       snap.History.StopReason,
		Duration:         time.Since(start),
	}

	status := "ok"
	if result.Partial {
		status = "partial"
	}
	s.metrics.RecordAnalysis(status, result.Duration.Seconds())

	s.logger.Infow("features computed",
		"address", address,
		"transactions", result.TransactionCount,
		"transfers", result.TransferCount,
		"pages", result.PagesFetched,
		"partial", result.Partial,
		"duration", result.Duration,
	)
	return result, nil
}

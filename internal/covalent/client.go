// Package covalent is the boundary to the Covalent (GoldRush) indexer API.
// Responses are decoded into tolerant wire types and converted to domain types
// here; nothing untyped leaves this package.
package covalent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"wallet-risk-lab/internal/domain"
	"wallet-risk-lab/internal/upstream"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.covalenthq.com"
	DefaultChain   = "eth-mainnet"
)

// Indexer defines the indexer operations the pipeline consumes.
type Indexer interface {
	// TransactionsPage retrieves one page of transactions touching address.
	// pageSize <= 0 leaves the page size to the indexer.
	TransactionsPage(ctx context.Context, address string, page, pageSize int) (*TransactionPage, error)

	// Balances retrieves the current token balances of address.
	Balances(ctx context.Context, address string) ([]domain.BalanceItem, error)
}

// TransactionPage is one page of transaction history.
type TransactionPage struct {
	Number  int
	Items   []domain.Transaction
	HasMore bool
	Skipped int // items rejected at the boundary (no sender or timestamp)
}

// APIError is an error reported inside the Covalent response envelope.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("covalent error %d: %s", e.Code, e.Message)
	}
	return "covalent error: " + e.Message
}

// ErrEmptyResponse is returned when the envelope carries no data.
var ErrEmptyResponse = errors.New("covalent: empty response data")

// Client implements Indexer over HTTP.
type Client struct {
	http  *upstream.Client
	chain string
}

var _ Indexer = (*Client)(nil)

// NewClient creates a Covalent client for chain using http for transport.
func NewClient(http *upstream.Client, chain string) *Client {
	if chain == "" {
		chain = DefaultChain
	}
	return &Client{http: http, chain: chain}
}

// TransactionsPage implements Indexer.
func (c *Client) TransactionsPage(ctx context.Context, address string, page, pageSize int) (*TransactionPage, error) {
	path := fmt.Sprintf("/v1/%s/address/%s/transactions_v3/", c.chain, url.PathEscape(address))
	query := url.Values{}
	query.Set("page-number", strconv.Itoa(page))
	if pageSize > 0 {
		query.Set("page-size", strconv.Itoa(pageSize))
	}

	var resp envelope[transactionsData]
	if err := c.http.GetJSON(ctx, "transactions", path, query, &resp); err != nil {
		return nil, translateError(err)
	}
	if resp.Error {
		return nil, envelopeError(resp.ErrorCode, resp.ErrorMessage)
	}

	result := &TransactionPage{Number: page}
	if resp.Data == nil {
		return result, nil
	}
	if resp.Data.Pagination != nil {
		result.HasMore = resp.Data.Pagination.HasMore
	}

	result.Items = make([]domain.Transaction, 0, len(resp.Data.Items))
	for _, raw := range resp.Data.Items {
		tx, ok := raw.toDomain()
		if !ok {
			result.Skipped++
			continue
		}
		result.Items = append(result.Items, tx)
	}
	return result, nil
}

// Balances implements Indexer.
func (c *Client) Balances(ctx context.Context, address string) ([]domain.BalanceItem, error) {
	path := fmt.Sprintf("/v1/%s/address/%s/balances_v2/", c.chain, url.PathEscape(address))

	var resp envelope[balancesData]
	if err := c.http.GetJSON(ctx, "balances", path, nil, &resp); err != nil {
		return nil, translateError(err)
	}
	if resp.Error {
		return nil, envelopeError(resp.ErrorCode, resp.ErrorMessage)
	}
	if resp.Data == nil {
		return nil, ErrEmptyResponse
	}

	items := make([]domain.BalanceItem, 0, len(resp.Data.Items))
	for _, raw := range resp.Data.Items {
		items = append(items, raw.toDomain())
	}
	return items, nil
}

func envelopeError(code *int, message string) error {
	e := &APIError{Message: message}
	if code != nil {
		e.Code = *code
	}
	if e.Message == "" {
		e.Message = "unknown error"
	}
	return e
}

// translateError surfaces the envelope error_message of non-2xx responses.
func translateError(err error) error {
	se, ok := upstream.AsStatusError(err)
	if !ok {
		return err
	}
	var resp envelope[json.RawMessage]
	if jsonErr := json.Unmarshal(se.Body, &resp); jsonErr != nil || resp.ErrorMessage == "" {
		return err
	}
	code := se.StatusCode
	if resp.ErrorCode != nil {
		code = *resp.ErrorCode
	}
	return fmt.Errorf("%w (%w)", &APIError{Code: code, Message: resp.ErrorMessage}, err)
}

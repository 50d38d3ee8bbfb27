// Package scoring is the client of the fraud model API (FastAPI service
// exposing /analyze and /explain).
package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"wallet-risk-lab/internal/upstream"
)

// ErrEmptyAddress is returned when no address is supplied.
var ErrEmptyAddress = errors.New("scoring: address is required")

// APIError carries the detail message of a failed model API call.
type APIError struct {
	Endpoint   string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("scoring %s: %d: %s", e.Endpoint, e.StatusCode, e.Detail)
}

// Scorer is the model API as consumed by the HTTP layer.
type Scorer interface {
	Assess(ctx context.Context, address string) (*Assessment, error)
}

// Client calls the model API.
type Client struct {
	http *upstream.Client
}

var _ Scorer = (*Client)(nil)

// NewClient creates a scoring client on top of http.
func NewClient(http *upstream.Client) *Client {
	return &Client{http: http}
}

type addressRequest struct {
	Address string `json:"address"`
}

// Predict calls /analyze.
func (c *Client) Predict(ctx context.Context, address string) (*Prediction, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}
	var resp analyzeResponse
	if err := c.http.PostJSON(ctx, "analyze", "/analyze", addressRequest{Address: address}, &resp); err != nil {
		return nil, translateError("analyze", err)
	}
	return resp.toPrediction(address), nil
}

// Explain calls /explain.
func (c *Client) Explain(ctx context.Context, address string) (*Explanation, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}
	var resp explainResponse
	if err := c.http.PostJSON(ctx, "explain", "/explain", addressRequest{Address: address}, &resp); err != nil {
		return nil, translateError("explain", err)
	}
	return resp.toExplanation(), nil
}

// Assess calls /analyze and /explain concurrently. Either failure fails the
// assessment and cancels the other call.
func (c *Client) Assess(ctx context.Context, address string) (*Assessment, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}

	g, gctx := errgroup.WithContext(ctx)
	var result Assessment

	g.Go(func() error {
		p, err := c.Predict(gctx, address)
		if err != nil {
			return err
		}
		result.Prediction = p
		return nil
	})
	g.Go(func() error {
		e, err := c.Explain(gctx, address)
		if err != nil {
			return err
		}
		result.Explanation = e
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &result, nil
}

// translateError surfaces the API's detail message for non-2xx responses.
func translateError(endpoint string, err error) error {
	se, ok := upstream.AsStatusError(err)
	if !ok {
		return fmt.Errorf("scoring %s: %w", endpoint, err)
	}
	detail := string(se.Body)
	var body errorResponse
	if json.Unmarshal(se.Body, &body) == nil {
		if msg := body.message(); msg != "" {
			detail = msg
		}
	}
	if detail == "" {
		detail = "model service error"
	}
	return fmt.Errorf("%w (%w)", &APIError{Endpoint: endpoint, StatusCode: se.StatusCode, Detail: detail}, err)
}
